package service

import (
	"testing"

	"github.com/francois-poidevin/sondetracker/internal/app"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTracks(t *testing.T) {
	points := make([][3]float64, 0, 45)
	for i := 0; i < 45; i++ {
		points = append(points, [3]float64{48.0 + float64(i)*0.01, 2.0, float64(i) * 100})
	}
	f := testFlight("RS41-A.log", points...)

	fc := Tracks([]*app.Flight{f})

	kinds := map[string]int{}
	for _, feature := range fc.Features {
		kinds[feature.PropertyMustString("kind")]++
		assert.Equal(t, f.ID, feature.PropertyMustString("id"))
	}
	assert.Equal(t, 1, kinds["track"])
	assert.Equal(t, 1, kinds["launch"])
	assert.Equal(t, 1, kinds["last"])
	// one waypoint every ceil(45/20) = 3 samples
	assert.Equal(t, 15, kinds["waypoint"])

	track := fc.Features[0]
	require.True(t, track.Geometry.IsLineString())
	assert.Len(t, track.Geometry.LineString, 45)
	assert.Equal(t, []float64{2.0, 48.0}, track.Geometry.LineString[0])
	assert.Equal(t, f.ID, track.ID)

	assert.InDeltaSlice(t, []float64{2.0, 48.0, 2.0, 48.44}, fc.BoundingBox, 1e-9)
}

func TestTracksEmpty(t *testing.T) {
	fc := Tracks(nil)
	assert.Empty(t, fc.Features)
	assert.Nil(t, fc.BoundingBox)

	body, err := fc.MarshalJSON()
	require.NoError(t, err)
	assert.Contains(t, string(body), "FeatureCollection")
}
