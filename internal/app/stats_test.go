package app

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSummarize(t *testing.T) {
	assert.Equal(t, Summary{}, Summarize(nil))

	flights := []*Flight{
		{MaxAltitude: 1200, MaxSpeed: 30, Duration: 10},
		{MaxAltitude: 31000, MaxSpeed: 12, Duration: 110},
		{MaxAltitude: -5, MaxSpeed: 80, Duration: 0},
	}
	s := Summarize(flights)
	assert.Equal(t, 3, s.TotalFlights)
	assert.Equal(t, 31000.0, s.MaxAltitude)
	assert.Equal(t, 80.0, s.MaxSpeed)
	assert.InDelta(t, 40.0, s.AvgDuration, 1e-9)
}

func TestSummarizeNegativeOnly(t *testing.T) {
	s := Summarize([]*Flight{{MaxAltitude: -20, MaxSpeed: 0, Duration: 2}})
	assert.Equal(t, -20.0, s.MaxAltitude)
}

func TestFlightBounds(t *testing.T) {
	f := &Flight{Samples: []Sample{{Lat: 44, Lon: 26}, {Lat: 44.5, Lon: 25.5}}}
	b := f.Bounds()
	assert.Equal(t, 44.0, b.LatSW)
	assert.Equal(t, 25.5, b.LonSW)
	assert.Equal(t, 44.5, b.LatNE)
	assert.Equal(t, 26.0, b.LonNE)
	assert.True(t, (&Flight{}).Bounds().IsEmpty())
}
