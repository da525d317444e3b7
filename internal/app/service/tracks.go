package service

import (
	"math"

	"github.com/francois-poidevin/sondetracker/internal/app"
	geojson "github.com/paulmach/go.geojson"
)

// maxWaypoints bounds the interactive points drawn along a track.
const maxWaypoints = 20

// Tracks renders flights as GeoJSON: per flight a LineString, a launch and
// a last-position Point, and sampled waypoints.
func Tracks(flights []*app.Flight) *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()

	for _, f := range flights {
		if f.Len() == 0 {
			continue
		}

		coords := make([][]float64, 0, f.Len())
		for _, s := range f.Samples {
			coords = append(coords, []float64{s.Lon, s.Lat})
		}

		line := geojson.NewLineStringFeature(coords)
		line.ID = f.ID
		setFlightProperties(line, f)
		line.SetProperty("kind", "track")
		fc.AddFeature(line)

		first := f.Samples[0]
		start := geojson.NewPointFeature([]float64{first.Lon, first.Lat})
		setFlightProperties(start, f)
		start.SetProperty("kind", "launch")
		start.SetProperty("time", first.Timestamp)
		fc.AddFeature(start)

		last := f.Samples[f.Len()-1]
		end := geojson.NewPointFeature([]float64{last.Lon, last.Lat})
		setFlightProperties(end, f)
		end.SetProperty("kind", "last")
		end.SetProperty("time", last.Timestamp)
		fc.AddFeature(end)

		step := int(math.Ceil(float64(f.Len()) / maxWaypoints))
		for i, s := range f.Samples {
			if i%step != 0 {
				continue
			}
			wp := geojson.NewPointFeature([]float64{s.Lon, s.Lat})
			wp.SetProperty("id", f.ID)
			wp.SetProperty("name", f.Name)
			wp.SetProperty("color", f.Color.String())
			wp.SetProperty("kind", "waypoint")
			wp.SetProperty("time", s.Timestamp)
			wp.SetProperty("altitude", s.Altitude)
			wp.SetProperty("horizontalVelocity", s.HorizontalVelocity)
			wp.SetProperty("verticalVelocity", s.VerticalVelocity)
			wp.SetProperty("direction", s.Direction)
			fc.AddFeature(wp)
		}
	}

	if b := Bounds(flights); !b.IsEmpty() {
		fc.BoundingBox = []float64{b.LonSW, b.LatSW, b.LonNE, b.LatNE}
	}
	return fc
}

func setFlightProperties(feature *geojson.Feature, f *app.Flight) {
	feature.SetProperty("id", f.ID)
	feature.SetProperty("name", f.Name)
	feature.SetProperty("color", f.Color.String())
	feature.SetProperty("launchTime", f.LaunchTime)
	feature.SetProperty("maxAltitude", f.MaxAltitude)
	feature.SetProperty("duration", f.Duration)
	feature.SetProperty("points", f.Len())
}
