package flight

import (
	"path/filepath"
	"strings"

	"github.com/francois-poidevin/sondetracker/internal/app"
	"github.com/francois-poidevin/sondetracker/internal/app/tools"
)

// DisplayName strips the directory and the .log extension of a file name.
func DisplayName(filename string) string {
	return strings.TrimSuffix(filepath.Base(filename), app.LogExtension)
}

// Build aggregates samples into a Flight keyed by filename. It returns nil
// when samples is empty. The samples slice is retained, not copied.
func Build(filename string, samples []app.Sample) *app.Flight {
	if len(samples) == 0 {
		return nil
	}

	name := DisplayName(filename)
	first := samples[0]
	last := samples[len(samples)-1]

	f := &app.Flight{
		ID:              tools.IdentityKey(filename),
		Name:            name,
		Filename:        filename,
		Color:           tools.Color(name),
		Samples:         samples,
		LaunchTime:      first.Timestamp,
		MaxAltitude:     first.Altitude,
		MaxSpeed:        first.HorizontalVelocity,
		Duration:        last.Timestamp.Sub(first.Timestamp).Minutes(),
		CurrentAltitude: last.Altitude,
		AscentRate:      last.VerticalVelocity,
	}

	for i, s := range samples {
		if s.Altitude > f.MaxAltitude {
			f.MaxAltitude = s.Altitude
		}
		if s.HorizontalVelocity > f.MaxSpeed {
			f.MaxSpeed = s.HorizontalVelocity
		}
		if i > 0 {
			prev := samples[i-1]
			f.Distance += tools.Haversine(prev.Lat, prev.Lon, s.Lat, s.Lon)
		}
	}

	f.CurrentSpeed = currentSpeed(samples)

	return f
}

// currentSpeed is the ground speed in km/h over the last two samples.
func currentSpeed(samples []app.Sample) float64 {
	if len(samples) < 2 {
		return 0
	}
	a, b := samples[len(samples)-2], samples[len(samples)-1]
	hours := b.Timestamp.Sub(a.Timestamp).Hours()
	if hours <= 0 {
		return 0
	}
	return tools.Haversine(a.Lat, a.Lon, b.Lat, b.Lon) / hours
}
