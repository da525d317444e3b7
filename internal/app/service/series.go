package service

import (
	"github.com/francois-poidevin/sondetracker/internal/app"
)

// Metric selects the sample value a chart plots.
type Metric string

const (
	Altitude           Metric = "altitude"
	HorizontalVelocity Metric = "speed"
	VerticalVelocity   Metric = "velocity"
	Direction          Metric = "direction"
)

// Metrics lists every chart, in display order.
var Metrics = []Metric{Altitude, HorizontalVelocity, VerticalVelocity, Direction}

func (m Metric) Valid() bool {
	for _, k := range Metrics {
		if k == m {
			return true
		}
	}
	return false
}

// Title and axis label of the chart of m.
func (m Metric) Title() string {
	switch m {
	case Altitude:
		return "Altitude vs Time"
	case HorizontalVelocity:
		return "Horizontal Speed vs Time"
	case VerticalVelocity:
		return "Vertical Velocity vs Time"
	case Direction:
		return "Direction Analysis"
	}
	return string(m)
}

func (m Metric) Label() string {
	switch m {
	case Altitude:
		return "Altitude (m)"
	case HorizontalVelocity:
		return "Horizontal Speed (km/h)"
	case VerticalVelocity:
		return "Vertical Velocity (m/s)"
	case Direction:
		return "Direction (°)"
	}
	return string(m)
}

func (m Metric) value(s app.Sample) float64 {
	switch m {
	case HorizontalVelocity:
		return s.HorizontalVelocity
	case VerticalVelocity:
		return s.VerticalVelocity
	case Direction:
		return s.Direction
	}
	return s.Altitude
}

// Point - x is minutes since launch
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Series - one flight's line on a chart
type Series struct {
	ID     string  `json:"id"`
	Label  string  `json:"label"`
	Color  string  `json:"color"`
	Points []Point `json:"data"`
}

// BuildSeries returns one series per flight for metric m.
func BuildSeries(flights []*app.Flight, m Metric) []Series {
	result := make([]Series, 0, len(flights))
	for _, f := range flights {
		if f.Len() == 0 {
			continue
		}
		start := f.Samples[0].Timestamp
		points := make([]Point, 0, f.Len())
		for _, s := range f.Samples {
			points = append(points, Point{
				X: s.Timestamp.Sub(start).Minutes(),
				Y: m.value(s),
			})
		}
		result = append(result, Series{
			ID:     f.ID,
			Label:  f.Name,
			Color:  f.Color.String(),
			Points: points,
		})
	}
	return result
}
