package app

import (
	"context"
	"time"

	"github.com/francois-poidevin/sondetracker/internal/app/tools"
)

// LogExtension is the suffix of radiosonde telemetry files.
const LogExtension = ".log"

//Sample - one radiosonde telemetry reading, immutable once parsed
type Sample struct {
	Timestamp          time.Time `json:"timestamp"`
	Lat                float64   `json:"lat"`
	Lon                float64   `json:"lon"`
	Altitude           float64   `json:"altitude"`           // m
	HorizontalVelocity float64   `json:"horizontalVelocity"` // km/h
	VerticalVelocity   float64   `json:"verticalVelocity"`   // m/s, signed
	Direction          float64   `json:"direction"`          // degrees
}

//Flight - one balloon ascent. A Flight is never mutated once stored; an update
//substitutes a new value at the same ID.
type Flight struct {
	ID       string    `json:"id"`
	Name     string    `json:"name"`
	Filename string    `json:"filename"`
	Color    tools.HSL `json:"color"`
	Samples  []Sample  `json:"samples,omitempty"`

	LaunchTime      time.Time `json:"launchTime"`
	MaxAltitude     float64   `json:"maxAltitude"`     // m
	MaxSpeed        float64   `json:"maxSpeed"`        // km/h
	Duration        float64   `json:"duration"`        // minutes
	Distance        float64   `json:"distance"`        // km
	CurrentSpeed    float64   `json:"currentSpeed"`    // km/h
	CurrentAltitude float64   `json:"currentAltitude"` // m
	AscentRate      float64   `json:"ascentRate"`      // m/s
}

// Len returns the number of samples of the flight.
func (f *Flight) Len() int {
	return len(f.Samples)
}

// Bounds returns the box covering every sample of the flight.
func (f *Flight) Bounds() tools.Bbox {
	b := tools.EmptyBbox()
	for _, s := range f.Samples {
		b = b.Extend(s.Lat, s.Lon)
	}
	return b
}

// FlightReader is the read-only view consumers get of the flight store.
type FlightReader interface {
	Flights() []*Flight
	ActiveFlights() []*Flight
	IsActive(id string) bool
}

// Notifier receives the single "state changed" signal emitted after a
// reconciliation cycle. It carries no payload.
type Notifier interface {
	Notify(ctx context.Context)
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(ctx context.Context)

// Notify calls f(ctx).
func (f NotifierFunc) Notify(ctx context.Context) {
	f(ctx)
}

// Sinker consumes the flight store after each change notification.
type Sinker interface {
	Init(ctx context.Context, params interface{}) error
	Sink(ctx context.Context, t time.Time, flights FlightReader) error
}
