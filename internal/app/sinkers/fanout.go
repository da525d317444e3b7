package sinkers

import (
	"context"
	"sync"

	"github.com/francois-poidevin/sondetracker/internal/app"
	"github.com/jonboulle/clockwork"
	"github.com/sirupsen/logrus"
)

// Fanout turns a change notification into a Sink call on every sinker.
// Sinker failures are logged and never reach the reconciliation cycle.
// Notifications come from cycles and from activation changes; they are
// delivered one at a time.
type Fanout struct {
	Log     *logrus.Logger
	Clock   clockwork.Clock
	Reader  app.FlightReader
	Sinkers []app.Sinker

	mu sync.Mutex
}

func NewFanout(log *logrus.Logger, clock clockwork.Clock, reader app.FlightReader, sinkers ...app.Sinker) *Fanout {
	return &Fanout{Log: log, Clock: clock, Reader: reader, Sinkers: sinkers}
}

func (f *Fanout) Notify(ctx context.Context) {
	f.mu.Lock()
	defer f.mu.Unlock()

	t := f.Clock.Now()
	for _, s := range f.Sinkers {
		if err := s.Sink(ctx, t, f.Reader); err != nil {
			f.Log.WithContext(ctx).WithFields(logrus.Fields{
				"Error": err,
			}).Error("Sinker failed")
		}
	}
}
