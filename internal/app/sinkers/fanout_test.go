package sinkers

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/francois-poidevin/sondetracker/internal/app"
	"github.com/francois-poidevin/sondetracker/internal/app/store"
	"github.com/jonboulle/clockwork"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
)

type recordingSinker struct {
	calls []time.Time
	err   error
}

func (r *recordingSinker) Init(ctx context.Context, params interface{}) error { return nil }

func (r *recordingSinker) Sink(ctx context.Context, t time.Time, flights app.FlightReader) error {
	r.calls = append(r.calls, t)
	return r.err
}

func TestFanout(t *testing.T) {
	log := logrus.New()
	log.Out = io.Discard
	clock := clockwork.NewFakeClockAt(time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC))

	failing := &recordingSinker{err: errors.New("disk full")}
	ok := &recordingSinker{}
	f := NewFanout(log, clock, store.New(), failing, ok)

	f.Notify(context.Background())
	clock.Advance(time.Minute)
	f.Notify(context.Background())

	assert.Len(t, failing.calls, 2)
	assert.Equal(t, []time.Time{
		time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2025, 1, 1, 0, 1, 0, 0, time.UTC),
	}, ok.calls)
}
