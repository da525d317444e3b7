package reconcile

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/francois-poidevin/sondetracker/internal/app/metrics"
	"github.com/francois-poidevin/sondetracker/internal/app/source"
	"github.com/jonboulle/clockwork"
	"github.com/sirupsen/logrus"
)

// DefaultInterval is the polling period of the reconciliation loop.
const DefaultInterval = time.Second

// State of the polling loop.
type State int32

const (
	Idle State = iota
	Polling
	CycleRunning
	Stopped
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Polling:
		return "polling"
	case CycleRunning:
		return "cycle-running"
	case Stopped:
		return "stopped"
	}
	return "unknown"
}

// Scheduler drives a Reconciler on a fixed interval. At most one cycle runs
// at any instant: a tick that fires while a cycle is in progress is
// dropped.
type Scheduler struct {
	Log      *logrus.Logger
	Clock    clockwork.Clock
	Interval time.Duration
	Metrics  *metrics.Collector

	rec *Reconciler

	mu     sync.Mutex // serializes Start and Stop
	cancel context.CancelFunc
	loopWg sync.WaitGroup
	done   chan struct{}

	running atomic.Bool
	state   atomic.Int32

	errMu sync.Mutex
	err   error
}

func NewScheduler(log *logrus.Logger, clock clockwork.Clock, interval time.Duration, rec *Reconciler) *Scheduler {
	if interval <= 0 {
		interval = DefaultInterval
	}
	s := &Scheduler{
		Log:      log,
		Clock:    clock,
		Interval: interval,
		Metrics:  rec.Metrics,
		rec:      rec,
	}
	s.setState(Idle)
	return s
}

// Start selects src: any running loop is disarmed, the store and cache are
// reset, one unconditional cycle runs synchronously, then the timer is
// armed. An unavailable source is returned and leaves the scheduler
// Stopped without arming the timer.
func (s *Scheduler) Start(ctx context.Context, src source.Source) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.stopLocked()
	s.setErr(nil)
	s.rec.Reset(src)

	s.running.Store(true)
	s.setState(CycleRunning)
	_, err := s.rec.Cycle(ctx, true)
	s.running.Store(false)
	if err != nil {
		if errors.Is(err, source.ErrUnavailable) || ctx.Err() != nil {
			s.setErr(err)
			s.setState(Stopped)
			s.Log.WithContext(ctx).WithFields(logrus.Fields{
				"source": src.String(),
				"Error":  err,
			}).Error("Source unavailable, polling not started")
			return err
		}
		s.Log.WithContext(ctx).WithFields(logrus.Fields{
			"source": src.String(),
			"Error":  err,
		}).Error("Initial cycle failed")
	}

	loopCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.done = make(chan struct{})
	ticker := s.Clock.NewTicker(s.Interval)
	s.setState(Polling)

	s.loopWg.Add(1)
	go s.loop(loopCtx, cancel, ticker, s.done)

	s.Log.WithContext(ctx).WithFields(logrus.Fields{
		"source":   src.String(),
		"interval": s.Interval,
	}).Info("Polling started")
	return nil
}

// Stop disarms the timer and waits for an in-flight cycle to return.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.stopLocked()
}

func (s *Scheduler) stopLocked() {
	if s.cancel == nil {
		return
	}
	s.cancel()
	s.loopWg.Wait()
	s.cancel = nil
	s.setState(Stopped)
}

// Done is closed when the current polling loop exits, either on Stop or
// because the source became unavailable. It is nil before the first
// successful Start.
func (s *Scheduler) Done() <-chan struct{} {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.done
}

// Err returns why the loop stopped on its own, if it did.
func (s *Scheduler) Err() error {
	s.errMu.Lock()
	defer s.errMu.Unlock()

	return s.err
}

// Source is the currently selected source, nil before the first Start.
func (s *Scheduler) Source() source.Source {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.rec.Source()
}

func (s *Scheduler) State() State {
	return State(s.state.Load())
}

func (s *Scheduler) loop(ctx context.Context, cancel context.CancelFunc, ticker clockwork.Ticker, done chan struct{}) {
	var cycles sync.WaitGroup
	defer s.loopWg.Done()
	defer close(done)
	defer cycles.Wait()
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.Chan():
			if !s.running.CompareAndSwap(false, true) {
				s.Metrics.SkippedTicks.Inc()
				s.Log.WithContext(ctx).Debug("Cycle still running, tick skipped")
				continue
			}
			cycles.Add(1)
			go func() {
				defer cycles.Done()
				defer s.running.Store(false)
				s.tick(ctx, cancel)
			}()
		}
	}
}

func (s *Scheduler) tick(ctx context.Context, cancel context.CancelFunc) {
	s.setState(CycleRunning)
	_, err := s.rec.Cycle(ctx, false)
	switch {
	case ctx.Err() != nil:
		return
	case errors.Is(err, source.ErrUnavailable):
		s.setErr(err)
		s.setState(Stopped)
		s.Log.WithContext(ctx).WithFields(logrus.Fields{
			"Error": err,
		}).Error("Source unavailable, polling stopped")
		cancel()
		return
	case err != nil:
		s.Log.WithContext(ctx).WithFields(logrus.Fields{
			"Error": err,
		}).Error("Cycle failed")
	}
	s.setState(Polling)
}

func (s *Scheduler) setState(st State) {
	s.state.Store(int32(st))
	s.Metrics.State.Set(float64(st))
}

func (s *Scheduler) setErr(err error) {
	s.errMu.Lock()
	defer s.errMu.Unlock()

	s.err = err
}
