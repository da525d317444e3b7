package reconcile

import (
	"context"
	"fmt"
	"time"

	"github.com/francois-poidevin/sondetracker/internal/app"
	"github.com/francois-poidevin/sondetracker/internal/app/flight"
	"github.com/francois-poidevin/sondetracker/internal/app/metrics"
	"github.com/francois-poidevin/sondetracker/internal/app/parser"
	"github.com/francois-poidevin/sondetracker/internal/app/source"
	"github.com/francois-poidevin/sondetracker/internal/app/store"
	"github.com/francois-poidevin/sondetracker/internal/app/tools"
	"github.com/francois-poidevin/sondetracker/internal/app/watch"
	"github.com/sirupsen/logrus"
)

// Reconciler merges the content of a source into a flight store, one cycle
// at a time. A Reconciler must not run two cycles concurrently; the
// Scheduler guarantees that.
type Reconciler struct {
	Log      *logrus.Logger
	Store    *store.Store
	Cache    *watch.Cache
	Parser   *parser.Parser
	Notifier app.Notifier
	Metrics  *metrics.Collector

	// VerifyContent disables the modification time short-circuit so the
	// fingerprint is checked on every cycle.
	VerifyContent bool
	// ReadTimeout bounds a single file read; zero means no bound.
	ReadTimeout time.Duration

	source source.Source
}

func New(log *logrus.Logger, st *store.Store, notifier app.Notifier) *Reconciler {
	return &Reconciler{
		Log:      log,
		Store:    st,
		Cache:    watch.NewCache(),
		Parser:   parser.New(log),
		Notifier: notifier,
		Metrics:  metrics.New(nil),
	}
}

// Reset selects a new source and empties the store and the cache.
func (r *Reconciler) Reset(src source.Source) {
	r.source = src
	r.Store.Reset()
	r.Cache.Reset()
	r.updateGauges()
}

// Source returns the selected source, nil when none is.
func (r *Reconciler) Source() source.Source {
	return r.source
}

// Cycle runs one reconciliation pass over the selected source. On the
// initial pass every file is parsed regardless of the cache and consumers
// are notified even when nothing changed. Per-file failures are logged and
// skipped; only a failure to list the source is returned.
func (r *Reconciler) Cycle(ctx context.Context, initial bool) (bool, error) {
	if r.source == nil {
		return false, fmt.Errorf("%w: no source selected", source.ErrUnavailable)
	}

	start := time.Now()
	defer func() {
		r.Metrics.Cycles.Inc()
		r.Metrics.CycleDuration.Observe(time.Since(start).Seconds())
	}()

	handles, err := r.source.List(ctx)
	if err != nil {
		return false, err
	}

	changed := false
	for _, h := range handles {
		if err := ctx.Err(); err != nil {
			return changed, err
		}
		fileChanged, err := r.reconcileFile(ctx, h, initial)
		if err != nil {
			r.Metrics.FileErrors.Inc()
			r.Log.WithContext(ctx).WithFields(logrus.Fields{
				"file":  h.Name(),
				"Error": err,
			}).Error("Unable to process file")
			continue
		}
		changed = changed || fileChanged
	}

	r.updateGauges()
	if changed {
		r.Metrics.ChangedCycles.Inc()
	}

	r.Log.WithContext(ctx).WithFields(logrus.Fields{
		"files":   len(handles),
		"changed": changed,
		"initial": initial,
		"flights": r.Store.Len(),
	}).Debug("Cycle done")

	if changed || initial {
		r.Notifier.Notify(ctx)
	}
	return changed, nil
}

func (r *Reconciler) reconcileFile(ctx context.Context, h source.FileHandle, initial bool) (bool, error) {
	name := h.Name()

	st, err := h.Stat(ctx)
	if err != nil {
		return false, err
	}
	if !initial && !r.VerifyContent && r.Cache.SameModTime(name, st.ModifiedAt) {
		return false, nil
	}

	content, err := r.read(ctx, h)
	if err != nil {
		return false, err
	}
	r.Metrics.ParsedFiles.Inc()

	entry := watch.Entry{ModifiedAt: st.ModifiedAt, Fingerprint: tools.Fingerprint(content)}
	defer r.Cache.Put(name, entry)

	samples := r.Parser.Parse(ctx, content, name)
	if len(samples) == 0 {
		return false, nil
	}
	candidate := flight.Build(name, samples)

	prev, found := r.Store.Get(candidate.ID)
	if !found {
		r.Store.Insert(candidate)
		r.Log.WithContext(ctx).WithFields(logrus.Fields{
			"file":    name,
			"flight":  candidate.ID,
			"samples": candidate.Len(),
		}).Info("New flight")
		return true, nil
	}

	cached, known := r.Cache.Get(name)
	if !watch.Changed(cached, known, entry, prev.Len(), candidate.Len()) {
		return false, nil
	}
	if err := r.Store.Replace(candidate); err != nil {
		return false, err
	}
	r.Log.WithContext(ctx).WithFields(logrus.Fields{
		"file":    name,
		"flight":  candidate.ID,
		"samples": candidate.Len(),
		"before":  prev.Len(),
	}).Info("Flight updated")
	return true, nil
}

func (r *Reconciler) read(ctx context.Context, h source.FileHandle) (string, error) {
	if r.ReadTimeout <= 0 {
		return h.ReadText(ctx)
	}

	ctx, cancel := context.WithTimeout(ctx, r.ReadTimeout)
	defer cancel()

	type result struct {
		text string
		err  error
	}
	ch := make(chan result, 1)
	go func() {
		text, err := h.ReadText(ctx)
		ch <- result{text, err}
	}()

	select {
	case res := <-ch:
		return res.text, res.err
	case <-ctx.Done():
		return "", fmt.Errorf("read %s: %w", h.Name(), ctx.Err())
	}
}

func (r *Reconciler) updateGauges() {
	r.Metrics.Flights.Set(float64(r.Store.Len()))
	r.Metrics.ActiveFlights.Set(float64(r.Store.ActiveLen()))
}
