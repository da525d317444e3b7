package internal

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/francois-poidevin/sondetracker/config"
	"github.com/francois-poidevin/sondetracker/internal/app"
	"github.com/francois-poidevin/sondetracker/internal/app/export"
	"github.com/francois-poidevin/sondetracker/internal/app/metrics"
	"github.com/francois-poidevin/sondetracker/internal/app/reconcile"
	"github.com/francois-poidevin/sondetracker/internal/app/sinkers"
	pgSinker "github.com/francois-poidevin/sondetracker/internal/app/sinkers/db"
	fileSinker "github.com/francois-poidevin/sondetracker/internal/app/sinkers/file"
	stdoutSinker "github.com/francois-poidevin/sondetracker/internal/app/sinkers/stdout"
	"github.com/francois-poidevin/sondetracker/internal/app/source"
	"github.com/francois-poidevin/sondetracker/internal/app/store"
	"github.com/jonboulle/clockwork"
	"github.com/mitchellh/go-homedir"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"
)

// Engine - a flight store kept in sync with a source and fanned out to a sinker
type Engine struct {
	Store      *store.Store
	Reconciler *reconcile.Reconciler
	Scheduler  *reconcile.Scheduler
	Registry   *prometheus.Registry
	// Notifier delivers to the configured sinker.
	Notifier app.Notifier
}

// NewEngine wires store, reconciler and scheduler around the configured
// sinker. Nothing is polled until Scheduler.Start.
func NewEngine(ctx context.Context,
	log *logrus.Logger,
	conf config.Configuration,
	fs afero.Fs,
	clock clockwork.Clock) (*Engine, error) {

	st := store.New()

	sinker, errSinker := newSinker(ctx, log, conf, fs)
	if errSinker != nil {
		return nil, errSinker
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())

	fanout := sinkers.NewFanout(log, clock, st, sinker)
	rec := reconcile.New(log, st, fanout)
	rec.Metrics = metrics.New(reg)
	rec.VerifyContent = conf.Sondetracker.Verifycontent
	rec.ReadTimeout = time.Duration(conf.Sondetracker.Readtimeout) * time.Second
	rec.Parser.SortByTime = conf.Sondetracker.Sortsamples

	interval := time.Duration(conf.Sondetracker.Refresh) * time.Second
	return &Engine{
		Store:      st,
		Reconciler: rec,
		Scheduler:  reconcile.NewScheduler(log, clock, interval, rec),
		Registry:   reg,
		Notifier:   fanout,
	}, nil
}

//Execute - start the worker
func Execute(ctx context.Context,
	log *logrus.Logger,
	conf config.Configuration) error {
	return execute(ctx, log, conf, afero.NewOsFs(), clockwork.NewRealClock())
}

func execute(ctx context.Context,
	log *logrus.Logger,
	conf config.Configuration,
	fs afero.Fs,
	clock clockwork.Clock) error {

	log.WithContext(ctx).WithFields(logrus.Fields{
		"source":            conf.Sondetracker.Source,
		"refreshTime (sec)": conf.Sondetracker.Refresh,
		"sortSamples":       conf.Sondetracker.Sortsamples,
		"verifyContent":     conf.Sondetracker.Verifycontent,
		"readTimeout (sec)": conf.Sondetracker.Readtimeout,
		"sinkerType":        conf.Sondetracker.Sinkertype,
		"outputFileName":    conf.Sondetracker.File.Output,
		"dbHost":            conf.Sondetracker.DB.Host,
		"dbPort":            conf.Sondetracker.DB.Port,
		"dbUser":            conf.Sondetracker.DB.User,
		"dbName":            conf.Sondetracker.DB.Dbname,
	}).Info("START with Configuration params: ")

	src, errSrc := OpenSource(fs, conf.Sondetracker.Source)
	if errSrc != nil {
		log.WithContext(ctx).WithFields(logrus.Fields{
			"Error": errSrc,
		}).Error("Unable to open source")
		return errSrc
	}

	engine, errEngine := NewEngine(ctx, log, conf, fs, clock)
	if errEngine != nil {
		return errEngine
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	sigCatch(ctx, cancel, log)

	if errStart := engine.Scheduler.Start(ctx, src); errStart != nil {
		if ctx.Err() != nil {
			return nil
		}
		return errStart
	}
	done := engine.Scheduler.Done()

	select {
	case <-ctx.Done():
		engine.Scheduler.Stop()
		log.WithContext(ctx).Info("Polling stopped")
		return nil
	case <-done:
		return engine.Scheduler.Err()
	}
}

// OpenSource expands ~ in location and selects the matching source.
func OpenSource(fs afero.Fs, location string) (source.Source, error) {
	expanded, errExpand := homedir.Expand(location)
	if errExpand != nil {
		return nil, fmt.Errorf("%w: %s: %v", source.ErrUnavailable, location, errExpand)
	}
	return source.Open(fs, expanded)
}

// Export runs one unconditional cycle over the configured source and writes
// every flight found as CSV. The configured sinker is not involved.
func Export(ctx context.Context,
	log *logrus.Logger,
	conf config.Configuration,
	fs afero.Fs,
	w io.Writer) error {

	src, errSrc := OpenSource(fs, conf.Sondetracker.Source)
	if errSrc != nil {
		return errSrc
	}

	st := store.New()
	rec := reconcile.New(log, st, app.NotifierFunc(func(context.Context) {}))
	rec.ReadTimeout = time.Duration(conf.Sondetracker.Readtimeout) * time.Second
	rec.Parser.SortByTime = conf.Sondetracker.Sortsamples
	rec.Reset(src)

	if _, errCycle := rec.Cycle(ctx, true); errCycle != nil {
		return errCycle
	}

	log.WithContext(ctx).WithFields(logrus.Fields{
		"source":  src.String(),
		"flights": st.Len(),
	}).Debug("Exporting flights")
	return export.WriteCSV(w, st.Flights())
}

func newSinker(ctx context.Context, log *logrus.Logger, conf config.Configuration, fs afero.Fs) (app.Sinker, error) {
	var sinker app.Sinker
	var params interface{}

	if conf.Sondetracker.Sinkertype == "FILE" {
		log.WithContext(ctx).Info("Initiate File Sinker")
		sinker = fileSinker.New(log, fs)
		params = conf.Sondetracker.File
	} else if conf.Sondetracker.Sinkertype == "STDOUT" {
		log.WithContext(ctx).Info("Initiate stdOut Sinker")
		sinker = stdoutSinker.New(log)
	} else if conf.Sondetracker.Sinkertype == "DB" {
		log.WithContext(ctx).Info("Initiate DB Sinker")
		sinker = pgSinker.New(log)
		params = conf.Sondetracker.DB
	} else {
		return nil, errors.New("Wrong sinker specified")
	}

	errInit := sinker.Init(ctx, params)
	if errInit != nil {
		log.WithContext(ctx).Error(errInit)
		return nil, errInit
	}
	return sinker, nil
}

func sigCatch(ctx context.Context, cancel context.CancelFunc, log *logrus.Logger) {
	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc,
		syscall.SIGHUP,
		syscall.SIGINT,
		syscall.SIGTERM,
		syscall.SIGQUIT)
	go func() {
		defer signal.Stop(sigc)
		select {
		case s := <-sigc:
			log.WithContext(ctx).Info("Signal: " + s.String())
			cancel()
		case <-ctx.Done():
		}
	}()
}
