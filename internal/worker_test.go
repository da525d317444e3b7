package internal

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/francois-poidevin/sondetracker/config"
	"github.com/francois-poidevin/sondetracker/internal/app/reconcile"
	"github.com/francois-poidevin/sondetracker/internal/app/source"
	"github.com/jonboulle/clockwork"
	defaults "github.com/mcuadros/go-defaults"
	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sondeLog = "2025-01-01 00:00:00 | Lat: 48.0, Lon: 2.0, Alt: 100.0 m, vH: 10.0 km/h, vV: 1.0 m/s, Dir: 90.0\n" +
	"2025-01-01 00:01:00 | Lat: 48.01, Lon: 2.01, Alt: 200.0 m, vH: 12.0 km/h, vV: 1.5 m/s, Dir: 91.0\n"

func testSetup(t *testing.T) (*logrus.Logger, config.Configuration, afero.Fs) {
	t.Helper()
	log := logrus.New()
	log.Out = io.Discard

	conf := config.Configuration{}
	defaults.SetDefaults(&conf)
	conf.Sondetracker.Source = "/sondes"
	conf.Sondetracker.Sinkertype = "FILE"
	conf.Sondetracker.File.Output = "/out/sondes.csv"

	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/sondes/RS41-A.log", []byte(sondeLog), 0644))
	return log, conf, fs
}

func TestNewSinker(t *testing.T) {
	log, conf, fs := testSetup(t)
	ctx := context.Background()

	for _, kind := range []string{"FILE", "STDOUT"} {
		conf.Sondetracker.Sinkertype = kind
		sinker, err := newSinker(ctx, log, conf, fs)
		require.NoError(t, err, kind)
		assert.NotNil(t, sinker)
	}

	conf.Sondetracker.Sinkertype = "KAFKA"
	_, err := newSinker(ctx, log, conf, fs)
	assert.EqualError(t, err, "Wrong sinker specified")

	conf.Sondetracker.Sinkertype = "FILE"
	conf.Sondetracker.File.Output = ""
	_, err = newSinker(ctx, log, conf, fs)
	assert.Error(t, err)
}

func TestNewEngine(t *testing.T) {
	log, conf, fs := testSetup(t)
	conf.Sondetracker.Refresh = 3
	conf.Sondetracker.Verifycontent = true
	conf.Sondetracker.Readtimeout = 2
	conf.Sondetracker.Sortsamples = true

	engine, err := NewEngine(context.Background(), log, conf, fs, clockwork.NewFakeClock())
	require.NoError(t, err)
	t.Cleanup(engine.Scheduler.Stop)

	assert.Equal(t, 3*time.Second, engine.Scheduler.Interval)
	assert.True(t, engine.Reconciler.VerifyContent)
	assert.Equal(t, 2*time.Second, engine.Reconciler.ReadTimeout)
	assert.True(t, engine.Reconciler.Parser.SortByTime)
	assert.NotNil(t, engine.Notifier)

	src, err := OpenSource(fs, conf.Sondetracker.Source)
	require.NoError(t, err)
	require.NoError(t, engine.Scheduler.Start(context.Background(), src))
	assert.Equal(t, 1, engine.Store.Len())

	// the initial cycle notified the file sinker
	body, err := afero.ReadFile(fs, "/out/sondes.csv")
	require.NoError(t, err)
	assert.Contains(t, string(body), "RS41-A,")

	families, err := engine.Registry.Gather()
	require.NoError(t, err)
	names := map[string]bool{}
	for _, mf := range families {
		names[mf.GetName()] = true
	}
	assert.True(t, names["sondetracker_cycles_total"])
}

func TestExecuteStopsOnCancel(t *testing.T) {
	log, conf, fs := testSetup(t)
	ctx, cancel := context.WithCancel(context.Background())

	errc := make(chan error, 1)
	go func() { errc <- execute(ctx, log, conf, fs, clockwork.NewFakeClock()) }()

	assert.Eventually(t, func() bool {
		exists, _ := afero.Exists(fs, "/out/sondes.csv")
		return exists
	}, 2*time.Second, 5*time.Millisecond)
	cancel()

	select {
	case err := <-errc:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("execute did not return after cancel")
	}
}

func TestExecuteUnavailableSource(t *testing.T) {
	log, conf, fs := testSetup(t)
	conf.Sondetracker.Source = "/missing"

	err := execute(context.Background(), log, conf, fs, clockwork.NewFakeClock())
	assert.True(t, errors.Is(err, source.ErrUnavailable))
}

func TestExecuteSourceRevoked(t *testing.T) {
	log, conf, fs := testSetup(t)
	clock := clockwork.NewFakeClock()

	errc := make(chan error, 1)
	go func() { errc <- execute(context.Background(), log, conf, fs, clock) }()

	assert.Eventually(t, func() bool {
		exists, _ := afero.Exists(fs, "/out/sondes.csv")
		return exists
	}, 2*time.Second, 5*time.Millisecond)

	require.NoError(t, fs.RemoveAll("/sondes"))
	require.NoError(t, clock.BlockUntilContext(context.Background(), 1))
	clock.Advance(time.Duration(conf.Sondetracker.Refresh) * time.Second)

	select {
	case err := <-errc:
		assert.True(t, errors.Is(err, source.ErrUnavailable))
	case <-time.After(2 * time.Second):
		t.Fatal("execute did not return after the source disappeared")
	}
}

func TestExport(t *testing.T) {
	log, conf, fs := testSetup(t)
	require.NoError(t, afero.WriteFile(fs, "/sondes/RS41-B.log", []byte(""), 0644))

	var buf bytes.Buffer
	require.NoError(t, Export(context.Background(), log, conf, fs, &buf))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "Sonde ID,Timestamp,Latitude,Longitude,Altitude (m),Horizontal Speed (km/h),Vertical Speed (m/s),Direction (°)", lines[0])
	assert.True(t, strings.HasPrefix(lines[1], "RS41-A,"))

	conf.Sondetracker.Source = "/missing"
	assert.Error(t, Export(context.Background(), log, conf, fs, &buf))
}

func TestStateAfterEngineStop(t *testing.T) {
	log, conf, fs := testSetup(t)
	engine, err := NewEngine(context.Background(), log, conf, fs, clockwork.NewFakeClock())
	require.NoError(t, err)
	assert.Equal(t, reconcile.Idle, engine.Scheduler.State())

	src, err := OpenSource(fs, "/sondes")
	require.NoError(t, err)
	require.NoError(t, engine.Scheduler.Start(context.Background(), src))
	engine.Scheduler.Stop()
	assert.Equal(t, reconcile.Stopped, engine.Scheduler.State())
}
