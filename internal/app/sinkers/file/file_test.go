package file

import (
	"context"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/francois-poidevin/sondetracker/internal/app"
	"github.com/francois-poidevin/sondetracker/internal/app/store"
	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileSinker(t *testing.T) {
	log := logrus.New()
	log.Out = io.Discard
	fs := afero.NewMemMapFs()

	sinker := New(log, fs)
	require.NoError(t, sinker.Init(context.Background(), Configuration{Output: "/out/sondes.csv"}))

	st := store.New()
	ts := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	st.Insert(&app.Flight{ID: "a", Name: "sonde_A", Samples: []app.Sample{{Timestamp: ts, Lat: 44, Lon: 26}}})
	st.Insert(&app.Flight{ID: "b", Name: "sonde_B", Samples: []app.Sample{{Timestamp: ts, Lat: 45, Lon: 27}}})
	require.NoError(t, st.Deactivate("b"))

	require.NoError(t, sinker.Sink(context.Background(), ts, st))

	b, err := afero.ReadFile(fs, "/out/sondes.csv")
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(b)), "\n")
	require.Len(t, lines, 2)
	assert.True(t, strings.HasPrefix(lines[0], "Sonde ID,Timestamp,"))
	assert.True(t, strings.HasPrefix(lines[1], "sonde_A,2025-01-01T00:00:00.000Z,44,26,"))

	exists, err := afero.Exists(fs, "/out/sondes.csv.tmp")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestFileSinkerInit(t *testing.T) {
	log := logrus.New()
	log.Out = io.Discard
	sinker := New(log, afero.NewMemMapFs())

	assert.Error(t, sinker.Init(context.Background(), "nope"))
	assert.Error(t, sinker.Init(context.Background(), Configuration{}))
	assert.Error(t, sinker.Sink(context.Background(), time.Now(), store.New()))
}
