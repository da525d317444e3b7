package db

import (
	"context"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/francois-poidevin/sondetracker/internal/app"
	"github.com/francois-poidevin/sondetracker/internal/app/store"
	"github.com/lib/pq"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConnInfo(t *testing.T) {
	conf := Configuration{Host: "172.17.0.2", Port: 5432, User: "postgres", Password: "secret", Dbname: "sondes"}
	assert.Equal(t, "host=172.17.0.2 port=5432 user=postgres password=secret dbname=sondes sslmode=disable", ConnInfo(conf))

	conf.Sslmode = "require"
	assert.True(t, strings.HasSuffix(ConnInfo(conf), "sslmode=require"))
}

func TestSchemaSQL(t *testing.T) {
	stmts := schemaSQL()
	assert.Len(t, stmts, 4)
	for _, stmt := range stmts {
		assert.Contains(t, stmt, schemaname)
	}
	assert.Contains(t, stmts[2], "geometry(Point,4326)")
	assert.Equal(t, 15, strings.Count(upsertFlightSQL(), "$"))
	assert.Contains(t, stmts[1], "geometry(Polygon,4326)")
	assert.Contains(t, deleteSamplesSQL(), "flight_id = $1")
}

func TestCopyStatement(t *testing.T) {
	stmt := pq.CopyInSchema(schemaname, sampletable, sampleColumns...)
	assert.True(t, strings.HasPrefix(stmt, `COPY "sondetracker"."sample"`))
	assert.Contains(t, stmt, `"geom"`)
}

func TestSinkWithoutConnection(t *testing.T) {
	log := logrus.New()
	log.Out = io.Discard
	sinker := New(log)

	assert.Error(t, sinker.Init(context.Background(), "not a configuration"))
	assert.Error(t, sinker.Sink(context.Background(), time.Now(), store.New()))
}

// mirror records every planned write as done, the way Sink does.
func mirror(s *PostGreSinker, st *store.Store, todo changes) {
	for _, id := range todo.stale {
		delete(s.written, id)
	}
	for _, f := range append(todo.rewrite, todo.activation...) {
		s.written[f.ID] = mirrored{flight: f, active: st.IsActive(f.ID)}
	}
}

func TestPlan(t *testing.T) {
	sinker := New(logrus.New()).(*PostGreSinker)
	st := store.New()
	a := &app.Flight{ID: "a", Samples: make([]app.Sample, 2)}
	b := &app.Flight{ID: "b", Samples: make([]app.Sample, 1)}
	st.Insert(a)
	st.Insert(b)

	todo := sinker.plan(st)
	assert.Equal(t, []*app.Flight{a, b}, todo.rewrite)
	assert.Empty(t, todo.activation)
	assert.Empty(t, todo.stale)
	mirror(sinker, st, todo)

	assert.Equal(t, changes{}, sinker.plan(st))

	// only the flag moved
	require.NoError(t, st.Deactivate("b"))
	todo = sinker.plan(st)
	assert.Empty(t, todo.rewrite)
	assert.Equal(t, []*app.Flight{b}, todo.activation)
	mirror(sinker, st, todo)
	assert.False(t, sinker.written["b"].active)
	assert.Equal(t, changes{}, sinker.plan(st))

	// a new record wins over the flag
	a2 := &app.Flight{ID: "a", Samples: make([]app.Sample, 3)}
	require.NoError(t, st.Replace(a2))
	require.NoError(t, st.Deactivate("a"))
	todo = sinker.plan(st)
	assert.Equal(t, []*app.Flight{a2}, todo.rewrite)
	assert.Empty(t, todo.activation)
	mirror(sinker, st, todo)

	// a new source empties the store
	st.Reset()
	c := &app.Flight{ID: "c", Samples: make([]app.Sample, 1)}
	st.Insert(c)
	todo = sinker.plan(st)
	assert.Equal(t, []string{"a", "b"}, todo.stale)
	assert.Equal(t, []*app.Flight{c}, todo.rewrite)
	mirror(sinker, st, todo)
	assert.Len(t, sinker.written, 1)
	assert.NotContains(t, sinker.written, "a")
}

func TestActivationSQL(t *testing.T) {
	assert.Equal(t, "UPDATE sondetracker.flight SET active = $2 WHERE id = $1", updateActiveSQL())
	assert.Equal(t, "DELETE FROM sondetracker.flight WHERE id = $1", deleteFlightSQL())
}
