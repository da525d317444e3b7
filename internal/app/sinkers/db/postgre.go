package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/lib/pq"

	"github.com/francois-poidevin/sondetracker/internal/app"
	"github.com/francois-poidevin/sondetracker/internal/app/tools"
	"github.com/sirupsen/logrus"
)

const (
	schemaname  = "sondetracker"
	flighttable = "flight"
	sampletable = "sample"
)

var sampleColumns = []string{
	"flight_id", "ts", "lat", "lon", "altitude", "vh", "vv", "direction", "geom",
}

// PostGreSinker mirrors flights and their samples into Postgres/PostGIS. A
// flight is written again only when the store holds a new record for it;
// an activation change alone updates the flag.
type PostGreSinker struct {
	Log     *logrus.Logger
	db      *sql.DB
	written map[string]mirrored
}

// mirrored is what the database holds for a flight.
type mirrored struct {
	flight *app.Flight
	active bool
}

// changes lists what a Sink must write to bring the mirror to the store.
type changes struct {
	rewrite    []*app.Flight
	activation []*app.Flight
	stale      []string
}

func New(log *logrus.Logger) app.Sinker {
	//init the logger here
	return &PostGreSinker{Log: log, written: map[string]mirrored{}}
}

// ConnInfo renders the lib/pq connection string.
func ConnInfo(parameters Configuration) string {
	sslmode := parameters.Sslmode
	if sslmode == "" {
		sslmode = "disable"
	}
	return fmt.Sprintf("host=%s port=%d user=%s "+
		"password=%s dbname=%s sslmode=%s",
		parameters.Host, parameters.Port, parameters.User, parameters.Password, parameters.Dbname, sslmode)
}

func (s *PostGreSinker) Init(ctx context.Context, params interface{}) error {
	parameters, ok := params.(Configuration)
	if !ok {
		return errors.New("db sinker needs a db.Configuration")
	}

	s.Log.WithContext(ctx).WithFields(logrus.Fields{
		"host":   parameters.Host,
		"port":   parameters.Port,
		"dbName": parameters.Dbname,
	}).Info("Init DB ...")

	db, err := sql.Open("postgres", ConnInfo(parameters))
	if err != nil {
		return err
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return err
	}
	s.Log.WithContext(ctx).Info("Successfully connected : " + parameters.Host)
	s.db = db

	for _, stmt := range schemaSQL() {
		s.Log.WithContext(ctx).WithFields(logrus.Fields{
			"SQL": stmt,
		}).Debug("create schema")
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}

func (s *PostGreSinker) Sink(ctx context.Context, t time.Time, flights app.FlightReader) error {
	if s.db == nil {
		return errors.New("No database connection for storing data")
	}

	todo := s.plan(flights)

	// flights gone from the store, after a new source was selected
	for _, id := range todo.stale {
		if _, err := s.db.ExecContext(ctx, deleteFlightSQL(), id); err != nil {
			return fmt.Errorf("delete flight %s: %w", id, err)
		}
		delete(s.written, id)
	}

	nbRow := 0
	for _, f := range todo.rewrite {
		active := flights.IsActive(f.ID)
		if err := s.writeFlight(ctx, f, active); err != nil {
			return fmt.Errorf("write flight %s: %w", f.ID, err)
		}
		s.written[f.ID] = mirrored{flight: f, active: active}
		nbRow += f.Len()
	}

	for _, f := range todo.activation {
		active := flights.IsActive(f.ID)
		if _, err := s.db.ExecContext(ctx, updateActiveSQL(), f.ID, active); err != nil {
			return fmt.Errorf("update flight %s: %w", f.ID, err)
		}
		s.written[f.ID] = mirrored{flight: f, active: active}
	}

	if len(todo.rewrite)+len(todo.activation)+len(todo.stale) > 0 {
		s.Log.WithContext(ctx).WithFields(logrus.Fields{
			"Flights":       len(todo.rewrite),
			"Rows Affected": nbRow,
			"Activations":   len(todo.activation),
			"Deleted":       len(todo.stale),
			"at":            t,
		}).Info("Insert in DB ...")
	}
	return nil
}

func (s *PostGreSinker) plan(flights app.FlightReader) changes {
	var todo changes
	current := map[string]bool{}
	for _, f := range flights.Flights() {
		current[f.ID] = true
		prev, ok := s.written[f.ID]
		switch {
		case !ok || prev.flight != f:
			todo.rewrite = append(todo.rewrite, f)
		case prev.active != flights.IsActive(f.ID):
			todo.activation = append(todo.activation, f)
		}
	}
	for id := range s.written {
		if !current[id] {
			todo.stale = append(todo.stale, id)
		}
	}
	sort.Strings(todo.stale)
	return todo
}

func (s *PostGreSinker) writeFlight(ctx context.Context, f *app.Flight, active bool) error {
	txn, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer txn.Rollback()

	if _, err := txn.ExecContext(ctx, upsertFlightSQL(),
		f.ID, f.Name, f.Filename, f.Color.String(), active, f.LaunchTime,
		f.MaxAltitude, f.MaxSpeed, f.Duration, f.Distance,
		f.CurrentSpeed, f.CurrentAltitude, f.AscentRate, f.Len(),
		"SRID=4326;"+tools.BboxToWKT(f.Bounds()),
	); err != nil {
		return err
	}

	if _, err := txn.ExecContext(ctx, deleteSamplesSQL(), f.ID); err != nil {
		return err
	}

	stmt, err := txn.PrepareContext(ctx, pq.CopyInSchema(schemaname, sampletable, sampleColumns...))
	if err != nil {
		return err
	}
	for _, p := range f.Samples {
		if _, err := stmt.ExecContext(ctx,
			f.ID, p.Timestamp, p.Lat, p.Lon, p.Altitude,
			p.HorizontalVelocity, p.VerticalVelocity, p.Direction,
			"SRID=4326;"+tools.PointToWKT(p.Lat, p.Lon),
		); err != nil {
			stmt.Close()
			return err
		}
	}
	if _, err := stmt.ExecContext(ctx); err != nil {
		stmt.Close()
		return err
	}
	if err := stmt.Close(); err != nil {
		return err
	}

	return txn.Commit()
}

func schemaSQL() []string {
	return []string{
		"CREATE SCHEMA IF NOT EXISTS " + schemaname,
		"CREATE TABLE IF NOT EXISTS " + schemaname + "." + flighttable + " (" +
			"id varchar(40) PRIMARY KEY, name varchar(255) NOT NULL, filename text NOT NULL, " +
			"color varchar(40), active boolean, launch_time timestamp, " +
			"max_altitude double precision, max_speed double precision, duration double precision, " +
			"distance double precision, current_speed double precision, current_altitude double precision, " +
			"ascent_rate double precision, points integer, bounds geometry(Polygon,4326))",
		"CREATE TABLE IF NOT EXISTS " + schemaname + "." + sampletable + " (" +
			"flight_id varchar(40) NOT NULL REFERENCES " + schemaname + "." + flighttable + "(id) ON DELETE CASCADE, " +
			"ts timestamp NOT NULL, lat double precision, lon double precision, altitude double precision, " +
			"vh double precision, vv double precision, direction double precision, geom geometry(Point,4326))",
		"CREATE INDEX IF NOT EXISTS sample_flight_ts ON " + schemaname + "." + sampletable + " (flight_id, ts)",
	}
}

func upsertFlightSQL() string {
	return "INSERT INTO " + schemaname + "." + flighttable + " (id, name, filename, color, active, launch_time, " +
		"max_altitude, max_speed, duration, distance, current_speed, current_altitude, ascent_rate, points, bounds) " +
		"VALUES($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, ST_GeomFromEWKT($15)) " +
		"ON CONFLICT (id) DO UPDATE SET name = EXCLUDED.name, filename = EXCLUDED.filename, " +
		"color = EXCLUDED.color, active = EXCLUDED.active, launch_time = EXCLUDED.launch_time, " +
		"max_altitude = EXCLUDED.max_altitude, max_speed = EXCLUDED.max_speed, duration = EXCLUDED.duration, " +
		"distance = EXCLUDED.distance, current_speed = EXCLUDED.current_speed, " +
		"current_altitude = EXCLUDED.current_altitude, ascent_rate = EXCLUDED.ascent_rate, points = EXCLUDED.points, " +
		"bounds = EXCLUDED.bounds"
}

func updateActiveSQL() string {
	return "UPDATE " + schemaname + "." + flighttable + " SET active = $2 WHERE id = $1"
}

// samples follow through ON DELETE CASCADE
func deleteFlightSQL() string {
	return "DELETE FROM " + schemaname + "." + flighttable + " WHERE id = $1"
}

func deleteSamplesSQL() string {
	return "DELETE FROM " + schemaname + "." + sampletable + " WHERE flight_id = $1"
}
