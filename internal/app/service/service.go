package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/francois-poidevin/sondetracker/internal/app"
	"github.com/francois-poidevin/sondetracker/internal/app/export"
	"github.com/francois-poidevin/sondetracker/internal/app/reconcile"
	"github.com/francois-poidevin/sondetracker/internal/app/source"
	"github.com/francois-poidevin/sondetracker/internal/app/store"
	"github.com/francois-poidevin/sondetracker/internal/app/tools"
	"github.com/gorilla/mux"
	"github.com/mitchellh/go-homedir"
	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"
)

// Service is the dashboard API around a flight store and its polling loop.
type Service struct {
	Log       *logrus.Logger
	Fs        afero.Fs
	Store     *store.Store
	Scheduler *reconcile.Scheduler
	// Metrics serves /metrics when set.
	Metrics http.Handler
	// Notifier is told about activation changes so sinkers follow the
	// active set, not only file content.
	Notifier app.Notifier

	// ctx outlives requests; polling loops started over HTTP run under it.
	ctx context.Context
}

func New(ctx context.Context, log *logrus.Logger, fs afero.Fs, st *store.Store, sched *reconcile.Scheduler) *Service {
	return &Service{Log: log, Fs: fs, Store: st, Scheduler: sched, ctx: ctx}
}

type flightView struct {
	ID              string     `json:"id"`
	Name            string     `json:"name"`
	Color           string     `json:"color"`
	Active          bool       `json:"active"`
	Points          int        `json:"points"`
	LaunchTime      time.Time  `json:"launchTime"`
	MaxAltitude     float64    `json:"maxAltitude"`
	MaxSpeed        float64    `json:"maxSpeed"`
	Duration        float64    `json:"duration"`
	Distance        float64    `json:"distance"`
	CurrentSpeed    float64    `json:"currentSpeed"`
	CurrentAltitude float64    `json:"currentAltitude"`
	AscentRate      float64    `json:"ascentRate"`
	Bounds          tools.Bbox `json:"bounds"`
}

type flightsResponse struct {
	NbFlight int          `json:"nbFlight"`
	Data     []flightView `json:"data"`
}

type stateResponse struct {
	State   string `json:"state"`
	Source  string `json:"source,omitempty"`
	Flights int    `json:"flights"`
	Active  int    `json:"active"`
	Error   string `json:"error,omitempty"`
}

// Router mounts the API under /api/v1, plus /charts and /metrics.
func (s *Service) Router() *mux.Router {
	r := mux.NewRouter()

	api := r.PathPrefix("/api/v1").Subrouter()
	api.HandleFunc("/start", s.startService).Methods(http.MethodGet, http.MethodPost)
	api.HandleFunc("/stop", s.stopService).Methods(http.MethodGet, http.MethodPost)
	api.HandleFunc("/state", s.stateService).Methods(http.MethodGet)
	api.HandleFunc("/flights", s.flightsService).Methods(http.MethodGet)
	api.HandleFunc("/flights/{id}/toggle", s.activationService(s.Store.Toggle)).Methods(http.MethodPost)
	api.HandleFunc("/flights/{id}/activate", s.activationService(func(id string) (bool, error) {
		return true, s.Store.Activate(id)
	})).Methods(http.MethodPost)
	api.HandleFunc("/flights/{id}/deactivate", s.activationService(func(id string) (bool, error) {
		return false, s.Store.Deactivate(id)
	})).Methods(http.MethodPost)
	api.HandleFunc("/stats", s.statsService).Methods(http.MethodGet)
	api.HandleFunc("/series", s.seriesService).Methods(http.MethodGet)
	api.HandleFunc("/tracks", s.tracksService).Methods(http.MethodGet)
	api.HandleFunc("/export.csv", s.exportService).Methods(http.MethodGet)

	r.HandleFunc("/charts", s.chartsService).Methods(http.MethodGet)
	if s.Metrics != nil {
		r.Handle("/metrics", s.Metrics)
	}
	return r
}

//Select a new source and (re)start polling it
func (s *Service) startService(w http.ResponseWriter, r *http.Request) {
	location := strings.TrimSpace(r.URL.Query().Get("source"))
	if location == "" {
		// dismissed picker
		w.WriteHeader(http.StatusNoContent)
		return
	}

	location, err := homedir.Expand(location)
	if err != nil {
		writeMessage(w, http.StatusBadRequest, fmt.Sprintf("source have to be a path (%s)", err))
		return
	}

	src, err := source.Open(s.Fs, location)
	if err == nil {
		err = s.Scheduler.Start(s.ctx, src)
	}
	if err != nil {
		s.Log.WithContext(r.Context()).WithFields(logrus.Fields{
			"source": location,
			"Error":  err,
		}).Error("Unable to select source")
		status := http.StatusInternalServerError
		if errors.Is(err, source.ErrUnavailable) {
			status = http.StatusNotFound
		}
		writeMessage(w, status, err.Error())
		return
	}

	writeJSON(w, http.StatusAccepted, s.state())
}

//Stop polling; the store keeps its content
func (s *Service) stopService(w http.ResponseWriter, r *http.Request) {
	if s.Scheduler.State() != reconcile.Polling && s.Scheduler.State() != reconcile.CycleRunning {
		writeMessage(w, http.StatusForbidden, "polling is not running currently")
		return
	}
	s.Scheduler.Stop()
	writeJSON(w, http.StatusOK, s.state())
}

func (s *Service) stateService(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.state())
}

func (s *Service) state() stateResponse {
	resp := stateResponse{
		State:   s.Scheduler.State().String(),
		Flights: s.Store.Len(),
		Active:  s.Store.ActiveLen(),
	}
	if src := s.Scheduler.Source(); src != nil {
		resp.Source = src.String()
	}
	if err := s.Scheduler.Err(); err != nil {
		resp.Error = err.Error()
	}
	return resp
}

//List flights, optionally only those crossing a bbox
// params : bbox 'latSW,lonSW^latNE,lonNE', active=true
func (s *Service) flightsService(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	flights := s.Store.Flights()
	if query.Get("active") == "true" {
		flights = s.Store.ActiveFlights()
	}

	if bboxParam := query.Get("bbox"); bboxParam != "" {
		bbox, errBBox := tools.GetBbox(bboxParam)
		if errBBox != nil {
			writeMessage(w, http.StatusBadRequest, fmt.Sprintf("bbox have to be well formatted (%s)", errBBox))
			return
		}
		flights = Search(flights, bbox)
	}

	resp := flightsResponse{NbFlight: len(flights), Data: make([]flightView, 0, len(flights))}
	for _, f := range flights {
		resp.Data = append(resp.Data, s.view(f))
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Service) view(f *app.Flight) flightView {
	return flightView{
		ID:              f.ID,
		Name:            f.Name,
		Color:           f.Color.String(),
		Active:          s.Store.IsActive(f.ID),
		Points:          f.Len(),
		LaunchTime:      f.LaunchTime,
		MaxAltitude:     f.MaxAltitude,
		MaxSpeed:        f.MaxSpeed,
		Duration:        f.Duration,
		Distance:        f.Distance,
		CurrentSpeed:    f.CurrentSpeed,
		CurrentAltitude: f.CurrentAltitude,
		AscentRate:      f.AscentRate,
		Bounds:          f.Bounds(),
	}
}

func (s *Service) activationService(change func(id string) (bool, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := mux.Vars(r)["id"]
		active, err := change(id)
		if errors.Is(err, store.ErrUnknownFlight) {
			writeMessage(w, http.StatusNotFound, err.Error())
			return
		}
		if err != nil {
			writeMessage(w, http.StatusInternalServerError, err.Error())
			return
		}
		if s.Notifier != nil {
			s.Notifier.Notify(r.Context())
		}
		writeJSON(w, http.StatusOK, map[string]interface{}{"id": id, "active": active})
	}
}

func (s *Service) statsService(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, app.Summarize(s.Store.ActiveFlights()))
}

//Chart series of the active flights
// params : metric (altitude|speed|velocity|direction), all when absent
func (s *Service) seriesService(w http.ResponseWriter, r *http.Request) {
	active := s.Store.ActiveFlights()

	if param := r.URL.Query().Get("metric"); param != "" {
		m := Metric(param)
		if !m.Valid() {
			writeMessage(w, http.StatusBadRequest, fmt.Sprintf("unknown metric %q", param))
			return
		}
		writeJSON(w, http.StatusOK, BuildSeries(active, m))
		return
	}

	all := map[Metric][]Series{}
	for _, m := range Metrics {
		all[m] = BuildSeries(active, m)
	}
	writeJSON(w, http.StatusOK, all)
}

func (s *Service) tracksService(w http.ResponseWriter, r *http.Request) {
	body, err := Tracks(s.Store.ActiveFlights()).MarshalJSON()
	if err != nil {
		writeMessage(w, http.StatusInternalServerError, fmt.Sprintf("internal server error (%s)", err))
		return
	}
	w.Header().Set("Content-Type", "application/geo+json")
	w.Write(body)
}

//CSV export of the active flights, every flight with all=true
func (s *Service) exportService(w http.ResponseWriter, r *http.Request) {
	flights := s.Store.ActiveFlights()
	if r.URL.Query().Get("all") == "true" {
		flights = s.Store.Flights()
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="sondes.csv"`)
	if err := export.WriteCSV(w, flights); err != nil {
		s.Log.WithContext(r.Context()).WithFields(logrus.Fields{
			"Error": err,
		}).Error("CSV export failed")
	}
}

func (s *Service) chartsService(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := RenderCharts(w, s.Store.ActiveFlights()); err != nil {
		s.Log.WithContext(r.Context()).WithFields(logrus.Fields{
			"Error": err,
		}).Error("Chart rendering failed")
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	result, errJSONMarshal := json.Marshal(v)
	if errJSONMarshal != nil {
		writeMessage(w, http.StatusInternalServerError, fmt.Sprintf("internal server error (%s)", errJSONMarshal))
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(result)
}

func writeMessage(w http.ResponseWriter, status int, message string) {
	body, _ := json.Marshal(map[string]string{"message": message})
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(body)
}
