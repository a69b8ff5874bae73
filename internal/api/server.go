// Package api serves stored collision runs over HTTP and pushes new runs to
// websocket clients.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"

	"github.com/yeonjoon13/Vessel-Collision-Tracker/internal/export"
	"github.com/yeonjoon13/Vessel-Collision-Tracker/internal/model"
	"github.com/yeonjoon13/Vessel-Collision-Tracker/internal/store"
)

// RunSource is the read side of the store.
type RunSource interface {
	Runs(ctx context.Context) ([]store.Run, error)
	Events(ctx context.Context, runID string) ([]model.CollisionEvent, error)
}

// Server exposes runs and events.
type Server struct {
	src     RunSource
	hub     *Hub
	metrics http.Handler
	log     *slog.Logger
	latest  latestRun
}

// NewServer wires the handlers. metrics may be nil.
func NewServer(src RunSource, metrics http.Handler, log *slog.Logger) *Server {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	s := &Server{src: src, metrics: metrics, log: log}
	s.hub = NewHub(log, func() (any, bool) {
		u, ok := s.latest.get()
		return u, ok
	})
	return s
}

// Hub returns the websocket hub.
func (s *Server) Hub() *Hub { return s.hub }

// Router returns the HTTP routes.
func (s *Server) Router() *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/health", s.health).Methods(http.MethodGet)
	r.HandleFunc("/api/v1/runs", s.listRuns).Methods(http.MethodGet)
	r.HandleFunc("/api/v1/runs/latest/events", s.latestEvents).Methods(http.MethodGet)
	r.HandleFunc("/api/v1/runs/{runID}/events", s.runEvents).Methods(http.MethodGet)
	r.HandleFunc("/api/v1/runs/{runID}/events.csv", s.runEventsCSV).Methods(http.MethodGet)
	r.Handle("/ws", s.hub)
	if s.metrics != nil {
		r.Handle("/metrics", s.metrics)
	}
	r.Use(traceRequests)
	return r
}

const tracerName = "github.com/yeonjoon13/Vessel-Collision-Tracker/internal/api"

// traceRequests starts a server span per request, named after the route
// template.
func traceRequests(next http.Handler) http.Handler {
	tracer := otel.Tracer(tracerName)
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		name := r.URL.Path
		if route := mux.CurrentRoute(r); route != nil {
			if tmpl, err := route.GetPathTemplate(); err == nil {
				name = tmpl
			}
		}
		ctx := otel.GetTextMapPropagator().Extract(r.Context(), propagation.HeaderCarrier(r.Header))
		ctx, span := tracer.Start(ctx, r.Method+" "+name,
			trace.WithSpanKind(trace.SpanKindServer),
			trace.WithAttributes(
				attribute.String("http.request.method", r.Method),
				attribute.String("http.route", name),
			),
		)
		defer span.End()
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// Poll loads the newest run and, if it differs from the cached one,
// broadcasts it. It returns whether a new run was found.
func (s *Server) Poll(ctx context.Context) (bool, error) {
	runs, err := s.src.Runs(ctx)
	if err != nil {
		return false, err
	}
	if len(runs) == 0 || runs[0].ID == s.latest.id() {
		return false, nil
	}
	events, err := s.src.Events(ctx, runs[0].ID)
	if err != nil {
		return false, err
	}
	u := RunUpdate{Run: runs[0], Events: events}
	if !s.latest.set(u) {
		return false, nil
	}
	s.log.Info("new collision run", "run_id", u.Run.ID, "events", len(events), "clients", s.hub.Clients())
	return true, s.hub.Broadcast(u)
}

// Watch polls every interval until ctx is done.
func (s *Server) Watch(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		if _, err := s.Poll(ctx); err != nil && ctx.Err() == nil {
			s.log.Warn("poll runs failed", "err", err)
		}
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) listRuns(w http.ResponseWriter, r *http.Request) {
	runs, err := s.src.Runs(r.Context())
	if err != nil {
		s.fail(w, err)
		return
	}
	if runs == nil {
		runs = []store.Run{}
	}
	writeJSON(w, http.StatusOK, runs)
}

func (s *Server) latestEvents(w http.ResponseWriter, r *http.Request) {
	u, ok := s.latest.get()
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "no runs yet"})
		return
	}
	writeJSON(w, http.StatusOK, u)
}

func (s *Server) runEvents(w http.ResponseWriter, r *http.Request) {
	events, err := s.src.Events(r.Context(), mux.Vars(r)["runID"])
	if err != nil {
		s.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, events)
}

func (s *Server) runEventsCSV(w http.ResponseWriter, r *http.Request) {
	runID := mux.Vars(r)["runID"]
	events, err := s.src.Events(r.Context(), runID)
	if err != nil {
		s.fail(w, err)
		return
	}
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="collisions-`+runID+`.csv"`)
	if err := export.WriteCSV(w, events); err != nil {
		s.log.Error("write csv failed", "run_id", runID, "err", err)
	}
}

func (s *Server) fail(w http.ResponseWriter, err error) {
	if errors.Is(err, store.ErrRunNotFound) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": err.Error()})
		return
	}
	s.log.Error("request failed", "err", err)
	writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
