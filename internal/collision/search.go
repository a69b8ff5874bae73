// Package collision finds pairs of reports from different vessels that are
// close in both time and space.
package collision

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/yeonjoon13/Vessel-Collision-Tracker/internal/geo"
	"github.com/yeonjoon13/Vessel-Collision-Tracker/internal/model"
	"github.com/yeonjoon13/Vessel-Collision-Tracker/internal/track"
)

const tracerName = "github.com/yeonjoon13/Vessel-Collision-Tracker/internal/collision"

// Recorder receives search statistics. The metrics package implements it.
type Recorder interface {
	AddCandidates(coarse, refined int)
	ObserveSearch(vessels, events int, elapsed time.Duration)
}

// Searcher runs the proximity search over a track index.
type Searcher struct {
	cfg Config
	log *slog.Logger
	rec Recorder
}

// Option configures a Searcher.
type Option func(*Searcher)

// WithLogger sets the logger used for progress messages.
func WithLogger(l *slog.Logger) Option {
	return func(s *Searcher) {
		if l != nil {
			s.log = l
		}
	}
}

// WithRecorder sets where search statistics are reported.
func WithRecorder(r Recorder) Option {
	return func(s *Searcher) { s.rec = r }
}

// NewSearcher validates cfg and returns a searcher.
func NewSearcher(cfg Config, opts ...Option) (*Searcher, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid search config: %w", err)
	}
	s := &Searcher{cfg: cfg, log: slog.New(slog.DiscardHandler)}
	for _, o := range opts {
		o(s)
	}
	return s, nil
}

// Config returns the thresholds the searcher applies.
func (s *Searcher) Config() Config { return s.cfg }

// candidateSource returns, for vessel v, a function yielding the base
// population to narrow for one reference window.
type candidateSource func(v model.VesselID) func(Window) []model.Report

// Search returns every collision event in the index. Vessels are visited in
// first-appearance order and offsets in ascending order; each hit between
// two vessels is reported once from each side. The result is the same for
// any worker count. On cancellation no events are returned.
func (s *Searcher) Search(ctx context.Context, idx *track.Index) ([]model.CollisionEvent, error) {
	c := NewCollector()
	if err := s.SearchInto(ctx, idx, c); err != nil {
		return nil, err
	}
	return c.Events(), nil
}

// SearchInto runs the search and appends the results to c. Nothing is
// appended when the search fails.
func (s *Searcher) SearchInto(ctx context.Context, idx *track.Index, c *Collector) (err error) {
	start := time.Now()
	vessels := idx.Vessels()

	ctx, span := otel.Tracer(tracerName).Start(ctx, "collision.Search")
	span.SetAttributes(
		attribute.Int("collision.vessels", len(vessels)),
		attribute.Int("collision.reports", idx.Len()),
		attribute.Bool("collision.grid", s.cfg.UseGrid),
	)
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()
	source := s.source(idx)

	perVessel := make([][]model.CollisionEvent, len(vessels))
	jobs := make(chan int)
	var (
		wg       sync.WaitGroup
		errOnce  sync.Once
		firstErr error
	)
	workers := min(s.cfg.workers(), max(len(vessels), 1))
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				if err := ctx.Err(); err != nil {
					errOnce.Do(func() { firstErr = err })
					continue
				}
				events, err := s.searchVessel(idx, vessels[i], source)
				if err != nil {
					errOnce.Do(func() { firstErr = err })
					continue
				}
				perVessel[i] = events
			}
		}()
	}
	for i := range vessels {
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	if firstErr != nil {
		return firstErr
	}

	total := 0
	for _, events := range perVessel {
		c.Collect(events...)
		total += len(events)
	}
	elapsed := time.Since(start)
	span.SetAttributes(attribute.Int("collision.events", total))
	if s.rec != nil {
		s.rec.ObserveSearch(len(vessels), total, elapsed)
	}
	s.log.Info("proximity search finished",
		"vessels", len(vessels), "reports", idx.Len(), "events", total,
		"grid", s.cfg.UseGrid, "workers", workers, "elapsed", elapsed)
	return nil
}

func (s *Searcher) source(idx *track.Index) candidateSource {
	if s.cfg.UseGrid {
		g := track.NewGrid(idx, s.cfg.TimeWindow, s.cfg.CoordWindow)
		return func(v model.VesselID) func(Window) []model.Report {
			return func(w Window) []model.Report {
				return g.Near(w.Offset, w.Lat, w.Lon, v)
			}
		}
	}
	return func(v model.VesselID) func(Window) []model.Report {
		pool := idx.OtherVesselsReports(v)
		return func(Window) []model.Report { return pool }
	}
}

// searchVessel processes every distinct offset of v and returns its events.
func (s *Searcher) searchVessel(idx *track.Index, v model.VesselID, source candidateSource) ([]model.CollisionEvent, error) {
	var events []model.CollisionEvent
	candidates := source(v)
	for _, t := range idx.Offsets(v) {
		pos, ok := idx.ReportsAt(v, t)
		if !ok {
			return nil, fmt.Errorf("vessel %s has no position at offset %v", v, t)
		}
		w := Window{Offset: t, Lat: pos.Lat, Lon: pos.Lon, Time: s.cfg.TimeWindow, Coord: s.cfg.CoordWindow}
		pool := w.Narrow(candidates(w))
		if len(pool) == 0 {
			continue
		}

		lons := make([]float64, len(pool))
		lats := make([]float64, len(pool))
		for i, r := range pool {
			lons[i], lats[i] = r.Longitude, r.Latitude
		}
		dist, err := geo.Distances(pos.Lon, pos.Lat, lons, lats)
		if err != nil {
			return nil, err
		}

		refined := 0
		for i, r := range pool {
			if dist[i] >= s.cfg.MaxDistanceKm {
				continue
			}
			refined++
			events = append(events, model.CollisionEvent{
				VesselA:       v,
				VesselB:       r.VesselID,
				Timestamp:     r.Timestamp,
				TimeOffset:    r.TimeOffset,
				Latitude:      r.Latitude,
				Longitude:     r.Longitude,
				DistanceKm:    dist[i],
				RefTimeOffset: t,
			})
		}
		if s.rec != nil {
			s.rec.AddCandidates(len(pool), refined)
		}
	}
	return events, nil
}
