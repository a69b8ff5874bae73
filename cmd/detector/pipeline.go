package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/yeonjoon13/Vessel-Collision-Tracker/internal/collision"
	"github.com/yeonjoon13/Vessel-Collision-Tracker/internal/export"
	"github.com/yeonjoon13/Vessel-Collision-Tracker/internal/feed"
	"github.com/yeonjoon13/Vessel-Collision-Tracker/internal/ingest"
	"github.com/yeonjoon13/Vessel-Collision-Tracker/internal/kafka"
	"github.com/yeonjoon13/Vessel-Collision-Tracker/internal/model"
	"github.com/yeonjoon13/Vessel-Collision-Tracker/internal/render"
	"github.com/yeonjoon13/Vessel-Collision-Tracker/internal/store"
	"github.com/yeonjoon13/Vessel-Collision-Tracker/internal/track"
)

// source loads raw reports and names where they came from.
type source func(ctx context.Context) ([]model.RawReport, string, error)

func fileSource(path string) source {
	return func(context.Context) ([]model.RawReport, string, error) {
		if path == "-" {
			raw, err := ingest.ReadCSV(os.Stdin, ingest.DefaultCSVOptions())
			return raw, "stdin", err
		}
		f, err := os.Open(path)
		if err != nil {
			return nil, path, err
		}
		defer f.Close()
		raw, err := ingest.ReadCSV(f, ingest.DefaultCSVOptions())
		return raw, path, err
	}
}

func urlSource(url string) source {
	client := feed.NewClient()
	return func(ctx context.Context) ([]model.RawReport, string, error) {
		raw, err := client.FetchCSV(ctx, url)
		return raw, url, err
	}
}

func storeSource(st *store.Store) source {
	return func(ctx context.Context) ([]model.RawReport, string, error) {
		raw, err := st.Reports(ctx)
		return raw, "store", err
	}
}

// outputs are optional file destinations; empty paths are skipped.
type outputs struct {
	CSV     string
	GeoJSON string
	HTML    string
	PNG     string
}

type detector struct {
	log      *slog.Logger
	searcher *collision.Searcher
	load     source
	dedupe   bool
	outputs  outputs
	store    *store.Store
	events   kafka.MessageWriter
}

// run performs one full detection pass and returns the recorded run.
func (d *detector) run(ctx context.Context) (store.Run, error) {
	ctx, span := otel.Tracer("github.com/yeonjoon13/Vessel-Collision-Tracker/cmd/detector").Start(ctx, "detector.run")
	defer span.End()

	raw, from, err := d.load(ctx)
	if err != nil {
		return store.Run{}, fmt.Errorf("load reports: %w", err)
	}
	reports, err := ingest.Normalize(raw)
	if err != nil {
		return store.Run{}, fmt.Errorf("normalize: %w", err)
	}
	info := ingest.Describe(reports)
	d.log.Info("loaded position log",
		"source", from,
		"reports", info.Reports,
		"vessels", info.Vessels,
		"span_min", info.SpanMin,
	)

	idx, err := track.NewIndex(reports)
	if err != nil {
		return store.Run{}, err
	}

	run := store.NewRun(from)
	cfg := d.searcher.Config()
	run.TimeWindow, run.CoordWindow, run.MaxDistanceKm = cfg.TimeWindow, cfg.CoordWindow, cfg.MaxDistanceKm
	run.ReportCount = len(reports)

	events, err := d.searcher.Search(ctx, idx)
	if err != nil {
		return store.Run{}, err
	}
	if d.dedupe {
		events = collision.Dedupe(events)
		run.Deduplicated = true
	}
	run.EventCount = len(events)
	span.SetAttributes(attribute.String("run.id", run.ID), attribute.Int("run.events", run.EventCount))

	sum := collision.Summarize(events)
	d.log.Info("search finished",
		"run_id", run.ID,
		"events", sum.Events,
		"vessels", sum.Vessels,
		"pairs", len(sum.Pairs),
		"min_km", sum.MinDistanceKm,
		"mean_km", sum.MeanKm,
	)
	for _, p := range sum.Pairs {
		d.log.Debug("vessel pair", "a", p.A, "b", p.B, "events", p.Events)
	}

	if err := d.write(idx, events); err != nil {
		return run, err
	}
	if d.store != nil {
		if err := d.store.SaveRun(ctx, run, events); err != nil {
			return run, fmt.Errorf("save run: %w", err)
		}
	}
	if d.events != nil {
		if err := kafka.PublishEvents(ctx, d.events, run.ID, events); err != nil {
			return run, fmt.Errorf("publish events: %w", err)
		}
		d.log.Info("published events", "run_id", run.ID, "count", len(events))
	}
	return run, nil
}

func (d *detector) write(idx *track.Index, events []model.CollisionEvent) error {
	title := fmt.Sprintf("Vessel proximity %s", time.Now().UTC().Format(time.DateOnly))
	var lines []render.Line
	if d.outputs.HTML != "" || d.outputs.PNG != "" {
		lines = render.Lines(idx)
	}

	writers := []struct {
		path  string
		write func(io.Writer) error
	}{
		{d.outputs.CSV, func(w io.Writer) error { return export.WriteCSV(w, events) }},
		{d.outputs.GeoJSON, func(w io.Writer) error { return export.WriteGeoJSON(w, events) }},
		{d.outputs.HTML, func(w io.Writer) error { return render.HTML(w, title, lines, events) }},
		{d.outputs.PNG, func(w io.Writer) error { return render.PNG(w, title, lines, events) }},
	}
	for _, o := range writers {
		if o.path == "" {
			continue
		}
		if err := writeFile(o.path, o.write); err != nil {
			return fmt.Errorf("write %s: %w", o.path, err)
		}
		d.log.Info("wrote output", "path", o.path)
	}
	return nil
}

func writeFile(path string, write func(io.Writer) error) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := write(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
