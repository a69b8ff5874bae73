// Package store persists position reports and collision runs in SQLite.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/yeonjoon13/Vessel-Collision-Tracker/internal/model"
)

// ErrRunNotFound is returned when a run id is unknown.
var ErrRunNotFound = errors.New("run not found")

// Store wraps the SQLite database.
type Store struct {
	db *sql.DB
}

// Open opens (creating if needed) the database at path. ":memory:" is
// accepted for tests.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// a single connection keeps :memory: databases coherent and serialises writers
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(`PRAGMA foreign_keys = ON; PRAGMA busy_timeout = 5000;`); err != nil {
		db.Close()
		return nil, fmt.Errorf("set pragmas: %w", err)
	}
	s := &Store{db: db}
	if err := s.MigrateUp(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// Close closes the database.
func (s *Store) Close() error { return s.db.Close() }

// Run describes one execution of the proximity search.
type Run struct {
	ID            string    `json:"run_id"`
	StartedAt     time.Time `json:"started_at"`
	Source        string    `json:"source"`
	TimeWindow    float64   `json:"time_window_min"`
	CoordWindow   float64   `json:"coord_window_deg"`
	MaxDistanceKm float64   `json:"max_distance_km"`
	Deduplicated  bool      `json:"deduplicated"`
	ReportCount   int       `json:"report_count"`
	EventCount    int       `json:"event_count"`
}

// NewRun returns a run with a fresh id started now.
func NewRun(source string) Run {
	return Run{ID: uuid.NewString(), StartedAt: time.Now().UTC(), Source: source}
}

// SaveReports appends raw reports in one transaction.
func (s *Store) SaveReports(ctx context.Context, reports []model.RawReport) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO reports (mmsi, ts_unix_ns, lat, lon) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, r := range reports {
		if _, err := stmt.ExecContext(ctx, string(r.VesselID), r.Timestamp.UnixNano(), r.Latitude, r.Longitude); err != nil {
			return fmt.Errorf("insert report for %s: %w", r.VesselID, err)
		}
	}
	return tx.Commit()
}

// Reports returns every stored report in insertion order.
func (s *Store) Reports(ctx context.Context) ([]model.RawReport, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT mmsi, ts_unix_ns, lat, lon FROM reports ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.RawReport
	for rows.Next() {
		var (
			r  model.RawReport
			id string
			ns int64
		)
		if err := rows.Scan(&id, &ns, &r.Latitude, &r.Longitude); err != nil {
			return nil, err
		}
		r.VesselID = model.VesselID(id)
		r.Timestamp = time.Unix(0, ns).UTC()
		out = append(out, r)
	}
	return out, rows.Err()
}

// SaveRun stores run and its events atomically. run.EventCount is set from
// len(events).
func (s *Store) SaveRun(ctx context.Context, run Run, events []model.CollisionEvent) error {
	if run.ID == "" {
		return errors.New("run id is required")
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `INSERT INTO runs (
			run_id, started_unix_ns, source, time_window_min, coord_window,
			max_distance_km, deduplicated, report_count, event_count
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID, run.StartedAt.UnixNano(), run.Source, run.TimeWindow, run.CoordWindow,
		run.MaxDistanceKm, run.Deduplicated, run.ReportCount, len(events),
	)
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO collision_events (
			run_id, seq, vessel_id_a, vessel_id_b, ts_unix_ns, time_offset,
			ref_time_offset, lat, lon, distance_km
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for i, e := range events {
		_, err := stmt.ExecContext(ctx, run.ID, i, string(e.VesselA), string(e.VesselB),
			e.Timestamp.UnixNano(), e.TimeOffset, e.RefTimeOffset, e.Latitude, e.Longitude, e.DistanceKm)
		if err != nil {
			return fmt.Errorf("insert event %d: %w", i, err)
		}
	}
	return tx.Commit()
}

const runColumns = `run_id, started_unix_ns, source, time_window_min, coord_window,
	max_distance_km, deduplicated, report_count, event_count`

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(sc scanner) (Run, error) {
	var (
		r  Run
		ns int64
	)
	err := sc.Scan(&r.ID, &ns, &r.Source, &r.TimeWindow, &r.CoordWindow,
		&r.MaxDistanceKm, &r.Deduplicated, &r.ReportCount, &r.EventCount)
	r.StartedAt = time.Unix(0, ns).UTC()
	return r, err
}

// Runs lists runs, newest first.
func (s *Store) Runs(ctx context.Context) ([]Run, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+runColumns+` FROM runs ORDER BY started_unix_ns DESC, rowid DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Run
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// Run returns one run by id.
func (s *Store) Run(ctx context.Context, id string) (Run, error) {
	r, err := scanRun(s.db.QueryRowContext(ctx, `SELECT `+runColumns+` FROM runs WHERE run_id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return Run{}, fmt.Errorf("%w: %s", ErrRunNotFound, id)
	}
	return r, err
}

// Events returns the events of a run in discovery order.
func (s *Store) Events(ctx context.Context, runID string) ([]model.CollisionEvent, error) {
	if _, err := s.Run(ctx, runID); err != nil {
		return nil, err
	}
	rows, err := s.db.QueryContext(ctx, `SELECT vessel_id_a, vessel_id_b, ts_unix_ns, time_offset,
			ref_time_offset, lat, lon, distance_km
		FROM collision_events WHERE run_id = ? ORDER BY seq`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.CollisionEvent{}
	for rows.Next() {
		var (
			e      model.CollisionEvent
			a, b   string
			tsNano int64
		)
		if err := rows.Scan(&a, &b, &tsNano, &e.TimeOffset, &e.RefTimeOffset, &e.Latitude, &e.Longitude, &e.DistanceKm); err != nil {
			return nil, err
		}
		e.VesselA, e.VesselB = model.VesselID(a), model.VesselID(b)
		e.Timestamp = time.Unix(0, tsNano).UTC()
		out = append(out, e)
	}
	return out, rows.Err()
}
