// Package track groups position reports by vessel and indexes them for
// time/space neighbourhood queries.
package track

import (
	"errors"
	"fmt"
	"sort"

	"github.com/yeonjoon13/Vessel-Collision-Tracker/internal/model"
)

// ErrInconsistentPosition is returned when one vessel reports two different
// positions at the same time offset.
var ErrInconsistentPosition = errors.New("inconsistent position for vessel and time offset")

// Position is a degree coordinate pair.
type Position struct {
	Lat float64
	Lon float64
}

// IntegrityError describes the vessel and offset whose reports disagree.
type IntegrityError struct {
	Vessel model.VesselID
	Offset float64
	First  Position
	Second Position
}

func (e *IntegrityError) Error() string {
	return fmt.Sprintf("vessel %s at offset %.4f min: (%v,%v) vs (%v,%v): %v",
		e.Vessel, e.Offset, e.First.Lat, e.First.Lon, e.Second.Lat, e.Second.Lon, ErrInconsistentPosition)
}

func (e *IntegrityError) Unwrap() error { return ErrInconsistentPosition }

// Track is the time-ordered set of reports of one vessel.
type Track struct {
	Vessel  model.VesselID
	Reports []model.Report

	offsets   []float64
	positions map[float64]Position
	byOffset  map[float64]model.Report
}

// Offsets returns the distinct time offsets of the track in ascending order.
func (t *Track) Offsets() []float64 {
	return append([]float64(nil), t.offsets...)
}

// Index is a read-only view of a report collection keyed by vessel. It is
// safe for concurrent use once built.
type Index struct {
	reports []model.Report
	vessels []model.VesselID
	tracks  map[model.VesselID]*Track
}

// NewIndex builds the index. Reports sharing a vessel and time offset must
// carry identical coordinates, otherwise an *IntegrityError is returned.
func NewIndex(reports []model.Report) (*Index, error) {
	idx := &Index{
		reports: append([]model.Report(nil), reports...),
		tracks:  make(map[model.VesselID]*Track),
	}

	for _, r := range idx.reports {
		t, ok := idx.tracks[r.VesselID]
		if !ok {
			t = &Track{
				Vessel:    r.VesselID,
				positions: make(map[float64]Position),
				byOffset:  make(map[float64]model.Report),
			}
			idx.tracks[r.VesselID] = t
			idx.vessels = append(idx.vessels, r.VesselID)
		}
		pos := Position{Lat: r.Latitude, Lon: r.Longitude}
		if prev, seen := t.positions[r.TimeOffset]; seen {
			if prev != pos {
				return nil, &IntegrityError{Vessel: r.VesselID, Offset: r.TimeOffset, First: prev, Second: pos}
			}
		} else {
			t.positions[r.TimeOffset] = pos
			t.byOffset[r.TimeOffset] = r
			t.offsets = append(t.offsets, r.TimeOffset)
		}
		t.Reports = append(t.Reports, r)
	}

	for _, t := range idx.tracks {
		sort.Float64s(t.offsets)
		sort.SliceStable(t.Reports, func(i, j int) bool {
			return t.Reports[i].TimeOffset < t.Reports[j].TimeOffset
		})
	}
	return idx, nil
}

// Len returns the number of reports in the index.
func (idx *Index) Len() int { return len(idx.reports) }

// Reports returns every report in input order.
func (idx *Index) Reports() []model.Report {
	return append([]model.Report(nil), idx.reports...)
}

// Vessels returns the distinct vessel ids in order of first appearance.
func (idx *Index) Vessels() []model.VesselID {
	return append([]model.VesselID(nil), idx.vessels...)
}

// Track returns the track of vessel v.
func (idx *Index) Track(v model.VesselID) (*Track, bool) {
	t, ok := idx.tracks[v]
	return t, ok
}

// Offsets returns the distinct time offsets reported by v, ascending.
func (idx *Index) Offsets(v model.VesselID) []float64 {
	t, ok := idx.tracks[v]
	if !ok {
		return nil
	}
	return t.Offsets()
}

// ReportsAt returns the position of v at time offset t.
func (idx *Index) ReportsAt(v model.VesselID, t float64) (Position, bool) {
	tr, ok := idx.tracks[v]
	if !ok {
		return Position{}, false
	}
	p, ok := tr.positions[t]
	return p, ok
}

// ReportAt returns the first report of v at time offset t.
func (idx *Index) ReportAt(v model.VesselID, t float64) (model.Report, bool) {
	tr, ok := idx.tracks[v]
	if !ok {
		return model.Report{}, false
	}
	r, ok := tr.byOffset[t]
	return r, ok
}

// OtherVesselsReports returns, in input order, every report whose vessel is
// not exclude.
func (idx *Index) OtherVesselsReports(exclude model.VesselID) []model.Report {
	out := make([]model.Report, 0, len(idx.reports))
	for _, r := range idx.reports {
		if r.VesselID != exclude {
			out = append(out, r)
		}
	}
	return out
}
