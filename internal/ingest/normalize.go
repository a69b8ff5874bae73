package ingest

import (
	"fmt"
	"time"

	"github.com/yeonjoon13/Vessel-Collision-Tracker/internal/model"
)

// Normalize validates raw reports and assigns each its offset in minutes
// from the earliest timestamp. Offsets have whole-second resolution.
func Normalize(raw []model.RawReport) ([]model.Report, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	start := raw[0].Timestamp
	for i, r := range raw {
		if err := r.Validate(); err != nil {
			return nil, fmt.Errorf("report %d: %w", i, err)
		}
		if r.Timestamp.Before(start) {
			start = r.Timestamp
		}
	}

	out := make([]model.Report, len(raw))
	for i, r := range raw {
		secs := r.Timestamp.Sub(start) / time.Second
		out[i] = model.Report{
			VesselID:   r.VesselID,
			Timestamp:  r.Timestamp,
			TimeOffset: float64(secs) / 60,
			Latitude:   r.Latitude,
			Longitude:  r.Longitude,
		}
	}
	return out, nil
}

// Summary is an overview of a normalised dataset.
type Summary struct {
	Reports   int
	Vessels   int
	Start     time.Time
	End       time.Time
	SpanMin   float64
	MinLat    float64
	MaxLat    float64
	MinLon    float64
	MaxLon    float64
	PerVessel map[model.VesselID]int
}

// Describe summarises reports.
func Describe(reports []model.Report) Summary {
	s := Summary{Reports: len(reports), PerVessel: make(map[model.VesselID]int)}
	for i, r := range reports {
		s.PerVessel[r.VesselID]++
		if i == 0 {
			s.Start, s.End = r.Timestamp, r.Timestamp
			s.MinLat, s.MaxLat = r.Latitude, r.Latitude
			s.MinLon, s.MaxLon = r.Longitude, r.Longitude
			continue
		}
		if r.Timestamp.Before(s.Start) {
			s.Start = r.Timestamp
		}
		if r.Timestamp.After(s.End) {
			s.End = r.Timestamp
		}
		s.MinLat = min(s.MinLat, r.Latitude)
		s.MaxLat = max(s.MaxLat, r.Latitude)
		s.MinLon = min(s.MinLon, r.Longitude)
		s.MaxLon = max(s.MaxLon, r.Longitude)
	}
	s.Vessels = len(s.PerVessel)
	s.SpanMin = s.End.Sub(s.Start).Minutes()
	return s
}
