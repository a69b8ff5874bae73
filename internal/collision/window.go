package collision

import (
	"math"

	"github.com/yeonjoon13/Vessel-Collision-Tracker/internal/model"
)

// Window is the coarse box around one reference report: candidates must lie
// strictly within Time minutes and Coord degrees of latitude and longitude.
type Window struct {
	Offset float64
	Lat    float64
	Lon    float64
	Time   float64
	Coord  float64
}

// Narrow applies the time, latitude and longitude filters in that order, each
// to the survivors of the previous one. pool is not modified.
func (w Window) Narrow(pool []model.Report) []model.Report {
	byTime := filter(pool, func(r model.Report) bool { return math.Abs(r.TimeOffset-w.Offset) < w.Time })
	byLat := filter(byTime, func(r model.Report) bool { return math.Abs(r.Latitude-w.Lat) < w.Coord })
	return filter(byLat, func(r model.Report) bool { return math.Abs(r.Longitude-w.Lon) < w.Coord })
}

func filter(in []model.Report, keep func(model.Report) bool) []model.Report {
	var out []model.Report
	for _, r := range in {
		if keep(r) {
			out = append(out, r)
		}
	}
	return out
}
