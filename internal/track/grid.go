package track

import (
	"math"
	"sort"

	"github.com/yeonjoon13/Vessel-Collision-Tracker/internal/model"
)

type cellKey struct {
	t, lat, lon int64
}

// Grid buckets reports into cells of timeStep minutes by coordStep degrees.
// Any report strictly within timeStep and coordStep of a query point lies in
// one of the 27 cells around the query's own cell, so Near never misses a
// report the strict window would keep.
type Grid struct {
	timeStep  float64
	coordStep float64
	reports   []model.Report
	cells     map[cellKey][]int
}

// NewGrid indexes the reports of idx. Both steps must be positive.
func NewGrid(idx *Index, timeStep, coordStep float64) *Grid {
	g := &Grid{
		timeStep:  timeStep,
		coordStep: coordStep,
		reports:   idx.reports,
		cells:     make(map[cellKey][]int),
	}
	for i, r := range g.reports {
		k := g.key(r.TimeOffset, r.Latitude, r.Longitude)
		g.cells[k] = append(g.cells[k], i)
	}
	return g
}

func (g *Grid) key(t, lat, lon float64) cellKey {
	return cellKey{
		t:   int64(math.Floor(t / g.timeStep)),
		lat: int64(math.Floor(lat / g.coordStep)),
		lon: int64(math.Floor(lon / g.coordStep)),
	}
}

// Cells returns the number of non-empty cells.
func (g *Grid) Cells() int { return len(g.cells) }

// Near returns the reports of vessels other than exclude that share a cell
// neighbourhood with (t, lat, lon). The result is a superset of the strict
// window and keeps input order.
func (g *Grid) Near(t, lat, lon float64, exclude model.VesselID) []model.Report {
	c := g.key(t, lat, lon)
	var hits []int
	for dt := int64(-1); dt <= 1; dt++ {
		for dlat := int64(-1); dlat <= 1; dlat++ {
			for dlon := int64(-1); dlon <= 1; dlon++ {
				for _, i := range g.cells[cellKey{c.t + dt, c.lat + dlat, c.lon + dlon}] {
					if g.reports[i].VesselID != exclude {
						hits = append(hits, i)
					}
				}
			}
		}
	}
	sort.Ints(hits)
	out := make([]model.Report, len(hits))
	for j, i := range hits {
		out[j] = g.reports[i]
	}
	return out
}
