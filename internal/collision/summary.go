package collision

import (
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/yeonjoon13/Vessel-Collision-Tracker/internal/model"
)

// PairCount is the number of events between two vessels, counted in both
// directions.
type PairCount struct {
	A, B   model.VesselID
	Events int
}

// Summary describes a set of collision events.
type Summary struct {
	Events        int
	Vessels       int
	Pairs         []PairCount
	MinDistanceKm float64
	MaxDistanceKm float64
	MeanKm        float64
	StdDevKm      float64
}

// Summarize computes counts and distance statistics. Pairs are sorted by
// descending event count, then by vessel ids.
func Summarize(events []model.CollisionEvent) Summary {
	s := Summary{Events: len(events)}
	if len(events) == 0 {
		return s
	}

	dist := make([]float64, len(events))
	vessels := make(map[model.VesselID]struct{})
	pairs := make(map[[2]model.VesselID]int)
	for i, e := range events {
		dist[i] = e.DistanceKm
		vessels[e.VesselA] = struct{}{}
		vessels[e.VesselB] = struct{}{}
		a, b := e.VesselA, e.VesselB
		if b < a {
			a, b = b, a
		}
		pairs[[2]model.VesselID{a, b}]++
	}

	s.Vessels = len(vessels)
	s.MinDistanceKm = floats.Min(dist)
	s.MaxDistanceKm = floats.Max(dist)
	s.MeanKm, s.StdDevKm = stat.MeanStdDev(dist, nil)
	if len(dist) == 1 {
		s.StdDevKm = 0
	}

	for k, n := range pairs {
		s.Pairs = append(s.Pairs, PairCount{A: k[0], B: k[1], Events: n})
	}
	sort.Slice(s.Pairs, func(i, j int) bool {
		pi, pj := s.Pairs[i], s.Pairs[j]
		if pi.Events != pj.Events {
			return pi.Events > pj.Events
		}
		if pi.A != pj.A {
			return pi.A < pj.A
		}
		return pi.B < pj.B
	})
	return s
}
