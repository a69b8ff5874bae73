// Package render draws vessel tracks with collision events overlaid, as an
// interactive HTML chart or a static PNG.
package render

import (
	"github.com/yeonjoon13/Vessel-Collision-Tracker/internal/model"
	"github.com/yeonjoon13/Vessel-Collision-Tracker/internal/track"
)

// Point is a lon/lat pair.
type Point struct {
	Lon, Lat float64
}

// Line is the time-ordered polyline of one vessel.
type Line struct {
	Vessel model.VesselID
	Points []Point
}

// Lines builds one polyline per vessel, in the index's vessel order.
func Lines(idx *track.Index) []Line {
	vessels := idx.Vessels()
	out := make([]Line, 0, len(vessels))
	for _, v := range vessels {
		tr, ok := idx.Track(v)
		if !ok {
			continue
		}
		l := Line{Vessel: v, Points: make([]Point, 0, len(tr.Reports))}
		for _, r := range tr.Reports {
			l.Points = append(l.Points, Point{Lon: r.Longitude, Lat: r.Latitude})
		}
		out = append(out, l)
	}
	return out
}

type bounds struct {
	minLon, maxLon, minLat, maxLat float64
	empty                          bool
}

func extent(lines []Line, events []model.CollisionEvent) bounds {
	b := bounds{empty: true}
	add := func(lon, lat float64) {
		if b.empty {
			b = bounds{minLon: lon, maxLon: lon, minLat: lat, maxLat: lat}
			return
		}
		b.minLon, b.maxLon = min(b.minLon, lon), max(b.maxLon, lon)
		b.minLat, b.maxLat = min(b.minLat, lat), max(b.maxLat, lat)
	}
	for _, l := range lines {
		for _, p := range l.Points {
			add(p.Lon, p.Lat)
		}
	}
	for _, e := range events {
		add(e.Longitude, e.Latitude)
	}
	return b
}

// padded widens b by 5% on each side, with a floor for degenerate extents.
func (b bounds) padded() bounds {
	if b.empty {
		return bounds{minLon: -180, maxLon: 180, minLat: -90, maxLat: 90}
	}
	padLon := max((b.maxLon-b.minLon)*0.05, 0.001)
	padLat := max((b.maxLat-b.minLat)*0.05, 0.001)
	return bounds{
		minLon: b.minLon - padLon, maxLon: b.maxLon + padLon,
		minLat: b.minLat - padLat, maxLat: b.maxLat + padLat,
	}
}
