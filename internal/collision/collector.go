package collision

import (
	"sync"

	"github.com/yeonjoon13/Vessel-Collision-Tracker/internal/model"
)

// Collector accumulates collision events in append order. It is safe for
// concurrent use.
type Collector struct {
	mu     sync.RWMutex
	events []model.CollisionEvent
}

// NewCollector returns an empty collector.
func NewCollector() *Collector {
	return &Collector{}
}

// Collect appends events to the output.
func (c *Collector) Collect(events ...model.CollisionEvent) {
	if len(events) == 0 {
		return
	}
	c.mu.Lock()
	c.events = append(c.events, events...)
	c.mu.Unlock()
}

// Len returns the number of collected events.
func (c *Collector) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.events)
}

// Events returns a copy of the collected events. It is never nil.
func (c *Collector) Events() []model.CollisionEvent {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append(make([]model.CollisionEvent, 0, len(c.events)), c.events...)
}

type pairKey struct {
	lo, hi       model.VesselID
	offLo, offHi float64
}

// Dedupe drops the mirror of every event: the hit of A's report at t1 on B's
// report at t2 and the hit of B's report at t2 on A's report at t1 describe
// the same encounter. The first occurrence is kept and order is preserved.
func Dedupe(events []model.CollisionEvent) []model.CollisionEvent {
	seen := make(map[pairKey]struct{}, len(events))
	out := make([]model.CollisionEvent, 0, len(events)/2+1)
	for _, e := range events {
		k := pairKey{lo: e.VesselA, hi: e.VesselB, offLo: e.RefTimeOffset, offHi: e.TimeOffset}
		if e.VesselB < e.VesselA {
			k = pairKey{lo: e.VesselB, hi: e.VesselA, offLo: e.TimeOffset, offHi: e.RefTimeOffset}
		}
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, e)
	}
	return out
}
