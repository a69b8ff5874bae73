package collision

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yeonjoon13/Vessel-Collision-Tracker/internal/model"
)

func TestCollectorAppendOrder(t *testing.T) {
	c := NewCollector()
	assert.Zero(t, c.Len())
	assert.NotNil(t, c.Events())

	c.Collect()
	c.Collect(model.CollisionEvent{VesselA: "a", VesselB: "b"})
	c.Collect(model.CollisionEvent{VesselA: "b", VesselB: "a"}, model.CollisionEvent{VesselA: "c", VesselB: "a"})

	require.Equal(t, 3, c.Len())
	got := c.Events()
	assert.Equal(t, model.VesselID("a"), got[0].VesselA)
	assert.Equal(t, model.VesselID("b"), got[1].VesselA)
	assert.Equal(t, model.VesselID("c"), got[2].VesselA)

	// returned slice is a copy
	got[0].VesselA = "z"
	assert.Equal(t, model.VesselID("a"), c.Events()[0].VesselA)
}

func TestCollectorConcurrent(t *testing.T) {
	c := NewCollector()
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				c.Collect(model.CollisionEvent{VesselA: "a"})
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, 800, c.Len())
}

func TestDedupeDropsMirrorEvents(t *testing.T) {
	events := search(t, DefaultConfig(),
		rep("X", 0, 0, 0),
		rep("Y", 0.3, 0, 0.001),
		rep("W", 0.1, 0.001, 0),
		rep("Z", 0, 5, 5),
	)
	// X-Y, X-W, Y-W from both sides
	require.Len(t, events, 6)

	deduped := Dedupe(events)
	require.Len(t, deduped, 3)
	assert.Equal(t, model.VesselID("X"), deduped[0].VesselA)
	assert.Equal(t, model.VesselID("Y"), deduped[0].VesselB)
	assert.Equal(t, model.VesselID("X"), deduped[1].VesselA)
	assert.Equal(t, model.VesselID("W"), deduped[1].VesselB)
	assert.Equal(t, model.VesselID("Y"), deduped[2].VesselA)
	assert.Equal(t, model.VesselID("W"), deduped[2].VesselB)
}

func TestDedupeKeepsDistinctInstants(t *testing.T) {
	events := search(t, DefaultConfig(),
		rep("a", 0, 0, 0),
		rep("a", 5, 0, 0),
		rep("b", 0, 0, 0.001),
		rep("b", 5, 0, 0.001),
	)
	require.Len(t, events, 4)
	assert.Len(t, Dedupe(events), 2)
	assert.Empty(t, Dedupe(nil))
}

func TestSummarize(t *testing.T) {
	s := Summarize(nil)
	assert.Zero(t, s.Events)
	assert.Empty(t, s.Pairs)

	events := []model.CollisionEvent{
		{VesselA: "a", VesselB: "b", DistanceKm: 0.2},
		{VesselA: "b", VesselB: "a", DistanceKm: 0.4},
		{VesselA: "c", VesselB: "a", DistanceKm: 0.6},
	}
	s = Summarize(events)
	assert.Equal(t, 3, s.Events)
	assert.Equal(t, 3, s.Vessels)
	assert.InDelta(t, 0.2, s.MinDistanceKm, 1e-12)
	assert.InDelta(t, 0.6, s.MaxDistanceKm, 1e-12)
	assert.InDelta(t, 0.4, s.MeanKm, 1e-12)
	assert.InDelta(t, 0.2, s.StdDevKm, 1e-12)
	require.Len(t, s.Pairs, 2)
	assert.Equal(t, PairCount{A: "a", B: "b", Events: 2}, s.Pairs[0])
	assert.Equal(t, PairCount{A: "a", B: "c", Events: 1}, s.Pairs[1])

	one := Summarize(events[:1])
	assert.Zero(t, one.StdDevKm)
}
