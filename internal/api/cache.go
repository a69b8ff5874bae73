package api

import (
	"sync"

	"github.com/yeonjoon13/Vessel-Collision-Tracker/internal/model"
	"github.com/yeonjoon13/Vessel-Collision-Tracker/internal/store"
)

// RunUpdate is the websocket payload announcing a run and its events.
type RunUpdate struct {
	Run    store.Run              `json:"run"`
	Events []model.CollisionEvent `json:"events"`
}

// latestRun caches the newest run seen by the watcher.
type latestRun struct {
	mu     sync.RWMutex
	update RunUpdate
	ok     bool
}

// set stores u and reports whether it replaced a different run.
func (l *latestRun) set(u RunUpdate) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.ok && l.update.Run.ID == u.Run.ID {
		return false
	}
	l.update, l.ok = u, true
	return true
}

func (l *latestRun) get() (RunUpdate, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.update, l.ok
}

func (l *latestRun) id() string {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.update.Run.ID
}
