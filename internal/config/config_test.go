package config

import (
	"bytes"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/yeonjoon13/Vessel-Collision-Tracker/internal/collision"
)

func TestSearchDefaults(t *testing.T) {
	log := slog.New(slog.DiscardHandler)
	assert.Equal(t, collision.DefaultConfig(), Search(log))
}

func TestSearchFromEnv(t *testing.T) {
	t.Setenv("COLLISION_TIME_WINDOW_MIN", "2.5")
	t.Setenv("COLLISION_COORD_WINDOW_DEG", "0.02")
	t.Setenv("COLLISION_MAX_DISTANCE_KM", "0.5")
	t.Setenv("COLLISION_WORKERS", "4")
	t.Setenv("COLLISION_USE_GRID", "false")

	cfg := Search(slog.New(slog.DiscardHandler))
	assert.Equal(t, collision.Config{TimeWindow: 2.5, CoordWindow: 0.02, MaxDistanceKm: 0.5, Workers: 4, UseGrid: false}, cfg)
}

func TestInvalidValuesFallBack(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(slog.NewTextHandler(&buf, nil))

	t.Setenv("X_FLOAT", "abc")
	t.Setenv("X_INT", "1.5")
	t.Setenv("X_BOOL", "maybe")
	t.Setenv("X_DUR", "soon")

	assert.Equal(t, 3.0, Float("X_FLOAT", 3, log))
	assert.Equal(t, 7, Int("X_INT", 7, log))
	assert.True(t, Bool("X_BOOL", true, log))
	assert.Equal(t, time.Second, Duration("X_DUR", time.Second, log))
	assert.Contains(t, buf.String(), "key=X_FLOAT")
	assert.Contains(t, buf.String(), "key=X_DUR")
}

func TestStringAndBrokers(t *testing.T) {
	t.Setenv("X_STR", "  ")
	assert.Equal(t, "fallback", String("X_STR", "fallback"))
	t.Setenv("X_STR", "kafka:9092")
	assert.Equal(t, "kafka:9092", String("X_STR", "fallback"))

	t.Setenv("X_DUR", "90s")
	assert.Equal(t, 90*time.Second, Duration("X_DUR", time.Second, slog.New(slog.DiscardHandler)))

	assert.Equal(t, []string{"a:9092", "b:9092"}, Brokers(" a:9092, ,b:9092,"))
	assert.Nil(t, Brokers(""))
}
