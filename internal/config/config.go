// Package config reads settings from the environment with typed fallbacks.
package config

import (
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/yeonjoon13/Vessel-Collision-Tracker/internal/collision"
)

// String returns the value of key, or def when unset or empty.
func String(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

// Float returns key parsed as a float, or def.
func Float(key string, def float64, log *slog.Logger) float64 {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		log.Warn("invalid float in environment, using default", "key", key, "val", v, "default", def)
		return def
	}
	return f
}

// Int returns key parsed as an int, or def.
func Int(key string, def int, log *slog.Logger) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		log.Warn("invalid int in environment, using default", "key", key, "val", v, "default", def)
		return def
	}
	return n
}

// Bool returns key parsed as a bool, or def.
func Bool(key string, def bool, log *slog.Logger) bool {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		log.Warn("invalid bool in environment, using default", "key", key, "val", v, "default", def)
		return def
	}
	return b
}

// Duration returns key parsed with time.ParseDuration, or def.
func Duration(key string, def time.Duration, log *slog.Logger) time.Duration {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		log.Warn("invalid duration in environment, using default", "key", key, "val", v, "default", def)
		return def
	}
	return d
}

// Brokers splits a comma separated broker list.
func Brokers(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// Search builds the proximity search configuration from
//   - COLLISION_TIME_WINDOW_MIN (default 1)
//   - COLLISION_COORD_WINDOW_DEG (default 0.01)
//   - COLLISION_MAX_DISTANCE_KM (default 1)
//   - COLLISION_WORKERS (default 1)
//   - COLLISION_USE_GRID (default true)
func Search(log *slog.Logger) collision.Config {
	def := collision.DefaultConfig()
	return collision.Config{
		TimeWindow:    Float("COLLISION_TIME_WINDOW_MIN", def.TimeWindow, log),
		CoordWindow:   Float("COLLISION_COORD_WINDOW_DEG", def.CoordWindow, log),
		MaxDistanceKm: Float("COLLISION_MAX_DISTANCE_KM", def.MaxDistanceKm, log),
		Workers:       Int("COLLISION_WORKERS", def.Workers, log),
		UseGrid:       Bool("COLLISION_USE_GRID", def.UseGrid, log),
	}
}
