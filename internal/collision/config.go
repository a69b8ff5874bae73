package collision

import (
	"errors"
	"fmt"
)

// Proximity thresholds. All comparisons against them are strict.
const (
	DefaultTimeWindow    = 1.0  // minutes
	DefaultCoordWindow   = 0.01 // degrees
	DefaultMaxDistanceKm = 1.0
)

// Config tunes a proximity search.
type Config struct {
	// TimeWindow keeps candidates with |Δt| < TimeWindow minutes.
	TimeWindow float64
	// CoordWindow keeps candidates with |Δlat| and |Δlon| < CoordWindow degrees.
	CoordWindow float64
	// MaxDistanceKm keeps candidates closer than this great-circle distance.
	MaxDistanceKm float64
	// Workers is the number of vessels searched concurrently. Values below 1
	// mean one.
	Workers int
	// UseGrid selects the bucketed index instead of a linear scan of the
	// other vessels' reports. Results are identical.
	UseGrid bool
}

// DefaultConfig returns the standard thresholds with a single worker and the
// grid index enabled.
func DefaultConfig() Config {
	return Config{
		TimeWindow:    DefaultTimeWindow,
		CoordWindow:   DefaultCoordWindow,
		MaxDistanceKm: DefaultMaxDistanceKm,
		Workers:       1,
		UseGrid:       true,
	}
}

// Validate checks that every threshold is positive.
func (c Config) Validate() error {
	var errs []error
	if !(c.TimeWindow > 0) {
		errs = append(errs, fmt.Errorf("time window must be > 0, got %v", c.TimeWindow))
	}
	if !(c.CoordWindow > 0) {
		errs = append(errs, fmt.Errorf("coordinate window must be > 0, got %v", c.CoordWindow))
	}
	if !(c.MaxDistanceKm > 0) {
		errs = append(errs, fmt.Errorf("max distance must be > 0, got %v", c.MaxDistanceKm))
	}
	return errors.Join(errs...)
}

func (c Config) workers() int {
	if c.Workers < 1 {
		return 1
	}
	return c.Workers
}
