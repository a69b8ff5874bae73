package model

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

// VesselID identifies one vessel (an MMSI in AIS logs).
type VesselID string

// ErrInvalidCoordinate is returned for latitudes outside [-90,90] or
// longitudes outside [-180,180].
var ErrInvalidCoordinate = errors.New("invalid coordinate")

// RawReport is a single vessel position report as it arrives from a log or a
// topic, before time offsets are assigned.
type RawReport struct {
	VesselID  VesselID  `json:"mmsi"`
	Timestamp time.Time `json:"timestamp"`
	Latitude  float64   `json:"lat"`
	Longitude float64   `json:"lon"`
}

// Validate rejects reports whose coordinates cannot be used for distance
// computation.
func (r RawReport) Validate() error {
	if r.VesselID == "" {
		return errors.New("missing vessel id")
	}
	if !ValidCoordinate(r.Latitude, r.Longitude) {
		return fmt.Errorf("%w: vessel %s lat=%v lon=%v", ErrInvalidCoordinate, r.VesselID, r.Latitude, r.Longitude)
	}
	return nil
}

// Report is a normalised position report. TimeOffset is the number of
// minutes elapsed since the earliest timestamp of the dataset.
type Report struct {
	VesselID   VesselID  `json:"mmsi"`
	Timestamp  time.Time `json:"timestamp"`
	TimeOffset float64   `json:"time_offset"`
	Latitude   float64   `json:"lat"`
	Longitude  float64   `json:"lon"`
}

// CollisionEvent is one directed proximity hit: a report of VesselA found the
// report of VesselB described by Timestamp/TimeOffset/Latitude/Longitude
// within the distance threshold.
type CollisionEvent struct {
	VesselA       VesselID  `json:"vessel_id_a"`
	VesselB       VesselID  `json:"vessel_id_b"`
	Timestamp     time.Time `json:"timestamp"`
	TimeOffset    float64   `json:"time_offset"`
	Latitude      float64   `json:"lat"`
	Longitude     float64   `json:"lon"`
	DistanceKm    float64   `json:"distance_km"`
	RefTimeOffset float64   `json:"ref_time_offset"`
}

// ValidCoordinate reports whether lat/lon are usable degree coordinates.
func ValidCoordinate(lat, lon float64) bool {
	return lat >= -90 && lat <= 90 && lon >= -180 && lon <= 180
}

// UnmarshalRawReport parses a JSON position report
func UnmarshalRawReport(data []byte, r *RawReport) error {
	if err := json.Unmarshal(data, r); err != nil {
		return err
	}
	r.VesselID = VesselID(trimID(string(r.VesselID)))
	return r.Validate()
}

// trimID drops NUL bytes and surrounding whitespace some AIS decoders leave in
// identifiers.
func trimID(s string) string {
	return strings.TrimSpace(strings.ReplaceAll(s, "\x00", ""))
}
