// Package export writes collision events as CSV or GeoJSON.
package export

import (
	"encoding/csv"
	"encoding/json"
	"io"
	"strconv"
	"time"

	"github.com/yeonjoon13/Vessel-Collision-Tracker/internal/model"
)

// CSVHeader is the column order written by WriteCSV.
var CSVHeader = []string{"vessel_id_a", "vessel_id_b", "timestamp", "time_offset", "lat", "lon", "distance_km", "ref_time_offset"}

// WriteCSV writes events with a header row.
func WriteCSV(w io.Writer, events []model.CollisionEvent) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(CSVHeader); err != nil {
		return err
	}
	for _, e := range events {
		rec := []string{
			string(e.VesselA),
			string(e.VesselB),
			e.Timestamp.UTC().Format(time.RFC3339Nano),
			formatFloat(e.TimeOffset),
			formatFloat(e.Latitude),
			formatFloat(e.Longitude),
			formatFloat(e.DistanceKm),
			formatFloat(e.RefTimeOffset),
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

const (
	featureCollectionType = "FeatureCollection"
	featureType           = "Feature"
	geometryPointType     = "Point"
)

// FeatureCollection is a GeoJSON feature collection.
type FeatureCollection struct {
	Type     string    `json:"type"`
	Features []Feature `json:"features"`
}

// Feature is a GeoJSON feature.
type Feature struct {
	Type       string         `json:"type"`
	Geometry   Geometry       `json:"geometry"`
	Properties map[string]any `json:"properties"`
}

// Geometry is a GeoJSON point geometry, coordinates as [lon, lat].
type Geometry struct {
	Type        string    `json:"type"`
	Coordinates []float64 `json:"coordinates"`
}

// BuildEventsFC places each event at the matched report's position.
func BuildEventsFC(events []model.CollisionEvent) FeatureCollection {
	features := make([]Feature, 0, len(events))
	for _, e := range events {
		features = append(features, Feature{
			Type: featureType,
			Geometry: Geometry{
				Type:        geometryPointType,
				Coordinates: []float64{e.Longitude, e.Latitude},
			},
			Properties: map[string]any{
				"vessel_id_a":     string(e.VesselA),
				"vessel_id_b":     string(e.VesselB),
				"timestamp":       e.Timestamp.UTC().Format(time.RFC3339Nano),
				"time_offset":     e.TimeOffset,
				"ref_time_offset": e.RefTimeOffset,
				"distance_km":     e.DistanceKm,
			},
		})
	}
	return FeatureCollection{Type: featureCollectionType, Features: features}
}

// WriteGeoJSON writes events as a GeoJSON feature collection.
func WriteGeoJSON(w io.Writer, events []model.CollisionEvent) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(BuildEventsFC(events))
}
