// Package ingest reads vessel position logs and normalises them into
// reports with time offsets.
package ingest

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/yeonjoon13/Vessel-Collision-Tracker/internal/model"
)

// ErrMissingColumn is returned when a required column is absent from the
// header row.
var ErrMissingColumn = errors.New("missing column")

// CSVOptions names the columns of the position log.
type CSVOptions struct {
	VesselColumn string
	TimeColumn   string
	LatColumn    string
	LonColumn    string
	Comma        rune
}

// DefaultCSVOptions matches AIS exports: mmsi,timestamp,lat,lon.
func DefaultCSVOptions() CSVOptions {
	return CSVOptions{
		VesselColumn: "mmsi",
		TimeColumn:   "timestamp",
		LatColumn:    "lat",
		LonColumn:    "lon",
		Comma:        ',',
	}
}

var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05.999999999",
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04",
	"2006-01-02",
}

// ParseTimestamp accepts RFC3339, "YYYY-MM-DD hh:mm:ss[.fff]" (UTC) or
// epoch seconds.
func ParseTimestamp(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, errors.New("empty timestamp")
	}
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	if secs, err := strconv.ParseFloat(s, 64); err == nil {
		whole := int64(secs)
		frac := secs - float64(whole)
		return time.Unix(whole, int64(frac*1e9)).UTC(), nil
	}
	return time.Time{}, fmt.Errorf("unrecognised timestamp %q", s)
}

// ReadCSV parses a header-led CSV position log. Extra columns are ignored.
// Any malformed row aborts the read with an error naming its line.
func ReadCSV(r io.Reader, opts CSVOptions) ([]model.RawReport, error) {
	cr := csv.NewReader(r)
	if opts.Comma != 0 {
		cr.Comma = opts.Comma
	}
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("empty input: %w", ErrMissingColumn)
		}
		return nil, fmt.Errorf("read header: %w", err)
	}
	cols := make(map[string]int, len(header))
	for i, h := range header {
		h = strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
		cols[strings.ToLower(h)] = i
	}
	lookup := func(name string) (int, error) {
		i, ok := cols[strings.ToLower(name)]
		if !ok {
			return 0, fmt.Errorf("%w %q", ErrMissingColumn, name)
		}
		return i, nil
	}
	var idx [4]int
	for n, name := range []string{opts.VesselColumn, opts.TimeColumn, opts.LatColumn, opts.LonColumn} {
		if idx[n], err = lookup(name); err != nil {
			return nil, err
		}
	}

	var out []model.RawReport
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read csv: %w", err)
		}
		line, _ := cr.FieldPos(0)
		field := func(i int) (string, error) {
			if i >= len(rec) {
				return "", fmt.Errorf("line %d: %w %q", line, ErrMissingColumn, header[i])
			}
			return strings.TrimSpace(rec[i]), nil
		}

		id, err := field(idx[0])
		if err != nil {
			return nil, err
		}
		ts, err := field(idx[1])
		if err != nil {
			return nil, err
		}
		latS, err := field(idx[2])
		if err != nil {
			return nil, err
		}
		lonS, err := field(idx[3])
		if err != nil {
			return nil, err
		}

		when, err := ParseTimestamp(ts)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		lat, err := strconv.ParseFloat(latS, 64)
		if err != nil {
			return nil, fmt.Errorf("line %d: parse lat: %w", line, err)
		}
		lon, err := strconv.ParseFloat(lonS, 64)
		if err != nil {
			return nil, fmt.Errorf("line %d: parse lon: %w", line, err)
		}
		if id == "" {
			return nil, fmt.Errorf("line %d: empty vessel id", line)
		}
		out = append(out, model.RawReport{
			VesselID:  model.VesselID(id),
			Timestamp: when,
			Latitude:  lat,
			Longitude: lon,
		})
	}
	return out, nil
}
