package main

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yeonjoon13/Vessel-Collision-Tracker/internal/collision"
	"github.com/yeonjoon13/Vessel-Collision-Tracker/internal/store"
)

// X and Y meet at 10:00; Z is far away; Y alone at 10:05.
const positionLog = `mmsi,timestamp,lat,lon
X,2024-03-01T10:00:00Z,0,0
Y,2024-03-01T10:00:00Z,0,0.001
Z,2024-03-01T10:00:00Z,0,0.5
Y,2024-03-01T10:05:00Z,0.1,0.1
`

type captureWriter struct {
	msgs []kafkago.Message
}

func (c *captureWriter) WriteMessages(_ context.Context, msgs ...kafkago.Message) error {
	c.msgs = append(c.msgs, msgs...)
	return nil
}

func newDetector(t *testing.T, dedupe bool) (*detector, string) {
	t.Helper()
	dir := t.TempDir()
	in := filepath.Join(dir, "positions.csv")
	require.NoError(t, os.WriteFile(in, []byte(positionLog), 0o644))

	s, err := collision.NewSearcher(collision.DefaultConfig())
	require.NoError(t, err)
	return &detector{
		log:      slog.New(slog.DiscardHandler),
		searcher: s,
		load:     fileSource(in),
		dedupe:   dedupe,
	}, dir
}

func TestRunWritesOutputs(t *testing.T) {
	d, dir := newDetector(t, false)
	d.outputs = outputs{
		CSV:     filepath.Join(dir, "out", "events.csv"),
		GeoJSON: filepath.Join(dir, "out", "events.geojson"),
		HTML:    filepath.Join(dir, "out", "map.html"),
		PNG:     filepath.Join(dir, "out", "map.png"),
	}

	run, err := d.run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, run.EventCount)
	assert.Equal(t, 4, run.ReportCount)
	assert.False(t, run.Deduplicated)

	f, err := os.Open(d.outputs.CSV)
	require.NoError(t, err)
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"X", "Y"}, rows[1][:2])
	assert.Equal(t, []string{"Y", "X"}, rows[2][:2])

	raw, err := os.ReadFile(d.outputs.GeoJSON)
	require.NoError(t, err)
	var fc map[string]any
	require.NoError(t, json.Unmarshal(raw, &fc))
	assert.Len(t, fc["features"], 2)

	for _, p := range []string{d.outputs.HTML, d.outputs.PNG} {
		st, err := os.Stat(p)
		require.NoError(t, err)
		assert.NotZero(t, st.Size(), p)
	}
}

func TestRunStoresAndPublishes(t *testing.T) {
	d, dir := newDetector(t, true)
	st, err := store.Open(filepath.Join(dir, "runs.db"))
	require.NoError(t, err)
	defer st.Close()
	d.store = st
	w := &captureWriter{}
	d.events = w

	run, err := d.run(context.Background())
	require.NoError(t, err)
	assert.True(t, run.Deduplicated)
	assert.Equal(t, 1, run.EventCount)

	saved, err := st.Run(context.Background(), run.ID)
	require.NoError(t, err)
	assert.Equal(t, collision.DefaultMaxDistanceKm, saved.MaxDistanceKm)
	events, err := st.Events(context.Background(), run.ID)
	require.NoError(t, err)
	assert.Len(t, events, 1)

	require.Len(t, w.msgs, 1)
	assert.Contains(t, string(w.msgs[0].Value), run.ID)
}

func TestRunFromStore(t *testing.T) {
	d, dir := newDetector(t, false)
	raw, _, err := d.load(context.Background())
	require.NoError(t, err)

	st, err := store.Open(filepath.Join(dir, "reports.db"))
	require.NoError(t, err)
	defer st.Close()
	require.NoError(t, st.SaveReports(context.Background(), raw))
	d.load = storeSource(st)

	run, err := d.run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "store", run.Source)
	assert.Equal(t, 2, run.EventCount)
}

func TestRunMissingInput(t *testing.T) {
	d, dir := newDetector(t, false)
	d.load = fileSource(filepath.Join(dir, "missing.csv"))
	_, err := d.run(context.Background())
	assert.ErrorIs(t, err, os.ErrNotExist)
}
