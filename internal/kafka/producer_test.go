package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yeonjoon13/Vessel-Collision-Tracker/internal/model"
)

type fakeWriter struct {
	msgs []kafka.Message
	err  error
}

func (f *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if f.err != nil {
		return f.err
	}
	f.msgs = append(f.msgs, msgs...)
	return nil
}

func TestPublishReportsRoundTrip(t *testing.T) {
	t0 := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	reports := []model.RawReport{
		{VesselID: "244660000", Timestamp: t0, Latitude: 51.95, Longitude: 4.05},
		{VesselID: "211331640", Timestamp: t0.Add(time.Second), Latitude: 51.96, Longitude: 4.06},
	}
	w := &fakeWriter{}
	require.NoError(t, PublishReports(context.Background(), w, reports))
	require.Len(t, w.msgs, 2)
	assert.Equal(t, "244660000", string(w.msgs[0].Key))
	assert.Equal(t, t0, w.msgs[0].Time)

	for i, m := range w.msgs {
		got, err := DecodeReport(m)
		require.NoError(t, err)
		assert.Equal(t, reports[i].VesselID, got.VesselID)
		assert.True(t, reports[i].Timestamp.Equal(got.Timestamp))
		assert.Equal(t, reports[i].Latitude, got.Latitude)
	}
}

func TestDecodeReportRejectsInvalid(t *testing.T) {
	_, err := DecodeReport(kafka.Message{Value: []byte(`{"mmsi":"1","lat":100,"lon":0}`), Offset: 7})
	require.Error(t, err)
	assert.ErrorIs(t, err, model.ErrInvalidCoordinate)
	assert.Contains(t, err.Error(), "offset 7")
}

func TestPublishEvents(t *testing.T) {
	events := []model.CollisionEvent{
		{VesselA: "X", VesselB: "Y", Longitude: 0.001, DistanceKm: 0.111},
	}
	w := &fakeWriter{}
	require.NoError(t, PublishEvents(context.Background(), w, "run-1", events))
	require.Len(t, w.msgs, 1)
	assert.Equal(t, "X", string(w.msgs[0].Key))
	require.Len(t, w.msgs[0].Headers, 1)
	assert.Equal(t, "Y", string(w.msgs[0].Headers[0].Value))

	var payload map[string]any
	require.NoError(t, json.Unmarshal(w.msgs[0].Value, &payload))
	assert.Equal(t, "run-1", payload["run_id"])
	assert.Equal(t, "X", payload["vessel_id_a"])
	assert.Equal(t, "Y", payload["vessel_id_b"])
	assert.Equal(t, 0.111, payload["distance_km"])
}

func TestPublishNothing(t *testing.T) {
	w := &fakeWriter{err: errors.New("should not be called")}
	assert.NoError(t, PublishEvents(context.Background(), w, "run", nil))
	assert.NoError(t, PublishReports(context.Background(), w, nil))
}

func TestPublishPropagatesWriterError(t *testing.T) {
	w := &fakeWriter{err: errors.New("broker down")}
	err := PublishEvents(context.Background(), w, "run", []model.CollisionEvent{{VesselA: "a", VesselB: "b"}})
	assert.EqualError(t, err, "broker down")
}
