package main

import (
	"context"
	"errors"
	"log/slog"
	"slices"
	"sync"
	"testing"
	"time"

	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yeonjoon13/Vessel-Collision-Tracker/internal/kafka"
	"github.com/yeonjoon13/Vessel-Collision-Tracker/internal/model"
)

type fakeFetcher struct {
	mu        sync.Mutex
	msgs      []kafkago.Message
	committed []kafkago.Message
}

func (f *fakeFetcher) FetchMessage(ctx context.Context) (kafkago.Message, error) {
	f.mu.Lock()
	if len(f.msgs) > 0 {
		m := f.msgs[0]
		f.msgs = f.msgs[1:]
		f.mu.Unlock()
		return m, nil
	}
	f.mu.Unlock()
	<-ctx.Done()
	return kafkago.Message{}, ctx.Err()
}

func (f *fakeFetcher) CommitMessages(_ context.Context, msgs ...kafkago.Message) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.committed = append(f.committed, msgs...)
	return nil
}

func (f *fakeFetcher) commits() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.committed)
}

type fakeSink struct {
	mu      sync.Mutex
	saved   []model.RawReport
	failing bool
}

func (s *fakeSink) SaveReports(_ context.Context, reports []model.RawReport) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failing {
		return errors.New("disk full")
	}
	s.saved = append(s.saved, reports...)
	return nil
}

func (s *fakeSink) reports() []model.RawReport {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]model.RawReport(nil), s.saved...)
}

func messages(t *testing.T) []kafkago.Message {
	t.Helper()
	ts := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	msgs, err := kafka.ReportMessages([]model.RawReport{
		{VesselID: "X", Timestamp: ts, Latitude: 1, Longitude: 2},
		{VesselID: "Y", Timestamp: ts, Latitude: 1, Longitude: 2.001},
		{VesselID: "X", Timestamp: ts.Add(time.Minute), Latitude: 1.001, Longitude: 2},
	})
	require.NoError(t, err)
	bad := kafkago.Message{Value: []byte(`{"mmsi":"Z","lat":123,"lon":0}`)}
	return slices.Insert(msgs, 1, bad)
}

func TestConsumerStoresAndCommits(t *testing.T) {
	src := &fakeFetcher{msgs: messages(t)}
	dst := &fakeSink{}
	c := &consumer{src: src, dst: dst, log: slog.New(slog.DiscardHandler), batch: 2, flushEvery: 20 * time.Millisecond}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- c.run(ctx) }()

	require.Eventually(t, func() bool { return src.commits() == 4 }, 5*time.Second, 10*time.Millisecond)
	cancel()
	assert.ErrorIs(t, <-done, context.Canceled)

	saved := dst.reports()
	require.Len(t, saved, 3)
	assert.Equal(t, []model.VesselID{"X", "Y", "X"}, []model.VesselID{saved[0].VesselID, saved[1].VesselID, saved[2].VesselID})
}

func TestConsumerDoesNotCommitOnStoreFailure(t *testing.T) {
	src := &fakeFetcher{msgs: messages(t)}
	dst := &fakeSink{failing: true}
	c := &consumer{src: src, dst: dst, log: slog.New(slog.DiscardHandler), batch: 2, flushEvery: time.Second}

	err := c.run(context.Background())
	require.Error(t, err)
	assert.Zero(t, src.commits())
}
