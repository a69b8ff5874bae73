package kafka

import (
	"context"
	"encoding/json"

	"github.com/segmentio/kafka-go"

	"github.com/yeonjoon13/Vessel-Collision-Tracker/internal/model"
)

// MessageWriter is the subset of kafka.Writer used for publishing.
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
}

// NewWriter returns a writer that hashes message keys onto partitions, so
// all messages of one vessel stay ordered.
func NewWriter(brokers []string, topic string) *kafka.Writer {
	return &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.Hash{},
		AllowAutoTopicCreation: true,
	}
}

// EventMessage is the payload published for each collision event.
type EventMessage struct {
	RunID string `json:"run_id"`
	model.CollisionEvent
}

// ReportMessages encodes reports keyed by vessel id.
func ReportMessages(reports []model.RawReport) ([]kafka.Message, error) {
	msgs := make([]kafka.Message, len(reports))
	for i, r := range reports {
		b, err := json.Marshal(r)
		if err != nil {
			return nil, err
		}
		msgs[i] = kafka.Message{Key: []byte(r.VesselID), Value: b, Time: r.Timestamp}
	}
	return msgs, nil
}

// EventMessages encodes events keyed by the reference vessel id.
func EventMessages(runID string, events []model.CollisionEvent) ([]kafka.Message, error) {
	msgs := make([]kafka.Message, len(events))
	for i, e := range events {
		b, err := json.Marshal(EventMessage{RunID: runID, CollisionEvent: e})
		if err != nil {
			return nil, err
		}
		msgs[i] = kafka.Message{
			Key:     []byte(e.VesselA),
			Value:   b,
			Headers: []kafka.Header{{Key: "vessel_id_b", Value: []byte(e.VesselB)}},
		}
	}
	return msgs, nil
}

// PublishReports writes reports to w.
func PublishReports(ctx context.Context, w MessageWriter, reports []model.RawReport) error {
	msgs, err := ReportMessages(reports)
	if err != nil {
		return err
	}
	if len(msgs) == 0 {
		return nil
	}
	return w.WriteMessages(ctx, msgs...)
}

// PublishEvents writes the events of one run to w.
func PublishEvents(ctx context.Context, w MessageWriter, runID string, events []model.CollisionEvent) error {
	msgs, err := EventMessages(runID, events)
	if err != nil {
		return err
	}
	if len(msgs) == 0 {
		return nil
	}
	return w.WriteMessages(ctx, msgs...)
}
