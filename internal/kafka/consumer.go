package kafka

import (
	"fmt"

	"github.com/segmentio/kafka-go"

	"github.com/yeonjoon13/Vessel-Collision-Tracker/internal/model"
)

// NewReader returns a consumer-group reader that starts from the oldest
// retained message.
func NewReader(brokers []string, topic, groupID string) *kafka.Reader {
	return kafka.NewReader(kafka.ReaderConfig{
		Brokers:         brokers,
		Topic:           topic,
		GroupID:         groupID,
		MinBytes:        10e3,
		MaxBytes:        10e6,
		ReadLagInterval: -1,
		StartOffset:     kafka.FirstOffset,
	})
}

// DecodeReport parses and validates a report message.
func DecodeReport(m kafka.Message) (model.RawReport, error) {
	var r model.RawReport
	if err := model.UnmarshalRawReport(m.Value, &r); err != nil {
		return model.RawReport{}, fmt.Errorf("decode report at partition %d offset %d: %w", m.Partition, m.Offset, err)
	}
	return r, nil
}
