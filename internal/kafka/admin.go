package kafka

import (
	"fmt"
	"net"

	"github.com/segmentio/kafka-go"
)

// Default topic names.
const (
	ReportsTopic = "vessel_reports"
	EventsTopic  = "collision_events"
)

type TopicConfig struct {
	Topic             string
	NumPartitions     int
	ReplicationFactor int
}

// CreateTopics ensures each topic exists with given config
func CreateTopics(broker string, configs []TopicConfig) error {
	conn, err := kafka.Dial("tcp", broker)
	if err != nil {
		return err
	}
	defer conn.Close()

	controller, err := conn.Controller()
	if err != nil {
		return err
	}
	hostPort := net.JoinHostPort(controller.Host, fmt.Sprint(controller.Port))
	ctrlConn, err := kafka.Dial("tcp", hostPort)
	if err != nil {
		return err
	}
	defer ctrlConn.Close()

	topics := make([]kafka.TopicConfig, 0, len(configs))
	for _, cfg := range configs {
		topics = append(topics, kafka.TopicConfig{
			Topic:             cfg.Topic,
			NumPartitions:     max(cfg.NumPartitions, 1),
			ReplicationFactor: max(cfg.ReplicationFactor, 1),
		})
	}
	return ctrlConn.CreateTopics(topics...)
}
