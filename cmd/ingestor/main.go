package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/yeonjoon13/Vessel-Collision-Tracker/internal/config"
	"github.com/yeonjoon13/Vessel-Collision-Tracker/internal/feed"
	"github.com/yeonjoon13/Vessel-Collision-Tracker/internal/ingest"
	"github.com/yeonjoon13/Vessel-Collision-Tracker/internal/kafka"
	"github.com/yeonjoon13/Vessel-Collision-Tracker/internal/logging"
	"github.com/yeonjoon13/Vessel-Collision-Tracker/internal/model"
)

func main() {
	log := logging.NewFromEnv()

	var (
		broker   = flag.String("broker", config.String("KAFKA_BROKER", "localhost:9092"), "Kafka broker addresses")
		topic    = flag.String("topic", config.String("KAFKA_TOPIC", kafka.ReportsTopic), "Kafka topic for vessel reports")
		input    = flag.String("input", "", "position log CSV file")
		url      = flag.String("url", "", "position log CSV URL")
		interval = flag.Duration("interval", 0, "poll -url on this interval (0 fetches once)")
	)
	flag.Parse()

	if (*input == "") == (*url == "") {
		log.Error("exactly one of -input or -url is required")
		flag.Usage()
		os.Exit(2)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	brokers := config.Brokers(*broker)
	if err := kafka.CreateTopics(brokers[0], []kafka.TopicConfig{{Topic: *topic, NumPartitions: 3, ReplicationFactor: 1}}); err != nil {
		log.Warn("create topic", "topic", *topic, "err", err)
	}
	w := kafka.NewWriter(brokers, *topic)
	defer w.Close()

	if *input != "" {
		raw, err := readFile(*input)
		if err != nil {
			log.Error("read position log", "path", *input, "err", err)
			os.Exit(1)
		}
		if err := publish(ctx, w, raw, log); err != nil {
			os.Exit(1)
		}
		return
	}

	client := feed.NewClient()
	fetch := func() {
		raw, err := client.FetchCSV(ctx, *url)
		if err != nil {
			log.Error("fetch error", "url", *url, "err", err)
			return
		}
		log.Info("fetched reports", "count", len(raw))
		_ = publish(ctx, w, raw, log)
	}

	fetch()
	if *interval <= 0 {
		return
	}

	ticker := time.NewTicker(*interval)
	defer ticker.Stop()
	log.Info("starting ingestor", "url", *url, "interval", *interval)
	for {
		select {
		case <-ctx.Done():
			log.Info("shutting down ingestor")
			return
		case <-ticker.C:
			fetch()
		}
	}
}

func readFile(path string) ([]model.RawReport, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ingest.ReadCSV(f, ingest.DefaultCSVOptions())
}

func publish(ctx context.Context, w kafka.MessageWriter, raw []model.RawReport, log *slog.Logger) error {
	if err := kafka.PublishReports(ctx, w, raw); err != nil {
		log.Error("publish error", "err", err)
		return err
	}
	log.Info("published reports", "count", len(raw))
	return nil
}
