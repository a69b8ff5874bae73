package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	kafkago "github.com/segmentio/kafka-go"

	"github.com/yeonjoon13/Vessel-Collision-Tracker/internal/config"
	"github.com/yeonjoon13/Vessel-Collision-Tracker/internal/kafka"
	"github.com/yeonjoon13/Vessel-Collision-Tracker/internal/logging"
	"github.com/yeonjoon13/Vessel-Collision-Tracker/internal/model"
	"github.com/yeonjoon13/Vessel-Collision-Tracker/internal/store"
)

const (
	defaultBatchSize  = 500
	defaultFlushEvery = 2 * time.Second
)

// fetcher is the subset of kafka.Reader the consumer loop needs.
type fetcher interface {
	FetchMessage(ctx context.Context) (kafkago.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafkago.Message) error
}

// sink persists decoded reports.
type sink interface {
	SaveReports(ctx context.Context, reports []model.RawReport) error
}

func main() {
	log := logging.NewFromEnv()

	var (
		broker = flag.String("broker", config.String("KAFKA_BROKER", "localhost:9092"), "Kafka broker addresses")
		topic  = flag.String("topic", config.String("KAFKA_TOPIC", kafka.ReportsTopic), "Kafka topic for vessel reports")
		group  = flag.String("group", config.String("KAFKA_GROUP", "report-store"), "Consumer group ID")
		dbPath = flag.String("db", config.String("DB_PATH", "vessels.db"), "SQLite database path")
		batch  = flag.Int("batch", config.Int("CONSUMER_BATCH", defaultBatchSize, log), "reports per transaction")
		flush  = flag.Duration("flush", config.Duration("CONSUMER_FLUSH", defaultFlushEvery, log), "max time a partial batch waits")
	)
	flag.Parse()

	st, err := store.Open(*dbPath)
	if err != nil {
		log.Error("open store", "path", *dbPath, "err", err)
		os.Exit(1)
	}
	defer st.Close()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	reader := kafka.NewReader(config.Brokers(*broker), *topic, *group)
	defer reader.Close()

	log.Info("starting consumer", "broker", *broker, "topic", *topic, "group", *group, "db", *dbPath)
	c := &consumer{src: reader, dst: st, log: log, batch: *batch, flushEvery: *flush}
	if err := c.run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		log.Error("consumer stopped", "err", err)
		os.Exit(1)
	}
	log.Info("shutting down consumer")
}

type consumer struct {
	src        fetcher
	dst        sink
	log        *slog.Logger
	batch      int
	flushEvery time.Duration

	pending []kafkago.Message
	reports []model.RawReport
}

// run reads until ctx is done. Messages are committed only after their
// reports are stored; undecodable messages are logged and committed.
func (c *consumer) run(ctx context.Context) error {
	for {
		fetchCtx, cancel := context.WithTimeout(ctx, c.flushEvery)
		m, err := c.src.FetchMessage(fetchCtx)
		cancel()
		if err != nil {
			if ctx.Err() != nil {
				// best effort on shutdown
				flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				ferr := c.flush(flushCtx)
				cancel()
				if ferr != nil {
					c.log.Error("final flush", "err", ferr)
				}
				return ctx.Err()
			}
			if errors.Is(err, context.DeadlineExceeded) {
				if err := c.flush(ctx); err != nil {
					return err
				}
				continue
			}
			c.log.Warn("read error", "err", err)
			time.Sleep(time.Second)
			continue
		}

		c.pending = append(c.pending, m)
		r, err := kafka.DecodeReport(m)
		if err != nil {
			c.log.Warn("skipping message", "err", err)
		} else {
			c.reports = append(c.reports, r)
		}
		if len(c.pending) >= c.batch {
			if err := c.flush(ctx); err != nil {
				return err
			}
		}
	}
}

func (c *consumer) flush(ctx context.Context) error {
	if len(c.pending) == 0 {
		return nil
	}
	if len(c.reports) > 0 {
		if err := c.dst.SaveReports(ctx, c.reports); err != nil {
			return err
		}
	}
	if err := c.src.CommitMessages(ctx, c.pending...); err != nil {
		return err
	}
	c.log.Debug("stored reports", "count", len(c.reports), "messages", len(c.pending))
	c.pending = c.pending[:0]
	c.reports = c.reports[:0]
	return nil
}
