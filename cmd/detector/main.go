package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/yeonjoon13/Vessel-Collision-Tracker/internal/collision"
	"github.com/yeonjoon13/Vessel-Collision-Tracker/internal/config"
	"github.com/yeonjoon13/Vessel-Collision-Tracker/internal/kafka"
	"github.com/yeonjoon13/Vessel-Collision-Tracker/internal/logging"
	"github.com/yeonjoon13/Vessel-Collision-Tracker/internal/metrics"
	"github.com/yeonjoon13/Vessel-Collision-Tracker/internal/store"
	"github.com/yeonjoon13/Vessel-Collision-Tracker/internal/tracing"
)

func main() {
	log := logging.NewFromEnv()

	var (
		input       = flag.String("input", "", "position log CSV file (- for stdin)")
		url         = flag.String("url", "", "position log CSV URL")
		fromDB      = flag.Bool("from-db", false, "search the reports stored by the consumer")
		dbPath      = flag.String("db", config.String("DB_PATH", ""), "SQLite database for runs (optional)")
		broker      = flag.String("broker", os.Getenv("KAFKA_BROKER"), "Kafka brokers for publishing events (optional)")
		topic       = flag.String("topic", config.String("KAFKA_EVENTS_TOPIC", kafka.EventsTopic), "Kafka topic for collision events")
		csvOut      = flag.String("csv", "", "write events as CSV")
		geoOut      = flag.String("geojson", "", "write events as GeoJSON")
		htmlOut     = flag.String("html", "", "write an interactive HTML map")
		pngOut      = flag.String("png", "", "write a PNG map")
		dedupe      = flag.Bool("dedupe", false, "drop mirrored A/B events")
		interval    = flag.Duration("interval", 0, "repeat the search on this interval (0 runs once)")
		metricsAddr = flag.String("metrics-addr", config.String("METRICS_ADDR", ""), "serve /metrics on this address (optional)")
	)
	flag.Parse()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	shutdownTracing, err := tracing.Init(ctx, tracing.ConfigFromEnv("detector", log), log)
	if err != nil {
		log.Error("init tracing", "err", err)
		os.Exit(1)
	}
	defer tracing.Shutdown(shutdownTracing, log)

	m, err := metrics.New(prometheus.DefaultRegisterer)
	if err != nil {
		log.Error("metrics", "err", err)
		os.Exit(1)
	}
	if *metricsAddr != "" {
		go serveMetrics(ctx, *metricsAddr, m.Handler(), log)
	}

	searcher, err := collision.NewSearcher(config.Search(log), collision.WithLogger(log), collision.WithRecorder(m))
	if err != nil {
		log.Error("invalid search configuration", "err", err)
		os.Exit(2)
	}

	d := &detector{
		log:      log,
		searcher: searcher,
		dedupe:   *dedupe,
		outputs:  outputs{CSV: *csvOut, GeoJSON: *geoOut, HTML: *htmlOut, PNG: *pngOut},
	}

	if *dbPath != "" {
		st, err := store.Open(*dbPath)
		if err != nil {
			log.Error("open store", "path", *dbPath, "err", err)
			os.Exit(1)
		}
		defer st.Close()
		d.store = st
	}

	switch {
	case *fromDB:
		if d.store == nil {
			log.Error("-from-db requires -db or DB_PATH")
			os.Exit(2)
		}
		d.load = storeSource(d.store)
	case *url != "":
		d.load = urlSource(*url)
	case *input != "":
		d.load = fileSource(*input)
	default:
		log.Error("one of -input, -url or -from-db is required")
		flag.Usage()
		os.Exit(2)
	}

	if *broker != "" {
		brokers := config.Brokers(*broker)
		if err := kafka.CreateTopics(brokers[0], []kafka.TopicConfig{{Topic: *topic, NumPartitions: 1, ReplicationFactor: 1}}); err != nil {
			log.Warn("create topic", "topic", *topic, "err", err)
		}
		w := kafka.NewWriter(brokers, *topic)
		defer w.Close()
		d.events = w
	}

	if *interval <= 0 {
		if _, err := d.run(ctx); err != nil {
			log.Error("detection failed", "err", err)
			os.Exit(1)
		}
		return
	}

	ticker := time.NewTicker(*interval)
	defer ticker.Stop()
	log.Info("starting detector", "interval", *interval)
	for {
		if _, err := d.run(ctx); err != nil {
			if ctx.Err() != nil {
				break
			}
			log.Error("detection failed", "err", err)
		}
		select {
		case <-ctx.Done():
			log.Info("shutting down detector")
			return
		case <-ticker.C:
		}
	}
	log.Info("shutting down detector")
}

func serveMetrics(ctx context.Context, addr string, h http.Handler, log *slog.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", h)
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		<-ctx.Done()
		shutdown, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdown)
	}()
	log.Info("serving metrics", "addr", addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Error("metrics server", "err", err)
	}
}
