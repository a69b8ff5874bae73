package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/yeonjoon13/Vessel-Collision-Tracker/internal/api"
	"github.com/yeonjoon13/Vessel-Collision-Tracker/internal/config"
	"github.com/yeonjoon13/Vessel-Collision-Tracker/internal/logging"
	"github.com/yeonjoon13/Vessel-Collision-Tracker/internal/metrics"
	"github.com/yeonjoon13/Vessel-Collision-Tracker/internal/store"
	"github.com/yeonjoon13/Vessel-Collision-Tracker/internal/tracing"
)

func main() {
	log := logging.NewFromEnv()

	var (
		addr   = flag.String("addr", config.String("HTTP_ADDR", ":8080"), "listen address")
		dbPath = flag.String("db", config.String("DB_PATH", "vessels.db"), "SQLite database path")
		poll   = flag.Duration("poll", config.Duration("RUN_POLL_INTERVAL", time.Second, log), "how often to check for new runs")
	)
	flag.Parse()

	st, err := store.Open(*dbPath)
	if err != nil {
		log.Error("open store", "path", *dbPath, "err", err)
		os.Exit(1)
	}
	defer st.Close()

	m, err := metrics.New(prometheus.DefaultRegisterer)
	if err != nil {
		log.Error("metrics", "err", err)
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	shutdownTracing, err := tracing.Init(ctx, tracing.ConfigFromEnv("wsserver", log), log)
	if err != nil {
		log.Error("init tracing", "err", err)
		os.Exit(1)
	}
	defer tracing.Shutdown(shutdownTracing, log)

	srv := api.NewServer(st, m.Handler(), log)
	go srv.Watch(ctx, *poll)

	httpSrv := &http.Server{
		Addr:              *addr,
		Handler:           srv.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		<-ctx.Done()
		shutdown, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := httpSrv.Shutdown(shutdown); err != nil {
			log.Warn("http shutdown", "err", err)
		}
	}()

	log.Info("websocket server starting", "addr", *addr, "db", *dbPath)
	if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Error("http server", "err", err)
		os.Exit(1)
	}
	log.Info("shutting down")
}
