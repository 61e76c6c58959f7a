package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Adithya-Monish-Kumar-K/Phrase-Frequency-Platform/internal/analyzer"
	"github.com/Adithya-Monish-Kumar-K/Phrase-Frequency-Platform/internal/api/handler"
	"github.com/Adithya-Monish-Kumar-K/Phrase-Frequency-Platform/internal/api/router"
	"github.com/Adithya-Monish-Kumar-K/Phrase-Frequency-Platform/internal/dictionary"
	"github.com/Adithya-Monish-Kumar-K/Phrase-Frequency-Platform/internal/ingest"
	"github.com/Adithya-Monish-Kumar-K/Phrase-Frequency-Platform/internal/phrase/scorer"
	"github.com/Adithya-Monish-Kumar-K/Phrase-Frequency-Platform/internal/report"
	"github.com/Adithya-Monish-Kumar-K/Phrase-Frequency-Platform/internal/store/backend"
	"github.com/Adithya-Monish-Kumar-K/Phrase-Frequency-Platform/pkg/config"
	"github.com/Adithya-Monish-Kumar-K/Phrase-Frequency-Platform/pkg/health"
	"github.com/Adithya-Monish-Kumar-K/Phrase-Frequency-Platform/pkg/kafka"
	"github.com/Adithya-Monish-Kumar-K/Phrase-Frequency-Platform/pkg/logger"
	"github.com/Adithya-Monish-Kumar-K/Phrase-Frequency-Platform/pkg/metrics"
	"github.com/Adithya-Monish-Kumar-K/Phrase-Frequency-Platform/pkg/middleware"
	"github.com/Adithya-Monish-Kumar-K/Phrase-Frequency-Platform/pkg/postgres"
	pkgredis "github.com/Adithya-Monish-Kumar-K/Phrase-Frequency-Platform/pkg/redis"
)

func main() {
	configPath := flag.String("config", "configs/development.yaml", "path to config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}
	logger.Setup(cfg.Logging.Level, cfg.Logging.Format)

	if err := run(cfg); err != nil {
		slog.Error("phrased exited", "error", err)
		os.Exit(1)
	}
	slog.Info("phrased stopped")
}

func run(cfg *config.Config) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	slog.Info("starting phrase daemon",
		"port", cfg.Server.Port,
		"backend", cfg.Store.Backend,
		"kafka", cfg.Kafka.Enabled,
	)

	var m *metrics.Metrics
	if cfg.Metrics.Enabled {
		m = metrics.New(nil)
		shutdownMetrics := metrics.StartServer(cfg.Metrics.Port, m)
		defer shutdownMetrics(context.Background())
	}

	b, err := backend.Open(ctx, cfg, backend.Options{Metrics: m})
	if err != nil {
		return fmt.Errorf("opening %s store: %w", cfg.Store.Backend, err)
	}
	defer b.Close()

	dict, err := dictionary.New(b.Store, dictionary.WithConcurrency(cfg.Store.Concurrency))
	if err != nil {
		return err
	}

	checker := health.NewChecker(0)
	checker.Register("store", health.Ping(func(ctx context.Context) error {
		_, err := dict.Length(ctx)
		return err
	}, false))

	redisClient := b.Redis
	if redisClient == nil && cfg.Redis.StatsTTL > 0 {
		redisClient, err = pkgredis.NewClient(cfg.Redis)
		if err != nil {
			slog.Warn("redis unavailable, stats caching disabled", "error", err)
			redisClient = nil
		} else {
			defer redisClient.Close()
		}
	}
	var stats handler.StatsSource
	if redisClient != nil {
		checker.Register("redis", health.Ping(redisClient.Ping, b.Redis == nil))
		if cfg.Redis.StatsTTL > 0 {
			stats = report.NewStatsCache(redisClient, dict, cfg.Redis.StatsTTL)
			slog.Info("stats cache enabled", "addr", cfg.Redis.Addr, "ttl", cfg.Redis.StatsTTL)
		}
	}

	if cfg.Clean.Interval > 0 {
		report.StartPeriodicClean(ctx, dict, cfg.Clean.Interval, m)
		slog.Info("periodic clean started", "interval", cfg.Clean.Interval)
	}

	if cfg.Snapshot.Interval > 0 {
		pg := b.Postgres
		if pg == nil {
			pg, err = postgres.New(cfg.Postgres)
			if err != nil {
				slog.Warn("postgres unavailable, snapshots disabled", "error", err)
				pg = nil
			} else {
				defer pg.Close()
			}
		}
		if pg != nil {
			snapshots := report.NewSnapshotStore(pg)
			if err := snapshots.Migrate(ctx); err != nil {
				return err
			}
			checker.Register("postgres", health.Ping(pg.DB.PingContext, b.Postgres == nil))
			snapshots.StartPeriodicSave(ctx, dict, cfg.Snapshot.Top, cfg.Snapshot.Interval)
		}
	}

	var pub *ingest.Publisher
	if cfg.Kafka.Enabled {
		producer := kafka.NewProducer(cfg.Kafka, cfg.Kafka.Topics.Documents)
		defer producer.Close()
		pub = ingest.NewPublisher(producer)

		var seen ingest.Seen = ingest.NewMemorySeen()
		if redisClient != nil {
			seen = ingest.NewRedisSeen(redisClient, cfg.Redis.SeenKey)
		}
		consumer := kafka.NewConsumer(cfg.Kafka, cfg.Kafka.Topics.Documents,
			ingest.HandleMessage(dict, seen, cfg.Parse.MaxPhraseLength, m))
		go func() {
			if err := consumer.Start(ctx); err != nil {
				slog.Error("document consumer error", "error", err)
			}
		}()
		slog.Info("document consumer started", "topic", cfg.Kafka.Topics.Documents)
	}

	filter, err := scorer.Load(cfg.Analyze.ReferencePath, cfg.Analyze.CommonSize)
	if err != nil {
		return err
	}
	h := handler.New(dict, stats, pub, handler.Config{
		MaxPhraseLength: cfg.Parse.MaxPhraseLength,
		Analyze: analyzer.Options{
			MaxLength: cfg.Analyze.MaxPhraseLength,
			Threshold: analyzer.ThresholdOf(cfg.Analyze.Threshold),
			Filter:    filter,
		},
	})

	routerOpts := router.Options{Metrics: m, Timeout: cfg.Server.WriteTimeout}
	if cfg.Server.RateLimit > 0 {
		routerOpts.Limiter = middleware.NewLimiter(cfg.Server.RateLimit, time.Minute)
		routerOpts.Limiter.StartCleanup(ctx, 5*time.Minute)
	}

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router.New(h, checker, routerOpts),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		<-ctx.Done()
		slog.Info("shutdown signal received")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("server shutdown error", "error", err)
		}
	}()

	slog.Info("phrase daemon listening", "addr", server.Addr)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
