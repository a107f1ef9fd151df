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

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"github.com/Adithya-Monish-Kumar-K/covenant-term-search/internal/catalog"
	"github.com/Adithya-Monish-Kumar-K/covenant-term-search/internal/ledger"
	"github.com/Adithya-Monish-Kumar-K/covenant-term-search/internal/termsearch"
	"github.com/Adithya-Monish-Kumar-K/covenant-term-search/pkg/config"
	"github.com/Adithya-Monish-Kumar-K/covenant-term-search/pkg/health"
	"github.com/Adithya-Monish-Kumar-K/covenant-term-search/pkg/kafka"
	"github.com/Adithya-Monish-Kumar-K/covenant-term-search/pkg/logger"
	"github.com/Adithya-Monish-Kumar-K/covenant-term-search/pkg/metrics"
	"github.com/Adithya-Monish-Kumar-K/covenant-term-search/pkg/middleware"
	"github.com/Adithya-Monish-Kumar-K/covenant-term-search/pkg/postgres"
	pkgredis "github.com/Adithya-Monish-Kumar-K/covenant-term-search/pkg/redis"
	"github.com/Adithya-Monish-Kumar-K/covenant-term-search/pkg/resilience"
	"github.com/Adithya-Monish-Kumar-K/covenant-term-search/pkg/storage"
)

func main() {
	configPath := flag.String("config", "configs/development.yaml", "path to config file")
	flag.Parse()

	// TS_* overrides may come from a local .env file.
	_ = godotenv.Load()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}
	logger.Setup(cfg.Logging.Level, cfg.Logging.Format)
	slog.Info("starting term search service", "port", cfg.Server.Port, "kafka", cfg.Kafka.Enabled)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg); err != nil {
		slog.Error("term search service failed", "error", err)
		os.Exit(1)
	}
	slog.Info("term search service stopped")
}

func run(ctx context.Context, cfg *config.Config) error {
	var m *metrics.Metrics
	if cfg.Metrics.Enabled {
		m = metrics.New(nil)
	}
	checker := health.NewChecker()

	s3Store, err := storage.NewS3Store(ctx, cfg.Storage)
	if err != nil {
		return fmt.Errorf("creating object store: %w", err)
	}
	var observer storage.Observer
	if m != nil {
		observer = m
	}
	store := storage.NewResilient(s3Store, cfg.Storage, observer)
	checker.Register("object_store", func(context.Context) health.ComponentHealth {
		switch state := store.BreakerState(); state {
		case resilience.StateClosed:
			return health.ComponentHealth{Status: health.StatusUp}
		case resilience.StateHalfOpen:
			return health.ComponentHealth{Status: health.StatusDegraded, Message: "circuit " + state.String()}
		default:
			return health.ComponentHealth{Status: health.StatusDown, Message: "circuit " + state.String()}
		}
	})

	fallback := catalog.Default()
	if cfg.Catalog.File != "" {
		fallback, err = catalog.LoadFile(cfg.Catalog.File)
		if err != nil {
			return fmt.Errorf("loading catalog: %w", err)
		}
	}
	var provider catalog.Provider = catalog.NewStatic(fallback)

	if cfg.Redis.Enabled {
		redisClient, err := pkgredis.NewClient(ctx, cfg.Redis)
		if err != nil {
			slog.Warn("redis unavailable, using static catalog", "error", err)
		} else {
			defer redisClient.Close()
			checker.Register("redis", health.Ping(redisClient.Ping, health.StatusDegraded))
			if cfg.Catalog.RedisKey != "" {
				provider = catalog.NewRedisSource(redisClient, cfg.Catalog.RedisKey, cfg.Catalog.RefreshInterval, fallback, pkgredis.IsNilError)
				slog.Info("catalog hot-swap enabled", "key", cfg.Catalog.RedisKey, "refresh", cfg.Catalog.RefreshInterval)
			}
		}
	}
	slog.Info("fallback catalog loaded", "version", fallback.Version(), "terms", fallback.Len())

	hitLedger := ledger.New(nil)
	if cfg.Postgres.Enabled {
		pg, err := postgres.New(ctx, cfg.Postgres)
		if err != nil {
			slog.Warn("postgres unavailable, hit ledger disabled", "error", err)
		} else {
			defer pg.Close()
			hitLedger = ledger.New(pg)
			if err := hitLedger.EnsureSchema(ctx); err != nil {
				return err
			}
			checker.Register("postgres", health.Ping(pg.Ping, health.StatusDegraded))
		}
	}

	h := termsearch.New(provider, store, cfg.Storage.StorageClass, termsearch.Options{
		Ledger:  hitLedger,
		Metrics: m,
		Tracing: cfg.Tracing.Enabled,
	})

	g, gctx := errgroup.WithContext(ctx)

	if cfg.Kafka.Enabled {
		results := kafka.NewProducer(cfg.Kafka, cfg.Kafka.Topics.Results)
		defer results.Close()
		deadLetter := kafka.NewProducer(cfg.Kafka, cfg.Kafka.Topics.DeadLetter)
		defer deadLetter.Close()
		consumer := kafka.NewConsumer(cfg.Kafka, cfg.Kafka.Topics.Invocations, int(cfg.Server.MaxEventBytes),
			termsearch.HandleMessage(h, results, deadLetter, cfg.Server.InvocationTimeout))
		g.Go(func() error { return consumer.Start(gctx) })
		slog.Info("invocation consumer started", "topic", cfg.Kafka.Topics.Invocations, "group", cfg.Kafka.ConsumerGroup)
	}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /invoke", h.Invoke(cfg.Server.MaxEventBytes))
	mux.HandleFunc("GET /health/live", checker.LiveHandler())
	mux.HandleFunc("GET /health/ready", checker.ReadyHandler())

	var chain http.Handler = mux
	chain = middleware.Timeout(cfg.Server.InvocationTimeout)(chain)
	if m != nil {
		chain = middleware.Metrics(m)(chain)
	}
	chain = middleware.RequestID(chain)

	servers := []*http.Server{{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      chain,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}}
	if m != nil {
		servers = append(servers, metrics.NewServer(cfg.Metrics.Port))
	}

	for _, srv := range servers {
		g.Go(func() error {
			slog.Info("listening", "addr", srv.Addr)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("serving %s: %w", srv.Addr, err)
			}
			return nil
		})
		g.Go(func() error {
			<-gctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		})
	}

	return g.Wait()
}
