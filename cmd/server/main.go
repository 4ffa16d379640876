package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	appservice "github.com/snowch/vast-sp-console/internal/application/service"
	"github.com/snowch/vast-sp-console/internal/config"
	"github.com/snowch/vast-sp-console/internal/domain/service"
	"github.com/snowch/vast-sp-console/internal/infrastructure/crypto"
	"github.com/snowch/vast-sp-console/internal/infrastructure/monitoring"
	"github.com/snowch/vast-sp-console/internal/infrastructure/ratelimit"
	"github.com/snowch/vast-sp-console/internal/infrastructure/vastcluster"
	"github.com/snowch/vast-sp-console/internal/infrastructure/vastdb"
	httpapi "github.com/snowch/vast-sp-console/internal/interfaces/http"
	"github.com/snowch/vast-sp-console/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	appLogger, err := logger.New(cfg.Log.Level)
	if err != nil {
		log.Fatalf("failed to create logger: %v", err)
	}
	config.Watch(appLogger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	metrics := monitoring.NewMetrics()

	limiter, cleanup, err := buildRateLimiter(ctx, cfg, appLogger)
	if err != nil {
		appLogger.Fatal(ctx, "failed to initialize rate limiter", err)
	}
	defer cleanup()

	codec := crypto.NewCodec([]byte(cfg.Auth.SigningSecret), cfg.Auth.Lifetime())
	cluster := vastcluster.New(cfg.Auth.SkipTLSVerify, appLogger)
	store := vastdb.NewManager(&cfg.VastDB, vastdb.Connect, appLogger)

	authSvc := appservice.NewAuthAppService(codec, cluster, metrics, appLogger)
	schemaSvc := appservice.NewSchemaAppService(store, metrics, appLogger)

	router := httpapi.NewRouter(cfg, appLogger, metrics, authSvc, schemaSvc, cluster, limiter)

	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(router.Start)
	group.Go(func() error {
		<-groupCtx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		return router.Stop(shutdownCtx)
	})

	if err := group.Wait(); err != nil {
		appLogger.Fatal(context.Background(), "server exited with error", err)
	}
	appLogger.Info(context.Background(), "server stopped")
}

// buildRateLimiter selects the limiter backend: in-process sliding windows
// by default, redis-backed windows when replicas must share one budget.
func buildRateLimiter(ctx context.Context, cfg *config.Config, log logger.Logger) (service.RateLimitService, func(), error) {
	maxCalls := cfg.RateLimit.MaxCallsOrDefault()
	window := cfg.RateLimit.WindowOrDefault()

	if cfg.RateLimit.Backend != "redis" {
		return ratelimit.NewSlidingWindow(maxCalls, window), func() {}, nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RateLimit.RedisAddr,
		Password: cfg.RateLimit.RedisPassword,
		DB:       cfg.RateLimit.RedisDB,
	})
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, nil, err
	}

	log.Info(ctx, "using redis rate limit backend", logger.String("addr", cfg.RateLimit.RedisAddr))
	return ratelimit.NewRedisSlidingWindow(client, maxCalls, window), func() { _ = client.Close() }, nil
}
