package main

import (
	"context"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/hibiken/asynq"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/extra/redisotel/v9"
	redis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/crossbay/backend-quote/internal/cache"
	"github.com/crossbay/backend-quote/internal/config"
	"github.com/crossbay/backend-quote/internal/country"
	"github.com/crossbay/backend-quote/internal/exchange"
	"github.com/crossbay/backend-quote/internal/obs"
	"github.com/crossbay/backend-quote/internal/shiprate"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	logFormat := envOrDefault("OBS_LOG_FORMAT", "json")
	logLevel := envOrDefault("OBS_LOG_LEVEL", "info")
	logger := obs.NewLogger(logFormat, logLevel).With().Str("component", "worker").Logger()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	pool := mustInitDatabase(ctx, cfg, logger)
	redisClient := mustInitRedis(ctx, cfg, logger)
	cancel()
	defer pool.Close()
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Error().Err(err).Msg("close redis")
		}
	}()

	routeStore := &shiprate.Store{Pool: pool}
	registry := &country.Registry{
		Source: &country.Store{Pool: pool},
		Cache:  cache.NewJSON(redisClient, cfg.CountryCacheTTL),
	}
	rates := &exchange.Service{
		Countries:     registry,
		Routes:        routeStore,
		Cache:         cache.NewJSON(redisClient, cfg.RateCacheTTL),
		MarkupPercent: cfg.RateMarkupPercent,
		BaseCurrency:  cfg.BaseCurrency,
		Logger:        logger.With().Str("component", "exchange").Logger(),
	}

	redisConn, err := asynq.ParseRedisURI(cfg.RedisURL)
	if err != nil {
		logger.Fatal().Err(err).Msg("parse redis uri for asynq")
	}

	mux := asynq.NewServeMux()
	mux.Handle(exchange.TaskTypeRefresh, &exchange.RefreshHandler{
		Rates:  rates,
		Pairs:  routeStore,
		Logger: logger,
	})

	scheduler := asynq.NewScheduler(redisConn, &asynq.SchedulerOpts{})
	interval := cfg.RateRefreshInterval
	if interval <= 0 {
		interval = 15 * time.Minute
	}
	if _, err := scheduler.Register("@every "+interval.String(), exchange.NewRefreshTask()); err != nil {
		logger.Fatal().Err(err).Msg("register refresh schedule")
	}
	go func() {
		if err := scheduler.Run(); err != nil {
			logger.Error().Err(err).Msg("scheduler stopped")
		}
	}()

	srv := asynq.NewServer(redisConn, asynq.Config{
		Concurrency: envInt("WORKER_CONCURRENCY", 2),
	})

	logger.Info().Dur("interval", interval).Msg("worker starting")
	if err := srv.Run(mux); err != nil {
		logger.Fatal().Err(err).Msg("worker stopped with error")
	}
	logger.Info().Msg("worker shutdown complete")
}

func mustInitDatabase(ctx context.Context, cfg *config.Config, logger zerolog.Logger) *pgxpool.Pool {
	poolConfig, err := pgxpool.ParseConfig(cfg.DatabaseURL)
	if err != nil {
		logger.Fatal().Err(err).Msg("parse database config")
	}
	poolConfig.ConnConfig.Tracer = obs.PGXTracer{}
	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		logger.Fatal().Err(err).Msg("connect database")
	}
	if err := pool.Ping(ctx); err != nil {
		logger.Fatal().Err(err).Msg("ping database")
	}
	return pool
}

func mustInitRedis(ctx context.Context, cfg *config.Config, logger zerolog.Logger) *redis.Client {
	redisOpts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		logger.Fatal().Err(err).Msg("parse redis url")
	}
	redisClient := redis.NewClient(redisOpts)
	if err := redisotel.InstrumentTracing(redisClient); err != nil {
		logger.Error().Err(err).Msg("instrument redis tracing")
	}
	if err := redisClient.Ping(ctx).Err(); err != nil {
		logger.Fatal().Err(err).Msg("ping redis")
	}
	return redisClient
}

func envOrDefault(key, fallback string) string {
	if val, ok := os.LookupEnv(key); ok {
		trimmed := strings.TrimSpace(val)
		if trimmed != "" {
			return trimmed
		}
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if val, ok := os.LookupEnv(key); ok {
		if parsed, err := strconv.Atoi(strings.TrimSpace(val)); err == nil {
			return parsed
		}
	}
	return fallback
}
