// The api command runs the catalog HTTP API: MongoDB-backed content
// endpoints fronted by a Redis read-through cache with pattern-based
// invalidation and a background comment-cache sweeper.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/odelu/catalog/config"
	"github.com/odelu/catalog/internal/document"
	"github.com/odelu/catalog/internal/httpapi"
	"github.com/odelu/catalog/internal/service"
	"github.com/odelu/catalog/internal/sweeper"
	"github.com/odelu/catalog/pkg/cache"
	"github.com/odelu/catalog/pkg/logger"
	"github.com/odelu/catalog/pkg/redis"
)

const shutdownTimeout = 15 * time.Second

func main() {
	if err := run(); err != nil {
		slog.Error("api exited", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	log := logger.NewWithSentry(logger.SentryConfig{
		DSN:         cfg.SentryDSN,
		Environment: cfg.Environment,
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := document.Connect(connectCtx, cfg.MongoURI, cfg.MaxPoolSize, cfg.MinPoolSize)
	if err != nil {
		return err
	}
	defer func() {
		disconnectCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := client.Disconnect(disconnectCtx); err != nil {
			log.Error("mongodb disconnect failed", slog.String("error", err.Error()))
		}
	}()

	store := document.New(client.Database(cfg.DatabaseName))
	if err := store.EnsureIndexes(connectCtx); err != nil {
		return err
	}
	log.Info("document store ready", slog.String("database", cfg.DatabaseName))

	// A dead Redis degrades to cache misses instead of failing startup;
	// every cache operation already tolerates backend errors.
	var backend cache.Backend
	var cachePing func(ctx context.Context) error
	redisClient, err := redis.Open(connectCtx, cfg.RedisURL, redis.WithRetry(3, time.Second))
	if err != nil {
		log.Warn("redis unavailable, caching disabled", slog.String("error", err.Error()))
		backend = cache.NewMemory()
		cfg.CacheEnabled = false
	} else {
		backend = cache.NewRedisBackend(redisClient)
		cachePing = redis.Healthcheck(redisClient)
		defer func() {
			if err := redisClient.Close(); err != nil {
				log.Error("redis close failed", slog.String("error", err.Error()))
			}
		}()
	}

	cacheStore := cache.New(backend,
		cache.WithLogger(log),
		cache.WithEnabledFunc(func() bool { return cfg.CacheEnabled }),
		cache.WithDefaultTTL(cfg.CacheTTL),
	)
	log.Info("cache ready",
		slog.Bool("enabled", cfg.CacheEnabled),
		slog.Duration("default_ttl", cfg.CacheTTL),
		slog.Duration("comment_ttl", cfg.CommentCacheTTL))

	inv := service.NewInvalidator(cacheStore)
	server := httpapi.New(httpapi.Deps{
		Log:        log,
		JWTSecret:  cfg.JWTSecret,
		Cache:      cacheStore,
		StorePing:  func(ctx context.Context) error { return client.Ping(ctx, nil) },
		CachePing:  cachePing,
		Movies:     service.NewMovies(store, cacheStore),
		Shows:      service.NewShows(store, cacheStore),
		Comments:   service.NewComments(store, cacheStore, inv, cfg.CommentCacheTTL),
		Users:      service.NewUsers(store, cacheStore, inv),
		Watchlist:  service.NewWatchlist(store, cacheStore, inv),
		Popularity: service.NewPopularity(store, cacheStore),
		Search:     service.NewSearch(store, cacheStore),
		Reports:    service.NewReports(store),
		Admin:      service.NewAdmin(store, inv),
	})

	var wg sync.WaitGroup
	sweepCtx, stopSweeper := context.WithCancel(ctx)
	defer stopSweeper()

	if cfg.CacheEnabled {
		sw := sweeper.New(cacheStore, log, cfg.CommentCacheTTL)
		wg.Add(1)
		go func() {
			defer wg.Done()
			sw.Run(sweepCtx)
		}()
	}

	httpServer := &http.Server{
		Addr:              net.JoinHostPort("", cfg.Port),
		Handler:           server.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("api listening", slog.String("port", cfg.Port))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancelShutdown()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error("http shutdown failed", slog.String("error", err.Error()))
	}

	stopSweeper()
	wg.Wait()

	log.Info("shutdown complete")
	return nil
}
