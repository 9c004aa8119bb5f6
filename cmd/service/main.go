package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/aussiemaniacs/FafoV2/internal/api"
	"github.com/aussiemaniacs/FafoV2/internal/catalog"
	"github.com/aussiemaniacs/FafoV2/internal/config"
	"github.com/aussiemaniacs/FafoV2/internal/events"
	"github.com/aussiemaniacs/FafoV2/internal/extract"
	"github.com/aussiemaniacs/FafoV2/internal/logging"
	"github.com/aussiemaniacs/FafoV2/internal/pgstore"
	"github.com/aussiemaniacs/FafoV2/internal/realtime"
)

const serviceName = "catalog-service"

func main() {
	cfg := config.Load()
	log := logging.NewLogger(serviceName, logging.Options{Level: cfg.LogLevel, File: cfg.LogFile})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.WithField("error", err).Fatal("catalog-service stopped")
	}
}

func run(ctx context.Context, cfg config.Config, log logrus.FieldLogger) error {
	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer pool.Close()

	attempts := uint(cfg.DBConnectAttempts)
	if err := pingWithRetry(ctx, "postgres", attempts, pool.Ping, log); err != nil {
		return err
	}
	if err := pgstore.AutoMigrate(ctx, pool); err != nil {
		return err
	}

	opt, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return err
	}
	rdb := redis.NewClient(opt)
	defer rdb.Close()

	redisPing := func(ctx context.Context) error { return rdb.Ping(ctx).Err() }
	if err := pingWithRetry(ctx, "redis", attempts, redisPing, log); err != nil {
		return err
	}

	ytdlp := extract.NewYtdlpExtractor(cfg.YtdlpPath, cfg.SearchTimeout, log)
	if !ytdlp.Available(ctx) {
		log.WithField("path", cfg.YtdlpPath).Warn("yt-dlp not found, metadata falls back to url-derived values")
	}
	extractor := extract.NewCachedExtractor(ytdlp, rdb, cfg.MetadataCacheTTL, log)

	store := pgstore.New(pool)
	svc := catalog.NewService(store, store,
		catalog.WithExtractor(extractor),
		catalog.WithPublisher(events.NewRedisPublisher(rdb, log)),
		catalog.WithLogger(log),
		catalog.WithEnrichTimeout(cfg.EnrichTimeout),
		catalog.WithAddonVersion(cfg.AddonVersion),
	)

	hub := realtime.NewHub()
	ws := realtime.NewServer(hub, rdb, cfg.CORSAllowedOrigin, log)
	go hub.Run(ctx)
	go ws.RunRedisSubscriber(ctx)

	srv := api.NewServer(svc,
		api.WithExtractor(extractor),
		api.WithPlaylists(extract.NewPlaylists(ytdlp)),
		api.WithWebsocket(ws.HandleWS),
		api.WithLogger(log),
		api.WithTimeouts(cfg.EnrichTimeout, cfg.SearchTimeout),
	)

	httpSrv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           srv.Router(api.DefaultMiddlewares(log, cfg.CORSAllowedOrigin)...),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.WithField("port", cfg.Port).Info("catalog-service listening")
		errCh <- httpSrv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return httpSrv.Shutdown(shutdownCtx)
}

// pingWithRetry waits for a dependency that may still be starting.
func pingWithRetry(ctx context.Context, name string, attempts uint, ping func(context.Context) error, log logrus.FieldLogger) error {
	if attempts == 0 {
		attempts = 1
	}
	return retry.Do(
		func() error { return ping(ctx) },
		retry.Context(ctx),
		retry.Attempts(attempts),
		retry.Delay(500*time.Millisecond),
		retry.DelayType(retry.BackOffDelay),
		retry.MaxDelay(5*time.Second),
		retry.LastErrorOnly(true),
		retry.OnRetry(func(n uint, err error) {
			log.WithFields(logrus.Fields{"dependency": name, "attempt": n + 1, "error": err}).Warn("not ready")
		}),
	)
}
