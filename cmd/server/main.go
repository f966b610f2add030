package main // Entry point of the slot booking UI server

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/mazenolama/Aljabr-Task/internal/apiclient"
	"github.com/mazenolama/Aljabr-Task/internal/app"
	"github.com/mazenolama/Aljabr-Task/internal/config"
	"github.com/mazenolama/Aljabr-Task/internal/middleware"
	"github.com/mazenolama/Aljabr-Task/internal/queue"
	"github.com/mazenolama/Aljabr-Task/internal/service"
	"github.com/mazenolama/Aljabr-Task/internal/session"
)

func main() {
	cfg := config.Load()
	logger := app.NewLogger(cfg.Env)
	defer func() { _ = logger.Sync() }()

	rootCtx, cancelRoot := context.WithCancel(context.Background())
	defer cancelRoot()

	// Redis backs the rate limiter and optionally the session storage; nil
	// when unreachable.
	rdb := config.NewRedisClient()
	if rdb == nil {
		logger.Warn("redis unavailable, rate limiting disabled")
	} else {
		defer func() { _ = rdb.Close() }()
	}

	storage, closeStorage, err := app.NewSessionStorage(rootCtx, cfg, rdb, logger)
	if err != nil {
		logger.Fatal("session storage", zap.Error(err))
	}
	defer closeStorage()

	api := apiclient.New(cfg.RemoteAPIURL, &http.Client{Timeout: cfg.RemoteTimeout}, logger.Named("api"))
	sessions := session.NewStore(storage, api, cfg.SessionTTL, logger.Named("session"))

	var events service.ActivityPublisher = service.NopPublisher{}
	if cfg.EventsEnabled {
		events = service.NewAMQPPublisher(cfg.AMQPURL, logger.Named("events"))
		consumer := &queue.ActivityConsumer{URL: cfg.AMQPURL, LogPath: cfg.ActivityLogPath, Logger: logger.Named("activity")}
		go func() {
			if err := consumer.Run(rootCtx); err != nil && !errors.Is(err, context.Canceled) {
				logger.Warn("activity consumer stopped", zap.Error(err))
			}
		}()
	}
	slots := service.NewSlotService(api, events, cfg.Location(), logger.Named("slots"))

	e := app.NewUIServer(app.UI{
		Logger:   logger,
		Sessions: sessions,
		Slots:    slots,
		Cookie: middleware.SessionConfig{
			CookieName: cfg.SessionCookie,
			Secure:     cfg.Production(),
			MaxAge:     cfg.SessionTTL,
		},
		MessageTTL: cfg.MessageTTL,
		RateLimit:  middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb, logger.Named("ratelimit")),
	})

	addr := ":" + cfg.Port
	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening", zap.String("addr", addr), zap.String("env", cfg.Env), zap.String("remote", cfg.RemoteAPIURL))
		errCh <- e.Start(addr)
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-stop:
		logger.Info("shutdown requested")
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", zap.Error(err))
		}
	}
	cancelRoot()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(ctx); err != nil {
		logger.Warn("shutdown", zap.Error(err))
	}
}
