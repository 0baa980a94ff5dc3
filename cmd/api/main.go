package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"horizonte-forms/internal/cep"
	"horizonte-forms/internal/config"
	httpapi "horizonte-forms/internal/http"
	"horizonte-forms/internal/service"
	"horizonte-forms/internal/telemetry"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("load config", "error", err)
		return
	}

	shutdownTelemetry, err := telemetry.Setup(ctx, telemetry.Config{
		Enabled:     cfg.OTelEnabled,
		ServiceName: cfg.OTelServiceName,
		LogLevel:    cfg.LogLevel,
	})
	if err != nil {
		slog.Error("setup telemetry", "error", err)
		return
	}
	defer func() {
		if err := shutdownTelemetry(context.Background()); err != nil {
			slog.Error("shutdown telemetry", "error", err)
		}
	}()

	lookup, closeLookup, err := newCEPLookup(ctx, cfg)
	if err != nil {
		slog.Error("setup cep lookup", "error", err)
		return
	}
	defer closeLookup()

	svc := service.New(
		service.WithCEPLookup(lookup),
		service.WithLogger(slog.Default()),
	)
	router := httpapi.NewRouter(svc, cfg.OTelServiceName)

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		slog.Info("api listening", "port", cfg.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("run api", "error", err)
			stop()
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("shutdown api", "error", err)
	}
}

// newCEPLookup builds the ViaCEP client, fronted by Redis when REDIS_URL is
// set.
func newCEPLookup(ctx context.Context, cfg config.Config) (cep.Lookuper, func(), error) {
	client := cep.NewClient(
		cep.WithBaseURL(cfg.CEPBaseURL),
		cep.WithTimeout(cfg.CEPTimeout),
	)

	if strings.TrimSpace(cfg.RedisURL) == "" {
		slog.Info("cep cache disabled")
		return client, func() {}, nil
	}

	redisClient, err := cep.OpenRedis(ctx, cfg.RedisURL)
	if err != nil {
		return nil, nil, err
	}
	closeRedis := func() {
		if err := redisClient.Close(); err != nil {
			slog.Error("close redis", "error", err)
		}
	}

	slog.Info("cep cache enabled", "ttl", cfg.CEPCacheTTL.String())
	cache := cep.NewRedisCache(redisClient, cfg.CEPCacheTTL)
	return cep.NewCachedLookup(client, cache, slog.Default()), closeRedis, nil
}
