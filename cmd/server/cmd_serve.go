package main

import (
	"context"
	"errors"
	"io"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"droneOpsBooking/internal/assistant"
	"droneOpsBooking/internal/booking"
	"droneOpsBooking/internal/config"
	grpcserver "droneOpsBooking/internal/grpc"
	"droneOpsBooking/internal/httpapi"
	"droneOpsBooking/internal/oracle"
	"droneOpsBooking/internal/transcript"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API and gRPC health server",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, log, err := loadConfig()
			if err != nil {
				return err
			}
			defer func() { _ = log.Sync() }()
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return serve(ctx, cfg, log)
		},
	}
}

func serve(ctx context.Context, cfg *config.Config, log *zap.Logger) error {
	log.Info("configuration loaded", zap.String("config", cfg.String()))

	store, err := openStore(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer func() {
		if err := store.Close(); err != nil {
			log.Warn("close store", zap.Error(err))
		}
	}()

	engine := booking.NewEngine(store, log.Named("booking"))
	go engine.RunReleaser(ctx, cfg.Booking.ReleaseInterval)

	o, err := oracle.New(ctx, oracle.Options{
		APIKey:        cfg.Oracle.APIKey,
		Model:         cfg.Oracle.Model,
		Timeout:       cfg.Oracle.Timeout,
		RatePerMinute: cfg.Oracle.RatePerMinute,
		HistoryTurns:  cfg.Oracle.HistoryTurns,
		Cooldown:      cfg.Oracle.Cooldown,
	}, log.Named("oracle"))
	if err != nil {
		return err
	}
	if c, ok := o.(io.Closer); ok {
		defer func() { _ = c.Close() }()
	}

	transcripts, closeTranscripts := openTranscripts(ctx, cfg, log)
	defer closeTranscripts()

	svc := assistant.NewService(engine, o, log.Named("assistant"), assistant.WithTranscripts(transcripts))

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := httpapi.NewRouter(httpapi.NewHandler(svc, engine, log.Named("http")), httpapi.RouterConfig{
		JWTSecret:          cfg.Auth.JWTSecret,
		RateLimitPerMinute: cfg.HTTP.RateLimitPerMinute,
	})
	httpSrv := &http.Server{Addr: cfg.HTTP.Address, Handler: router, ReadHeaderTimeout: 10 * time.Second}

	var grpcSrv *grpcserver.Server
	if cfg.GRPC.Address != "" {
		grpcSrv, err = grpcserver.StartGRPC(cfg.GRPC.Address, svc.OracleConfigured(), log.Named("grpc"))
		if err != nil {
			return err
		}
	}

	errc := make(chan error, 1)
	go func() {
		log.Info("http server listening", zap.String("addr", cfg.HTTP.Address))
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errc <- err
		}
		close(errc)
	}()

	var serveErr error
	select {
	case <-ctx.Done():
	case serveErr = <-errc:
		if serveErr != nil {
			log.Error("http server failed", zap.Error(serveErr))
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		log.Warn("http shutdown", zap.Error(err))
	}
	if grpcSrv != nil {
		if err := grpcSrv.Shutdown(shutdownCtx); err != nil {
			log.Warn("grpc shutdown", zap.Error(err))
		}
	}
	log.Info("server stopped")
	return serveErr
}

// openTranscripts returns a Redis store when REDIS_ADDR is set and reachable,
// and a memory store otherwise.
func openTranscripts(ctx context.Context, cfg *config.Config, log *zap.Logger) (transcript.Store, func()) {
	if cfg.Transcript.RedisAddr == "" {
		return transcript.NewMemoryStore(cfg.Transcript.MaxTurns), func() {}
	}
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Transcript.RedisAddr,
		Password: cfg.Transcript.RedisPassword,
		DB:       cfg.Transcript.RedisDB,
	})
	rs := transcript.NewRedisStore(client, cfg.Transcript.TTL, cfg.Transcript.MaxTurns)
	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := rs.Ping(pingCtx); err != nil {
		log.Warn("redis unreachable, keeping transcripts in memory", zap.String("addr", cfg.Transcript.RedisAddr), zap.Error(err))
		_ = client.Close()
		return transcript.NewMemoryStore(cfg.Transcript.MaxTurns), func() {}
	}
	log.Info("transcripts stored in redis", zap.String("addr", cfg.Transcript.RedisAddr))
	return rs, func() { _ = client.Close() }
}
