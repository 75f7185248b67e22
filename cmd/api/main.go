package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"github.com/zhouzirui/stylechat/internal/config"
	"github.com/zhouzirui/stylechat/internal/handler"
	"github.com/zhouzirui/stylechat/internal/logging"
	"github.com/zhouzirui/stylechat/internal/model/variant"
	"github.com/zhouzirui/stylechat/internal/service/ai"
	"github.com/zhouzirui/stylechat/internal/service/chat"
	"github.com/zhouzirui/stylechat/internal/service/training"
)

// newBackend 创建生成模型，测试中可替换。
var newBackend = ai.NewBackend

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := run(ctx)
	stop()
	if err != nil {
		log.Fatal().Err(err).Msg("stylechat stopped")
	}
}

// run wires the service and blocks until ctx is done or the server fails. Deferred
// cleanup runs before the error reaches main.
func run(ctx context.Context) error {
	envErr := godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	logging.Setup(cfg.Log)

	if envErr != nil {
		log.Warn().Err(envErr).Msg("no .env file loaded, continuing with system environment variables only")
	}

	variants := variant.NewMemoryStore(variant.Seed())
	active, ok := variants.FindByID(cfg.Variant)
	if !ok {
		return fmt.Errorf("unknown VARIANT %q", cfg.Variant)
	}

	trainingCtx := training.Load(cfg.Training.Path, cfg.Training.Column)

	backend, err := newBackend(ctx, cfg.AI, active, trainingCtx)
	if err != nil {
		return fmt.Errorf("failed to initialize generative model: %w", err)
	}
	defer func() {
		if err := backend.Model.Close(); err != nil {
			log.Warn().Err(err).Msg("failed to close generative model")
		}
	}()
	if _, unavailable := backend.Model.(ai.Unavailable); unavailable {
		log.Warn().Msg("no generative model credentials configured, every chat turn will report an error")
	} else {
		log.Info().Str("model", backend.Model.Name()).Str("variant", active.ID).Msg("generative model initialized")
	}

	chatService := chat.NewService(backend.Model, chat.Options{
		Variant: active.ID,
		Primer:  backend.Primer,
		Timeout: cfg.AI.RequestTimeout,
	})

	router := handler.NewRouter(variants, active, chatService, cfg.CORS)

	return startServer(ctx, cfg.Server, router)
}

func startServer(ctx context.Context, serverCfg config.ServerConfig, router http.Handler) error {
	srv := &http.Server{
		Addr:              serverCfg.Addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	log.Info().Str("addr", serverCfg.Addr).Msg("stylechat listening")
	if err := runServer(ctx, srv); err != nil {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

func runServer(ctx context.Context, srv *http.Server) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
		err := <-errCh
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
