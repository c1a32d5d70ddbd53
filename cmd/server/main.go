package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"delivery-notify-service/internal/api"
	"delivery-notify-service/internal/app"
	"delivery-notify-service/internal/config"
	"delivery-notify-service/internal/platform/logger"

	"golang.org/x/sync/errgroup"
)

// main is the application composition root.
// It wires the configured store, extractor and sender behind ports and serves HTTP
// until SIGINT/SIGTERM.
func main() {
	envErr := config.Load()
	logger.Init(logger.FromEnv())
	log := logger.Get()
	if envErr != nil {
		log.Warn().Err(envErr).Msg("ignoring .env")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, config.FromEnv()); err != nil {
		log.Fatal().Err(err).Msg("server stopped")
	}
	log.Info().Msg("server stopped")
}

func run(ctx context.Context, s config.Settings) error {
	a, err := app.Build(ctx, s, app.Overrides{})
	if err != nil {
		return err
	}
	defer func() {
		if err := a.Close(); err != nil {
			logger.Get().Warn().Err(err).Msg("close resources")
		}
	}()

	router := api.NewRouter(a.Dispatcher, api.Options{
		CORSOrigins:    s.CORSOrigins,
		RequestTimeout: s.RequestTimeout,
	})

	// Write timeout covers a slow extractor call plus the outbound reply.
	srv := &http.Server{
		Addr:              ":" + s.Port,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      s.RequestTimeout + 10*time.Second,
		IdleTimeout:       60 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Get().Info().Str("addr", srv.Addr).Msg("server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		logger.Get().Info().Msg("shutting down")
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
