// Package app assembles the configured adapters behind the service ports.
// cmd/server and cmd/notifyctl share it so both run against the same store.
package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"delivery-notify-service/internal/adapters/extractor"
	"delivery-notify-service/internal/adapters/messaging"
	"delivery-notify-service/internal/adapters/store"
	"delivery-notify-service/internal/config"
	"delivery-notify-service/internal/domain"
	"delivery-notify-service/internal/platform/db"
	"delivery-notify-service/internal/platform/logger"
	"delivery-notify-service/internal/ports"
	"delivery-notify-service/internal/services"

	"github.com/redis/go-redis/v9"
)

// App is a wired Dispatcher plus the resources it owns.
type App struct {
	Dispatcher *services.Dispatcher
	Store      ports.BatchStore

	closers []func() error
}

// Close releases database and redis connections in reverse order of opening.
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		errs = append(errs, a.closers[i]())
	}
	return errors.Join(errs...)
}

// Overrides replaces configured adapters, e.g. the dry-run sender of notifyctl.
type Overrides struct {
	Sender    ports.MessageSender
	Extractor ports.SlotExtractor
}

// Build opens the configured store, loads it and wires the dispatcher.
func Build(ctx context.Context, s config.Settings, ov Overrides) (*App, error) {
	a := &App{}

	st, err := a.openStore(ctx, s)
	if err != nil {
		_ = a.Close()
		return nil, fmt.Errorf("build app: %w", err)
	}
	a.Store = st

	ext := ov.Extractor
	if ext == nil {
		if ext, err = NewExtractor(ctx, s); err != nil {
			_ = a.Close()
			return nil, fmt.Errorf("build app: %w", err)
		}
	}

	snd := ov.Sender
	if snd == nil {
		if snd, err = NewSender(s); err != nil {
			_ = a.Close()
			return nil, fmt.Errorf("build app: %w", err)
		}
	}

	eta := domain.ETAPlanner{BaseDelay: s.ETABaseDelay, PerStop: s.ETAPerStop, Window: s.ETAWindow}
	repo := services.OpenRepository(ctx, st)
	a.Dispatcher = services.NewDispatcher(repo, snd, ext, domain.NewPhoneNormalizer(s.CountryCode), eta)

	logger.C(ctx).Info().
		Str("store", s.StoreDriver).
		Str("extractor", s.Extractor).
		Str("sender", s.Sender).
		Int("batches", len(repo.Snapshot())).
		Msg("dispatcher ready")
	return a, nil
}

func (a *App) openStore(ctx context.Context, s config.Settings) (ports.BatchStore, error) {
	switch s.StoreDriver {
	case "sqlite":
		conn, err := db.OpenSqlite(s.DBPath)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, conn.Close)
		if err := store.InitSchema(conn, store.DialectSqlite); err != nil {
			return nil, err
		}
		return store.NewSqliteBatchStore(conn), nil

	case "postgres":
		if s.DatabaseURL == "" {
			return nil, errors.New("open store: DATABASE_URL is required for the postgres store")
		}
		conn, err := db.Open(s.DatabaseURL)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, conn.Close)
		if err := store.InitSchema(conn, store.DialectPostgres); err != nil {
			return nil, err
		}
		return store.NewPostgresBatchStore(conn), nil

	case "redis":
		opt, err := redis.ParseURL(s.RedisURL)
		if err != nil {
			return nil, fmt.Errorf("open store: parse redis url: %w", err)
		}
		client := redis.NewClient(opt)
		a.closers = append(a.closers, client.Close)
		if err := client.Ping(ctx).Err(); err != nil {
			logger.C(ctx).Warn().Err(err).Msg("redis not reachable yet; continuing")
		}
		return store.NewRedisBatchStore(client, s.RedisKey), nil

	case "csv":
		return store.NewCSVBatchStore(s.CSVPath), nil

	case "memory":
		return store.NewMemoryBatchStore(), nil
	}
	return nil, fmt.Errorf("open store: unknown driver %q", s.StoreDriver)
}

// OpenSQL opens and initializes the SQL database for driver, for schema tooling.
func OpenSQL(s config.Settings) (*sql.DB, store.Dialect, error) {
	switch s.StoreDriver {
	case "postgres":
		conn, err := db.Open(s.DatabaseURL)
		return conn, store.DialectPostgres, err
	case "sqlite":
		conn, err := db.OpenSqlite(s.DBPath)
		return conn, store.DialectSqlite, err
	}
	return nil, 0, fmt.Errorf("open sql: driver %q has no schema", s.StoreDriver)
}

// NewExtractor builds the configured slot extractor.
func NewExtractor(ctx context.Context, s config.Settings) (ports.SlotExtractor, error) {
	switch s.Extractor {
	case "openai":
		cfg := extractor.DefaultOpenAIConfig(s.OpenAIKey)
		cfg.Model = s.OpenAIModel
		cfg.BaseURL = s.OpenAIBaseURL
		cfg.Timeout = s.ExtractorTTL
		return extractor.NewOpenAIExtractor(cfg)
	case "gemini":
		return extractor.NewGeminiExtractor(ctx, s.GeminiKey, s.GeminiModel, s.GeminiBaseURL)
	case "keyword":
		return extractor.NewKeywordExtractor(), nil
	}
	return nil, fmt.Errorf("new extractor: unknown extractor %q", s.Extractor)
}

// NewSender builds the configured outbound sender.
func NewSender(s config.Settings) (ports.MessageSender, error) {
	switch s.Sender {
	case "greenapi":
		return messaging.NewGreenAPISender(s.GreenBaseURL, s.GreenInstance, s.GreenToken)
	case "log":
		return messaging.NewLogSender(), nil
	}
	return nil, fmt.Errorf("new sender: unknown sender %q", s.Sender)
}
