package main

import (
	"flag"

	"delivery-notify-service/internal/adapters/store"
	"delivery-notify-service/internal/app"
	"delivery-notify-service/internal/config"
	"delivery-notify-service/internal/platform/logger"
)

// dbtool creates the delivery_rows table for the configured SQL store.
func main() {
	envErr := config.Load()
	logger.Init(logger.FromEnv())
	log := logger.Get()
	if envErr != nil {
		log.Warn().Err(envErr).Msg("ignoring .env")
	}

	s := config.FromEnv()
	driver := flag.String("driver", s.StoreDriver, "sqlite or postgres")
	flag.Parse()
	s.StoreDriver = *driver

	conn, dialect, err := app.OpenSQL(s)
	if err != nil {
		log.Fatal().Err(err).Msg("open database")
	}
	defer conn.Close()

	log.Info().Str("dialect", dialect.String()).Msg("initializing database schema")
	if err := store.InitSchema(conn, dialect); err != nil {
		log.Fatal().Err(err).Msg("schema initialization failed")
	}
	log.Info().Msg("schema ready")
}
