// Package database contains the PostgreSQL infrastructure
package database

import (
	"context"

	"github.com/rs/zerolog"
	"go.uber.org/fx"
	"gorm.io/gorm"

	"github.com/mycodedstuff/pibot/config"
)

// Module provides database components for fx dependency injection
var Module = fx.Module("database",
	fx.Provide(NewPostgresDBFx),
)

// NewPostgresDBFx opens the pool; connectivity and migrations are checked on start.
// An unreachable database only disables completion records, the bot keeps running.
func NewPostgresDBFx(lc fx.Lifecycle, cfg *config.DatabaseConfig, logger zerolog.Logger) (*gorm.DB, error) {
	db, err := NewPostgresDB(cfg)
	if err != nil {
		return nil, err
	}

	log := logger.With().
		Str("component", "database").
		Str("host", cfg.Host).
		Str("database", cfg.DBName).
		Logger()

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			if err := Ping(ctx, db); err != nil {
				log.Error().Err(err).Msg("Completed downloads will not be recorded")
				return nil
			}

			version, err := RunMigrations(db, cfg)
			if err != nil {
				log.Warn().Err(err).Msg("Failed to run migrations")
				return nil
			}
			log.Info().Uint("schema_version", version).Msg("Database ready")
			return nil
		},
		OnStop: func(ctx context.Context) error {
			sqlDB, err := db.DB()
			if err != nil {
				return err
			}
			log.Info().Msg("Closing database connection")
			return sqlDB.Close()
		},
	})

	return db, nil
}
