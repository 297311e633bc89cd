// Package logger contains logger infrastructure
package logger

import (
	"context"

	"github.com/rs/zerolog"
	"go.uber.org/fx"

	"github.com/mycodedstuff/pibot/config"
)

// Module provides logger for fx dependency injection
var Module = fx.Module("logger",
	fx.Provide(provideLogger),
)

// provideLogger creates logger from config and closes its file sink on stop
func provideLogger(lc fx.Lifecycle, cfg *config.LoggingConfig) zerolog.Logger {
	logger, closer := New(cfg)

	lc.Append(fx.Hook{
		OnStop: func(context.Context) error {
			return closer.Close()
		},
	})
	return logger
}
