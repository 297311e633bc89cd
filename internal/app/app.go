// Package app contains application bootstrap
package app

import (
	"go.uber.org/fx"

	"github.com/mycodedstuff/pibot/config"
	"github.com/mycodedstuff/pibot/internal/domain"
	"github.com/mycodedstuff/pibot/internal/infrastructure"
)

// CreateApp creates fx application with all modules
func CreateApp() fx.Option {
	return fx.Options(
		// Configuration
		fx.Provide(config.Out),

		// Infrastructure (logger, metrics, database, mtproto client, telegram bot, http server)
		infrastructure.Module,

		// Domain (media pipeline)
		domain.Module,
	)
}
