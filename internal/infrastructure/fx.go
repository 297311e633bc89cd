// Package infrastructure contains infrastructure layer components
package infrastructure

import (
	"go.uber.org/fx"

	"github.com/mycodedstuff/pibot/internal/infrastructure/database"
	"github.com/mycodedstuff/pibot/internal/infrastructure/http"
	"github.com/mycodedstuff/pibot/internal/infrastructure/logger"
	"github.com/mycodedstuff/pibot/internal/infrastructure/metrics"
	"github.com/mycodedstuff/pibot/internal/infrastructure/mtproto"
	"github.com/mycodedstuff/pibot/internal/infrastructure/telegram"
)

// Module provides all infrastructure components for fx dependency injection
var Module = fx.Module("infrastructure",
	logger.Module,
	metrics.Module,
	database.Module,
	mtproto.Module,
	telegram.Module,
	http.Module,
)
