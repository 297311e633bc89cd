// Package http contains the HTTP server infrastructure
package http

import (
	"context"

	"github.com/rs/zerolog"
	"go.uber.org/fx"

	"github.com/mycodedstuff/pibot/config"
	"github.com/mycodedstuff/pibot/internal/infrastructure/http/server"
	"github.com/mycodedstuff/pibot/internal/infrastructure/mtproto"
)

// Module provides HTTP server for fx DI
var Module = fx.Module("http",
	fx.Provide(NewServerFx),
	fx.Invoke(func(*server.Server) {}),
)

// NewServerFx creates HTTP server with lifecycle hooks for fx DI
func NewServerFx(
	lc fx.Lifecycle,
	serviceCfg *config.ServiceConfig,
	client *mtproto.Client,
	logger zerolog.Logger,
) *server.Server {
	srv := server.NewServer(serviceCfg.Name, serviceCfg.Port, logger.With().Str("component", "http-server").Logger())

	// Register Prometheus metrics endpoint
	srv.RegisterMetrics()
	srv.RegisterHealth(client)

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			return srv.Start()
		},
		OnStop: func(ctx context.Context) error {
			return srv.Shutdown(ctx)
		},
	})

	return srv
}
