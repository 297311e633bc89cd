package mtproto

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"go.uber.org/fx"

	"github.com/mycodedstuff/pibot/config"
	"github.com/mycodedstuff/pibot/internal/domain/media/deps"
)

// autoConnectTimeout bounds the startup connection, including a login code wait
const autoConnectTimeout = 5 * time.Minute

// Module provides the MTProto client for fx DI
var Module = fx.Module("mtproto",
	fx.Provide(
		NewClientFx,
		func(c *Client) deps.MediaClient { return c },
	),
)

// NewCodeProvider picks the login code source for mode
func NewCodeProvider(cfg *config.TelegramConfig, logger zerolog.Logger) CodeProvider {
	if cfg.CodeInputMode == config.CodeInputWeb {
		return NewWebCodeProvider(cfg.CodeServerPort, cfg.CodePublicURL, logger)
	}
	return NewConsoleCodeProvider()
}

// NewClientFx creates the MTProto client with lifecycle hooks for fx DI
func NewClientFx(lc fx.Lifecycle, cfg *config.TelegramConfig, logger zerolog.Logger) (*Client, error) {
	client, err := NewClient(Config{
		APIID:           cfg.APIID,
		APIHash:         cfg.APIHash,
		PhoneNumber:     cfg.PhoneNumber,
		Password:        cfg.Password,
		SessionDir:      cfg.SessionDir,
		DownloadThreads: cfg.DownloadThreads,
	}, NewCodeProvider(cfg, logger), logger)
	if err != nil {
		return nil, err
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			if !cfg.AutoConnect {
				return nil
			}
			if !client.HasSession() {
				logger.Info().Msg("No stored MTProto session, waiting for /connect")
				return nil
			}

			go func() {
				connectCtx, cancel := context.WithTimeout(context.Background(), autoConnectTimeout)
				defer cancel()

				err := client.Connect(connectCtx, func(hint string) {
					logger.Warn().Str("hint", hint).Msg("Stored session needs a login code")
				})
				if err != nil {
					logger.Error().Err(err).Msg("Auto connect failed")
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			return client.Disconnect(ctx)
		},
	})

	return client, nil
}
