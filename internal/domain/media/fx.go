// Package media contains the media acquisition domain module
package media

import (
	"context"

	"github.com/rs/zerolog"
	"go.uber.org/fx"

	telegramDelivery "github.com/mycodedstuff/pibot/internal/domain/media/delivery/telegram"
	"github.com/mycodedstuff/pibot/internal/domain/media/deps"
	kafkaRepo "github.com/mycodedstuff/pibot/internal/domain/media/repository/kafka"
	"github.com/mycodedstuff/pibot/internal/domain/media/repository/memory"
	postgresRepo "github.com/mycodedstuff/pibot/internal/domain/media/repository/postgres"
	"github.com/mycodedstuff/pibot/internal/domain/media/usecase/business"
	"github.com/mycodedstuff/pibot/internal/infrastructure/telegram"
)

// Module provides media domain components for fx dependency injection
var Module = fx.Module("media",
	// Repository
	fx.Provide(memory.NewDownloadRegistry),
	fx.Provide(memory.NewPendingStore),
	fx.Provide(postgresRepo.NewCompletedRepository),
	fx.Provide(kafkaRepo.NewPublisher),

	// UseCase
	fx.Provide(business.NewUseCase),

	// Delivery - Telegram (needs raw bot from infrastructure)
	fx.Provide(provideTelegramHandlers),
	fx.Provide(telegramDelivery.NewRouter),

	// Wire cyclic dependency and register routes
	fx.Invoke(wireAndRegister),
)

// provideTelegramHandlers creates Telegram handlers with raw bot
func provideTelegramHandlers(uc *business.UseCase, bot *telegram.Bot, logger zerolog.Logger) *telegramDelivery.Handlers {
	return telegramDelivery.NewHandlers(uc, bot.Raw(), logger.With().Str("component", "telegram-handlers").Logger())
}

// wireAndRegister resolves cyclic dependency and registers routes
func wireAndRegister(
	lc fx.Lifecycle,
	uc *business.UseCase,
	handlers *telegramDelivery.Handlers,
	router *telegramDelivery.Router,
	bot *telegram.Bot,
	publisher deps.EventPublisher,
	logger zerolog.Logger,
) {
	// Handlers implements deps.Sender interface
	// This resolves the cyclic dependency: UseCase -> Sender <- Handlers -> UseCase
	uc.SetSender(handlers)

	router.RegisterRoutes(bot.Raw())

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			if err := router.RegisterCommands(ctx, bot.Raw()); err != nil {
				logger.Warn().Err(err).Msg("Failed to publish bot command menu")
			}
			return nil
		},
		OnStop: func(ctx context.Context) error {
			if err := uc.Stop(ctx); err != nil {
				logger.Warn().Err(err).Msg("Downloads did not stop before shutdown deadline")
			}
			return publisher.Close()
		},
	})
}
