package telegram

import (
	"github.com/rs/zerolog"
	"go.uber.org/fx"

	"github.com/mycodedstuff/pibot/config"
)

// Module provides Telegram bot for fx dependency injection
var Module = fx.Module("telegram",
	fx.Provide(provideBot),
)

// provideBot creates the Telegram bot and ties polling to the app lifecycle.
// Handlers are registered by the domain module before OnStart runs.
func provideBot(lc fx.Lifecycle, cfg *config.TelegramConfig, logger zerolog.Logger) (*Bot, error) {
	bot, err := NewBot(cfg.BotToken, logger.With().Str("component", "telegram-bot").Logger())
	if err != nil {
		return nil, err
	}

	lc.Append(fx.StartStopHook(bot.Start, bot.Stop))
	return bot, nil
}
