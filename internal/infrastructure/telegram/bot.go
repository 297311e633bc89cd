// Package telegram contains Telegram bot infrastructure
package telegram

import (
	"context"
	"fmt"

	tgbot "github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/rs/zerolog"

	"github.com/mycodedstuff/pibot/internal/domain/media/consts"
)

// Bot wraps the Telegram bot for infrastructure layer
type Bot struct {
	bot    *tgbot.Bot
	logger zerolog.Logger

	cancel context.CancelFunc
	done   chan struct{}
}

// NewBot creates a new Telegram bot wrapper
func NewBot(token string, logger zerolog.Logger) (*Bot, error) {
	if token == "" {
		return nil, fmt.Errorf("telegram token is required")
	}

	opts := []tgbot.Option{
		tgbot.WithDefaultHandler(defaultHandler),
		tgbot.WithErrorsHandler(func(err error) {
			logger.Warn().Err(err).Msg("Telegram polling error")
		}),
	}

	bot, err := tgbot.New(token, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create telegram bot: %w", err)
	}

	logger.Info().Msg("Telegram bot created successfully")

	return &Bot{
		bot:    bot,
		logger: logger,
	}, nil
}

// Raw returns the underlying telegram bot for handler registration
func (b *Bot) Raw() *tgbot.Bot {
	return b.bot
}

// Start begins long polling in the background. Polling runs until Stop,
// independent of the start context.
func (b *Bot) Start(_ context.Context) error {
	ctx, cancel := context.WithCancel(context.Background())
	b.cancel = cancel
	b.done = make(chan struct{})

	b.logger.Info().Msg("Starting Telegram bot...")
	go func() {
		defer close(b.done)
		b.bot.Start(ctx)
		b.logger.Info().Msg("Telegram bot stopped")
	}()
	return nil
}

// Stop ends polling and waits for in-flight updates to be fetched, or for ctx to expire
func (b *Bot) Stop(ctx context.Context) error {
	if b.cancel == nil {
		return nil
	}

	b.logger.Info().Msg("Stopping Telegram bot...")
	b.cancel()

	select {
	case <-b.done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("telegram bot did not stop: %w", ctx.Err())
	}
}

// defaultHandler answers plain text that matched no command with the help text
func defaultHandler(ctx context.Context, bot *tgbot.Bot, update *models.Update) {
	if update.Message == nil || update.Message.Text == "" {
		return
	}

	_, _ = bot.SendMessage(ctx, &tgbot.SendMessageParams{
		ChatID:          update.Message.Chat.ID,
		Text:            consts.HelpMessage,
		ReplyParameters: &models.ReplyParameters{MessageID: update.Message.ID},
	})
}
