package telegram

import (
	"context"
	"runtime/debug"

	tgbot "github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/rs/zerolog"

	"github.com/mycodedstuff/pibot/internal/domain/media/consts"
)

// Router registers Telegram bot handlers
type Router struct {
	handlers *Handlers
	logger   zerolog.Logger
}

// NewRouter creates new Telegram router
func NewRouter(handlers *Handlers, logger zerolog.Logger) *Router {
	return &Router{
		handlers: handlers,
		logger:   logger,
	}
}

// RegisterRoutes registers all command handlers on the bot
func (r *Router) RegisterRoutes(bot *tgbot.Bot) {
	h := r.handlers
	recoverer := r.recoverer()

	command := func(c consts.Command, match tgbot.MatchType, fn tgbot.HandlerFunc) {
		bot.RegisterHandler(tgbot.HandlerTypeMessageText, "/"+c.Name, match, fn, recoverer)
	}

	command(consts.CommandStart, tgbot.MatchTypeExact, h.HandleStart)
	command(consts.CommandHelp, tgbot.MatchTypeExact, h.HandleHelp)
	command(consts.CommandDownloads, tgbot.MatchTypeExact, h.HandleDownloads)
	command(consts.CommandConnect, tgbot.MatchTypeExact, h.HandleConnect)
	command(consts.CommandDisconnect, tgbot.MatchTypeExact, h.HandleDisconnect)
	command(consts.CommandRedownload, tgbot.MatchTypePrefix, h.HandleRedownload)

	bot.RegisterHandlerMatchFunc(IsMediaMessage, h.HandleMedia, recoverer)
	bot.RegisterHandler(tgbot.HandlerTypeCallbackQueryData, "", tgbot.MatchTypePrefix, h.HandleCallback, recoverer)

	r.logger.Info().Int("commands", len(consts.AllCommands)).Msg("All Telegram handlers registered successfully")
}

// RegisterCommands publishes the command menu
func (r *Router) RegisterCommands(ctx context.Context, bot *tgbot.Bot) error {
	commands := make([]models.BotCommand, 0, len(consts.AllCommands))
	for _, c := range consts.AllCommands {
		commands = append(commands, models.BotCommand{Command: c.Name, Description: c.Description})
	}

	reqCtx, cancel := context.WithTimeout(ctx, RequestTimeout)
	defer cancel()

	_, err := bot.SetMyCommands(reqCtx, &tgbot.SetMyCommandsParams{Commands: commands})
	return err
}

// recoverer turns a panicking handler into a logged error and a generic reply
func (r *Router) recoverer() tgbot.Middleware {
	return func(next tgbot.HandlerFunc) tgbot.HandlerFunc {
		return func(ctx context.Context, bot *tgbot.Bot, update *models.Update) {
			defer func() {
				rec := recover()
				if rec == nil {
					return
				}
				r.logger.Error().
					Interface("panic", rec).
					Int64("update_id", update.ID).
					Bytes("stack", debug.Stack()).
					Msg("Recovered from panic in Telegram handler")

				if chatID, ok := updateChatID(update); ok {
					r.handlers.sendResponse(ctx, chatID, 0, consts.MsgGenericFailure)
				}
			}()
			next(ctx, bot, update)
		}
	}
}

func updateChatID(update *models.Update) (int64, bool) {
	switch {
	case update.Message != nil:
		return update.Message.Chat.ID, true
	case update.CallbackQuery != nil && update.CallbackQuery.Message.Message != nil:
		return update.CallbackQuery.Message.Message.Chat.ID, true
	default:
		return 0, false
	}
}
