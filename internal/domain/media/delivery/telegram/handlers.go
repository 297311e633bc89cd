// Package telegram contains Telegram delivery handlers
package telegram

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	tgbot "github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/rs/zerolog"

	"github.com/mycodedstuff/pibot/internal/domain/media/consts"
	"github.com/mycodedstuff/pibot/internal/domain/media/dto"
	mediaerrors "github.com/mycodedstuff/pibot/internal/domain/media/errors"
	"github.com/mycodedstuff/pibot/internal/domain/media/usecase/business"
)

// Constants for Telegram API
const (
	MaxMessageLength = 4096
	RequestTimeout   = 30 * time.Second
	// ConnectTimeout bounds the login flow, which waits for the user to enter a code
	ConnectTimeout = 5 * time.Minute
)

// Handlers contains Telegram command handlers
// Implements deps.Sender interface
type Handlers struct {
	uc     *business.UseCase
	bot    *tgbot.Bot
	logger zerolog.Logger
}

// NewHandlers creates new Telegram handlers
func NewHandlers(uc *business.UseCase, bot *tgbot.Bot, logger zerolog.Logger) *Handlers {
	return &Handlers{
		uc:     uc,
		bot:    bot,
		logger: logger.With().Str("component", "telegram-handlers").Logger(),
	}
}

// SendText implements deps.Sender interface
func (h *Handlers) SendText(ctx context.Context, chatID int64, replyTo int, text string, keyboard dto.Keyboard) (int, error) {
	if text == "" {
		return 0, fmt.Errorf("message text cannot be empty")
	}

	msgCtx, cancel := context.WithTimeout(ctx, RequestTimeout)
	defer cancel()

	params := &tgbot.SendMessageParams{
		ChatID:      chatID,
		Text:        truncate(text),
		ReplyMarkup: inlineMarkup(keyboard),
	}
	if replyTo != 0 {
		params.ReplyParameters = &models.ReplyParameters{
			MessageID:                replyTo,
			AllowSendingWithoutReply: true,
		}
	}

	msg, err := h.bot.SendMessage(msgCtx, params)
	if err != nil {
		h.logger.Error().Int64("chat_id", chatID).Int("reply_to", replyTo).Err(err).Msg("Failed to send message")
		return 0, fmt.Errorf("failed to send message: %w", err)
	}

	h.logger.Debug().Int64("chat_id", chatID).Int("message_id", msg.ID).Int("text_length", len(text)).Msg("Message sent")
	return msg.ID, nil
}

// EditText implements deps.Sender interface
func (h *Handlers) EditText(ctx context.Context, chatID int64, messageID int, text string, keyboard dto.Keyboard) error {
	if text == "" {
		return fmt.Errorf("message text cannot be empty")
	}

	msgCtx, cancel := context.WithTimeout(ctx, RequestTimeout)
	defer cancel()

	_, err := h.bot.EditMessageText(msgCtx, &tgbot.EditMessageTextParams{
		ChatID:      chatID,
		MessageID:   messageID,
		Text:        truncate(text),
		ReplyMarkup: inlineMarkup(keyboard),
	})
	if err != nil {
		// Refreshing an unchanged list is not a failure
		if strings.Contains(err.Error(), "message is not modified") {
			return nil
		}
		h.logger.Error().Int64("chat_id", chatID).Int("message_id", messageID).Err(err).Msg("Failed to edit message text")
		return fmt.Errorf("failed to edit message: %w", err)
	}

	return nil
}

// DeleteMessage implements deps.Sender interface
func (h *Handlers) DeleteMessage(ctx context.Context, chatID int64, messageID int) error {
	h.logger.Debug().Int64("chat_id", chatID).Int("message_id", messageID).Msg("Deleting message")

	msgCtx, cancel := context.WithTimeout(ctx, RequestTimeout)
	defer cancel()

	_, err := h.bot.DeleteMessage(msgCtx, &tgbot.DeleteMessageParams{
		ChatID:    chatID,
		MessageID: messageID,
	})
	if err != nil {
		return fmt.Errorf("failed to delete message: %w", err)
	}

	return nil
}

// HandleStart handles /start command
func (h *Handlers) HandleStart(ctx context.Context, bot *tgbot.Bot, update *models.Update) {
	chatID := update.Message.Chat.ID
	h.logCommand(chatID, "/start", "processing")

	resp, err := h.uc.HandleStart(ctx)
	if err != nil {
		h.logError(chatID, "/start", err)
		h.sendResponse(ctx, chatID, update.Message.ID, consts.MsgGenericFailure)
		return
	}

	h.sendResponse(ctx, chatID, 0, resp.Message)
	h.logCommand(chatID, "/start", "success")
}

// HandleHelp handles /help command
func (h *Handlers) HandleHelp(ctx context.Context, bot *tgbot.Bot, update *models.Update) {
	chatID := update.Message.Chat.ID
	h.logCommand(chatID, "/help", "processing")

	resp, err := h.uc.HandleHelp(ctx)
	if err != nil {
		h.logError(chatID, "/help", err)
		h.sendResponse(ctx, chatID, update.Message.ID, consts.MsgGenericFailure)
		return
	}

	h.sendResponse(ctx, chatID, 0, resp.Message)
	h.logCommand(chatID, "/help", "success")
}

// HandleDownloads handles /downloads command
func (h *Handlers) HandleDownloads(ctx context.Context, bot *tgbot.Bot, update *models.Update) {
	chatID := update.Message.Chat.ID
	h.logCommand(chatID, "/downloads", "processing")

	view, err := h.uc.HandleDownloads(ctx)
	if err != nil {
		h.logError(chatID, "/downloads", err)
		h.sendResponse(ctx, chatID, update.Message.ID, consts.MsgGenericFailure)
		return
	}

	if _, err := h.SendText(ctx, chatID, 0, view.Text, view.Keyboard); err != nil {
		h.logError(chatID, "/downloads", err)
		return
	}
	h.logCommand(chatID, "/downloads", "success")
}

// HandleConnect handles /connect command
func (h *Handlers) HandleConnect(ctx context.Context, bot *tgbot.Bot, update *models.Update) {
	chatID := update.Message.Chat.ID
	replyTo := update.Message.ID
	h.logCommand(chatID, "/connect", "processing")

	connectCtx, cancel := context.WithTimeout(ctx, ConnectTimeout)
	defer cancel()

	resp, err := h.uc.HandleConnect(connectCtx, chatID, replyTo)
	if err != nil {
		h.logError(chatID, "/connect", err)
		h.sendResponse(ctx, chatID, replyTo, connectErrorReply(err))
		return
	}

	h.sendResponse(ctx, chatID, replyTo, resp.Message)
	h.logCommand(chatID, "/connect", "success")
}

// HandleDisconnect handles /disconnect command
func (h *Handlers) HandleDisconnect(ctx context.Context, bot *tgbot.Bot, update *models.Update) {
	chatID := update.Message.Chat.ID
	replyTo := update.Message.ID
	h.logCommand(chatID, "/disconnect", "processing")

	resp, err := h.uc.HandleDisconnect(ctx)
	if err != nil {
		h.logError(chatID, "/disconnect", err)
		h.sendResponse(ctx, chatID, replyTo, disconnectErrorReply(err))
		return
	}

	h.sendResponse(ctx, chatID, replyTo, resp.Message)
	h.logCommand(chatID, "/disconnect", "success")
}

// HandleMedia handles a document or video sent to the bot
func (h *Handlers) HandleMedia(ctx context.Context, bot *tgbot.Bot, update *models.Update) {
	msg := update.Message
	h.logCommand(msg.Chat.ID, "media", "processing")

	if err := h.uc.HandleMedia(ctx, MediaRequestFromMessage(msg)); err != nil {
		h.logError(msg.Chat.ID, "media", err)
		h.sendResponse(ctx, msg.Chat.ID, msg.ID, mediaErrorReply(err))
		return
	}

	h.logCommand(msg.Chat.ID, "media", "accepted")
}

// HandleRedownload handles /redownload sent as a reply to a media message
func (h *Handlers) HandleRedownload(ctx context.Context, bot *tgbot.Bot, update *models.Update) {
	msg := update.Message
	h.logCommand(msg.Chat.ID, "/redownload", "processing")

	target := msg.ReplyToMessage
	if target == nil || !HasMedia(target) {
		h.sendResponse(ctx, msg.Chat.ID, msg.ID, consts.MsgRedownloadUsage)
		return
	}

	if err := h.uc.HandleRedownload(ctx, MediaRequestFromMessage(target)); err != nil {
		h.logError(msg.Chat.ID, "/redownload", err)
		reply := mediaErrorReply(err)
		if errors.Is(err, mediaerrors.ErrNoMedia) {
			reply = consts.MsgRedownloadUsage
		}
		h.sendResponse(ctx, msg.Chat.ID, msg.ID, reply)
		return
	}

	h.logCommand(msg.Chat.ID, "/redownload", "accepted")
}

// HandleCallback handles inline keyboard presses
func (h *Handlers) HandleCallback(ctx context.Context, bot *tgbot.Bot, update *models.Update) {
	cq := update.CallbackQuery
	msg := cq.Message.Message
	if msg == nil {
		h.answerCallback(ctx, cq.ID, "")
		return
	}

	req := &dto.CallbackRequest{
		ChatID:    msg.Chat.ID,
		MessageID: msg.ID,
		Data:      cq.Data,
	}

	resp, err := h.uc.HandleCallback(ctx, req)
	if err != nil {
		h.logError(req.ChatID, "callback", err)
		h.answerCallback(ctx, cq.ID, callbackErrorReply(err))
		return
	}

	if resp.View != nil {
		if err := h.EditText(ctx, req.ChatID, req.MessageID, resp.View.Text, resp.View.Keyboard); err != nil {
			h.logError(req.ChatID, "callback", err)
		}
	}
	h.answerCallback(ctx, cq.ID, "")
}

func (h *Handlers) answerCallback(ctx context.Context, callbackID, text string) {
	msgCtx, cancel := context.WithTimeout(ctx, RequestTimeout)
	defer cancel()

	if _, err := h.bot.AnswerCallbackQuery(msgCtx, &tgbot.AnswerCallbackQueryParams{
		CallbackQueryID: callbackID,
		Text:            text,
	}); err != nil {
		h.logger.Warn().Str("callback_id", callbackID).Err(err).Msg("Failed to answer callback query")
	}
}

func (h *Handlers) sendResponse(ctx context.Context, chatID int64, replyTo int, text string) {
	if _, err := h.SendText(ctx, chatID, replyTo, text, nil); err != nil {
		h.logger.Error().Int64("chat_id", chatID).Err(err).Msg("Failed to send Telegram response")
	}
}

// mediaErrorReply maps a pipeline error to the reply shown to the user
func mediaErrorReply(err error) string {
	switch {
	case errors.Is(err, mediaerrors.ErrOriginUnresolved):
		return consts.MsgOriginUnresolved
	case errors.Is(err, mediaerrors.ErrNotConnected):
		return consts.MsgNotConnected
	case errors.Is(err, mediaerrors.ErrAlreadyDownloaded):
		return consts.MsgAlreadyDownloaded
	case errors.Is(err, mediaerrors.ErrAlreadyActive):
		return consts.MsgAlreadyDownloading
	default:
		return consts.MsgGenericFailure
	}
}

func connectErrorReply(err error) string {
	if errors.Is(err, mediaerrors.ErrAlreadyConnected) {
		return consts.MsgAlreadyConnected
	}
	return consts.MsgConnectFailed
}

func disconnectErrorReply(err error) string {
	if errors.Is(err, mediaerrors.ErrNotConnected) {
		return consts.MsgAlreadyDisconnected
	}
	return consts.MsgGenericFailure
}

func callbackErrorReply(err error) string {
	if errors.Is(err, mediaerrors.ErrPendingExpired) {
		return consts.MsgPendingExpired
	}
	return consts.MsgGenericFailure
}

func truncate(text string) string {
	if len(text) > MaxMessageLength {
		return text[:MaxMessageLength-3] + "..."
	}
	return text
}

// logCommand logs command progress
func (h *Handlers) logCommand(chatID int64, command, result string) {
	h.logger.Info().Int64("chat_id", chatID).Str("command", command).Str("result", result).Msg("Telegram command processed")
}

// logError logs command errors
func (h *Handlers) logError(chatID int64, command string, err error) {
	h.logger.Error().Int64("chat_id", chatID).Str("command", command).Err(err).Msg("Telegram command failed")
}
