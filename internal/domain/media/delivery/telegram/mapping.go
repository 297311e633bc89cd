package telegram

import (
	"strings"

	"github.com/go-telegram/bot/models"

	"github.com/mycodedstuff/pibot/internal/domain/media/dto"
	"github.com/mycodedstuff/pibot/internal/domain/media/entities"
)

// HasMedia reports whether msg carries a downloadable document or video
func HasMedia(msg *models.Message) bool {
	return msg != nil && (msg.Document != nil || msg.Video != nil)
}

// IsMediaMessage matches updates with a document or video
func IsMediaMessage(update *models.Update) bool {
	return update.Message != nil && HasMedia(update.Message)
}

// MediaRequestFromMessage maps a Bot API message to a pipeline request
func MediaRequestFromMessage(msg *models.Message) *dto.MediaRequest {
	req := &dto.MediaRequest{
		ChatID:    msg.Chat.ID,
		MessageID: msg.ID,
		Forward:   forwardInfo(msg.ForwardOrigin),
		Caption:   strings.TrimSpace(msg.Caption),
		Media:     mediaItemOf(msg),
	}
	if msg.From != nil {
		req.SenderName = fullName(msg.From.FirstName, msg.From.LastName)
	}
	return req
}

func mediaItemOf(msg *models.Message) entities.MediaItem {
	switch {
	case msg.Video != nil:
		v := msg.Video
		return entities.Video{
			FileAttributes: fileAttributes(v.FileID, v.FileName, v.MimeType, v.FileSize),
			Duration:       v.Duration,
			Width:          v.Width,
			Height:         v.Height,
		}
	case msg.Document != nil:
		d := msg.Document
		return entities.Document{
			FileAttributes: fileAttributes(d.FileID, d.FileName, d.MimeType, d.FileSize),
		}
	default:
		return nil
	}
}

// fileAttributes treats a zero size as unknown
func fileAttributes(fileID, fileName, mimeType string, size int64) entities.FileAttributes {
	attrs := entities.FileAttributes{
		FileID:   fileID,
		FileName: fileName,
		MimeType: mimeType,
	}
	if size > 0 {
		attrs.FileSize = &size
	}
	return attrs
}

// forwardInfo extracts the forward metadata. Only channel forwards carry a
// chat and message ID that can be resolved on the user client.
func forwardInfo(origin *models.MessageOrigin) *dto.ForwardInfo {
	if origin == nil {
		return nil
	}

	switch origin.Type {
	case models.MessageOriginTypeChannel:
		channel := origin.MessageOriginChannel
		if channel == nil {
			return nil
		}
		return &dto.ForwardInfo{
			Chat:         entities.ChatRef{ID: channel.Chat.ID, Username: channel.Chat.Username},
			MessageID:    channel.MessageID,
			ChannelTitle: channel.Chat.Title,
		}

	case models.MessageOriginTypeUser:
		if origin.MessageOriginUser == nil {
			return nil
		}
		user := origin.MessageOriginUser.SenderUser
		return &dto.ForwardInfo{UserName: fullName(user.FirstName, user.LastName)}

	case models.MessageOriginTypeHiddenUser:
		if origin.MessageOriginHiddenUser == nil {
			return nil
		}
		return &dto.ForwardInfo{UserName: origin.MessageOriginHiddenUser.SenderUserName}

	case models.MessageOriginTypeChat:
		if origin.MessageOriginChat == nil {
			return nil
		}
		return &dto.ForwardInfo{ChannelTitle: origin.MessageOriginChat.SenderChat.Title}
	}

	return nil
}

func fullName(first, last string) string {
	return strings.TrimSpace(first + " " + last)
}

// inlineMarkup converts a keyboard; an empty keyboard yields no markup
func inlineMarkup(keyboard dto.Keyboard) models.ReplyMarkup {
	if len(keyboard) == 0 {
		return nil
	}

	rows := make([][]models.InlineKeyboardButton, 0, len(keyboard))
	for _, row := range keyboard {
		buttons := make([]models.InlineKeyboardButton, 0, len(row))
		for _, b := range row {
			buttons = append(buttons, models.InlineKeyboardButton{Text: b.Text, CallbackData: b.Data})
		}
		rows = append(rows, buttons)
	}
	return &models.InlineKeyboardMarkup{InlineKeyboard: rows}
}
