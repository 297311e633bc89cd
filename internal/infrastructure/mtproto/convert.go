package mtproto

import (
	"github.com/gotd/td/tg"

	"github.com/mycodedstuff/pibot/internal/domain/media/entities"
)

// botAPIChannelOffset is added to MTProto channel IDs to form Bot API chat IDs (-100...)
const botAPIChannelOffset = 1_000_000_000_000

// ChannelIDFromBotAPI converts a Bot API chat ID such as -1001234567890 to an MTProto channel ID
func ChannelIDFromBotAPI(chatID int64) (int64, bool) {
	if chatID >= -botAPIChannelOffset {
		return 0, false
	}
	return -chatID - botAPIChannelOffset, true
}

// messagesOf unwraps the message list of any messages.Messages variant
func messagesOf(res tg.MessagesMessagesClass) []tg.MessageClass {
	switch m := res.(type) {
	case *tg.MessagesMessages:
		return m.Messages
	case *tg.MessagesMessagesSlice:
		return m.Messages
	case *tg.MessagesChannelMessages:
		return m.Messages
	default:
		return nil
	}
}

// firstMessage returns the first real message of res as a RemoteMessage, nil when there is none
func firstMessage(chat entities.ChatRef, res tg.MessagesMessagesClass) *entities.RemoteMessage {
	for _, m := range messagesOf(res) {
		if msg, ok := m.(*tg.Message); ok {
			return toRemoteMessage(chat, msg)
		}
	}
	return nil
}

func toRemoteMessage(chat entities.ChatRef, msg *tg.Message) *entities.RemoteMessage {
	return &entities.RemoteMessage{
		ID:    msg.ID,
		Chat:  chat,
		Text:  msg.Message,
		Media: remoteMedia(msg.Media),
	}
}

// remoteMedia extracts the document of a message, nil for any other media
func remoteMedia(media tg.MessageMediaClass) *entities.RemoteMedia {
	m, ok := media.(*tg.MessageMediaDocument)
	if !ok {
		return nil
	}
	docClass, ok := m.GetDocument()
	if !ok {
		return nil
	}
	doc, ok := docClass.(*tg.Document)
	if !ok {
		return nil
	}

	return &entities.RemoteMedia{
		DocumentID:    doc.ID,
		AccessHash:    doc.AccessHash,
		FileReference: doc.FileReference,
		Size:          doc.Size,
		MimeType:      doc.MimeType,
	}
}

// inputLocation builds the file location of a document for the downloader
func inputLocation(media *entities.RemoteMedia) *tg.InputDocumentFileLocation {
	return &tg.InputDocumentFileLocation{
		ID:            media.DocumentID,
		AccessHash:    media.AccessHash,
		FileReference: media.FileReference,
	}
}

// channelFromChats finds the channel with id among chats
func channelFromChats(chats []tg.ChatClass, id int64) (*tg.Channel, bool) {
	for _, chat := range chats {
		if channel, ok := chat.(*tg.Channel); ok && (id == 0 || channel.ID == id) {
			return channel, true
		}
	}
	return nil, false
}
