// Package dto contains data transfer objects for the media domain
package dto

import "github.com/mycodedstuff/pibot/internal/domain/media/entities"

// Button is one inline keyboard button
type Button struct {
	Text string `json:"text"`
	Data string `json:"data"`
}

// Keyboard is an inline keyboard laid out in rows. A nil Keyboard removes the markup.
type Keyboard [][]Button

// ForwardInfo is the forward metadata of an inbound message
type ForwardInfo struct {
	Chat      entities.ChatRef `json:"chat"`
	MessageID int              `json:"messageId"`
	// ChannelTitle is set when the message was forwarded from a channel
	ChannelTitle string `json:"channelTitle,omitempty"`
	// UserName is the "first last" name of the user the message was forwarded from
	UserName string `json:"userName,omitempty"`
}

// MediaRequest represents an inbound media message to download
type MediaRequest struct {
	ChatID int64 `json:"chatId"`
	// MessageID is the inbound message, replies are threaded to it
	MessageID int                `json:"messageId"`
	Forward   *ForwardInfo       `json:"forward,omitempty"`
	Caption   string             `json:"caption,omitempty"`
	Media     entities.MediaItem `json:"-"`
	// SenderName is the "first last" name of the user who sent the message to the bot
	SenderName string `json:"senderName,omitempty"`
	// Force skips the already-downloaded check
	Force bool `json:"force"`
}

// CallbackRequest represents a pressed inline button
type CallbackRequest struct {
	ChatID    int64  `json:"chatId"`
	MessageID int    `json:"messageId"`
	Data      string `json:"data"`
}

// CallbackResponse tells the transport how to update the pressed message.
// A nil View leaves the message untouched.
type CallbackResponse struct {
	View *ListView `json:"view,omitempty"`
}

// ListView is a rendered page of the downloads list
type ListView struct {
	Text     string   `json:"text"`
	Keyboard Keyboard `json:"keyboard"`
	Page     int      `json:"page"`
}

// CommandResponse represents a response for bot commands
type CommandResponse struct {
	Message string `json:"message"`
}
