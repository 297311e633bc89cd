package mtproto

import (
	"context"
	"errors"
	"time"

	"github.com/gotd/td/tgerr"

	pkgerrors "github.com/mycodedstuff/pibot/pkg/errors"
)

// Client errors
var (
	ErrNotConnected      = pkgerrors.NewUnavailableError("mtproto client is not connected")
	ErrAlreadyConnecting = pkgerrors.NewConflictError("mtproto client connection in progress")
	ErrChannelNotFound   = pkgerrors.NewNotFoundError("channel could not be resolved")
	ErrNoDocument        = pkgerrors.NewValidationError("message has no downloadable document")
	ErrAuthFailed        = pkgerrors.NewInternalError("mtproto authentication failed")
)

// maxFloodWait caps how long a single call waits on FLOOD_WAIT before giving up
const maxFloodWait = 60 * time.Second

// notFoundErrors are RPC errors meaning the message or chat definitely cannot be seen
var notFoundErrors = []string{
	"CHANNEL_PRIVATE",
	"CHANNEL_INVALID",
	"CHAT_ID_INVALID",
	"MESSAGE_ID_INVALID",
	"MSG_ID_INVALID",
	"PEER_ID_INVALID",
	"USERNAME_INVALID",
	"USERNAME_NOT_OCCUPIED",
}

// nonRetryableAuthErrors fail the login flow immediately
var nonRetryableAuthErrors = []string{
	"PHONE_NUMBER_BANNED",      // Phone number is banned from Telegram
	"PHONE_NUMBER_INVALID",     // Phone number format is invalid
	"API_ID_INVALID",           // Invalid API ID
	"API_ID_PUBLISHED_FLOOD",   // API ID has been published and is rate limited
	"AUTH_TOKEN_INVALID",       // Invalid auth token
	"PASSWORD_HASH_INVALID",    // Invalid 2FA password
	"PHONE_PASSWORD_PROTECTED", // Missing TELEGRAM_PASSWORD for a 2FA account
}

// isNotFound reports whether err means the looked up entity does not exist for this account
func isNotFound(err error) bool {
	return tgerr.Is(err, notFoundErrors...) || errors.Is(err, ErrChannelNotFound)
}

// isNonRetryableAuthError checks if a login error should fail immediately
func isNonRetryableAuthError(err error) bool {
	return tgerr.Is(err, nonRetryableAuthErrors...)
}

// floodWait returns the wait Telegram asked for, when err is a FLOOD_WAIT within maxFloodWait
func floodWait(err error) (time.Duration, bool) {
	d, ok := tgerr.AsFloodWait(err)
	if !ok || d > maxFloodWait {
		return 0, false
	}
	return d, true
}

// sleep waits for d or until ctx is done
func sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
