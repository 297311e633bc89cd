package business

import (
	"context"
	"fmt"

	"github.com/mycodedstuff/pibot/internal/domain/media/dto"
	"github.com/mycodedstuff/pibot/internal/domain/media/entities"
	mediaerrors "github.com/mycodedstuff/pibot/internal/domain/media/errors"
)

// resolveOrigin fetches the original message behind a forward.
// A direct lookup by ID is tried first, then a caption search limited to videos.
// It returns nil, nil when both miss; RPC failures are returned as errors.
func (uc *UseCase) resolveOrigin(ctx context.Context, req *dto.MediaRequest) (*entities.RemoteMessage, error) {
	fwd := req.Forward
	if fwd == nil || fwd.Chat.IsZero() || fwd.MessageID == 0 {
		return nil, mediaerrors.ErrOriginUnresolved
	}

	msg, err := uc.client.ResolveMessage(ctx, fwd.Chat, fwd.MessageID)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve message %d: %w", fwd.MessageID, err)
	}
	if hasMedia(msg) {
		uc.metrics.OriginResolved(originDirect)
		return msg, nil
	}

	if req.Caption != "" {
		uc.logger.Debug().
			Int("message_id", fwd.MessageID).
			Str("chat", fwd.Chat.Username).
			Msg("Direct lookup missed, searching by caption")

		msg, err = uc.client.SearchMessages(ctx, fwd.Chat, req.Caption, entities.MediaFilterVideo)
		if err != nil {
			return nil, fmt.Errorf("failed to search messages: %w", err)
		}
		if hasMedia(msg) {
			uc.metrics.OriginResolved(originSearch)
			return msg, nil
		}
	}

	uc.metrics.OriginResolved(originMiss)
	uc.logger.Warn().
		Int64("chat_id", fwd.Chat.ID).
		Str("chat", fwd.Chat.Username).
		Int("message_id", fwd.MessageID).
		Msg("Original message not found")
	return nil, nil
}

func hasMedia(msg *entities.RemoteMessage) bool {
	return msg != nil && msg.Media != nil
}
