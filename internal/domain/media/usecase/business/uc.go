// Package business contains the media acquisition pipeline
package business

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/mycodedstuff/pibot/config"
	"github.com/mycodedstuff/pibot/internal/domain/media/consts"
	"github.com/mycodedstuff/pibot/internal/domain/media/deps"
	"github.com/mycodedstuff/pibot/internal/domain/media/dto"
	mediaerrors "github.com/mycodedstuff/pibot/internal/domain/media/errors"
)

// Classification resolution paths reported to metrics
const (
	resolvedBySelection   = "selection"
	resolvedByTimeout     = "timeout"
	resolvedAutomatically = "auto"
)

// Origin resolution results reported to metrics
const (
	originDirect = "direct"
	originSearch = "search"
	originMiss   = "miss"
)

// UseCase runs the media acquisition pipeline: origin resolution, classification,
// downloads and the downloads list
type UseCase struct {
	cfg       *config.MediaConfig
	registry  deps.DownloadRegistry
	pending   deps.PendingStore
	client    deps.MediaClient
	completed deps.CompletedRepository
	publisher deps.EventPublisher
	metrics   deps.Metrics
	sender    deps.Sender
	logger    zerolog.Logger

	afterFunc func(d time.Duration, f func())
	now       func() time.Time
	newID     func() string

	// ctx outlives the event that started a download or a prompt
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	transfers atomic.Uint64
}

// NewUseCase creates a new UseCase instance
// Note: sender is not passed here to break cyclic dependency
// Use SetSender after creating the Telegram handlers
func NewUseCase(
	cfg *config.MediaConfig,
	registry deps.DownloadRegistry,
	pending deps.PendingStore,
	client deps.MediaClient,
	completed deps.CompletedRepository,
	publisher deps.EventPublisher,
	metrics deps.Metrics,
	logger zerolog.Logger,
) *UseCase {
	ctx, cancel := context.WithCancel(context.Background())

	return &UseCase{
		cfg:       cfg,
		registry:  registry,
		pending:   pending,
		client:    client,
		completed: completed,
		publisher: publisher,
		metrics:   metrics,
		logger:    logger.With().Str("component", "media-usecase").Logger(),
		afterFunc: func(d time.Duration, f func()) { time.AfterFunc(d, f) },
		now:       time.Now,
		newID:     uuid.NewString,
		ctx:       ctx,
		cancel:    cancel,
	}
}

// SetSender sets the Sender after construction
// This is called by fx.Invoke to resolve cyclic dependency
func (uc *UseCase) SetSender(sender deps.Sender) {
	uc.sender = sender
}

// Stop cancels running downloads and waits for them to finish or for ctx to expire
func (uc *UseCase) Stop(ctx context.Context) error {
	uc.cancel()

	done := make(chan struct{})
	go func() {
		uc.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// HandleStart handles /start command
func (uc *UseCase) HandleStart(ctx context.Context) (*dto.CommandResponse, error) {
	return &dto.CommandResponse{Message: consts.WelcomeMessage}, nil
}

// HandleHelp handles /help command
func (uc *UseCase) HandleHelp(ctx context.Context) (*dto.CommandResponse, error) {
	return &dto.CommandResponse{Message: consts.HelpMessage}, nil
}

// HandleMedia runs the pipeline for an inbound document or video.
// Replies about the download itself are sent through the Sender; the returned
// error describes why nothing was started.
func (uc *UseCase) HandleMedia(ctx context.Context, req *dto.MediaRequest) error {
	if req.Media == nil {
		return mediaerrors.ErrNoMedia
	}
	if !uc.client.IsConnected() {
		return mediaerrors.ErrNotConnected
	}

	meta := ExtractMetadata(req.Media)
	origin := OriginName(req)

	uc.logger.Info().
		Int64("chat_id", req.ChatID).
		Int("message_id", req.MessageID).
		Str("file_name", meta.FileName).
		Str("origin", origin).
		Bool("force", req.Force).
		Msg("Processing media message")

	msg, err := uc.resolveOrigin(ctx, req)
	if err != nil {
		return err
	}
	if msg == nil {
		return mediaerrors.ErrOriginUnresolved
	}

	job := &downloadJob{
		ChatID:  req.ChatID,
		ReplyTo: req.MessageID,
		Message: msg,
		Meta:    meta,
		Origin:  origin,
		Force:   req.Force,
	}

	return uc.classify(ctx, job)
}

// HandleRedownload runs the pipeline for a media message the user replied /redownload to
func (uc *UseCase) HandleRedownload(ctx context.Context, req *dto.MediaRequest) error {
	req.Force = true
	return uc.HandleMedia(ctx, req)
}

// HandleConnect connects the media client, running the login flow when needed
func (uc *UseCase) HandleConnect(ctx context.Context, chatID int64, replyTo int) (*dto.CommandResponse, error) {
	if uc.client.IsConnected() {
		return nil, mediaerrors.ErrAlreadyConnected
	}

	uc.reply(ctx, chatID, replyTo, consts.MsgConnecting)

	err := uc.client.Connect(ctx, func(hint string) {
		uc.reply(ctx, chatID, replyTo, hint)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect media client: %w", err)
	}

	uc.logger.Info().Int64("chat_id", chatID).Msg("Media client connected")
	return &dto.CommandResponse{Message: consts.MsgConnected}, nil
}

// HandleDisconnect disconnects the media client
func (uc *UseCase) HandleDisconnect(ctx context.Context) (*dto.CommandResponse, error) {
	if !uc.client.IsConnected() {
		return nil, mediaerrors.ErrNotConnected
	}

	if err := uc.client.Disconnect(ctx); err != nil {
		return nil, fmt.Errorf("failed to disconnect media client: %w", err)
	}

	uc.logger.Info().Msg("Media client disconnected")
	return &dto.CommandResponse{Message: consts.MsgDisconnected}, nil
}

// reply sends text threaded to replyTo; failures are logged
func (uc *UseCase) reply(ctx context.Context, chatID int64, replyTo int, text string) {
	if uc.sender == nil {
		uc.logger.Error().Msg("Sender is not set")
		return
	}
	if _, err := uc.sender.SendText(ctx, chatID, replyTo, text, nil); err != nil {
		uc.logger.Warn().Err(err).Int64("chat_id", chatID).Int("reply_to", replyTo).Msg("Failed to send reply")
	}
}

// goSafely runs fn in a tracked goroutine that cannot crash the process
func (uc *UseCase) goSafely(name string, fn func()) {
	uc.wg.Add(1)
	go func() {
		defer uc.wg.Done()
		defer uc.recoverPanic(name)
		fn()
	}()
}

// safely wraps a timer callback
func (uc *UseCase) safely(name string, fn func()) func() {
	return func() {
		defer uc.recoverPanic(name)
		fn()
	}
}

func (uc *UseCase) recoverPanic(name string) {
	if r := recover(); r != nil {
		uc.logger.Error().Interface("panic", r).Str("task", name).Msg("Recovered from panic")
	}
}
