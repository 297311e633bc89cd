// Package mtproto contains the MTProto user client used to fetch media from origin chats
package mtproto

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/gotd/td/telegram"
	"github.com/gotd/td/tg"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/mycodedstuff/pibot/internal/domain/media/deps"
	"github.com/mycodedstuff/pibot/internal/domain/media/entities"
)

// Client implements deps.MediaClient using gotd/td library
type Client struct {
	cfg Config

	// Telegram client instance
	client *telegram.Client
	api    *tg.Client

	sessionStorage *FileSessionStorage
	codes          CodeProvider

	// Connection state
	connected  bool
	connecting bool
	mu         sync.RWMutex
	cancelFunc context.CancelFunc
	runDone    chan struct{} // Signals when client.Run() completes

	// channels caches resolved access hashes by MTProto channel ID
	channels   map[int64]*tg.InputChannel
	channelsMu sync.Mutex

	// Rate limiter for API calls
	rateLimiter *rate.Limiter

	logger zerolog.Logger
}

// Config holds configuration for Client
type Config struct {
	APIID           int
	APIHash         string
	PhoneNumber     string
	Password        string
	SessionDir      string
	DownloadThreads int
}

// maskPhoneNumber masks phone number for logging (keeps first 2 and last 2 digits)
func maskPhoneNumber(phone string) string {
	if len(phone) < 4 {
		return "***"
	}
	return phone[:2] + strings.Repeat("*", len(phone)-4) + phone[len(phone)-2:]
}

// NewClient creates a new MTProto client instance
func NewClient(cfg Config, codes CodeProvider, logger zerolog.Logger) (*Client, error) {
	if cfg.APIID == 0 {
		return nil, fmt.Errorf("APIID is required")
	}
	if cfg.APIHash == "" {
		return nil, fmt.Errorf("APIHash is required")
	}
	if cfg.SessionDir == "" {
		cfg.SessionDir = "./sessions"
	}
	if cfg.DownloadThreads < 1 {
		cfg.DownloadThreads = 1
	}

	sessionStorage, err := NewFileSessionStorage(cfg.SessionDir, cfg.PhoneNumber)
	if err != nil {
		return nil, fmt.Errorf("failed to create session storage: %w", err)
	}

	return &Client{
		cfg:            cfg,
		sessionStorage: sessionStorage,
		codes:          codes,
		channels:       make(map[int64]*tg.InputChannel),
		rateLimiter:    rate.NewLimiter(rate.Every(time.Second), 10), // 10 requests per second
		logger:         logger.With().Str("component", "mtproto_client").Str("phone", maskPhoneNumber(cfg.PhoneNumber)).Logger(),
	}, nil
}

// HasSession reports whether a stored session can be resumed without a login code
func (c *Client) HasSession() bool {
	return c.sessionStorage.SessionExists()
}

// Connect connects to Telegram, running the login flow when the stored session is not authorized.
// ctx bounds only the connection attempt; the connection itself lives until Disconnect.
func (c *Client) Connect(ctx context.Context, onCodeRequest deps.CodeRequestFunc) error {
	c.mu.Lock()
	if c.connected {
		c.mu.Unlock()
		c.logger.Debug().Msg("already connected")
		return nil
	}
	if c.connecting {
		c.mu.Unlock()
		return ErrAlreadyConnecting
	}
	c.connecting = true
	c.mu.Unlock()

	defer func() {
		c.mu.Lock()
		c.connecting = false
		c.mu.Unlock()
	}()

	c.logger.Info().Msg("connecting to Telegram")

	client := telegram.NewClient(c.cfg.APIID, c.cfg.APIHash, telegram.Options{
		SessionStorage: c.sessionStorage,
	})

	// The run context outlives ctx, it is cancelled by Disconnect
	runCtx, cancel := context.WithCancel(context.Background())
	readyChan := make(chan struct{})
	errChan := make(chan error, 1)
	runDone := make(chan struct{})

	go func() {
		defer close(runDone)
		err := client.Run(runCtx, func(runCtx context.Context) error {
			if err := c.ensureAuthorized(ctx, client, onCodeRequest); err != nil {
				return err
			}

			c.mu.Lock()
			c.client = client
			c.api = client.API()
			c.connected = true
			c.cancelFunc = cancel
			c.runDone = runDone
			c.mu.Unlock()

			c.logger.Info().Msg("successfully connected to Telegram")
			close(readyChan)

			// Keep connection alive
			<-runCtx.Done()
			return runCtx.Err()
		})

		c.mu.Lock()
		if c.client == client {
			c.client = nil
			c.api = nil
			c.connected = false
		}
		c.mu.Unlock()

		errChan <- err
	}()

	select {
	case <-readyChan:
		return nil
	case err := <-errChan:
		cancel()
		if err != nil {
			return fmt.Errorf("failed to connect: %w", err)
		}
		return fmt.Errorf("failed to connect: client stopped")
	case <-ctx.Done():
		cancel()
		<-runDone
		return ctx.Err()
	}
}

// Disconnect disconnects from Telegram with graceful shutdown.
// Multiple calls to Disconnect() are safe and will return nil if already disconnected.
func (c *Client) Disconnect(ctx context.Context) error {
	c.mu.Lock()
	if !c.connected {
		c.mu.Unlock()
		c.logger.Debug().Msg("already disconnected")
		return nil
	}

	c.logger.Info().Msg("disconnecting from Telegram")

	cancelFunc := c.cancelFunc
	runDone := c.runDone
	c.connected = false
	c.mu.Unlock()

	if cancelFunc != nil {
		cancelFunc()

		// Wait for client.Run() goroutine to actually finish
		select {
		case <-runDone:
			c.logger.Debug().Msg("client stopped gracefully")
		case <-ctx.Done():
			c.logger.Warn().Msg("disconnect timeout reached while waiting for client shutdown")
		}
	}

	c.mu.Lock()
	c.client = nil
	c.api = nil
	c.cancelFunc = nil
	c.runDone = nil
	c.mu.Unlock()

	c.logger.Info().Msg("successfully disconnected from Telegram")
	return nil
}

// IsConnected checks if client is connected to Telegram
func (c *Client) IsConnected() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.connected
}

// apiClient returns the API client of a live connection
func (c *Client) apiClient() (*tg.Client, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if !c.connected || c.api == nil {
		return nil, ErrNotConnected
	}
	return c.api, nil
}

// invoke runs fn under the rate limiter and retries once after a short FLOOD_WAIT
func (c *Client) invoke(ctx context.Context, method string, fn func(api *tg.Client) error) error {
	api, err := c.apiClient()
	if err != nil {
		return err
	}

	for attempt := 0; ; attempt++ {
		// Apply rate limiting
		if err := c.rateLimiter.Wait(ctx); err != nil {
			return fmt.Errorf("rate limit wait cancelled: %w", err)
		}

		err := fn(api)
		if err == nil {
			return nil
		}

		wait, ok := floodWait(err)
		if !ok || attempt > 0 {
			return err
		}

		c.logger.Warn().Str("method", method).Dur("wait_duration", wait).Msg("flood wait detected, waiting before retry")
		if err := sleep(ctx, wait); err != nil {
			return err
		}
	}
}

// ResolveMessage implements deps.MediaClient
func (c *Client) ResolveMessage(ctx context.Context, chat entities.ChatRef, messageID int) (*entities.RemoteMessage, error) {
	channel, err := c.resolveChannel(ctx, chat)
	if err != nil {
		if isNotFound(err) {
			c.logger.Debug().Err(err).Int64("chat_id", chat.ID).Str("chat", chat.Username).Msg("origin chat not visible")
			return nil, nil
		}
		return nil, err
	}

	var res tg.MessagesMessagesClass
	err = c.invoke(ctx, "channels.getMessages", func(api *tg.Client) error {
		var err error
		res, err = api.ChannelsGetMessages(ctx, &tg.ChannelsGetMessagesRequest{
			Channel: channel,
			ID:      []tg.InputMessageClass{&tg.InputMessageID{ID: messageID}},
		})
		return err
	})
	if err != nil {
		if isNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get message %d: %w", messageID, err)
	}

	return firstMessage(chat, res), nil
}

// SearchMessages implements deps.MediaClient
func (c *Client) SearchMessages(ctx context.Context, chat entities.ChatRef, query string, filter entities.MediaFilter) (*entities.RemoteMessage, error) {
	channel, err := c.resolveChannel(ctx, chat)
	if err != nil {
		if isNotFound(err) {
			return nil, nil
		}
		return nil, err
	}

	var res tg.MessagesMessagesClass
	err = c.invoke(ctx, "messages.search", func(api *tg.Client) error {
		var err error
		res, err = api.MessagesSearch(ctx, &tg.MessagesSearchRequest{
			Peer:   &tg.InputPeerChannel{ChannelID: channel.ChannelID, AccessHash: channel.AccessHash},
			Q:      query,
			Filter: searchFilter(filter),
			Limit:  1,
		})
		return err
	})
	if err != nil {
		if isNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to search messages: %w", err)
	}

	return firstMessage(chat, res), nil
}

func searchFilter(filter entities.MediaFilter) tg.MessagesFilterClass {
	switch filter {
	case entities.MediaFilterVideo:
		return &tg.InputMessagesFilterVideo{}
	case entities.MediaFilterDocument:
		return &tg.InputMessagesFilterDocument{}
	default:
		return &tg.InputMessagesFilterEmpty{}
	}
}

// resolveChannel finds the input channel of chat: cache, then username, then the dialog list
func (c *Client) resolveChannel(ctx context.Context, chat entities.ChatRef) (*tg.InputChannel, error) {
	id, hasID := ChannelIDFromBotAPI(chat.ID)

	if hasID {
		if channel, ok := c.cachedChannel(id); ok {
			return channel, nil
		}
	}

	if chat.Username != "" {
		var resolved *tg.ContactsResolvedPeer
		err := c.invoke(ctx, "contacts.resolveUsername", func(api *tg.Client) error {
			var err error
			resolved, err = api.ContactsResolveUsername(ctx, &tg.ContactsResolveUsernameRequest{
				Username: strings.TrimPrefix(chat.Username, "@"),
			})
			return err
		})
		if err != nil {
			return nil, fmt.Errorf("failed to resolve channel: %w", err)
		}
		if channel, ok := channelFromChats(resolved.Chats, id); ok {
			return c.cacheChannel(channel), nil
		}
		return nil, ErrChannelNotFound
	}

	if !hasID {
		return nil, ErrChannelNotFound
	}

	// Private channels have no username, their access hash comes from the dialog list
	if err := c.loadDialogs(ctx); err != nil {
		return nil, err
	}
	if channel, ok := c.cachedChannel(id); ok {
		return channel, nil
	}
	return nil, ErrChannelNotFound
}

// loadDialogs caches the access hashes of every channel in the first page of dialogs
func (c *Client) loadDialogs(ctx context.Context) error {
	var res tg.MessagesDialogsClass
	err := c.invoke(ctx, "messages.getDialogs", func(api *tg.Client) error {
		var err error
		res, err = api.MessagesGetDialogs(ctx, &tg.MessagesGetDialogsRequest{
			OffsetPeer: &tg.InputPeerEmpty{},
			Limit:      100,
		})
		return err
	})
	if err != nil {
		return fmt.Errorf("failed to get dialogs: %w", err)
	}

	var chats []tg.ChatClass
	switch d := res.(type) {
	case *tg.MessagesDialogs:
		chats = d.Chats
	case *tg.MessagesDialogsSlice:
		chats = d.Chats
	}

	for _, chat := range chats {
		if channel, ok := chat.(*tg.Channel); ok {
			c.cacheChannel(channel)
		}
	}
	return nil
}

func (c *Client) cachedChannel(id int64) (*tg.InputChannel, bool) {
	c.channelsMu.Lock()
	defer c.channelsMu.Unlock()
	channel, ok := c.channels[id]
	return channel, ok
}

func (c *Client) cacheChannel(channel *tg.Channel) *tg.InputChannel {
	input := &tg.InputChannel{ChannelID: channel.ID, AccessHash: channel.AccessHash}

	c.channelsMu.Lock()
	c.channels[channel.ID] = input
	c.channelsMu.Unlock()

	return input
}

// Ensure Client implements deps.MediaClient interface
var _ deps.MediaClient = (*Client)(nil)
