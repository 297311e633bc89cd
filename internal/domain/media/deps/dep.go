// Package deps contains interface definitions for the media domain dependencies
package deps

import (
	"context"

	"github.com/mycodedstuff/pibot/internal/domain/media/dto"
	"github.com/mycodedstuff/pibot/internal/domain/media/entities"
)

// DownloadRegistry is the shared, insertion-ordered collection of downloads keyed by file name
type DownloadRegistry interface {
	// Upsert stores d, replacing an entry with the same name in place
	Upsert(d *entities.Download)

	// StartIfIdle stores d unless the entry with the same name is still in flight,
	// reports whether d was stored
	StartIfIdle(d *entities.Download) bool

	// Update mutates the named entry under the registry lock, returns false when it is absent
	Update(name string, fn func(d *entities.Download)) bool

	// Get returns a copy of the named entry
	Get(name string) (*entities.Download, bool)

	// List returns copies of all entries in insertion order
	List() []*entities.Download

	// Len returns the number of entries
	Len() int
}

// PendingStore holds downloads awaiting classification input
type PendingStore interface {
	// Put registers a pending download under its ID
	Put(p *entities.PendingDownload)

	// Take atomically removes and returns the entry; only one caller observes ok for an ID
	Take(id string) (*entities.PendingDownload, bool)

	// SetPromptMessageID attaches the prompt message to an entry that is still pending
	SetPromptMessageID(id string, messageID int) bool

	// Len returns the number of pending entries
	Len() int
}

// Sender defines the bot transport operations used by the use case.
// This interface breaks the cyclic dependency between UseCase and the Telegram handlers.
type Sender interface {
	// SendText sends text to a chat, threaded to replyTo when it is non-zero, and returns the new message ID
	SendText(ctx context.Context, chatID int64, replyTo int, text string, keyboard dto.Keyboard) (int, error)

	// EditText replaces the text and keyboard of an existing message
	EditText(ctx context.Context, chatID int64, messageID int, text string, keyboard dto.Keyboard) error

	// DeleteMessage deletes a message from a chat
	DeleteMessage(ctx context.Context, chatID int64, messageID int) error
}

// ProgressFunc receives the total number of bytes written so far
type ProgressFunc func(downloaded int64)

// CodeRequestFunc is called when the login flow waits for a code; hint tells the user where to enter it
type CodeRequestFunc func(hint string)

// MediaClient is the high-bandwidth client that can see the origin chats
type MediaClient interface {
	// IsConnected reports whether the client is connected and authorized
	IsConnected() bool

	// Connect starts the client and runs the login flow when the session is not authorized
	Connect(ctx context.Context, onCodeRequest CodeRequestFunc) error

	// Disconnect stops the client
	Disconnect(ctx context.Context) error

	// ResolveMessage fetches one message by ID. It returns nil, nil when the message definitely does not exist.
	ResolveMessage(ctx context.Context, chat entities.ChatRef, messageID int) (*entities.RemoteMessage, error)

	// SearchMessages returns the top match for query in chat, nil, nil when nothing matches
	SearchMessages(ctx context.Context, chat entities.ChatRef, query string, filter entities.MediaFilter) (*entities.RemoteMessage, error)

	// DownloadMedia streams the media of msg to destPath
	DownloadMedia(ctx context.Context, msg *entities.RemoteMessage, destPath string, onProgress ProgressFunc) error
}

// CompletedRepository defines the durable record of finished downloads
type CompletedRepository interface {
	// RecordCompleted appends a record for the origin message ID. Duplicates are allowed.
	RecordCompleted(ctx context.Context, messageID int) error
}

// EventPublisher defines interface for announcing finished downloads
type EventPublisher interface {
	// PublishDownloadCompleted sends the event to the downloads topic
	PublishDownloadCompleted(ctx context.Context, event *entities.DownloadCompletedEvent) error

	// Close closes the publisher
	Close() error
}

// Metrics records pipeline activity
type Metrics interface {
	DownloadStarted()
	DownloadFinished(status entities.DownloadStatus)
	BytesDownloaded(n int64)
	OriginResolved(result string)
	ClassificationResolved(path string)
}
