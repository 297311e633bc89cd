package entities

// MediaKind tags the MediaItem variants
type MediaKind string

const (
	MediaKindVideo    MediaKind = "video"
	MediaKindDocument MediaKind = "document"
)

// MediaItem is the closed set of downloadable attachments: Video or Document
type MediaItem interface {
	Kind() MediaKind
	file() FileAttributes
}

// FileAttributes are the fields shared by every attachment kind.
// FileSize is nil when the transport omitted it.
type FileAttributes struct {
	FileID   string
	FileName string
	MimeType string
	FileSize *int64
}

// Video is a video attachment
type Video struct {
	FileAttributes
	Duration int
	Width    int
	Height   int
}

// Kind implements MediaItem
func (Video) Kind() MediaKind { return MediaKindVideo }

func (v Video) file() FileAttributes { return v.FileAttributes }

// Document is a generic file attachment
type Document struct {
	FileAttributes
}

// Kind implements MediaItem
func (Document) Kind() MediaKind { return MediaKindDocument }

func (d Document) file() FileAttributes { return d.FileAttributes }

// AttributesOf returns the shared attributes of any MediaItem
func AttributesOf(item MediaItem) FileAttributes {
	if item == nil {
		return FileAttributes{}
	}
	return item.file()
}

// MediaMetadata is what the pipeline needs to name and size a download
type MediaMetadata struct {
	FileID   string
	FileName string
	FileSize *int64
}

// ChatRef identifies a chat on both transports: the Bot API id and, when public, its username
type ChatRef struct {
	ID       int64
	Username string
}

// IsZero reports whether the reference carries nothing to resolve
func (c ChatRef) IsZero() bool {
	return c.ID == 0 && c.Username == ""
}

// MediaFilter narrows a message search to a media type
type MediaFilter string

const (
	MediaFilterVideo    MediaFilter = "video"
	MediaFilterDocument MediaFilter = "document"
)

// RemoteMedia locates a file on the high-bandwidth transport
type RemoteMedia struct {
	DocumentID    int64
	AccessHash    int64
	FileReference []byte
	Size          int64
	MimeType      string
}

// RemoteMessage is a message fetched through the high-bandwidth client
type RemoteMessage struct {
	ID    int
	Chat  ChatRef
	Text  string
	Media *RemoteMedia
}
