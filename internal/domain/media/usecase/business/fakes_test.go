package business

import (
	"context"
	"fmt"
	"os"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/mycodedstuff/pibot/config"
	"github.com/mycodedstuff/pibot/internal/domain/media/deps"
	"github.com/mycodedstuff/pibot/internal/domain/media/dto"
	"github.com/mycodedstuff/pibot/internal/domain/media/entities"
	"github.com/mycodedstuff/pibot/internal/domain/media/repository/memory"
)

type sentMessage struct {
	ChatID    int64
	MessageID int
	ReplyTo   int
	Text      string
	Keyboard  dto.Keyboard
}

// fakeSender records everything the use case sends
type fakeSender struct {
	mu      sync.Mutex
	nextID  int
	sent    []sentMessage
	edited  []sentMessage
	deleted []int
	sendErr error
}

func (s *fakeSender) SendText(ctx context.Context, chatID int64, replyTo int, text string, keyboard dto.Keyboard) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.sendErr != nil {
		return 0, s.sendErr
	}
	s.nextID++
	s.sent = append(s.sent, sentMessage{ChatID: chatID, MessageID: s.nextID, ReplyTo: replyTo, Text: text, Keyboard: keyboard})
	return s.nextID, nil
}

func (s *fakeSender) EditText(ctx context.Context, chatID int64, messageID int, text string, keyboard dto.Keyboard) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.edited = append(s.edited, sentMessage{ChatID: chatID, MessageID: messageID, Text: text, Keyboard: keyboard})
	return nil
}

func (s *fakeSender) DeleteMessage(ctx context.Context, chatID int64, messageID int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.deleted = append(s.deleted, messageID)
	return nil
}

func (s *fakeSender) texts() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	texts := make([]string, 0, len(s.sent))
	for _, m := range s.sent {
		texts = append(texts, m.Text)
	}
	return texts
}

func (s *fakeSender) last() sentMessage {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sent[len(s.sent)-1]
}

func (s *fakeSender) lastEdit() sentMessage {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.edited[len(s.edited)-1]
}

// fakeClient serves messages from memory and writes fixed content on download
type fakeClient struct {
	mu         sync.Mutex
	connected  bool
	messages   map[int]*entities.RemoteMessage
	search     *entities.RemoteMessage
	resolveErr error
	content    []byte
	failWith   error

	searches  []string
	downloads atomic.Int32
}

func newFakeClient() *fakeClient {
	return &fakeClient{
		connected: true,
		messages:  make(map[int]*entities.RemoteMessage),
		content:   []byte("media-bytes"),
	}
}

func (c *fakeClient) IsConnected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.connected
}

func (c *fakeClient) Connect(ctx context.Context, onCodeRequest deps.CodeRequestFunc) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	onCodeRequest("enter the code")
	c.connected = true
	return nil
}

func (c *fakeClient) Disconnect(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.connected = false
	return nil
}

func (c *fakeClient) ResolveMessage(ctx context.Context, chat entities.ChatRef, messageID int) (*entities.RemoteMessage, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.resolveErr != nil {
		return nil, c.resolveErr
	}
	return c.messages[messageID], nil
}

func (c *fakeClient) SearchMessages(ctx context.Context, chat entities.ChatRef, query string, filter entities.MediaFilter) (*entities.RemoteMessage, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.searches = append(c.searches, query)
	return c.search, nil
}

func (c *fakeClient) DownloadMedia(ctx context.Context, msg *entities.RemoteMessage, destPath string, onProgress deps.ProgressFunc) error {
	c.downloads.Add(1)
	if c.failWith != nil {
		onProgress(1)
		return c.failWith
	}
	half := int64(len(c.content) / 2)
	onProgress(half)
	onProgress(int64(len(c.content)))
	return os.WriteFile(destPath, c.content, 0o644)
}

type fakeCompleted struct {
	mu  sync.Mutex
	ids []int
}

func (r *fakeCompleted) RecordCompleted(ctx context.Context, messageID int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ids = append(r.ids, messageID)
	return nil
}

type fakePublisher struct {
	mu     sync.Mutex
	events []*entities.DownloadCompletedEvent
}

func (p *fakePublisher) PublishDownloadCompleted(ctx context.Context, event *entities.DownloadCompletedEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return nil
}

func (p *fakePublisher) Close() error { return nil }

type fakeMetrics struct {
	started        atomic.Int32
	completed      atomic.Int32
	failed         atomic.Int32
	bytes          atomic.Int64
	mu             sync.Mutex
	origins        []string
	classification []string
}

func (m *fakeMetrics) DownloadStarted() { m.started.Add(1) }

func (m *fakeMetrics) DownloadFinished(status entities.DownloadStatus) {
	if status == entities.DownloadStatusCompleted {
		m.completed.Add(1)
		return
	}
	m.failed.Add(1)
}

func (m *fakeMetrics) BytesDownloaded(n int64) { m.bytes.Add(n) }

func (m *fakeMetrics) OriginResolved(result string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.origins = append(m.origins, result)
}

func (m *fakeMetrics) ClassificationResolved(path string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.classification = append(m.classification, path)
}

// fakeTimers captures AfterFunc calls so tests decide when timers fire
type fakeTimers struct {
	mu     sync.Mutex
	delays []time.Duration
	funcs  []func()
}

func (f *fakeTimers) AfterFunc(d time.Duration, fn func()) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.delays = append(f.delays, d)
	f.funcs = append(f.funcs, fn)
}

func (f *fakeTimers) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.funcs)
}

func (f *fakeTimers) fire(i int) {
	f.mu.Lock()
	fn := f.funcs[i]
	f.mu.Unlock()
	fn()
}

type testEnv struct {
	uc        *UseCase
	cfg       *config.MediaConfig
	sender    *fakeSender
	client    *fakeClient
	completed *fakeCompleted
	publisher *fakePublisher
	metrics   *fakeMetrics
	timers    *fakeTimers
	registry  deps.DownloadRegistry
	pending   deps.PendingStore
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	cfg := &config.MediaConfig{
		DownloadDir:        t.TempDir(),
		Categories:         []string{"Movies", "Series", "Anime", "Others"},
		DefaultCategory:    "Others",
		SeasonalCategories: []string{"Anime", "Series"},
		EnableCategories:   true,
		PromptTimeout:      time.Minute,
		PromptCleanupDelay: 5 * time.Second,
		MaxDownloadsInList: 5,
		VisiblePageButtons: 5,
		MaxSeasonButtons:   10,
	}

	env := &testEnv{
		cfg:       cfg,
		sender:    &fakeSender{},
		client:    newFakeClient(),
		completed: &fakeCompleted{},
		publisher: &fakePublisher{},
		metrics:   &fakeMetrics{},
		timers:    &fakeTimers{},
		registry:  memory.NewDownloadRegistry(),
		pending:   memory.NewPendingStore(),
	}

	uc := NewUseCase(cfg, env.registry, env.pending, env.client, env.completed, env.publisher, env.metrics, zerolog.Nop())
	uc.SetSender(env.sender)
	uc.afterFunc = env.timers.AfterFunc

	var ids atomic.Int32
	uc.newID = func() string { return fmt.Sprintf("id-%d", ids.Add(1)) }

	env.uc = uc
	t.Cleanup(func() {
		_ = uc.Stop(context.Background())
	})
	return env
}

// addOrigin registers a remote message with media under id
func (e *testEnv) addOrigin(id int) *entities.RemoteMessage {
	msg := &entities.RemoteMessage{
		ID:    id,
		Chat:  entities.ChatRef{ID: -100123, Username: "origin_channel"},
		Media: &entities.RemoteMedia{DocumentID: int64(id), AccessHash: 42, Size: 11},
	}
	e.client.mu.Lock()
	e.client.messages[id] = msg
	e.client.mu.Unlock()
	return msg
}

func mediaRequest(originMessageID int, fileName, channel string) *dto.MediaRequest {
	size := int64(11)
	return &dto.MediaRequest{
		ChatID:    7,
		MessageID: 500 + originMessageID,
		Forward: &dto.ForwardInfo{
			Chat:         entities.ChatRef{ID: -100123, Username: "origin_channel"},
			MessageID:    originMessageID,
			ChannelTitle: channel,
		},
		Media: entities.Document{FileAttributes: entities.FileAttributes{
			FileID:   "file-" + fileName,
			FileName: fileName,
			MimeType: "video/x-matroska",
			FileSize: &size,
		}},
		SenderName: "Pi User",
	}
}

// wait blocks until every background download has finished
func (e *testEnv) wait() {
	e.uc.wg.Wait()
}
