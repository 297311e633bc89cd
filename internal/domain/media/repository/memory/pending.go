package memory

import (
	"sync"

	"github.com/mycodedstuff/pibot/internal/domain/media/deps"
	"github.com/mycodedstuff/pibot/internal/domain/media/entities"
)

// pendingStore holds downloads awaiting classification
type pendingStore struct {
	mu      sync.Mutex
	pending map[string]*entities.PendingDownload
}

// NewPendingStore creates an empty pending store
func NewPendingStore() deps.PendingStore {
	return &pendingStore{
		pending: make(map[string]*entities.PendingDownload),
	}
}

// Put registers p under p.ID
func (s *pendingStore) Put(p *entities.PendingDownload) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pending[p.ID] = p
}

// Take removes and returns the entry. Only one caller ever observes ok == true for an ID.
func (s *pendingStore) Take(id string) (*entities.PendingDownload, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.pending[id]
	if ok {
		delete(s.pending, id)
	}
	return p, ok
}

// SetPromptMessageID attaches the prompt message to a still pending entry
func (s *pendingStore) SetPromptMessageID(id string, messageID int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.pending[id]
	if ok {
		p.PromptMessageID = messageID
	}
	return ok
}

// Len returns the number of entries awaiting input
func (s *pendingStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.pending)
}
