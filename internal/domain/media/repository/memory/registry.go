// Package memory contains in-memory repositories for the media domain
package memory

import (
	"sync"

	"github.com/mycodedstuff/pibot/internal/domain/media/deps"
	"github.com/mycodedstuff/pibot/internal/domain/media/entities"
)

// downloadRegistry is an insertion-ordered, mutex-guarded map of downloads keyed by file name
type downloadRegistry struct {
	mu      sync.RWMutex
	order   []string
	entries map[string]*entities.Download
}

// NewDownloadRegistry creates an empty registry
func NewDownloadRegistry() deps.DownloadRegistry {
	return &downloadRegistry{
		entries: make(map[string]*entities.Download),
	}
}

// Upsert stores d under d.Name. An existing entry is replaced in place and keeps its position.
func (r *downloadRegistry) Upsert(d *entities.Download) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.entries[d.Name]; !exists {
		r.order = append(r.order, d.Name)
	}
	r.entries[d.Name] = d.Clone()
}

// StartIfIdle stores d unless the current entry has not reached a terminal status
func (r *downloadRegistry) StartIfIdle(d *entities.Download) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	current, exists := r.entries[d.Name]
	if exists && !current.Status.IsTerminal() {
		return false
	}
	if !exists {
		r.order = append(r.order, d.Name)
	}
	r.entries[d.Name] = d.Clone()
	return true
}

// Update applies fn to the stored entry under the write lock
func (r *downloadRegistry) Update(name string, fn func(d *entities.Download)) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	d, exists := r.entries[name]
	if !exists {
		return false
	}
	fn(d)
	return true
}

// Get returns a copy of the entry
func (r *downloadRegistry) Get(name string) (*entities.Download, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	d, exists := r.entries[name]
	if !exists {
		return nil, false
	}
	return d.Clone(), true
}

// List returns copies of all entries in insertion order
func (r *downloadRegistry) List() []*entities.Download {
	r.mu.RLock()
	defer r.mu.RUnlock()

	downloads := make([]*entities.Download, 0, len(r.order))
	for _, name := range r.order {
		downloads = append(downloads, r.entries[name].Clone())
	}
	return downloads
}

// Len returns the number of entries
func (r *downloadRegistry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.order)
}
