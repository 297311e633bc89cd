package mtproto

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gotd/td/session"
)

// FileSessionStorage implements session.Storage interface for persistent session storage
type FileSessionStorage struct {
	filePath string
}

// NewFileSessionStorage creates a new file-based session storage keyed by the hashed phone number
func NewFileSessionStorage(sessionDir, phoneNumber string) (*FileSessionStorage, error) {
	// Create session directory if it doesn't exist
	if err := os.MkdirAll(sessionDir, 0o700); err != nil {
		return nil, fmt.Errorf("failed to create session directory: %w", err)
	}

	sum := sha256.Sum256([]byte(phoneNumber))
	fileName := fmt.Sprintf("session_%s.json", hex.EncodeToString(sum[:8]))

	return &FileSessionStorage{
		filePath: filepath.Join(sessionDir, fileName),
	}, nil
}

// LoadSession loads session data from file
func (s *FileSessionStorage) LoadSession(_ context.Context) ([]byte, error) {
	data, err := os.ReadFile(s.filePath)
	if errors.Is(err, os.ErrNotExist) {
		// No session file exists, return empty data (new session)
		return nil, session.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read session file: %w", err)
	}

	// If file is empty, treat as no session
	if len(data) == 0 {
		return nil, session.ErrNotFound
	}

	return data, nil
}

// StoreSession replaces the session file atomically
func (s *FileSessionStorage) StoreSession(_ context.Context, data []byte) error {
	tmp := s.filePath + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("failed to write session file: %w", err)
	}
	if err := os.Rename(tmp, s.filePath); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("failed to replace session file: %w", err)
	}
	return nil
}

// DeleteSession removes the session file, a missing file is not an error
func (s *FileSessionStorage) DeleteSession() error {
	if err := os.Remove(s.filePath); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to delete session file: %w", err)
	}
	return nil
}

// SessionExists checks if a session file exists
func (s *FileSessionStorage) SessionExists() bool {
	info, err := os.Stat(s.filePath)
	return err == nil && info.Size() > 0
}

// Ensure FileSessionStorage implements session.Storage interface
var _ session.Storage = (*FileSessionStorage)(nil)
