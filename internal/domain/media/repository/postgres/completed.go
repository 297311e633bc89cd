// Package postgres contains PostgreSQL repository implementations
package postgres

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/mycodedstuff/pibot/internal/domain/media/deps"
	"github.com/mycodedstuff/pibot/internal/domain/media/entities"
)

type completedRepository struct {
	db *gorm.DB
}

// NewCompletedRepository creates a new completed downloads repository
func NewCompletedRepository(db *gorm.DB) deps.CompletedRepository {
	return &completedRepository{db: db}
}

// RecordCompleted appends a completed download record
func (r *completedRepository) RecordCompleted(ctx context.Context, messageID int) error {
	record := &entities.CompletedDownload{MessageID: messageID}
	if err := r.db.WithContext(ctx).Create(record).Error; err != nil {
		return fmt.Errorf("failed to record completed download %d: %w", messageID, err)
	}
	return nil
}
