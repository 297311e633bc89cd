package entities

import "time"

// CompletedDownload is the durable record of a finished transfer
type CompletedDownload struct {
	ID          uint      `gorm:"primaryKey"`
	MessageID   int       `gorm:"index;not null"`
	CompletedAt time.Time `gorm:"autoCreateTime"`
}

// TableName returns the table name for CompletedDownload
func (CompletedDownload) TableName() string {
	return "downloads"
}

// DownloadCompletedEvent is published after a transfer finishes
type DownloadCompletedEvent struct {
	MessageID   int    `json:"message_id"`
	FileName    string `json:"file_name"`
	Path        string `json:"path"`
	Category    string `json:"category,omitempty"`
	Season      *int   `json:"season,omitempty"`
	CompletedAt string `json:"completed_at"`
}
