package entities

import (
	"context"
	"time"
)

// PendingStage tells which question a pending download is waiting on
type PendingStage string

const (
	PendingStageCategory PendingStage = "category"
	PendingStageSeason   PendingStage = "season"
)

// ResolveFunc completes a pending download with the chosen classification
type ResolveFunc func(ctx context.Context, category string, season *int)

// PendingDownload is a download waiting for category or season input.
// It leaves the pending store exactly once, through selection or timeout.
type PendingDownload struct {
	ID              string
	Stage           PendingStage
	Category        string
	FileName        string
	ChatID          int64
	PromptMessageID int
	CreatedAt       time.Time
	Resolve         ResolveFunc
}
