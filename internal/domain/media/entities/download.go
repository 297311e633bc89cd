// Package entities contains domain entities for the media domain
package entities

import "time"

// DownloadStatus is the lifecycle state of a Download
type DownloadStatus string

const (
	DownloadStatusStarting    DownloadStatus = "STARTING"
	DownloadStatusDownloading DownloadStatus = "DOWNLOADING"
	DownloadStatusCompleted   DownloadStatus = "COMPLETED"
	DownloadStatusCanceled    DownloadStatus = "CANCELED"
	DownloadStatusErrored     DownloadStatus = "ERRORED"
)

// IsTerminal reports whether no further transitions are expected
func (s DownloadStatus) IsTerminal() bool {
	switch s {
	case DownloadStatusCompleted, DownloadStatusCanceled, DownloadStatusErrored:
		return true
	default:
		return false
	}
}

// Download represents one in-flight or finished transfer
type Download struct {
	// Name is the destination base name and the registry key
	Name            string         `json:"name"`
	Status          DownloadStatus `json:"status"`
	Percentage      *float64       `json:"percentage,omitempty"`
	DownloadedSoFar int64          `json:"downloadedSoFar"`
	TotalSize       *int64         `json:"totalSize,omitempty"`
	Path            string         `json:"path"`
	MessageID       int            `json:"messageId"`
	StartedAt       time.Time      `json:"startedAt"`
	UpdatedAt       time.Time      `json:"updatedAt"`

	// TransferID identifies the transfer that owns the entry
	TransferID uint64 `json:"-"`
}

// Clone returns a copy that shares no pointers with d
func (d *Download) Clone() *Download {
	if d == nil {
		return nil
	}
	c := *d
	if d.Percentage != nil {
		p := *d.Percentage
		c.Percentage = &p
	}
	if d.TotalSize != nil {
		s := *d.TotalSize
		c.TotalSize = &s
	}
	return &c
}
