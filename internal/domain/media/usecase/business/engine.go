package business

import (
	"context"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/mycodedstuff/pibot/internal/domain/media/consts"
	"github.com/mycodedstuff/pibot/internal/domain/media/entities"
	mediaerrors "github.com/mycodedstuff/pibot/internal/domain/media/errors"
)

// downloadJob carries one media item through classification into the engine
type downloadJob struct {
	ChatID   int64
	ReplyTo  int
	Message  *entities.RemoteMessage
	Meta     entities.MediaMetadata
	Origin   string
	Category string
	Season   *int
	Force    bool
}

// totalSize prefers the size reported by the bot and falls back to the remote document size
func (j *downloadJob) totalSize() *int64 {
	if j.Meta.FileSize != nil && *j.Meta.FileSize > 0 {
		size := *j.Meta.FileSize
		return &size
	}
	if j.Message != nil && j.Message.Media != nil && j.Message.Media.Size > 0 {
		size := j.Message.Media.Size
		return &size
	}
	return nil
}

// Percentage returns downloaded/total as a percentage rounded to two decimals
func Percentage(downloaded, total int64) float64 {
	if total <= 0 {
		return 0
	}
	return math.Round(float64(downloaded)/float64(total)*100*100) / 100
}

// SeasonDirName names the directory of a season
func SeasonDirName(season int) string {
	if season == consts.SpecialsSeason {
		return consts.SpecialsButtonText
	}
	return "Season " + strconv.Itoa(season)
}

// destinationPath builds {root}/{category}/{origin}/{season}/{fileName}
func (uc *UseCase) destinationPath(job *downloadJob) string {
	parts := []string{uc.cfg.DownloadDir}
	if job.Category != "" {
		parts = append(parts, job.Category)
	}
	parts = append(parts, SanitizeDirName(job.Origin))
	if job.Season != nil {
		parts = append(parts, SeasonDirName(*job.Season))
	}
	parts = append(parts, job.Meta.FileName)
	return filepath.Join(parts...)
}

// startDownload registers the download and streams it in the background.
// An existing destination is refused unless the job is forced, a name that
// is still in flight is always refused.
func (uc *UseCase) startDownload(ctx context.Context, job *downloadJob) error {
	dest := uc.destinationPath(job)

	if !job.Force {
		if _, err := os.Stat(dest); err == nil {
			uc.logger.Info().Str("path", dest).Msg("Media already downloaded")
			return fmt.Errorf("%w: %s", mediaerrors.ErrAlreadyDownloaded, job.Meta.FileName)
		}
	}

	now := uc.now()
	id := uc.transfers.Add(1)
	claimed := uc.registry.StartIfIdle(&entities.Download{
		Name:       job.Meta.FileName,
		Status:     entities.DownloadStatusStarting,
		TotalSize:  job.totalSize(),
		Path:       dest,
		MessageID:  job.Message.ID,
		StartedAt:  now,
		UpdatedAt:  now,
		TransferID: id,
	})
	if !claimed {
		uc.logger.Info().Str("file_name", job.Meta.FileName).Msg("Media already downloading")
		return fmt.Errorf("%w: %s", mediaerrors.ErrAlreadyActive, job.Meta.FileName)
	}
	uc.metrics.DownloadStarted()

	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		uc.finish(job.Meta.FileName, id, entities.DownloadStatusErrored)
		return fmt.Errorf("failed to create download directory: %w", err)
	}

	uc.logger.Info().
		Str("file_name", job.Meta.FileName).
		Str("path", dest).
		Str("category", job.Category).
		Int("origin_message_id", job.Message.ID).
		Bool("force", job.Force).
		Msg("Download started")

	uc.reply(ctx, job.ChatID, job.ReplyTo, consts.MsgDownloading)

	uc.goSafely("download", func() {
		uc.transfer(job, dest, id)
	})
	return nil
}

// startFailureReply maps a refused or failed start to the text sent to the chat
func startFailureReply(err error) string {
	switch {
	case errors.Is(err, mediaerrors.ErrAlreadyDownloaded):
		return consts.MsgAlreadyDownloaded
	case errors.Is(err, mediaerrors.ErrAlreadyActive):
		return consts.MsgAlreadyDownloading
	default:
		return consts.MsgDownloadFailed
	}
}

// transfer streams the media and records the terminal state
func (uc *UseCase) transfer(job *downloadJob, dest string, id uint64) {
	ctx := uc.ctx
	name := job.Meta.FileName

	err := uc.client.DownloadMedia(ctx, job.Message, dest, func(downloaded int64) {
		uc.onProgress(name, id, downloaded)
	})

	if err != nil {
		status := entities.DownloadStatusErrored
		if errors.Is(err, context.Canceled) && ctx.Err() != nil {
			status = entities.DownloadStatusCanceled
		}
		uc.finish(name, id, status)

		uc.logger.Error().
			Err(fmt.Errorf("%w: %w", mediaerrors.ErrTransferFailed, err)).
			Str("file_name", name).
			Str("path", dest).
			Int("origin_message_id", job.Message.ID).
			Str("status", string(status)).
			Msg("Download failed")

		if status == entities.DownloadStatusErrored {
			uc.reply(ctx, job.ChatID, job.ReplyTo, consts.MsgDownloadFailed)
		}
		return
	}

	uc.finish(name, id, entities.DownloadStatusCompleted)
	uc.logger.Info().Str("file_name", name).Str("path", dest).Msg("Download completed")
	uc.reply(ctx, job.ChatID, job.ReplyTo, consts.MsgDownloadComplete)

	if err := uc.completed.RecordCompleted(ctx, job.Message.ID); err != nil {
		uc.logger.Error().Err(err).Int("origin_message_id", job.Message.ID).Msg("Failed to record completed download")
	}

	event := &entities.DownloadCompletedEvent{
		MessageID:   job.Message.ID,
		FileName:    name,
		Path:        dest,
		Category:    job.Category,
		Season:      job.Season,
		CompletedAt: uc.now().UTC().Format(time.RFC3339),
	}
	if err := uc.publisher.PublishDownloadCompleted(ctx, event); err != nil {
		uc.logger.Warn().Err(err).Str("file_name", name).Msg("Failed to publish download completed event")
	}
}

// onProgress applies a progress callback. Parallel part writers may report
// out of order, so smaller totals than the stored one are dropped.
// Callbacks from a transfer that no longer owns the entry are ignored.
func (uc *UseCase) onProgress(name string, id uint64, downloaded int64) {
	uc.registry.Update(name, func(d *entities.Download) {
		if d.TransferID != id || d.Status.IsTerminal() || downloaded < d.DownloadedSoFar {
			return
		}

		uc.metrics.BytesDownloaded(downloaded - d.DownloadedSoFar)

		d.Status = entities.DownloadStatusDownloading
		d.DownloadedSoFar = downloaded
		if d.TotalSize != nil && *d.TotalSize > 0 {
			p := Percentage(downloaded, *d.TotalSize)
			d.Percentage = &p
		}
		d.UpdatedAt = uc.now()
	})
}

func (uc *UseCase) finish(name string, id uint64, status entities.DownloadStatus) {
	uc.registry.Update(name, func(d *entities.Download) {
		if d.TransferID != id {
			return
		}
		d.Status = status
		d.UpdatedAt = uc.now()
	})
	uc.metrics.DownloadFinished(status)
}
