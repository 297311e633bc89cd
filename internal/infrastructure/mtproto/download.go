package mtproto

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync/atomic"

	"github.com/gotd/td/telegram/downloader"
	"github.com/gotd/td/tg"
	"github.com/gotd/td/tgerr"

	"github.com/mycodedstuff/pibot/internal/domain/media/deps"
	"github.com/mycodedstuff/pibot/internal/domain/media/entities"
)

// partSuffix marks a file that is still being written
const partSuffix = ".part"

// progressWriterAt counts bytes written by parallel part downloads
type progressWriterAt struct {
	w          io.WriterAt
	written    atomic.Int64
	onProgress deps.ProgressFunc
}

func (p *progressWriterAt) WriteAt(b []byte, off int64) (int, error) {
	n, err := p.w.WriteAt(b, off)
	if n > 0 {
		total := p.written.Add(int64(n))
		if p.onProgress != nil {
			p.onProgress(total)
		}
	}
	return n, err
}

// DownloadMedia implements deps.MediaClient. The file is written next to
// destPath and renamed into place once every part has arrived.
func (c *Client) DownloadMedia(ctx context.Context, msg *entities.RemoteMessage, destPath string, onProgress deps.ProgressFunc) error {
	if msg == nil || msg.Media == nil {
		return ErrNoDocument
	}

	media := msg.Media
	err := c.download(ctx, media, destPath, onProgress)
	if err != nil && tgerr.Is(err, "FILE_REFERENCE_EXPIRED") {
		c.logger.Info().Int("message_id", msg.ID).Msg("file reference expired, refetching message")

		fresh, resolveErr := c.ResolveMessage(ctx, msg.Chat, msg.ID)
		if resolveErr != nil {
			return fmt.Errorf("failed to refresh file reference: %w", resolveErr)
		}
		if fresh == nil || fresh.Media == nil {
			return ErrNoDocument
		}
		err = c.download(ctx, fresh.Media, destPath, onProgress)
	}
	return err
}

func (c *Client) download(ctx context.Context, media *entities.RemoteMedia, destPath string, onProgress deps.ProgressFunc) error {
	api, err := c.apiClient()
	if err != nil {
		return err
	}
	if err := c.rateLimiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limit wait cancelled: %w", err)
	}

	partPath := destPath + partSuffix
	f, err := os.OpenFile(partPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}

	c.logger.Debug().
		Int64("document_id", media.DocumentID).
		Int64("size", media.Size).
		Int("threads", c.cfg.DownloadThreads).
		Str("path", destPath).
		Msg("starting download")

	err = c.transfer(ctx, api, media, f, onProgress)
	if closeErr := f.Close(); err == nil && closeErr != nil {
		err = fmt.Errorf("failed to close file: %w", closeErr)
	}
	if err != nil {
		if rmErr := os.Remove(partPath); rmErr != nil && !os.IsNotExist(rmErr) {
			c.logger.Warn().Err(rmErr).Str("path", partPath).Msg("failed to remove partial file")
		}
		return err
	}

	if err := os.Rename(partPath, destPath); err != nil {
		return fmt.Errorf("failed to move file into place: %w", err)
	}
	return nil
}

func (c *Client) transfer(ctx context.Context, api *tg.Client, media *entities.RemoteMedia, w io.WriterAt, onProgress deps.ProgressFunc) error {
	writer := &progressWriterAt{w: w, onProgress: onProgress}

	_, err := downloader.NewDownloader().
		Download(api, inputLocation(media)).
		WithThreads(c.cfg.DownloadThreads).
		Parallel(ctx, writer)
	if err != nil {
		return fmt.Errorf("failed to download document %d: %w", media.DocumentID, err)
	}
	return nil
}
