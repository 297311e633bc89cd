package business

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/mycodedstuff/pibot/internal/domain/media/callback"
	"github.com/mycodedstuff/pibot/internal/domain/media/consts"
	"github.com/mycodedstuff/pibot/internal/domain/media/dto"
	"github.com/mycodedstuff/pibot/internal/domain/media/entities"
)

// TotalPages returns ceil(total / pageSize)
func TotalPages(total, pageSize int) int {
	if total <= 0 || pageSize <= 0 {
		return 0
	}
	return (total + pageSize - 1) / pageSize
}

// PageSlice returns the downloads shown on page, pages start at 1
func PageSlice(downloads []*entities.Download, page, pageSize int) []*entities.Download {
	start := pageSize * (page - 1)
	if page < 1 || start >= len(downloads) {
		return nil
	}
	end := min(start+pageSize, len(downloads))
	return downloads[start:end]
}

// RenderDownloadList renders one page of downloads
func RenderDownloadList(downloads []*entities.Download, page, pageSize int) string {
	if len(downloads) == 0 {
		return consts.MsgNoDownloads
	}

	var b strings.Builder
	b.WriteString(consts.DownloadsHeader)
	for _, d := range PageSlice(downloads, page, pageSize) {
		fmt.Fprintf(&b, "%s  %s : %s\n\n", StatusGlyph(d.Status), d.Name, Progress(d))
	}
	return b.String()
}

// StatusGlyph returns the list marker of a status
func StatusGlyph(status entities.DownloadStatus) string {
	switch status {
	case entities.DownloadStatusStarting:
		return "🔵"
	case entities.DownloadStatusDownloading:
		return "🟠"
	case entities.DownloadStatusCompleted:
		return "🟢"
	case entities.DownloadStatusCanceled, entities.DownloadStatusErrored:
		return "🔴"
	default:
		return "⚪"
	}
}

// Progress renders the progress column: the state name, or while downloading
// the percentage when the size is known and the byte count otherwise
func Progress(d *entities.Download) string {
	switch d.Status {
	case entities.DownloadStatusStarting:
		return "Starting"
	case entities.DownloadStatusCompleted:
		return "Completed"
	case entities.DownloadStatusCanceled:
		return "Canceled"
	case entities.DownloadStatusErrored:
		return "Errored"
	}

	if d.Percentage != nil {
		return strconv.FormatFloat(*d.Percentage, 'f', -1, 64) + "%"
	}
	return humanize.Bytes(uint64(d.DownloadedSoFar)) + " downloaded"
}

// PageButtons builds the page navigation row for page out of totalPages.
// Up to window pages get one button each; beyond that a window of pages is shown
// with "<<" and ">>" jumping to the neighbouring windows.
func PageButtons(totalPages, window, page int) []dto.Button {
	if totalPages < 1 || window < 1 {
		return nil
	}
	page = max(1, min(page, totalPages))

	if totalPages <= window {
		return pageRange(1, totalPages, page)
	}

	pageWindow := (page-1)/window + 1
	totalWindows := (totalPages + window - 1) / window

	var start int
	switch pageWindow {
	case 1:
		start = 1
	case totalWindows:
		start = totalPages - window + 1
	default:
		start = (pageWindow-1)*window + 1
	}
	end := min(start+window-1, totalPages)

	var buttons []dto.Button
	if start > 1 {
		buttons = append(buttons, dto.Button{Text: consts.PreviousPagesText, Data: callback.Encode(callback.Page(start - 1))})
	}
	buttons = append(buttons, pageRange(start, end, page)...)
	if end < totalPages {
		buttons = append(buttons, dto.Button{Text: consts.NextPagesText, Data: callback.Encode(callback.Page(end + 1))})
	}
	return buttons
}

func pageRange(start, end, current int) []dto.Button {
	buttons := make([]dto.Button, 0, end-start+1)
	for n := start; n <= end; n++ {
		text := strconv.Itoa(n)
		if n == current {
			text = consts.CurrentPageButtonText
		}
		buttons = append(buttons, dto.Button{Text: text, Data: callback.Encode(callback.Page(n))})
	}
	return buttons
}

// HandleDownloads handles /downloads command
func (uc *UseCase) HandleDownloads(ctx context.Context) (*dto.ListView, error) {
	return uc.listView(1), nil
}

// listView renders page of the registry with its navigation and refresh rows
func (uc *UseCase) listView(page int) *dto.ListView {
	downloads := uc.registry.List()
	pageSize := uc.cfg.MaxDownloadsInList

	totalPages := TotalPages(len(downloads), pageSize)
	page = max(1, min(page, totalPages))

	var keyboard dto.Keyboard
	if buttons := PageButtons(totalPages, uc.cfg.VisiblePageButtons, page); len(buttons) > 0 {
		keyboard = append(keyboard, buttons)
	}
	keyboard = append(keyboard, []dto.Button{{
		Text: consts.RefreshButtonText,
		Data: callback.Encode(callback.Refresh()),
	}})

	return &dto.ListView{
		Text:     RenderDownloadList(downloads, page, pageSize),
		Keyboard: keyboard,
		Page:     page,
	}
}

// HandleCallback handles an inline button press. Unknown payloads are ignored.
func (uc *UseCase) HandleCallback(ctx context.Context, req *dto.CallbackRequest) (*dto.CallbackResponse, error) {
	cmd, err := callback.Decode(req.Data)
	if err != nil {
		uc.logger.Debug().Str("data", req.Data).Msg("Ignoring unknown callback")
		return &dto.CallbackResponse{}, nil
	}

	uc.logger.Debug().
		Int64("chat_id", req.ChatID).
		Int("message_id", req.MessageID).
		Str("type", cmd.Type.String()).
		Msg("Processing callback")

	switch cmd.Type {
	case callback.TypeRefreshDownload:
		return &dto.CallbackResponse{View: uc.listView(1)}, nil

	case callback.TypeNavigatePage:
		return &dto.CallbackResponse{View: uc.listView(cmd.Page)}, nil

	case callback.TypeCategorySelected:
		if err := uc.selectCategory(ctx, req, cmd); err != nil {
			return nil, err
		}

	case callback.TypeSeasonSelected:
		if err := uc.selectSeason(ctx, req, cmd); err != nil {
			return nil, err
		}
	}

	return &dto.CallbackResponse{}, nil
}
