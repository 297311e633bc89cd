package business

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"unicode"

	"github.com/mycodedstuff/pibot/internal/domain/media/callback"
	"github.com/mycodedstuff/pibot/internal/domain/media/consts"
	"github.com/mycodedstuff/pibot/internal/domain/media/dto"
	"github.com/mycodedstuff/pibot/internal/domain/media/entities"
	mediaerrors "github.com/mycodedstuff/pibot/internal/domain/media/errors"
	"github.com/mycodedstuff/pibot/pkg/episode"
)

const buttonsPerRow = 3

// ParseSeason parses a season number from a file name. A season whose
// season+episode digits also appear in the letter-stripped name is discarded,
// "Show.S02E05" reads as "..0205" and would be taken for episode 205.
func ParseSeason(fileName string) (int, bool) {
	info, ok := episode.Parse(fileName)
	if !ok {
		return 0, false
	}
	if info.Episode == nil {
		return info.Season, true
	}

	digits := strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) {
			return -1
		}
		return r
	}, fileName)

	season := strconv.Itoa(info.Season)
	for _, collision := range []string{
		season + strconv.Itoa(*info.Episode),
		season + fmt.Sprintf("%02d", *info.Episode),
	} {
		if strings.Contains(digits, collision) {
			return 0, false
		}
	}
	return info.Season, true
}

// findCategory returns the configured category that already holds a directory for origin
func (uc *UseCase) findCategory(origin string) string {
	dir := SanitizeDirName(origin)

	candidates := append([]string{}, uc.cfg.Categories...)
	if !slices.Contains(candidates, uc.cfg.DefaultCategory) {
		candidates = append(candidates, uc.cfg.DefaultCategory)
	}

	for _, category := range candidates {
		info, err := os.Stat(filepath.Join(uc.cfg.DownloadDir, category, dir))
		if err == nil && info.IsDir() {
			return category
		}
	}
	return ""
}

// classify picks category and season for a job, prompting the user when they cannot be derived
func (uc *UseCase) classify(ctx context.Context, job *downloadJob) error {
	if !uc.cfg.EnableCategories {
		job.Category = ""
		return uc.startDownload(ctx, job)
	}

	category := uc.findCategory(job.Origin)
	if category == "" {
		return uc.promptCategory(ctx, job)
	}

	uc.logger.Debug().Str("origin", job.Origin).Str("category", category).Msg("Reusing category of origin")
	job.Category = category

	if !uc.cfg.IsSeasonal(category) {
		uc.metrics.ClassificationResolved(resolvedAutomatically)
		return uc.startDownload(ctx, job)
	}

	if season, ok := ParseSeason(job.Meta.FileName); ok {
		job.Season = &season
		uc.metrics.ClassificationResolved(resolvedAutomatically)
		return uc.startDownload(ctx, job)
	}

	return uc.promptSeason(ctx, seasonPrompt{
		ChatID:   job.ChatID,
		ReplyTo:  job.ReplyTo,
		FileName: job.Meta.FileName,
		Category: category,
		Resolve:  uc.resolverFor(job),
	})
}

// seasonPrompt is what the season stage needs from the stage before it
type seasonPrompt struct {
	ChatID   int64
	ReplyTo  int
	FileName string
	Category string
	// MessageID is the prompt to edit into the season prompt, 0 sends a new message
	MessageID int
	Resolve   entities.ResolveFunc
}

// promptCategory registers a pending download and asks for its category
func (uc *UseCase) promptCategory(ctx context.Context, job *downloadJob) error {
	id := uc.newID()
	p := &entities.PendingDownload{
		ID:        id,
		Stage:     entities.PendingStageCategory,
		FileName:  job.Meta.FileName,
		ChatID:    job.ChatID,
		CreatedAt: uc.now(),
		Resolve:   uc.resolverFor(job),
	}
	uc.pending.Put(p)

	text := fmt.Sprintf(consts.MsgChooseCategory, job.Meta.FileName)
	msgID, err := uc.sender.SendText(ctx, job.ChatID, job.ReplyTo, text, CategoryKeyboard(uc.cfg.Categories, id))
	if err != nil {
		uc.pending.Take(id)
		return fmt.Errorf("failed to send category prompt: %w", err)
	}

	uc.awaitInput(p, msgID)
	return nil
}

// promptSeason registers a pending download whose category is known and asks for its season
func (uc *UseCase) promptSeason(ctx context.Context, sp seasonPrompt) error {
	id := uc.newID()
	p := &entities.PendingDownload{
		ID:        id,
		Stage:     entities.PendingStageSeason,
		Category:  sp.Category,
		FileName:  sp.FileName,
		ChatID:    sp.ChatID,
		CreatedAt: uc.now(),
		Resolve:   sp.Resolve,
	}
	uc.pending.Put(p)

	text := fmt.Sprintf(consts.MsgChooseSeason, sp.FileName)
	keyboard := SeasonKeyboard(sp.Category, id, uc.cfg.MaxSeasonButtons)

	msgID := sp.MessageID
	var err error
	if msgID != 0 {
		err = uc.sender.EditText(ctx, sp.ChatID, msgID, text, keyboard)
	} else {
		msgID, err = uc.sender.SendText(ctx, sp.ChatID, sp.ReplyTo, text, keyboard)
	}
	if err != nil {
		uc.pending.Take(id)
		return fmt.Errorf("failed to send season prompt: %w", err)
	}

	uc.awaitInput(p, msgID)
	return nil
}

// resolverFor returns the completion of a pending download: start job with the chosen values
func (uc *UseCase) resolverFor(job *downloadJob) entities.ResolveFunc {
	return func(ctx context.Context, category string, season *int) {
		job.Category = category
		job.Season = season
		if err := uc.startDownload(ctx, job); err != nil {
			uc.logger.Error().Err(err).Str("file_name", job.Meta.FileName).Msg("Failed to start classified download")
			uc.reply(ctx, job.ChatID, job.ReplyTo, startFailureReply(err))
		}
	}
}

// awaitInput attaches the prompt and arms the fire-once timeout
func (uc *UseCase) awaitInput(p *entities.PendingDownload, promptMessageID int) {
	uc.pending.SetPromptMessageID(p.ID, promptMessageID)

	uc.logger.Info().
		Str("pending_id", p.ID).
		Str("stage", string(p.Stage)).
		Str("file_name", p.FileName).
		Dur("timeout", uc.cfg.PromptTimeout).
		Msg("Awaiting classification")

	id := p.ID
	uc.afterFunc(uc.cfg.PromptTimeout, uc.safely("classification-timeout", func() {
		uc.expirePending(id)
	}))
}

// expirePending resolves a still pending download with defaults.
// A selection that already took the entry makes this a no-op.
func (uc *UseCase) expirePending(id string) {
	p, ok := uc.pending.Take(id)
	if !ok {
		return
	}
	ctx := uc.ctx

	category := uc.cfg.DefaultCategory
	var season *int
	if p.Stage == entities.PendingStageSeason {
		category = p.Category
	} else if uc.cfg.IsSeasonal(category) {
		if s, ok := ParseSeason(p.FileName); ok {
			season = &s
		}
	}

	uc.metrics.ClassificationResolved(resolvedByTimeout)
	uc.logger.Info().
		Str("pending_id", id).
		Str("file_name", p.FileName).
		Str("category", category).
		Msg("Classification timed out, using default")

	p.Resolve(ctx, category, season)

	if p.PromptMessageID == 0 {
		return
	}
	chatID, messageID := p.ChatID, p.PromptMessageID
	uc.afterFunc(uc.cfg.PromptCleanupDelay, uc.safely("prompt-cleanup", func() {
		if err := uc.sender.DeleteMessage(uc.ctx, chatID, messageID); err != nil {
			uc.logger.Warn().Err(err).Int64("chat_id", chatID).Int("message_id", messageID).Msg("Failed to delete expired prompt")
		}
	}))
}

// selectCategory handles a category button
func (uc *UseCase) selectCategory(ctx context.Context, req *dto.CallbackRequest, cmd callback.Command) error {
	if !uc.cfg.HasCategory(cmd.Category) {
		return fmt.Errorf("%w: %q", mediaerrors.ErrUnknownCategory, cmd.Category)
	}

	p, ok := uc.pending.Take(cmd.Identifier)
	if !ok || p.Stage != entities.PendingStageCategory {
		return mediaerrors.ErrPendingExpired
	}

	uc.logger.Info().
		Str("pending_id", p.ID).
		Str("file_name", p.FileName).
		Str("category", cmd.Category).
		Msg("Category selected")

	var season *int
	if uc.cfg.IsSeasonal(cmd.Category) {
		s, ok := ParseSeason(p.FileName)
		if !ok {
			// the season stage gets a fresh identifier and its own timeout
			return uc.promptSeason(ctx, seasonPrompt{
				ChatID:    p.ChatID,
				FileName:  p.FileName,
				Category:  cmd.Category,
				MessageID: req.MessageID,
				Resolve:   p.Resolve,
			})
		}
		season = &s
	}

	uc.confirmSelection(ctx, req, p.FileName, cmd.Category)
	uc.metrics.ClassificationResolved(resolvedBySelection)
	p.Resolve(ctx, cmd.Category, season)
	return nil
}

// selectSeason handles a season button
func (uc *UseCase) selectSeason(ctx context.Context, req *dto.CallbackRequest, cmd callback.Command) error {
	p, ok := uc.pending.Take(cmd.Identifier)
	if !ok || p.Stage != entities.PendingStageSeason {
		return mediaerrors.ErrPendingExpired
	}

	uc.logger.Info().
		Str("pending_id", p.ID).
		Str("file_name", p.FileName).
		Str("category", p.Category).
		Int("season", cmd.Season).
		Msg("Season selected")

	season := cmd.Season
	uc.confirmSelection(ctx, req, p.FileName, filepath.Join(p.Category, SeasonDirName(season)))
	uc.metrics.ClassificationResolved(resolvedBySelection)
	p.Resolve(ctx, p.Category, &season)
	return nil
}

func (uc *UseCase) confirmSelection(ctx context.Context, req *dto.CallbackRequest, fileName, category string) {
	text := fmt.Sprintf(consts.MsgCategorySelected, fileName, category)
	if err := uc.sender.EditText(ctx, req.ChatID, req.MessageID, text, nil); err != nil {
		uc.logger.Warn().Err(err).Int64("chat_id", req.ChatID).Int("message_id", req.MessageID).Msg("Failed to update prompt")
	}
}

// CategoryKeyboard lays out one button per category
func CategoryKeyboard(categories []string, identifier string) dto.Keyboard {
	buttons := make([]dto.Button, 0, len(categories))
	for _, category := range categories {
		buttons = append(buttons, dto.Button{
			Text: category,
			Data: callback.Encode(callback.Category(category, identifier)),
		})
	}
	return rows(buttons, buttonsPerRow)
}

// SeasonKeyboard lays out Specials followed by Season 1..maxSeason
func SeasonKeyboard(category, identifier string, maxSeason int) dto.Keyboard {
	buttons := make([]dto.Button, 0, maxSeason+1)
	for season := consts.SpecialsSeason; season <= maxSeason; season++ {
		text := consts.SpecialsButtonText
		if season != consts.SpecialsSeason {
			text = fmt.Sprintf(consts.SeasonButtonText, season)
		}
		buttons = append(buttons, dto.Button{
			Text: text,
			Data: callback.Encode(callback.Season(season, category, identifier)),
		})
	}
	return rows(buttons, buttonsPerRow)
}

func rows(buttons []dto.Button, perRow int) dto.Keyboard {
	var keyboard dto.Keyboard
	for start := 0; start < len(buttons); start += perRow {
		end := min(start+perRow, len(buttons))
		keyboard = append(keyboard, buttons[start:end])
	}
	return keyboard
}
