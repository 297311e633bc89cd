package business

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mycodedstuff/pibot/internal/domain/media/consts"
	"github.com/mycodedstuff/pibot/internal/domain/media/dto"
	mediaerrors "github.com/mycodedstuff/pibot/internal/domain/media/errors"
	pkgerrors "github.com/mycodedstuff/pibot/pkg/errors"
)

func TestParseSeason(t *testing.T) {
	tests := []struct {
		fileName string
		want     int
		wantOK   bool
	}{
		{"Show.S02E05.mkv", 0, false},
		{"Show.2x05.mkv", 0, false},
		{"Show.Season2.Ep5.Extra.mkv", 2, true},
		{"Show Season 4.mkv", 4, true},
		{"Show.S3.Complete.mkv", 3, true},
		{"Movie.2019.mkv", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.fileName, func(t *testing.T) {
			got, ok := ParseSeason(tt.fileName)
			if ok != tt.wantOK || got != tt.want {
				t.Errorf("ParseSeason(%q) = %d, %v, want %d, %v", tt.fileName, got, ok, tt.want, tt.wantOK)
			}
		})
	}
}

func TestStickyCategorySkipsPrompt(t *testing.T) {
	env := newTestEnv(t)
	env.addOrigin(10)
	require.NoError(t, os.MkdirAll(filepath.Join(env.cfg.DownloadDir, "Movies", "OriginX"), 0o755))

	err := env.uc.HandleMedia(context.Background(), mediaRequest(10, "film.mkv", "OriginX"))
	require.NoError(t, err)
	env.wait()

	require.Equal(t, 0, env.timers.count())
	require.Equal(t, 0, env.pending.Len())
	require.FileExists(t, filepath.Join(env.cfg.DownloadDir, "Movies", "OriginX", "film.mkv"))
	require.Equal(t, []string{consts.MsgDownloading, consts.MsgDownloadComplete}, env.sender.texts())
}

func TestStickySeasonalCategoryUsesParsedSeason(t *testing.T) {
	env := newTestEnv(t)
	env.addOrigin(10)
	require.NoError(t, os.MkdirAll(filepath.Join(env.cfg.DownloadDir, "Anime", "OriginY"), 0o755))

	err := env.uc.HandleMedia(context.Background(), mediaRequest(10, "Show.Season2.Ep5.Extra.mkv", "OriginY"))
	require.NoError(t, err)
	env.wait()

	require.FileExists(t, filepath.Join(env.cfg.DownloadDir, "Anime", "OriginY", "Season 2", "Show.Season2.Ep5.Extra.mkv"))
	require.Len(t, env.publisher.events, 1)
	require.Equal(t, 2, *env.publisher.events[0].Season)
}

func TestStickySeasonalCategoryPromptsForSeason(t *testing.T) {
	env := newTestEnv(t)
	env.addOrigin(10)
	require.NoError(t, os.MkdirAll(filepath.Join(env.cfg.DownloadDir, "Series", "OriginY"), 0o755))

	err := env.uc.HandleMedia(context.Background(), mediaRequest(10, "Show.S02E05.mkv", "OriginY"))
	require.NoError(t, err)

	prompt := env.sender.last()
	require.Equal(t, fmt.Sprintf(consts.MsgChooseSeason, "Show.S02E05.mkv"), prompt.Text)
	require.Equal(t, "season_0_Series_id-1", prompt.Keyboard[0][0].Data)
	require.Equal(t, 1, env.pending.Len())
}

func TestCategorySelection(t *testing.T) {
	env := newTestEnv(t)
	env.addOrigin(10)
	ctx := context.Background()

	require.NoError(t, env.uc.HandleMedia(ctx, mediaRequest(10, "film.mkv", "Origin Z")))

	prompt := env.sender.last()
	require.Equal(t, fmt.Sprintf(consts.MsgChooseCategory, "film.mkv"), prompt.Text)
	require.Equal(t, 510, prompt.ReplyTo)
	require.Equal(t, "Movies", prompt.Keyboard[0][0].Text)
	require.Equal(t, "category_Movies_id-1", prompt.Keyboard[0][0].Data)
	require.Equal(t, 1, env.pending.Len())
	require.Equal(t, 1, env.timers.count())
	require.Equal(t, env.cfg.PromptTimeout, env.timers.delays[0])

	resp, err := env.uc.HandleCallback(ctx, &dto.CallbackRequest{ChatID: 7, MessageID: prompt.MessageID, Data: "category_Movies_id-1"})
	require.NoError(t, err)
	require.Nil(t, resp.View)
	env.wait()

	require.Equal(t, 0, env.pending.Len())
	require.Equal(t, fmt.Sprintf(consts.MsgCategorySelected, "film.mkv", "Movies"), env.sender.lastEdit().Text)
	require.FileExists(t, filepath.Join(env.cfg.DownloadDir, "Movies", "Origin Z", "film.mkv"))

	// the timer still fires later and finds nothing to do
	env.timers.fire(0)
	env.wait()
	require.Equal(t, int32(1), env.metrics.started.Load())
	require.Equal(t, 1, env.timers.count())
}

func TestCategoryTimeoutUsesDefaultAndCleansPrompt(t *testing.T) {
	env := newTestEnv(t)
	env.addOrigin(10)
	ctx := context.Background()

	require.NoError(t, env.uc.HandleMedia(ctx, mediaRequest(10, "film.mkv", "Origin Z")))
	prompt := env.sender.last()

	env.timers.fire(0)
	env.wait()

	require.FileExists(t, filepath.Join(env.cfg.DownloadDir, "Others", "Origin Z", "film.mkv"))
	require.Equal(t, 2, env.timers.count())
	require.Equal(t, env.cfg.PromptCleanupDelay, env.timers.delays[1])

	env.timers.fire(1)
	require.Equal(t, []int{prompt.MessageID}, env.sender.deleted)

	_, err := env.uc.HandleCallback(ctx, &dto.CallbackRequest{ChatID: 7, MessageID: prompt.MessageID, Data: "category_Movies_id-1"})
	require.ErrorIs(t, err, mediaerrors.ErrPendingExpired)
	require.Equal(t, int32(1), env.metrics.started.Load())
}

func TestSeasonStageAfterSeasonalCategory(t *testing.T) {
	env := newTestEnv(t)
	env.addOrigin(10)
	ctx := context.Background()

	require.NoError(t, env.uc.HandleMedia(ctx, mediaRequest(10, "Show.S02E05.mkv", "Origin S")))
	prompt := env.sender.last()

	_, err := env.uc.HandleCallback(ctx, &dto.CallbackRequest{ChatID: 7, MessageID: prompt.MessageID, Data: "category_Series_id-1"})
	require.NoError(t, err)

	edit := env.sender.lastEdit()
	require.Equal(t, prompt.MessageID, edit.MessageID)
	require.Equal(t, fmt.Sprintf(consts.MsgChooseSeason, "Show.S02E05.mkv"), edit.Text)
	require.Equal(t, consts.SpecialsButtonText, edit.Keyboard[0][0].Text)
	require.Equal(t, "season_2_Series_id-2", edit.Keyboard[0][2].Data)
	require.Equal(t, 1, env.pending.Len())
	require.Equal(t, 2, env.timers.count())

	// the category stage timer no longer owns an entry
	env.timers.fire(0)
	require.Equal(t, int32(0), env.metrics.started.Load())

	_, err = env.uc.HandleCallback(ctx, &dto.CallbackRequest{ChatID: 7, MessageID: prompt.MessageID, Data: "season_2_Series_id-2"})
	require.NoError(t, err)
	env.wait()

	require.FileExists(t, filepath.Join(env.cfg.DownloadDir, "Series", "Origin S", "Season 2", "Show.S02E05.mkv"))
	require.Equal(t, 0, env.pending.Len())
}

func TestSeasonStageTimeoutKeepsCategory(t *testing.T) {
	env := newTestEnv(t)
	env.addOrigin(10)
	ctx := context.Background()

	require.NoError(t, env.uc.HandleMedia(ctx, mediaRequest(10, "Show.S02E05.mkv", "Origin S")))
	prompt := env.sender.last()
	_, err := env.uc.HandleCallback(ctx, &dto.CallbackRequest{ChatID: 7, MessageID: prompt.MessageID, Data: "category_Anime_id-1"})
	require.NoError(t, err)

	env.timers.fire(1)
	env.wait()

	require.FileExists(t, filepath.Join(env.cfg.DownloadDir, "Anime", "Origin S", "Show.S02E05.mkv"))
}

func TestUnknownCategoryIsRejected(t *testing.T) {
	env := newTestEnv(t)
	env.addOrigin(10)
	ctx := context.Background()

	require.NoError(t, env.uc.HandleMedia(ctx, mediaRequest(10, "film.mkv", "Origin Z")))

	_, err := env.uc.HandleCallback(ctx, &dto.CallbackRequest{ChatID: 7, MessageID: 1, Data: "category_Bogus_id-1"})
	require.Error(t, err)
	require.True(t, pkgerrors.IsValidationError(err))
	require.Equal(t, 1, env.pending.Len())
}

func TestSelectionAndTimeoutResolveOnce(t *testing.T) {
	const rounds = 50

	for round := 0; round < rounds; round++ {
		env := newTestEnv(t)
		env.addOrigin(10)
		ctx := context.Background()

		require.NoError(t, env.uc.HandleMedia(ctx, mediaRequest(10, "film.mkv", "Origin R")))
		prompt := env.sender.last()

		var wg sync.WaitGroup
		start := make(chan struct{})
		wg.Add(2)
		go func() {
			defer wg.Done()
			<-start
			_, _ = env.uc.HandleCallback(ctx, &dto.CallbackRequest{ChatID: 7, MessageID: prompt.MessageID, Data: "category_Movies_id-1"})
		}()
		go func() {
			defer wg.Done()
			<-start
			env.timers.fire(0)
		}()
		close(start)
		wg.Wait()
		env.wait()

		if got := env.metrics.started.Load(); got != 1 {
			t.Fatalf("round %d: expected exactly one download, got %d", round, got)
		}
		if env.pending.Len() != 0 {
			t.Fatalf("round %d: pending entry left behind", round)
		}
	}
}

func TestSeasonKeyboardLayout(t *testing.T) {
	keyboard := SeasonKeyboard("Series", "abc", 10)

	var buttons []dto.Button
	for _, row := range keyboard {
		require.LessOrEqual(t, len(row), buttonsPerRow)
		buttons = append(buttons, row...)
	}
	require.Len(t, buttons, 11)
	require.Equal(t, dto.Button{Text: "Specials", Data: "season_0_Series_abc"}, buttons[0])
	require.Equal(t, dto.Button{Text: "Season 10", Data: "season_10_Series_abc"}, buttons[10])
}
