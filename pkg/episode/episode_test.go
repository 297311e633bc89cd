package episode

import "testing"

func TestParse(t *testing.T) {
	tests := []struct {
		name        string
		wantOK      bool
		wantSeason  int
		wantEpisode int // -1 means no episode
	}{
		{"Show.S02E05.mkv", true, 2, 5},
		{"show s1 e12 1080p.mp4", true, 1, 12},
		{"Show.2x05.HDTV.mkv", true, 2, 5},
		{"Show.Season2.Ep5.Extra.mkv", true, 2, 5},
		{"Show Season 3 Episode 10.mkv", true, 3, 10},
		{"Show Season 4.mkv", true, 4, -1},
		{"Show.S3.Complete.mkv", true, 3, -1},
		{"Movie.2019.1080p.mkv", false, 0, -1},
		{"plain.mkv", false, 0, -1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			info, ok := Parse(tt.name)
			if ok != tt.wantOK {
				t.Fatalf("Parse(%q) ok = %v, want %v", tt.name, ok, tt.wantOK)
			}
			if !ok {
				return
			}
			if info.Season != tt.wantSeason {
				t.Errorf("season = %d, want %d", info.Season, tt.wantSeason)
			}
			switch {
			case tt.wantEpisode == -1 && info.Episode != nil:
				t.Errorf("expected no episode, got %d", *info.Episode)
			case tt.wantEpisode != -1 && info.Episode == nil:
				t.Errorf("expected episode %d, got none", tt.wantEpisode)
			case tt.wantEpisode != -1 && *info.Episode != tt.wantEpisode:
				t.Errorf("episode = %d, want %d", *info.Episode, tt.wantEpisode)
			}
		})
	}
}
