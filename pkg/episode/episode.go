// Package episode extracts season and episode numbers from media file names
package episode

import (
	"regexp"
	"strconv"
)

// Info is the result of parsing a file name
type Info struct {
	Season int
	// Episode is nil when only a season was found
	Episode *int
}

var (
	// Show.S02E05.mkv, show s2 e5
	seasonEpisodeRe = regexp.MustCompile(`(?i)(?:^|[^a-z0-9])s(\d{1,2})[\s._-]*e(\d{1,3})(?:[^0-9]|$)`)
	// Show.2x05.mkv
	crossRe = regexp.MustCompile(`(?i)(?:^|[^a-z0-9])(\d{1,2})x(\d{1,3})(?:[^0-9]|$)`)
	// Show.Season2.Ep5.mkv, Show Season 2 Episode 5
	seasonWordRe = regexp.MustCompile(`(?i)season[\s._-]*(\d{1,2})(?:[^0-9]|$)`)
	// Show.S2.mkv
	seasonShortRe = regexp.MustCompile(`(?i)(?:^|[^a-z0-9])s(\d{1,2})(?:[^a-z0-9]|$)`)
	episodeWordRe = regexp.MustCompile(`(?i)(?:^|[^a-z0-9])(?:episode|ep|e)[\s._-]*(\d{1,3})(?:[^0-9]|$)`)
)

// Parse returns the season and episode found in name, ok is false when no season is present
func Parse(name string) (Info, bool) {
	for _, re := range []*regexp.Regexp{seasonEpisodeRe, crossRe} {
		if m := re.FindStringSubmatch(name); m != nil {
			season, _ := strconv.Atoi(m[1])
			episode, _ := strconv.Atoi(m[2])
			return Info{Season: season, Episode: &episode}, true
		}
	}

	for _, re := range []*regexp.Regexp{seasonWordRe, seasonShortRe} {
		loc := re.FindStringSubmatchIndex(name)
		if loc == nil {
			continue
		}
		season, _ := strconv.Atoi(name[loc[2]:loc[3]])
		info := Info{Season: season}
		if m := episodeWordRe.FindStringSubmatch(name[loc[3]:]); m != nil {
			episode, _ := strconv.Atoi(m[1])
			info.Episode = &episode
		}
		return info, true
	}

	return Info{}, false
}
