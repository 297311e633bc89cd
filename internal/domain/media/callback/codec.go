// Package callback encodes and decodes inline keyboard callback payloads
package callback

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/mycodedstuff/pibot/internal/domain/media/consts"
	mediaerrors "github.com/mycodedstuff/pibot/internal/domain/media/errors"
)

// MaxPayloadLength is the Telegram limit for callback_data
const MaxPayloadLength = 64

// Type tags a decoded callback command
type Type int

const (
	TypeRefreshDownload Type = iota + 1
	TypeNavigatePage
	TypeCategorySelected
	TypeSeasonSelected
)

func (t Type) String() string {
	switch t {
	case TypeRefreshDownload:
		return "REFRESH_DOWNLOAD"
	case TypeNavigatePage:
		return "NAVIGATE_PAGE"
	case TypeCategorySelected:
		return "CATEGORY_SELECTED"
	case TypeSeasonSelected:
		return "SEASON_SELECTED"
	default:
		return "UNKNOWN"
	}
}

// Command is a decoded callback payload. Only the fields of its Type are meaningful.
type Command struct {
	Type       Type
	Page       int
	Category   string
	Season     int
	Identifier string
}

// Refresh builds a refresh command
func Refresh() Command {
	return Command{Type: TypeRefreshDownload}
}

// Page builds a page navigation command
func Page(page int) Command {
	return Command{Type: TypeNavigatePage, Page: page}
}

// Category builds a category selection command
func Category(category, identifier string) Command {
	return Command{Type: TypeCategorySelected, Category: category, Identifier: identifier}
}

// Season builds a season selection command
func Season(season int, category, identifier string) Command {
	return Command{Type: TypeSeasonSelected, Season: season, Category: category, Identifier: identifier}
}

// Encode renders c as a callback payload
func Encode(c Command) string {
	switch c.Type {
	case TypeRefreshDownload:
		return consts.RefreshDownloads
	case TypeNavigatePage:
		return consts.PageNoPrefix + strconv.Itoa(c.Page)
	case TypeCategorySelected:
		return consts.CategoryPrefix + c.Category + "_" + c.Identifier
	case TypeSeasonSelected:
		return consts.SeasonPrefix + strconv.Itoa(c.Season) + "_" + c.Category + "_" + c.Identifier
	default:
		return ""
	}
}

// Decode parses a callback payload. Unknown or malformed payloads return ErrInvalidCallback.
func Decode(data string) (Command, error) {
	switch {
	case data == consts.RefreshDownloads:
		return Refresh(), nil

	case strings.HasPrefix(data, consts.PageNoPrefix):
		page, err := strconv.Atoi(strings.TrimPrefix(data, consts.PageNoPrefix))
		if err != nil || page < 1 {
			return Command{}, invalid(data)
		}
		return Page(page), nil

	case strings.HasPrefix(data, consts.CategoryPrefix):
		category, identifier, ok := splitTail(strings.TrimPrefix(data, consts.CategoryPrefix))
		if !ok {
			return Command{}, invalid(data)
		}
		return Category(category, identifier), nil

	case strings.HasPrefix(data, consts.SeasonPrefix):
		rest := strings.TrimPrefix(data, consts.SeasonPrefix)
		number, tail, found := strings.Cut(rest, "_")
		if !found {
			return Command{}, invalid(data)
		}
		season, err := strconv.Atoi(number)
		if err != nil || season < 0 {
			return Command{}, invalid(data)
		}
		category, identifier, ok := splitTail(tail)
		if !ok {
			return Command{}, invalid(data)
		}
		return Season(season, category, identifier), nil
	}

	return Command{}, invalid(data)
}

// splitTail splits "category_identifier" on the last underscore so categories may contain underscores
func splitTail(s string) (category, identifier string, ok bool) {
	idx := strings.LastIndex(s, "_")
	if idx <= 0 || idx == len(s)-1 {
		return "", "", false
	}
	return s[:idx], s[idx+1:], true
}

func invalid(data string) error {
	return fmt.Errorf("%w: %q", mediaerrors.ErrInvalidCallback, data)
}
