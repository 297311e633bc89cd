package business

import (
	"mime"
	"regexp"
	"sort"
	"strings"

	"github.com/h2non/filetype"
	"github.com/h2non/filetype/types"

	"github.com/mycodedstuff/pibot/internal/domain/media/consts"
	"github.com/mycodedstuff/pibot/internal/domain/media/dto"
	"github.com/mycodedstuff/pibot/internal/domain/media/entities"
)

var (
	unsafeNameChars = regexp.MustCompile(`[/\\?%*:|"<>\x00-\x1f\x7f]`)
	repeatedSpaces  = regexp.MustCompile(`\s{2,}`)
)

// ExtractMetadata derives the file name and size of a media item.
// A missing file name is synthesized from the file ID and the MIME type extension.
func ExtractMetadata(item entities.MediaItem) entities.MediaMetadata {
	attrs := entities.AttributesOf(item)

	name := SanitizeName(attrs.FileName)
	if name == "" {
		name = attrs.FileID
		if ext := ExtensionForMIME(attrs.MimeType); ext != "" {
			name += "." + ext
		}
	}

	return entities.MediaMetadata{
		FileID:   attrs.FileID,
		FileName: name,
		FileSize: attrs.FileSize,
	}
}

// ExtensionForMIME returns an extension without the leading dot, or "" when none is known
func ExtensionForMIME(mimeType string) string {
	mimeType = strings.ToLower(strings.TrimSpace(mimeType))
	if mimeType == "" {
		return ""
	}

	var matches []string
	filetype.Types.Range(func(_, v any) bool {
		if t, ok := v.(types.Type); ok && t.MIME.Value == mimeType {
			matches = append(matches, t.Extension)
		}
		return true
	})
	if len(matches) > 0 {
		sort.Strings(matches)
		return matches[0]
	}

	exts, err := mime.ExtensionsByType(mimeType)
	if err != nil || len(exts) == 0 {
		return ""
	}
	return strings.TrimPrefix(exts[0], ".")
}

// OriginName picks the display name of where the media came from:
// forwarding channel title, forwarding user, the sender, then the fallback constant
func OriginName(req *dto.MediaRequest) string {
	var candidates []string
	if req.Forward != nil {
		candidates = append(candidates, req.Forward.ChannelTitle, req.Forward.UserName)
	}
	candidates = append(candidates, req.SenderName)

	for _, c := range candidates {
		if c = strings.TrimSpace(c); c != "" {
			return c
		}
	}
	return consts.FallbackOriginName
}

// SanitizeName strips characters unsafe in file and directory names and collapses repeated whitespace
func SanitizeName(name string) string {
	name = unsafeNameChars.ReplaceAllString(name, " ")
	name = repeatedSpaces.ReplaceAllString(name, " ")
	name = strings.TrimSpace(name)
	if name == "." || name == ".." {
		return ""
	}
	return name
}

// SanitizeDirName is SanitizeName with the fallback origin name for empty results
func SanitizeDirName(name string) string {
	if s := SanitizeName(name); s != "" {
		return s
	}
	return consts.FallbackOriginName
}
