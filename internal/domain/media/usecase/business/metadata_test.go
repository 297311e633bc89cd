package business

import (
	"testing"

	"github.com/mycodedstuff/pibot/internal/domain/media/consts"
	"github.com/mycodedstuff/pibot/internal/domain/media/dto"
	"github.com/mycodedstuff/pibot/internal/domain/media/entities"
)

func TestExtractMetadata(t *testing.T) {
	size := int64(2048)

	tests := []struct {
		name     string
		item     entities.MediaItem
		wantName string
		wantSize *int64
	}{
		{
			name:     "provided name",
			item:     entities.Video{FileAttributes: entities.FileAttributes{FileID: "v1", FileName: "clip.mp4", FileSize: &size}},
			wantName: "clip.mp4",
			wantSize: &size,
		},
		{
			name:     "synthesized from mime type",
			item:     entities.Document{FileAttributes: entities.FileAttributes{FileID: "d1", MimeType: "video/mp4"}},
			wantName: "d1.mp4",
		},
		{
			name:     "unknown mime type",
			item:     entities.Document{FileAttributes: entities.FileAttributes{FileID: "d2", MimeType: "application/x-pibot-unknown"}},
			wantName: "d2",
		},
		{
			name:     "unsafe name",
			item:     entities.Document{FileAttributes: entities.FileAttributes{FileID: "d3", FileName: "../a/b:c.mkv"}},
			wantName: ".. a b c.mkv",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			meta := ExtractMetadata(tt.item)
			if meta.FileName != tt.wantName {
				t.Errorf("FileName = %q, want %q", meta.FileName, tt.wantName)
			}
			if (meta.FileSize == nil) != (tt.wantSize == nil) {
				t.Fatalf("FileSize presence mismatch: %v", meta.FileSize)
			}
			if tt.wantSize != nil && *meta.FileSize != *tt.wantSize {
				t.Errorf("FileSize = %d, want %d", *meta.FileSize, *tt.wantSize)
			}
		})
	}
}

func TestExtensionForMIME(t *testing.T) {
	tests := map[string]string{
		"video/mp4":            "mp4",
		" Video/X-Matroska ":   "mkv",
		"application/x-nope-1": "",
		"":                     "",
	}
	for mimeType, want := range tests {
		if got := ExtensionForMIME(mimeType); got != want {
			t.Errorf("ExtensionForMIME(%q) = %q, want %q", mimeType, got, want)
		}
	}
}

func TestOriginName(t *testing.T) {
	tests := []struct {
		name string
		req  *dto.MediaRequest
		want string
	}{
		{"channel title", &dto.MediaRequest{Forward: &dto.ForwardInfo{ChannelTitle: "Cinema", UserName: "Ann Lee"}, SenderName: "Me"}, "Cinema"},
		{"forwarding user", &dto.MediaRequest{Forward: &dto.ForwardInfo{UserName: "Ann Lee"}, SenderName: "Me"}, "Ann Lee"},
		{"sender", &dto.MediaRequest{Forward: &dto.ForwardInfo{}, SenderName: "Pi User"}, "Pi User"},
		{"fallback", &dto.MediaRequest{}, consts.FallbackOriginName},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := OriginName(tt.req); got != tt.want {
				t.Errorf("OriginName() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestSanitizeDirName(t *testing.T) {
	tests := map[string]string{
		"Movies  *Hub*":   "Movies Hub",
		"a/b\\c":          "a b c",
		"  spaced   out ": "spaced out",
		"???":             consts.FallbackOriginName,
		"..":              consts.FallbackOriginName,
	}

	for in, want := range tests {
		if got := SanitizeDirName(in); got != want {
			t.Errorf("SanitizeDirName(%q) = %q, want %q", in, got, want)
		}
	}
}
