// Package consts contains constants for the media domain
package consts

// Callback payload prefixes. Payloads are limited to 64 bytes by Telegram.
const (
	RefreshDownloads = "refresh_downloads"
	PageNoPrefix     = "page_no_"
	CategoryPrefix   = "category_"
	SeasonPrefix     = "season_"
)

// FallbackOriginName names the directory of media whose origin has no usable name
const FallbackOriginName = "pi_media"

// SpecialsSeason is the season number used for specials
const SpecialsSeason = 0
