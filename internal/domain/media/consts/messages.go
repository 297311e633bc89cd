package consts

// Command represents a bot command
type Command struct {
	Name        string
	Description string
}

// Bot commands
var (
	CommandStart      = Command{Name: "start", Description: "Start the bot"}
	CommandHelp       = Command{Name: "help", Description: "Show help message"}
	CommandDownloads  = Command{Name: "downloads", Description: "Show downloads"}
	CommandConnect    = Command{Name: "connect", Description: "Connect the telegram client"}
	CommandDisconnect = Command{Name: "disconnect", Description: "Disconnect the telegram client"}
	CommandRedownload = Command{Name: "redownload", Description: "Reply to a media message to download it again"}
)

// AllCommands contains all available bot commands for menu registration
var AllCommands = []Command{
	CommandStart,
	CommandHelp,
	CommandDownloads,
	CommandConnect,
	CommandDisconnect,
	CommandRedownload,
}

// User-facing replies
const (
	WelcomeMessage = `Welcome to PiBot
Use /help to know commands
`

	HelpMessage = `PiBot Help

Use /connect to connect the telegram client

Use /disconnect to disconnect the telegram client

Use /downloads to show downloads

Reply /redownload to a media message to download it again

Send any document/video to automatically download it
`

	MsgDownloading         = "Downloading..."
	MsgDownloadComplete    = "Download complete."
	MsgDownloadFailed      = "Couldn't download media."
	MsgAlreadyDownloaded   = "Media already downloaded."
	MsgAlreadyDownloading  = "Media is already downloading."
	MsgOriginUnresolved    = "Couldn't find the original message of this media."
	MsgNoDownloads         = "No downloads in progress."
	MsgGenericFailure      = "Something went wrong, please try again."
	MsgChooseCategory      = "Choose a category for %s"
	MsgChooseSeason        = "Choose a season for %s"
	MsgCategorySelected    = "Saving %s under %s"
	MsgPendingExpired      = "This selection has expired."
	MsgTimeoutDefault      = "No category chosen for %s, saving under %s"
	MsgRedownloadUsage     = "Reply /redownload to a forwarded document or video."
	MsgConnecting          = "Connecting..."
	MsgConnected           = "Client is connected."
	MsgConnectFailed       = "Couldn't connect the client."
	MsgAlreadyConnected    = "Client already connected."
	MsgDisconnected        = "Client disconnected."
	MsgAlreadyDisconnected = "Client already disconnected."
	MsgNotConnected        = "Client is not connected, use /connect first."
	RefreshButtonText      = "Refresh"
	CurrentPageButtonText  = "🔘"
	PreviousPagesText      = "<<"
	NextPagesText          = ">>"
	SpecialsButtonText     = "Specials"
	SeasonButtonText       = "Season %d"
	DownloadsHeader        = "📥  Downloads\n\n"
)
