package domain

// VideoItem is one entry in the feed listing. The ordered item list is
// supplied by the listing collaborator and treated as read-only here.
type VideoItem struct {
	ID           string
	Title        string
	PrimarySrc   string
	ManifestURL  string
	ThumbnailURL string
	SourceURL    string
	Category     string
}

// Playable reports whether the item carries any resolved playable URL.
func (v VideoItem) Playable() bool {
	return v.PrimarySrc != "" || v.ManifestURL != ""
}

// Slide pairs an item with its media element, one per list position.
// Element is nil until the host attaches one.
type Slide struct {
	Item    VideoItem
	Element MediaElement
}

// PreloadMode controls how aggressively an element buffers ahead.
type PreloadMode string

const (
	PreloadAuto PreloadMode = "auto"
	PreloadNone PreloadMode = "none"
)

// Command is a decoded user intent produced by the gesture layer.
type Command int

const (
	CmdNone Command = iota
	CmdNextItem
	CmdPrevItem
	CmdTogglePlay
	CmdToggleFullscreen
	CmdToggleMute
	CmdRestart
	CmdSeekBack
	CmdSeekForward
)
