package domain

import "context"

// MediaElement is the playable-element contract provided by the host.
// Browser-backed implementations wrap a video element; headless hosts can
// use the in-memory implementation in mediasim.
type MediaElement interface {
	// AttachSource resolves the item's playable URL (direct or via the
	// host's adaptive-stream library) and attaches it to the element.
	AttachSource(item VideoItem)
	HasSource() bool
	SetPreload(mode PreloadMode)

	// Play may reject, typically due to autoplay policy. Rejections are
	// never fatal to the caller.
	Play(ctx context.Context) error
	Pause()
	Playing() bool

	SetMuted(muted bool)
	Muted() bool

	// Duration returns a value <= 0 while the media is not yet ready.
	Duration() float64
	Position() float64
	Seek(pos float64)

	// OnEnded registers the end-of-media callback. The element must invoke
	// fn from its own event context, never from inside another method of
	// this interface.
	OnEnded(fn func())
}
