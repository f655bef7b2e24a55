// Package mediasim provides an in-memory media element for headless hosts
// and tests. It implements the full playable-element contract, including
// programmable autoplay rejection and end-of-media notification.
package mediasim

import (
	"context"
	"errors"
	"sync"

	"github.com/eleven-am/goreel/internal/domain"
)

// ErrNoSource is returned by Play when no source has been attached,
// mirroring a browser's "no supported source" failure.
var ErrNoSource = errors.New("mediasim: no source attached")

// Element simulates one media element. Playback does not advance on its
// own; tests drive position with Seek/SetPosition and end-of-media with
// FinishPlayback.
type Element struct {
	mu       sync.Mutex
	src      string
	preload  domain.PreloadMode
	playing  bool
	muted    bool
	position float64
	duration float64
	playErr  error
	onEnded  func()

	playCalls  int
	pauseCalls int
}

func New() *Element {
	return &Element{preload: domain.PreloadNone}
}

func (e *Element) AttachSource(item domain.VideoItem) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if item.ManifestURL != "" {
		e.src = item.ManifestURL
		return
	}
	e.src = item.PrimarySrc
}

func (e *Element) HasSource() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.src != ""
}

func (e *Element) SetPreload(mode domain.PreloadMode) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.preload = mode
}

func (e *Element) Play(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	e.playCalls++
	if e.src == "" {
		return ErrNoSource
	}
	if e.playErr != nil {
		return e.playErr
	}
	e.playing = true
	return nil
}

func (e *Element) Pause() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.pauseCalls++
	e.playing = false
}

func (e *Element) Playing() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.playing
}

func (e *Element) SetMuted(muted bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.muted = muted
}

func (e *Element) Muted() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.muted
}

func (e *Element) Duration() float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.duration
}

func (e *Element) Position() float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.position
}

// Seek clamps to [0, duration] like a real element, and is a no-op while
// the duration is unknown.
func (e *Element) Seek(pos float64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.duration <= 0 {
		return
	}
	if pos < 0 {
		pos = 0
	}
	if pos > e.duration {
		pos = e.duration
	}
	e.position = pos
}

// SetDuration marks the media metadata as resolved.
func (e *Element) SetDuration(d float64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.duration = d
}

// SetPosition moves the playhead without the Seek clamp guard.
func (e *Element) SetPosition(pos float64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.position = pos
}

// FailPlayback makes subsequent Play calls return err, simulating autoplay
// rejection. Pass nil to restore normal behavior.
func (e *Element) FailPlayback(err error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.playErr = err
}

// OnEnded registers the end-of-media callback.
func (e *Element) OnEnded(fn func()) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.onEnded = fn
}

// FinishPlayback drives the element to end-of-media: playhead at duration,
// playback stopped, ended callback fired.
func (e *Element) FinishPlayback() {
	e.mu.Lock()
	e.position = e.duration
	e.playing = false
	fn := e.onEnded
	e.mu.Unlock()

	if fn != nil {
		fn()
	}
}

// Source returns the currently attached source URL.
func (e *Element) Source() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.src
}

// Preload returns the current preload mode.
func (e *Element) Preload() domain.PreloadMode {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.preload
}

// PlayCalls returns how many times Play was invoked.
func (e *Element) PlayCalls() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.playCalls
}

// PauseCalls returns how many times Pause was invoked.
func (e *Element) PauseCalls() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.pauseCalls
}
