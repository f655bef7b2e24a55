// Package playback enforces the single-player invariant across the feed:
// at most one media element plays at a time, global mute follows autoplay
// policy, and explicit user pauses are remembered per item.
package playback

import (
	"context"
	"sync"

	"github.com/rs/zerolog"

	"github.com/eleven-am/goreel/internal/domain"
)

// Coordinator owns the mute flag and the per-item user-pause map, and runs
// the reconciliation pass whenever the active item, the mute flag, or a
// pause override changes. Callers serialize access; the internal mutex only
// covers state read back by async play attempts.
type Coordinator struct {
	log zerolog.Logger

	mu         sync.Mutex
	active     string
	muted      bool
	interacted bool
	userPaused map[string]bool
	generation uint64
	wg         sync.WaitGroup
}

func NewCoordinator(log zerolog.Logger) *Coordinator {
	return &Coordinator{
		log:        log.With().Str("component", "playback").Logger(),
		muted:      true,
		userPaused: make(map[string]bool),
	}
}

// ActiveID returns the id of the item currently in focus, or "".
func (c *Coordinator) ActiveID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.active
}

// Muted returns the global mute flag.
func (c *Coordinator) Muted() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.muted
}

// UserPaused reports whether the user explicitly paused the item.
func (c *Coordinator) UserPaused(id string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.userPaused[id]
}

// Reset clears all playback state for a new item list. The mute flag and
// the first-interaction latch survive: autoplay policy is a property of the
// session, not of one listing.
func (c *Coordinator) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.active = ""
	c.userPaused = make(map[string]bool)
	c.generation++
}

// SetActive records the newly focused item and reconciles. A fresh arrival
// always gets an autoplay attempt, so any stale pause override for the id
// is cleared first.
func (c *Coordinator) SetActive(slides []domain.Slide, id string) {
	c.mu.Lock()
	if id != c.active {
		delete(c.userPaused, id)
	}
	c.active = id
	c.mu.Unlock()

	c.Reconcile(slides)
}

// Reconcile pauses and rewinds every non-active element before attempting
// to start the active one. The ordering matters: there must be no moment
// where two elements are audible.
func (c *Coordinator) Reconcile(slides []domain.Slide) {
	c.mu.Lock()
	active := c.active
	muted := c.muted
	paused := c.userPaused[active]
	c.generation++
	c.mu.Unlock()

	var activeEl domain.MediaElement
	for _, s := range slides {
		el := s.Element
		if el == nil {
			continue
		}
		if s.Item.ID == active {
			activeEl = el
			continue
		}
		if el.Playing() {
			el.Pause()
			el.Seek(0)
		}
	}

	if active == "" || activeEl == nil || paused {
		return
	}
	if !activeEl.HasSource() {
		// Playing an empty source raises a "no supported source" error.
		return
	}
	activeEl.SetMuted(muted)
	c.playAsync(activeEl, active)
}

// Toggle applies the two-phase click policy to the item's element. The very
// first playback interaction of the session permanently clears the global
// mute flag and plays, and is never interpreted as a pause; every later
// interaction is a plain play/pause toggle that leaves the mute flag alone.
func (c *Coordinator) Toggle(slide domain.Slide) {
	el := slide.Element
	if el == nil {
		return
	}
	id := slide.Item.ID

	c.mu.Lock()
	first := !c.interacted
	c.interacted = true
	if first {
		c.muted = false
	}
	if first || !el.Playing() {
		c.userPaused[id] = false
	} else {
		c.userPaused[id] = true
	}
	muted := c.muted
	pause := !first && el.Playing()
	c.mu.Unlock()

	if pause {
		el.Pause()
		return
	}
	if !el.HasSource() {
		return
	}
	el.SetMuted(muted)
	c.playAsync(el, id)
}

// ToggleMute flips the global mute flag and applies it to the active
// element immediately. Play state is untouched.
func (c *Coordinator) ToggleMute(slides []domain.Slide) {
	c.mu.Lock()
	c.muted = !c.muted
	muted := c.muted
	active := c.active
	c.mu.Unlock()

	for _, s := range slides {
		if s.Item.ID == active && s.Element != nil {
			s.Element.SetMuted(muted)
		}
	}
}

// HandleEnded restarts the item from zero, but only while it is still the
// active item and still has a source; the user may have navigated away or
// the list may have changed before the ended event arrived.
func (c *Coordinator) HandleEnded(slides []domain.Slide, id string) {
	c.mu.Lock()
	active := c.active
	paused := c.userPaused[id]
	c.mu.Unlock()

	if id != active || paused {
		return
	}
	for _, s := range slides {
		if s.Item.ID != id || s.Element == nil {
			continue
		}
		if !s.Element.HasSource() {
			return
		}
		s.Element.Seek(0)
		c.playAsync(s.Element, id)
		return
	}
}

// Wait blocks until in-flight play attempts settle. Intended for shutdown
// and tests.
func (c *Coordinator) Wait() {
	c.wg.Wait()
}

// playAsync starts playback off the caller's goroutine. A rejection
// (browser autoplay policy) is logged and absorbed, never escalated. The
// supersede check runs twice: once before Play, and again after it
// resolves — a reconciliation pass cannot pause an element whose play
// attempt is still in flight, so a slow attempt that lands after the active
// item changed must roll itself back or two elements end up playing.
func (c *Coordinator) playAsync(el domain.MediaElement, id string) {
	c.mu.Lock()
	gen := c.generation
	c.mu.Unlock()

	c.wg.Add(1)
	go func() {
		defer c.wg.Done()

		c.mu.Lock()
		stale := gen != c.generation
		c.mu.Unlock()
		if stale {
			return
		}

		if err := el.Play(context.Background()); err != nil {
			c.log.Debug().Err(err).Str("item", id).Msg("play attempt rejected")
			return
		}

		c.mu.Lock()
		deactivated := gen != c.generation && c.active != id
		paused := c.userPaused[id]
		c.mu.Unlock()
		if deactivated || paused {
			el.Pause()
			if deactivated {
				el.Seek(0)
			}
			c.log.Debug().Str("item", id).Msg("superseded play attempt rolled back")
		}
	}()
}
