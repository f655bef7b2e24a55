package gesture

import "time"

// Rect is the horizontal extent of a slide's bounding box in host pixels.
type Rect struct {
	Left  float64
	Width float64
}

// Scrubber recognizes a horizontal drag over a slide and maps it to a
// playback position. A touch only becomes a scrub once its movement clears
// the pixel threshold with the horizontal component dominating the
// vertical; a vertically dominated touch is handed back to the host's
// native snap scroll and can no longer become a scrub.
type Scrubber struct {
	thresholdPx float64
	guardDelay  time.Duration

	tracking   bool
	scrubbing  bool
	rejected   bool
	startX     float64
	startY     float64
	startPos   float64
	guardUntil time.Time
}

func NewScrubber(thresholdPx float64, guardDelay time.Duration) *Scrubber {
	return &Scrubber{thresholdPx: thresholdPx, guardDelay: guardDelay}
}

// Start begins tracking a touch at (x, y) with the element at startPos.
func (s *Scrubber) Start(x, y, startPos float64) {
	s.tracking = true
	s.scrubbing = false
	s.rejected = false
	s.startX = x
	s.startY = y
	s.startPos = startPos
}

// Move processes a touch move. Once in scrub mode it maps the x coordinate
// within bounds linearly to a fraction of duration (0 at the left edge, 1
// at the right) and returns the seek target with ok=true on every move.
func (s *Scrubber) Move(x, y float64, bounds Rect, duration float64) (pos float64, ok bool) {
	if !s.tracking || s.rejected {
		return 0, false
	}

	if !s.scrubbing {
		dx := abs(x - s.startX)
		dy := abs(y - s.startY)
		if dx <= s.thresholdPx && dy <= s.thresholdPx {
			return 0, false
		}
		if dy >= dx {
			s.rejected = true
			return 0, false
		}
		s.scrubbing = true
	}

	if duration <= 0 || bounds.Width <= 0 {
		return 0, false
	}

	frac := (x - bounds.Left) / bounds.Width
	if frac < 0 {
		frac = 0
	}
	if frac > 1 {
		frac = 1
	}
	return frac * duration, true
}

// End finishes the touch. When a scrub actually happened, a guard window
// opens so the terminating tap is not misread as a play/pause click.
func (s *Scrubber) End(now time.Time) {
	if s.scrubbing {
		s.guardUntil = now.Add(s.guardDelay)
	}
	s.tracking = false
	s.scrubbing = false
	s.rejected = false
}

// StartPos returns the playback position recorded at touch start, for
// overlays that display the scrub delta.
func (s *Scrubber) StartPos() float64 {
	return s.startPos
}

// Scrubbing reports whether the current touch is in scrub mode.
func (s *Scrubber) Scrubbing() bool {
	return s.scrubbing
}

// SuppressClick reports whether a click at now falls inside the post-scrub
// guard window.
func (s *Scrubber) SuppressClick(now time.Time) bool {
	return now.Before(s.guardUntil)
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
