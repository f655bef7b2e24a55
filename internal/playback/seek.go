package playback

import (
	"math"

	"github.com/eleven-am/goreel/internal/domain"
)

// validDuration reports whether a duration is known and usable for seeks.
// Media elements report 0 or NaN before metadata resolves; seeking then
// would throw in a browser host.
func validDuration(d float64) bool {
	return d > 0 && !math.IsNaN(d) && !math.IsInf(d, 0)
}

// WrapPosition advances pos by step with circular wrap-around at the
// duration boundaries: stepping before zero lands at duration+overshoot,
// stepping past the end lands at overshoot-duration. Wrap, not clamp, is
// the intended behavior for the step-seek keys.
func WrapPosition(pos, step, duration float64) float64 {
	next := pos + step
	if next < 0 {
		return duration + next
	}
	if next > duration {
		return next - duration
	}
	return next
}

// StepSeek shifts the element's position by step seconds with circular
// wrap. No-op while the duration is unknown.
func StepSeek(el domain.MediaElement, step float64) {
	if el == nil || !el.HasSource() {
		return
	}
	d := el.Duration()
	if !validDuration(d) {
		return
	}
	el.Seek(WrapPosition(el.Position(), step, d))
}

// Restart seeks the element back to zero. No-op while the duration is
// unknown.
func Restart(el domain.MediaElement) {
	if el == nil || !el.HasSource() {
		return
	}
	if !validDuration(el.Duration()) {
		return
	}
	el.Seek(0)
}
