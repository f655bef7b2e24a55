// Package viewport resolves intersection-observer event batches to at most
// one active slide.
package viewport

import (
	"github.com/rs/zerolog"

	"github.com/eleven-am/goreel/internal/domain"
)

// Tracker keeps the index of the slide currently in focus. A batch can only
// replace the active slide with a candidate that meets the visibility
// threshold; when nothing qualifies the previous active index is preserved,
// so a slide that is briefly between snap points never loses its source.
type Tracker struct {
	threshold float64
	count     int
	active    int
	log       zerolog.Logger
	onChange  func(index int)
	onNothing func()
}

func NewTracker(threshold float64, log zerolog.Logger) *Tracker {
	return &Tracker{
		threshold: threshold,
		active:    -1,
		log:       log.With().Str("component", "viewport").Logger(),
	}
}

// OnChange registers the activation callback. It fires synchronously on the
// goroutine that calls Observe, at most once per batch.
func (t *Tracker) OnChange(fn func(index int)) {
	t.onChange = fn
}

// OnNothingVisible registers the callback fired when a batch contains no
// candidate above the threshold.
func (t *Tracker) OnNothingVisible(fn func()) {
	t.onNothing = fn
}

// SetCount declares the size of the slide list. Changing the list identity
// resets the active index.
func (t *Tracker) SetCount(n int) {
	t.count = n
	t.active = -1
}

// Active returns the current active index, or -1.
func (t *Tracker) Active() int {
	return t.active
}

// Observe processes one event batch. The candidate is the highest-ratio
// container meeting the threshold; indices outside the current list are
// ignored, since pending observer callbacks can outlive a list change.
func (t *Tracker) Observe(events []domain.VisibilityEvent) {
	best := -1
	bestRatio := 0.0

	for _, ev := range events {
		if ev.Index < 0 || ev.Index >= t.count {
			t.log.Debug().Int("index", ev.Index).Int("count", t.count).Msg("stale visibility event dropped")
			continue
		}
		if ev.Ratio >= t.threshold && ev.Ratio > bestRatio {
			best = ev.Index
			bestRatio = ev.Ratio
		}
	}

	if best == -1 {
		if t.onNothing != nil {
			t.onNothing()
		}
		return
	}

	if best == t.active {
		return
	}

	t.active = best
	t.log.Debug().Int("index", best).Float64("ratio", bestRatio).Msg("active slide changed")
	if t.onChange != nil {
		t.onChange(best)
	}
}
