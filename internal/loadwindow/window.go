// Package loadwindow decides which slides should have a media source
// attached and how aggressively each one may buffer.
package loadwindow

import "github.com/eleven-am/goreel/internal/domain"

// Manager tracks which item ids have had a source attached. Loaded state is
// sticky: ids are never removed, so scrolling back to a visited item does
// not refetch its manifest or flash a re-buffer. Preload is still downgraded
// for anything outside the active window to bound concurrent buffering.
type Manager struct {
	loaded map[string]bool
}

func New() *Manager {
	return &Manager{loaded: make(map[string]bool)}
}

// Window returns the load window around the active position, clipped to
// [0, n). Returns lo > hi when there is no active position.
func Window(active, n int) (lo, hi int) {
	if active < 0 || n == 0 {
		return 0, -1
	}
	lo, hi = active-1, active+1
	if lo < 0 {
		lo = 0
	}
	if hi > n-1 {
		hi = n - 1
	}
	return lo, hi
}

// Update marks the window around the active position as loaded and returns
// the items that became loaded in this pass, in list order.
func (m *Manager) Update(items []domain.VideoItem, active int) []domain.VideoItem {
	lo, hi := Window(active, len(items))

	var newly []domain.VideoItem
	for p := lo; p <= hi; p++ {
		id := items[p].ID
		if !m.loaded[id] {
			m.loaded[id] = true
			newly = append(newly, items[p])
		}
	}
	return newly
}

// Loaded reports whether the id has ever been loaded.
func (m *Manager) Loaded(id string) bool {
	return m.loaded[id]
}

// Len returns the number of loaded ids.
func (m *Manager) Len() int {
	return len(m.loaded)
}

// Reset drops all loaded state. Only used when the item list itself changes
// identity; nothing inside a list's lifetime shrinks the set.
func (m *Manager) Reset() {
	m.loaded = make(map[string]bool)
}

// Preload returns the buffering mode for the slide at pos given the active
// position. Only the active slide and its neighbors buffer ahead; an item
// that stays loaded but leaves the window drops to PreloadNone.
func Preload(pos, active int) domain.PreloadMode {
	if active >= 0 && pos >= active-1 && pos <= active+1 {
		return domain.PreloadAuto
	}
	return domain.PreloadNone
}
