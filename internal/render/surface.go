// Package render computes per-slide presentational state. Everything here
// is a pure derivation of controller state; nothing mutates.
package render

import "github.com/eleven-am/goreel/internal/domain"

// SlideView is what the host needs to draw one slide: which surface to
// show, the progress fraction, and the overlay/caption content.
type SlideView struct {
	ID            string
	Title         string
	Caption       string
	SourceURL     string
	Poster        string
	ShowPoster    bool
	ShowPauseIcon bool
	Progress      float64
	Preload       domain.PreloadMode
	Active        bool
	Loaded        bool
}

// Progress returns position/duration clamped to [0, 1], and 0 while the
// duration is unknown.
func Progress(position, duration float64) float64 {
	if duration <= 0 {
		return 0
	}
	frac := position / duration
	if frac < 0 {
		return 0
	}
	if frac > 1 {
		return 1
	}
	return frac
}

// SeekTarget maps a proportional click on the progress bar to a position.
// Returns ok=false while the duration is unknown.
func SeekTarget(fraction, duration float64) (pos float64, ok bool) {
	if duration <= 0 {
		return 0, false
	}
	if fraction < 0 {
		fraction = 0
	}
	if fraction > 1 {
		fraction = 1
	}
	return fraction * duration, true
}

// BuildView assembles the view for one slide.
func BuildView(slide domain.Slide, active, loaded, userPaused bool, preload domain.PreloadMode) SlideView {
	v := SlideView{
		ID:        slide.Item.ID,
		Title:     slide.Item.Title,
		Caption:   caption(slide.Item),
		SourceURL: slide.Item.SourceURL,
		Poster:    slide.Item.ThumbnailURL,
		Preload:   preload,
		Active:    active,
		Loaded:    loaded,
	}

	el := slide.Element
	if el == nil || !el.HasSource() {
		v.ShowPoster = v.Poster != ""
		return v
	}

	v.Progress = Progress(el.Position(), el.Duration())
	v.ShowPauseIcon = active && userPaused && !el.Playing()
	return v
}

func caption(item domain.VideoItem) string {
	if item.Category == "" {
		return item.Title
	}
	if item.Title == "" {
		return item.Category
	}
	return item.Title + " · " + item.Category
}
