// Package goreel implements the playback core of a vertical short-form
// video feed: the logic that decides, as the user scrolls, which slide in a
// long list is loaded, muted, played, paused, preloaded, or rewound.
//
// # Architecture
//
// The host supplies two collaborators:
//
//   - MediaElement: one playable handle per slide (a wrapped browser video
//     element, or mediasim for headless hosts)
//   - a visibility feed: batches of VisibilityEvent from the host's
//     intersection observer, delivered to HandleVisibility
//
// The Controller owns all shared feed state (active item, mute flag, loaded
// set, user-pause overrides) behind a single mutex. Hosts call the Handle*
// entry points from their event callbacks and read view state back with
// Views; they never mutate state directly.
//
// # Playback rules
//
// At most one element plays at a time. A reconciliation pass always pauses
// and rewinds every non-active element before attempting the active one, so
// two elements are never audible together. Playback starts muted until the
// first user interaction with a playback control, which permanently clears
// the global mute flag. Autoplay rejections are absorbed and logged, never
// surfaced; the next user gesture resolves them.
//
// # Loading rules
//
// A slide gets its media source attached when it becomes active or adjacent
// to active. Loaded state is sticky for the lifetime of the item list, so
// scrolling back never refetches a manifest; buffering is still downgraded
// to "none" for slides outside the active window.
//
// # Basic usage
//
//	ctrl := goreel.NewController(goreel.Options{
//	    OnNavigate: func(i int) { scrollToSlide(i) },
//	})
//	ctrl.SetItems(items)
//	for i := range items {
//	    ctrl.AttachElement(i, newVideoElement(items[i]))
//	}
//	// from the intersection observer callback:
//	ctrl.HandleVisibility(events)
package goreel

import (
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/eleven-am/goreel/internal/domain"
	"github.com/eleven-am/goreel/internal/gesture"
	"github.com/eleven-am/goreel/internal/loadwindow"
	"github.com/eleven-am/goreel/internal/playback"
	"github.com/eleven-am/goreel/internal/render"
	"github.com/eleven-am/goreel/internal/viewport"
)

type (
	// VideoItem is one entry in the feed listing.
	VideoItem = domain.VideoItem

	// MediaElement is the playable-element contract the host implements
	// per slide.
	MediaElement = domain.MediaElement

	// VisibilityEvent reports the visible fraction of one slide container.
	VisibilityEvent = domain.VisibilityEvent

	// PreloadMode controls how aggressively an element buffers ahead.
	PreloadMode = domain.PreloadMode

	// Command is a decoded user intent.
	Command = domain.Command

	// Keymap translates host key identifiers into commands.
	Keymap = gesture.Keymap

	// Rect is the horizontal extent of a slide's bounding box.
	Rect = gesture.Rect

	// SlideView is the computed presentational state for one slide.
	SlideView = render.SlideView
)

const (
	PreloadAuto = domain.PreloadAuto
	PreloadNone = domain.PreloadNone
)

const (
	CmdNone             = domain.CmdNone
	CmdNextItem         = domain.CmdNextItem
	CmdPrevItem         = domain.CmdPrevItem
	CmdTogglePlay       = domain.CmdTogglePlay
	CmdToggleFullscreen = domain.CmdToggleFullscreen
	CmdToggleMute       = domain.CmdToggleMute
	CmdRestart          = domain.CmdRestart
	CmdSeekBack         = domain.CmdSeekBack
	CmdSeekForward      = domain.CmdSeekForward
)

// DefaultKeymap returns the standard vertical-feed key bindings.
func DefaultKeymap() Keymap { return gesture.DefaultKeymap() }

// Options configures the Controller. The zero value is usable.
type Options struct {
	// Logger receives debug/warn output. Defaults to a no-op logger.
	Logger *zerolog.Logger

	// ActivationThreshold is the visible fraction a slide must reach to
	// become active, in (0, 1]. Higher values reduce flicker during fast
	// scrolling at the cost of slower activation. Default: 0.75.
	ActivationThreshold float64

	// SeekStep is the step-seek key distance in seconds. Default: 5.
	SeekStep float64

	// ScrubThresholdPx is the movement a touch must clear before it can
	// become a horizontal scrub. Default: 10.
	ScrubThresholdPx float64

	// ScrubGuardDelay suppresses clicks arriving this soon after a scrub,
	// so the terminating tap is not read as play/pause. Default: 250ms.
	ScrubGuardDelay time.Duration

	// Keymap overrides the default key bindings.
	Keymap Keymap

	// OnNavigate is called when the user asks for the previous or next
	// slide; the host smooth-scrolls the view there. The resulting
	// visibility events complete the navigation.
	OnNavigate func(index int)

	// OnFullscreen is called when the fullscreen toggle fires.
	OnFullscreen func(on bool)

	// OnLoad is called with items that just entered the load window, in
	// list order. Hosts typically hand them to a source.Prefetcher.
	OnLoad func(items []VideoItem)
}

func (o *Options) setDefaults() {
	if o.Logger == nil {
		nop := zerolog.Nop()
		o.Logger = &nop
	}
	if o.ActivationThreshold == 0 {
		o.ActivationThreshold = 0.75
	}
	if o.SeekStep == 0 {
		o.SeekStep = 5
	}
	if o.ScrubThresholdPx == 0 {
		o.ScrubThresholdPx = 10
	}
	if o.ScrubGuardDelay == 0 {
		o.ScrubGuardDelay = 250 * time.Millisecond
	}
	if o.Keymap == nil {
		o.Keymap = gesture.DefaultKeymap()
	}
}

func (o *Options) validate() {
	if o.ActivationThreshold < 0 || o.ActivationThreshold > 1 {
		panic("goreel: ActivationThreshold must be in (0, 1]")
	}
	if o.SeekStep < 0 {
		panic("goreel: SeekStep must be positive")
	}
}

// Controller is the feed's playback core. All methods are safe for
// concurrent use; internally one mutex serializes every state change so a
// visibility callback and a gesture handler firing together cannot race.
type Controller struct {
	opts Options
	log  zerolog.Logger

	mu            sync.Mutex
	items         []domain.VideoItem
	slides        []domain.Slide
	activePos     int
	fullscreen    bool
	loadsThisPass []domain.VideoItem
	tracker       *viewport.Tracker
	window        *loadwindow.Manager
	coord         *playback.Coordinator
	scrub         *gesture.Scrubber
}

// NewController creates a Controller. It panics on out-of-range option
// values. Call SetItems before feeding it events.
func NewController(opts Options) *Controller {
	opts.validate()
	opts.setDefaults()

	c := &Controller{
		opts:      opts,
		log:       opts.Logger.With().Str("component", "goreel").Logger(),
		activePos: -1,
		tracker:   viewport.NewTracker(opts.ActivationThreshold, *opts.Logger),
		window:    loadwindow.New(),
		coord:     playback.NewCoordinator(*opts.Logger),
		scrub:     gesture.NewScrubber(opts.ScrubThresholdPx, opts.ScrubGuardDelay),
	}

	c.tracker.OnChange(c.activateLocked)
	return c
}

// SetItems replaces the item list. Slides are rebuilt (elements must be
// re-attached), loaded and pause state reset, and the active item cleared;
// the global mute flag survives, since autoplay policy is session-wide.
func (c *Controller) SetItems(items []VideoItem) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.items = make([]domain.VideoItem, len(items))
	copy(c.items, items)

	c.slides = make([]domain.Slide, len(items))
	for i := range c.items {
		c.slides[i] = domain.Slide{Item: c.items[i]}
	}

	c.activePos = -1
	c.tracker.SetCount(len(items))
	c.window.Reset()
	c.coord.Reset()
}

// AttachElement binds a media element to the slide at index. The element's
// ended notification is wired to the loop/restart logic, so hosts do not
// need to call HandleEnded themselves. If the slide is already inside the
// load window its source is attached immediately, and if it is the active
// slide a reconciliation runs so it can start playing.
func (c *Controller) AttachElement(index int, el MediaElement) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if index < 0 || index >= len(c.slides) {
		c.log.Warn().Int("index", index).Msg("attach for unknown slide ignored")
		return
	}
	id := c.slides[index].Item.ID
	el.OnEnded(func() { c.HandleEnded(id) })
	c.slides[index].Element = el
	c.syncSlidesLocked()

	if index == c.activePos {
		c.coord.Reconcile(c.slides)
	}
}

// HandleVisibility processes one intersection-observer batch. Activation,
// load-window growth, and reconciliation all happen in this single pass.
func (c *Controller) HandleVisibility(events []VisibilityEvent) {
	c.mu.Lock()
	c.loadsThisPass = nil
	c.tracker.Observe(events)
	newly := c.loadsThisPass
	c.loadsThisPass = nil
	c.mu.Unlock()

	if len(newly) > 0 && c.opts.OnLoad != nil {
		c.opts.OnLoad(newly)
	}
}

// HandleKey processes a key press. Keys typed in editable regions are
// ignored.
func (c *Controller) HandleKey(key string, editable bool) {
	cmd := c.opts.Keymap.Decode(key, editable)
	if cmd == CmdNone {
		return
	}

	navigate := -1
	var fullscreen *bool

	c.mu.Lock()
	switch cmd {
	case CmdNextItem:
		if c.activePos >= 0 && c.activePos+1 < len(c.slides) {
			navigate = c.activePos + 1
		}
	case CmdPrevItem:
		if c.activePos > 0 {
			navigate = c.activePos - 1
		}
	case CmdTogglePlay:
		if s, ok := c.activeSlideLocked(); ok {
			c.coord.Toggle(s)
		}
	case CmdToggleFullscreen:
		c.fullscreen = !c.fullscreen
		on := c.fullscreen
		fullscreen = &on
	case CmdToggleMute:
		c.coord.ToggleMute(c.slides)
	case CmdRestart:
		if s, ok := c.activeSlideLocked(); ok {
			playback.Restart(s.Element)
		}
	case CmdSeekBack:
		if s, ok := c.activeSlideLocked(); ok {
			playback.StepSeek(s.Element, -c.opts.SeekStep)
		}
	case CmdSeekForward:
		if s, ok := c.activeSlideLocked(); ok {
			playback.StepSeek(s.Element, c.opts.SeekStep)
		}
	}
	c.mu.Unlock()

	if navigate >= 0 && c.opts.OnNavigate != nil {
		c.opts.OnNavigate(navigate)
	}
	if fullscreen != nil && c.opts.OnFullscreen != nil {
		c.opts.OnFullscreen(*fullscreen)
	}
}

// HandleClick processes a tap/click on the slide at index, applying the
// two-phase play/pause policy. Clicks inside the post-scrub guard window
// are dropped, and only the slide in focus toggles: starting a background
// slide would break the single-player invariant.
func (c *Controller) HandleClick(index int) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.scrub.SuppressClick(time.Now()) {
		return
	}
	if index != c.activePos || index < 0 || index >= len(c.slides) {
		return
	}
	c.coord.Toggle(c.slides[index])
}

// HandleProgressClick seeks the active item to the given fraction of its
// duration, for proportional clicks on the progress bar. No-op while the
// duration is unknown.
func (c *Controller) HandleProgressClick(fraction float64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	s, ok := c.activeSlideLocked()
	if !ok || !s.Element.HasSource() {
		return
	}
	if pos, ok := render.SeekTarget(fraction, s.Element.Duration()); ok {
		s.Element.Seek(pos)
	}
}

// HandleTouchStart begins touch tracking at host coordinates (x, y).
func (c *Controller) HandleTouchStart(x, y float64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	pos := 0.0
	if s, ok := c.activeSlideLocked(); ok {
		pos = s.Element.Position()
	}
	c.scrub.Start(x, y, pos)
}

// HandleTouchMove processes a touch move over the active slide, whose
// bounding box the host passes in. Once the gesture is recognized as a
// horizontal scrub, every move seeks the active item.
func (c *Controller) HandleTouchMove(x, y float64, bounds Rect) {
	c.mu.Lock()
	defer c.mu.Unlock()

	s, ok := c.activeSlideLocked()
	if !ok || !s.Element.HasSource() {
		return
	}
	if pos, seek := c.scrub.Move(x, y, bounds, s.Element.Duration()); seek {
		s.Element.Seek(pos)
	}
}

// HandleTouchEnd finishes the touch and, after a scrub, opens the click
// guard window.
func (c *Controller) HandleTouchEnd() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.scrub.End(time.Now())
}

// HandleEnded processes an end-of-media notification for the item id. The
// item loops: it restarts from zero and keeps playing, but only while it is
// still the active item and still has a source.
func (c *Controller) HandleEnded(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.coord.HandleEnded(c.slides, id)
}

// Views returns the presentational state of every slide, in list order.
func (c *Controller) Views() []SlideView {
	c.mu.Lock()
	defer c.mu.Unlock()

	active := c.coord.ActiveID()
	views := make([]SlideView, len(c.slides))
	for i, s := range c.slides {
		views[i] = render.BuildView(
			s,
			s.Item.ID == active,
			c.window.Loaded(s.Item.ID),
			c.coord.UserPaused(s.Item.ID),
			loadwindow.Preload(i, c.activePos),
		)
	}
	return views
}

// ActiveID returns the id of the item in focus, or "".
func (c *Controller) ActiveID() string {
	return c.coord.ActiveID()
}

// ActiveIndex returns the position of the item in focus, or -1.
func (c *Controller) ActiveIndex() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.activePos
}

// Muted returns the global mute flag.
func (c *Controller) Muted() bool {
	return c.coord.Muted()
}

// Loaded reports whether the item's source has ever been attached.
func (c *Controller) Loaded(id string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.window.Loaded(id)
}

// UserPaused reports whether the user explicitly paused the item.
func (c *Controller) UserPaused(id string) bool {
	return c.coord.UserPaused(id)
}

// Fullscreen reports the fullscreen toggle state.
func (c *Controller) Fullscreen() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.fullscreen
}

// Wait blocks until in-flight asynchronous play attempts settle. Intended
// for shutdown and tests.
func (c *Controller) Wait() {
	c.coord.Wait()
}

func (c *Controller) activeSlideLocked() (domain.Slide, bool) {
	if c.activePos < 0 || c.activePos >= len(c.slides) {
		return domain.Slide{}, false
	}
	s := c.slides[c.activePos]
	if s.Element == nil {
		return domain.Slide{}, false
	}
	return s, true
}

// activateLocked runs under c.mu via the tracker's OnChange callback.
func (c *Controller) activateLocked(pos int) {
	c.activePos = pos
	c.loadsThisPass = append(c.loadsThisPass, c.window.Update(c.items, pos)...)
	c.syncSlidesLocked()
	c.coord.SetActive(c.slides, c.items[pos].ID)
}

// syncSlidesLocked attaches sources to loaded slides that have an element
// but no source yet, and refreshes every slide's preload mode.
func (c *Controller) syncSlidesLocked() {
	for i := range c.slides {
		el := c.slides[i].Element
		if el == nil {
			continue
		}
		if c.window.Loaded(c.slides[i].Item.ID) && !el.HasSource() {
			el.AttachSource(c.slides[i].Item)
		}
		el.SetPreload(loadwindow.Preload(i, c.activePos))
	}
}
