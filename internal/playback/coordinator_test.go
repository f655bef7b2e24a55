package playback

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/rs/zerolog"

	"github.com/eleven-am/goreel/internal/domain"
	"github.com/eleven-am/goreel/mediasim"
)

// gatedElement blocks inside Play until released, standing in for a media
// pipeline whose play promise resolves long after the call was issued.
type gatedElement struct {
	entered chan struct{}
	release chan struct{}
	once    sync.Once

	mu      sync.Mutex
	playing bool
	muted   bool
	pos     float64
}

func newGatedElement() *gatedElement {
	return &gatedElement{
		entered: make(chan struct{}),
		release: make(chan struct{}),
	}
}

func (g *gatedElement) AttachSource(domain.VideoItem) {}
func (g *gatedElement) HasSource() bool               { return true }
func (g *gatedElement) SetPreload(domain.PreloadMode) {}

func (g *gatedElement) Play(ctx context.Context) error {
	g.once.Do(func() { close(g.entered) })
	select {
	case <-g.release:
	case <-ctx.Done():
		return ctx.Err()
	}
	g.mu.Lock()
	g.playing = true
	g.mu.Unlock()
	return nil
}

func (g *gatedElement) Pause() {
	g.mu.Lock()
	g.playing = false
	g.mu.Unlock()
}

func (g *gatedElement) Playing() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.playing
}

func (g *gatedElement) SetMuted(muted bool) {
	g.mu.Lock()
	g.muted = muted
	g.mu.Unlock()
}

func (g *gatedElement) Muted() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.muted
}

func (g *gatedElement) Duration() float64 { return 10 }

func (g *gatedElement) Position() float64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.pos
}

func (g *gatedElement) Seek(pos float64) {
	g.mu.Lock()
	g.pos = pos
	g.mu.Unlock()
}

func (g *gatedElement) OnEnded(func()) {}

func newSlides(ids ...string) ([]domain.Slide, []*mediasim.Element) {
	slides := make([]domain.Slide, len(ids))
	els := make([]*mediasim.Element, len(ids))
	for i, id := range ids {
		els[i] = mediasim.New()
		els[i].SetDuration(10)
		els[i].AttachSource(domain.VideoItem{ID: id, PrimarySrc: "https://cdn.example/" + id + ".mp4"})
		slides[i] = domain.Slide{
			Item:    domain.VideoItem{ID: id, PrimarySrc: "https://cdn.example/" + id + ".mp4"},
			Element: els[i],
		}
	}
	return slides, els
}

func TestSetActivePausesAndRewindsOthers(t *testing.T) {
	c := NewCoordinator(zerolog.Nop())
	slides, els := newSlides("a", "b", "c")

	c.SetActive(slides, "a")
	c.Wait()
	if !els[0].Playing() {
		t.Fatal("active element should play")
	}
	if !els[0].Muted() {
		t.Fatal("autoplay must apply the mute flag, which starts true")
	}

	els[0].SetPosition(6)
	c.SetActive(slides, "c")
	c.Wait()

	if els[0].Playing() {
		t.Fatal("previous active must be paused")
	}
	if got := els[0].Position(); got != 0 {
		t.Fatalf("previous active position = %v, want 0", got)
	}
	if !els[2].Playing() {
		t.Fatal("new active must play")
	}
}

func TestReconcileSkipsSourcelessElement(t *testing.T) {
	c := NewCoordinator(zerolog.Nop())

	el := mediasim.New()
	el.SetDuration(10)
	slides := []domain.Slide{{Item: domain.VideoItem{ID: "a"}, Element: el}}

	c.SetActive(slides, "a")
	c.Wait()

	if got := el.PlayCalls(); got != 0 {
		t.Fatalf("play calls = %d, playing an empty source must be suppressed", got)
	}
}

func TestReconcileRespectsUserPause(t *testing.T) {
	c := NewCoordinator(zerolog.Nop())
	slides, els := newSlides("a", "b")

	c.SetActive(slides, "a")
	c.Wait()
	c.Toggle(slides[0]) // first interaction: play + unmute
	c.Wait()
	c.Toggle(slides[0]) // pause
	c.Wait()

	c.Reconcile(slides)
	c.Wait()
	if els[0].Playing() {
		t.Fatal("reconcile must not override an explicit user pause")
	}
}

func TestToggleTwoPhasePolicy(t *testing.T) {
	c := NewCoordinator(zerolog.Nop())
	slides, els := newSlides("a")

	if !c.Muted() {
		t.Fatal("mute flag must start true")
	}

	c.Toggle(slides[0])
	c.Wait()
	if c.Muted() {
		t.Fatal("first interaction must clear the mute flag")
	}
	if !els[0].Playing() || els[0].Muted() {
		t.Fatal("first interaction must play unmuted")
	}

	c.Toggle(slides[0])
	c.Wait()
	if !c.UserPaused("a") || els[0].Playing() {
		t.Fatal("second interaction must pause")
	}
	if c.Muted() {
		t.Fatal("pause must not touch the mute flag")
	}
}

func TestToggleFirstInteractionOnPlayingItemDoesNotPause(t *testing.T) {
	c := NewCoordinator(zerolog.Nop())
	slides, els := newSlides("a")

	c.SetActive(slides, "a")
	c.Wait()
	if !els[0].Playing() {
		t.Fatal("precondition: active element playing")
	}

	c.Toggle(slides[0])
	c.Wait()
	if !els[0].Playing() {
		t.Fatal("first interaction must never be read as a pause")
	}
	if c.UserPaused("a") {
		t.Fatal("no pause override expected")
	}
}

func TestToggleMuteAppliesToActiveElement(t *testing.T) {
	c := NewCoordinator(zerolog.Nop())
	slides, els := newSlides("a", "b")

	c.SetActive(slides, "a")
	c.Wait()

	c.ToggleMute(slides)
	if c.Muted() || els[0].Muted() {
		t.Fatal("unmute must reach the active element")
	}
	c.ToggleMute(slides)
	if !c.Muted() || !els[0].Muted() {
		t.Fatal("mute must toggle freely")
	}
}

func TestHandleEndedGuards(t *testing.T) {
	c := NewCoordinator(zerolog.Nop())
	slides, els := newSlides("a", "b")

	c.SetActive(slides, "a")
	c.Wait()

	els[0].SetPosition(10)
	els[0].Pause()
	c.HandleEnded(slides, "a")
	c.Wait()
	if got := els[0].Position(); got != 0 {
		t.Fatalf("position = %v after loop, want 0", got)
	}
	if !els[0].Playing() {
		t.Fatal("active ended item must restart")
	}

	before := els[1].PlayCalls()
	c.HandleEnded(slides, "b")
	c.Wait()
	if els[1].PlayCalls() != before {
		t.Fatal("ended event for a non-active item must be ignored")
	}
}

func TestLateResolvingPlayRollsBackAfterFocusChange(t *testing.T) {
	c := NewCoordinator(zerolog.Nop())
	slides, els := newSlides("a", "b")
	gated := newGatedElement()
	gated.Seek(6)
	slides[0].Element = gated

	c.SetActive(slides, "a")
	<-gated.entered

	// Focus moves on while a's play attempt is still in flight. The
	// reconciliation pass cannot pause a, because a is not playing yet.
	c.SetActive(slides, "b")
	close(gated.release)
	c.Wait()

	if gated.Playing() {
		t.Fatal("superseded play attempt must pause itself after resolving")
	}
	if got := gated.Position(); got != 0 {
		t.Fatalf("superseded element position = %v, want 0", got)
	}
	if !els[1].Playing() {
		t.Fatal("new active must play")
	}
	if c.ActiveID() != "b" {
		t.Fatalf("active = %q, want b", c.ActiveID())
	}
}

func TestLatePauseOverrideRollsBackResolvedPlay(t *testing.T) {
	c := NewCoordinator(zerolog.Nop())
	slides, _ := newSlides("a")
	gated := newGatedElement()
	slides[0].Element = gated

	c.SetActive(slides, "a")
	<-gated.entered

	// The user pauses before the play promise resolves.
	c.mu.Lock()
	c.interacted = true
	c.userPaused["a"] = true
	c.mu.Unlock()

	close(gated.release)
	c.Wait()

	if gated.Playing() {
		t.Fatal("play resolving after a user pause must roll back")
	}
}

func TestRejectedPlayIsAbsorbed(t *testing.T) {
	c := NewCoordinator(zerolog.Nop())
	slides, els := newSlides("a")
	els[0].FailPlayback(errors.New("NotAllowedError"))

	c.SetActive(slides, "a")
	c.Wait()
	if els[0].Playing() {
		t.Fatal("rejected play must leave the element paused")
	}
	if got := c.ActiveID(); got != "a" {
		t.Fatalf("active = %q, rejection must not clear focus", got)
	}
}

func TestResetKeepsMutePolicy(t *testing.T) {
	c := NewCoordinator(zerolog.Nop())
	slides, _ := newSlides("a")

	c.Toggle(slides[0])
	c.Wait()
	c.Reset()

	if c.ActiveID() != "" {
		t.Fatal("reset must clear the active id")
	}
	if c.Muted() {
		t.Fatal("reset must not restore the mute flag")
	}
}
