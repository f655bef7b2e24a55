package playback

import (
	"testing"

	"github.com/eleven-am/goreel/internal/domain"
	"github.com/eleven-am/goreel/mediasim"
)

func TestWrapPosition(t *testing.T) {
	cases := []struct {
		name                string
		pos, step, duration float64
		want                float64
	}{
		{"backward wrap", 2, -5, 10, 7},
		{"forward wrap", 8, 5, 10, 3},
		{"plain forward", 1, 5, 10, 6},
		{"plain backward", 7, -5, 10, 2},
		{"exact start", 5, -5, 10, 0},
		{"exact end", 5, 5, 10, 10},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := WrapPosition(tc.pos, tc.step, tc.duration); got != tc.want {
				t.Fatalf("WrapPosition(%v, %v, %v) = %v, want %v", tc.pos, tc.step, tc.duration, got, tc.want)
			}
		})
	}
}

func TestStepSeekNoopWithoutDuration(t *testing.T) {
	el := mediasim.New()
	el.AttachSource(domain.VideoItem{ID: "a", PrimarySrc: "https://cdn.example/a.mp4"})
	el.SetPosition(3)

	StepSeek(el, 5)
	if got := el.Position(); got != 3 {
		t.Fatalf("position = %v, seek on unready media must be a no-op", got)
	}
}

func TestStepSeekNoopWithoutSource(t *testing.T) {
	el := mediasim.New()
	el.SetDuration(10)
	el.SetPosition(3)

	StepSeek(el, 5)
	if got := el.Position(); got != 3 {
		t.Fatalf("position = %v, seek without a source must be a no-op", got)
	}
}

func TestRestart(t *testing.T) {
	el := mediasim.New()
	el.AttachSource(domain.VideoItem{ID: "a", PrimarySrc: "https://cdn.example/a.mp4"})
	el.SetDuration(10)
	el.SetPosition(6)

	Restart(el)
	if got := el.Position(); got != 0 {
		t.Fatalf("position = %v after restart, want 0", got)
	}

	unready := mediasim.New()
	unready.AttachSource(domain.VideoItem{ID: "b", PrimarySrc: "https://cdn.example/b.mp4"})
	unready.SetPosition(6)
	Restart(unready)
	if got := unready.Position(); got != 6 {
		t.Fatalf("position = %v, restart before metadata must be a no-op", got)
	}
}
