package source

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eleven-am/goreel/internal/domain"
)

func waitForInfo(t *testing.T, p *Prefetcher, id string) *ManifestInfo {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if info, ok := p.Info(id); ok {
			return info
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for manifest info of %q", id)
	return nil
}

func TestPrefetcherProbesOnce(t *testing.T) {
	var hits atomic.Int64
	srv := manifestServer(t, &hits)
	p := NewPrefetcher(NewClient(srv.Client(), zerolog.Nop()), 2, zerolog.Nop())

	require.NoError(t, p.Start(context.Background()))
	defer p.Stop()

	item := domain.VideoItem{ID: "a", ManifestURL: srv.URL + "/media.m3u8"}
	p.Enqueue(item)

	info := waitForInfo(t, p, "a")
	assert.InDelta(t, 10.5, info.Duration, 1e-9)

	// Re-enqueueing a probed item must not refetch.
	p.Enqueue(item)
	p.Stop()
	assert.Equal(t, int64(1), hits.Load())
}

func TestPrefetcherSkipsItemsWithoutManifest(t *testing.T) {
	srv := manifestServer(t, nil)
	p := NewPrefetcher(NewClient(srv.Client(), zerolog.Nop()), 1, zerolog.Nop())

	require.NoError(t, p.Start(context.Background()))
	defer p.Stop()

	p.Enqueue(domain.VideoItem{ID: "c", PrimarySrc: "https://cdn.example/c.mp4"})

	time.Sleep(20 * time.Millisecond)
	_, ok := p.Info("c")
	assert.False(t, ok)
}

func TestPrefetcherStartTwice(t *testing.T) {
	srv := manifestServer(t, nil)
	p := NewPrefetcher(NewClient(srv.Client(), zerolog.Nop()), 1, zerolog.Nop())

	require.NoError(t, p.Start(context.Background()))
	defer p.Stop()

	require.Error(t, p.Start(context.Background()))
}

func TestPrefetcherAbsorbsProbeFailures(t *testing.T) {
	srv := manifestServer(t, nil)
	p := NewPrefetcher(NewClient(srv.Client(), zerolog.Nop()), 1, zerolog.Nop())

	require.NoError(t, p.Start(context.Background()))
	defer p.Stop()

	p.Enqueue(
		domain.VideoItem{ID: "b", ManifestURL: srv.URL + "/broken.m3u8"},
		domain.VideoItem{ID: "a", ManifestURL: srv.URL + "/media.m3u8"},
	)

	// The failed probe is skipped, the good one still lands.
	waitForInfo(t, p, "a")
	_, ok := p.Info("b")
	assert.False(t, ok)
}
