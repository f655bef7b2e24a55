package source

import (
	"context"
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"github.com/eleven-am/goreel/internal/domain"
)

// Prefetcher warms manifest metadata in the background as items enter the
// load window, so activation does not stall on a manifest round trip.
// Duplicate and already-probed items are dropped at enqueue time.
type Prefetcher struct {
	client *Client
	size   int
	log    zerolog.Logger
	queue  chan domain.VideoItem

	mu      sync.Mutex
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	infos   map[string]*ManifestInfo
	pending map[string]bool
}

// NewPrefetcher creates a pool of size workers backed by client.
func NewPrefetcher(client *Client, size int, log zerolog.Logger) *Prefetcher {
	if size <= 0 {
		size = 2
	}
	return &Prefetcher{
		client:  client,
		size:    size,
		log:     log.With().Str("component", "prefetch").Logger(),
		queue:   make(chan domain.VideoItem, 64),
		infos:   make(map[string]*ManifestInfo),
		pending: make(map[string]bool),
	}
}

// Start launches the workers. The context controls their lifetime.
func (p *Prefetcher) Start(ctx context.Context) error {
	p.mu.Lock()
	if p.cancel != nil {
		p.mu.Unlock()
		return fmt.Errorf("prefetcher already started")
	}
	ctx, p.cancel = context.WithCancel(ctx)
	p.mu.Unlock()

	for i := 0; i < p.size; i++ {
		p.wg.Add(1)
		go p.worker(ctx)
	}
	return nil
}

// Stop cancels the workers and waits for in-flight probes to finish.
func (p *Prefetcher) Stop() {
	p.mu.Lock()
	if p.cancel != nil {
		p.cancel()
	}
	p.mu.Unlock()

	p.wg.Wait()
}

// Enqueue requests probes for the given items. Items without a manifest
// URL, already probed, already queued, or not fitting the queue are
// silently dropped; prefetch is best effort.
func (p *Prefetcher) Enqueue(items ...domain.VideoItem) {
	for _, item := range items {
		if item.ManifestURL == "" {
			continue
		}

		p.mu.Lock()
		if p.infos[item.ID] != nil || p.pending[item.ID] {
			p.mu.Unlock()
			continue
		}
		p.pending[item.ID] = true
		p.mu.Unlock()

		select {
		case p.queue <- item:
		default:
			p.mu.Lock()
			delete(p.pending, item.ID)
			p.mu.Unlock()
			p.log.Debug().Str("id", item.ID).Msg("prefetch queue full, dropped")
		}
	}
}

// Info returns the probed metadata for an item id, if available yet.
func (p *Prefetcher) Info(id string) (*ManifestInfo, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	info, ok := p.infos[id]
	return info, ok
}

func (p *Prefetcher) worker(ctx context.Context) {
	defer p.wg.Done()

	for {
		select {
		case <-ctx.Done():
			return
		case item := <-p.queue:
			info, err := p.client.ProbeManifest(ctx, item.ManifestURL)

			p.mu.Lock()
			delete(p.pending, item.ID)
			if err == nil {
				p.infos[item.ID] = info
			}
			p.mu.Unlock()

			if err != nil {
				p.log.Warn().Err(err).Str("id", item.ID).Msg("prefetch probe failed")
			}
		}
	}
}
