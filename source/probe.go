package source

import (
	"context"
	"fmt"
	"net/http"
	"sync"

	"github.com/grafov/m3u8"
	"golang.org/x/sync/errgroup"

	"github.com/eleven-am/goreel/internal/domain"
)

// ManifestInfo is the metadata extracted from an adaptive-stream manifest.
// Segment playback itself stays with the host's HLS library; this only
// resolves what the feed UI needs up front.
type ManifestInfo struct {
	// Duration is the summed segment duration of a media playlist, in
	// seconds. Zero for master playlists and live streams.
	Duration float64
	Segments int
	Master   bool
	Variants int
	Live     bool

	// Bandwidth and Resolution come from the first variant of a master
	// playlist, the one a player would start on. Both are zero-valued for
	// media playlists.
	Bandwidth  uint32
	Resolution string
}

// ProbeManifest fetches and decodes the manifest at url. Master playlists
// report their variant count plus the first variant's declared bandwidth
// and resolution; media playlists report segment count and total duration.
// Variant URIs are not chased.
func (c *Client) ProbeManifest(ctx context.Context, url string) (*ManifestInfo, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch manifest: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch manifest: HTTP %d", resp.StatusCode)
	}

	playlist, listType, err := m3u8.DecodeFrom(resp.Body, true)
	if err != nil {
		return nil, fmt.Errorf("decode manifest: %w", err)
	}

	if listType == m3u8.MASTER {
		master, ok := playlist.(*m3u8.MasterPlaylist)
		if !ok {
			return nil, fmt.Errorf("unexpected playlist type")
		}
		info := &ManifestInfo{Master: true, Variants: len(master.Variants)}
		if len(master.Variants) > 0 && master.Variants[0] != nil {
			info.Bandwidth = master.Variants[0].Bandwidth
			info.Resolution = master.Variants[0].Resolution
		}
		return info, nil
	}

	media, ok := playlist.(*m3u8.MediaPlaylist)
	if !ok {
		return nil, fmt.Errorf("unexpected playlist type")
	}

	info := &ManifestInfo{Live: !media.Closed}
	for _, seg := range media.Segments {
		if seg == nil {
			continue
		}
		info.Segments++
		if media.Closed {
			info.Duration += seg.Duration
		}
	}
	return info, nil
}

// ProbeAll probes every item carrying a manifest URL with bounded
// concurrency and returns the results keyed by item id. Individual probe
// failures are logged and skipped; a half-probed feed still renders.
func (c *Client) ProbeAll(ctx context.Context, items []domain.VideoItem, concurrency int) (map[string]*ManifestInfo, error) {
	if concurrency <= 0 {
		concurrency = 4
	}

	var mu sync.Mutex
	infos := make(map[string]*ManifestInfo)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)

	for _, item := range items {
		if item.ManifestURL == "" {
			continue
		}
		g.Go(func() error {
			info, err := c.ProbeManifest(gctx, item.ManifestURL)
			if err != nil {
				c.log.Warn().Err(err).Str("id", item.ID).Msg("manifest probe failed")
				return nil
			}
			mu.Lock()
			infos[item.ID] = info
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return infos, err
	}
	return infos, ctx.Err()
}
