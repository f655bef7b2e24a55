// Package source implements the listing collaborator: it fetches the feed
// listing, normalizes records into playable items, and warms adaptive
// manifest metadata for items entering the load window.
package source

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/eleven-am/goreel/internal/domain"
)

// Client fetches listings and manifests over HTTP.
type Client struct {
	http *http.Client
	log  zerolog.Logger
}

// NewClient wraps httpClient, defaulting to a 30s-timeout client when nil.
func NewClient(httpClient *http.Client, log zerolog.Logger) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	return &Client{
		http: httpClient,
		log:  log.With().Str("component", "source").Logger(),
	}
}

type rawItem struct {
	ID           string `json:"id"`
	Title        string `json:"title"`
	PrimarySrc   string `json:"primarySrc"`
	ManifestURL  string `json:"manifestUrl"`
	ThumbnailURL string `json:"thumbnailUrl"`
	SourceURL    string `json:"sourceUrl"`
	Category     string `json:"category"`
}

// FetchListing retrieves a JSON listing and normalizes it into feed items.
// Records without any playable URL are dropped, records without an id get a
// generated one, and a record reusing an earlier id is dropped so ids stay
// unique within the list.
func (c *Client) FetchListing(ctx context.Context, url string) ([]domain.VideoItem, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch listing: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch listing: HTTP %d", resp.StatusCode)
	}

	var raw []rawItem
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return nil, fmt.Errorf("decode listing: %w", err)
	}

	items := make([]domain.VideoItem, 0, len(raw))
	seen := make(map[string]bool, len(raw))
	for _, r := range raw {
		item := domain.VideoItem{
			ID:           r.ID,
			Title:        r.Title,
			PrimarySrc:   r.PrimarySrc,
			ManifestURL:  r.ManifestURL,
			ThumbnailURL: r.ThumbnailURL,
			SourceURL:    r.SourceURL,
			Category:     r.Category,
		}
		if !item.Playable() {
			c.log.Warn().Str("id", r.ID).Str("title", r.Title).Msg("listing record has no playable url, dropped")
			continue
		}
		if item.ID == "" {
			item.ID = uuid.NewString()
		}
		if seen[item.ID] {
			c.log.Warn().Str("id", item.ID).Msg("duplicate listing id, dropped")
			continue
		}
		seen[item.ID] = true
		items = append(items, item)
	}
	return items, nil
}
