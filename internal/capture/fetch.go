package capture

import (
	"bytes"
	"context"
	"fmt"
	"image"
	_ "image/png" // tile decode registration
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"

	"wplacesnap/internal/slippy"
)

const (
	// TileZoom is the zoom level the wplace backend serves its canvas at:
	// a fixed 2048x2048 tile world.
	TileZoom = 11

	// TileSize is the pixel dimension of a wplace tile.
	TileSize = 1000

	// DefaultBackend is the tile URL template, filled with (x, y).
	DefaultBackend = "https://backend.wplace.live/files/s0/tiles/%d/%d.png"

	defaultUserAgent = "wplacesnap/1.0"
)

// TileResult is the outcome of acquiring one grid cell. Exactly one of
// Missing or Data is meaningful; FromCache marks results served from disk
// without a network round trip.
type TileResult struct {
	Data      []byte
	FromCache bool
	Missing   bool
}

// FetcherConfig carries everything a Fetcher needs. There is no
// package-level session state: the caller owns the Fetcher for the run.
type FetcherConfig struct {
	BaseURL      string
	Timeout      time.Duration
	Delay        time.Duration
	Retries      int
	TempDir      string
	SkipExisting bool
	UserAgent    string
}

// Fetcher downloads tiles one at a time with bounded retries and a
// courtesy delay between attempts.
type Fetcher struct {
	cfg    FetcherConfig
	client *http.Client
	log    zerolog.Logger

	// sleep is swapped out in tests to make delay accounting observable.
	sleep func(time.Duration)
}

// NewFetcher creates a Fetcher. Empty BaseURL/UserAgent fall back to the
// wplace defaults.
func NewFetcher(cfg FetcherConfig, logger zerolog.Logger) *Fetcher {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBackend
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = defaultUserAgent
	}
	return &Fetcher{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.Timeout},
		log:    logger,
		sleep:  time.Sleep,
	}
}

// TilePath returns the deterministic cache file for a tile.
func (f *Fetcher) TilePath(t slippy.Tile) string {
	return filepath.Join(f.cfg.TempDir, fmt.Sprintf("tile_%d_%d.png", t.X, t.Y))
}

// Fetch acquires one tile. Cached non-empty files short-circuit the
// network when SkipExisting is set. Otherwise the tile is requested up to
// 1+Retries times with Delay between attempts; the delay is never applied
// after the final failed attempt. Exhausting retries yields Missing, not
// an error: one dead tile must not abort the rest of the grid.
func (f *Fetcher) Fetch(ctx context.Context, t slippy.Tile) TileResult {
	dest := f.TilePath(t)

	if f.cfg.SkipExisting {
		if data, err := os.ReadFile(dest); err == nil && len(data) > 0 {
			return TileResult{Data: data, FromCache: true}
		}
	}

	attempts := 1 + f.cfg.Retries
	for attempt := 1; attempt <= attempts; attempt++ {
		data, err := f.fetchOnce(ctx, t)
		if err == nil {
			if werr := os.WriteFile(dest, data, 0o644); werr != nil {
				f.log.Warn().Err(werr).Str("tile", t.String()).Msg("could not persist tile to temp dir")
			}
			return TileResult{Data: data}
		}

		f.log.Warn().Err(err).Str("tile", t.String()).Int("attempt", attempt).Msg("tile fetch failed")
		if ctx.Err() != nil {
			break
		}
		if attempt < attempts && f.cfg.Delay > 0 {
			f.sleep(f.cfg.Delay)
		}
	}
	return TileResult{Missing: true}
}

// fetchOnce performs a single HTTP attempt and validates the payload far
// enough to know the stitcher can decode it.
func (f *Fetcher) fetchOnce(ctx context.Context, t slippy.Tile) ([]byte, error) {
	url := fmt.Sprintf(f.cfg.BaseURL, t.X, t.Y)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", f.cfg.UserAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch tile: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode/100 != 2 {
		return nil, fmt.Errorf("tile request returned %s", resp.Status)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read tile body: %w", err)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("empty tile body")
	}
	if _, _, err := image.DecodeConfig(bytes.NewReader(data)); err != nil {
		return nil, fmt.Errorf("malformed tile image: %w", err)
	}
	return data, nil
}
