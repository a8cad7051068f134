package capture

import (
	"bytes"
	"context"
	"fmt"
	"image/png"
	"os"

	"github.com/rs/zerolog"

	"wplacesnap/internal/cliconfig"
	"wplacesnap/internal/slippy"
)

// Run executes the whole capture pipeline: resolve the share URL to a
// tile grid, acquire every tile sequentially, stitch, and write the
// output PNG. Per-tile failures degrade to background-filled cells; only
// unusable input or filesystem trouble is fatal.
func Run(ctx context.Context, cfg cliconfig.Config, log zerolog.Logger) error {
	point, err := ParseShareURL(cfg.URL)
	if err != nil {
		return err
	}
	bg, err := ParseHexColor(cfg.BackgroundHex)
	if err != nil {
		return err
	}

	center := slippy.FromPoint(point, TileZoom)
	log.Info().Float64("lat", point.Lat).Float64("lng", point.Lng).
		Int("x", center.X).Int("y", center.Y).Msg("resolved center tile")

	if cfg.GridSize%2 == 0 {
		log.Warn().Int("grid_size", cfg.GridSize).Msg("grid size is even; the center point lies on the corner of the middle four tiles")
	}
	grid := slippy.BuildGrid(center, cfg.GridSize)

	if err := os.MkdirAll(cfg.TempDir, 0o755); err != nil {
		return fmt.Errorf("create temp dir: %w", err)
	}

	fetcher := NewFetcher(FetcherConfig{
		BaseURL:      cfg.BackendURL,
		Timeout:      cfg.Timeout,
		Delay:        cfg.Delay,
		Retries:      cfg.Retries,
		TempDir:      cfg.TempDir,
		SkipExisting: cfg.SkipExisting,
	}, log)

	total := len(grid.Cells)
	results := make([]TileResult, 0, total)
	missing := 0
	milestone := 0
	milestones := []int{25, 50, 75, 100}

	for i, cell := range grid.Cells {
		if err := ctx.Err(); err != nil {
			return err
		}

		res := fetcher.Fetch(ctx, cell.Tile)
		if res.Missing {
			missing++
		}
		results = append(results, res)

		// Courtesy pacing toward the backend. Cache hits stay fast: they
		// made no request, so they earn no delay.
		if i < total-1 && !res.FromCache && cfg.Delay > 0 {
			fetcher.sleep(cfg.Delay)
		}

		done := i + 1
		for milestone < len(milestones) && done*100 >= milestones[milestone]*total {
			log.Info().Int("percent", milestones[milestone]).
				Msgf("download progress: %d/%d tiles", done, total)
			milestone++
		}
	}

	img := Stitch(grid, results, bg, TileSize, log)

	// Encode fully in memory first so a failed run never leaves a
	// truncated output file behind.
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return fmt.Errorf("encode output: %w", err)
	}
	if err := os.WriteFile(cfg.OutPath, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("write output: %w", err)
	}

	if !cfg.KeepTiles {
		removeTiles(fetcher, grid)
	}

	log.Info().Str("out", cfg.OutPath).Int("missing", missing).Int("total", total).Msg("capture complete")
	return nil
}

// removeTiles deletes this run's tile files. The temp dir itself is only
// removed if the run emptied it; a shared cache dir stays put.
func removeTiles(f *Fetcher, grid slippy.Grid) {
	seen := make(map[string]struct{}, len(grid.Cells))
	for _, cell := range grid.Cells {
		p := f.TilePath(cell.Tile)
		if _, dup := seen[p]; dup {
			continue
		}
		seen[p] = struct{}{}
		_ = os.Remove(p)
	}
	_ = os.Remove(f.cfg.TempDir)
}
