package capture

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image/color"
	"image/png"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"wplacesnap/internal/cliconfig"
)

// tileServer serves solid-color tiles, optionally refusing some of them.
func tileServer(t *testing.T, c color.NRGBA, refuse func(x, y int) bool) (*httptest.Server, *atomic.Int64) {
	t.Helper()
	data := solidPNG(t, 10, 10, c)
	var requests atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		var x, y int
		if _, err := fmt.Sscanf(r.URL.Path, "/files/s0/tiles/%d/%d.png", &x, &y); err != nil {
			http.NotFound(w, r)
			return
		}
		if refuse != nil && refuse(x, y) {
			http.NotFound(w, r)
			return
		}
		w.Write(data)
	}))
	t.Cleanup(srv.Close)
	return srv, &requests
}

func testRunConfig(t *testing.T, srv *httptest.Server) cliconfig.Config {
	t.Helper()
	tmp := t.TempDir()
	cfg := cliconfig.DefaultConfig()
	cfg.URL = "https://wplace.live/?lat=0&lng=0&zoom=14"
	cfg.OutPath = filepath.Join(tmp, "out.png")
	cfg.TempDir = filepath.Join(tmp, "tiles")
	cfg.GridSize = 3
	cfg.Retries = 0
	cfg.Delay = 0
	cfg.Timeout = 5 * time.Second
	cfg.BackgroundHex = "#000000"
	if srv != nil {
		cfg.BackendURL = srv.URL + "/files/s0/tiles/%d/%d.png"
	}
	return cfg
}

func decodeOutput(t *testing.T, path string) *bytes.Reader {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	return bytes.NewReader(data)
}

func TestRun_AllTilesPresent(t *testing.T) {
	red := color.NRGBA{255, 0, 0, 255}
	srv, requests := tileServer(t, red, nil)
	cfg := testRunConfig(t, srv)

	if err := Run(context.Background(), cfg, zerolog.Nop()); err != nil {
		t.Fatalf("Run: %v", err)
	}

	if got := requests.Load(); got != 9 {
		t.Errorf("requests = %d, want 9", got)
	}

	img, err := png.Decode(decodeOutput(t, cfg.OutPath))
	if err != nil {
		t.Fatalf("decode output: %v", err)
	}
	want := 3 * TileSize
	if img.Bounds().Dx() != want || img.Bounds().Dy() != want {
		t.Fatalf("output = %v, want %dx%d", img.Bounds(), want, want)
	}
	for _, p := range [][2]int{{0, 0}, {want / 2, want / 2}, {want - 1, want - 1}} {
		r, g, b, a := img.At(p[0], p[1]).RGBA()
		if r>>8 != 255 || g>>8 != 0 || b>>8 != 0 || a>>8 != 255 {
			t.Errorf("pixel (%d,%d) = (%d,%d,%d,%d), want opaque red", p[0], p[1], r>>8, g>>8, b>>8, a>>8)
		}
	}

	// Tiles are deleted after stitching unless keep-tiles is set.
	if entries, err := os.ReadDir(cfg.TempDir); err == nil && len(entries) > 0 {
		t.Errorf("temp dir still holds %d tile files", len(entries))
	}
}

func TestRun_CenterTileMissing(t *testing.T) {
	// lat=0 lng=0 resolves to tile 1024/1024 at the capture zoom.
	blue := color.NRGBA{0, 0, 255, 255}
	srv, _ := tileServer(t, blue, func(x, y int) bool { return x == 1024 && y == 1024 })
	cfg := testRunConfig(t, srv)
	cfg.KeepTiles = true

	if err := Run(context.Background(), cfg, zerolog.Nop()); err != nil {
		t.Fatalf("Run: %v", err)
	}

	img, err := png.Decode(decodeOutput(t, cfg.OutPath))
	if err != nil {
		t.Fatalf("decode output: %v", err)
	}

	// Center cell spans [TileSize, 2*TileSize): black background there.
	r, g, b, _ := img.At(TileSize+TileSize/2, TileSize+TileSize/2).RGBA()
	if r != 0 || g != 0 || b != 0 {
		t.Errorf("center pixel = (%d,%d,%d), want background black", r>>8, g>>8, b>>8)
	}
	r, g, b, _ = img.At(TileSize/2, TileSize/2).RGBA()
	if r>>8 != 0 || g>>8 != 0 || b>>8 != 255 {
		t.Errorf("corner pixel = (%d,%d,%d), want blue", r>>8, g>>8, b>>8)
	}

	// keep-tiles retains the eight fetched tiles; the missing one never
	// produced a file.
	entries, err := os.ReadDir(cfg.TempDir)
	if err != nil {
		t.Fatalf("temp dir: %v", err)
	}
	if len(entries) != 8 {
		t.Errorf("kept tile files = %d, want 8", len(entries))
	}
}

func TestRun_SkipExistingReusesTiles(t *testing.T) {
	green := color.NRGBA{0, 128, 0, 255}
	srv, requests := tileServer(t, green, nil)
	cfg := testRunConfig(t, srv)
	cfg.KeepTiles = true
	cfg.SkipExisting = true

	if err := Run(context.Background(), cfg, zerolog.Nop()); err != nil {
		t.Fatalf("first run: %v", err)
	}
	afterFirst := requests.Load()
	firstOut, err := os.ReadFile(cfg.OutPath)
	if err != nil {
		t.Fatal(err)
	}

	if err := Run(context.Background(), cfg, zerolog.Nop()); err != nil {
		t.Fatalf("second run: %v", err)
	}
	if got := requests.Load(); got != afterFirst {
		t.Errorf("second run made %d extra requests, want 0", got-afterFirst)
	}
	secondOut, err := os.ReadFile(cfg.OutPath)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(firstOut, secondOut) {
		t.Error("outputs differ between cached and fresh runs")
	}
}

func TestRun_InvalidInputFailsBeforeDownloads(t *testing.T) {
	srv, requests := tileServer(t, color.NRGBA{255, 255, 255, 255}, nil)

	t.Run("bad url", func(t *testing.T) {
		cfg := testRunConfig(t, srv)
		cfg.URL = "https://wplace.live/?zoom=12"
		err := Run(context.Background(), cfg, zerolog.Nop())
		var urlErr *InvalidURLError
		if !errors.As(err, &urlErr) {
			t.Fatalf("error = %v, want *InvalidURLError", err)
		}
		if _, err := os.Stat(cfg.OutPath); err == nil {
			t.Error("no output file should exist after fatal error")
		}
	})

	t.Run("bad color", func(t *testing.T) {
		cfg := testRunConfig(t, srv)
		cfg.BackgroundHex = "#12"
		err := Run(context.Background(), cfg, zerolog.Nop())
		var colErr *InvalidColorError
		if !errors.As(err, &colErr) {
			t.Fatalf("error = %v, want *InvalidColorError", err)
		}
	})

	if got := requests.Load(); got != 0 {
		t.Errorf("requests before validation = %d, want 0", got)
	}
}

func TestRun_UnwritableOutputFails(t *testing.T) {
	srv, _ := tileServer(t, color.NRGBA{1, 2, 3, 255}, nil)
	cfg := testRunConfig(t, srv)
	cfg.OutPath = filepath.Join(cfg.TempDir, "no", "such", "dir", "out.png")

	if err := Run(context.Background(), cfg, zerolog.Nop()); err == nil {
		t.Fatal("expected error for unwritable output path")
	}
}

func TestRun_CancelledContext(t *testing.T) {
	srv, _ := tileServer(t, color.NRGBA{1, 2, 3, 255}, nil)
	cfg := testRunConfig(t, srv)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := Run(ctx, cfg, zerolog.Nop()); !errors.Is(err, context.Canceled) {
		t.Fatalf("error = %v, want context.Canceled", err)
	}
	if _, err := os.Stat(cfg.OutPath); err == nil {
		t.Error("no output file should exist after cancellation")
	}
}
