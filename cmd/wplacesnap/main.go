package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"runtime/debug"
	"strings"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	pflag "github.com/spf13/pflag"

	"wplacesnap/internal/capture"
	"wplacesnap/internal/cliconfig"
)

const helpDescription = `
Capture a square snapshot of the wplace.live canvas around a share link.

Highlights:
  - Resolves the lat/lng in any wplace share URL to the backend tile grid.
  - Downloads tiles sequentially with retries and a courtesy delay.
  - Stitches one PNG; unavailable tiles become the background color.
  - Re-runs are cheap with --skip-existing: cached tiles skip the network.

Configure via flags, WPLACESNAP_* environment variables, or a TOML file.
`

var exampleUsage = strings.TrimSpace(`
  wplacesnap --url "https://wplace.live/?lat=35.225&lng=-106.60&zoom=15" -o out.png
  wplacesnap --url "$SHARE_URL" --grid-size 7 --delay 250ms --bg-hex "#f5f5f5" --keep-tiles --skip-existing
`)

func getVersion() string {
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" {
		return info.Main.Version
	}
	return "dev"
}

func main() {
	cfg := cliconfig.DefaultConfig()
	var cfgPath string

	log := cliconfig.Logger()

	root := &cobra.Command{
		Use:     "wplacesnap",
		Short:   "Stitch a grid of wplace.live tiles around a share link into one PNG",
		Long:    strings.TrimSpace(helpDescription),
		Example: exampleUsage,
		Version: fmt.Sprintf("%s %s/%s", getVersion(), runtime.GOOS, runtime.GOARCH),
		RunE: func(cmd *cobra.Command, args []string) error {
			// Load config file first (default $HOME/.wplacesnap/config.toml),
			// then apply env and flag overrides.
			cfgFile := cfgPath
			if cfgFile == "" {
				cfgFile = cliconfig.DefaultConfigPath()
			}

			// Build set of changed flags
			changed := map[string]bool{}
			cmd.Flags().Visit(func(f *pflag.Flag) { changed[f.Name] = true })

			if cfgFile != "" && cliconfig.FileExists(cfgFile) {
				fc, err := cliconfig.LoadFileConfig(cfgFile)
				if err != nil {
					return fmt.Errorf("load config: %w", err)
				}
				if err := cliconfig.ApplyFileConfig(&cfg, fc, changed); err != nil {
					return err
				}
			}

			// Apply environment variables (WPLACESNAP_*). A .env in the
			// working directory feeds them first; absence is fine.
			_ = godotenv.Load()
			if err := cliconfig.ApplyEnvConfig(&cfg, changed); err != nil {
				return err
			}

			if err := cfg.Validate(); err != nil {
				return err
			}

			log.Info().Interface("config", cfg).Msg("configuration")

			// Stop cleanly on Ctrl-C; a half-finished grid still leaves
			// cached tiles behind for the next run.
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			if err := capture.Run(ctx, cfg, log); err != nil {
				if errors.Is(err, context.Canceled) {
					log.Warn().Msg("cancelled")
				}
				return err
			}
			return nil
		},
	}

	// Flags
	root.Flags().StringVar(&cfgPath, "config", "", "path to config file (default: $HOME/.wplacesnap/config.toml)")
	root.Flags().StringVar(&cfg.URL, "url", "", "wplace share URL containing ?lat=..&lng=..")
	root.Flags().StringVar(&cfg.BackendURL, "backend-url", cfg.BackendURL, "tile source URL template (override only for internal testing)")
	if err := root.Flags().MarkHidden("backend-url"); err != nil {
		log.Info().Err(err).Msg("failed to hide backend-url flag")
	}
	root.Flags().StringVarP(&cfg.OutPath, "out", "o", cfg.OutPath, "output PNG path")

	root.Flags().IntVar(&cfg.GridSize, "grid-size", cfg.GridSize, "tiles per side of the square snapshot region")

	root.Flags().DurationVar(&cfg.Timeout, "timeout", cfg.Timeout, "HTTP timeout per tile request")
	root.Flags().DurationVar(&cfg.Delay, "delay", cfg.Delay, "delay between downloads (skipped after cache hits)")
	root.Flags().IntVar(&cfg.Retries, "retries", cfg.Retries, "retries per tile after the first attempt")

	root.Flags().StringVar(&cfg.BackgroundHex, "bg-hex", cfg.BackgroundHex, "hex background for missing tiles and final underlay (e.g. #f5f5f5)")

	root.Flags().StringVar(&cfg.TempDir, "temp-dir", cfg.TempDir, "directory to store downloaded tiles")
	root.Flags().BoolVar(&cfg.KeepTiles, "keep-tiles", cfg.KeepTiles, "keep downloaded tiles after stitching")
	root.Flags().BoolVar(&cfg.SkipExisting, "skip-existing", cfg.SkipExisting, "reuse tiles already present in the temp directory")

	if err := root.Execute(); err != nil {
		log.Error().Err(err).Msg("wplacesnap")
		os.Exit(1)
	}
}
