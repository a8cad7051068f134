package cliconfig

import (
	"os"
	"path/filepath"

	toml "github.com/pelletier/go-toml/v2"
)

// FileConfig mirrors Config but uses strings for durations to make TOML
// friendly. Pointer fields distinguish "absent" from a zero setting.
type FileConfig struct {
	URL           string `toml:"url"`
	OutPath       string `toml:"out"`
	BackendURL    string `toml:"backend_url"`
	GridSize      int    `toml:"grid_size"`
	Timeout       string `toml:"timeout"`
	Delay         string `toml:"delay"`
	Retries       *int   `toml:"retries"`
	BackgroundHex string `toml:"bg_hex"`
	TempDir       string `toml:"temp_dir"`
	KeepTiles     *bool  `toml:"keep_tiles"`
	SkipExisting  *bool  `toml:"skip_existing"`
}

// LoadFileConfig reads and parses a TOML config file from the given path.
func LoadFileConfig(path string) (FileConfig, error) {
	var fc FileConfig
	b, err := os.ReadFile(path)
	if err != nil {
		return fc, err
	}
	if err := toml.Unmarshal(b, &fc); err != nil {
		return fc, err
	}
	return fc, nil
}

// DefaultConfigPath returns the default configuration file path.
// Returns ~/.wplacesnap/config.toml if user home directory is accessible.
func DefaultConfigPath() string {
	if h, err := os.UserHomeDir(); err == nil {
		return filepath.Join(h, ".wplacesnap", "config.toml")
	}
	return ""
}

// ApplyFileConfig applies configuration from a file to the Config struct.
// It respects flags that have been explicitly set (changed map).
func ApplyFileConfig(cfg *Config, fc FileConfig, changed map[string]bool) error {
	s := newConfigSetter(changed)

	s.setString("url", fc.URL, &cfg.URL)
	s.setString("out", fc.OutPath, &cfg.OutPath)
	s.setString("backend-url", fc.BackendURL, &cfg.BackendURL)
	s.setString("bg-hex", fc.BackgroundHex, &cfg.BackgroundHex)
	s.setString("temp-dir", fc.TempDir, &cfg.TempDir)

	s.setInt("grid-size", fc.GridSize, &cfg.GridSize)
	s.setIntPtr("retries", fc.Retries, &cfg.Retries)

	if err := s.setDuration("timeout", fc.Timeout, &cfg.Timeout); err != nil {
		return err
	}
	if err := s.setDuration("delay", fc.Delay, &cfg.Delay); err != nil {
		return err
	}

	s.setBool("keep-tiles", fc.KeepTiles, &cfg.KeepTiles)
	s.setBool("skip-existing", fc.SkipExisting, &cfg.SkipExisting)

	return nil
}

// FileExists checks if a file exists at the given path.
func FileExists(p string) bool {
	_, err := os.Stat(p)
	return err == nil
}
