package cliconfig

import (
	"fmt"
	"strconv"
	"time"
)

// DefaultOutPath is where the stitched capture lands when -o is not given.
const DefaultOutPath = "wplace_capture.png"

// DefaultTempDir holds downloaded tiles between download and stitch.
const DefaultTempDir = "wplace_tiles"

// Config holds CLI configuration for wplacesnap.
type Config struct {
	URL     string
	OutPath string

	// BackendURL overrides the tile source template (two %d verbs, x then
	// y). Empty means the wplace backend.
	BackendURL string

	GridSize int

	Timeout time.Duration
	Delay   time.Duration
	Retries int

	BackgroundHex string

	TempDir      string
	KeepTiles    bool
	SkipExisting bool
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() Config {
	return Config{
		OutPath:       DefaultOutPath,
		GridSize:      5,
		Timeout:       10 * time.Second,
		Delay:         500 * time.Millisecond,
		Retries:       2,
		BackgroundHex: "#ffffff",
		TempDir:       DefaultTempDir,
	}
}

// Validate checks the configuration for errors and sets derived defaults.
func (c *Config) Validate() error {
	if c.URL == "" {
		return fmt.Errorf("url is required")
	}
	if c.GridSize < 1 {
		return fmt.Errorf("grid-size must be at least 1")
	}
	if c.Retries < 0 {
		return fmt.Errorf("retries must not be negative")
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive")
	}
	if c.Delay < 0 {
		return fmt.Errorf("delay must not be negative")
	}
	if c.OutPath == "" {
		c.OutPath = DefaultOutPath
	}
	if c.TempDir == "" {
		c.TempDir = DefaultTempDir
	}
	if c.BackgroundHex == "" {
		c.BackgroundHex = "#ffffff"
	}
	return nil
}

// configSetter helps apply configuration values while respecting flag
// precedence. It only applies values if the corresponding flag hasn't
// been explicitly set.
type configSetter struct {
	changed map[string]bool
}

// newConfigSetter creates a new setter with the given changed flags map.
func newConfigSetter(changed map[string]bool) *configSetter {
	return &configSetter{changed: changed}
}

// setString sets a string value if not empty and flag not changed.
func (s *configSetter) setString(flag, value string, dst *string) {
	if value == "" || s.changed[flag] {
		return
	}
	*dst = value
}

// setInt sets an int value if positive and flag not changed.
func (s *configSetter) setInt(flag string, value int, dst *int) {
	if value <= 0 || s.changed[flag] {
		return
	}
	*dst = value
}

// setIntPtr sets an int value from a pointer if not nil and flag not
// changed. Used for fields where zero is a meaningful setting.
func (s *configSetter) setIntPtr(flag string, value *int, dst *int) {
	if value == nil || *value < 0 || s.changed[flag] {
		return
	}
	*dst = *value
}

// setDuration parses and sets a duration from string if valid and flag
// not changed.
func (s *configSetter) setDuration(flag, value string, dst *time.Duration) error {
	if value == "" || s.changed[flag] {
		return nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return fmt.Errorf("parse %s: %w", flag, err)
	}
	*dst = d
	return nil
}

// setBool sets a bool value from a pointer if not nil and flag not changed.
func (s *configSetter) setBool(flag string, value *bool, dst *bool) {
	if value == nil || s.changed[flag] {
		return
	}
	*dst = *value
}

// setIntFromString parses a string to int and sets the destination.
// Zero is accepted here: retries=0 is a real setting.
// Used for environment variables that come as strings.
func (s *configSetter) setIntFromString(flag, value string, dst *int) error {
	if value == "" || s.changed[flag] {
		return nil
	}
	i, err := strconv.Atoi(value)
	if err != nil {
		return fmt.Errorf("parse %s: %w", flag, err)
	}
	if i < 0 {
		return nil
	}
	*dst = i
	return nil
}

// setBoolFromString parses a string to bool and sets the destination.
// Accepts "true", "1" as true, anything else as false.
// Used for environment variables that come as strings.
func (s *configSetter) setBoolFromString(flag, value string, dst *bool) {
	if value == "" || s.changed[flag] {
		return
	}
	*dst = value == "true" || value == "1"
}
