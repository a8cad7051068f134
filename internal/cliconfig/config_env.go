package cliconfig

import "os"

// ApplyEnvConfig applies configuration from environment variables
// (WPLACESNAP_*). It respects flags that have been explicitly set
// (changed map). Returns error if any environment variable has an
// invalid format.
func ApplyEnvConfig(cfg *Config, changed map[string]bool) error {
	s := newConfigSetter(changed)

	s.setString("url", os.Getenv("WPLACESNAP_URL"), &cfg.URL)
	s.setString("out", os.Getenv("WPLACESNAP_OUT"), &cfg.OutPath)
	s.setString("backend-url", os.Getenv("WPLACESNAP_BACKEND_URL"), &cfg.BackendURL)
	s.setString("bg-hex", os.Getenv("WPLACESNAP_BG_HEX"), &cfg.BackgroundHex)
	s.setString("temp-dir", os.Getenv("WPLACESNAP_TEMP_DIR"), &cfg.TempDir)

	if err := s.setIntFromString("grid-size", os.Getenv("WPLACESNAP_GRID_SIZE"), &cfg.GridSize); err != nil {
		return err
	}
	if err := s.setIntFromString("retries", os.Getenv("WPLACESNAP_RETRIES"), &cfg.Retries); err != nil {
		return err
	}

	if err := s.setDuration("timeout", os.Getenv("WPLACESNAP_TIMEOUT"), &cfg.Timeout); err != nil {
		return err
	}
	if err := s.setDuration("delay", os.Getenv("WPLACESNAP_DELAY"), &cfg.Delay); err != nil {
		return err
	}

	s.setBoolFromString("keep-tiles", os.Getenv("WPLACESNAP_KEEP_TILES"), &cfg.KeepTiles)
	s.setBoolFromString("skip-existing", os.Getenv("WPLACESNAP_SKIP_EXISTING"), &cfg.SkipExisting)

	return nil
}
