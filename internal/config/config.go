// Package config loads user settings from a TOML file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
)

const (
	DefaultPort       = 8888
	DefaultScheme     = "canvasboard"
	DefaultBoard      = "default"
	DefaultAutosave   = 30 * time.Second
	defaultFileName   = ".canvasboard.toml"
	defaultDataDir    = ".canvasboard"
	defaultDBName     = "boards.db"
	envConfigPath     = "CANVASBOARD_CONFIG"
	defaultThrottle   = 33 * time.Millisecond
	minCursorThrottle = 16 * time.Millisecond
)

// Duration lets durations be written as "30s" in the file.
type Duration struct{ time.Duration }

func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

func (d Duration) MarshalText() ([]byte, error) { return []byte(d.String()), nil }

type Config struct {
	Name           string   `toml:"name"`
	Color          string   `toml:"color"`
	Port           int      `toml:"port"`
	Scheme         string   `toml:"scheme"`
	Database       string   `toml:"database"`
	Board          string   `toml:"board"`
	CursorThrottle Duration `toml:"cursor_throttle"`
	// Autosave of zero turns autosave off.
	Autosave Duration `toml:"autosave"`
	Discover bool     `toml:"discover"`
}

// Default returns the settings used when no file exists.
func Default() Config {
	db := defaultDBName
	if home, err := os.UserHomeDir(); err == nil {
		db = filepath.Join(home, defaultDataDir, defaultDBName)
	}
	return Config{
		Port:           DefaultPort,
		Scheme:         DefaultScheme,
		Database:       db,
		Board:          DefaultBoard,
		CursorThrottle: Duration{defaultThrottle},
		Autosave:       Duration{DefaultAutosave},
		Discover:       true,
	}
}

// Path returns the config file location: $CANVASBOARD_CONFIG if set, else
// ~/.canvasboard.toml.
func Path() (string, error) {
	if p := os.Getenv(envConfigPath); p != "" {
		return p, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, defaultFileName), nil
}

// Load reads path over the defaults. A missing file is not an error.
func Load(path string) (Config, error) {
	cfg := Default()
	md, err := toml.DecodeFile(path, &cfg)
	if errors.Is(err, fs.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return cfg, fmt.Errorf("reading %s: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return cfg, fmt.Errorf("reading %s: unknown keys %v", path, undecoded)
	}
	return cfg, cfg.Validate()
}

func (c Config) Validate() error {
	if c.Port < 0 || c.Port > 65535 {
		return fmt.Errorf("port %d out of range", c.Port)
	}
	if c.Scheme == "" {
		return errors.New("scheme must not be empty")
	}
	if c.Board == "" {
		return errors.New("board must not be empty")
	}
	if c.CursorThrottle.Duration < minCursorThrottle {
		return fmt.Errorf("cursor_throttle must be at least %s", minCursorThrottle)
	}
	if c.Autosave.Duration < 0 {
		return errors.New("autosave must not be negative")
	}
	return nil
}

// Write saves the config, creating parent directories as needed.
func Write(path string, c Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	defer f.Close()
	if err := toml.NewEncoder(f).Encode(c); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}
