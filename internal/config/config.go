package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/justyntemme/dragexport/internal/debug"
)

// Config holds all user-configurable settings loaded from config.toml
type Config struct {
	Drag    DragConfig    `toml:"drag"`
	Staging StagingConfig `toml:"staging"`
	Bridge  BridgeConfig  `toml:"bridge"`
	Window  WindowConfig  `toml:"window"`
	Hotkeys HotkeysConfig `toml:"hotkeys"`
}

// DragConfig holds native drag settings
type DragConfig struct {
	AllowedEffects []string `toml:"allowed_effects"` // "copy" | "move"
}

// StagingConfig holds temp file settings
type StagingConfig struct {
	Dir          string   `toml:"dir"` // Empty = <os temp>/dragexport
	Prefix       string   `toml:"prefix"`
	StaleAfter   Duration `toml:"stale_after"`
	SweepOnStart bool     `toml:"sweep_on_start"`
}

// BridgeConfig holds websocket bridge settings
type BridgeConfig struct {
	Listen  string `toml:"listen"`
	Channel string `toml:"channel"`
}

// WindowConfig holds settings for the drag-out window
type WindowConfig struct {
	Title         string `toml:"title"`
	Width         int    `toml:"width"`  // dp
	Height        int    `toml:"height"` // dp
	ThumbnailSize int    `toml:"thumbnail_size"`
}

// Duration is a time.Duration written as "24h" in TOML.
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// Manager loads the configuration and hands out copies of it
type Manager struct {
	mu       sync.RWMutex
	config   *Config
	path     string
	parseErr error // Stores parsing error if config failed to load
}

// NewManager creates a configuration manager for the default config path
func NewManager() *Manager {
	return NewManagerAt(ConfigPath())
}

// NewManagerAt creates a configuration manager for a specific file
func NewManagerAt(path string) *Manager {
	return &Manager{
		config: DefaultConfig(),
		path:   path,
	}
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		Drag: DragConfig{
			AllowedEffects: []string{"copy", "move"},
		},
		Staging: StagingConfig{
			Prefix:       "dragexport-",
			StaleAfter:   Duration{24 * time.Hour},
			SweepOnStart: true,
		},
		Bridge: BridgeConfig{
			Listen:  "127.0.0.1:47800",
			Channel: "snipwise_drag_export",
		},
		Window: WindowConfig{
			Title:         "Drag Export",
			Width:         360,
			Height:        320,
			ThumbnailSize: 192,
		},
		Hotkeys: DefaultHotkeys(),
	}
}

// ConfigPath returns the config file path: ~/.config/dragexport/config.toml
// This is consistent across all platforms (Windows, macOS, Linux)
func ConfigPath() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "dragexport", "config.toml")
}

// Path returns the file this manager reads and writes
func (m *Manager) Path() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.path
}

// Load reads the configuration from the config file
// If the file doesn't exist, creates it with defaults
// If parsing fails, stores the error and returns defaults
func (m *Manager) Load() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.parseErr = nil

	configDir := filepath.Dir(m.path)
	if err := os.MkdirAll(configDir, 0o755); err != nil {
		debug.Warn(debug.CONFIG, "failed to create directory %s: %v", configDir, err)
		return err
	}

	cfg := DefaultConfig()
	md, err := toml.DecodeFile(m.path, cfg)
	if errors.Is(err, os.ErrNotExist) {
		debug.Log(debug.CONFIG, "creating default config at %s", m.path)
		m.config = DefaultConfig()
		return m.saveUnlocked()
	}
	if err != nil {
		var perr toml.ParseError
		if errors.As(err, &perr) {
			// Store error for display, use defaults
			debug.Warn(debug.CONFIG, "TOML parse error: %v", err)
			m.parseErr = err
			m.config = DefaultConfig()
			return nil
		}
		debug.Warn(debug.CONFIG, "failed to read %s: %v", m.path, err)
		return err
	}

	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		m.parseErr = fmt.Errorf("unknown config keys: %v", undecoded)
		debug.Log(debug.CONFIG, "%v", m.parseErr)
	}
	if err := validate(cfg); err != nil {
		m.parseErr = err
		m.config = DefaultConfig()
		return nil
	}

	m.config = cfg
	return nil
}

func validate(cfg *Config) error {
	for _, e := range cfg.Drag.AllowedEffects {
		switch strings.ToLower(strings.TrimSpace(e)) {
		case "copy", "move":
		default:
			return fmt.Errorf("drag.allowed_effects: %q is not one of copy, move", e)
		}
	}
	if cfg.Staging.StaleAfter.Duration < 0 {
		return fmt.Errorf("staging.stale_after must not be negative")
	}
	if cfg.Bridge.Channel == "" {
		return fmt.Errorf("bridge.channel must not be empty")
	}
	if cfg.Window.ThumbnailSize <= 0 {
		return fmt.Errorf("window.thumbnail_size must be positive")
	}
	return nil
}

// saveUnlocked saves config without acquiring lock (caller must hold lock)
func (m *Manager) saveUnlocked() error {
	f, err := os.Create(m.path)
	if err != nil {
		return err
	}
	if err := toml.NewEncoder(f).Encode(m.config); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// Get returns a copy of the current configuration
func (m *Manager) Get() Config {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.config == nil {
		return *DefaultConfig()
	}
	return *m.config
}

// ParseError returns the parsing error if config failed to load
func (m *Manager) ParseError() error {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.parseErr
}
