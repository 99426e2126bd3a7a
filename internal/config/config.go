package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"
)

// Config holds all configuration for the Elva terminal client
type Config struct {
	// BackendURL is the base URL of the Elva AI backend (without /api suffix)
	BackendURL string `json:"backend_url"`

	// UserID identifies this user on the backend
	UserID string `json:"user_id"`

	// Timeout applies to every backend HTTP call (Go duration string)
	Timeout string `json:"timeout"`

	// CallbackAddr is the loopback address the OAuth redirect listener binds to
	CallbackAddr string `json:"callback_addr"`

	// Theme selects the active theme name (e.g. "elva-dark", "elva-light")
	Theme string `json:"theme"`

	// CustomThemeDir overrides the default themes directory (empty = default)
	CustomThemeDir string `json:"custom_theme_dir"`

	// ExportDir is where chat exports are written (empty = current directory)
	ExportDir string `json:"export_dir"`

	// StorePath overrides the local settings database path (empty = default)
	StorePath string `json:"store_path"`

	// Logging
	LogFile string `json:"log_file"`

	// Keyboard shortcuts
	Keys KeyBindings `json:"keys"`
}

// KeyBindings defines keyboard shortcuts for the TUI
type KeyBindings struct {
	NewChat      string `json:"new_chat"`
	ExportChat   string `json:"export_chat"`
	ConnectGmail string `json:"connect_gmail"`
	GmailDebug   string `json:"gmail_debug"`
	ToggleTheme  string `json:"toggle_theme"`
	Help         string `json:"help"`
	Quit         string `json:"quit"`
}

// DefaultConfig returns a Config with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		BackendURL:   "http://localhost:8001",
		UserID:       "default_user",
		Timeout:      "30s",
		CallbackAddr: "127.0.0.1:8765",
		Theme:        "elva-dark",
		Keys:         DefaultKeyBindings(),
	}
}

// DefaultKeyBindings returns default keyboard shortcuts
func DefaultKeyBindings() KeyBindings {
	return KeyBindings{
		NewChat:      "ctrl+n",
		ExportChat:   "ctrl+e",
		ConnectGmail: "ctrl+g",
		GmailDebug:   "ctrl+d",
		ToggleTheme:  "ctrl+t",
		Help:         "f1",
		Quit:         "ctrl+c",
	}
}

// LoadConfig loads configuration from file, falling back to defaults
func LoadConfig(configPath string) (*Config, error) {
	cfg := DefaultConfig()

	if configPath != "" {
		if data, err := os.ReadFile(configPath); err == nil {
			if err := json.Unmarshal(data, cfg); err != nil {
				return nil, err
			}
		}
	}

	return cfg, nil
}

// SaveConfig saves the configuration to a file
func (c *Config) SaveConfig(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

// GetTimeout returns the parsed backend call timeout
func (c *Config) GetTimeout() time.Duration {
	if c.Timeout != "" {
		if d, err := time.ParseDuration(c.Timeout); err == nil {
			return d
		}
	}
	return 30 * time.Second
}

// DefaultConfigPath returns the default configuration file path
func DefaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "elva", "config.json")
}

// DefaultStorePath returns the default local settings database path
func DefaultStorePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "elva", "elva.sqlite3")
}

// DefaultThemesDir returns the default themes directory path
func DefaultThemesDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "elva", "themes")
}

// DefaultLogDir returns the default log directory path
func DefaultLogDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "elva")
}
