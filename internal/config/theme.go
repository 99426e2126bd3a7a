package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Theme defines the color palette used by the TUI. Colors are tview color
// names or hex strings ("#rrggbb").
type Theme struct {
	Name       string `yaml:"name"`
	Background string `yaml:"background"`
	Foreground string `yaml:"foreground"`

	// Transcript bubble colors by message kind
	User             string `yaml:"user"`
	Assistant        string `yaml:"assistant"`
	Welcome          string `yaml:"welcome"`
	System           string `yaml:"system"`
	Edit             string `yaml:"edit"`
	DirectAutomation string `yaml:"direct_automation"`

	// Status surfaces
	Info    string `yaml:"info"`
	Warning string `yaml:"warning"`
	Error   string `yaml:"error"`
	Success string `yaml:"success"`
}

// ThemeLoader handles loading themes from disk with builtin fallbacks
type ThemeLoader struct {
	themesDir string
}

// NewThemeLoader creates a new theme loader
func NewThemeLoader(themesDir string) *ThemeLoader {
	if themesDir == "" {
		themesDir = DefaultThemesDir()
	}
	return &ThemeLoader{themesDir: themesDir}
}

// DarkTheme returns the builtin dark theme
func DarkTheme() *Theme {
	return &Theme{
		Name:             "elva-dark",
		Background:       "#101421",
		Foreground:       "white",
		User:             "#5eb1ff",
		Assistant:        "white",
		Welcome:          "#8ab4ff",
		System:           "#4dd0e1",
		Edit:             "#81c784",
		DirectAutomation: "#ffb74d",
		Info:             "#5eb1ff",
		Warning:          "yellow",
		Error:            "red",
		Success:          "green",
	}
}

// LightTheme returns the builtin light theme
func LightTheme() *Theme {
	return &Theme{
		Name:             "elva-light",
		Background:       "#f4f6fb",
		Foreground:       "black",
		User:             "#1a56b0",
		Assistant:        "black",
		Welcome:          "#3b6fd4",
		System:           "#00838f",
		Edit:             "#2e7d32",
		DirectAutomation: "#e65100",
		Info:             "#1a56b0",
		Warning:          "#9a6700",
		Error:            "#b00020",
		Success:          "#2e7d32",
	}
}

// LoadTheme resolves a theme by name: builtin names first, then
// "<name>.yaml" in the themes directory.
func (tl *ThemeLoader) LoadTheme(name string) (*Theme, error) {
	switch strings.TrimSpace(name) {
	case "", "elva-dark", "dark":
		return DarkTheme(), nil
	case "elva-light", "light":
		return LightTheme(), nil
	}

	return tl.LoadThemeFromFile(name + ".yaml")
}

// LoadThemeFromFile loads a theme from a YAML file
func (tl *ThemeLoader) LoadThemeFromFile(filename string) (*Theme, error) {
	path := filepath.Join(tl.themesDir, filename)
	if !fileExists(path) {
		path = filename
		if !fileExists(path) {
			return nil, fmt.Errorf("theme file not found: %s", filename)
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read theme file: %w", err)
	}

	var wrapper struct {
		ElvaTUI *Theme `yaml:"elvaTUI"`
	}
	if err := yaml.Unmarshal(data, &wrapper); err != nil {
		return nil, fmt.Errorf("failed to parse theme file: %w", err)
	}
	if wrapper.ElvaTUI == nil {
		return nil, fmt.Errorf("invalid theme file: missing elvaTUI section")
	}

	return wrapper.ElvaTUI, nil
}

// SaveThemeToFile saves a theme configuration to a YAML file
func (tl *ThemeLoader) SaveThemeToFile(theme *Theme, filename string) error {
	if err := os.MkdirAll(tl.themesDir, 0755); err != nil {
		return fmt.Errorf("failed to create themes directory: %w", err)
	}

	wrapper := struct {
		ElvaTUI *Theme `yaml:"elvaTUI"`
	}{ElvaTUI: theme}

	data, err := yaml.Marshal(wrapper)
	if err != nil {
		return fmt.Errorf("failed to marshal theme: %w", err)
	}

	return os.WriteFile(filepath.Join(tl.themesDir, filename), data, 0644)
}

// ListAvailableThemes returns builtin theme names plus theme files on disk
func (tl *ThemeLoader) ListAvailableThemes() ([]string, error) {
	themes := []string{"elva-dark", "elva-light"}

	entries, err := os.ReadDir(tl.themesDir)
	if err != nil {
		if os.IsNotExist(err) {
			return themes, nil
		}
		return nil, fmt.Errorf("failed to read themes directory: %w", err)
	}

	for _, entry := range entries {
		if !entry.IsDir() && filepath.Ext(entry.Name()) == ".yaml" {
			themes = append(themes, strings.TrimSuffix(entry.Name(), ".yaml"))
		}
	}

	return themes, nil
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
