package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadBuiltinThemes(t *testing.T) {
	loader := NewThemeLoader(t.TempDir())

	tests := []struct {
		name         string
		themeName    string
		expectedName string
	}{
		{name: "dark by full name", themeName: "elva-dark", expectedName: "elva-dark"},
		{name: "dark by alias", themeName: "dark", expectedName: "elva-dark"},
		{name: "light by full name", themeName: "elva-light", expectedName: "elva-light"},
		{name: "empty defaults to dark", themeName: "", expectedName: "elva-dark"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			theme, err := loader.LoadTheme(tt.themeName)
			require.NoError(t, err)
			assert.Equal(t, tt.expectedName, theme.Name)
			assert.NotEmpty(t, theme.Background)
			assert.NotEmpty(t, theme.User)
		})
	}
}

func TestLoadThemeUnknownFile(t *testing.T) {
	loader := NewThemeLoader(t.TempDir())
	_, err := loader.LoadTheme("does-not-exist")
	assert.Error(t, err)
}

func TestThemeFileRoundTrip(t *testing.T) {
	dir := t.TempDir()
	loader := NewThemeLoader(dir)

	custom := DarkTheme()
	custom.Name = "midnight"
	custom.User = "#123456"
	require.NoError(t, loader.SaveThemeToFile(custom, "midnight.yaml"))

	loaded, err := loader.LoadTheme("midnight")
	require.NoError(t, err)
	assert.Equal(t, "midnight", loaded.Name)
	assert.Equal(t, "#123456", loaded.User)

	themes, err := loader.ListAvailableThemes()
	require.NoError(t, err)
	assert.Contains(t, themes, "midnight")
	assert.Contains(t, themes, "elva-dark")
}
