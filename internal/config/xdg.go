package config

import (
	"path/filepath"

	"github.com/adrg/xdg"
)

// ConfigDir returns the XDG-compliant config directory for accman
// Typically ~/.config/accman/ on Linux
func ConfigDir() string {
	return filepath.Join(xdg.ConfigHome, "accman")
}

// ConfigPath returns the full path to the JSON5 config file
func ConfigPath() string {
	return filepath.Join(ConfigDir(), "config.json5")
}

// TOMLPath returns the path of the alternative TOML config file
func TOMLPath() string {
	return filepath.Join(ConfigDir(), "config.toml")
}

// HistoryPath returns where the interactive shell keeps its line history
// Typically ~/.local/state/accman/history on Linux
func HistoryPath() string {
	return filepath.Join(xdg.StateHome, "accman", "history")
}
