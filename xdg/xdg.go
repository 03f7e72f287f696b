// Package xdg resolves the per-user directories wallrus reads palettes from
// and writes images to.
package xdg

import (
	"fmt"
	"os"
	"path/filepath"
)

// DataHome returns $XDG_DATA_HOME, falling back to ~/.local/share.
func DataHome() (string, error) {
	return fromEnv("XDG_DATA_HOME", ".local", "share")
}

// PicturesDir returns $XDG_PICTURES_DIR, falling back to ~/Pictures.
func PicturesDir() (string, error) {
	return fromEnv("XDG_PICTURES_DIR", "Pictures")
}

func fromEnv(key string, fallback ...string) (string, error) {
	// XDG variables must be absolute; relative values are ignored
	if dir := os.Getenv(key); dir != "" && filepath.IsAbs(dir) {
		return dir, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("unable to find home directory for %s: %w", key, err)
	}
	return filepath.Join(append([]string{home}, fallback...)...), nil
}
