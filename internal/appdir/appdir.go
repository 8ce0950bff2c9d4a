// Package appdir resolves the on-disk directory update_card_data writes its
// downloaded set data to by default, following the same XDG_DATA_HOME/HOME
// fallback the original's dbs/folders.rs::save_directory implements.
package appdir

import (
	"os"
	"path/filepath"
)

// AppName is the directory component every resolved path is suffixed with,
// mirroring the original's APPNAME_DIRECTORY constant.
const AppName = "mtg-organizer"

// DataDir returns the directory the card database should live in by
// default: $XDG_DATA_HOME/mtg-organizer if XDG_DATA_HOME is set, otherwise
// $HOME/.local/share/mtg-organizer. The directory (and any missing parents)
// is created if it doesn't already exist.
func DataDir() (string, error) {
	var base string
	if xdg := os.Getenv("XDG_DATA_HOME"); xdg != "" {
		base = xdg
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		base = filepath.Join(home, ".local", "share")
	}

	dir := filepath.Join(base, AppName)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	return dir, nil
}
