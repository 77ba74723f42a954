package workspace

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/afero"
)

// SettingsDir is the per-folder settings directory.
const SettingsDir = ".ahriknow"

const settingsFile = "config.json"

// Settings are stored per opened folder.
type Settings struct {
	Token   string `json:"token"`
	Project string `json:"project"`
}

// SettingsPath returns the settings file for root.
func SettingsPath(root string) string {
	return filepath.Join(root, SettingsDir, settingsFile)
}

// LoadSettings reads the settings of root, writing defaults first if the
// file does not exist.
func LoadSettings(afs afero.Fs, root string) (Settings, error) {
	path := SettingsPath(root)

	data, err := afero.ReadFile(afs, path)
	if errors.Is(err, os.ErrNotExist) {
		var defaults Settings
		if err := SaveSettings(afs, root, defaults); err != nil {
			return Settings{}, err
		}
		return defaults, nil
	}
	if err != nil {
		return Settings{}, err
	}

	var s Settings
	if err := json.Unmarshal(data, &s); err != nil {
		return Settings{}, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return s, nil
}

// SaveSettings writes s as indented JSON.
func SaveSettings(afs afero.Fs, root string, s Settings) error {
	path := SettingsPath(root)
	if err := afs.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create settings directory: %w", err)
	}

	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return err
	}
	return afero.WriteFile(afs, path, data, 0644)
}
