package config

import (
	"errors"
	"io/fs"
	"log/slog"
)

// DefaultProjectConfigFilename is the sidecar name used when a descriptor does not set one.
const DefaultProjectConfigFilename = ".mph-config"

// Sidecar keys.
const (
	KeyName          = "name"
	KeyEmoji         = "emoji"
	KeyHiddenFiles   = "hidden_files"
	KeyHiddenFolders = "hidden_folders"
)

// ProjectConfig is the sidecar configuration of one project.
type ProjectConfig struct {
	Values
}

// Name returns the display name, or def.
func (p ProjectConfig) Name(def string) string {
	return p.String(KeyName, def)
}

// Emoji returns the project emoji, or def.
func (p ProjectConfig) Emoji(def string) string {
	return p.String(KeyEmoji, def)
}

// HiddenFiles returns the hidden file entries of a backend section
// (for example "markdown").
func (p ProjectConfig) HiddenFiles(section string) []string {
	return p.Strings(section + "." + KeyHiddenFiles)
}

// HiddenFolders returns the hidden folder entries of a backend section.
func (p ProjectConfig) HiddenFolders(section string) []string {
	return p.Strings(section + "." + KeyHiddenFolders)
}

// LoadProjectConfig reads a sidecar file. A missing file yields an empty
// configuration without logging; a malformed file is logged and also
// yields an empty configuration.
func LoadProjectConfig(path string, log *slog.Logger) ProjectConfig {
	values, err := DecodeFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return ProjectConfig{Values: Values{}}
		}
		if log != nil {
			log.Warn("ignoring unreadable project config", "path", path, "error", err)
		}
		return ProjectConfig{Values: Values{}}
	}
	return ProjectConfig{Values: values}
}
