// Package config provides configuration management for promptscope.
//
// Two kinds of configuration live here: Settings, the small user-facing
// knob set loaded from an optional YAML file, and Analysis, the immutable
// heuristic rule data (thresholds, weights, vocabularies, regex tables)
// built once per process and passed explicitly into each component.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// DefaultPort is the HTTP port the worker listens on.
const DefaultPort = 7341

// DefaultDays is the lookback window applied when a query does not name one.
const DefaultDays = 7

// Settings are the user-tunable knobs, loaded from SettingsPath.
type Settings struct {
	Port        int    `yaml:"port"`
	Days        int    `yaml:"days"`
	HistoryFile string `yaml:"history_file"`
	ProjectsDir string `yaml:"projects_dir"`
}

// Paths locates the log sources the pipeline reads.
type Paths struct {
	HistoryFile string
	ProjectsDir string
}

// DataDir returns the promptscope data directory (~/.promptscope).
func DataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	return filepath.Join(home, ".promptscope")
}

// SettingsPath returns the YAML settings file path.
func SettingsPath() string {
	return filepath.Join(DataDir(), "settings.yaml")
}

// DefaultSettings returns settings pointing at the conventional Claude Code
// data locations under the user's home directory.
func DefaultSettings() Settings {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	return Settings{
		Port:        DefaultPort,
		Days:        DefaultDays,
		HistoryFile: filepath.Join(home, ".claude", "history.jsonl"),
		ProjectsDir: filepath.Join(home, ".claude", "projects"),
	}
}

// LoadSettings reads the YAML file at path. A missing file returns the
// defaults, not an error; a malformed file is an error.
func LoadSettings(path string) (Settings, error) {
	s := DefaultSettings()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return s, nil
		}
		return s, fmt.Errorf("read settings: %w", err)
	}
	if err := yaml.Unmarshal(data, &s); err != nil {
		return DefaultSettings(), fmt.Errorf("parse settings: %w", err)
	}
	if s.Port <= 0 {
		s.Port = DefaultPort
	}
	if s.Days <= 0 {
		s.Days = DefaultDays
	}
	return s, nil
}

// SourcePaths derives the log source paths from settings.
func (s Settings) SourcePaths() Paths {
	return Paths{HistoryFile: s.HistoryFile, ProjectsDir: s.ProjectsDir}
}
