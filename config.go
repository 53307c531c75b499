package main

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"time"

	"gopkg.in/yaml.v3"
)

const defaultConfigDir = ".logpuzzle"

//go:embed config/settings.yaml
var defaultSettings []byte

// ConfigOverrides holds command line values that take precedence over the settings file
type ConfigOverrides struct {
	SettingsPath *string
	Filter       *string
	Markdown     *bool
	MetricsFile  *string
	Debug        *bool
}

// DownloadSettings configures the image downloader
type DownloadSettings struct {
	Timeout   time.Duration `yaml:"timeout"`
	UserAgent string        `yaml:"user_agent"`
	Markdown  bool          `yaml:"markdown"`
}

// LoggingSettings configures the logger
type LoggingSettings struct {
	Level      string `yaml:"level"`
	File       string `yaml:"file"`
	MaxSize    int    `yaml:"max_size"`
	MaxBackups int    `yaml:"max_backups"`
	MaxAge     int    `yaml:"max_age"`
	Compress   bool   `yaml:"compress"`
}

// Settings represents the YAML configuration structure
type Settings struct {
	Scheme        string           `yaml:"scheme"`
	LogSuffix     string           `yaml:"log_suffix"`
	PuzzlePattern string           `yaml:"puzzle_pattern"`
	KeyPattern    string           `yaml:"key_pattern"`
	Filter        string           `yaml:"filter"`
	Download      DownloadSettings `yaml:"download"`
	Logging       LoggingSettings  `yaml:"logging"`
	MetricsFile   string           `yaml:"metrics_file"`

	puzzleRe *regexp.Regexp
	keyRe    *regexp.Regexp
	filter   *URLFilter
}

// GetConfigPath returns the full path to a config file
func GetConfigPath(filename string) string {
	return filepath.Join(defaultConfigDir, filename)
}

// LoadSettings resolves settings from an explicit file, the default
// location, or the embedded defaults, then applies overrides and validates.
func LoadSettings(overrides *ConfigOverrides) (*Settings, error) {
	var (
		settings *Settings
		err      error
	)
	if overrides != nil && overrides.SettingsPath != nil {
		// Explicit settings file must exist
		settings, err = loadSettingsRequired(*overrides.SettingsPath)
	} else {
		settings, err = loadSettings(GetConfigPath("settings.yaml"))
	}
	if err != nil {
		return nil, fmt.Errorf("loading settings: %w", err)
	}

	settings.applyOverrides(overrides)

	if err := settings.Validate(); err != nil {
		return nil, err
	}
	return settings, nil
}

// loadSettings loads settings from YAML file with fallback to embedded defaults
func loadSettings(settingsPath string) (*Settings, error) {
	data, err := os.ReadFile(settingsPath)
	if errors.Is(err, fs.ErrNotExist) {
		return parseSettings(defaultSettings)
	}
	if err != nil {
		return nil, err
	}
	return parseSettings(data)
}

// loadSettingsRequired loads settings from YAML file, failing if file doesn't exist
func loadSettingsRequired(settingsPath string) (*Settings, error) {
	data, err := os.ReadFile(settingsPath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, NewFileError(settingsPath, err)
		}
		return nil, err
	}
	return parseSettings(data)
}

// parseSettings decodes data on top of the embedded defaults so a partial
// file only needs the keys it changes.
func parseSettings(data []byte) (*Settings, error) {
	var settings Settings
	if err := yaml.Unmarshal(defaultSettings, &settings); err != nil {
		return nil, fmt.Errorf("parsing embedded settings: %w", err)
	}
	if err := yaml.Unmarshal(data, &settings); err != nil {
		return nil, fmt.Errorf("parsing settings YAML: %w", err)
	}
	return &settings, nil
}

func (s *Settings) applyOverrides(o *ConfigOverrides) {
	if o == nil {
		return
	}
	if o.Filter != nil {
		s.Filter = *o.Filter
	}
	if o.Markdown != nil {
		s.Download.Markdown = *o.Markdown
	}
	if o.MetricsFile != nil {
		s.MetricsFile = *o.MetricsFile
	}
	if o.Debug != nil && *o.Debug {
		s.Logging.Level = "debug"
	}
}

// Validate compiles the configured patterns and filter.
func (s *Settings) Validate() error {
	if s.Scheme == "" {
		return NewConfigError("scheme", s.Scheme)
	}

	puzzleRe, err := regexp.Compile(s.PuzzlePattern)
	if err != nil {
		return fmt.Errorf("%w: puzzle_pattern: %v", ErrConfigInvalid, err)
	}

	keyRe, err := regexp.Compile(s.KeyPattern)
	if err != nil {
		return fmt.Errorf("%w: key_pattern: %v", ErrConfigInvalid, err)
	}
	if keyRe.NumSubexp() < 1 {
		return NewConfigError("key_pattern", s.KeyPattern)
	}

	filter, err := NewURLFilter(s.Filter)
	if err != nil {
		return fmt.Errorf("%w: filter: %v", ErrConfigInvalid, err)
	}

	switch s.Logging.Level {
	case "", "info", "debug":
	default:
		return NewConfigError("logging.level", s.Logging.Level)
	}

	s.puzzleRe = puzzleRe
	s.keyRe = keyRe
	s.filter = filter
	return nil
}

// DefaultSettings returns the validated embedded settings.
func DefaultSettings() *Settings {
	settings, err := parseSettings(nil)
	if err != nil {
		panic(err)
	}
	if err := settings.Validate(); err != nil {
		panic(err)
	}
	return settings
}
