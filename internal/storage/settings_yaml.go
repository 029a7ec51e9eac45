package storage

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"pomodoro/internal/core/model"

	"gopkg.in/yaml.v3"
)

const settingsFileName = "settings.yaml"

type yamlSettings struct {
	FocusMinutes      int  `yaml:"focus_minutes"`
	FocusSeconds      int  `yaml:"focus_seconds"`
	ShortBreakMinutes int  `yaml:"short_break_minutes"`
	ShortBreakSeconds int  `yaml:"short_break_seconds"`
	LongBreakMinutes  int  `yaml:"long_break_minutes"`
	LongBreakSeconds  int  `yaml:"long_break_seconds"`
	LongBreakAfter    int  `yaml:"long_break_after"`
	IdlePauseEnabled  bool `yaml:"idle_pause_enabled"`
	IdlePauseMinutes  int  `yaml:"idle_pause_minutes"`
}

// SettingsFile persists user preferences as YAML at a fixed path.
type SettingsFile struct {
	path string
}

// NewSettingsFile returns a settings store backed by path.
func NewSettingsFile(path string) *SettingsFile {
	return &SettingsFile{path: path}
}

// DefaultSettingsPath returns <user config dir>/<appName>/settings.yaml.
func DefaultSettingsPath(appName string) (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("resolve user config dir: %w", err)
	}
	return filepath.Join(configDir, appName, settingsFileName), nil
}

// SettingsPathFor returns the settings file location inside configDir.
func SettingsPathFor(configDir string) string {
	return filepath.Join(configDir, settingsFileName)
}

// Path returns the file location.
func (file *SettingsFile) Path() string {
	return file.path
}

// Load reads user preferences from YAML.
// If the file does not exist, default settings are returned. Fields that are
// missing or out of range keep their defaults.
func (file *SettingsFile) Load() (model.Settings, error) {
	settings := model.DefaultSettings()

	rawData, err := os.ReadFile(file.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return settings, nil
		}
		return settings, fmt.Errorf("read settings file: %w", err)
	}

	var fileData yamlSettings
	if err := yaml.Unmarshal(rawData, &fileData); err != nil {
		return settings, fmt.Errorf("parse settings yaml: %w", err)
	}

	applyYamlSettings(&settings, fileData)
	return settings, nil
}

// Save validates and writes user preferences to YAML.
func (file *SettingsFile) Save(settings model.Settings) error {
	if err := settings.Validate(); err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(file.path), 0o755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}

	fileData := yamlSettings{
		LongBreakAfter:   settings.LongBreakAfter,
		IdlePauseEnabled: settings.IdlePauseEnabled,
		IdlePauseMinutes: int(settings.IdlePauseAfter / time.Minute),
	}
	fileData.FocusMinutes, fileData.FocusSeconds = model.SplitClock(settings.Focus)
	fileData.ShortBreakMinutes, fileData.ShortBreakSeconds = model.SplitClock(settings.ShortBreak)
	fileData.LongBreakMinutes, fileData.LongBreakSeconds = model.SplitClock(settings.LongBreak)

	serialized, err := yaml.Marshal(fileData)
	if err != nil {
		return fmt.Errorf("marshal settings yaml: %w", err)
	}

	if err := os.WriteFile(file.path, serialized, 0o644); err != nil {
		return fmt.Errorf("write settings file: %w", err)
	}

	return nil
}

func applyYamlSettings(settings *model.Settings, fileData yamlSettings) {
	if value, ok := phaseDuration(fileData.FocusMinutes, fileData.FocusSeconds); ok {
		settings.Focus = value
	}
	if value, ok := phaseDuration(fileData.ShortBreakMinutes, fileData.ShortBreakSeconds); ok {
		settings.ShortBreak = value
	}
	if value, ok := phaseDuration(fileData.LongBreakMinutes, fileData.LongBreakSeconds); ok {
		settings.LongBreak = value
	}

	if fileData.LongBreakAfter >= 1 && fileData.LongBreakAfter <= model.MaxLongBreakAfter {
		settings.LongBreakAfter = fileData.LongBreakAfter
	}
	if fileData.IdlePauseMinutes >= 1 && fileData.IdlePauseMinutes <= model.MaxIdlePauseMinutes {
		settings.IdlePauseAfter = time.Duration(fileData.IdlePauseMinutes) * time.Minute
	}

	settings.IdlePauseEnabled = fileData.IdlePauseEnabled
}

func phaseDuration(minutes, seconds int) (time.Duration, bool) {
	if minutes > model.MaxPhaseMinutes {
		return 0, false
	}
	value, err := model.JoinClock(minutes, seconds)
	if err != nil || value <= 0 {
		return 0, false
	}
	return value, true
}
