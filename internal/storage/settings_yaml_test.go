package storage

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"pomodoro/internal/core/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSettingsFile_LoadMissingReturnsDefaults(t *testing.T) {
	file := NewSettingsFile(filepath.Join(t.TempDir(), "pomodoro", "settings.yaml"))

	settings, err := file.Load()
	require.NoError(t, err)
	assert.Equal(t, model.DefaultSettings(), settings)
}

func TestSettingsFile_SaveLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "settings.yaml")
	file := NewSettingsFile(path)

	settings := model.Settings{
		Focus:            50*time.Minute + 30*time.Second,
		ShortBreak:       45 * time.Second,
		LongBreak:        20 * time.Minute,
		LongBreakAfter:   3,
		IdlePauseEnabled: true,
		IdlePauseAfter:   10 * time.Minute,
	}
	require.NoError(t, file.Save(settings))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(raw), "focus_minutes: 50")
	assert.Contains(t, string(raw), "focus_seconds: 30")
	assert.Contains(t, string(raw), "short_break_minutes: 0")
	assert.Contains(t, string(raw), "idle_pause_minutes: 10")

	loaded, err := file.Load()
	require.NoError(t, err)
	assert.Equal(t, settings, loaded)
}

func TestSettingsFile_SaveRejectsInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.yaml")
	file := NewSettingsFile(path)

	settings := model.DefaultSettings()
	settings.LongBreakAfter = 0

	err := file.Save(settings)
	assert.ErrorIs(t, err, model.ErrInvalidConfig)
	assert.NoFileExists(t, path)
}

func TestSettingsFile_InvalidFieldsKeepDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.yaml")
	content := `focus_minutes: 300
short_break_minutes: 3
short_break_seconds: 75
long_break_minutes: 0
long_break_seconds: 40
long_break_after: 20
idle_pause_enabled: true
idle_pause_minutes: 0
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	settings, err := NewSettingsFile(path).Load()
	require.NoError(t, err)

	defaults := model.DefaultSettings()
	assert.Equal(t, defaults.Focus, settings.Focus)
	assert.Equal(t, defaults.ShortBreak, settings.ShortBreak)
	assert.Equal(t, 40*time.Second, settings.LongBreak)
	assert.Equal(t, defaults.LongBreakAfter, settings.LongBreakAfter)
	assert.True(t, settings.IdlePauseEnabled)
	assert.Equal(t, defaults.IdlePauseAfter, settings.IdlePauseAfter)
	assert.NoError(t, settings.Validate())
}

func TestSettingsFile_ParseErrorReturnsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.yaml")
	require.NoError(t, os.WriteFile(path, []byte("focus_minutes: [oops"), 0o644))

	settings, err := NewSettingsFile(path).Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse settings yaml")
	assert.Equal(t, model.DefaultSettings(), settings)
}

func TestDefaultSettingsPath(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("HOME", t.TempDir())
	t.Setenv("AppData", t.TempDir())

	path, err := DefaultSettingsPath("pomodoro")
	require.NoError(t, err)
	assert.Equal(t, "settings.yaml", filepath.Base(path))
	assert.Equal(t, "pomodoro", filepath.Base(filepath.Dir(path)))
}

func TestSettingsPathFor(t *testing.T) {
	dir := t.TempDir()
	assert.Equal(t, filepath.Join(dir, "settings.yaml"), SettingsPathFor(dir))
	assert.Equal(t, filepath.Join(dir, "history.db"), HistoryPathFor(dir))
}
