//go:build linux

package platform

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAutostartLinux(t *testing.T) {
	configDir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", configDir)
	service := NewService()

	enabled, err := service.AutostartEnabled("Pomodoro Timer")
	require.NoError(t, err)
	assert.False(t, enabled)

	entry := AutostartEntry{
		Name:     "Pomodoro Timer",
		ExecPath: "/opt/my apps/pomodoro",
		Args:     []string{"--config-dir", "/home/me/pomo"},
		Comment:  "Focus timer",
	}
	require.NoError(t, service.EnableAutostart(entry))

	path := filepath.Join(configDir, "autostart", "pomodoro-timer.desktop")
	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	content := string(raw)
	assert.Contains(t, content, "Name=Pomodoro Timer\n")
	assert.Contains(t, content, "Comment=Focus timer\n")
	assert.Contains(t, content, `Exec="/opt/my apps/pomodoro" --config-dir /home/me/pomo`+"\n")

	enabled, err = service.AutostartEnabled("Pomodoro Timer")
	require.NoError(t, err)
	assert.True(t, enabled)

	require.NoError(t, service.DisableAutostart("Pomodoro Timer"))
	assert.NoFileExists(t, path)
	require.NoError(t, service.DisableAutostart("Pomodoro Timer"))
}

func TestAutostartLinux_RejectsIncompleteEntry(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	service := NewService()

	assert.Error(t, service.EnableAutostart(AutostartEntry{Name: "pomodoro"}))
	assert.Error(t, service.EnableAutostart(AutostartEntry{ExecPath: "/usr/bin/pomodoro"}))
}
