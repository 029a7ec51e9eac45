//go:build linux

package platform

import (
	"fmt"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"pomodoro/internal/core/timekeeper"
)

// Mutter exposes idle time on the session bus for GNOME Wayland sessions,
// where xprintidle cannot see input.
var mutterIdleArgs = []string{
	"call", "--session",
	"--dest", "org.gnome.Mutter.IdleMonitor",
	"--object-path", "/org/gnome/Mutter/IdleMonitor/Core",
	"--method", "org.gnome.Mutter.IdleMonitor.GetIdletime",
}

type commandIdleProvider struct {
	name string
	path string
	args []string
}

func newIdleProvider() IdleProvider {
	if path, err := exec.LookPath("xprintidle"); err == nil {
		return &commandIdleProvider{name: "xprintidle", path: path}
	}
	if path, err := exec.LookPath("gdbus"); err == nil {
		return &commandIdleProvider{name: "gdbus", path: path, args: mutterIdleArgs}
	}
	return unsupportedIdleProvider{}
}

func (provider *commandIdleProvider) IdleDuration() (time.Duration, error) {
	output, err := exec.Command(provider.path, provider.args...).Output()
	if err != nil {
		if provider.name == "gdbus" {
			// No Mutter on this session bus.
			return 0, timekeeper.ErrIdleUnsupported
		}
		return 0, fmt.Errorf("%s: %w", provider.name, err)
	}
	return parseIdleMillis(string(output))
}

// parseIdleMillis accepts a bare millisecond count ("1234") or a gdbus reply
// ("(uint64 1234,)").
func parseIdleMillis(output string) (time.Duration, error) {
	value := strings.TrimSpace(output)
	value = strings.TrimPrefix(value, "(")
	value = strings.TrimSuffix(value, ")")
	value = strings.TrimSuffix(value, ",")
	value = strings.TrimPrefix(value, "uint64 ")
	value = strings.TrimSpace(value)

	idleMillis, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parse idle milliseconds %q: %w", strings.TrimSpace(output), err)
	}
	if idleMillis < 0 {
		idleMillis = 0
	}
	return time.Duration(idleMillis) * time.Millisecond, nil
}
