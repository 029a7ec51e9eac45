package platform

import (
	"errors"
	"fmt"
	"os"
	"strings"
)

// AutostartEntry describes the command launched at login.
type AutostartEntry struct {
	Name     string
	ExecPath string
	Args     []string
	Comment  string
}

// Service defines OS-specific helpers needed by the application.
type Service interface {
	ConfigDir() (string, error)
	EnableAutostart(entry AutostartEntry) error
	DisableAutostart(appName string) error
	AutostartEnabled(appName string) (bool, error)
}

type platformService struct{}

// NewService returns a platform-specific implementation.
func NewService() Service {
	return &platformService{}
}

// ConfigDir returns the OS-standard configuration directory.
func (service *platformService) ConfigDir() (string, error) {
	configDir, err := os.UserConfigDir()
	if err == nil && configDir != "" {
		return configDir, nil
	}

	homeDir, homeErr := os.UserHomeDir()
	if homeErr != nil {
		return "", fmt.Errorf("get config dir: %w", errors.Join(err, homeErr))
	}

	return fallbackConfigDir(homeDir), nil
}

func (entry AutostartEntry) validate() error {
	if strings.TrimSpace(entry.Name) == "" {
		return errors.New("app name is empty")
	}
	if entry.ExecPath == "" {
		return errors.New("exec path is empty")
	}
	return nil
}

// slug lower-cases appName and replaces spaces so it can name files.
func slug(appName string) string {
	name := strings.TrimSpace(appName)
	if name == "" {
		name = "pomodoro"
	}
	return strings.ReplaceAll(strings.ToLower(name), " ", "-")
}

// quoteArg wraps an argument containing spaces in double quotes.
func quoteArg(arg string) string {
	if strings.ContainsAny(arg, " \t") && !strings.HasPrefix(arg, `"`) {
		return `"` + arg + `"`
	}
	return arg
}

func commandLine(entry AutostartEntry) string {
	parts := make([]string, 0, len(entry.Args)+1)
	parts = append(parts, quoteArg(entry.ExecPath))
	for _, arg := range entry.Args {
		parts = append(parts, quoteArg(arg))
	}
	return strings.Join(parts, " ")
}
