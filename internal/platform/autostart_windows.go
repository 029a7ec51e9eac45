//go:build windows

package platform

import (
	"fmt"
	"os/exec"
	"path/filepath"
	"strings"
)

const registryRunKey = `HKCU\Software\Microsoft\Windows\CurrentVersion\Run`

func (service *platformService) EnableAutostart(entry AutostartEntry) error {
	if err := entry.validate(); err != nil {
		return fmt.Errorf("enable autostart: %w", err)
	}

	entry.ExecPath = strings.Trim(entry.ExecPath, `"`)
	if err := runReg("add", registryRunKey, "/v", entry.Name, "/t", "REG_SZ", "/d", `"`+entry.ExecPath+`"`+argsSuffix(entry), "/f"); err != nil {
		return fmt.Errorf("enable autostart: %w", err)
	}
	return nil
}

func (service *platformService) DisableAutostart(appName string) error {
	enabled, err := service.AutostartEnabled(appName)
	if err != nil || !enabled {
		return err
	}
	if err := runReg("delete", registryRunKey, "/v", appName, "/f"); err != nil {
		return fmt.Errorf("disable autostart: %w", err)
	}
	return nil
}

func (service *platformService) AutostartEnabled(appName string) (bool, error) {
	if strings.TrimSpace(appName) == "" {
		return false, fmt.Errorf("autostart status: app name is empty")
	}
	// reg query exits non-zero when the value is missing.
	return exec.Command("reg", "query", registryRunKey, "/v", appName).Run() == nil, nil
}

func runReg(args ...string) error {
	output, err := exec.Command("reg", args...).CombinedOutput()
	if err != nil {
		return fmt.Errorf("reg %s failed: %w: %s", args[0], err, strings.TrimSpace(string(output)))
	}
	return nil
}

func argsSuffix(entry AutostartEntry) string {
	if len(entry.Args) == 0 {
		return ""
	}
	quoted := make([]string, 0, len(entry.Args))
	for _, arg := range entry.Args {
		quoted = append(quoted, quoteArg(arg))
	}
	return " " + strings.Join(quoted, " ")
}

func fallbackConfigDir(homeDir string) string {
	return filepath.Join(homeDir, "AppData", "Roaming")
}
