// internal/config/discover.go
package config

import (
	"fmt"
	"os"
	"path/filepath"
)

// DefaultPath returns the XDG-compliant default config path.
func DefaultPath() string {
	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "./config.toml"
		}
		configHome = filepath.Join(home, ".config")
	}
	return filepath.Join(configHome, "csvforge", "config.toml")
}

// Discover finds the config file using the standard search order.
// Search order:
//  1. CSVFORGE_CONFIG environment variable
//  2. ./config.toml (current directory)
//  3. $XDG_CONFIG_HOME/csvforge/config.toml
//  4. /etc/csvforge/config.toml
func Discover() (string, error) {
	// 1. Check CSVFORGE_CONFIG env var
	if envPath := os.Getenv("CSVFORGE_CONFIG"); envPath != "" {
		if _, err := os.Stat(envPath); err != nil {
			return "", fmt.Errorf("CSVFORGE_CONFIG=%s: %w", envPath, err)
		}
		return envPath, nil
	}

	// 2. Current directory
	if _, err := os.Stat("config.toml"); err == nil {
		return "config.toml", nil
	}

	// 3. XDG config home
	xdgPath := DefaultPath()
	if _, err := os.Stat(xdgPath); err == nil {
		return xdgPath, nil
	}

	// 4. System-wide
	sysPath := "/etc/csvforge/config.toml"
	if _, err := os.Stat(sysPath); err == nil {
		return sysPath, nil
	}

	return "", fmt.Errorf("no config file found (tried CSVFORGE_CONFIG, ./config.toml, %s, %s)", xdgPath, sysPath)
}
