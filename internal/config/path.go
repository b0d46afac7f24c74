package config

import (
	"os"
	"path/filepath"
	"strings"
)

const (
	configDirName  = "hark"
	configFileName = "hark.toml"
)

// CandidatePaths returns every config file location in ascending precedence
// order: XDG system dirs, then the XDG user dir, then each explicit CLI
// path in the order given. Later entries override earlier ones during the
// merge.
func CandidatePaths(cliPaths []string) []string {
	paths := make([]string, 0, len(cliPaths)+2)

	systemDirs := xdgSystemDirs()
	// $XDG_CONFIG_DIRS lists directories most-important first; reverse so
	// the merge applies them lowest precedence first.
	for i := len(systemDirs) - 1; i >= 0; i-- {
		paths = append(paths, filepath.Join(systemDirs[i], configDirName, configFileName))
	}

	if userDir := xdgUserDir(); userDir != "" {
		paths = append(paths, filepath.Join(userDir, configDirName, configFileName))
	}

	paths = append(paths, cliPaths...)
	return paths
}

// xdgUserDir resolves $XDG_CONFIG_HOME with the $HOME/.config fallback.
func xdgUserDir() string {
	if xdg := strings.TrimSpace(os.Getenv("XDG_CONFIG_HOME")); xdg != "" {
		return xdg
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config")
}

// xdgSystemDirs resolves $XDG_CONFIG_DIRS with the /etc/xdg fallback.
func xdgSystemDirs() []string {
	raw := strings.TrimSpace(os.Getenv("XDG_CONFIG_DIRS"))
	if raw == "" {
		return []string{"/etc/xdg"}
	}

	dirs := make([]string, 0, 2)
	for _, dir := range strings.Split(raw, ":") {
		if dir = strings.TrimSpace(dir); dir != "" {
			dirs = append(dirs, dir)
		}
	}
	if len(dirs) == 0 {
		return []string{"/etc/xdg"}
	}
	return dirs
}
