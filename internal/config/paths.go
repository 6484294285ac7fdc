package config

import (
	"os"
	"path/filepath"
	"strings"
)

// GetGlobalConfigDir returns the path to the global configuration directory (~/.tasklane).
// It's a variable to allow overriding in tests.
var GetGlobalConfigDir = func() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, DefaultDataDir), nil
}

// ResolveDataDir turns the configured data directory into an absolute path.
// Resolution order (first match wins):
// 1. Absolute path as configured
// 2. "~/" prefix expanded against the home directory
// 3. Relative to the working directory
func ResolveDataDir(configured string) (string, error) {
	dir := strings.TrimSpace(configured)
	if dir == "" {
		dir = DefaultDataDir
	}
	if filepath.IsAbs(dir) {
		return filepath.Clean(dir), nil
	}
	if rest, ok := strings.CutPrefix(dir, "~/"); ok {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		return filepath.Join(home, rest), nil
	}
	return filepath.Abs(dir)
}

// DataFilePath returns the absolute path of the task document inside dataDir.
// An absolute file setting is used as is.
func DataFilePath(dataDir, file string) string {
	if file == "" {
		file = DefaultDataFile
	}
	if filepath.IsAbs(file) {
		return file
	}
	return filepath.Join(dataDir, file)
}

// ProjectConfigPath returns where the project-level config file lives.
func ProjectConfigPath(dataDir string) string {
	return filepath.Join(dataDir, ConfigName+".yaml")
}

// DataFileName returns the document file name for format. The default name
// follows the format, so a yaml store lives in tasks.yaml.
func DataFileName(file, format string) string {
	if file == "" {
		file = DefaultDataFile
	}
	if file != DefaultDataFile {
		return file
	}
	switch strings.ToLower(format) {
	case "yaml", "yml":
		return "tasks.yaml"
	case "toml":
		return "tasks.toml"
	}
	return file
}
