// Package config provides centralized configuration constants for tasklane.
// All default values should be defined here to ensure a single source of truth.
package config

import "github.com/spf13/viper"

const (
	// ConfigName is the config file base name (.tasklane.yaml).
	ConfigName = ".tasklane"
	// EnvPrefix prefixes every environment override, e.g. TASKLANE_DATA_FORMAT.
	EnvPrefix = "TASKLANE"
)

// Storage defaults
const (
	DefaultDataDir    = ".tasklane"
	DefaultDataFile   = "tasks.json"
	DefaultDataFormat = "json"
	DefaultArchiveDir = "archive"
)

// Search defaults
const (
	DefaultMaxArchiveFiles = 5
	DefaultPageSize        = 5
)

// Defaults lists every configuration key with its default value.
func Defaults() map[string]any {
	return map[string]any{
		"data.dir":               DefaultDataDir,
		"data.file":              DefaultDataFile,
		"data.format":            DefaultDataFormat,
		"data.archiveDir":        DefaultArchiveDir,
		"versioning.enabled":     true,
		"search.maxArchiveFiles": DefaultMaxArchiveFiles,
		"search.pageSize":        DefaultPageSize,
		"tasks.cycleCheck":       false,
	}
}

// SetDefaults registers Defaults on v.
func SetDefaults(v *viper.Viper) {
	for key, value := range Defaults() {
		v.SetDefault(key, value)
	}
}
