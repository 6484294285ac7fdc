/*
Copyright © 2025 Joseph Goksu josephgoksu@gmail.com
*/
package types

// AppConfig represents the complete application configuration
type AppConfig struct {
	Verbose    bool             `mapstructure:"verbose" json:"verbose"`
	Config     string           `mapstructure:"config" json:"config"`
	Data       DataConfig       `mapstructure:"data" json:"data" validate:"required"`
	Versioning VersioningConfig `mapstructure:"versioning" json:"versioning"`
	Search     SearchConfig     `mapstructure:"search" json:"search" validate:"required"`
	Tasks      TasksConfig      `mapstructure:"tasks" json:"tasks"`
}

// DataConfig holds data storage configuration
type DataConfig struct {
	Dir        string `mapstructure:"dir" json:"dir" validate:"required"`
	File       string `mapstructure:"file" json:"file" validate:"required"`
	Format     string `mapstructure:"format" json:"format" validate:"required,oneof=json yaml yml toml"`
	ArchiveDir string `mapstructure:"archiveDir" json:"archiveDir" validate:"required"`
}

// VersioningConfig controls the git revision log kept in the data directory.
type VersioningConfig struct {
	Enabled bool `mapstructure:"enabled" json:"enabled"`
}

// SearchConfig holds search tuning knobs
type SearchConfig struct {
	// MaxArchiveFiles caps how many archive snapshots a single search reads.
	MaxArchiveFiles int `mapstructure:"maxArchiveFiles" json:"maxArchiveFiles" validate:"min=1,max=100"`
	PageSize        int `mapstructure:"pageSize" json:"pageSize" validate:"min=1,max=20"`
}

// TasksConfig holds task engine behaviour switches
type TasksConfig struct {
	// CycleCheck rejects writes that would introduce a dependency cycle.
	CycleCheck bool `mapstructure:"cycleCheck" json:"cycleCheck"`
}
