package types

import (
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
)

func validConfig() AppConfig {
	return AppConfig{
		Data: DataConfig{
			Dir:        ".tasklane",
			File:       "tasks.json",
			Format:     "json",
			ArchiveDir: "archive",
		},
		Versioning: VersioningConfig{Enabled: true},
		Search:     SearchConfig{MaxArchiveFiles: 5, PageSize: 5},
	}
}

func TestAppConfig_Validation(t *testing.T) {
	v := validator.New()

	tests := []struct {
		name    string
		mutate  func(c *AppConfig)
		wantErr bool
	}{
		{name: "defaults", mutate: func(c *AppConfig) {}},
		{name: "yaml format", mutate: func(c *AppConfig) { c.Data.Format = "yaml" }},
		{name: "unknown format", mutate: func(c *AppConfig) { c.Data.Format = "xml" }, wantErr: true},
		{name: "missing dir", mutate: func(c *AppConfig) { c.Data.Dir = "" }, wantErr: true},
		{name: "page size above max", mutate: func(c *AppConfig) { c.Search.PageSize = 21 }, wantErr: true},
		{name: "zero archive files", mutate: func(c *AppConfig) { c.Search.MaxArchiveFiles = 0 }, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(&cfg)
			err := v.Struct(cfg)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
