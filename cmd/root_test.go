package cmd

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCmd(t *testing.T) {
	setupTestProject(t)

	stdout, _, err := runCLI(t, "", "--help")
	require.NoError(t, err)
	assert.Contains(t, stdout, "tasklane is a task lifecycle and dependency manager")
	assert.Contains(t, stdout, "Usage:")
	assert.Contains(t, stdout, "Available Commands:")
}

func TestVersion(t *testing.T) {
	setupTestProject(t)
	assert.Equal(t, "0.3.0", GetVersion())

	stdout, _, err := runCLI(t, "", "version")
	require.NoError(t, err)
	assert.Equal(t, "tasklane version 0.3.0\n", stdout)

	var out map[string]string
	runJSON(t, &out, "version")
	assert.Equal(t, "0.3.0", out["version"])
}

func TestLoadConfig_EnvOverrides(t *testing.T) {
	dir := setupTestProject(t)
	t.Setenv("TASKLANE_SEARCH_PAGESIZE", "7")

	_, _, err := runCLI(t, "", "version")
	require.NoError(t, err)

	cfg := GetConfig()
	assert.Equal(t, dir, cfg.Data.Dir)
	assert.False(t, cfg.Versioning.Enabled)
	assert.Equal(t, 7, cfg.Search.PageSize)
	assert.Equal(t, "json", cfg.Data.Format)
}

func TestLoadConfig_Invalid(t *testing.T) {
	setupTestProject(t)
	t.Setenv("TASKLANE_DATA_FORMAT", "xml")

	var exitCode int
	exitFunc = func(code int) { exitCode = code }
	t.Cleanup(func() { exitFunc = os.Exit })

	_, _, _ = runCLI(t, "", "version")
	assert.Equal(t, 1, exitCode)
}
