package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"aerocode/internal/config"
)

func TestDefaultMatchesProductionLine(t *testing.T) {
	cfg := config.Default()
	require.NoError(t, cfg.Validate())
	require.Len(t, cfg.Production.Stages, 5)
	assert.Equal(t, "Fuselage Assembly", cfg.Production.Stages[0].Name)
	assert.Equal(t, 35, cfg.Production.Stages[4].OffsetDays)
	assert.Equal(t, "Aerocode", cfg.Production.Manufacturer)
	assert.Equal(t, "admin", cfg.Bootstrap.Username)
	assert.Equal(t, 8*time.Hour, cfg.Session.TTL)
}

func TestFromYAMLOverridesDefaults(t *testing.T) {
	cfg, err := config.FromYAML([]byte(`
production:
  stages:
    - name: Design
      offset_days: 3
    - name: Build
      offset_days: 10
session:
  ttl: 30m
`))
	require.NoError(t, err)
	require.Len(t, cfg.Production.Stages, 2)
	assert.Equal(t, "Build", cfg.Production.Stages[1].Name)
	assert.Equal(t, "Aerocode", cfg.Production.Manufacturer)
	assert.Equal(t, 30*time.Minute, cfg.Session.TTL)
}

func TestFromYAMLRejectsBadStages(t *testing.T) {
	_, err := config.FromYAML([]byte(`
production:
  stages:
    - name: ""
      offset_days: 3
`))
	require.Error(t, err)

	_, err = config.FromYAML([]byte(`
production:
  stages:
    - name: Build
      offset_days: 0
`))
	require.Error(t, err)

	_, err = config.FromYAML([]byte(`
production:
  stages:
    - name: Build
      offset_days: 1
    - name: build
      offset_days: 2
`))
	require.Error(t, err)
}

func TestLoadWithoutFileUsesDefaults(t *testing.T) {
	cfg, err := config.Load(t.TempDir())
	require.NoError(t, err)
	assert.Len(t, cfg.Production.Stages, 5)
}

func TestLoadEnvDoesNotOverride(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("AEROCODE_TEST_A=fromfile\nAEROCODE_TEST_B=fromfile\n"), 0o644))
	t.Setenv("AEROCODE_TEST_A", "preset")
	t.Cleanup(func() { os.Unsetenv("AEROCODE_TEST_B") })

	require.NoError(t, config.LoadEnv(dir))
	assert.Equal(t, "preset", os.Getenv("AEROCODE_TEST_A"))
	assert.Equal(t, "fromfile", os.Getenv("AEROCODE_TEST_B"))

	require.NoError(t, config.LoadEnv(t.TempDir()))
}

func TestInitRefusesToOverwrite(t *testing.T) {
	dir := t.TempDir()
	path, err := config.Init(dir, false)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "aerocode.yml"), path)

	_, err = config.Init(dir, false)
	require.Error(t, err)
	_, err = config.Init(dir, true)
	require.NoError(t, err)

	cfg, err := config.Load(dir)
	require.NoError(t, err)
	assert.Len(t, cfg.Production.Stages, 5)
}

func TestSetEnvKeepsOtherKeys(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("OTHER=1\n"), 0o644))
	require.NoError(t, config.SetEnv(dir, "AEROCODE_SESSION_SECRET", "s3cret"))
	require.NoError(t, config.SetEnv(dir, "AEROCODE_SESSION_SECRET", "rotated"))

	data, err := os.ReadFile(filepath.Join(dir, ".env"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "OTHER=1")
	assert.Contains(t, string(data), `AEROCODE_SESSION_SECRET="rotated"`)
}
