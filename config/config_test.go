package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mappificator.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
mc_version: "1.21"
providers: [yarn, parchment]
parchment_version: 2024.07.28-nightly
yarn_version: "3"
pretty_print: true
parallel_naming: 4
`), 0o644))
	t.Setenv("MAPPIFICATOR_YARN_VERSION", "5")
	t.Setenv("MAPPIFICATOR_OUTPUT_DIR", "out")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "1.21", cfg.MCVersion)
	assert.Equal(t, []string{"yarn", "parchment"}, cfg.Providers)
	assert.Equal(t, "5", cfg.YarnVersion)
	assert.Equal(t, "14", cfg.CraneVersion)
	assert.Equal(t, "out", cfg.OutputDir)
	assert.True(t, cfg.PrettyPrint)
	assert.Equal(t, 4, cfg.ParallelNaming)
	assert.NoError(t, cfg.Validate())
	assert.Equal(t, "mappificator-p2024.07.28-y5", cfg.ExportVersion())
}

func TestLoadWithoutFile(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadErrors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("providers: {"), 0o644))
	_, err = Load(path)
	assert.Error(t, err)
}

func TestApplyEnv(t *testing.T) {
	env := map[string]string{
		"MAPPIFICATOR_PROVIDERS":                          "crane, yarn",
		"MAPPIFICATOR_IMPROVED_LAMBDA_CONFLICT_AVOIDANCE": "true",
		"MAPPIFICATOR_PARALLEL_NAMING":                    "8",
		"MAPPIFICATOR_VERSION":                            "",
	}
	lookup := func(k string) (string, bool) { v, ok := env[k]; return v, ok }

	cfg := Default()
	require.NoError(t, cfg.applyEnv(lookup))
	assert.Equal(t, []string{"crane", "yarn"}, cfg.Providers)
	assert.True(t, cfg.ImprovedLambdaConflictAvoidance)
	assert.Equal(t, 8, cfg.ParallelNaming)
	assert.Empty(t, cfg.Version)

	env["MAPPIFICATOR_PRETTY_PRINT"] = "maybe"
	assert.Error(t, Default().applyEnv(lookup))
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
		errMsg string
	}{
		{"defaults", func(*Config) {}, ""},
		{"unknown provider", func(c *Config) { c.Providers = []string{"mcp"} }, `unknown provider "mcp"`},
		{"duplicate provider", func(c *Config) { c.Providers = []string{"yarn", "yarn"} }, `duplicate provider "yarn"`},
		{"missing version", func(c *Config) { c.CraneVersion = "" }, "provider crane needs crane_version"},
		{"unused version may be empty", func(c *Config) { c.Providers = []string{"yarn"}; c.CraneVersion = "" }, ""},
		{"missing mc version", func(c *Config) { c.MCVersion = "" }, "mc_version is required"},
		{"negative parallelism", func(c *Config) { c.ParallelNaming = -1 }, "parallel_naming"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.modify(cfg)
			err := cfg.Validate()
			if tt.errMsg == "" {
				assert.NoError(t, err)
			} else {
				assert.ErrorContains(t, err, tt.errMsg)
			}
		})
	}
}

func TestExportVersion(t *testing.T) {
	cfg := Default()
	assert.Equal(t, "mappificator-p2021.07.21-c14-y9", cfg.ExportVersion())

	cfg.Providers = []string{"crane"}
	assert.Equal(t, "mappificator-c14", cfg.ExportVersion())

	cfg.Version = "custom"
	assert.Equal(t, "custom", cfg.ExportVersion())
}
