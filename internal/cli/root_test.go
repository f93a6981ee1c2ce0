package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aqasim81/schema-fleet/internal/config"
)

func newFlagCmd() *cobra.Command {
	cmd := &cobra.Command{}
	cmd.Flags().String("config", "db-connections.yml", "")
	cmd.Flags().String("target", "", "")
	cmd.Flags().Bool("all", false, "")
	cmd.Flags().String("scripts-dir", "", "")

	return cmd
}

func TestMergeFlags_scriptsDir_overridesConfig(t *testing.T) {
	t.Parallel()

	cfg := config.New()
	cmd := newFlagCmd()
	require.NoError(t, cmd.Flags().Set("scripts-dir", "/custom/scripts"))

	mergeFlags(cmd, cfg)
	assert.Equal(t, "/custom/scripts", cfg.ScriptsDir)
}

func TestMergeFlags_target_overridesActiveTarget(t *testing.T) {
	t.Parallel()

	cfg := config.New()
	cfg.ActiveTarget = "development"

	cmd := newFlagCmd()
	require.NoError(t, cmd.Flags().Set("target", "staging"))

	mergeFlags(cmd, cfg)
	assert.Equal(t, "staging", cfg.ActiveTarget)
}

func TestMergeFlags_unchangedFlags_preserveConfig(t *testing.T) {
	t.Parallel()

	cfg := config.New()
	cfg.ScriptsDir = "/original"
	cfg.ActiveTarget = "development"

	mergeFlags(newFlagCmd(), cfg)
	assert.Equal(t, "/original", cfg.ScriptsDir)
	assert.Equal(t, "development", cfg.ActiveTarget)
}

func TestLoadConfig_missingFile_usesDefaults(t *testing.T) { // not parallel: mutates global AppConfig
	old := AppConfig
	t.Cleanup(func() { AppConfig = old })

	err := loadConfig(newFlagCmd())
	require.NoError(t, err)
	require.NotNil(t, AppConfig)
	assert.Equal(t, config.DefaultScriptsDir, AppConfig.ScriptsDir)
	assert.Equal(t, config.DefaultMaxWorkers, AppConfig.MaxWorkers)
}

func TestLoadConfig_validFile_loadsValues(t *testing.T) { // not parallel: mutates global AppConfig
	old := AppConfig
	t.Cleanup(func() { AppConfig = old })

	cfgPath := filepath.Join(t.TempDir(), "db-connections.yml")
	yamlContent := `
global:
  scripts_dir: /from/yaml
  active_target: development
targets:
  development:
    url: sqlite:///tmp/dev.db
`
	require.NoError(t, os.WriteFile(cfgPath, []byte(yamlContent), 0o600))

	cmd := newFlagCmd()
	require.NoError(t, cmd.Flags().Set("config", cfgPath))

	err := loadConfig(cmd)
	require.NoError(t, err)
	require.NotNil(t, AppConfig)
	assert.Equal(t, "/from/yaml", AppConfig.ScriptsDir)
	assert.Equal(t, "development", AppConfig.ActiveTarget)
	assert.Equal(t, "sqlite:///tmp/dev.db", AppConfig.Targets["development"].URL)
}

func TestLoadConfig_explicitMissingFile_returnsError(t *testing.T) { // not parallel: mutates global AppConfig
	old := AppConfig
	t.Cleanup(func() { AppConfig = old })

	cmd := newFlagCmd()
	require.NoError(t, cmd.Flags().Set("config", filepath.Join(t.TempDir(), "absent.yml")))

	err := loadConfig(cmd)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "loading configuration")
}

func TestResolveTarget(t *testing.T) { // not parallel: mutates global AppConfig
	old := AppConfig
	t.Cleanup(func() { AppConfig = old })

	AppConfig = config.New()
	AppConfig.ActiveTarget = "development"

	cmd := newFlagCmd()
	assert.Equal(t, "development", resolveTarget(cmd))

	require.NoError(t, cmd.Flags().Set("all", "true"))
	assert.Equal(t, "", resolveTarget(cmd))
}
