package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// execute runs the root command with args and captures stdout.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs(args)

	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetArgs(nil)
	})

	err := rootCmd.Execute()

	return buf.String(), err
}

func TestCommands_endToEnd(t *testing.T) { // not parallel: drives the global root command
	old := AppConfig
	t.Cleanup(func() { AppConfig = old })

	scriptsDir := t.TempDir()
	require.NoError(t, os.WriteFile(
		filepath.Join(scriptsDir, "V1__create_items.sql"),
		[]byte("CREATE TABLE items (id INTEGER);"), 0o600))
	require.NoError(t, os.WriteFile(
		filepath.Join(scriptsDir, "R1__drop_items.sql"),
		[]byte("DROP TABLE items;"), 0o600))

	dbPath := filepath.Join(t.TempDir(), "dev.db")
	cfgPath := filepath.Join(t.TempDir(), "db-connections.yml")
	yamlContent := `
global:
  scripts_dir: ` + scriptsDir + `
  active_target: dev
targets:
  dev:
    url: sqlite://` + dbPath + `
`
	require.NoError(t, os.WriteFile(cfgPath, []byte(yamlContent), 0o600))

	out, err := execute(t, "init", "--config", cfgPath)
	require.NoError(t, err)
	assert.Contains(t, out, "dev: initialized")

	out, err = execute(t, "migrate", "--config", cfgPath)
	require.NoError(t, err)
	assert.Contains(t, out, "dev: migrated to version 1")

	out, err = execute(t, "version", "--config", cfgPath)
	require.NoError(t, err)
	assert.Contains(t, out, "dev: 1")

	out, err = execute(t, "status", "--config", cfgPath)
	require.NoError(t, err)
	assert.Contains(t, out, "create_items")
	assert.Contains(t, out, "success")

	out, err = execute(t, "rollback", "--config", cfgPath)
	require.NoError(t, err)
	assert.Contains(t, out, "dev: rolled back to version 0")
}

func TestStatus_noActiveTarget(t *testing.T) { // not parallel: drives the global root command
	old := AppConfig
	t.Cleanup(func() { AppConfig = old })

	cfgPath := filepath.Join(t.TempDir(), "db-connections.yml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("targets:\n  dev:\n    url: sqlite:///tmp/x.db\n"), 0o600))

	_, err := execute(t, "status", "--config", cfgPath)
	require.ErrorIs(t, err, errTargetRequired)
}
