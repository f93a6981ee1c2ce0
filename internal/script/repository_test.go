package script_test

import (
	"os"
	"path/filepath"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aqasim81/schema-fleet/internal/script"
)

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o600))
}

func TestDiscover(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		setup       func(t *testing.T) string // returns directory path
		wantErr     error
		check       func(t *testing.T, scripts []script.Script)
	}{
		{
			name: "orders forward scripts numerically not lexically",
			setup: func(t *testing.T) string {
				t.Helper()
				dir := t.TempDir()
				writeFile(t, dir, "V10__add_index.sql", "CREATE INDEX i ON t(a);")
				writeFile(t, dir, "V2__add_col.sql", "ALTER TABLE t ADD a INT;")
				writeFile(t, dir, "V1__create_table.sql", "CREATE TABLE t (id INT);")

				return dir
			},
			check: func(t *testing.T, scripts []script.Script) {
				t.Helper()
				require.Len(t, scripts, 3)
				assert.Equal(t, "1", scripts[0].Version)
				assert.Equal(t, "2", scripts[1].Version)
				assert.Equal(t, "10", scripts[2].Version)
			},
		},
		{
			name: "non-conforming files are silently skipped",
			setup: func(t *testing.T) string {
				t.Helper()
				dir := t.TempDir()
				writeFile(t, dir, "V2__add_col.sql", "ALTER TABLE t ADD a INT;")
				writeFile(t, dir, "add_col.sql", "ALTER TABLE t ADD b INT;")
				writeFile(t, dir, "README.md", "# scripts")
				writeFile(t, dir, "Vx__bad_version.sql", "SELECT 1;")

				return dir
			},
			check: func(t *testing.T, scripts []script.Script) {
				t.Helper()
				require.Len(t, scripts, 1)
				assert.Equal(t, "V2__add_col.sql", scripts[0].Filename)
			},
		},
		{
			name: "rollback scripts are not returned by discover",
			setup: func(t *testing.T) string {
				t.Helper()
				dir := t.TempDir()
				writeFile(t, dir, "V1__create.sql", "CREATE TABLE t (id INT);")
				writeFile(t, dir, "R1__drop.sql", "DROP TABLE t;")

				return dir
			},
			check: func(t *testing.T, scripts []script.Script) {
				t.Helper()
				require.Len(t, scripts, 1)
				assert.Equal(t, script.KindForward, scripts[0].Kind)
			},
		},
		{
			name: "missing directory fails",
			setup: func(t *testing.T) string {
				t.Helper()

				return filepath.Join(t.TempDir(), "nonexistent")
			},
			wantErr: script.ErrDirNotFound,
		},
		{
			name: "empty directory yields no scripts",
			setup: func(t *testing.T) string {
				t.Helper()

				return t.TempDir()
			},
			check: func(t *testing.T, scripts []script.Script) {
				t.Helper()
				assert.Empty(t, scripts)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			repo := script.New(tt.setup(t))

			scripts, err := repo.Discover()
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)

				return
			}

			require.NoError(t, err)
			tt.check(t, scripts)
		})
	}
}

func TestLoadRollback(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeFile(t, dir, "V2__add_col.sql", "ALTER TABLE t ADD a INT;")
	writeFile(t, dir, "R2__drop_col.sql", "ALTER TABLE t DROP COLUMN a;")

	repo := script.New(dir)

	t.Run("finds matching rollback", func(t *testing.T) {
		t.Parallel()

		s, found, err := repo.LoadRollback("2")
		require.NoError(t, err)
		require.True(t, found)
		assert.Equal(t, script.KindRollback, s.Kind)
		assert.Equal(t, "R2__drop_col.sql", s.Filename)
		assert.Equal(t, "ALTER TABLE t DROP COLUMN a;", s.SQL)
	})

	t.Run("absence is not an error", func(t *testing.T) {
		t.Parallel()

		_, found, err := repo.LoadRollback("3")
		require.NoError(t, err)
		assert.False(t, found)
	})

	t.Run("R2 is a candidate for version 2 only", func(t *testing.T) {
		t.Parallel()

		_, found, err := repo.LoadRollback("20")
		require.NoError(t, err)
		assert.False(t, found)
	})
}

func TestFallbackFS(t *testing.T) {
	t.Parallel()

	fsys := fstest.MapFS{
		"db/migration/V1__create_users.sql": {Data: []byte("CREATE TABLE users (id INT);")},
		"db/migration/R1__drop_users.sql":   {Data: []byte("DROP TABLE users;")},
	}

	repo := script.New("db/migration", script.WithFallbackFS(fsys))

	scripts, err := repo.Discover()
	require.NoError(t, err)
	require.Len(t, scripts, 1)
	assert.Equal(t, "1", scripts[0].Version)

	_, found, err := repo.LoadRollback("1")
	require.NoError(t, err)
	assert.True(t, found)
}

func TestScriptDescription(t *testing.T) {
	t.Parallel()

	tests := []struct {
		filename string
		want     string
	}{
		{"V2__add_col.sql", "add_col"},
		{"R2__drop_col.sql", "drop_col"},
		{"V3__add__double_underscore.sql", "add__double_underscore"},
		{"broken", ""},
	}

	for _, tt := range tests {
		t.Run(tt.filename, func(t *testing.T) {
			t.Parallel()

			s := script.Script{Filename: tt.filename}
			assert.Equal(t, tt.want, s.Description())
		})
	}
}

func TestComputeChecksum(t *testing.T) {
	t.Parallel()

	sum := script.ComputeChecksum("SELECT 1;")
	assert.Len(t, sum, 64)
	assert.Equal(t, sum, script.ComputeChecksum("SELECT 1;"))
	assert.NotEqual(t, sum, script.ComputeChecksum("SELECT 2;"))
}
