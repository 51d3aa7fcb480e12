package database

import (
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMigrationsOrdersByName(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "migrations/002_b.sql", []byte("SELECT 2;"), 0o644))
	require.NoError(t, afero.WriteFile(fs, "migrations/001_a.sql", []byte("SELECT 1;"), 0o644))
	require.NoError(t, afero.WriteFile(fs, "migrations/003_empty.sql", []byte("  \n"), 0o644))
	require.NoError(t, afero.WriteFile(fs, "migrations/README.md", []byte("notes"), 0o644))

	got, err := LoadMigrations(fs, "migrations")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "001_a.sql", got[0].Version)
	assert.Equal(t, "SELECT 1;", got[0].SQL)
	assert.Equal(t, "002_b.sql", got[1].Version)
}

func TestLoadMigrationsMissingDir(t *testing.T) {
	got, err := LoadMigrations(afero.NewMemMapFs(), "nowhere")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestPendingSkipsApplied(t *testing.T) {
	all := []Migration{{Version: "001_a.sql"}, {Version: "002_b.sql"}}

	pending := Pending(all, map[string]bool{"001_a.sql": true})
	require.Len(t, pending, 1)
	assert.Equal(t, "002_b.sql", pending[0].Version)

	assert.Empty(t, Pending(all, map[string]bool{"001_a.sql": true, "002_b.sql": true}))
}
