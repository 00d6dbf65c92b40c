package migration

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreate(t *testing.T) {
	dir := t.TempDir()

	pair, err := Create(dir, "Add Users Table")
	require.NoError(t, err)
	require.NotNil(t, pair)

	assert.Len(t, pair.Version, 14)
	assert.Contains(t, filepath.Base(pair.UpPath), "add_users_table.up.sql")
	assert.Contains(t, filepath.Base(pair.DownPath), "add_users_table.down.sql")

	for _, path := range []string{pair.UpPath, pair.DownPath} {
		content, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Contains(t, string(content), "Add Users Table")
	}
}

func TestSlugify(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Add Users Table", "add_users_table"},
		{"add-delivered-data", "add_delivered_data"},
		{"  spaces  everywhere  ", "spaces_everywhere"},
		{"MixedCASE123", "mixedcase123"},
		{"trailing-", "trailing"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, slugify(tt.in), tt.in)
	}
}

func TestList(t *testing.T) {
	t.Run("missing directory is empty", func(t *testing.T) {
		migrations, err := List(filepath.Join(t.TempDir(), "nope"))
		require.NoError(t, err)
		assert.Empty(t, migrations)
	})

	t.Run("returns up migrations sorted", func(t *testing.T) {
		dir := t.TempDir()
		for _, name := range []string{
			"20240102000000_second.up.sql",
			"20240102000000_second.down.sql",
			"20240101000000_first.up.sql",
			"20240101000000_first.down.sql",
			"notes.txt",
		} {
			require.NoError(t, os.WriteFile(filepath.Join(dir, name), nil, 0644))
		}

		migrations, err := List(dir)
		require.NoError(t, err)
		assert.Equal(t, []string{
			"20240101000000_first",
			"20240102000000_second",
		}, migrations)
	})
}
