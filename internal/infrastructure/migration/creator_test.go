package migration

import (
	"os"
	"path/filepath"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/erp/stockledger/migrations"
)

func TestSanitizeName(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"add stock notes", "add_stock_notes"},
		{"Add-Stock-Notes", "add_stock_notes"},
		{"add__stock__notes", "add_stock_notes"},
		{"   spaces   ", "spaces"},
		{"special!@#$chars", "specialchars"},
		{"_leading and trailing_", "leading_and_trailing"},
		{"", ""},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, sanitizeName(tt.input))
		})
	}
}

func TestListMigrations(t *testing.T) {
	fsys := fstest.MapFS{
		"000010_later.up.sql":    {},
		"000010_later.down.sql":  {},
		"000002_second.up.sql":   {},
		"000002_second.down.sql": {},
		"README.md":              {},
	}

	got, err := ListMigrations(fsys)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, uint(2), got[0].Version)
	assert.Equal(t, "second", got[0].Name)
	assert.Equal(t, uint(10), got[1].Version)
}

func TestEmbeddedMigrationsArePaired(t *testing.T) {
	ups, err := ListMigrations(migrations.FS)
	require.NoError(t, err)
	require.NotEmpty(t, ups)

	for i, m := range ups {
		assert.Equal(t, uint(i+1), m.Version, "versions are contiguous")
		_, err := migrations.FS.Open(m.BaseName() + ".down.sql")
		assert.NoError(t, err, "missing down migration for %s", m.BaseName())
	}
}

func TestCreateMigration(t *testing.T) {
	dir := t.TempDir()

	first, err := CreateMigration(dir, "add stock notes")
	require.NoError(t, err)
	assert.Equal(t, uint(1), first.Version)
	assert.Equal(t, "000001_add_stock_notes", first.BaseName())
	assert.FileExists(t, first.UpPath)
	assert.FileExists(t, first.DownPath)

	content, err := os.ReadFile(first.UpPath)
	require.NoError(t, err)
	assert.Contains(t, string(content), "add_stock_notes")

	second, err := CreateMigration(dir, "Index Alerts")
	require.NoError(t, err)
	assert.Equal(t, uint(2), second.Version)
	assert.Equal(t, filepath.Join(dir, "000002_index_alerts.down.sql"), second.DownPath)

	_, err = CreateMigration(dir, "!!!")
	assert.Error(t, err)
}
