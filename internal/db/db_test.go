package db

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpen_UnknownDriver(t *testing.T) {
	_, err := Open("oracle", "", t.TempDir())

	assert.ErrorContains(t, err, `unknown db driver "oracle"`)
}

func TestOpen_SqlitePureInAppDir(t *testing.T) {
	dir := t.TempDir()

	h, err := Open("sqlite-pure", "", dir)
	require.NoError(t, err)
	defer h.Close()

	assert.Equal(t, filepath.Join(dir, fileName), h.Path)
	assert.Equal(t, "sqlite-pure", h.Driver)
	require.NoError(t, h.Migrate())
	require.NoError(t, h.Migrate(), "migrate is idempotent")
	assert.True(t, h.DB.Migrator().HasIndex(&ExportIssue{}, "uniq_issue_key"))
	assert.FileExists(t, h.Path)
}

func TestKV(t *testing.T) {
	h, err := Open("sqlite-pure", "", t.TempDir())
	require.NoError(t, err)
	defer h.Close()
	require.NoError(t, h.Migrate())

	_, ok, err := GetKV(h.DB, "missing")
	require.NoError(t, err)
	assert.False(t, ok)

	key := LastExportKey("https://shop.example.com/")
	require.NoError(t, SetKV(h.DB, key, "/out/1"))
	require.NoError(t, SetKV(h.DB, key, "/out/2"))

	v, ok, err := GetKV(h.DB, key)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "/out/2", v)
}
