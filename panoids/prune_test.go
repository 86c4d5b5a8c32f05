package panoids

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"panoscraper/store"
	"panoscraper/types"
)

func touch(t *testing.T, path string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte("jpg"), 0o644))
}

func TestPruneDeletesUnknownPanoids(t *testing.T) {
	dir := t.TempDir()
	kept := types.Panorama{Panoid: "keep_me", Lat: 1, Lon: 2}
	touch(t, filepath.Join(dir, PanoFileName(kept)))
	touch(t, filepath.Join(dir, "3_4_stale_id.jpg"))
	touch(t, filepath.Join(dir, "garbage.jpg"))
	touch(t, filepath.Join(dir, "notes.txt"))

	stats, err := Prune(dir, []types.Panorama{kept}, nil, false)
	require.NoError(t, err)
	assert.Equal(t, PruneStats{Scanned: 3, Kept: 1, Deleted: 1, Unparseable: 1}, stats)

	_, err = os.Stat(filepath.Join(dir, PanoFileName(kept)))
	assert.NoError(t, err)
	_, err = os.Stat(filepath.Join(dir, "3_4_stale_id.jpg"))
	assert.True(t, os.IsNotExist(err))
	// Unparseable names and non-JPEGs are never touched.
	_, err = os.Stat(filepath.Join(dir, "garbage.jpg"))
	assert.NoError(t, err)
	_, err = os.Stat(filepath.Join(dir, "notes.txt"))
	assert.NoError(t, err)
}

func TestPruneDryRunKeepsFiles(t *testing.T) {
	dir := t.TempDir()
	touch(t, filepath.Join(dir, "1_2_stale.jpg"))

	stats, err := Prune(dir, nil, nil, true)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Deleted)

	_, err = os.Stat(filepath.Join(dir, "1_2_stale.jpg"))
	assert.NoError(t, err)
}

func TestPruneRemovesRegistryRows(t *testing.T) {
	dir := t.TempDir()
	registry, err := store.Open(filepath.Join(dir, "registry.db"))
	require.NoError(t, err)
	defer registry.Close()

	kept := types.Panorama{Panoid: "keep_me", Lat: 1, Lon: 2}
	stale := types.Panorama{Panoid: "stale", Lat: 3, Lon: 4}
	for _, rec := range []types.Panorama{kept, stale} {
		path := filepath.Join(dir, PanoFileName(rec))
		touch(t, path)
		require.NoError(t, registry.Record(rec, path))
	}

	// Dry run leaves both the file and its registry row alone.
	_, err = Prune(dir, []types.Panorama{kept}, registry, true)
	require.NoError(t, err)
	exists, _, err := registry.Exists("stale")
	require.NoError(t, err)
	assert.True(t, exists)

	// A real prune removes the row too, so a later download re-fetches
	// instead of skipping the pruned panorama.
	stats, err := Prune(dir, []types.Panorama{kept}, registry, false)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Deleted)

	exists, _, err = registry.Exists("stale")
	require.NoError(t, err)
	assert.False(t, exists)

	exists, _, err = registry.Exists("keep_me")
	require.NoError(t, err)
	assert.True(t, exists)
}
