package db

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTileRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache", "terrain.mbtiles")

	database, err := InitDB(path)
	require.NoError(t, err)
	defer database.Close()

	_, found, err := GetTile(database, 6, 22, 37)
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, PutTile(database, 6, 22, 37, []byte("first")))
	require.NoError(t, PutTile(database, 6, 22, 37, []byte("second")))

	data, found, err := GetTile(database, 6, 22, 37)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, []byte("second"), data)

	n, err := CountTiles(database)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestTMSRowFlip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "flip.mbtiles")

	database, err := InitDB(path)
	require.NoError(t, err)
	defer database.Close()

	require.NoError(t, PutTile(database, 2, 1, 0, []byte("x")))

	var row int
	require.NoError(t, database.QueryRow("SELECT tile_row FROM tiles").Scan(&row))
	assert.Equal(t, 3, row)
	assert.Equal(t, 0, tmsRow(0, 0))
}

func TestReopenKeepsTiles(t *testing.T) {
	path := filepath.Join(t.TempDir(), "keep.mbtiles")

	database, err := InitDB(path)
	require.NoError(t, err)
	require.NoError(t, PutTile(database, 4, 5, 9, []byte("tile")))
	require.NoError(t, database.Close())

	database, err = InitDB(path)
	require.NoError(t, err)
	defer database.Close()

	data, found, err := GetTile(database, 4, 5, 9)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, []byte("tile"), data)
}

func TestUpdateMetadata(t *testing.T) {
	database, err := InitDB(filepath.Join(t.TempDir(), "meta.mbtiles"))
	require.NoError(t, err)
	defer database.Close()

	require.NoError(t, UpdateMetadata(database, Metadata{Name: "terrain", Format: "png", MinZoom: 4, MaxZoom: 6}))
	require.NoError(t, UpdateMetadata(database, Metadata{Name: "terrain", Format: "png", MinZoom: 2, MaxZoom: 6}))

	v, err := GetMetadata(database, "minzoom")
	require.NoError(t, err)
	assert.Equal(t, "2", v)

	v, err = GetMetadata(database, "format")
	require.NoError(t, err)
	assert.Equal(t, "png", v)

	_, err = GetMetadata(database, "missing")
	assert.Error(t, err)
}
