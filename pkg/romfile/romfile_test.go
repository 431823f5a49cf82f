package romfile

import (
	"archive/zip"
	"bytes"
	"compress/gzip"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_PlainFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "game.gb")
	require.NoError(t, os.WriteFile(path, []byte{1, 2, 3}, 0644))

	data, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, []byte{1, 2, 3}, data)
}

func TestLoad_Zip(t *testing.T) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	w, err := zw.Create("inner/game.gb")
	require.NoError(t, err)
	_, err = w.Write([]byte{4, 5, 6})
	require.NoError(t, err)
	require.NoError(t, zw.Close())

	path := filepath.Join(t.TempDir(), "game.zip")
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0644))

	data, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, []byte{4, 5, 6}, data)
}

func TestLoad_ZipWithoutROM(t *testing.T) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	_, err := zw.Create("readme.txt")
	require.NoError(t, err)
	require.NoError(t, zw.Close())

	path := filepath.Join(t.TempDir(), "empty.zip")
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0644))

	_, err = Load(path)
	assert.Error(t, err)
}

func TestLoad_Gzip(t *testing.T) {
	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	_, err := zw.Write([]byte{7, 8, 9})
	require.NoError(t, err)
	require.NoError(t, zw.Close())

	path := filepath.Join(t.TempDir(), "game.gb.gz")
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0644))

	data, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, []byte{7, 8, 9}, data)
}

func TestSavePath(t *testing.T) {
	assert.Equal(t, "/roms/game.sav", SavePath("/roms/game.gb"))
	assert.Equal(t, "game.sav", SavePath("game.zip"))
}
