package storage

import (
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDir_ReadMissingFails(t *testing.T) {
	d := Dir(t.TempDir())
	_, err := d.Open(Read, "nope.bin")
	assert.Error(t, err)
}

func TestDir_WriteCreatesAndReadsBack(t *testing.T) {
	d := Dir(t.TempDir())

	f, err := d.Open(Write, "state.bin")
	require.NoError(t, err)
	_, err = f.Write([]byte{1, 2, 3})
	require.NoError(t, err)
	require.NoError(t, f.Close())

	f, err = d.Open(Read, "state.bin")
	require.NoError(t, err)
	defer f.Close()
	data, err := io.ReadAll(f)
	require.NoError(t, err)
	assert.Equal(t, []byte{1, 2, 3}, data)
}

func TestDir_TruncateSizesStream(t *testing.T) {
	d := Dir(t.TempDir())

	f, err := d.Open(Write, "save.sav")
	require.NoError(t, err)
	require.NoError(t, f.Truncate(64))

	_, err = f.Seek(10, io.SeekStart)
	require.NoError(t, err)
	_, err = f.Write([]byte{0xAB})
	require.NoError(t, err)
	require.NoError(t, f.Close())

	f, err = d.Open(Read, "save.sav")
	require.NoError(t, err)
	defer f.Close()
	data, err := io.ReadAll(f)
	require.NoError(t, err)
	require.Len(t, data, 64)
	assert.Equal(t, uint8(0xAB), data[10])
}
