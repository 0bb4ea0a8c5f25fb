package logging

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileWriter_BuffersUntilSync(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.log")
	fw, err := NewFileWriter(path, 10, 3)
	require.NoError(t, err)
	defer fw.Close()

	n, err := fw.Write([]byte("first line\n"))
	require.NoError(t, err)
	assert.Equal(t, len("first line\n"), n)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Empty(t, data, "nothing on disk before sync")

	require.NoError(t, fw.Sync())
	data, err = os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "first line\n", string(data))
}

func TestFileWriter_RotatesOnSync(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.log")
	fw, err := NewFileWriter(path, 1, 2)
	require.NoError(t, err)
	defer fw.Close()

	big := strings.Repeat("x", 1024*1024+1)
	_, err = fw.Write([]byte(big))
	require.NoError(t, err)
	require.NoError(t, fw.Sync())

	backup, err := os.Stat(path + ".1")
	require.NoError(t, err)
	assert.Greater(t, backup.Size(), int64(1024*1024))

	_, err = fw.Write([]byte("after rotation\n"))
	require.NoError(t, err)
	require.NoError(t, fw.Sync())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "after rotation\n", string(data))
}

func TestFileWriter_CloseTwiceAndWriteAfterClose(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.log")
	fw, err := NewFileWriter(path, 10, 3)
	require.NoError(t, err)

	_, err = fw.Write([]byte("kept\n"))
	require.NoError(t, err)
	require.NoError(t, fw.Close())
	require.NoError(t, fw.Close())

	_, err = fw.Write([]byte("dropped\n"))
	assert.Error(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "kept\n", string(data), "close flushes the buffer")
}
