package storage

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestDisk(t *testing.T) *localDisk {
	t.Helper()
	return &localDisk{root: t.TempDir(), baseURL: "http://localhost:5000/storage"}
}

func TestLocalPutGet(t *testing.T) {
	d := newTestDisk(t)

	require.NoError(t, d.Put("img/photo.jpg", []byte("jpeg-bytes")))

	got, err := d.Get("img/photo.jpg")
	require.NoError(t, err)
	assert.Equal(t, []byte("jpeg-bytes"), got)

	assert.True(t, d.Exists("img/photo.jpg"))
	assert.True(t, d.Missing("img/other.jpg"))
}

func TestLocalDelete(t *testing.T) {
	d := newTestDisk(t)

	require.NoError(t, d.Put("img/photo.jpg", []byte("x")))
	require.NoError(t, d.Delete("img/photo.jpg"))
	assert.True(t, d.Missing("img/photo.jpg"))

	// Deleting a missing file is not an error.
	assert.NoError(t, d.Delete("img/photo.jpg"))
}

func TestLocalCopyMove(t *testing.T) {
	d := newTestDisk(t)

	require.NoError(t, d.Put("a.txt", []byte("data")))
	require.NoError(t, d.Copy("a.txt", "b.txt"))
	assert.True(t, d.Exists("a.txt"))
	assert.True(t, d.Exists("b.txt"))

	require.NoError(t, d.Move("b.txt", "c.txt"))
	assert.True(t, d.Missing("b.txt"))
	assert.True(t, d.Exists("c.txt"))
}

func TestLocalURL(t *testing.T) {
	d := newTestDisk(t)
	assert.Equal(t, "http://localhost:5000/storage/img/photo.jpg", d.URL("img/photo.jpg"))
}

func TestLocalFiles(t *testing.T) {
	d := newTestDisk(t)

	require.NoError(t, d.Put("img/a.jpg", []byte("a")))
	require.NoError(t, d.Put("img/b.jpg", []byte("b")))

	files, err := d.Files("img")
	require.NoError(t, err)
	assert.Len(t, files, 2)
}
