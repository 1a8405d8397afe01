package storage

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestReadImageFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "leaf.JPG")
	require.NoError(t, os.WriteFile(path, []byte("0123456789"), 0o600))

	sel, err := ReadImageFile(path, 100)
	require.NoError(t, err)
	require.Equal(t, "leaf.JPG", sel.Name)
	require.Equal(t, "image/jpeg", sel.MIMEType)
	require.Equal(t, int64(10), sel.Size)
	require.Len(t, sel.Data, 10)

	sel, err = ReadImageFile(path, 5)
	require.NoError(t, err)
	require.Nil(t, sel.Data)
	require.Equal(t, int64(10), sel.Size)
	require.Equal(t, "image/jpeg", sel.MIMEType)

	_, err = ReadImageFile(filepath.Join(dir, "missing.png"), 100)
	require.ErrorIs(t, err, os.ErrNotExist)
}
