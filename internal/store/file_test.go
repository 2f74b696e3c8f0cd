package store

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qureshisamad/Dynamic-Form-Maker/internal/form"
)

// formsDoc returns a stored document holding n empty forms.
func formsDoc(n int) []byte {
	recs := make([]string, n)
	for i := range recs {
		recs[i] = fmt.Sprintf(`{"name":"form%d","structure":[]}`, i)
	}
	return []byte("[" + strings.Join(recs, ",") + "]")
}

func formCounts(backups []Backup) []int {
	out := make([]int, len(backups))
	for i, b := range backups {
		out[i] = b.Forms
	}
	return out
}

func TestFileBackendRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "forms.json")
	backend := NewFileBackend(path, 2)

	data, err := backend.Read()
	require.NoError(t, err)
	assert.Nil(t, data)

	lib := NewLibrary(backend)
	_, err = lib.Save("one", sample(t))
	require.NoError(t, err)
	_, err = lib.Save("two", form.Tree{})
	require.NoError(t, err)

	assert.Len(t, NewLibrary(NewFileBackend(path, 2)).Load(), 2)
	assert.Equal(t, []int{1}, formCounts(backend.Backups()))

	require.NoError(t, backend.Restore(0))
	assert.Len(t, NewLibrary(NewFileBackend(path, 2)).Load(), 1)
	assert.Equal(t, []int{2, 1}, formCounts(backend.Backups()), "restore keeps the replaced version")

	require.NoError(t, backend.Clear())
	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err))
	require.NoError(t, backend.Clear())
}

func TestFileBackendRotatesBackups(t *testing.T) {
	path := filepath.Join(t.TempDir(), "forms.json")
	backend := NewFileBackend(path, 3)

	for n := 1; n <= 5; n++ {
		require.NoError(t, backend.Write(formsDoc(n)))
	}

	data, err := backend.Read()
	require.NoError(t, err)
	assert.Equal(t, formsDoc(5), data)

	backups := backend.Backups()
	assert.Equal(t, []int{4, 3, 2}, formCounts(backups))
	assert.Equal(t, path+".bak", backups[0].Path)
	assert.Equal(t, path+".bak.2", backups[2].Path)
	_, err = os.Stat(path + ".bak.3")
	assert.True(t, os.IsNotExist(err), "oldest backup is dropped")
}

func TestFileBackendWithoutBackups(t *testing.T) {
	path := filepath.Join(t.TempDir(), "forms.json")
	backend := NewFileBackend(path, 0)

	require.NoError(t, backend.Write(formsDoc(1)))
	require.NoError(t, backend.Write(formsDoc(2)))

	assert.Empty(t, backend.Backups())
	_, err := os.Stat(path + ".bak")
	assert.True(t, os.IsNotExist(err))
}

func TestFileBackendRestoreValidatesForms(t *testing.T) {
	path := filepath.Join(t.TempDir(), "forms.json")
	backend := NewFileBackend(path, 4)

	for _, doc := range [][]byte{
		formsDoc(1),
		[]byte(`null`),
		[]byte(`[{"structure":[]}]`),
		[]byte(`{"oops":true}`),
		formsDoc(2),
	} {
		require.NoError(t, backend.Write(doc))
	}
	assert.Equal(t, []int{-1, -1, -1, 1}, formCounts(backend.Backups()))

	assert.ErrorContains(t, backend.Restore(0), "invalid form list")
	assert.ErrorIs(t, backend.Restore(1), form.ErrInvalidStructure)
	assert.ErrorContains(t, backend.Restore(2), "document is null")
	assert.ErrorIs(t, backend.Restore(9), form.ErrNotFound)

	data, err := backend.Read()
	require.NoError(t, err)
	assert.Equal(t, formsDoc(2), data, "rejected restores leave the store alone")
	assert.Len(t, backend.Backups(), 4)

	require.NoError(t, backend.Restore(3))
	data, err = backend.Read()
	require.NoError(t, err)
	assert.Equal(t, formsDoc(1), data)
	assert.Equal(t, 2, backend.Backups()[0].Forms)
}

func TestFileBackendWriteLeavesNoTempFiles(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested")
	path := filepath.Join(dir, "forms.json")
	backend := NewFileBackend(path, 1)

	require.NoError(t, backend.Write(formsDoc(1)))
	require.NoError(t, backend.Write(formsDoc(2)))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	var names []string
	for _, e := range entries {
		names = append(names, e.Name())
	}
	assert.ElementsMatch(t, []string{"forms.json", "forms.json.bak"}, names)
}
