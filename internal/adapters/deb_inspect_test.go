package adapters

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"debmatrix/tests/testutil"
)

func TestDataEntryCount(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ossec-hids_2.8-3_amd64.deb")
	testutil.WriteFakeDeb(t, path, 73)
	adapter := NewDebInspectAdapter()

	count, err := adapter.DataEntryCount(path)
	require.NoError(t, err)
	assert.Equal(t, 73, count)
}

func TestDataEntryCountSparsePackage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.deb")
	testutil.WriteFakeDeb(t, path, 3)
	adapter := NewDebInspectAdapter()

	count, err := adapter.DataEntryCount(path)
	require.NoError(t, err)
	assert.Equal(t, 3, count)
}

func TestDataEntryCountMissingFile(t *testing.T) {
	adapter := NewDebInspectAdapter()
	_, err := adapter.DataEntryCount(filepath.Join(t.TempDir(), "missing.deb"))
	require.Error(t, err)
	assert.Equal(t, errbuilder.CodeNotFound, errbuilder.CodeOf(err))
}

func TestDataEntryCountNotAnArchive(t *testing.T) {
	path := filepath.Join(t.TempDir(), "garbage.deb")
	require.NoError(t, os.WriteFile(path, []byte("this is not an ar archive"), 0o644))
	adapter := NewDebInspectAdapter()

	_, err := adapter.DataEntryCount(path)
	require.Error(t, err)
	assert.Equal(t, errbuilder.CodeInternal, errbuilder.CodeOf(err))
}
