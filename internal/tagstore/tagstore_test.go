package tagstore

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func openTemp(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "tags.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestRecordThenLastSync(t *testing.T) {
	s := openTemp(t)
	require.NoError(t, s.Record("p", "dir::main::p", 1000))

	ts, found, err := s.LastSync("p", "dir::main::p")
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, int64(1000), ts)
}

func TestLastSyncUnknownTag(t *testing.T) {
	s := openTemp(t)
	_, found, err := s.LastSync("p", "nope")
	require.NoError(t, err)
	require.False(t, found)
}

func TestListReturnsAllTagsForProvider(t *testing.T) {
	s := openTemp(t)
	require.NoError(t, s.Record("p", "tagA", 1))
	require.NoError(t, s.Record("p", "tagB", 2))
	require.NoError(t, s.Record("other", "tagC", 3))

	tags, err := s.List("p")
	require.NoError(t, err)
	require.Len(t, tags, 2)
	require.Equal(t, int64(1), tags["tagA"])
	require.Equal(t, int64(2), tags["tagB"])
}

func TestListUnknownProviderIsEmpty(t *testing.T) {
	s := openTemp(t)
	tags, err := s.List("ghost")
	require.NoError(t, err)
	require.Empty(t, tags)
}

func TestForgetRemovesEntry(t *testing.T) {
	s := openTemp(t)
	require.NoError(t, s.Record("p", "tagA", 1))
	require.NoError(t, s.Forget("p", "tagA"))

	_, found, err := s.LastSync("p", "tagA")
	require.NoError(t, err)
	require.False(t, found)
}

func TestForgetUnknownIsNoOp(t *testing.T) {
	s := openTemp(t)
	require.NoError(t, s.Forget("ghost", "whatever"))
}

func TestRecordOverwritesExisting(t *testing.T) {
	s := openTemp(t)
	require.NoError(t, s.Record("p", "tagA", 1))
	require.NoError(t, s.Record("p", "tagA", 2))

	ts, found, err := s.LastSync("p", "tagA")
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, int64(2), ts)
}
