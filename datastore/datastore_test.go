package datastore

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDiskDataStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	root := t.TempDir()
	ds, err := NewDiskDataStore(root)
	require.NoError(t, err)

	require.NoError(t, ds.Put(ctx, "Summer_Olympics/Gold.csv", strings.NewReader("NOC,Country,Total\nUSA,United States,2088\n")))

	r, err := ds.Open(ctx, "Summer_Olympics/Gold.csv")
	require.NoError(t, err)
	defer r.Close()

	b, err := io.ReadAll(r)
	require.NoError(t, err)
	assert.Equal(t, "NOC,Country,Total\nUSA,United States,2088\n", string(b))
	assert.Equal(t, filepath.Join(root, "Summer_Olympics", "Gold.csv"), ds.Location("Summer_Olympics/Gold.csv"))

	// overwrite leaves no temp files behind
	require.NoError(t, ds.Put(ctx, "Summer_Olympics/Gold.csv", strings.NewReader("NOC\n")))
	entries, err := os.ReadDir(filepath.Join(root, "Summer_Olympics"))
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "Gold.csv", entries[0].Name())
}

func TestDiskDataStoreMissingFile(t *testing.T) {
	ds, err := NewDiskDataStore(t.TempDir())
	require.NoError(t, err)

	_, err = ds.Open(context.Background(), "titanic.csv")
	assert.Error(t, err)
}

func TestS3DataStoreRequiresBucket(t *testing.T) {
	_, err := NewS3DataStore(context.Background(), "", "data")
	assert.ErrorIs(t, err, ErrMissingBucket)
}

func TestJoinKey(t *testing.T) {
	assert.Equal(t, "data/titanic.csv", joinKey("data", "titanic.csv"))
	assert.Equal(t, "titanic.csv", joinKey("", "titanic.csv"))
	assert.Equal(t, "a/b/c.csv", joinKey("/a/", "b/c.csv"))
}

func TestS3DataStoreLocation(t *testing.T) {
	s, err := NewS3DataStore(context.Background(), "tabula-data", "datasets")
	require.NoError(t, err)
	assert.Equal(t, "s3://tabula-data/datasets/census.sqlite", s.Location("census.sqlite"))
}
