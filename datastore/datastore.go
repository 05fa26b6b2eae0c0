package datastore

import (
	"context"
	"io"

	"github.com/danthegoodman1/tabula/gologger"
	"github.com/danthegoodman1/tabula/utils"
)

var (
	logger = gologger.NewLogger()
)

type (
	// DataStore hands out the raw files exercises read, and stores the files
	// (charts, parquet exports) they produce. Names are slash separated.
	DataStore interface {
		// Open creates a reader for an entire file
		Open(ctx context.Context, name string) (io.ReadCloser, error)
		// Put writes the whole of r to name, replacing any existing file
		Put(ctx context.Context, name string, r io.Reader) error
		// Location is a human readable address of name, for printing
		Location(name string) string

		Shutdown(ctx context.Context) error
	}
)

// NewDataStore builds the store selected by DATA_STORE, rooted at root
// (a directory on disk, or a key prefix in S3_BUCKET_NAME).
func NewDataStore(ctx context.Context, root string) (DataStore, error) {
	if utils.DATA_STORE == "s3" {
		return NewS3DataStore(ctx, utils.S3_BUCKET_NAME, joinKey(utils.S3_PREFIX, root))
	}
	return NewDiskDataStore(root)
}
