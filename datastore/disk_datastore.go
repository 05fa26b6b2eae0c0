package datastore

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/danthegoodman1/tabula/utils"
)

type (
	DiskDataStore struct {
		rootPath string
	}
)

func NewDiskDataStore(rootPath string) (*DiskDataStore, error) {
	dds := &DiskDataStore{
		rootPath: rootPath,
	}

	return dds, nil
}

func (dds *DiskDataStore) path(name string) string {
	return filepath.Join(dds.rootPath, filepath.FromSlash(name))
}

func (dds *DiskDataStore) Open(_ context.Context, name string) (io.ReadCloser, error) {
	f, err := os.Open(dds.path(name))
	if err != nil {
		return nil, fmt.Errorf("error in os.Open: %w", err)
	}
	return f, nil
}

func (dds *DiskDataStore) Put(ctx context.Context, name string, r io.Reader) error {
	p := dds.path(name)
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return fmt.Errorf("error in os.MkdirAll: %w", err)
	}
	// written beside the target then renamed, so readers never see a partial file
	tmp := p + ".tmp-" + utils.GenRandomShortID()
	f, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("error in os.Create: %w", err)
	}
	n, err := io.Copy(f, r)
	if err != nil {
		f.Close()
		os.Remove(tmp)
		return fmt.Errorf("error in io.Copy: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("error closing %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, p); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("error in os.Rename: %w", err)
	}
	logger.Debug().Str("path", p).Int64("bytes", n).Msg("wrote file to disk")
	return nil
}

func (dds *DiskDataStore) Location(name string) string {
	return dds.path(name)
}

func (dds *DiskDataStore) Shutdown(context.Context) error {
	return nil
}
