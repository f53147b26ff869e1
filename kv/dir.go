package kv

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"sync"
)

// this file persists slots in a folder, one file per key, so that the data stays
// human readable and can live in a private git repository.
//
// Writes go to a temporary file in the same folder which is then renamed over
// the previous value, so a crash never leaves a half written slot behind.

const slotExt = ".json"

// Dir is a Store backed by a folder on the local disk.
type Dir struct {
	folder string
	mu     sync.Mutex // serializes writers within the process.
}

// NewDir returns a Store writing into folder. The folder is created on the first Set.
func NewDir(folder string) *Dir {
	return &Dir{folder: folder}
}

// Folder returns the folder this store lives in.
func (d *Dir) Folder() string { return d.folder }

// filename maps a key to its file. Keys are escaped so that any string is a valid key.
func (d *Dir) filename(key string) string {
	return filepath.Join(d.folder, url.PathEscape(key)+slotExt)
}

func (d *Dir) Get(ctx context.Context, key string) (string, bool, error) {
	if err := ctx.Err(); err != nil {
		return "", false, err
	}
	content, err := os.ReadFile(d.filename(key))
	if errors.Is(err, fs.ErrNotExist) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("cannot read slot %q: %w", key, err)
	}
	return string(content), true, nil
}

func (d *Dir) Set(ctx context.Context, key, value string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	d.mu.Lock()
	defer d.mu.Unlock()

	if err := os.MkdirAll(d.folder, 0755); err != nil {
		return fmt.Errorf("cannot create storage folder %q: %w", d.folder, err)
	}

	f, err := os.CreateTemp(d.folder, ".slot-*")
	if err != nil {
		return fmt.Errorf("cannot create temporary file for slot %q: %w", key, err)
	}
	tmp := f.Name()
	if _, err := f.WriteString(value); err != nil {
		f.Close()
		os.Remove(tmp)
		return fmt.Errorf("cannot write slot %q: %w", key, err)
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("cannot write slot %q: %w", key, err)
	}
	if err := os.Rename(tmp, d.filename(key)); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("cannot replace slot %q: %w", key, err)
	}
	return nil
}
