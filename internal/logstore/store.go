// Package logstore persists encoded mutation logs.
//
// A location is either a local path or an S3 URL of the form
// s3://bucket/key. Open resolves a location into a Store and the object
// name inside it:
//
//	store, name, err := logstore.Open("s3://traces/run-42.msgpack", opts)
//	err = store.Put(ctx, name, data)
package logstore

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ErrNotFound is returned by Get when no log exists under the name.
var ErrNotFound = errors.New("logstore: log not found")

// Store reads and writes whole mutation logs by name.
type Store interface {
	Put(ctx context.Context, name string, data []byte) error
	Get(ctx context.Context, name string) ([]byte, error)
}

// DiskStore stores logs as files under a directory.
type DiskStore struct {
	dir string
}

// NewDiskStore creates a store rooted at dir. Names are relative to dir
// unless they are absolute.
func NewDiskStore(dir string) *DiskStore {
	return &DiskStore{dir: dir}
}

func (s *DiskStore) path(name string) string {
	if filepath.IsAbs(name) || s.dir == "" {
		return name
	}
	return filepath.Join(s.dir, name)
}

// Put writes data to name, creating parent directories.
func (s *DiskStore) Put(_ context.Context, name string, data []byte) error {
	path := s.path(name)
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}
	return os.WriteFile(path, data, 0644)
}

// Get reads the log stored under name.
func (s *DiskStore) Get(_ context.Context, name string) ([]byte, error) {
	data, err := os.ReadFile(s.path(name))
	if os.IsNotExist(err) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	return data, err
}

// Open resolves location into a store and the name to use with it.
func Open(location string, opts S3Options) (Store, string, error) {
	rest, ok := strings.CutPrefix(location, "s3://")
	if !ok {
		return NewDiskStore(""), location, nil
	}

	bucket, key, _ := strings.Cut(rest, "/")
	if bucket == "" || key == "" || strings.HasSuffix(key, "/") {
		return nil, "", fmt.Errorf("logstore: %q must be s3://bucket/key", location)
	}
	return NewS3Store(NewS3Client(opts), bucket, ""), key, nil
}
