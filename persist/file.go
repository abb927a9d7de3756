// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package persist

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"strings"
)

// FileKV stores one JSON file per key under a directory.
type FileKV struct {
	dir string
}

// NewFileKV creates dir if needed and returns a FileKV rooted there.
func NewFileKV(dir string) (*FileKV, error) {
	dir = strings.TrimSpace(dir)
	if dir == "" {
		return nil, fmt.Errorf("cache path is required")
	}
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("storage error creating directories: %w", err)
	}
	return &FileKV{dir: dir}, nil
}

func (f *FileKV) path(key string) string {
	return filepath.Join(f.dir, url.QueryEscape(key)+".json")
}

// Get returns the stored document. A file that is not valid JSON is moved
// aside to <name>.corrupt and reported as missing.
func (f *FileKV) Get(ctx context.Context, key string) ([]byte, error) {
	path := f.path(key)
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("storage error reading %s: %w", path, err)
	}
	if !json.Valid(data) {
		backupPath := path + ".corrupt"
		_ = os.Rename(path, backupPath)
		slog.Warn("corrupt cache file moved aside", "path", path, "backup", backupPath)
		return nil, ErrNotFound
	}
	return data, nil
}

// Set writes value atomically through a temp file and rename.
func (f *FileKV) Set(ctx context.Context, key string, value []byte) error {
	if !json.Valid(value) {
		return fmt.Errorf("storage error: value for %s is not JSON", key)
	}
	path := f.path(key)
	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, value, 0o600); err != nil {
		return fmt.Errorf("storage error writing temp file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("storage error renaming temp file: %w", err)
	}
	return nil
}

func (f *FileKV) Delete(ctx context.Context, key string) error {
	err := os.Remove(f.path(key))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("storage error removing %s: %w", key, err)
	}
	return nil
}

func (f *FileKV) Close() error { return nil }
