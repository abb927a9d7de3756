// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package persist

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
)

// ErrNotFound is returned by KV.Get when the key has no value.
var ErrNotFound = errors.New("persist: key not found")

// KV is the durable local cache. Values are opaque JSON documents.
type KV interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// Backend kinds accepted by Open.
const (
	KindSQLite = "sqlite"
	KindFile   = "file"
	KindRedis  = "redis"
	KindMemory = "memory"
)

// Options selects and configures a KV backend.
type Options struct {
	Kind          string
	Path          string // sqlite database file or directory for file backend
	RedisAddr     string
	RedisPassword string
	RedisDB       int
}

// Open returns the backend named by opts.Kind.
func Open(ctx context.Context, opts Options) (KV, error) {
	switch strings.ToLower(strings.TrimSpace(opts.Kind)) {
	case KindSQLite, "":
		return OpenSQLite(opts.Path)
	case KindFile:
		return NewFileKV(opts.Path)
	case KindRedis:
		return OpenRedis(ctx, opts.RedisAddr, opts.RedisPassword, opts.RedisDB)
	case KindMemory:
		return NewMemoryKV(), nil
	default:
		return nil, fmt.Errorf("unknown cache type %q", opts.Kind)
	}
}

// MemoryKV keeps values in process memory. Used for guests and tests.
type MemoryKV struct {
	mu     sync.RWMutex
	values map[string][]byte
}

// NewMemoryKV returns an empty MemoryKV.
func NewMemoryKV() *MemoryKV {
	return &MemoryKV{values: make(map[string][]byte)}
}

func (m *MemoryKV) Get(ctx context.Context, key string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.values[key]
	if !ok {
		return nil, ErrNotFound
	}
	return append([]byte(nil), v...), nil
}

func (m *MemoryKV) Set(ctx context.Context, key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[key] = append([]byte(nil), value...)
	return nil
}

func (m *MemoryKV) Delete(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.values, key)
	return nil
}

func (m *MemoryKV) Close() error { return nil }
