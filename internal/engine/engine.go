// Package engine defines the Engine capability that decouples the server
// from any one storage implementation (spec.md §4.5), selects between the
// two implementations by name, and enforces the on-disk engine sentinel
// (spec.md §6).
//
// Grounded on the teacher's Engine interface in internal/engine/engine.go
// (Get/Put/Delete) and on original_source/src/engines/mod.rs's KvsEngine
// trait and the kvs/sled dispatch in original_source/src/bin/kvs-server.rs.
package engine

import (
	"os"
	"path/filepath"

	"github.com/jassi-singh/kvs/internal/kverrors"
	"github.com/jassi-singh/kvs/internal/kvstore"
)

// Name identifies which storage implementation a store directory belongs
// to.
type Name string

const (
	KVS  Name = "kvs"
	Sled Name = "sled"
)

// Engine is the minimal get/set/remove capability the server is
// parameterized over. A value satisfying Engine may be freely copied
// across goroutines — every implementation here holds only a shared
// pointer to its underlying storage, so copies are independent handles
// onto the same state (spec.md §5, "Engine handle sharing").
type Engine interface {
	Get(key string) (value string, found bool, err error)
	Set(key, value string) error
	Remove(key string) error
	Close() error
}

// Open opens the named engine rooted at path. KvStore satisfies Engine
// directly; *kvstore.KvStore is returned as-is.
func Open(name Name, path string) (Engine, error) {
	switch name {
	case KVS:
		return kvstore.Open(path)
	case Sled:
		return NewBtreeEngine(), nil
	default:
		return nil, kverrors.Stringf("engine: unknown engine %q", name)
	}
}

const sentinelFile = "engine"

// CheckSentinel reads the "engine" sentinel file in path, if any, and
// returns an error if it names a different engine than want. A missing
// sentinel is not an error — the caller should write one after a
// successful open.
func CheckSentinel(path string, want Name) error {
	data, err := os.ReadFile(filepath.Join(path, sentinelFile))
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return kverrors.Io("engine: read sentinel", err)
	}

	current := Name(data)
	if current != want {
		return kverrors.Stringf("wrong engine: store was created with %q, cannot open as %q", current, want)
	}
	return nil
}

// WriteSentinel writes the "engine" sentinel file naming which engine
// owns path, creating path if it does not already exist.
func WriteSentinel(path string, name Name) error {
	if err := os.MkdirAll(path, 0755); err != nil {
		return kverrors.Io("engine: mkdir for sentinel", err)
	}
	if err := os.WriteFile(filepath.Join(path, sentinelFile), []byte(name), 0644); err != nil {
		return kverrors.Io("engine: write sentinel", err)
	}
	return nil
}
