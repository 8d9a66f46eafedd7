package kvstore

import (
	"encoding/json"
	"fmt"
	"testing"

	"github.com/jassi-singh/kvs/internal/keydir"
	"github.com/jassi-singh/kvs/internal/kverrors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKvStore_SetGetRemove(t *testing.T) {
	dir := t.TempDir()
	store, err := Open(dir)
	require.NoError(t, err)
	defer store.Close()

	tests := []struct {
		name  string
		key   string
		value string
	}{
		{"simple", "key1", "value1"},
		{"empty value", "key2", ""},
		{"unicode value", "key3", "héllo wörld"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.NoError(t, store.Set(tt.key, tt.value))

			got, found, err := store.Get(tt.key)
			require.NoError(t, err)
			assert.True(t, found)
			assert.Equal(t, tt.value, got)
		})
	}
}

func TestKvStore_GetMissingKey(t *testing.T) {
	dir := t.TempDir()
	store, err := Open(dir)
	require.NoError(t, err)
	defer store.Close()

	value, found, err := store.Get("missing")
	require.NoError(t, err)
	assert.False(t, found)
	assert.Empty(t, value)
}

func TestKvStore_RemoveMissingKeyIsError(t *testing.T) {
	dir := t.TempDir()
	store, err := Open(dir)
	require.NoError(t, err)
	defer store.Close()

	err = store.Remove("missing")
	assert.ErrorIs(t, err, kverrors.ErrKeyNotFound)
}

func TestKvStore_SetOverwriteThenRemove(t *testing.T) {
	dir := t.TempDir()
	store, err := Open(dir)
	require.NoError(t, err)
	defer store.Close()

	require.NoError(t, store.Set("k", "v1"))
	require.NoError(t, store.Set("k", "v2"))

	got, found, err := store.Get("k")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "v2", got)

	require.NoError(t, store.Remove("k"))
	_, found, err = store.Get("k")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestKvStore_DurableAcrossReopen(t *testing.T) {
	dir := t.TempDir()

	store, err := Open(dir)
	require.NoError(t, err)
	require.NoError(t, store.Set("a", "1"))
	require.NoError(t, store.Set("b", "2"))
	require.NoError(t, store.Remove("a"))
	require.NoError(t, store.Close())

	reopened, err := Open(dir)
	require.NoError(t, err)
	defer reopened.Close()

	_, found, err := reopened.Get("a")
	require.NoError(t, err)
	assert.False(t, found, "removed key must not survive replay")

	value, found, err := reopened.Get("b")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "2", value)
}

func TestKvStore_CompactionTriggersAndKeepsValues(t *testing.T) {
	dir := t.TempDir()
	store, err := Open(dir)
	require.NoError(t, err)
	defer store.Close()

	// Repeatedly overwrite a small set of keys with large values so the
	// uncompacted-bytes counter crosses CompactionThreshold purely from
	// shadowed Set records, then confirm compaction actually ran: the
	// generation advances and the reclaimable count restarted from zero.
	big := make([]byte, 4096)
	for i := range big {
		big[i] = 'x'
	}
	value := string(big)

	genBefore := store.CurrentGen()
	for i := 0; i < 400; i++ {
		key := fmt.Sprintf("key-%d", i%4)
		require.NoError(t, store.Set(key, value))
	}

	// Every record has the same length and only the first Set of each of
	// the 4 keys shadows nothing, so the counter first exceeds the
	// threshold on Set number 4 + CompactionThreshold/recordLen + 1 (the
	// 258th). Compaction resets it there, and each later Set shadows one
	// live record again, which stays below the threshold.
	record, err := json.Marshal(keydir.SetCommand("key-0", value))
	require.NoError(t, err)
	recordLen := int64(len(record))
	triggeredAt := 4 + CompactionThreshold/recordLen + 1

	assert.Greater(t, store.CurrentGen(), genBefore, "compaction must open a new generation")
	assert.EqualValues(t, (400-triggeredAt)*recordLen, store.Uncompacted(),
		"compaction must reset the reclaimable-bytes counter")

	for i := 0; i < 4; i++ {
		key := fmt.Sprintf("key-%d", i)
		got, found, err := store.Get(key)
		require.NoError(t, err)
		require.True(t, found)
		assert.Equal(t, value, got)
	}
}
