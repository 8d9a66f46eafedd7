// Package kvstore implements KvStore, the log-structured storage engine:
// an append-only command log segmented by generation, an in-memory keydir,
// and online compaction that rewrites only live records.
//
// Grounded on the teacher's internal/engine.KVEngine (Open/Get/Put/Delete,
// RecoverKeyDir) for the overall shape, and on vi88i-kvstash's
// store.autoCompact for the "write to a fresh generation, then unlink the
// old ones" compaction strategy — generalized to spec.md §4.4's
// deterministic two-generation compaction rather than a whole-directory
// swap.
package kvstore

import (
	"encoding/json"
	"log/slog"
	"os"
	"sort"
	"sync"

	"github.com/jassi-singh/kvs/internal/keydir"
	"github.com/jassi-singh/kvs/internal/kverrors"
	"github.com/jassi-singh/kvs/internal/posio"
	"github.com/jassi-singh/kvs/internal/segment"
)

// CompactionThreshold is the hard-coded uncompacted-bytes trigger for
// online compaction. Not user-configurable (spec.md §6).
const CompactionThreshold = 1024 * 1024

// KvStore is the log-structured key/value engine described by spec.md
// §4.4. A *KvStore is safe for concurrent use by multiple goroutines; the
// server hands the same instance to every connection handler.
type KvStore struct {
	mu sync.Mutex

	path        string
	readers     map[uint64]*posio.PositionedReader
	writer      *posio.PositionedWriter
	currentGen  uint64
	index       keydir.Index
	uncompacted int64
}

// Open creates path if it does not exist, replays every existing
// generation to rebuild the keydir, and opens a fresh generation for
// append.
func Open(path string) (*KvStore, error) {
	if err := os.MkdirAll(path, 0755); err != nil {
		return nil, kverrors.Io("kvstore: mkdir", err)
	}

	s := &KvStore{
		path:    path,
		readers: make(map[uint64]*posio.PositionedReader),
		index:   make(keydir.Index),
	}

	gens, err := segment.SortedGens(path)
	if err != nil {
		return nil, err
	}

	var maxGen uint64
	for _, gen := range gens {
		reader, err := posio.NewPositionedReader(segment.LogPath(path, gen))
		if err != nil {
			return nil, err
		}
		s.readers[gen] = reader

		n, err := keydir.Replay(gen, reader, s.index)
		if err != nil {
			return nil, err
		}
		s.uncompacted += n

		if gen > maxGen {
			maxGen = gen
		}
	}

	nextGen := maxGen + 1
	if len(gens) == 0 {
		nextGen = 1
	}
	writer, err := segment.OpenNewLog(path, nextGen, s.readers)
	if err != nil {
		return nil, err
	}
	s.writer = writer
	s.currentGen = nextGen

	slog.Info("kvstore: opened",
		"path", path, "generations", len(gens), "keys", len(s.index), "active_gen", nextGen)
	return s, nil
}

// Get returns the value for key and true if it is present, or "", false,
// nil if it is not. A log position indexed as a Set that fails to
// deserialize as a Set is reported as kverrors.ErrUnexpectedCommandType.
func (s *KvStore) Get(key string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	pos, ok := s.index[key]
	if !ok {
		return "", false, nil
	}

	reader, ok := s.readers[pos.Gen]
	if !ok {
		return "", false, kverrors.Stringf("kvstore: no reader for generation %d", pos.Gen)
	}
	if err := reader.Seek(pos.Offset); err != nil {
		return "", false, err
	}
	buf := make([]byte, pos.Length)
	if err := reader.ReadExact(buf); err != nil {
		return "", false, err
	}

	var cmd keydir.Command
	if err := json.Unmarshal(buf, &cmd); err != nil {
		return "", false, kverrors.Serde("kvstore: get decode", err)
	}
	if cmd.Kind != keydir.KindSet {
		return "", false, kverrors.ErrUnexpectedCommandType
	}

	slog.Debug("kvstore: get", "key", key, "gen", pos.Gen, "offset", pos.Offset)
	return cmd.Value, true, nil
}

// Set stores value under key, durably, and triggers compaction if the
// uncompacted-bytes threshold is exceeded.
func (s *KvStore) Set(key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	start := s.writer.Pos()
	data, err := json.Marshal(keydir.SetCommand(key, value))
	if err != nil {
		return kverrors.Serde("kvstore: set encode", err)
	}
	if _, err := s.writer.Write(data); err != nil {
		return err
	}
	if err := s.writer.Flush(); err != nil {
		return err
	}
	length := s.writer.Pos() - start

	if prior, ok := s.index[key]; ok {
		s.uncompacted += prior.Length
	}
	s.index[key] = keydir.Pos{Gen: s.currentGen, Offset: start, Length: length}

	slog.Debug("kvstore: set", "key", key, "gen", s.currentGen, "offset", start, "length", length)

	if s.uncompacted > CompactionThreshold {
		return s.compact()
	}
	return nil
}

// Remove deletes key, returning kverrors.ErrKeyNotFound without writing a
// record if the key is absent.
func (s *KvStore) Remove(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	prior, ok := s.index[key]
	if !ok {
		return kverrors.ErrKeyNotFound
	}

	data, err := json.Marshal(keydir.RemoveCommand(key))
	if err != nil {
		return kverrors.Serde("kvstore: remove encode", err)
	}
	if _, err := s.writer.Write(data); err != nil {
		return err
	}
	if err := s.writer.Flush(); err != nil {
		return err
	}

	delete(s.index, key)
	s.uncompacted += prior.Length

	slog.Debug("kvstore: remove", "key", key)
	return nil
}

// compact rewrites every live record into a fresh generation and unlinks
// the now-obsolete ones. Must be called with s.mu held.
func (s *KvStore) compact() error {
	compactionGen := s.currentGen + 1
	newWriterGen := s.currentGen + 2

	compactionWriter, err := segment.OpenNewLog(s.path, compactionGen, s.readers)
	if err != nil {
		return err
	}
	newWriter, err := segment.OpenNewLog(s.path, newWriterGen, s.readers)
	if err != nil {
		return err
	}

	if err := s.writer.Close(); err != nil {
		slog.Warn("kvstore: compact: failed closing previous writer", "gen", s.currentGen, "error", err)
	}
	s.writer = newWriter
	s.currentGen = newWriterGen

	keys := make([]string, 0, len(s.index))
	for k := range s.index {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, key := range keys {
		pos := s.index[key]
		reader, ok := s.readers[pos.Gen]
		if !ok {
			return kverrors.Stringf("kvstore: compact: no reader for generation %d", pos.Gen)
		}
		if err := reader.Seek(pos.Offset); err != nil {
			return err
		}
		buf := make([]byte, pos.Length)
		if err := reader.ReadExact(buf); err != nil {
			return err
		}

		newOffset := compactionWriter.Pos()
		if _, err := compactionWriter.Write(buf); err != nil {
			return err
		}
		s.index[key] = keydir.Pos{Gen: compactionGen, Offset: newOffset, Length: pos.Length}
	}

	if err := compactionWriter.Close(); err != nil {
		return err
	}

	for gen, reader := range s.readers {
		if gen >= compactionGen {
			continue
		}
		if err := reader.Close(); err != nil {
			slog.Warn("kvstore: compact: failed closing stale reader", "gen", gen, "error", err)
		}
		delete(s.readers, gen)
		if err := os.Remove(segment.LogPath(s.path, gen)); err != nil {
			slog.Warn("kvstore: compact: failed removing stale generation", "gen", gen, "error", err)
		}
	}

	slog.Info("kvstore: compacted", "compaction_gen", compactionGen, "new_active_gen", newWriterGen, "keys", len(keys))
	s.uncompacted = 0
	return nil
}

// Uncompacted reports the current count of reclaimable bytes; exposed for
// tests that assert compaction was triggered.
func (s *KvStore) Uncompacted() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.uncompacted
}

// CurrentGen reports the generation currently being appended to; exposed
// for tests.
func (s *KvStore) CurrentGen() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.currentGen
}

// Close flushes and closes every open file handle.
func (s *KvStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var firstErr error
	if s.writer != nil {
		if err := s.writer.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	for gen, reader := range s.readers {
		if err := reader.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
		delete(s.readers, gen)
	}
	return firstErr
}
