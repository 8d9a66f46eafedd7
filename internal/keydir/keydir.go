// Package keydir implements the in-memory key directory — the index
// mapping every live key to the exact byte range of its most recent Set
// record — and the replay logic that rebuilds it from a generation's log
// file on open.
//
// Grounded on the teacher's RecoverKeyDir/scanLogFile in
// internal/engine/engine.go, generalized from its fixed-width binary
// header to streaming JSON record boundaries (spec.md §4.3, §9
// "Streaming JSON framing"), and on vi88i-kvstash's buildIndex/readSegment
// for the shadowed-bytes bookkeeping.
package keydir

import (
	"encoding/json"
	"io"

	"github.com/jassi-singh/kvs/internal/kverrors"
	"github.com/jassi-singh/kvs/internal/posio"
)

// CommandKind discriminates the two command variants written to the log.
type CommandKind string

const (
	KindSet    CommandKind = "set"
	KindRemove CommandKind = "remove"
)

// Command is the tagged variant persisted to the log, one self-delimiting
// JSON value per record.
type Command struct {
	Kind  CommandKind `json:"kind"`
	Key   string      `json:"key"`
	Value string      `json:"value,omitempty"`
}

// SetCommand builds a Set(key, value) command.
func SetCommand(key, value string) Command {
	return Command{Kind: KindSet, Key: key, Value: value}
}

// RemoveCommand builds a Remove(key) command.
func RemoveCommand(key string) Command {
	return Command{Kind: KindRemove, Key: key}
}

// Pos identifies a record's exact location on disk: its generation, the
// absolute byte offset of its first byte, and its length in bytes.
type Pos struct {
	Gen    uint64
	Offset int64
	Length int64
}

// Index is the in-memory keydir: key -> its most recent Set's location.
// Iteration order is insertion order is not guaranteed; callers that need
// deterministic compaction order sort the keys themselves.
type Index map[string]Pos

// Replay streams every command record out of reader (which is seeked to
// its start), applying Set records as index upserts and Remove records as
// index deletions, and returns the number of bytes made reclaimable by
// shadowed or removed entries. Generations must be replayed in ascending
// order by the caller so later writes correctly shadow earlier ones.
func Replay(gen uint64, reader *posio.PositionedReader, idx Index) (uncompacted int64, err error) {
	if err := reader.Seek(0); err != nil {
		return 0, err
	}

	dec := json.NewDecoder(reader.Reader())
	prevOffset := dec.InputOffset()

	for {
		var cmd Command
		if err := dec.Decode(&cmd); err != nil {
			if err == io.EOF {
				break
			}
			return uncompacted, kverrors.Serde("keydir: replay decode", err)
		}
		newOffset := dec.InputOffset()
		length := newOffset - prevOffset

		switch cmd.Kind {
		case KindSet:
			if prior, ok := idx[cmd.Key]; ok {
				uncompacted += prior.Length
			}
			idx[cmd.Key] = Pos{Gen: gen, Offset: prevOffset, Length: length}
		case KindRemove:
			if prior, ok := idx[cmd.Key]; ok {
				uncompacted += prior.Length
				delete(idx, cmd.Key)
			}
			uncompacted += length
		}

		prevOffset = newOffset
	}

	if err := reader.Sync(); err != nil {
		return uncompacted, err
	}
	return uncompacted, nil
}
