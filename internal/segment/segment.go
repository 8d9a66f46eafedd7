// Package segment manages the naming, enumeration, and creation of
// generation log files inside a kvs store directory. Deleting obsolete
// generations is left to the caller (kvstore's compaction).
//
// Grounded on the generation-file bookkeeping in vi88i-kvstash's
// store.getSegmentFiles/segmentFilePattern, generalized to the "<N>.log"
// naming spec.md requires (vi88i-kvstash uses "seg<N>.log").
package segment

import (
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"

	"github.com/jassi-singh/kvs/internal/kverrors"
	"github.com/jassi-singh/kvs/internal/posio"
)

var genFilePattern = regexp.MustCompile(`^(\d+)\.log$`)

// SortedGens scans dir and returns the generation numbers of every regular
// file whose name matches "<decimal>.log", in ascending order.
func SortedGens(dir string) ([]uint64, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, kverrors.Io("segment: read dir", err)
	}

	var gens []uint64
	for _, e := range entries {
		if !e.Type().IsRegular() {
			continue
		}
		m := genFilePattern.FindStringSubmatch(e.Name())
		if m == nil {
			continue
		}
		n, err := strconv.ParseUint(m[1], 10, 64)
		if err != nil {
			continue
		}
		gens = append(gens, n)
	}

	sort.Slice(gens, func(i, j int) bool { return gens[i] < gens[j] })
	return gens, nil
}

// LogPath returns the deterministic path of generation gen's log file
// inside dir.
func LogPath(dir string, gen uint64) string {
	return filepath.Join(dir, strconv.FormatUint(gen, 10)+".log")
}

// OpenNewLog opens generation gen's log file for append, installs a fresh
// read-only reader for it into readers, and returns the append writer.
// On any failure, no partial entry is left in readers.
func OpenNewLog(dir string, gen uint64, readers map[uint64]*posio.PositionedReader) (*posio.PositionedWriter, error) {
	path := LogPath(dir, gen)

	writer, err := posio.NewPositionedWriter(path)
	if err != nil {
		return nil, err
	}

	reader, err := posio.NewPositionedReader(path)
	if err != nil {
		writer.Close()
		return nil, err
	}

	readers[gen] = reader
	return writer, nil
}
