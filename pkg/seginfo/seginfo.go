// Package seginfo provides utilities for naming and discovering the
// sequential segment files that back both the data and hint streams of the
// storage engine.
//
// Filename format: <prefix><id>
//
// Where:
//   - prefix: a configurable string identifying the stream ("data" or
//     "hint").
//   - id: a non-negative, non-padded integer segment id, starting at 0.
//
// Example filenames:
//
//	data0
//	data1
//	hint0
package seginfo

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/ignitedb/ignite/pkg/filesys"
)

// GenerateName builds the filename for segment id under the naming
// convention "<prefix><id>", e.g. GenerateName(3, "data") == "data3".
func GenerateName(id uint64, prefix string) string {
	return fmt.Sprintf("%s%d", prefix, id)
}

// ParseSegmentID extracts the numeric id from a segment filename produced
// by GenerateName, reporting ok=false if name doesn't start with prefix or
// the remainder isn't a valid unsigned integer (e.g. the LOCK file, or a
// directory entry belonging to a different stream).
func ParseSegmentID(name, prefix string) (id uint64, ok bool) {
	if !strings.HasPrefix(name, prefix) {
		return 0, false
	}
	suffix := strings.TrimPrefix(name, prefix)
	parsed, err := strconv.ParseUint(suffix, 10, 64)
	if err != nil {
		return 0, false
	}
	return parsed, true
}

// AllIDs returns every segment id present under dir for the given prefix,
// sorted ascending. Recovery walks hint segments in this order so that,
// combined with each record's own timestamp, last-write-wins resolves
// consistently regardless of the underlying directory listing order.
func AllIDs(dir, prefix string) ([]uint64, error) {
	names, err := filesys.ListDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to list segment directory %s: %w", dir, err)
	}

	ids := make([]uint64, 0, len(names))
	for _, name := range names {
		id, ok := ParseSegmentID(name, prefix)
		if !ok {
			continue
		}
		ids = append(ids, id)
	}

	// Small, bounded insertion sort: segment counts per database directory
	// are modest, and this avoids pulling in sort for a handful of ids.
	for i := 1; i < len(ids); i++ {
		for j := i; j > 0 && ids[j-1] > ids[j]; j-- {
			ids[j-1], ids[j] = ids[j], ids[j-1]
		}
	}
	return ids, nil
}

// LatestID returns the largest segment id present under dir for the given
// prefix, and whether any segment was found at all. A freshly bootstrapped
// database directory has none, so callers must check found before trusting
// id. It is built directly on filesys.MaxSuffixID (the spec's MaxID
// primitive) rather than re-deriving the same max-suffix scan here.
func LatestID(dir, prefix string) (id uint64, found bool, err error) {
	names, err := filesys.ListDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, false, nil
		}
		return 0, false, fmt.Errorf("failed to list segment directory %s: %w", dir, err)
	}

	for _, name := range names {
		if _, ok := ParseSegmentID(name, prefix); ok {
			found = true
			break
		}
	}
	if !found {
		return 0, false, nil
	}

	return uint64(filesys.MaxSuffixID(names, prefix)), true, nil
}

// Path joins a segment directory and filename into the full path used to
// open it.
func Path(dir string, id uint64, prefix string) string {
	return filepath.Join(dir, GenerateName(id, prefix))
}
