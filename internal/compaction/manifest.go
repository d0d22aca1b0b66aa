// Package compaction implements the background merge scheduler and the
// generation bookkeeping that lets a merge swap in a freshly rewritten
// store crash-safely instead of wiping the live segment directories in
// place.
//
// A database starts at generation 0, using the plain "data"/"index"
// directory names so a never-merged store stays byte-compatible with the
// layout a store that has never been merged already uses. Each
// successful merge advances to the next generation, writing its output
// into freshly suffixed directories and recording the new generation
// number in a manifest file only once every record has been durably
// written. A crash before that manifest write leaves the previous
// generation's directories untouched and fully authoritative; a crash
// after leaves orphaned directories from the old generation, reclaimed
// the next time merge runs.
package compaction

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"

	"github.com/natefinch/atomic"
)

// ManifestFile is the name of the generation manifest inside a database
// directory.
const ManifestFile = "MANIFEST"

// Manifest records which segment generation is currently authoritative.
type Manifest struct {
	Generation uint64 `json:"generation"`
}

// ReadManifest loads the manifest at path. A missing manifest is not an
// error: it means the database has never been merged, and generation 0
// (the plain "data"/"index" directories) is authoritative.
func ReadManifest(path string) (Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Manifest{Generation: 0}, nil
		}
		return Manifest{}, fmt.Errorf("compaction: failed to read manifest %s: %w", path, err)
	}

	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return Manifest{}, fmt.Errorf("compaction: corrupt manifest %s: %w", path, err)
	}
	return m, nil
}

// WriteManifest durably and atomically records m at path: either the
// whole file is replaced, or a crash leaves the previous manifest (or its
// absence) intact. It is the single commit point of a merge: nothing
// before this call can make the new generation visible to a future Open.
func WriteManifest(path string, m Manifest) error {
	data, err := json.Marshal(m)
	if err != nil {
		return fmt.Errorf("compaction: failed to encode manifest: %w", err)
	}
	if err := atomic.WriteFile(path, bytes.NewReader(data)); err != nil {
		return fmt.Errorf("compaction: failed to write manifest %s: %w", path, err)
	}
	return nil
}

// GenerationDirName returns the on-disk directory name for name (e.g.
// "data" or "index") at the given generation. Generation 0 uses name
// unchanged; later generations get a "-gen-N" suffix so a merge's staging
// output never collides with the directories currently being served.
func GenerationDirName(name string, generation uint64) string {
	if generation == 0 {
		return name
	}
	return fmt.Sprintf("%s-gen-%d", name, generation)
}
