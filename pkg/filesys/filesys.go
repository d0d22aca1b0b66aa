// Package filesys provides the filesystem primitives the storage engine
// needs: directory creation/removal, an advisory cross-process lock,
// directory listing, and segment-id discovery by filename suffix.
package filesys

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"

	"golang.org/x/sys/unix"
)

var (
	ErrIsNotDir  = errors.New("path isn't a directory")
	ErrLockHeld  = errors.New("lock already held")
	ErrNotLocked = errors.New("lock is not held")
)

// FileLock bundles an advisory-locked file descriptor with the path it was
// opened from, so Unlock can release and close it without the caller having
// to remember either.
type FileLock struct {
	file *os.File
	path string
}

// Path returns the filesystem path the lock was acquired on.
func (l *FileLock) Path() string {
	return l.path
}

// CreateDir creates a directory at the specified path with the given permissions.
//
// If the directory already exists:
//   - If 'force' is true, it proceeds without error.
//   - If 'force' is false, it returns an error.
//
// It also returns an error if the existing path is a file (not a directory).
func CreateDir(dirPath string, permission os.FileMode, force bool) error {
	// Get file information for the given path.
	stat, err := os.Stat(dirPath)
	// If 'force' is false and the path exists
	// return the error (indicating the directory already exists).
	if !force && !os.IsNotExist(err) {
		if err == nil {
			return os.ErrExist
		}
		return err
	}

	// If the path exists and it's not a directory, return an error.
	if stat != nil && !stat.IsDir() {
		return ErrIsNotDir
	}

	// Create all necessary parent directories if they don't exist, with the specified permissions.
	if err := os.MkdirAll(dirPath, permission); err != nil {
		return err
	}

	// Apply the requested permissions exactly, independent of the umask.
	return os.Chmod(dirPath, permission)
}

// DeleteDir deletes a directory and all its contents recursively.
// It returns any error encountered during the removal.
func DeleteDir(path string) error {
	return os.RemoveAll(path)
}

// Lock opens (creating if necessary) the file at path and acquires an
// advisory, exclusive, whole-file lock on it via flock(2). If the lock is
// already held, by this process or another, it returns ErrLockHeld
// immediately rather than blocking, so database Open can fail fast instead
// of hanging behind a stale holder.
func Lock(path string) (*FileLock, error) {
	file, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR, 0644)
	if err != nil {
		return nil, err
	}

	if err := unix.Flock(int(file.Fd()), unix.LOCK_EX|unix.LOCK_NB); err != nil {
		file.Close()
		if errors.Is(err, unix.EWOULDBLOCK) {
			return nil, ErrLockHeld
		}
		return nil, err
	}

	return &FileLock{file: file, path: path}, nil
}

// Unlock releases the advisory lock held by l and closes its underlying
// file descriptor. Unlock is safe to call at most once per successful Lock.
func Unlock(l *FileLock) error {
	if l == nil || l.file == nil {
		return ErrNotLocked
	}

	unlockErr := unix.Flock(int(l.file.Fd()), unix.LOCK_UN)
	closeErr := l.file.Close()
	l.file = nil

	if unlockErr != nil {
		return unlockErr
	}
	return closeErr
}

// ListDir enumerates the entries of dir, returning just their names and
// excluding "." and "..". It is what segment discovery and recovery use to
// find every "data<id>"/"hint<id>" file under a database directory.
func ListDir(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		name := entry.Name()
		if name == "." || name == ".." {
			continue
		}
		names = append(names, name)
	}
	return names, nil
}

// MaxSuffixID scans names for entries beginning with prefix followed by an
// unsigned integer, and returns the largest such integer found. It returns 0
// if no name matches, which doubles as "no existing segments" for callers
// bootstrapping a fresh database directory. This is the spec's MaxID
// primitive: recovery uses it (via seginfo.LatestID) to find the active
// segment id to continue appending to.
func MaxSuffixID(names []string, prefix string) uint32 {
	var max uint32
	for _, name := range names {
		if !strings.HasPrefix(name, prefix) {
			continue
		}
		suffix := strings.TrimPrefix(name, prefix)
		id, err := strconv.ParseUint(suffix, 10, 32)
		if err != nil {
			continue
		}
		if uint32(id) > max {
			max = uint32(id)
		}
	}
	return max
}

// Timestamp returns the current wall-clock time in whole seconds, the unit
// DataRecord and HintRecord timestamps are persisted in.
func Timestamp() int64 {
	return time.Now().Unix()
}
