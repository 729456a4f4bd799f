package index

import (
	"bytes"
	"encoding/gob"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// LoadStatus tags the outcome of Load.
type LoadStatus int

const (
	Loaded LoadStatus = iota
	Missing
	ResetAfterCorruption
)

// LoadResult wraps a Load outcome: the snapshot (nil when Missing, a
// fresh empty snapshot after ResetAfterCorruption),
// the status tag, and, for ResetAfterCorruption, the error that
// triggered the reset so callers can log a user-visible notice.
type LoadResult struct {
	Snapshot *Snapshot
	Status   LoadStatus
	Cause    error
}

// Load reads the on-disk snapshot at path. A missing file yields
// Missing; a file that fails to decode yields ResetAfterCorruption with
// a fresh empty snapshot, never an error return, so callers can always
// proceed straight to a rebuild.
func Load(path string) (LoadResult, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return LoadResult{Status: Missing}, nil
		}
		return LoadResult{}, fmt.Errorf("index: reading %s: %w", path, err)
	}

	snap := NewSnapshot()
	dec := gob.NewDecoder(bytes.NewReader(data))
	if err := dec.Decode(snap); err != nil {
		return LoadResult{Status: ResetAfterCorruption, Snapshot: NewSnapshot(), Cause: err}, nil
	}
	if err := snap.Validate(); err != nil {
		return LoadResult{Status: ResetAfterCorruption, Snapshot: NewSnapshot(), Cause: err}, nil
	}
	return LoadResult{Status: Loaded, Snapshot: snap}, nil
}

// Save writes snap to path atomically: it encodes to a sibling ".tmp"
// file, fsyncs it, then renames over path. A crash between the write
// and the rename leaves the previous snapshot at path untouched.
func Save(path string, snap *Snapshot) error {
	tmp := path + ".tmp"

	f, err := os.OpenFile(tmp, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return fmt.Errorf("index: creating %s: %w", tmp, err)
	}

	enc := gob.NewEncoder(f)
	if err := enc.Encode(snap); err != nil {
		f.Close()
		os.Remove(tmp)
		return fmt.Errorf("index: encoding snapshot: %w", err)
	}
	if err := f.Sync(); err != nil {
		f.Close()
		os.Remove(tmp)
		return fmt.Errorf("index: syncing %s: %w", tmp, err)
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("index: closing %s: %w", tmp, err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("index: creating parent dir for %s: %w", path, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("index: renaming %s to %s: %w", tmp, path, err)
	}
	return nil
}
