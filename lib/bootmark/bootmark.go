// Copyright 2026 The Ridgeline Authors
// SPDX-License-Identifier: Apache-2.0

package bootmark

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/fxamacker/cbor/v2"
)

// DefaultPath is where the packaged launcher keeps its relaunch mark.
// The directory is created by the package's postinstall step.
const DefaultPath = "/var/lib/ridgeline-agent/relaunch-marker.cbor"

// Mark records one relaunch attempt.
type Mark struct {
	// ExecutablePath is the resolved self path that was re-exec'd.
	ExecutablePath string `cbor:"executable_path"`

	// SearchPath is the corrected loader search path installed into
	// the relaunched process's environment.
	SearchPath string `cbor:"search_path"`

	// Timestamp is when the relaunch was initiated. Marks older than
	// the caller's staleness window are ignored.
	Timestamp time.Time `cbor:"timestamp"`
}

// encMode encodes marks deterministically so repeated writes of the
// same mark produce identical bytes.
var encMode cbor.EncMode

func init() {
	var err error
	encMode, err = cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		panic("bootmark: CBOR encoder initialization failed: " + err.Error())
	}
}

// Write atomically writes a mark file: temp file in the same
// directory, fsync, rename. A reader never observes a partial mark.
// The parent directory must exist; the file is created mode 0600.
func Write(path string, mark Mark) error {
	data, err := encMode.Marshal(mark)
	if err != nil {
		return fmt.Errorf("encoding relaunch mark: %w", err)
	}

	temporaryPath := path + ".tmp"
	file, err := os.OpenFile(temporaryPath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("creating temporary mark file: %w", err)
	}
	if _, err := file.Write(data); err != nil {
		file.Close()
		os.Remove(temporaryPath)
		return fmt.Errorf("writing temporary mark file: %w", err)
	}
	if err := file.Sync(); err != nil {
		file.Close()
		os.Remove(temporaryPath)
		return fmt.Errorf("syncing temporary mark file: %w", err)
	}
	if err := file.Close(); err != nil {
		os.Remove(temporaryPath)
		return fmt.Errorf("closing temporary mark file: %w", err)
	}
	if err := os.Rename(temporaryPath, path); err != nil {
		os.Remove(temporaryPath)
		return fmt.Errorf("renaming mark file into place: %w", err)
	}

	// Make the rename durable across power loss.
	if parent, err := os.Open(filepath.Dir(path)); err == nil {
		parent.Sync()
		parent.Close()
	}

	return nil
}

// Check reads the mark at path and reports whether a relevant one
// exists: present and no older than maxAge. A missing or stale file is
// (zero, false, nil). An unreadable or corrupt file is an error so the
// caller can distinguish "no mark" from "mark exists but unreadable".
func Check(path string, maxAge time.Duration) (Mark, bool, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Mark{}, false, nil
		}
		return Mark{}, false, fmt.Errorf("reading mark file: %w", err)
	}

	var mark Mark
	if err := cbor.Unmarshal(data, &mark); err != nil {
		return Mark{}, false, fmt.Errorf("parsing mark file %s: %w", path, err)
	}

	if time.Since(mark.Timestamp) > maxAge {
		return Mark{}, false, nil
	}
	return mark, true, nil
}

// Clear removes the mark file. Idempotent: a missing file is not an
// error.
func Clear(path string) error {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("removing mark file: %w", err)
	}
	return nil
}
