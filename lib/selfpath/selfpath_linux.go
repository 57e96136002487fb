// Copyright 2026 The Ridgeline Authors
// SPDX-License-Identifier: Apache-2.0

//go:build linux

package selfpath

import (
	"fmt"

	"golang.org/x/sys/unix"
)

// procSelfExe is the kernel-maintained link to the running executable.
const procSelfExe = "/proc/self/exe"

// minBufferSize is the starting read buffer when lstat reports no
// useful size. procfs links report st_size 0, so this is the common
// initial allocation; the grow-and-retry loop in readLink handles
// paths longer than this.
const minBufferSize = 256

// ResolutionError reports a failed step of self-path resolution. Any
// resolution failure means the process cannot safely relaunch itself;
// callers are expected to treat it as fatal.
type ResolutionError struct {
	// Step is the system call that failed: "lstat" or "readlink".
	Step string
	// Err is the underlying OS error.
	Err error
}

func (e *ResolutionError) Error() string {
	return fmt.Sprintf("resolving %s: %s: %v", procSelfExe, e.Step, e.Err)
}

func (e *ResolutionError) Unwrap() error {
	return e.Err
}

// Resolve returns the absolute path of the currently running
// executable, with all symlinks resolved by the kernel.
func Resolve() (string, error) {
	var stat unix.Stat_t
	if err := unix.Lstat(procSelfExe, &stat); err != nil {
		return "", &ResolutionError{Step: "lstat", Err: err}
	}

	// st_size of a procfs link is 0; it is only a sizing hint when the
	// kernel reports one. readLink grows past it either way.
	initialSize := int(stat.Size) + 1
	if initialSize < minBufferSize {
		initialSize = minBufferSize
	}

	return readLink(initialSize)
}

// readLink reads the link target, retrying with a doubled buffer until
// the result fits. readlink(2) truncates silently, so a read that
// fills the buffer exactly is treated as truncated.
func readLink(size int) (string, error) {
	for {
		buffer := make([]byte, size)
		n, err := unix.Readlink(procSelfExe, buffer)
		if err != nil {
			return "", &ResolutionError{Step: "readlink", Err: err}
		}
		if n < len(buffer) {
			return string(buffer[:n]), nil
		}
		size *= 2
	}
}
