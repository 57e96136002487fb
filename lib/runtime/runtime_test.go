// Copyright 2026 The Ridgeline Authors
// SPDX-License-Identifier: Apache-2.0

package runtime

import (
	"errors"
	"path/filepath"
	"syscall"
	"testing"
)

func TestExecInterpreterMissingBinary(t *testing.T) {
	// exec of a nonexistent path fails without replacing the test
	// process, which is exactly the failure path we can exercise.
	missing := filepath.Join(t.TempDir(), "no-such-interpreter")

	err := execInterpreter(missing, []string{"ridgeline-launcher", "--verbose"}, []string{"PATH=/usr/bin"})
	if err == nil {
		t.Fatal("exec of a missing interpreter should fail")
	}
	if !errors.Is(err, syscall.ENOENT) {
		t.Errorf("error %v should wrap ENOENT", err)
	}
}
