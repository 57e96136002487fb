// Copyright 2026 The Ridgeline Authors
// SPDX-License-Identifier: Apache-2.0

// Package runtime hands control to the agent's embedded runtime. The
// package ships a private interpreter alongside its vendored shared
// libraries; once the bootstrap step has the loader search path in
// order, the launcher's job ends by replacing itself with that
// interpreter, carrying the original arguments through.
package runtime

import (
	"fmt"
	"syscall"
)

// InterpreterPath is the bundled interpreter installed by the package.
// It is linked against the libraries in the vendored runtime directory,
// which is why the search-path correction must happen first.
const InterpreterPath = "/usr/lib/ridgeline-agent/runtime/bin/python3"

// Entry transfers control to the embedded runtime with the process's
// original argument vector. It does not return on success: the process
// image is replaced in place, keeping the PID, open descriptors, and
// parent relationship. The returned error is always an exec failure.
//
// Positional arguments pass through byte-identical; argv[0] becomes
// the interpreter's own path, as execve convention requires for the
// binary actually being executed. The launcher's program name ends at
// the handoff boundary.
func Entry(argv []string, env []string) error {
	return execInterpreter(InterpreterPath, argv, env)
}

// execInterpreter replaces the process image with the interpreter. The
// interpreter's argv[0] is its own path, as execve convention
// requires; every positional argument follows unchanged.
func execInterpreter(interpreterPath string, argv []string, env []string) error {
	interpreterArgv := make([]string, 0, len(argv))
	interpreterArgv = append(interpreterArgv, interpreterPath)
	if len(argv) > 1 {
		interpreterArgv = append(interpreterArgv, argv[1:]...)
	}

	err := syscall.Exec(interpreterPath, interpreterArgv, env)
	return fmt.Errorf("exec %s: %w", interpreterPath, err)
}
