// Copyright 2026 The Ridgeline Authors
// SPDX-License-Identifier: Apache-2.0

// Package process holds the bootstrap-time exit helpers. The launcher
// runs before any structured logger — before anything, really — so its
// fatal paths write a plain diagnostic to stderr and terminate with a
// non-zero status. There is no caller to propagate to and no degraded
// mode to continue in: a launcher that cannot establish the loader
// environment must stop the boot, loudly, here.
package process

import (
	"fmt"
	"os"
)

// Fatal writes "ridgeline-launcher: err" to stderr and exits 1. For
// errors in main() where no logger exists yet.
func Fatal(err error) {
	fmt.Fprintf(os.Stderr, "ridgeline-launcher: %v\n", err)
	os.Exit(1)
}
