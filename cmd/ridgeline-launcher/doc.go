// Copyright 2026 The Ridgeline Authors
// SPDX-License-Identifier: Apache-2.0

// Ridgeline-launcher is the native entry point of the Ridgeline agent
// package. It makes sure LD_LIBRARY_PATH starts with the package's
// vendored runtime library directory — relaunching itself once with a
// corrected environment when it does not — and then replaces itself
// with the bundled interpreter.
//
// The binary takes no flags of its own: the entire argument vector
// belongs to the embedded runtime and is passed through byte for byte,
// across the relaunch included.
package main
