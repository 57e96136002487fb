// Copyright 2026 The Ridgeline Authors
// SPDX-License-Identifier: Apache-2.0

// Package selfpath resolves the absolute, symlink-resolved path of the
// currently running executable by reading the kernel's /proc/self/exe
// link. The launcher relaunches itself through this path, so resolution
// failure is fatal to the caller: there is no safe way to re-exec a
// binary whose location is unknown.
package selfpath
