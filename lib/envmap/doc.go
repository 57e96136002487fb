// Copyright 2026 The Ridgeline Authors
// SPDX-License-Identifier: Apache-2.0

// Package envmap represents a process environment as an explicit value
// instead of ambient global state. The launcher's search-path logic takes
// a Map argument and produces a new one, which keeps it unit-testable
// without spawning processes or touching the real environment.
//
// A Map preserves the inherited environment byte-for-byte: entry order,
// duplicate keys, and malformed entries (no '=') all survive a
// snapshot/rebuild round trip. Only an explicit Set rewrites anything,
// and it rewrites the minimum — the first entry for that key.
package envmap
