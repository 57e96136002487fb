// Copyright 2026 The Ridgeline Authors
// SPDX-License-Identifier: Apache-2.0

// Package bootmark records an in-flight launcher relaunch. The launcher
// writes a mark immediately before replacing its process image with a
// corrected environment; the relaunched process reads and clears it on
// startup.
//
// The mark serves two purposes. Normally it is diagnostic: the second
// invocation can log that a relaunch completed and what search path was
// installed. Abnormally it is a circuit breaker: if the second
// invocation still finds a wrong search path (something between exec
// and startup stripped the variable, e.g. a setuid wrapper), a fresh
// mark proves a relaunch was already attempted and the launcher must
// fail loudly instead of exec'ing forever.
//
// Mark files are written atomically (temp file, fsync, rename) and
// ignored once older than the caller's staleness window, so leftovers
// from crashed runs cannot trip the breaker.
package bootmark
