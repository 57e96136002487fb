// Copyright 2026 The Ridgeline Authors
// SPDX-License-Identifier: Apache-2.0

// Package bootstrap decides, at process start, whether the dynamic
// loader search path already puts the agent's vendored runtime
// libraries first — and if not, relaunches the current executable with
// a corrected environment. The agent ships its own copies of the
// runtime's shared libraries; without this step the embedded runtime
// would resolve against whatever the host system happens to have
// installed and fail later with misleading symptoms.
//
// The logic is pure over an explicit envmap.Map and a set of injected
// capabilities (resolve self path, replace process image, hand off to
// the runtime), so the whole relaunch decision is testable without an
// exec ever happening. The correction is idempotent by construction:
// the installed value always satisfies the check the next invocation
// performs, so at most one relaunch occurs.
package bootstrap
