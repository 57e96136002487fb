// Copyright 2026 The Ridgeline Authors
// SPDX-License-Identifier: Apache-2.0

package bootstrap

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/ridgeline-hq/ridgeline/lib/bootmark"
	"github.com/ridgeline-hq/ridgeline/lib/envmap"
)

// RuntimeLibraryDir is where the package installs its private copies
// of the embedded runtime's shared libraries. Fixed at package build
// time.
const RuntimeLibraryDir = "/usr/lib/ridgeline-agent/runtime/lib"

// SearchPathVariable is the environment variable the dynamic loader
// consults for additional library directories.
const SearchPathVariable = "LD_LIBRARY_PATH"

// ListSeparator separates directories in the search path value.
const ListSeparator = ":"

// markMaxAge bounds how old a relaunch mark may be and still count as
// evidence of an in-flight relaunch. The exec-to-startup gap is
// microseconds; a minute leaves room for a loaded machine without
// letting leftovers from crashed runs trip the loop breaker.
const markMaxAge = time.Minute

// SearchPathValue returns the current value of the loader search path
// variable from env, and whether it is present at all. Absence is not
// an error; it simply means the corrected value gets an empty suffix.
func SearchPathValue(env envmap.Map) (string, bool) {
	return env.Lookup(SearchPathVariable)
}

// NeedsRelaunch reports whether the process must re-exec itself with a
// corrected environment. No relaunch is needed only when the variable
// is present and its value begins exactly with the vendored runtime
// directory followed by the separator. This is a prefix check, not a
// containment check: the vendored directory must be the first entry so
// it takes precedence over anything the invoking shell or job
// environment added.
func NeedsRelaunch(value string, present bool) bool {
	return NeedsRelaunchIn(RuntimeLibraryDir, value, present)
}

// NeedsRelaunchIn is NeedsRelaunch against an arbitrary vendored
// directory. The launcher always uses the packaged constant; the
// bootcheck diagnostic accepts an override to answer "what would the
// launcher do if the libraries lived here instead".
func NeedsRelaunchIn(runtimeLibraryDir, value string, present bool) bool {
	if !present {
		return true
	}
	return !strings.HasPrefix(value, runtimeLibraryDir+ListSeparator)
}

// CorrectedSearchPath builds the value to install before relaunching:
// the vendored runtime directory, the separator, then the existing
// value unchanged. Every directory the caller already had stays
// usable; only precedence changes.
func CorrectedSearchPath(value string, present bool) string {
	return CorrectedSearchPathIn(RuntimeLibraryDir, value, present)
}

// CorrectedSearchPathIn is CorrectedSearchPath against an arbitrary
// vendored directory, for the same diagnostic use as NeedsRelaunchIn.
func CorrectedSearchPathIn(runtimeLibraryDir, value string, present bool) string {
	if !present {
		return runtimeLibraryDir + ListSeparator
	}
	return runtimeLibraryDir + ListSeparator + value
}

// Outcome reports which terminal branch Run took. In production both
// branches replace or surrender the process image and Run never
// actually returns an Outcome; with test doubles installed it does.
type Outcome int

const (
	// OutcomeHandedOff means the environment was already correct and
	// control was transferred to the embedded runtime entry point.
	OutcomeHandedOff Outcome = iota

	// OutcomeRelaunched means the process image was replaced by a
	// fresh invocation of the same executable with a corrected
	// environment.
	OutcomeRelaunched
)

func (o Outcome) String() string {
	switch o {
	case OutcomeHandedOff:
		return "handed-off"
	case OutcomeRelaunched:
		return "relaunched"
	default:
		return fmt.Sprintf("Outcome(%d)", int(o))
	}
}

// Launcher holds the capabilities the bootstrap sequence needs. All
// three function fields are required; cmd/ridgeline-launcher wires the
// real implementations and tests substitute fakes.
type Launcher struct {
	// ResolveExecutable returns the absolute, symlink-resolved path of
	// the running binary. Failure is fatal: the process cannot safely
	// re-exec a binary whose location is unknown.
	ResolveExecutable func() (string, error)

	// Exec replaces the current process image. It does not return on
	// success.
	Exec func(path string, argv []string, env []string) error

	// Entry transfers control to the embedded runtime with the
	// original argument vector. It does not return under normal
	// operation.
	Entry func(argv []string, env []string) error

	// MarkerPath is where the relaunch mark is kept. Empty disables
	// marking (and with it the loop breaker).
	MarkerPath string

	// Logger receives informational output. Nil means slog.Default.
	Logger *slog.Logger
}

// Run executes the bootstrap sequence: resolve the self path, inspect
// the search path, and either hand off to the runtime or relaunch with
// a corrected environment. argv is passed through byte-identical on
// both branches. env is never mutated; the relaunch branch installs
// the corrected value into an owned clone.
//
// Any returned error is terminal: the caller has nothing to fall back
// to, because continuing with a wrong search path would let the
// runtime bind incompatible system libraries.
func (l *Launcher) Run(argv []string, env envmap.Map) (Outcome, error) {
	logger := l.Logger
	if logger == nil {
		logger = slog.Default()
	}

	executablePath, err := l.ResolveExecutable()
	if err != nil {
		return 0, fmt.Errorf("resolving own executable: %w", err)
	}

	value, present := SearchPathValue(env)

	if !NeedsRelaunch(value, present) {
		l.consumeMark(executablePath, logger)
		if err := l.Entry(argv, env.Environ()); err != nil {
			return 0, fmt.Errorf("runtime entry: %w", err)
		}
		return OutcomeHandedOff, nil
	}

	if err := l.checkRelaunchLoop(executablePath, value, present, logger); err != nil {
		return 0, err
	}

	corrected := CorrectedSearchPath(value, present)
	relaunchEnv := env.Clone()
	relaunchEnv.Set(SearchPathVariable, corrected)

	l.writeMark(executablePath, corrected, logger)

	logger.Info("relaunching with corrected loader search path",
		"executable", executablePath,
		"search_path", corrected,
	)
	if err := l.Exec(executablePath, argv, relaunchEnv.Environ()); err != nil {
		return 0, fmt.Errorf("replacing process image with %s: %w", executablePath, err)
	}
	return OutcomeRelaunched, nil
}

// consumeMark clears any relaunch mark on the handoff path, logging
// the completed transition when a fresh one is found. Everything here
// is best-effort: a mark problem must never block a correct boot.
func (l *Launcher) consumeMark(executablePath string, logger *slog.Logger) {
	if l.MarkerPath == "" {
		return
	}
	mark, found, err := bootmark.Check(l.MarkerPath, markMaxAge)
	if err != nil {
		logger.Warn("reading relaunch mark", "path", l.MarkerPath, "error", err)
	} else if found {
		logger.Info("relaunch completed",
			"executable", mark.ExecutablePath,
			"search_path", mark.SearchPath,
		)
	}
	if err := bootmark.Clear(l.MarkerPath); err != nil {
		logger.Warn("clearing relaunch mark", "path", l.MarkerPath, "error", err)
	}
}

// checkRelaunchLoop fails the boot when a fresh mark for this same
// executable exists while the environment is still wrong: the previous
// relaunch's correction did not survive into this process (a setuid
// wrapper or restrictive loader stripped the variable), so exec'ing
// again would loop forever. Mark read errors only warn — a corrupt
// mark must not block a legitimate first relaunch.
func (l *Launcher) checkRelaunchLoop(executablePath, value string, present bool, logger *slog.Logger) error {
	if l.MarkerPath == "" {
		return nil
	}
	mark, found, err := bootmark.Check(l.MarkerPath, markMaxAge)
	if err != nil {
		logger.Warn("reading relaunch mark", "path", l.MarkerPath, "error", err)
		return nil
	}
	if !found || mark.ExecutablePath != executablePath {
		return nil
	}

	if clearErr := bootmark.Clear(l.MarkerPath); clearErr != nil {
		logger.Warn("clearing relaunch mark", "path", l.MarkerPath, "error", clearErr)
	}
	current := "(unset)"
	if present {
		current = value
	}
	return fmt.Errorf(
		"environment correction did not survive relaunch: %s installed %s=%s but this process sees %s (is the binary setuid, or the loader restricted?)",
		executablePath, SearchPathVariable, mark.SearchPath, current,
	)
}

// writeMark records the relaunch about to happen. Best-effort: the
// packaged state directory may be missing or read-only in development
// setups, and that must not stop the relaunch.
func (l *Launcher) writeMark(executablePath, corrected string, logger *slog.Logger) {
	if l.MarkerPath == "" {
		return
	}
	mark := bootmark.Mark{
		ExecutablePath: executablePath,
		SearchPath:     corrected,
		Timestamp:      time.Now(),
	}
	if err := bootmark.Write(l.MarkerPath, mark); err != nil {
		logger.Warn("writing relaunch mark", "path", l.MarkerPath, "error", err)
	}
}
