// Copyright 2026 The Ridgeline Authors
// SPDX-License-Identifier: Apache-2.0

//go:build linux

package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/ridgeline-hq/ridgeline/lib/bootmark"
	"github.com/ridgeline-hq/ridgeline/lib/bootstrap"
	"github.com/ridgeline-hq/ridgeline/lib/envmap"
)

func TestInspectUncorrectedEnvironment(t *testing.T) {
	env := envmap.FromEnviron([]string{"PATH=/usr/bin"})
	markerPath := filepath.Join(t.TempDir(), "relaunch-marker.cbor")

	result, err := inspect(env, bootstrap.RuntimeLibraryDir, markerPath)
	if err != nil {
		t.Fatalf("inspect: %v", err)
	}

	expected, err := os.Executable()
	if err != nil {
		t.Fatal(err)
	}
	if result.Executable != expected {
		t.Errorf("Executable = %q, want %q", result.Executable, expected)
	}
	if result.SearchPathPresent {
		t.Error("SearchPathPresent = true for an environment without the variable")
	}
	if !result.NeedsRelaunch {
		t.Error("NeedsRelaunch = false, want true")
	}
	if want := bootstrap.RuntimeLibraryDir + ":"; result.CorrectedSearchPath != want {
		t.Errorf("CorrectedSearchPath = %q, want %q", result.CorrectedSearchPath, want)
	}
	if result.Marker != nil {
		t.Errorf("Marker = %+v, want nil with no mark on disk", result.Marker)
	}
}

func TestInspectCorrectedEnvironment(t *testing.T) {
	value := bootstrap.RuntimeLibraryDir + ":/usr/lib"
	env := envmap.FromEnviron([]string{
		bootstrap.SearchPathVariable + "=" + value,
	})
	markerPath := filepath.Join(t.TempDir(), "relaunch-marker.cbor")

	result, err := inspect(env, bootstrap.RuntimeLibraryDir, markerPath)
	if err != nil {
		t.Fatalf("inspect: %v", err)
	}
	if result.NeedsRelaunch {
		t.Error("NeedsRelaunch = true for a corrected environment")
	}
	if !result.SearchPathPresent || result.SearchPath != value {
		t.Errorf("SearchPath = (%q, %v), want (%q, true)",
			result.SearchPath, result.SearchPathPresent, value)
	}
	if result.CorrectedSearchPath != "" {
		t.Errorf("CorrectedSearchPath = %q, want empty when no relaunch is needed", result.CorrectedSearchPath)
	}
}

func TestInspectRuntimeLibOverride(t *testing.T) {
	// A value that satisfies the packaged constant must still be
	// flagged when checked against an overridden vendored directory,
	// and the corrected value must use the override.
	overrideDir := "/opt/ridgeline-staging/runtime/lib"
	value := bootstrap.RuntimeLibraryDir + ":/usr/lib"
	env := envmap.FromEnviron([]string{
		bootstrap.SearchPathVariable + "=" + value,
	})
	markerPath := filepath.Join(t.TempDir(), "relaunch-marker.cbor")

	result, err := inspect(env, overrideDir, markerPath)
	if err != nil {
		t.Fatalf("inspect: %v", err)
	}
	if result.RuntimeLibraryDir != overrideDir {
		t.Errorf("RuntimeLibraryDir = %q, want %q", result.RuntimeLibraryDir, overrideDir)
	}
	if !result.NeedsRelaunch {
		t.Error("NeedsRelaunch = false against the overridden directory, want true")
	}
	if want := overrideDir + ":" + value; result.CorrectedSearchPath != want {
		t.Errorf("CorrectedSearchPath = %q, want %q", result.CorrectedSearchPath, want)
	}

	// Against the override's own corrected value, the verdict flips.
	env = envmap.FromEnviron([]string{
		bootstrap.SearchPathVariable + "=" + overrideDir + ":" + value,
	})
	result, err = inspect(env, overrideDir, markerPath)
	if err != nil {
		t.Fatalf("inspect: %v", err)
	}
	if result.NeedsRelaunch {
		t.Error("NeedsRelaunch = true for a value satisfying the overridden directory")
	}
}

func TestReportKeepsEmptySearchPath(t *testing.T) {
	// LD_LIBRARY_PATH set to the empty string is present-but-empty;
	// the YAML report must still carry the search_path key so the two
	// cases stay distinguishable.
	env := envmap.FromEnviron([]string{bootstrap.SearchPathVariable + "="})
	markerPath := filepath.Join(t.TempDir(), "relaunch-marker.cbor")

	result, err := inspect(env, bootstrap.RuntimeLibraryDir, markerPath)
	if err != nil {
		t.Fatalf("inspect: %v", err)
	}
	if !result.SearchPathPresent {
		t.Fatal("SearchPathPresent = false for a present-but-empty variable")
	}

	encoded, err := yaml.Marshal(result)
	if err != nil {
		t.Fatalf("yaml.Marshal: %v", err)
	}
	if !strings.Contains(string(encoded), "search_path: \"\"") {
		t.Errorf("report %q should carry an explicit empty search_path key", encoded)
	}
}

func TestInspectReportsFreshMark(t *testing.T) {
	markerPath := filepath.Join(t.TempDir(), "relaunch-marker.cbor")
	mark := bootmark.Mark{
		ExecutablePath: "/usr/lib/ridgeline-agent/bin/ridgeline-launcher",
		SearchPath:     bootstrap.RuntimeLibraryDir + ":",
		Timestamp:      time.Now(),
	}
	if err := bootmark.Write(markerPath, mark); err != nil {
		t.Fatalf("Write: %v", err)
	}

	result, err := inspect(envmap.FromEnviron(nil), bootstrap.RuntimeLibraryDir, markerPath)
	if err != nil {
		t.Fatalf("inspect: %v", err)
	}
	if result.Marker == nil {
		t.Fatal("Marker = nil, want the fresh mark reported")
	}
	if result.Marker.SearchPath != mark.SearchPath {
		t.Errorf("Marker.SearchPath = %q, want %q", result.Marker.SearchPath, mark.SearchPath)
	}
}
