// Copyright 2026 The Ridgeline Authors
// SPDX-License-Identifier: Apache-2.0

//go:build linux

// Ridgeline-bootcheck reports what ridgeline-launcher would do in the
// current environment, without executing anything: the resolved
// executable path, the loader search path as seen by this process,
// whether a relaunch would occur, and the corrected value that would be
// installed. Operators run it when an agent boot loops or the runtime
// picks up system libraries it should not.
//
// Exit codes: 0 when no relaunch would be needed, 1 when one would,
// 2 when inspection itself fails.
package main

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/pflag"
	"golang.org/x/term"
	"gopkg.in/yaml.v3"

	"github.com/ridgeline-hq/ridgeline/lib/bootmark"
	"github.com/ridgeline-hq/ridgeline/lib/bootstrap"
	"github.com/ridgeline-hq/ridgeline/lib/envmap"
	"github.com/ridgeline-hq/ridgeline/lib/selfpath"
	"github.com/ridgeline-hq/ridgeline/lib/version"
)

// report is the diagnostic output. Field order mirrors the order the
// launcher consults things in.
type report struct {
	Executable        string `yaml:"executable"`
	RuntimeLibraryDir string `yaml:"runtime_library_dir"`
	SearchPathPresent bool   `yaml:"search_path_present"`

	// SearchPath is never omitted: a present-but-empty value must stay
	// distinguishable from an absent variable in the report.
	SearchPath string `yaml:"search_path"`

	NeedsRelaunch       bool        `yaml:"needs_relaunch"`
	CorrectedSearchPath string      `yaml:"corrected_search_path,omitempty"`
	Marker              *markReport `yaml:"relaunch_marker,omitempty"`
}

// markReport describes a fresh relaunch mark, when one exists.
type markReport struct {
	ExecutablePath string    `yaml:"executable_path"`
	SearchPath     string    `yaml:"search_path"`
	Timestamp      time.Time `yaml:"timestamp"`
}

func main() {
	code, err := run()
	if err != nil {
		fmt.Fprintf(os.Stderr, "ridgeline-bootcheck: %v\n", err)
		os.Exit(2)
	}
	os.Exit(code)
}

func run() (int, error) {
	var (
		runtimeLibDir string
		markerPath    string
		format        string
		showVersion   bool
	)
	flags := pflag.NewFlagSet("ridgeline-bootcheck", pflag.ContinueOnError)
	flags.StringVar(&runtimeLibDir, "runtime-lib", bootstrap.RuntimeLibraryDir, "vendored runtime library directory to check against")
	flags.StringVar(&markerPath, "marker-path", bootmark.DefaultPath, "relaunch marker file to inspect")
	flags.StringVar(&format, "format", "auto", "output format: auto, text, or yaml (auto picks text on a terminal)")
	flags.BoolVar(&showVersion, "version", false, "print version information and exit")
	if err := flags.Parse(os.Args[1:]); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return 0, nil
		}
		return 0, err
	}

	if showVersion {
		fmt.Printf("ridgeline-bootcheck %s\n", version.Info())
		return 0, nil
	}

	switch format {
	case "auto":
		format = "yaml"
		if term.IsTerminal(int(os.Stdout.Fd())) {
			format = "text"
		}
	case "text", "yaml":
	default:
		return 0, fmt.Errorf("unknown --format %q (want auto, text, or yaml)", format)
	}

	result, err := inspect(envmap.FromEnviron(os.Environ()), runtimeLibDir, markerPath)
	if err != nil {
		return 0, err
	}

	switch format {
	case "yaml":
		encoded, err := yaml.Marshal(result)
		if err != nil {
			return 0, fmt.Errorf("encoding report: %w", err)
		}
		os.Stdout.Write(encoded)
	case "text":
		printText(result)
	}

	if result.NeedsRelaunch {
		return 1, nil
	}
	return 0, nil
}

// inspect gathers the same facts the launcher acts on, in the same
// order, but stops short of acting.
func inspect(env envmap.Map, runtimeLibDir, markerPath string) (*report, error) {
	executablePath, err := selfpath.Resolve()
	if err != nil {
		return nil, err
	}

	value, present := bootstrap.SearchPathValue(env)

	result := &report{
		Executable:        executablePath,
		RuntimeLibraryDir: runtimeLibDir,
		SearchPathPresent: present,
		SearchPath:        value,
		NeedsRelaunch:     bootstrap.NeedsRelaunchIn(runtimeLibDir, value, present),
	}
	if result.NeedsRelaunch {
		result.CorrectedSearchPath = bootstrap.CorrectedSearchPathIn(runtimeLibDir, value, present)
	}

	// Marker problems are reported inline rather than failing the
	// whole inspection: a corrupt marker is itself a finding.
	mark, found, err := bootmark.Check(markerPath, time.Minute)
	if err != nil {
		fmt.Fprintf(os.Stderr, "ridgeline-bootcheck: %v\n", err)
	} else if found {
		result.Marker = &markReport{
			ExecutablePath: mark.ExecutablePath,
			SearchPath:     mark.SearchPath,
			Timestamp:      mark.Timestamp,
		}
	}

	return result, nil
}

func printText(result *report) {
	fmt.Printf("executable:           %s\n", result.Executable)
	fmt.Printf("runtime library dir:  %s\n", result.RuntimeLibraryDir)
	if result.SearchPathPresent {
		fmt.Printf("%s:      %s\n", bootstrap.SearchPathVariable, result.SearchPath)
	} else {
		fmt.Printf("%s:      (unset)\n", bootstrap.SearchPathVariable)
	}
	if result.NeedsRelaunch {
		fmt.Printf("verdict:              relaunch needed\n")
		fmt.Printf("corrected value:      %s\n", result.CorrectedSearchPath)
	} else {
		fmt.Printf("verdict:              environment correct, launcher would hand off\n")
	}
	if result.Marker != nil {
		fmt.Printf("fresh relaunch mark:  %s (installed %s=%s)\n",
			result.Marker.Timestamp.Format(time.RFC3339),
			bootstrap.SearchPathVariable, result.Marker.SearchPath)
	}
}
