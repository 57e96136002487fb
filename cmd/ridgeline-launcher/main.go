// Copyright 2026 The Ridgeline Authors
// SPDX-License-Identifier: Apache-2.0

//go:build linux

package main

import (
	"log/slog"
	"os"
	"syscall"

	"github.com/ridgeline-hq/ridgeline/lib/bootmark"
	"github.com/ridgeline-hq/ridgeline/lib/bootstrap"
	"github.com/ridgeline-hq/ridgeline/lib/envmap"
	"github.com/ridgeline-hq/ridgeline/lib/process"
	"github.com/ridgeline-hq/ridgeline/lib/runtime"
	"github.com/ridgeline-hq/ridgeline/lib/selfpath"
)

func main() {
	if err := run(); err != nil {
		process.Fatal(err)
	}
}

func run() error {
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	launcher := &bootstrap.Launcher{
		ResolveExecutable: selfpath.Resolve,
		Exec:              syscall.Exec,
		Entry:             runtime.Entry,
		MarkerPath:        bootmark.DefaultPath,
		Logger:            logger,
	}

	// Run does not return under normal operation: both of its branches
	// end in an exec. With the real capabilities wired above, control
	// only comes back here carrying an error.
	_, err := launcher.Run(os.Args, envmap.FromEnviron(os.Environ()))
	return err
}
