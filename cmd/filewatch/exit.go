package main

import (
	"errors"

	"filewatch/internal/config"
	"filewatch/internal/engine"
	"filewatch/internal/watcher"
)

// Exit statuses, one per failure category.
const (
	exitOK      = 0
	exitFailure = 1
	exitSetup   = 2
	exitUsage   = 3
	exitIO      = 4
	exitEvent   = 5
	exitConfig  = 6
)

// exitCode maps an error returned by run to the process exit status.
func exitCode(err error) int {
	var (
		setupErr  *watcher.SetupError
		ioErr     *engine.IOError
		sourceErr *engine.EventSourceError
		cfgErr    *config.Error
	)

	switch {
	case err == nil:
		return exitOK
	case errors.Is(err, errUsage):
		return exitUsage
	case errors.As(err, &setupErr):
		return exitSetup
	case errors.As(err, &ioErr):
		return exitIO
	case errors.As(err, &sourceErr):
		return exitEvent
	case errors.As(err, &cfgErr):
		return exitConfig
	default:
		return exitFailure
	}
}
