// filewatch - report byte-level changes to a single file
//
//	filewatch <file>
//
// Every time the file is modified, filewatch re-reads it and prints which
// byte positions were added, deleted or changed since the previous read.
// Any failure ends the process with a status identifying its category.
//
// Settings are read from $FILEWATCH_CONFIG, or config.toml in the user
// configuration directory, if present.
package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"filewatch/internal/config"
	"filewatch/internal/diff"
	"filewatch/internal/engine"
	"filewatch/internal/logging"
	"filewatch/internal/watcher"
)

var errUsage = errors.New("expected exactly one file to watch")

func main() {
	err := run(os.Args[1:], os.Stdout)
	if errors.Is(err, errUsage) {
		usage(os.Stderr)
	} else if err != nil {
		fmt.Fprintf(os.Stderr, "filewatch: %v\n", err)
	}
	os.Exit(exitCode(err))
}

func usage(w io.Writer) {
	fmt.Fprintln(w, `filewatch - Report byte-level changes to a file

USAGE:
    filewatch <file>

ENVIRONMENT:
    FILEWATCH_CONFIG      Configuration file (TOML, YAML or JSON)
    FILEWATCH_LOG_LEVEL   debug, info, warn or error
    FILEWATCH_LOG_FORMAT  text or json
    FILEWATCH_LOG_OUTPUT  stdout, stderr, file or both
    FILEWATCH_LOG_PATH    Log file path
    FILEWATCH_SEPARATOR   Line printed before each report`)
}

// run wires the watcher to the engine and blocks until something fails.
// It never returns nil once watching has started.
func run(args []string, stdout io.Writer) error {
	if len(args) != 1 {
		return errUsage
	}
	path := args[0]

	cfg, err := config.Load(config.ConfigPath())
	if err != nil {
		return err
	}

	logCfg, err := cfg.LoggerConfig()
	if err != nil {
		return &config.Error{Err: err}
	}
	log, err := logging.New(logCfg)
	if err != nil {
		return &config.Error{Err: err}
	}
	defer log.Close()
	logging.SetDefault(log)

	opts, err := cfg.WatcherOptions()
	if err != nil {
		return &config.Error{Err: err}
	}

	w, err := watcher.New(path, opts)
	if err != nil {
		return err
	}
	defer w.Close()

	if err := w.Start(); err != nil {
		return err
	}
	log.WithComponent("watcher").Info("watching", "path", path)

	printer := &diff.Printer{W: stdout, Separator: cfg.Report.Separator}
	err = engine.New(path, printer, log).Run(w)
	log.Error("stopped", "error", err)
	return err
}
