// This file is part of the program "AndrathWM".
// Please see the LICENSE file for copyright information.

package main

import (
	"fmt"
	"io"
	"log"
	"log/syslog"
	"os"
)

// severity classes runtime events: benign async conditions log at
// debug, unexpected ones at warn, fatal ones at err before teardown.
type severity int

const (
	sevDebug severity = iota
	sevWarn
	sevErr
)

var (
	stdlog  = log.New(io.Discard, "", log.LstdFlags)
	syswrit *syslog.Writer
	verbose bool
)

// initLogging follows the common log.SetOutput(io.Discard)/os.Stderr
// verbosity toggle, extended with a syslog identifier "awm" so runtime
// errors survive after stderr is closed on daemonization.
func initLogging(v bool) {
	verbose = v
	if v {
		stdlog.SetOutput(os.Stderr)
	} else {
		stdlog.SetOutput(io.Discard)
	}
	w, err := syslog.New(syslog.LOG_DAEMON, "awm")
	if err == nil {
		syswrit = w
	}
}

func logf(sev severity, format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	stdlog.Print(msg)
	if syswrit == nil {
		return
	}
	switch sev {
	case sevDebug:
		syswrit.Debug(msg)
	case sevWarn:
		syswrit.Warning(msg)
	case sevErr:
		syswrit.Err(msg)
	}
}

func debugf(format string, args ...interface{}) { logf(sevDebug, format, args...) }
func warnf(format string, args ...interface{})  { logf(sevWarn, format, args...) }
func errf(format string, args ...interface{})   { logf(sevErr, format, args...) }

// fatalStartup prints one line to stderr and exits nonzero. Never routed
// through syslog — the daemon isn't running yet.
func fatalStartup(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}
