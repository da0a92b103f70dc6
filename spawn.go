// This file is part of the program "AndrathWM".
// Please see the LICENSE file for copyright information.

package main

import (
	"os"
	"os/exec"
	"syscall"

	"golang.org/x/sys/unix"
)

// spawn launches argv[0] detached from the WM's process group and
// session, mirroring original_source/src/spawn.c's fork+setsid+execvp:
// the child must survive awm restarting or exiting, so it gets its own
// session via Setsid rather than merely backgrounding under the current
// one.
func spawn(argv []string) error {
	if len(argv) == 0 {
		return nil
	}
	cmd := exec.Command(argv[0], argv[1:]...)
	cmd.Stdin = nil
	cmd.Stdout = nil
	cmd.Stderr = nil
	cmd.SysProcAttr = &syscall.SysProcAttr{Setsid: true}
	if err := cmd.Start(); err != nil {
		return err
	}
	go cmd.Wait() // reap in background; the WM never waits on spawned children
	return nil
}

// spawnLauncher runs the configured application launcher, the one
// narrow entry point the keybinding layer uses instead
// of calling spawn directly, so the launcher command stays a single
// swappable config.go constant.
func spawnLauncher() error {
	return spawn([]string{launcherCmd})
}

func spawnTerminal() error {
	return spawn([]string{terminalCmd})
}

// spawnScratchpad runs the command configured for the given scratch key,
// used by the scratchpad toggle when no hidden client exists yet to show.
func spawnScratchpad(key rune) error {
	argv, ok := scratchCommands[key]
	if !ok {
		return nil
	}
	return spawn(argv)
}

// execSelf re-execs the running binary in place for the restart command,
// mirroring original_source's execvp(argv[0], argv) restart path. The
// RESTARTED=1 marker lets awm's startup autostart step skip re-running
// autostart scripts on restart.
func execSelf() error {
	self, err := os.Executable()
	if err != nil {
		return err
	}
	env := append(os.Environ(), "RESTARTED=1")
	return unix.Exec(self, os.Args, env)
}
