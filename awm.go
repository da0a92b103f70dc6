// This file is part of the program "AndrathWM".
// Please see the LICENSE file for copyright information.

package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/BurntSushi/xgb/xproto"
)

const versionString = "awm-0.1"

func main() {
	verboseFlag := flag.Bool("v", false, "print the version and exit")
	flag.Parse()
	if *verboseFlag {
		fmt.Println(versionString)
		return
	}
	initLogging(os.Getenv("AWM_DEBUG") != "")

	xc, err := dialX()
	if err != nil {
		fatalStartup("cannot open display: %v", err)
	}
	defer xc.close()

	if err := xc.takeWMSelection(); err != nil {
		fatalStartup("another window manager is already running")
	}

	if err := discoverMonitors(xc); err != nil {
		fatalStartup("cannot discover monitors: %v", err)
	}
	publishDesktopNames(xc)

	checkWin, err := setupEWMHSupport(xc)
	if err != nil {
		fatalStartup("cannot set up EWMH support: %v", err)
	}

	icons, err := newIconCache(256)
	if err != nil {
		fatalStartup("cannot create icon cache: %v", err)
	}

	comp, err := startCompositor(xc)
	if err != nil {
		warnf("compositor disabled: %v", err)
		comp = nil
	}

	host, err := newSNIHost(xc, icons)
	if err != nil {
		warnf("status notifier host disabled: %v", err)
	}

	tray, err := acquireSystraySelection(xc)
	if err != nil {
		warnf("systray disabled: %v", err)
	}

	status := startStatusSource(xc)
	defer status.close()

	watchXrdbReload(xc, defaultColorResolver{})

	scanExistingWindows(xc, comp)

	if os.Getenv("RESTARTED") == "" {
		runAutostart()
	}

	kt, err := buildKeycodeTable(xc)
	if err != nil {
		fatalStartup("cannot build keycode table: %v", err)
	}
	numLock := numLockMask(xc, kt)
	grabKeys(xc, kt, numLock)

	w := &wm{
		xc:          xc,
		xs:          newXSource(xc.conn),
		comp:        comp,
		checkWin:    checkWin,
		keys:        kt,
		numLockMask: numLock,
		host:        host,
		tray:        tray,
	}
	installSignalHandlers(w)

	w.run()
}

// scanExistingWindows adopts windows already present on the root (a
// restart, or launching awm over another WM's leftover clients),
// mirroring original_source's scan() called once at startup before
// entering the event loop.
func scanExistingWindows(xc *xConn, comp *compositor) {
	tree, err := xproto.QueryTree(xc.conn, xc.root).Reply()
	if err != nil {
		return
	}
	for _, win := range tree.Children {
		attrs, err := xproto.GetWindowAttributes(xc.conn, win).Reply()
		if err != nil || attrs.OverrideRedirect || attrs.MapState != xproto.MapStateViewable {
			continue
		}
		manageWindow(xc, win, comp)
	}
}

// runAutostart execs every script in ~/.config/awm/autostart.d, the
// convention original_source documents in its README for session
// startup programs (a status-bar feeder, a wallpaper setter, etc.).
// Suppressed on restart via the RESTARTED=1 marker execSelf sets, so a
// config reload doesn't relaunch a second instance of every daemon.
func runAutostart() {
	home, err := os.UserHomeDir()
	if err != nil {
		return
	}
	dir := filepath.Join(home, ".config", "awm", "autostart.d")
	entries, err := os.ReadDir(dir)
	if err != nil {
		return
	}
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		path := filepath.Join(dir, e.Name())
		if err := spawn([]string{path}); err != nil {
			warnf("autostart %s: %v", path, err)
		}
	}
}

func installSignalHandlers(w *wm) {
	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)
	go func() {
		for sig := range sigc {
			switch sig {
			case syscall.SIGHUP:
				if err := execSelf(); err != nil {
					errf("restart failed: %v", err)
				}
			default:
				w.quit = true
				w.xs.stop()
			}
		}
	}()
}
