// This file is part of the program "AndrathWM".
// Please see the LICENSE file for copyright information.

package main

import "time"

// config.go is the Go analogue of original_source/config.def.h: compile-
// time-only configuration: there is no runtime config file or reload path.
// Nothing here is read from disk at runtime — changing behavior means
// editing this file and rebuilding, exactly like dwm's config.h
// convention.

const (
	borderpx   = 1  // border width in pixels
	snap       = 32 // snap distance in pixels
	motionfps  = 60 // pointer-motion event throttle
	iconsize   = 16 // client window icon size in the bar
	sniconsize = 22 // StatusNotifier tray icon size

	systrayspacing             = 2
	systrayonleft              = false
	showsystray                = true
	showbar                    = true
	topbar                     = true
	resizehints                = true // honor ICCCM size hints on resize
	lockfullscreen              = true // focus-stack traversal does nothing while the selected client is fullscreen

	mfact   = 0.50
	nmaster = 1

	dbusTimeout     = 100 * time.Millisecond
	statusInterval  = 1 * time.Second // §5: "status-line refresh at 1 Hz default"
	bypassDeferTime = 40 * time.Millisecond
)

// colorScheme selects between the normal and selected border/text
// colors, each resolved to a server-allocated pixel plus 16-bit RGBA
// for the compositor/XRender fills.
type colorScheme int

const (
	schemeNorm colorScheme = iota
	schemeSel
)

var colorHex = map[colorScheme]struct{ fg, bg, border string }{
	schemeNorm: {"#bbbbbb", "#222222", "#444444"},
	schemeSel:  {"#eeeeee", "#005577", "#005577"},
}

// tags holds at most 31 tag names; bit i of a client's tag mask means
// visible on tag i. Order matters — it is also the EWMH
// _NET_DESKTOP_NAMES order.
var tags = [...]string{"chat", "web", "shell", "work", "games", "dev", "mail", "misc", "doc"}

const tagmask = (1 << len(tags)) - 1

// rule matches new clients against class/instance glob and title
// substring, as ICCCM WM_CLASS + _NET_WM_NAME allow.
type rule struct {
	class, instance, title string // class/instance: glob; title: case-insensitive substring; "" matches anything
	tags                   uint32
	centered               bool
	floating               bool
	monitor                int // -1 = unspecified
	scratchKey             rune
	opacity                float64 // 0 = "unset, use default"
}

var rules = []rule{
	{title: "notepad", centered: true, floating: true, monitor: -1, scratchKey: 's'},
	{title: "mpd", centered: true, floating: true, monitor: -1, scratchKey: 'm'},
}

// layoutDef pairs a bar symbol with the function that arranges the
// visible, non-floating clients of a monitor. A nil arrange function
// means floating behavior.
type layoutDef struct {
	symbol  string
	arrange func(*monitor, *xConn)
}

var layouts = []layoutDef{
	{symbol: "[]=", arrange: tileLayout},
	{symbol: "><>", arrange: nil},
	{symbol: "[M]", arrange: monocleLayout},
}

// scratchpad command table, keyed by scratch-key letter.
var scratchCommands = map[rune][]string{
	's': {"st", "-t", "notepad", "-e", "bash", "-c", "$HOME/bin/scratchpad.sh"},
	'm': {"st", "-t", "mpd", "-e", "ncmpcpp"},
}

const launcherCmd = "rofi"
const terminalCmd = "st"
