// This file is part of the program "AndrathWM".
// Please see the LICENSE file for copyright information.

package main

import (
	"github.com/BurntSushi/xgb"
	"github.com/BurntSushi/xgb/xproto"
)

// wm bundles the long-lived state a running event loop needs: the X
// connection, its event source, the compositor (nil when disabled), the
// supporting-wm-check window created at startup, the resolved key/mouse
// binding state, any live drag gesture, and the D-Bus-facing hosts the
// loop polls alongside the X socket.
type wm struct {
	xc       *xConn
	xs       *xsource
	comp     *compositor
	checkWin xproto.Window
	quit     bool

	keys        *keycodeTable
	numLockMask uint16
	drag        *dragState

	host *sniHost
	tray *systray
}

// run is the main event loop: drain all pending X events (in arrival
// order), drain protocol errors, drain one round of pending D-Bus
// signals (NameOwnerChanged, mainly), then give the compositor a chance
// to flush damage, matching the priority original_source/src/xsource.c's
// poll(2) dispatch gives X events over idle work.
func (w *wm) run() {
	for !w.quit {
		ok := w.xs.drainPending(w.handleEvent)
		if !ok {
			errf("X connection closed, shutting down")
			return
		}
		w.xs.drainErrors(w.handleError)
		if w.host != nil {
			w.host.drainSignals()
		}
		if w.comp != nil {
			w.comp.flushDirty(w.xc)
		}
	}
}

func (w *wm) handleEvent(ev xgb.Event) {
	switch e := ev.(type) {
	case xproto.MapRequestEvent:
		w.onMapRequest(e)
	case xproto.UnmapNotifyEvent:
		w.onUnmapNotify(e)
	case xproto.DestroyNotifyEvent:
		w.onDestroyNotify(e)
	case xproto.ConfigureRequestEvent:
		w.onConfigureRequest(e)
	case xproto.ConfigureNotifyEvent:
		w.onConfigureNotify(e)
	case xproto.PropertyNotifyEvent:
		w.onPropertyNotify(e)
	case xproto.EnterNotifyEvent:
		w.onEnterNotify(e)
	case xproto.ClientMessageEvent:
		w.onClientMessage(e)
	case xproto.KeyPressEvent:
		w.onKeyPress(e)
	case xproto.ButtonPressEvent:
		w.onButtonPress(e)
	case xproto.ButtonReleaseEvent:
		w.onButtonRelease(e)
	case xproto.MotionNotifyEvent:
		w.onMotionNotify(e)
	case xproto.MappingNotifyEvent:
		w.onMappingNotify(e)
	default:
		if w.comp != nil {
			w.comp.handleCompositorEvent(ev)
		}
	}
}

// classifyXError sorts an asynchronous protocol error into a log
// severity: a BadAccess whose bad value is 0 is logged at error level;
// every other protocol error is benign (the window it names is typically
// already gone by the time the error arrives) and only logged at debug.
// No error reaching this classifier is fatal: the startup BadAccess from
// the substructure-redirect grab is checked synchronously by
// takeWMSelection's caller instead.
func classifyXError(err xgb.Error) severity {
	switch e := err.(type) {
	case xproto.AccessError:
		if e.BadValue == 0 {
			return sevErr
		}
	}
	return sevDebug
}

func (w *wm) handleError(err xgb.Error) {
	sev := classifyXError(err)
	logf(sev, "X protocol error: %v", err)
}

func (w *wm) onMapRequest(e xproto.MapRequestEvent) {
	if findClient(e.Window) != nil {
		return
	}
	manageWindow(w.xc, e.Window, w.comp)
}

func (w *wm) onUnmapNotify(e xproto.UnmapNotifyEvent) {
	if c := findClient(e.Window); c != nil {
		unmanageWindow(w.xc, c, w.comp, false)
	}
}

func (w *wm) onDestroyNotify(e xproto.DestroyNotifyEvent) {
	if c := findClient(e.Window); c != nil {
		unmanageWindow(w.xc, c, w.comp, true)
	}
}

func (w *wm) onConfigureRequest(e xproto.ConfigureRequestEvent) {
	c := findClient(e.Window)
	if c == nil {
		// Unmanaged window: honor the request verbatim (ICCCM 4.1.5).
		all := []uint32{uint32(e.X), uint32(e.Y), uint32(e.Width), uint32(e.Height),
			uint32(e.BorderWidth), uint32(e.Sibling), uint32(e.StackMode)}
		var vals []uint32
		for i, v := range all {
			if e.ValueMask&(1<<uint(i)) != 0 {
				vals = append(vals, v)
			}
		}
		xproto.ConfigureWindowChecked(w.xc.conn, e.Window, e.ValueMask, vals).Check()
		return
	}
	if c.isfloating || !hasArrange(c.mon) {
		if e.ValueMask&xproto.ConfigWindowWidth != 0 {
			c.w = int(e.Width)
		}
		if e.ValueMask&xproto.ConfigWindowHeight != 0 {
			c.h = int(e.Height)
		}
		if e.ValueMask&xproto.ConfigWindowX != 0 {
			c.x = int(int16(e.X))
		}
		if e.ValueMask&xproto.ConfigWindowY != 0 {
			c.y = int(int16(e.Y))
		}
		c.resizeClient(w.xc, c.x, c.y, c.w, c.h)
		return
	}
	// Tiled clients: silently swallow the request and send a synthetic
	// ConfigureNotify reflecting the layout-assigned geometry instead,
	// matching original_source's resizeclient()'s "always answer".
	sendSyntheticConfigure(w.xc, c)
}

func (w *wm) onConfigureNotify(e xproto.ConfigureNotifyEvent) {
	if e.Window != w.xc.root {
		return
	}
	// Root geometry change: a monitor was added/removed/resized.
	discoverMonitors(w.xc)
}

func (w *wm) onPropertyNotify(e xproto.PropertyNotifyEvent) {
	c := findClient(e.Window)
	if c == nil {
		return
	}
	name := e.Atom
	switch {
	case name == xproto.AtomWmNormalHints:
		c.updateSizeHints(w.xc)
	case name == w.xc.atoms.atom("_NET_WM_NAME"):
		c.name = fetchWindowTitle(w.xc, c.win)
	case name == w.xc.atoms.atom("_NET_WM_WINDOW_OPACITY") || name == w.xc.atoms.atom("_NET_WM_OPACITY"):
		if w.comp != nil {
			w.comp.onClientOpacityChanged(c)
		}
	}
}

func (w *wm) onEnterNotify(e xproto.EnterNotifyEvent) {
	if c := findClient(e.Event); c != nil && c.mon != nil {
		selmon = c.mon
		setFocus(w.xc, c.mon, c)
	}
}

func (w *wm) onClientMessage(e xproto.ClientMessageEvent) {
	switch e.Type {
	case w.xc.atoms.atom("_NET_ACTIVE_WINDOW"):
		if c := findClient(e.Window); c != nil {
			selmon = c.mon
			setFocus(w.xc, c.mon, c)
		}
	case w.xc.atoms.atom("_NET_CLOSE_WINDOW"):
		if c := findClient(e.Window); c != nil {
			closeClient(w.xc, c)
		}
	case w.xc.atoms.atom("_NET_WM_STATE"):
		if c := findClient(e.Window); c != nil {
			w.handleWMStateMessage(c, e)
		}
	case w.xc.atoms.atom("_NET_MOVERESIZE_WINDOW"):
		if c := findClient(e.Window); c != nil {
			w.handleMoveResizeWindow(c, e)
		}
	case w.xc.atoms.atom("_NET_SYSTEM_TRAY_OPCODE"):
		if w.tray != nil && e.Window == w.tray.win {
			w.tray.handleOpcode(w.xc, e)
		}
	}
}

// handleMoveResizeWindow implements the _NET_MOVERESIZE_WINDOW client
// message (EWMH 1.5 §3.6): a pager/taskbar-initiated geometry change,
// honored the same way a ConfigureRequest from the client itself would
// be for a floating window, and otherwise swallowed for a tiled one.
func (w *wm) handleMoveResizeWindow(c *client, e xproto.ClientMessageEvent) {
	data := e.Data.Data32()
	gravity := data[0]
	mask := (gravity >> 8) & 0xf
	x, y, wid, hgt := c.x, c.y, c.w, c.h
	i := 1
	if mask&1 != 0 { // source-indication bit occupies bit 12; the low 4 bits are x/y/w/h present flags
		x = int(int32(data[i]))
		i++
	}
	if mask&2 != 0 {
		y = int(int32(data[i]))
		i++
	}
	if mask&4 != 0 {
		wid = int(int32(data[i]))
		i++
	}
	if mask&8 != 0 {
		hgt = int(int32(data[i]))
	}
	if c.isfloating || !hasArrange(c.mon) {
		nx, ny, nw, nh := c.applySizeHints(x, y, wid, hgt, true)
		c.resizeClient(w.xc, nx, ny, nw, nh)
	}
}

func (w *wm) handleWMStateMessage(c *client, e xproto.ClientMessageEvent) {
	data := e.Data.Data32()
	const (
		stateRemove = 0
		stateAdd    = 1
		stateToggle = 2
	)
	fsAtom := uint32(w.xc.atoms.atom("_NET_WM_STATE_FULLSCREEN"))
	for _, prop := range data[1:] {
		if prop != fsAtom {
			continue
		}
		want := c.isfullscreen
		switch data[0] {
		case stateAdd:
			want = true
		case stateRemove:
			want = false
		case stateToggle:
			want = !c.isfullscreen
		}
		c.setFullscreen(want, w.xc, w.comp)
	}
}

func (w *wm) onKeyPress(e xproto.KeyPressEvent) {
	w.dispatchKeyPress(e)
}

// onMappingNotify rebuilds the keysym/keycode table and regrabs every
// binding after a keyboard remap, mirroring original_source's
// xcb_refresh_keyboard_mapping call in its MappingNotify handler.
func (w *wm) onMappingNotify(e xproto.MappingNotifyEvent) {
	if e.Request != xproto.MappingKeyboard && e.Request != xproto.MappingModifier {
		return
	}
	kt, err := buildKeycodeTable(w.xc)
	if err != nil {
		warnf("rebuild keycode table: %v", err)
		return
	}
	w.keys = kt
	w.numLockMask = numLockMask(w.xc, kt)
	grabKeys(w.xc, kt, w.numLockMask)
}

func sendSyntheticConfigure(xc *xConn, c *client) {
	ev := xproto.ConfigureNotifyEvent{
		Event:            c.win,
		Window:           c.win,
		X:                int16(c.x),
		Y:                int16(c.y),
		Width:            uint16(c.w),
		Height:           uint16(c.h),
		BorderWidth:      uint16(c.bw),
		OverrideRedirect: false,
	}
	xproto.SendEventChecked(xc.conn, false, c.win, xproto.EventMaskStructureNotify, string(ev.Bytes())).Check()
}
