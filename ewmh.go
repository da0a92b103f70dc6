// This file is part of the program "AndrathWM".
// Please see the LICENSE file for copyright information.

package main

import (
	"github.com/BurntSushi/xgb/xproto"
)

// setupEWMHSupport creates the (otherwise invisible) supporting-wm-check
// window, publishes _NET_SUPPORTED and the other EWMH root properties
// original_source/src/ewmh.c sets once at startup, mirroring dwm's
// setupewmh()/updatestatus() split.
func setupEWMHSupport(xc *xConn) (xproto.Window, error) {
	win, err := xproto.NewWindowId(xc.conn)
	if err != nil {
		return 0, err
	}
	err = xproto.CreateWindowChecked(xc.conn, xc.screen.RootDepth, win, xc.root,
		-1, -1, 1, 1, 0, xproto.WindowClassInputOnly, xc.screen.RootVisual, 0, nil).Check()
	if err != nil {
		return 0, err
	}

	supported := make([]uint32, 0, len(atomNames))
	for _, name := range atomNames {
		supported = append(supported, uint32(xc.atoms.atom(name)))
	}
	if err := changeProp32(xc, xc.root, "_NET_SUPPORTED", xproto.AtomAtom, supported); err != nil {
		return 0, err
	}
	if err := changeProp32(xc, win, "_NET_SUPPORTING_WM_CHECK", xproto.AtomWindow, []uint32{uint32(win)}); err != nil {
		return 0, err
	}
	if err := changeProp32(xc, xc.root, "_NET_SUPPORTING_WM_CHECK", xproto.AtomWindow, []uint32{uint32(win)}); err != nil {
		return 0, err
	}
	if err := changePropString(xc, win, "_NET_WM_NAME", "awm"); err != nil {
		return 0, err
	}
	return win, nil
}

func changeProp32(xc *xConn, win xproto.Window, propName string, typ xproto.Atom, data []uint32) error {
	raw := make([]byte, 4*len(data))
	for i, v := range data {
		raw[4*i+0] = byte(v)
		raw[4*i+1] = byte(v >> 8)
		raw[4*i+2] = byte(v >> 16)
		raw[4*i+3] = byte(v >> 24)
	}
	return xproto.ChangePropertyChecked(xc.conn, xproto.PropModeReplace, win,
		xc.atoms.atom(propName), typ, 32, uint32(len(data)), raw).Check()
}

func changePropString(xc *xConn, win xproto.Window, propName, value string) error {
	return xproto.ChangePropertyChecked(xc.conn, xproto.PropModeReplace, win,
		xc.atoms.atom(propName), xc.atoms.atom("UTF8_STRING"), 8, uint32(len(value)), []byte(value)).Check()
}

// updateClientList republishes _NET_CLIENT_LIST and _NET_CLIENT_LIST_STACKING
// by walking all monitors' client/stack lists, mirroring original_source's
// updateclientlist(), which is called after every manage/unmanage.
func updateClientList(xc *xConn) {
	var all, stacking []uint32
	for m := mons; m != nil; m = m.next {
		m.clients.each(func(c *client) bool {
			all = append(all, uint32(c.win))
			return true
		})
		m.stack.each(func(c *client) bool {
			stacking = append(stacking, uint32(c.win))
			return true
		})
	}
	changeProp32(xc, xc.root, "_NET_CLIENT_LIST", xproto.AtomWindow, all)
	changeProp32(xc, xc.root, "_NET_CLIENT_LIST_STACKING", xproto.AtomWindow, stacking)
}

// updateCurrentDesktop publishes _NET_CURRENT_DESKTOP as the lowest set
// tag bit of selmon's view, the closest single-desktop-index analogue
// EWMH has to this WM's bitmask tag model.
func updateCurrentDesktop(xc *xConn) {
	if selmon == nil {
		return
	}
	mask := selmon.tagset[selmon.seltags]
	idx := uint32(0)
	for i := 0; i < len(tags); i++ {
		if mask&(1<<uint(i)) != 0 {
			idx = uint32(i)
			break
		}
	}
	changeProp32(xc, xc.root, "_NET_CURRENT_DESKTOP", xproto.AtomCardinal, []uint32{idx})
}

func setActiveWindow(xc *xConn, win xproto.Window) {
	if win == 0 {
		xproto.DeletePropertyChecked(xc.conn, xc.root, xc.atoms.atom("_NET_ACTIVE_WINDOW")).Check()
		return
	}
	changeProp32(xc, xc.root, "_NET_ACTIVE_WINDOW", xproto.AtomWindow, []uint32{uint32(win)})
}

// publishDesktopNames writes _NET_DESKTOP_NAMES and _NET_NUMBER_OF_DESKTOPS
// from the tags table, called once at startup since tags are compile-time
// fixed.
func publishDesktopNames(xc *xConn) {
	var buf []byte
	for _, t := range tags {
		buf = append(buf, []byte(t)...)
		buf = append(buf, 0)
	}
	xproto.ChangePropertyChecked(xc.conn, xproto.PropModeReplace, xc.root,
		xc.atoms.atom("_NET_DESKTOP_NAMES"), xc.atoms.atom("UTF8_STRING"), 8, uint32(len(buf)), buf).Check()
	changeProp32(xc, xc.root, "_NET_NUMBER_OF_DESKTOPS", xproto.AtomCardinal, []uint32{uint32(len(tags))})
}

// windowTypeIsDialog reports whether _NET_WM_WINDOW_TYPE includes
// _NET_WM_WINDOW_TYPE_DIALOG, used at manage-time to float dialogs.
func windowTypeIsDialog(xc *xConn, win xproto.Window) bool {
	reply, err := xproto.GetProperty(xc.conn, false, win, xc.atoms.atom("_NET_WM_WINDOW_TYPE"),
		xproto.AtomAtom, 0, 32).Reply()
	if err != nil || reply == nil || reply.ValueLen == 0 {
		return false
	}
	dialog := xc.atoms.atom("_NET_WM_WINDOW_TYPE_DIALOG")
	for i := 0; i+4 <= len(reply.Value); i += 4 {
		a := xproto.Atom(uint32(reply.Value[i]) | uint32(reply.Value[i+1])<<8 |
			uint32(reply.Value[i+2])<<16 | uint32(reply.Value[i+3])<<24)
		if a == dialog {
			return true
		}
	}
	return false
}

// windowStateRequestsFullscreen reports whether the initial
// _NET_WM_STATE includes _NET_WM_STATE_FULLSCREEN, honored at manage
// time per ICCCM/EWMH client-requested initial state.
func windowStateRequestsFullscreen(xc *xConn, win xproto.Window) bool {
	reply, err := xproto.GetProperty(xc.conn, false, win, xc.atoms.atom("_NET_WM_STATE"),
		xproto.AtomAtom, 0, 32).Reply()
	if err != nil || reply == nil || reply.ValueLen == 0 {
		return false
	}
	fs := xc.atoms.atom("_NET_WM_STATE_FULLSCREEN")
	for i := 0; i+4 <= len(reply.Value); i += 4 {
		a := xproto.Atom(uint32(reply.Value[i]) | uint32(reply.Value[i+1])<<8 |
			uint32(reply.Value[i+2])<<16 | uint32(reply.Value[i+3])<<24)
		if a == fs {
			return true
		}
	}
	return false
}
