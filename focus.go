// This file is part of the program "AndrathWM".
// Please see the LICENSE file for copyright information.

package main

import "github.com/BurntSushi/xgb/xproto"

// setFocus gives input focus to c (or, if c is nil, to the root window),
// mirroring original_source's focus(): unfocus the previous selection,
// move c to the front of its monitor's focus stack, publish
// _NET_ACTIVE_WINDOW, and send WM_TAKE_FOCUS if the client asked for it
// via WM_PROTOCOLS. Border colors are not changed here.
func setFocus(xc *xConn, m *monitor, c *client) {
	if m == nil {
		return
	}
	if m.sel != nil && m.sel != c {
		unfocus(xc, m.sel, false)
	}
	m.sel = c
	if c == nil {
		setActiveWindow(xc, 0)
		xproto.SetInputFocusChecked(xc.conn, xproto.InputFocusPointerRoot, xc.root, xproto.TimeCurrentTime).Check()
		return
	}
	if c.stackNode != nil {
		m.stack.moveToFront(c.stackNode)
	}
	if !c.neverfocus {
		xproto.SetInputFocusChecked(xc.conn, xproto.InputFocusPointerRoot, c.win, xproto.TimeCurrentTime).Check()
		sendTakeFocus(xc, c)
	}
	setActiveWindow(xc, c.win)
}

// unfocus, unless setfocus is false (the WM is tearing the client down),
// releases input focus back to root; it does not change the border color.
func unfocus(xc *xConn, c *client, setfocus bool) {
	if c == nil {
		return
	}
	if setfocus {
		xproto.SetInputFocusChecked(xc.conn, xproto.InputFocusPointerRoot, xc.root, xproto.TimeCurrentTime).Check()
		setActiveWindow(xc, 0)
	}
}

// sendTakeFocus issues a ClientMessage carrying WM_TAKE_FOCUS if and
// only if the client's WM_PROTOCOLS advertises it (ICCCM 4.1.7), as a
// gentler alternative to SetInputFocus for clients that manage their
// own focus widgets.
func sendTakeFocus(xc *xConn, c *client) bool {
	if !protocolSupported(xc, c.win, "WM_TAKE_FOCUS") {
		return false
	}
	sendClientMessage(xc, c.win, "WM_PROTOCOLS", uint32(xc.atoms.atom("WM_TAKE_FOCUS")))
	return true
}

func sendClientMessage(xc *xConn, win xproto.Window, protoAtom string, data uint32) {
	ev := xproto.ClientMessageEvent{
		Format: 32,
		Window: win,
		Type:   xc.atoms.atom(protoAtom),
		Data:   xproto.ClientMessageDataUnionData32New([5]uint32{data, uint32(xproto.TimeCurrentTime), 0, 0, 0}),
	}
	xproto.SendEventChecked(xc.conn, false, win, xproto.EventMaskNoEvent, string(ev.Bytes())).Check()
}

// protocolSupported reads WM_PROTOCOLS and reports whether it lists
// protoAtom, used both for WM_TAKE_FOCUS and WM_DELETE_WINDOW checks.
func protocolSupported(xc *xConn, win xproto.Window, protoAtom string) bool {
	want := xc.atoms.atom(protoAtom)
	reply, err := xproto.GetProperty(xc.conn, false, win, xc.atoms.atom("WM_PROTOCOLS"),
		xproto.AtomAtom, 0, 64).Reply()
	if err != nil || reply == nil {
		return false
	}
	for i := 0; i+4 <= len(reply.Value); i += 4 {
		a := xproto.Atom(uint32(reply.Value[i]) | uint32(reply.Value[i+1])<<8 |
			uint32(reply.Value[i+2])<<16 | uint32(reply.Value[i+3])<<24)
		if a == want {
			return true
		}
	}
	return false
}

// focusStack returns the next client to focus when dir is +1 (down the
// stack) or -1 (up), optionally including hidden (scratchpad/minimized)
// clients when includeHidden is set, mirroring focusstack()/
// focusstackhidden() in original_source/src/focus.c.
func focusStack(m *monitor, dir int, includeHidden bool) *client {
	if m == nil || m.sel == nil {
		return nil
	}
	var cands []*client
	m.clients.each(func(c *client) bool {
		if !c.isVisible() {
			return true
		}
		if !includeHidden && c.ishidden {
			return true
		}
		cands = append(cands, c)
		return true
	})
	if len(cands) == 0 {
		return nil
	}
	idx := -1
	for i, c := range cands {
		if c == m.sel {
			idx = i
			break
		}
	}
	if idx == -1 {
		return cands[0]
	}
	n := len(cands)
	next := ((idx+dir)%n + n) % n
	return cands[next]
}
