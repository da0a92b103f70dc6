// This file is part of the program "AndrathWM".
// Please see the LICENSE file for copyright information.

package main

import "github.com/BurntSushi/xgb/xproto"

// trayIcon is one adopted systray client, either a legacy XEmbed icon
// (pre-SNI applications) or a slot representing an SNI item that
// chooses to also render an XEmbed fallback. slot is the icon's place in
// adoption order, recorded by adopt; the bar does not position icons.
type trayIcon struct {
	win      xproto.Window
	sniOwner string // D-Bus bus name, "" for pure XEmbed icons
	slot     int
}

// systray owns the _NET_SYSTEM_TRAY_Sn selection and the XEmbed
// handshake for legacy tray icons, mirroring original_source's
// systray.c. SNI items never touch this path unless they explicitly
// request an XEmbed fallback icon; the primary tray surface is sni.go's
// StatusNotifierHost.
type systray struct {
	win    xproto.Window
	icons  []*trayIcon
	screen int
}

// acquireSystraySelection creates the tray manager window and takes
// ownership of _NET_SYSTEM_TRAY_Sn (n = screen number), announcing it
// via a MANAGER ClientMessage on the root window per the XEmbed systray
// spec section 2.
func acquireSystraySelection(xc *xConn) (*systray, error) {
	win, err := xproto.NewWindowId(xc.conn)
	if err != nil {
		return nil, err
	}
	err = xproto.CreateWindowChecked(xc.conn, xc.screen.RootDepth, win, xc.root,
		-1, -1, 1, 1, 0, xproto.WindowClassInputOutput, xc.screen.RootVisual, 0, nil).Check()
	if err != nil {
		return nil, err
	}

	selAtom, err := screenSelection(xc, "_NET_SYSTEM_TRAY_S%d", xc.scrnum)
	if err != nil {
		return nil, err
	}
	if err := xproto.SetSelectionOwnerChecked(xc.conn, win, selAtom, xproto.TimeCurrentTime).Check(); err != nil {
		return nil, err
	}

	changeProp32(xc, win, "_NET_SYSTEM_TRAY_ORIENTATION", xproto.AtomCardinal,
		[]uint32{orientationCode()})

	sendClientMessage(xc, xc.root, "MANAGER", uint32(selAtom))

	return &systray{win: win, screen: xc.scrnum}, nil
}

func orientationCode() uint32 {
	if systrayonleft {
		return 1 // ORIENTATION_VERTICAL, reversed reading order
	}
	return 0 // ORIENTATION_HORIZONTAL
}

// adopt embeds an icon window sent via a SYSTEM_TRAY_REQUEST_DOCK
// opcode: reparent under the tray window, set XEMBED_MAPPED, send
// XEMBED_EMBEDDED_NOTIFY (XEmbed spec step 4, so the icon knows which
// window embedded it and can stop waiting), and append to the icon
// list at the next slot.
func (st *systray) adopt(xc *xConn, win xproto.Window) *trayIcon {
	for _, ti := range st.icons {
		if ti.win == win {
			return ti
		}
	}
	xproto.ReparentWindowChecked(xc.conn, win, st.win, 0, 0).Check()
	xproto.ChangePropertyChecked(xc.conn, xproto.PropModeReplace, win,
		xc.atoms.atom("_XEMBED_INFO"), xc.atoms.atom("_XEMBED_INFO"), 32, 2,
		[]byte{1, 0, 0, 0, 1, 0, 0, 0}).Check()

	const xembedEmbeddedNotify = 0
	const xembedVersion = 0
	ev := xproto.ClientMessageEvent{
		Format: 32,
		Window: win,
		Type:   xc.atoms.atom("_XEMBED"),
		Data: xproto.ClientMessageDataUnionData32New([5]uint32{
			uint32(xproto.TimeCurrentTime), xembedEmbeddedNotify, 0, uint32(st.win), xembedVersion,
		}),
	}
	xproto.SendEventChecked(xc.conn, false, win, xproto.EventMaskNoEvent, string(ev.Bytes())).Check()
	xproto.MapWindowChecked(xc.conn, win).Check()

	ti := &trayIcon{win: win, slot: len(st.icons)}
	st.icons = append(st.icons, ti)
	return ti
}

// findIcon looks up the adopted tray slot for win, used by buttons.go to
// route a click on a docked icon to the owning SNI item (sniOwner != "")
// or leave it alone for a legacy XEmbed icon to handle itself.
func (st *systray) findIcon(win xproto.Window) *trayIcon {
	for _, ti := range st.icons {
		if ti.win == win {
			return ti
		}
	}
	return nil
}

func (st *systray) release(win xproto.Window) {
	for i, ti := range st.icons {
		if ti.win == win {
			st.icons = append(st.icons[:i], st.icons[i+1:]...)
			return
		}
	}
}

// handleOpcode dispatches a ClientMessage sent to the tray manager
// window carrying a SYSTEM_TRAY_OPCODE, the one entry point legacy tray
// applications use (SYSTEM_TRAY_REQUEST_DOCK == 0).
func (st *systray) handleOpcode(xc *xConn, e xproto.ClientMessageEvent) {
	const requestDock = 0
	data := e.Data.Data32()
	if len(data) < 3 {
		return
	}
	if data[1] == requestDock {
		st.adopt(xc, xproto.Window(data[2]))
	}
}
