// This file is part of the program "AndrathWM".
// Please see the LICENSE file for copyright information.

package main

import (
	"fmt"

	"github.com/BurntSushi/xgb/xproto"
)

// atomNames is the full set of protocol atoms the WM needs: EWMH, ICCCM,
// XEmbed, and the compositor/systray selection names. Interned in one
// batched round-trip at startup — all InternAtom requests fire before
// any reply is collected, resisting the temptation to intern atoms
// lazily on first use, since several (e.g. _NET_WM_STATE_FULLSCREEN)
// are needed in the event-handler hot path.
var atomNames = [...]string{
	"WM_PROTOCOLS",
	"WM_DELETE_WINDOW",
	"WM_TAKE_FOCUS",
	"WM_STATE",
	"WM_CHANGE_STATE",
	"_NET_SUPPORTED",
	"_NET_WM_NAME",
	"_NET_WM_ICON",
	"_NET_WM_STATE",
	"_NET_WM_STATE_FULLSCREEN",
	"_NET_WM_STATE_DEMANDS_ATTENTION",
	"_NET_WM_STATE_STICKY",
	"_NET_WM_STATE_ABOVE",
	"_NET_WM_STATE_BELOW",
	"_NET_WM_STATE_HIDDEN",
	"_NET_WM_WINDOW_TYPE",
	"_NET_WM_WINDOW_TYPE_DIALOG",
	"_NET_WM_DESKTOP",
	"_NET_WM_PID",
	"_NET_FRAME_EXTENTS",
	"_NET_WM_OPACITY",
	"_NET_WM_WINDOW_OPACITY",
	"_NET_WM_BYPASS_COMPOSITOR",
	"_NET_ACTIVE_WINDOW",
	"_NET_CLIENT_LIST",
	"_NET_CLIENT_LIST_STACKING",
	"_NET_NUMBER_OF_DESKTOPS",
	"_NET_CURRENT_DESKTOP",
	"_NET_DESKTOP_NAMES",
	"_NET_DESKTOP_VIEWPORT",
	"_NET_WORKAREA",
	"_NET_SUPPORTING_WM_CHECK",
	"_NET_CLOSE_WINDOW",
	"_NET_MOVERESIZE_WINDOW",
	"_NET_SYSTEM_TRAY_OPCODE",
	"_NET_SYSTEM_TRAY_ORIENTATION",
	"_NET_SYSTEM_TRAY_ORIENTATION_HORZ",
	"_NET_SYSTEM_TRAY_VISUAL",
	"_XEMBED",
	"_XEMBED_INFO",
	"_XROOTPMAP_ID",
	"ESETROOT_PMAP_ID",
	"MANAGER",
	"UTF8_STRING",
}

// atomCache holds the interned atom ids of atomNames, keyed by name. The
// per-screen selection atoms (_NET_WM_CM_Sn, _NET_SYSTEM_TRAY_Sn) depend
// on the screen number and are not held here.
type atomCache struct {
	byName map[string]xproto.Atom
}

func internAtoms(xc *xConn) (*atomCache, error) {
	cookies := make([]xproto.InternAtomCookie, len(atomNames))
	for i, name := range atomNames {
		cookies[i] = xproto.InternAtom(xc.conn, false, uint16(len(name)), name)
	}

	ac := &atomCache{byName: make(map[string]xproto.Atom, len(atomNames))}
	for i, name := range atomNames {
		reply, err := cookies[i].Reply()
		if err != nil {
			return nil, err
		}
		ac.byName[name] = reply.Atom
	}
	return ac, nil
}

func (ac *atomCache) atom(name string) xproto.Atom {
	if a, ok := ac.byName[name]; ok {
		return a
	}
	return xproto.AtomNone
}

// screenSelection interns (uncached, since it's screen-number-dependent
// and only ever needed once at startup) the compositor-manager or
// system-tray selection atom for screen n.
func screenSelection(xc *xConn, format string, n int) (xproto.Atom, error) {
	name := fmt.Sprintf(format, n)
	r, err := xproto.InternAtom(xc.conn, false, uint16(len(name)), name).Reply()
	if err != nil {
		return xproto.AtomNone, err
	}
	return r.Atom, nil
}
