// This file is part of the program "AndrathWM".
// Please see the LICENSE file for copyright information.

package main

import (
	"fmt"

	"github.com/BurntSushi/xgb"
	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil"
)

// xConn bundles the xgbutil connection (used for the EWMH/ICCCM helper
// packages) with the raw xgb.Conn it wraps (used directly for the
// extension packages xgbutil doesn't cover: randr, damage, xfixes,
// render, composite). This mirrors the common pattern of opening
// a bare xgbutil.XUtil purely to reach its ewmh/icccm helpers while
// still issuing extension requests on the raw connection.
type xConn struct {
	xu     *xgbutil.XUtil
	conn   *xgb.Conn
	screen *xproto.ScreenInfo
	root   xproto.Window
	scrnum int
	atoms  *atomCache
}

func dialX() (*xConn, error) {
	xu, err := xgbutil.NewConn()
	if err != nil {
		return nil, fmt.Errorf("open display: %w", err)
	}
	xc := &xConn{
		xu:     xu,
		conn:   xu.Conn(),
		screen: xu.Screen(),
		root:   xu.RootWin(),
		scrnum: 0, // the default screen; multi-screen (not multi-monitor) X setups are out of scope
	}
	ac, err := internAtoms(xc)
	if err != nil {
		xu.Conn().Close()
		return nil, fmt.Errorf("intern atoms: %w", err)
	}
	xc.atoms = ac
	return xc, nil
}

func (xc *xConn) close() {
	if xc == nil || xc.conn == nil {
		return
	}
	xc.conn.Close()
}

// takeWMSelection attempts to grab SubstructureRedirect on the root
// window — the "another WM is running" check. A BadAccess on this
// request is returned to the caller, which treats it as fatal; it never
// reaches the asynchronous error classifier in events.go.
func (xc *xConn) takeWMSelection() error {
	const mask = xproto.EventMaskSubstructureRedirect |
		xproto.EventMaskSubstructureNotify |
		xproto.EventMaskButtonPress |
		xproto.EventMaskPointerMotion |
		xproto.EventMaskEnterWindow |
		xproto.EventMaskLeaveWindow |
		xproto.EventMaskStructureNotify |
		xproto.EventMaskPropertyChange

	return xproto.ChangeWindowAttributesChecked(xc.conn, xc.root, xproto.CwEventMask,
		[]uint32{mask}).Check()
}
