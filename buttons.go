// This file is part of the program "AndrathWM".
// Please see the LICENSE file for copyright information.

package main

import "github.com/BurntSushi/xgb/xproto"

// dragMode distinguishes the two pointer-grab drives buttons.go drives
// through MotionNotify, mirroring original_source's movemouse()/
// resizemouse() pair.
type dragMode int

const (
	dragNone dragMode = iota
	dragMove
	dragResize
)

// dragState is the live pointer-grab session started by a move/resize
// button binding and fed by every MotionNotify until ButtonRelease. The
// original's translation unit blocks inside an XMaskEvent loop for the
// whole gesture; here the grab instead just redirects MotionNotify to
// the root window and the normal event pump drives it incrementally,
// keeping exactly one goroutine ever touching the X connection.
type dragState struct {
	mode         dragMode
	c            *client
	startX       int16
	startY       int16
	origX, origY int
	origW, origH int
	lastMotion   xproto.Timestamp
}

// buttonBinding pairs a modifier+button chord (grabbed only on client
// windows, per ClkClientWin in original_source/config.def.h) with the
// handler it starts.
type buttonBinding struct {
	mod    uint16
	button xproto.Button
	fn     func(w *wm, c *client)
}

var buttonBindings = []buttonBinding{
	{modkey, xproto.ButtonIndex1, btnMoveMouse},
	{modkey, xproto.ButtonIndex2, btnToggleFloating},
	{modkey, xproto.ButtonIndex3, btnResizeMouse},
}

const mouseMask = xproto.EventMaskButtonPress | xproto.EventMaskButtonRelease | xproto.EventMaskPointerMotion

// grabButtons (re)installs the button grabs on c->win, mirroring
// original_source's grabbuttons(): an any-button/any-modifier sync grab
// so an unfocused client's click-to-focus can be replayed to the
// application afterward (installed only while the client is unfocused),
// plus the specific move/resize/toggle chords, grabbed whether or not the
// client is focused and repeated under the plain and Lock variants only;
// NumLock variants are not grabbed.
func grabButtons(xc *xConn, c *client, focused bool) {
	xproto.UngrabButtonChecked(xc.conn, xproto.ButtonIndexAny, c.win, xproto.ModMaskAny).Check()
	if !focused {
		xproto.GrabButtonChecked(xc.conn, false, c.win,
			xproto.EventMaskButtonPress|xproto.EventMaskButtonRelease,
			xproto.GrabModeSync, xproto.GrabModeSync, 0, 0,
			xproto.ButtonIndexAny, xproto.ModMaskAny).Check()
	}
	lockVariants := []uint16{0, xproto.ModMaskLock}
	for _, bb := range buttonBindings {
		for _, lv := range lockVariants {
			xproto.GrabButtonChecked(xc.conn, false, c.win,
				xproto.EventMaskButtonPress|xproto.EventMaskButtonRelease,
				xproto.GrabModeAsync, xproto.GrabModeSync, 0, 0,
				bb.button, bb.mod|lv).Check()
		}
	}
}

// onButtonPress dispatches a press on a client window: an unmodified
// click focuses the client (then replays the event so the application
// still sees it, since the any-button grab runs in sync mode), while a
// chord matching buttonBindings starts its handler.
func (w *wm) onButtonPress(e xproto.ButtonPressEvent) {
	c := findClient(e.Event)
	if c == nil {
		if w.tray != nil {
			if ti := w.tray.findIcon(e.Event); ti != nil && ti.sniOwner != "" && w.host != nil {
				w.host.handleClick(ti.sniOwner, int(e.Detail), int32(e.RootX), int32(e.RootY))
			}
		}
		xproto.AllowEventsChecked(w.xc.conn, xproto.AllowAsyncPointer, 0).Check()
		return
	}
	if c.mon != nil {
		selmon = c.mon
	}
	setFocus(w.xc, c.mon, c)

	clean := e.State &^ (xproto.ModMaskLock | w.numLockMask)
	for _, bb := range buttonBindings {
		if bb.mod == clean && bb.button == e.Detail {
			bb.fn(w, c)
			xproto.AllowEventsChecked(w.xc.conn, xproto.AllowAsyncPointer, 0).Check()
			return
		}
	}
	xproto.AllowEventsChecked(w.xc.conn, xproto.AllowReplayPointer, 0).Check()
}

func (w *wm) onButtonRelease(e xproto.ButtonReleaseEvent) {
	if w.drag == nil {
		return
	}
	c := w.drag.c
	w.drag = nil
	xproto.UngrabPointerChecked(w.xc.conn, xproto.TimeCurrentTime).Check()
	if c.mon == nil {
		return
	}
	if m := recttomon(rect{c.x, c.y, c.w, c.h}); m != nil && m != c.mon {
		c.mon.detach(c)
		m.attach(c)
		selmon = m
		setFocus(w.xc, m, c)
		c.mon.arrangemon(w.xc)
		m.arrangemon(w.xc)
	}
}

func btnToggleFloating(w *wm, c *client) {
	if c.isfullscreen {
		return
	}
	c.toggleFloating(w.xc)
	c.mon.arrangemon(w.xc)
}

// btnMoveMouse grabs the pointer and begins a move gesture; onMotionNotify
// applies each subsequent pointer sample until onButtonRelease ends it.
func btnMoveMouse(w *wm, c *client) {
	if c.isfullscreen {
		return
	}
	if c.mon != nil {
		c.mon.restack()
	}
	if !grabPointerForDrag(w.xc) {
		return
	}
	ptr, err := xproto.QueryPointer(w.xc.conn, w.xc.root).Reply()
	if err != nil {
		xproto.UngrabPointerChecked(w.xc.conn, xproto.TimeCurrentTime).Check()
		return
	}
	w.drag = &dragState{mode: dragMove, c: c, startX: ptr.RootX, startY: ptr.RootY, origX: c.x, origY: c.y}
}

// btnResizeMouse grabs the pointer and begins a resize gesture, warping
// the pointer to the client's bottom-right corner first as
// original_source's resizemouse() does.
func btnResizeMouse(w *wm, c *client) {
	if c.isfullscreen {
		return
	}
	if c.mon != nil {
		c.mon.restack()
	}
	if !grabPointerForDrag(w.xc) {
		return
	}
	xproto.WarpPointerChecked(w.xc.conn, 0, c.win, 0, 0, 0, 0,
		int16(c.w+c.bw-1), int16(c.h+c.bw-1)).Check()
	w.drag = &dragState{mode: dragResize, c: c, origX: c.x, origY: c.y, origW: c.w, origH: c.h}
}

func grabPointerForDrag(xc *xConn) bool {
	reply, err := xproto.GrabPointer(xc.conn, false, xc.root, mouseMask,
		xproto.GrabModeAsync, xproto.GrabModeAsync, 0, 0, xproto.TimeCurrentTime).Reply()
	return err == nil && reply != nil && reply.Status == xproto.GrabStatusSuccess
}

// onMotionNotify applies the live drag gesture (if any) to the dragged
// client, throttled to motionfps like original_source's lasttime check,
// snapping to the monitor edge within snap pixels as the floating move
// does, and auto-floating a tiled client once the pointer has moved
// past the snap threshold.
func (w *wm) onMotionNotify(e xproto.MotionNotifyEvent) {
	d := w.drag
	if d == nil {
		return
	}
	if e.Time != 0 && d.lastMotion != 0 {
		if e.Time-d.lastMotion <= xproto.Timestamp(1000/motionfps) {
			return
		}
	}
	d.lastMotion = e.Time

	c := d.c
	if c.mon == nil {
		return
	}
	wa := c.mon.wArea()

	switch d.mode {
	case dragMove:
		nx := d.origX + int(e.RootX-d.startX)
		ny := d.origY + int(e.RootY-d.startY)
		if abs(wa.x-nx) < snap {
			nx = wa.x
		} else if abs((wa.x+wa.w)-(nx+c.w)) < snap {
			nx = wa.x + wa.w - c.w
		}
		if abs(wa.y-ny) < snap {
			ny = wa.y
		} else if abs((wa.y+wa.h)-(ny+c.h)) < snap {
			ny = wa.y + wa.h - c.h
		}
		if !c.isfloating && hasArrange(c.mon) && (abs(nx-c.x) > snap || abs(ny-c.y) > snap) {
			c.toggleFloating(w.xc)
			c.mon.arrangemon(w.xc)
		}
		if !hasArrange(c.mon) || c.isfloating {
			x, y, width, height := c.applySizeHints(nx, ny, c.w, c.h, true)
			c.resizeClient(w.xc, x, y, width, height)
		}
	case dragResize:
		nw := int(e.RootX) - d.origX - 2*c.bw + 1
		nh := int(e.RootY) - d.origY - 2*c.bw + 1
		if nw < 1 {
			nw = 1
		}
		if nh < 1 {
			nh = 1
		}
		if !c.isfloating && hasArrange(c.mon) && (abs(nw-c.w) > snap || abs(nh-c.h) > snap) {
			c.toggleFloating(w.xc)
			c.mon.arrangemon(w.xc)
		}
		if !hasArrange(c.mon) || c.isfloating {
			x, y, width, height := c.applySizeHints(c.x, c.y, nw, nh, true)
			c.resizeClient(w.xc, x, y, width, height)
		}
	}

	if w.comp != nil {
		w.comp.flushDirty(w.xc)
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
