// This file is part of the program "AndrathWM".
// Please see the LICENSE file for copyright information.

package main

import (
	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil/icccm"
)

// allClients is the flat registry every findClient lookup consults;
// kept separate from each monitor's clients list (which is stacking/
// ordering state) so window->client lookup stays O(1) regardless of
// which monitor currently owns the window.
var allClients = map[xproto.Window]*client{}

func findClient(win xproto.Window) *client { return allClients[win] }

// manageWindow implements original_source/src/client.c's manage(): read
// the window's class/instance/title, apply rules, pick a monitor,
// reparent-free border setup, attach to lists, and map.
func manageWindow(xc *xConn, win xproto.Window, comp *compositor) *client {
	geom, err := xproto.GetGeometry(xc.conn, xproto.Drawable(win)).Reply()
	if err != nil {
		return nil
	}
	c := &client{
		win: win,
		x:   int(geom.X), y: int(geom.Y),
		w: int(geom.Width), h: int(geom.Height),
		bw:      borderpx,
		opacity: 1.0,
	}
	class, instance := fetchWindowClass(xc, win)
	c.name = fetchWindowTitle(xc, win)
	c.applyRules(class, instance, c.name)
	c.updateSizeHints(xc)
	if windowTypeIsDialog(xc, win) {
		c.isfloating = true
	}
	// _NET_WM_BYPASS_COMPOSITOR is read once here, at manage time; a later
	// change of the property is not re-read on PropertyNotify.
	if r, err := xproto.GetProperty(xc.conn, false, win, xc.atoms.atom("_NET_WM_BYPASS_COMPOSITOR"),
		xproto.AtomCardinal, 0, 1).Reply(); err == nil && r != nil && len(r.Value) >= 4 {
		c.bypassCompositor = int(uint32(r.Value[0]) | uint32(r.Value[1])<<8 |
			uint32(r.Value[2])<<16 | uint32(r.Value[3])<<24)
	}

	if c.mon == nil {
		c.mon = selmon
	}
	if c.mon == nil {
		c.mon = mons
	}
	if c.mon == nil {
		return nil
	}

	xproto.ConfigureWindowChecked(xc.conn, win, xproto.ConfigWindowBorderWidth,
		[]uint32{uint32(c.bw)}).Check()
	xproto.ChangeWindowAttributesChecked(xc.conn, win, xproto.CwEventMask,
		[]uint32{xproto.EventMaskEnterWindow | xproto.EventMaskFocusChange | xproto.EventMaskPropertyChange | xproto.EventMaskStructureNotify}).Check()

	c.mon.attach(c)
	allClients[win] = c

	if c.iscentered {
		wa := c.mon.wArea()
		c.x = wa.x + (wa.w-c.w)/2
		c.y = wa.y + (wa.h-c.h)/2
	}
	c.resizeClient(xc, c.x, c.y, c.w, c.h)

	xproto.MapWindowChecked(xc.conn, win).Check()
	grabButtons(xc, c, false)

	if windowStateRequestsFullscreen(xc, win) {
		c.setFullscreen(true, xc, comp)
	}

	c.mon.arrangemon(xc)
	selmon = c.mon
	setFocus(xc, c.mon, c)
	updateClientList(xc)

	if comp != nil {
		comp.onClientManaged(c)
	}
	return c
}

// unmanageWindow implements unmanage(): detach from lists, hand focus
// to the next stack entry, and (when destroyed is false, i.e. the
// window merely unmapped rather than died) leave the X window alone
// since the client may remap itself later.
func unmanageWindow(xc *xConn, c *client, comp *compositor, destroyed bool) {
	m := c.mon
	if m != nil {
		m.detach(c)
	}
	delete(allClients, c.win)
	if comp != nil {
		comp.onClientUnmanaged(c)
	}
	if m == nil {
		return
	}
	if m.sel == nil {
		var next *client
		m.stack.each(func(cc *client) bool {
			if cc.isVisible() {
				next = cc
				return false
			}
			return true
		})
		setFocus(xc, m, next)
	}
	m.arrangemon(xc)
	updateClientList(xc)
}

// closeClient requests a graceful close via WM_DELETE_WINDOW when the
// client advertises it, falling back to a forceful XKillClient
// otherwise (ICCCM 4.1.7 / ICCCM 4.2.8).
func closeClient(xc *xConn, c *client) {
	if protocolSupported(xc, c.win, "WM_DELETE_WINDOW") {
		sendClientMessage(xc, c.win, "WM_PROTOCOLS", uint32(xc.atoms.atom("WM_DELETE_WINDOW")))
		return
	}
	xproto.KillClientChecked(xc.conn, uint32(c.win)).Check()
}

func fetchWindowTitle(xc *xConn, win xproto.Window) string {
	reply, err := xproto.GetProperty(xc.conn, false, win, xc.atoms.atom("_NET_WM_NAME"),
		xc.atoms.atom("UTF8_STRING"), 0, 256).Reply()
	if err == nil && reply != nil && reply.ValueLen > 0 {
		return string(reply.Value)
	}
	reply, err = xproto.GetProperty(xc.conn, false, win, xproto.AtomWmName,
		xproto.AtomString, 0, 256).Reply()
	if err == nil && reply != nil && reply.ValueLen > 0 {
		return string(reply.Value)
	}
	return "broken"
}

func fetchWindowClass(xc *xConn, win xproto.Window) (class, instance string) {
	reply, err := xproto.GetProperty(xc.conn, false, win, xproto.AtomWmClass,
		xproto.AtomString, 0, 256).Reply()
	if err != nil || reply == nil || reply.ValueLen == 0 {
		return "", ""
	}
	parts := splitNUL(reply.Value)
	if len(parts) > 0 {
		instance = parts[0]
	}
	if len(parts) > 1 {
		class = parts[1]
	}
	return class, instance
}

func splitNUL(b []byte) []string {
	var out []string
	start := 0
	for i, c := range b {
		if c == 0 {
			out = append(out, string(b[start:i]))
			start = i + 1
		}
	}
	if start < len(b) {
		out = append(out, string(b[start:]))
	}
	return out
}

// client is one managed top-level window. Field naming follows
// original_source/src/client.h closely; the ICCCM size hint fields
// mirror icccm.NormalHints field-for-field.
type client struct {
	win xproto.Window

	name    string // UTF-8, 256 chars max, "broken" if unavailable
	iconKey string // cache key into the shared iconCache

	x, y, w, h     int
	oldx, oldy, oldw, oldh int // pre-fullscreen restore geometry
	bw, oldbw      int

	mina, maxa                 float64
	basew, baseh               int
	incw, inch                 int
	minw, minh, maxw, maxh     int
	hintsvalid                 bool

	mon  *monitor
	tags uint32 // bit i set => visible on tag i; 0 => hidden scratchpad

	// membership: nodes in this monitor's clients/stack lists.
	clistNode  *listNode[*client]
	stackNode  *listNode[*client]

	isfixed      bool
	iscentered   bool
	isfloating   bool
	isurgent     bool
	neverfocus   bool
	isfullscreen bool
	ishidden     bool
	issteam      bool
	issniicon    bool
	scratchKey   rune // 0 = not a scratchpad

	opacity           float64 // [0,1]
	bypassCompositor  int     // 0 default, 1 never, 2 always
}

// applyRules matches the client against the static rule table and
// applies the first match, mirroring original_source's linear scan
// over config.def.h's rules[].
func (c *client) applyRules(class, instance, title string) {
	c.tags = 0
	for _, r := range rules {
		if r.class != "" && !globMatch(r.class, class) {
			continue
		}
		if r.instance != "" && !globMatch(r.instance, instance) {
			continue
		}
		if r.title != "" && !containsFold(title, r.title) {
			continue
		}
		c.iscentered = r.centered
		c.isfloating = r.floating
		c.tags |= r.tags
		c.scratchKey = r.scratchKey
		if r.opacity > 0 {
			c.opacity = r.opacity
		}
		if r.monitor >= 0 {
			if m := monitorByIndex(r.monitor); m != nil {
				c.mon = m
			}
		}
		break
	}
	if c.tags&tagmask == 0 {
		if c.mon != nil {
			c.tags = c.mon.tagset[c.mon.seltags]
		} else {
			c.tags = 1
		}
	}
	// Scratchpad clients always start hidden.
	if c.scratchKey != 0 {
		c.tags = 0
	}
}

// updateSizeHints reads WM_NORMAL_HINTS and derives the ICCCM 4.1.2.3
// fields used by applySizeHints, exactly mirroring icccm.NormalHints'
// layout.
func (c *client) updateSizeHints(xc *xConn) {
	c.basew, c.baseh = 0, 0
	c.incw, c.inch = 0, 0
	c.maxw, c.maxh = 0, 0
	c.minw, c.minh = 0, 0
	c.maxa, c.mina = 0, 0
	c.hintsvalid = true

	nh, err := icccm.WmNormalHintsGet(xc.xu, c.win)
	if err != nil || nh == nil {
		c.hintsvalid = false
		return
	}

	if nh.Flags&icccm.SizeHintPBaseSize != 0 {
		c.basew, c.baseh = int(nh.BaseWidth), int(nh.BaseHeight)
	} else if nh.Flags&icccm.SizeHintPMinSize != 0 {
		c.basew, c.baseh = int(nh.MinWidth), int(nh.MinHeight)
	}
	if nh.Flags&icccm.SizeHintPResizeInc != 0 {
		c.incw, c.inch = int(nh.WidthInc), int(nh.HeightInc)
	}
	if nh.Flags&icccm.SizeHintPMaxSize != 0 {
		c.maxw, c.maxh = int(nh.MaxWidth), int(nh.MaxHeight)
	}
	if nh.Flags&icccm.SizeHintPMinSize != 0 {
		c.minw, c.minh = int(nh.MinWidth), int(nh.MinHeight)
	} else if nh.Flags&icccm.SizeHintPBaseSize != 0 {
		c.minw, c.minh = int(nh.BaseWidth), int(nh.BaseHeight)
	}
	if nh.Flags&icccm.SizeHintPAspect != 0 && nh.MinAspectDen != 0 && nh.MaxAspectDen != 0 {
		c.mina = float64(nh.MinAspectNum) / float64(nh.MinAspectDen)
		c.maxa = float64(nh.MaxAspectNum) / float64(nh.MaxAspectDen)
	}
	c.isfixed = c.maxw > 0 && c.maxw == c.minw && c.maxh > 0 && c.maxh == c.minh
	if c.isfixed {
		c.isfloating = true
	}
}

// applySizeHints clamps a candidate geometry to the work area, to the
// bar-height minimum, and — when honoring hints (resizehints is set and
// the client is floating or its monitor has no arrange function) — to
// ICCCM 4.1.2.3 rules: subtract base, clamp by aspect, quantize by
// increments, clamp min/max.
func (c *client) applySizeHints(x, y, w, h int, interact bool) (int, int, int, int) {
	m := c.mon
	if m == nil {
		return x, y, w, h
	}

	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}

	if interact {
		// interact changes nothing: interactive drags get the same
		// work-area clamp below as layout placements.
	}
	wa := m.wArea()
	if x > wa.x+wa.w {
		x = wa.x + wa.w - w
	}
	if y > wa.y+wa.h {
		y = wa.y + wa.h - h
	}
	if x+w+2*c.bw < wa.x {
		x = wa.x
	}
	if y+h+2*c.bw < wa.y {
		y = wa.y
	}
	if h < barHeight {
		h = barHeight
	}
	if w < barHeight {
		w = barHeight
	}

	if resizehints && (c.isfloating || !hasArrange(m)) {
		if !c.hintsvalid {
			c.updateSizeHints(nil)
		}
		baseismin := c.basew == c.minw && c.baseh == c.minh
		if !baseismin {
			w -= c.basew
			h -= c.baseh
		}
		if c.mina > 0 && c.maxa > 0 {
			if c.maxa < float64(w)/float64(h) {
				w = int(float64(h) * c.maxa)
			} else if c.mina < float64(h)/float64(w) {
				h = int(float64(w) * c.mina)
			}
		}
		if baseismin {
			w -= c.basew
			h -= c.baseh
		}
		if c.incw != 0 {
			w -= w % c.incw
		}
		if c.inch != 0 {
			h -= h % c.inch
		}
		w = max(w+c.basew, c.minw)
		h = max(h+c.baseh, c.minh)
		if c.maxw != 0 {
			w = min(w, c.maxw)
		}
		if c.maxh != 0 {
			h = min(h, c.maxh)
		}
	}
	return x, y, w, h
}

func hasArrange(m *monitor) bool {
	return m != nil && layouts[m.lt[m.sellt]].arrange != nil
}

// isVisible reports whether c shows on its monitor's current tag
// selection: visible on monitor m iff client.tags & m.tagset[m.seltags]
// is nonzero.
func (c *client) isVisible() bool {
	return c.mon != nil && c.tags&c.mon.tagset[c.mon.seltags] != 0
}

func (c *client) fullBorderWidth() int { return borderpx }

// setFullscreen saves geometry on entry and restores it on exit.
func (c *client) setFullscreen(fullscreen bool, xc *xConn, comp *compositor) {
	if fullscreen && !c.isfullscreen {
		c.oldx, c.oldy, c.oldw, c.oldh = c.x, c.y, c.w, c.h
		c.oldbw = c.bw
		c.isfullscreen = true
		c.isfloating = true
		c.bw = 0
		if c.mon != nil {
			c.resizeClient(xc, c.mon.bounds.x, c.mon.bounds.y, c.mon.bounds.w, c.mon.bounds.h)
		}
		if comp != nil {
			comp.onClientFullscreen(c, true)
		}
	} else if !fullscreen && c.isfullscreen {
		c.isfullscreen = false
		c.isfloating = false
		c.bw = c.oldbw
		c.resizeClient(xc, c.oldx, c.oldy, c.oldw, c.oldh)
		if comp != nil {
			comp.onClientFullscreen(c, false)
		}
	}
}

// setGeometry is the pure geometry mutation resizeClient funnels through,
// kept separate so layout math stays testable without a live display.
func (c *client) setGeometry(x, y, w, h int) {
	c.x, c.y, c.w, c.h = x, y, w, h
}

// resizeClient applies geometry to both the in-memory client and the
// real window: ConfigureWindow with the new rectangle and border width,
// then a synthetic ConfigureNotify so the client sees its own new
// geometry even when the request changed nothing the server would
// otherwise report (mirroring original_source's resizeclient(), which
// always configures and always synthesizes). xc may be nil in tests,
// in which case only the in-memory geometry changes.
func (c *client) resizeClient(xc *xConn, x, y, w, h int) {
	c.setGeometry(x, y, w, h)
	if xc == nil {
		return
	}
	const mask = xproto.ConfigWindowX | xproto.ConfigWindowY |
		xproto.ConfigWindowWidth | xproto.ConfigWindowHeight | xproto.ConfigWindowBorderWidth
	xproto.ConfigureWindowChecked(xc.conn, c.win, mask,
		[]uint32{uint32(int16(x)), uint32(int16(y)), uint32(w), uint32(h), uint32(c.bw)}).Check()
	sendSyntheticConfigure(xc, c)
}

// toggleFloating is a no-op for fixed-size clients.
func (c *client) toggleFloating(xc *xConn) {
	if c.isfixed {
		return
	}
	c.isfloating = !c.isfloating
	if c.isfloating {
		c.resizeClient(xc, c.x, c.y, c.w, c.h)
	}
}
