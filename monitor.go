// This file is part of the program "AndrathWM".
// Please see the LICENSE file for copyright information.

package main

import (
	"github.com/BurntSushi/xgb/randr"
	"github.com/BurntSushi/xgb/xproto"
)

// barHeight is the fixed bar strip height in pixels; nothing recomputes
// it from font metrics.
var barHeight = 20

// monitor is one physical output, chained into a singly-linked list via
// next exactly like original_source/src/monitor.h's Monitor struct —
// kept as a linked list rather than a slice since clients migrate
// between monitors by relinking, not by index.
type monitor struct {
	num int

	bounds  rect // full output geometry, root coordinates
	winArea rect // bounds minus the bar strip

	tagset [2]uint32 // [seltags] = current view, [1-seltags] = previous
	seltags int

	lt    [2]int // layout table index, current/alternate
	sellt int

	mfact   float64
	nmaster int
	gapPx   uint
	gapsOn  bool
	showbar bool
	topbar  bool

	barWin xproto.Window

	clients *list[*client] // all clients on this monitor, stacking-independent
	stack   *list[*client] // most-recently-focused order
	sel     *client

	pertag *pertag

	next *monitor
}

var (
	mons   *monitor // head of the monitor list
	selmon *monitor
)

func newMonitor(num int, bounds rect) *monitor {
	m := &monitor{
		num:     num,
		bounds:  bounds,
		winArea: bounds,
		tagset:  [2]uint32{1, 1},
		mfact:   mfact,
		nmaster: nmaster,
		gapPx:   5,
		gapsOn:  true,
		showbar: showbar,
		topbar:  topbar,
		clients: &list[*client]{},
		stack:   &list[*client]{},
		pertag:  newPertag(),
	}
	m.lt[0] = 0
	m.lt[1] = 1 % len(layouts)
	m.updateBarGeometry()
	return m
}

func monitorByIndex(i int) *monitor {
	n := 0
	for m := mons; m != nil; m = m.next {
		if n == i {
			return m
		}
		n++
	}
	return nil
}

func monitorCount() int {
	n := 0
	for m := mons; m != nil; m = m.next {
		n++
	}
	return n
}

func (m *monitor) wArea() rect { return m.winArea }

// updateBarGeometry recomputes winArea from bounds and showbar/topbar,
// the same split original_source's updatebarpos performs.
func (m *monitor) updateBarGeometry() {
	m.winArea = m.bounds
	if !m.showbar {
		return
	}
	m.winArea.h -= barHeight
	if m.topbar {
		m.winArea.y += barHeight
	}
}

// recttomon picks the monitor with the largest overlap with the given
// rectangle, falling back to selmon when no monitor overlaps at all
// (spec's "window spans no monitor" boundary case).
func recttomon(r rect) *monitor {
	best := selmon
	bestArea := 0
	for m := mons; m != nil; m = m.next {
		if a := m.bounds.intersectArea(r); a > bestArea {
			bestArea = a
			best = m
		}
	}
	return best
}

// dirtomon cycles the monitor list by dir (+1/-1), wrapping around,
// mirroring original_source's dirtomon.
func dirtomon(dir int) *monitor {
	if selmon == nil {
		return nil
	}
	n := monitorCount()
	if n <= 1 {
		return selmon
	}
	idx := 0
	for m := mons; m != nil; m = m.next {
		if m == selmon {
			break
		}
		idx++
	}
	idx = (idx + dir + n) % n
	return monitorByIndex(idx)
}

// applyTagset switches the monitor's active tag view, snapshotting the
// outgoing view into tagset[1-seltags] and loading the pertag slot's
// remembered layout/master state, mirroring original_source's view().
// A mask of 0 or one already equal to the current view is a no-op, and
// a mask that doesn't address a single pertag slot (a multi-tag but not
// all-tags selection) keeps whatever pertag slot was last active.
func (m *monitor) applyTagset(mask uint32) {
	if mask == 0 || mask == m.tagset[m.seltags] {
		return
	}
	m.seltags ^= 1
	m.tagset[m.seltags] = mask

	if slot, ok := slotForTagset(mask); ok {
		pt := m.pertag
		cur := pt.curTag
		pt.nmasters[cur], pt.mfacts[cur], pt.sellts[cur] = m.nmaster, m.mfact, m.sellt
		pt.ltIdxs[0][cur], pt.ltIdxs[1][cur] = m.lt[0], m.lt[1]
		pt.showbars[cur], pt.gapsOn[cur], pt.gapPx[cur] = m.showbar, m.gapsOn, m.gapPx
		pt.prevTag = pt.curTag
		pt.curTag = slot
		m.nmaster = pt.nmasters[slot]
		m.mfact = pt.mfacts[slot]
		m.sellt = pt.sellts[slot]
		m.lt[0] = pt.ltIdxs[0][slot]
		m.lt[1] = pt.ltIdxs[1][slot]
		m.showbar = pt.showbars[slot]
		m.gapsOn = pt.gapsOn[slot]
		m.gapPx = pt.gapPx[slot]
		m.updateBarGeometry()
	}
}

// visibleTiled returns the non-floating, non-hidden clients visible on
// this monitor's current tag view, in clients-list order — the input
// every arrange function consumes.
func (m *monitor) visibleTiled() []*client {
	var out []*client
	m.clients.each(func(c *client) bool {
		if !c.isfloating && !c.ishidden && c.isVisible() {
			out = append(out, c)
		}
		return true
	})
	return out
}

func (m *monitor) visible() []*client {
	var out []*client
	m.clients.each(func(c *client) bool {
		if !c.ishidden && c.isVisible() {
			out = append(out, c)
		}
		return true
	})
	return out
}

// arrangemon runs the monitor's current layout over its tiled clients
// and then restacks, matching original_source's arrangemon called after
// every geometry-affecting event; it does not touch the bar.
func (m *monitor) arrangemon(xc *xConn) {
	if m == nil {
		return
	}
	if fn := layouts[m.lt[m.sellt]].arrange; fn != nil {
		fn(m, xc)
	}
	m.restack()
}

// gapFor returns the effective inter-client gap, 0 when gaps are off.
func (m *monitor) gapFor() int {
	if !m.gapsOn {
		return 0
	}
	return int(m.gapPx)
}

// layoutColumn stacks cs vertically within area, inserting gap between
// adjacent rows (area's own edges are assumed already inset for any
// outer gap the caller wants) and distributing leftover height evenly
// among the rows still to be placed, mirroring original_source's
// running "remaining-height / remaining-count" division.
func layoutColumn(cs []*client, area rect, gap int, xc *xConn) {
	n := len(cs)
	if n == 0 {
		return
	}
	avail := area.h - gap*(n-1)
	y := area.y
	for i, c := range cs {
		rows := n - i
		h := avail / rows
		avail -= h
		bw := c.fullBorderWidth()
		x, yy, w, hh := c.applySizeHints(area.x, y, area.w-2*bw, h-2*bw, false)
		c.resizeClient(xc, x, yy, w, hh)
		y += h + gap
	}
}

// tileLayout is the master/stack layout: nmaster clients fill a left
// column sized by mfact, remaining clients split the right column's
// height evenly, mirroring original_source/src/monitor.c's tile(). The
// work area is framed by gap on all four sides, plus one gap between
// the master and stack columns and between rows within each column.
func tileLayout(m *monitor, xc *xConn) {
	cs := m.visibleTiled()
	n := len(cs)
	if n == 0 {
		return
	}
	gap := m.gapFor()
	wa := m.winArea

	innerX, innerY := wa.x+gap, wa.y+gap
	innerW, innerH := wa.w-2*gap, wa.h-2*gap

	nmaster := m.nmaster
	if nmaster > n {
		nmaster = n
	}
	hasStack := n > nmaster && nmaster > 0

	mw := innerW
	if hasStack {
		mw = int(float64(innerW) * m.mfact)
	}
	if nmaster == 0 {
		mw = 0
	}

	if nmaster > 0 {
		layoutColumn(cs[:nmaster], rect{innerX, innerY, mw, innerH}, gap, xc)
	}
	if hasStack {
		sx, sw := innerX+mw+gap, innerW-mw-gap
		layoutColumn(cs[nmaster:], rect{sx, innerY, sw, innerH}, gap, xc)
	} else if nmaster == 0 {
		layoutColumn(cs, rect{innerX, innerY, innerW, innerH}, gap, xc)
	}
}

// monocleLayout maximizes every tiled client to the work area, stacked
// in z-order, mirroring original_source's monocle().
func monocleLayout(m *monitor, xc *xConn) {
	cs := m.visibleTiled()
	wa := m.winArea
	for _, c := range cs {
		bw := c.fullBorderWidth()
		x, y, w, h := c.applySizeHints(wa.x, wa.y, wa.w-2*bw, wa.h-2*bw, false)
		c.resizeClient(xc, x, y, w, h)
	}
}

// restack moves the selected client to the front of the monitor's stack
// list, the stack-list half of original_source's restack(). It is pure
// list reordering: no window is raised, here or by its callers.
func (m *monitor) restack() {
	if m.sel == nil {
		return
	}
	if m.sel.stackNode != nil {
		m.stack.moveToFront(m.sel.stackNode)
	}
}

// attach inserts c at the front of its monitor's client list and stack,
// mirroring original_source's attach()/attachstack() pair used on manage.
func (m *monitor) attach(c *client) {
	c.mon = m
	c.clistNode = m.clients.pushFront(c)
	c.stackNode = m.stack.pushFront(c)
}

// discoverMonitors (re)builds the mons list from the RandR screen
// resources, preserving existing monitor state (tags, pertag, clients)
// for outputs that survive and migrating orphaned clients to
// recttomon's pick, mirroring original_source's updategeom().
func discoverMonitors(xc *xConn) error {
	if err := randr.Init(xc.conn); err != nil {
		return adoptSingleMonitor(xc)
	}
	res, err := randr.GetScreenResourcesCurrent(xc.conn, xc.root).Reply()
	if err != nil {
		return adoptSingleMonitor(xc)
	}

	var found []rect
	for _, crtc := range res.Crtcs {
		info, err := randr.GetCrtcInfo(xc.conn, crtc, res.ConfigTimestamp).Reply()
		if err != nil || info.Width == 0 || info.Height == 0 {
			continue
		}
		found = append(found, rect{int(info.X), int(info.Y), int(info.Width), int(info.Height)})
	}
	if len(found) == 0 {
		return adoptSingleMonitor(xc)
	}
	reconcileMonitors(found, xc)
	return nil
}

func adoptSingleMonitor(xc *xConn) error {
	reconcileMonitors([]rect{{0, 0, int(xc.screen.WidthInPixels), int(xc.screen.HeightInPixels)}}, xc)
	return nil
}

// reconcileMonitors matches discovered geometries to existing monitors
// by index, creating new ones, dropping ones that vanished (migrating
// their clients to recttomon's best pick first), and updating bounds on
// ones that persist but resized.
func reconcileMonitors(bounds []rect, xc *xConn) {
	old := make([]*monitor, 0, monitorCount())
	for m := mons; m != nil; m = m.next {
		old = append(old, m)
	}

	var head, tail *monitor
	for i, b := range bounds {
		var m *monitor
		if i < len(old) {
			m = old[i]
			m.bounds = b
			m.updateBarGeometry()
		} else {
			m = newMonitor(i, b)
		}
		if head == nil {
			head = m
		} else {
			tail.next = m
		}
		tail = m
		m.next = nil
	}
	mons = head
	if selmon == nil {
		selmon = mons
	}

	for i := len(bounds); i < len(old); i++ {
		orphan := old[i]
		var migrating []*client
		orphan.clients.each(func(c *client) bool {
			migrating = append(migrating, c)
			return true
		})
		for _, c := range migrating {
			dest := recttomon(rect{c.x, c.y, c.w, c.h})
			if dest == nil {
				dest = mons
			}
			orphan.detach(c)
			if dest != nil {
				dest.attach(c)
			}
		}
	}

	for m := mons; m != nil; m = m.next {
		m.arrangemon(xc)
	}
	if selmon != nil && monitorByIndex(selmon.num) == nil {
		selmon = mons
	}
}

// detach removes c from its monitor's client and stack lists, used on
// unmanage and on cross-monitor client moves.
func (m *monitor) detach(c *client) {
	if c.clistNode != nil {
		m.clients.detach(c.clistNode)
		c.clistNode = nil
	}
	if c.stackNode != nil {
		m.stack.detach(c.stackNode)
		c.stackNode = nil
	}
	if m.sel == c {
		m.sel = nil
	}
}
