// This file is part of the program "AndrathWM".
// Please see the LICENSE file for copyright information.

package main

import "github.com/BurntSushi/xgb/xproto"

// menuItem is one entry in a popup menu: a label plus either an action
// to run on selection or a submenu to cascade into, mirroring the two
// leaf/branch node kinds DBusMenu's GetLayout() returns.
type menuItem struct {
	label    string
	disabled bool
	separator bool
	action   func()
	submenu  []menuItem
}

// menu is one override-redirect popup window: the launcher's own menu,
// a DBusMenu-backed tray context menu, or a scratchpad quick-switcher,
// all sharing the same window lifecycle and navigation rules.
type menu struct {
	win      xproto.Window
	items    []menuItem
	selected int
	mon      *monitor
	parent   *menu // non-nil for a cascaded submenu
	child    *menu
}

// openMenu creates the override-redirect window for items positioned
// at (x, y), clamped so the whole menu stays on the owning monitor —
// mirroring original_source's menu placement rule of "never straddle a
// monitor edge".
func openMenu(xc *xConn, items []menuItem, x, y int, mon *monitor) (*menu, error) {
	if mon == nil {
		mon = recttomon(rect{x, y, 1, 1})
	}
	w, h := menuDimensions(items)
	x, y = clampMenuOrigin(mon, x, y, w, h)

	win, err := xproto.NewWindowId(xc.conn)
	if err != nil {
		return nil, err
	}
	const overrideRedirect = 1
	err = xproto.CreateWindowChecked(xc.conn, xc.screen.RootDepth, win, xc.root,
		int16(x), int16(y), uint16(w), uint16(h), 1, xproto.WindowClassInputOutput,
		xc.screen.RootVisual, xproto.CwOverrideRedirect|xproto.CwEventMask,
		[]uint32{overrideRedirect,
			uint32(xproto.EventMaskExposure | xproto.EventMaskKeyPress |
				xproto.EventMaskButtonPress | xproto.EventMaskPointerMotion | xproto.EventMaskLeaveWindow)}).Check()
	if err != nil {
		return nil, err
	}
	xproto.MapWindowChecked(xc.conn, win).Check()

	return &menu{win: win, items: items, mon: mon, selected: firstSelectable(items)}, nil
}

func firstSelectable(items []menuItem) int {
	for i, it := range items {
		if !it.separator && !it.disabled {
			return i
		}
	}
	return -1
}

const (
	menuItemHeight = 20
	menuMinWidth   = 120
	menuPadding    = 8
)

func menuDimensions(items []menuItem) (w, h int) {
	w = menuMinWidth
	for range items {
		h += menuItemHeight
	}
	return w, h
}

func clampMenuOrigin(mon *monitor, x, y, w, h int) (int, int) {
	b := mon.bounds
	if x+w > b.x+b.w {
		x = b.x + b.w - w
	}
	if y+h > b.y+b.h {
		y = b.y + b.h - h
	}
	if x < b.x {
		x = b.x
	}
	if y < b.y {
		y = b.y
	}
	return x, y
}

// moveSelection moves the highlighted item by dir (+1/-1), skipping
// separators and disabled entries, wrapping at the ends.
func (m *menu) moveSelection(dir int) {
	n := len(m.items)
	if n == 0 {
		return
	}
	i := m.selected
	for step := 0; step < n; step++ {
		i = ((i+dir)%n + n) % n
		if !m.items[i].separator && !m.items[i].disabled {
			m.selected = i
			return
		}
	}
}

// activate runs the currently selected item's action, or opens its
// submenu as a cascaded child menu positioned to the right of this one.
func (m *menu) activate(xc *xConn) *menu {
	if m.selected < 0 || m.selected >= len(m.items) {
		return nil
	}
	it := m.items[m.selected]
	if it.disabled || it.separator {
		return nil
	}
	if it.submenu != nil {
		x := m.mon.bounds.x + menuMinWidth
		y := m.selected * menuItemHeight
		if g, err := xproto.GetGeometry(xc.conn, xproto.Drawable(m.win)).Reply(); err == nil {
			x = int(g.X) + int(g.Width)
			y += int(g.Y)
		}
		child, err := openMenu(xc, it.submenu, x, y, m.mon)
		if err != nil {
			return nil
		}
		child.parent = m
		m.child = child
		return child
	}
	if it.action != nil {
		it.action()
	}
	return nil
}

// dismiss tears down this menu and, transitively, any open submenu
// cascade below it — clicking outside any menu in the chain, or Escape,
// closes the whole chain rather than just the innermost one.
func (m *menu) dismiss(xc *xConn) {
	cur := m
	for cur.child != nil {
		cur = cur.child
	}
	for cur != nil {
		xproto.UnmapWindowChecked(xc.conn, cur.win).Check()
		xproto.DestroyWindowChecked(xc.conn, cur.win).Check()
		cur = cur.parent
	}
}
