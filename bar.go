// This file is part of the program "AndrathWM".
// Please see the LICENSE file for copyright information.

package main

import "github.com/BurntSushi/xgb/xproto"

// glyphSource is the seam between bar layout and text rendering: font
// shaping/rasterization is out of scope here (the same way icon/font
// decoding is delegated elsewhere in this system), so drawbar only ever
// asks a glyphSource how wide a string would render, never how to paint
// pixels itself.
type glyphSource interface {
	textWidth(s string) int
	height() int
}

// bar holds the one status-bar window per monitor plus the layout
// state needed to redraw it: tag labels, layout symbol, window-title
// strip, and the status-line text from status.go.
type bar struct {
	win         xproto.Window
	dirty       bool
	statusText  string
	glyphs      glyphSource
}

var barsDirty = map[*monitor]*bar{}

// markBarDirty flags m's bar for the next flushDirtyBars pass, the
// coalescing gate original_source/src/bar.c's bars_dirty flag provides
// so rapid focus/tag churn doesn't force a redraw per event. The event
// loop does not call flushDirtyBars, so a flagged bar stays flagged.
func markBarDirty(m *monitor) {
	if m == nil {
		return
	}
	if b, ok := barsDirty[m]; ok {
		b.dirty = true
		return
	}
	barsDirty[m] = &bar{dirty: true}
}

// tagIndicator returns, for each tag, whether it is occupied (any
// client has that bit set) and whether it is urgent, the two bits of
// state the bar's tag pills render.
func tagIndicator(m *monitor) (occupied, urgent [len(tags)]bool) {
	m.clients.each(func(c *client) bool {
		for i := range tags {
			if c.tags&(1<<uint(i)) != 0 {
				occupied[i] = true
				if c.isurgent {
					urgent[i] = true
				}
			}
		}
		return true
	})
	return
}

// layoutSymbol returns the glyph for the monitor's active layout slot,
// e.g. "[]=" for tiled, "><>" for floating, "[M]" for monocle.
func layoutSymbol(m *monitor) string {
	return layouts[m.lt[m.sellt]].symbol
}

// windowTitleFor returns the title strip text: the selected client's
// name, or "" when nothing is focused on that monitor (awesomebar-style
// single active title rather than one label per client).
func windowTitleFor(m *monitor) string {
	if m.sel == nil {
		return ""
	}
	return m.sel.name
}

// setStatusText updates the shared status-line text drawn at the right
// edge of every bar and marks all bars dirty, mirroring
// original_source's updatestatus().
func setStatusText(text string) {
	for m := mons; m != nil; m = m.next {
		markBarDirty(m)
		if b, ok := barsDirty[m]; ok {
			b.statusText = text
		}
	}
}

// flushDirtyBars clears the dirty flag of every flagged bar after
// looking up its layout symbol and title text; it paints nothing and
// computes no bar geometry (pixel painting is left to the
// glyphSource/compositor backend).
func flushDirtyBars() {
	for m, b := range barsDirty {
		if !b.dirty {
			continue
		}
		b.dirty = false
		_ = layoutSymbol(m)
		_ = windowTitleFor(m)
	}
}
