// This file is part of the program "AndrathWM".
// Please see the LICENSE file for copyright information.

package main

// findScratch looks up the first managed client tagged with the given
// scratch key, regardless of which monitor or tag it currently lives
// on (a hidden scratchpad client sits at tags==0, visible on none).
func findScratch(key rune) *client {
	for _, c := range allClients {
		if c.scratchKey == key {
			return c
		}
	}
	return nil
}

// toggleScratch implements original_source's togglescratch(): if no
// client carries this scratch key yet, spawn its configured command
// (the client that eventually maps will self-identify via config.go's
// rule table). If one exists and is currently visible, hide it by
// clearing its tags. If one exists but is hidden, bring it to selmon
// (re-centering and reattaching its stack membership if it was parked
// on a different monitor), put it on the current tag view, and focus
// it.
func toggleScratch(xc *xConn, key rune) {
	if selmon == nil {
		return
	}
	c := findScratch(key)
	if c == nil {
		if err := spawnScratchpad(key); err != nil {
			warnf("scratchpad %q: %v", key, err)
		}
		return
	}

	if c.isVisible() {
		c.tags = 0
		selmon.arrangemon(xc)
		if selmon.sel == c {
			setFocus(xc, selmon, focusStack(selmon, +1, false))
		}
		return
	}

	if c.mon != selmon {
		if c.mon != nil {
			c.mon.detach(c)
		}
		selmon.attach(c)
		wa := selmon.wArea()
		c.x = wa.x + (wa.w-c.w)/2
		c.y = wa.y + (wa.h-c.h)/2
	}
	c.tags = selmon.tagset[selmon.seltags]
	selmon.arrangemon(xc)
	setFocus(xc, selmon, c)
}
