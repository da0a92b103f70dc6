package main

import "testing"

func TestApplyRulesMatchesByTitleAndSetsFloating(t *testing.T) {
	saved := rules
	rules = []rule{
		{title: "notepad", floating: true, centered: true, scratchKey: 's', monitor: -1},
	}
	defer func() { rules = saved }()

	c := &client{}
	m := newMonitor(0, rect{0, 0, 800, 600})
	c.mon = m
	c.applyRules("", "", "notepad")

	if !c.isfloating {
		t.Fatal("expected matching rule to float the client")
	}
	if !c.iscentered {
		t.Fatal("expected matching rule to center the client")
	}
	if c.scratchKey != 's' {
		t.Fatalf("scratchKey = %q, want 's'", c.scratchKey)
	}
	if c.tags != 0 {
		t.Fatalf("scratchpad clients must start with tags=0 (hidden), got %d", c.tags)
	}
}

func TestApplyRulesFallsBackToMonitorView(t *testing.T) {
	saved := rules
	rules = nil
	defer func() { rules = saved }()

	m := newMonitor(0, rect{0, 0, 800, 600})
	m.tagset[m.seltags] = 1 << 3

	c := &client{mon: m}
	c.applyRules("Xterm", "xterm", "shell")

	if c.tags != 1<<3 {
		t.Fatalf("tags = %d, want monitor's current view %d", c.tags, 1<<3)
	}
}

func TestToggleFloatingNoOpForFixedSize(t *testing.T) {
	c := &client{isfixed: true, isfloating: false}
	c.toggleFloating(nil)
	if c.isfloating {
		t.Fatal("toggleFloating must be a no-op for fixed-size clients")
	}
}

func TestToggleFloatingFlips(t *testing.T) {
	c := &client{x: 1, y: 2, w: 3, h: 4}
	c.toggleFloating(nil)
	if !c.isfloating {
		t.Fatal("expected isfloating to flip to true")
	}
	c.toggleFloating(nil)
	if c.isfloating {
		t.Fatal("expected isfloating to flip back to false")
	}
}

func TestSetFullscreenRoundTrip(t *testing.T) {
	m := newMonitor(0, rect{0, 0, 1920, 1080})
	c := &client{x: 10, y: 20, w: 300, h: 200, bw: borderpx, mon: m}

	c.setFullscreen(true, nil, nil)
	if !c.isfullscreen || c.bw != 0 {
		t.Fatalf("after entering fullscreen: isfullscreen=%v bw=%d, want true, 0", c.isfullscreen, c.bw)
	}
	if c.w != m.bounds.w || c.h != m.bounds.h {
		t.Fatalf("fullscreen geometry = %dx%d, want monitor bounds %dx%d", c.w, c.h, m.bounds.w, m.bounds.h)
	}

	c.setFullscreen(false, nil, nil)
	if c.isfullscreen {
		t.Fatal("expected isfullscreen=false after exit")
	}
	if c.x != 10 || c.y != 20 || c.w != 300 || c.h != 200 || c.bw != borderpx {
		t.Fatalf("geometry not restored: %+v", c)
	}
}

func TestIsVisible(t *testing.T) {
	m := newMonitor(0, rect{0, 0, 100, 100})
	m.tagset[m.seltags] = 1 << 1

	onTag := &client{mon: m, tags: 1 << 1}
	offTag := &client{mon: m, tags: 1 << 2}

	if !onTag.isVisible() {
		t.Fatal("client sharing the monitor's current tag bit should be visible")
	}
	if offTag.isVisible() {
		t.Fatal("client with no overlapping tag bit should not be visible")
	}
}
