package main

import "testing"

func TestMoveSelectionSkipsSeparatorsAndDisabled(t *testing.T) {
	m := &menu{
		items: []menuItem{
			{label: "a"},
			{separator: true},
			{label: "b", disabled: true},
			{label: "c"},
		},
		selected: 0,
	}
	m.moveSelection(1)
	if m.selected != 3 {
		t.Fatalf("selected = %d, want 3 (skipping separator and disabled item)", m.selected)
	}
	m.moveSelection(1)
	if m.selected != 0 {
		t.Fatalf("selected = %d, want wrap to 0", m.selected)
	}
}

func TestClampMenuOriginStaysOnMonitor(t *testing.T) {
	m := &monitor{bounds: rect{0, 0, 200, 200}}
	x, y := clampMenuOrigin(m, 190, 190, 100, 50)
	if x+100 > 200 || y+50 > 200 {
		t.Fatalf("menu at (%d,%d) size 100x50 escapes monitor bounds %+v", x, y, m.bounds)
	}
	if x < 0 || y < 0 {
		t.Fatalf("clamp produced negative origin (%d,%d)", x, y)
	}
}

func TestFirstSelectableSkipsSeparators(t *testing.T) {
	items := []menuItem{{separator: true}, {label: "ok"}}
	if got := firstSelectable(items); got != 1 {
		t.Fatalf("firstSelectable = %d, want 1", got)
	}
}
