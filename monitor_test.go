package main

import "testing"

func newTestMonitor() *monitor {
	m := newMonitor(0, rect{0, 0, 1000, 800})
	m.showbar = false
	m.updateBarGeometry()
	return m
}

func attachTestClient(m *monitor, tag uint32) *client {
	c := &client{tags: tag, bw: borderpx, opacity: 1}
	m.attach(c)
	return c
}

func TestTileLayoutSingleClientFillsWorkArea(t *testing.T) {
	m := newTestMonitor()
	c := attachTestClient(m, 1)
	m.tagset[m.seltags] = 1

	tileLayout(m, nil)

	wa := m.wArea()
	gap := m.gapFor()
	if c.w != wa.w-2*c.bw-2*gap {
		t.Fatalf("single tiled client width = %d, want %d", c.w, wa.w-2*c.bw-2*gap)
	}
	if c.h != wa.h-2*c.bw-2*gap {
		t.Fatalf("single tiled client height = %d, want %d", c.h, wa.h-2*c.bw-2*gap)
	}
}

func TestTileLayoutSplitsMasterAndStack(t *testing.T) {
	m := newTestMonitor()
	m.tagset[m.seltags] = 1
	m.nmaster = 1
	m.mfact = 0.5

	// attach pushes each client to the head of the client list and the
	// master column takes the head, so the client attached last is master.
	stack2 := attachTestClient(m, 1)
	stack1 := attachTestClient(m, 1)
	master := attachTestClient(m, 1)
	_ = stack2

	tileLayout(m, nil)

	if master.x >= stack1.x {
		t.Fatalf("master client (x=%d) should sit left of stack clients (x=%d)", master.x, stack1.x)
	}
	wa := m.wArea()
	if master.w >= wa.w {
		t.Fatalf("master width %d should be less than full work-area width %d when stack is non-empty", master.w, wa.w)
	}
}

func TestMonocleLayoutMaximizesAllClients(t *testing.T) {
	m := newTestMonitor()
	m.tagset[m.seltags] = 1
	c1 := attachTestClient(m, 1)
	c2 := attachTestClient(m, 1)

	monocleLayout(m, nil)

	wa := m.wArea()
	for _, c := range []*client{c1, c2} {
		if c.w != wa.w-2*c.bw || c.h != wa.h-2*c.bw {
			t.Fatalf("monocle client geometry = %dx%d, want %dx%d", c.w, c.h, wa.w-2*c.bw, wa.h-2*c.bw)
		}
	}
}

func TestVisibleTiledExcludesFloatingAndHidden(t *testing.T) {
	m := newTestMonitor()
	m.tagset[m.seltags] = 1
	tiled := attachTestClient(m, 1)
	floating := attachTestClient(m, 1)
	floating.isfloating = true
	hidden := attachTestClient(m, 1)
	hidden.ishidden = true
	offTag := attachTestClient(m, 2)

	got := m.visibleTiled()
	if len(got) != 1 || got[0] != tiled {
		t.Fatalf("visibleTiled = %v, want only the single tiled on-tag client", got)
	}
	_ = offTag
}

func TestRecttomonPicksLargestOverlap(t *testing.T) {
	save := mons
	defer func() { mons = save }()

	m0 := newMonitor(0, rect{0, 0, 1000, 1000})
	m1 := newMonitor(1, rect{1000, 0, 1000, 1000})
	m0.next = m1
	mons = m0
	selmon = m0

	got := recttomon(rect{1100, 100, 200, 200})
	if got != m1 {
		t.Fatalf("recttomon picked monitor %d, want monitor fully overlapped by rect (monitor 1)", got.num)
	}
}

func TestApplyTagsetSwitchesPertagSlot(t *testing.T) {
	m := newTestMonitor()
	m.tagset = [2]uint32{1, 1}
	m.nmaster = 3

	m.applyTagset(1 << 1)

	if slot, ok := slotForTagset(1 << 1); !ok || m.pertag.curTag != slot {
		t.Fatalf("pertag.curTag = %d, want slot for tag 1", m.pertag.curTag)
	}
	if m.nmaster != nmaster {
		t.Fatalf("nmaster = %d, want pertag slot default %d after switching tags", m.nmaster, nmaster)
	}
}
