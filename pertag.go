// This file is part of the program "AndrathWM".
// Please see the LICENSE file for copyright information.

package main

// pertag holds the per-monitor-per-tag remembered layout/master-ratio/
// bar state, grounded on original_source/src/pertag.h's addressing
// convention: parallel arrays of length len(tags)+1, where
// slot 0 is the "all tags" view (mask ~0) and slots 1..len(tags) are the
// individual tags. "Which tag am I on" is always "index into these
// arrays" — curTag below is that index, derived from the monitor's
// current tagset the same way the C source derives it from a for loop
// over the bits.
type pertag struct {
	curTag  uint   // current slot, 0 = all-tags view
	prevTag uint   // slot selected before the last tag switch

	nmasters []int      // len(tags)+1
	mfacts   []float64  // len(tags)+1
	sellts   []int      // which of lt[0]/lt[1] is active, per slot
	ltIdxs   [2][]int   // layout index for lt[0] and lt[1], per slot
	showbars []bool     // per-slot bar visibility
	gapsOn   []bool     // per-slot gap mode
	gapPx    []uint     // per-slot gap pixel count
}

func newPertag() *pertag {
	n := len(tags) + 1
	pt := &pertag{
		curTag:   0,
		nmasters: make([]int, n),
		mfacts:   make([]float64, n),
		sellts:   make([]int, n),
		showbars: make([]bool, n),
		gapsOn:   make([]bool, n),
		gapPx:    make([]uint, n),
	}
	pt.ltIdxs[0] = make([]int, n)
	pt.ltIdxs[1] = make([]int, n)
	for i := range pt.nmasters {
		pt.nmasters[i] = nmaster
		pt.mfacts[i] = mfact
		pt.showbars[i] = showbar
		pt.gapsOn[i] = true
		pt.gapPx[i] = 5
		pt.ltIdxs[0][i] = 0
		pt.ltIdxs[1][i] = 1 % len(layouts)
	}
	return pt
}

// slotForTagset returns the pertag array index for the given tagset
// bitmask: 0 ("all tags", mask == tagmask) or the single bit index when
// the mask selects exactly one tag. Multi-tag (but not all-tags)
// selections keep whatever slot was previously active, matching the C
// source's behavior of only updating pertag on single-tag view() calls.
func slotForTagset(mask uint32) (uint, bool) {
	if mask == tagmask {
		return 0, true
	}
	for i := 0; i < len(tags); i++ {
		if mask == 1<<uint(i) {
			return uint(i + 1), true
		}
	}
	return 0, false
}
