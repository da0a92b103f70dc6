package main

import "testing"

func TestSlotForTagset(t *testing.T) {
	if slot, ok := slotForTagset(tagmask); !ok || slot != 0 {
		t.Fatalf("all-tags mask => slot %d, ok %v; want 0, true", slot, ok)
	}
	if slot, ok := slotForTagset(1 << 2); !ok || slot != 3 {
		t.Fatalf("single tag bit 2 => slot %d, ok %v; want 3, true", slot, ok)
	}
	if _, ok := slotForTagset((1 << 0) | (1 << 1)); ok {
		t.Fatal("multi-tag (but not all) selection should not resolve to a slot")
	}
}

func TestNewPertagDefaults(t *testing.T) {
	pt := newPertag()
	if len(pt.nmasters) != len(tags)+1 {
		t.Fatalf("nmasters length = %d, want %d", len(pt.nmasters), len(tags)+1)
	}
	for i := range pt.nmasters {
		if pt.nmasters[i] != nmaster {
			t.Fatalf("nmasters[%d] = %d, want default %d", i, pt.nmasters[i], nmaster)
		}
		if pt.mfacts[i] != mfact {
			t.Fatalf("mfacts[%d] = %v, want default %v", i, pt.mfacts[i], mfact)
		}
		if !pt.gapsOn[i] {
			t.Fatalf("gapsOn[%d] = false, want true by default", i)
		}
	}
}
