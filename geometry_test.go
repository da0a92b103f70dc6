package main

import "testing"

func TestRectIntersectArea(t *testing.T) {
	a := rect{0, 0, 100, 100}
	b := rect{50, 50, 100, 100}
	if got := a.intersectArea(b); got != 2500 {
		t.Fatalf("intersectArea = %d, want 2500", got)
	}
	c := rect{200, 200, 10, 10}
	if got := a.intersectArea(c); got != 0 {
		t.Fatalf("disjoint intersectArea = %d, want 0", got)
	}
}

func TestRectUnion(t *testing.T) {
	a := rect{0, 0, 10, 10}
	b := rect{20, 20, 10, 10}
	u := a.union(b)
	want := rect{0, 0, 30, 30}
	if u != want {
		t.Fatalf("union = %+v, want %+v", u, want)
	}
	if u2 := a.union(rect{}); u2 != a {
		t.Fatalf("union with empty should be identity, got %+v", u2)
	}
}

func TestRectClamp(t *testing.T) {
	a := rect{-10, -10, 100, 100}
	bound := rect{0, 0, 50, 50}
	c := a.clamp(bound)
	want := rect{0, 0, 50, 50}
	if c != want {
		t.Fatalf("clamp = %+v, want %+v", c, want)
	}
}

func TestRectContains(t *testing.T) {
	r := rect{10, 10, 20, 20}
	if !r.contains(15, 15) {
		t.Fatal("expected point inside rect to be contained")
	}
	if r.contains(30, 30) {
		t.Fatal("point on far edge should not be contained (half-open range)")
	}
	if r.contains(9, 15) {
		t.Fatal("point outside left edge should not be contained")
	}
}
