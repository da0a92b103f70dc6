package main

import "testing"

func TestListPushFrontOrder(t *testing.T) {
	l := &list[int]{}
	l.pushFront(1)
	l.pushFront(2)
	l.pushFront(3)

	var got []int
	l.each(func(v int) bool {
		got = append(got, v)
		return true
	})
	want := []int{3, 2, 1}
	if len(got) != len(want) {
		t.Fatalf("len = %d, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got[%d] = %d, want %d", i, got[i], want[i])
		}
	}
}

func TestListDetach(t *testing.T) {
	l := &list[string]{}
	a := l.pushFront("a")
	b := l.pushFront("b")
	c := l.pushFront("c")

	l.detach(b)
	if l.len() != 2 {
		t.Fatalf("len = %d, want 2", l.len())
	}
	var got []string
	l.each(func(v string) bool { got = append(got, v); return true })
	if got[0] != "c" || got[1] != "a" {
		t.Fatalf("order after detach = %v, want [c a]", got)
	}

	// Detaching the head.
	l.detach(c)
	if l.len() != 1 {
		t.Fatalf("len after head detach = %d, want 1", l.len())
	}

	// Detaching something already removed is a no-op.
	l.detach(b)
	if l.len() != 1 {
		t.Fatalf("len after redundant detach = %d, want 1", l.len())
	}
}

func TestListMoveToFront(t *testing.T) {
	l := &list[int]{}
	n1 := l.pushFront(1)
	l.pushFront(2)
	l.pushFront(3)

	l.moveToFront(n1)
	var got []int
	l.each(func(v int) bool { got = append(got, v); return true })
	want := []int{1, 3, 2}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("order = %v, want %v", got, want)
		}
	}
}

func TestListEachStopsEarly(t *testing.T) {
	l := &list[int]{}
	l.pushFront(1)
	l.pushFront(2)
	l.pushFront(3)

	var visited int
	l.each(func(v int) bool {
		visited++
		return v != 2
	})
	if visited != 2 {
		t.Fatalf("visited = %d, want 2 (stop once fn returns false)", visited)
	}
}
