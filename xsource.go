// This file is part of the program "AndrathWM".
// Please see the LICENSE file for copyright information.

package main

import (
	"github.com/BurntSushi/xgb"
)

// xsource is the idiomatic-Go equivalent of original_source/src/xsource.c's
// poll-fd registration layer. The C source registers the X socket and the
// D-Bus fd with one poll(2) call; BurntSushi/xgb instead owns a private
// read goroutine and hands events through xgb.Conn.WaitForEvent(), so the
// Go translation multiplexes via channel select instead of a raw fd set.
// The ordering guarantee this WM relies on (events drained in arrival
// order within one cycle, D-Bus processed after, idle tasks last) is
// reproduced by always draining the X channel fully with a non-blocking
// select-default loop before touching the D-Bus or idle channels.
type xsource struct {
	conn   *xgb.Conn
	events chan xgb.Event
	errs   chan xgb.Error
	quit   chan struct{}
}

func newXSource(conn *xgb.Conn) *xsource {
	xs := &xsource{
		conn:   conn,
		events: make(chan xgb.Event, 64),
		errs:   make(chan xgb.Error, 16),
		quit:   make(chan struct{}),
	}
	go xs.pump()
	return xs
}

// pump is the one goroutine ever allowed to call WaitForEvent; every
// other package only ever reads from xs.events/xs.errs. This preserves
// the "X connection owned by exactly one thread" invariant even though
// Go's xgb binding is itself internally threaded.
func (xs *xsource) pump() {
	for {
		ev, err := xs.conn.WaitForEvent()
		if ev == nil && err == nil {
			// connection closed: HUP/ERR equivalent, a fatal runtime condition
			close(xs.events)
			return
		}
		if err != nil {
			select {
			case xs.errs <- err:
			case <-xs.quit:
				return
			}
			continue
		}
		select {
		case xs.events <- ev:
		case <-xs.quit:
			return
		}
	}
}

func (xs *xsource) stop() {
	close(xs.quit)
}

// drainPending pulls every event currently queued without blocking,
// dispatching each via fn, matching "drains all pending events with a
// non-blocking read. Returns false if the channel was closed (X server
// died).
func (xs *xsource) drainPending(fn func(xgb.Event)) bool {
	for {
		select {
		case ev, ok := <-xs.events:
			if !ok {
				return false
			}
			fn(ev)
		default:
			return true
		}
	}
}

func (xs *xsource) drainErrors(fn func(xgb.Error)) {
	for {
		select {
		case e := <-xs.errs:
			fn(e)
		default:
			return
		}
	}
}
