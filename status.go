// This file is part of the program "AndrathWM".
// Please see the LICENSE file for copyright information.

package main

import (
	"time"

	"github.com/BurntSushi/xgb/xproto"
)

// statusSource reads the root window's WM_NAME, the long-standing
// dwm-family convention for feeding external status text into the bar
// (set via `xsetroot -name` or an equivalent script), refreshed on a
// ticker rather than via PropertyNotify since most status scripts poll
// rather than push.
type statusSource struct {
	xc     *xConn
	ticker *time.Ticker
	stop   chan struct{}
}

func startStatusSource(xc *xConn) *statusSource {
	s := &statusSource{xc: xc, ticker: time.NewTicker(statusInterval), stop: make(chan struct{})}
	go s.loop()
	return s
}

func (s *statusSource) loop() {
	for {
		select {
		case <-s.ticker.C:
			setStatusText(readRootName(s.xc))
		case <-s.stop:
			s.ticker.Stop()
			return
		}
	}
}

func (s *statusSource) close() {
	close(s.stop)
}

func readRootName(xc *xConn) string {
	reply, err := xproto.GetProperty(xc.conn, false, xc.root, xproto.AtomWmName,
		xproto.AtomString, 0, 256).Reply()
	if err != nil || reply == nil || reply.ValueLen == 0 {
		return ""
	}
	return string(reply.Value)
}
