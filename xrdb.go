// This file is part of the program "AndrathWM".
// Please see the LICENSE file for copyright information.

package main

import (
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/BurntSushi/xgb/xproto"
)

// colorResolver is given the parsed Xresources key/value pairs and
// applies whichever of them it understands (border colors, bar scheme)
// without xrdb.go itself needing to know the shape of colorHex.
type colorResolver interface {
	applyXrdb(values map[string]string)
}

// watchXrdbReload installs a SIGUSR1 handler that re-reads the root
// window's RESOURCE_MANAGER property and re-applies it through
// resolver, mirroring original_source's xrdb.c SIGUSR1 hook used by
// `xrdb -merge ~/.Xresources; kill -USR1 $(pidof awm)` color-reload
// workflows.
func watchXrdbReload(xc *xConn, resolver colorResolver) {
	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGUSR1)
	go func() {
		for range sigc {
			values := readXResources(xc)
			resolver.applyXrdb(values)
		}
	}()
}

func readXResources(xc *xConn) map[string]string {
	reply, err := xproto.GetProperty(xc.conn, false, xc.root, xproto.AtomResourceManager,
		xproto.AtomString, 0, 1<<20).Reply()
	if err != nil || reply == nil {
		return nil
	}
	return parseXResources(string(reply.Value))
}

// parseXResources parses the flat "name: value" line format RESOURCE_MANAGER
// carries — no wildcard/class matching, since this WM only ever looks up
// a handful of fully-qualified keys (e.g. "awm.color0").
func parseXResources(raw string) map[string]string {
	out := map[string]string{}
	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "!") {
			continue
		}
		idx := strings.Index(line, ":")
		if idx < 0 {
			continue
		}
		key := strings.TrimSpace(line[:idx])
		val := strings.TrimSpace(line[idx+1:])
		out[key] = val
	}
	return out
}

// applyXrdb implements colorResolver for the global colorHex table,
// looking up the "awm.normfg"/"awm.normbg"/"awm.selfg"/"awm.selbg" keys
// when present and leaving config.go's compiled-in defaults untouched
// otherwise.
type defaultColorResolver struct{}

func (defaultColorResolver) applyXrdb(values map[string]string) {
	if v, ok := values["awm.normfg"]; ok {
		c := colorHex[schemeNorm]
		c.fg = v
		colorHex[schemeNorm] = c
	}
	if v, ok := values["awm.normbg"]; ok {
		c := colorHex[schemeNorm]
		c.bg = v
		colorHex[schemeNorm] = c
	}
	if v, ok := values["awm.selfg"]; ok {
		c := colorHex[schemeSel]
		c.fg = v
		colorHex[schemeSel] = c
	}
	if v, ok := values["awm.selbg"]; ok {
		c := colorHex[schemeSel]
		c.bg = v
		colorHex[schemeSel] = c
	}
	markAllBarsDirty()
}
