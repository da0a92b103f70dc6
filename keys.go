// This file is part of the program "AndrathWM".
// Please see the LICENSE file for copyright information.

package main

import (
	"github.com/BurntSushi/xgb/xproto"
)

// keysym values below are the handful of core X11 keysyms (X11/keysymdef.h)
// this binding table names; original_source/config.def.h drives its keys[]
// table off the same constants via xkbcommon-keysyms.h.
const (
	xkReturn = 0xff0d
	xkTab    = 0xff09
	xkSpace  = 0x0020
	xkGrave  = 0x0060
	xkComma  = 0x002c
	xkPeriod = 0x002e
	xkMinus  = 0x002d
	xkEqual  = 0x003d

	xk0 = 0x0030
	xk1 = 0x0031
	xk2 = 0x0032
	xk3 = 0x0033
	xk4 = 0x0034
	xk5 = 0x0035
	xk6 = 0x0036
	xk7 = 0x0037
	xk8 = 0x0038
	xk9 = 0x0039

	xkB = 0x0062
	xkD = 0x0064
	xkF = 0x0066
	xkH = 0x0068
	xkI = 0x0069
	xkJ = 0x006a
	xkK = 0x006b
	xkM = 0x006d
	xkN = 0x006e
	xkP = 0x0070
	xkQ = 0x0071
	xkR = 0x0072
	xkS = 0x0073
	xkT = 0x0074
	xkW = 0x0077
	xkX = 0x0078
)

// MODKEY is the primary modifier every binding below rides on, the
// analogue of config.def.h's "#define MODKEY Mod4Mask".
const modkey = xproto.ModMask4

// keyBinding pairs a modifier+keysym chord with the handler it runs.
// arg carries the one piece of per-binding data a handler needs (a tag
// mask, a direction, a command line), mirroring the Arg union
// config.def.h's Key table uses, narrowed to a single any field since Go
// doesn't need the C union's space-saving trick.
type keyBinding struct {
	mod    uint16
	keysym uint32
	fn     func(w *wm, arg any)
	arg    any
}

// keyBindings is the compile-time keymap; rebuilding is the only way to
// change it, matching config.go's "no runtime config" convention.
var keyBindings = []keyBinding{
	{modkey, xkReturn, keySpawnTerminal, nil},
	{modkey, xkP, keySpawnLauncher, nil},
	{modkey, xkGrave, keyToggleScratch, 's'},
	{modkey | xproto.ModMaskShift, xkM, keyToggleScratch, 'm'},
	{modkey, xkJ, keyFocusStack, +1},
	{modkey, xkK, keyFocusStack, -1},
	{modkey | xproto.ModMaskShift, xkJ, keyFocusStackHidden, +1},
	{modkey | xproto.ModMaskShift, xkK, keyFocusStackHidden, -1},
	{modkey, xkI, keyIncNmaster, +1},
	{modkey, xkD, keyIncNmaster, -1},
	{modkey | xproto.ModMaskControl, xkH, keySetMfact, -0.05},
	{modkey | xproto.ModMaskControl, xkJ, keySetMfact, +0.05},
	{modkey, xkTab, keyAltTag, nil},
	{modkey, xkX, keyKillClient, nil},
	{modkey, xkT, keySetLayout, 0},
	{modkey, xkF, keySetLayout, 1},
	{modkey, xkM, keySetLayout, 2},
	{modkey | xproto.ModMaskShift, xkSpace, keyToggleFloating, nil},
	{modkey, xk0, keyView, uint32(tagmask)},
	{modkey | xproto.ModMaskShift, xk0, keyTag, uint32(tagmask)},
	{modkey, xkComma, keyFocusMon, -1},
	{modkey, xkPeriod, keyFocusMon, +1},
	{modkey | xproto.ModMaskShift, xkComma, keyTagMon, -1},
	{modkey | xproto.ModMaskShift, xkPeriod, keyTagMon, +1},
	{modkey, xkMinus, keySetGaps, -5},
	{modkey, xkEqual, keySetGaps, +5},
	{modkey | xproto.ModMaskShift, xkQ, keyQuit, nil},
	{modkey | xproto.ModMaskShift, xkR, keyRestart, nil},
}

func init() {
	digits := [9]uint32{xk1, xk2, xk3, xk4, xk5, xk6, xk7, xk8, xk9}
	for i, ks := range digits {
		tag := uint32(1) << i
		keyBindings = append(keyBindings,
			keyBinding{modkey, ks, keyView, tag},
			keyBinding{modkey | xproto.ModMaskControl, ks, keyToggleView, tag},
			keyBinding{modkey | xproto.ModMaskShift, ks, keyTag, tag},
			keyBinding{modkey | xproto.ModMaskControl | xproto.ModMaskShift, ks, keyToggleTag, tag},
		)
	}
}

// keycodeTable resolves a keysym to the keycode(s) the server currently
// reports for it, built once from GetKeyboardMapping over the server's
// advertised keycode range (setup.MinKeycode..MaxKeycode), mirroring
// xcb_key_symbols_get_keycode's linear scan over the shared mapping.
type keycodeTable struct {
	bySym map[uint32][]xproto.Keycode
}

func buildKeycodeTable(xc *xConn) (*keycodeTable, error) {
	setup := xproto.Setup(xc.conn)
	minKC, maxKC := setup.MinKeycode, setup.MaxKeycode
	count := byte(maxKC - minKC + 1)

	reply, err := xproto.GetKeyboardMapping(xc.conn, minKC, count).Reply()
	if err != nil {
		return nil, err
	}
	per := int(reply.KeysymsPerKeycode)
	kt := &keycodeTable{bySym: make(map[uint32][]xproto.Keycode)}
	for i := 0; i < int(count); i++ {
		kc := xproto.Keycode(int(minKC) + i)
		for j := 0; j < per; j++ {
			sym := uint32(reply.Keysyms[i*per+j])
			if sym == 0 {
				continue
			}
			kt.bySym[sym] = append(kt.bySym[sym], kc)
		}
	}
	return kt, nil
}

func (kt *keycodeTable) keycodes(sym uint32) []xproto.Keycode {
	if kt == nil {
		return nil
	}
	return kt.bySym[sym]
}

// A grab must be repeated under the Caps/Num Lock modifier bits so a
// binding still fires with them engaged — NumLock's modifier index
// varies by keyboard mapping, so numLockMask resolves it against
// whatever keycode XK_Num_Lock maps to (falling back to Mod2, the
// overwhelmingly common case, if the symbol isn't found).
const xkNumLock = 0xff7f

func numLockMask(xc *xConn, kt *keycodeTable) uint16 {
	kcs := kt.keycodes(xkNumLock)
	if len(kcs) == 0 {
		return xproto.ModMask2
	}
	mapping, err := xproto.GetModifierMapping(xc.conn).Reply()
	if err != nil {
		return xproto.ModMask2
	}
	per := int(mapping.KeycodesPerModifier)
	for mi := 0; mi < 8; mi++ {
		for ki := 0; ki < per; ki++ {
			kc := mapping.Keycodes[mi*per+ki]
			for _, want := range kcs {
				if kc == want {
					return uint16(1) << uint(mi)
				}
			}
		}
	}
	return xproto.ModMask2
}

// grabKeys grabs every chord in keyBindings (and its Lock/NumLock
// variants) on the root window, mirroring original_source's grabkeys()
// called at startup and after every keyboard mapping change.
func grabKeys(xc *xConn, kt *keycodeTable, numLock uint16) {
	xproto.UngrabKeyChecked(xc.conn, xproto.GrabAny, xc.root, xproto.ModMaskAny).Check()
	lockVariants := []uint16{0, xproto.ModMaskLock, numLock, xproto.ModMaskLock | numLock}
	for _, kb := range keyBindings {
		for _, kc := range kt.keycodes(kb.keysym) {
			for _, lv := range lockVariants {
				xproto.GrabKeyChecked(xc.conn, true, xc.root, kb.mod|lv, kc,
					xproto.GrabModeAsync, xproto.GrabModeAsync).Check()
			}
		}
	}
}

// dispatchKeyPress resolves a KeyPressEvent's (detail, state) pair
// against keyBindings, ignoring the lock modifier bits a grab variant
// may have matched on, and runs the first binding's handler.
func (w *wm) dispatchKeyPress(e xproto.KeyPressEvent) {
	if w.keys == nil {
		return
	}
	clean := e.State &^ (xproto.ModMaskLock | w.numLockMask)
	for _, kb := range keyBindings {
		if kb.mod != clean {
			continue
		}
		for _, kc := range w.keys.keycodes(kb.keysym) {
			if kc == e.Detail {
				kb.fn(w, kb.arg)
				return
			}
		}
	}
}

func keySpawnTerminal(w *wm, _ any)     { spawnTerminal() }
func keySpawnLauncher(w *wm, _ any)     { spawnLauncher() }
func keyToggleFloating(w *wm, _ any) {
	if selmon != nil && selmon.sel != nil && !selmon.sel.isfullscreen {
		selmon.sel.toggleFloating(w.xc)
		selmon.arrangemon(w.xc)
	}
}

func keyToggleScratch(w *wm, arg any) {
	toggleScratch(w.xc, arg.(rune))
}

func keyFocusStack(w *wm, arg any)       { moveFocus(w.xc, arg.(int), false) }
func keyFocusStackHidden(w *wm, arg any) { moveFocus(w.xc, arg.(int), true) }

func keyIncNmaster(w *wm, arg any) {
	if selmon == nil {
		return
	}
	selmon.nmaster += arg.(int)
	if selmon.nmaster < 0 {
		selmon.nmaster = 0
	}
	selmon.arrangemon(w.xc)
}

func keySetMfact(w *wm, arg any) {
	if selmon == nil {
		return
	}
	f := selmon.mfact + arg.(float64)
	if f < 0.05 || f > 0.95 {
		return
	}
	selmon.mfact = f
	selmon.arrangemon(w.xc)
}

func keyAltTag(w *wm, _ any) {
	if selmon == nil {
		return
	}
	selmon.applyTagset(selmon.tagset[1-selmon.seltags])
	selmon.arrangemon(w.xc)
}

func keyKillClient(w *wm, _ any) {
	if selmon != nil && selmon.sel != nil {
		closeClient(w.xc, selmon.sel)
	}
}

func keySetLayout(w *wm, arg any) {
	if selmon == nil {
		return
	}
	idx := arg.(int)
	if idx < 0 || idx >= len(layouts) {
		return
	}
	selmon.lt[selmon.sellt] = idx
	selmon.arrangemon(w.xc)
}

func keyView(w *wm, arg any) {
	if selmon == nil {
		return
	}
	selmon.applyTagset(arg.(uint32))
	selmon.arrangemon(w.xc)
}

func keyTag(w *wm, arg any) {
	if selmon == nil || selmon.sel == nil {
		return
	}
	selmon.sel.tags = arg.(uint32) & tagmask
	selmon.arrangemon(w.xc)
	updateCurrentDesktop(w.xc)
}

func keyToggleView(w *wm, arg any) {
	if selmon == nil {
		return
	}
	newset := selmon.tagset[selmon.seltags] ^ (arg.(uint32) & tagmask)
	if newset != 0 {
		selmon.applyTagset(newset)
		selmon.arrangemon(w.xc)
	}
}

func keyToggleTag(w *wm, arg any) {
	if selmon == nil || selmon.sel == nil {
		return
	}
	newtags := selmon.sel.tags ^ (arg.(uint32) & tagmask)
	if newtags != 0 {
		selmon.sel.tags = newtags
		selmon.arrangemon(w.xc)
	}
}

func keyFocusMon(w *wm, arg any) {
	if m := dirtomon(arg.(int)); m != nil {
		selmon = m
		setFocus(w.xc, m, m.sel)
	}
}

func keyTagMon(w *wm, arg any) {
	if selmon == nil || selmon.sel == nil {
		return
	}
	dest := dirtomon(arg.(int))
	if dest == nil || dest == selmon {
		return
	}
	c := selmon.sel
	selmon.detach(c)
	dest.attach(c)
	selmon.arrangemon(w.xc)
	dest.arrangemon(w.xc)
}

func keySetGaps(w *wm, arg any) {
	if selmon == nil {
		return
	}
	d := arg.(int)
	next := int(selmon.gapPx) + d
	if next < 0 {
		next = 0
	}
	selmon.gapPx = uint(next)
	selmon.arrangemon(w.xc)
}

func keyQuit(w *wm, _ any) {
	w.quit = true
	w.xs.stop()
}

func keyRestart(w *wm, _ any) {
	if err := execSelf(); err != nil {
		errf("restart failed: %v", err)
	}
}

// moveFocus drives keyFocusStack/keyFocusStackHidden: resolve the next
// candidate via focusStack and give it input focus.
func moveFocus(xc *xConn, dir int, includeHidden bool) {
	if selmon == nil {
		return
	}
	if lockfullscreen && selmon.sel != nil && selmon.sel.isfullscreen {
		return
	}
	if next := focusStack(selmon, dir, includeHidden); next != nil {
		setFocus(xc, selmon, next)
	}
}
