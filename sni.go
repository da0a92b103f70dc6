// This file is part of the program "AndrathWM".
// Please see the LICENSE file for copyright information.

package main

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/godbus/dbus/v5"
	"github.com/godbus/dbus/v5/introspect"
	"github.com/godbus/dbus/v5/prop"
)

const (
	sniWatcherPath    = dbus.ObjectPath("/StatusNotifierWatcher")
	sniWatcherIface   = "org.kde.StatusNotifierWatcher"
	sniItemIfaceName  = "org.kde.StatusNotifierItem"
	sniWatcherBusName = "org.kde.StatusNotifierWatcher"
	dbusMenuIfaceName = "com.canonical.dbusmenu"

	// sniMaxItems bounds the registration list so a misbehaving or
	// malicious client spamming RegisterStatusNotifierItem cannot exhaust
	// host memory.
	sniMaxItems = 64
)

// pendingClick is a click that arrived before an item's properties were
// fetched; drained and replayed once refreshItem completes, mirroring
// original_source's item->pending_click/pending_button/pending_x/pending_y.
type pendingClick struct {
	button int
	x, y   int32
}

// iconPixmapData is one decoded entry of an SNI IconPixmap property:
// width, height, and width*height ARGB32 bytes in network byte order.
type iconPixmapData struct {
	width, height int32
	data          []byte
}

// sniItem is the host's view of one registered tray item. fetched and
// fetching are kept as separate bits (not just gen) so the invariant
// "exactly one of {fetched}, {fetching}, or neither, never both" can be
// checked directly instead of inferred from a counter comparison. gen
// still guards a GetAll reply that arrives after a newer fetch has
// superseded it, the same use-after-free guard original_source's
// SNIGetAllCtx.generation provides; GetLayout replies are not checked
// against gen.
type sniItem struct {
	service string
	path    dbus.ObjectPath

	mu         sync.Mutex
	title      string
	iconName   string
	iconKey    string
	menuPath   dbus.ObjectPath
	itemIsMenu bool
	status     string
	pixmaps    []iconPixmapData

	fetched  bool
	fetching bool
	gen      uint64

	pending *pendingClick
}

// pendingCall is one in-flight async D-Bus call being polled alongside
// the X connection, replacing the blocking-Store-in-a-bare-goroutine
// shape with the same non-blocking drain idiom xsource.go uses for X
// events: a channel checked with a default case every run() iteration.
type pendingCall struct {
	ch   chan *dbus.Call
	item *sniItem
	gen  uint64
	kind string // "getall" or "layout"
	x, y int32
}

// sniHost implements both org.kde.StatusNotifierWatcher (so items have
// someone to RegisterStatusNotifierItem with) and hosts the registered
// items' icons in the bar, mirroring cpuguy83-calbar's item-side
// property/introspection wiring but on the watcher/host side of the
// protocol, enriched with original_source's item list, click queue, and
// DBusMenu machinery.
type sniHost struct {
	conn  *dbus.Conn
	props *prop.Properties
	xc    *xConn

	mu    sync.Mutex
	items map[string]*sniItem
	order []string // registration order; RegisteredStatusNotifierItems and the 64-item cap both walk this

	icons *iconCache
	gen   uint64 // incremented per fetch, copied into sniItem.gen

	sigCh   chan *dbus.Signal
	pending []*pendingCall

	openMenu *menu // the one DBusMenu popup currently shown, if any

	dead      bool
	retryIn   time.Duration
	nextRetry time.Time
}

func newSNIHost(xc *xConn, icons *iconCache) (*sniHost, error) {
	h := &sniHost{xc: xc, items: map[string]*sniItem{}, icons: icons}
	conn, err := dbus.ConnectSessionBus()
	if err != nil {
		return nil, err
	}
	if err := h.bind(conn); err != nil {
		conn.Close()
		return nil, err
	}
	return h, nil
}

// bind takes ownership of a fresh session-bus connection: claims the
// watcher name, exports the watcher object and its properties, and
// subscribes to NameOwnerChanged. Used both at startup and by
// maybeReconnect after a connection drop.
func (h *sniHost) bind(conn *dbus.Conn) error {
	h.conn = conn
	h.mu.Lock()
	h.items = map[string]*sniItem{}
	h.order = nil
	h.mu.Unlock()
	h.pending = nil

	reply, err := conn.RequestName(sniWatcherBusName, dbus.NameFlagDoNotQueue)
	if err != nil {
		return err
	}
	if reply != dbus.RequestNameReplyPrimaryOwner {
		// Another watcher already owns the name (common under KDE/GNOME
		// where a desktop environment's own watcher runs); items still
		// register with the desktop's watcher and this host never serves
		// as one, but stays connected to notice if that changes.
		h.sigCh = make(chan *dbus.Signal, 16)
		conn.Signal(h.sigCh)
		return nil
	}

	conn.Export(h, sniWatcherPath, sniWatcherIface)
	conn.Export(introspect.Introspectable(sniIntrospectXML), sniWatcherPath, "org.freedesktop.DBus.Introspectable")

	props := map[string]map[string]*prop.Prop{
		sniWatcherIface: {
			"RegisteredStatusNotifierItems": {
				Value:    []string{},
				Writable: false,
				Emit:     prop.EmitTrue,
			},
			"IsStatusNotifierHostRegistered": {Value: true, Writable: false, Emit: prop.EmitTrue},
			"ProtocolVersion":                {Value: int32(0), Writable: false, Emit: prop.EmitFalse},
		},
	}
	p, err := prop.Export(conn, sniWatcherPath, props)
	if err != nil {
		return err
	}
	h.props = p

	conn.BusObject().Call("org.freedesktop.DBus.AddMatch", 0,
		"type='signal',interface='org.freedesktop.DBus',member='NameOwnerChanged'")

	h.sigCh = make(chan *dbus.Signal, 16)
	conn.Signal(h.sigCh)
	return nil
}

// RegisterStatusNotifierItem is the one D-Bus method the watcher
// interface exposes to items (org.kde.StatusNotifierWatcher spec). The
// sender may pass either a bare object path (implying the caller's own
// bus name owns it) or a full "service/path" string. Replies
// unconditionally (mirroring original_source's "send reply first, then
// do D-Bus calls" ordering) and caps the registration list at
// sniMaxItems to bound memory against a spammy or malicious client.
func (h *sniHost) RegisterStatusNotifierItem(service string, sender dbus.Sender) *dbus.Error {
	svc := service
	path := dbus.ObjectPath("/StatusNotifierItem")
	if len(service) > 0 && service[0] == '/' {
		path = dbus.ObjectPath(service)
		svc = string(sender)
	} else {
		for i := 1; i < len(service); i++ {
			if service[i] == '/' {
				svc, path = service[:i], dbus.ObjectPath(service[i:])
				break
			}
		}
	}

	h.mu.Lock()
	if _, exists := h.items[svc]; exists {
		h.mu.Unlock()
		return nil
	}
	if len(h.order) >= sniMaxItems {
		h.mu.Unlock()
		warnf("sni: item cap (%d) reached, rejecting %s", sniMaxItems, svc)
		return nil
	}
	item := &sniItem{service: svc, path: path}
	h.items[svc] = item
	h.order = append(h.order, svc)
	h.mu.Unlock()

	h.addItemMatches(svc)
	h.refreshItem(item)
	h.emitRegistered()
	return nil
}

// RegisterStatusNotifierHost lets other hosts (rare: usually only one
// host runs per session) announce themselves; accepted unconditionally
// since this implementation doesn't arbitrate between multiple hosts.
func (h *sniHost) RegisterStatusNotifierHost(service string) *dbus.Error {
	return nil
}

// addItemMatches subscribes to the item's own PropertiesChanged and
// StatusNotifierItem signals, the per-service matches
// sni_fetch_item_properties installs in original_source so icon/status
// churn on an already-registered item triggers a re-fetch instead of
// going unnoticed until the next RegisterStatusNotifierItem.
func (h *sniHost) addItemMatches(service string) {
	h.conn.BusObject().Call("org.freedesktop.DBus.AddMatch", 0,
		"type='signal',sender='"+service+"',interface='org.freedesktop.DBus.Properties'")
	h.conn.BusObject().Call("org.freedesktop.DBus.AddMatch", 0,
		"type='signal',sender='"+service+"',interface='"+sniItemIfaceName+"'")
}

func (h *sniHost) emitRegistered() {
	h.mu.Lock()
	names := append([]string(nil), h.order...)
	h.mu.Unlock()
	if h.props != nil {
		h.props.SetMust(sniWatcherIface, "RegisteredStatusNotifierItems", names)
	}
}

// refreshItem starts an async GetAll(org.kde.StatusNotifierItem), guarded
// by fetching so a rapid string of signals for the same item (several
// PropertiesChanged in a row) never queues a second GetAll before the
// first reply lands, matching original_source's sni_handle_dbus() guard.
func (h *sniHost) refreshItem(item *sniItem) {
	item.mu.Lock()
	if item.fetching {
		item.mu.Unlock()
		return
	}
	item.fetching = true
	myGen := atomic.AddUint64(&h.gen, 1)
	item.gen = myGen
	item.mu.Unlock()

	obj := h.conn.Object(item.service, item.path)
	ch := make(chan *dbus.Call, 1)
	obj.Go("org.freedesktop.DBus.Properties.GetAll", 0, ch, sniItemIfaceName)

	h.mu.Lock()
	h.pending = append(h.pending, &pendingCall{ch: ch, item: item, gen: myGen, kind: "getall"})
	h.mu.Unlock()
}

// drainSignals is the host's slice of run()'s unified poll: read any
// NameOwnerChanged/PropertiesChanged/item signals without blocking, then
// check every in-flight async call for a reply, then (if the connection
// has dropped) see whether it's time to retry. Called once per event
// loop iteration from events.go, the same non-blocking-drain idiom
// xsource.go uses for X events and errors.
func (h *sniHost) drainSignals() {
	if h == nil || h.conn == nil {
		return
	}
	if h.dead {
		h.maybeReconnect()
		return
	}
	h.drainSignalChannel()
	h.drainPendingCalls()
}

func (h *sniHost) drainSignalChannel() {
	for {
		select {
		case sig, ok := <-h.sigCh:
			if !ok {
				h.markDead()
				return
			}
			h.handleSignal(sig)
		default:
			return
		}
	}
}

func (h *sniHost) handleSignal(sig *dbus.Signal) {
	switch sig.Name {
	case "org.freedesktop.DBus.NameOwnerChanged":
		if len(sig.Body) < 3 {
			return
		}
		name, _ := sig.Body[0].(string)
		newOwner, _ := sig.Body[2].(string)
		if name == "" || newOwner != "" {
			return
		}
		h.unregisterByService(name)
	case "org.freedesktop.DBus.Properties.PropertiesChanged",
		sniItemIfaceName + ".NewIcon",
		sniItemIfaceName + ".NewAttentionIcon",
		sniItemIfaceName + ".NewStatus",
		sniItemIfaceName + ".NewToolTip":
		h.mu.Lock()
		item := h.items[sig.Sender]
		h.mu.Unlock()
		if item == nil {
			return
		}
		// A fresh signal invalidates whatever was last fetched; reset
		// both guards so refreshItem is allowed to re-fetch even if a
		// GetAll for this item is already mid-flight.
		item.mu.Lock()
		item.fetched = false
		item.fetching = false
		item.mu.Unlock()
		h.refreshItem(item)
	}
}

func (h *sniHost) drainPendingCalls() {
	h.mu.Lock()
	pending := h.pending
	h.pending = nil
	h.mu.Unlock()

	var still []*pendingCall
	for _, pc := range pending {
		select {
		case call := <-pc.ch:
			h.handlePendingCall(pc, call)
		default:
			still = append(still, pc)
		}
	}
	if len(still) > 0 {
		h.mu.Lock()
		h.pending = append(h.pending, still...)
		h.mu.Unlock()
	}
}

func (h *sniHost) handlePendingCall(pc *pendingCall, call *dbus.Call) {
	switch pc.kind {
	case "getall":
		h.handleGetAllReply(pc, call)
	case "layout":
		h.handleGetLayoutReply(pc, call)
	}
}

// handleGetAllReply applies a GetAll reply only if no newer fetch has
// started for this item since (the generation-counter guard against a
// stale async reply clobbering fresher state), then marks properties
// fetched and drains any click that arrived while they were pending.
func (h *sniHost) handleGetAllReply(pc *pendingCall, call *dbus.Call) {
	item := pc.item
	item.mu.Lock()
	if pc.gen < item.gen {
		item.mu.Unlock()
		return // superseded by a later fetch; drop this reply
	}
	item.fetching = false
	if call.Err != nil {
		item.mu.Unlock()
		warnf("sni: GetAll %s%s: %v", item.service, item.path, call.Err)
		return
	}

	var props map[string]dbus.Variant
	if len(call.Body) > 0 {
		if m, ok := call.Body[0].(map[string]dbus.Variant); ok {
			props = m
		}
	}
	applyProperties(item, props)
	item.fetched = true
	pending := item.pending
	item.pending = nil
	item.mu.Unlock()

	markAllBarsDirty()
	if pending != nil {
		h.dispatchClick(item, pending.button, pending.x, pending.y)
	}
}

func applyProperties(item *sniItem, props map[string]dbus.Variant) {
	if v, ok := props["Title"]; ok {
		if s, ok := v.Value().(string); ok {
			item.title = s
		}
	}
	if v, ok := props["IconName"]; ok {
		if s, ok := v.Value().(string); ok {
			item.iconName = s
			item.iconKey = item.service + "#" + s
		}
	}
	if v, ok := props["Status"]; ok {
		if s, ok := v.Value().(string); ok {
			item.status = s
		}
	}
	if v, ok := props["ItemIsMenu"]; ok {
		if b, ok := v.Value().(bool); ok {
			item.itemIsMenu = b
		}
	}
	if v, ok := props["Menu"]; ok {
		switch p := v.Value().(type) {
		case dbus.ObjectPath:
			item.menuPath = p
		case string:
			item.menuPath = dbus.ObjectPath(p)
		}
	}
	if v, ok := props["IconPixmap"]; ok {
		item.pixmaps = parseIconPixmaps(v.Value())
	}
}

// parseIconPixmaps decodes the a(iiay) IconPixmap property: godbus
// decodes a DBUS STRUCT with no destination type into []interface{}, so
// each array element comes back as a 3-element slice (width, height,
// raw bytes) rather than a named Go struct.
func parseIconPixmaps(v interface{}) []iconPixmapData {
	arr, ok := v.([]interface{})
	if !ok {
		return nil
	}
	var out []iconPixmapData
	for _, e := range arr {
		fields, ok := e.([]interface{})
		if !ok || len(fields) != 3 {
			continue
		}
		w, ok1 := fields[0].(int32)
		hgt, ok2 := fields[1].(int32)
		data, ok3 := fields[2].([]byte)
		if !ok1 || !ok2 || !ok3 {
			continue
		}
		out = append(out, iconPixmapData{width: w, height: hgt, data: data})
	}
	return out
}

func markAllBarsDirty() {
	for m := mons; m != nil; m = m.next {
		markBarDirty(m)
	}
}

// unregisterByService is invoked on a NameOwnerChanged signal whose new
// owner is empty, i.e. the item's process exited without a clean
// unregister call.
func (h *sniHost) unregisterByService(service string) {
	h.mu.Lock()
	item, ok := h.items[service]
	if ok {
		delete(h.items, service)
		for i, s := range h.order {
			if s == service {
				h.order = append(h.order[:i], h.order[i+1:]...)
				break
			}
		}
	}
	h.mu.Unlock()
	if !ok {
		return
	}
	item.mu.Lock()
	item.gen++ // invalidate any in-flight async reply still addressed to it
	item.mu.Unlock()
	h.emitRegistered()
	markAllBarsDirty()
}

// markDead records a dropped connection and arms the first retry after
// 2s; a second consecutive failure backs off to 5s, matching the
// 2s/5s reconnect cadence original_source's sni_reconnect() callers use.
func (h *sniHost) markDead() {
	h.dead = true
	if h.retryIn == 0 {
		h.retryIn = 2 * time.Second
	} else {
		h.retryIn = 5 * time.Second
	}
	h.nextRetry = time.Now().Add(h.retryIn)
}

func (h *sniHost) maybeReconnect() {
	if time.Now().Before(h.nextRetry) {
		return
	}
	conn, err := dbus.ConnectSessionBus()
	if err != nil {
		h.retryIn = 5 * time.Second
		h.nextRetry = time.Now().Add(h.retryIn)
		return
	}
	if err := h.bind(conn); err != nil {
		conn.Close()
		h.retryIn = 5 * time.Second
		h.nextRetry = time.Now().Add(h.retryIn)
		return
	}
	h.dead = false
	h.retryIn = 0
	warnf("sni: reconnected to session bus")
}

// handleClick is the entry point for a press on an adopted tray slot
// that belongs to an SNI item (routed in from buttons.go via
// systray.findIcon's sniOwner field). Queues the click if properties
// haven't been fetched yet (S5), otherwise dispatches immediately.
func (h *sniHost) handleClick(service string, button int, x, y int32) {
	h.mu.Lock()
	item := h.items[service]
	h.mu.Unlock()
	if item == nil {
		return
	}

	item.mu.Lock()
	fetched := item.fetched
	if !fetched {
		item.pending = &pendingClick{button: button, x: x, y: y}
	}
	item.mu.Unlock()
	if !fetched {
		return
	}
	h.dispatchClick(item, button, x, y)
}

const (
	mouseButton1 = 1 // left: Activate
	mouseButton2 = 2 // middle: SecondaryActivate
	mouseButton3 = 3 // right: ContextMenu, or the DBusMenu if the item has one
)

func (h *sniHost) dispatchClick(item *sniItem, button int, x, y int32) {
	var method string
	switch button {
	case mouseButton1:
		method = "Activate"
	case mouseButton2:
		method = "SecondaryActivate"
	case mouseButton3:
		item.mu.Lock()
		menuPath := item.menuPath
		item.mu.Unlock()
		if menuPath != "" {
			h.showMenu(item, menuPath, int(x), int(y))
			return
		}
		method = "ContextMenu"
	default:
		return
	}

	obj := h.conn.Object(item.service, item.path)
	call := obj.Go(sniItemIfaceName+"."+method, dbus.FlagNoReplyExpected, nil, x, y)
	if call.Err != nil {
		warnf("sni: %s on %s: %v", method, item.service, call.Err)
	}
}

// showMenu fires DBusMenu's AboutToShow (fire-and-forget, no reply
// needed) then issues an async GetLayout, polled the same way GetAll is.
func (h *sniHost) showMenu(item *sniItem, menuPath dbus.ObjectPath, x, y int) {
	obj := h.conn.Object(item.service, menuPath)
	obj.Go(dbusMenuIfaceName+".AboutToShow", dbus.FlagNoReplyExpected, nil, int32(0))

	ch := make(chan *dbus.Call, 1)
	const parentID, recursionDepth = int32(0), int32(-1)
	obj.Go(dbusMenuIfaceName+".GetLayout", 0, ch, parentID, recursionDepth, []string{})

	h.mu.Lock()
	h.pending = append(h.pending, &pendingCall{ch: ch, item: item, kind: "layout", x: int32(x), y: int32(y)})
	h.mu.Unlock()
}

func (h *sniHost) handleGetLayoutReply(pc *pendingCall, call *dbus.Call) {
	if call.Err != nil {
		warnf("sni: GetLayout %s: %v", pc.item.service, call.Err)
		return
	}
	if len(call.Body) < 2 {
		return
	}
	root, ok := call.Body[1].([]interface{})
	if !ok || len(root) != 3 {
		return
	}
	children, ok := root[2].([]interface{})
	if !ok {
		return
	}
	items := buildMenuFromLayout(h, pc.item, children, 0)
	if len(items) == 0 {
		return
	}
	if h.openMenu != nil {
		h.openMenu.dismiss(h.xc)
		h.openMenu = nil
	}
	m, err := openMenu(h.xc, items, int(pc.x), int(pc.y), selmon)
	if err != nil {
		warnf("sni: open menu for %s: %v", pc.item.service, err)
		return
	}
	h.openMenu = m
}

// buildMenuFromLayout walks one level of a DBusMenu GetLayout reply
// ((id, properties, children) structs) into menu.go's menuItem tree,
// capped at depth 10 like original_source's sni_build_menu_from_layout.
func buildMenuFromLayout(h *sniHost, item *sniItem, children []interface{}, depth int) []menuItem {
	if depth > 10 {
		return nil
	}
	var out []menuItem
	for _, c := range children {
		entry, ok := c.(dbus.Variant)
		var node []interface{}
		if ok {
			node, ok = entry.Value().([]interface{})
		} else {
			node, ok = c.([]interface{})
		}
		if !ok || len(node) != 3 {
			continue
		}
		id, _ := node[0].(int32)
		propMap, _ := node[1].(map[string]dbus.Variant)
		grandchildren, _ := node[2].([]interface{})

		label, enabled, visible, toggleState := parseMenuItemProps(propMap)
		if !visible {
			continue
		}
		if label == "" {
			out = append(out, menuItem{separator: true})
			continue
		}
		mi := menuItem{
			label:    stripMnemonics(label),
			disabled: !enabled,
		}
		itemID, hostConn, svc, path := id, h, item.service, item.path
		mi.action = func() { hostConn.activateMenuItem(svc, path, itemID) }
		if toggleState >= 0 && len(propMap) > 0 {
			if _, hasToggle := propMap["toggle-type"]; hasToggle {
				mi.label = toggleMark(toggleState) + mi.label
			}
		}
		if len(grandchildren) > 0 {
			mi.submenu = buildMenuFromLayout(h, item, grandchildren, depth+1)
		}
		out = append(out, mi)
	}
	return out
}

func toggleMark(state int) string {
	if state == 1 {
		return "[x] "
	}
	return "[ ] "
}

func parseMenuItemProps(props map[string]dbus.Variant) (label string, enabled, visible bool, toggleState int) {
	enabled, visible, toggleState = true, true, -1
	if props == nil {
		return
	}
	if v, ok := props["label"]; ok {
		if s, ok := v.Value().(string); ok {
			label = s
		}
	}
	if v, ok := props["enabled"]; ok {
		if b, ok := v.Value().(bool); ok {
			enabled = b
		}
	}
	if v, ok := props["visible"]; ok {
		if b, ok := v.Value().(bool); ok {
			visible = b
		}
	}
	if v, ok := props["toggle-state"]; ok {
		if n, ok := v.Value().(int32); ok {
			if n == 1 {
				toggleState = 1
			} else {
				toggleState = 0
			}
		}
	}
	return
}

// stripMnemonics removes DBusMenu mnemonic-underscore markup from a
// label: "_X" becomes "X" (mnemonic), "__" becomes "_" (literal
// underscore), per the com.canonical.dbusmenu label convention.
func stripMnemonics(s string) string {
	b := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		if s[i] != '_' {
			b = append(b, s[i])
			continue
		}
		if i+1 >= len(s) {
			break // trailing lone underscore: drop it
		}
		i++
		b = append(b, s[i])
	}
	return string(b)
}

// activateMenuItem calls DBusMenu's Event("clicked") on the selected
// item, the click-to-activate half of the protocol original_source's
// sni_menu_item_activated() implements.
func (h *sniHost) activateMenuItem(service string, path dbus.ObjectPath, id int32) {
	obj := h.conn.Object(service, path)
	const eventID = "clicked"
	data := dbus.MakeVariant(int32(0))
	call := obj.Go(dbusMenuIfaceName+".Event", dbus.FlagNoReplyExpected, nil,
		id, eventID, data, uint32(time.Now().Unix()))
	if call.Err != nil {
		warnf("sni: DBusMenu Event on %s: %v", service, call.Err)
	}
}

const sniIntrospectXML = `<node>
	<interface name="org.kde.StatusNotifierWatcher">
		<method name="RegisterStatusNotifierItem">
			<arg type="s" direction="in"/>
		</method>
		<method name="RegisterStatusNotifierHost">
			<arg type="s" direction="in"/>
		</method>
		<property name="RegisteredStatusNotifierItems" type="as" access="read"/>
		<property name="IsStatusNotifierHostRegistered" type="b" access="read"/>
		<property name="ProtocolVersion" type="i" access="read"/>
		<signal name="StatusNotifierItemRegistered"><arg type="s"/></signal>
		<signal name="StatusNotifierItemUnregistered"><arg type="s"/></signal>
	</interface>
</node>`
