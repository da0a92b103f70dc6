// This file is part of the program "AndrathWM".
// Please see the LICENSE file for copyright information.

package main

import (
	"time"

	"github.com/BurntSushi/xgb"
	"github.com/BurntSushi/xgb/composite"
	"github.com/BurntSushi/xgb/damage"
	"github.com/BurntSushi/xgb/xfixes"
	"github.com/BurntSushi/xgb/xproto"
)

// compWin is the compositor's per-window shadow state: the redirected
// pixmap, its damage object, and the uploaded texture, kept separate
// from client. Entries are created only for managed clients (from
// onClientManaged and onClientFullscreen); override-redirect menus and
// tray icons get none.
type compWin struct {
	win       xproto.Window
	pixmap    xproto.Pixmap
	dmg       damage.Damage
	tex       textureHandle
	w, h      int
	opacity   float64
	mapped    bool
	orderNode *listNode[*compWin]
}

// compositor owns window redirection, damage accumulation, and the
// vblank-driven repaint cycle. presentAvailable is hardcoded false:
// BurntSushi/xgb has no Present extension binding, so frame pacing uses
// the idle-task fallback original_source documents for that case
// instead of fabricating a nonexistent extension package.
type compositor struct {
	xc     *xConn
	backend *compBackend
	windows map[xproto.Window]*compWin
	order   *list[*compWin] // back-to-front paint order

	dirty rect // accumulated damage since last flush

	presentAvailable bool
	frameTicker      *time.Ticker
}

func startCompositor(xc *xConn) (*compositor, error) {
	if err := composite.Init(xc.conn); err != nil {
		return nil, err
	}
	if err := damage.Init(xc.conn); err != nil {
		return nil, err
	}
	if err := xfixes.Init(xc.conn); err != nil {
		return nil, err
	}
	err := composite.RedirectSubwindowsChecked(xc.conn, xc.root, composite.RedirectManual).Check()
	if err != nil {
		return nil, err
	}

	var backend *compBackend
	if gb, gerr := newGPUBackend(); gerr == nil {
		backend = &compBackend{impl: gb}
	} else {
		debugf("compositor: GPU backend unavailable (%v), falling back to XRender", gerr)
		xb, xerr := newXRenderBackend(xc)
		if xerr != nil {
			return nil, xerr
		}
		backend = &compBackend{impl: xb}
	}

	c := &compositor{
		xc:          xc,
		backend:     backend,
		windows:     map[xproto.Window]*compWin{},
		order:       &list[*compWin]{},
		frameTicker: time.NewTicker(time.Second / motionfps),
	}
	return c, nil
}

// redirect begins compositing win: allocate its backing pixmap, a
// Damage object at the NonEmpty report level, and a texture
// wrapping the pixmap, mirroring original_source's addwin().
func (c *compositor) redirect(win xproto.Window, w, h int) *compWin {
	if cw, ok := c.windows[win]; ok {
		return cw
	}
	pix, err := xproto.NewPixmapId(c.xc.conn)
	if err != nil {
		return nil
	}
	if err := composite.NameWindowPixmapChecked(c.xc.conn, win, pix).Check(); err != nil {
		return nil
	}
	dmgID, err := damage.NewDamageId(c.xc.conn)
	if err != nil {
		return nil
	}
	damage.CreateChecked(c.xc.conn, dmgID, xproto.Drawable(win), damage.ReportLevelNonEmpty).Check()

	tex, err := c.backend.newTextureFromPixmap(pix, w, h)
	if err != nil {
		return nil
	}
	cw := &compWin{win: win, pixmap: pix, dmg: dmgID, tex: tex, w: w, h: h, opacity: 1, mapped: true}
	c.windows[win] = cw
	cw.orderNode = c.order.pushFront(cw)
	return cw
}

// unredirect tears down a window's compositor shadow state, called on
// unmanage or when a client enters true fullscreen: at once with
// bypass_compositor==2, or after bypass_compositor==0's default delay.
// A bypass_compositor==1 client is never redirected, so it never gets here.
func (c *compositor) unredirect(win xproto.Window) {
	cw, ok := c.windows[win]
	if !ok {
		return
	}
	c.backend.releaseTexture(cw.tex)
	damage.DestroyChecked(c.xc.conn, cw.dmg).Check()
	xproto.FreePixmapChecked(c.xc.conn, cw.pixmap).Check()
	if cw.orderNode != nil {
		c.order.detach(cw.orderNode)
	}
	delete(c.windows, win)
}

func (c *compositor) onClientManaged(cl *client) {
	if cl.bypassCompositor == 1 {
		return
	}
	cw := c.redirect(cl.win, cl.w, cl.h)
	if cw != nil {
		cw.opacity = cl.opacity
	}
}

func (c *compositor) onClientUnmanaged(cl *client) {
	c.unredirect(cl.win)
}

// onClientFullscreen implements the bypass_compositor==2 "always
// bypass while fullscreen" and the default (0) "unredirect after a
// short settle delay" behaviors; bypass_compositor==1 never redirects
// in the first place so this is a no-op for it.
func (c *compositor) onClientFullscreen(cl *client, fullscreen bool) {
	if cl.bypassCompositor == 1 {
		return
	}
	if fullscreen {
		if cl.bypassCompositor == 2 {
			c.unredirect(cl.win)
			return
		}
		go func(win xproto.Window) {
			time.Sleep(bypassDeferTime)
			if cur := findClient(win); cur != nil && cur.isfullscreen {
				c.unredirect(win)
			}
		}(cl.win)
		return
	}
	c.redirect(cl.win, cl.w, cl.h)
}

func (c *compositor) onClientOpacityChanged(cl *client) {
	if cw, ok := c.windows[cl.win]; ok {
		cw.opacity = cl.opacity
		c.markDirty(rect{cl.x, cl.y, cl.w, cl.h})
	}
}

func (c *compositor) markDirty(r rect) {
	c.dirty = c.dirty.union(r)
}

// handleCompositorEvent processes the damage/xfixes/composite extension
// events the main dispatch table doesn't know how to type-switch on
// directly (their event numbers are assigned dynamically at extension
// init, unlike the core protocol's fixed numbers).
func (c *compositor) handleCompositorEvent(ev xgb.Event) {
	switch e := ev.(type) {
	case damage.NotifyEvent:
		c.onDamageNotify(e)
	}
}

func (c *compositor) onDamageNotify(e damage.NotifyEvent) {
	cw, ok := c.windows[e.Drawable]
	if !ok {
		return
	}
	damage.SubtractChecked(c.xc.conn, cw.dmg, 0, 0).Check()
	c.markDirty(rect{int(e.Area.X), int(e.Area.Y), int(e.Area.Width), int(e.Area.Height)})
}

// flushDirty runs one composite pass over whatever area accumulated
// damage since the last call, the idle-task vblank approximation used
// in place of a real Present-extension frame callback.
func (c *compositor) flushDirty(xc *xConn) {
	if c.dirty.empty() {
		return
	}
	select {
	case <-c.frameTicker.C:
	default:
		return
	}

	c.backend.beginFrame()
	c.order.each(func(cw *compWin) bool {
		if !cw.mapped {
			return true
		}
		dst := rect{0, 0, cw.w, cw.h}.clamp(c.dirty)
		if dst.empty() {
			return true
		}
		c.backend.bindTexture(cw.tex)
		c.backend.drawQuad(cw.tex, dst, cw.opacity)
		return true
	})
	c.backend.endFrame()
	c.dirty = rect{}
}
