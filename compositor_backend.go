// This file is part of the program "AndrathWM".
// Please see the LICENSE file for copyright information.

package main

import "github.com/BurntSushi/xgb/xproto"

// compBackend is the compositor's rendering vtable, modeled on gio's
// gpu.Backend interface: a small set of texture/framebuffer primitives
// the frame loop drives, with the actual GPU API (or, in the fallback
// path, XRender) hidden behind it. compositor.go never issues a
// GL/Vulkan/XRender call directly — everything routes through this
// interface so the GPU and XRender backends are interchangeable.
type compBackend struct {
	impl backendImpl
}

type backendImpl interface {
	beginFrame() error
	endFrame() error
	newTextureFromPixmap(pix xproto.Pixmap, w, h int) (textureHandle, error)
	releaseTexture(t textureHandle)
	bindTexture(t textureHandle)
	newFramebuffer(w, h int) (framebufferHandle, error)
	bindFramebuffer(f framebufferHandle)
	releaseFramebuffer(f framebufferHandle)
	drawQuad(t textureHandle, dst rect, opacity float64)
	present(dst framebufferHandle) error
}

type textureHandle uint32
type framebufferHandle uint32

func (b *compBackend) beginFrame() error { return b.impl.beginFrame() }
func (b *compBackend) endFrame() error   { return b.impl.endFrame() }

func (b *compBackend) newTextureFromPixmap(pix xproto.Pixmap, w, h int) (textureHandle, error) {
	return b.impl.newTextureFromPixmap(pix, w, h)
}
func (b *compBackend) releaseTexture(t textureHandle) { b.impl.releaseTexture(t) }
func (b *compBackend) bindTexture(t textureHandle)    { b.impl.bindTexture(t) }

func (b *compBackend) newFramebuffer(w, h int) (framebufferHandle, error) {
	return b.impl.newFramebuffer(w, h)
}
func (b *compBackend) bindFramebuffer(f framebufferHandle)    { b.impl.bindFramebuffer(f) }
func (b *compBackend) releaseFramebuffer(f framebufferHandle) { b.impl.releaseFramebuffer(f) }

func (b *compBackend) drawQuad(t textureHandle, dst rect, opacity float64) {
	b.impl.drawQuad(t, dst, opacity)
}
func (b *compBackend) present(dst framebufferHandle) error { return b.impl.present(dst) }
