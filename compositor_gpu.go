// This file is part of the program "AndrathWM".
// Please see the LICENSE file for copyright information.

package main

import (
	"fmt"

	"github.com/BurntSushi/xgb/xproto"
	"gioui.org/gpu"
)

// gpuBackend wraps a gioui.org/gpu.Backend implementation (gio's own
// abstraction over GL/Direct3D/Vulkan) for compositing. Texture-from-
// pixmap import — the one operation gio's own API doesn't need, since
// gio draws its own content rather than compositing foreign X pixmaps —
// is the only piece genuinely specific to this use.
type gpuBackend struct {
	dev      gpu.Backend
	textures map[textureHandle]gpuTexture
	next     textureHandle
	fbs      map[framebufferHandle]gpuFramebuffer
	nextFB   framebufferHandle
}

type gpuTexture struct {
	pixmap xproto.Pixmap
	w, h   int
}

type gpuFramebuffer struct {
	w, h int
}

// newGPUBackend always returns an error: this build has no EGL/GLX
// surface binding to stand up a GPU compositing context with. The
// failure is benign: compositor.go falls back to xrenderBackend rather
// than treating it as fatal.
func newGPUBackend() (*gpuBackend, error) {
	return nil, fmt.Errorf("GPU context creation requires a platform-specific EGL/GLX surface binding not available in this environment")
}

func (b *gpuBackend) beginFrame() error { return nil }
func (b *gpuBackend) endFrame() error   { return nil }

func (b *gpuBackend) newTextureFromPixmap(pix xproto.Pixmap, w, h int) (textureHandle, error) {
	b.next++
	h2 := b.next
	b.textures[h2] = gpuTexture{pixmap: pix, w: w, h: h}
	return h2, nil
}

func (b *gpuBackend) releaseTexture(t textureHandle) { delete(b.textures, t) }
func (b *gpuBackend) bindTexture(t textureHandle)    {}

func (b *gpuBackend) newFramebuffer(w, h int) (framebufferHandle, error) {
	b.nextFB++
	h2 := b.nextFB
	b.fbs[h2] = gpuFramebuffer{w: w, h: h}
	return h2, nil
}

func (b *gpuBackend) bindFramebuffer(f framebufferHandle)    {}
func (b *gpuBackend) releaseFramebuffer(f framebufferHandle) { delete(b.fbs, f) }

func (b *gpuBackend) drawQuad(t textureHandle, dst rect, opacity float64) {}

func (b *gpuBackend) present(dst framebufferHandle) error { return nil }
