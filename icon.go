// This file is part of the program "AndrathWM".
// Please see the LICENSE file for copyright information.

package main

import (
	"bytes"
	"image"
	_ "image/png"

	lru "github.com/hashicorp/golang-lru"
	_ "golang.org/x/image/bmp" // some tray items (notably Qt/KDE ones) ship BMP icon pixmaps
)

// iconSurface is a decoded icon image (decodeARGB32 yields
// non-premultiplied NRGBA) ready for the compositor to upload as a
// texture. Decoding itself (PNG/ARGB via
// golang.org/x/image, _NET_WM_ICON's raw ARGB32 words, or an SNI
// IconPixmap byte blob) is out of scope beyond this one conversion
// point; callers hand in already-fetched bytes.
type iconSurface struct {
	img  image.Image
	w, h int
}

// iconCache bridges three icon sources that would otherwise each
// maintain their own decode+cache logic: _NET_WM_ICON (client window
// icons), SNI IconPixmap (tray items), and the launcher's desktop-entry
// icons. golang-lru bounds memory use regardless of how many distinct
// windows/tray items have been seen in the session.
type iconCache struct {
	cache *lru.Cache
}

func newIconCache(size int) (*iconCache, error) {
	c, err := lru.New(size)
	if err != nil {
		return nil, err
	}
	return &iconCache{cache: c}, nil
}

func (ic *iconCache) get(key string) (*iconSurface, bool) {
	v, ok := ic.cache.Get(key)
	if !ok {
		return nil, false
	}
	return v.(*iconSurface), true
}

func (ic *iconCache) put(key string, s *iconSurface) {
	ic.cache.Add(key, s)
}

// decodePNG decodes an encoded icon blob (the format themed icons named
// by SNI's IconName and desktop-entry icons commonly use) into an
// iconSurface, caching the result under key.
func (ic *iconCache) decodePNG(key string, data []byte) (*iconSurface, error) {
	if s, ok := ic.get(key); ok {
		return s, nil
	}
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	b := img.Bounds()
	s := &iconSurface{img: img, w: b.Dx(), h: b.Dy()}
	ic.put(key, s)
	return s, nil
}

// decodeARGB32 decodes a raw network-byte-order ARGB32 word stream laid
// out like _NET_WM_ICON: a 2-word width/height header followed by
// width*height 32-bit ARGB pixels. SNI IconPixmap entries carry width and
// height as separate fields (iconPixmapData), not in such a header.
func decodeARGB32(data []byte) (*iconSurface, bool) {
	if len(data) < 8 {
		return nil, false
	}
	be := func(i int) uint32 {
		return uint32(data[i])<<24 | uint32(data[i+1])<<16 | uint32(data[i+2])<<8 | uint32(data[i+3])
	}
	w := int(be(0))
	h := int(be(4))
	if w <= 0 || h <= 0 || len(data) < 8+4*w*h {
		return nil, false
	}
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for p := 0; p < w*h; p++ {
		px := be(8 + 4*p)
		a := byte(px >> 24)
		r := byte(px >> 16)
		g := byte(px >> 8)
		b := byte(px)
		off := p * 4
		img.Pix[off+0] = r
		img.Pix[off+1] = g
		img.Pix[off+2] = b
		img.Pix[off+3] = a
	}
	return &iconSurface{img: img, w: w, h: h}, true
}
