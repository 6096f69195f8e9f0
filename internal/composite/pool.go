// Package composite turns a sequence of decoded GIF frames into
// full-canvas ARGB images, applying each frame's disposal method before
// the next is blitted.
package composite

import "sync"

// canvasPools maps buffer length -> *sync.Pool of []uint32 canvases.
// A sync.Map avoids a mutex on the hot path; a single stream only ever
// produces one logical screen size, so the map stays tiny.
var canvasPools sync.Map

// getCanvas returns a zeroed canvas buffer of w*h pixels from the pool,
// or allocates a new one.
func getCanvas(w, h int) []uint32 {
	n := w * h
	if p, ok := canvasPools.Load(n); ok {
		if v := p.(*sync.Pool).Get(); v != nil {
			buf := v.([]uint32)
			clear(buf)
			return buf
		}
	}
	return make([]uint32, n)
}

// putCanvas returns a canvas buffer to the pool for reuse. Nil slices
// are silently ignored.
func putCanvas(buf []uint32) {
	if buf == nil {
		return
	}
	p, _ := canvasPools.LoadOrStore(len(buf), &sync.Pool{})
	p.(*sync.Pool).Put(buf)
}
