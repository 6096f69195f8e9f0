package composite

import "github.com/pspoerri/gifstream/internal/gif"

// Compositor maintains a logical-screen-sized canvas and applies each
// frame's disposal method before blitting the next, producing a
// screen-sized ARGB image per frame instead of the frame's own
// sub-rectangle. It is not safe for concurrent use; callers that need
// to composite several streams concurrently create one Compositor per
// stream.
type Compositor struct {
	width, height int
	canvas        []uint32
	pending       *pendingDisposal
}

type pendingDisposal struct {
	method           gif.DisposalMethod
	left, top, w, h  int
	snapshot         []uint32 // populated only for DisposalRestoreToPrevious
}

// NewCompositor allocates a canvas sized to the logical screen
// described by a stream's metadata.
func NewCompositor(width, height int) *Compositor {
	return &Compositor{
		width:  width,
		height: height,
		canvas: getCanvas(width, height),
	}
}

// Close returns the compositor's canvas buffer to the pool. The
// Compositor must not be used afterward.
func (c *Compositor) Close() {
	putCanvas(c.canvas)
	c.canvas = nil
}

// Composite applies the previous frame's disposal, blits f's decoded
// sub-image onto the canvas with straight-alpha compositing, and
// returns a screen-sized copy of the resulting canvas. A frame that was
// skipped or failed to decode still has its (absent) disposal applied
// and yields the canvas unchanged.
func (c *Compositor) Composite(f *gif.Frame) []uint32 {
	c.applyPendingDisposal()

	if f.DisposalMethod == gif.DisposalRestoreToPrevious {
		c.pending = &pendingDisposal{
			method:   f.DisposalMethod,
			left:     f.Left,
			top:      f.Top,
			w:        f.Width,
			h:        f.Height,
			snapshot: c.snapshotRect(f.Left, f.Top, f.Width, f.Height),
		}
	} else {
		c.pending = &pendingDisposal{
			method: f.DisposalMethod,
			left:   f.Left,
			top:    f.Top,
			w:      f.Width,
			h:      f.Height,
		}
	}

	if !f.Skipped && f.Err == nil && f.Data != nil {
		c.blit(f)
	}

	out := make([]uint32, len(c.canvas))
	copy(out, c.canvas)
	return out
}

// applyPendingDisposal settles the previous frame's sub-rectangle
// before the current frame is drawn, per its recorded disposal method.
func (c *Compositor) applyPendingDisposal() {
	if c.pending == nil {
		return
	}
	p := c.pending
	c.pending = nil

	switch p.method {
	case gif.DisposalRestoreToBackground:
		c.clearRect(p.left, p.top, p.w, p.h)
	case gif.DisposalRestoreToPrevious:
		c.restoreRect(p.left, p.top, p.w, p.h, p.snapshot)
	case gif.DisposalNone, gif.DisposalDoNotDispose:
		// Canvas is left exactly as the frame drew it.
	}
}

func (c *Compositor) clearRect(left, top, w, h int) {
	for y := 0; y < h; y++ {
		row := top + y
		if row < 0 || row >= c.height {
			continue
		}
		rowOff := row * c.width
		for x := 0; x < w; x++ {
			col := left + x
			if col < 0 || col >= c.width {
				continue
			}
			c.canvas[rowOff+col] = 0
		}
	}
}

func (c *Compositor) snapshotRect(left, top, w, h int) []uint32 {
	snap := make([]uint32, w*h)
	for y := 0; y < h; y++ {
		row := top + y
		if row < 0 || row >= c.height {
			continue
		}
		rowOff := row * c.width
		for x := 0; x < w; x++ {
			col := left + x
			if col < 0 || col >= c.width {
				continue
			}
			snap[y*w+x] = c.canvas[rowOff+col]
		}
	}
	return snap
}

func (c *Compositor) restoreRect(left, top, w, h int, snapshot []uint32) {
	if snapshot == nil {
		c.clearRect(left, top, w, h)
		return
	}
	for y := 0; y < h; y++ {
		row := top + y
		if row < 0 || row >= c.height {
			continue
		}
		rowOff := row * c.width
		for x := 0; x < w; x++ {
			col := left + x
			if col < 0 || col >= c.width {
				continue
			}
			c.canvas[rowOff+col] = snapshot[y*w+x]
		}
	}
}

// blit draws f.Data onto the canvas at f's sub-rectangle using
// straight-alpha compositing: fully opaque pixels replace the canvas,
// fully transparent pixels leave it untouched, and partial alpha blends
// per channel. GIF pixels are only ever fully opaque or fully
// transparent, but the blend formula is general so a compositor reused
// over other ARGB sources behaves correctly too.
func (c *Compositor) blit(f *gif.Frame) {
	for y := 0; y < f.Height; y++ {
		row := f.Top + y
		if row < 0 || row >= c.height {
			continue
		}
		rowOff := row * c.width
		srcRowOff := y * f.Width
		for x := 0; x < f.Width; x++ {
			col := f.Left + x
			if col < 0 || col >= c.width {
				continue
			}
			src := f.Data[srcRowOff+x]
			alpha := src >> 24
			switch alpha {
			case 0:
				// Transparent: canvas shows through unchanged.
			case 0xFF:
				c.canvas[rowOff+col] = src
			default:
				c.canvas[rowOff+col] = blendARGB(src, c.canvas[rowOff+col])
			}
		}
	}
}

func blendARGB(src, dst uint32) uint32 {
	a := src >> 24
	inv := 255 - a
	sr, sg, sb := (src>>16)&0xFF, (src>>8)&0xFF, src&0xFF
	dr, dg, db := (dst>>16)&0xFF, (dst>>8)&0xFF, dst&0xFF
	da := dst >> 24

	outA := a + (da*inv)/255
	outR := (sr*a + dr*inv) / 255
	outG := (sg*a + dg*inv) / 255
	outB := (sb*a + db*inv) / 255
	return outA<<24 | outR<<16 | outG<<8 | outB
}
