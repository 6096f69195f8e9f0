package gif

// deinterlace reorders an interlaced sub-image's rows into their final
// scan order. GIF interlacing writes rows in four passes:
//
//	pass 1: rows 0, 8, 16, ...
//	pass 2: rows 4, 12, 20, ...
//	pass 3: rows 2, 6, 10, ...
//	pass 4: rows 1, 3, 5, ...
//
// src holds the rows in that pass order; the returned buffer holds them
// in top-to-bottom scan order.
func deinterlace(src []uint32, width, height int) []uint32 {
	out := make([]uint32, len(src))
	starts := [4]int{0, 4, 2, 1}
	steps := [4]int{8, 8, 4, 2}

	row := 0
	for pass := 0; pass < 4; pass++ {
		for y := starts[pass]; y < height; y += steps[pass] {
			srcOff := row * width
			dstOff := y * width
			if srcOff+width > len(src) || dstOff+width > len(out) {
				break
			}
			copy(out[dstOff:dstOff+width], src[srcOff:srcOff+width])
			row++
		}
	}
	return out
}
