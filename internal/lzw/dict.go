package lzw

// maxCodes is the fixed LZW table size: 12-bit codes, 4096 slots.
const maxCodes = 4096

// dictionary holds one pixel run per code slot. A run-per-slot table
// pays a memory cost bounded by the longest emitted run (at most 4096
// pixels) in exchange for a decode that never walks a parent chain.
type dictionary struct {
	entries [maxCodes][]uint32
	set     [maxCodes]bool

	clearCode int
	eoiCode   int
	next      int

	reader *Reader
}

func newDictionary(r *Reader, minCodeSize int) *dictionary {
	clear := 1 << uint(minCodeSize)
	return &dictionary{clearCode: clear, eoiCode: clear + 1, reader: r}
}

// initialize fills slots [0, len(colorTable)) with single-pixel runs
// drawn from the active color table, marks the clear/EOI sentinels, and
// resets the reader's code width. If hasTransparency, the slot at
// transparentIndex is overwritten with a single transparent (zero ARGB)
// pixel per the GIF spec's transparency handling.
func (d *dictionary) initialize(colorTable []uint32, hasTransparency bool, transparentIndex int) {
	for i := range d.entries {
		d.entries[i] = nil
		d.set[i] = false
	}
	for i, c := range colorTable {
		if i >= maxCodes {
			break
		}
		d.entries[i] = []uint32{c}
		d.set[i] = true
	}
	if hasTransparency && transparentIndex >= 0 && transparentIndex < maxCodes {
		d.entries[transparentIndex] = []uint32{0}
		d.set[transparentIndex] = true
	}
	d.set[d.clearCode] = true
	d.set[d.eoiCode] = true
	d.next = d.eoiCode + 1
	d.reader.ResetCodeSize()
}

// reset reinstates the post-initialize state without reallocating any
// of the color-table-derived entries.
func (d *dictionary) reset() {
	d.next = d.eoiCode + 1
	d.reader.ResetCodeSize()
}

// addEntry appends run at the next free code, silently dropping it if
// the table is already full (4096 entries). It then grows the reader's
// code width by one bit, if not already at the 12-bit cap, exactly when
// the new next code reaches the current width's capacity.
func (d *dictionary) addEntry(run []uint32) {
	if d.next < maxCodes {
		d.entries[d.next] = run
		d.set[d.next] = true
		d.next++
	}
	width := uint(d.reader.CodeSize())
	if d.next == (1<<width)-1 && width < 12 {
		d.reader.GrowCodeSize()
	}
}

// get returns the run stored at code, and whether that slot is
// populated.
func (d *dictionary) get(code int) ([]uint32, bool) {
	if code < 0 || code >= maxCodes || !d.set[code] {
		return nil, false
	}
	return d.entries[code], true
}
