package lzw

import (
	"errors"
	"fmt"
)

// ErrCorruptStream is returned when a code lies outside the valid range
// or references a dictionary slot that is neither populated nor the
// "code not yet in table" case.
var ErrCorruptStream = errors.New("lzw: corrupt code stream")

// Input describes one frame's decode: the minimum code size and active
// color table drive dictionary initialization, and Dest is the
// pre-sized pixel buffer the decoded ARGB run is written into.
type Input struct {
	MinCodeSize      int
	ColorTable       []uint32
	HasTransparency  bool
	TransparentIndex int
	Dest             []uint32
}

// Result reports how much of Dest was filled and whether the decoded
// stream produced more pixels than Dest could hold.
type Result struct {
	Written   int
	Truncated bool
	Overflow  int // pixels dropped because Dest was full
}

// Decode drives a bit reader and dictionary over data, emitting ARGB
// pixel runs into in.Dest left-to-right, top-to-bottom. Decode never
// writes past the end of Dest: once Dest fills, further emits for this
// frame become no-ops and Result.Truncated is set, replacing the
// out-of-bounds crash classic decoders suffer on malformed input with a
// bounded, reported truncation.
func Decode(data []byte, in Input) (Result, error) {
	if len(in.ColorTable) == 0 {
		return Result{}, errors.New("lzw: no active color table")
	}

	r := NewReader(data, in.MinCodeSize)
	d := newDictionary(r, in.MinCodeSize)
	d.initialize(in.ColorTable, in.HasTransparency, in.TransparentIndex)

	out := in.Dest
	pos := 0
	overflowed := false
	attempted := 0

	emit := func(run []uint32) {
		attempted += len(run)
		if overflowed {
			return
		}
		n := len(run)
		if pos+n > len(out) {
			n = len(out) - pos
			overflowed = true
		}
		copy(out[pos:pos+n], run[:n])
		pos += n
	}

	result := func() Result {
		res := Result{Written: pos, Truncated: overflowed}
		if overflowed {
			res.Overflow = attempted - len(out)
		}
		return res
	}

	code, ok := r.Read()
	if code == d.clearCode {
		d.reset()
		code, ok = r.Read()
	}
	run, found := d.get(code)
	if !found {
		return result(), fmt.Errorf("%w: initial code %d", ErrCorruptStream, code)
	}
	emit(run)
	if !ok {
		return result(), nil
	}

	for {
		prev := code
		code, ok = r.Read()

		if code == d.clearCode {
			d.reset()
			code, ok = r.Read()
			run, found = d.get(code)
			if !found {
				return result(), fmt.Errorf("%w: code %d after clear", ErrCorruptStream, code)
			}
			emit(run)
			if !ok {
				return result(), nil
			}
			continue
		}

		if code == d.eoiCode {
			return result(), nil
		}

		switch {
		case code >= 0 && code < d.next:
			run, found = d.get(code)
			if !found {
				return result(), fmt.Errorf("%w: code %d not populated", ErrCorruptStream, code)
			}
			emit(run)

			prevRun, found := d.get(prev)
			if !found {
				return result(), fmt.Errorf("%w: prev code %d not populated", ErrCorruptStream, prev)
			}
			joined := make([]uint32, len(prevRun)+1)
			copy(joined, prevRun)
			joined[len(prevRun)] = run[0]
			d.addEntry(joined)

		case code == d.next:
			// The classic "code not yet in table" case: the encoder
			// referenced the entry it is about to create.
			prevRun, found := d.get(prev)
			if !found {
				return result(), fmt.Errorf("%w: prev code %d not populated", ErrCorruptStream, prev)
			}
			joined := make([]uint32, len(prevRun)+1)
			copy(joined, prevRun)
			joined[len(prevRun)] = prevRun[0]
			emit(joined)
			d.addEntry(joined)

		default:
			return result(), fmt.Errorf("%w: code %d out of range (next=%d)", ErrCorruptStream, code, d.next)
		}

		if !ok {
			return result(), nil
		}
	}
}
