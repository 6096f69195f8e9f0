package gifstream

import (
	"errors"
	"io"
)

// byteSliceSource implements internal/gif.Source over an in-memory
// buffer, whether owned (a buffered io.Reader copy) or memory-mapped.
// The frame pre-scan needs Seek; GIFs are bounded in practice, so
// buffering the whole input up front is simpler and more robust than
// trying to precompute the frame count incrementally while decoding.
type byteSliceSource struct {
	data []byte
	pos  int64
}

func newByteSliceSource(data []byte) *byteSliceSource {
	return &byteSliceSource{data: data}
}

func (s *byteSliceSource) Read(p []byte) (int, error) {
	if s.pos >= int64(len(s.data)) {
		return 0, io.EOF
	}
	n := copy(p, s.data[s.pos:])
	s.pos += int64(n)
	return n, nil
}

func (s *byteSliceSource) ReadByte() (byte, error) {
	if s.pos >= int64(len(s.data)) {
		return 0, io.EOF
	}
	b := s.data[s.pos]
	s.pos++
	return b, nil
}

func (s *byteSliceSource) Seek(offset int64, whence int) (int64, error) {
	var abs int64
	switch whence {
	case io.SeekStart:
		abs = offset
	case io.SeekCurrent:
		abs = s.pos + offset
	case io.SeekEnd:
		abs = int64(len(s.data)) + offset
	default:
		return 0, errors.New("gifstream: invalid seek whence")
	}
	if abs < 0 {
		return 0, errors.New("gifstream: negative seek position")
	}
	s.pos = abs
	return abs, nil
}
