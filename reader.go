package gifstream

import (
	"fmt"
	"io"
	"os"

	"github.com/pspoerri/gifstream/internal/composite"
	"github.com/pspoerri/gifstream/internal/gif"
)

// Option configures a Reader at Open/OpenFile time.
type Option func(*options)

type options struct {
	ctx       *DecoderContext
	composite bool
	filter    BlockFilter
}

// WithDecoderContext installs a DecoderContext the Reader consults and
// updates for cross-stream global-color-table memory.
func WithDecoderContext(ctx *DecoderContext) Option {
	return func(o *options) { o.ctx = ctx }
}

// WithFilter installs the block filter from the very start of Open,
// so it is consulted for the logical screen descriptor and global
// color table blocks too — the only block kinds that occur before a
// filter installed via SetFilter could take effect. Equivalent to
// SetFilter for every block kind that occurs after Open returns.
func WithFilter(filter BlockFilter) Option {
	return func(o *options) { o.filter = filter }
}

// WithCompositing enables disposal-aware canvas compositing: NextFrame
// then returns screen-sized images instead of each frame's own
// sub-rectangle.
func WithCompositing() Option {
	return func(o *options) { o.composite = true }
}

// Reader is a pull-style facade over the container parser and, when
// compositing is enabled, the frame compositor. Call NextFrame
// repeatedly until it returns (nil, nil) at the stream's Trailer.
type Reader struct {
	parser     *gif.Parser
	compositor *composite.Compositor

	closer io.Closer
	mapped []byte

	delivered int
}

// Open reads all of r into memory, then parses the GIF stream's header
// and pre-scans its frame count. The returned Reader decodes from that
// in-memory copy; it does not read from r again and never closes r.
func Open(r io.Reader, opts ...Option) (*Reader, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("gifstream: read input: %w", err)
	}
	return open(newByteSliceSource(data), nil, opts...)
}

// OpenFile memory-maps path read-only and opens a Reader over it,
// avoiding a full read into a heap buffer for large files. Close
// releases the mapping.
func OpenFile(path string, opts ...Option) (*Reader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("gifstream: open %s: %w", path, err)
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("gifstream: stat %s: %w", path, err)
	}
	size := int(info.Size())
	data, err := mmapFile(f.Fd(), size)
	if err != nil {
		// Fall back to a buffered read when mmap isn't available
		// (e.g. non-Unix platforms); the pre-scan still needs Seek.
		f.Close()
		raw, readErr := os.ReadFile(path)
		if readErr != nil {
			return nil, fmt.Errorf("gifstream: read %s: %w", path, readErr)
		}
		src := newByteSliceSource(raw)
		return open(src, nil, opts...)
	}
	f.Close()
	src := newByteSliceSource(data)
	r, err := open(src, nil, opts...)
	if err != nil {
		munmapFile(data)
		return nil, err
	}
	r.mapped = data
	return r, nil
}

func open(src gif.Source, closer io.Closer, opts ...Option) (*Reader, error) {
	o := &options{}
	for _, opt := range opts {
		opt(o)
	}

	p, err := gif.Open(src, o.ctx, o.filter)
	if err != nil {
		return nil, err
	}

	r := &Reader{parser: p, closer: closer}
	if o.composite {
		m := p.Metadata()
		r.compositor = composite.NewCompositor(m.Width, m.Height)
	}
	return r, nil
}

// Metadata returns the stream's header and pre-scan results.
func (r *Reader) Metadata() *Metadata { return r.parser.Metadata() }

// TotalFrames returns the pre-scanned frame count.
func (r *Reader) TotalFrames() int { return r.parser.Metadata().TotalFrames }

// HasRemaining reports whether the Trailer has not yet been reached.
func (r *Reader) HasRemaining() bool { return !r.parser.Done() }

// SetFilter installs the block filter consulted by subsequent
// NextFrame calls. A nil filter restores the default, which admits
// every block.
func (r *Reader) SetFilter(filter BlockFilter) { r.parser.SetFilter(filter) }

// NextFrame decodes and returns the next frame, or (nil, nil) once the
// Trailer is reached. A frame suppressed entirely by the block filter
// still advances the internal frame counter but is reported to the
// caller as (nil, nil) rather than a Frame with Skipped set, matching
// the pull-style contract: filtered frames are invisible to callers
// that only check for a nil return.
func (r *Reader) NextFrame() (*Frame, error) {
	frame, err := r.parser.Next()
	if err != nil {
		return nil, err
	}
	if frame == nil {
		return nil, nil
	}
	r.delivered++

	if r.compositor != nil {
		canvas := r.compositor.Composite(frame)
		if frame.Err == nil {
			frame.Data = canvas
		}
	}

	if frame.Skipped {
		return nil, nil
	}
	return frame, nil
}

// Close releases the Reader's resources: an mmap'd file mapping, the
// compositor's pooled canvas, and the underlying source if it was
// opened by this package.
func (r *Reader) Close() error {
	if r.compositor != nil {
		r.compositor.Close()
		r.compositor = nil
	}
	var err error
	if r.mapped != nil {
		err = munmapFile(r.mapped)
		r.mapped = nil
	}
	if r.closer != nil {
		if cerr := r.closer.Close(); err == nil {
			err = cerr
		}
		r.closer = nil
	}
	return err
}
