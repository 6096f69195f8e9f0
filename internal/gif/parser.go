package gif

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/pspoerri/gifstream/internal/lzw"
)

// Parser is the block-dispatched state machine described by the GIF
// container format: it reads the header, logical screen descriptor and
// global color table once on Open, then on each Next call advances
// through extension and image blocks until one frame is produced or
// the Trailer is reached.
type Parser struct {
	src    Source
	meta   *Metadata
	ctx    *DecoderContext
	filter Filter

	frameIndex int
	pending    *pendingGCE
	done       bool
}

type pendingGCE struct {
	disposal          DisposalMethod
	userInput         bool
	transparency      bool
	delay             int
	transparentIndex  int
}

// Open parses the header through the global color table and performs
// the frame-count pre-scan. initial, if non-nil, is consulted for the
// logical screen descriptor and global color table blocks — the only
// two block kinds spec.md requires the filter to see that occur before
// a caller could otherwise install one via SetFilter. The pre-scan
// itself always runs under the default admit-all filter regardless of
// initial, so Metadata().TotalFrames always reflects every frame in
// the file; initial (and any filter installed later via SetFilter)
// only affects what Next delivers.
func Open(src Source, ctx *DecoderContext, initial Filter) (*Parser, error) {
	if initial == nil {
		initial = admitAll
	}
	meta := &Metadata{Signature: "GIF"}

	sig, err := readFull(src, 6)
	if err != nil {
		return nil, err
	}
	if sig[0] != 'G' || sig[1] != 'I' || sig[2] != 'F' ||
		sig[3] != '8' || (sig[4] != '7' && sig[4] != '9') || sig[5] != 'a' {
		return nil, newError(InvalidSignature, -1, fmt.Errorf("not a GIF87a/GIF89a signature: %q", sig))
	}
	meta.Version = string(sig[3:6])

	lsd, err := readFull(src, 7)
	if err != nil {
		return nil, err
	}
	meta.Width = int(binary.LittleEndian.Uint16(lsd[0:2]))
	meta.Height = int(binary.LittleEndian.Uint16(lsd[2:4]))
	packed := lsd[4]
	meta.GlobalColorTableFlag = packed&0x80 != 0
	meta.ColorResolution = int((packed>>4)&0x07) + 1
	meta.SortFlag = packed&0x08 != 0
	meta.BackgroundColorIndex = int(lsd[5])
	meta.PixelAspectRatio = int(lsd[6])

	// The logical screen descriptor carries no sub-block chain to skip
	// past; it is mandatory structure every later block depends on, so
	// the predicate is consulted for visibility but cannot suppress it.
	initial(BlockContext{Kind: BlockLogicalScreenDescriptor, FrameIndex: -1})

	if meta.GlobalColorTableFlag && !initial(BlockContext{Kind: BlockGlobalColorTable, FrameIndex: -1}) {
		table, err := readColorTable(src, colorTableSize(packed))
		if err != nil {
			return nil, err
		}
		meta.GlobalColorTable = table
		if ctx != nil {
			ctx.LastGlobalColorTable = table
		}
	} else if meta.GlobalColorTableFlag {
		if err := seekSkip(src, colorTableSize(packed)*3); err != nil {
			return nil, err
		}
	}

	p := &Parser{src: src, meta: meta, ctx: ctx, filter: initial}

	blockLoopStart, err := src.Seek(0, io.SeekCurrent)
	if err != nil {
		return nil, err
	}
	if err := p.prescan(); err != nil {
		return nil, err
	}
	if _, err := src.Seek(blockLoopStart, io.SeekStart); err != nil {
		return nil, err
	}

	return p, nil
}

// Metadata returns the stream's metadata. TotalFrames is authoritative
// once Open returns.
func (p *Parser) Metadata() *Metadata { return p.meta }

// SetFilter attaches the block filter used by subsequent Next calls.
// A nil filter restores the default, which admits every block.
func (p *Parser) SetFilter(f Filter) {
	if f == nil {
		f = admitAll
	}
	p.filter = f
}

// Done reports whether the Trailer has been reached.
func (p *Parser) Done() bool { return p.done }

// Next advances through the block loop until it decodes one frame or
// reaches the Trailer, in which case it returns (nil, nil).
func (p *Parser) Next() (*Frame, error) {
	if p.done {
		return nil, nil
	}
	for {
		b, err := p.src.ReadByte()
		if err != nil {
			p.done = true
			return nil, newError(UnexpectedEndOfStream, -1, err)
		}
		switch b {
		case 0x21:
			if err := p.handleExtension(); err != nil {
				p.done = true
				return nil, err
			}
		case 0x2C:
			frame, err := p.handleImageDescriptor()
			if err != nil {
				p.done = true
				return nil, err
			}
			return frame, nil
		case 0x3B:
			p.done = true
			return nil, nil
		default:
			p.done = true
			return nil, newError(UnknownBlock, -1, fmt.Errorf("block id 0x%02X", b))
		}
	}
}

func (p *Parser) handleExtension() error {
	label, err := p.src.ReadByte()
	if err != nil {
		return newError(UnexpectedEndOfStream, -1, err)
	}

	switch label {
	case ExtGraphicControl:
		return p.handleGraphicControl()
	case ExtComment:
		return p.handleComment()
	case ExtPlainText:
		return p.handlePlainText()
	case ExtApplication:
		return p.handleApplication()
	default:
		p.filter(BlockContext{Kind: BlockExtension, ExtensionLabel: label, FrameIndex: p.frameIndex})
		return skipSubBlocks(p.src)
	}
}

func (p *Parser) handleGraphicControl() error {
	if p.filter(BlockContext{Kind: BlockExtension, ExtensionLabel: ExtGraphicControl, FrameIndex: p.frameIndex}) {
		return skipSubBlocks(p.src)
	}
	data, err := readSubBlocks(p.src)
	if err != nil {
		return err
	}
	if len(data) == 0 {
		return newError(EmptyBlockSize, -1, fmt.Errorf("graphic control extension has no payload"))
	}
	if len(data) < 4 {
		return newError(UnexpectedEndOfStream, -1, fmt.Errorf("graphic control extension payload too short"))
	}
	packed := data[0]
	p.pending = &pendingGCE{
		disposal:         disposalFromRaw((packed >> 2) & 0x07),
		userInput:        packed&0x02 != 0,
		transparency:     packed&0x01 != 0,
		delay:            int(binary.LittleEndian.Uint16(data[1:3])),
		transparentIndex: int(data[3]),
	}
	return nil
}

func (p *Parser) handleComment() error {
	if p.filter(BlockContext{Kind: BlockExtension, ExtensionLabel: ExtComment, FrameIndex: p.frameIndex}) {
		return skipSubBlocks(p.src)
	}
	data, err := readSubBlocks(p.src)
	if err != nil {
		return err
	}
	if len(data) > 0 {
		p.meta.Comments = append(p.meta.Comments, data)
	}
	return nil
}

func (p *Parser) handlePlainText() error {
	if p.filter(BlockContext{Kind: BlockExtension, ExtensionLabel: ExtPlainText, FrameIndex: p.frameIndex}) {
		return skipSubBlocks(p.src)
	}
	data, err := readSubBlocks(p.src)
	if err != nil {
		return err
	}
	if len(data) == 0 {
		return newError(EmptyBlockSize, -1, fmt.Errorf("plain text extension has no payload"))
	}
	if len(data) < 12 {
		return newError(UnexpectedEndOfStream, -1, fmt.Errorf("plain text extension payload too short"))
	}
	pt := &PlainText{
		Left:                 int(binary.LittleEndian.Uint16(data[0:2])),
		Top:                  int(binary.LittleEndian.Uint16(data[2:4])),
		GridWidth:            int(binary.LittleEndian.Uint16(data[4:6])),
		GridHeight:           int(binary.LittleEndian.Uint16(data[6:8])),
		CellWidth:            int(data[8]),
		CellHeight:           int(data[9]),
		ForegroundColorIndex: int(data[10]),
		BackgroundColorIndex: int(data[11]),
		Text:                 append([]byte{}, data[12:]...),
	}
	p.meta.PlainText = pt
	return nil
}

func (p *Parser) handleApplication() error {
	if p.filter(BlockContext{Kind: BlockExtension, ExtensionLabel: ExtApplication, FrameIndex: p.frameIndex}) {
		return skipSubBlocks(p.src)
	}
	data, err := readSubBlocks(p.src)
	if err != nil {
		return err
	}
	if len(data) == 0 {
		return newError(EmptyBlockSize, -1, fmt.Errorf("application extension has no payload"))
	}
	if len(data) < 11 {
		// Malformed application identifier/auth code; not worth
		// aborting the whole stream over an extension we only read
		// for an optional loop count.
		return nil
	}
	id := string(data[0:8])
	auth := string(data[8:11])
	if (id == "NETSCAPE" && auth == "2.0") || (id == "ANIMEXTS" && auth == "1.0") {
		if len(data) >= 14 && data[11] == 1 {
			p.meta.LoopCount = int(binary.LittleEndian.Uint16(data[12:14]))
		}
	}
	return nil
}

func (p *Parser) handleImageDescriptor() (*Frame, error) {
	idx := p.frameIndex
	p.frameIndex++

	filtered := p.filter(BlockContext{Kind: BlockImageDescriptor, FrameIndex: idx})

	desc, err := readFull(p.src, 9)
	if err != nil {
		return nil, err
	}
	packed := desc[8]
	frame := &Frame{
		Index:               idx,
		Left:                int(binary.LittleEndian.Uint16(desc[0:2])),
		Top:                 int(binary.LittleEndian.Uint16(desc[2:4])),
		Width:               int(binary.LittleEndian.Uint16(desc[4:6])),
		Height:              int(binary.LittleEndian.Uint16(desc[6:8])),
		InterlaceFlag:       packed&0x40 != 0,
		SortFlag:            packed&0x20 != 0,
		LocalColorTableFlag: packed&0x80 != 0,
	}
	if frame.LocalColorTableFlag {
		frame.LocalColorTableSize = colorTableSize(packed)
	}
	if p.pending != nil {
		frame.DisposalMethod = p.pending.disposal
		frame.UserInputFlag = p.pending.userInput
		frame.TransparencyFlag = p.pending.transparency
		frame.Delay = p.pending.delay
		frame.TransparencyIndex = p.pending.transparentIndex
		p.pending = nil
	}

	if frame.LocalColorTableFlag {
		if p.filter(BlockContext{Kind: BlockLocalColorTable, FrameIndex: idx}) {
			if err := seekSkip(p.src, frame.LocalColorTableSize*3); err != nil {
				return nil, err
			}
		} else {
			table, err := readColorTable(p.src, frame.LocalColorTableSize)
			if err != nil {
				return nil, err
			}
			frame.LocalColorTable = table
		}
	}

	minCodeSizeByte, err := readFull(p.src, 1)
	if err != nil {
		return nil, err
	}
	frame.MinCodeSize = int(minCodeSizeByte[0])
	frame.ClearCode = 1 << uint(frame.MinCodeSize)
	frame.EndOfInfoCode = frame.ClearCode + 1

	headerFiltered := p.filter(BlockContext{Kind: BlockImageDataHeader, FrameIndex: idx})
	if filtered || headerFiltered {
		frame.Skipped = true
		if err := skipImageDataSubBlocks(p.src, p.filter, idx); err != nil {
			return nil, err
		}
		return frame, nil
	}

	compressed, err := readImageDataSubBlocks(p.src, p.filter, idx)
	if err != nil {
		return nil, err
	}

	if frame.MinCodeSize < 2 || frame.MinCodeSize > 8 {
		frame.Err = newError(CorruptLzwStream, idx, fmt.Errorf("invalid LZW minimum code size %d", frame.MinCodeSize))
		return frame, nil
	}

	table, tableErr := frame.activeColorTable(p.meta, p.ctx)
	if tableErr != nil {
		frame.Err = tableErr.(*Error)
		return frame, nil
	}

	dest := make([]uint32, frame.Width*frame.Height)
	result, decodeErr := lzw.Decode(compressed, lzw.Input{
		MinCodeSize:      frame.MinCodeSize,
		ColorTable:       table,
		HasTransparency:  frame.TransparencyFlag,
		TransparentIndex: frame.TransparencyIndex,
		Dest:             dest,
	})
	if decodeErr != nil {
		frame.Err = newError(CorruptLzwStream, idx, decodeErr)
		return frame, nil
	}
	if result.Truncated {
		frame.Warnings = append(frame.Warnings, Warning{Kind: BufferOverflow, Count: result.Overflow})
	}
	if frame.InterlaceFlag {
		dest = deinterlace(dest, frame.Width, frame.Height)
	}
	frame.Data = dest
	return frame, nil
}

func seekSkip(r Source, n int) error {
	if n == 0 {
		return nil
	}
	_, err := r.Seek(int64(n), io.SeekCurrent)
	return err
}

// readImageDataSubBlocks concatenates the LZW sub-block chain,
// consulting the filter per individual sub-block as the spec requires
// for image data specifically (finer grain than the whole-block checks
// used for extensions and descriptors).
func readImageDataSubBlocks(r Source, filter Filter, frameIndex int) ([]byte, error) {
	var out []byte
	for {
		size, err := r.ReadByte()
		if err != nil {
			return nil, newError(UnexpectedEndOfStream, -1, err)
		}
		if size == 0 {
			return out, nil
		}
		if filter(BlockContext{Kind: BlockImageDataSubBlock, FrameIndex: frameIndex}) {
			if err := seekSkip(r, int(size)); err != nil {
				return nil, err
			}
			continue
		}
		chunk, err := readFull(r, int(size))
		if err != nil {
			return nil, err
		}
		out = append(out, chunk...)
	}
}

func skipImageDataSubBlocks(r Source, filter Filter, frameIndex int) error {
	for {
		size, err := r.ReadByte()
		if err != nil {
			return newError(UnexpectedEndOfStream, -1, err)
		}
		if size == 0 {
			return nil
		}
		filter(BlockContext{Kind: BlockImageDataSubBlock, FrameIndex: frameIndex})
		if err := seekSkip(r, int(size)); err != nil {
			return err
		}
	}
}

// prescan performs a minimal pass from the start of the block loop
// that skips every payload but counts Image Descriptor occurrences,
// stopping at the Trailer or EOF. It consults no filter, not even the
// initial one passed to Open, so Metadata.TotalFrames is unaffected by
// filtering.
func (p *Parser) prescan() error {
	count := 0
	for {
		b, err := p.src.ReadByte()
		if err != nil {
			// EOF while expecting the next block identifier: the
			// stream is missing its Trailer, but the spec allows
			// stopping at EOF rather than failing pre-scan outright.
			p.meta.TotalFrames = count
			return nil
		}
		switch b {
		case 0x21:
			if _, err := p.src.ReadByte(); err != nil {
				return newError(UnexpectedEndOfStream, -1, err)
			}
			if err := skipSubBlocks(p.src); err != nil {
				return err
			}
		case 0x2C:
			count++
			desc, err := readFull(p.src, 9)
			if err != nil {
				return err
			}
			packed := desc[8]
			if packed&0x80 != 0 {
				if err := seekSkip(p.src, colorTableSize(packed)*3); err != nil {
					return err
				}
			}
			if _, err := p.src.ReadByte(); err != nil {
				return newError(UnexpectedEndOfStream, -1, err)
			}
			if err := skipSubBlocks(p.src); err != nil {
				return err
			}
		case 0x3B:
			p.meta.TotalFrames = count
			return nil
		default:
			return newError(UnknownBlock, -1, fmt.Errorf("block id 0x%02X", b))
		}
	}
}
