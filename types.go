// Package gifstream decodes GIF87a/GIF89a streams frame by frame,
// optionally compositing each frame onto a logical-screen-sized canvas
// with disposal-method handling, and lets a caller install a block
// filter to skip the parts of the stream it does not need.
package gifstream

import (
	"github.com/pspoerri/gifstream/internal/gif"
)

// Metadata describes the properties of a GIF stream: header version,
// logical screen size, global color table, comments, plain text, loop
// count, and the total frame count discovered by Open's pre-scan.
type Metadata = gif.Metadata

// PlainText is the optional single plain-text extension record.
type PlainText = gif.PlainText

// DecoderContext carries state across independent Open calls, letting a
// stream lacking any color table of its own reuse the most recent
// global color table from a previously opened stream.
type DecoderContext = gif.DecoderContext

// Frame is one decoded image within a GIF stream. Data is sized
// Width*Height unless the Reader was opened with WithCompositing, in which
// case it is sized to the logical screen.
type Frame = gif.Frame

// DisposalMethod is the policy for treating a frame's sub-rectangle
// before the next frame is drawn.
type DisposalMethod = gif.DisposalMethod

const (
	DisposalNone                = gif.DisposalNone
	DisposalDoNotDispose        = gif.DisposalDoNotDispose
	DisposalRestoreToBackground = gif.DisposalRestoreToBackground
	DisposalRestoreToPrevious   = gif.DisposalRestoreToPrevious
)

// Kind classifies a decode failure or warning.
type Kind = gif.Kind

const (
	InvalidSignature      = gif.InvalidSignature
	UnexpectedEndOfStream = gif.UnexpectedEndOfStream
	UnknownBlock          = gif.UnknownBlock
	UnsupportedExtension  = gif.UnsupportedExtension
	MissingColorTable     = gif.MissingColorTable
	CorruptLzwStream      = gif.CorruptLzwStream
	BufferOverflow        = gif.BufferOverflow
	EmptyBlockSize        = gif.EmptyBlockSize
)

// Error is a fatal, stream- or frame-level decode failure.
type Error = gif.Error

// Warning is a non-fatal annotation attached to a Frame.
type Warning = gif.Warning

// BlockFilter is a caller-supplied predicate consulted before each
// container block is consumed; returning true skips the block.
type BlockFilter = gif.Filter

// BlockContext describes the block a BlockFilter is being asked about.
type BlockContext = gif.BlockContext

// BlockKind tags which part of the container a BlockContext describes.
type BlockKind = gif.BlockKind

const (
	BlockLogicalScreenDescriptor = gif.BlockLogicalScreenDescriptor
	BlockGlobalColorTable        = gif.BlockGlobalColorTable
	BlockExtension               = gif.BlockExtension
	BlockImageDescriptor         = gif.BlockImageDescriptor
	BlockLocalColorTable         = gif.BlockLocalColorTable
	BlockImageDataHeader         = gif.BlockImageDataHeader
	BlockImageDataSubBlock       = gif.BlockImageDataSubBlock
)

// Extension subtype labels, valid when BlockContext.Kind == BlockExtension.
const (
	ExtGraphicControl = gif.ExtGraphicControl
	ExtComment        = gif.ExtComment
	ExtPlainText      = gif.ExtPlainText
	ExtApplication    = gif.ExtApplication
)
