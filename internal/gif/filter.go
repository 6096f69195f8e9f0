package gif

// BlockKind tags which part of the container a BlockContext describes,
// so a Filter predicate can make a decision without parsing the block
// itself.
type BlockKind int

const (
	BlockLogicalScreenDescriptor BlockKind = iota
	BlockGlobalColorTable
	BlockExtension
	BlockImageDescriptor
	BlockLocalColorTable
	BlockImageDataHeader
	BlockImageDataSubBlock
)

// Extension subtype labels, used when Kind == BlockExtension.
const (
	ExtGraphicControl = 0xF9
	ExtComment        = 0xFE
	ExtPlainText      = 0x01
	ExtApplication     = 0xFF
)

// BlockContext is the tagged variant passed to a Filter: a predicate
// need only switch on Kind (and ExtensionLabel, when relevant) to
// decide whether to admit or skip a block.
type BlockContext struct {
	Kind           BlockKind
	ExtensionLabel byte // valid when Kind == BlockExtension
	FrameIndex     int
}

// Filter is a caller-supplied predicate consulted before each block is
// consumed. Returning true skips the block — including any trailing
// sub-block chain — without side effects: no decode, no color-table
// read. The predicate must be pure, synchronous, and tolerate being
// invoked many times per frame.
type Filter func(ctx BlockContext) bool

// admitAll is the default filter: it never skips anything.
func admitAll(BlockContext) bool { return false }
