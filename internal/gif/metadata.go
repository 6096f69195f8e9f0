package gif

// Metadata describes the properties of a GIF stream discovered by the
// header, logical screen descriptor, global color table, and the
// frame-count pre-scan. It is created once on open and mutated only by
// the container parser.
type Metadata struct {
	Signature string // always "GIF"
	Version   string // "87a" or "89a"

	Width, Height int

	GlobalColorTableFlag  bool
	ColorResolution       int
	SortFlag              bool
	BackgroundColorIndex  int
	PixelAspectRatio      int
	GlobalColorTable      []uint32 // ARGB, alpha 0xFF; absent when flag clear

	Comments  [][]byte
	PlainText *PlainText

	// LoopCount comes from a NETSCAPE2.0/ANIMEXTS1.0 application
	// extension; 0 means infinite looping and is also the default when
	// no such extension is present.
	LoopCount int

	// TotalFrames is computed by the pre-scan and equals the number of
	// Image Descriptor blocks encountered before the Trailer.
	TotalFrames int
}

// PlainText is the optional single plain-text extension record.
type PlainText struct {
	Left, Top               int
	GridWidth, GridHeight   int
	CellWidth, CellHeight   int
	ForegroundColorIndex    int
	BackgroundColorIndex    int
	Text                    []byte
}

// DecoderContext carries state across independent Open calls so a
// stream lacking any color table at all can reuse the most recent
// global color table from a previously processed stream, per the GIF
// spec's recommendation. It is an explicit object the caller threads
// through, never package-level mutable state.
type DecoderContext struct {
	LastGlobalColorTable []uint32
}
