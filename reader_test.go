package gifstream

import (
	"bytes"
	"testing"
)

// S2: same 1x1 image as S1 but with the global color table entries
// swapped and the emitted code changed to reference the new slot for
// white, confirming decode follows the table rather than hardcoding
// slot 0 as white.
func TestReader_S2_SwappedColorTable(t *testing.T) {
	data := []byte{
		0x47, 0x49, 0x46, 0x38, 0x39, 0x61,
		0x01, 0x00, 0x01, 0x00, 0x80, 0x00, 0x00,
		0x00, 0x00, 0x00, 0xFF, 0xFF, 0xFF, // black, white (swapped from S1)
		0x2C, 0x00, 0x00, 0x00, 0x00, 0x01, 0x00, 0x01, 0x00, 0x00,
		0x02, 0x02, 0x4C, 0x01, 0x00, // emits code 1
		0x3B,
	}
	r, err := Open(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer r.Close()

	frame, err := r.NextFrame()
	if err != nil {
		t.Fatalf("NextFrame: %v", err)
	}
	if frame == nil {
		t.Fatal("NextFrame returned nil")
	}
	if frame.Data[0] != 0xFFFFFFFF {
		t.Fatalf("Data[0] = %#x, want 0xFFFFFFFF", frame.Data[0])
	}
}

// S5: a 2x2 image whose color table is {black, white, red, blue} and
// whose codes {0,1,2,3} map straight onto the table in scan order.
func TestReader_S5_TwoByTwoLiteralCodes(t *testing.T) {
	data := []byte{
		0x47, 0x49, 0x46, 0x38, 0x39, 0x61,
		0x02, 0x00, 0x02, 0x00, 0x81, 0x00, 0x00, // 2x2, GCT flag+size=4
		0x00, 0x00, 0x00, 0xFF, 0xFF, 0xFF, 0xFF, 0x00, 0x00, 0x00, 0x00, 0xFF, // black, white, red, blue
		0x2C, 0x00, 0x00, 0x00, 0x00, 0x02, 0x00, 0x02, 0x00, 0x00,
		0x02, 0x03, 0x44, 0x64, 0x0A, 0x00, // min_code_size=2, codes 0,1,2,3
		0x3B,
	}
	r, err := Open(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer r.Close()

	if r.TotalFrames() != 1 {
		t.Fatalf("TotalFrames = %d, want 1", r.TotalFrames())
	}
	frame, err := r.NextFrame()
	if err != nil {
		t.Fatalf("NextFrame: %v", err)
	}
	want := []uint32{0xFF000000, 0xFFFFFFFF, 0xFFFF0000, 0xFF0000FF}
	if len(frame.Data) != 4 {
		t.Fatalf("len(Data) = %d, want 4", len(frame.Data))
	}
	for i := range want {
		if frame.Data[i] != want[i] {
			t.Fatalf("Data[%d] = %#x, want %#x", i, frame.Data[i], want[i])
		}
	}
}

// S6: a two-frame stream in compositor mode. Frame A is 2x2 with
// RestoreToBackground disposal; frame B is 1x1 at (0,0). Frame B's
// composited canvas must show frame B's color at (0,0) and transparent
// everywhere else, because frame A's disposal clears its rectangle
// before frame B is drawn.
func TestReader_S6_CompositingAppliesDisposal(t *testing.T) {
	data := []byte{
		0x47, 0x49, 0x46, 0x38, 0x39, 0x61,
		0x02, 0x00, 0x02, 0x00, 0x80, 0x00, 0x00, // 2x2 screen, GCT flag+size=2
		0xAA, 0xAA, 0xAA, 0x12, 0x34, 0x56, // colorA, colorB
		0x21, 0xF9, 0x04, 0x08, 0x00, 0x00, 0x00, 0x00, // GCE: disposal=RestoreToBackground
		0x2C, 0x00, 0x00, 0x00, 0x00, 0x02, 0x00, 0x02, 0x00, 0x00, // frame A: 2x2 at (0,0)
		0x02, 0x03, 0x04, 0x00, 0x0A, 0x00, // codes: clear,0,0,0,0,eoi -> all colorA
		0x2C, 0x00, 0x00, 0x00, 0x00, 0x01, 0x00, 0x01, 0x00, 0x00, // frame B: 1x1 at (0,0)
		0x02, 0x02, 0x4C, 0x01, 0x00, // codes: clear,1,eoi -> colorB
		0x3B,
	}
	r, err := Open(bytes.NewReader(data), WithCompositing())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer r.Close()

	frameA, err := r.NextFrame()
	if err != nil {
		t.Fatalf("NextFrame (A): %v", err)
	}
	if len(frameA.Data) != 4 {
		t.Fatalf("frame A canvas len = %d, want 4 (screen-sized)", len(frameA.Data))
	}

	frameB, err := r.NextFrame()
	if err != nil {
		t.Fatalf("NextFrame (B): %v", err)
	}
	if frameB.Data[0] != 0xFF123456 {
		t.Fatalf("(0,0) = %#x, want frame B color 0xFF123456", frameB.Data[0])
	}
	for _, idx := range []int{1, 2, 3} {
		if frameB.Data[idx] != 0x00000000 {
			t.Fatalf("Data[%d] = %#x, want transparent", idx, frameB.Data[idx])
		}
	}

	done, err := r.NextFrame()
	if err != nil {
		t.Fatalf("NextFrame (trailer): %v", err)
	}
	if done != nil {
		t.Fatalf("expected nil at trailer, got %+v", done)
	}
}

func TestReader_SetFilter_SkipsFrameAsNil(t *testing.T) {
	data := []byte{
		0x47, 0x49, 0x46, 0x38, 0x39, 0x61,
		0x01, 0x00, 0x01, 0x00, 0x80, 0x00, 0x00,
		0xFF, 0xFF, 0xFF, 0x00, 0x00, 0x00,
		0x2C, 0x00, 0x00, 0x00, 0x00, 0x01, 0x00, 0x01, 0x00, 0x00,
		0x02, 0x02, 0x44, 0x01, 0x00,
		0x3B,
	}
	r, err := Open(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer r.Close()

	r.SetFilter(func(ctx BlockContext) bool {
		return ctx.Kind == BlockImageDataHeader
	})

	frame, err := r.NextFrame()
	if err != nil {
		t.Fatalf("NextFrame: %v", err)
	}
	if frame != nil {
		t.Fatalf("NextFrame = %+v, want nil for a filtered frame", frame)
	}
	if !r.HasRemaining() {
		t.Fatal("HasRemaining() = false, want true before the Trailer is reached")
	}

	done, err := r.NextFrame()
	if err != nil {
		t.Fatalf("NextFrame (trailer): %v", err)
	}
	if done != nil {
		t.Fatalf("expected nil at trailer, got %+v", done)
	}
	if r.HasRemaining() {
		t.Fatal("HasRemaining() = true, want false after the Trailer")
	}
}

// WithFilter sees blocks SetFilter cannot: the global color table is
// consulted during Open itself, before a caller could otherwise
// install a filter. Skipping it here means the frame has no active
// color table, so it fails with MissingColorTable rather than
// decoding against the table that was never read.
func TestReader_WithFilter_SkipsGlobalColorTable(t *testing.T) {
	data := []byte{
		0x47, 0x49, 0x46, 0x38, 0x39, 0x61,
		0x01, 0x00, 0x01, 0x00, 0x80, 0x00, 0x00,
		0xFF, 0xFF, 0xFF, 0x00, 0x00, 0x00,
		0x2C, 0x00, 0x00, 0x00, 0x00, 0x01, 0x00, 0x01, 0x00, 0x00,
		0x02, 0x02, 0x44, 0x01, 0x00,
		0x3B,
	}
	r, err := Open(bytes.NewReader(data), WithFilter(func(ctx BlockContext) bool {
		return ctx.Kind == BlockGlobalColorTable
	}))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer r.Close()

	if r.Metadata().GlobalColorTable != nil {
		t.Fatalf("GlobalColorTable = %v, want nil (filtered, never read)", r.Metadata().GlobalColorTable)
	}

	frame, err := r.NextFrame()
	if err != nil {
		t.Fatalf("NextFrame: %v", err)
	}
	if frame.Err == nil || frame.Err.Kind != MissingColorTable {
		t.Fatalf("frame.Err = %v, want MissingColorTable", frame.Err)
	}
}

func TestReader_InvalidSignatureReturnsError(t *testing.T) {
	_, err := Open(bytes.NewReader([]byte("not a gif at all, just text")))
	if err == nil {
		t.Fatal("want error for invalid signature")
	}
	gerr, ok := err.(*Error)
	if !ok || gerr.Kind != InvalidSignature {
		t.Fatalf("err = %#v, want *Error{Kind: InvalidSignature}", err)
	}
}
