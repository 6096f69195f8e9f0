// Command gifdump decodes a GIF file frame by frame, prints its
// metadata and per-frame properties, and optionally writes each frame
// out as a PNG for inspection.
package main

import (
	"flag"
	"fmt"
	"image"
	"image/color"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pspoerri/gifstream"
	"github.com/pspoerri/gifstream/internal/encode"
)

// Set via -ldflags at build time.
var (
	version = "dev"
	commit  = "unknown"
)

func main() {
	var (
		dumpDir       string
		dumpFormat    string
		composite     bool
		verbose       bool
		showVersion   bool
		compareWebP   string
		skipComments  bool
		skipPlainText bool
	)

	flag.StringVar(&dumpDir, "dump-dir", "", "Directory to write each decoded frame as an image (disabled if empty)")
	flag.StringVar(&dumpFormat, "format", "png", "Frame dump encoding: png")
	flag.BoolVar(&composite, "composite", false, "Composite frames onto the logical screen with disposal handling")
	flag.BoolVar(&verbose, "verbose", false, "Print per-frame details")
	flag.BoolVar(&showVersion, "version", false, "Print version and exit")
	flag.StringVar(&compareWebP, "compare-webp", "", "Decode a reference .webp/.png file and report whether it matches the first frame")
	flag.BoolVar(&skipComments, "skip-comments", false, "Skip Comment extensions while parsing")
	flag.BoolVar(&skipPlainText, "skip-plaintext", false, "Skip Plain Text extensions while parsing")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: gifdump [flags] <input.gif>\n\n")
		fmt.Fprintf(os.Stderr, "Decode and inspect a GIF87a/GIF89a stream.\n\n")
		fmt.Fprintf(os.Stderr, "Flags:\n")
		flag.PrintDefaults()
	}

	flag.Parse()

	if showVersion {
		fmt.Printf("gifdump %s (commit %s)\n", version, commit)
		os.Exit(0)
	}

	args := flag.Args()
	if len(args) != 1 {
		flag.Usage()
		os.Exit(1)
	}
	inputPath := args[0]

	start := time.Now()

	var opts []gifstream.Option
	if composite {
		opts = append(opts, gifstream.WithCompositing())
	}

	r, err := gifstream.OpenFile(inputPath, opts...)
	if err != nil {
		log.Fatalf("Opening %s: %v", inputPath, err)
	}
	defer r.Close()

	if skipComments || skipPlainText {
		r.SetFilter(func(ctx gifstream.BlockContext) bool {
			if ctx.Kind != gifstream.BlockExtension {
				return false
			}
			if skipComments && ctx.ExtensionLabel == gifstream.ExtComment {
				return true
			}
			if skipPlainText && ctx.ExtensionLabel == gifstream.ExtPlainText {
				return true
			}
			return false
		})
	}

	meta := r.Metadata()
	fmt.Printf("gifdump %s (commit %s)\n", version, commit)
	fmt.Printf("  %-14s GIF%s\n", "Version:", meta.Version)
	fmt.Printf("  %-14s %dx%d\n", "Logical screen:", meta.Width, meta.Height)
	fmt.Printf("  %-14s %d\n", "Total frames:", meta.TotalFrames)
	fmt.Printf("  %-14s %d\n", "Loop count:", meta.LoopCount)
	fmt.Printf("  %-14s %d\n", "Comments:", len(meta.Comments))
	if meta.PlainText != nil {
		fmt.Printf("  %-14s %q\n", "Plain text:", string(meta.PlainText.Text))
	}

	var enc encode.Encoder
	if dumpDir != "" {
		enc, err = encode.NewEncoder(dumpFormat)
		if err != nil {
			log.Fatalf("Encoder: %v", err)
		}
		if err := os.MkdirAll(dumpDir, 0o755); err != nil {
			log.Fatalf("Creating dump directory: %v", err)
		}
	}

	var (
		index        int
		firstFrame   *gifstream.Frame
		warningCount int
	)
	for {
		frame, err := r.NextFrame()
		if err != nil {
			log.Fatalf("Decoding frame: %v", err)
		}
		if frame == nil {
			if r.HasRemaining() {
				// A block filter suppressed this frame's data entirely.
				continue
			}
			break
		}
		if firstFrame == nil {
			firstFrame = frame
		}
		if frame.Err != nil {
			log.Printf("frame %d: %v", frame.Index, frame.Err)
			index++
			continue
		}
		warningCount += len(frame.Warnings)
		if verbose {
			fmt.Printf("  frame %-4d %dx%d at (%d,%d) disposal=%v delay=%dms transparent=%v\n",
				frame.Index, frame.Width, frame.Height, frame.Left, frame.Top,
				frame.DisposalMethod, frame.Delay*10, frame.TransparencyFlag)
		}
		if enc != nil {
			img := frameToImage(frame, meta, composite)
			data, err := enc.Encode(img)
			if err != nil {
				log.Fatalf("Encoding frame %d: %v", frame.Index, err)
			}
			name := filepath.Join(dumpDir, fmt.Sprintf("frame-%04d%s", frame.Index, enc.FileExtension()))
			if err := os.WriteFile(name, data, 0o644); err != nil {
				log.Fatalf("Writing %s: %v", name, err)
			}
		}
		index++
	}

	if compareWebP != "" {
		if err := compareAgainstReference(compareWebP, firstFrame, meta, composite); err != nil {
			log.Fatalf("Comparing reference image: %v", err)
		}
	}

	elapsed := time.Since(start).Round(time.Millisecond)
	fmt.Printf("Done: %d frame(s) decoded, %d warning(s), %v\n", index, warningCount, elapsed)
}

// frameToImage wraps a decoded frame's ARGB buffer as a standard
// library image.Image, sized to the logical screen in composite mode
// or to the frame's own sub-rectangle otherwise.
func frameToImage(frame *gifstream.Frame, meta *gifstream.Metadata, composite bool) image.Image {
	w, h := frame.Width, frame.Height
	if composite {
		w, h = meta.Width, meta.Height
	}
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for i, px := range frame.Data {
		a := uint8(px >> 24)
		r := uint8(px >> 16)
		g := uint8(px >> 8)
		b := uint8(px)
		img.SetNRGBA(i%w, i/w, color.NRGBA{R: r, G: g, B: b, A: a})
	}
	return img
}

func compareAgainstReference(path string, frame *gifstream.Frame, meta *gifstream.Metadata, composite bool) error {
	if frame == nil {
		return fmt.Errorf("no frames were decoded to compare")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}
	format := "png"
	if strings.HasSuffix(strings.ToLower(path), ".webp") {
		format = "webp"
	}
	ref, err := encode.DecodeReference(data, format)
	if err != nil {
		return fmt.Errorf("decoding reference: %w", err)
	}

	got := frameToImage(frame, meta, composite)
	bounds := got.Bounds()
	if ref.Bounds().Dx() != bounds.Dx() || ref.Bounds().Dy() != bounds.Dy() {
		return fmt.Errorf("dimension mismatch: decoded %v, reference %v", bounds, ref.Bounds())
	}

	var diffCount int
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			gr, gg, gb, ga := got.At(x, y).RGBA()
			rr, rg, rb, ra := ref.At(x+ref.Bounds().Min.X-bounds.Min.X, y+ref.Bounds().Min.Y-bounds.Min.Y).RGBA()
			if gr != rr || gg != rg || gb != rb || ga != ra {
				diffCount++
			}
		}
	}
	fmt.Printf("Comparison: %d pixel(s) differ out of %d\n", diffCount, bounds.Dx()*bounds.Dy())
	return nil
}
