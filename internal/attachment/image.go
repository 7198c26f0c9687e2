package attachment

import (
	"bytes"
	"image"
	"image/jpeg"
	"math"
	"os"
	"time"

	_ "image/gif"
	_ "image/png"

	"golang.org/x/image/draw"

	"github.com/daispacy/qcreport/pkg/types"
)

// processImage decodes the screenshot, downscales it to fit the target
// frame while preserving aspect ratio, and re-encodes it as JPEG. The
// output MIME type is image/jpeg regardless of the input extension, and
// an image already inside the frame is never upscaled.
func (p *Processor) processImage(att types.Attachment) (Processed, error) {
	f, err := os.Open(att.SourcePath)
	if err != nil {
		return Processed{}, &ProcessError{Path: att.SourcePath, Op: "read", Cause: err.Error()}
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return Processed{}, &ProcessError{Path: att.SourcePath, Op: "decode", Cause: err.Error()}
	}

	img, w, h := fitToFrame(img, p.cfg.MaxWidth, p.cfg.MaxHeight)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: p.cfg.JPEGQuality}); err != nil {
		return Processed{}, &ProcessError{Path: att.SourcePath, Op: "encode", Cause: err.Error()}
	}

	return Processed{
		Kind:      att.Kind,
		FileName:  outputName(att.SourcePath, ".jpg"),
		MIMEType:  "image/jpeg",
		Timestamp: att.CapturedAt.UTC().Format(time.RFC3339),
		Size:      int64(buf.Len()),
		Width:     &w,
		Height:    &h,
		Data:      buf.Bytes(),
	}, nil
}

// fitToFrame downscales src proportionally so neither dimension exceeds
// the frame. Images already within the frame pass through unchanged.
func fitToFrame(src image.Image, maxW, maxH int) (image.Image, int, int) {
	b := src.Bounds()
	w, h := b.Dx(), b.Dy()
	if w <= maxW && h <= maxH {
		return src, w, h
	}

	scale := math.Min(float64(maxW)/float64(w), float64(maxH)/float64(h))
	nw := int(math.Round(float64(w) * scale))
	nh := int(math.Round(float64(h) * scale))
	if nw < 1 {
		nw = 1
	}
	if nh < 1 {
		nh = 1
	}

	dst := image.NewRGBA(image.Rect(0, 0, nw, nh))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, b, draw.Over, nil)
	return dst, nw, nh
}
