package attachment

import (
	"context"
	"math"
	"os"
	"time"

	"github.com/daispacy/qcreport/pkg/types"
)

// ExportPreset is the quality tier used for a screen-recording export.
type ExportPreset string

const (
	// PresetLow targets 640x480 output.
	PresetLow ExportPreset = "640x480"
	// PresetMedium targets 960x540 output.
	PresetMedium ExportPreset = "960x540"
	// PresetHigh targets 1280x720 output.
	PresetHigh ExportPreset = "1280x720"
	// PresetHighest keeps the source resolution; no resizing.
	PresetHighest ExportPreset = "highest"
)

// presetFor picks the export tier from the target frame's largest
// dimension.
func presetFor(frameMax int) ExportPreset {
	switch {
	case frameMax <= 640:
		return PresetLow
	case frameMax <= 960:
		return PresetMedium
	case frameMax <= 1280:
		return PresetHigh
	default:
		return PresetHighest
	}
}

// ExportRequest describes one video export.
type ExportRequest struct {
	SourcePath string
	DestPath   string
	Preset     ExportPreset

	// MaxWidth and MaxHeight cap the output frame. A source already
	// within the frame must pass through unscaled; a larger source is
	// fit with a single uniform scale.
	MaxWidth  int
	MaxHeight int
}

// ExportResult reports the actual output geometry and duration.
type ExportResult struct {
	Width  int
	Height int

	// Duration in seconds. May be NaN or Inf when the container did
	// not yield a finite value.
	Duration float64
}

// VideoExporter performs the transcode. The default implementation
// shells out to ffmpeg; tests inject fakes.
type VideoExporter interface {
	Export(ctx context.Context, req ExportRequest) (ExportResult, error)
}

// processVideo verifies the recording is readable, exports it through
// the configured exporter into a temporary file, reads the result into
// memory and removes the temporary file on every exit path.
func (p *Processor) processVideo(ctx context.Context, att types.Attachment) (Processed, error) {
	src, err := os.Open(att.SourcePath)
	if err != nil {
		return Processed{}, &ProcessError{Path: att.SourcePath, Op: "read", Cause: err.Error()}
	}
	src.Close()

	tmp, err := os.CreateTemp("", "qcreport-export-*.mp4")
	if err != nil {
		return Processed{}, &ProcessError{Path: att.SourcePath, Op: "export", Cause: err.Error()}
	}
	tmpPath := tmp.Name()
	tmp.Close()
	defer os.Remove(tmpPath) // best-effort, even on failure

	frameMax := p.cfg.MaxWidth
	if p.cfg.MaxHeight > frameMax {
		frameMax = p.cfg.MaxHeight
	}

	res, err := p.exporter.Export(ctx, ExportRequest{
		SourcePath: att.SourcePath,
		DestPath:   tmpPath,
		Preset:     presetFor(frameMax),
		MaxWidth:   p.cfg.MaxWidth,
		MaxHeight:  p.cfg.MaxHeight,
	})
	if err != nil {
		return Processed{}, &ProcessError{Path: att.SourcePath, Op: "export", Cause: err.Error()}
	}

	data, err := os.ReadFile(tmpPath)
	if err != nil {
		return Processed{}, &ProcessError{Path: att.SourcePath, Op: "export", Cause: err.Error()}
	}

	out := Processed{
		Kind:      att.Kind,
		FileName:  outputName(att.SourcePath, ".mp4"),
		MIMEType:  "video/mp4",
		Timestamp: att.CapturedAt.UTC().Format(time.RFC3339),
		Size:      int64(len(data)),
		Data:      data,
	}
	if res.Width > 0 {
		w := res.Width
		out.Width = &w
	}
	if res.Height > 0 {
		h := res.Height
		out.Height = &h
	}
	// Non-finite durations are reported as absent, not as a sentinel.
	if !math.IsNaN(res.Duration) && !math.IsInf(res.Duration, 0) {
		d := res.Duration
		out.Duration = &d
	}
	return out, nil
}
