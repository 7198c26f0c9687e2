package attachment

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"sync"

	"github.com/daispacy/qcreport/internal/config"
	"github.com/daispacy/qcreport/pkg/types"
)

// Processed is the transcoded, size-bounded form of one attachment,
// ready for JSON transport. Data marshals as base64 via encoding/json.
// Produced exactly once per attachment and never mutated afterwards.
type Processed struct {
	Kind      types.AttachmentKind `json:"type"`
	FileName  string               `json:"fileName"`
	MIMEType  string               `json:"mimeType"`
	Timestamp string               `json:"timestamp"`
	Size      int64                `json:"size"`
	Width     *int                 `json:"width,omitempty"`
	Height    *int                 `json:"height,omitempty"`
	Duration  *float64             `json:"duration,omitempty"`
	Data      []byte               `json:"data"`
}

// ProcessError reports a failed transformation with a human-readable
// cause. Op is one of "read", "decode", "encode", "export".
type ProcessError struct {
	Path  string
	Op    string
	Cause string
}

func (e *ProcessError) Error() string {
	return fmt.Sprintf("attachment: processing %s failed (%s): %s", e.Path, e.Op, e.Cause)
}

// Processor converts attachments into their transmittable form. Safe
// for concurrent use.
type Processor struct {
	cfg      config.AttachmentConfig
	exporter VideoExporter
}

// NewProcessor builds a Processor with the default ffmpeg exporter.
func NewProcessor(cfg config.AttachmentConfig) *Processor {
	return &Processor{cfg: cfg, exporter: NewFFmpegExporter()}
}

// NewProcessorWithExporter builds a Processor around a custom exporter.
func NewProcessorWithExporter(cfg config.AttachmentConfig, exp VideoExporter) *Processor {
	return &Processor{cfg: cfg, exporter: exp}
}

// Process transforms one attachment.
func (p *Processor) Process(ctx context.Context, att types.Attachment) (Processed, error) {
	switch att.Kind {
	case types.KindScreenshot:
		return p.processImage(att)
	case types.KindScreenRecording:
		return p.processVideo(ctx, att)
	default:
		return Processed{}, &ProcessError{Path: att.SourcePath, Op: "decode",
			Cause: fmt.Sprintf("unknown attachment kind %q", att.Kind)}
	}
}

// ProcessAll processes every attachment concurrently, one task per
// attachment, each writing into its own pre-assigned slot so results
// come back in input order. If any task fails the whole batch fails
// with the error from the lowest failing slot; no partial result is
// returned.
func ProcessAll(ctx context.Context, p *Processor, atts []types.Attachment) ([]Processed, error) {
	if len(atts) == 0 {
		return nil, nil
	}

	results := make([]Processed, len(atts))
	errs := make([]error, len(atts))

	var wg sync.WaitGroup
	for i := range atts {
		wg.Add(1)
		go func(i int, att types.Attachment) {
			defer wg.Done()
			// A panicking task must resolve its slot with an error
			// value, not take down the pool.
			defer func() {
				if r := recover(); r != nil {
					errs[i] = &ProcessError{Path: att.SourcePath, Op: "decode",
						Cause: fmt.Sprintf("panic: %v", r)}
				}
			}()
			res, err := p.Process(ctx, att)
			if err != nil {
				errs[i] = err
				return
			}
			results[i] = res
		}(i, atts[i])
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}
	return results, nil
}

// outputName keeps the original base name and swaps the extension.
func outputName(path, ext string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base)) + ext
}
