package attachment

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"math"
	"os/exec"
	"strconv"
)

// FFmpegExporter transcodes screen recordings by shelling out to the
// ffmpeg and ffprobe binaries on PATH.
type FFmpegExporter struct {
	FFmpegPath  string
	FFprobePath string
}

// NewFFmpegExporter returns an exporter using the binaries from PATH.
func NewFFmpegExporter() *FFmpegExporter {
	return &FFmpegExporter{FFmpegPath: "ffmpeg", FFprobePath: "ffprobe"}
}

func (e *FFmpegExporter) Export(ctx context.Context, req ExportRequest) (ExportResult, error) {
	args := []string{"-y", "-i", req.SourcePath}
	if req.Preset != PresetHighest && req.MaxWidth > 0 && req.MaxHeight > 0 {
		// Single uniform fit-scale; min(iw,..) keeps smaller sources
		// untouched.
		filter := fmt.Sprintf(
			"scale='min(iw,%d)':'min(ih,%d)':force_original_aspect_ratio=decrease",
			req.MaxWidth, req.MaxHeight)
		args = append(args, "-vf", filter)
	}
	args = append(args,
		"-c:v", "libx264",
		"-crf", crfFor(req.Preset),
		"-movflags", "+faststart",
		req.DestPath,
	)

	cmd := exec.CommandContext(ctx, e.FFmpegPath, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return ExportResult{}, fmt.Errorf("ffmpeg: %w: %s", err, tail(stderr.Bytes()))
	}

	return e.probe(ctx, req.DestPath)
}

// crfFor maps a preset tier to an x264 constant rate factor.
func crfFor(p ExportPreset) string {
	switch p {
	case PresetLow:
		return "32"
	case PresetMedium:
		return "28"
	case PresetHigh:
		return "23"
	default:
		return "18"
	}
}

// probe reads the exported file's actual geometry and duration.
func (e *FFmpegExporter) probe(ctx context.Context, path string) (ExportResult, error) {
	cmd := exec.CommandContext(ctx, e.FFprobePath,
		"-v", "error",
		"-select_streams", "v:0",
		"-show_entries", "stream=width,height",
		"-show_entries", "format=duration",
		"-of", "json",
		path,
	)
	out, err := cmd.Output()
	if err != nil {
		return ExportResult{}, fmt.Errorf("ffprobe: %w", err)
	}

	var info struct {
		Streams []struct {
			Width  int `json:"width"`
			Height int `json:"height"`
		} `json:"streams"`
		Format struct {
			Duration string `json:"duration"`
		} `json:"format"`
	}
	if err := json.Unmarshal(out, &info); err != nil {
		return ExportResult{}, fmt.Errorf("ffprobe: parse output: %w", err)
	}

	res := ExportResult{Duration: math.NaN()}
	if len(info.Streams) > 0 {
		res.Width = info.Streams[0].Width
		res.Height = info.Streams[0].Height
	}
	if d, err := strconv.ParseFloat(info.Format.Duration, 64); err == nil {
		res.Duration = d
	}
	return res, nil
}

// tail returns the last line-ish chunk of ffmpeg's stderr for error
// messages.
func tail(b []byte) []byte {
	const max = 200
	if len(b) > max {
		b = b[len(b)-max:]
	}
	return bytes.TrimSpace(b)
}
