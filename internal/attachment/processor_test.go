package attachment

import (
	"context"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/daispacy/qcreport/pkg/types"
)

// fakeExporter writes canned bytes to the destination and returns a
// canned result, standing in for ffmpeg.
type fakeExporter struct {
	output []byte
	result ExportResult
	err    error
	panics bool

	requests []ExportRequest
}

func (f *fakeExporter) Export(_ context.Context, req ExportRequest) (ExportResult, error) {
	f.requests = append(f.requests, req)
	if f.panics {
		panic("exporter exploded")
	}
	if f.err != nil {
		return ExportResult{}, f.err
	}
	if err := os.WriteFile(req.DestPath, f.output, 0o644); err != nil {
		return ExportResult{}, err
	}
	return f.result, nil
}

func recording(t *testing.T, dir string) types.Attachment {
	t.Helper()
	path := filepath.Join(dir, "capture.mov")
	if err := os.WriteFile(path, []byte("mov bytes"), 0o644); err != nil {
		t.Fatalf("write source video: %v", err)
	}
	return types.Attachment{Kind: types.KindScreenRecording, SourcePath: path, CapturedAt: capturedAt}
}

func TestProcessVideo(t *testing.T) {
	exp := &fakeExporter{
		output: []byte("mp4 payload"),
		result: ExportResult{Width: 1280, Height: 720, Duration: 12.5},
	}
	p := NewProcessorWithExporter(frameCfg(1280, 1280), exp)

	got, err := p.Process(context.Background(), recording(t, t.TempDir()))
	if err != nil {
		t.Fatalf("Process() error = %v", err)
	}

	if got.Kind != types.KindScreenRecording {
		t.Errorf("kind = %q", got.Kind)
	}
	if got.FileName != "capture.mp4" {
		t.Errorf("fileName = %q, want capture.mp4", got.FileName)
	}
	if got.MIMEType != "video/mp4" {
		t.Errorf("mime = %q, want video/mp4", got.MIMEType)
	}
	if string(got.Data) != "mp4 payload" {
		t.Errorf("data = %q, want exporter output", got.Data)
	}
	if got.Size != int64(len(got.Data)) {
		t.Errorf("size = %d, data = %d bytes", got.Size, len(got.Data))
	}
	if got.Width == nil || *got.Width != 1280 || got.Height == nil || *got.Height != 720 {
		t.Errorf("geometry = %v x %v", got.Width, got.Height)
	}
	if got.Duration == nil || *got.Duration != 12.5 {
		t.Errorf("duration = %v, want 12.5", got.Duration)
	}
	if got.Timestamp != "2025-06-01T12:00:00Z" {
		t.Errorf("timestamp = %q", got.Timestamp)
	}

	if len(exp.requests) != 1 {
		t.Fatalf("exporter called %d times", len(exp.requests))
	}
	req := exp.requests[0]
	if req.Preset != PresetHigh {
		t.Errorf("preset = %q, want %q for a 1280 frame", req.Preset, PresetHigh)
	}
	if req.MaxWidth != 1280 || req.MaxHeight != 1280 {
		t.Errorf("frame = %dx%d", req.MaxWidth, req.MaxHeight)
	}
	if _, err := os.Stat(req.DestPath); !os.IsNotExist(err) {
		t.Errorf("temporary export file %s not removed", req.DestPath)
	}
}

func TestProcessVideo_NonFiniteDuration(t *testing.T) {
	for _, dur := range []float64{math.NaN(), math.Inf(1), math.Inf(-1)} {
		exp := &fakeExporter{output: []byte("x"), result: ExportResult{Width: 640, Height: 480, Duration: dur}}
		p := NewProcessorWithExporter(frameCfg(640, 640), exp)

		got, err := p.Process(context.Background(), recording(t, t.TempDir()))
		if err != nil {
			t.Fatalf("Process() error = %v", err)
		}
		if got.Duration != nil {
			t.Errorf("duration %v reported as %v, want absent", dur, *got.Duration)
		}
	}
}

func TestProcessVideo_UnreadableSource(t *testing.T) {
	exp := &fakeExporter{output: []byte("x")}
	p := NewProcessorWithExporter(frameCfg(1280, 1280), exp)

	att := types.Attachment{Kind: types.KindScreenRecording, SourcePath: filepath.Join(t.TempDir(), "gone.mov")}
	_, err := p.Process(context.Background(), att)
	var perr *ProcessError
	if !errors.As(err, &perr) || perr.Op != "read" {
		t.Errorf("error = %v, want read ProcessError", err)
	}
	if len(exp.requests) != 0 {
		t.Error("exporter invoked for unreadable source")
	}
}

func TestProcessVideo_ExportFailure(t *testing.T) {
	exp := &fakeExporter{err: errors.New("codec missing")}
	p := NewProcessorWithExporter(frameCfg(1280, 1280), exp)

	_, err := p.Process(context.Background(), recording(t, t.TempDir()))
	var perr *ProcessError
	if !errors.As(err, &perr) || perr.Op != "export" {
		t.Errorf("error = %v, want export ProcessError", err)
	}
}

func TestProcess_UnknownKind(t *testing.T) {
	p := NewProcessor(frameCfg(1280, 1280))

	_, err := p.Process(context.Background(), types.Attachment{Kind: "audio", SourcePath: "/tmp/x"})
	var perr *ProcessError
	if !errors.As(err, &perr) {
		t.Fatalf("error = %v, want *ProcessError", err)
	}
}

func TestPresetFor(t *testing.T) {
	cases := []struct {
		frameMax int
		want     ExportPreset
	}{
		{320, PresetLow},
		{640, PresetLow},
		{641, PresetMedium},
		{960, PresetMedium},
		{961, PresetHigh},
		{1280, PresetHigh},
		{1281, PresetHighest},
		{4000, PresetHighest},
	}
	for _, tc := range cases {
		if got := presetFor(tc.frameMax); got != tc.want {
			t.Errorf("presetFor(%d) = %q, want %q", tc.frameMax, got, tc.want)
		}
	}
}

func TestProcessAll_PreservesOrder(t *testing.T) {
	dir := t.TempDir()
	atts := []types.Attachment{
		screenshot(writePNG(t, dir, "a.png", 200, 100)),
		screenshot(writePNG(t, dir, "b.png", 100, 200)),
		screenshot(writePNG(t, dir, "c.png", 50, 50)),
	}
	p := NewProcessor(frameCfg(1280, 1280))

	got, err := ProcessAll(context.Background(), p, atts)
	if err != nil {
		t.Fatalf("ProcessAll() error = %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("len = %d, want 3", len(got))
	}
	for i, want := range []string{"a.jpg", "b.jpg", "c.jpg"} {
		if got[i].FileName != want {
			t.Errorf("slot %d = %q, want %q", i, got[i].FileName, want)
		}
	}
}

func TestProcessAll_AllOrNothing(t *testing.T) {
	dir := t.TempDir()
	atts := []types.Attachment{
		screenshot(writePNG(t, dir, "ok1.png", 100, 100)),
		screenshot(filepath.Join(dir, "missing.png")),
		screenshot(writePNG(t, dir, "ok2.png", 100, 100)),
	}
	p := NewProcessor(frameCfg(1280, 1280))

	got, err := ProcessAll(context.Background(), p, atts)
	if got != nil {
		t.Errorf("partial results returned: %d", len(got))
	}
	var perr *ProcessError
	if !errors.As(err, &perr) {
		t.Fatalf("error = %v, want *ProcessError", err)
	}
	if filepath.Base(perr.Path) != "missing.png" {
		t.Errorf("failing path = %q, want missing.png", perr.Path)
	}
}

func TestProcessAll_LowestSlotErrorWins(t *testing.T) {
	dir := t.TempDir()
	atts := []types.Attachment{
		screenshot(filepath.Join(dir, "first-missing.png")),
		screenshot(filepath.Join(dir, "second-missing.png")),
	}
	p := NewProcessor(frameCfg(1280, 1280))

	_, err := ProcessAll(context.Background(), p, atts)
	var perr *ProcessError
	if !errors.As(err, &perr) {
		t.Fatalf("error = %v, want *ProcessError", err)
	}
	if filepath.Base(perr.Path) != "first-missing.png" {
		t.Errorf("reported path = %q, want the lowest failing slot", perr.Path)
	}
}

func TestProcessAll_PanicBecomesError(t *testing.T) {
	exp := &fakeExporter{panics: true}
	p := NewProcessorWithExporter(frameCfg(1280, 1280), exp)

	atts := []types.Attachment{recording(t, t.TempDir())}
	_, err := ProcessAll(context.Background(), p, atts)
	var perr *ProcessError
	if !errors.As(err, &perr) {
		t.Fatalf("error = %v, want *ProcessError", err)
	}
	if want := fmt.Sprintf("panic: %v", "exporter exploded"); perr.Cause != want {
		t.Errorf("cause = %q, want %q", perr.Cause, want)
	}
}

func TestProcessAll_Empty(t *testing.T) {
	p := NewProcessor(frameCfg(1280, 1280))
	got, err := ProcessAll(context.Background(), p, nil)
	if err != nil || got != nil {
		t.Errorf("ProcessAll(nil) = %v, %v", got, err)
	}
}
