package payload

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/daispacy/qcreport/internal/attachment"
	"github.com/daispacy/qcreport/pkg/types"
)

var reportedAt = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func sampleReport() types.Report {
	screen := "CheckoutView"
	return types.Report{
		ID:          "r-1",
		CreatedAt:   reportedAt,
		Description: "crash on checkout",
		Priority:    types.PriorityCritical,
		Category:    types.CategoryCrash,
		UserActions: []types.UserAction{
			{Timestamp: reportedAt.Add(-time.Minute), Action: "tap", Screen: "CartView"},
		},
		DeviceInfo: types.Object{"model": types.String("Pixel 8")},
		AppInfo:    types.Object{"version": types.String("1.4.2")},
		Attachments: []types.Attachment{
			{Kind: types.KindScreenshot, SourcePath: "/captures/shot.png", CapturedAt: reportedAt, Size: 2048},
		},
		CustomData:    map[string]string{"build": "1042"},
		CurrentScreen: &screen,
	}
}

func sampleProcessed() attachment.Processed {
	w, h := 800, 600
	return attachment.Processed{
		Kind:      types.KindScreenshot,
		FileName:  "shot.jpg",
		MIMEType:  "image/jpeg",
		Timestamp: "2025-06-01T12:00:00Z",
		Size:      5,
		Width:     &w,
		Height:    &h,
		Data:      []byte("bytes"),
	}
}

func TestBuild(t *testing.T) {
	got := Build(sampleReport(), []attachment.Processed{sampleProcessed()})

	if got.Kind != KindReport {
		t.Errorf("wktype = %q, want %q", got.Kind, KindReport)
	}
	if got.Report.ID != "r-1" || got.Report.Description != "crash on checkout" {
		t.Errorf("report body = %+v", got.Report)
	}
	if got.Report.Timestamp != "2025-06-01T12:00:00Z" {
		t.Errorf("timestamp = %q", got.Report.Timestamp)
	}
	if got.Report.Priority != types.PriorityCritical || got.Report.Category != types.CategoryCrash {
		t.Errorf("triage fields = %q/%q", got.Report.Priority, got.Report.Category)
	}
	if len(got.Attachments) != 1 || got.Attachments[0].FileName != "shot.jpg" {
		t.Errorf("attachments = %+v", got.Attachments)
	}

	refs := got.Report.MediaAttachments
	if len(refs) != 1 {
		t.Fatalf("mediaAttachments = %+v", refs)
	}
	if refs[0].Type != types.KindScreenshot || refs[0].FileName != "shot.png" || refs[0].FileSize != 2048 {
		t.Errorf("media ref = %+v", refs[0])
	}
	if refs[0].Timestamp != "2025-06-01T12:00:00Z" {
		t.Errorf("media ref timestamp = %q", refs[0].Timestamp)
	}
}

func TestBuild_Deterministic(t *testing.T) {
	r := sampleReport()
	procs := []attachment.Processed{sampleProcessed()}

	a, err := json.Marshal(Build(r, procs))
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	b, err := json.Marshal(Build(r, procs))
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(a) != string(b) {
		t.Error("two builds of the same report marshal differently")
	}
}

func TestBuild_NormalizesAbsentCollections(t *testing.T) {
	r := types.Report{ID: "r-2", CreatedAt: reportedAt, Description: "blank screen"}

	data, err := json.Marshal(Build(r, nil))
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		t.Fatalf("unmarshal envelope: %v", err)
	}
	if string(raw["attachments"]) != "[]" {
		t.Errorf("attachments = %s, want []", raw["attachments"])
	}

	var body map[string]json.RawMessage
	if err := json.Unmarshal(raw["report"], &body); err != nil {
		t.Fatalf("unmarshal report: %v", err)
	}

	for _, key := range []string{"userActions", "mediaAttachments"} {
		if string(body[key]) != "[]" {
			t.Errorf("%s = %s, want []", key, body[key])
		}
	}
	for _, key := range []string{"deviceInfo", "appInfo", "customData"} {
		if string(body[key]) != "{}" {
			t.Errorf("%s = %s, want {}", key, body[key])
		}
	}
	// Absent context is an explicit null, never omitted.
	for _, key := range []string{"currentScreen", "networkInfo", "memoryInfo"} {
		got, ok := body[key]
		if !ok {
			t.Errorf("%s missing from report body", key)
			continue
		}
		if string(got) != "null" {
			t.Errorf("%s = %s, want null", key, got)
		}
	}
	// Triage hints stay off the wire until set.
	for _, key := range []string{"assignee", "issueNumber"} {
		if _, ok := body[key]; ok {
			t.Errorf("%s present on wire without a value", key)
		}
	}
}

func TestBuild_TriageHints(t *testing.T) {
	r := sampleReport()
	r.Assignee = "qa-team"
	r.IssueNumber = 77

	data, err := json.Marshal(Build(r, nil))
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var raw struct {
		Report map[string]json.RawMessage `json:"report"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if string(raw.Report["assignee"]) != `"qa-team"` {
		t.Errorf("assignee = %s", raw.Report["assignee"])
	}
	if string(raw.Report["issueNumber"]) != "77" {
		t.Errorf("issueNumber = %s", raw.Report["issueNumber"])
	}
}

func TestBuild_DataMarshalsAsBase64(t *testing.T) {
	data, err := json.Marshal(Build(sampleReport(), []attachment.Processed{sampleProcessed()}))
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var raw struct {
		Attachments []struct {
			Data string `json:"data"`
		} `json:"attachments"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if raw.Attachments[0].Data != "Ynl0ZXM=" {
		t.Errorf("data = %q, want base64 of %q", raw.Attachments[0].Data, "bytes")
	}
}

func TestBuildUpload(t *testing.T) {
	got := BuildUpload("r-9", sampleProcessed())

	if got.Kind != KindReport {
		t.Errorf("wktype = %q, want %q", got.Kind, KindReport)
	}
	if got.ReportID != "r-9" {
		t.Errorf("reportId = %q", got.ReportID)
	}
	if got.Attachment.FileName != "shot.jpg" {
		t.Errorf("attachment = %+v", got.Attachment)
	}

	data, err := json.Marshal(got)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if string(raw["reportId"]) != `"r-9"` {
		t.Errorf("reportId on wire = %s", raw["reportId"])
	}
	if string(raw["wktype"]) != `"report_issue"` {
		t.Errorf("wktype on wire = %s", raw["wktype"])
	}
}
