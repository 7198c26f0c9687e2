package payload

import (
	"path/filepath"
	"time"

	"github.com/daispacy/qcreport/internal/attachment"
	"github.com/daispacy/qcreport/pkg/types"
)

// KindReport is the discriminator stamped on full report submissions.
const KindReport = "report_issue"

// Payload is the complete submission body.
type Payload struct {
	Report      ReportBody             `json:"report"`
	Attachments []attachment.Processed `json:"attachments"`
	Kind        string                 `json:"wktype"`
}

// UploadPayload is the sibling shape for a standalone file upload: the
// same discriminator, a report reference and exactly one attachment.
type UploadPayload struct {
	Kind       string               `json:"wktype"`
	ReportID   string               `json:"reportId"`
	Attachment attachment.Processed `json:"attachment"`
}

// ReportBody is the wire form of a Report. CurrentScreen, NetworkInfo
// and MemoryInfo serialize as explicit null when absent; the collector
// distinguishes null from {}.
type ReportBody struct {
	ID               string               `json:"id"`
	Timestamp        string               `json:"timestamp"`
	Description      string               `json:"description"`
	Priority         types.Priority       `json:"priority"`
	Category         types.Category       `json:"category"`
	UserActions      []types.UserAction   `json:"userActions"`
	DeviceInfo       types.Object         `json:"deviceInfo"`
	AppInfo          types.Object         `json:"appInfo"`
	MediaAttachments []MediaRef           `json:"mediaAttachments"`
	CustomData       map[string]string    `json:"customData"`
	CurrentScreen    *string              `json:"currentScreen"`
	NetworkInfo      types.Object         `json:"networkInfo"`
	MemoryInfo       types.Object         `json:"memoryInfo"`
	Assignee         string               `json:"assignee,omitempty"`
	IssueNumber      int                  `json:"issueNumber,omitempty"`
}

// MediaRef describes a captured attachment inside the report body,
// without its encoded payload.
type MediaRef struct {
	Type      types.AttachmentKind `json:"type"`
	FileName  string               `json:"fileName"`
	Timestamp string               `json:"timestamp"`
	FileSize  int64                `json:"fileSize"`
}

// Build assembles the submission payload. Deterministic and pure: the
// same report and attachment list always yield the same payload.
func Build(r types.Report, processed []attachment.Processed) Payload {
	body := ReportBody{
		ID:               r.ID,
		Timestamp:        r.CreatedAt.UTC().Format(time.RFC3339),
		Description:      r.Description,
		Priority:         r.Priority,
		Category:         r.Category,
		UserActions:      r.UserActions,
		DeviceInfo:       r.DeviceInfo,
		AppInfo:          r.AppInfo,
		MediaAttachments: mediaRefs(r.Attachments),
		CustomData:       r.CustomData,
		CurrentScreen:    r.CurrentScreen,
		NetworkInfo:      r.NetworkInfo,
		MemoryInfo:       r.MemoryInfo,
		Assignee:         r.Assignee,
		IssueNumber:      r.IssueNumber,
	}

	// The collector expects arrays/objects for these, not null.
	if body.UserActions == nil {
		body.UserActions = []types.UserAction{}
	}
	if body.DeviceInfo == nil {
		body.DeviceInfo = types.Object{}
	}
	if body.AppInfo == nil {
		body.AppInfo = types.Object{}
	}
	if body.CustomData == nil {
		body.CustomData = map[string]string{}
	}
	if processed == nil {
		processed = []attachment.Processed{}
	}

	return Payload{Report: body, Attachments: processed, Kind: KindReport}
}

// BuildUpload assembles the standalone file-upload payload.
func BuildUpload(reportID string, att attachment.Processed) UploadPayload {
	return UploadPayload{Kind: KindReport, ReportID: reportID, Attachment: att}
}

// mediaRefs lists the raw captured attachments referenced by the report.
func mediaRefs(atts []types.Attachment) []MediaRef {
	refs := make([]MediaRef, 0, len(atts))
	for _, a := range atts {
		refs = append(refs, MediaRef{
			Type:      a.Kind,
			FileName:  filepath.Base(a.SourcePath),
			Timestamp: a.CapturedAt.UTC().Format(time.RFC3339),
			FileSize:  a.Size,
		})
	}
	return refs
}
