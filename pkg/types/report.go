package types

import "time"

// Priority classifies how urgent a report is.
type Priority string

const (
	PriorityLow      Priority = "low"
	PriorityMedium   Priority = "medium"
	PriorityHigh     Priority = "high"
	PriorityCritical Priority = "critical"
)

// Category classifies what part of the product a report concerns.
type Category string

const (
	CategoryUI            Category = "ui"
	CategoryFunctionality Category = "functionality"
	CategoryPerformance   Category = "performance"
	CategoryCrash         Category = "crash"
	CategoryData          Category = "data"
	CategoryNetwork       Category = "network"
	CategorySecurity      Category = "security"
	CategoryOther         Category = "other"
)

// AttachmentKind distinguishes captured media.
type AttachmentKind string

const (
	KindScreenshot      AttachmentKind = "screenshot"
	KindScreenRecording AttachmentKind = "screen_recording"
)

// Attachment is a reference to a captured media file on local disk.
// It is created by the capture layer and consumed read-only by the
// attachment processor.
type Attachment struct {
	Kind       AttachmentKind `json:"kind"`
	SourcePath string         `json:"sourcePath"`
	CapturedAt time.Time      `json:"capturedAt"`

	// Size is the known file size in bytes, or 0 when not known.
	Size int64 `json:"size,omitempty"`
}

// UserAction is one entry of the interaction trail recorded before the
// report was filed.
type UserAction struct {
	Timestamp time.Time `json:"timestamp"`
	Action    string    `json:"action"`
	Screen    string    `json:"screen,omitempty"`
}

// Report is a user-filed bug report or detected crash, enriched with
// device and app context. Reports are immutable after construction and
// owned by the caller until handed to the pipeline.
type Report struct {
	ID          string    `json:"id"`
	CreatedAt   time.Time `json:"timestamp"`
	Description string    `json:"description"`
	Priority    Priority  `json:"priority"`
	Category    Category  `json:"category"`

	// UserActions is the ordered trail of interactions leading up to
	// the report.
	UserActions []UserAction `json:"userActions,omitempty"`

	// Context snapshots, captured once and never mutated. NetworkInfo
	// and MemoryInfo may be nil when the capture layer did not record
	// them.
	DeviceInfo  Object `json:"deviceInfo,omitempty"`
	AppInfo     Object `json:"appInfo,omitempty"`
	NetworkInfo Object `json:"networkInfo,omitempty"`
	MemoryInfo  Object `json:"memoryInfo,omitempty"`

	Attachments []Attachment `json:"attachments,omitempty"`

	// CustomData carries caller-defined string key/value metadata.
	CustomData map[string]string `json:"customData,omitempty"`

	// CurrentScreen is the screen visible when the report was filed,
	// nil when unknown.
	CurrentScreen *string `json:"currentScreen,omitempty"`

	// Assignee and IssueNumber are optional triage hints.
	Assignee    string `json:"assignee,omitempty"`
	IssueNumber int    `json:"issueNumber,omitempty"`
}
