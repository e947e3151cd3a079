package experimentlog

import "time"

// EventType categorizes journal entries by the pipeline stage that produced them.
type EventType string

// Event types recorded by the audit pipeline.
const (
	EventTypeRun       EventType = "run"
	EventTypeAnalysis  EventType = "analysis"
	EventTypeReasoning EventType = "reasoning"
)

// Status reports whether the recorded operation succeeded.
type Status string

// Record statuses.
const (
	StatusSuccess Status = "SUCCESS"
	StatusFailure Status = "FAILURE"
)

// Record is a single journal entry. Fields that do not apply to an event type
// are omitted from the serialized form.
type Record struct {
	Timestamp    time.Time `json:"timestamp"`
	EventType    EventType `json:"event_type"`
	FilePath     string    `json:"file_path,omitempty"`
	Model        string    `json:"model,omitempty"`
	Prompt       string    `json:"prompt,omitempty"`
	Response     string    `json:"response,omitempty"`
	Status       Status    `json:"status"`
	ErrorDetail  string    `json:"error_detail,omitempty"`
	DelaySeconds int       `json:"delay_seconds,omitempty"`
}

// Recorder appends journal entries durably before returning.
type Recorder interface {
	Append(record Record) error
}
