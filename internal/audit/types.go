package audit

import (
	"time"

	"github.com/temirov/codeaudit/internal/findings"
)

// RunState enumerates the orchestrator's lifecycle states.
type RunState string

// Run states in transition order. ANALYZING through WAITING repeat per file.
const (
	RunStateIdle      RunState = "IDLE"
	RunStateScanning  RunState = "SCANNING"
	RunStateAnalyzing RunState = "ANALYZING"
	RunStateReasoning RunState = "REASONING"
	RunStateMerging   RunState = "MERGING"
	RunStateWaiting   RunState = "WAITING"
	RunStateReporting RunState = "REPORTING"
	RunStateDone      RunState = "DONE"
	RunStateAborted   RunState = "ABORTED"
)

// ReportFormat selects the consolidated report rendering.
type ReportFormat string

// Supported report formats.
const (
	ReportFormatText ReportFormat = "text"
	ReportFormatJSON ReportFormat = "json"
	ReportFormatYAML ReportFormat = "yaml"
)

// CommandOptions captures the configurable parameters for one audit run.
type CommandOptions struct {
	TargetDirectory  string
	Delay            time.Duration
	Format           ReportFormat
	ReportsDirectory string
}

// Clock abstracts time-dependent functionality for deterministic testing.
type Clock interface {
	Now() time.Time
}

// SystemClock implements Clock using the standard library.
type SystemClock struct{}

// Now returns the current system time.
func (SystemClock) Now() time.Time {
	return time.Now()
}

// AuditReport is the consolidated outcome of one run.
type AuditReport struct {
	TargetDirectory string              `json:"target_directory" yaml:"target_directory"`
	StartTime       time.Time           `json:"start_time" yaml:"start_time"`
	EndTime         time.Time           `json:"end_time" yaml:"end_time"`
	FileCount       int                 `json:"file_count" yaml:"file_count"`
	FailureCount    int                 `json:"failure_count" yaml:"failure_count"`
	FilePlans       []findings.FilePlan `json:"file_plans" yaml:"file_plans"`
}
