package audit

import (
	"context"
	"time"

	"github.com/temirov/codeaudit/internal/findings"
)

// FileDiscoverer lists the audit targets inside a directory.
type FileDiscoverer interface {
	Discover(targetDirectory string) ([]string, error)
}

// DiagnosticCollector produces static findings for one file.
type DiagnosticCollector interface {
	Collect(executionContext context.Context, filePath string) ([]findings.Finding, error)
}

// ReasoningAnalyzer produces model findings for one file. Implementations
// record their own request attempts and degrade to zero findings with an
// error when the reasoning service stays unavailable.
type ReasoningAnalyzer interface {
	Analyze(executionContext context.Context, filePath string, fileContent string, staticFindings []findings.Finding) ([]findings.Finding, error)
}

// PlanMerger combines static and model findings into a FilePlan.
type PlanMerger interface {
	Merge(filePath string, staticFindings []findings.Finding, modelFindings []findings.Finding) findings.FilePlan
}

// Sleeper blocks for the supplied duration. Injected so tests control time.
type Sleeper interface {
	Sleep(duration time.Duration)
}

// SystemSleeper implements Sleeper using the standard library.
type SystemSleeper struct{}

// Sleep blocks for the supplied duration.
func (SystemSleeper) Sleep(duration time.Duration) {
	time.Sleep(duration)
}
