package audit_test

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/temirov/codeaudit/internal/audit"
	"github.com/temirov/codeaudit/internal/findings"
)

func sampleReport() audit.AuditReport {
	startTime := time.Date(2026, time.August, 23, 12, 0, 0, 0, time.UTC)
	return audit.AuditReport{
		TargetDirectory: "project",
		StartTime:       startTime,
		EndTime:         startTime.Add(21 * time.Second),
		FileCount:       1,
		FailureCount:    1,
		FilePlans: []findings.FilePlan{{
			FilePath: "project/example.py",
			Summary:  "1 findings: 1 high",
			Findings: []findings.Finding{{
				Source:   findings.SourceStatic,
				Kind:     "undefined-variable",
				Severity: findings.SeverityHigh,
				FilePath: "project/example.py",
				Line:     4,
				Message:  "Undefined variable 'total'",
			}},
		}},
	}
}

func TestWriteReportTextFormat(testInstance *testing.T) {
	outputBuffer := &bytes.Buffer{}

	require.NoError(testInstance, audit.WriteReport(outputBuffer, sampleReport(), audit.ReportFormatText))

	renderedReport := outputBuffer.String()
	require.Contains(testInstance, renderedReport, "Audit of project: 1 files, 1 failures")
	require.Contains(testInstance, renderedReport, "project/example.py: 1 findings: 1 high")
	require.Contains(testInstance, renderedReport, "[high] line 4 (static): Undefined variable 'total'")
}

func TestWriteReportJSONFormatRoundTrips(testInstance *testing.T) {
	outputBuffer := &bytes.Buffer{}

	require.NoError(testInstance, audit.WriteReport(outputBuffer, sampleReport(), audit.ReportFormatJSON))

	var decodedReport audit.AuditReport
	require.NoError(testInstance, json.Unmarshal(outputBuffer.Bytes(), &decodedReport))
	require.Equal(testInstance, 1, decodedReport.FileCount)
	require.Len(testInstance, decodedReport.FilePlans, 1)
}

func TestWriteReportYAMLFormatRoundTrips(testInstance *testing.T) {
	outputBuffer := &bytes.Buffer{}

	require.NoError(testInstance, audit.WriteReport(outputBuffer, sampleReport(), audit.ReportFormatYAML))

	var decodedReport audit.AuditReport
	require.NoError(testInstance, yaml.Unmarshal(outputBuffer.Bytes(), &decodedReport))
	require.Equal(testInstance, "project", decodedReport.TargetDirectory)
}

func TestWriteReportRejectsUnknownFormat(testInstance *testing.T) {
	writeError := audit.WriteReport(&bytes.Buffer{}, sampleReport(), audit.ReportFormat("xml"))

	require.Error(testInstance, writeError)
	require.Contains(testInstance, writeError.Error(), "xml")
}

func TestWriteFileReportsNamesFilesAfterSourceStem(testInstance *testing.T) {
	reportsDirectory := testInstance.TempDir()

	require.NoError(testInstance, audit.WriteFileReports(reportsDirectory, sampleReport().FilePlans))

	reportContents, readError := os.ReadFile(filepath.Join(reportsDirectory, "example_audit.txt"))
	require.NoError(testInstance, readError)
	require.Contains(testInstance, string(reportContents), "Undefined variable 'total'")
}
