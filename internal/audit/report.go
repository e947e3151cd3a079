package audit

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/temirov/codeaudit/internal/findings"
)

const (
	reportHeaderTemplateConstant     = "Audit of %s: %d files, %d failures, %s\n"
	planHeaderTemplateConstant       = "\n%s: %s\n"
	findingLineTemplateConstant      = "  [%s] line %d (%s): %s\n"
	noFindingLinesConstant           = "  no findings\n"
	reportDurationRoundingConstant   = time.Millisecond
	unsupportedFormatTemplateConst   = "unsupported report format %q"
	jsonIndentConstant               = "  "
	reportFileNameTemplateConstant   = "%s_audit.txt"
	reportFilePermissionsConstant    = 0o644
	reportDirectoryPermissionsConst  = 0o755
	createReportsDirTemplateConstant = "unable to create reports directory %s: %w"
	writeReportFileTemplateConstant  = "unable to write report file %s: %w"
)

// WriteReport renders the consolidated report to writer in the given format.
func WriteReport(writer io.Writer, report AuditReport, format ReportFormat) error {
	switch format {
	case ReportFormatText, "":
		_, writeError := io.WriteString(writer, renderTextReport(report))
		return writeError
	case ReportFormatJSON:
		encodedReport, marshalError := json.MarshalIndent(report, "", jsonIndentConstant)
		if marshalError != nil {
			return marshalError
		}
		_, writeError := writer.Write(append(encodedReport, '\n'))
		return writeError
	case ReportFormatYAML:
		encodedReport, marshalError := yaml.Marshal(report)
		if marshalError != nil {
			return marshalError
		}
		_, writeError := writer.Write(encodedReport)
		return writeError
	default:
		return fmt.Errorf(unsupportedFormatTemplateConst, format)
	}
}

// WriteFileReports writes one plain-text report per plan into reportsDirectory,
// named after the source file stem.
func WriteFileReports(reportsDirectory string, filePlans []findings.FilePlan) error {
	if directoryError := os.MkdirAll(reportsDirectory, reportDirectoryPermissionsConst); directoryError != nil {
		return fmt.Errorf(createReportsDirTemplateConstant, reportsDirectory, directoryError)
	}

	for _, filePlan := range filePlans {
		reportFileName := fmt.Sprintf(reportFileNameTemplateConstant, fileStem(filePlan.FilePath))
		reportFilePath := filepath.Join(reportsDirectory, reportFileName)
		if writeError := os.WriteFile(reportFilePath, []byte(renderPlanText(filePlan)), reportFilePermissionsConstant); writeError != nil {
			return fmt.Errorf(writeReportFileTemplateConstant, reportFilePath, writeError)
		}
	}
	return nil
}

func renderTextReport(report AuditReport) string {
	var reportBuilder strings.Builder

	runDuration := report.EndTime.Sub(report.StartTime).Round(reportDurationRoundingConstant)
	reportBuilder.WriteString(fmt.Sprintf(reportHeaderTemplateConstant, report.TargetDirectory, report.FileCount, report.FailureCount, runDuration))

	for _, filePlan := range report.FilePlans {
		reportBuilder.WriteString(renderPlanText(filePlan))
	}
	return reportBuilder.String()
}

func renderPlanText(filePlan findings.FilePlan) string {
	var planBuilder strings.Builder

	planBuilder.WriteString(fmt.Sprintf(planHeaderTemplateConstant, filePlan.FilePath, filePlan.Summary))
	if len(filePlan.Findings) == 0 {
		planBuilder.WriteString(noFindingLinesConstant)
		return planBuilder.String()
	}
	for _, planFinding := range filePlan.Findings {
		planBuilder.WriteString(fmt.Sprintf(findingLineTemplateConstant, planFinding.Severity, planFinding.Line, planFinding.Source, planFinding.Message))
	}
	return planBuilder.String()
}

func fileStem(filePath string) string {
	baseName := filepath.Base(filePath)
	return strings.TrimSuffix(baseName, filepath.Ext(baseName))
}
