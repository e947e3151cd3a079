package analyzer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/temirov/codeaudit/internal/execshell"
	"github.com/temirov/codeaudit/internal/findings"
)

const (
	pylintOutputFormatFlagConstant      = "--output-format=json"
	pylintScoreFlagConstant             = "--score=n"
	syntaxErrorMessageIDConstant        = "E0001"
	syntaxErrorKindConstant             = "unparseable"
	syntaxErrorMessageTemplateConstant  = "file could not be parsed: %s"
	decodeDiagnosticsTemplateConstant   = "unable to decode pylint diagnostics for %s: %w"
	runPylintTemplateConstant           = "unable to run pylint on %s: %w"
	collectedDiagnosticsMessageConstant = "Collected static diagnostics"
	logFieldFilePathConstant            = "file_path"
	logFieldFindingCountConstant        = "finding_count"
)

// Pylint diagnostic categories.
const (
	pylintTypeFatalConstant      = "fatal"
	pylintTypeErrorConstant      = "error"
	pylintTypeWarningConstant    = "warning"
	pylintTypeConventionConstant = "convention"
	pylintTypeRefactorConstant   = "refactor"
)

// Construction validation errors.
var (
	ErrLoggerNotConfigured = errors.New("pylint collector requires a logger")
	ErrRunnerNotConfigured = errors.New("pylint collector requires a pylint runner")
)

// PylintRunner executes the pylint binary and returns its raw output.
type PylintRunner interface {
	ExecutePylint(executionContext context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error)
}

// pylintDiagnostic mirrors one entry of pylint's JSON report.
type pylintDiagnostic struct {
	Type      string `json:"type"`
	Module    string `json:"module"`
	Line      int    `json:"line"`
	Column    int    `json:"column"`
	Path      string `json:"path"`
	Symbol    string `json:"symbol"`
	Message   string `json:"message"`
	MessageID string `json:"message-id"`
}

// PylintCollector turns pylint reports into normalized static findings.
type PylintCollector struct {
	logger *zap.Logger
	runner PylintRunner
}

// NewPylintCollector constructs a collector backed by the supplied runner.
func NewPylintCollector(logger *zap.Logger, runner PylintRunner) (*PylintCollector, error) {
	if logger == nil {
		return nil, ErrLoggerNotConfigured
	}
	if runner == nil {
		return nil, ErrRunnerNotConfigured
	}
	return &PylintCollector{logger: logger, runner: runner}, nil
}

// Collect runs pylint on filePath and returns its diagnostics as findings.
// A syntax error collapses to a single critical finding; pylint's issue
// bitmask exit codes are handled by the execshell layer as successes.
func (collector *PylintCollector) Collect(executionContext context.Context, filePath string) ([]findings.Finding, error) {
	commandDetails := execshell.CommandDetails{
		Arguments: []string{pylintOutputFormatFlagConstant, pylintScoreFlagConstant, filePath},
	}

	executionResult, executionError := collector.runner.ExecutePylint(executionContext, commandDetails)
	if executionError != nil {
		return nil, fmt.Errorf(runPylintTemplateConstant, filePath, executionError)
	}

	diagnostics, decodeError := decodeDiagnostics(executionResult.StandardOutput)
	if decodeError != nil {
		return nil, fmt.Errorf(decodeDiagnosticsTemplateConstant, filePath, decodeError)
	}

	collectedFindings := normalizeDiagnostics(filePath, diagnostics)

	collector.logger.Debug(
		collectedDiagnosticsMessageConstant,
		zap.String(logFieldFilePathConstant, filePath),
		zap.Int(logFieldFindingCountConstant, len(collectedFindings)),
	)

	return collectedFindings, nil
}

func decodeDiagnostics(reportOutput string) ([]pylintDiagnostic, error) {
	trimmedOutput := strings.TrimSpace(reportOutput)
	if len(trimmedOutput) == 0 {
		return nil, nil
	}

	var diagnostics []pylintDiagnostic
	if unmarshalError := json.Unmarshal([]byte(trimmedOutput), &diagnostics); unmarshalError != nil {
		return nil, unmarshalError
	}
	return diagnostics, nil
}

func normalizeDiagnostics(filePath string, diagnostics []pylintDiagnostic) []findings.Finding {
	for _, diagnostic := range diagnostics {
		if isSyntaxError(diagnostic) {
			return []findings.Finding{syntaxErrorFinding(filePath, diagnostic)}
		}
	}

	normalizedFindings := make([]findings.Finding, 0, len(diagnostics))
	for _, diagnostic := range diagnostics {
		normalizedFindings = append(normalizedFindings, findings.Finding{
			Source:   findings.SourceStatic,
			Kind:     diagnosticKind(diagnostic),
			Severity: severityForDiagnosticType(diagnostic.Type),
			FilePath: filePath,
			Line:     diagnostic.Line,
			Column:   diagnostic.Column,
			Message:  diagnostic.Message,
		})
	}
	return normalizedFindings
}

func isSyntaxError(diagnostic pylintDiagnostic) bool {
	return diagnostic.MessageID == syntaxErrorMessageIDConstant || diagnostic.Type == pylintTypeFatalConstant
}

func syntaxErrorFinding(filePath string, diagnostic pylintDiagnostic) findings.Finding {
	return findings.Finding{
		Source:   findings.SourceStatic,
		Kind:     syntaxErrorKindConstant,
		Severity: findings.SeverityCritical,
		FilePath: filePath,
		Line:     diagnostic.Line,
		Column:   diagnostic.Column,
		Message:  fmt.Sprintf(syntaxErrorMessageTemplateConstant, diagnostic.Message),
	}
}

func diagnosticKind(diagnostic pylintDiagnostic) string {
	if len(diagnostic.Symbol) > 0 {
		return diagnostic.Symbol
	}
	return diagnostic.MessageID
}

func severityForDiagnosticType(diagnosticType string) findings.Severity {
	switch diagnosticType {
	case pylintTypeFatalConstant:
		return findings.SeverityCritical
	case pylintTypeErrorConstant:
		return findings.SeverityHigh
	case pylintTypeWarningConstant:
		return findings.SeverityMedium
	case pylintTypeConventionConstant, pylintTypeRefactorConstant:
		return findings.SeverityLow
	default:
		return findings.SeverityLow
	}
}
