package reasoning

import (
	"encoding/json"
	"strings"

	"github.com/temirov/codeaudit/internal/findings"
)

const (
	arrayOpeningBracketConstant  = "["
	arrayClosingBracketConstant  = "]"
	defaultModelFindingKindConst = "model-review"
)

// modelFinding mirrors one element of the JSON array the model is asked for.
type modelFinding struct {
	Severity string `json:"severity"`
	Line     int    `json:"line"`
	Kind     string `json:"kind"`
	Message  string `json:"message"`
}

// ParseReply extracts model findings from a raw assistant reply. Replies are
// frequently wrapped in code fences or prose, so parsing locates the outermost
// JSON array before decoding. Malformed replies yield zero findings rather
// than an error; the caller preserves the raw reply in the experiment log.
func ParseReply(filePath string, rawReply string) []findings.Finding {
	arrayPayload, found := extractJSONArray(rawReply)
	if !found {
		return nil
	}

	var decodedFindings []modelFinding
	if unmarshalError := json.Unmarshal([]byte(arrayPayload), &decodedFindings); unmarshalError != nil {
		return nil
	}

	parsedFindings := make([]findings.Finding, 0, len(decodedFindings))
	for _, decodedFinding := range decodedFindings {
		if len(strings.TrimSpace(decodedFinding.Message)) == 0 {
			continue
		}
		parsedFindings = append(parsedFindings, findings.Finding{
			Source:   findings.SourceModel,
			Kind:     findingKind(decodedFinding),
			Severity: normalizeSeverity(decodedFinding.Severity),
			FilePath: filePath,
			Line:     decodedFinding.Line,
			Message:  strings.TrimSpace(decodedFinding.Message),
		})
	}
	return parsedFindings
}

// extractJSONArray returns the substring spanning the first opening bracket
// through the last closing bracket.
func extractJSONArray(rawReply string) (string, bool) {
	openingIndex := strings.Index(rawReply, arrayOpeningBracketConstant)
	closingIndex := strings.LastIndex(rawReply, arrayClosingBracketConstant)
	if openingIndex < 0 || closingIndex <= openingIndex {
		return "", false
	}
	return rawReply[openingIndex : closingIndex+1], true
}

func findingKind(decodedFinding modelFinding) string {
	trimmedKind := strings.TrimSpace(decodedFinding.Kind)
	if len(trimmedKind) == 0 {
		return defaultModelFindingKindConst
	}
	return trimmedKind
}

func normalizeSeverity(rawSeverity string) findings.Severity {
	switch findings.Severity(strings.ToLower(strings.TrimSpace(rawSeverity))) {
	case findings.SeverityCritical:
		return findings.SeverityCritical
	case findings.SeverityHigh:
		return findings.SeverityHigh
	case findings.SeverityMedium:
		return findings.SeverityMedium
	default:
		return findings.SeverityLow
	}
}
