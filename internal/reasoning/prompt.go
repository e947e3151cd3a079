package reasoning

import (
	"fmt"
	"strings"

	"github.com/temirov/codeaudit/internal/findings"
)

const (
	systemPromptConstant = "You are a meticulous code reviewer. Review the supplied Python " +
		"source file together with the static analyzer diagnostics and report additional " +
		"issues the analyzer cannot see: logic errors, resource leaks, misuse of APIs, and " +
		"risky constructs. Reply with a JSON array only. Each element must be an object " +
		"with the keys \"severity\" (one of low, medium, high, critical), \"line\" (integer, " +
		"0 when unknown), \"kind\" (short issue category), and \"message\" (one-sentence " +
		"description). Reply with [] when you find nothing."

	userPromptTemplateConstant       = "File: %s\n\nStatic analyzer diagnostics:\n%s\nSource:\n%s"
	staticFindingLineTemplateConst   = "- line %d: %s (%s)\n"
	noStaticFindingsPlaceholderConst = "- none\n"
)

// BuildPrompt assembles the user prompt from the file content and the static
// findings already collected for it.
func BuildPrompt(filePath string, fileContent string, staticFindings []findings.Finding) string {
	var diagnosticsSection strings.Builder
	if len(staticFindings) == 0 {
		diagnosticsSection.WriteString(noStaticFindingsPlaceholderConst)
	}
	for _, staticFinding := range staticFindings {
		diagnosticsSection.WriteString(fmt.Sprintf(staticFindingLineTemplateConst, staticFinding.Line, staticFinding.Message, staticFinding.Severity))
	}

	return fmt.Sprintf(userPromptTemplateConstant, filePath, diagnosticsSection.String(), fileContent)
}

// SystemPrompt returns the fixed reviewer instructions.
func SystemPrompt() string {
	return systemPromptConstant
}
