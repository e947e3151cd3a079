package plan

import (
	"fmt"
	"sort"
	"strings"

	"github.com/temirov/codeaudit/internal/findings"
)

const (
	emptyPlanSummaryConstant       = "no findings"
	summaryTemplateConstant        = "%d findings: %s"
	severityCountTemplateConstant  = "%d %s"
	severityCountSeparatorConstant = ", "
)

var severityOrderForSummary = []findings.Severity{
	findings.SeverityCritical,
	findings.SeverityHigh,
	findings.SeverityMedium,
	findings.SeverityLow,
}

// Merger builds FilePlans from collected findings.
type Merger struct{}

// NewMerger constructs a plan merger.
func NewMerger() *Merger {
	return &Merger{}
}

// Merge concatenates static and model findings, drops model findings that
// duplicate a static finding at the same location, sorts by descending
// severity, and attaches a summary. Empty input produces an empty plan.
func (merger *Merger) Merge(filePath string, staticFindings []findings.Finding, modelFindings []findings.Finding) findings.FilePlan {
	mergedFindings := make([]findings.Finding, 0, len(staticFindings)+len(modelFindings))
	mergedFindings = append(mergedFindings, staticFindings...)

	for _, modelFinding := range modelFindings {
		if duplicatesStaticFinding(modelFinding, staticFindings) {
			continue
		}
		mergedFindings = append(mergedFindings, modelFinding)
	}

	sortFindings(mergedFindings)

	return findings.FilePlan{
		FilePath: filePath,
		Findings: mergedFindings,
		Summary:  summarizeFindings(mergedFindings),
	}
}

// duplicatesStaticFinding reports whether a model finding restates a static
// finding at the same location. Messages match when either contains the other
// case-insensitively.
func duplicatesStaticFinding(modelFinding findings.Finding, staticFindings []findings.Finding) bool {
	for _, staticFinding := range staticFindings {
		if staticFinding.Line != modelFinding.Line {
			continue
		}
		if messagesOverlap(staticFinding.Message, modelFinding.Message) {
			return true
		}
	}
	return false
}

func messagesOverlap(firstMessage string, secondMessage string) bool {
	loweredFirst := strings.ToLower(strings.TrimSpace(firstMessage))
	loweredSecond := strings.ToLower(strings.TrimSpace(secondMessage))
	if len(loweredFirst) == 0 || len(loweredSecond) == 0 {
		return false
	}
	return strings.Contains(loweredFirst, loweredSecond) || strings.Contains(loweredSecond, loweredFirst)
}

// sortFindings orders by descending severity, static before model at equal
// severity, then ascending line, then message for determinism.
func sortFindings(unsortedFindings []findings.Finding) {
	sort.SliceStable(unsortedFindings, func(firstIndex int, secondIndex int) bool {
		firstFinding := unsortedFindings[firstIndex]
		secondFinding := unsortedFindings[secondIndex]

		if firstFinding.Severity.Rank() != secondFinding.Severity.Rank() {
			return firstFinding.Severity.Rank() > secondFinding.Severity.Rank()
		}
		if firstFinding.Source != secondFinding.Source {
			return firstFinding.Source == findings.SourceStatic
		}
		if firstFinding.Line != secondFinding.Line {
			return firstFinding.Line < secondFinding.Line
		}
		return firstFinding.Message < secondFinding.Message
	})
}

func summarizeFindings(sortedFindings []findings.Finding) string {
	if len(sortedFindings) == 0 {
		return emptyPlanSummaryConstant
	}

	severityCounts := map[findings.Severity]int{}
	for _, sortedFinding := range sortedFindings {
		severityCounts[sortedFinding.Severity]++
	}

	severityFragments := make([]string, 0, len(severityOrderForSummary))
	for _, severity := range severityOrderForSummary {
		if severityCounts[severity] == 0 {
			continue
		}
		severityFragments = append(severityFragments, fmt.Sprintf(severityCountTemplateConstant, severityCounts[severity], severity))
	}

	return fmt.Sprintf(summaryTemplateConstant, len(sortedFindings), strings.Join(severityFragments, severityCountSeparatorConstant))
}
