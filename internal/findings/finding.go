package findings

// Source identifies which pipeline stage produced a finding.
type Source string

// Finding sources supported by the audit pipeline.
const (
	SourceStatic Source = "static"
	SourceModel  Source = "model"
)

// Severity enumerates normalized finding severities.
type Severity string

// Severity values ordered from least to most severe.
const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

var severityRankMapping = map[Severity]int{
	SeverityLow:      1,
	SeverityMedium:   2,
	SeverityHigh:     3,
	SeverityCritical: 4,
}

// Rank returns the numeric ordering weight of the severity; unknown severities rank below low.
func (severity Severity) Rank() int {
	return severityRankMapping[severity]
}

// Finding models a single reported issue. Instances are immutable once created.
type Finding struct {
	Source   Source   `json:"source" yaml:"source"`
	Kind     string   `json:"kind" yaml:"kind"`
	Severity Severity `json:"severity" yaml:"severity"`
	FilePath string   `json:"file_path" yaml:"file_path"`
	Line     int      `json:"line" yaml:"line"`
	Column   int      `json:"column,omitempty" yaml:"column,omitempty"`
	Message  string   `json:"message" yaml:"message"`
}
