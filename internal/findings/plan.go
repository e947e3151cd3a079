package findings

// FilePlan captures the merged, prioritized remediation plan for one file.
// Plans are created once by the plan merger and never mutated afterwards.
type FilePlan struct {
	FilePath string    `json:"file_path" yaml:"file_path"`
	Findings []Finding `json:"findings" yaml:"findings"`
	Summary  string    `json:"summary" yaml:"summary"`
}
