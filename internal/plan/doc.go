// Package plan merges static and model findings into a prioritized,
// deduplicated remediation plan for a single file.
package plan
