// Package audit orchestrates the audit pipeline: it discovers Python files in
// a target directory, collects static diagnostics, requests model findings
// from the reasoning service, merges both into per-file plans, and renders a
// consolidated report. Files are processed strictly one at a time with a
// configurable delay between them.
package audit
