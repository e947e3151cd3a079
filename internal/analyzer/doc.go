// Package analyzer collects static diagnostics for a single Python source
// file by running pylint and normalizing its JSON report into findings.
package analyzer
