// Package findings defines the normalized issue model shared by the static
// analyzer boundary, the reasoning client, and the plan merger.
package findings
