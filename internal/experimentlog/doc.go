// Package experimentlog persists an append-only JSONL journal of audit run
// events. Every reasoning request, static analysis pass, and run transition is
// recorded durably before the pipeline advances, so an interrupted run leaves
// a complete prefix of its history on disk.
package experimentlog
