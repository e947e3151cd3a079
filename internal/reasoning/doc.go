// Package reasoning sends source files with their static diagnostics to an
// OpenAI-compatible chat-completions service and turns the replies into model
// findings. The service retries a failed request exactly once and degrades to
// zero model findings when the service stays unavailable, so a reasoning
// outage never stops an audit run.
package reasoning
