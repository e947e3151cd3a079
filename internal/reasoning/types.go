package reasoning

import (
	"context"
	"time"
)

// CompletionRequest describes one chat-completion call.
type CompletionRequest struct {
	Model        string
	SystemPrompt string
	UserPrompt   string
}

// ChatCompleter issues a single chat-completion request and returns the raw
// assistant reply.
type ChatCompleter interface {
	Complete(executionContext context.Context, request CompletionRequest) (string, error)
}

// Sleeper blocks for the supplied duration. Injected so tests control time.
type Sleeper interface {
	Sleep(duration time.Duration)
}

type realSleeper struct{}

func (realSleeper) Sleep(duration time.Duration) {
	time.Sleep(duration)
}
