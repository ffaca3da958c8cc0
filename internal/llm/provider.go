package llm

import "context"

// Provider defines the interface for LLM providers.
//
// Complete performs exactly one request/response cycle. Provider failures are
// reported through the returned Result, never as a Go error or a panic; retry
// policy lives with the caller.
type Provider interface {
	// Complete sends a completion request and returns the attempt outcome.
	Complete(ctx context.Context, req Request) Result
	// Name returns the name of this provider.
	Name() string
}
