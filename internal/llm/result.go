package llm

import (
	"fmt"
	"time"
)

// State classifies the outcome of a single provider attempt.
type State string

const (
	StateSuccess     State = "success"
	StateRateLimited State = "rate_limited"
	StateAuthFailure State = "auth_failure"
	StateTimeout     State = "timeout"
	StateTransient   State = "transient_error"
)

// Result is the outcome of exactly one provider attempt. Exactly one state is
// set; the remaining fields are meaningful only for that state.
type Result struct {
	State State

	// Success fields.
	Content      string
	InputTokens  int
	OutputTokens int

	// RetryAfter is the remote's backoff hint for StateRateLimited. Zero
	// means the remote gave none and the caller's default applies.
	RetryAfter time.Duration

	// Cause carries the underlying error for failure states.
	Cause error
}

// Succeeded reports whether the attempt produced a usable completion.
func (r Result) Succeeded() bool { return r.State == StateSuccess }

// Retryable reports whether a later attempt with a different credential may
// succeed. Auth failures are credential-specific and still retryable with a
// different key; only success is terminal.
func (r Result) Retryable() bool { return r.State != StateSuccess }

func (r Result) String() string {
	switch r.State {
	case StateSuccess:
		return fmt.Sprintf("success (%d+%d tokens)", r.InputTokens, r.OutputTokens)
	case StateRateLimited:
		if r.RetryAfter > 0 {
			return fmt.Sprintf("rate limited (retry after %s)", r.RetryAfter)
		}
		return "rate limited"
	default:
		if r.Cause != nil {
			return fmt.Sprintf("%s: %v", r.State, r.Cause)
		}
		return string(r.State)
	}
}

// Success builds a successful Result.
func Success(content string, inputTokens, outputTokens int) Result {
	return Result{State: StateSuccess, Content: content, InputTokens: inputTokens, OutputTokens: outputTokens}
}

// RateLimited builds a rate-limit Result with an optional backoff hint.
func RateLimited(retryAfter time.Duration, cause error) Result {
	return Result{State: StateRateLimited, RetryAfter: retryAfter, Cause: cause}
}

// AuthFailure builds an authentication-failure Result.
func AuthFailure(cause error) Result {
	return Result{State: StateAuthFailure, Cause: cause}
}

// Timeout builds a timeout Result.
func Timeout(cause error) Result {
	return Result{State: StateTimeout, Cause: cause}
}

// Transient builds a transient-error Result.
func Transient(cause error) Result {
	return Result{State: StateTransient, Cause: cause}
}
