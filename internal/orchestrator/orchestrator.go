// Package orchestrator drives one chat turn end to end: retrieval, provider
// attempts with key rotation and backoff, confidence evaluation, and the
// deterministic fallback when every provider is down.
package orchestrator

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ziadkadry99/support-bot/internal/escalation"
	"github.com/ziadkadry99/support-bot/internal/escalations"
	"github.com/ziadkadry99/support-bot/internal/keypool"
	"github.com/ziadkadry99/support-bot/internal/llm"
	"github.com/ziadkadry99/support-bot/internal/retrieval"
)

// ErrEmptyMessage is the only error Chat returns: malformed input. Every
// provider or retrieval failure is absorbed into the response instead.
var ErrEmptyMessage = errors.New("orchestrator: message must not be empty")

// FallbackProvider is the provider identifier reported when no credential
// produced an answer.
const FallbackProvider = "fallback"

const fallbackText = "I'm currently experiencing technical difficulties. " +
	"Your question has been forwarded to our support team, who will get back to you shortly. " +
	"Thank you for your patience."

// ChatTurn is one user turn, immutable once constructed.
type ChatTurn struct {
	Message   string
	History   []llm.Message
	SessionID string
}

// ChatResponse is the unified result of a chat turn. It is always well
// formed; degraded quality shows up as low confidence and the escalation
// flag, never as an error.
type ChatResponse struct {
	Response         string   `json:"response"`
	Confidence       float64  `json:"confidence_score"`
	Escalated        bool     `json:"escalated"`
	EscalationReason string   `json:"escalation_reason,omitempty"`
	Sources          []string `json:"sources"`
	Provider         string   `json:"provider"`
	SessionID        string   `json:"session_id"`
}

// ProviderFactory builds a single-attempt provider for one credential. Tests
// inject fakes here.
type ProviderFactory func(cred keypool.Credential) llm.Provider

// Recorder persists escalated turns. Satisfied by *escalations.Store.
type Recorder interface {
	Add(ctx context.Context, rec escalations.Record) (escalations.Record, error)
}

// Options bound the orchestrator's retry loop and prompt assembly.
type Options struct {
	Model              string
	MaxAttempts        int
	BaseBackoff        time.Duration
	RequestTimeout     time.Duration
	TurnTimeout        time.Duration
	RetrievalK         int
	ContextBudget      int
	MaxTokens          int
	Temperature        float64
	FallbackConfidence float64
}

func (o *Options) applyDefaults() {
	if o.MaxAttempts <= 0 {
		o.MaxAttempts = 3
	}
	if o.BaseBackoff <= 0 {
		o.BaseBackoff = time.Second
	}
	if o.RequestTimeout <= 0 {
		o.RequestTimeout = 30 * time.Second
	}
	if o.TurnTimeout <= 0 {
		o.TurnTimeout = 90 * time.Second
	}
	if o.RetrievalK <= 0 {
		o.RetrievalK = 5
	}
	if o.ContextBudget <= 0 {
		o.ContextBudget = 6000
	}
	if o.MaxTokens <= 0 {
		o.MaxTokens = 500
	}
	if o.Temperature == 0 {
		o.Temperature = 0.7
	}
	if o.FallbackConfidence <= 0 {
		o.FallbackConfidence = 0.1
	}
}

// turnState is the orchestrator's position within one chat turn.
type turnState int

const (
	stateBuildContext turnState = iota
	stateAttemptProvider
	stateEvaluate
	stateAllExhausted
)

// Orchestrator owns no per-turn state; the key pool carries the only state
// shared between turns.
type Orchestrator struct {
	pool      *keypool.Pool
	assembler *retrieval.Assembler
	strategy  escalation.Strategy
	factory   ProviderFactory
	recorder  Recorder
	logger    *zap.Logger
	opts      Options

	// sleep is swapped out in tests to avoid real backoff delays.
	sleep func(ctx context.Context, d time.Duration) error
}

// New creates an orchestrator. recorder may be nil; escalated turns are then
// not persisted.
func New(pool *keypool.Pool, assembler *retrieval.Assembler, strategy escalation.Strategy,
	factory ProviderFactory, recorder Recorder, logger *zap.Logger, opts Options) *Orchestrator {

	opts.applyDefaults()
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Orchestrator{
		pool:      pool,
		assembler: assembler,
		strategy:  strategy,
		factory:   factory,
		recorder:  recorder,
		logger:    logger,
		opts:      opts,
		sleep:     sleepCtx,
	}
}

// Chat handles one turn. The only returned error is ErrEmptyMessage; all
// provider and retrieval failures surface through the response itself.
func (o *Orchestrator) Chat(ctx context.Context, turn ChatTurn) (ChatResponse, error) {
	if strings.TrimSpace(turn.Message) == "" {
		return ChatResponse{}, ErrEmptyMessage
	}
	if turn.SessionID == "" {
		turn.SessionID = uuid.NewString()
	}

	ctx, cancel := context.WithTimeout(ctx, o.opts.TurnTimeout)
	defer cancel()

	var (
		st       = stateBuildContext
		pc       retrieval.PromptContext
		excluded = make(map[string]bool)
		attempts int
		cred     keypool.Credential
		res      llm.Result
	)

	for {
		switch st {
		case stateBuildContext:
			pc = o.assembler.BuildContext(ctx, turn.Message, o.opts.RetrievalK, o.opts.ContextBudget)
			st = stateAttemptProvider

		case stateAttemptProvider:
			c, err := o.pool.SelectNext(excluded)
			if err != nil {
				st = stateAllExhausted
				continue
			}
			cred = c
			excluded[cred.ID] = true
			attempts++

			res = o.attempt(ctx, cred, turn, pc)
			o.pool.ReportOutcome(cred.ID, res)

			if res.Succeeded() {
				st = stateEvaluate
				continue
			}

			o.logger.Warn("provider attempt failed",
				zap.String("credential", cred.ID),
				zap.Int("attempt", attempts),
				zap.String("outcome", res.String()))

			if attempts >= o.opts.MaxAttempts {
				st = stateAllExhausted
				continue
			}
			if err := o.sleep(ctx, o.backoff(attempts, res)); err != nil {
				st = stateAllExhausted
			}

		case stateEvaluate:
			return o.respond(ctx, turn, pc, cred, res), nil

		case stateAllExhausted:
			return o.fallback(ctx, turn), nil
		}
	}
}

// attempt performs one provider call under its own timeout.
func (o *Orchestrator) attempt(ctx context.Context, cred keypool.Credential,
	turn ChatTurn, pc retrieval.PromptContext) llm.Result {

	ctx, cancel := context.WithTimeout(ctx, o.opts.RequestTimeout)
	defer cancel()

	messages := []llm.Message{{Role: llm.RoleSystem, Content: buildSystemPrompt(pc)}}
	messages = append(messages, turn.History...)
	messages = append(messages, llm.Message{Role: llm.RoleUser, Content: turn.Message})

	provider := o.factory(cred)
	return provider.Complete(ctx, llm.Request{
		Model:       o.opts.Model,
		Messages:    messages,
		MaxTokens:   o.opts.MaxTokens,
		Temperature: o.opts.Temperature,
		JSONMode:    true,
	})
}

// backoff picks the delay before the next attempt: the remote's rate-limit
// hint when present, otherwise exponential from the base delay.
func (o *Orchestrator) backoff(attempts int, res llm.Result) time.Duration {
	if res.State == llm.StateRateLimited && res.RetryAfter > 0 {
		return res.RetryAfter
	}
	return o.opts.BaseBackoff << (attempts - 1)
}

func (o *Orchestrator) respond(ctx context.Context, turn ChatTurn,
	pc retrieval.PromptContext, cred keypool.Credential, res llm.Result) ChatResponse {

	verdict := escalation.ParseVerdict(res.Content)
	confidence, escalate := o.strategy.Evaluate(verdict, pc)

	reason := verdict.EscalationReason
	if escalate && reason == "" {
		if pc.Empty() && verdict.MessageType == escalation.TypeQuestion {
			reason = "no supporting documents found"
		} else {
			reason = "confidence below threshold"
		}
	}
	if !escalate {
		reason = ""
	}

	sources := pc.Sources()
	if sources == nil {
		sources = []string{}
	}

	resp := ChatResponse{
		Response:         verdict.Response,
		Confidence:       confidence,
		Escalated:        escalate,
		EscalationReason: reason,
		Sources:          sources,
		Provider:         cred.ID,
		SessionID:        turn.SessionID,
	}
	o.record(ctx, turn, resp)
	return resp
}

// fallback is the deterministic response when no provider produced an
// answer: templated text, sentinel confidence, escalation forced.
func (o *Orchestrator) fallback(ctx context.Context, turn ChatTurn) ChatResponse {
	o.logger.Error("all providers exhausted, returning fallback response",
		zap.String("session", turn.SessionID))

	resp := ChatResponse{
		Response:         fallbackText,
		Confidence:       o.opts.FallbackConfidence,
		Escalated:        true,
		EscalationReason: "all providers unavailable",
		Sources:          []string{},
		Provider:         FallbackProvider,
		SessionID:        turn.SessionID,
	}
	o.record(ctx, turn, resp)
	return resp
}

// record persists an escalated turn, best effort. The turn's deadline may
// already be spent, so the write gets its own short budget.
func (o *Orchestrator) record(ctx context.Context, turn ChatTurn, resp ChatResponse) {
	if o.recorder == nil || !resp.Escalated {
		return
	}

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()

	_, err := o.recorder.Add(ctx, escalations.Record{
		SessionID:   resp.SessionID,
		UserMessage: turn.Message,
		BotResponse: resp.Response,
		Reason:      resp.EscalationReason,
		Confidence:  resp.Confidence,
		Provider:    resp.Provider,
	})
	if err != nil {
		o.logger.Warn("failed to persist escalation", zap.Error(err))
	}
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
