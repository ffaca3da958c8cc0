// Package escalation decides whether a model answer can be trusted or must be
// handed to a human. The confidence signal is pluggable: the default strategy
// leans on the model's structured self-report, and a future grounding
// classifier can replace it without touching the orchestrator.
package escalation

import (
	"encoding/json"
	"strings"

	"github.com/ziadkadry99/support-bot/internal/retrieval"
)

// Verdict is the structured output the model is instructed to emit for every
// chat turn.
type Verdict struct {
	Response          string  `json:"response"`
	Confidence        float64 `json:"confidence"`
	Escalated         bool    `json:"escalated"`
	EscalationReason  string  `json:"escalation_reason"`
	MessageType       string  `json:"message_type"`
	EscalationMessage string  `json:"escalation_message"`
}

// Message types the model reports.
const (
	TypeGreeting = "greeting"
	TypeQuestion = "question"
	TypeOther    = "other"
)

// defaultConfidence applies when the model ignores the JSON contract and
// returns plain prose: usable, but not trusted enough to skip review near
// the threshold.
const defaultConfidence = 0.7

// ParseVerdict decodes the model's JSON self-report. Output that is not valid
// JSON degrades to a plain-text verdict with default confidence rather than
// failing the turn.
func ParseVerdict(raw string) Verdict {
	trimmed := strings.TrimSpace(raw)

	// Models in JSON mode occasionally still wrap output in a code fence.
	trimmed = strings.TrimPrefix(trimmed, "```json")
	trimmed = strings.TrimPrefix(trimmed, "```")
	trimmed = strings.TrimSuffix(trimmed, "```")
	trimmed = strings.TrimSpace(trimmed)

	var v Verdict
	if err := json.Unmarshal([]byte(trimmed), &v); err != nil || v.Response == "" {
		return Verdict{
			Response:    strings.TrimSpace(raw),
			Confidence:  defaultConfidence,
			MessageType: TypeOther,
		}
	}
	return v
}

// Strategy computes the final confidence score and escalation decision for a
// candidate answer. Implementations must be pure: no retries, no side effects.
type Strategy interface {
	Evaluate(v Verdict, used retrieval.PromptContext) (confidence float64, escalate bool)
}

// SelfReportStrategy trusts the model's own confidence estimate, corrected by
// retrieval coverage: a factual question answered with no retrieved context
// cannot be confident no matter what the model claims.
type SelfReportStrategy struct {
	// Threshold below which every answer escalates.
	Threshold float64
	// EmptyContextCap bounds confidence for questions answered without any
	// retrieved context.
	EmptyContextCap float64
}

// NewSelfReportStrategy builds the default strategy for the given threshold.
func NewSelfReportStrategy(threshold float64) *SelfReportStrategy {
	return &SelfReportStrategy{
		Threshold:       threshold,
		EmptyContextCap: 0.5,
	}
}

func (s *SelfReportStrategy) Evaluate(v Verdict, used retrieval.PromptContext) (float64, bool) {
	confidence := clamp01(v.Confidence)

	emptyFactual := used.Empty() && v.MessageType == TypeQuestion
	if emptyFactual && confidence > s.EmptyContextCap {
		confidence = s.EmptyContextCap
	}

	escalate := v.Escalated || emptyFactual || confidence < s.Threshold
	return confidence, escalate
}

func clamp01(f float64) float64 {
	switch {
	case f < 0:
		return 0
	case f > 1:
		return 1
	default:
		return f
	}
}
