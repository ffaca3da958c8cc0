package escalation

import (
	"testing"

	"github.com/ziadkadry99/support-bot/internal/retrieval"
)

func nonEmptyContext() retrieval.PromptContext {
	return retrieval.PromptContext{Chunks: []retrieval.Chunk{
		{DocID: "doc-a", Title: "Admissions", Text: "requirements"},
	}}
}

func TestParseVerdictValidJSON(t *testing.T) {
	raw := `{"response":"You can enroll online.","confidence":0.85,"escalated":false,"escalation_reason":"","message_type":"question","escalation_message":""}`

	v := ParseVerdict(raw)
	if v.Response != "You can enroll online." {
		t.Errorf("Response = %q", v.Response)
	}
	if v.Confidence != 0.85 {
		t.Errorf("Confidence = %f, want 0.85", v.Confidence)
	}
	if v.Escalated {
		t.Error("Escalated should be false")
	}
	if v.MessageType != TypeQuestion {
		t.Errorf("MessageType = %q", v.MessageType)
	}
}

func TestParseVerdictCodeFence(t *testing.T) {
	raw := "```json\n{\"response\":\"hi\",\"confidence\":0.9,\"message_type\":\"greeting\"}\n```"

	v := ParseVerdict(raw)
	if v.Response != "hi" || v.Confidence != 0.9 {
		t.Errorf("fenced JSON not parsed: %+v", v)
	}
}

func TestParseVerdictPlainText(t *testing.T) {
	v := ParseVerdict("Sorry, I can only answer program questions.")

	if v.Response != "Sorry, I can only answer program questions." {
		t.Errorf("Response = %q", v.Response)
	}
	if v.Confidence != defaultConfidence {
		t.Errorf("Confidence = %f, want default %f", v.Confidence, defaultConfidence)
	}
	if v.Escalated {
		t.Error("plain-text fallback should not escalate by itself")
	}
}

func TestEvaluateConfidenceAlwaysInRange(t *testing.T) {
	s := NewSelfReportStrategy(0.6)

	for _, reported := range []float64{-5, -0.1, 0, 0.3, 0.99, 1, 2.4} {
		conf, _ := s.Evaluate(Verdict{Confidence: reported, MessageType: TypeGreeting}, nonEmptyContext())
		if conf < 0 || conf > 1 {
			t.Errorf("confidence %f out of range for reported %f", conf, reported)
		}
	}
}

func TestEvaluateEscalatesBelowThreshold(t *testing.T) {
	s := NewSelfReportStrategy(0.6)

	conf, escalate := s.Evaluate(Verdict{Confidence: 0.4, MessageType: TypeQuestion}, nonEmptyContext())
	if conf != 0.4 {
		t.Errorf("confidence = %f, want 0.4", conf)
	}
	if !escalate {
		t.Error("expected escalation below threshold")
	}
}

func TestEvaluateHonorsModelEscalationMarker(t *testing.T) {
	s := NewSelfReportStrategy(0.6)

	v := Verdict{
		Confidence:       0.9,
		Escalated:        true,
		EscalationReason: "policy-sensitive request",
		MessageType:      TypeQuestion,
	}
	_, escalate := s.Evaluate(v, nonEmptyContext())
	if !escalate {
		t.Error("explicit escalation marker must force escalation regardless of confidence")
	}
}

func TestEvaluateEmptyContextQuestionEscalates(t *testing.T) {
	s := NewSelfReportStrategy(0.6)

	conf, escalate := s.Evaluate(
		Verdict{Confidence: 0.95, MessageType: TypeQuestion},
		retrieval.PromptContext{},
	)
	if !escalate {
		t.Error("factual question with empty context must escalate")
	}
	if conf > s.EmptyContextCap {
		t.Errorf("confidence %f exceeds empty-context cap %f", conf, s.EmptyContextCap)
	}
}

func TestEvaluateGreetingWithEmptyContextDoesNotEscalate(t *testing.T) {
	s := NewSelfReportStrategy(0.6)

	conf, escalate := s.Evaluate(
		Verdict{Confidence: 0.95, MessageType: TypeGreeting},
		retrieval.PromptContext{},
	)
	if escalate {
		t.Error("greetings never require retrieval coverage")
	}
	if conf != 0.95 {
		t.Errorf("confidence = %f, want 0.95", conf)
	}
}

func TestEvaluateConfidentAnswerPasses(t *testing.T) {
	s := NewSelfReportStrategy(0.6)

	conf, escalate := s.Evaluate(
		Verdict{Confidence: 0.88, MessageType: TypeQuestion},
		nonEmptyContext(),
	)
	if escalate {
		t.Error("confident grounded answer should not escalate")
	}
	if conf != 0.88 {
		t.Errorf("confidence = %f, want 0.88", conf)
	}
}
