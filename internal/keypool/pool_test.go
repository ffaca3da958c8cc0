package keypool

import (
	"testing"
	"time"

	"github.com/ziadkadry99/support-bot/internal/llm"
)

func newTestPool(t *testing.T, secrets []string) (*Pool, *time.Time) {
	t.Helper()
	p := New(secrets, 3, time.Minute)
	clock := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	p.now = func() time.Time { return clock }
	return p, &clock
}

func TestSelectNextPrefersHighestPriority(t *testing.T) {
	p, _ := newTestPool(t, []string{"sk-a", "sk-b", "sk-c"})

	cred, err := p.SelectNext(nil)
	if err != nil {
		t.Fatalf("SelectNext: %v", err)
	}
	if cred.ID != "key-1" {
		t.Errorf("expected key-1, got %s", cred.ID)
	}
	if cred.Secret != "sk-a" {
		t.Errorf("expected secret sk-a, got %q", cred.Secret)
	}
}

func TestSelectNextSkipsExcluded(t *testing.T) {
	p, _ := newTestPool(t, []string{"sk-a", "sk-b", "sk-c"})

	excluded := map[string]bool{"key-1": true, "key-2": true}
	cred, err := p.SelectNext(excluded)
	if err != nil {
		t.Fatalf("SelectNext: %v", err)
	}
	if cred.ID != "key-3" {
		t.Errorf("expected key-3, got %s", cred.ID)
	}
}

func TestSelectNextNoneAvailable(t *testing.T) {
	p, _ := newTestPool(t, []string{"sk-a"})

	_, err := p.SelectNext(map[string]bool{"key-1": true})
	if err != ErrNoneAvailable {
		t.Errorf("expected ErrNoneAvailable, got %v", err)
	}
}

func TestSelectNextTieBreaksByLastUse(t *testing.T) {
	p, clock := newTestPool(t, []string{"sk-a", "sk-b"})

	// Flatten priorities so only last-use decides.
	for _, c := range p.creds {
		c.priority = 1
	}

	first, err := p.SelectNext(nil)
	if err != nil {
		t.Fatalf("SelectNext: %v", err)
	}

	*clock = clock.Add(time.Second)
	second, err := p.SelectNext(nil)
	if err != nil {
		t.Fatalf("SelectNext: %v", err)
	}
	if second.ID == first.ID {
		t.Errorf("expected round-robin to pick the other credential, got %s twice", first.ID)
	}
}

func TestReportOutcomeSuccessResets(t *testing.T) {
	p, _ := newTestPool(t, []string{"sk-a"})

	p.ReportOutcome("key-1", llm.Transient(nil))
	p.ReportOutcome("key-1", llm.Transient(nil))
	p.ReportOutcome("key-1", llm.Success("ok", 1, 1))

	snap := p.Snapshot()[0]
	if snap.Status != StatusHealthy {
		t.Errorf("expected healthy, got %s", snap.Status)
	}
	if snap.Failures != 0 {
		t.Errorf("expected 0 failures, got %d", snap.Failures)
	}
}

func TestAuthFailureExhaustsImmediately(t *testing.T) {
	p, _ := newTestPool(t, []string{"sk-a"})

	p.ReportOutcome("key-1", llm.AuthFailure(nil))

	snap := p.Snapshot()[0]
	if snap.Status != StatusExhausted {
		t.Errorf("expected exhausted after auth failure, got %s", snap.Status)
	}

	if _, err := p.SelectNext(nil); err != ErrNoneAvailable {
		t.Errorf("expected exhausted credential to be unselectable, got %v", err)
	}
}

func TestRateLimitExhaustsAtThreshold(t *testing.T) {
	p, _ := newTestPool(t, []string{"sk-a"})

	p.ReportOutcome("key-1", llm.RateLimited(0, nil))
	p.ReportOutcome("key-1", llm.RateLimited(0, nil))

	if snap := p.Snapshot()[0]; snap.Status != StatusDegraded {
		t.Errorf("expected degraded below threshold, got %s", snap.Status)
	}

	p.ReportOutcome("key-1", llm.RateLimited(0, nil))

	if snap := p.Snapshot()[0]; snap.Status != StatusExhausted {
		t.Errorf("expected exhausted at threshold, got %s", snap.Status)
	}
}

func TestTransientErrorsNeverExhaust(t *testing.T) {
	p, _ := newTestPool(t, []string{"sk-a"})

	for i := 0; i < 10; i++ {
		p.ReportOutcome("key-1", llm.Timeout(nil))
	}

	snap := p.Snapshot()[0]
	if snap.Status != StatusDegraded {
		t.Errorf("expected degraded, got %s", snap.Status)
	}
	if snap.Failures != 10 {
		t.Errorf("expected 10 failures, got %d", snap.Failures)
	}

	if _, err := p.SelectNext(nil); err != nil {
		t.Errorf("degraded credential should remain selectable: %v", err)
	}
}

func TestCooldownRestoresExhaustedCredential(t *testing.T) {
	p, clock := newTestPool(t, []string{"sk-a"})

	p.ReportOutcome("key-1", llm.AuthFailure(nil))
	if _, err := p.SelectNext(nil); err != ErrNoneAvailable {
		t.Fatalf("expected none available, got %v", err)
	}

	// Just before the cooldown window: still exhausted.
	*clock = clock.Add(59 * time.Second)
	if _, err := p.SelectNext(nil); err != ErrNoneAvailable {
		t.Fatalf("expected none available before cooldown, got %v", err)
	}

	// Cooldown elapsed: eligible again, counter reset.
	*clock = clock.Add(time.Second)
	cred, err := p.SelectNext(nil)
	if err != nil {
		t.Fatalf("expected credential after cooldown, got %v", err)
	}
	if cred.ID != "key-1" {
		t.Errorf("expected key-1, got %s", cred.ID)
	}

	snap := p.Snapshot()[0]
	if snap.Status != StatusHealthy || snap.Failures != 0 {
		t.Errorf("expected healthy with 0 failures after cooldown, got %s/%d", snap.Status, snap.Failures)
	}
}

func TestSnapshotOmitsSecrets(t *testing.T) {
	p, _ := newTestPool(t, []string{"sk-very-secret"})

	snap := p.Snapshot()
	if len(snap) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(snap))
	}
	if snap[0].ID != "key-1" || snap[0].Priority != 1 {
		t.Errorf("unexpected snapshot entry: %+v", snap[0])
	}
}
