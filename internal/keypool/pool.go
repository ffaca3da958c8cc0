package keypool

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/ziadkadry99/support-bot/internal/llm"
)

// Status is the health state of a credential.
type Status string

const (
	StatusHealthy   Status = "healthy"
	StatusDegraded  Status = "degraded"
	StatusExhausted Status = "exhausted"
)

// ErrNoneAvailable is returned by SelectNext when every credential is either
// excluded or exhausted.
var ErrNoneAvailable = errors.New("keypool: no credentials available")

// Credential is a snapshot of one provider credential. Secret is included so
// the caller can build a provider from it; health bookkeeping is owned by the
// pool and mutated only through ReportOutcome.
type Credential struct {
	ID       string
	Secret   string
	Priority int
}

// CredentialStatus is the secret-free health view exposed by Snapshot.
type CredentialStatus struct {
	ID          string    `json:"id"`
	Priority    int       `json:"priority"`
	Status      Status    `json:"status"`
	Failures    int       `json:"failures"`
	LastFailure time.Time `json:"last_failure,omitempty"`
}

type credential struct {
	id          string
	secret      string
	priority    int
	status      Status
	failures    int
	lastFailure time.Time
	lastUse     time.Time
}

// Pool tracks a fixed set of credentials and their health. All state is in
// memory and shared across concurrent chat turns; every read-modify-write
// happens under one pool-wide mutex.
type Pool struct {
	mu               sync.Mutex
	creds            []*credential
	failureThreshold int
	cooldown         time.Duration
	now              func() time.Time
}

// New creates a pool from an ordered list of secrets. Position in the list is
// the priority rank: secrets[0] is tried first. failureThreshold is the
// consecutive-failure count at which a credential is exhausted; cooldown is
// how long an exhausted credential stays out of rotation.
func New(secrets []string, failureThreshold int, cooldown time.Duration) *Pool {
	p := &Pool{
		failureThreshold: failureThreshold,
		cooldown:         cooldown,
		now:              time.Now,
	}
	for i, secret := range secrets {
		p.creds = append(p.creds, &credential{
			id:       credentialID(i),
			secret:   secret,
			priority: i + 1,
			status:   StatusHealthy,
		})
	}
	return p
}

func credentialID(i int) string {
	return fmt.Sprintf("key-%d", i+1)
}

// Size returns the number of configured credentials.
func (p *Pool) Size() int {
	return len(p.creds)
}

// SelectNext picks the best eligible credential: highest priority rank first,
// ties broken by earliest last use. Credentials in excluding or currently
// exhausted are skipped. Exhausted credentials whose cooldown has elapsed are
// reset here; there is no background timer.
func (p *Pool) SelectNext(excluding map[string]bool) (Credential, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	now := p.now()
	var best *credential
	for _, c := range p.creds {
		if c.status == StatusExhausted && now.Sub(c.lastFailure) >= p.cooldown {
			// Cooldown elapsed: the only path back from exhausted.
			c.status = StatusHealthy
			c.failures = 0
		}
		if excluding[c.id] || c.status == StatusExhausted {
			continue
		}
		if best == nil ||
			c.priority < best.priority ||
			(c.priority == best.priority && c.lastUse.Before(best.lastUse)) {
			best = c
		}
	}

	if best == nil {
		return Credential{}, ErrNoneAvailable
	}

	best.lastUse = now
	return Credential{ID: best.id, Secret: best.secret, Priority: best.priority}, nil
}

// ReportOutcome updates a credential's health after one provider attempt.
//
//   - Success resets the failure counter and restores healthy.
//   - AuthFailure exhausts the credential immediately: the key is invalid and
//     retrying it cannot help.
//   - RateLimited increments the counter and exhausts once it reaches the
//     threshold, degraded until then.
//   - Timeout and TransientError increment the counter without exhausting, so
//     a flaky network does not take keys out of rotation.
func (p *Pool) ReportOutcome(id string, res llm.Result) {
	p.mu.Lock()
	defer p.mu.Unlock()

	c := p.find(id)
	if c == nil {
		return
	}

	switch res.State {
	case llm.StateSuccess:
		c.failures = 0
		c.status = StatusHealthy

	case llm.StateAuthFailure:
		c.failures++
		c.lastFailure = p.now()
		c.status = StatusExhausted

	case llm.StateRateLimited:
		c.failures++
		c.lastFailure = p.now()
		if c.failures >= p.failureThreshold {
			c.status = StatusExhausted
		} else {
			c.status = StatusDegraded
		}

	case llm.StateTimeout, llm.StateTransient:
		c.failures++
		c.lastFailure = p.now()
		if c.status != StatusExhausted {
			c.status = StatusDegraded
		}
	}
}

// Snapshot returns the health of every credential without secrets, for the
// status endpoint.
func (p *Pool) Snapshot() []CredentialStatus {
	p.mu.Lock()
	defer p.mu.Unlock()

	out := make([]CredentialStatus, len(p.creds))
	for i, c := range p.creds {
		out[i] = CredentialStatus{
			ID:          c.id,
			Priority:    c.priority,
			Status:      c.status,
			Failures:    c.failures,
			LastFailure: c.lastFailure,
		}
	}
	return out
}

func (p *Pool) find(id string) *credential {
	for _, c := range p.creds {
		if c.id == id {
			return c
		}
	}
	return nil
}
