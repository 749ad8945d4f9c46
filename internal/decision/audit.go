package decision

import (
	"sync"

	"github.com/mrz1836/compass/internal/constants"
	"github.com/mrz1836/compass/internal/domain"
)

// AuditTrail is the append-only record of every decision the engine made.
// Together with each decision's evaluated-rule list it allows replaying why
// an action was chosen. Appends take a short lock; queries copy.
type AuditTrail struct {
	mu      sync.RWMutex
	entries []*domain.Decision
}

// NewAuditTrail creates an empty audit trail.
func NewAuditTrail() *AuditTrail {
	return &AuditTrail{}
}

// Append records a decision.
func (a *AuditTrail) Append(d *domain.Decision) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.entries = append(a.entries, d)
}

// All returns every recorded decision in append order.
func (a *AuditTrail) All() []*domain.Decision {
	a.mu.RLock()
	defer a.mu.RUnlock()
	out := make([]*domain.Decision, len(a.entries))
	copy(out, a.entries)
	return out
}

// ByType returns decisions of one type in append order.
func (a *AuditTrail) ByType(dt constants.DecisionType) []*domain.Decision {
	a.mu.RLock()
	defer a.mu.RUnlock()
	var out []*domain.Decision
	for _, d := range a.entries {
		if d.Type == dt {
			out = append(out, d)
		}
	}
	return out
}

// ByID returns the decision with the given ID, or nil.
func (a *AuditTrail) ByID(id string) *domain.Decision {
	a.mu.RLock()
	defer a.mu.RUnlock()
	for _, d := range a.entries {
		if d.ID == id {
			return d
		}
	}
	return nil
}

// Len returns the number of recorded decisions.
func (a *AuditTrail) Len() int {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return len(a.entries)
}
