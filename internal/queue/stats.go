package queue

import (
	"time"

	"github.com/ppiankov/autogate/internal/model"
)

// Stats is a dashboard snapshot of queue state. Informational only,
// never an input to decisioning.
type Stats struct {
	Pending   int `json:"pending"`
	Approved  int `json:"approved"`
	Rejected  int `json:"rejected"`
	Expired   int `json:"expired"`
	Escalated int `json:"escalated"`

	// PendingByUrgency counts pending requests per urgency.
	PendingByUrgency map[model.Urgency]int `json:"pending_by_urgency"`

	// OldestPendingAge is the age of the longest-waiting pending request.
	OldestPendingAge time.Duration `json:"oldest_pending_age"`

	// AvgResolutionWait averages the pending→approved/rejected wait.
	AvgResolutionWait time.Duration `json:"avg_resolution_wait"`
}

// Stats returns a consistent snapshot of counts and wait times.
func (q *Queue) Stats() Stats {
	q.mu.RLock()
	defer q.mu.RUnlock()

	s := Stats{
		Pending:          len(q.pending),
		Approved:         q.approved,
		Rejected:         q.rejected,
		Expired:          q.expired,
		Escalated:        q.escalated,
		PendingByUrgency: make(map[model.Urgency]int),
	}

	now := q.now().UTC()
	for _, req := range q.pending {
		s.PendingByUrgency[req.Decision.Action.Urgency]++
		if age := req.Age(now); age > s.OldestPendingAge {
			s.OldestPendingAge = age
		}
	}
	if q.resolved > 0 {
		s.AvgResolutionWait = q.totalWait / time.Duration(q.resolved)
	}
	return s
}
