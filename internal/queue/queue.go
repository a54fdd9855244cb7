package queue

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ppiankov/autogate/internal/audit"
	"github.com/ppiankov/autogate/internal/model"
	"github.com/ppiankov/autogate/internal/router"
)

var (
	// ErrQueueFull is returned when the queue is at capacity and eviction
	// is not enabled. The caller must see the overflow; actions are never
	// silently dropped.
	ErrQueueFull = errors.New("queue: at capacity")

	// ErrNotFound is returned for unknown or already-terminal request ids.
	// Expected under two-approver races; callers should treat it as a
	// no-op, not a failure.
	ErrNotFound = errors.New("queue: request not found or already resolved")

	// ErrEmptyReason is returned when a rejection carries no reason.
	ErrEmptyReason = errors.New("queue: rejection requires a non-empty reason")
)

// urgencyWeight is the fixed urgency component of a request's priority.
var urgencyWeight = map[model.Urgency]int{
	model.UrgencyLow:      1,
	model.UrgencyNormal:   2,
	model.UrgencyHigh:     5,
	model.UrgencyCritical: 10,
}

// riskContribution is the fixed risk-level component of a request's priority.
var riskContribution = map[model.RiskLevel]int{
	model.RiskSafe:     0,
	model.RiskLow:      10,
	model.RiskMedium:   30,
	model.RiskHigh:     60,
	model.RiskCritical: 100,
}

// Priority computes a request's queue priority from the fixed weight tables.
// Risk dominates urgency: a low-urgency critical-risk item (1+100) outranks
// a critical-urgency safe item (10+0).
func Priority(u model.Urgency, level model.RiskLevel) int {
	return urgencyWeight[u] + riskContribution[level]
}

// Defaults for queue tunables.
const (
	DefaultCapacity         = 100
	DefaultExpirationWindow = 24 * time.Hour
	DefaultEscalationAge    = 12 * time.Hour
)

// Config holds queue tunables.
type Config struct {
	// Capacity bounds the pending set. Fail-closed by default: new items
	// are refused over evicting existing ones.
	Capacity int
	// ExpirationWindow is how long a request may stay pending before the
	// sweep expires it.
	ExpirationWindow time.Duration
	// EscalationAge is the pending age after which a request is flagged
	// for escalation.
	EscalationAge time.Duration
	// EvictOnFull, when explicitly set, rejects the lowest-priority
	// pending item to make room for a new one instead of refusing it.
	EvictOnFull bool
}

func (c Config) withDefaults() Config {
	if c.Capacity <= 0 {
		c.Capacity = DefaultCapacity
	}
	if c.ExpirationWindow <= 0 {
		c.ExpirationWindow = DefaultExpirationWindow
	}
	if c.EscalationAge <= 0 {
		c.EscalationAge = DefaultEscalationAge
	}
	return c
}

// Queue holds actions awaiting human decision, ordered by priority
// descending then creation time ascending (FIFO among equal priority).
// All mutations are serialized under one mutex: two concurrent resolutions
// of the same id can never both succeed, and ordering is never observed in
// a partially-updated state.
type Queue struct {
	mu  sync.RWMutex
	cfg Config
	log *audit.Log

	pending []*model.ApprovalRequest
	byID    map[string]*model.ApprovalRequest

	// Aggregates maintained on transitions, for Stats.
	approved  int
	rejected  int
	expired   int
	escalated int
	totalWait time.Duration // approved+rejected only
	resolved  int

	now func() time.Time
}

// New creates an empty queue writing audit entries to log.
func New(cfg Config, log *audit.Log) *Queue {
	return &Queue{
		cfg:  cfg.withDefaults(),
		log:  log,
		byID: make(map[string]*model.ApprovalRequest),
		now:  time.Now,
	}
}

// Add enqueues a decision for human review. Returns ErrQueueFull when the
// pending set is at capacity, unless eviction is enabled, in which case
// the lowest-priority pending item is rejected to make room.
func (q *Queue) Add(d model.Decision) (model.ApprovalRequest, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.pending) >= q.cfg.Capacity {
		if !q.cfg.EvictOnFull {
			return model.ApprovalRequest{}, ErrQueueFull
		}
		q.evictLowestLocked()
	}

	now := q.now().UTC()
	req := &model.ApprovalRequest{
		ID:        uuid.NewString(),
		Decision:  d,
		CreatedAt: now,
		Priority:  Priority(d.Action.Urgency, d.Assessment.Level),
		Status:    model.StatusPending,
	}

	q.insertLocked(req)
	q.byID[req.ID] = req
	_, _ = q.log.Append(audit.TypeQueued, d.Action.ID, req)

	return *req, nil
}

// insertLocked places req after every pending item with priority >= its
// own, keeping the order priority-descending and FIFO among equals.
func (q *Queue) insertLocked(req *model.ApprovalRequest) {
	i := len(q.pending)
	for i > 0 && q.pending[i-1].Priority < req.Priority {
		i--
	}
	q.pending = append(q.pending, nil)
	copy(q.pending[i+1:], q.pending[i:])
	q.pending[i] = req
}

// evictLowestLocked rejects the last (lowest-priority, youngest-among-
// equals) pending item to make room.
func (q *Queue) evictLowestLocked() {
	victim := q.pending[len(q.pending)-1]
	q.resolveInPlaceLocked(victim, model.StatusRejected, "capacity-eviction", "evicted: queue at capacity")
	_, _ = q.log.Append(audit.TypeRejected, victim.Decision.Action.ID, victim)
}

// Approve transitions a pending request to approved exactly once.
// Repeated calls after the terminal transition return ErrNotFound.
func (q *Queue) Approve(id, approver, feedback string) (model.ApprovalRequest, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	req, err := q.takePendingLocked(id)
	if err != nil {
		return model.ApprovalRequest{}, err
	}

	q.resolveInPlaceLocked(req, model.StatusApproved, approver, feedback)
	_, _ = q.log.Append(audit.TypeApproved, req.Decision.Action.ID, req)
	return *req, nil
}

// Reject transitions a pending request to rejected exactly once.
// A non-empty reason is required.
func (q *Queue) Reject(id, rejector, reason string) (model.ApprovalRequest, error) {
	if reason == "" {
		return model.ApprovalRequest{}, ErrEmptyReason
	}

	q.mu.Lock()
	defer q.mu.Unlock()

	req, err := q.takePendingLocked(id)
	if err != nil {
		return model.ApprovalRequest{}, err
	}

	q.resolveInPlaceLocked(req, model.StatusRejected, rejector, reason)
	_, _ = q.log.Append(audit.TypeRejected, req.Decision.Action.ID, req)
	return *req, nil
}

// takePendingLocked looks up a request that is still pending.
func (q *Queue) takePendingLocked(id string) (*model.ApprovalRequest, error) {
	req, ok := q.byID[id]
	if !ok || req.Status != model.StatusPending {
		return nil, ErrNotFound
	}
	return req, nil
}

// resolveInPlaceLocked applies the terminal transition and removes the
// request from the pending ordering.
func (q *Queue) resolveInPlaceLocked(req *model.ApprovalRequest, status model.Status, by, feedback string) {
	now := q.now().UTC()
	req.Status = status
	req.ResolvedAt = &now
	req.ResolvedBy = by
	req.Feedback = feedback
	q.removePendingLocked(req.ID)

	switch status {
	case model.StatusApproved:
		q.approved++
	case model.StatusRejected:
		q.rejected++
	case model.StatusExpired:
		q.expired++
	case model.StatusEscalated:
		q.escalated++
	}
	if status == model.StatusApproved || status == model.StatusRejected {
		q.totalWait += now.Sub(req.CreatedAt)
		q.resolved++
	}
}

func (q *Queue) removePendingLocked(id string) {
	for i, r := range q.pending {
		if r.ID == id {
			q.pending = append(q.pending[:i], q.pending[i+1:]...)
			return
		}
	}
}

// ExpireStale marks every pending request older than the expiration window
// as expired and returns the expired requests. Called by the engine's
// background sweep under the same serialization as other mutations.
func (q *Queue) ExpireStale(now time.Time) []model.ApprovalRequest {
	q.mu.Lock()
	defer q.mu.Unlock()

	var out []model.ApprovalRequest
	// Walk a copy: resolveInPlaceLocked mutates q.pending.
	for _, req := range append([]*model.ApprovalRequest(nil), q.pending...) {
		if req.Age(now) > q.cfg.ExpirationWindow {
			q.resolveInPlaceLocked(req, model.StatusExpired, "expiration-sweep", "expired: exceeded approval window")
			_, _ = q.log.Append(audit.TypeExpired, req.Decision.Action.ID, req)
			out = append(out, *req)
		}
	}
	return out
}

// CheckEscalations returns the pending requests needing elevated attention:
// any older than the escalation age, or carrying critical risk. Advisory:
// flagged requests stay pending, with one exception. A critical-risk
// request in an always-dangerous category is promoted to the terminal
// escalated state. Promotion wins over advisory flagging; age-based
// flagging applies only to items that remain pending.
func (q *Queue) CheckEscalations(now time.Time) []model.ApprovalRequest {
	q.mu.Lock()
	defer q.mu.Unlock()

	var out []model.ApprovalRequest
	for _, req := range append([]*model.ApprovalRequest(nil), q.pending...) {
		critical := req.Decision.Assessment.Level == model.RiskCritical

		if critical && router.IsAlwaysDangerous(req.Decision.Action.Category) {
			q.resolveInPlaceLocked(req, model.StatusEscalated, "escalation-sweep", "auto-escalated: critical risk in dangerous category")
			_, _ = q.log.Append(audit.TypeEscalated, req.Decision.Action.ID, req)
			out = append(out, *req)
			continue
		}
		if critical || req.Age(now) > q.cfg.EscalationAge {
			out = append(out, *req)
		}
	}
	return out
}

// Get returns a copy of a request, pending or resolved.
func (q *Queue) Get(id string) (model.ApprovalRequest, bool) {
	q.mu.RLock()
	defer q.mu.RUnlock()

	req, ok := q.byID[id]
	if !ok {
		return model.ApprovalRequest{}, false
	}
	return *req, true
}

// Pending returns copies of all pending requests in queue order.
func (q *Queue) Pending() []model.ApprovalRequest {
	q.mu.RLock()
	defer q.mu.RUnlock()

	out := make([]model.ApprovalRequest, len(q.pending))
	for i, req := range q.pending {
		out[i] = *req
	}
	return out
}

// Len returns the pending count.
func (q *Queue) Len() int {
	q.mu.RLock()
	defer q.mu.RUnlock()
	return len(q.pending)
}
