package engine

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ppiankov/autogate/internal/audit"
	"github.com/ppiankov/autogate/internal/boundary"
	"github.com/ppiankov/autogate/internal/model"
	"github.com/ppiankov/autogate/internal/notify"
	"github.com/ppiankov/autogate/internal/queue"
	"github.com/ppiankov/autogate/internal/risk"
	"github.com/ppiankov/autogate/internal/router"
)

// Engine orchestrates classification, boundary checks, routing, queueing,
// and audit logging for proposed automated actions. It decides and
// records; it never executes the underlying effect.
//
// One instance per process. Explicitly constructed and dependency-
// injected, no package-level singleton. Lifecycle: New → Start (optional
// background sweep) → use → Stop.
type Engine struct {
	boundaries *boundary.Store
	tracker    *boundary.Tracker
	log        *audit.Log
	queue      *queue.Queue
	router     *router.Router
	notifier   notify.Notifier

	cfg Config
	now func() time.Time

	mu     sync.Mutex // guards cancel/wg lifecycle
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// New constructs an engine from config. It owns its queue and audit log
// for the process lifetime.
func New(cfg Config) *Engine {
	cfg = cfg.withDefaults()
	log := audit.New(cfg.Retention)
	return &Engine{
		boundaries: boundary.NewStore(cfg.Boundaries),
		tracker:    boundary.NewTracker(),
		log:        log,
		queue:      queue.New(cfg.Queue, log),
		router:     router.New(log),
		notifier:   cfg.Notifier,
		cfg:        cfg,
		now:        time.Now,
	}
}

// validationRecord is the audit payload for a rejected-at-ingestion action.
type validationRecord struct {
	Action model.Action `json:"action"`
	Error  string       `json:"error"`
}

// Submit runs an action through assess → boundary-check → route, queueing
// it when the outcome demands human review. The returned Decision is
// final and synchronous; notification delivery happens in the background
// and cannot affect it.
//
// A validation failure returns a *model.ValidationError and no Decision.
// A full queue returns the Decision together with queue.ErrQueueFull:
// the disposition stands, but the caller must know it was not enqueued.
func (e *Engine) Submit(a model.Action) (model.Decision, error) {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}

	if err := a.Validate(); err != nil {
		_, _ = e.log.Append(audit.TypeValidationFailed, a.ID, validationRecord{Action: a, Error: err.Error()})
		return model.Decision{}, err
	}
	a.Normalize()

	_, _ = e.log.Append(audit.TypeActionReceived, a.ID, a)

	assessment := risk.Assess(&a)
	_, _ = e.log.Append(audit.TypeRiskAssessed, a.ID, assessment)

	now := e.now().UTC()
	violations := boundary.Check(&a, e.boundaries.Snapshot(), e.tracker.Snapshot(now), now)

	d := e.router.Route(&a, assessment, violations)

	switch d.Outcome {
	case model.AutoExecute:
		// Only auto-executed and approved work consumes daily budget.
		e.tracker.Record(a.Category, a.MonetaryValue(), now)
		e.notifyDecision(notify.EventDecision, d, "")

	case model.QueueApproval, model.Escalate:
		req, err := e.queue.Add(d)
		if err != nil {
			return d, fmt.Errorf("enqueue approval for action %s: %w", a.ID, err)
		}
		event := notify.EventApprovalNeeded
		if d.Outcome == model.Escalate {
			event = notify.EventEscalation
		}
		e.notifyDecision(event, d, req.ID)

	case model.Reject:
		e.notifyDecision(notify.EventDecision, d, "")
	}

	return d, nil
}

// Approve resolves a pending request and records its value against the
// daily budget. Unknown or already-terminal ids return queue.ErrNotFound.
func (e *Engine) Approve(id, approver, feedback string) (model.ApprovalRequest, error) {
	req, err := e.queue.Approve(id, approver, feedback)
	if err != nil {
		return model.ApprovalRequest{}, err
	}

	action := req.Decision.Action
	e.tracker.Record(action.Category, action.MonetaryValue(), e.now().UTC())
	e.notifyDecision(notify.EventDecision, req.Decision, req.ID)
	return req, nil
}

// Reject resolves a pending request with a required reason.
func (e *Engine) Reject(id, rejector, reason string) (model.ApprovalRequest, error) {
	req, err := e.queue.Reject(id, rejector, reason)
	if err != nil {
		return model.ApprovalRequest{}, err
	}
	e.notifyDecision(notify.EventDecision, req.Decision, req.ID)
	return req, nil
}

// ReportExecution records the host's report of what happened when it
// executed an action. The engine never invokes execution itself.
func (e *Engine) ReportExecution(res model.ExecutionResult) (audit.Entry, error) {
	var t audit.Type
	switch res.Status {
	case model.ExecutionSuccess:
		t = audit.TypeExecuted
	case model.ExecutionFailure:
		t = audit.TypeExecutionFailed
	case model.ExecutionRolledBack:
		t = audit.TypeRolledBack
	default:
		return audit.Entry{}, fmt.Errorf("unknown execution status %q", res.Status)
	}
	return e.log.Append(t, res.ActionID, res)
}

// Queue exposes the approval queue for pending queries and batch
// operations.
func (e *Engine) Queue() *queue.Queue { return e.queue }

// QueueStats returns a dashboard snapshot of queue state.
func (e *Engine) QueueStats() queue.Stats { return e.queue.Stats() }

// Boundaries returns a deep-copy snapshot of the current limit tree.
func (e *Engine) Boundaries() boundary.Boundaries { return e.boundaries.Snapshot() }

// UpdateBoundaries merges a partial override field-by-field over current
// values. Updates are serialized; unspecified fields keep their values.
func (e *Engine) UpdateBoundaries(u boundary.Update) { e.boundaries.Apply(u) }

// Audit exposes the audit log for queries and export.
func (e *Engine) Audit() *audit.Log { return e.log }

// VerifyAudit recomputes the audit hash chain.
func (e *Engine) VerifyAudit() audit.Result { return e.log.Verify() }

func (e *Engine) notifyDecision(event notify.Event, d model.Decision, requestID string) {
	e.notifier.Notify(event, notify.Payload{
		Timestamp: e.now().UTC().Format(audit.TimestampFormat),
		ActionID:  d.Action.ID,
		RequestID: requestID,
		Category:  string(d.Action.Category),
		Name:      d.Action.Name,
		Outcome:   string(d.Outcome),
		Reason:    d.Reason,
		Score:     d.Assessment.Score,
		Level:     string(d.Assessment.Level),
	})
}
