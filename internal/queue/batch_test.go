package queue

import (
	"errors"
	"testing"
	"time"

	"github.com/ppiankov/autogate/internal/model"
)

func TestApproveAllSafe(t *testing.T) {
	q := newTestQueue(t, Config{})

	var lowRisk []string
	for i := 0; i < 3; i++ {
		req, _ := q.Add(testDecision(model.UrgencyNormal, model.RiskSafe))
		lowRisk = append(lowRisk, req.ID)
	}
	for i := 0; i < 2; i++ {
		req, _ := q.Add(testDecision(model.UrgencyNormal, model.RiskLow))
		lowRisk = append(lowRisk, req.ID)
	}
	critical, _ := q.Add(testDecision(model.UrgencyNormal, model.RiskCritical))

	res := q.ApproveAllSafe("batch-bot")
	if len(res.Succeeded) != 5 {
		t.Fatalf("succeeded = %d, want 5", len(res.Succeeded))
	}
	if len(res.FailedIDs) != 0 {
		t.Fatalf("failed = %v, want none", res.FailedIDs)
	}

	for _, id := range lowRisk {
		got, _ := q.Get(id)
		if got.Status != model.StatusApproved {
			t.Errorf("request %s status = %s, want approved", id, got.Status)
		}
		if got.Feedback != "bulk-approved: low risk" {
			t.Errorf("feedback = %q", got.Feedback)
		}
	}
	if got, _ := q.Get(critical.ID); got.Status != model.StatusPending {
		t.Errorf("critical request touched by safe batch: %s", got.Status)
	}
}

func TestFilterCriteria(t *testing.T) {
	q := newTestQueue(t, Config{})

	trade := testDecision(model.UrgencyNormal, model.RiskMedium)
	trade.Action.Engine = "hedge"
	q.Add(trade)

	content := testDecision(model.UrgencyLow, model.RiskLow)
	content.Action.Category = model.CategoryContent
	content.Assessment.Score = 25
	q.Add(content)

	if got := len(q.Filter(Criteria{Category: model.CategoryTrading})); got != 1 {
		t.Errorf("trading filter = %d, want 1", got)
	}
	if got := len(q.Filter(Criteria{Engine: "hedge"})); got != 1 {
		t.Errorf("engine filter = %d, want 1", got)
	}
	if got := len(q.Filter(Criteria{MinScore: 30})); got != 1 {
		t.Errorf("min-score filter = %d, want 1", got)
	}
	if got := len(q.Filter(Criteria{MaxScore: 30})); got != 1 {
		t.Errorf("max-score filter = %d, want 1", got)
	}
	if got := len(q.Filter(Criteria{})); got != 2 {
		t.Errorf("empty criteria = %d, want all 2", got)
	}
}

func TestRejectFilteredRequiresReason(t *testing.T) {
	q := newTestQueue(t, Config{})
	q.Add(testDecision(model.UrgencyNormal, model.RiskMedium))

	if _, err := q.RejectFiltered(Criteria{}, "alice", ""); !errors.Is(err, ErrEmptyReason) {
		t.Fatalf("err = %v, want ErrEmptyReason", err)
	}

	res, err := q.RejectFiltered(Criteria{}, "alice", "sweep")
	if err != nil {
		t.Fatalf("reject filtered: %v", err)
	}
	if len(res.Succeeded) != 1 {
		t.Fatalf("succeeded = %d, want 1", len(res.Succeeded))
	}
}

func TestBatchReportsConcurrentlyResolvedIDs(t *testing.T) {
	q := newTestQueue(t, Config{})
	req, _ := q.Add(testDecision(model.UrgencyNormal, model.RiskSafe))
	q.Add(testDecision(model.UrgencyNormal, model.RiskSafe))

	ids := q.filterIDs(Criteria{Levels: []model.RiskLevel{model.RiskSafe}})
	if len(ids) != 2 {
		t.Fatalf("snapshot = %d ids, want 2", len(ids))
	}

	// Resolve one between the snapshot and the batch, as a racing approver
	// would.
	q.Reject(req.ID, "human", "got there first")

	res := q.ApproveAllSafe("batch-bot")
	if len(res.Succeeded) != 1 {
		t.Fatalf("succeeded = %d, want 1", len(res.Succeeded))
	}
	// The raced id does not appear in FailedIDs because the filter re-ran,
	// but a stale id passed explicitly must be reported, not dropped.
	if _, err := q.Approve(req.ID, "batch-bot", ""); !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestCleanupOld(t *testing.T) {
	q := newTestQueue(t, Config{})
	base := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	q.now = func() time.Time { return base }

	stale, _ := q.Add(testDecision(model.UrgencyNormal, model.RiskMedium))
	q.now = func() time.Time { return base.Add(40 * time.Hour) }
	fresh, _ := q.Add(testDecision(model.UrgencyNormal, model.RiskMedium))

	res := q.CleanupOld(36*time.Hour, "janitor")
	if len(res.Succeeded) != 1 {
		t.Fatalf("succeeded = %d, want 1", len(res.Succeeded))
	}

	if got, _ := q.Get(stale.ID); got.Status != model.StatusRejected {
		t.Errorf("stale status = %s, want rejected", got.Status)
	}
	if got, _ := q.Get(fresh.ID); got.Status != model.StatusPending {
		t.Errorf("fresh status = %s, want pending", got.Status)
	}
}
