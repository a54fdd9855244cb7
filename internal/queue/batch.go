package queue

import (
	"slices"
	"time"

	"github.com/ppiankov/autogate/internal/model"
)

// Criteria filters pending requests for queries and bulk operations.
// Zero-valued fields match everything.
type Criteria struct {
	Category model.Category    // "" = any
	Levels   []model.RiskLevel // nil = any
	Engine   string            // "" = any origin engine
	MinScore int               // inclusive; <= 0 = no lower bound
	MaxScore int               // inclusive; <= 0 = no upper bound
	MinAge   time.Duration     // only requests pending at least this long
}

func (c Criteria) matches(req *model.ApprovalRequest, now time.Time) bool {
	if c.Category != "" && req.Decision.Action.Category != c.Category {
		return false
	}
	if len(c.Levels) > 0 && !slices.Contains(c.Levels, req.Decision.Assessment.Level) {
		return false
	}
	if c.Engine != "" && req.Decision.Action.Engine != c.Engine {
		return false
	}
	if c.MinScore > 0 && req.Decision.Assessment.Score < c.MinScore {
		return false
	}
	if c.MaxScore > 0 && req.Decision.Assessment.Score > c.MaxScore {
		return false
	}
	if c.MinAge > 0 && req.Age(now) < c.MinAge {
		return false
	}
	return true
}

// BatchResult reports per-item outcomes of a bulk operation. A failed id
// (resolved concurrently between the filter snapshot and the transition)
// never aborts the rest of the batch.
type BatchResult struct {
	Succeeded []string `json:"succeeded"`
	FailedIDs []string `json:"failed_ids,omitempty"`
}

// Filter returns copies of pending requests matching the criteria, in
// queue order. Read-only.
func (q *Queue) Filter(c Criteria) []model.ApprovalRequest {
	q.mu.RLock()
	defer q.mu.RUnlock()

	now := q.now().UTC()
	var out []model.ApprovalRequest
	for _, req := range q.pending {
		if c.matches(req, now) {
			out = append(out, *req)
		}
	}
	return out
}

// filterIDs snapshots the matching ids under the read lock.
func (q *Queue) filterIDs(c Criteria) []string {
	q.mu.RLock()
	defer q.mu.RUnlock()

	now := q.now().UTC()
	var ids []string
	for _, req := range q.pending {
		if c.matches(req, now) {
			ids = append(ids, req.ID)
		}
	}
	return ids
}

// ApproveFiltered applies the single-item approve to every matching
// request independently.
func (q *Queue) ApproveFiltered(c Criteria, approver, feedback string) BatchResult {
	var res BatchResult
	for _, id := range q.filterIDs(c) {
		if _, err := q.Approve(id, approver, feedback); err != nil {
			res.FailedIDs = append(res.FailedIDs, id)
			continue
		}
		res.Succeeded = append(res.Succeeded, id)
	}
	return res
}

// RejectFiltered applies the single-item reject to every matching request
// independently. The reason is required, as for Reject.
func (q *Queue) RejectFiltered(c Criteria, rejector, reason string) (BatchResult, error) {
	if reason == "" {
		return BatchResult{}, ErrEmptyReason
	}

	var res BatchResult
	for _, id := range q.filterIDs(c) {
		if _, err := q.Reject(id, rejector, reason); err != nil {
			res.FailedIDs = append(res.FailedIDs, id)
			continue
		}
		res.Succeeded = append(res.Succeeded, id)
	}
	return res, nil
}

// ApproveAllSafe bulk-approves every pending request assessed safe or low.
func (q *Queue) ApproveAllSafe(approver string) BatchResult {
	return q.ApproveFiltered(Criteria{
		Levels: []model.RiskLevel{model.RiskSafe, model.RiskLow},
	}, approver, "bulk-approved: low risk")
}

// CleanupOld bulk-rejects every request pending longer than age.
func (q *Queue) CleanupOld(age time.Duration, rejector string) BatchResult {
	res, _ := q.RejectFiltered(Criteria{MinAge: age}, rejector, "stale: exceeded cleanup age")
	return res
}
