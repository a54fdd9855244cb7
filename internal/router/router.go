package router

import (
	"fmt"
	"strings"

	"github.com/ppiankov/autogate/internal/audit"
	"github.com/ppiankov/autogate/internal/boundary"
	"github.com/ppiankov/autogate/internal/model"
)

// alwaysDangerous categories never auto-execute, whatever the score.
var alwaysDangerous = map[model.Category]bool{
	model.CategoryDeployment:    true,
	model.CategoryConfiguration: true,
}

// alwaysSafe categories may take the low-score fast path.
var alwaysSafe = map[model.Category]bool{
	model.CategoryContent: true,
	model.CategoryBuild:   true,
}

// requiresApprovalOnViolation categories route straight to review when any
// boundary is crossed.
var requiresApprovalOnViolation = map[model.Category]bool{
	model.CategoryTrading:       true,
	model.CategoryDeployment:    true,
	model.CategoryConfiguration: true,
}

// IsAlwaysDangerous reports whether a category may never auto-execute.
// The queue uses it for its critical-risk auto-escalate rule.
func IsAlwaysDangerous(c model.Category) bool {
	return alwaysDangerous[c]
}

// safeScoreMax is the fast-path threshold for always-safe categories.
const safeScoreMax = 20

// levelOutcome is the fixed level→outcome dispatch table.
var levelOutcome = map[model.RiskLevel]model.Outcome{
	model.RiskSafe:     model.AutoExecute,
	model.RiskLow:      model.AutoExecute,
	model.RiskMedium:   model.QueueApproval,
	model.RiskHigh:     model.QueueApproval,
	model.RiskCritical: model.Escalate,
}

// Router combines classifier and boundary output into a final disposition,
// recording every decision in the audit log.
type Router struct {
	log *audit.Log
}

// New creates a router writing to the given audit log.
func New(log *audit.Log) *Router {
	return &Router{log: log}
}

// Route maps an assessed action to one of four terminal outcomes in a
// single synchronous step. Explicit boundary violations always dominate
// the score-based table: a violated action never auto-executes.
//
// Before returning it emits a boundary_violated entry (when violations are
// non-empty) and exactly one decision_made entry.
func (r *Router) Route(a *model.Action, assessment model.RiskAssessment, violations []boundary.Violation) model.Decision {
	outcome, reason := dispose(a, assessment, violations)

	d := model.Decision{
		Action:     *a,
		Assessment: assessment,
		Outcome:    outcome,
		Reason:     reason,
		Violations: boundary.Reasons(violations),
	}

	if len(violations) > 0 {
		_, _ = r.log.Append(audit.TypeBoundaryViolated, a.ID, violations)
	}
	_, _ = r.log.Append(audit.TypeDecisionMade, a.ID, d)

	return d
}

// dispose is the pure routing state machine.
func dispose(a *model.Action, assessment model.RiskAssessment, violations []boundary.Violation) (model.Outcome, string) {
	violated := len(violations) > 0

	// Policy first: dangerous categories and violated approval-bound
	// categories never reach the score table.
	if alwaysDangerous[a.Category] || (violated && requiresApprovalOnViolation[a.Category]) {
		if boundary.HasCritical(violations) {
			return model.Reject, fmt.Sprintf("category %q blocked: %s",
				a.Category, strings.Join(boundary.Reasons(violations), "; "))
		}
		if violated {
			return model.QueueApproval, fmt.Sprintf("category %q requires review: %s",
				a.Category, strings.Join(boundary.Reasons(violations), "; "))
		}
		return model.QueueApproval, fmt.Sprintf("category %q always requires review", a.Category)
	}

	// Violations dominate the score table for every category.
	if violated {
		if boundary.HasCritical(violations) {
			return model.Reject, strings.Join(boundary.Reasons(violations), "; ")
		}
		return model.QueueApproval, strings.Join(boundary.Reasons(violations), "; ")
	}

	// Known-safe fast path.
	if alwaysSafe[a.Category] && assessment.Score <= safeScoreMax {
		return model.AutoExecute, fmt.Sprintf("category %q safe at score %d", a.Category, assessment.Score)
	}

	// Score-based dispatch.
	outcome, ok := levelOutcome[assessment.Level]
	if !ok {
		// Unknown level fails closed.
		return model.Escalate, fmt.Sprintf("unknown risk level %q", assessment.Level)
	}
	return outcome, fmt.Sprintf("risk level %s (score %d)", assessment.Level, assessment.Score)
}
