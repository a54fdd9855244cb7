package model

import "time"

// Category classifies what kind of effect an action would have.
type Category string

const (
	CategoryTrading       Category = "trading"
	CategoryContent       Category = "content"
	CategoryBuild         Category = "build"
	CategoryDeployment    Category = "deployment"
	CategoryConfiguration Category = "configuration"
)

// Categories lists all valid categories in a stable order.
var Categories = []Category{
	CategoryTrading,
	CategoryContent,
	CategoryBuild,
	CategoryDeployment,
	CategoryConfiguration,
}

// Valid returns true if the category is one of the known values.
func (c Category) Valid() bool {
	switch c {
	case CategoryTrading, CategoryContent, CategoryBuild, CategoryDeployment, CategoryConfiguration:
		return true
	}
	return false
}

// Urgency indicates how time-sensitive an action is.
type Urgency string

const (
	UrgencyLow      Urgency = "low"
	UrgencyNormal   Urgency = "normal"
	UrgencyHigh     Urgency = "high"
	UrgencyCritical Urgency = "critical"
)

// Valid returns true if the urgency is one of the known values.
func (u Urgency) Valid() bool {
	switch u {
	case UrgencyLow, UrgencyNormal, UrgencyHigh, UrgencyCritical:
		return true
	}
	return false
}

// RiskLevel is the categorical risk estimate derived from a risk score.
type RiskLevel string

const (
	RiskSafe     RiskLevel = "safe"
	RiskLow      RiskLevel = "low"
	RiskMedium   RiskLevel = "medium"
	RiskHigh     RiskLevel = "high"
	RiskCritical RiskLevel = "critical"
)

// RiskRank maps risk levels to comparable integers for ordering.
var RiskRank = map[RiskLevel]int{
	RiskSafe:     0,
	RiskLow:      1,
	RiskMedium:   2,
	RiskHigh:     3,
	RiskCritical: 4,
}

// Outcome is the disposition the router assigns to an action.
type Outcome string

const (
	AutoExecute   Outcome = "auto_execute"
	QueueApproval Outcome = "queue_approval"
	Escalate      Outcome = "escalate"
	Reject        Outcome = "reject"
)

// Action is one proposed automated operation. Immutable once validated.
type Action struct {
	ID          string         `json:"id"`
	Category    Category       `json:"category"`
	Name        string         `json:"name"`
	Description string         `json:"description,omitempty"`
	Value       *float64       `json:"value,omitempty"`
	Reversible  bool           `json:"reversible"`
	Urgency     Urgency        `json:"urgency"`
	Engine      string         `json:"engine,omitempty"`
	Metadata    map[string]any `json:"metadata,omitempty"`
}

// MonetaryValue returns the declared value, or 0 when unset.
func (a *Action) MonetaryValue() float64 {
	if a.Value == nil {
		return 0
	}
	return *a.Value
}

// PublicFacing reports whether the action's metadata marks it as
// externally visible.
func (a *Action) PublicFacing() bool {
	for _, key := range []string{"public", "external_visibility"} {
		if v, ok := a.Metadata[key]; ok {
			if b, ok := v.(bool); ok && b {
				return true
			}
		}
	}
	return false
}

// MetaString reads a string metadata field, returning "" when absent.
func (a *Action) MetaString(key string) string {
	if v, ok := a.Metadata[key]; ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

// RiskAssessment is the classifier's output for one action. Never mutated.
type RiskAssessment struct {
	Score int       `json:"score"`
	Level RiskLevel `json:"level"`
	// Factors holds the weighted contribution of each scoring factor,
	// keyed by factor name, so every score is explainable after the fact.
	Factors map[string]float64 `json:"factors"`
}

// Decision pairs an action with its assessment and the routed outcome.
type Decision struct {
	Action     Action         `json:"action"`
	Assessment RiskAssessment `json:"assessment"`
	Outcome    Outcome        `json:"outcome"`
	Reason     string         `json:"reason"`
	Violations []string       `json:"violations,omitempty"`
}

// Status is the lifecycle state of an approval request.
// Pending is the only non-terminal state.
type Status string

const (
	StatusPending   Status = "pending"
	StatusApproved  Status = "approved"
	StatusRejected  Status = "rejected"
	StatusExpired   Status = "expired"
	StatusEscalated Status = "escalated"
)

// Terminal returns true for every status except pending.
func (s Status) Terminal() bool {
	return s != StatusPending
}

// ApprovalRequest wraps a decision that was routed to the approval queue.
// Created on enqueue; resolved exactly once; never re-enters pending.
type ApprovalRequest struct {
	ID         string     `json:"id"`
	Decision   Decision   `json:"decision"`
	CreatedAt  time.Time  `json:"created_at"`
	Priority   int        `json:"priority"`
	Status     Status     `json:"status"`
	ResolvedAt *time.Time `json:"resolved_at,omitempty"`
	ResolvedBy string     `json:"resolved_by,omitempty"`
	Feedback   string     `json:"feedback,omitempty"`
}

// Age returns how long the request has been alive relative to now.
func (r *ApprovalRequest) Age(now time.Time) time.Duration {
	return now.Sub(r.CreatedAt)
}

// ExecutionStatus reports what happened when the host executed an action.
type ExecutionStatus string

const (
	ExecutionSuccess    ExecutionStatus = "success"
	ExecutionFailure    ExecutionStatus = "failure"
	ExecutionRolledBack ExecutionStatus = "rolled_back"
)

// ExecutionResult is the host's report of an executed action's outcome.
// The engine only records it; it never triggers execution itself.
type ExecutionResult struct {
	ActionID    string          `json:"action_id"`
	Status      ExecutionStatus `json:"status"`
	Detail      string          `json:"detail,omitempty"`
	CompletedAt time.Time       `json:"completed_at"`
}
