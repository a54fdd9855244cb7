package notify

// Event classifies what a notification is about.
type Event string

const (
	EventApprovalNeeded Event = "approval_needed"
	EventEscalation     Event = "escalation"
	EventDecision       Event = "decision"
	EventDailySummary   Event = "daily_summary"
)

// Payload is the notification body sent to sinks. All fields are plain
// scalars so any sink can serialize it.
type Payload struct {
	Timestamp string `json:"timestamp"`
	ActionID  string `json:"action_id,omitempty"`
	RequestID string `json:"request_id,omitempty"`
	Category  string `json:"category,omitempty"`
	Name      string `json:"name,omitempty"`
	Outcome   string `json:"outcome,omitempty"`
	Reason    string `json:"reason,omitempty"`
	Score     int    `json:"score,omitempty"`
	Level     string `json:"level,omitempty"`
	Priority  int    `json:"priority,omitempty"`
	Summary   string `json:"summary,omitempty"`
}

// Notifier is the abstract notification sink the engine fans out to.
// Implementations must never block the caller; delivery failures must not
// affect decisions or queue state.
type Notifier interface {
	Notify(event Event, payload Payload)
}

// Discard is a Notifier that drops everything. Used when no sinks are
// configured and in tests.
type Discard struct{}

func (Discard) Notify(Event, Payload) {}
