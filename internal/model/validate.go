package model

import "fmt"

// ValidationError describes a malformed action rejected at ingestion.
type ValidationError struct {
	Field string
	Msg   string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid action: %s: %s", e.Field, e.Msg)
}

// Validate checks that an action is well-formed enough to assess and route.
// It does not mutate the action.
func (a *Action) Validate() error {
	if a.Name == "" {
		return &ValidationError{Field: "name", Msg: "must not be empty"}
	}
	if !a.Category.Valid() {
		return &ValidationError{Field: "category", Msg: fmt.Sprintf("unknown category %q", a.Category)}
	}
	if a.Urgency != "" && !a.Urgency.Valid() {
		return &ValidationError{Field: "urgency", Msg: fmt.Sprintf("unknown urgency %q", a.Urgency)}
	}
	if a.Value != nil && *a.Value < 0 {
		return &ValidationError{Field: "value", Msg: "must not be negative"}
	}
	return nil
}

// Normalize fills defaultable fields in place: empty urgency becomes normal.
// Call after Validate.
func (a *Action) Normalize() {
	if a.Urgency == "" {
		a.Urgency = UrgencyNormal
	}
}
