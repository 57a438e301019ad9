package models

import "fmt"

// ValidationError reports malformed or missing input: an out-of-turn call
// without a reason, a bad HH:MM boundary, an issuance past a token limit.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// InvalidTransitionError reports an action attempted from a status that does
// not allow it. State is never coerced to make the action legal.
type InvalidTransitionError struct {
	Action string
	From   string
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("action %q not allowed from status %q", e.Action, e.From)
}
