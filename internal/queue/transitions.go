// Package queue holds the pure parts of the front-desk engine: the legal
// transition table, the ordering policy, and session statistics. Stores and
// handlers consume these so the rules live in exactly one place.
package queue

import "github.com/gautham2106/curaflow-hospital-management-sub000/internal/models"

const (
	ActionCall     = "call"
	ActionSkip     = "skip"
	ActionRejoin   = "rejoin"
	ActionComplete = "complete"
	ActionCancel   = "cancel"
	ActionNoShow   = "no_show"
)

var transitionMap = map[string][]string{
	ActionCall:     {models.StatusWaiting},
	ActionSkip:     {models.StatusWaiting, models.StatusInConsultation},
	ActionRejoin:   {models.StatusSkipped},
	ActionComplete: {models.StatusInConsultation},
	ActionCancel:   {models.StatusWaiting},
	ActionNoShow:   {models.StatusWaiting, models.StatusSkipped},
}

// ResultStatus is the status each action lands in.
var ResultStatus = map[string]string{
	ActionCall:     models.StatusInConsultation,
	ActionSkip:     models.StatusSkipped,
	ActionRejoin:   models.StatusWaiting,
	ActionComplete: models.StatusCompleted,
	ActionCancel:   models.StatusCancelled,
	ActionNoShow:   models.StatusNoShow,
}

func ValidTransition(action, fromStatus string) bool {
	allowed, ok := transitionMap[action]
	if !ok {
		return false
	}
	for _, status := range allowed {
		if status == fromStatus {
			return true
		}
	}
	return false
}

// CheckTransition returns an InvalidTransitionError naming the action and
// the current status when the transition is not legal.
func CheckTransition(action, fromStatus string) error {
	if !ValidTransition(action, fromStatus) {
		return &models.InvalidTransitionError{Action: action, From: fromStatus}
	}
	return nil
}
