package service

import "errors"

// Caller-facing domain errors. Handlers translate these to HTTP statuses;
// everything else surfaces as an internal error.
var (
	// ErrNotFound covers missing tasks, kids, families and members. It is
	// also returned for entities the actor may not know exist, so a denied
	// lookup is indistinguishable from a missing one.
	ErrNotFound = errors.New("not found")

	// ErrForbidden means the actor lacks the required permission level or
	// a primary-only privilege.
	ErrForbidden = errors.New("forbidden")

	// ErrInvalidTransition means the requested state change is not legal
	// from the task's current state.
	ErrInvalidTransition = errors.New("invalid task transition")

	// ErrAlreadyCompleted means a completion was attempted on a task that
	// is already completed; points were credited exactly once.
	ErrAlreadyCompleted = errors.New("task already completed")

	// ErrAlreadyClaimed means the milestone's one-shot bonus flag was set.
	ErrAlreadyClaimed = errors.New("milestone already claimed")

	// ErrNotEligible means the current streak is below the milestone threshold.
	ErrNotEligible = errors.New("streak too short for milestone")

	// ErrInsufficientPoints means a debit would drive the balance below zero.
	ErrInsufficientPoints = errors.New("not enough points")

	// ErrTransactionFailed wraps commit failures; the operation applied
	// nothing and is safe to retry.
	ErrTransactionFailed = errors.New("transaction failed")
)

// Actor is the authenticated identity performing an operation, as supplied
// by the token middleware. Guardians carry a UserID; kids using a link
// access token carry a KidID.
type Actor struct {
	UserID  int64
	KidID   int64
	IsAdmin bool
}

// IsKid reports whether the actor is a kid session
func (a Actor) IsKid() bool {
	return a.KidID != 0
}
