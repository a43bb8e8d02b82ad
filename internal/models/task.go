package models

import "time"

// RequestStatus is the approval state of a kid-requested task. Tasks
// created by a guardian are approved from the start.
type RequestStatus string

const (
	RequestPending  RequestStatus = "pending"
	RequestApproved RequestStatus = "approved"
	RequestRejected RequestStatus = "rejected"
)

// Valid reports whether the status is one of the known values.
func (s RequestStatus) Valid() bool {
	switch s {
	case RequestPending, RequestApproved, RequestRejected:
		return true
	}
	return false
}

// TaskState is the lifecycle state of a task, derived from its fields.
type TaskState string

const (
	StateRequested        TaskState = "requested"
	StateRejected         TaskState = "rejected"
	StateActive           TaskState = "active"
	StateAwaitingFeedback TaskState = "awaiting-feedback"
	StateCompleted        TaskState = "completed"
)

// Task is the unit of work a kid completes for points.
type Task struct {
	ID                int64
	KidID             int64
	Title             string
	Description       string
	PointValue        int
	IsKidRequest      bool
	RequestStatus     RequestStatus
	FeedbackRequested bool
	IsCompleted       bool
	CompletedAt       *time.Time
	ProofImageURL     string
	CompletionNote    string
	ParentComment     string
	Recurrence        string
	CreatedBy         *int64
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// State derives the lifecycle state from the task's fields. A completed
// task stays completed regardless of any later feedback flag.
func (t *Task) State() TaskState {
	switch {
	case t.IsCompleted:
		return StateCompleted
	case t.IsKidRequest && t.RequestStatus == RequestPending:
		return StateRequested
	case t.IsKidRequest && t.RequestStatus == RequestRejected:
		return StateRejected
	case t.FeedbackRequested:
		return StateAwaitingFeedback
	default:
		return StateActive
	}
}

// IsActionable reports whether the task can currently be completed.
func (t *Task) IsActionable() bool {
	state := t.State()
	return state == StateActive || state == StateAwaitingFeedback
}
