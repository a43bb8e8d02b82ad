package models

import "time"

// RewardRequest is a kid-suggested reward awaiting guardian review.
type RewardRequest struct {
	ID        int64
	KidID     int64
	Title     string
	PointCost int
	Status    RequestStatus
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Redemption records a reward purchase paid for out of a kid's balance.
type Redemption struct {
	ID          int64
	KidID       int64
	Title       string
	PointsSpent int
	RedeemedAt  time.Time
}
