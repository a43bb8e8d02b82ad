package models

import "time"

// Kid represents a child profile in the system. TotalPoints is the
// authoritative running balance; every change to it appends a PointLog.
type Kid struct {
	ID          int64
	FamilyID    *int64
	Name        string
	AvatarColor string
	TotalPoints int
	PINHash     string
	AccessToken string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// HasFamily reports whether the kid belongs to a family.
func (k *Kid) HasFamily() bool {
	return k.FamilyID != nil
}

// KidWithStats combines a kid with their derived statistics
type KidWithStats struct {
	Kid            Kid
	Gems           int
	Stars          int
	CurrentStreak  int
	LongestStreak  int
	CompletedTasks int
}
