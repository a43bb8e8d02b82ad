package models

import "time"

// Milestone is a streak threshold with a one-time bonus attached.
type Milestone string

const (
	MilestoneWeek    Milestone = "week"
	MilestoneMonth   Milestone = "month"
	MilestoneQuarter Milestone = "quarter"
)

// Valid reports whether the milestone is one of the known thresholds.
func (m Milestone) Valid() bool {
	switch m {
	case MilestoneWeek, MilestoneMonth, MilestoneQuarter:
		return true
	}
	return false
}

// Threshold returns the streak length required to claim the milestone.
func (m Milestone) Threshold() int {
	switch m {
	case MilestoneWeek:
		return 7
	case MilestoneMonth:
		return 30
	case MilestoneQuarter:
		return 90
	}
	return 0
}

// BonusPoints returns the one-time point award for the milestone.
func (m Milestone) BonusPoints() int {
	switch m {
	case MilestoneWeek:
		return 50
	case MilestoneMonth:
		return 150
	case MilestoneQuarter:
		return 500
	}
	return 0
}

// Streak tracks a kid's consecutive-day activity. LastActiveDate carries
// no time-of-day component; comparisons are at calendar-day granularity.
type Streak struct {
	ID             int64
	KidID          int64
	CurrentStreak  int
	LongestStreak  int
	LastActiveDate time.Time
	WeekBonus      bool
	MonthBonus     bool
	QuarterBonus   bool
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// Claimed reports whether the milestone's bonus was already taken.
func (s *Streak) Claimed(m Milestone) bool {
	switch m {
	case MilestoneWeek:
		return s.WeekBonus
	case MilestoneMonth:
		return s.MonthBonus
	case MilestoneQuarter:
		return s.QuarterBonus
	}
	return false
}

// DateOnly strips the time-of-day component, keeping the calendar day in
// the time's location.
func DateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
