package models

import (
	"testing"
	"time"
)

func TestTaskState(t *testing.T) {
	now := time.Now()
	tests := []struct {
		name     string
		task     Task
		expected TaskState
	}{
		{
			name:     "guardian-created task is active",
			task:     Task{RequestStatus: RequestApproved},
			expected: StateActive,
		},
		{
			name:     "pending kid request",
			task:     Task{IsKidRequest: true, RequestStatus: RequestPending},
			expected: StateRequested,
		},
		{
			name:     "rejected kid request",
			task:     Task{IsKidRequest: true, RequestStatus: RequestRejected},
			expected: StateRejected,
		},
		{
			name:     "approved kid request is active",
			task:     Task{IsKidRequest: true, RequestStatus: RequestApproved},
			expected: StateActive,
		},
		{
			name:     "feedback requested on active task",
			task:     Task{RequestStatus: RequestApproved, FeedbackRequested: true},
			expected: StateAwaitingFeedback,
		},
		{
			name:     "completed task",
			task:     Task{RequestStatus: RequestApproved, IsCompleted: true, CompletedAt: &now},
			expected: StateCompleted,
		},
		{
			name:     "completed wins over feedback flag",
			task:     Task{RequestStatus: RequestApproved, IsCompleted: true, FeedbackRequested: true},
			expected: StateCompleted,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.task.State(); got != tt.expected {
				t.Errorf("State() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestTaskIsActionable(t *testing.T) {
	active := Task{RequestStatus: RequestApproved}
	if !active.IsActionable() {
		t.Error("active task should be actionable")
	}
	pending := Task{IsKidRequest: true, RequestStatus: RequestPending}
	if pending.IsActionable() {
		t.Error("pending request should not be actionable")
	}
	done := Task{RequestStatus: RequestApproved, IsCompleted: true}
	if done.IsActionable() {
		t.Error("completed task should not be actionable")
	}
}

func TestPermissionAtLeast(t *testing.T) {
	ordered := []Permission{PermissionView, PermissionComment, PermissionManage, PermissionFull}
	for i, lower := range ordered {
		for j, higher := range ordered {
			got := higher.AtLeast(lower)
			want := j >= i
			if got != want {
				t.Errorf("%s.AtLeast(%s) = %v, want %v", higher, lower, got, want)
			}
		}
	}

	if Permission("bogus").AtLeast(PermissionView) {
		t.Error("unknown permission should never satisfy a requirement")
	}
}

func TestRoleValid(t *testing.T) {
	for _, r := range []Role{RolePrimary, RoleParent, RoleGuardian, RoleGrandparent} {
		if !r.Valid() {
			t.Errorf("role %s should be valid", r)
		}
	}
	if Role("uncle").Valid() {
		t.Error("unknown role should not be valid")
	}
}

func TestSplitGems(t *testing.T) {
	tests := []struct {
		name   string
		points int
		ratio  int
		gems   int
		stars  int
	}{
		{"zero points", 0, 10, 0, 0},
		{"below one gem", 9, 10, 0, 9},
		{"exact gem", 10, 10, 1, 0},
		{"mixed", 47, 10, 4, 7},
		{"custom ratio", 47, 25, 1, 22},
		{"ratio below one treated as one", 5, 0, 5, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SplitGems(tt.points, tt.ratio)
			if got.Gems != tt.gems || got.Stars != tt.stars {
				t.Errorf("SplitGems(%d, %d) = {%d %d}, want {%d %d}",
					tt.points, tt.ratio, got.Gems, got.Stars, tt.gems, tt.stars)
			}
		})
	}
}

func TestSplitGemsNeverLoses(t *testing.T) {
	// Gems*ratio + stars must reconstruct the total for any balance.
	for points := 0; points <= 250; points++ {
		b := SplitGems(points, DefaultGemRatio)
		if b.Gems*DefaultGemRatio+b.Stars != points {
			t.Fatalf("SplitGems(%d) lost points: gems=%d stars=%d", points, b.Gems, b.Stars)
		}
		if b.Stars < 0 || b.Stars >= DefaultGemRatio {
			t.Fatalf("SplitGems(%d) stars out of range: %d", points, b.Stars)
		}
	}
}

func TestMilestones(t *testing.T) {
	tests := []struct {
		milestone Milestone
		threshold int
		bonus     int
	}{
		{MilestoneWeek, 7, 50},
		{MilestoneMonth, 30, 150},
		{MilestoneQuarter, 90, 500},
	}

	for _, tt := range tests {
		t.Run(string(tt.milestone), func(t *testing.T) {
			if !tt.milestone.Valid() {
				t.Errorf("milestone %s should be valid", tt.milestone)
			}
			if got := tt.milestone.Threshold(); got != tt.threshold {
				t.Errorf("Threshold() = %d, want %d", got, tt.threshold)
			}
			if got := tt.milestone.BonusPoints(); got != tt.bonus {
				t.Errorf("BonusPoints() = %d, want %d", got, tt.bonus)
			}
		})
	}

	if Milestone("year").Valid() {
		t.Error("unknown milestone should not be valid")
	}
}

func TestStreakClaimed(t *testing.T) {
	s := Streak{WeekBonus: true}
	if !s.Claimed(MilestoneWeek) {
		t.Error("week bonus should read as claimed")
	}
	if s.Claimed(MilestoneMonth) || s.Claimed(MilestoneQuarter) {
		t.Error("unclaimed milestones should read as unclaimed")
	}
}

func TestDateOnly(t *testing.T) {
	ts := time.Date(2025, 3, 14, 23, 59, 58, 123, time.UTC)
	day := DateOnly(ts)
	if day.Hour() != 0 || day.Minute() != 0 || day.Second() != 0 || day.Nanosecond() != 0 {
		t.Errorf("DateOnly should strip time of day, got %v", day)
	}
	if day.Year() != 2025 || day.Month() != time.March || day.Day() != 14 {
		t.Errorf("DateOnly changed the date: %v", day)
	}

	morning := time.Date(2025, 3, 14, 0, 1, 0, 0, time.UTC)
	if !DateOnly(ts).Equal(DateOnly(morning)) {
		t.Error("same calendar day should compare equal")
	}
}
