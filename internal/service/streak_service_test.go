package service

import (
	"errors"
	"testing"
	"time"

	"chorequest/internal/models"
	"chorequest/internal/validation"
)

func day(offset int) time.Time {
	base := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	return base.AddDate(0, 0, offset)
}

func TestRecordActivityDayMath(t *testing.T) {
	env := newTestEnv(t)
	_, guardian, family := env.createGuardian(t, "alice")
	kid, _ := env.createKid(t, guardian, family.ID, "Ben")

	t.Run("first activity starts at one", func(t *testing.T) {
		streak, err := env.streaks.RecordActivity(kid.ID, day(0))
		if err != nil {
			t.Fatalf("RecordActivity failed: %v", err)
		}
		if streak.CurrentStreak != 1 || streak.LongestStreak != 1 {
			t.Errorf("streak = %d/%d, want 1/1", streak.CurrentStreak, streak.LongestStreak)
		}
	})

	t.Run("same day is a no-op", func(t *testing.T) {
		streak, err := env.streaks.RecordActivity(kid.ID, day(0).Add(5*time.Hour))
		if err != nil {
			t.Fatalf("RecordActivity failed: %v", err)
		}
		if streak.CurrentStreak != 1 {
			t.Errorf("streak = %d, want 1", streak.CurrentStreak)
		}
	})

	t.Run("consecutive days extend", func(t *testing.T) {
		for offset := 1; offset <= 3; offset++ {
			if _, err := env.streaks.RecordActivity(kid.ID, day(offset)); err != nil {
				t.Fatalf("RecordActivity day %d failed: %v", offset, err)
			}
		}
		streak, _ := env.streakRepo.GetByKidID(kid.ID)
		if streak.CurrentStreak != 4 || streak.LongestStreak != 4 {
			t.Errorf("streak = %d/%d, want 4/4", streak.CurrentStreak, streak.LongestStreak)
		}
	})

	t.Run("a gap resets current but not longest", func(t *testing.T) {
		streak, err := env.streaks.RecordActivity(kid.ID, day(10))
		if err != nil {
			t.Fatalf("RecordActivity failed: %v", err)
		}
		if streak.CurrentStreak != 1 {
			t.Errorf("current = %d, want 1 after gap", streak.CurrentStreak)
		}
		if streak.LongestStreak != 4 {
			t.Errorf("longest = %d, want 4 (never decreases)", streak.LongestStreak)
		}
	})

	t.Run("activity before the last day is rejected", func(t *testing.T) {
		var validationErr validation.ValidationError
		if _, err := env.streaks.RecordActivity(kid.ID, day(5)); !errors.As(err, &validationErr) {
			t.Errorf("expected validation error, got %v", err)
		}
	})
}

func TestGetStreakForInactiveKid(t *testing.T) {
	env := newTestEnv(t)
	_, guardian, family := env.createGuardian(t, "alice")
	kid, kidActor := env.createKid(t, guardian, family.ID, "Ben")

	streak, err := env.streaks.GetStreak(kidActor, kid.ID)
	if err != nil {
		t.Fatalf("GetStreak failed: %v", err)
	}
	if streak.CurrentStreak != 0 || streak.LongestStreak != 0 {
		t.Errorf("inactive kid should have a zero streak, got %d/%d", streak.CurrentStreak, streak.LongestStreak)
	}
}

func TestClaimMilestone(t *testing.T) {
	env := newTestEnv(t)
	_, guardian, family := env.createGuardian(t, "alice")
	kid, _ := env.createKid(t, guardian, family.ID, "Ben")

	t.Run("short streak is not eligible", func(t *testing.T) {
		for offset := 0; offset < 3; offset++ {
			if _, err := env.streaks.RecordActivity(kid.ID, day(offset)); err != nil {
				t.Fatalf("RecordActivity failed: %v", err)
			}
		}
		if _, _, err := env.streaks.ClaimMilestone(guardian, kid.ID, models.MilestoneWeek); !errors.Is(err, ErrNotEligible) {
			t.Fatalf("expected ErrNotEligible, got %v", err)
		}
	})

	t.Run("week milestone pays once", func(t *testing.T) {
		for offset := 3; offset < 7; offset++ {
			if _, err := env.streaks.RecordActivity(kid.ID, day(offset)); err != nil {
				t.Fatalf("RecordActivity failed: %v", err)
			}
		}

		streak, bonus, err := env.streaks.ClaimMilestone(guardian, kid.ID, models.MilestoneWeek)
		if err != nil {
			t.Fatalf("ClaimMilestone failed: %v", err)
		}
		if bonus != 50 {
			t.Errorf("bonus = %d, want 50", bonus)
		}
		if !streak.Claimed(models.MilestoneWeek) {
			t.Error("week bonus should be marked claimed")
		}
		balance, _ := env.kidRepo.GetTotalPoints(kid.ID)
		if balance != 50 {
			t.Errorf("balance = %d, want 50", balance)
		}

		// Second claim finds the flag already set.
		if _, _, err := env.streaks.ClaimMilestone(guardian, kid.ID, models.MilestoneWeek); !errors.Is(err, ErrAlreadyClaimed) {
			t.Fatalf("expected ErrAlreadyClaimed, got %v", err)
		}
		balance, _ = env.kidRepo.GetTotalPoints(kid.ID)
		if balance != 50 {
			t.Errorf("double claim must not pay twice, balance = %d", balance)
		}
	})

	t.Run("unknown milestone is rejected", func(t *testing.T) {
		var validationErr validation.ValidationError
		if _, _, err := env.streaks.ClaimMilestone(guardian, kid.ID, models.Milestone("year")); !errors.As(err, &validationErr) {
			t.Errorf("expected validation error, got %v", err)
		}
	})

	t.Run("view-level member cannot claim", func(t *testing.T) {
		_, viewer := env.addGuardian(t, family.ID, models.RoleGrandparent, models.PermissionView)
		if _, _, err := env.streaks.ClaimMilestone(viewer, kid.ID, models.MilestoneWeek); !errors.Is(err, ErrForbidden) {
			t.Errorf("expected ErrForbidden, got %v", err)
		}
	})
}

func TestMilestoneSurvivesStreakReset(t *testing.T) {
	env := newTestEnv(t)
	_, guardian, family := env.createGuardian(t, "alice")
	kid, _ := env.createKid(t, guardian, family.ID, "Ben")

	for offset := 0; offset < 7; offset++ {
		if _, err := env.streaks.RecordActivity(kid.ID, day(offset)); err != nil {
			t.Fatalf("RecordActivity failed: %v", err)
		}
	}
	if _, _, err := env.streaks.ClaimMilestone(guardian, kid.ID, models.MilestoneWeek); err != nil {
		t.Fatalf("ClaimMilestone failed: %v", err)
	}

	// Break the streak, rebuild past the threshold: the claim stays spent.
	if _, err := env.streaks.RecordActivity(kid.ID, day(20)); err != nil {
		t.Fatalf("RecordActivity failed: %v", err)
	}
	for offset := 21; offset < 27; offset++ {
		if _, err := env.streaks.RecordActivity(kid.ID, day(offset)); err != nil {
			t.Fatalf("RecordActivity failed: %v", err)
		}
	}
	if _, _, err := env.streaks.ClaimMilestone(guardian, kid.ID, models.MilestoneWeek); !errors.Is(err, ErrAlreadyClaimed) {
		t.Errorf("expected ErrAlreadyClaimed after rebuild, got %v", err)
	}
}
