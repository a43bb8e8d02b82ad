package service

import (
	"fmt"
	"time"

	"chorequest/internal/database"
	"chorequest/internal/models"
	"chorequest/internal/repository"
	"chorequest/internal/validation"
)

// StreakService tracks consecutive-day activity per kid and pays out
// one-shot milestone bonuses through the ledger.
type StreakService struct {
	db         *database.DB
	streakRepo *repository.StreakRepository
	ledger     *LedgerService
	perms      *PermissionService
}

func NewStreakService(db *database.DB, streakRepo *repository.StreakRepository, ledger *LedgerService, perms *PermissionService) *StreakService {
	return &StreakService{db: db, streakRepo: streakRepo, ledger: ledger, perms: perms}
}

// recordActivity advances the kid's streak for an activity on the given day,
// against the caller's transaction. The comparison is day-granular: a second
// activity on the same day is a no-op, the next day extends the streak, a
// gap resets it to one. Activity dated before the last recorded day is
// rejected rather than silently rewinding history.
func (s *StreakService) recordActivity(tx database.DBTX, kidID int64, activityDate time.Time) (*models.Streak, error) {
	day := models.DateOnly(activityDate)
	streaks := s.streakRepo.WithTx(tx)

	streak, err := streaks.GetByKidID(kidID)
	if err != nil {
		return nil, err
	}
	if streak == nil {
		return streaks.Insert(kidID, 1, 1, day)
	}

	lastDay := models.DateOnly(streak.LastActiveDate)
	switch {
	case day.Equal(lastDay):
		return streak, nil
	case day.Before(lastDay):
		return nil, validation.ValidationError{Field: "activityDate", Message: "activity date is before the last recorded day"}
	case day.Equal(lastDay.AddDate(0, 0, 1)):
		streak.CurrentStreak++
	default:
		streak.CurrentStreak = 1
	}

	if streak.CurrentStreak > streak.LongestStreak {
		streak.LongestStreak = streak.CurrentStreak
	}
	streak.LastActiveDate = day

	if err := streaks.UpdateProgress(kidID, streak.CurrentStreak, streak.LongestStreak, day); err != nil {
		return nil, err
	}
	return streak, nil
}

// RecordActivity advances the streak in its own transaction. Task completion
// records activity inside the completion transaction instead.
func (s *StreakService) RecordActivity(kidID int64, activityDate time.Time) (*models.Streak, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	streak, err := s.recordActivity(tx, kidID, activityDate)
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTransactionFailed, err)
	}
	return streak, nil
}

// GetStreak returns the kid's streak, or a zero-valued streak if the kid
// has never recorded activity.
func (s *StreakService) GetStreak(actor Actor, kidID int64) (*models.Streak, error) {
	if err := s.perms.AuthorizeKid(actor, kidID, models.PermissionView); err != nil {
		return nil, err
	}
	streak, err := s.streakRepo.GetByKidID(kidID)
	if err != nil {
		return nil, err
	}
	if streak == nil {
		return &models.Streak{KidID: kidID}, nil
	}
	return streak, nil
}

// ClaimMilestone pays out a milestone bonus. The bonus flag flip and the
// point credit commit together, so each milestone pays at most once no
// matter how many times it is claimed concurrently.
func (s *StreakService) ClaimMilestone(actor Actor, kidID int64, milestone models.Milestone) (*models.Streak, int, error) {
	if !milestone.Valid() {
		return nil, 0, validation.ValidationError{Field: "milestone", Message: "unknown milestone"}
	}
	if err := s.perms.AuthorizeKid(actor, kidID, models.PermissionManage); err != nil {
		return nil, 0, err
	}

	tx, err := s.db.Begin()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	streaks := s.streakRepo.WithTx(tx)
	streak, err := streaks.GetByKidID(kidID)
	if err != nil {
		return nil, 0, err
	}
	if streak == nil || streak.CurrentStreak < milestone.Threshold() {
		return nil, 0, ErrNotEligible
	}
	if streak.Claimed(milestone) {
		return nil, 0, ErrAlreadyClaimed
	}

	claimed, err := streaks.ClaimMilestone(kidID, milestone)
	if err != nil {
		return nil, 0, err
	}
	if !claimed {
		return nil, 0, ErrAlreadyClaimed
	}

	bonus := milestone.BonusPoints()
	if _, err := s.ledger.applyDelta(tx, kidID, bonus, fmt.Sprintf("streak milestone bonus: %s", milestone)); err != nil {
		return nil, 0, err
	}
	if err := tx.Commit(); err != nil {
		return nil, 0, fmt.Errorf("%w: %v", ErrTransactionFailed, err)
	}

	streak, err = s.streakRepo.GetByKidID(kidID)
	if err != nil {
		return nil, 0, err
	}
	return streak, bonus, nil
}
