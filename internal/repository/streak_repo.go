package repository

import (
	"database/sql"
	"fmt"
	"time"

	"chorequest/internal/database"
	"chorequest/internal/models"
)

// StreakRepository handles database operations for per-kid streaks
type StreakRepository struct {
	db database.DBTX
}

// NewStreakRepository creates a new streak repository
func NewStreakRepository(db database.DBTX) *StreakRepository {
	return &StreakRepository{db: db}
}

// WithTx returns a copy of the repository bound to the given transaction
func (r *StreakRepository) WithTx(tx database.DBTX) *StreakRepository {
	return &StreakRepository{db: tx}
}

// GetByKidID retrieves a kid's streak, or nil if none exists yet
func (r *StreakRepository) GetByKidID(kidID int64) (*models.Streak, error) {
	query := `
		SELECT id, kid_id, current_streak, longest_streak, last_active_date,
		       week_bonus, month_bonus, quarter_bonus, created_at, updated_at
		FROM streaks WHERE kid_id = ?
	`
	streak := &models.Streak{}
	err := r.db.QueryRow(query, kidID).Scan(
		&streak.ID,
		&streak.KidID,
		&streak.CurrentStreak,
		&streak.LongestStreak,
		&streak.LastActiveDate,
		&streak.WeekBonus,
		&streak.MonthBonus,
		&streak.QuarterBonus,
		&streak.CreatedAt,
		&streak.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get streak: %w", err)
	}
	return streak, nil
}

// Insert creates a kid's first streak row
func (r *StreakRepository) Insert(kidID int64, currentStreak, longestStreak int, lastActiveDate time.Time) (*models.Streak, error) {
	query := `
		INSERT INTO streaks (kid_id, current_streak, longest_streak, last_active_date)
		VALUES (?, ?, ?, ?)
	`
	streakID, err := r.db.ExecReturningID(query, kidID, currentStreak, longestStreak, lastActiveDate)
	if err != nil {
		return nil, fmt.Errorf("failed to create streak: %w", err)
	}

	return &models.Streak{
		ID:             streakID,
		KidID:          kidID,
		CurrentStreak:  currentStreak,
		LongestStreak:  longestStreak,
		LastActiveDate: lastActiveDate,
		CreatedAt:      time.Now(),
		UpdatedAt:      time.Now(),
	}, nil
}

// UpdateProgress writes the streak counters after an activity
func (r *StreakRepository) UpdateProgress(kidID int64, currentStreak, longestStreak int, lastActiveDate time.Time) error {
	query := `
		UPDATE streaks
		SET current_streak = ?, longest_streak = ?, last_active_date = ?, updated_at = CURRENT_TIMESTAMP
		WHERE kid_id = ?
	`
	if _, err := r.db.Exec(query, currentStreak, longestStreak, lastActiveDate, kidID); err != nil {
		return fmt.Errorf("failed to update streak: %w", err)
	}
	return nil
}

// ClaimMilestone sets a milestone claim flag with a compare-and-set on the
// unclaimed state. Returns false when the flag was already set.
func (r *StreakRepository) ClaimMilestone(kidID int64, milestone models.Milestone) (bool, error) {
	var column string
	switch milestone {
	case models.MilestoneWeek:
		column = "week_bonus"
	case models.MilestoneMonth:
		column = "month_bonus"
	case models.MilestoneQuarter:
		column = "quarter_bonus"
	default:
		return false, fmt.Errorf("unknown milestone: %s", milestone)
	}

	query := fmt.Sprintf(
		"UPDATE streaks SET %s = ?, updated_at = CURRENT_TIMESTAMP WHERE kid_id = ? AND %s = ?",
		column, column,
	)
	result, err := r.db.Exec(query, true, kidID, false)
	if err != nil {
		return false, fmt.Errorf("failed to claim milestone: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to check milestone claim: %w", err)
	}
	return affected == 1, nil
}
