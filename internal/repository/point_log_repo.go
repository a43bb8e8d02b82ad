package repository

import (
	"fmt"
	"time"

	"chorequest/internal/database"
	"chorequest/internal/models"
)

// PointLogRepository handles the append-only point ledger. Rows are only
// ever inserted; there is no update or delete.
type PointLogRepository struct {
	db database.DBTX
}

// NewPointLogRepository creates a new point log repository
func NewPointLogRepository(db database.DBTX) *PointLogRepository {
	return &PointLogRepository{db: db}
}

// WithTx returns a copy of the repository bound to the given transaction
func (r *PointLogRepository) WithTx(tx database.DBTX) *PointLogRepository {
	return &PointLogRepository{db: tx}
}

// Append records one balance change for a kid
func (r *PointLogRepository) Append(kidID int64, oldPoints, newPoints int, reason string) (*models.PointLog, error) {
	query := "INSERT INTO point_logs (kid_id, old_points, new_points, reason) VALUES (?, ?, ?, ?)"
	logID, err := r.db.ExecReturningID(query, kidID, oldPoints, newPoints, reason)
	if err != nil {
		return nil, fmt.Errorf("failed to append point log: %w", err)
	}

	return &models.PointLog{
		ID:        logID,
		KidID:     kidID,
		OldPoints: oldPoints,
		NewPoints: newPoints,
		Reason:    reason,
		CreatedAt: time.Now(),
	}, nil
}

// GetKidLogs retrieves a kid's ledger entries in creation order
func (r *PointLogRepository) GetKidLogs(kidID int64) ([]models.PointLog, error) {
	query := `
		SELECT id, kid_id, old_points, new_points, reason, created_at
		FROM point_logs
		WHERE kid_id = ?
		ORDER BY id ASC
	`
	rows, err := r.db.Query(query, kidID)
	if err != nil {
		return nil, fmt.Errorf("failed to query point logs: %w", err)
	}
	defer rows.Close()

	var logs []models.PointLog
	for rows.Next() {
		var entry models.PointLog
		if err := rows.Scan(
			&entry.ID,
			&entry.KidID,
			&entry.OldPoints,
			&entry.NewPoints,
			&entry.Reason,
			&entry.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan point log: %w", err)
		}
		logs = append(logs, entry)
	}

	return logs, nil
}
