package repository

import (
	"database/sql"
	"fmt"
	"time"

	"chorequest/internal/database"
	"chorequest/internal/models"
)

// RewardRepository handles database operations for reward requests and redemptions
type RewardRepository struct {
	db database.DBTX
}

// NewRewardRepository creates a new reward repository
func NewRewardRepository(db database.DBTX) *RewardRepository {
	return &RewardRepository{db: db}
}

// WithTx returns a copy of the repository bound to the given transaction
func (r *RewardRepository) WithTx(tx database.DBTX) *RewardRepository {
	return &RewardRepository{db: tx}
}

// CreateRequest inserts a kid-suggested reward awaiting review
func (r *RewardRepository) CreateRequest(kidID int64, title string, pointCost int) (*models.RewardRequest, error) {
	query := "INSERT INTO reward_requests (kid_id, title, point_cost, status) VALUES (?, ?, ?, ?)"
	requestID, err := r.db.ExecReturningID(query, kidID, title, pointCost, string(models.RequestPending))
	if err != nil {
		return nil, fmt.Errorf("failed to create reward request: %w", err)
	}

	return &models.RewardRequest{
		ID:        requestID,
		KidID:     kidID,
		Title:     title,
		PointCost: pointCost,
		Status:    models.RequestPending,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}, nil
}

// GetRequestByID retrieves a reward request by ID
func (r *RewardRepository) GetRequestByID(requestID int64) (*models.RewardRequest, error) {
	query := `
		SELECT id, kid_id, title, point_cost, status, created_at, updated_at
		FROM reward_requests WHERE id = ?
	`
	request := &models.RewardRequest{}
	err := r.db.QueryRow(query, requestID).Scan(
		&request.ID,
		&request.KidID,
		&request.Title,
		&request.PointCost,
		&request.Status,
		&request.CreatedAt,
		&request.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get reward request: %w", err)
	}
	return request, nil
}

// GetKidRequests retrieves all reward requests for a kid, newest first
func (r *RewardRepository) GetKidRequests(kidID int64) ([]models.RewardRequest, error) {
	query := `
		SELECT id, kid_id, title, point_cost, status, created_at, updated_at
		FROM reward_requests WHERE kid_id = ? ORDER BY created_at DESC
	`
	rows, err := r.db.Query(query, kidID)
	if err != nil {
		return nil, fmt.Errorf("failed to query reward requests: %w", err)
	}
	defer rows.Close()

	var requests []models.RewardRequest
	for rows.Next() {
		var request models.RewardRequest
		if err := rows.Scan(
			&request.ID,
			&request.KidID,
			&request.Title,
			&request.PointCost,
			&request.Status,
			&request.CreatedAt,
			&request.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan reward request: %w", err)
		}
		requests = append(requests, request)
	}

	return requests, nil
}

// SetRequestStatus records a review decision, guarded on the pending status
func (r *RewardRepository) SetRequestStatus(requestID int64, status models.RequestStatus) (bool, error) {
	query := `
		UPDATE reward_requests SET status = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ? AND status = ?
	`
	result, err := r.db.Exec(query, string(status), requestID, string(models.RequestPending))
	if err != nil {
		return false, fmt.Errorf("failed to set reward request status: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to check reward review: %w", err)
	}
	return affected == 1, nil
}

// CreateRedemption records a reward purchase
func (r *RewardRepository) CreateRedemption(kidID int64, title string, pointsSpent int) (*models.Redemption, error) {
	query := "INSERT INTO redemptions (kid_id, title, points_spent) VALUES (?, ?, ?)"
	redemptionID, err := r.db.ExecReturningID(query, kidID, title, pointsSpent)
	if err != nil {
		return nil, fmt.Errorf("failed to create redemption: %w", err)
	}

	return &models.Redemption{
		ID:          redemptionID,
		KidID:       kidID,
		Title:       title,
		PointsSpent: pointsSpent,
		RedeemedAt:  time.Now(),
	}, nil
}

// GetKidRedemptions retrieves all redemptions for a kid, newest first
func (r *RewardRepository) GetKidRedemptions(kidID int64) ([]models.Redemption, error) {
	query := `
		SELECT id, kid_id, title, points_spent, redeemed_at
		FROM redemptions WHERE kid_id = ? ORDER BY redeemed_at DESC
	`
	rows, err := r.db.Query(query, kidID)
	if err != nil {
		return nil, fmt.Errorf("failed to query redemptions: %w", err)
	}
	defer rows.Close()

	var redemptions []models.Redemption
	for rows.Next() {
		var redemption models.Redemption
		if err := rows.Scan(
			&redemption.ID,
			&redemption.KidID,
			&redemption.Title,
			&redemption.PointsSpent,
			&redemption.RedeemedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan redemption: %w", err)
		}
		redemptions = append(redemptions, redemption)
	}

	return redemptions, nil
}
