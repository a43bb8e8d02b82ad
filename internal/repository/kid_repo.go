package repository

import (
	"database/sql"
	"fmt"
	"time"

	"chorequest/internal/database"
	"chorequest/internal/models"
)

// KidRepository handles database operations for kid profiles
type KidRepository struct {
	db database.DBTX
}

// NewKidRepository creates a new kid repository
func NewKidRepository(db database.DBTX) *KidRepository {
	return &KidRepository{db: db}
}

// WithTx returns a copy of the repository bound to the given transaction
func (r *KidRepository) WithTx(tx database.DBTX) *KidRepository {
	return &KidRepository{db: tx}
}

const kidColumns = "id, family_id, name, avatar_color, total_points, pin_hash, access_token, created_at, updated_at"

// CreateKid creates a new kid profile
func (r *KidRepository) CreateKid(familyID *int64, name, avatarColor, pinHash, accessToken string) (*models.Kid, error) {
	query := "INSERT INTO kids (family_id, name, avatar_color, pin_hash, access_token) VALUES (?, ?, ?, ?, ?)"
	kidID, err := r.db.ExecReturningID(query, familyID, name, avatarColor, pinHash, accessToken)
	if err != nil {
		return nil, fmt.Errorf("failed to create kid: %w", err)
	}

	return &models.Kid{
		ID:          kidID,
		FamilyID:    familyID,
		Name:        name,
		AvatarColor: avatarColor,
		PINHash:     pinHash,
		AccessToken: accessToken,
		CreatedAt:   time.Now(),
		UpdatedAt:   time.Now(),
	}, nil
}

// GetKidByID retrieves a kid by ID
func (r *KidRepository) GetKidByID(kidID int64) (*models.Kid, error) {
	query := "SELECT " + kidColumns + " FROM kids WHERE id = ?"
	return r.scanKid(r.db.QueryRow(query, kidID))
}

// GetKidByAccessToken retrieves a kid by their link-access token
func (r *KidRepository) GetKidByAccessToken(token string) (*models.Kid, error) {
	if token == "" {
		return nil, nil
	}
	query := "SELECT " + kidColumns + " FROM kids WHERE access_token = ?"
	return r.scanKid(r.db.QueryRow(query, token))
}

// GetFamilyKids retrieves all kids in a family
func (r *KidRepository) GetFamilyKids(familyID int64) ([]models.Kid, error) {
	query := "SELECT " + kidColumns + " FROM kids WHERE family_id = ? ORDER BY created_at ASC"
	rows, err := r.db.Query(query, familyID)
	if err != nil {
		return nil, fmt.Errorf("failed to query kids: %w", err)
	}
	defer rows.Close()

	var kids []models.Kid
	for rows.Next() {
		var kid models.Kid
		if err := rows.Scan(
			&kid.ID,
			&kid.FamilyID,
			&kid.Name,
			&kid.AvatarColor,
			&kid.TotalPoints,
			&kid.PINHash,
			&kid.AccessToken,
			&kid.CreatedAt,
			&kid.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan kid: %w", err)
		}
		kids = append(kids, kid)
	}

	return kids, nil
}

// UpdateKid updates a kid's profile information
func (r *KidRepository) UpdateKid(kidID int64, name, avatarColor string) error {
	query := "UPDATE kids SET name = ?, avatar_color = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?"
	if _, err := r.db.Exec(query, name, avatarColor, kidID); err != nil {
		return fmt.Errorf("failed to update kid: %w", err)
	}
	return nil
}

// UpdateAccessToken replaces (or clears) a kid's link-access token
func (r *KidRepository) UpdateAccessToken(kidID int64, token string) error {
	query := "UPDATE kids SET access_token = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?"
	if _, err := r.db.Exec(query, token, kidID); err != nil {
		return fmt.Errorf("failed to update access token: %w", err)
	}
	return nil
}

// UpdatePIN replaces a kid's PIN hash
func (r *KidRepository) UpdatePIN(kidID int64, pinHash string) error {
	query := "UPDATE kids SET pin_hash = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?"
	if _, err := r.db.Exec(query, pinHash, kidID); err != nil {
		return fmt.Errorf("failed to update pin: %w", err)
	}
	return nil
}

// GetTotalPoints reads a kid's current balance. Callers that go on to
// write the balance must run this inside the same transaction.
func (r *KidRepository) GetTotalPoints(kidID int64) (int, error) {
	var points int
	query := "SELECT total_points FROM kids WHERE id = ?"
	err := r.db.QueryRow(query, kidID).Scan(&points)
	if err == sql.ErrNoRows {
		return 0, fmt.Errorf("kid %d not found", kidID)
	}
	if err != nil {
		return 0, fmt.Errorf("failed to get total points: %w", err)
	}
	return points, nil
}

// SetTotalPoints writes a kid's new balance
func (r *KidRepository) SetTotalPoints(kidID int64, totalPoints int) error {
	query := "UPDATE kids SET total_points = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?"
	if _, err := r.db.Exec(query, totalPoints, kidID); err != nil {
		return fmt.Errorf("failed to set total points: %w", err)
	}
	return nil
}

// DeleteKid deletes a kid profile; tasks, logs, streak and rewards cascade
func (r *KidRepository) DeleteKid(kidID int64) error {
	query := "DELETE FROM kids WHERE id = ?"
	if _, err := r.db.Exec(query, kidID); err != nil {
		return fmt.Errorf("failed to delete kid: %w", err)
	}
	return nil
}

func (r *KidRepository) scanKid(row *sql.Row) (*models.Kid, error) {
	kid := &models.Kid{}
	err := row.Scan(
		&kid.ID,
		&kid.FamilyID,
		&kid.Name,
		&kid.AvatarColor,
		&kid.TotalPoints,
		&kid.PINHash,
		&kid.AccessToken,
		&kid.CreatedAt,
		&kid.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get kid: %w", err)
	}
	return kid, nil
}
