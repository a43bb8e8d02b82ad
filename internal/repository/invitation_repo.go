package repository

import (
	"database/sql"
	"fmt"
	"time"

	"chorequest/internal/database"
	"chorequest/internal/models"
)

// InvitationRepository handles database operations for family invitations
type InvitationRepository struct {
	db database.DBTX
}

// NewInvitationRepository creates a new invitation repository
func NewInvitationRepository(db database.DBTX) *InvitationRepository {
	return &InvitationRepository{db: db}
}

// WithTx returns a copy of the repository bound to the given transaction
func (r *InvitationRepository) WithTx(tx database.DBTX) *InvitationRepository {
	return &InvitationRepository{db: tx}
}

// Create inserts a new invitation
func (r *InvitationRepository) Create(code string, familyID int64, email string, role models.Role, permission models.Permission, invitedBy int64, expiresAt time.Time) (*models.Invitation, error) {
	query := `
		INSERT INTO invitations (code, family_id, email, role, permission, invited_by, expires_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`
	invitationID, err := r.db.ExecReturningID(query, code, familyID, email, string(role), string(permission), invitedBy, expiresAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create invitation: %w", err)
	}

	return &models.Invitation{
		ID:         invitationID,
		Code:       code,
		FamilyID:   familyID,
		Email:      email,
		Role:       role,
		Permission: permission,
		InvitedBy:  invitedBy,
		CreatedAt:  time.Now(),
		ExpiresAt:  expiresAt,
	}, nil
}

// GetByCode retrieves an invitation by its code, with the inviter's name
func (r *InvitationRepository) GetByCode(code string) (*models.Invitation, error) {
	query := `
		SELECT i.id, i.code, i.family_id, i.email, i.role, i.permission, i.invited_by,
		       i.created_at, i.used_at, i.used_by, i.expires_at, u.name
		FROM invitations i
		INNER JOIN users u ON i.invited_by = u.id
		WHERE i.code = ?
	`
	invitation := &models.Invitation{}
	err := r.db.QueryRow(query, code).Scan(
		&invitation.ID,
		&invitation.Code,
		&invitation.FamilyID,
		&invitation.Email,
		&invitation.Role,
		&invitation.Permission,
		&invitation.InvitedBy,
		&invitation.CreatedAt,
		&invitation.UsedAt,
		&invitation.UsedBy,
		&invitation.ExpiresAt,
		&invitation.InviterName,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get invitation: %w", err)
	}
	return invitation, nil
}

// MarkUsed records that an invitation was consumed, guarded on it being
// unused so a code cannot be redeemed twice.
func (r *InvitationRepository) MarkUsed(invitationID, usedBy int64) (bool, error) {
	query := "UPDATE invitations SET used_at = CURRENT_TIMESTAMP, used_by = ? WHERE id = ? AND used_at IS NULL"
	result, err := r.db.Exec(query, usedBy, invitationID)
	if err != nil {
		return false, fmt.Errorf("failed to mark invitation used: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to check invitation update: %w", err)
	}
	return affected == 1, nil
}

// DeleteExpired removes invitations past their expiry
func (r *InvitationRepository) DeleteExpired() error {
	query := "DELETE FROM invitations WHERE expires_at < ? AND used_at IS NULL"
	if _, err := r.db.Exec(query, time.Now()); err != nil {
		return fmt.Errorf("failed to delete expired invitations: %w", err)
	}
	return nil
}
