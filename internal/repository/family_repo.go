package repository

import (
	"database/sql"
	"fmt"
	"time"

	"chorequest/internal/database"
	"chorequest/internal/models"
)

// FamilyRepository handles database operations for families and their members
type FamilyRepository struct {
	db database.DBTX
}

// NewFamilyRepository creates a new family repository
func NewFamilyRepository(db database.DBTX) *FamilyRepository {
	return &FamilyRepository{db: db}
}

// WithTx returns a copy of the repository bound to the given transaction
func (r *FamilyRepository) WithTx(tx database.DBTX) *FamilyRepository {
	return &FamilyRepository{db: tx}
}

// InsertFamily creates a family row. Membership rows are written by the
// caller so the whole creation stays in one transaction.
func (r *FamilyRepository) InsertFamily(name, joinCode string, isDefault bool) (*models.Family, error) {
	query := "INSERT INTO families (name, join_code, is_default) VALUES (?, ?, ?)"
	familyID, err := r.db.ExecReturningID(query, name, joinCode, isDefault)
	if err != nil {
		return nil, fmt.Errorf("failed to create family: %w", err)
	}

	return &models.Family{
		ID:        familyID,
		Name:      name,
		JoinCode:  joinCode,
		IsDefault: isDefault,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}, nil
}

// GetFamilyByID retrieves a family by ID
func (r *FamilyRepository) GetFamilyByID(familyID int64) (*models.Family, error) {
	query := "SELECT id, name, join_code, is_default, created_at, updated_at FROM families WHERE id = ?"
	return r.scanFamily(r.db.QueryRow(query, familyID))
}

// GetFamilyByCode retrieves a family by its join code
func (r *FamilyRepository) GetFamilyByCode(joinCode string) (*models.Family, error) {
	query := "SELECT id, name, join_code, is_default, created_at, updated_at FROM families WHERE join_code = ?"
	return r.scanFamily(r.db.QueryRow(query, joinCode))
}

// GetDefaultFamily retrieves the system default family, if one exists
func (r *FamilyRepository) GetDefaultFamily() (*models.Family, error) {
	query := "SELECT id, name, join_code, is_default, created_at, updated_at FROM families WHERE is_default = ? LIMIT 1"
	return r.scanFamily(r.db.QueryRow(query, true))
}

// GetUserFamilies retrieves all families a user belongs to
func (r *FamilyRepository) GetUserFamilies(userID int64) ([]models.Family, error) {
	query := `
		SELECT f.id, f.name, f.join_code, f.is_default, f.created_at, f.updated_at
		FROM families f
		INNER JOIN family_members fm ON f.id = fm.family_id
		WHERE fm.user_id = ?
		ORDER BY f.created_at DESC
	`
	rows, err := r.db.Query(query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query families: %w", err)
	}
	defer rows.Close()

	var families []models.Family
	for rows.Next() {
		var family models.Family
		if err := rows.Scan(&family.ID, &family.Name, &family.JoinCode, &family.IsDefault, &family.CreatedAt, &family.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan family: %w", err)
		}
		families = append(families, family)
	}

	return families, nil
}

// AddMember adds a user to a family with the given role and permission
func (r *FamilyRepository) AddMember(familyID, userID int64, role models.Role, permission models.Permission) error {
	query := "INSERT INTO family_members (family_id, user_id, role, permission) VALUES (?, ?, ?, ?)"
	if _, err := r.db.Exec(query, familyID, userID, string(role), string(permission)); err != nil {
		return fmt.Errorf("failed to add family member: %w", err)
	}
	return nil
}

// GetMember retrieves a user's membership row in a family
func (r *FamilyRepository) GetMember(familyID, userID int64) (*models.FamilyMember, error) {
	query := `
		SELECT id, family_id, user_id, role, permission, joined_at
		FROM family_members WHERE family_id = ? AND user_id = ?
	`
	member := &models.FamilyMember{}
	err := r.db.QueryRow(query, familyID, userID).Scan(
		&member.ID,
		&member.FamilyID,
		&member.UserID,
		&member.Role,
		&member.Permission,
		&member.JoinedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get family member: %w", err)
	}
	return member, nil
}

// GetMembers retrieves all members of a family with their user details
func (r *FamilyRepository) GetMembers(familyID int64) ([]models.FamilyMember, []models.User, error) {
	query := `
		SELECT fm.id, fm.family_id, fm.user_id, fm.role, fm.permission, fm.joined_at,
		       u.id, u.email, u.name, u.created_at
		FROM family_members fm
		INNER JOIN users u ON fm.user_id = u.id
		WHERE fm.family_id = ?
		ORDER BY fm.joined_at ASC
	`
	rows, err := r.db.Query(query, familyID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to query family members: %w", err)
	}
	defer rows.Close()

	var members []models.FamilyMember
	var users []models.User
	for rows.Next() {
		var member models.FamilyMember
		var user models.User
		if err := rows.Scan(
			&member.ID, &member.FamilyID, &member.UserID, &member.Role, &member.Permission, &member.JoinedAt,
			&user.ID, &user.Email, &user.Name, &user.CreatedAt,
		); err != nil {
			return nil, nil, fmt.Errorf("failed to scan family member: %w", err)
		}
		members = append(members, member)
		users = append(users, user)
	}

	return members, users, nil
}

// UpdateMember changes a member's role and permission
func (r *FamilyRepository) UpdateMember(memberID int64, role models.Role, permission models.Permission) error {
	query := "UPDATE family_members SET role = ?, permission = ? WHERE id = ?"
	if _, err := r.db.Exec(query, string(role), string(permission), memberID); err != nil {
		return fmt.Errorf("failed to update family member: %w", err)
	}
	return nil
}

// RemoveMember removes a user from a family
func (r *FamilyRepository) RemoveMember(familyID, userID int64) error {
	query := "DELETE FROM family_members WHERE family_id = ? AND user_id = ?"
	if _, err := r.db.Exec(query, familyID, userID); err != nil {
		return fmt.Errorf("failed to remove family member: %w", err)
	}
	return nil
}

// UpdateFamily updates a family's name
func (r *FamilyRepository) UpdateFamily(familyID int64, name string) error {
	query := "UPDATE families SET name = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?"
	if _, err := r.db.Exec(query, name, familyID); err != nil {
		return fmt.Errorf("failed to update family: %w", err)
	}
	return nil
}

// DeleteFamily deletes a family; membership rows cascade
func (r *FamilyRepository) DeleteFamily(familyID int64) error {
	query := "DELETE FROM families WHERE id = ?"
	if _, err := r.db.Exec(query, familyID); err != nil {
		return fmt.Errorf("failed to delete family: %w", err)
	}
	return nil
}

func (r *FamilyRepository) scanFamily(row *sql.Row) (*models.Family, error) {
	family := &models.Family{}
	err := row.Scan(
		&family.ID,
		&family.Name,
		&family.JoinCode,
		&family.IsDefault,
		&family.CreatedAt,
		&family.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get family: %w", err)
	}
	return family, nil
}
