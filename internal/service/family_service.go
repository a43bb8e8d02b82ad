package service

import (
	"context"
	"fmt"
	"log"
	"time"

	"chorequest/internal/credentials"
	"chorequest/internal/database"
	"chorequest/internal/models"
	"chorequest/internal/repository"
	"chorequest/internal/security"
	"chorequest/internal/validation"
)

const invitationTTL = 7 * 24 * time.Hour

// FamilyService manages families, their guardian memberships and their kids.
// Invitation and member management is reserved to the family's primary
// guardian; day-to-day kid management needs manage permission.
type FamilyService struct {
	db             *database.DB
	familyRepo     *repository.FamilyRepository
	kidRepo        *repository.KidRepository
	userRepo       *repository.UserRepository
	invitationRepo *repository.InvitationRepository
	email          *EmailService
	perms          *PermissionService
}

func NewFamilyService(db *database.DB, familyRepo *repository.FamilyRepository, kidRepo *repository.KidRepository, userRepo *repository.UserRepository, invitationRepo *repository.InvitationRepository, email *EmailService, perms *PermissionService) *FamilyService {
	return &FamilyService{
		db:             db,
		familyRepo:     familyRepo,
		kidRepo:        kidRepo,
		userRepo:       userRepo,
		invitationRepo: invitationRepo,
		email:          email,
		perms:          perms,
	}
}

// EnsureDefaultFamily creates the install's default family if none exists.
// Kids created before any guardian signs up land here.
func (s *FamilyService) EnsureDefaultFamily(name string) (*models.Family, error) {
	family, err := s.familyRepo.GetDefaultFamily()
	if err != nil {
		return nil, err
	}
	if family != nil {
		return family, nil
	}
	family, err = s.familyRepo.InsertFamily(name, security.GenerateJoinCode(), true)
	if err != nil {
		return nil, err
	}
	log.Printf("Created default family %q (id %d)", name, family.ID)
	return family, nil
}

// CreateFamily creates a family with the given user as its primary guardian.
func (s *FamilyService) CreateFamily(userID int64, name string) (*models.Family, error) {
	if err := validation.ValidateName(name); err != nil {
		return nil, err
	}

	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	families := s.familyRepo.WithTx(tx)
	family, err := families.InsertFamily(name, security.GenerateJoinCode(), false)
	if err != nil {
		return nil, err
	}
	if err := families.AddMember(family.ID, userID, models.RolePrimary, models.PermissionFull); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTransactionFailed, err)
	}
	return family, nil
}

// GetFamily returns a family with its members and kids.
func (s *FamilyService) GetFamily(actor Actor, familyID int64) (*models.FamilyWithMembers, []models.Kid, error) {
	if err := s.perms.AuthorizeFamily(actor, familyID, models.PermissionView); err != nil {
		return nil, nil, err
	}
	family, err := s.familyRepo.GetFamilyByID(familyID)
	if err != nil {
		return nil, nil, err
	}
	if family == nil {
		return nil, nil, ErrNotFound
	}
	members, users, err := s.familyRepo.GetMembers(familyID)
	if err != nil {
		return nil, nil, err
	}
	kids, err := s.kidRepo.GetFamilyKids(familyID)
	if err != nil {
		return nil, nil, err
	}
	return &models.FamilyWithMembers{Family: *family, Members: members, Users: users}, kids, nil
}

// GetUserFamilies lists the families the user belongs to.
func (s *FamilyService) GetUserFamilies(userID int64) ([]models.Family, error) {
	return s.familyRepo.GetUserFamilies(userID)
}

// UpdateFamily renames a family.
func (s *FamilyService) UpdateFamily(actor Actor, familyID int64, name string) (*models.Family, error) {
	if err := validation.ValidateName(name); err != nil {
		return nil, err
	}
	if err := s.perms.AuthorizeFamily(actor, familyID, models.PermissionManage); err != nil {
		return nil, err
	}
	if err := s.familyRepo.UpdateFamily(familyID, name); err != nil {
		return nil, err
	}
	return s.familyRepo.GetFamilyByID(familyID)
}

// DeleteFamily removes a family and everything attached to it. The default
// family cannot be deleted; kids in it would have nowhere to go.
func (s *FamilyService) DeleteFamily(actor Actor, familyID int64) error {
	if err := s.perms.RequirePrimary(actor, familyID); err != nil {
		return err
	}
	family, err := s.familyRepo.GetFamilyByID(familyID)
	if err != nil {
		return err
	}
	if family == nil {
		return ErrNotFound
	}
	if family.IsDefault {
		return validation.ValidationError{Field: "familyId", Message: "the default family cannot be deleted"}
	}
	return s.familyRepo.DeleteFamily(familyID)
}

// JoinByCode adds the user to the family behind a join code, as a parent
// with manage permission. Guardians who need a different role or level are
// invited instead.
func (s *FamilyService) JoinByCode(userID int64, joinCode string) (*models.Family, error) {
	family, err := s.familyRepo.GetFamilyByCode(joinCode)
	if err != nil {
		return nil, err
	}
	if family == nil {
		return nil, ErrNotFound
	}
	member, err := s.familyRepo.GetMember(family.ID, userID)
	if err != nil {
		return nil, err
	}
	if member != nil {
		return family, nil
	}
	if err := s.familyRepo.AddMember(family.ID, userID, models.RoleParent, models.PermissionManage); err != nil {
		return nil, err
	}
	return family, nil
}

// InviteMember creates an invitation to join the family with a chosen role
// and permission level, and emails it. Only the primary guardian invites,
// and nobody is invited as a primary.
func (s *FamilyService) InviteMember(ctx context.Context, actor Actor, familyID int64, email string, role models.Role, permission models.Permission) (*models.Invitation, error) {
	if err := validation.ValidateEmail(email); err != nil {
		return nil, err
	}
	if role == models.RolePrimary {
		return nil, validation.ValidationError{Field: "role", Message: "a family has exactly one primary guardian"}
	}
	if !role.Valid() {
		return nil, validation.ValidationError{Field: "role", Message: "unknown role"}
	}
	if !permission.Valid() {
		return nil, validation.ValidationError{Field: "permission", Message: "unknown permission level"}
	}
	if err := s.perms.RequirePrimary(actor, familyID); err != nil {
		return nil, err
	}

	family, err := s.familyRepo.GetFamilyByID(familyID)
	if err != nil {
		return nil, err
	}
	inviter, err := s.userRepo.GetUserByID(actor.UserID)
	if err != nil {
		return nil, err
	}

	code, err := security.GenerateSecureToken(16)
	if err != nil {
		return nil, fmt.Errorf("failed to generate invitation code: %w", err)
	}
	invitation, err := s.invitationRepo.Create(code, familyID, email, role, permission, actor.UserID, time.Now().Add(invitationTTL))
	if err != nil {
		return nil, err
	}

	inviterName := "A guardian"
	if inviter != nil {
		inviterName = inviter.Name
	}
	if err := s.email.SendInvitationEmail(ctx, email, inviterName, family.Name, code); err != nil {
		// The invitation is valid even if the mail bounces; the code can
		// still be shared directly.
		log.Printf("Failed to send invitation email: %v", err)
	}
	return invitation, nil
}

// GetInvitation returns an invitation by code for the accept page.
func (s *FamilyService) GetInvitation(code string) (*models.Invitation, error) {
	invitation, err := s.invitationRepo.GetByCode(code)
	if err != nil {
		return nil, err
	}
	if invitation == nil || !invitation.IsValid() {
		return nil, ErrNotFound
	}
	return invitation, nil
}

// AcceptInvitation consumes an invitation and adds the user with the role
// and permission the invitation carries. The guarded used-at update means a
// shared invitation link admits exactly one account.
func (s *FamilyService) AcceptInvitation(userID int64, code string) (*models.Family, error) {
	invitation, err := s.invitationRepo.GetByCode(code)
	if err != nil {
		return nil, err
	}
	if invitation == nil || !invitation.IsValid() {
		return nil, ErrNotFound
	}

	member, err := s.familyRepo.GetMember(invitation.FamilyID, userID)
	if err != nil {
		return nil, err
	}
	if member != nil {
		return nil, validation.ValidationError{Field: "code", Message: "already a member of this family"}
	}

	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	used, err := s.invitationRepo.WithTx(tx).MarkUsed(invitation.ID, userID)
	if err != nil {
		return nil, err
	}
	if !used {
		return nil, ErrNotFound
	}
	if err := s.familyRepo.WithTx(tx).AddMember(invitation.FamilyID, userID, invitation.Role, invitation.Permission); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTransactionFailed, err)
	}

	return s.familyRepo.GetFamilyByID(invitation.FamilyID)
}

// UpdateMember changes a member's role or permission level. The primary
// guardian's own row is immutable, and no member can be promoted to primary.
func (s *FamilyService) UpdateMember(actor Actor, familyID, userID int64, role models.Role, permission models.Permission) (*models.FamilyMember, error) {
	if role == models.RolePrimary {
		return nil, validation.ValidationError{Field: "role", Message: "a family has exactly one primary guardian"}
	}
	if !role.Valid() {
		return nil, validation.ValidationError{Field: "role", Message: "unknown role"}
	}
	if !permission.Valid() {
		return nil, validation.ValidationError{Field: "permission", Message: "unknown permission level"}
	}
	if err := s.perms.RequirePrimary(actor, familyID); err != nil {
		return nil, err
	}

	member, err := s.familyRepo.GetMember(familyID, userID)
	if err != nil {
		return nil, err
	}
	if member == nil {
		return nil, ErrNotFound
	}
	if member.IsPrimary() {
		return nil, ErrForbidden
	}

	if err := s.familyRepo.UpdateMember(member.ID, role, permission); err != nil {
		return nil, err
	}
	return s.familyRepo.GetMember(familyID, userID)
}

// RemoveMember takes a guardian out of the family. The primary cannot be
// removed; they delete the family instead.
func (s *FamilyService) RemoveMember(actor Actor, familyID, userID int64) error {
	if err := s.perms.RequirePrimary(actor, familyID); err != nil {
		return err
	}
	member, err := s.familyRepo.GetMember(familyID, userID)
	if err != nil {
		return err
	}
	if member == nil {
		return ErrNotFound
	}
	if member.IsPrimary() {
		return ErrForbidden
	}
	return s.familyRepo.RemoveMember(familyID, userID)
}

// CreateKid adds a kid to the family with a fresh access token and PIN.
// The plaintext PIN is returned once for the guardian to hand over; only
// its hash is stored.
func (s *FamilyService) CreateKid(actor Actor, familyID int64, name, avatarColor string) (*models.Kid, string, error) {
	if err := validation.ValidateName(name); err != nil {
		return nil, "", err
	}
	if err := s.perms.AuthorizeFamily(actor, familyID, models.PermissionManage); err != nil {
		return nil, "", err
	}

	pin, err := credentials.GenerateKidPIN()
	if err != nil {
		return nil, "", fmt.Errorf("failed to generate PIN: %w", err)
	}
	pinHash, err := security.HashPassword(pin)
	if err != nil {
		return nil, "", err
	}

	kid, err := s.kidRepo.CreateKid(&familyID, name, avatarColor, pinHash, security.GenerateAccessToken())
	if err != nil {
		return nil, "", err
	}
	return kid, pin, nil
}

// GetKid returns a single kid visible to the actor.
func (s *FamilyService) GetKid(actor Actor, kidID int64) (*models.Kid, error) {
	if err := s.perms.AuthorizeKid(actor, kidID, models.PermissionView); err != nil {
		return nil, err
	}
	kid, err := s.kidRepo.GetKidByID(kidID)
	if err != nil {
		return nil, err
	}
	if kid == nil {
		return nil, ErrNotFound
	}
	return kid, nil
}

// UpdateKid changes a kid's name or avatar color.
func (s *FamilyService) UpdateKid(actor Actor, kidID int64, name, avatarColor string) (*models.Kid, error) {
	if err := validation.ValidateName(name); err != nil {
		return nil, err
	}
	if err := s.perms.AuthorizeKid(actor, kidID, models.PermissionManage); err != nil {
		return nil, err
	}
	if err := s.kidRepo.UpdateKid(kidID, name, avatarColor); err != nil {
		return nil, err
	}
	return s.kidRepo.GetKidByID(kidID)
}

// DeleteKid removes a kid along with their tasks, logs and streak.
func (s *FamilyService) DeleteKid(actor Actor, kidID int64) error {
	if err := s.perms.AuthorizeKid(actor, kidID, models.PermissionManage); err != nil {
		return err
	}
	return s.kidRepo.DeleteKid(kidID)
}

// RotateKidAccessToken invalidates the kid's login link and issues a new one.
func (s *FamilyService) RotateKidAccessToken(actor Actor, kidID int64) (*models.Kid, error) {
	if err := s.perms.AuthorizeKid(actor, kidID, models.PermissionManage); err != nil {
		return nil, err
	}
	if err := s.kidRepo.UpdateAccessToken(kidID, security.GenerateAccessToken()); err != nil {
		return nil, err
	}
	return s.kidRepo.GetKidByID(kidID)
}

// ResetKidPIN issues a fresh PIN and returns it in plaintext once.
func (s *FamilyService) ResetKidPIN(actor Actor, kidID int64) (string, error) {
	if err := s.perms.AuthorizeKid(actor, kidID, models.PermissionManage); err != nil {
		return "", err
	}
	pin, err := credentials.GenerateKidPIN()
	if err != nil {
		return "", fmt.Errorf("failed to generate PIN: %w", err)
	}
	pinHash, err := security.HashPassword(pin)
	if err != nil {
		return "", err
	}
	if err := s.kidRepo.UpdatePIN(kidID, pinHash); err != nil {
		return "", err
	}
	return pin, nil
}
