package service

import (
	"fmt"

	"chorequest/internal/models"
	"chorequest/internal/repository"
)

// PermissionService resolves whether an actor may perform an operation on a
// family or on a kid. Kid-scoped checks resolve through the kid's owning
// family; admins bypass membership checks entirely.
type PermissionService struct {
	familyRepo *repository.FamilyRepository
	kidRepo    *repository.KidRepository
}

func NewPermissionService(familyRepo *repository.FamilyRepository, kidRepo *repository.KidRepository) *PermissionService {
	return &PermissionService{familyRepo: familyRepo, kidRepo: kidRepo}
}

// AuthorizeFamily checks that the actor is a member of the family with at
// least the required permission. A missing family is reported as not found;
// a non-member or an insufficient permission level is forbidden.
func (s *PermissionService) AuthorizeFamily(actor Actor, familyID int64, required models.Permission) error {
	family, err := s.familyRepo.GetFamilyByID(familyID)
	if err != nil {
		return fmt.Errorf("failed to look up family: %w", err)
	}
	if family == nil {
		return ErrNotFound
	}

	if actor.IsAdmin {
		return nil
	}
	if actor.IsKid() {
		return ErrForbidden
	}

	member, err := s.familyRepo.GetMember(familyID, actor.UserID)
	if err != nil {
		return fmt.Errorf("failed to look up family member: %w", err)
	}
	if member == nil {
		return ErrForbidden
	}
	if !member.Permission.AtLeast(required) {
		return ErrForbidden
	}
	return nil
}

// AuthorizeKid checks that the actor may act on the kid at the required
// permission level. A kid session is only ever authorized for itself;
// guardians resolve through the kid's owning family. A kid without a
// family is unreachable to guardians.
func (s *PermissionService) AuthorizeKid(actor Actor, kidID int64, required models.Permission) error {
	kid, err := s.kidRepo.GetKidByID(kidID)
	if err != nil {
		return fmt.Errorf("failed to look up kid: %w", err)
	}
	if kid == nil {
		return ErrNotFound
	}

	if actor.IsKid() {
		if actor.KidID == kidID {
			return nil
		}
		return ErrForbidden
	}
	if actor.IsAdmin {
		return nil
	}

	if !kid.HasFamily() {
		return ErrForbidden
	}
	return s.AuthorizeFamily(actor, *kid.FamilyID, required)
}

// RequirePrimary checks that the actor is the family's primary guardian.
// Admins pass. This guards invitations, member management and family
// deletion regardless of permission level.
func (s *PermissionService) RequirePrimary(actor Actor, familyID int64) error {
	family, err := s.familyRepo.GetFamilyByID(familyID)
	if err != nil {
		return fmt.Errorf("failed to look up family: %w", err)
	}
	if family == nil {
		return ErrNotFound
	}

	if actor.IsAdmin {
		return nil
	}
	if actor.IsKid() {
		return ErrForbidden
	}

	member, err := s.familyRepo.GetMember(familyID, actor.UserID)
	if err != nil {
		return fmt.Errorf("failed to look up family member: %w", err)
	}
	if member == nil || !member.IsPrimary() {
		return ErrForbidden
	}
	return nil
}
