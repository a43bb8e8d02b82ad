package service

import (
	"fmt"

	"chorequest/internal/database"
	"chorequest/internal/models"
	"chorequest/internal/repository"
	"chorequest/internal/validation"
)

// RewardService handles kid-suggested rewards and their redemption against
// the point balance.
type RewardService struct {
	db         *database.DB
	rewardRepo *repository.RewardRepository
	ledger     *LedgerService
	perms      *PermissionService
}

func NewRewardService(db *database.DB, rewardRepo *repository.RewardRepository, ledger *LedgerService, perms *PermissionService) *RewardService {
	return &RewardService{db: db, rewardRepo: rewardRepo, ledger: ledger, perms: perms}
}

// SuggestReward lets a kid propose a reward at a point cost. Guardians can
// suggest on a kid's behalf too.
func (s *RewardService) SuggestReward(actor Actor, kidID int64, title string, pointCost int) (*models.RewardRequest, error) {
	if err := validation.ValidateName(title); err != nil {
		return nil, validation.ValidationError{Field: "title", Message: "title must be at least 2 characters"}
	}
	if pointCost <= 0 {
		return nil, validation.ValidationError{Field: "pointCost", Message: "point cost must be positive"}
	}
	if actor.IsKid() {
		if actor.KidID != kidID {
			return nil, ErrForbidden
		}
	} else if err := s.perms.AuthorizeKid(actor, kidID, models.PermissionManage); err != nil {
		return nil, err
	}
	return s.rewardRepo.CreateRequest(kidID, title, pointCost)
}

// ReviewRewardRequest approves or rejects a pending reward suggestion.
func (s *RewardService) ReviewRewardRequest(actor Actor, requestID int64, approve bool) (*models.RewardRequest, error) {
	if actor.IsKid() {
		return nil, ErrForbidden
	}
	request, err := s.rewardRepo.GetRequestByID(requestID)
	if err != nil {
		return nil, err
	}
	if request == nil {
		return nil, ErrNotFound
	}
	if err := s.perms.AuthorizeKid(actor, request.KidID, models.PermissionManage); err != nil {
		return nil, err
	}
	if request.Status != models.RequestPending {
		return nil, ErrInvalidTransition
	}

	status := models.RequestApproved
	if !approve {
		status = models.RequestRejected
	}
	updated, err := s.rewardRepo.SetRequestStatus(requestID, status)
	if err != nil {
		return nil, err
	}
	if !updated {
		return nil, ErrInvalidTransition
	}
	return s.rewardRepo.GetRequestByID(requestID)
}

// RedeemReward spends points on an approved reward. The debit and the
// redemption record commit together, and a balance that cannot cover the
// cost rejects the redemption outright.
func (s *RewardService) RedeemReward(actor Actor, requestID int64) (*models.Redemption, int, error) {
	request, err := s.rewardRepo.GetRequestByID(requestID)
	if err != nil {
		return nil, 0, err
	}
	if request == nil {
		return nil, 0, ErrNotFound
	}
	if actor.IsKid() {
		if actor.KidID != request.KidID {
			return nil, 0, ErrForbidden
		}
	} else if err := s.perms.AuthorizeKid(actor, request.KidID, models.PermissionManage); err != nil {
		return nil, 0, err
	}
	if request.Status != models.RequestApproved {
		return nil, 0, ErrInvalidTransition
	}

	tx, err := s.db.Begin()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	entry, err := s.ledger.applyDelta(tx, request.KidID, -request.PointCost, fmt.Sprintf("redeemed reward: %s", request.Title))
	if err != nil {
		return nil, 0, err
	}
	redemption, err := s.rewardRepo.WithTx(tx).CreateRedemption(request.KidID, request.Title, request.PointCost)
	if err != nil {
		return nil, 0, err
	}
	if err := tx.Commit(); err != nil {
		return nil, 0, fmt.Errorf("%w: %v", ErrTransactionFailed, err)
	}
	return redemption, entry.NewPoints, nil
}

// GetKidRewards lists a kid's reward requests and past redemptions.
func (s *RewardService) GetKidRewards(actor Actor, kidID int64) ([]models.RewardRequest, []models.Redemption, error) {
	if err := s.perms.AuthorizeKid(actor, kidID, models.PermissionView); err != nil {
		return nil, nil, err
	}
	requests, err := s.rewardRepo.GetKidRequests(kidID)
	if err != nil {
		return nil, nil, err
	}
	redemptions, err := s.rewardRepo.GetKidRedemptions(kidID)
	if err != nil {
		return nil, nil, err
	}
	return requests, redemptions, nil
}
