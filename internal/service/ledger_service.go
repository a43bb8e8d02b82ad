package service

import (
	"fmt"

	"chorequest/internal/database"
	"chorequest/internal/models"
	"chorequest/internal/repository"
	"chorequest/internal/validation"
)

// LedgerService owns the point balance and its append-only history. Every
// balance change goes through applyDelta inside a transaction, so the log
// always replays to the stored total.
type LedgerService struct {
	db       *database.DB
	kidRepo  *repository.KidRepository
	logRepo  *repository.PointLogRepository
	perms    *PermissionService
	gemRatio int
}

func NewLedgerService(db *database.DB, kidRepo *repository.KidRepository, logRepo *repository.PointLogRepository, perms *PermissionService, gemRatio int) *LedgerService {
	if gemRatio < 1 {
		gemRatio = models.DefaultGemRatio
	}
	return &LedgerService{db: db, kidRepo: kidRepo, logRepo: logRepo, perms: perms, gemRatio: gemRatio}
}

// GemRatio returns the configured points-per-gem conversion rate.
func (s *LedgerService) GemRatio() int {
	return s.gemRatio
}

// applyDelta moves the kid's balance by delta and appends a log entry, all
// against the caller's transaction. A delta that would take the balance
// negative is rejected before anything is written.
func (s *LedgerService) applyDelta(tx database.DBTX, kidID int64, delta int, reason string) (*models.PointLog, error) {
	kids := s.kidRepo.WithTx(tx)

	current, err := kids.GetTotalPoints(kidID)
	if err != nil {
		return nil, err
	}
	newBalance := current + delta
	if newBalance < 0 {
		return nil, ErrInsufficientPoints
	}
	if err := kids.SetTotalPoints(kidID, newBalance); err != nil {
		return nil, err
	}
	return s.logRepo.WithTx(tx).Append(kidID, current, newBalance, reason)
}

// Credit awards (or with a negative delta, deducts) points in its own
// transaction and returns the new balance.
func (s *LedgerService) Credit(kidID int64, delta int, reason string) (int, error) {
	if err := validation.ValidateReason(reason); err != nil {
		return 0, err
	}

	tx, err := s.db.Begin()
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	entry, err := s.applyDelta(tx, kidID, delta, reason)
	if err != nil {
		return 0, err
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("%w: %v", ErrTransactionFailed, err)
	}
	return entry.NewPoints, nil
}

// AdjustKidPoints sets the kid's balance to an absolute value, recording the
// guardian's reason. Setting the balance to its current value is a no-op and
// leaves the log untouched.
func (s *LedgerService) AdjustKidPoints(actor Actor, kidID int64, newBalance int, reason string) (*models.Kid, *models.PointLog, error) {
	if actor.IsKid() {
		return nil, nil, ErrForbidden
	}
	if newBalance < 0 {
		return nil, nil, validation.ValidationError{Field: "points", Message: "balance cannot be negative"}
	}
	if err := validation.ValidateReason(reason); err != nil {
		return nil, nil, err
	}
	if err := s.perms.AuthorizeKid(actor, kidID, models.PermissionManage); err != nil {
		return nil, nil, err
	}

	tx, err := s.db.Begin()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	kids := s.kidRepo.WithTx(tx)
	current, err := kids.GetTotalPoints(kidID)
	if err != nil {
		return nil, nil, err
	}
	if current == newBalance {
		kid, err := s.kidRepo.GetKidByID(kidID)
		return kid, nil, err
	}

	if err := kids.SetTotalPoints(kidID, newBalance); err != nil {
		return nil, nil, err
	}
	entry, err := s.logRepo.WithTx(tx).Append(kidID, current, newBalance, reason)
	if err != nil {
		return nil, nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrTransactionFailed, err)
	}

	kid, err := s.kidRepo.GetKidByID(kidID)
	if err != nil {
		return nil, nil, err
	}
	return kid, entry, nil
}

// GetKidBalance returns the kid's current balance with its gem breakdown.
func (s *LedgerService) GetKidBalance(actor Actor, kidID int64) (*models.Kid, models.GemBalance, error) {
	if err := s.perms.AuthorizeKid(actor, kidID, models.PermissionView); err != nil {
		return nil, models.GemBalance{}, err
	}
	kid, err := s.kidRepo.GetKidByID(kidID)
	if err != nil {
		return nil, models.GemBalance{}, err
	}
	if kid == nil {
		return nil, models.GemBalance{}, ErrNotFound
	}
	return kid, models.SplitGems(kid.TotalPoints, s.gemRatio), nil
}

// GetKidHistory returns the kid's point log in chronological order.
func (s *LedgerService) GetKidHistory(actor Actor, kidID int64) ([]models.PointLog, error) {
	if err := s.perms.AuthorizeKid(actor, kidID, models.PermissionView); err != nil {
		return nil, err
	}
	return s.logRepo.GetKidLogs(kidID)
}
