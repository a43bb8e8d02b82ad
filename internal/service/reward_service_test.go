package service

import (
	"errors"
	"testing"

	"chorequest/internal/models"
)

func TestRewardLifecycle(t *testing.T) {
	env := newTestEnv(t)
	_, guardian, family := env.createGuardian(t, "alice")
	kid, kidActor := env.createKid(t, guardian, family.ID, "Ben")

	if _, err := env.ledger.Credit(kid.ID, 100, "seed"); err != nil {
		t.Fatalf("Credit failed: %v", err)
	}

	request, err := env.rewards.SuggestReward(kidActor, kid.ID, "Movie night", 60)
	if err != nil {
		t.Fatalf("SuggestReward failed: %v", err)
	}
	if request.Status != models.RequestPending {
		t.Fatalf("status = %s, want pending", request.Status)
	}

	t.Run("pending reward cannot be redeemed", func(t *testing.T) {
		if _, _, err := env.rewards.RedeemReward(kidActor, request.ID); !errors.Is(err, ErrInvalidTransition) {
			t.Errorf("expected ErrInvalidTransition, got %v", err)
		}
	})

	t.Run("kids cannot review", func(t *testing.T) {
		if _, err := env.rewards.ReviewRewardRequest(kidActor, request.ID, true); !errors.Is(err, ErrForbidden) {
			t.Errorf("expected ErrForbidden, got %v", err)
		}
	})

	t.Run("approved reward redeems and debits", func(t *testing.T) {
		approved, err := env.rewards.ReviewRewardRequest(guardian, request.ID, true)
		if err != nil {
			t.Fatalf("ReviewRewardRequest failed: %v", err)
		}
		if approved.Status != models.RequestApproved {
			t.Fatalf("status = %s, want approved", approved.Status)
		}

		redemption, newBalance, err := env.rewards.RedeemReward(kidActor, request.ID)
		if err != nil {
			t.Fatalf("RedeemReward failed: %v", err)
		}
		if redemption.PointsSpent != 60 {
			t.Errorf("spent = %d, want 60", redemption.PointsSpent)
		}
		if newBalance != 40 {
			t.Errorf("balance = %d, want 40", newBalance)
		}
	})

	t.Run("redemption fails when unaffordable", func(t *testing.T) {
		if _, _, err := env.rewards.RedeemReward(kidActor, request.ID); !errors.Is(err, ErrInsufficientPoints) {
			t.Errorf("expected ErrInsufficientPoints, got %v", err)
		}
		balance, _ := env.kidRepo.GetTotalPoints(kid.ID)
		if balance != 40 {
			t.Errorf("failed redemption must not debit, balance = %d", balance)
		}
	})
}

func TestRejectedRewardStaysRejected(t *testing.T) {
	env := newTestEnv(t)
	_, guardian, family := env.createGuardian(t, "alice")
	kid, kidActor := env.createKid(t, guardian, family.ID, "Ben")

	request, err := env.rewards.SuggestReward(kidActor, kid.ID, "New console", 5000)
	if err != nil {
		t.Fatalf("SuggestReward failed: %v", err)
	}
	if _, err := env.rewards.ReviewRewardRequest(guardian, request.ID, false); err != nil {
		t.Fatalf("ReviewRewardRequest failed: %v", err)
	}

	if _, err := env.rewards.ReviewRewardRequest(guardian, request.ID, true); !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("re-reviewing should fail, got %v", err)
	}
	if _, _, err := env.rewards.RedeemReward(kidActor, request.ID); !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("redeeming a rejected reward should fail, got %v", err)
	}
}

func TestRewardVisibility(t *testing.T) {
	env := newTestEnv(t)
	_, guardian, family := env.createGuardian(t, "alice")
	kid, kidActor := env.createKid(t, guardian, family.ID, "Ben")
	_, sibActor := env.createKid(t, guardian, family.ID, "Cara")

	if _, err := env.rewards.SuggestReward(kidActor, kid.ID, "Ice cream", 10); err != nil {
		t.Fatalf("SuggestReward failed: %v", err)
	}

	requests, _, err := env.rewards.GetKidRewards(guardian, kid.ID)
	if err != nil {
		t.Fatalf("GetKidRewards failed: %v", err)
	}
	if len(requests) != 1 {
		t.Errorf("requests = %d, want 1", len(requests))
	}

	if _, _, err := env.rewards.GetKidRewards(sibActor, kid.ID); !errors.Is(err, ErrForbidden) {
		t.Errorf("a sibling should not see another kid's rewards, got %v", err)
	}
}
