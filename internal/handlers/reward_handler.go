package handlers

import (
	"net/http"

	"chorequest/internal/service"
)

// RewardHandler handles reward suggestion, review and redemption endpoints.
type RewardHandler struct {
	rewardService *service.RewardService
}

// NewRewardHandler creates a new reward handler
func NewRewardHandler(rewardService *service.RewardService) *RewardHandler {
	return &RewardHandler{rewardService: rewardService}
}

// ListRewards handles GET /api/kids/{id}/rewards
func (h *RewardHandler) ListRewards(w http.ResponseWriter, r *http.Request) {
	kidID, ok := parseID(r, "id")
	if !ok {
		respondWithError(w, http.StatusBadRequest, "invalid kid id", nil)
		return
	}
	requests, redemptions, err := h.rewardService.GetKidRewards(ActorFromContext(r), kidID)
	if err != nil {
		respondWithDomainError(w, err)
		return
	}

	requestViews := make([]rewardRequestView, 0, len(requests))
	for i := range requests {
		requestViews = append(requestViews, newRewardRequestView(&requests[i]))
	}
	redemptionViews := make([]redemptionView, 0, len(redemptions))
	for _, red := range redemptions {
		redemptionViews = append(redemptionViews, redemptionView{
			ID:          red.ID,
			KidID:       red.KidID,
			Title:       red.Title,
			PointsSpent: red.PointsSpent,
			RedeemedAt:  red.RedeemedAt,
		})
	}
	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"requests":    requestViews,
		"redemptions": redemptionViews,
	})
}

// SuggestReward handles POST /api/kids/{id}/rewards
func (h *RewardHandler) SuggestReward(w http.ResponseWriter, r *http.Request) {
	kidID, ok := parseID(r, "id")
	if !ok {
		respondWithError(w, http.StatusBadRequest, "invalid kid id", nil)
		return
	}
	var req struct {
		Title     string `json:"title"`
		PointCost int    `json:"pointCost"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}

	request, err := h.rewardService.SuggestReward(ActorFromContext(r), kidID, req.Title, req.PointCost)
	if err != nil {
		respondWithDomainError(w, err)
		return
	}
	respondWithJSON(w, http.StatusCreated, newRewardRequestView(request))
}

// ReviewReward handles POST /api/rewards/{id}/review
func (h *RewardHandler) ReviewReward(w http.ResponseWriter, r *http.Request) {
	requestID, ok := parseID(r, "id")
	if !ok {
		respondWithError(w, http.StatusBadRequest, "invalid reward request id", nil)
		return
	}
	var req struct {
		Approve bool `json:"approve"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}

	request, err := h.rewardService.ReviewRewardRequest(ActorFromContext(r), requestID, req.Approve)
	if err != nil {
		respondWithDomainError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, newRewardRequestView(request))
}

// RedeemReward handles POST /api/rewards/{id}/redeem
func (h *RewardHandler) RedeemReward(w http.ResponseWriter, r *http.Request) {
	requestID, ok := parseID(r, "id")
	if !ok {
		respondWithError(w, http.StatusBadRequest, "invalid reward request id", nil)
		return
	}

	redemption, newBalance, err := h.rewardService.RedeemReward(ActorFromContext(r), requestID)
	if err != nil {
		respondWithDomainError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"redemption": redemptionView{
			ID:          redemption.ID,
			KidID:       redemption.KidID,
			Title:       redemption.Title,
			PointsSpent: redemption.PointsSpent,
			RedeemedAt:  redemption.RedeemedAt,
		},
		"newBalance": newBalance,
	})
}
