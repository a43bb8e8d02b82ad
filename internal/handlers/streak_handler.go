package handlers

import (
	"net/http"

	"chorequest/internal/models"
	"chorequest/internal/service"
)

// StreakHandler handles streak and milestone endpoints.
type StreakHandler struct {
	streakService *service.StreakService
}

// NewStreakHandler creates a new streak handler
func NewStreakHandler(streakService *service.StreakService) *StreakHandler {
	return &StreakHandler{streakService: streakService}
}

// GetStreak handles GET /api/kids/{id}/streak
func (h *StreakHandler) GetStreak(w http.ResponseWriter, r *http.Request) {
	kidID, ok := parseID(r, "id")
	if !ok {
		respondWithError(w, http.StatusBadRequest, "invalid kid id", nil)
		return
	}
	streak, err := h.streakService.GetStreak(ActorFromContext(r), kidID)
	if err != nil {
		respondWithDomainError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, newStreakView(streak))
}

// ClaimMilestone handles POST /api/kids/{id}/milestones/{milestone}/claim
func (h *StreakHandler) ClaimMilestone(w http.ResponseWriter, r *http.Request) {
	kidID, ok := parseID(r, "id")
	if !ok {
		respondWithError(w, http.StatusBadRequest, "invalid kid id", nil)
		return
	}
	milestone := models.Milestone(r.PathValue("milestone"))

	streak, bonus, err := h.streakService.ClaimMilestone(ActorFromContext(r), kidID, milestone)
	if err != nil {
		respondWithDomainError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"bonusPoints": bonus,
		"streak":      newStreakView(streak),
	})
}
