package handlers

import (
	"net/http"

	"chorequest/internal/models"
	"chorequest/internal/service"
)

// KidHandler handles kid profile management and the kid-facing balance and
// history endpoints.
type KidHandler struct {
	familyService *service.FamilyService
	ledgerService *service.LedgerService
	taskService   *service.TaskService
	streakService *service.StreakService
}

// NewKidHandler creates a new kid handler
func NewKidHandler(familyService *service.FamilyService, ledgerService *service.LedgerService, taskService *service.TaskService, streakService *service.StreakService) *KidHandler {
	return &KidHandler{
		familyService: familyService,
		ledgerService: ledgerService,
		taskService:   taskService,
		streakService: streakService,
	}
}

// CreateKid handles POST /api/families/{id}/kids. The response carries the
// one-time plaintext PIN for the guardian to pass on.
func (h *KidHandler) CreateKid(w http.ResponseWriter, r *http.Request) {
	familyID, ok := parseID(r, "id")
	if !ok {
		respondWithError(w, http.StatusBadRequest, "invalid family id", nil)
		return
	}
	var req struct {
		Name        string `json:"name"`
		AvatarColor string `json:"avatarColor"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}

	kid, pin, err := h.familyService.CreateKid(ActorFromContext(r), familyID, req.Name, req.AvatarColor)
	if err != nil {
		respondWithDomainError(w, err)
		return
	}
	respondWithJSON(w, http.StatusCreated, map[string]interface{}{
		"kid": newKidView(kid, h.ledgerService.GemRatio()),
		"pin": pin,
	})
}

// GetKid handles GET /api/kids/{id}
func (h *KidHandler) GetKid(w http.ResponseWriter, r *http.Request) {
	kidID, ok := parseID(r, "id")
	if !ok {
		respondWithError(w, http.StatusBadRequest, "invalid kid id", nil)
		return
	}
	kid, err := h.familyService.GetKid(ActorFromContext(r), kidID)
	if err != nil {
		respondWithDomainError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, newKidView(kid, h.ledgerService.GemRatio()))
}

// UpdateKid handles PUT /api/kids/{id}
func (h *KidHandler) UpdateKid(w http.ResponseWriter, r *http.Request) {
	kidID, ok := parseID(r, "id")
	if !ok {
		respondWithError(w, http.StatusBadRequest, "invalid kid id", nil)
		return
	}
	var req struct {
		Name        string `json:"name"`
		AvatarColor string `json:"avatarColor"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}

	kid, err := h.familyService.UpdateKid(ActorFromContext(r), kidID, req.Name, req.AvatarColor)
	if err != nil {
		respondWithDomainError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, newKidView(kid, h.ledgerService.GemRatio()))
}

// DeleteKid handles DELETE /api/kids/{id}
func (h *KidHandler) DeleteKid(w http.ResponseWriter, r *http.Request) {
	kidID, ok := parseID(r, "id")
	if !ok {
		respondWithError(w, http.StatusBadRequest, "invalid kid id", nil)
		return
	}
	if err := h.familyService.DeleteKid(ActorFromContext(r), kidID); err != nil {
		respondWithDomainError(w, err)
		return
	}
	respondWithJSON(w, http.StatusNoContent, nil)
}

// RotateAccessToken handles POST /api/kids/{id}/rotate-token
func (h *KidHandler) RotateAccessToken(w http.ResponseWriter, r *http.Request) {
	kidID, ok := parseID(r, "id")
	if !ok {
		respondWithError(w, http.StatusBadRequest, "invalid kid id", nil)
		return
	}
	kid, err := h.familyService.RotateKidAccessToken(ActorFromContext(r), kidID)
	if err != nil {
		respondWithDomainError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]string{"accessToken": kid.AccessToken})
}

// ResetPIN handles POST /api/kids/{id}/reset-pin
func (h *KidHandler) ResetPIN(w http.ResponseWriter, r *http.Request) {
	kidID, ok := parseID(r, "id")
	if !ok {
		respondWithError(w, http.StatusBadRequest, "invalid kid id", nil)
		return
	}
	pin, err := h.familyService.ResetKidPIN(ActorFromContext(r), kidID)
	if err != nil {
		respondWithDomainError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]string{"pin": pin})
}

// GetStats handles GET /api/kids/{id}/stats, the dashboard summary of a
// kid's points, streak and completed-task count.
func (h *KidHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	kidID, ok := parseID(r, "id")
	if !ok {
		respondWithError(w, http.StatusBadRequest, "invalid kid id", nil)
		return
	}
	actor := ActorFromContext(r)

	kid, err := h.familyService.GetKid(actor, kidID)
	if err != nil {
		respondWithDomainError(w, err)
		return
	}
	completed, err := h.taskService.CountCompletedTasks(actor, kidID)
	if err != nil {
		respondWithDomainError(w, err)
		return
	}
	streak, err := h.streakService.GetStreak(actor, kidID)
	if err != nil {
		respondWithDomainError(w, err)
		return
	}

	gems := models.SplitGems(kid.TotalPoints, h.ledgerService.GemRatio())
	stats := models.KidWithStats{
		Kid:            *kid,
		Gems:           gems.Gems,
		Stars:          gems.Stars,
		CurrentStreak:  streak.CurrentStreak,
		LongestStreak:  streak.LongestStreak,
		CompletedTasks: completed,
	}
	respondWithJSON(w, http.StatusOK, newKidStatsView(&stats, h.ledgerService.GemRatio()))
}

// GetBalance handles GET /api/kids/{id}/balance
func (h *KidHandler) GetBalance(w http.ResponseWriter, r *http.Request) {
	kidID, ok := parseID(r, "id")
	if !ok {
		respondWithError(w, http.StatusBadRequest, "invalid kid id", nil)
		return
	}
	kid, gems, err := h.ledgerService.GetKidBalance(ActorFromContext(r), kidID)
	if err != nil {
		respondWithDomainError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, balanceView{
		KidID:       kid.ID,
		TotalPoints: kid.TotalPoints,
		Gems:        gems.Gems,
		Stars:       gems.Stars,
	})
}

// GetHistory handles GET /api/kids/{id}/history
func (h *KidHandler) GetHistory(w http.ResponseWriter, r *http.Request) {
	kidID, ok := parseID(r, "id")
	if !ok {
		respondWithError(w, http.StatusBadRequest, "invalid kid id", nil)
		return
	}
	logs, err := h.ledgerService.GetKidHistory(ActorFromContext(r), kidID)
	if err != nil {
		respondWithDomainError(w, err)
		return
	}
	views := make([]pointLogView, 0, len(logs))
	for i := range logs {
		views = append(views, newPointLogView(&logs[i]))
	}
	respondWithJSON(w, http.StatusOK, views)
}

// AdjustPoints handles PUT /api/kids/{id}/points
func (h *KidHandler) AdjustPoints(w http.ResponseWriter, r *http.Request) {
	kidID, ok := parseID(r, "id")
	if !ok {
		respondWithError(w, http.StatusBadRequest, "invalid kid id", nil)
		return
	}
	var req struct {
		Points int    `json:"points"`
		Reason string `json:"reason"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}

	kid, _, err := h.ledgerService.AdjustKidPoints(ActorFromContext(r), kidID, req.Points, req.Reason)
	if err != nil {
		respondWithDomainError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, newKidView(kid, h.ledgerService.GemRatio()))
}
