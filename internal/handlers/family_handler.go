package handlers

import (
	"net/http"

	"chorequest/internal/models"
	"chorequest/internal/service"
)

// FamilyHandler handles family, membership and invitation requests.
type FamilyHandler struct {
	familyService *service.FamilyService
	ledgerService *service.LedgerService
}

// NewFamilyHandler creates a new family handler
func NewFamilyHandler(familyService *service.FamilyService, ledgerService *service.LedgerService) *FamilyHandler {
	return &FamilyHandler{familyService: familyService, ledgerService: ledgerService}
}

// ListFamilies handles GET /api/families
func (h *FamilyHandler) ListFamilies(w http.ResponseWriter, r *http.Request) {
	actor := ActorFromContext(r)
	families, err := h.familyService.GetUserFamilies(actor.UserID)
	if err != nil {
		respondWithDomainError(w, err)
		return
	}
	views := make([]familyView, 0, len(families))
	for i := range families {
		views = append(views, newFamilyView(&families[i]))
	}
	respondWithJSON(w, http.StatusOK, views)
}

// CreateFamily handles POST /api/families
func (h *FamilyHandler) CreateFamily(w http.ResponseWriter, r *http.Request) {
	actor := ActorFromContext(r)
	var req struct {
		Name string `json:"name"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}

	family, err := h.familyService.CreateFamily(actor.UserID, req.Name)
	if err != nil {
		respondWithDomainError(w, err)
		return
	}
	respondWithJSON(w, http.StatusCreated, newFamilyView(family))
}

// GetFamily handles GET /api/families/{id}
func (h *FamilyHandler) GetFamily(w http.ResponseWriter, r *http.Request) {
	familyID, ok := parseID(r, "id")
	if !ok {
		respondWithError(w, http.StatusBadRequest, "invalid family id", nil)
		return
	}

	family, kids, err := h.familyService.GetFamily(ActorFromContext(r), familyID)
	if err != nil {
		respondWithDomainError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, newFamilyDetailView(family, kids, h.ledgerService.GemRatio()))
}

// UpdateFamily handles PUT /api/families/{id}
func (h *FamilyHandler) UpdateFamily(w http.ResponseWriter, r *http.Request) {
	familyID, ok := parseID(r, "id")
	if !ok {
		respondWithError(w, http.StatusBadRequest, "invalid family id", nil)
		return
	}
	var req struct {
		Name string `json:"name"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}

	family, err := h.familyService.UpdateFamily(ActorFromContext(r), familyID, req.Name)
	if err != nil {
		respondWithDomainError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, newFamilyView(family))
}

// DeleteFamily handles DELETE /api/families/{id}
func (h *FamilyHandler) DeleteFamily(w http.ResponseWriter, r *http.Request) {
	familyID, ok := parseID(r, "id")
	if !ok {
		respondWithError(w, http.StatusBadRequest, "invalid family id", nil)
		return
	}
	if err := h.familyService.DeleteFamily(ActorFromContext(r), familyID); err != nil {
		respondWithDomainError(w, err)
		return
	}
	respondWithJSON(w, http.StatusNoContent, nil)
}

// JoinFamily handles POST /api/families/join
func (h *FamilyHandler) JoinFamily(w http.ResponseWriter, r *http.Request) {
	actor := ActorFromContext(r)
	var req struct {
		JoinCode string `json:"joinCode"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}

	family, err := h.familyService.JoinByCode(actor.UserID, req.JoinCode)
	if err != nil {
		respondWithDomainError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, newFamilyView(family))
}

// InviteMember handles POST /api/families/{id}/invitations
func (h *FamilyHandler) InviteMember(w http.ResponseWriter, r *http.Request) {
	familyID, ok := parseID(r, "id")
	if !ok {
		respondWithError(w, http.StatusBadRequest, "invalid family id", nil)
		return
	}
	var req struct {
		Email      string `json:"email"`
		Role       string `json:"role"`
		Permission string `json:"permission"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}

	invitation, err := h.familyService.InviteMember(r.Context(), ActorFromContext(r), familyID, req.Email, models.Role(req.Role), models.Permission(req.Permission))
	if err != nil {
		respondWithDomainError(w, err)
		return
	}
	respondWithJSON(w, http.StatusCreated, newInvitationView(invitation))
}

// GetInvitation handles GET /api/invitations/{code}
func (h *FamilyHandler) GetInvitation(w http.ResponseWriter, r *http.Request) {
	invitation, err := h.familyService.GetInvitation(r.PathValue("code"))
	if err != nil {
		respondWithDomainError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, newInvitationView(invitation))
}

// AcceptInvitation handles POST /api/invitations/{code}/accept
func (h *FamilyHandler) AcceptInvitation(w http.ResponseWriter, r *http.Request) {
	actor := ActorFromContext(r)
	family, err := h.familyService.AcceptInvitation(actor.UserID, r.PathValue("code"))
	if err != nil {
		respondWithDomainError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, newFamilyView(family))
}

// UpdateMember handles PUT /api/families/{id}/members/{userId}
func (h *FamilyHandler) UpdateMember(w http.ResponseWriter, r *http.Request) {
	familyID, ok := parseID(r, "id")
	if !ok {
		respondWithError(w, http.StatusBadRequest, "invalid family id", nil)
		return
	}
	userID, ok := parseID(r, "userId")
	if !ok {
		respondWithError(w, http.StatusBadRequest, "invalid user id", nil)
		return
	}
	var req struct {
		Role       string `json:"role"`
		Permission string `json:"permission"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}

	member, err := h.familyService.UpdateMember(ActorFromContext(r), familyID, userID, models.Role(req.Role), models.Permission(req.Permission))
	if err != nil {
		respondWithDomainError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, memberView{
		UserID:     member.UserID,
		Role:       string(member.Role),
		Permission: string(member.Permission),
		JoinedAt:   member.JoinedAt,
	})
}

// RemoveMember handles DELETE /api/families/{id}/members/{userId}
func (h *FamilyHandler) RemoveMember(w http.ResponseWriter, r *http.Request) {
	familyID, ok := parseID(r, "id")
	if !ok {
		respondWithError(w, http.StatusBadRequest, "invalid family id", nil)
		return
	}
	userID, ok := parseID(r, "userId")
	if !ok {
		respondWithError(w, http.StatusBadRequest, "invalid user id", nil)
		return
	}
	if err := h.familyService.RemoveMember(ActorFromContext(r), familyID, userID); err != nil {
		respondWithDomainError(w, err)
		return
	}
	respondWithJSON(w, http.StatusNoContent, nil)
}
