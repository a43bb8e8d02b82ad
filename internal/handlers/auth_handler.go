package handlers

import (
	"net/http"
	"strconv"

	"chorequest/internal/service"
)

// AuthHandler handles guardian sign-up and sign-in and the kid session
// endpoints.
type AuthHandler struct {
	authService *service.AuthService
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(authService *service.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

func parseID(r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue(name), 10, 64)
	return id, err == nil && id > 0
}

// Register handles POST /api/auth/register
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
		Name     string `json:"name"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}

	result, err := h.authService.Register(req.Email, req.Password, req.Name)
	if err != nil {
		respondWithDomainError(w, err)
		return
	}
	respondWithJSON(w, http.StatusCreated, authView{
		User:      newUserView(result.User),
		Token:     result.Token,
		ExpiresAt: result.ExpiresAt,
	})
}

// Login handles POST /api/auth/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}

	result, err := h.authService.Login(req.Email, req.Password)
	if err != nil {
		// A wrong password and an unknown email look the same to the caller.
		respondWithError(w, http.StatusUnauthorized, "invalid email or password", nil)
		return
	}
	respondWithJSON(w, http.StatusOK, authView{
		User:      newUserView(result.User),
		Token:     result.Token,
		ExpiresAt: result.ExpiresAt,
	})
}

// KidLogin handles POST /api/auth/kid, exchanging a kid access token for
// the kid's identity. The token itself stays the credential; there is no
// separate kid session to manage.
func (h *AuthHandler) KidLogin(w http.ResponseWriter, r *http.Request) {
	var req struct {
		AccessToken string `json:"accessToken"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}

	kid, err := h.authService.AuthenticateKid(req.AccessToken)
	if err != nil {
		respondWithError(w, http.StatusUnauthorized, "invalid access token", nil)
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"kidId": kid.ID,
		"name":  kid.Name,
	})
}

// VerifyKidPIN handles POST /api/kids/{id}/verify-pin
func (h *AuthHandler) VerifyKidPIN(w http.ResponseWriter, r *http.Request) {
	kidID, ok := parseID(r, "id")
	if !ok {
		respondWithError(w, http.StatusBadRequest, "invalid kid id", nil)
		return
	}
	var req struct {
		PIN string `json:"pin"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}

	if err := h.authService.VerifyKidPIN(kidID, req.PIN); err != nil {
		respondWithDomainError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]bool{"verified": true})
}
