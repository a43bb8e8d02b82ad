package handlers

import (
	"net/http"
	"time"

	"chorequest/internal/security"
)

const oauthStateCookie = "oauth_state"

// StartOAuth handles GET /api/auth/google/start. The state round-trips
// through a short-lived cookie to bind the callback to this browser.
func (h *AuthHandler) StartOAuth(w http.ResponseWriter, r *http.Request) {
	if !h.authService.OAuthEnabled() {
		respondWithError(w, http.StatusNotFound, "google sign-in is not configured", nil)
		return
	}

	state, err := security.GenerateSecureToken(16)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "internal server error", err)
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     oauthStateCookie,
		Value:    state,
		Path:     "/",
		Expires:  time.Now().Add(10 * time.Minute),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	http.Redirect(w, r, h.authService.OAuthURL(state), http.StatusSeeOther)
}

// OAuthCallback handles GET /api/auth/google/callback
func (h *AuthHandler) OAuthCallback(w http.ResponseWriter, r *http.Request) {
	if !h.authService.OAuthEnabled() {
		respondWithError(w, http.StatusNotFound, "google sign-in is not configured", nil)
		return
	}

	cookie, err := r.Cookie(oauthStateCookie)
	if err != nil || cookie.Value == "" || cookie.Value != r.URL.Query().Get("state") {
		respondWithError(w, http.StatusBadRequest, "invalid oauth state", nil)
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     oauthStateCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
	})

	code := r.URL.Query().Get("code")
	if code == "" {
		respondWithError(w, http.StatusBadRequest, "missing authorization code", nil)
		return
	}

	result, err := h.authService.HandleOAuthCallback(r.Context(), code)
	if err != nil {
		respondWithError(w, http.StatusBadGateway, "google sign-in failed", err)
		return
	}
	respondWithJSON(w, http.StatusOK, authView{
		User:      newUserView(result.User),
		Token:     result.Token,
		ExpiresAt: result.ExpiresAt,
	})
}
