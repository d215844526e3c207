package handler

import (
	"encoding/json"
	"net/http"

	"github.com/whosthatpokemon/internal/auth"
	"github.com/whosthatpokemon/internal/domain"
)

// Register creates an email account.
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req auth.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, domain.ErrInvalidRequest)
		return
	}

	result, err := h.auth.Register(r.Context(), req)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}

	h.writeMessage(w, http.StatusCreated, result, "Welcome, trainer!")
}

// Login authenticates an email account.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, domain.ErrInvalidRequest)
		return
	}

	result, err := h.auth.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}

	h.writeSuccess(w, result)
}

// GuestLogin creates a guest account.
func (h *Handler) GuestLogin(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Username string `json:"username"`
	}
	// An empty body is fine; the service invents a name.
	_ = json.NewDecoder(r.Body).Decode(&req)

	result, err := h.auth.GuestLogin(r.Context(), req.Username)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}

	h.writeMessage(w, http.StatusCreated, result, "Playing as guest")
}

// GoogleAuthURL returns the consent page URL the client should redirect to.
func (h *Handler) GoogleAuthURL(w http.ResponseWriter, r *http.Request) {
	h.writeSuccess(w, map[string]string{"url": h.auth.GoogleAuthURL()})
}

// GoogleLogin exchanges an OAuth authorization code for a session.
func (h *Handler) GoogleLogin(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Code string `json:"code"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Code == "" {
		h.writeError(w, http.StatusBadRequest, domain.ErrInvalidRequest)
		return
	}

	result, err := h.auth.LoginWithGoogle(r.Context(), req.Code)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}

	h.writeSuccess(w, result)
}

// RefreshToken exchanges a refresh token for a new pair.
func (h *Handler) RefreshToken(w http.ResponseWriter, r *http.Request) {
	var req struct {
		RefreshToken string `json:"refreshToken"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.RefreshToken == "" {
		h.writeError(w, http.StatusBadRequest, domain.ErrInvalidRequest)
		return
	}

	result, err := h.auth.RefreshToken(r.Context(), req.RefreshToken)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}

	h.writeSuccess(w, result)
}

// Me returns the authenticated user's profile.
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	user, err := h.auth.Me(r.Context(), userID(r))
	if err != nil {
		h.writeDomainError(w, err)
		return
	}
	h.writeSuccess(w, user)
}

// UpdateProfile edits the authenticated user's profile.
func (h *Handler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Username  *string `json:"username"`
		Email     *string `json:"email"`
		AvatarURL *string `json:"avatar"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, domain.ErrInvalidRequest)
		return
	}

	user, err := h.auth.UpdateProfile(r.Context(), userID(r), req.Username, req.Email, req.AvatarURL)
	if err != nil {
		h.writeDomainError(w, err)
		return
	}

	h.writeMessage(w, http.StatusOK, user, "Profile updated")
}

// Logout acknowledges a logout. Tokens are stateless, so the client simply
// discards its pair; nothing is revoked server-side.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	h.writeMessage(w, http.StatusOK, nil, "Logged out")
}
