package handlers

import (
	"encoding/json"
	"net/http"
	"net/mail"

	"github.com/aroundu/app/internal/identity"
	"github.com/aroundu/app/internal/models"
)

// AuthHandler exposes register/login for the local dev identity
// provider. Production uses the hosted provider directly from clients,
// so these routes are only mounted when dev auth is enabled.
type AuthHandler struct {
	provider *identity.LocalProvider
}

func NewAuthHandler(provider *identity.LocalProvider) *AuthHandler {
	return &AuthHandler{provider: provider}
}

type credentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (r *credentialsRequest) Validate() map[string]string {
	errors := make(map[string]string)

	if r.Email == "" {
		errors["email"] = "Email is required"
	} else if _, err := mail.ParseAddress(r.Email); err != nil {
		errors["email"] = "Invalid email address"
	}
	if r.Password == "" {
		errors["password"] = "Password is required"
	} else if len(r.Password) < 6 {
		errors["password"] = "Password must be at least 6 characters"
	}

	return errors
}

type sessionResponse struct {
	UID     string `json:"uid"`
	Email   string `json:"email"`
	IDToken string `json:"idToken"`
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, models.NewErrorResponse("Invalid request body"))
		return
	}

	if errors := req.Validate(); len(errors) > 0 {
		writeJSON(w, http.StatusBadRequest, models.NewValidationErrorResponse(errors))
		return
	}

	if err := h.provider.Register(req.Email, req.Password); err != nil {
		if err == identity.ErrEmailExists {
			writeJSON(w, http.StatusConflict, models.NewErrorResponse("Email already registered"))
			return
		}
		writeJSON(w, http.StatusInternalServerError, models.NewErrorResponse("Failed to create account"))
		return
	}

	sess, err := h.provider.SignInWithPassword(r.Context(), req.Email, req.Password)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, models.NewErrorResponse("Failed to establish session"))
		return
	}

	writeJSON(w, http.StatusCreated, models.NewSuccessResponse(sessionResponse{
		UID:     sess.UID,
		Email:   sess.Email,
		IDToken: sess.IDToken,
	}))
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, models.NewErrorResponse("Invalid request body"))
		return
	}

	if errors := req.Validate(); len(errors) > 0 {
		writeJSON(w, http.StatusBadRequest, models.NewValidationErrorResponse(errors))
		return
	}

	sess, err := h.provider.SignInWithPassword(r.Context(), req.Email, req.Password)
	if err != nil {
		writeJSON(w, http.StatusUnauthorized, models.NewErrorResponse("Invalid email or password"))
		return
	}

	writeJSON(w, http.StatusOK, models.NewSuccessResponse(sessionResponse{
		UID:     sess.UID,
		Email:   sess.Email,
		IDToken: sess.IDToken,
	}))
}
