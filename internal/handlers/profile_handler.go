package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"
	"time"

	fbauth "firebase.google.com/go/v4/auth"
	"github.com/go-chi/chi/v5"

	"github.com/aroundu/app/internal/middleware"
	"github.com/aroundu/app/internal/models"
	"github.com/aroundu/app/internal/services"
)

// UserStore is the persistence surface the profile endpoints need.
type UserStore interface {
	GetOrCreate(ctx context.Context, userID, email string) (*models.UserProfile, error)
	GetByUserID(ctx context.Context, userID string) (*models.UserProfile, error)
	Patch(ctx context.Context, userID string, req *models.ProfilePayload) (*models.UserProfile, error)
	DeleteUser(ctx context.Context, userID string) (string, error)
}

// PublicProfile is the subset safe to show other authenticated users.
type PublicProfile struct {
	UserID    string `json:"user_id"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	PhotoURL  string `json:"photoURL"`
}

type ProfileHandler struct {
	users      UserStore
	authClient *fbauth.Client
}

func NewProfileHandler(users UserStore, authClient *fbauth.Client) *ProfileHandler {
	return &ProfileHandler{users: users, authClient: authClient}
}

// GetProfile returns the signed-in user's profile, creating a blank one
// on first sign-in.
func (h *ProfileHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	if userID == "" {
		writeJSON(w, http.StatusUnauthorized, models.NewErrorResponse("Unauthorized"))
		return
	}
	email := middleware.GetUserEmail(r.Context())

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	prof, err := h.users.GetOrCreate(ctx, userID, email)
	if err != nil {
		log.Printf("[GetProfile] user=%s error=%v", userID, err)
		writeJSON(w, http.StatusInternalServerError, models.NewErrorResponse("Failed to load profile"))
		return
	}
	writeJSON(w, http.StatusOK, models.NewSuccessResponse(prof))
}

// PatchProfile applies a partial update. Absent fields stay untouched;
// repeating the same payload is safe.
func (h *ProfileHandler) PatchProfile(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	if userID == "" {
		writeJSON(w, http.StatusUnauthorized, models.NewErrorResponse("Unauthorized"))
		return
	}

	var req models.ProfilePayload
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, models.NewErrorResponse("Invalid request body"))
		return
	}

	if req.Location != nil && !req.Location.Valid() {
		writeJSON(w, http.StatusBadRequest, models.NewErrorResponse("Location is out of range"))
		return
	}
	if req.FirstName != nil && *req.FirstName == "" {
		writeJSON(w, http.StatusBadRequest, models.NewErrorResponse("First name cannot be empty"))
		return
	}
	if req.LastName != nil && *req.LastName == "" {
		writeJSON(w, http.StatusBadRequest, models.NewErrorResponse("Last name cannot be empty"))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	prof, err := h.users.Patch(ctx, userID, &req)
	if err != nil {
		if errors.Is(err, services.ErrLocationOutOfRange) {
			writeJSON(w, http.StatusBadRequest, models.NewErrorResponse("Location is out of range"))
			return
		}
		log.Printf("[PatchProfile] user=%s error=%v", userID, err)
		writeJSON(w, http.StatusInternalServerError, models.NewErrorResponse("Failed to update profile"))
		return
	}
	writeJSON(w, http.StatusOK, models.NewSuccessResponse(prof))
}

// GetPublicProfileByUserID returns a public-safe profile for the
// requested userId. Falls back to the Firebase Auth user record when no
// profile document exists yet.
func (h *ProfileHandler) GetPublicProfileByUserID(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	if userID == "" {
		writeJSON(w, http.StatusUnauthorized, models.NewErrorResponse("Unauthorized"))
		return
	}

	targetID := chi.URLParam(r, "userId")
	if targetID == "" {
		writeJSON(w, http.StatusBadRequest, models.NewErrorResponse("Missing userId"))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	prof, err := h.users.GetByUserID(ctx, targetID)
	if err != nil {
		if h.authClient == nil {
			writeJSON(w, http.StatusNotFound, models.NewErrorResponse("Profile not found"))
			return
		}
		u, err2 := h.authClient.GetUser(ctx, targetID)
		if err2 != nil {
			writeJSON(w, http.StatusNotFound, models.NewErrorResponse("Profile not found"))
			return
		}
		first, last := splitDisplayName(u.DisplayName)
		writeJSON(w, http.StatusOK, models.NewSuccessResponse(PublicProfile{
			UserID:    targetID,
			FirstName: first,
			LastName:  last,
			PhotoURL:  u.PhotoURL,
		}))
		return
	}

	writeJSON(w, http.StatusOK, models.NewSuccessResponse(PublicProfile{
		UserID:    prof.ID,
		FirstName: prof.FirstName,
		LastName:  prof.LastName,
		PhotoURL:  prof.PhotoURL,
	}))
}

func splitDisplayName(name string) (string, string) {
	first, last, found := strings.Cut(name, " ")
	if !found {
		return name, ""
	}
	return first, last
}

// DeleteAccount removes the user's profile data and reports the stored
// photo URL for client-side storage cleanup (best effort).
func (h *ProfileHandler) DeleteAccount(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	if userID == "" {
		writeJSON(w, http.StatusUnauthorized, models.NewErrorResponse("Unauthorized"))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
	defer cancel()

	photoURL, err := h.users.DeleteUser(ctx, userID)
	if err != nil {
		log.Printf("[DeleteAccount] user=%s error=%v", userID, err)
		writeJSON(w, http.StatusInternalServerError, models.NewErrorResponse("Failed to delete account"))
		return
	}

	writeJSON(w, http.StatusOK, models.NewSuccessResponse(map[string]string{
		"photo_url": photoURL,
	}))
}
