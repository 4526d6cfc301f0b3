package api

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/industryverse/backend/internal/apperr"
	"github.com/industryverse/backend/internal/auth"
	"github.com/industryverse/backend/internal/config"
	"github.com/industryverse/backend/internal/core"
	"github.com/industryverse/backend/internal/store"
)

type APIHandler struct {
	cfg       *config.Config
	store     *store.SQLiteStore
	assistant *core.AssistantService
}

func NewAPIHandler(cfg *config.Config, dbStore *store.SQLiteStore, assistant *core.AssistantService) *APIHandler {
	return &APIHandler{
		cfg:       cfg,
		store:     dbStore,
		assistant: assistant,
	}
}

type RegisterRequest struct {
	Email    string `json:"email"`
	Name     string `json:"name"`
	Password string `json:"password"`
}

func (h *APIHandler) RegisterHandler(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, apperr.BadRequest("Invalid request body"))
		return
	}
	if req.Email == "" || req.Name == "" || req.Password == "" {
		h.writeError(w, apperr.BadRequest("All fields are required"))
		return
	}

	existing, err := h.store.GetUserByEmail(req.Email)
	if err != nil {
		h.writeError(w, err)
		return
	}
	if existing != nil {
		h.writeError(w, apperr.Conflict("Email already registered"))
		return
	}

	passwordHash, err := auth.HashPassword(req.Password)
	if err != nil {
		h.writeError(w, err)
		return
	}

	user, err := h.store.CreateUser(req.Email, req.Name, passwordHash)
	if err != nil {
		h.writeError(w, err)
		return
	}

	if err := h.store.LogActivity(user.ID, "USER_REGISTERED", "User", user.ID); err != nil {
		log.Printf("Failed to log registration activity for %s: %v", user.ID, err)
	}

	token, err := auth.GenerateJWT(h.cfg.JWTSecret, user.ID, user.Role)
	if err != nil {
		h.writeError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, map[string]interface{}{
		"success": true,
		"token":   token,
		"user":    user,
	})
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *APIHandler) LoginHandler(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, apperr.BadRequest("Invalid request body"))
		return
	}

	user, err := h.store.GetUserByEmail(req.Email)
	if err != nil {
		h.writeError(w, err)
		return
	}
	if user == nil || !auth.CheckPasswordHash(req.Password, user.PasswordHash) {
		h.writeError(w, apperr.Unauthorized("Invalid credentials"))
		return
	}

	if err := h.store.LogActivity(user.ID, "USER_LOGIN", "User", user.ID); err != nil {
		log.Printf("Failed to log login activity for %s: %v", user.ID, err)
	}

	token, err := auth.GenerateJWT(h.cfg.JWTSecret, user.ID, user.Role)
	if err != nil {
		h.writeError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"token":   token,
		"user":    user,
	})
}

func (h *APIHandler) MeHandler(w http.ResponseWriter, r *http.Request) {
	identity, _ := IdentityFromContext(r.Context())

	user, err := h.store.GetUserByID(identity.UserID)
	if err != nil {
		h.writeError(w, err)
		return
	}
	if user == nil {
		h.writeError(w, apperr.NotFound("User not found"))
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"success": true, "user": user})
}

type UpdateProfileRequest struct {
	Name      *string `json:"name"`
	Bio       *string `json:"bio"`
	AvatarURL *string `json:"avatar_url"`
}

func (h *APIHandler) UpdateProfileHandler(w http.ResponseWriter, r *http.Request) {
	identity, _ := IdentityFromContext(r.Context())

	var req UpdateProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, apperr.BadRequest("Invalid request body"))
		return
	}

	user, err := h.store.UpdateUserProfile(identity.UserID, req.Name, req.Bio, req.AvatarURL)
	if err != nil {
		h.writeError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"success": true, "user": user})
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

func (h *APIHandler) ChangePasswordHandler(w http.ResponseWriter, r *http.Request) {
	identity, _ := IdentityFromContext(r.Context())

	var req ChangePasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, apperr.BadRequest("Invalid request body"))
		return
	}
	if req.NewPassword == "" {
		h.writeError(w, apperr.BadRequest("New password is required"))
		return
	}

	user, err := h.store.GetUserByID(identity.UserID)
	if err != nil {
		h.writeError(w, err)
		return
	}
	if user == nil {
		h.writeError(w, apperr.NotFound("User not found"))
		return
	}
	if !auth.CheckPasswordHash(req.CurrentPassword, user.PasswordHash) {
		h.writeError(w, apperr.Unauthorized("Current password is incorrect"))
		return
	}

	passwordHash, err := auth.HashPassword(req.NewPassword)
	if err != nil {
		h.writeError(w, err)
		return
	}
	if err := h.store.UpdateUserPassword(user.ID, passwordHash); err != nil {
		h.writeError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{"success": true, "message": "Password updated successfully"})
}

func (h *APIHandler) DashboardHandler(w http.ResponseWriter, r *http.Request) {
	identity, _ := IdentityFromContext(r.Context())

	user, err := h.store.GetUserByID(identity.UserID)
	if err != nil {
		h.writeError(w, err)
		return
	}
	if user == nil {
		h.writeError(w, apperr.NotFound("User not found"))
		return
	}

	submissions, err := h.store.ListSubmissionsForUser(identity.UserID, 5)
	if err != nil {
		h.writeError(w, err)
		return
	}
	activities, err := h.store.RecentActivities(identity.UserID, 10)
	if err != nil {
		h.writeError(w, err)
		return
	}
	completedModules, err := h.store.CountCompletedModules(identity.UserID)
	if err != nil {
		h.writeError(w, err)
		return
	}
	completedProjects, err := h.store.CountSubmissionsForUser(identity.UserID, store.SubmissionCompleted)
	if err != nil {
		h.writeError(w, err)
		return
	}
	ongoingProjects, err := h.store.CountSubmissionsForUser(identity.UserID, store.SubmissionInProgress)
	if err != nil {
		h.writeError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"user":    user,
		"stats": map[string]int{
			"completed_modules":  completedModules,
			"completed_projects": completedProjects,
			"ongoing_projects":   ongoingProjects,
		},
		"submissions": submissions,
		"activities":  activities,
	})
}
