package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/industryverse/backend/internal/apperr"
	"github.com/industryverse/backend/internal/store"
)

func (h *APIHandler) AnalyticsHandler(w http.ResponseWriter, r *http.Request) {
	totalUsers, err := h.store.CountUsers()
	if err != nil {
		h.writeError(w, err)
		return
	}
	totalProjects, err := h.store.CountProjects()
	if err != nil {
		h.writeError(w, err)
		return
	}
	submissionsByStatus, err := h.store.CountSubmissionsByStatus()
	if err != nil {
		h.writeError(w, err)
		return
	}
	domains, err := h.store.ListDomains()
	if err != nil {
		h.writeError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"analytics": map[string]interface{}{
			"total_users":           totalUsers,
			"total_projects":        totalProjects,
			"submissions_by_status": submissionsByStatus,
			"domains":               domains,
		},
	})
}

func (h *APIHandler) AdminListUsersHandler(w http.ResponseWriter, r *http.Request) {
	users, err := h.store.ListUsers()
	if err != nil {
		h.writeError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"success": true, "users": users})
}

type UpdateUserRoleRequest struct {
	Role string `json:"role"`
}

func (h *APIHandler) UpdateUserRoleHandler(w http.ResponseWriter, r *http.Request) {
	var req UpdateUserRoleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, apperr.BadRequest("Invalid request body"))
		return
	}
	if req.Role != store.RoleStudent && req.Role != store.RoleAdmin {
		h.writeError(w, apperr.BadRequest("Invalid role"))
		return
	}

	user, err := h.store.UpdateUserRole(chi.URLParam(r, "userID"), req.Role)
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

func (h *APIHandler) AdminListSubmissionsHandler(w http.ResponseWriter, r *http.Request) {
	submissions, err := h.store.ListAllSubmissions()
	if err != nil {
		h.writeError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"success": true, "submissions": submissions})
}

type ReviewSubmissionRequest struct {
	Status   string  `json:"status"`
	Feedback *string `json:"feedback"`
}

func (h *APIHandler) ReviewSubmissionHandler(w http.ResponseWriter, r *http.Request) {
	var req ReviewSubmissionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, apperr.BadRequest("Invalid request body"))
		return
	}
	switch req.Status {
	case store.SubmissionCompleted, store.SubmissionRejected, store.SubmissionSubmitted, store.SubmissionInProgress:
	default:
		h.writeError(w, apperr.BadRequest("Invalid status"))
		return
	}

	submission, err := h.store.ReviewSubmission(chi.URLParam(r, "submissionID"), req.Status, req.Feedback)
	if err != nil {
		h.writeError(w, err)
		return
	}
	if submission == nil {
		h.writeError(w, apperr.NotFound("Submission not found"))
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"success": true, "submission": submission})
}
