package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/industryverse/backend/internal/apperr"
	"github.com/industryverse/backend/internal/store"
)

// Domain handlers

func (h *APIHandler) ListDomainsHandler(w http.ResponseWriter, r *http.Request) {
	domains, err := h.store.ListDomains()
	if err != nil {
		h.writeError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"success": true, "domains": domains})
}

func (h *APIHandler) GetDomainHandler(w http.ResponseWriter, r *http.Request) {
	domain, roles, err := h.store.GetDomainBySlug(chi.URLParam(r, "slug"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	if domain == nil {
		h.writeError(w, apperr.NotFound("Domain not found"))
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"domain":  domain,
		"roles":   roles,
	})
}

func (h *APIHandler) CreateDomainHandler(w http.ResponseWriter, r *http.Request) {
	var domain store.Domain
	if err := json.NewDecoder(r.Body).Decode(&domain); err != nil {
		h.writeError(w, apperr.BadRequest("Invalid request body"))
		return
	}
	if domain.Name == "" || domain.Slug == "" {
		h.writeError(w, apperr.BadRequest("Name and slug are required"))
		return
	}
	if err := h.store.CreateDomain(&domain); err != nil {
		h.writeError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, map[string]interface{}{"success": true, "domain": domain})
}

// Industry role handlers

func (h *APIHandler) ListRolesHandler(w http.ResponseWriter, r *http.Request) {
	roles, err := h.store.ListRoles(r.URL.Query().Get("domain"), r.URL.Query().Get("search"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"success": true, "roles": roles})
}

func (h *APIHandler) GetRoleHandler(w http.ResponseWriter, r *http.Request) {
	role, modules, projects, err := h.store.GetRoleBySlug(chi.URLParam(r, "slug"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	if role == nil {
		h.writeError(w, apperr.NotFound("Role not found"))
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"success":  true,
		"role":     role,
		"modules":  modules,
		"projects": projects,
	})
}

func (h *APIHandler) CreateRoleHandler(w http.ResponseWriter, r *http.Request) {
	var role store.IndustryRole
	if err := json.NewDecoder(r.Body).Decode(&role); err != nil {
		h.writeError(w, apperr.BadRequest("Invalid request body"))
		return
	}
	if role.DomainID == "" || role.Title == "" || role.Slug == "" {
		h.writeError(w, apperr.BadRequest("Domain, title, and slug are required"))
		return
	}
	if err := h.store.CreateRole(&role); err != nil {
		h.writeError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, map[string]interface{}{"success": true, "role": role})
}

func (h *APIHandler) UpdateRoleHandler(w http.ResponseWriter, r *http.Request) {
	var role store.IndustryRole
	if err := json.NewDecoder(r.Body).Decode(&role); err != nil {
		h.writeError(w, apperr.BadRequest("Invalid request body"))
		return
	}
	role.ID = chi.URLParam(r, "roleID")

	updated, err := h.store.UpdateRole(&role)
	if err != nil {
		h.writeError(w, err)
		return
	}
	if updated == nil {
		h.writeError(w, apperr.NotFound("Role not found"))
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"success": true, "role": updated})
}

func (h *APIHandler) DeleteRoleHandler(w http.ResponseWriter, r *http.Request) {
	if err := h.store.DeleteRole(chi.URLParam(r, "roleID")); err != nil {
		h.writeError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"success": true, "message": "Role deleted"})
}

// Module handlers

func (h *APIHandler) ListModulesHandler(w http.ResponseWriter, r *http.Request) {
	modules, err := h.store.ListModules()
	if err != nil {
		h.writeError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"success": true, "modules": modules})
}

func (h *APIHandler) CreateModuleHandler(w http.ResponseWriter, r *http.Request) {
	var module store.Module
	if err := json.NewDecoder(r.Body).Decode(&module); err != nil {
		h.writeError(w, apperr.BadRequest("Invalid request body"))
		return
	}
	if module.RoleID == "" || module.Title == "" {
		h.writeError(w, apperr.BadRequest("Role and title are required"))
		return
	}
	if err := h.store.CreateModule(&module); err != nil {
		h.writeError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, map[string]interface{}{"success": true, "module": module})
}

func (h *APIHandler) CompleteModuleHandler(w http.ResponseWriter, r *http.Request) {
	identity, _ := IdentityFromContext(r.Context())

	progress, err := h.store.CompleteModule(identity.UserID, chi.URLParam(r, "moduleID"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"success": true, "progress": progress})
}

// Project handlers

func (h *APIHandler) ListProjectsHandler(w http.ResponseWriter, r *http.Request) {
	projects, err := h.store.ListProjects()
	if err != nil {
		h.writeError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"success": true, "projects": projects})
}

func (h *APIHandler) GetProjectHandler(w http.ResponseWriter, r *http.Request) {
	project, err := h.store.GetProjectByID(chi.URLParam(r, "projectID"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	if project == nil {
		h.writeError(w, apperr.NotFound("Project not found"))
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"success": true, "project": project})
}

type SubmitProjectRequest struct {
	Notes *string `json:"notes"`
}

func (h *APIHandler) SubmitProjectHandler(w http.ResponseWriter, r *http.Request) {
	identity, _ := IdentityFromContext(r.Context())
	projectID := chi.URLParam(r, "projectID")

	var req SubmitProjectRequest
	if r.Body != http.NoBody {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			h.writeError(w, apperr.BadRequest("Invalid request body"))
			return
		}
	}

	project, err := h.store.GetProjectByID(projectID)
	if err != nil {
		h.writeError(w, err)
		return
	}
	if project == nil {
		h.writeError(w, apperr.NotFound("Project not found"))
		return
	}

	now := time.Now()
	submission, err := h.store.UpsertSubmission(projectID, identity.UserID, store.SubmissionSubmitted, 100, req.Notes, &now)
	if err != nil {
		h.writeError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"success": true, "submission": submission})
}

type ProjectProgressRequest struct {
	Progress int `json:"progress"`
}

func (h *APIHandler) ProjectProgressHandler(w http.ResponseWriter, r *http.Request) {
	identity, _ := IdentityFromContext(r.Context())
	projectID := chi.URLParam(r, "projectID")

	var req ProjectProgressRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, apperr.BadRequest("Invalid request body"))
		return
	}
	if req.Progress < 0 || req.Progress > 100 {
		h.writeError(w, apperr.BadRequest("Progress must be between 0 and 100"))
		return
	}

	project, err := h.store.GetProjectByID(projectID)
	if err != nil {
		h.writeError(w, err)
		return
	}
	if project == nil {
		h.writeError(w, apperr.NotFound("Project not found"))
		return
	}

	status := store.SubmissionInProgress
	var submittedAt *time.Time
	if req.Progress >= 100 {
		status = store.SubmissionSubmitted
		now := time.Now()
		submittedAt = &now
	}

	submission, err := h.store.UpsertSubmission(projectID, identity.UserID, status, req.Progress, nil, submittedAt)
	if err != nil {
		h.writeError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"success": true, "submission": submission})
}
