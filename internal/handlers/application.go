package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/placement-tracker/apiserver/internal/services"
	"github.com/placement-tracker/apiserver/internal/store"
	"github.com/placement-tracker/apiserver/types"
)

// appliedAt accepts either a full timestamp or a bare date.
var appliedAtLayouts = []string{time.RFC3339, "2006-01-02"}

// ApplicationHandler provides HTTP handlers for job applications.
type ApplicationHandler struct {
	appService *services.ApplicationService
}

// NewApplicationHandler constructs a handler with the provided service.
func NewApplicationHandler(appService *services.ApplicationService) *ApplicationHandler {
	return &ApplicationHandler{appService: appService}
}

// ApplicationRouter registers application routes on the given router.
// All routes are scoped to the authenticated caller.
func ApplicationRouter(r chi.Router, appService *services.ApplicationService, authMiddleware func(http.Handler) http.Handler) {
	handler := NewApplicationHandler(appService)

	r.Use(authMiddleware)
	r.Get("/", handler.ListApplications)
	r.Post("/", handler.CreateApplication)
	r.Route("/{applicationID}", func(r chi.Router) {
		r.Put("/", handler.UpdateApplication)
		r.Delete("/", handler.DeleteApplication)
		r.Post("/mark-applied", handler.MarkApplied)
		r.Post("/mark-remaining", handler.MarkRemaining)
	})
}

// AdminRouter registers the admin listing routes on the given router.
func AdminRouter(
	r chi.Router,
	userService *services.UserService,
	appService *services.ApplicationService,
	authMiddleware func(http.Handler) http.Handler,
) {
	handler := NewApplicationHandler(appService)

	r.Use(authMiddleware, RequireAdmin)
	r.Get("/users", func(w http.ResponseWriter, req *http.Request) {
		users, err := userService.List(req.Context())
		if err != nil {
			writeError(w, http.StatusInternalServerError, "failed to list users")
			return
		}
		writeJSON(w, http.StatusOK, users)
	})
	r.Get("/applications", handler.AdminListApplications)
}

func (h *ApplicationHandler) ListApplications(w http.ResponseWriter, r *http.Request) {
	identity, err := identityFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "No token")
		return
	}

	status := strings.TrimSpace(r.URL.Query().Get("status"))
	items, err := h.appService.ListForUser(r.Context(), identity.UserID, status)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list applications")
		return
	}
	writeJSON(w, http.StatusOK, items)
}

// AdminListApplications lists applications across all users, optionally
// filtered by userId and status.
func (h *ApplicationHandler) AdminListApplications(w http.ResponseWriter, r *http.Request) {
	filter := types.ApplicationFilter{
		Status: strings.TrimSpace(r.URL.Query().Get("status")),
	}
	if raw := strings.TrimSpace(r.URL.Query().Get("userId")); raw != "" {
		userID, err := strconv.Atoi(raw)
		if err != nil || userID < 1 {
			writeError(w, http.StatusBadRequest, "Invalid userId")
			return
		}
		filter.UserID = userID
	}

	items, err := h.appService.ListAll(r.Context(), filter)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list applications")
		return
	}
	writeJSON(w, http.StatusOK, items)
}

type CreateApplicationRequest struct {
	CompanyName string `json:"companyName"`
	WebsiteUrl  string `json:"websiteUrl"`
	AppliedAt   string `json:"appliedAt"`
	ImageUrl    string `json:"imageUrl"`
	Status      string `json:"status"`
	Notes       string `json:"notes"`
}

func (h *ApplicationHandler) CreateApplication(w http.ResponseWriter, r *http.Request) {
	identity, err := identityFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "No token")
		return
	}

	var req CreateApplicationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Missing fields")
		return
	}

	req.CompanyName = strings.TrimSpace(req.CompanyName)
	req.WebsiteUrl = strings.TrimSpace(req.WebsiteUrl)
	req.AppliedAt = strings.TrimSpace(req.AppliedAt)
	if req.CompanyName == "" || req.WebsiteUrl == "" || req.AppliedAt == "" {
		writeError(w, http.StatusBadRequest, "Missing fields")
		return
	}

	appliedAt, err := parseAppliedAt(req.AppliedAt)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid appliedAt")
		return
	}

	if req.Status != "" && !types.ValidStatus(req.Status) {
		writeError(w, http.StatusBadRequest, "Invalid status")
		return
	}

	created, err := h.appService.Create(r.Context(), types.Application{
		UserID:      identity.UserID,
		CompanyName: req.CompanyName,
		WebsiteUrl:  req.WebsiteUrl,
		AppliedAt:   appliedAt,
		ImageUrl:    strings.TrimSpace(req.ImageUrl),
		Status:      req.Status,
		Notes:       req.Notes,
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Create failed")
		return
	}

	writeJSON(w, http.StatusOK, created)
}

type UpdateApplicationRequest struct {
	CompanyName *string `json:"companyName"`
	WebsiteUrl  *string `json:"websiteUrl"`
	AppliedAt   *string `json:"appliedAt"`
	ImageUrl    *string `json:"imageUrl"`
	Status      *string `json:"status"`
	Notes       *string `json:"notes"`
}

func (h *ApplicationHandler) UpdateApplication(w http.ResponseWriter, r *http.Request) {
	identity, err := identityFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "No token")
		return
	}

	id, err := parseApplicationID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	var req UpdateApplicationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request")
		return
	}

	patch := types.ApplicationPatch{
		CompanyName: req.CompanyName,
		WebsiteUrl:  req.WebsiteUrl,
		ImageUrl:    req.ImageUrl,
		Status:      req.Status,
		Notes:       req.Notes,
	}
	if req.AppliedAt != nil {
		appliedAt, err := parseAppliedAt(strings.TrimSpace(*req.AppliedAt))
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid appliedAt")
			return
		}
		patch.AppliedAt = &appliedAt
	}
	if req.Status != nil && !types.ValidStatus(*req.Status) {
		writeError(w, http.StatusBadRequest, "Invalid status")
		return
	}

	updated, err := h.appService.Patch(r.Context(), identity.UserID, id, patch)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "Update failed")
		return
	}

	writeJSON(w, http.StatusOK, updated)
}

func (h *ApplicationHandler) DeleteApplication(w http.ResponseWriter, r *http.Request) {
	identity, err := identityFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "No token")
		return
	}

	id, err := parseApplicationID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.appService.Delete(r.Context(), identity.UserID, id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "Delete failed")
		return
	}

	writeJSON(w, http.StatusOK, OKResponse{OK: true})
}

func (h *ApplicationHandler) MarkApplied(w http.ResponseWriter, r *http.Request) {
	h.markStatus(w, r, types.StatusApplied)
}

func (h *ApplicationHandler) MarkRemaining(w http.ResponseWriter, r *http.Request) {
	h.markStatus(w, r, types.StatusRemaining)
}

func (h *ApplicationHandler) markStatus(w http.ResponseWriter, r *http.Request, status string) {
	identity, err := identityFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "No token")
		return
	}

	id, err := parseApplicationID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	var updated types.Application
	if status == types.StatusApplied {
		updated, err = h.appService.MarkApplied(r.Context(), identity.UserID, id)
	} else {
		updated, err = h.appService.MarkRemaining(r.Context(), identity.UserID, id)
	}
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "Update failed")
		return
	}

	writeJSON(w, http.StatusOK, updated)
}

func parseApplicationID(r *http.Request) (int, error) {
	raw := chi.URLParam(r, "applicationID")
	id, err := strconv.Atoi(raw)
	if err != nil || id < 1 {
		return 0, errors.New("invalid application id")
	}
	return id, nil
}

func parseAppliedAt(value string) (time.Time, error) {
	var lastErr error
	for _, layout := range appliedAtLayouts {
		t, err := time.Parse(layout, value)
		if err == nil {
			return t, nil
		}
		lastErr = err
	}
	return time.Time{}, lastErr
}
