package handlers

import (
	"net/http"

	log "github.com/sirupsen/logrus"

	"github.com/dimeda/stretcher-service/internal/issues"
	"github.com/dimeda/stretcher-service/internal/models"
)

// IssueHandler exposes the issue lifecycle over HTTP.
type IssueHandler struct {
	svc *issues.Service
	log *log.Entry
}

// NewIssueHandler creates an issue handler.
func NewIssueHandler(svc *issues.Service, logger *log.Entry) *IssueHandler {
	return &IssueHandler{svc: svc, log: logger}
}

// Create handles POST /api/issues.
func (h *IssueHandler) Create(w http.ResponseWriter, r *http.Request) {
	var in models.IssueCreate
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, r, h.log, err)
		return
	}

	issue, err := h.svc.Create(r.Context(), in)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, issue)
}

// CreateCustomer handles POST /api/issues/customer.
func (h *IssueHandler) CreateCustomer(w http.ResponseWriter, r *http.Request) {
	var in models.CustomerIssueCreate
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, r, h.log, err)
		return
	}

	issue, err := h.svc.CreateCustomer(r.Context(), in)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, issue)
}

// List handles GET /api/issues.
func (h *IssueHandler) List(w http.ResponseWriter, r *http.Request) {
	result, err := h.svc.List(r.Context(), r.URL.Query().Get("product_id"), r.URL.Query().Get("status"))
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	if result == nil {
		result = []models.Issue{}
	}
	writeJSON(w, http.StatusOK, result)
}

// Get handles GET /api/issues/{id}.
func (h *IssueHandler) Get(w http.ResponseWriter, r *http.Request) {
	issue, err := h.svc.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, issue)
}

// Update handles PUT /api/issues/{id}: the lifecycle state machine.
func (h *IssueHandler) Update(w http.ResponseWriter, r *http.Request) {
	var patch models.IssuePatch
	if err := decodeJSON(r, &patch); err != nil {
		writeError(w, r, h.log, err)
		return
	}

	issue, err := h.svc.ApplyUpdate(r.Context(), r.PathValue("id"), patch)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, issue)
}

// Track handles GET /api/issues/{id}/track.
func (h *IssueHandler) Track(w http.ResponseWriter, r *http.Request) {
	track, err := h.svc.GetTrack(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, track)
}

// Delete handles DELETE /api/issues/{id}.
func (h *IssueHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Delete(r.Context(), r.PathValue("id")); err != nil {
		writeError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Issue and related entries deleted successfully"})
}
