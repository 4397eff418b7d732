package handlers

import (
	"errors"
	"net/http"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/dimeda/stretcher-service/internal/apperr"
	"github.com/dimeda/stretcher-service/internal/db"
	"github.com/dimeda/stretcher-service/internal/models"
)

// TechnicianHandler exposes technician unavailability days.
type TechnicianHandler struct {
	technicians db.TechnicianCollection
	log         *log.Entry
}

// NewTechnicianHandler creates a technician handler.
func NewTechnicianHandler(technicians db.TechnicianCollection, logger *log.Entry) *TechnicianHandler {
	return &TechnicianHandler{technicians: technicians, log: logger}
}

// List handles GET /api/technician-unavailable/{name}.
func (h *TechnicianHandler) List(w http.ResponseWriter, r *http.Request) {
	days, err := h.technicians.FindUnavailableDays(r.Context(), r.PathValue("name"))
	if err != nil {
		writeError(w, r, h.log, apperr.Database("list unavailable days", err))
		return
	}
	if days == nil {
		days = []models.TechnicianUnavailable{}
	}
	writeJSON(w, http.StatusOK, days)
}

// Add handles POST /api/technician-unavailable.
func (h *TechnicianHandler) Add(w http.ResponseWriter, r *http.Request) {
	var in models.TechnicianUnavailable
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, r, h.log, err)
		return
	}

	if _, err := h.technicians.FindUnavailableDay(r.Context(), in.TechnicianName, in.Date); err == nil {
		writeError(w, r, h.log, apperr.Validation("Day already marked as unavailable", "date"))
		return
	} else if !errors.Is(err, db.ErrNotFound) {
		writeError(w, r, h.log, apperr.Database("check unavailable day", err))
		return
	}

	in.ID = uuid.NewString()
	if err := h.technicians.InsertUnavailableDay(r.Context(), in); err != nil {
		writeError(w, r, h.log, apperr.Database("insert unavailable day", err))
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"message": "Unavailable day added", "data": in})
}

// Remove handles DELETE /api/technician-unavailable/{name}/{date}.
func (h *TechnicianHandler) Remove(w http.ResponseWriter, r *http.Request) {
	err := h.technicians.DeleteUnavailableDay(r.Context(), r.PathValue("name"), r.PathValue("date"))
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			writeError(w, r, h.log, apperr.NotFound("Unavailable day", r.PathValue("date")))
			return
		}
		writeError(w, r, h.log, apperr.Database("delete unavailable day", err))
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Unavailable day removed"})
}
