package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"

	"github.com/dimeda/stretcher-service/internal/apperr"
	"github.com/dimeda/stretcher-service/internal/db"
	"github.com/dimeda/stretcher-service/internal/models"
)

// MaintenanceHandler exposes the scheduled-maintenance calendar.
type MaintenanceHandler struct {
	maintenance db.MaintenanceCollection
	products    db.ProductCollection
	log         *log.Entry
	now         func() time.Time
}

// NewMaintenanceHandler creates a maintenance handler.
func NewMaintenanceHandler(maintenance db.MaintenanceCollection, products db.ProductCollection, logger *log.Entry) *MaintenanceHandler {
	return &MaintenanceHandler{maintenance: maintenance, products: products, log: logger, now: time.Now}
}

// Create handles POST /api/scheduled-maintenance.
func (h *MaintenanceHandler) Create(w http.ResponseWriter, r *http.Request) {
	var in models.MaintenanceCreate
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, r, h.log, err)
		return
	}

	if _, err := h.products.FindProductByID(r.Context(), in.ProductID); err != nil {
		if errors.Is(err, db.ErrNotFound) {
			writeError(w, r, h.log, apperr.NotFound("Product", in.ProductID))
			return
		}
		writeError(w, r, h.log, apperr.Database("load product", err))
		return
	}

	source := in.Source
	if source == "" {
		source = models.SourceManual
	}
	entry := models.ScheduledMaintenance{
		ID:             uuid.NewString(),
		ProductID:      in.ProductID,
		ScheduledDate:  in.ScheduledDate,
		Type:           in.Type,
		TechnicianName: in.TechnicianName,
		Notes:          in.Notes,
		Source:         source,
		IssueID:        in.IssueID,
		Priority:       in.Priority,
		Status:         models.MaintenanceScheduled,
		CreatedAt:      h.now(),
	}
	if err := h.maintenance.InsertMaintenance(r.Context(), entry); err != nil {
		writeError(w, r, h.log, apperr.Database("insert maintenance", err))
		return
	}
	writeJSON(w, http.StatusOK, entry)
}

// List handles GET /api/scheduled-maintenance with product/status filters and
// an optional month/year calendar window. Date-less pending_schedule entries
// ride along in windowed queries unless include_pending=false.
func (h *MaintenanceHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := bson.M{}
	if productID := q.Get("product_id"); productID != "" {
		filter["product_id"] = productID
	}
	if status := q.Get("status"); status != "" {
		filter["status"] = status
	}

	includePending := q.Get("include_pending") != "false"
	month, _ := strconv.Atoi(q.Get("month"))
	year, _ := strconv.Atoi(q.Get("year"))

	if year > 0 {
		var start, end time.Time
		if month >= 1 && month <= 12 {
			start = time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
			end = start.AddDate(0, 1, 0)
		} else {
			start = time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
			end = start.AddDate(1, 0, 0)
		}
		window := bson.M{"scheduled_date": bson.M{"$gte": start, "$lt": end}}
		if includePending {
			filter["$or"] = []bson.M{
				window,
				{"scheduled_date": nil, "status": models.MaintenancePendingSchedule},
			}
		} else {
			filter["scheduled_date"] = window["scheduled_date"]
		}
	}

	entries, err := h.maintenance.FindMaintenance(r.Context(), filter, bson.D{{Key: "scheduled_date", Value: 1}})
	if err != nil {
		writeError(w, r, h.log, apperr.Database("list maintenance", err))
		return
	}
	if entries == nil {
		entries = []models.ScheduledMaintenance{}
	}
	writeJSON(w, http.StatusOK, entries)
}

// UpcomingCount handles GET /api/scheduled-maintenance/upcoming/count.
func (h *MaintenanceHandler) UpcomingCount(w http.ResponseWriter, r *http.Request) {
	now := h.now().UTC()
	horizon := now.AddDate(0, 0, 30)

	upcoming, err := h.maintenance.CountMaintenance(r.Context(), bson.M{
		"status":         models.MaintenanceScheduled,
		"scheduled_date": bson.M{"$gte": now, "$lte": horizon},
	})
	if err != nil {
		writeError(w, r, h.log, apperr.Database("count upcoming maintenance", err))
		return
	}
	overdue, err := h.maintenance.CountMaintenance(r.Context(), bson.M{
		"status":         models.MaintenanceScheduled,
		"scheduled_date": bson.M{"$lt": now},
	})
	if err != nil {
		writeError(w, r, h.log, apperr.Database("count overdue maintenance", err))
		return
	}
	writeJSON(w, http.StatusOK, map[string]int64{"upcoming": upcoming, "overdue": overdue})
}

// UpcomingList handles GET /api/scheduled-maintenance/upcoming/list.
func (h *MaintenanceHandler) UpcomingList(w http.ResponseWriter, r *http.Request) {
	now := h.now().UTC()
	h.listWindow(w, r, bson.M{
		"status":         models.MaintenanceScheduled,
		"scheduled_date": bson.M{"$gte": now, "$lte": now.AddDate(0, 0, 30)},
	})
}

// OverdueList handles GET /api/scheduled-maintenance/overdue/list.
func (h *MaintenanceHandler) OverdueList(w http.ResponseWriter, r *http.Request) {
	h.listWindow(w, r, bson.M{
		"status":         models.MaintenanceScheduled,
		"scheduled_date": bson.M{"$lt": h.now().UTC()},
	})
}

// ThisMonthList handles GET /api/scheduled-maintenance/this-month/list.
func (h *MaintenanceHandler) ThisMonthList(w http.ResponseWriter, r *http.Request) {
	now := h.now().UTC()
	start := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	h.listWindow(w, r, bson.M{
		"status":         models.MaintenanceScheduled,
		"scheduled_date": bson.M{"$gte": start, "$lt": start.AddDate(0, 1, 0)},
	})
}

func (h *MaintenanceHandler) listWindow(w http.ResponseWriter, r *http.Request, filter bson.M) {
	entries, err := h.maintenance.FindMaintenance(r.Context(), filter, bson.D{{Key: "scheduled_date", Value: 1}})
	if err != nil {
		writeError(w, r, h.log, apperr.Database("list maintenance", err))
		return
	}
	if entries == nil {
		entries = []models.ScheduledMaintenance{}
	}
	writeJSON(w, http.StatusOK, entries)
}

// Get handles GET /api/scheduled-maintenance/{id}.
func (h *MaintenanceHandler) Get(w http.ResponseWriter, r *http.Request) {
	entry, err := h.maintenance.FindMaintenanceByID(r.Context(), r.PathValue("id"))
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			writeError(w, r, h.log, apperr.NotFound("Scheduled maintenance", r.PathValue("id")))
			return
		}
		writeError(w, r, h.log, apperr.Database("load maintenance", err))
		return
	}
	writeJSON(w, http.StatusOK, entry)
}

// Update handles PUT /api/scheduled-maintenance/{id}. Marking an entry
// completed stamps completed_at.
func (h *MaintenanceHandler) Update(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	if _, err := h.maintenance.FindMaintenanceByID(r.Context(), id); err != nil {
		if errors.Is(err, db.ErrNotFound) {
			writeError(w, r, h.log, apperr.NotFound("Scheduled maintenance", id))
			return
		}
		writeError(w, r, h.log, apperr.Database("load maintenance", err))
		return
	}

	var patch models.MaintenancePatch
	if err := decodeJSON(r, &patch); err != nil {
		writeError(w, r, h.log, err)
		return
	}

	fields := bson.M{}
	if patch.ScheduledDate != nil {
		fields["scheduled_date"] = *patch.ScheduledDate
	}
	if patch.Type != nil {
		fields["maintenance_type"] = *patch.Type
	}
	if patch.TechnicianName != nil {
		fields["technician_name"] = *patch.TechnicianName
	}
	if patch.Notes != nil {
		fields["notes"] = *patch.Notes
	}
	if patch.Priority != nil {
		fields["priority"] = *patch.Priority
	}
	if patch.Status != nil {
		fields["status"] = *patch.Status
		if *patch.Status == models.MaintenanceCompleted {
			fields["completed_at"] = h.now()
		}
	}

	if len(fields) > 0 {
		if err := h.maintenance.UpdateMaintenance(r.Context(), id, fields); err != nil {
			writeError(w, r, h.log, apperr.Database("update maintenance", err))
			return
		}
	}

	updated, err := h.maintenance.FindMaintenanceByID(r.Context(), id)
	if err != nil {
		writeError(w, r, h.log, apperr.Database("reload maintenance", err))
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

// Delete handles DELETE /api/scheduled-maintenance/{id}.
func (h *MaintenanceHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if err := h.maintenance.DeleteMaintenance(r.Context(), id); err != nil {
		if errors.Is(err, db.ErrNotFound) {
			writeError(w, r, h.log, apperr.NotFound("Scheduled maintenance", id))
			return
		}
		writeError(w, r, h.log, apperr.Database("delete maintenance", err))
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Scheduled maintenance deleted successfully"})
}
