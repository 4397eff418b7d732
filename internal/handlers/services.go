package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"

	"github.com/dimeda/stretcher-service/internal/apperr"
	"github.com/dimeda/stretcher-service/internal/db"
	"github.com/dimeda/stretcher-service/internal/models"
)

// ServiceHandler exposes service records.
type ServiceHandler struct {
	services db.ServiceCollection
	products db.ProductCollection
	log      *log.Entry
	now      func() time.Time
}

// NewServiceHandler creates a service-record handler.
func NewServiceHandler(services db.ServiceCollection, products db.ProductCollection, logger *log.Entry) *ServiceHandler {
	return &ServiceHandler{services: services, products: products, log: logger, now: time.Now}
}

// Create handles POST /api/services.
func (h *ServiceHandler) Create(w http.ResponseWriter, r *http.Request) {
	var in models.ServiceRecordCreate
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

	now := h.now()
	serviceDate := now
	if in.ServiceDate != nil {
		serviceDate = *in.ServiceDate
	}
	record := models.ServiceRecord{
		ID:             uuid.NewString(),
		ProductID:      in.ProductID,
		TechnicianName: in.TechnicianName,
		ServiceType:    in.ServiceType,
		Description:    in.Description,
		IssuesFound:    in.IssuesFound,
		WarrantyStatus: in.WarrantyStatus,
		ServiceDate:    serviceDate,
		CreatedAt:      now,
	}
	if err := h.services.InsertService(r.Context(), record); err != nil {
		writeError(w, r, h.log, apperr.Database("insert service record", err))
		return
	}
	writeJSON(w, http.StatusOK, record)
}

// List handles GET /api/services, newest first.
func (h *ServiceHandler) List(w http.ResponseWriter, r *http.Request) {
	filter := bson.M{}
	if productID := r.URL.Query().Get("product_id"); productID != "" {
		filter["product_id"] = productID
	}
	records, err := h.services.FindServices(r.Context(), filter, bson.D{{Key: "service_date", Value: -1}})
	if err != nil {
		writeError(w, r, h.log, apperr.Database("list service records", err))
		return
	}
	if records == nil {
		records = []models.ServiceRecord{}
	}
	writeJSON(w, http.StatusOK, records)
}

// Get handles GET /api/services/{id}.
func (h *ServiceHandler) Get(w http.ResponseWriter, r *http.Request) {
	record, err := h.services.FindServiceByID(r.Context(), r.PathValue("id"))
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			writeError(w, r, h.log, apperr.NotFound("Service record", r.PathValue("id")))
			return
		}
		writeError(w, r, h.log, apperr.Database("load service record", err))
		return
	}
	writeJSON(w, http.StatusOK, record)
}

// Delete handles DELETE /api/services/{id}.
func (h *ServiceHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if err := h.services.DeleteService(r.Context(), id); err != nil {
		if errors.Is(err, db.ErrNotFound) {
			writeError(w, r, h.log, apperr.NotFound("Service record", id))
			return
		}
		writeError(w, r, h.log, apperr.Database("delete service record", err))
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Service record deleted successfully"})
}
