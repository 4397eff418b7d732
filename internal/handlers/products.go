package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"

	"github.com/dimeda/stretcher-service/internal/apperr"
	"github.com/dimeda/stretcher-service/internal/config"
	"github.com/dimeda/stretcher-service/internal/db"
	"github.com/dimeda/stretcher-service/internal/models"
)

// yearlyPlanYears is how far ahead the automatic annual maintenance plan runs.
const yearlyPlanYears = 5

// ProductHandler exposes the product registry. Creating a product also lays
// down its annual maintenance plan; changing the registration date rebuilds
// it.
type ProductHandler struct {
	products    db.ProductCollection
	maintenance db.MaintenanceCollection
	log         *log.Entry
	now         func() time.Time
}

// NewProductHandler creates a product handler.
func NewProductHandler(products db.ProductCollection, maintenance db.MaintenanceCollection, logger *log.Entry) *ProductHandler {
	return &ProductHandler{products: products, maintenance: maintenance, log: logger, now: time.Now}
}

// Create handles POST /api/products.
func (h *ProductHandler) Create(w http.ResponseWriter, r *http.Request) {
	var in models.ProductCreate
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, r, h.log, err)
		return
	}

	if !config.IsValidCity(in.City) {
		writeError(w, r, h.log, apperr.InvalidField("city", in.City, config.ValidCities))
		return
	}

	if _, err := h.products.FindProductBySerial(r.Context(), in.SerialNumber); err == nil {
		writeError(w, r, h.log, apperr.Exists("Product", "serial_number", in.SerialNumber))
		return
	} else if !errors.Is(err, db.ErrNotFound) {
		writeError(w, r, h.log, apperr.Database("check serial number", err))
		return
	}

	regDate := h.now()
	if in.RegistrationDate != "" {
		parsed, err := parseDate(in.RegistrationDate)
		if err != nil {
			writeError(w, r, h.log, apperr.Validation("invalid registration_date", "registration_date"))
			return
		}
		regDate = parsed
	}

	modelType := in.ModelType
	if modelType == "" {
		modelType = models.ModelTypePowered
	}

	product := models.Product{
		ID:               uuid.NewString(),
		SerialNumber:     in.SerialNumber,
		ModelName:        in.ModelName,
		ModelType:        modelType,
		City:             in.City,
		LocationDetail:   in.LocationDetail,
		Notes:            in.Notes,
		RegistrationDate: regDate,
		Status:           "active",
	}

	h.log.WithField("serial_number", product.SerialNumber).Info("creating product")

	if err := h.products.InsertProduct(r.Context(), product); err != nil {
		writeError(w, r, h.log, apperr.Database("insert product", err))
		return
	}

	h.scheduleYearlyPlan(r, product.ID, product.City, regDate)
	writeJSON(w, http.StatusOK, product)
}

// List handles GET /api/products.
func (h *ProductHandler) List(w http.ResponseWriter, r *http.Request) {
	products, err := h.products.FindProducts(r.Context(), bson.M{})
	if err != nil {
		writeError(w, r, h.log, apperr.Database("list products", err))
		return
	}
	if products == nil {
		products = []models.Product{}
	}
	writeJSON(w, http.StatusOK, products)
}

// Get handles GET /api/products/{id}.
func (h *ProductHandler) Get(w http.ResponseWriter, r *http.Request) {
	product, err := h.products.FindProductByID(r.Context(), r.PathValue("id"))
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			writeError(w, r, h.log, apperr.NotFound("Product", r.PathValue("id")))
			return
		}
		writeError(w, r, h.log, apperr.Database("load product", err))
		return
	}
	writeJSON(w, http.StatusOK, product)
}

// GetBySerial handles GET /api/products/serial/{serial}.
func (h *ProductHandler) GetBySerial(w http.ResponseWriter, r *http.Request) {
	product, err := h.products.FindProductBySerial(r.Context(), r.PathValue("serial"))
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			writeError(w, r, h.log, apperr.NotFound("Product", r.PathValue("serial")))
			return
		}
		writeError(w, r, h.log, apperr.Database("load product", err))
		return
	}
	writeJSON(w, http.StatusOK, product)
}

// Update handles PUT /api/products/{id}.
func (h *ProductHandler) Update(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	existing, err := h.products.FindProductByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			writeError(w, r, h.log, apperr.NotFound("Product", id))
			return
		}
		writeError(w, r, h.log, apperr.Database("load product", err))
		return
	}

	var in models.ProductCreate
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, r, h.log, err)
		return
	}
	if !config.IsValidCity(in.City) {
		writeError(w, r, h.log, apperr.InvalidField("city", in.City, config.ValidCities))
		return
	}

	regDate := existing.RegistrationDate
	if in.RegistrationDate != "" {
		parsed, err := parseDate(in.RegistrationDate)
		if err != nil {
			writeError(w, r, h.log, apperr.Validation("invalid registration_date", "registration_date"))
			return
		}
		regDate = parsed
	}

	// A changed registration date shifts the whole annual plan.
	if !sameDay(regDate, existing.RegistrationDate) {
		err := h.maintenance.DeleteManyMaintenance(r.Context(), bson.M{
			"product_id": id,
			"source":     models.SourceAutoYearly,
		})
		if err != nil {
			h.log.WithField("product_id", id).WithError(err).Error("yearly plan cleanup failed")
		}
		h.scheduleYearlyPlan(r, id, in.City, regDate)
	}

	fields := bson.M{
		"serial_number":     in.SerialNumber,
		"model_name":        in.ModelName,
		"model_type":        in.ModelType,
		"city":              in.City,
		"location_detail":   in.LocationDetail,
		"notes":             in.Notes,
		"registration_date": regDate,
	}
	if err := h.products.UpdateProduct(r.Context(), id, fields); err != nil {
		writeError(w, r, h.log, apperr.Database("update product", err))
		return
	}

	updated, err := h.products.FindProductByID(r.Context(), id)
	if err != nil {
		writeError(w, r, h.log, apperr.Database("reload product", err))
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

// Delete handles DELETE /api/products/{id}.
func (h *ProductHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if err := h.products.DeleteProduct(r.Context(), id); err != nil {
		if errors.Is(err, db.ErrNotFound) {
			writeError(w, r, h.log, apperr.NotFound("Product", id))
			return
		}
		writeError(w, r, h.log, apperr.Database("delete product", err))
		return
	}
	h.log.WithField("product_id", id).Info("deleted product")
	writeJSON(w, http.StatusOK, map[string]string{"message": "Product deleted successfully"})
}

// scheduleYearlyPlan creates the annual routine entries for the next years.
// Best-effort: a failed entry is logged, the product write stands.
func (h *ProductHandler) scheduleYearlyPlan(r *http.Request, productID, city string, regDate time.Time) {
	for offset := 1; offset <= yearlyPlanYears; offset++ {
		date := regDate.AddDate(0, 0, 365*offset)
		entry := models.ScheduledMaintenance{
			ID:            uuid.NewString(),
			ProductID:     productID,
			ScheduledDate: &date,
			Type:          models.MaintenanceRoutine,
			Notes:         "Annual maintenance - " + city,
			Source:        models.SourceAutoYearly,
			Status:        models.MaintenanceScheduled,
			CreatedAt:     h.now(),
		}
		if err := h.maintenance.InsertMaintenance(r.Context(), entry); err != nil {
			h.log.WithField("product_id", productID).WithError(err).Error("yearly plan write failed")
		}
	}
}

// parseDate accepts a full ISO timestamp or a bare YYYY-MM-DD date.
func parseDate(value string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", value)
}

func sameDay(a, b time.Time) bool {
	return a.UTC().Format("2006-01-02") == b.UTC().Format("2006-01-02")
}
