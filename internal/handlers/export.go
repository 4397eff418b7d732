package handlers

import (
	"encoding/csv"
	"fmt"
	"net/http"
	"time"

	log "github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"

	"github.com/dimeda/stretcher-service/internal/apperr"
	"github.com/dimeda/stretcher-service/internal/db"
	"github.com/dimeda/stretcher-service/internal/models"
)

// ExportHandler streams CSV reports over the stored data.
type ExportHandler struct {
	products db.ProductCollection
	issues   db.IssueCollection
	services db.ServiceCollection
	log      *log.Entry
	now      func() time.Time
}

// NewExportHandler creates an export handler.
func NewExportHandler(products db.ProductCollection, issues db.IssueCollection, services db.ServiceCollection, logger *log.Entry) *ExportHandler {
	return &ExportHandler{
		products: products,
		issues:   issues,
		services: services,
		log:      logger,
		now:      time.Now,
	}
}

// CSV handles GET /api/export/csv?data_type=services|products|issues.
func (h *ExportHandler) CSV(w http.ResponseWriter, r *http.Request) {
	dataType := r.URL.Query().Get("data_type")
	if dataType == "" {
		dataType = "services"
	}

	switch dataType {
	case "services":
		h.exportServices(w, r)
	case "products":
		h.exportProducts(w, r)
	case "issues":
		h.exportIssues(w, r)
	default:
		writeError(w, r, h.log, apperr.InvalidField("data_type", dataType, []string{"services", "products", "issues"}))
	}
}

func (h *ExportHandler) exportServices(w http.ResponseWriter, r *http.Request) {
	records, err := h.services.FindServices(r.Context(), bson.M{}, nil)
	if err != nil {
		writeError(w, r, h.log, apperr.Database("find services", err))
		return
	}
	if len(records) == 0 {
		writeError(w, r, h.log, apperr.NotFound("service records", ""))
		return
	}

	writeCSVHeaders(w, fmt.Sprintf("service_records_%s.csv", h.now().Format("20060102")))
	cw := csv.NewWriter(w)
	cw.Write([]string{"id", "product_id", "technician_name", "service_type", "description", "issues_found", "warranty_status", "service_date", "created_at"})
	for _, rec := range records {
		cw.Write([]string{
			rec.ID,
			rec.ProductID,
			rec.TechnicianName,
			rec.ServiceType,
			rec.Description,
			rec.IssuesFound,
			rec.WarrantyStatus,
			rec.ServiceDate.Format(time.RFC3339),
			rec.CreatedAt.Format(time.RFC3339),
		})
	}
	cw.Flush()
}

func (h *ExportHandler) exportProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.products.FindProducts(r.Context(), bson.M{})
	if err != nil {
		writeError(w, r, h.log, apperr.Database("find products", err))
		return
	}
	if len(products) == 0 {
		writeError(w, r, h.log, apperr.NotFound("products", ""))
		return
	}

	writeCSVHeaders(w, fmt.Sprintf("products_%s.csv", h.now().Format("20060102")))
	cw := csv.NewWriter(w)
	cw.Write([]string{"id", "serial_number", "model_name", "city", "location_detail", "notes", "registration_date", "status"})
	for _, p := range products {
		cw.Write([]string{
			p.ID,
			p.SerialNumber,
			p.ModelName,
			p.City,
			p.LocationDetail,
			p.Notes,
			p.RegistrationDate.Format(time.RFC3339),
			p.Status,
		})
	}
	cw.Flush()
}

// exportIssues writes the issue report: one row per issue joined with the
// product's serial number and city, dates truncated to the day.
func (h *ExportHandler) exportIssues(w http.ResponseWriter, r *http.Request) {
	issues, err := h.issues.FindIssues(r.Context(), bson.M{}, nil)
	if err != nil {
		writeError(w, r, h.log, apperr.Database("find issues", err))
		return
	}
	if len(issues) == 0 {
		writeError(w, r, h.log, apperr.NotFound("issues", ""))
		return
	}

	products, err := h.products.FindProducts(r.Context(), bson.M{})
	if err != nil {
		writeError(w, r, h.log, apperr.Database("find products", err))
		return
	}
	productMap := make(map[string]models.Product, len(products))
	for _, p := range products {
		productMap[p.ID] = p
	}

	writeCSVHeaders(w, fmt.Sprintf("Issue Report (%s).csv", h.now().Format("2006-01-02")))
	cw := csv.NewWriter(w)
	cw.Write([]string{"issue_type", "date", "resolved_date", "serial_number", "city", "technician_name", "warranty_status"})
	for _, issue := range issues {
		serial, city := "Unknown", "Unknown"
		if p, ok := productMap[issue.ProductID]; ok {
			serial, city = p.SerialNumber, p.City
		}

		resolvedDate := "N/A"
		if issue.ResolvedAt != nil {
			resolvedDate = issue.ResolvedAt.Format("2006-01-02")
		}

		technician := issue.TechnicianName
		if technician == "" {
			technician = "N/A"
		}

		var warranty string
		switch issue.WarrantyStatus {
		case models.WarrantyService:
			warranty = "Warranty"
		case models.NonWarrantyService:
			warranty = "Non Warranty"
		default:
			warranty = "N/A"
		}

		cw.Write([]string{
			issue.IssueType,
			issue.CreatedAt.Format("2006-01-02"),
			resolvedDate,
			serial,
			city,
			technician,
			warranty,
		})
	}
	cw.Flush()
}

func writeCSVHeaders(w http.ResponseWriter, filename string) {
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.WriteHeader(http.StatusOK)
}
