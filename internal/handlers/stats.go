package handlers

import (
	"net/http"

	log "github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"

	"github.com/dimeda/stretcher-service/internal/apperr"
	"github.com/dimeda/stretcher-service/internal/config"
	"github.com/dimeda/stretcher-service/internal/db"
	"github.com/dimeda/stretcher-service/internal/models"
)

// StatsHandler exposes the API banner, the city set and dashboard counts.
type StatsHandler struct {
	products db.ProductCollection
	issues   db.IssueCollection
	services db.ServiceCollection
	log      *log.Entry
}

// NewStatsHandler creates a stats handler.
func NewStatsHandler(products db.ProductCollection, issues db.IssueCollection, services db.ServiceCollection, logger *log.Entry) *StatsHandler {
	return &StatsHandler{products: products, issues: issues, services: services, log: logger}
}

// Root handles GET /api/.
func (h *StatsHandler) Root(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"message": "Stretcher Service API",
		"version": "1.0.0",
	})
}

// Cities handles GET /api/cities.
func (h *StatsHandler) Cities(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string][]string{"cities": config.ValidCities})
}

// Stats handles GET /api/stats.
func (h *StatsHandler) Stats(w http.ResponseWriter, r *http.Request) {
	totalProducts, err := h.products.CountProducts(r.Context(), bson.M{})
	if err != nil {
		writeError(w, r, h.log, apperr.Database("count products", err))
		return
	}
	totalServices, err := h.services.CountServices(r.Context(), bson.M{})
	if err != nil {
		writeError(w, r, h.log, apperr.Database("count services", err))
		return
	}
	openIssues, err := h.issues.CountIssues(r.Context(), bson.M{"status": models.IssueStatusOpen})
	if err != nil {
		writeError(w, r, h.log, apperr.Database("count open issues", err))
		return
	}
	resolvedIssues, err := h.issues.CountIssues(r.Context(), bson.M{"status": models.IssueStatusResolved})
	if err != nil {
		writeError(w, r, h.log, apperr.Database("count resolved issues", err))
		return
	}

	writeJSON(w, http.StatusOK, map[string]int64{
		"total_products":  totalProducts,
		"total_services":  totalServices,
		"open_issues":     openIssues,
		"resolved_issues": resolvedIssues,
		"recent_services": totalServices,
	})
}
