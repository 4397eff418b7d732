package handlers

import "net/http"

// Handlers groups every route handler for registration.
type Handlers struct {
	Auth        *AuthHandler
	Products    *ProductHandler
	Issues      *IssueHandler
	Maintenance *MaintenanceHandler
	Services    *ServiceHandler
	Technician  *TechnicianHandler
	Stats       *StatsHandler
	Export      *ExportHandler
}

// Register mounts all API routes on the mux.
func (h *Handlers) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/{$}", h.Stats.Root)
	mux.HandleFunc("GET /api/cities", h.Stats.Cities)
	mux.HandleFunc("GET /api/stats", h.Stats.Stats)

	mux.HandleFunc("POST /api/auth/login", h.Auth.Login)
	mux.HandleFunc("POST /api/auth/technician-login", h.Auth.TechnicianLogin)
	mux.HandleFunc("POST /api/auth/customer-login", h.Auth.CustomerLogin)
	mux.HandleFunc("GET /api/auth/check", h.Auth.Check)
	mux.HandleFunc("POST /api/auth/logout", h.Auth.Logout)

	mux.HandleFunc("POST /api/products", h.Products.Create)
	mux.HandleFunc("GET /api/products", h.Products.List)
	mux.HandleFunc("GET /api/products/{id}", h.Products.Get)
	mux.HandleFunc("GET /api/products/serial/{serial}", h.Products.GetBySerial)
	mux.HandleFunc("PUT /api/products/{id}", h.Products.Update)
	mux.HandleFunc("DELETE /api/products/{id}", h.Products.Delete)

	mux.HandleFunc("POST /api/issues", h.Issues.Create)
	mux.HandleFunc("POST /api/issues/customer", h.Issues.CreateCustomer)
	mux.HandleFunc("GET /api/issues", h.Issues.List)
	mux.HandleFunc("GET /api/issues/{id}", h.Issues.Get)
	mux.HandleFunc("GET /api/issues/{id}/track", h.Issues.Track)
	mux.HandleFunc("PUT /api/issues/{id}", h.Issues.Update)
	mux.HandleFunc("DELETE /api/issues/{id}", h.Issues.Delete)

	mux.HandleFunc("POST /api/scheduled-maintenance", h.Maintenance.Create)
	mux.HandleFunc("GET /api/scheduled-maintenance", h.Maintenance.List)
	mux.HandleFunc("GET /api/scheduled-maintenance/upcoming/count", h.Maintenance.UpcomingCount)
	mux.HandleFunc("GET /api/scheduled-maintenance/upcoming/list", h.Maintenance.UpcomingList)
	mux.HandleFunc("GET /api/scheduled-maintenance/overdue/list", h.Maintenance.OverdueList)
	mux.HandleFunc("GET /api/scheduled-maintenance/this-month/list", h.Maintenance.ThisMonthList)
	mux.HandleFunc("GET /api/scheduled-maintenance/{id}", h.Maintenance.Get)
	mux.HandleFunc("PUT /api/scheduled-maintenance/{id}", h.Maintenance.Update)
	mux.HandleFunc("DELETE /api/scheduled-maintenance/{id}", h.Maintenance.Delete)

	mux.HandleFunc("POST /api/services", h.Services.Create)
	mux.HandleFunc("GET /api/services", h.Services.List)
	mux.HandleFunc("GET /api/services/{id}", h.Services.Get)
	mux.HandleFunc("DELETE /api/services/{id}", h.Services.Delete)

	mux.HandleFunc("GET /api/technician-unavailable/{name}", h.Technician.List)
	mux.HandleFunc("POST /api/technician-unavailable", h.Technician.Add)
	mux.HandleFunc("DELETE /api/technician-unavailable/{name}/{date}", h.Technician.Remove)

	mux.HandleFunc("GET /api/export/csv", h.Export.CSV)
}
