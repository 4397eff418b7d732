package db

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"

	"github.com/dimeda/stretcher-service/internal/models"
)

// ErrNotFound is returned when a lookup or keyed update matches no document.
var ErrNotFound = errors.New("document not found")

// ProductCollection defines the interface for product document operations.
type ProductCollection interface {
	InsertProduct(ctx context.Context, product models.Product) error
	FindProducts(ctx context.Context, filter bson.M) ([]models.Product, error)
	FindProductByID(ctx context.Context, id string) (*models.Product, error)
	FindProductBySerial(ctx context.Context, serialNumber string) (*models.Product, error)
	UpdateProduct(ctx context.Context, id string, fields bson.M) error
	DeleteProduct(ctx context.Context, id string) error
	CountProducts(ctx context.Context, filter bson.M) (int64, error)
}

// IssueCollection defines the interface for issue document operations. Updates
// are partial: only the given fields are rewritten.
type IssueCollection interface {
	InsertIssue(ctx context.Context, issue models.Issue) error
	FindIssues(ctx context.Context, filter bson.M, sort bson.D) ([]models.Issue, error)
	FindIssueByID(ctx context.Context, id string) (*models.Issue, error)
	UpdateIssue(ctx context.Context, id string, fields bson.M) error
	DeleteIssue(ctx context.Context, id string) error
	CountIssues(ctx context.Context, filter bson.M) (int64, error)
}

// MaintenanceCollection defines the interface for scheduled-maintenance
// document operations.
type MaintenanceCollection interface {
	InsertMaintenance(ctx context.Context, entry models.ScheduledMaintenance) error
	FindMaintenance(ctx context.Context, filter bson.M, sort bson.D) ([]models.ScheduledMaintenance, error)
	FindMaintenanceByID(ctx context.Context, id string) (*models.ScheduledMaintenance, error)
	UpdateMaintenance(ctx context.Context, id string, fields bson.M) error
	UpdateManyMaintenance(ctx context.Context, filter bson.M, fields bson.M) error
	DeleteMaintenance(ctx context.Context, id string) error
	DeleteManyMaintenance(ctx context.Context, filter bson.M) error
	CountMaintenance(ctx context.Context, filter bson.M) (int64, error)
}

// ServiceCollection defines the interface for service-record document
// operations.
type ServiceCollection interface {
	InsertService(ctx context.Context, record models.ServiceRecord) error
	FindServices(ctx context.Context, filter bson.M, sort bson.D) ([]models.ServiceRecord, error)
	FindServiceByID(ctx context.Context, id string) (*models.ServiceRecord, error)
	DeleteService(ctx context.Context, id string) error
	CountServices(ctx context.Context, filter bson.M) (int64, error)
}

// TechnicianCollection defines the interface for technician-unavailability
// document operations.
type TechnicianCollection interface {
	InsertUnavailableDay(ctx context.Context, day models.TechnicianUnavailable) error
	FindUnavailableDays(ctx context.Context, technicianName string) ([]models.TechnicianUnavailable, error)
	FindUnavailableDay(ctx context.Context, technicianName, date string) (*models.TechnicianUnavailable, error)
	DeleteUnavailableDay(ctx context.Context, technicianName, date string) error
}
