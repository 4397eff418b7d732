// Package issues implements the issue lifecycle: creation with auto-scheduled
// SLA calendar entries, the update state machine with warranty routing and
// repair-attempt tracking, lineage tracking, and cascade deletion.
package issues

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"

	"github.com/dimeda/stretcher-service/internal/apperr"
	"github.com/dimeda/stretcher-service/internal/db"
	"github.com/dimeda/stretcher-service/internal/events"
	"github.com/dimeda/stretcher-service/internal/models"
)

// Service orchestrates issue reads and writes across the issues,
// scheduled_maintenance and services collections.
type Service struct {
	issues    db.IssueCollection
	products  db.ProductCollection
	services  db.ServiceCollection
	scheduler *Scheduler
	events    events.Publisher
	log       *log.Entry
	now       func() time.Time
}

// NewService creates an issue service. The scheduler shares the service's
// clock so SLA deadlines in tests stay deterministic.
func NewService(
	issues db.IssueCollection,
	products db.ProductCollection,
	maintenance db.MaintenanceCollection,
	services db.ServiceCollection,
	publisher events.Publisher,
	logger *log.Entry,
) *Service {
	s := &Service{
		issues:   issues,
		products: products,
		services: services,
		events:   publisher,
		log:      logger,
		now:      time.Now,
	}
	s.scheduler = NewScheduler(maintenance, logger, s.now)
	return s
}

// Create registers a new issue, generates its code and schedules the SLA
// calendar entries derived from its type and source.
func (s *Service) Create(ctx context.Context, in models.IssueCreate) (*models.Issue, error) {
	product, err := s.products.FindProductByID(ctx, in.ProductID)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return nil, apperr.NotFound("Product", in.ProductID)
		}
		return nil, apperr.Database("load product", err)
	}

	now := s.now()
	issue := models.Issue{
		ID:             uuid.NewString(),
		ProductID:      in.ProductID,
		IssueCode:      s.GenerateCode(ctx, in.ProductID),
		IssueType:      in.IssueType,
		Severity:       in.Severity,
		Title:          in.Title,
		Description:    in.Description,
		Status:         models.IssueStatusOpen,
		Photos:         in.Photos,
		TechnicianName: in.TechnicianName,
		WarrantyStatus: in.WarrantyStatus,
		Source:         in.Source,
		CreatedAt:      now,
	}
	if issue.Photos == nil {
		issue.Photos = []string{}
	}
	if issue.TechnicianName != "" {
		issue.TechnicianAssignedAt = &now
	}

	if err := s.issues.InsertIssue(ctx, issue); err != nil {
		return nil, apperr.Database("insert issue", err)
	}

	s.scheduler.ScheduleForNewIssue(ctx, issue, product)
	s.events.IssueCreated(&issue)
	return &issue, nil
}

// CreateCustomer registers a customer-reported issue. Severity and source are
// forced; no calendar entries are created until a technician is assigned.
func (s *Service) CreateCustomer(ctx context.Context, in models.CustomerIssueCreate) (*models.Issue, error) {
	if _, err := s.products.FindProductByID(ctx, in.ProductID); err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return nil, apperr.NotFound("Product", in.ProductID)
		}
		return nil, apperr.Database("load product", err)
	}

	issue := models.Issue{
		ID:              uuid.NewString(),
		ProductID:       in.ProductID,
		IssueCode:       s.GenerateCode(ctx, in.ProductID),
		IssueType:       in.IssueType,
		Severity:        "high",
		Title:           in.Title,
		Description:     in.Description,
		Status:          models.IssueStatusOpen,
		Photos:          []string{},
		ProductLocation: in.ProductLocation,
		WarrantyStatus:  in.WarrantyStatus,
		Source:          models.SourceCustomer,
		CreatedAt:       s.now(),
	}

	if err := s.issues.InsertIssue(ctx, issue); err != nil {
		return nil, apperr.Database("insert issue", err)
	}
	s.events.IssueCreated(&issue)
	return &issue, nil
}

// List returns issues, optionally filtered by product and status, newest
// first.
func (s *Service) List(ctx context.Context, productID, status string) ([]models.Issue, error) {
	filter := bson.M{}
	if productID != "" {
		filter["product_id"] = productID
	}
	if status != "" {
		filter["status"] = status
	}
	issues, err := s.issues.FindIssues(ctx, filter, bson.D{{Key: "created_at", Value: -1}})
	if err != nil {
		return nil, apperr.Database("list issues", err)
	}
	return issues, nil
}

// Get returns one issue by id.
func (s *Service) Get(ctx context.Context, issueID string) (*models.Issue, error) {
	issue, err := s.issues.FindIssueByID(ctx, issueID)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return nil, apperr.NotFound("Issue", issueID)
		}
		return nil, apperr.Database("load issue", err)
	}
	return issue, nil
}

// Delete removes an issue together with its calendar entries. A legacy parent
// takes its child issue down with it; deleting a legacy child unlinks it from
// the parent.
func (s *Service) Delete(ctx context.Context, issueID string) error {
	existing, err := s.issues.FindIssueByID(ctx, issueID)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return apperr.NotFound("Issue", issueID)
		}
		return apperr.Database("load issue", err)
	}

	s.scheduler.DeleteEntriesForIssue(ctx, issueID)

	if existing.ChildIssueID != "" {
		s.scheduler.DeleteEntriesForIssue(ctx, existing.ChildIssueID)
		if err := s.issues.DeleteIssue(ctx, existing.ChildIssueID); err != nil && !errors.Is(err, db.ErrNotFound) {
			return apperr.Database("delete child issue", err)
		}
	}

	if existing.ParentIssueID != "" {
		if err := s.issues.UpdateIssue(ctx, existing.ParentIssueID, bson.M{"child_issue_id": ""}); err != nil && !errors.Is(err, db.ErrNotFound) {
			return apperr.Database("unlink parent issue", err)
		}
	}

	if err := s.issues.DeleteIssue(ctx, issueID); err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return apperr.NotFound("Issue", issueID)
		}
		return apperr.Database("delete issue", err)
	}
	return nil
}
