package issues

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"

	"github.com/dimeda/stretcher-service/internal/db"
	"github.com/dimeda/stretcher-service/internal/models"
)

// Scheduler translates issue lifecycle events into scheduled_maintenance
// mutations. All writes are best-effort: a failed calendar write is logged
// and never rolls back the issue change that triggered it.
type Scheduler struct {
	maintenance db.MaintenanceCollection
	log         *log.Entry
	now         func() time.Time
}

// NewScheduler creates a maintenance scheduler.
func NewScheduler(maintenance db.MaintenanceCollection, logger *log.Entry, now func() time.Time) *Scheduler {
	return &Scheduler{maintenance: maintenance, log: logger, now: now}
}

// ScheduleForNewIssue creates the SLA calendar entries for a freshly created
// issue. Customer issues with a technician already assigned get a single
// customer_issue entry (date-less for roll-in stretchers); electrical issues
// get a spare-unit replacement entry; everything else gets an inspection plus
// a service entry.
func (s *Scheduler) ScheduleForNewIssue(ctx context.Context, issue models.Issue, product *models.Product) {
	now := s.now()
	rollIn := product != nil && product.ModelType == models.ModelTypeRollIn

	switch {
	case issue.Source == models.SourceCustomer && issue.TechnicianName != "":
		s.insert(ctx, s.customerEntry(issue, issue.TechnicianName, rollIn))

	case issue.IssueType == "electrical":
		deadline := now.Add(12 * time.Hour)
		s.insert(ctx, models.ScheduledMaintenance{
			ID:            uuid.NewString(),
			ProductID:     issue.ProductID,
			ScheduledDate: &deadline,
			Type:          models.MaintenanceIssueReplacement,
			Notes:         fmt.Sprintf("Spare unit replacement - %s", issue.Title),
			Source:        models.SourceIssue,
			IssueID:       issue.ID,
			Priority:      models.Priority12h,
			Status:        models.MaintenanceScheduled,
			CreatedAt:     now,
		})

	default:
		inspection := now.Add(12 * time.Hour)
		s.insert(ctx, models.ScheduledMaintenance{
			ID:            uuid.NewString(),
			ProductID:     issue.ProductID,
			ScheduledDate: &inspection,
			Type:          models.MaintenanceIssueInspection,
			Notes:         fmt.Sprintf("Inspection for issue - %s", issue.Title),
			Source:        models.SourceIssue,
			IssueID:       issue.ID,
			Priority:      models.Priority12h,
			Status:        models.MaintenanceScheduled,
			CreatedAt:     now,
		})

		service := now.Add(24 * time.Hour)
		s.insert(ctx, models.ScheduledMaintenance{
			ID:            uuid.NewString(),
			ProductID:     issue.ProductID,
			ScheduledDate: &service,
			Type:          models.MaintenanceIssueService,
			Notes:         fmt.Sprintf("Service for issue - %s", issue.Title),
			Source:        models.SourceIssue,
			IssueID:       issue.ID,
			Priority:      models.Priority24h,
			Status:        models.MaintenanceScheduled,
			CreatedAt:     now,
		})
	}
}

// OnTechnicianFirstAssigned fires when technician_name transitions from empty
// to set. Customer issues get their customer_issue entry; legacy warranty
// routes get a 24h warranty_service entry.
func (s *Scheduler) OnTechnicianFirstAssigned(ctx context.Context, issue models.Issue, rollIn bool, technician string) {
	if issue.Source == models.SourceCustomer {
		s.insert(ctx, s.customerEntry(issue, technician, rollIn))
	}
	if issue.IsWarrantyRoute {
		s.insert(ctx, s.warrantyEntry(issue, technician))
	}
}

// OnTechnicianReassigned rewrites the technician on the issue's existing
// calendar entries. Warranty-route issues with no surviving entry get a fresh
// 24h one. The SLA deadline is deliberately left untouched: the clock is
// anchored to issue registration, not to the current assignee.
func (s *Scheduler) OnTechnicianReassigned(ctx context.Context, issue models.Issue, technician string) {
	if issue.IsWarrantyRoute {
		filter := bson.M{"issue_id": issue.ID, "source": models.SourceWarrantyService}
		existing, err := s.maintenance.FindMaintenance(ctx, filter, nil)
		if err != nil {
			s.log.WithField("issue_id", issue.ID).WithError(err).Error("warranty entry lookup failed")
		} else if len(existing) > 0 {
			if err := s.maintenance.UpdateManyMaintenance(ctx, filter, bson.M{"technician_name": technician}); err != nil {
				s.log.WithField("issue_id", issue.ID).WithError(err).Error("warranty entry reassignment failed")
			}
		} else {
			s.insert(ctx, s.warrantyEntry(issue, technician))
		}
	}

	if issue.Source == models.SourceCustomer {
		err := s.maintenance.UpdateManyMaintenance(ctx,
			bson.M{"issue_id": issue.ID, "source": models.SourceCustomerIssue},
			bson.M{"technician_name": technician})
		if err != nil {
			s.log.WithField("issue_id", issue.ID).WithError(err).Error("customer entry reassignment failed")
		}
	}
}

// OnIssueReopened removes the customer_issue entries of an issue whose
// technician assignment was just cleared.
func (s *Scheduler) OnIssueReopened(ctx context.Context, issueID string) {
	err := s.maintenance.DeleteManyMaintenance(ctx, bson.M{
		"issue_id": issueID,
		"source":   models.SourceCustomerIssue,
	})
	if err != nil {
		s.log.WithField("issue_id", issueID).WithError(err).Error("customer entry cleanup failed")
	}
}

// OnIssueResolved marks every calendar entry of the issue completed.
func (s *Scheduler) OnIssueResolved(ctx context.Context, issueID string) {
	err := s.maintenance.UpdateManyMaintenance(ctx,
		bson.M{"issue_id": issueID},
		bson.M{"status": models.MaintenanceCompleted})
	if err != nil {
		s.log.WithField("issue_id", issueID).WithError(err).Error("calendar completion failed")
	}
}

// DeleteEntriesForIssue removes every calendar entry referencing the issue.
func (s *Scheduler) DeleteEntriesForIssue(ctx context.Context, issueID string) {
	if err := s.maintenance.DeleteManyMaintenance(ctx, bson.M{"issue_id": issueID}); err != nil {
		s.log.WithField("issue_id", issueID).WithError(err).Error("calendar cascade delete failed")
	}
}

// customerEntry builds the single calendar entry for a customer issue.
// Roll-in stretchers carry no SLA: the entry has no date and waits for the
// technician to schedule it. Powered stretchers get a 12h deadline counted
// from issue registration.
func (s *Scheduler) customerEntry(issue models.Issue, technician string, rollIn bool) models.ScheduledMaintenance {
	entry := models.ScheduledMaintenance{
		ID:             uuid.NewString(),
		ProductID:      issue.ProductID,
		Type:           models.MaintenanceCustomerIssue,
		TechnicianName: technician,
		Source:         models.SourceCustomerIssue,
		IssueID:        issue.ID,
		CreatedAt:      s.now(),
	}
	if rollIn {
		entry.Notes = fmt.Sprintf("Customer Issue: %s - Roll-in Stretcher (No SLA)", issue.Title)
		entry.Status = models.MaintenancePendingSchedule
	} else {
		deadline := issue.CreatedAt.Add(12 * time.Hour)
		entry.ScheduledDate = &deadline
		entry.Notes = fmt.Sprintf("Customer Issue: %s - SLA: 12h from registration", issue.Title)
		entry.Priority = models.Priority12h
		entry.Status = models.MaintenanceScheduled
	}
	return entry
}

func (s *Scheduler) warrantyEntry(issue models.Issue, technician string) models.ScheduledMaintenance {
	deadline := s.now().Add(24 * time.Hour)
	return models.ScheduledMaintenance{
		ID:             uuid.NewString(),
		ProductID:      issue.ProductID,
		ScheduledDate:  &deadline,
		Type:           models.MaintenanceWarrantyService,
		TechnicianName: technician,
		Notes:          fmt.Sprintf("Warranty Service: %s", issue.Title),
		Source:         models.SourceWarrantyService,
		IssueID:        issue.ID,
		Priority:       models.Priority24h,
		Status:         models.MaintenanceScheduled,
		CreatedAt:      s.now(),
	}
}

func (s *Scheduler) insert(ctx context.Context, entry models.ScheduledMaintenance) {
	if err := s.maintenance.InsertMaintenance(ctx, entry); err != nil {
		s.log.WithFields(log.Fields{
			"issue_id":         entry.IssueID,
			"maintenance_type": entry.Type,
		}).WithError(err).Error("calendar write failed")
	}
}
