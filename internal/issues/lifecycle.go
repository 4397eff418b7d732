package issues

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"

	"github.com/dimeda/stretcher-service/internal/apperr"
	"github.com/dimeda/stretcher-service/internal/db"
	"github.com/dimeda/stretcher-service/internal/models"
)

// ApplyUpdate runs the issue lifecycle state machine over a sparse patch.
// Rules execute in a fixed order and accumulate into one field set, so a
// later rule overwrites what an earlier one wrote: warranty routing rewrites
// the resolved stamp into in_service, a completed repair rewrites it back.
// The computed set is persisted in a single partial update, then the calendar
// and service-record side effects run against the stored result.
func (s *Service) ApplyUpdate(ctx context.Context, issueID string, patch models.IssuePatch) (*models.Issue, error) {
	existing, err := s.issues.FindIssueByID(ctx, issueID)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return nil, apperr.NotFound("Issue", issueID)
		}
		return nil, apperr.Database("load issue", err)
	}

	now := s.now()
	set := patchFields(patch)
	attempts := append([]models.RepairAttempt(nil), existing.RepairAttempts...)

	// Reopening hands the issue back to the pool: the assignment is cleared
	// and customer-portal calendar entries disappear with it.
	if stringField(set, "status") == models.IssueStatusOpen && existing.TechnicianName != "" {
		set["technician_name"] = ""
		set["technician_assigned_at"] = nil
		if existing.Source == models.SourceCustomer {
			s.scheduler.OnIssueReopened(ctx, issueID)
		}
	}

	newTechnician := stringField(set, "technician_name")

	// First assignment stamps the timestamp and creates the calendar entries,
	// but leaves the status alone: work starts only on an explicit
	// in_progress transition.
	if newTechnician != "" && existing.TechnicianName == "" {
		set["technician_assigned_at"] = now
		s.scheduler.OnTechnicianFirstAssigned(ctx, *existing, s.isRollIn(ctx, existing.ProductID), newTechnician)
	}

	// Reassignment to a different technician.
	if newTechnician != "" && existing.TechnicianName != "" && newTechnician != existing.TechnicianName {
		set["technician_assigned_at"] = now
		s.scheduler.OnTechnicianReassigned(ctx, *existing, newTechnician)
	}

	if stringField(set, "status") == models.IssueStatusResolved {
		set["resolved_at"] = now
	}

	// Warranty routing: a warranty resolution is not a resolution. The issue
	// parks in in_service with a fresh pending repair attempt; legacy
	// warranty-route children keep the old child-issue flow instead.
	if stringField(set, "warranty_service_type") == models.WarrantyService &&
		stringField(set, "status") == models.IssueStatusResolved &&
		!existing.IsWarrantyRoute {
		set["status"] = models.IssueStatusInService
		delete(set, "resolved_at")
		set["warranty_repair_started_at"] = now

		notes := "Warranty repair required"
		if r, ok := set["resolution"].(string); ok {
			notes = r
		}
		attempt := models.RepairAttempt{
			ID:        uuid.NewString(),
			StartedAt: now,
			Notes:     notes,
			Status:    models.RepairStatusPending,
		}
		attempts = append(attempts, attempt)
		set["repair_attempts"] = attempts
		set["current_repair_id"] = attempt.ID
	}

	// Start-repair action. An unknown repair id leaves the attempt list
	// untouched but the status transition still applies.
	if boolValue(patch.StartRepair) && existing.Status == models.IssueStatusInService {
		target := existing.CurrentRepairID
		if patch.RepairID != nil && *patch.RepairID != "" {
			target = *patch.RepairID
		}
		for i := range attempts {
			if attempts[i].ID == target {
				attempts[i].Status = models.RepairStatusInProgress
				break
			}
		}
		set["repair_attempts"] = attempts
		set["status"] = models.IssueStatusInProgress
	}

	// Complete-repair action resolves the issue and closes out the attempt.
	if boolValue(patch.CompleteRepair) {
		target := existing.CurrentRepairID
		if patch.RepairID != nil && *patch.RepairID != "" {
			target = *patch.RepairID
		}
		for i := range attempts {
			if attempts[i].ID == target {
				attempts[i].Status = models.RepairStatusCompleted
				completed := now
				attempts[i].CompletedAt = &completed
				if patch.RepairNotes != nil && *patch.RepairNotes != "" {
					attempts[i].Notes = *patch.RepairNotes
				}
				break
			}
		}
		set["repair_attempts"] = attempts
		set["status"] = models.IssueStatusResolved
		set["resolved_at"] = now
		set["current_repair_id"] = ""
	}

	// Legacy child-issue flow: resolving the warranty child resolves the
	// parent it was routed from.
	if existing.IsWarrantyRoute && stringField(set, "status") == models.IssueStatusResolved && existing.ParentIssueID != "" {
		err := s.issues.UpdateIssue(ctx, existing.ParentIssueID, bson.M{
			"status":      models.IssueStatusResolved,
			"resolved_at": now,
		})
		if err != nil && !errors.Is(err, db.ErrNotFound) {
			return nil, apperr.Database("resolve parent issue", err)
		}
	}

	if len(set) > 0 {
		if err := s.issues.UpdateIssue(ctx, issueID, set); err != nil {
			return nil, apperr.Database("update issue", err)
		}
	}
	updated, err := s.issues.FindIssueByID(ctx, issueID)
	if err != nil {
		return nil, apperr.Database("reload issue", err)
	}

	if stringField(set, "status") == models.IssueStatusResolved {
		s.scheduler.OnIssueResolved(ctx, issueID)
		s.autoResolveParent(ctx, existing, updated)
	}

	// Deriving a service record is opt-in per call: the explicit flag, a
	// resolved outcome and a non-warranty classification must all line up.
	if boolValue(patch.CreateServiceRecord) &&
		stringField(set, "status") == models.IssueStatusResolved &&
		stringField(set, "warranty_service_type") == models.NonWarrantyService {
		if err := s.createServiceRecord(ctx, existing, updated, set); err != nil {
			return nil, err
		}
	}

	s.events.IssueUpdated(updated)
	return updated, nil
}

// autoResolveParent closes a legacy parent once every child sharing it is
// resolved.
func (s *Service) autoResolveParent(ctx context.Context, existing, updated *models.Issue) {
	if existing.ParentIssueID == "" {
		return
	}
	children, err := s.issues.FindIssues(ctx, bson.M{"parent_issue_id": existing.ParentIssueID}, nil)
	if err != nil {
		s.log.WithField("parent_issue_id", existing.ParentIssueID).WithError(err).Error("sibling lookup failed")
		return
	}
	if len(children) == 0 {
		return
	}
	for _, child := range children {
		if child.Status != models.IssueStatusResolved {
			return
		}
	}

	resolution := updated.Resolution
	if resolution == "" {
		resolution = "All child issues resolved"
	}
	err = s.issues.UpdateIssue(ctx, existing.ParentIssueID, bson.M{
		"status":      models.IssueStatusResolved,
		"resolved_at": s.now(),
		"resolution":  resolution,
	})
	if err != nil {
		s.log.WithField("parent_issue_id", existing.ParentIssueID).WithError(err).Error("parent auto-resolve failed")
		return
	}
	s.scheduler.OnIssueResolved(ctx, existing.ParentIssueID)
}

func (s *Service) createServiceRecord(ctx context.Context, existing, updated *models.Issue, set bson.M) error {
	technician := updated.TechnicianName
	if technician == "" {
		technician = existing.TechnicianName
	}
	if technician == "" {
		technician = "Unknown"
	}

	now := s.now()
	record := models.ServiceRecord{
		ID:             uuid.NewString(),
		ProductID:      existing.ProductID,
		TechnicianName: technician,
		ServiceType:    "repair",
		Description: fmt.Sprintf("%s\n\nResolution: %s\n\nEstimated Fix Time: %s hours\nEstimated Cost: %s Eur",
			existing.Title,
			stringFieldOr(set, "resolution", "N/A"),
			stringFieldOr(set, "estimated_fix_time", "N/A"),
			stringFieldOr(set, "estimated_cost", "N/A")),
		IssuesFound:    existing.Description,
		WarrantyStatus: models.NonWarrantyService,
		ServiceDate:    now,
		CreatedAt:      now,
	}
	if err := s.services.InsertService(ctx, record); err != nil {
		return apperr.Database("insert service record", err)
	}
	return nil
}

func (s *Service) isRollIn(ctx context.Context, productID string) bool {
	product, err := s.products.FindProductByID(ctx, productID)
	if err != nil {
		s.log.WithField("product_id", productID).WithError(err).Warn("product lookup failed, assuming powered model")
		return false
	}
	return product.ModelType == models.ModelTypeRollIn
}

// patchFields converts the sparse patch into the field set to persist,
// dropping absent fields so the update stays partial. Action flags never
// reach the document.
func patchFields(patch models.IssuePatch) bson.M {
	set := bson.M{}
	if patch.Status != nil {
		set["status"] = *patch.Status
	}
	if patch.Resolution != nil {
		set["resolution"] = *patch.Resolution
	}
	if patch.ServiceNote != nil {
		set["service_note"] = *patch.ServiceNote
	}
	if patch.TechnicianName != nil {
		set["technician_name"] = *patch.TechnicianName
	}
	if patch.WarrantyStatus != nil {
		set["warranty_status"] = *patch.WarrantyStatus
	}
	if patch.WarrantyServiceType != nil {
		set["warranty_service_type"] = *patch.WarrantyServiceType
	}
	if patch.EstimatedFixTime != nil {
		set["estimated_fix_time"] = *patch.EstimatedFixTime
	}
	if patch.EstimatedCost != nil {
		set["estimated_cost"] = *patch.EstimatedCost
	}
	if patch.SparePartsUsed != nil {
		set["spare_parts_used"] = *patch.SparePartsUsed
	}
	if patch.SpareParts != nil {
		set["spare_parts"] = *patch.SpareParts
	}
	return set
}

func stringField(set bson.M, key string) string {
	v, _ := set[key].(string)
	return v
}

func stringFieldOr(set bson.M, key, fallback string) string {
	if v, ok := set[key].(string); ok {
		return v
	}
	return fallback
}

func boolValue(b *bool) bool {
	return b != nil && *b
}
