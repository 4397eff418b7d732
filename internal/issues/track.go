package issues

import (
	"context"
	"errors"

	"github.com/dimeda/stretcher-service/internal/apperr"
	"github.com/dimeda/stretcher-service/internal/db"
	"github.com/dimeda/stretcher-service/internal/models"
)

// Track is the reconstructed lineage of an issue for display: the original
// issue, the warranty child (legacy flow) and the owning product.
type Track struct {
	OriginalIssue        *models.Issue   `json:"original_issue"`
	CurrentIssue         *models.Issue   `json:"current_issue"`
	WarrantyServiceIssue *models.Issue   `json:"warranty_service_issue"`
	IsWarrantyFlow       bool            `json:"is_warranty_flow"`
	Product              *models.Product `json:"product"`
}

// GetTrack reconstructs the legacy parent/child lineage of an issue. Pure
// read, no side effects. Broken links (a parent or child that no longer
// exists) leave the slot empty rather than failing the read.
func (s *Service) GetTrack(ctx context.Context, issueID string) (*Track, error) {
	issue, err := s.issues.FindIssueByID(ctx, issueID)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return nil, apperr.NotFound("Issue", issueID)
		}
		return nil, apperr.Database("load issue", err)
	}

	track := &Track{CurrentIssue: issue}

	if issue.ParentIssueID != "" {
		parent, err := s.issues.FindIssueByID(ctx, issue.ParentIssueID)
		if err != nil && !errors.Is(err, db.ErrNotFound) {
			return nil, apperr.Database("load parent issue", err)
		}
		track.OriginalIssue = parent
		track.IsWarrantyFlow = true
	}

	if issue.ChildIssueID != "" {
		child, err := s.issues.FindIssueByID(ctx, issue.ChildIssueID)
		if err != nil && !errors.Is(err, db.ErrNotFound) {
			return nil, apperr.Database("load child issue", err)
		}
		track.WarrantyServiceIssue = child
		track.OriginalIssue = issue
		track.IsWarrantyFlow = true
	}

	product, err := s.products.FindProductByID(ctx, issue.ProductID)
	if err != nil && !errors.Is(err, db.ErrNotFound) {
		return nil, apperr.Database("load product", err)
	}
	track.Product = product

	return track, nil
}
