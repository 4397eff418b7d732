package issues

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
)

// GenerateCode builds the human-readable issue code
// {year}_{serial}_{month}_{day}_{n}, where n counts the issues already
// created since UTC midnight. Codes are informational, not keys: a failed
// product lookup degrades the serial to "UNK" and a failed count restarts the
// sequence at 0 instead of failing issue creation.
func (s *Service) GenerateCode(ctx context.Context, productID string) string {
	now := s.now().UTC()

	serial := "UNK"
	if product, err := s.products.FindProductByID(ctx, productID); err == nil && product.SerialNumber != "" {
		serial = product.SerialNumber
	} else if err != nil {
		s.log.WithField("product_id", productID).WithError(err).Warn("issue code falling back to UNK serial")
	}

	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	dayEnd := dayStart.Add(24 * time.Hour)
	order, err := s.issues.CountIssues(ctx, bson.M{
		"created_at": bson.M{"$gte": dayStart, "$lt": dayEnd},
	})
	if err != nil {
		s.log.WithError(err).Warn("issue code sequence count failed, using 0")
		order = 0
	}

	return fmt.Sprintf("%d_%s_%02d_%02d_%d", now.Year(), serial, int(now.Month()), now.Day(), order)
}
