package records

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/fieldkeeper/internal/client/models"
	"github.com/dmitrijs2005/fieldkeeper/internal/common"
)

// Repository is the record log used by the submission service and the
// report generator.
type Repository interface {
	// Append stores env as the new last element of category.
	Append(ctx context.Context, category models.Category, env models.Envelope) error

	// ReadAll returns every envelope of category in insertion order.
	ReadAll(ctx context.Context, category models.Category) ([]models.Envelope, error)
}

func checkCategory(c models.Category) error {
	if _, err := models.ParseCategory(string(c)); err != nil {
		return err
	}
	return nil
}

func degraded(category models.Category, err error) error {
	return fmt.Errorf("%w: read %s: %v", common.ErrStorageDegraded, category, err)
}
