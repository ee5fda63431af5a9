package storage

import (
	"context"

	"github.com/tunde/vend-settlement/pkg/models"
)

// CatalogStore defines the read-mostly interface over the admin-curated
// product catalog. Curation itself is an external collaborator; the
// engine only reads products, searches for substitutes and deactivates
// products a provider has rejected as unavailable.
type CatalogStore interface {
	// GetProduct retrieves a product by its catalog ID.
	GetProduct(ctx context.Context, productID string) (*models.Product, error)

	// FindSubstitute searches for an active product with the same kind,
	// network and sale price as the given product but a different provider.
	// Returns ErrNoSubstitute when none exists.
	FindSubstitute(ctx context.Context, product *models.Product) (*models.Product, error)

	// DeactivateProduct clears a product's active flag so future catalog
	// reads skip it.
	DeactivateProduct(ctx context.Context, productID string) error
}
