package fallback

import (
	"context"
	"errors"
	"log/slog"

	"github.com/tunde/vend-settlement/pkg/models"
	"github.com/tunde/vend-settlement/pkg/providers"
	"github.com/tunde/vend-settlement/pkg/storage"
)

// Router drives a purchase attempt through the primary provider adapter
// and, when the primary rejects the product as unavailable, through at
// most one same-price substitute at a different provider. A single hop
// bounds both latency and side-effect risk; the same reference is reused
// for the substitute, which is safe because it goes to a different
// provider.
type Router struct {
	Registry providers.Registry
	Catalog  storage.CatalogStore
	Logger   *slog.Logger
}

// New creates a new Router.
func New(registry providers.Registry, catalog storage.CatalogStore, logger *slog.Logger) *Router {
	return &Router{Registry: registry, Catalog: catalog, Logger: logger}
}

// Result is the outcome of a routed attempt, along with the product that
// was actually submitted to a provider.
type Result struct {
	Outcome     providers.Outcome
	Product     *models.Product
	Substituted bool
}

// Attempt submits the purchase via the product's provider adapter and
// applies the one-hop substitution policy on a "product unavailable"
// rejection. When no substitute exists, the product is deactivated so
// future catalog reads skip it, and the primary's rejection is returned
// for the caller to surface.
func (r *Router) Attempt(ctx context.Context, product *models.Product, target, reference string) Result {
	primary, err := r.Registry.Get(product.ProviderID)
	if err != nil {
		r.Logger.Error("no adapter for product's provider",
			slog.String("provider", product.ProviderID), slog.String("product", product.ID))
		return Result{
			Outcome: providers.Outcome{Status: providers.OutcomeFailed, Message: "product is not available right now"},
			Product: product,
		}
	}

	outcome := primary.SubmitPurchase(ctx, product, target, reference)
	if outcome.Status != providers.OutcomeFailed || !outcome.Unavailable {
		return Result{Outcome: outcome, Product: product}
	}

	r.Logger.Info("primary provider rejected product as unavailable",
		slog.String("provider", product.ProviderID),
		slog.String("product", product.ID),
		slog.String("reference", reference))

	substitute, err := r.Catalog.FindSubstitute(ctx, product)
	if err != nil {
		if !errors.Is(err, storage.ErrNoSubstitute) {
			r.Logger.Error("substitute lookup failed", slog.String("reference", reference), slog.Any("error", err))
		} else if deactivateErr := r.Catalog.DeactivateProduct(ctx, product.ID); deactivateErr != nil {
			r.Logger.Error("failed to deactivate unavailable product",
				slog.String("product", product.ID), slog.Any("error", deactivateErr))
		}
		return Result{Outcome: outcome, Product: product}
	}

	// The catalog query already filters on price, but a mispriced substitute
	// must never reach a provider: the customer is charged the original
	// sale price.
	if substitute.SalePrice != product.SalePrice {
		r.Logger.Error("substitute price mismatch, refusing substitution",
			slog.String("product", product.ID), slog.String("substitute", substitute.ID))
		return Result{Outcome: outcome, Product: product}
	}

	alternate, err := r.Registry.Get(substitute.ProviderID)
	if err != nil {
		r.Logger.Error("no adapter for substitute's provider",
			slog.String("provider", substitute.ProviderID), slog.String("substitute", substitute.ID))
		return Result{Outcome: outcome, Product: product}
	}

	r.Logger.Info("retrying via substitute product",
		slog.String("substitute", substitute.ID),
		slog.String("provider", substitute.ProviderID),
		slog.String("reference", reference))

	retried := alternate.SubmitPurchase(ctx, substitute, target, reference)
	return Result{Outcome: retried, Product: substitute, Substituted: true}
}
