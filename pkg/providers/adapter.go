package providers

import (
	"context"
	"fmt"
	"time"

	"github.com/tunde/vend-settlement/pkg/models"
)

// DefaultTimeout bounds every outbound provider call. Exceeding it yields
// an UNKNOWN outcome, never a failure.
const DefaultTimeout = 30 * time.Second

// Adapter normalizes one external provider's API into the canonical
// Outcome. Implementations issue exactly one bounded HTTP call per
// submission, carrying the reference as an idempotency token and a
// callback URL, and never retry on their own: providers disagree on
// whether replaying a reference is safe.
type Adapter interface {
	// Name returns the provider ID this adapter serves.
	Name() string

	// SubmitPurchase submits one purchase to the provider and classifies
	// the response. Transport-level failures are reported through the
	// Outcome, not as an error: once the request may have left the process,
	// "it failed" is not knowable.
	SubmitPurchase(ctx context.Context, product *models.Product, target, reference string) Outcome
}

// Config carries one provider's credentials and endpoints. Injected into
// the adapter constructor so adapters stay testable with fixture values.
type Config struct {
	BaseURL     string
	APIKey      string
	CallbackURL string
	Timeout     time.Duration
}

func (c Config) timeout() time.Duration {
	if c.Timeout <= 0 {
		return DefaultTimeout
	}
	return c.Timeout
}

// Registry maps provider IDs to their adapters.
type Registry map[string]Adapter

// NewRegistry builds a registry from the given adapters, keyed by Name().
func NewRegistry(adapters ...Adapter) Registry {
	r := make(Registry, len(adapters))
	for _, a := range adapters {
		r[a.Name()] = a
	}
	return r
}

// Get returns the adapter for a provider ID.
func (r Registry) Get(providerID string) (Adapter, error) {
	a, ok := r[providerID]
	if !ok {
		return nil, fmt.Errorf("no adapter registered for provider %s", providerID)
	}
	return a, nil
}
