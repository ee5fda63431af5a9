package notifier

import (
	"context"

	"github.com/tunde/vend-settlement/pkg/models"
)

// Emitter defines the interface for handing a notification to the
// downstream delivery collaborator. Emission is fire-and-forget: callers
// log a failed enqueue but never fail a purchase over it.
type Emitter interface {
	// Enqueue hands off a notification for asynchronous delivery.
	Enqueue(ctx context.Context, notification models.Notification) error
}

// NoOpEmitter is an Emitter that does nothing.
type NoOpEmitter struct{}

// Enqueue does nothing.
func (e *NoOpEmitter) Enqueue(ctx context.Context, notification models.Notification) error {
	return nil
}
