package providers

// OutcomeStatus is the canonical classification every provider response is
// reduced to, however that provider happens to signal success.
type OutcomeStatus string

const (
	// OutcomeFulfilled means the provider delivered synchronously.
	OutcomeFulfilled OutcomeStatus = "FULFILLED"
	// OutcomeAccepted means the provider queued the fulfillment and will
	// report the final result via callback.
	OutcomeAccepted OutcomeStatus = "ACCEPTED"
	// OutcomeUnknown means the call timed out or the response was too
	// ambiguous to classify. The provider may still fulfill and call back,
	// so this is never treated as a failure.
	OutcomeUnknown OutcomeStatus = "UNKNOWN"
	// OutcomeFailed means the provider rejected the purchase terminally.
	OutcomeFailed OutcomeStatus = "FAILED"
)

// Outcome is the normalized result of one provider submission.
type Outcome struct {
	Status OutcomeStatus

	// Message is the provider's human-readable result, safe to surface to
	// the customer.
	Message string

	// RawPayload carries the unparsed response body for diagnostics.
	RawPayload string

	// Unavailable is set on a FAILED outcome when the rejection matched the
	// provider's "product unavailable" pattern. The fallback router keys off
	// this to attempt a substitute.
	Unavailable bool
}
