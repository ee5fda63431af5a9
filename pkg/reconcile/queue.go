package reconcile

// SweepMessage is the queue payload the sweep emits for each stuck
// transaction, consumed by the repair worker.
type SweepMessage struct {
	Reference string `json:"reference"`
}
