// Package tag defines the shared domain types of the ledger: the Tag record
// and its lifecycle states, the typed error taxonomy, deployment parameters,
// emitted events, and the interfaces for the external collaborators (height
// clock, settlement provider, event sink).
package tag

// State is the lifecycle state of a tag.
//
// A tag starts PENDING and moves to exactly one of the three terminal
// states. Terminal tags are retained for audit and never transition again.
type State string

const (
	// StatePending is the initial state; the tag is open for payment.
	StatePending State = "PENDING"

	// StatePaid is terminal; settlement succeeded and payment_height is set.
	StatePaid State = "PAID"

	// StateCanceled is terminal; the creator withdrew the request.
	StateCanceled State = "CANCELED"

	// StateExpired is terminal; the tag crossed its expiry height unpaid.
	StateExpired State = "EXPIRED"
)

// Terminal reports whether the state admits no further transitions.
func (s State) Terminal() bool {
	return s == StatePaid || s == StateCanceled || s == StateExpired
}

// Tag is a single payment request.
//
// Identity fields (everything except State and PaymentHeight) are immutable
// once the tag is stored. State and PaymentHeight change only through the
// transitions defined on Ledger.
type Tag struct {
	ID        uint64 `json:"id"`
	Creator   string `json:"creator"`
	Recipient string `json:"recipient"`
	Amount    uint64 `json:"amount"`
	CreatedAt uint64 `json:"created_at"`
	ExpiresAt uint64 `json:"expires_at"`
	Memo      string `json:"memo,omitempty"` // empty means no memo
	State     State  `json:"state"`

	// PaymentHeight is the height at which the tag became PAID.
	// Zero unless State == StatePaid.
	PaymentHeight uint64 `json:"payment_height,omitempty"`
}

// Fulfillable reports whether the tag can still be paid at the given height.
// The fulfillment window is exclusive: a tag at exactly its expiry height is
// no longer fulfillable.
func (t *Tag) Fulfillable(height uint64) bool {
	return t.State == StatePending && height < t.ExpiresAt
}

// Expirable reports whether the tag can be expired at the given height.
// Expiry is inclusive: the complement of the fulfillment window, so a tag is
// never simultaneously fulfillable and expirable.
func (t *Tag) Expirable(height uint64) bool {
	return t.State == StatePending && height >= t.ExpiresAt
}

// Counter names bumped by successful transitions.
const (
	CounterCreated   = "tags-created"
	CounterFulfilled = "tags-fulfilled"
	CounterCanceled  = "tags-canceled"
	CounterExpired   = "tags-expired"
)
