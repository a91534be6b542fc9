package tag

import (
	"log/slog"

	"github.com/google/uuid"
)

// EventKind identifies the operation an event records.
type EventKind string

const (
	EventTagCreated   EventKind = "tag-created"
	EventTagFulfilled EventKind = "tag-fulfilled"
	EventTagCanceled  EventKind = "tag-canceled"
	EventTagExpired   EventKind = "tag-expired"
	EventPauseToggled EventKind = "pause-toggled"
)

// Event is the structured record emitted once per successful operation.
//
// Only the fields relevant to the event's kind are populated. Emission is
// fire-and-forget: the ledger never waits on or fails because of the sink.
type Event struct {
	// EventID is a UUIDv7, unique per emission.
	EventID string    `json:"event_id"`
	Kind    EventKind `json:"kind"`
	TagID   uint64    `json:"tag_id,omitempty"`

	Creator   string `json:"creator,omitempty"`
	Recipient string `json:"recipient,omitempty"`
	Amount    uint64 `json:"amount,omitempty"`
	ExpiresAt uint64 `json:"expires_at,omitempty"`
	Memo      string `json:"memo,omitempty"`

	Payer  string `json:"payer,omitempty"`
	Height uint64 `json:"height,omitempty"`

	ExpiredBy string `json:"expired_by,omitempty"`

	Paused *bool `json:"paused,omitempty"`
}

// Sink receives events. Implementations must not block; the ledger does not
// await acknowledgment.
type Sink interface {
	Emit(Event)
}

// SlogSink logs each event as one structured record.
type SlogSink struct {
	Logger *slog.Logger
}

// Emit logs the event at info level.
func (s SlogSink) Emit(ev Event) {
	logger := s.Logger
	if logger == nil {
		logger = slog.Default()
	}
	attrs := []any{
		slog.String("event_id", ev.EventID),
		slog.String("kind", string(ev.Kind)),
	}
	if ev.TagID != 0 {
		attrs = append(attrs, slog.Uint64("tag_id", ev.TagID))
	}
	switch ev.Kind {
	case EventTagCreated:
		attrs = append(attrs,
			slog.String("creator", ev.Creator),
			slog.String("recipient", ev.Recipient),
			slog.Uint64("amount", ev.Amount),
			slog.Uint64("expires_at", ev.ExpiresAt),
		)
		if ev.Memo != "" {
			attrs = append(attrs, slog.String("memo", ev.Memo))
		}
	case EventTagFulfilled:
		attrs = append(attrs,
			slog.String("payer", ev.Payer),
			slog.String("recipient", ev.Recipient),
			slog.Uint64("amount", ev.Amount),
			slog.Uint64("height", ev.Height),
		)
	case EventTagCanceled:
		attrs = append(attrs, slog.String("creator", ev.Creator))
	case EventTagExpired:
		attrs = append(attrs, slog.String("expired_by", ev.ExpiredBy))
	case EventPauseToggled:
		if ev.Paused != nil {
			attrs = append(attrs, slog.Bool("paused", *ev.Paused))
		}
	}
	logger.Info("ledger event", attrs...)
}

// newEventID returns a UUIDv7 string.
// UUIDv7 is time-ordered, so event ids sort in emission order.
func NewEventID() string {
	return uuid.Must(uuid.NewV7()).String()
}
