// Package ledger implements the tag lifecycle state machine.
//
// Every mutating operation runs as one store transaction: preconditions are
// checked in a fixed order against transactional reads, and all writes (tag
// record, participant index, usage counters) commit together or not at all.
// The host execution environment is assumed to be single-writer: one
// invocation completes fully before the next begins, so a state check and
// the write that depends on it belong to the same indivisible invocation.
package ledger

import (
	"context"

	"github.com/roach88/tagvault/internal/store"
	"github.com/roach88/tagvault/internal/tag"
)

// Ledger owns the tag state machine. It consumes a height clock and a
// settlement provider and emits one event per successful operation.
type Ledger struct {
	store      *store.Store
	clock      tag.Clock
	settlement tag.Settlement
	sink       tag.Sink
}

// New constructs a Ledger. A nil sink drops events.
func New(st *store.Store, clock tag.Clock, settlement tag.Settlement, sink tag.Sink) *Ledger {
	return &Ledger{store: st, clock: clock, settlement: settlement, sink: sink}
}

// CreateInput carries the caller-supplied fields of a create operation.
// A nil Memo means no memo; a non-nil Memo must be non-empty and within
// the configured byte bound.
type CreateInput struct {
	Recipient string
	Amount    uint64
	Duration  uint64
	Memo      *string
}

// Create opens a new payment request and returns its id.
//
// Precondition order: pause gate, recipient, amount, duration, self-payment,
// memo. The first failing check aborts with no state change.
func (l *Ledger) Create(ctx context.Context, caller string, in CreateInput) (uint64, error) {
	now := l.clock.Height()

	var created tag.Tag
	err := l.store.Update(ctx, func(tx *store.Tx) error {
		if err := requireUnpaused(tx); err != nil {
			return err
		}
		params, err := tx.Params()
		if err != nil {
			return err
		}

		if in.Recipient == "" {
			return tag.Errorf(tag.CodeInvalidRecipient, 0, "recipient must not be empty")
		}
		if in.Amount < params.MinAmount {
			return tag.Errorf(tag.CodeInvalidAmount, 0, "amount %d below minimum %d", in.Amount, params.MinAmount)
		}
		if in.Duration == 0 {
			return tag.Errorf(tag.CodeInvalidAmount, 0, "duration must be positive")
		}
		if in.Duration > params.MaxDuration {
			return tag.Errorf(tag.CodeDurationExceeded, 0, "duration %d exceeds maximum %d", in.Duration, params.MaxDuration)
		}
		if caller == in.Recipient {
			return tag.Errorf(tag.CodeSelfPayment, 0, "creator and recipient must differ")
		}

		memo := ""
		if in.Memo != nil {
			memo = tag.NormalizeMemo(*in.Memo)
			if memo == "" {
				return tag.Errorf(tag.CodeEmptyMemo, 0, "memo must not be empty")
			}
			if uint64(len(memo)) > params.MaxMemoBytes {
				return tag.Errorf(tag.CodeEmptyMemo, 0, "memo exceeds %d bytes", params.MaxMemoBytes)
			}
		}

		id, err := tx.AllocateTagID()
		if err != nil {
			return err
		}
		created = tag.Tag{
			ID:        id,
			Creator:   caller,
			Recipient: in.Recipient,
			Amount:    in.Amount,
			CreatedAt: now,
			ExpiresAt: now + in.Duration,
			Memo:      memo,
			State:     tag.StatePending,
		}
		if err := tx.InsertTag(created); err != nil {
			return err
		}

		// Best-effort: a principal already at the index cap keeps the tag
		// but drops out of the index. Creation still succeeds.
		if _, err := tx.RecordParticipant(caller, store.RoleCreator, id); err != nil {
			return err
		}
		if _, err := tx.RecordParticipant(in.Recipient, store.RoleRecipient, id); err != nil {
			return err
		}

		return tx.BumpCounter(tag.CounterCreated)
	})
	if err != nil {
		return 0, err
	}

	l.emit(tag.Event{
		EventID:   tag.NewEventID(),
		Kind:      tag.EventTagCreated,
		TagID:     created.ID,
		Creator:   created.Creator,
		Recipient: created.Recipient,
		Amount:    created.Amount,
		ExpiresAt: created.ExpiresAt,
		Memo:      created.Memo,
	})
	return created.ID, nil
}

// Fulfill pays a pending tag. Any identity may pay; the settlement provider
// performs the actual debit from the caller. The transfer runs inside the
// transaction boundary: a provider failure aborts with TRANSFER_FAILED and
// the tag stays PENDING, retryable until expiry.
func (l *Ledger) Fulfill(ctx context.Context, caller string, tagID uint64) (uint64, error) {
	now := l.clock.Height()

	var fulfilled tag.Tag
	err := l.store.Update(ctx, func(tx *store.Tx) error {
		if err := requireUnpaused(tx); err != nil {
			return err
		}
		tg, err := tx.GetTag(tagID)
		if err != nil {
			return err
		}
		if tg.State != tag.StatePending {
			return tag.Errorf(tag.CodeNotPending, tagID, "tag is %s", tg.State)
		}
		// Exclusive fulfillment window: at the expiry height the tag is
		// already expirable, never payable.
		if now >= tg.ExpiresAt {
			return tag.Errorf(tag.CodeExpired, tagID, "tag expired at height %d", tg.ExpiresAt)
		}

		if err := l.settlement.Transfer(ctx, tg.Amount, caller, tg.Recipient); err != nil {
			return tag.Errorf(tag.CodeTransferFailed, tagID, "transfer failed: %v", err)
		}

		if err := tx.SetTagState(tagID, tag.StatePaid, now); err != nil {
			return err
		}
		fulfilled = *tg
		return tx.BumpCounter(tag.CounterFulfilled)
	})
	if err != nil {
		return 0, err
	}

	l.emit(tag.Event{
		EventID:   tag.NewEventID(),
		Kind:      tag.EventTagFulfilled,
		TagID:     tagID,
		Payer:     caller,
		Recipient: fulfilled.Recipient,
		Amount:    fulfilled.Amount,
		Height:    now,
	})
	return tagID, nil
}

// Cancel withdraws a pending tag. Only the creator may cancel.
// Deliberately exempt from the pause gate so creators can withdraw requests
// regardless of admin state.
func (l *Ledger) Cancel(ctx context.Context, caller string, tagID uint64) (uint64, error) {
	var creator string
	err := l.store.Update(ctx, func(tx *store.Tx) error {
		tg, err := tx.GetTag(tagID)
		if err != nil {
			return err
		}
		if caller != tg.Creator {
			return tag.Errorf(tag.CodeUnauthorized, tagID, "only the creator may cancel")
		}
		if tg.State != tag.StatePending {
			return tag.Errorf(tag.CodeNotPending, tagID, "tag is %s", tg.State)
		}
		if err := tx.SetTagState(tagID, tag.StateCanceled, 0); err != nil {
			return err
		}
		creator = tg.Creator
		return tx.BumpCounter(tag.CounterCanceled)
	})
	if err != nil {
		return 0, err
	}

	l.emit(tag.Event{
		EventID: tag.NewEventID(),
		Kind:    tag.EventTagCanceled,
		TagID:   tagID,
		Creator: creator,
	})
	return tagID, nil
}

// Expire marks a pending tag past its expiry height as EXPIRED.
// Callable by any identity once the height condition holds; expiry is
// inclusive of the boundary height.
func (l *Ledger) Expire(ctx context.Context, caller string, tagID uint64) (uint64, error) {
	now := l.clock.Height()

	err := l.store.Update(ctx, func(tx *store.Tx) error {
		if err := requireUnpaused(tx); err != nil {
			return err
		}
		tg, err := tx.GetTag(tagID)
		if err != nil {
			return err
		}
		if tg.State != tag.StatePending {
			return tag.Errorf(tag.CodeNotPending, tagID, "tag is %s", tg.State)
		}
		if now < tg.ExpiresAt {
			return tag.Errorf(tag.CodeExpired, tagID, "tag not expirable until height %d", tg.ExpiresAt)
		}
		if err := tx.SetTagState(tagID, tag.StateExpired, 0); err != nil {
			return err
		}
		return tx.BumpCounter(tag.CounterExpired)
	})
	if err != nil {
		return 0, err
	}

	l.emit(tag.Event{
		EventID:   tag.NewEventID(),
		Kind:      tag.EventTagExpired,
		TagID:     tagID,
		ExpiredBy: caller,
	})
	return tagID, nil
}

// TogglePause flips the administrative pause flag and returns the new state.
// Only the admin identity fixed at init may toggle.
func (l *Ledger) TogglePause(ctx context.Context, caller string) (bool, error) {
	var paused bool
	err := l.store.Update(ctx, func(tx *store.Tx) error {
		params, err := tx.Params()
		if err != nil {
			return err
		}
		if caller != params.Admin {
			return tag.Errorf(tag.CodeUnauthorized, 0, "only the admin may toggle the pause flag")
		}
		current, err := tx.Paused()
		if err != nil {
			return err
		}
		paused = !current
		return tx.SetPaused(paused)
	})
	if err != nil {
		return false, err
	}

	l.emit(tag.Event{
		EventID: tag.NewEventID(),
		Kind:    tag.EventPauseToggled,
		Paused:  &paused,
	})
	return paused, nil
}

// GetTag returns the tag by id. Fails only if the id was never issued.
func (l *Ledger) GetTag(ctx context.Context, tagID uint64) (*tag.Tag, error) {
	return l.store.GetTag(ctx, tagID)
}

// BatchTags returns up to tag.BatchLimit tags by id, skipping unknown ids.
func (l *Ledger) BatchTags(ctx context.Context, ids []uint64) ([]tag.Tag, error) {
	return l.store.BatchTags(ctx, ids)
}

// ListByCreator returns the indexed tag ids created by principal.
func (l *Ledger) ListByCreator(ctx context.Context, principal string) ([]uint64, error) {
	return l.store.ListByCreator(ctx, principal)
}

// ListByRecipient returns the indexed tag ids addressed to principal.
func (l *Ledger) ListByRecipient(ctx context.Context, principal string) ([]uint64, error) {
	return l.store.ListByRecipient(ctx, principal)
}

// Counter returns the named usage counter, zero for unknown names.
func (l *Ledger) Counter(ctx context.Context, name string) (uint64, error) {
	return l.store.Counter(ctx, name)
}

// Info returns the aggregate contract snapshot.
func (l *Ledger) Info(ctx context.Context) (store.Info, error) {
	return l.store.Info(ctx)
}

// IsExpirable reports whether a pending tag has crossed its expiry height at
// the clock's current height. Read-only; terminal tags report false.
func (l *Ledger) IsExpirable(ctx context.Context, tagID uint64) (bool, error) {
	tg, err := l.store.GetTag(ctx, tagID)
	if err != nil {
		return false, err
	}
	return tg.Expirable(l.clock.Height()), nil
}

func (l *Ledger) emit(ev tag.Event) {
	if l.sink != nil {
		l.sink.Emit(ev)
	}
}

// requireUnpaused rejects with UNAUTHORIZED while the pause gate is set.
func requireUnpaused(tx *store.Tx) error {
	paused, err := tx.Paused()
	if err != nil {
		return err
	}
	if paused {
		return tag.Errorf(tag.CodeUnauthorized, 0, "ledger is paused")
	}
	return nil
}
