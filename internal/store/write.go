package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/roach88/tagvault/internal/tag"
)

// Role distinguishes the two participant index sequences.
type Role string

const (
	RoleCreator   Role = "creator"
	RoleRecipient Role = "recipient"
)

// Tx is a single ledger transaction. All reads inside a Tx observe pending
// writes of the same Tx; nothing is visible outside until commit.
type Tx struct {
	tx  *sql.Tx
	ctx context.Context
}

// Params returns the deployment parameters from the contract row.
func (t *Tx) Params() (tag.Params, error) {
	var p tag.Params
	err := t.tx.QueryRowContext(t.ctx, `
		SELECT admin, min_amount, max_duration, max_memo_bytes FROM contract WHERE id = 1
	`).Scan(&p.Admin, &p.MinAmount, &p.MaxDuration, &p.MaxMemoBytes)
	if errors.Is(err, sql.ErrNoRows) {
		return tag.Params{}, ErrNotInitialized
	}
	if err != nil {
		return tag.Params{}, fmt.Errorf("read params: %w", err)
	}
	return p, nil
}

// Paused returns the administrative pause flag.
func (t *Tx) Paused() (bool, error) {
	var paused bool
	err := t.tx.QueryRowContext(t.ctx, `SELECT paused FROM contract WHERE id = 1`).Scan(&paused)
	if errors.Is(err, sql.ErrNoRows) {
		return false, ErrNotInitialized
	}
	if err != nil {
		return false, fmt.Errorf("read pause flag: %w", err)
	}
	return paused, nil
}

// SetPaused writes the administrative pause flag.
func (t *Tx) SetPaused(paused bool) error {
	if _, err := t.tx.ExecContext(t.ctx, `UPDATE contract SET paused = ? WHERE id = 1`, paused); err != nil {
		return fmt.Errorf("set pause flag: %w", err)
	}
	return nil
}

// AllocateTagID issues the next tag id and advances the allocator.
// Ids are dense and start at 1. The advance commits or rolls back together
// with the tag insert, so ids are never skipped.
func (t *Tx) AllocateTagID() (uint64, error) {
	var id uint64
	err := t.tx.QueryRowContext(t.ctx, `SELECT next_tag_id FROM contract WHERE id = 1`).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, ErrNotInitialized
	}
	if err != nil {
		return 0, fmt.Errorf("read allocator: %w", err)
	}
	if _, err := t.tx.ExecContext(t.ctx, `UPDATE contract SET next_tag_id = ? WHERE id = 1`, id+1); err != nil {
		return 0, fmt.Errorf("advance allocator: %w", err)
	}
	return id, nil
}

// InsertTag stores a new tag. The id must be fresh; a collision reports
// ALREADY_EXISTS (cannot happen when ids come from AllocateTagID in the
// same transaction).
func (t *Tx) InsertTag(tg tag.Tag) error {
	res, err := t.tx.ExecContext(t.ctx, `
		INSERT INTO tags (id, creator, recipient, amount, created_at, expires_at, memo, state, payment_height)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO NOTHING
	`, tg.ID, tg.Creator, tg.Recipient, tg.Amount, tg.CreatedAt, tg.ExpiresAt, tg.Memo, string(tg.State), tg.PaymentHeight)
	if err != nil {
		return fmt.Errorf("insert tag: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("insert tag: %w", err)
	}
	if n == 0 {
		return tag.Errorf(tag.CodeAlreadyExists, tg.ID, "tag id already exists")
	}
	return nil
}

// GetTag returns the tag by id, observing pending writes of this Tx.
func (t *Tx) GetTag(id uint64) (*tag.Tag, error) {
	row := t.tx.QueryRowContext(t.ctx, `
		SELECT id, creator, recipient, amount, created_at, expires_at, memo, state, payment_height
		FROM tags WHERE id = ?
	`, id)
	return scanTag(row, id)
}

// SetTagState transitions a tag. paymentHeight is meaningful only for the
// transition to PAID and must be zero otherwise.
func (t *Tx) SetTagState(id uint64, state tag.State, paymentHeight uint64) error {
	res, err := t.tx.ExecContext(t.ctx, `
		UPDATE tags SET state = ?, payment_height = ? WHERE id = ?
	`, string(state), paymentHeight, id)
	if err != nil {
		return fmt.Errorf("set tag state: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("set tag state: %w", err)
	}
	if n == 0 {
		return tag.Errorf(tag.CodeNotFound, id, "tag not found")
	}
	return nil
}

// RecordParticipant appends tagID to the principal's index sequence for the
// given role, unless the sequence is already at tag.IndexCap. Returns whether
// the append happened. A false return is not an error: the index is advisory
// and the tag store stays authoritative.
func (t *Tx) RecordParticipant(principal string, role Role, tagID uint64) (bool, error) {
	var length int
	err := t.tx.QueryRowContext(t.ctx, `
		SELECT COUNT(*) FROM participant_index WHERE principal = ? AND role = ?
	`, principal, string(role)).Scan(&length)
	if err != nil {
		return false, fmt.Errorf("count index entries: %w", err)
	}
	if length >= tag.IndexCap {
		return false, nil
	}
	_, err = t.tx.ExecContext(t.ctx, `
		INSERT INTO participant_index (principal, role, position, tag_id)
		VALUES (?, ?, ?, ?)
	`, principal, string(role), length, tagID)
	if err != nil {
		return false, fmt.Errorf("append index entry: %w", err)
	}
	return true, nil
}

// BumpCounter increments the named counter, creating it at 1 if absent.
func (t *Tx) BumpCounter(name string) error {
	_, err := t.tx.ExecContext(t.ctx, `
		INSERT INTO counters (name, value) VALUES (?, 1)
		ON CONFLICT(name) DO UPDATE SET value = value + 1
	`, name)
	if err != nil {
		return fmt.Errorf("bump counter %q: %w", name, err)
	}
	return nil
}
