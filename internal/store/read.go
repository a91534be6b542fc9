package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/roach88/tagvault/internal/tag"
)

// Info is the aggregate contract snapshot exposed by the query surface.
type Info struct {
	Admin       string `json:"admin"`
	Paused      bool   `json:"paused"`
	TotalIssued uint64 `json:"total_issued"`
}

// Info returns the aggregate contract snapshot.
func (s *Store) Info(ctx context.Context) (Info, error) {
	var info Info
	var next uint64
	err := s.db.QueryRowContext(ctx, `
		SELECT admin, paused, next_tag_id FROM contract WHERE id = 1
	`).Scan(&info.Admin, &info.Paused, &next)
	if errors.Is(err, sql.ErrNoRows) {
		return Info{}, ErrNotInitialized
	}
	if err != nil {
		return Info{}, fmt.Errorf("read contract info: %w", err)
	}
	info.TotalIssued = next - 1
	return info, nil
}

// Params returns the fixed deployment parameters.
func (s *Store) Params(ctx context.Context) (tag.Params, error) {
	var p tag.Params
	err := s.db.QueryRowContext(ctx, `
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

// GetTag returns the tag by id. Fails with NOT_FOUND only if the id was
// never issued.
func (s *Store) GetTag(ctx context.Context, id uint64) (*tag.Tag, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, creator, recipient, amount, created_at, expires_at, memo, state, payment_height
		FROM tags WHERE id = ?
	`, id)
	return scanTag(row, id)
}

// BatchTags returns the tags for the given ids, in input order, silently
// skipping ids that were never issued. The input is bounded by tag.BatchLimit.
func (s *Store) BatchTags(ctx context.Context, ids []uint64) ([]tag.Tag, error) {
	if len(ids) > tag.BatchLimit {
		return nil, fmt.Errorf("batch of %d exceeds limit of %d", len(ids), tag.BatchLimit)
	}
	tags := make([]tag.Tag, 0, len(ids))
	for _, id := range ids {
		tg, err := s.GetTag(ctx, id)
		if tag.IsNotFound(err) {
			continue
		}
		if err != nil {
			return nil, err
		}
		tags = append(tags, *tg)
	}
	return tags, nil
}

// ListByCreator returns the indexed tag ids created by principal, in append
// order. Empty slice for unknown principals, never an error.
func (s *Store) ListByCreator(ctx context.Context, principal string) ([]uint64, error) {
	return s.listParticipants(ctx, principal, RoleCreator)
}

// ListByRecipient returns the indexed tag ids addressed to principal, in
// append order. Empty slice for unknown principals, never an error.
func (s *Store) ListByRecipient(ctx context.Context, principal string) ([]uint64, error) {
	return s.listParticipants(ctx, principal, RoleRecipient)
}

func (s *Store) listParticipants(ctx context.Context, principal string, role Role) ([]uint64, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT tag_id FROM participant_index
		WHERE principal = ? AND role = ?
		ORDER BY position ASC
	`, principal, string(role))
	if err != nil {
		return nil, fmt.Errorf("query index: %w", err)
	}
	defer rows.Close()

	ids := []uint64{}
	for rows.Next() {
		var id uint64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan index entry: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate index: %w", err)
	}
	return ids, nil
}

// Counter returns the named usage counter, zero for unknown names.
func (s *Store) Counter(ctx context.Context, name string) (uint64, error) {
	var value uint64
	err := s.db.QueryRowContext(ctx, `SELECT value FROM counters WHERE name = ?`, name).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("read counter %q: %w", name, err)
	}
	return value, nil
}

// scanTag decodes one tag row. Translates the no-rows case into NOT_FOUND.
func scanTag(row *sql.Row, id uint64) (*tag.Tag, error) {
	var tg tag.Tag
	var state string
	err := row.Scan(&tg.ID, &tg.Creator, &tg.Recipient, &tg.Amount,
		&tg.CreatedAt, &tg.ExpiresAt, &tg.Memo, &state, &tg.PaymentHeight)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, tag.Errorf(tag.CodeNotFound, id, "tag not found")
	}
	if err != nil {
		return nil, fmt.Errorf("scan tag: %w", err)
	}
	tg.State = tag.State(state)
	return &tg, nil
}
