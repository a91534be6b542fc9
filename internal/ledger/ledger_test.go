package ledger

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/tagvault/internal/store"
	"github.com/roach88/tagvault/internal/tag"
	"github.com/roach88/tagvault/internal/testutil"
)

// fixture wires a fresh in-memory ledger with deterministic collaborators.
type fixture struct {
	ledger     *Ledger
	clock      *testutil.Clock
	settlement *testutil.Settlement
	sink       *testutil.Sink
	store      *store.Store
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	st, err := store.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	params := tag.DefaultParams()
	params.Admin = "admin"
	require.NoError(t, st.Init(context.Background(), params))

	clock := testutil.NewClock()
	settlement := testutil.NewSettlement()
	sink := testutil.NewSink()

	return &fixture{
		ledger:     New(st, clock, settlement, sink),
		clock:      clock,
		settlement: settlement,
		sink:       sink,
		store:      st,
	}
}

func strptr(s string) *string { return &s }

// createTag opens a standard alice->bob tag and returns its id.
func (f *fixture) createTag(t *testing.T) uint64 {
	t.Helper()
	id, err := f.ledger.Create(context.Background(), "alice", CreateInput{
		Recipient: "bob",
		Amount:    2000,
		Duration:  100,
	})
	require.NoError(t, err)
	return id
}

func TestCreate_HappyPath(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.clock.Set(10)

	id, err := f.ledger.Create(ctx, "alice", CreateInput{
		Recipient: "bob",
		Amount:    2000,
		Duration:  100,
		Memo:      strptr("rent"),
	})
	require.NoError(t, err)
	assert.Equal(t, uint64(1), id)

	tg, err := f.ledger.GetTag(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, tag.StatePending, tg.State)
	assert.Equal(t, "alice", tg.Creator)
	assert.Equal(t, "bob", tg.Recipient)
	assert.Equal(t, uint64(2000), tg.Amount)
	assert.Equal(t, uint64(10), tg.CreatedAt)
	assert.Equal(t, uint64(110), tg.ExpiresAt)
	assert.Equal(t, "rent", tg.Memo)
	assert.Zero(t, tg.PaymentHeight)

	count, err := f.ledger.Counter(ctx, tag.CounterCreated)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), count)

	// Creation touches no other counter.
	for _, name := range []string{tag.CounterFulfilled, tag.CounterCanceled, tag.CounterExpired} {
		count, err := f.ledger.Counter(ctx, name)
		require.NoError(t, err)
		assert.Zero(t, count, name)
	}

	ev := f.sink.Last()
	assert.Equal(t, tag.EventTagCreated, ev.Kind)
	assert.Equal(t, uint64(1), ev.TagID)
	assert.Equal(t, "alice", ev.Creator)
	assert.Equal(t, "bob", ev.Recipient)
	assert.Equal(t, uint64(110), ev.ExpiresAt)
	assert.Equal(t, "rent", ev.Memo)
	assert.NotEmpty(t, ev.EventID)
}

func TestCreate_IDsDenseFromOne(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	for want := uint64(1); want <= 5; want++ {
		id, err := f.ledger.Create(ctx, "alice", CreateInput{Recipient: "bob", Amount: 2000, Duration: 10})
		require.NoError(t, err)
		assert.Equal(t, want, id)
	}

	// A rejected create does not burn an id.
	_, err := f.ledger.Create(ctx, "alice", CreateInput{Recipient: "alice", Amount: 2000, Duration: 10})
	require.Error(t, err)

	id, err := f.ledger.Create(ctx, "alice", CreateInput{Recipient: "bob", Amount: 2000, Duration: 10})
	require.NoError(t, err)
	assert.Equal(t, uint64(6), id)
}

func TestCreate_ValidationFailures(t *testing.T) {
	tests := []struct {
		name string
		call func(f *fixture) error
		code tag.Code
	}{
		{
			name: "empty recipient",
			call: func(f *fixture) error {
				_, err := f.ledger.Create(context.Background(), "alice", CreateInput{Amount: 2000, Duration: 10})
				return err
			},
			code: tag.CodeInvalidRecipient,
		},
		{
			name: "amount below minimum",
			call: func(f *fixture) error {
				_, err := f.ledger.Create(context.Background(), "alice", CreateInput{Recipient: "bob", Amount: 999, Duration: 10})
				return err
			},
			code: tag.CodeInvalidAmount,
		},
		{
			name: "zero duration",
			call: func(f *fixture) error {
				_, err := f.ledger.Create(context.Background(), "alice", CreateInput{Recipient: "bob", Amount: 2000})
				return err
			},
			code: tag.CodeInvalidAmount,
		},
		{
			name: "duration over maximum",
			call: func(f *fixture) error {
				_, err := f.ledger.Create(context.Background(), "alice", CreateInput{Recipient: "bob", Amount: 2000, Duration: tag.DefaultMaxDuration + 1})
				return err
			},
			code: tag.CodeDurationExceeded,
		},
		{
			name: "self payment",
			call: func(f *fixture) error {
				_, err := f.ledger.Create(context.Background(), "alice", CreateInput{Recipient: "alice", Amount: 2000, Duration: 10})
				return err
			},
			code: tag.CodeSelfPayment,
		},
		{
			name: "empty memo",
			call: func(f *fixture) error {
				_, err := f.ledger.Create(context.Background(), "alice", CreateInput{Recipient: "bob", Amount: 2000, Duration: 10, Memo: strptr("")})
				return err
			},
			code: tag.CodeEmptyMemo,
		},
		{
			name: "memo over bound",
			call: func(f *fixture) error {
				long := make([]byte, tag.DefaultMaxMemoBytes+1)
				for i := range long {
					long[i] = 'x'
				}
				memo := string(long)
				_, err := f.ledger.Create(context.Background(), "alice", CreateInput{Recipient: "bob", Amount: 2000, Duration: 10, Memo: &memo})
				return err
			},
			code: tag.CodeEmptyMemo,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			f := newFixture(t)

			err := tc.call(f)
			require.Error(t, err)
			assert.Equal(t, tc.code, tag.CodeOf(err))

			// No state change on failure: nothing stored, counter untouched,
			// no event emitted.
			_, err = f.ledger.GetTag(context.Background(), 1)
			assert.True(t, tag.IsNotFound(err))

			count, err := f.ledger.Counter(context.Background(), tag.CounterCreated)
			require.NoError(t, err)
			assert.Zero(t, count)
			assert.Empty(t, f.sink.Events())
		})
	}
}

func TestFulfill_HappyPath(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.clock.Set(10)
	id := f.createTag(t)

	f.clock.Set(50)
	got, err := f.ledger.Fulfill(ctx, "carol", id)
	require.NoError(t, err)
	assert.Equal(t, id, got)

	tg, err := f.ledger.GetTag(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, tag.StatePaid, tg.State)
	assert.Equal(t, uint64(50), tg.PaymentHeight)

	calls := f.settlement.Calls()
	require.Len(t, calls, 1)
	assert.Equal(t, testutil.Transfer{Amount: 2000, From: "carol", To: "bob"}, calls[0])

	count, err := f.ledger.Counter(ctx, tag.CounterFulfilled)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), count)

	ev := f.sink.Last()
	assert.Equal(t, tag.EventTagFulfilled, ev.Kind)
	assert.Equal(t, "carol", ev.Payer)
	assert.Equal(t, "bob", ev.Recipient)
	assert.Equal(t, uint64(50), ev.Height)

	// A second fulfill fails: the tag is terminal.
	_, err = f.ledger.Fulfill(ctx, "dave", id)
	assert.True(t, tag.IsNotPending(err))
}

func TestFulfill_TransferFailureLeavesTagPending(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.clock.Set(10)
	id := f.createTag(t)

	f.clock.Set(50)
	f.settlement.Fail("insufficient funds")
	_, err := f.ledger.Fulfill(ctx, "carol", id)
	require.Error(t, err)
	assert.True(t, tag.IsTransferFailed(err))

	tg, err := f.ledger.GetTag(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, tag.StatePending, tg.State)
	assert.Zero(t, tg.PaymentHeight)

	count, err := f.ledger.Counter(ctx, tag.CounterFulfilled)
	require.NoError(t, err)
	assert.Zero(t, count)

	// Retryable by any future caller until expiry.
	_, err = f.ledger.Fulfill(ctx, "dave", id)
	require.NoError(t, err)

	tg, err = f.ledger.GetTag(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, tag.StatePaid, tg.State)
}

func TestFulfill_ExpiryBoundary(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.clock.Set(10)
	id := f.createTag(t) // expires_at = 110

	// Strictly before expiry: payable.
	f.clock.Set(109)
	_, err := f.ledger.Fulfill(ctx, "carol", id)
	require.NoError(t, err)

	// At exactly the expiry height: rejected.
	f.clock.Set(10)
	id2 := f.createTag(t)
	f.clock.Set(110)
	_, err = f.ledger.Fulfill(ctx, "carol", id2)
	assert.True(t, tag.IsExpired(err))

	// Past expiry: rejected.
	f.clock.Set(111)
	_, err = f.ledger.Fulfill(ctx, "carol", id2)
	assert.True(t, tag.IsExpired(err))
}

func TestFulfill_UnknownTag(t *testing.T) {
	f := newFixture(t)

	_, err := f.ledger.Fulfill(context.Background(), "carol", 42)
	assert.True(t, tag.IsNotFound(err))
}

func TestCancel(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.clock.Set(10)
	id := f.createTag(t)

	// Only the creator may cancel.
	_, err := f.ledger.Cancel(ctx, "bob", id)
	assert.True(t, tag.IsUnauthorized(err))

	tg, err := f.ledger.GetTag(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, tag.StatePending, tg.State)

	_, err = f.ledger.Cancel(ctx, "alice", id)
	require.NoError(t, err)

	tg, err = f.ledger.GetTag(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, tag.StateCanceled, tg.State)

	count, err := f.ledger.Counter(ctx, tag.CounterCanceled)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), count)

	ev := f.sink.Last()
	assert.Equal(t, tag.EventTagCanceled, ev.Kind)
	assert.Equal(t, "alice", ev.Creator)

	// Terminal states never transition again.
	_, err = f.ledger.Cancel(ctx, "alice", id)
	assert.True(t, tag.IsNotPending(err))
	_, err = f.ledger.Fulfill(ctx, "carol", id)
	assert.True(t, tag.IsNotPending(err))
}

func TestExpire(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.clock.Set(10)
	id := f.createTag(t) // expires_at = 110

	// Premature: one height before the boundary.
	f.clock.Set(109)
	_, err := f.ledger.Expire(ctx, "anyone", id)
	require.Error(t, err)
	assert.True(t, tag.IsExpired(err))

	tg, err := f.ledger.GetTag(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, tag.StatePending, tg.State)

	// Inclusive boundary: expirable by any identity at exactly expires_at.
	f.clock.Set(110)
	_, err = f.ledger.Expire(ctx, "anyone", id)
	require.NoError(t, err)

	tg, err = f.ledger.GetTag(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, tag.StateExpired, tg.State)

	count, err := f.ledger.Counter(ctx, tag.CounterExpired)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), count)

	ev := f.sink.Last()
	assert.Equal(t, tag.EventTagExpired, ev.Kind)
	assert.Equal(t, "anyone", ev.ExpiredBy)

	_, err = f.ledger.Fulfill(ctx, "carol", id)
	assert.True(t, tag.IsNotPending(err))
}

func TestPauseGate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.clock.Set(10)
	id := f.createTag(t)

	// Only the admin may toggle.
	_, err := f.ledger.TogglePause(ctx, "mallory")
	assert.True(t, tag.IsUnauthorized(err))

	paused, err := f.ledger.TogglePause(ctx, "admin")
	require.NoError(t, err)
	assert.True(t, paused)

	ev := f.sink.Last()
	assert.Equal(t, tag.EventPauseToggled, ev.Kind)
	require.NotNil(t, ev.Paused)
	assert.True(t, *ev.Paused)

	// Paused: create, fulfill, and expire are rejected.
	_, err = f.ledger.Create(ctx, "alice", CreateInput{Recipient: "bob", Amount: 2000, Duration: 10})
	assert.True(t, tag.IsUnauthorized(err))
	_, err = f.ledger.Fulfill(ctx, "carol", id)
	assert.True(t, tag.IsUnauthorized(err))
	_, err = f.ledger.Expire(ctx, "anyone", id)
	assert.True(t, tag.IsUnauthorized(err))

	// Cancel stays available while paused.
	_, err = f.ledger.Cancel(ctx, "alice", id)
	require.NoError(t, err)

	paused, err = f.ledger.TogglePause(ctx, "admin")
	require.NoError(t, err)
	assert.False(t, paused)

	_, err = f.ledger.Create(ctx, "alice", CreateInput{Recipient: "bob", Amount: 2000, Duration: 10})
	require.NoError(t, err)
}

func TestParticipantIndex(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	id := f.createTag(t)

	ids, err := f.ledger.ListByCreator(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, []uint64{id}, ids)

	ids, err = f.ledger.ListByRecipient(ctx, "bob")
	require.NoError(t, err)
	assert.Equal(t, []uint64{id}, ids)

	// Unknown principals get an empty sequence, never an error.
	ids, err = f.ledger.ListByCreator(ctx, "nobody")
	require.NoError(t, err)
	assert.Empty(t, ids)
}

func TestParticipantIndex_CapIsNonFatal(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	// One past the cap. Each tag goes to a distinct recipient so only the
	// creator's index saturates.
	total := tag.IndexCap + 1
	for i := 0; i < total; i++ {
		_, err := f.ledger.Create(ctx, "alice", CreateInput{
			Recipient: fmt.Sprintf("recipient-%d", i),
			Amount:    2000,
			Duration:  10,
		})
		require.NoError(t, err)
	}

	// Index capped, store authoritative.
	ids, err := f.ledger.ListByCreator(ctx, "alice")
	require.NoError(t, err)
	assert.Len(t, ids, tag.IndexCap)
	assert.Equal(t, uint64(1), ids[0])
	assert.Equal(t, uint64(tag.IndexCap), ids[len(ids)-1])

	tg, err := f.ledger.GetTag(ctx, uint64(total))
	require.NoError(t, err)
	assert.Equal(t, tag.StatePending, tg.State)

	count, err := f.ledger.Counter(ctx, tag.CounterCreated)
	require.NoError(t, err)
	assert.Equal(t, uint64(total), count)
}

func TestBatchTags(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	id1 := f.createTag(t)
	id2 := f.createTag(t)

	tags, err := f.ledger.BatchTags(ctx, []uint64{id2, 99, id1})
	require.NoError(t, err)
	require.Len(t, tags, 2)
	assert.Equal(t, id2, tags[0].ID)
	assert.Equal(t, id1, tags[1].ID)

	over := make([]uint64, tag.BatchLimit+1)
	_, err = f.ledger.BatchTags(ctx, over)
	assert.Error(t, err)
}

func TestInfo(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	info, err := f.ledger.Info(ctx)
	require.NoError(t, err)
	assert.Equal(t, "admin", info.Admin)
	assert.False(t, info.Paused)
	assert.Zero(t, info.TotalIssued)

	f.createTag(t)
	f.createTag(t)

	info, err = f.ledger.Info(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint64(2), info.TotalIssued)
}

func TestIsExpirable(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.clock.Set(10)
	id := f.createTag(t) // expires_at = 110

	f.clock.Set(109)
	expirable, err := f.ledger.IsExpirable(ctx, id)
	require.NoError(t, err)
	assert.False(t, expirable)

	f.clock.Set(110)
	expirable, err = f.ledger.IsExpirable(ctx, id)
	require.NoError(t, err)
	assert.True(t, expirable)

	// Terminal tags are never expirable.
	_, err = f.ledger.Expire(ctx, "anyone", id)
	require.NoError(t, err)
	expirable, err = f.ledger.IsExpirable(ctx, id)
	require.NoError(t, err)
	assert.False(t, expirable)
}

func TestMemoNormalization(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	// Decomposed "é" (e + combining acute) normalizes to the composed form.
	memo := "café"
	id, err := f.ledger.Create(ctx, "alice", CreateInput{
		Recipient: "bob",
		Amount:    2000,
		Duration:  10,
		Memo:      &memo,
	})
	require.NoError(t, err)

	tg, err := f.ledger.GetTag(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "café", tg.Memo)
}
