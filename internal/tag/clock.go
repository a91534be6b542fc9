package tag

// Clock supplies the current logical height.
//
// The host execution environment owns the clock; the ledger only reads it.
// Heights must be monotonically non-decreasing across invocations. Injecting
// the clock lets tests pin exact boundary heights (expires_at-1, expires_at,
// expires_at+1) deterministically.
type Clock interface {
	Height() uint64
}

// FixedClock is a Clock pinned to a single height. Useful for one-shot
// invocations where the host supplies the height explicitly, such as the CLI.
type FixedClock uint64

// Height returns the pinned height.
func (c FixedClock) Height() uint64 { return uint64(c) }
