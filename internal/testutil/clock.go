// Package testutil provides deterministic doubles for the ledger's external
// collaborators: the height clock, the settlement provider, and the event
// sink. Tests pin exact heights and script transfer outcomes so boundary
// conditions (expires_at-1, expires_at, expires_at+1) are reproducible.
package testutil

import "sync"

// Clock is a settable logical height clock.
//
// Unlike the host chain's clock it can be set to any height, letting a test
// replay the same scenario at identical heights every run.
//
// Thread-safety: all methods are safe for concurrent use via internal mutex.
type Clock struct {
	mu     sync.Mutex
	height uint64
}

// NewClock creates a clock at height 0.
func NewClock() *Clock {
	return &Clock{}
}

// NewClockAt creates a clock pinned to a specific height.
func NewClockAt(height uint64) *Clock {
	return &Clock{height: height}
}

// Height returns the current height.
func (c *Clock) Height() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.height
}

// Set moves the clock to the given height.
// Tests are responsible for keeping heights non-decreasing, matching the
// monotonic contract of the host chain's clock.
func (c *Clock) Set(height uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.height = height
}

// Advance moves the clock forward by delta heights.
func (c *Clock) Advance(delta uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.height += delta
}
