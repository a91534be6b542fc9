package testutil

import (
	"context"
	"errors"
	"sync"
)

// Transfer records one settlement call observed by the scripted provider.
type Transfer struct {
	Amount uint64
	From   string
	To     string
}

// Settlement is a scripted settlement provider.
//
// By default every transfer succeeds. A test can queue failures with Fail;
// each queued error is consumed by one transfer attempt, after which
// transfers succeed again. Every attempt, failed or not, is recorded.
type Settlement struct {
	mu       sync.Mutex
	failures []error
	calls    []Transfer
}

// NewSettlement creates a provider that accepts every transfer.
func NewSettlement() *Settlement {
	return &Settlement{}
}

// Fail queues an error to be returned by the next transfer attempt.
func (s *Settlement) Fail(reason string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures = append(s.failures, errors.New(reason))
}

// Transfer implements the settlement interface.
func (s *Settlement) Transfer(_ context.Context, amount uint64, from, to string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, Transfer{Amount: amount, From: from, To: to})
	if len(s.failures) > 0 {
		err := s.failures[0]
		s.failures = s.failures[1:]
		return err
	}
	return nil
}

// Calls returns every transfer attempt in order.
func (s *Settlement) Calls() []Transfer {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Transfer, len(s.calls))
	copy(out, s.calls)
	return out
}
