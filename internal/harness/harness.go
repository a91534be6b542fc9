package harness

import (
	"context"
	"fmt"

	"github.com/roach88/tagvault/internal/ledger"
	"github.com/roach88/tagvault/internal/store"
	"github.com/roach88/tagvault/internal/tag"
	"github.com/roach88/tagvault/internal/testutil"
)

// TraceEvent records the outcome of one scenario step.
//
// Status is "ok" on success and the ledger error code otherwise. Event is
// the kind the step emitted, when it succeeded. Event ids are deliberately
// excluded: they are random and would break golden comparison.
type TraceEvent struct {
	Op     string `json:"op"`
	Caller string `json:"caller"`
	Height uint64 `json:"height"`
	Status string `json:"status"`
	TagID  uint64 `json:"tag_id,omitempty"`
	State  string `json:"state,omitempty"`
	Paused *bool  `json:"paused,omitempty"`
	Event  string `json:"event,omitempty"`
}

// Result captures a scenario execution.
type Result struct {
	ScenarioName string       `json:"scenario_name"`
	Trace        []TraceEvent `json:"trace"`
}

// Run executes a scenario against a fresh in-memory ledger.
//
// Each scenario gets its own database, settable clock, scripted settlement
// provider, and capturing sink, so runs are isolated and reproducible.
func Run(scenario *Scenario) (*Result, error) {
	ctx := context.Background()

	st, err := store.Open(":memory:")
	if err != nil {
		return nil, fmt.Errorf("failed to create in-memory store: %w", err)
	}
	defer st.Close()

	params := tag.DefaultParams()
	params.Admin = scenario.Admin
	if scenario.MinAmount != 0 {
		params.MinAmount = scenario.MinAmount
	}
	if scenario.MaxDuration != 0 {
		params.MaxDuration = scenario.MaxDuration
	}
	if scenario.MaxMemoBytes != 0 {
		params.MaxMemoBytes = scenario.MaxMemoBytes
	}
	if err := st.Init(ctx, params); err != nil {
		return nil, fmt.Errorf("failed to init ledger: %w", err)
	}

	clock := testutil.NewClock()
	settlement := testutil.NewSettlement()
	sink := testutil.NewSink()
	led := ledger.New(st, clock, settlement, sink)

	result := &Result{ScenarioName: scenario.Name}
	for i, step := range scenario.Steps {
		clock.Set(step.Height)
		if step.FailTransfer != "" {
			settlement.Fail(step.FailTransfer)
		}

		before := len(sink.Events())
		trace, err := runStep(ctx, led, step)
		if err != nil {
			return nil, fmt.Errorf("scenario %q step %d: %w", scenario.Name, i, err)
		}
		if events := sink.Events(); len(events) > before {
			trace.Event = string(events[len(events)-1].Kind)
		}
		result.Trace = append(result.Trace, trace)
	}
	return result, nil
}

// runStep executes one step and folds its outcome into a trace event.
// Typed ledger failures become part of the trace; anything else is an
// infrastructure error that aborts the scenario.
func runStep(ctx context.Context, led *ledger.Ledger, step Step) (TraceEvent, error) {
	trace := TraceEvent{Op: step.Op, Caller: step.Caller, Height: step.Height, Status: "ok"}

	var err error
	switch step.Op {
	case "create":
		var id uint64
		id, err = led.Create(ctx, step.Caller, ledger.CreateInput{
			Recipient: step.Recipient,
			Amount:    step.Amount,
			Duration:  step.Duration,
			Memo:      step.Memo,
		})
		trace.TagID = id
	case "fulfill":
		trace.TagID = step.TagID
		_, err = led.Fulfill(ctx, step.Caller, step.TagID)
	case "cancel":
		trace.TagID = step.TagID
		_, err = led.Cancel(ctx, step.Caller, step.TagID)
	case "expire":
		trace.TagID = step.TagID
		_, err = led.Expire(ctx, step.Caller, step.TagID)
	case "pause":
		var paused bool
		paused, err = led.TogglePause(ctx, step.Caller)
		if err == nil {
			trace.Paused = &paused
		}
	case "get":
		trace.TagID = step.TagID
		var tg *tag.Tag
		tg, err = led.GetTag(ctx, step.TagID)
		if err == nil {
			trace.State = string(tg.State)
		}
	}

	if err != nil {
		code := tag.CodeOf(err)
		if code == "" {
			return TraceEvent{}, err
		}
		trace.Status = string(code)
		if step.Op == "create" {
			trace.TagID = 0
		}
	}
	return trace, nil
}
