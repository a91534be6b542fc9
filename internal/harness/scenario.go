// Package harness runs scenario-driven conformance tests for the ledger.
//
// A scenario is a YAML file describing a sequence of ledger operations with
// explicit heights, callers, and scripted settlement outcomes. Running one
// produces a deterministic trace (per-step results plus emitted event kinds)
// that is compared against golden files.
package harness

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Scenario defines a conformance test scenario.
type Scenario struct {
	// Name uniquely identifies this scenario; it names the golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description,omitempty"`

	// Admin is the administrator identity for the fresh ledger.
	// Defaults to "admin".
	Admin string `yaml:"admin,omitempty"`

	// MinAmount, MaxDuration, and MaxMemoBytes override the default
	// deployment bounds when non-zero.
	MinAmount    uint64 `yaml:"min_amount,omitempty"`
	MaxDuration  uint64 `yaml:"max_duration,omitempty"`
	MaxMemoBytes uint64 `yaml:"max_memo_bytes,omitempty"`

	// Steps is the operation sequence to execute.
	Steps []Step `yaml:"steps"`
}

// Step is one ledger operation within a scenario.
type Step struct {
	// Op is one of: create, fulfill, cancel, expire, pause, get.
	Op string `yaml:"op"`

	// Caller is the authenticated identity for this invocation.
	Caller string `yaml:"caller"`

	// Height is the logical height for this invocation.
	Height uint64 `yaml:"height"`

	// Create fields.
	Recipient string  `yaml:"recipient,omitempty"`
	Amount    uint64  `yaml:"amount,omitempty"`
	Duration  uint64  `yaml:"duration,omitempty"`
	Memo      *string `yaml:"memo,omitempty"`

	// TagID targets an existing tag (fulfill, cancel, expire, get).
	TagID uint64 `yaml:"tag_id,omitempty"`

	// FailTransfer scripts the settlement provider to refuse the next
	// transfer with this reason. Only meaningful on fulfill steps.
	FailTransfer string `yaml:"fail_transfer,omitempty"`
}

// LoadScenario reads and parses a scenario YAML file.
// Unknown fields are rejected so typos fail loudly.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}
	return ParseScenario(data)
}

// ParseScenario parses scenario YAML source.
func ParseScenario(data []byte) (*Scenario, error) {
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}
	if scenario.Name == "" {
		return nil, fmt.Errorf("scenario is missing a name")
	}
	if len(scenario.Steps) == 0 {
		return nil, fmt.Errorf("scenario %q has no steps", scenario.Name)
	}
	for i, step := range scenario.Steps {
		switch step.Op {
		case "create", "fulfill", "cancel", "expire", "pause", "get":
		default:
			return nil, fmt.Errorf("scenario %q step %d: unknown op %q", scenario.Name, i, step.Op)
		}
	}
	if scenario.Admin == "" {
		scenario.Admin = "admin"
	}
	return &scenario, nil
}
