// Package config loads deployment parameters from CUE files.
//
// Parameter files are unified with the embedded schema before decoding, so
// every bound is range-checked and defaulted in one place. A minimal file
// only needs the admin identity:
//
//	admin: "alice"
package config

import (
	_ "embed"
	"fmt"
	"os"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"

	"github.com/roach88/tagvault/internal/tag"
)

//go:embed schema.cue
var schemaCUE string

// rawParams mirrors the CUE schema field names for decoding.
type rawParams struct {
	Admin        string `json:"admin"`
	MinAmount    uint64 `json:"min_amount"`
	MaxDuration  uint64 `json:"max_duration"`
	MaxMemoBytes uint64 `json:"max_memo_bytes"`
}

// Load reads and validates a CUE parameter file.
func Load(path string) (tag.Params, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return tag.Params{}, fmt.Errorf("read params file: %w", err)
	}
	return Parse(data)
}

// Parse validates CUE parameter source against the embedded schema.
func Parse(data []byte) (tag.Params, error) {
	ctx := cuecontext.New()

	schema := ctx.CompileString(schemaCUE)
	if err := schema.Err(); err != nil {
		return tag.Params{}, fmt.Errorf("compile params schema: %w", err)
	}

	value := ctx.CompileBytes(data)
	if err := value.Err(); err != nil {
		return tag.Params{}, fmt.Errorf("compile params file: %w", err)
	}

	unified := schema.Unify(value)
	if err := unified.Validate(cue.Concrete(true)); err != nil {
		return tag.Params{}, fmt.Errorf("invalid params: %w", err)
	}

	var raw rawParams
	if err := unified.Decode(&raw); err != nil {
		return tag.Params{}, fmt.Errorf("decode params: %w", err)
	}

	return tag.Params{
		Admin:        raw.Admin,
		MinAmount:    raw.MinAmount,
		MaxDuration:  raw.MaxDuration,
		MaxMemoBytes: raw.MaxMemoBytes,
	}, nil
}
