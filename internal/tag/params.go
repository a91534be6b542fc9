package tag

import "golang.org/x/text/unicode/norm"

// Default deployment parameters. Overridable at init via a params file;
// immutable afterwards.
const (
	DefaultMinAmount    uint64 = 1000
	DefaultMaxDuration  uint64 = 100_000
	DefaultMaxMemoBytes uint64 = 256

	// IndexCap is the fixed per-principal bound on the participant index.
	// Entries past the cap are silently absent from the index while the tag
	// itself remains in the store.
	IndexCap = 100

	// BatchLimit bounds the number of ids a batch-get accepts.
	BatchLimit = 30
)

// Params are the deployment parameters fixed when a ledger is initialized.
type Params struct {
	// Admin is the identity allowed to toggle the pause flag. Never reassigned.
	Admin string `json:"admin"`

	// MinAmount is the smallest amount a tag may request.
	MinAmount uint64 `json:"min_amount"`

	// MaxDuration bounds expires_at - created_at.
	MaxDuration uint64 `json:"max_duration"`

	// MaxMemoBytes bounds the memo after NFC normalization.
	MaxMemoBytes uint64 `json:"max_memo_bytes"`
}

// DefaultParams returns Params with every bound at its default.
// Admin must still be set by the caller.
func DefaultParams() Params {
	return Params{
		MinAmount:    DefaultMinAmount,
		MaxDuration:  DefaultMaxDuration,
		MaxMemoBytes: DefaultMaxMemoBytes,
	}
}

// NormalizeMemo returns the memo in Unicode NFC form.
// Normalizing before validation and storage means equivalent memos hash,
// compare, and bound-check identically regardless of input encoding.
func NormalizeMemo(memo string) string {
	return norm.NFC.String(memo)
}
