package tag

import "context"

// Settlement performs the value transfer backing a fulfillment.
//
// Transfer moves amount from payer to payee and returns nil on success or an
// error describing why the transfer was refused. The ledger invokes it
// synchronously inside the fulfill transaction: a non-nil error aborts the
// whole operation with TRANSFER_FAILED and no state change.
type Settlement interface {
	Transfer(ctx context.Context, amount uint64, from, to string) error
}
