package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/roach88/tagvault/internal/ledger"
	"github.com/roach88/tagvault/internal/store"
	"github.com/roach88/tagvault/internal/tag"
)

// recordingSettlement stands in for the external value-transfer provider.
// It records the would-be transfer and reports success; real deployments
// wire the chain's transfer mechanism here.
type recordingSettlement struct {
	logger *slog.Logger
}

func (r recordingSettlement) Transfer(_ context.Context, amount uint64, from, to string) error {
	r.logger.Info("settlement transfer", "amount", amount, "from", from, "to", to)
	return nil
}

// openLedger opens the store and wires a Ledger with the invocation
// environment from the flags. The caller owns closing the returned store.
func openLedger(opts *RootOptions, cmd *cobra.Command) (*ledger.Ledger, *store.Store, error) {
	if _, err := os.Stat(opts.DBPath); os.IsNotExist(err) {
		return nil, nil, WrapExitError(ExitCommandError, "database not found (run 'tagvault init' first)", err)
	}

	st, err := store.Open(opts.DBPath)
	if err != nil {
		return nil, nil, WrapExitError(ExitCommandError, "open database", err)
	}

	logger := slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{
		Level: logLevel(opts),
	}))

	led := ledger.New(st,
		tag.FixedClock(opts.Height),
		recordingSettlement{logger: logger},
		tag.SlogSink{Logger: logger},
	)
	return led, st, nil
}

func logLevel(opts *RootOptions) slog.Level {
	if opts.Verbose {
		return slog.LevelDebug
	}
	return slog.LevelWarn
}

// formatter builds the output formatter for a command.
func formatter(opts *RootOptions, cmd *cobra.Command) *OutputFormatter {
	return &OutputFormatter{
		Format:  opts.Format,
		Writer:  cmd.OutOrStdout(),
		Verbose: opts.Verbose,
	}
}

// parseTagID parses a tag id argument.
func parseTagID(arg string) (uint64, error) {
	id, err := strconv.ParseUint(arg, 10, 64)
	if err != nil || id == 0 {
		return 0, WrapExitError(ExitCommandError, fmt.Sprintf("invalid tag id %q", arg), err)
	}
	return id, nil
}

// renderLedgerError prints a typed ledger failure and converts it into an
// ExitError so the process exits with the failure code.
func renderLedgerError(f *OutputFormatter, err error) error {
	if code := tag.CodeOf(err); code != "" {
		if outErr := f.Error(string(code), err.Error()); outErr != nil {
			return outErr
		}
		return &ExitError{Code: ExitFailure, Message: string(code), Err: err}
	}
	return WrapExitError(ExitCommandError, "ledger operation failed", err)
}
