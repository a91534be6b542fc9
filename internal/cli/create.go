package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/roach88/tagvault/internal/ledger"
)

// CreateOptions holds flags for the create command.
type CreateOptions struct {
	*RootOptions
	Memo string
}

// NewCreateCommand creates the create command.
func NewCreateCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CreateOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "create <recipient> <amount> <duration>",
		Short: "Open a new payment request",
		Long: `Open a new payment request addressed to a recipient.

The request expires duration heights after creation. Amount must meet the
ledger's minimum; the caller must differ from the recipient.

Example:
  tagvault create bob 2000 100 --memo rent --caller alice --height 10`,
		Args:          cobra.ExactArgs(3),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCreate(opts, cmd, args)
		},
	}

	cmd.Flags().StringVar(&opts.Memo, "memo", "", "optional memo annotation")

	return cmd
}

func runCreate(opts *CreateOptions, cmd *cobra.Command, args []string) error {
	f := formatter(opts.RootOptions, cmd)

	amount, err := strconv.ParseUint(args[1], 10, 64)
	if err != nil {
		return WrapExitError(ExitCommandError, fmt.Sprintf("invalid amount %q", args[1]), err)
	}
	duration, err := strconv.ParseUint(args[2], 10, 64)
	if err != nil {
		return WrapExitError(ExitCommandError, fmt.Sprintf("invalid duration %q", args[2]), err)
	}

	led, st, err := openLedger(opts.RootOptions, cmd)
	if err != nil {
		return err
	}
	defer st.Close()

	in := ledger.CreateInput{
		Recipient: args[0],
		Amount:    amount,
		Duration:  duration,
	}
	if cmd.Flags().Changed("memo") {
		in.Memo = &opts.Memo
	}

	id, err := led.Create(cmd.Context(), opts.Caller, in)
	if err != nil {
		return renderLedgerError(f, err)
	}
	return f.Success(map[string]any{"tag_id": id})
}
