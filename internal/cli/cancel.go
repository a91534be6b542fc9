package cli

import (
	"github.com/spf13/cobra"
)

// NewCancelCommand creates the cancel command.
func NewCancelCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cancel <tag-id>",
		Short: "Withdraw a pending request",
		Long: `Withdraw a pending request. Only the creator may cancel.

Cancellation works even while the ledger is paused, so creators can always
withdraw their requests.

Example:
  tagvault cancel 1 --caller alice`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCancel(rootOpts, cmd, args[0])
		},
	}
	return cmd
}

func runCancel(opts *RootOptions, cmd *cobra.Command, arg string) error {
	f := formatter(opts, cmd)

	id, err := parseTagID(arg)
	if err != nil {
		return err
	}

	led, st, err := openLedger(opts, cmd)
	if err != nil {
		return err
	}
	defer st.Close()

	id, err = led.Cancel(cmd.Context(), opts.Caller, id)
	if err != nil {
		return renderLedgerError(f, err)
	}
	return f.Success(map[string]any{"tag_id": id, "state": "CANCELED"})
}
