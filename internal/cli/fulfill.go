package cli

import (
	"github.com/spf13/cobra"
)

// NewFulfillCommand creates the fulfill command.
func NewFulfillCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "fulfill <tag-id>",
		Short: "Pay a pending request",
		Long: `Pay a pending request before its expiry height.

Any identity may pay; the settlement provider debits the caller. On provider
failure the tag stays PENDING and fulfill may be retried until expiry.

Example:
  tagvault fulfill 1 --caller carol --height 50`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFulfill(rootOpts, cmd, args[0])
		},
	}
	return cmd
}

func runFulfill(opts *RootOptions, cmd *cobra.Command, arg string) error {
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

	id, err = led.Fulfill(cmd.Context(), opts.Caller, id)
	if err != nil {
		return renderLedgerError(f, err)
	}
	return f.Success(map[string]any{"tag_id": id, "state": "PAID"})
}
