package cli

import (
	"github.com/spf13/cobra"
)

// NewInfoCommand creates the info command.
func NewInfoCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "info",
		Short: "Show the aggregate ledger snapshot",
		Long: `Show the aggregate ledger snapshot: total tags issued, the pause
state, and the administrator identity.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInfo(rootOpts, cmd)
		},
	}
	return cmd
}

func runInfo(opts *RootOptions, cmd *cobra.Command) error {
	f := formatter(opts, cmd)

	led, st, err := openLedger(opts, cmd)
	if err != nil {
		return err
	}
	defer st.Close()

	info, err := led.Info(cmd.Context())
	if err != nil {
		return renderLedgerError(f, err)
	}
	return f.Success(map[string]any{"info": info})
}
