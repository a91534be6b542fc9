package cli

import (
	"github.com/spf13/cobra"
)

// NewPauseCommand creates the pause command.
func NewPauseCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "pause",
		Short: "Toggle the administrative pause flag",
		Long: `Toggle the administrative pause flag. Only the admin identity fixed at
init may toggle. While paused, create, fulfill, and expire are rejected;
cancel remains available.

Example:
  tagvault pause --caller alice`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPause(rootOpts, cmd)
		},
	}
	return cmd
}

func runPause(opts *RootOptions, cmd *cobra.Command) error {
	f := formatter(opts, cmd)

	led, st, err := openLedger(opts, cmd)
	if err != nil {
		return err
	}
	defer st.Close()

	paused, err := led.TogglePause(cmd.Context(), opts.Caller)
	if err != nil {
		return renderLedgerError(f, err)
	}
	return f.Success(map[string]any{"paused": paused})
}
