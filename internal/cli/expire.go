package cli

import (
	"github.com/spf13/cobra"
)

// NewExpireCommand creates the expire command.
func NewExpireCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "expire <tag-id>",
		Short: "Expire a pending request past its expiry height",
		Long: `Mark a pending request as EXPIRED once the current height has reached
its expiry height. Callable by any identity.

Example:
  tagvault expire 1 --caller anyone --height 110`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExpire(rootOpts, cmd, args[0])
		},
	}
	return cmd
}

func runExpire(opts *RootOptions, cmd *cobra.Command, arg string) error {
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

	id, err = led.Expire(cmd.Context(), opts.Caller, id)
	if err != nil {
		return renderLedgerError(f, err)
	}
	return f.Success(map[string]any{"tag_id": id, "state": "EXPIRED"})
}
