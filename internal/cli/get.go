package cli

import (
	"github.com/spf13/cobra"
)

// NewGetCommand creates the get command.
func NewGetCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "get <tag-id>",
		Short: "Show a tag by id",
		Long: `Show a tag by id. Fails only if the id was never issued.

With --height set, the output includes whether a pending tag has crossed its
expiry height at that height.

Example:
  tagvault get 1 --height 110`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGet(rootOpts, cmd, args[0])
		},
	}
	return cmd
}

func runGet(opts *RootOptions, cmd *cobra.Command, arg string) error {
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

	tg, err := led.GetTag(cmd.Context(), id)
	if err != nil {
		return renderLedgerError(f, err)
	}

	data := map[string]any{"tag": tg}
	if flag := cmd.Flag("height"); flag != nil && flag.Changed {
		data["expirable"] = tg.Expirable(opts.Height)
	}
	return f.Success(data)
}
