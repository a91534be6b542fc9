package cli

import (
	"github.com/spf13/cobra"

	"github.com/roach88/tagvault/internal/tag"
)

// NewCountersCommand creates the counters command.
func NewCountersCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "counters [name]",
		Short: "Show usage counters",
		Long: `Show usage counters. With no argument, prints all four lifecycle
counters; with a name, prints that counter (zero for unknown names).

Example:
  tagvault counters
  tagvault counters tags-created`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCounters(rootOpts, cmd, args)
		},
	}
	return cmd
}

func runCounters(opts *RootOptions, cmd *cobra.Command, args []string) error {
	f := formatter(opts, cmd)

	led, st, err := openLedger(opts, cmd)
	if err != nil {
		return err
	}
	defer st.Close()

	names := []string{tag.CounterCreated, tag.CounterFulfilled, tag.CounterCanceled, tag.CounterExpired}
	if len(args) == 1 {
		names = args
	}

	counters := map[string]uint64{}
	for _, name := range names {
		value, err := led.Counter(cmd.Context(), name)
		if err != nil {
			return renderLedgerError(f, err)
		}
		counters[name] = value
	}
	return f.Success(map[string]any{"counters": counters})
}
