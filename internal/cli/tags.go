package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/tagvault/internal/tag"
)

// NewTagsCommand creates the tags command.
func NewTagsCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tags <tag-id>...",
		Short: "Show several tags by id",
		Long: fmt.Sprintf(`Show up to %d tags by id. Ids that were never issued are silently
skipped; results come back in input order.

Example:
  tagvault tags 1 2 3`, tag.BatchLimit),
		Args:          cobra.RangeArgs(1, tag.BatchLimit),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTags(rootOpts, cmd, args)
		},
	}
	return cmd
}

func runTags(opts *RootOptions, cmd *cobra.Command, args []string) error {
	f := formatter(opts, cmd)

	ids := make([]uint64, 0, len(args))
	for _, arg := range args {
		id, err := parseTagID(arg)
		if err != nil {
			return err
		}
		ids = append(ids, id)
	}

	led, st, err := openLedger(opts, cmd)
	if err != nil {
		return err
	}
	defer st.Close()

	tags, err := led.BatchTags(cmd.Context(), ids)
	if err != nil {
		return renderLedgerError(f, err)
	}
	return f.Success(map[string]any{"tags": tags})
}
