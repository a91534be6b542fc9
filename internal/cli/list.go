package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// ListOptions holds flags for the list command.
type ListOptions struct {
	*RootOptions
	Role string
}

// NewListCommand creates the list command.
func NewListCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ListOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "list <principal>",
		Short: "List indexed tag ids for a principal",
		Long: `List the tag ids a principal participates in, from the bounded
participant index. The index caps out at 100 entries per principal; tags past
the cap still exist in the store but are absent here.

Example:
  tagvault list alice --role creator
  tagvault list bob --role recipient`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runList(opts, cmd, args[0])
		},
	}

	cmd.Flags().StringVar(&opts.Role, "role", "creator", "index to query (creator|recipient)")

	return cmd
}

func runList(opts *ListOptions, cmd *cobra.Command, principal string) error {
	f := formatter(opts.RootOptions, cmd)

	led, st, err := openLedger(opts.RootOptions, cmd)
	if err != nil {
		return err
	}
	defer st.Close()

	var ids []uint64
	switch opts.Role {
	case "creator":
		ids, err = led.ListByCreator(cmd.Context(), principal)
	case "recipient":
		ids, err = led.ListByRecipient(cmd.Context(), principal)
	default:
		return WrapExitError(ExitCommandError, fmt.Sprintf("invalid role %q: must be creator or recipient", opts.Role), nil)
	}
	if err != nil {
		return renderLedgerError(f, err)
	}
	return f.Success(map[string]any{"principal": principal, "role": opts.Role, "tag_ids": ids})
}
