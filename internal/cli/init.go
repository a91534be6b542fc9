package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/tagvault/internal/config"
	"github.com/roach88/tagvault/internal/store"
	"github.com/roach88/tagvault/internal/tag"
)

// InitOptions holds flags for the init command.
type InitOptions struct {
	*RootOptions
	ParamsPath string
	Admin      string
}

// NewInitCommand creates the init command.
func NewInitCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &InitOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Initialize a new ledger database",
		Long: `Initialize a new ledger database with deployment parameters.

Parameters come from a CUE file (--params) or default bounds with the admin
identity from --admin. They are fixed for the lifetime of the ledger.

Example:
  tagvault init --db ledger.db --admin alice
  tagvault init --db ledger.db --params params.cue`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInit(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.ParamsPath, "params", "", "CUE parameter file")
	cmd.Flags().StringVar(&opts.Admin, "admin", "", "administrator identity (when no --params file)")

	return cmd
}

func runInit(opts *InitOptions, cmd *cobra.Command) error {
	f := formatter(opts.RootOptions, cmd)

	var params tag.Params
	switch {
	case opts.ParamsPath != "":
		p, err := config.Load(opts.ParamsPath)
		if err != nil {
			return WrapExitError(ExitCommandError, "load params", err)
		}
		params = p
	case opts.Admin != "":
		params = tag.DefaultParams()
		params.Admin = opts.Admin
	default:
		return WrapExitError(ExitCommandError, "either --params or --admin is required", nil)
	}

	st, err := store.Open(opts.DBPath)
	if err != nil {
		return WrapExitError(ExitCommandError, "open database", err)
	}
	defer st.Close()

	if err := st.Init(cmd.Context(), params); err != nil {
		return WrapExitError(ExitCommandError, "initialize ledger", err)
	}

	return f.Success(fmt.Sprintf("initialized ledger at %s (admin=%s)", opts.DBPath, params.Admin))
}
