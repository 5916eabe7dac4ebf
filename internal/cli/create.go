package cli

import (
	"github.com/spf13/cobra"

	"github.com/robert-malhotra/go-hdf5/hdf5"
)

// NewCreateCommand creates the create subcommand.
func NewCreateCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Build a complex datatype and describe it",
		Long: `Build a complex compound datatype and print its description,
including the encoded datatype message.`,
		Example: `  h5complex create --width 4 --order big
  h5complex create --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCreate(cmd, opts)
		},
	}
	addLayoutFlags(cmd)
	return cmd
}

func runCreate(cmd *cobra.Command, opts *RootOptions) (err error) {
	formatter := newFormatter(opts, cmd)

	tbl := hdf5.NewTable()
	defer closeWith(formatter, &err, tbl)

	c, err := complexType(opts, cmd, tbl)
	if err != nil {
		return formatter.Fail(ExitFailure, ErrCodeDatatype, "failed to create datatype", err)
	}
	defer closeWith(formatter, &err, c)

	formatter.VerboseLog("created datatype handle %d", c.ID())

	info, err := describe(c)
	if err != nil {
		return formatter.Fail(ExitFailure, ErrCodeDatatype, "failed to describe datatype", err)
	}
	return formatter.Success(info)
}
