package cli

import (
	"io"

	"github.com/spf13/cobra"
	"go.uber.org/multierr"
	"go.uber.org/zap/zapcore"

	"github.com/robert-malhotra/go-hdf5/hdf5"
	"github.com/robert-malhotra/go-hdf5/internal/config"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose    bool
	Format     string // "text" | "json" | "yaml"
	ConfigPath string

	// Config is the merged configuration, loaded before any subcommand runs.
	Config *config.Config
}

// NewRootCommand creates the root command for the h5complex CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "h5complex",
		Short: "Build and inspect HDF5 complex-number datatypes",
		Long: `Build and inspect HDF5 complex-number datatypes.

A complex number is stored as a compound of two floating-point members named
"r" and "i". Arrays of such compounds are complex too.

Settings are read from h5complex.yaml (or --config), H5COMPLEX_* environment
variables and flags, in increasing order of precedence.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(opts.ConfigPath, cmd.Flags())
			if err != nil {
				formatter := &OutputFormatter{Format: "text", Writer: cmd.ErrOrStderr()}
				return formatter.Fail(ExitCommandError, ErrCodeConfig, "invalid configuration", err)
			}
			opts.Config = cfg
			opts.Format = cfg.Format
			opts.Verbose = cfg.Verbose
			if cfg.Verbose {
				hdf5.SetLogger(hdf5.NewLogger(zapcore.DebugLevel))
			}
			return nil
		},
	}

	// Global flags
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (text|json|yaml)")
	cmd.PersistentFlags().StringVarP(&opts.ConfigPath, "config", "c", "", "config file (default ./h5complex.yaml)")

	// Add subcommands
	cmd.AddCommand(NewCreateCommand(opts))
	cmd.AddCommand(NewInspectCommand(opts))
	cmd.AddCommand(NewEncodeCommand(opts))
	cmd.AddCommand(NewDecodeCommand(opts))

	return cmd
}

func newFormatter(opts *RootOptions, cmd *cobra.Command) *OutputFormatter {
	return &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(), // keep diagnostics out of structured output
		Verbose:   opts.Verbose,
	}
}

// closeWith closes c and folds a failure into *errp, reporting it through
// the formatter.
func closeWith(formatter *OutputFormatter, errp *error, c io.Closer) {
	if err := c.Close(); err != nil {
		*errp = multierr.Append(*errp,
			formatter.Fail(ExitFailure, ErrCodeDatatype, "failed to release datatype", err))
	}
}

// addLayoutFlags adds the flags selecting a complex layout.
func addLayoutFlags(cmd *cobra.Command) {
	cmd.Flags().IntP("width", "w", int(hdf5.Complex64), "part width in bytes (4|8)")
	cmd.Flags().StringP("order", "o", "native", "byte order (little|big|native)")
}

// complexType builds the layout named by the configuration, or decodes
// the datatype message given with --datatype.
func complexType(opts *RootOptions, cmd *cobra.Command, tbl *hdf5.Table) (*hdf5.Type, error) {
	if raw, _ := cmd.Flags().GetString("datatype"); raw != "" {
		msg, err := readMessage(raw)
		if err != nil {
			return nil, err
		}
		return tbl.Decode(msg)
	}
	w, err := opts.Config.ComplexWidth()
	if err != nil {
		return nil, err
	}
	o, err := opts.Config.ByteOrder()
	if err != nil {
		return nil, err
	}
	return hdf5.CreateComplex(tbl, w, o)
}
