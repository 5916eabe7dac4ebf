package cli

import (
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/robert-malhotra/go-hdf5/hdf5"
)

// DecodeResult is the output of the decode subcommand.
type DecodeResult struct {
	Width  string   `json:"width" yaml:"width"`
	Order  string   `json:"order" yaml:"order"`
	Values []string `json:"values" yaml:"values"`
}

// Text prints one value per line.
func (r *DecodeResult) Text(w io.Writer) error {
	for _, v := range r.Values {
		if _, err := fmt.Fprintln(w, v); err != nil {
			return err
		}
	}
	return nil
}

// NewDecodeCommand creates the decode subcommand.
func NewDecodeCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "decode <hex|@file>",
		Short: "Decode stored complex records",
		Long: `Decode [real][imag] records in the selected layout and print the values.
The data is given as hex, or read raw from a file with @path.`,
		Example: `  h5complex decode 000000000000f03f0000000000000040
  h5complex decode --width 4 --order big @values.bin`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDecode(cmd, opts, args[0])
		},
	}
	addLayoutFlags(cmd)
	cmd.Flags().String("datatype", "", "use this datatype message (hex or @file) instead of --width/--order")
	return cmd
}

func runDecode(cmd *cobra.Command, opts *RootOptions, arg string) (err error) {
	formatter := newFormatter(opts, cmd)

	data, err := readMessage(arg)
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeInput, "invalid input", err)
	}

	tbl := hdf5.NewTable()
	defer closeWith(formatter, &err, tbl)

	c, err := complexType(opts, cmd, tbl)
	if err != nil {
		return formatter.Fail(ExitFailure, ErrCodeDatatype, "failed to resolve datatype", err)
	}
	defer closeWith(formatter, &err, c)

	l, err := layoutOf(c)
	if err != nil {
		return formatter.Fail(ExitFailure, ErrCodeDatatype, "unsupported datatype", err)
	}
	values, err := hdf5.DecodeComplex(c, data)
	if err != nil {
		return formatter.Fail(ExitFailure, ErrCodeDatatype, "failed to decode values", err)
	}

	result := &DecodeResult{
		Width:  l.width.String(),
		Order:  l.order.String(),
		Values: make([]string, len(values)),
	}
	for i, v := range values {
		result.Values[i] = strconv.FormatComplex(v, 'g', -1, l.width.Bits()*2)
	}
	return formatter.Success(result)
}
