package cli

import (
	"encoding/hex"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/robert-malhotra/go-hdf5/hdf5"
)

// NewInspectCommand creates the inspect subcommand.
func NewInspectCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "inspect <hex|@file>",
		Short: "Describe an encoded datatype message",
		Long: `Decode a datatype message and report whether it is complex.

The message is given as hex, or read raw from a file with @path.`,
		Example: `  h5complex inspect 03080000...
  h5complex inspect @type.bin --format yaml`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInspect(cmd, opts, args[0])
		},
	}
}

func runInspect(cmd *cobra.Command, opts *RootOptions, arg string) (err error) {
	formatter := newFormatter(opts, cmd)

	raw, err := readMessage(arg)
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeInput, "invalid input", err)
	}

	tbl := hdf5.NewTable()
	defer closeWith(formatter, &err, tbl)

	h, err := tbl.Decode(raw)
	if err != nil {
		return formatter.Fail(ExitFailure, ErrCodeDatatype, "failed to decode datatype", err)
	}
	defer closeWith(formatter, &err, h)

	info, err := describe(h)
	if err != nil {
		return formatter.Fail(ExitFailure, ErrCodeDatatype, "failed to describe datatype", err)
	}
	return formatter.Success(info)
}

// readMessage returns the bytes named by arg: raw file contents for
// "@path", otherwise hex with optional whitespace.
func readMessage(arg string) ([]byte, error) {
	if path, ok := strings.CutPrefix(arg, "@"); ok {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", path, err)
		}
		return data, nil
	}
	return decodeHex(arg)
}

func decodeHex(s string) ([]byte, error) {
	s = strings.Join(strings.Fields(s), "")
	if s == "" {
		return nil, fmt.Errorf("empty input")
	}
	data, err := hex.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("invalid hex: %w", err)
	}
	return data, nil
}
