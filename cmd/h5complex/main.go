// Command h5complex builds and inspects HDF5 complex-number datatypes.
package main

import (
	"os"

	"github.com/robert-malhotra/go-hdf5/internal/cli"
)

func main() {
	cmd := cli.NewRootCommand()
	if err := cmd.Execute(); err != nil {
		os.Exit(cli.GetExitCode(err))
	}
}
