package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	dcli "github.com/stakepool/staking-pool/cmd/spd/daemon"
)

func fatal(err error) {
	fmt.Fprintf(os.Stderr, "[staking-pool] %v\n", err)
	os.Exit(1)
}

func main() {
	cmd := &cobra.Command{
		Use:           "spd",
		Short:         "Staking Pool Daemon (spd).",
		SilenceErrors: true,
		SilenceUsage:  true,
	}
	cmd.AddCommand(dcli.CommandInit(), dcli.CommandStart())

	if err := cmd.Execute(); err != nil {
		fatal(err)
	}
}
