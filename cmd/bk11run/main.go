// Command bk11run is a headless runner for the BK-0010/0011 CORE: it loads
// a raw memory image as ROM, resets the machine, and either traces
// register state one instruction at a time or runs it for a wall-clock
// duration. There is no GUI here — keyboard, video, and tape framing stay
// outside the CORE's scope; this is the one place that touches the
// filesystem and flags on its behalf.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "bk11run",
		Short: "Headless runner for the BK-0010/0011 CPU core",
	}

	rootCmd.AddCommand(newRunCommand())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
