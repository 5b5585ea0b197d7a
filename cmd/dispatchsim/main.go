// The dispatchsim command runs a dispatch controller simulation described by
// a YAML scenario file.
package main

import (
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "dispatchsim",
	Short: "dispatchsim simulates a draft-then-verify task-dispatch controller.",
	Long: `dispatchsim runs a cycle-level simulation of an asynchronous ` +
		`task-dispatch controller that coordinates a drafting resource and a ` +
		`verifying resource through bounded queues. Scenarios are described ` +
		`in YAML files.`,
}

func main() {
	// A .env file can set defaults such as DISPATCHSIM_MONITOR_PORT.
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
