package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

const service = "barstock"

func main() {
	var envFile string

	rootCmd := &cobra.Command{
		Use:           service,
		Short:         "Venue stock tracker for spirits, shisha and sundries",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), envFile)
		},
	}
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "dotenv file consulted after the process environment")

	rootCmd.AddCommand(newServeCommand(&envFile))
	rootCmd.AddCommand(newNormalizeCommand(&envFile))
	rootCmd.AddCommand(newHashPasswordCommand())

	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
