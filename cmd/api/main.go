// Package main is the entry point for the chat server.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/athena-chat/athena/internal/config"
)

var envFile string

func newRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "athena",
		Short:         "Multi-conversation chat server for an OpenAI-compatible endpoint",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return config.LoadEnvFile(envFile)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context())
		},
	}
	root.PersistentFlags().StringVar(&envFile, "env-file", ".env", "dotenv file to load before reading the environment")

	root.AddCommand(newServeCommand(), newCheckCommand())
	return root
}

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
