package cmd

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "relayctl",
	Short: "Relay Stack CLI",
	Long: `relayctl is the command-line companion of the relay stack.

Seed the domain-event bus with realistic fake events, inspect the routed
event set, and watch the websocket delivery feed during development.`,
	Version: "0.1.0",
}

func Execute() error {
	return rootCmd.Execute()
}
