package cli

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "ledger-service",
	Short: "Contract work ledger: settles jobs, takes deposits and reports earnings",
	Long: `ledger-service keeps client and contractor balances for contracted work.
Clients pay for finished jobs, top up their balance within a limit tied to
what they owe, and admins query who earned and paid the most.

Configuration is read from app.env and the environment (DB_DSN is required).`,
	SilenceUsage: true,
	RunE:         runServe,
}

// Execute runs the command tree; serve is the default.
func Execute() error {
	return rootCmd.Execute()
}
