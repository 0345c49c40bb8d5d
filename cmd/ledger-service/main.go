package main

import (
	"os"

	"github.com/nurpe/ledger-service/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
