package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/timevault/api/cmd/migrate/commands"
)

func main() {
	var rootCmd = &cobra.Command{
		Use:   "timevault-migrate",
		Short: "Migration tool for the Timevault API",
		Long:  "CLI tool for applying and inspecting document store schema migrations",
	}

	rootCmd.AddCommand(commands.NewUpCmd())
	rootCmd.AddCommand(commands.NewStatusCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
