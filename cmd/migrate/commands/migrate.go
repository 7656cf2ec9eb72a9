package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/timevault/api/internal/docstore"
)

// openStore connects to the document store, falling back to the
// DATABASE_URL environment variable when no URL is given.
func openStore(databaseURL string) (*docstore.Postgres, error) {
	if databaseURL == "" {
		databaseURL = os.Getenv("DATABASE_URL")
	}
	if databaseURL == "" {
		return nil, fmt.Errorf("database URL is required (set DATABASE_URL or pass --database-url)")
	}

	db, err := docstore.Open(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return db, nil
}

// NewUpCmd creates the up command
func NewUpCmd() *cobra.Command {
	var databaseURL string
	cmd := &cobra.Command{
		Use:   "up",
		Short: "Apply pending migrations",
		Long:  "Apply all pending document store schema migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := openStore(databaseURL)
			if err != nil {
				return err
			}
			defer func() {
				if err := db.Close(); err != nil {
					fmt.Fprintf(os.Stderr, "Warning: failed to close database: %v\n", err)
				}
			}()

			if err := docstore.Migrate(db.DB()); err != nil {
				return err
			}

			fmt.Println("Migrations applied")
			return nil
		},
	}
	cmd.Flags().StringVar(&databaseURL, "database-url", "", "PostgreSQL connection URL (defaults to DATABASE_URL)")
	return cmd
}

// NewStatusCmd creates the status command
func NewStatusCmd() *cobra.Command {
	var databaseURL string
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show migration status",
		Long:  "Show which document store schema migrations have been applied",
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := openStore(databaseURL)
			if err != nil {
				return err
			}
			defer func() {
				if err := db.Close(); err != nil {
					fmt.Fprintf(os.Stderr, "Warning: failed to close database: %v\n", err)
				}
			}()

			return docstore.MigrationStatus(db.DB())
		},
	}
	cmd.Flags().StringVar(&databaseURL, "database-url", "", "PostgreSQL connection URL (defaults to DATABASE_URL)")
	return cmd
}
