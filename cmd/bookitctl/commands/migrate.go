package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sujalbistaa/bookit/cmd/bookitctl/output"
	"github.com/sujalbistaa/bookit/internal/db"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update every table",
	RunE: func(cmd *cobra.Command, args []string) error {
		gdb, _, err := openDatabase()
		if err != nil {
			return err
		}
		defer closeDatabase(gdb)

		if err := db.Migrate(gdb); err != nil {
			output.Error("Migration failed")
			return fmt.Errorf("failed to migrate: %w", err)
		}
		output.Success("Schema is up to date")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}
