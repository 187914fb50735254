package commands

import (
	"github.com/spf13/cobra"

	"github.com/sujalbistaa/bookit/cmd/bookitctl/output"
	"github.com/sujalbistaa/bookit/internal/auth"
)

var promoteCmd = &cobra.Command{
	Use:   "promote <email>",
	Short: "Grant the admin role to an existing user",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		gdb, log, err := openDatabase()
		if err != nil {
			return err
		}
		defer closeDatabase(gdb)

		// Promote never issues tokens, so no token manager is needed.
		user, err := auth.NewService(gdb, nil, log).Promote(cmd.Context(), args[0])
		if err != nil {
			output.Error("Could not promote %s", args[0])
			return err
		}
		output.Success("%s is now an admin", user.Username)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(promoteCmd)
}
