package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var rateLimitResetForce bool

var rateLimitResetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Clear the request journal and admission window",
	Long: `Clear the local request journal. This empties the admission window for
subsequent invocations and discards usage history.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if !rateLimitResetForce {
			return fmt.Errorf("refusing to clear the request journal without --force")
		}

		ctx := cmd.Context()
		db, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer db.Close()

		if err := db.Reset(ctx); err != nil {
			return err
		}

		fmt.Println("Request journal cleared.")
		return nil
	},
}

func init() {
	rateLimitResetCmd.Flags().BoolVar(&rateLimitResetForce, "force", false, "confirm clearing the journal")
}
