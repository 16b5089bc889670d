package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Krasnovvvvv/perplexity-go/internal/output"
)

var (
	historyLimit  int
	historyOutput string
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List journaled requests, newest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		format, err := output.ParseFormat(historyOutput)
		if err != nil {
			return err
		}

		db, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer db.Close()

		entries, err := db.List(ctx, historyLimit)
		if err != nil {
			return err
		}
		if len(entries) == 0 && format == output.FormatTable {
			fmt.Println("No journaled requests.")
			return nil
		}

		rendered, err := output.FormatEntries(format, entries)
		if err != nil {
			return err
		}
		fmt.Println(rendered)
		return nil
	},
}

func init() {
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 20, "maximum entries to show (0 for all)")
	historyCmd.Flags().StringVarP(&historyOutput, "output-format", "o", string(output.FormatTable), "Output format: table|json")
	rootCmd.AddCommand(historyCmd)
}
