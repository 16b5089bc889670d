package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/Krasnovvvvv/perplexity-go/internal/output"
)

var (
	usageSince  time.Duration
	usageOutput string
)

var usageCmd = &cobra.Command{
	Use:   "usage",
	Short: "Summarize token usage and cost per model",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		format, err := output.ParseFormat(usageOutput)
		if err != nil {
			return err
		}

		db, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer db.Close()

		var since time.Time
		if usageSince > 0 {
			since = time.Now().Add(-usageSince)
		}

		usage, err := db.UsageSummary(ctx, since)
		if err != nil {
			return err
		}
		if len(usage) == 0 && format == output.FormatTable {
			fmt.Println("No journaled requests.")
			return nil
		}

		rendered, err := output.FormatUsage(format, usage)
		if err != nil {
			return err
		}
		fmt.Println(rendered)
		return nil
	},
}

func init() {
	usageCmd.Flags().DurationVar(&usageSince, "since", 0, "only count requests newer than this (e.g. 24h; 0 for all)")
	usageCmd.Flags().StringVarP(&usageOutput, "output-format", "o", string(output.FormatTable), "Output format: table|json")
	rootCmd.AddCommand(usageCmd)
}
