package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Krasnovvvvv/perplexity-go/internal/output"
	"github.com/Krasnovvvvv/perplexity-go/internal/perplexity"
)

var rateLimitOutput string

var rateLimitCmd = &cobra.Command{
	Use:   "rate-limit",
	Short: "Inspect and manage the request admission window",
}

var rateLimitStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the current admission window",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		format, err := output.ParseFormat(rateLimitOutput)
		if err != nil {
			return err
		}

		limiter, err := perplexity.NewRateLimiter(
			appConfig.RateLimit.RequestsPerMinute,
			appConfig.RateLimit.Enabled,
		)
		if err != nil {
			return err
		}

		db, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer db.Close()
		primeLimiter(ctx, db, limiter)

		used := limiter.CurrentCount()
		status := output.RateLimitStatus{
			Enabled:  limiter.Enabled(),
			Capacity: limiter.Capacity(),
			Used:     used,
			Free:     limiter.Capacity() - used,
		}

		rendered, err := output.FormatRateLimit(format, status)
		if err != nil {
			return err
		}
		fmt.Println(rendered)
		return nil
	},
}

func init() {
	rateLimitCmd.PersistentFlags().StringVarP(&rateLimitOutput, "output-format", "o", string(output.FormatTable), "Output format: table|json")
	rateLimitCmd.AddCommand(rateLimitStatusCmd)
	rateLimitCmd.AddCommand(rateLimitResetCmd)
	rootCmd.AddCommand(rateLimitCmd)
}
