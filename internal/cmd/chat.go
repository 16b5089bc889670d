package cmd

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Krasnovvvvv/perplexity-go/internal/observability"
	"github.com/Krasnovvvvv/perplexity-go/internal/output"
	"github.com/Krasnovvvvv/perplexity-go/internal/perplexity"
	"github.com/Krasnovvvvv/perplexity-go/internal/store"
)

var (
	chatModel       string
	chatSystem      string
	chatTemperature float64
	chatMaxTokens   int
	chatNoCitations bool
	chatOutput      string
)

var chatCmd = &cobra.Command{
	Use:   "chat [prompt...]",
	Short: "Send a chat completion request",
	Long: `Send a prompt to the Perplexity AI chat completions API and print the
answer. The request passes through the shared rate limiter and is
journaled locally for usage reporting.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		format, err := output.ParseFormat(chatOutput)
		if err != nil {
			return err
		}

		client, err := perplexity.New(appConfig.ClientConfig(), observability.CLILogger)
		if err != nil {
			return err
		}

		// A broken journal degrades to an unprimed limiter and no
		// usage record; the request itself still goes out.
		db, dbErr := openStore(ctx)
		if dbErr != nil {
			observability.CLILogger.Warn("request journal unavailable", zap.Error(dbErr))
		} else {
			defer db.Close()
			primeLimiter(ctx, db, client.RateLimiter())
		}

		req := buildChatRequest(cmd, strings.Join(args, " "))

		requestedAt := time.Now()
		resp, err := client.Chat(ctx, req)

		if db != nil {
			recordChat(db, req.Model, requestedAt, resp, err)
		}
		if err != nil {
			return err
		}

		rendered, err := output.FormatChat(format, resp)
		if err != nil {
			return err
		}
		fmt.Println(rendered)
		return nil
	},
}

func buildChatRequest(cmd *cobra.Command, prompt string) *perplexity.ChatRequest {
	model := chatModel
	if model == "" {
		model = appConfig.Defaults.Model
	}
	system := chatSystem
	if system == "" {
		system = appConfig.Defaults.System
	}

	var messages []perplexity.Message
	if system != "" {
		messages = append(messages, perplexity.SystemMessage(system))
	}
	messages = append(messages, perplexity.UserMessage(prompt))

	req := &perplexity.ChatRequest{Model: model, Messages: messages}
	if cmd.Flags().Changed("temperature") {
		req.Temperature = &chatTemperature
	}
	if cmd.Flags().Changed("max-tokens") {
		req.MaxTokens = &chatMaxTokens
	}
	if chatNoCitations {
		disabled := false
		req.ReturnCitations = &disabled
	}
	return req
}

func recordChat(db *store.Store, model string, requestedAt time.Time, resp *perplexity.ChatResponse, chatErr error) {
	entry := store.Entry{RequestedAt: requestedAt, Model: model}

	switch {
	case chatErr == nil:
		entry.PromptTokens = resp.Usage.PromptTokens
		entry.CompletionTokens = resp.Usage.CompletionTokens
		entry.TotalTokens = resp.Usage.TotalTokens
		if resp.Usage.Cost != nil {
			entry.Cost = resp.Usage.Cost.TotalCost
		}
	default:
		entry.Status = "error"
		if apiErr, ok := perplexity.AsAPIError(chatErr); ok {
			entry.Status = string(apiErr.Kind)
		}
	}

	if err := db.RecordRequest(context.Background(), entry); err != nil {
		observability.CLILogger.Warn("failed to journal request", zap.Error(err))
	}
}

func init() {
	chatCmd.Flags().StringVarP(&chatModel, "model", "m", "", "model to query (default from config)")
	chatCmd.Flags().StringVarP(&chatSystem, "system", "s", "", "system prompt")
	chatCmd.Flags().Float64VarP(&chatTemperature, "temperature", "t", 0.2, "sampling temperature (0.0-2.0)")
	chatCmd.Flags().IntVar(&chatMaxTokens, "max-tokens", 0, "maximum completion tokens")
	chatCmd.Flags().BoolVar(&chatNoCitations, "no-citations", false, "omit citations from the response")
	chatCmd.Flags().StringVarP(&chatOutput, "output-format", "o", string(output.FormatTable), "Output format: table|json")
	rootCmd.AddCommand(chatCmd)
}
