package cmd

import (
	"context"
	"errors"
	"os"

	"go.uber.org/zap"

	"github.com/Krasnovvvvv/perplexity-go/internal/observability"
	"github.com/Krasnovvvvv/perplexity-go/internal/perplexity"
)

// Exit codes. Each error kind gets its own code so scripts can react
// without parsing log output.
const (
	ExitOK             = 0
	ExitError          = 1
	ExitConfiguration  = 2
	ExitValidation     = 3
	ExitAuthentication = 4
	ExitRateLimited    = 5
	ExitServer         = 6
	ExitNetwork        = 7
	ExitTimeout        = 8
	ExitParse          = 9
	ExitCancelled      = 130
)

// ExitOnError logs err and terminates the process with its semantic exit
// code. A nil err exits zero.
func ExitOnError(err error) {
	if err == nil {
		observability.Sync()
		os.Exit(ExitOK)
	}

	code := exitCodeFor(err)
	fields := []zap.Field{zap.Int("exit_code", code)}

	if apiErr, ok := perplexity.AsAPIError(err); ok {
		fields = append(fields, zap.String("kind", string(apiErr.Kind)))
		if apiErr.StatusCode > 0 {
			fields = append(fields, zap.Int("status", apiErr.StatusCode))
		}
		if apiErr.RetryAfter != nil {
			fields = append(fields, zap.Int("retry_after_seconds", *apiErr.RetryAfter))
		}
	}

	fields = append(fields, zap.Error(err))
	observability.CLILogger.Error("command failed", fields...)
	observability.Sync()
	os.Exit(code)
}

func exitCodeFor(err error) int {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return ExitCancelled
	}

	apiErr, ok := perplexity.AsAPIError(err)
	if !ok {
		return ExitError
	}

	switch apiErr.Kind {
	case perplexity.KindConfiguration:
		return ExitConfiguration
	case perplexity.KindValidation:
		return ExitValidation
	case perplexity.KindAuthentication:
		return ExitAuthentication
	case perplexity.KindRateLimited:
		return ExitRateLimited
	case perplexity.KindServer:
		return ExitServer
	case perplexity.KindNetwork:
		return ExitNetwork
	case perplexity.KindTimeout:
		return ExitTimeout
	case perplexity.KindJSONParse:
		return ExitParse
	default:
		return ExitError
	}
}
