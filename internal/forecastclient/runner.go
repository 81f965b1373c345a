package forecastclient

import (
	"context"
	"fmt"
	"io"

	"github.com/okian/waitcast/internal/domain/types"
	"github.com/okian/waitcast/pkg/logger"
)

// Run requests the configured forecast and renders it to out. Batch items
// that failed are rendered as error lines; the first failure is returned
// after everything else has been written.
func Run(ctx context.Context, cfg *Config, out io.Writer) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	log := logger.Nop()
	if l, ok := ctx.Value(loggerKey{}).(logger.Logger); ok {
		log = l
	}

	client := NewClient(cfg.BaseURL, cfg.Timeout)
	reqs := cfg.Requests()

	if len(reqs) == 1 {
		log.Debug(ctx, "requesting forecast", logger.String("date", reqs[0].Date))
		report, err := client.Forecast(ctx, reqs[0])
		if err != nil {
			return err
		}
		if cfg.Format == FormatJSON {
			return RenderJSON(out, report)
		}
		return RenderTable(out, report)
	}

	log.Debug(ctx, "requesting batch", logger.Int("days", len(reqs)))
	resp, err := client.ForecastBatch(ctx, reqs)
	if err != nil {
		return err
	}
	if cfg.Format == FormatJSON {
		return RenderJSON(out, resp)
	}
	return renderBatch(out, reqs, resp)
}

func renderBatch(out io.Writer, reqs []types.ForecastRequest, resp types.BatchResponse) error {
	var firstErr error
	for i, item := range resp.Results {
		if i > 0 {
			fmt.Fprintln(out)
		}
		if item.Error != nil {
			apiErr := &APIError{Body: *item.Error}
			date := "?"
			if item.Index >= 0 && item.Index < len(reqs) {
				date = reqs[item.Index].Date
			}
			fmt.Fprintf(out, "%s  error: %s\n", date, item.Error.Message)
			if firstErr == nil {
				firstErr = apiErr
			}
			continue
		}
		if err := RenderTable(out, *item.Report); err != nil {
			return err
		}
	}
	return firstErr
}

type loggerKey struct{}

// WithLogger attaches a logger used for request tracing.
func WithLogger(ctx context.Context, l logger.Logger) context.Context {
	return context.WithValue(ctx, loggerKey{}, l)
}
