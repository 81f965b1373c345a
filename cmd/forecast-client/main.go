package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/okian/waitcast/internal/forecastclient"
	"github.com/okian/waitcast/pkg/logger"
)

var (
	baseURL  string
	date     string
	patients int
	cond     string
	days     int
	timeout  time.Duration
	asJSON   bool
	verbose  bool
	listOnly bool
)

var rootCmd = &cobra.Command{
	Use:   "forecast-client",
	Short: "Request a reception and wait time forecast from a waitcast server",
	Long: `forecast-client posts a forecast request to a running waitcast server and
prints the per-slot reception count, queue length and wait minutes. The slot
with the longest wait is marked with an asterisk.

Examples:
  forecast-client --date 2026-10-20 --patients 1200 --weather 晴
  forecast-client --date 2026-10-19 --days 5 --json
  forecast-client --list-weather`,
	SilenceUsage: true,
	RunE:         runForecast,
}

func init() {
	rootCmd.Flags().StringVar(&baseURL, "url", "http://localhost:9080", "waitcast server base URL")
	rootCmd.Flags().StringVarP(&date, "date", "d", time.Now().Format("2006-01-02"), "Target date (YYYY-MM-DD)")
	rootCmd.Flags().IntVarP(&patients, "patients", "p", 1200, "Expected total outpatients for the day")
	rootCmd.Flags().StringVarP(&cond, "weather", "w", "晴", "Weather category")
	rootCmd.Flags().IntVar(&days, "days", 1, "Number of consecutive days to forecast")
	rootCmd.Flags().DurationVar(&timeout, "timeout", 30*time.Second, "HTTP request timeout")
	rootCmd.Flags().BoolVar(&asJSON, "json", false, "Print JSON instead of a table")
	rootCmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Log requests to stderr")
	rootCmd.Flags().BoolVar(&listOnly, "list-weather", false, "List accepted weather categories and exit")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func runForecast(cmd *cobra.Command, _ []string) error {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if verbose {
		if err := logger.Init(logger.WithWriter(os.Stderr), logger.WithFormat("text")); err != nil {
			return err
		}
		_ = logger.SetLevelString("debug")
		ctx = forecastclient.WithLogger(ctx, logger.Named("forecast-client"))
	}

	out := cmd.OutOrStdout()
	if listOnly {
		opts, err := forecastclient.NewClient(baseURL, timeout).Weather(ctx)
		if err != nil {
			return err
		}
		for _, o := range opts {
			fmt.Fprintf(out, "%s\t%s\n", o.Value, o.Description)
		}
		return nil
	}

	format := forecastclient.FormatTable
	if asJSON {
		format = forecastclient.FormatJSON
	}
	return forecastclient.Run(ctx, &forecastclient.Config{
		BaseURL:       baseURL,
		Timeout:       timeout,
		Date:          date,
		TotalPatients: patients,
		Weather:       cond,
		Days:          days,
		Format:        format,
	}, out)
}
