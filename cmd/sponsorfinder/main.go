package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/jessevdk/go-flags"

	"SponsorFinder/internal/app"
	"SponsorFinder/internal/config"
	"SponsorFinder/internal/logging"
)

type options struct {
	Episodes      int    `long:"episodes" short:"n" default:"3" description:"Number of recent episodes to analyze"`
	OutputDir     string `long:"output-dir" short:"o" description:"Directory for generated reports (default: reports)"`
	OpenRouterKey string `long:"openrouter-key" env:"OPENROUTER_API_KEY" description:"OpenRouter API key; without it the heuristic analysis is used"`
	Config        string `long:"config" short:"c" env:"SPONSOR_FINDER_CONFIG" description:"Path to YAML configuration"`
	Weekly        bool   `long:"weekly" description:"Also write weekly_report.md"`
	LogLevel      string `long:"log-level" env:"LOG_LEVEL" description:"Log level (debug, info, warn, error)"`
}

func main() {
	if err := config.LoadEnvFile(""); err != nil {
		log.Printf("config: %v", err)
	}

	opts, ok := parseOptions()
	if !ok {
		return
	}

	cfg := config.Load(opts.Config)
	applyOptions(&cfg, opts)
	logger := logging.New(cfg.Logging.Level)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	application, err := app.New(ctx, cfg, logger)
	if err != nil {
		logger.Error("application setup failed", "error", err)
		os.Exit(1)
	}
	defer application.Close()

	summary, err := application.Run(ctx, opts.Episodes, opts.Weekly)
	if err != nil {
		logger.Error("application stopped", "error", err)
		application.Close()
		os.Exit(1)
	}

	fmt.Printf("Analyzed %d episodes (%d with heuristic analysis), %d sponsor candidates\n",
		summary.Episodes, summary.Fallbacks, summary.Candidates)
	fmt.Printf("  output: %s\n", summary.OutputDir)
	for _, path := range summary.Reports {
		fmt.Printf("  report: %s\n", path)
	}
	if summary.WeeklyPath != "" {
		fmt.Printf("  weekly: %s\n", summary.WeeklyPath)
	}
}

func parseOptions() (options, bool) {
	var opts options
	parser := flags.NewParser(&opts, flags.Default)
	if _, err := parser.Parse(); err != nil {
		if flagsErr, ok := err.(*flags.Error); ok && flagsErr.Type == flags.ErrHelp {
			return opts, false
		}
		os.Exit(2)
	}
	return opts, true
}

func applyOptions(cfg *config.Config, opts options) {
	if opts.OutputDir != "" {
		cfg.Report.OutputDir = opts.OutputDir
	}
	if opts.OpenRouterKey != "" {
		cfg.Reasoning.APIKey = opts.OpenRouterKey
	}
	if opts.LogLevel != "" {
		cfg.Logging.Level = opts.LogLevel
	}
}
