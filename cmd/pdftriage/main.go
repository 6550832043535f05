package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/askeland/pdftriage/internal/config"
	"github.com/askeland/pdftriage/internal/report"
	"github.com/askeland/pdftriage/internal/scan"
	"github.com/spf13/cobra"
)

var (
	output    string
	htmlPath  string
	workers   int
	quiet     bool
	logLevel  string
	logFormat string
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "pdftriage <folder>",
		Short: "Triage a folder of PDFs against WCAG 2.1 accessibility heuristics",
		Long: `pdftriage scans a folder for PDF files and checks each one for
tagging, alt text on figures, document metadata, and heading order.
It writes one CSV row per file with Pass/Fail/N/A judgments.

Example:
  pdftriage ./repository -o audit.csv --html audit.html`,
		Args: cobra.ExactArgs(1),
		RunE: run,
	}

	rootCmd.Flags().StringVarP(&output, "output", "o", "", "Output CSV path (default: <folder>-accessibility.csv, '-' for stdout)")
	rootCmd.Flags().StringVar(&htmlPath, "html", "", "Also write an HTML summary report to this path")
	rootCmd.Flags().IntVar(&workers, "workers", 0, "Number of files to process concurrently (default 1)")
	rootCmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "Suppress per-file progress output")
	rootCmd.Flags().StringVar(&logLevel, "log-level", "", "Log level: debug, info, warn, error")
	rootCmd.Flags().StringVar(&logFormat, "log-format", "", "Log format: text or json")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, args []string) error {
	folder := args[0]

	cfg := config.Load()
	if cmd.Flags().Changed("workers") {
		cfg.Workers = workers
	}
	if cmd.Flags().Changed("quiet") {
		cfg.Quiet = quiet
	}
	if cmd.Flags().Changed("log-level") {
		cfg.LogLevel = logLevel
	}
	if cmd.Flags().Changed("log-format") {
		cfg.LogFormat = logFormat
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	log := newLogger(cfg)

	var console *scan.Console
	if !cfg.Quiet {
		console = scan.NewConsole(os.Stdout)
	}
	console.Scanning(folder)

	rep := report.New()
	scanner := scan.New(nil, rep, log, console, cfg.Workers)
	if err := scanner.Run(cmd.Context(), folder); err != nil {
		return err
	}

	if rep.Len() == 0 {
		console.NoFiles()
		log.Info("no pdf files found", "root", folder)
		return nil
	}

	outPath := output
	if outPath == "" {
		outPath = defaultOutput(folder)
	}
	if err := writeCSV(rep, outPath); err != nil {
		return err
	}

	if htmlPath != "" {
		if err := writeHTML(rep, htmlPath, folder); err != nil {
			return err
		}
	}

	console.Summary(rep.Summarize(), outPath)
	return nil
}

func newLogger(cfg config.Config) *slog.Logger {
	var level slog.Level
	switch cfg.LogLevel {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}
	if cfg.LogFormat == "json" {
		return slog.New(slog.NewJSONHandler(os.Stderr, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stderr, opts))
}

// defaultOutput derives the CSV name from the scanned folder.
func defaultOutput(folder string) string {
	base := filepath.Base(filepath.Clean(folder))
	if base == "." || base == string(filepath.Separator) {
		base = "pdftriage"
	}
	return base + "-accessibility.csv"
}

func writeCSV(rep *report.Reporter, path string) error {
	if path == "-" {
		return rep.WriteCSV(os.Stdout)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create report: %w", err)
	}
	defer f.Close()
	if err := rep.WriteCSV(f); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	return f.Close()
}

func writeHTML(rep *report.Reporter, path, folder string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create html report: %w", err)
	}
	defer f.Close()
	title := "PDF accessibility triage: " + filepath.Base(filepath.Clean(folder))
	if err := rep.WriteHTML(f, title); err != nil {
		return err
	}
	return f.Close()
}
