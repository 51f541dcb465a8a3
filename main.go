package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/insightdelivered/statement-analyzer/internal/analysis"
	"github.com/insightdelivered/statement-analyzer/internal/api"
	"github.com/insightdelivered/statement-analyzer/internal/classifier"
	"github.com/insightdelivered/statement-analyzer/internal/config"
	"github.com/insightdelivered/statement-analyzer/internal/extractor"
	"github.com/insightdelivered/statement-analyzer/internal/logger"
	"github.com/insightdelivered/statement-analyzer/internal/metrics"
	"github.com/insightdelivered/statement-analyzer/internal/models"
	"github.com/insightdelivered/statement-analyzer/internal/writer"
)

const version = "2.0.0"

func main() {
	if err := newRootCmd(os.Stdout, os.Stderr).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func newRootCmd(out, errOut io.Writer) *cobra.Command {
	root := &cobra.Command{
		Use:   "statement-analyzer",
		Short: "Bank statement transaction extractor and risk summarizer",
		Long: `Reconstructs a transaction ledger from bank statement text (PDF or plain
text), infers running balances, summarizes the ledger and optionally scores
each transaction with a risk classifier.

Configuration is read from the environment and an optional .env file.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetOut(out)
	root.SetErr(errOut)

	root.AddCommand(newAnalyzeCmd(out, errOut), newServeCmd(errOut), newVersionCmd(out))
	return root
}

func newVersionCmd(out io.Writer) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version and exit",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(out, "statement-analyzer v%s\n", version)
		},
	}
}

type analyzeFlags struct {
	modelPath string
	url       string
	csv       bool
	header    bool
	debug     bool
}

func newAnalyzeCmd(out, errOut io.Writer) *cobra.Command {
	var flags analyzeFlags

	cmd := &cobra.Command{
		Use:   "analyze <statement.pdf|statement.txt> [more ...]",
		Short: "Analyze statements and print the result as JSON",
		Example: `  # Analyze a PDF statement
  statement-analyzer analyze statement.pdf

  # Score with a local model and also write statement.csv
  statement-analyzer analyze --classifier-model=model.json --csv statement.pdf`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(".env")
			if err != nil {
				return err
			}
			if flags.modelPath != "" {
				cfg.ClassifierModelPath = flags.modelPath
			}
			if flags.url != "" {
				cfg.ClassifierURL = flags.url
			}

			log := newLogger(cfg, errOut)
			c, err := newClassifier(cfg, log)
			if err != nil {
				return err
			}
			analyzer := analysis.NewAnalyzer(c, log, nil)

			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")
			for _, path := range args {
				res, err := analyzeFile(cmd.Context(), analyzer, path, flags.debug)
				if err != nil {
					return fmt.Errorf("%s: %w", path, err)
				}
				if err := enc.Encode(res); err != nil {
					return err
				}
				if flags.csv && res.Error == "" {
					csvPath := strings.TrimSuffix(path, filepath.Ext(path)) + ".csv"
					w := &writer.CSVWriter{IncludeHeader: flags.header}
					if err := w.WriteToFile(csvPath, res); err != nil {
						return fmt.Errorf("CSV write failed: %w", err)
					}
					log.Info().Str("output", csvPath).Msg("ledger written")
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&flags.modelPath, "classifier-model", "", "Path to a JSON risk model (overrides CLASSIFIER_MODEL_PATH)")
	cmd.Flags().StringVar(&flags.url, "classifier-url", "", "Base URL of a remote risk model (overrides CLASSIFIER_URL)")
	cmd.Flags().BoolVar(&flags.csv, "csv", false, "Also write the ledger next to each input as <name>.csv")
	cmd.Flags().BoolVar(&flags.header, "header", true, "Include metadata rows in the CSV")
	cmd.Flags().BoolVar(&flags.debug, "debug", false, "Include the per-line extraction trace")
	return cmd
}

func analyzeFile(ctx context.Context, a *analysis.Analyzer, path string, debug bool) (*models.Result, error) {
	pages, err := extractor.ExtractFile(path)
	if errors.Is(err, extractor.ErrNoReadableText) {
		return analysis.ErrorResult(err.Error()), nil
	}
	if err != nil {
		return nil, err
	}
	if ctx == nil {
		ctx = context.Background()
	}
	return a.Analyze(ctx, extractor.JoinPages(pages), analysis.Options{IncludeDebug: debug}), nil
}

func newServeCmd(errOut io.Writer) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the analysis HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(".env")
			if err != nil {
				return err
			}
			log := newLogger(cfg, errOut)

			reg := prometheus.NewRegistry()
			reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
			m := metrics.New(reg)

			c, err := newClassifier(cfg, log)
			if err != nil {
				return err
			}

			h := api.NewHandler(
				analysis.NewAnalyzer(c, log, m),
				cache.New(cfg.CacheTTL, cfg.CacheCleanupInterval),
				log,
				version,
			)
			app := api.NewApp(h, api.ServerConfig{
				BodyLimitMB:  cfg.HTTPBodyLimitMB,
				ReadTimeout:  cfg.HTTPReadTimeout,
				WriteTimeout: cfg.HTTPWriteTimeout,
			}, m, reg)

			errCh := make(chan error, 1)
			go func() {
				log.Info().Str("port", cfg.HTTPPort).Msg("starting server")
				errCh <- app.Listen(":" + cfg.HTTPPort)
			}()

			quit := make(chan os.Signal, 1)
			signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
			defer signal.Stop(quit)

			select {
			case err := <-errCh:
				return fmt.Errorf("server failed: %w", err)
			case <-quit:
			}

			log.Info().Msg("shutting down server...")
			if err := app.ShutdownWithTimeout(30 * time.Second); err != nil {
				return fmt.Errorf("server forced to shutdown: %w", err)
			}
			log.Info().Msg("server stopped")
			return nil
		},
	}
}

// newLogger keeps JSON logs off stdout, which carries command output.
func newLogger(cfg *config.Config, errOut io.Writer) zerolog.Logger {
	if cfg.LogFormat == "console" {
		return logger.New(logger.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})
	}
	return logger.NewWithWriter(errOut, cfg.LogLevel)
}

func newClassifier(cfg *config.Config, log zerolog.Logger) (analysis.Classifier, error) {
	c, err := classifier.New(classifier.Config{
		ModelPath:  cfg.ClassifierModelPath,
		URL:        cfg.ClassifierURL,
		Timeout:    cfg.ClassifierTimeout,
		MaxRetries: cfg.ClassifierMaxRetries,
	}, log)
	if err != nil {
		return nil, fmt.Errorf("risk classifier: %w", err)
	}
	if _, ok := c.(classifier.Unavailable); ok {
		log.Warn().Msg("no risk classifier configured; summaries will omit fraud analysis")
	}
	return c, nil
}
