package main

import (
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"cdsmatch/internal/catalog"
	"cdsmatch/internal/config"
	"cdsmatch/internal/embedding"
	"cdsmatch/internal/llm"
	"cdsmatch/internal/logging"
	"cdsmatch/internal/pipeline"
	"cdsmatch/internal/sheet"
	"cdsmatch/internal/usage"
)

var (
	flagConfig   string
	flagFile     string
	flagProvider string
	flagLanguage string
	flagDebug    bool
)

var rootCmd = &cobra.Command{
	Use:   "cdsmatch",
	Short: "Map interface-field definitions to catalog view fields",
	Long: `cdsmatch reads interface definition workbooks, matches each field row
against a curated custom-field table and the CDS view catalog, and writes
the proposed targets back into the workbook's output columns.

Matching runs in two stages: a vector-similarity pre-match against the
custom-field table, then language-model matching over a shortlisted set of
catalog views.`,
	RunE:          run,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.Flags().StringVar(&flagConfig, "config", "config.yaml", "configuration file")
	rootCmd.Flags().StringVar(&flagFile, "file", "", "process one workbook (relative to the input directory)")
	rootCmd.Flags().StringVar(&flagProvider, "provider", "", "AI provider (claude, gemini, openai)")
	rootCmd.Flags().StringVar(&flagLanguage, "langu", "", "catalog content language (en, zh, ja)")
	rootCmd.Flags().BoolVar(&flagDebug, "debug", false, "enable debug logging")
}

func run(cmd *cobra.Command, _ []string) error {
	start := time.Now()

	cfg, err := config.Load(flagConfig)
	if err != nil {
		return err
	}
	if flagProvider != "" {
		cfg.LLM.Provider = flagProvider
	}
	if flagLanguage != "" {
		cfg.Language = flagLanguage
	}
	if flagDebug {
		cfg.Debug = true
	}

	if err := sheet.EnsureDirs(cfg.DataDir); err != nil {
		return err
	}
	if err := logging.Initialize(cfg.DataDir, cfg.Debug); err != nil {
		return err
	}
	defer logging.Sync()
	log := logging.L()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	engine, err := embedding.New(cfg.Embedding)
	if err != nil {
		return fmt.Errorf("embedding engine: %w", err)
	}
	store, err := catalog.Open(cfg.Catalog.Path, engine, cfg.Language)
	if err != nil {
		return fmt.Errorf("open catalog: %w", err)
	}
	defer store.Close()

	client, err := llm.New(ctx, cfg.LLM)
	if err != nil {
		return fmt.Errorf("llm client: %w", err)
	}
	log.Infow("starting run", "provider", client.Name(), "language", cfg.Language)

	var files []string
	if flagFile != "" {
		path := filepath.Join(cfg.DataDir, sheet.InputDir, flagFile)
		if _, err := os.Stat(path); err != nil {
			return fmt.Errorf("input file not found: %s", path)
		}
		files = []string{path}
	} else {
		files, err = sheet.Discover(cfg.DataDir)
		if err != nil {
			return err
		}
	}
	if len(files) == 0 {
		log.Infow("no workbooks found in input directory")
		return nil
	}

	tracker := usage.NewTracker()
	ctx = usage.NewContext(ctx, tracker)

	p := pipeline.New(cfg, store, client)
	processed, failed := p.Run(ctx, files)

	if path, err := tracker.Save(filepath.Join(cfg.DataDir, sheet.TokensDir)); err != nil {
		log.Warnw("could not save usage session", "error", err)
	} else {
		log.Infow("usage session saved", "path", path)
	}

	total := tracker.Total()
	log.Infow("run complete",
		"files", len(files), "processed", processed, "failed", failed,
		"llm_calls", total.Calls, "tokens", total.TotalTokens,
		"duration", formatDuration(time.Since(start)))

	if failed > 0 {
		return fmt.Errorf("%d of %d files failed", failed, len(files))
	}
	return nil
}

// formatDuration renders elapsed time as hours/minutes/seconds.
func formatDuration(d time.Duration) string {
	h := int(d.Hours())
	m := int(d.Minutes()) % 60
	s := d.Seconds() - float64(h*3600+m*60)
	return fmt.Sprintf("%dh %dm %.2fs", h, m, s)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
