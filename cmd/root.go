package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/abhisek/mathdaily/internal/config"
	"github.com/abhisek/mathdaily/internal/curriculum"
	"github.com/abhisek/mathdaily/internal/llm"
	"github.com/abhisek/mathdaily/internal/logger"
	"github.com/abhisek/mathdaily/internal/problemgen"
	"github.com/abhisek/mathdaily/internal/store"
	"github.com/abhisek/mathdaily/internal/worksheet"
)

var rootCmd = &cobra.Command{
	Use:   "mathdaily",
	Short: "AI daily math worksheets for K-12 students",
	Long: `mathdaily plans a personalized daily worksheet from a student's weak and
current topics, generates the problems with an LLM, analyzes wrong answers
and adjusts difficulty from submitted scores.`,
	SilenceUsage: true,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "Path to a mathdaily.yaml config file")
	rootCmd.PersistentFlags().String("db", "", "SQLite path or postgres:// URL (overrides store.dsn)")
	rootCmd.PersistentFlags().String("provider", "", "LLM provider: gemini, openai, anthropic, openrouter or mock")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(worksheetCmd)
	rootCmd.AddCommand(solveCmd)
	rootCmd.AddCommand(curriculumCmd)
	rootCmd.AddCommand(studentCmd)
	rootCmd.AddCommand(llmCmd)
	rootCmd.AddCommand(versionCmd)
}

// env bundles what most commands need.
type env struct {
	cfg   *config.Config
	log   *zap.Logger
	store *store.Store
}

func (e *env) Close() {
	_ = e.store.Close()
	_ = e.log.Sync()
}

// setup loads configuration, builds the logger and opens the store.
func setup(cmd *cobra.Command) (*env, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	if p, _ := cmd.Flags().GetString("provider"); p != "" {
		cfg.LLM.Provider = p
	}

	log, err := logger.New(cfg.Log)
	if err != nil {
		return nil, fmt.Errorf("build logger: %w", err)
	}

	dsn, err := resolveDSN(cmd, cfg)
	if err != nil {
		return nil, fmt.Errorf("resolve database: %w", err)
	}
	st, err := store.Open(dsn)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	return &env{cfg: cfg, log: log, store: st}, nil
}

// resolveDSN returns the database using --db flag (highest priority),
// then store.dsn, then the default per-user SQLite file.
func resolveDSN(cmd *cobra.Command, cfg *config.Config) (string, error) {
	if p, _ := cmd.Flags().GetString("db"); p != "" {
		return p, nil
	}
	if cfg.Store.DSN != "" {
		return cfg.Store.DSN, nil
	}
	return store.DefaultDBPath()
}

// provider builds the configured LLM provider. obs may be nil.
func (e *env) provider(ctx context.Context, obs llm.Observer) (llm.Provider, error) {
	p, err := llm.NewProvider(ctx, e.cfg.LLM, e.store.Events(), e.log, obs)
	if err != nil {
		return nil, fmt.Errorf("LLM provider: %w", err)
	}
	return p, nil
}

func (e *env) generationConfig() problemgen.Config {
	g := problemgen.DefaultConfig()
	g.ChunkSize = e.cfg.Generation.ChunkSize
	g.Timeout = e.cfg.Generation.BatchTimeout
	g.MaxTokens = e.cfg.Generation.MaxTokens
	g.Temperature = e.cfg.Generation.Temperature
	return g
}

// service wires a worksheet.Service over the store.
func (e *env) service(provider llm.Provider, opts ...worksheet.Option) *worksheet.Service {
	return worksheet.New(e.store, provider, worksheet.Config{
		Generation:     e.generationConfig(),
		RewriteTimeout: e.cfg.Generation.RewriteTimeout,
	}, e.log, opts...)
}

// ensureCurriculum seeds the embedded catalog into an empty database.
func (e *env) ensureCurriculum(ctx context.Context) error {
	chapters, err := e.store.Curriculum().ListChapters(ctx, curriculum.DefaultSchoolLevel, curriculum.DefaultGrade)
	if err != nil {
		return fmt.Errorf("check curriculum: %w", err)
	}
	if len(chapters) > 0 {
		return nil
	}
	if _, err := curriculum.SeedDefault(ctx, e.store.Curriculum(), e.log); err != nil {
		return fmt.Errorf("seed curriculum: %w", err)
	}
	return nil
}
