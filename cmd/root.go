package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/abhisek/quizforge/internal/llm"
	"github.com/abhisek/quizforge/internal/logger"
	"github.com/abhisek/quizforge/internal/store"
)

var rootCmd = &cobra.Command{
	Use:   "quizforge",
	Short: "Generate weighted multiple-choice exams from lecture documents",
	Long: `quizforge turns lecture PDFs into pools of multiple-choice questions and
assembles exams that draw more questions from the lectures a student scored
worst on.`,
	SilenceUsage: true,
}

// Execute runs the root command. Interrupts cancel the running command.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.String("db", "", "Path to SQLite database file (overrides QUIZFORGE_DB env var)")
	pf.String("log-level", "info", "Log level (debug, info, warn, error)")
	pf.String("log-mode", "dev", "Log encoding (dev, prod)")

	rootCmd.AddCommand(generateCmd)
	rootCmd.AddCommand(examCmd)
	rootCmd.AddCommand(reportCmd)
	rootCmd.AddCommand(poolsCmd)
	rootCmd.AddCommand(sessionCmd)
	rootCmd.AddCommand(llmCmd)
	rootCmd.AddCommand(versionCmd)
}

// viperForCmd binds a command's flags, QUIZFORGE_* environment variables and
// an optional quizforge.{yaml,toml,json} config file to a fresh viper.
func viperForCmd(cmd *cobra.Command) *viper.Viper {
	v := viper.New()
	_ = v.BindPFlags(cmd.Flags())

	v.SetEnvPrefix("QUIZFORGE")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	v.SetConfigName("quizforge")
	v.AddConfigPath(".")
	v.AddConfigPath("$HOME/.config/quizforge")
	v.AddConfigPath("/etc/quizforge")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			fmt.Fprintln(os.Stderr, "warning: error reading config file:", err)
		}
	}
	return v
}

// setup returns the command's config and logger.
func setup(cmd *cobra.Command) (*viper.Viper, *logger.Logger, error) {
	v := viperForCmd(cmd)
	log, err := logger.New(v.GetString("log-mode"), v.GetString("log-level"))
	if err != nil {
		return nil, nil, fmt.Errorf("init logger: %w", err)
	}
	if f := v.ConfigFileUsed(); f != "" {
		log.Debug("loaded config file", "path", f)
	}
	return v, log, nil
}

// resolveDBPath returns the database path using --db (or QUIZFORGE_DB, or
// the config file), then the default XDG path.
func resolveDBPath(v *viper.Viper) (string, error) {
	if p := v.GetString("db"); p != "" {
		return p, store.EnsureDir(p)
	}
	return store.DefaultDBPath()
}

func openStore(v *viper.Viper) (*store.Store, error) {
	dbPath, err := resolveDBPath(v)
	if err != nil {
		return nil, fmt.Errorf("resolve database path: %w", err)
	}
	st, err := store.Open(dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	return st, nil
}

// newProvider builds the completion-service client from the environment,
// logging every call to the store.
func newProvider(ctx context.Context, st *store.Store, log *logger.Logger) (llm.Provider, error) {
	provider, err := llm.NewProviderFromEnv(ctx, st.EventRepo(), log)
	if err != nil {
		return nil, fmt.Errorf("LLM provider not configured: %w", err)
	}
	return provider, nil
}
