package cmd

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/abhisek/studychat/internal/config"
	"github.com/abhisek/studychat/internal/store"
)

var rootCmd = &cobra.Command{
	Use:   "studychat",
	Short: "Chat assistant with step-by-step lesson coaching",
	Long: "studychat is a terminal chat assistant that switches into Study & Learn mode " +
		"and coaches you through cataloged lessons one step at a time.",
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runApp(cmd)
	},
}

func Execute() error {
	return rootCmd.Execute()
}

// ExecuteContext runs the root command with ctx available to every
// subcommand through cmd.Context().
func ExecuteContext(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.String("config", "", "Path to config file (default $XDG_CONFIG_HOME/studychat/config.toml)")
	pf.String("db", "", "Path to SQLite event log (overrides STUDYCHAT_DB)")
	pf.String("lessons", "", "Directory of lesson YAML files")
	pf.String("exports", "", "Directory for generated slide decks")
	pf.String("provider", "", "LLM provider: openai, anthropic, gemini, openrouter, mock")
	pf.String("model", "", "Model for the selected provider")
	pf.String("log-level", "", "Log level: debug, info, warn, error")

	rootCmd.Flags().Bool("no-splash", false, "Skip the welcome screen")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(lessonsCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(resetCmd)
	rootCmd.AddCommand(llmCmd)
	rootCmd.AddCommand(versionCmd)
}

// loadConfig resolves configuration: file, .env and environment, then
// command-line flags on top.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	if err := config.LoadDotEnv(); err != nil {
		return config.Config{}, err
	}
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return cfg, err
	}

	if v, _ := cmd.Flags().GetString("db"); v != "" {
		cfg.DBPath = v
	}
	if v, _ := cmd.Flags().GetString("lessons"); v != "" {
		cfg.LessonsDir = v
	}
	if v, _ := cmd.Flags().GetString("exports"); v != "" {
		cfg.ExportsDir = v
	}
	if v, _ := cmd.Flags().GetString("log-level"); v != "" {
		cfg.LogLevel = v
	}
	if v, _ := cmd.Flags().GetString("provider"); v != "" {
		cfg.LLM.Provider = v
	}
	if v, _ := cmd.Flags().GetString("model"); v != "" {
		cfg.LLM.SetModel(v)
	}
	return cfg, cfg.Validate()
}

// resolveDBPath returns the database path from config (flag, file or
// STUDYCHAT_DB), falling back to the default XDG location.
func resolveDBPath(cfg config.Config) (string, error) {
	if cfg.DBPath != "" {
		return cfg.DBPath, store.EnsureDir(cfg.DBPath)
	}
	return store.DefaultDBPath()
}

// openStore loads config and opens the event log, for inspection commands.
func openStore(cmd *cobra.Command) (*store.Store, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	dbPath, err := resolveDBPath(cfg)
	if err != nil {
		return nil, err
	}
	return store.Open(dbPath)
}
