package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/abhisek/tutoria/internal/config"
	"github.com/abhisek/tutoria/internal/store"
)

var rootCmd = &cobra.Command{
	Use:   "tutoria",
	Short: "Adaptive quiz client",
	Long:  "Tutoria is a terminal client for an adaptive assessment service. It serves one question at a time and shows how your skill mastery evolves.",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runApp(cmd, false)
	},
	SilenceUsage: true,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.String("db", "", "Path to SQLite database file (overrides TUTORIA_DB env var)")
	flags.String("config", "", "Path to config file (default $XDG_CONFIG_HOME/tutoria/config.yaml)")
	flags.String("api-url", "", "Base URL of the assessment service (overrides TUTORIA_API_URL)")
	flags.Duration("timeout", 0, "Per-request timeout for the assessment service (overrides TUTORIA_TIMEOUT)")
	flags.Bool("debug", false, "Write a debug log next to the database")

	rootCmd.AddCommand(playCmd)
	rootCmd.AddCommand(plainCmd)
	rootCmd.AddCommand(resetCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(llmCmd)
	rootCmd.AddCommand(versionCmd)
}

// loadConfig resolves the configuration file and environment, then applies
// command line overrides.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return config.Config{}, err
	}

	if cmd.Flags().Changed("api-url") {
		cfg.APIURL, _ = cmd.Flags().GetString("api-url")
	}
	if cmd.Flags().Changed("timeout") {
		cfg.Timeout, _ = cmd.Flags().GetDuration("timeout")
	}
	config.Normalize(&cfg)
	if err := config.Validate(cfg); err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}

// resolveDBPath returns the database path using --db flag (highest priority),
// then the configured path, then TUTORIA_DB and the default XDG path.
func resolveDBPath(cmd *cobra.Command, cfg config.Config) (string, error) {
	if p, _ := cmd.Flags().GetString("db"); p != "" {
		return p, store.EnsureDir(p)
	}
	if cfg.DB != "" {
		return cfg.DB, store.EnsureDir(cfg.DB)
	}
	return store.DefaultDBPath()
}

// openStore loads the configuration and opens the event database.
func openStore(cmd *cobra.Command) (*store.Store, config.Config, string, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, config.Config{}, "", err
	}
	dbPath, err := resolveDBPath(cmd, cfg)
	if err != nil {
		return nil, config.Config{}, "", fmt.Errorf("resolve database path: %w", err)
	}
	st, err := store.Open(dbPath)
	if err != nil {
		return nil, config.Config{}, "", fmt.Errorf("open database: %w", err)
	}
	return st, cfg, dbPath, nil
}
