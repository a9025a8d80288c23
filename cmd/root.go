package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/abhisek/studyhall/internal/config"
	"github.com/abhisek/studyhall/internal/logging"
	"github.com/abhisek/studyhall/internal/store"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "studyhall",
	Short: "Terminal exam practice",
	Long:  "Studyhall runs timed practice exams from a question backend and keeps a local history of attempts.",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runExam(cmd)
	},
	SilenceUsage: true,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().String("db", "", "Path to SQLite database file (overrides STUDYHALL_DB)")
	rootCmd.PersistentFlags().String("config", "", "Path to config file (default $XDG_CONFIG_HOME/studyhall/config.yaml)")
	rootCmd.PersistentFlags().String("log-level", "", "Log level: debug, info, warn or error")

	addExamFlags(rootCmd)

	rootCmd.AddCommand(examCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(resetCmd)
	rootCmd.AddCommand(llmCmd)
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(updateCmd)
}

// loadConfig resolves the configuration and applies persistent flag
// overrides.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(config.Options{ConfigFile: path})
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if lvl, _ := cmd.Flags().GetString("log-level"); lvl != "" {
		cfg.Log.Level = lvl
	}
	return cfg, nil
}

// openStore opens the database chosen by --db, the config or the default
// path.
func openStore(cmd *cobra.Command, cfg *config.Config) (*store.Store, error) {
	flag, _ := cmd.Flags().GetString("db")
	dbPath, err := cfg.ResolveDBPath(flag)
	if err != nil {
		return nil, fmt.Errorf("resolve database path: %w", err)
	}
	s, err := store.Open(dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	return s, nil
}

// openLogger writes logs to the configured file; the terminal belongs to
// the UI. Falls back to stderr at warn level when the file cannot be opened.
func openLogger(cfg *config.Config) (logging.Logger, io.Closer) {
	level := logging.ParseLevel(cfg.Log.Level)
	path, err := cfg.ResolveLogFile()
	if err == nil {
		logger, closer, err := logging.OpenFile(path, level)
		if err == nil {
			return logger, closer
		}
		fmt.Fprintln(os.Stderr, "Cannot open log file:", err)
	}
	return logging.NewText(os.Stderr, logging.ParseLevel("warn")), nopCloser{}
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
