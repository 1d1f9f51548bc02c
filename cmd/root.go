package cmd

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/abhisek/brightpath/internal/config"
)

var (
	cfgFile string

	// Populated by the root PersistentPreRunE.
	cfg    *config.Config
	logger *slog.Logger
)

var rootCmd = &cobra.Command{
	Use:   "brightpath",
	Short: "Adaptive difficulty engine for BrightPath lessons",
	Long: "BrightPath tracks how each learner does on quizzes and decides the difficulty,\n" +
		"tier and modality focus of their next lessons.",
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load(cmd.Flags(), cfgFile)
		if err != nil {
			return err
		}
		cfg = c
		logger = config.NewLogger(os.Stderr, c.Log)
		slog.SetDefault(logger)
		return nil
	},
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&cfgFile, "config", "", "Config file (default: brightpath.yaml in ., ~/.config/brightpath, /etc/brightpath)")
	pf.String("db", "", "Path to SQLite database file (overrides BRIGHTPATH_DB)")
	pf.String("store", config.BackendSQLite, "Performance record backend: sqlite or mongo")
	pf.String("mongo-uri", "", "MongoDB connection URI for the mongo backend")
	pf.String("mongo-database", "brightpath", "MongoDB database name")
	pf.String("amqp-url", "", "AMQP broker URL; events are logged when empty")
	pf.String("amqp-exchange", "brightpath.events", "AMQP topic exchange for events")
	pf.String("log-level", "info", "Log level: debug, info, warn, error")
	pf.String("log-format", "text", "Log format: text or json")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(submitCmd)
	rootCmd.AddCommand(showCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(learnersCmd)
	rootCmd.AddCommand(dashboardCmd)
	rootCmd.AddCommand(courseCmd)
	rootCmd.AddCommand(resetCmd)
	rootCmd.AddCommand(llmCmd)
	rootCmd.AddCommand(versionCmd)
}
