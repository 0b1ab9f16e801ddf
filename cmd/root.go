package cmd

import (
	"os"

	"github.com/BrunoViet/swapdesk/internal/config"
	"github.com/BrunoViet/swapdesk/internal/logger"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

var (
	flagConfig string

	v   = viper.New()
	cfg *config.Config
	log = zap.NewNop()
)

var rootCmd = &cobra.Command{
	Use:   "swapdesk",
	Short: "Token swap desk with live prices and per-session balances",
	Long: "A token swap form backed by public price feeds. Each session holds its own " +
		"in-memory balances; the form runs in the terminal, in a browser terminal, or over the HTTP API.",
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(v, flagConfig)
		if err != nil {
			return err
		}
		// The terminal UI owns stdout, so it only logs to the file.
		console := cmd.Name() != "tui"
		log, err = logger.New(cfg.LogOptions(console))
		if err != nil {
			return err
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = logger.Sync(log)
	},
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&flagConfig, "config", "", "Config file (yaml, toml or json)")
	pf.String("server", "http://localhost:8888", "Server address; when unset tui, web and swap start an embedded server")
	pf.String("log-level", "info", "Log level (debug, info, warn, error)")
	pf.String("log-file", "", "Rotating log file path")
	pf.Bool("log-json", false, "Log as JSON")

	_ = v.BindPFlag("server", pf.Lookup("server"))
	_ = v.BindPFlag("log.level", pf.Lookup("log-level"))
	_ = v.BindPFlag("log.file", pf.Lookup("log-file"))
	_ = v.BindPFlag("log.json", pf.Lookup("log-json"))
}

// remoteServer reports whether the user pointed us at a running server,
// by flag, environment or config file.
func remoteServer(cmd *cobra.Command) bool {
	if cmd.Flags().Changed("server") {
		return true
	}
	if _, ok := os.LookupEnv(config.EnvPrefix + "_SERVER"); ok {
		return true
	}
	return v.InConfig("server")
}

func Execute() error {
	return rootCmd.Execute()
}
