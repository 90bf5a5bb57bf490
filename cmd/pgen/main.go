package main

import (
	"fmt"
	"os"

	"github.com/dhamidi/pgen/config"
	"github.com/dhamidi/pgen/language"
	"github.com/dhamidi/pgen/parser"
	"github.com/spf13/cobra"
	"github.com/tliron/commonlog"

	_ "github.com/tliron/commonlog/simple"
)

const version = "0.1.0"

type globalFlags struct {
	config    string
	verbosity int
	logFile   string
}

func main() {
	var flags globalFlags

	rootCmd := &cobra.Command{
		Use:   "pgen",
		Short: "Table-driven parser toolkit",
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			var path *string
			if flags.logFile != "" {
				path = &flags.logFile
			}
			commonlog.Configure(flags.verbosity, path)
		},
	}

	rootCmd.PersistentFlags().StringVarP(&flags.config, "config", "c", "pgen.yaml", "language configuration file")
	rootCmd.PersistentFlags().CountVarP(&flags.verbosity, "verbose", "v", "increase log verbosity")
	rootCmd.PersistentFlags().StringVar(&flags.logFile, "log", "", "write logs to this file instead of stderr")

	rootCmd.AddCommand(newParseCmd(&flags))
	rootCmd.AddCommand(newTokensCmd(&flags))
	rootCmd.AddCommand(newTablesCmd())
	rootCmd.AddCommand(newEbnfCmd())
	rootCmd.AddCommand(newLSPCmd(&flags))

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// openLanguage loads the configured language. The config's log level
// applies when no -v flag was given.
func openLanguage(flags *globalFlags, opts ...parser.Option) (*language.Language, error) {
	cfg, err := config.Load(flags.config)
	if err != nil {
		return nil, err
	}
	if flags.verbosity == 0 {
		var path *string
		if flags.logFile != "" {
			path = &flags.logFile
		}
		commonlog.Configure(cfg.Verbosity(), path)
	}
	return language.Open(cfg, opts...)
}
