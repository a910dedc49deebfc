// Package cmd wires configuration, capture, console, and display into the
// tailpane command line.
package cmd

import (
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/tailpane/tailpane/internal/config"
)

// Version is stamped by the build; "dev" otherwise.
var Version = "dev"

var rootCmd = &cobra.Command{
	Use:   "tailpane [flags] -- command [args...]",
	Short: "Run a command and watch its output in a bounded console pane",
	Long: `Tailpane runs a command and captures its standard output and standard
error into a scrollable console pane, tagging each stream with its own
color and retaining at most a configured number of lines.

In append mode (the default) new output arrives at the bottom and the
oldest lines are trimmed; with --insert each completed line appears at
the top and the newest lines are trimmed instead.`,
	Args:    cobra.MinimumNArgs(1),
	RunE:    runTailpane,
	Version: Version,
	// The captured command owns everything after "--".
	DisableFlagsInUseLine: true,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.Flags().StringP("config", "c", "", "config file (default is "+config.ConfigDir()+"/config.yaml)")
	rootCmd.Flags().Bool("insert", false, "insert each completed line at the top instead of appending")
	rootCmd.Flags().Int("max-lines", 0, "maximum retained line count (0 uses the configured default)")
	rootCmd.Flags().Bool("pty", false, "run the command on a pseudo-terminal (merges stdout and stderr)")
	rootCmd.Flags().Bool("strip-ansi", true, "strip terminal escape sequences from captured output")
	rootCmd.Flags().Bool("plain", false, "no pane: pass output through to this terminal, still bounded")
	rootCmd.Flags().String("transcript", "", "write the raw output tail to this file on exit")

	_ = viper.BindPFlag("config", rootCmd.Flags().Lookup("config"))
	_ = viper.BindPFlag("capture.pty", rootCmd.Flags().Lookup("pty"))
	_ = viper.BindPFlag("capture.strip_ansi", rootCmd.Flags().Lookup("strip-ansi"))
}

func initConfig() {
	config.SetDefaults()

	if cfgFile := viper.GetString("config"); cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(config.ConfigDir())
		viper.AddConfigPath(".")
	}

	viper.AutomaticEnv()
	viper.SetEnvPrefix("TAILPANE")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Missing config file is fine; defaults cover everything.
	_ = viper.ReadInConfig()
}
