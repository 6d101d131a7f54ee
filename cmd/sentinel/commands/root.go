package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/orbital-sentinel/sentinel/internal/errors"
	"github.com/orbital-sentinel/sentinel/pkg/config"
)

var (
	cfgFile string
	cfg     *config.Config
)

// rootCmd is the bare `sentinel` invocation: one full assessment cycle with
// no required flags. Everything else is a subcommand.
var rootCmd = &cobra.Command{
	Use:   "sentinel",
	Short: "Snapshot-to-proof bridge for protocol risk assessments",
	Long: `Orbital Sentinel reads protocol-health snapshots written by the CRE
monitoring workflows, classifies their risk, and publishes a Keccak-256
proof of each assessment to the on-chain registry.

Running sentinel with no arguments executes one full cycle: every workflow's
snapshot is read, gated for freshness, canonically encoded, hashed, and — if
new — published through the configured RPC endpoints in order.`,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runCycle(cmd)
	},
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return initConfig()
	},
}

// Execute runs the CLI. Typed errors decide the exit code: a cycle in which
// every attempted workflow failed exits 1, configuration trouble exits 78.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		errors.DisplayError(err)
		os.Exit(errors.GetExitCode(err))
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.sentinel/config.yaml)")
	rootCmd.PersistentFlags().String("log-level", "info", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringP("output", "o", "text", "output format (text, json, yaml)")
	rootCmd.PersistentFlags().Bool("no-color", false, "disable colored output")

	viper.BindPFlag("logging.level", rootCmd.PersistentFlags().Lookup("log-level"))
	viper.BindPFlag("output.format", rootCmd.PersistentFlags().Lookup("output"))
	viper.BindPFlag("output.no_color", rootCmd.PersistentFlags().Lookup("no-color"))

	// The root command takes the run command's flags so `sentinel` and
	// `sentinel run` behave identically.
	addCycleFlags(rootCmd)

	rootCmd.AddCommand(newRunCommand())
	rootCmd.AddCommand(newStatusCommand())
	rootCmd.AddCommand(newVerifyCommand())
	rootCmd.AddCommand(newWorkflowsCommand())
	rootCmd.AddCommand(newVersionCommand())
}

// initConfig loads configuration before any command runs.
func initConfig() error {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	}

	var err error
	cfg, err = config.Load()
	if err != nil {
		return errors.ConfigurationError(fmt.Sprintf("failed to load configuration: %v", err))
	}

	if err := cfg.ExpandPaths(); err != nil {
		return errors.ConfigurationError(fmt.Sprintf("failed to expand config paths: %v", err))
	}

	return nil
}
