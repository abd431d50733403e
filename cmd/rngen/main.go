// Command rngen generates deterministic procedural text from strategy
// configurations.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Build information (set via ldflags)
var (
	Version   = "dev"
	BuildTime = "unknown"
)

type rootOptions struct {
	configPaths []string
	logLevel    string
	logFormat   string
	datasetDirs []string
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	rootCmd := &cobra.Command{
		Use:           "rngen",
		Short:         "Deterministic seed-driven procedural text generator",
		Version:       fmt.Sprintf("%s (built %s)", Version, BuildTime),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := rootCmd.PersistentFlags()
	flags.StringSliceVarP(&opts.configPaths, "config", "c", nil, "Engine configuration file(s), JSON or YAML (later files override earlier ones)")
	flags.StringVar(&opts.logLevel, "log-level", "", "Log level: debug, info, warn, error (env: RNGEN_LOG_LEVEL)")
	flags.StringVar(&opts.logFormat, "log-format", "", "Log format: json, text (env: RNGEN_LOG_FORMAT)")
	flags.StringSliceVar(&opts.datasetDirs, "datasets", nil, "Dataset directories to load (adds to dataset_dirs)")

	rootCmd.AddCommand(
		newGenerateCmd(opts),
		newStrategiesCmd(),
		newValidateCmd(),
		newSurveyCmd(opts),
	)
	return rootCmd
}
