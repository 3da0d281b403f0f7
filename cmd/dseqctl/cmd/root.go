package cmd

import (
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/dmrogers-hpc/dseq/pkg/config"
	"github.com/dmrogers-hpc/dseq/pkg/telemetry"
	"github.com/dmrogers-hpc/dseq/pkg/utils"
)

var (
	verbose    bool
	configFile string

	logger           utils.Logger
	cfg              *config.Config
	shutdownTelemetry telemetry.ShutdownFunc
)

// rootCmd represents the base command.
var rootCmd = &cobra.Command{
	Use:   "dseqctl",
	Short: "Drive and benchmark a distributed-sequence cohort",
	Long: `dseqctl runs a distributed bulk-synchronous collections pipeline
(dseq) over an in-process simulated cohort of ranks. It is a
demonstration and benchmarking harness, not the library itself: real
programs import pkg/dseq directly and build their own Context.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		logLevel := utils.LevelInfo
		if verbose {
			logLevel = utils.LevelDebug
		}
		logger = utils.NewDefaultLogger(logLevel, os.Stdout)

		loaded, err := config.Load(configFile)
		if err != nil {
			return err
		}
		cfg = loaded

		shutdown, err := telemetry.Init(cmd.Context())
		if err != nil {
			logger.Warn("telemetry init failed, continuing without tracing: %v", err)
		}
		shutdownTelemetry = shutdown

		return nil
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		if shutdownTelemetry != nil {
			return shutdownTelemetry(cmd.Context())
		}
		return nil
	},
}

// Execute adds all child commands to the root command and runs it.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "Path to config file (defaults to ./dseq.yaml)")

	binName := BinName()
	rootCmd.Example = `  # Run the built-in demo pipeline across 4 local ranks
  ` + binName + ` run --procs 4 --n 97

  # Benchmark a reduce/scan/repartition at a given cohort size
  ` + binName + ` bench --procs 8 --m 100000

  # Print version information
  ` + binName + ` version`
}

// GetLogger returns the configured logger.
func GetLogger() utils.Logger {
	return logger
}

// GetConfig returns the loaded configuration.
func GetConfig() *config.Config {
	return cfg
}

// BinName returns the base name of the current executable.
func BinName() string {
	return filepath.Base(os.Args[0])
}
