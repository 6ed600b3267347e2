package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var logger = zap.NewNop()

// newRootCmd builds the command tree. Subcommands share the logger built
// before they run.
func newRootCmd() *cobra.Command {
	var (
		debug bool
		quiet bool
	)

	root := &cobra.Command{
		Use:   "goeqeq",
		Short: "Partial atomic charges of crystal structures with EQeq",
		Long: `goeqeq standardizes CIF files into the form read by the EQeq charge
equilibration engine, runs the engine and returns the charges.

The reference data tables and the engine default to the environment
variables EQEQ_DATA_DIR, EQEQ_IONIZATION_DATA, EQEQ_CHARGE_DATA and EQEQ_ENGINE.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			config := zap.NewProductionConfig()
			config.Encoding = "console"
			config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
			switch {
			case debug:
				config.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
			case quiet:
				config.Level = zap.NewAtomicLevelAt(zapcore.WarnLevel)
			}

			var err error
			logger, err = config.Build()
			if err != nil {
				return fmt.Errorf("failed to initialize logger: %w", err)
			}
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			_ = logger.Sync()
		},
	}

	root.PersistentFlags().BoolVar(&debug, "debug", false, "log at debug level")
	root.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false,
		"capture the engine diagnostics and only log warnings")

	root.AddCommand(newRunCmd(&quiet), newStandardizeCmd(), newBatchCmd())
	return root
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
