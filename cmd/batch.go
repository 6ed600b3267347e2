package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/kpotier/goeqeq/pkg/cfg"
)

func newBatchCmd() *cobra.Command {
	var threads int

	cmd := &cobra.Command{
		Use:   "batch <config>",
		Short: "Run the calculations listed in a TOML or YAML file",
		Long: `Runs the calculations listed in the configuration file. Each step is a list
of calculations (charges or standardize) with one parameter file each; the
calculations of a step run in parallel and the steps run one after another.

  types = [["standardize", "charges"], ["charges"]]
  files = [["std.toml", "a.toml"], ["b.toml"]]`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger.Info("Reading configuration file", zap.String("path", args[0]))
			c, err := cfg.New(args[0])
			if err != nil {
				return fmt.Errorf("New: %w", err)
			}
			if threads > 0 {
				c.Threads = threads
			}

			failed := c.Start(cmd.Context(), logger)
			if failed > 0 {
				return fmt.Errorf("%d calculation(s) failed", failed)
			}

			logger.Info("Done")
			return nil
		},
	}

	cmd.Flags().IntVarP(&threads, "threads", "j", 0,
		"calculations of a step running at the same time (default from the file, or the number of CPUs)")
	return cmd
}
