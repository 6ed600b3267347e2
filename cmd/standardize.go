package main

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/kpotier/goeqeq/pkg/cif"
)

func newStandardizeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "standardize <cif> <out>",
		Short: "Rewrite a CIF file into the P1 form read by EQeq",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := cif.Standardize(args[0], args[1])
			if err != nil {
				return err
			}

			logger.Info("Structure standardized",
				zap.String("file_in", args[0]),
				zap.String("file_out", args[1]),
				zap.Int("atoms", len(s.Sites)))
			return nil
		},
	}
}
