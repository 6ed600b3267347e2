package main

import (
	"strconv"

	"github.com/spf13/cobra"

	"github.com/kpotier/goeqeq/pkg/eqeq"
)

func newRunCmd(quiet *bool) *cobra.Command {
	opts := eqeq.DefaultOptions()
	var (
		engine     string
		engineArgs []string
	)

	cmd := &cobra.Command{
		Use:   "run <cif>",
		Short: "Compute the partial charges of a structure",
		Long: `Computes the partial charges of the structure. With the list output type
the charges are printed one per line in the order of the standardized
structure; any other output type prints the engine result as is.

The engine diagnostics are written on the standard error unless --quiet.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.Verbose = !*quiet
			opts.Stdout = cmd.ErrOrStderr()
			opts.Stderr = cmd.ErrOrStderr()
			opts.Logger = logger
			if engine != "" {
				opts.Solver = eqeq.ExecSolver{Path: engine, Prefix: engineArgs}
			}

			res, err := eqeq.Run(cmd.Context(), eqeq.FromPath(args[0]), opts)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if res.Charges == nil {
				_, err = out.Write([]byte(res.Raw))
				return err
			}

			var b []byte
			for _, v := range res.Charges {
				b = strconv.AppendFloat(b, v, 'f', -1, 64)
				b = append(b, '\n')
			}
			_, err = out.Write(b)
			return err
		},
	}

	f := cmd.Flags()
	f.StringVarP(&opts.OutputType, "output-type", "t", opts.OutputType,
		"list, or an output format of the engine (json, cif, mol, ...)")
	f.StringVarP(&opts.Outpath, "out", "o", "", "write the engine result to this file")
	f.Float64Var(&opts.DielectricScreening, "dielectric-screening", opts.DielectricScreening,
		"dielectric screening constant")
	f.Float64Var(&opts.HElectronAffinity, "h-electron-affinity", opts.HElectronAffinity,
		"electron affinity of hydrogen")
	f.IntVar(&opts.ChargePrecision, "charge-precision", opts.ChargePrecision,
		"number of decimal places of the charges")
	f.StringVar(&opts.Method, "method", opts.Method, "method of the engine (ewald, nonperiodic)")
	f.IntVar(&opts.NumCellsReal, "num-cells-real", opts.NumCellsReal,
		"lattice replications in real space")
	f.IntVar(&opts.NumCellsFreq, "num-cells-freq", opts.NumCellsFreq,
		"lattice replications in frequency space")
	f.Float64Var(&opts.EwaldSplitting, "ewald-splitting", opts.EwaldSplitting,
		"Ewald splitting parameter")
	f.StringVar(&opts.IonizationDataPath, "ionization-data", opts.IonizationDataPath,
		"table of ionization energies")
	f.StringVar(&opts.ChargeDataPath, "charge-data", opts.ChargeDataPath,
		"table of atomic charge centers")
	f.BoolVar(&opts.NoStandardize, "no-standardize", false,
		"give the file to the engine without rewriting it")
	f.StringVar(&engine, "engine", "", "engine executable (default $EQEQ_ENGINE or eqeq)")
	f.StringArrayVar(&engineArgs, "engine-arg", nil,
		"argument given to the engine before the positional ones (repeatable)")

	return cmd
}
