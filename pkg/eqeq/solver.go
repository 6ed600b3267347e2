package eqeq

import (
	"bytes"
	"context"
	"io"
	"os/exec"
	"strconv"
)

// Invocation is everything the engine receives for one structure.
type Invocation struct {
	Structure string // path of the CIF file read by the engine
	Format    string // output format understood by the engine (json, cif, ...)
	Params
}

// Args returns the positional arguments of the engine, in order.
func (inv Invocation) Args() []string {
	p := inv.Params
	return []string{
		inv.Structure,
		inv.Format,
		formatFloat(p.DielectricScreening),
		formatFloat(p.HElectronAffinity),
		strconv.Itoa(p.ChargePrecision),
		p.Method,
		strconv.Itoa(p.NumCellsReal),
		strconv.Itoa(p.NumCellsFreq),
		formatFloat(p.EwaldSplitting),
		p.IonizationDataPath,
		p.ChargeDataPath,
	}
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// Solver runs the charge equilibration. It returns the result text and writes
// its diagnostics to stdout and stderr. It must not keep the writers once it
// returns.
type Solver interface {
	Solve(ctx context.Context, inv Invocation, stdout, stderr io.Writer) (string, error)
}

// SolverFunc adapts a function to the Solver interface.
type SolverFunc func(ctx context.Context, inv Invocation, stdout, stderr io.Writer) (string, error)

// Solve calls f.
func (f SolverFunc) Solve(ctx context.Context, inv Invocation, stdout, stderr io.Writer) (string, error) {
	return f(ctx, inv, stdout, stderr)
}

// ExecSolver runs the EQeq engine as an external program. The program gets
// Prefix followed by Invocation.Args, prints the result on its standard output
// and its diagnostics on its standard error. A non-zero exit status is a
// failure.
type ExecSolver struct {
	Path   string
	Prefix []string
	Env    []string // nil inherits the environment
	Dir    string
}

// Solve runs the program. The stdout writer is unused: the standard output of
// the program is the result.
func (s ExecSolver) Solve(ctx context.Context, inv Invocation, _, stderr io.Writer) (string, error) {
	args := append(append([]string(nil), s.Prefix...), inv.Args()...)

	cmd := exec.CommandContext(ctx, s.Path, args...)
	cmd.Env = s.Env
	cmd.Dir = s.Dir

	var out bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = stderr

	if err := cmd.Run(); err != nil {
		return "", err
	}

	return out.String(), nil
}
