// Package eqeq computes partial atomic charges of a crystal structure with the
// EQeq charge equilibration engine. The structure is first brought into the
// canonical CIF form read by the engine, then the engine is invoked with the
// numerical parameters and its result is returned, written to disk, or decoded
// into one charge per atom.
package eqeq

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/kpotier/goeqeq/pkg/cif"
	"github.com/kpotier/goeqeq/pkg/settings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// List is the output type returning the charges as a slice. The engine is
// asked for JSON and the result is decoded.
const List = "list"

// JSON is the structured format the engine uses for List.
const JSON = "json"

// Params are the numerical parameters of the engine. They are passed through
// without validation.
type Params struct {
	DielectricScreening float64 `toml:"dielectric_screening"`
	HElectronAffinity   float64 `toml:"h_electron_affinity"`
	ChargePrecision     int     `toml:"charge_precision"`
	Method              string  `toml:"method"`
	NumCellsReal        int     `toml:"num_cells_real"`
	NumCellsFreq        int     `toml:"num_cells_freq"`
	EwaldSplitting      float64 `toml:"ewald_splitting"`
	IonizationDataPath  string  `toml:"ionization_data_path"`
	ChargeDataPath      string  `toml:"charge_data_path"`
}

// DefaultParams returns the engine defaults. The data paths come from the
// settings package.
func DefaultParams() Params {
	return Params{
		DielectricScreening: 1.2,
		HElectronAffinity:   -2.0,
		ChargePrecision:     3,
		Method:              "ewald",
		NumCellsReal:        2,
		NumCellsFreq:        2,
		EwaldSplitting:      50,
		IonizationDataPath:  settings.IonizationDataPath,
		ChargeDataPath:      settings.ChargeDataPath,
	}
}

// Options configure one call to Run. Start from DefaultOptions: a zero
// numerical parameter is sent to the engine as is.
type Options struct {
	Params

	// OutputType is case insensitive. List returns Result.Charges; any other
	// value is forwarded to the engine and returned verbatim.
	OutputType string

	// Outpath receives the raw result text when not empty.
	Outpath string

	// Verbose forwards the diagnostics of the engine to Stdout and Stderr
	// (os.Stdout and os.Stderr when nil). Otherwise they are captured and
	// only reported through Result.Diagnostics and InvocationError.
	Verbose bool
	Stdout  io.Writer
	Stderr  io.Writer

	// NoStandardize hands the source to the engine without rewriting it.
	NoStandardize bool

	// Solver defaults to an ExecSolver running settings.Engine.
	Solver Solver

	// Logger receives the stage messages. When nil, verbose runs log them at
	// info level to Stderr and quiet runs drop them.
	Logger *zap.Logger
}

// DefaultOptions returns the options of a verbose run returning a list.
func DefaultOptions() Options {
	return Options{
		Params:     DefaultParams(),
		OutputType: List,
		Verbose:    true,
	}
}

func (o Options) normalize() Options {
	o.OutputType = strings.ToLower(o.OutputType)
	o.Method = strings.ToLower(o.Method)

	if o.IonizationDataPath == "" {
		o.IonizationDataPath = settings.IonizationDataPath
	}
	if o.ChargeDataPath == "" {
		o.ChargeDataPath = settings.ChargeDataPath
	}
	if o.Solver == nil {
		o.Solver = ExecSolver{Path: settings.Engine}
	}
	if o.Logger == nil {
		o.Logger = o.defaultLogger()
	}

	return o
}

func (o Options) defaultLogger() *zap.Logger {
	if !o.Verbose {
		return zap.NewNop()
	}

	var w io.Writer = os.Stderr
	if o.Stderr != nil {
		w = o.Stderr
	}
	enc := zap.NewDevelopmentEncoderConfig()
	enc.TimeKey = ""
	core := zapcore.NewCore(zapcore.NewConsoleEncoder(enc), zapcore.AddSync(w), zap.InfoLevel)
	return zap.New(core)
}

// format returns the output format asked to the engine.
func (o Options) format() string {
	if o.OutputType == List {
		return JSON
	}
	return o.OutputType
}

// Source is the structure given to Run: the path of a CIF file or its content.
type Source struct {
	Path    string
	Content string
}

// FromPath returns the source reading the CIF file at path.
func FromPath(path string) Source { return Source{Path: path} }

// FromContent returns the source holding the CIF content itself.
func FromContent(content string) Source { return Source{Content: content} }

func (s Source) String() string {
	if s.Path != "" {
		return s.Path
	}
	return "<content>"
}

// Result is the output of Run.
type Result struct {
	// Raw is the text returned by the engine.
	Raw string
	// Charges holds one charge per atom, in the order of the standardized
	// structure. Only set for the List output type.
	Charges []float64
	// Structure is the standardized structure. Nil with NoStandardize.
	Structure *cif.Structure
	// Diagnostics is what the engine wrote during a quiet run.
	Diagnostics string
}

// Sum returns the total charge of the structure.
func (r *Result) Sum() float64 {
	var sum float64
	for _, v := range r.Charges {
		sum += v
	}
	return sum
}

// standardizedName is the file of the temporary directory read by the engine.
const standardizedName = "standardized.cif"

// Run computes the charges of the structure. It is a thread blocking method.
// Errors are never retried: a malformed structure returns a cif.FormatError,
// an engine failure an InvocationError, an undecodable list a DecodeError. The
// output file is only written once the engine succeeded.
func Run(ctx context.Context, src Source, opts Options) (*Result, error) {
	opts = opts.normalize()
	log := opts.Logger.With(zap.Stringer("source", src))

	dir, err := os.MkdirTemp("", "eqeq-")
	if err != nil {
		return nil, err
	}
	defer os.RemoveAll(dir)

	path, structure, err := prepare(src, dir, opts, log)
	if err != nil {
		return nil, err
	}

	var diag capture
	stdout, stderr := opts.streams(&diag)
	inv := Invocation{Structure: path, Format: opts.format(), Params: opts.Params}

	log.Debug("Invoking engine", zap.Strings("args", inv.Args()))
	raw, err := opts.Solver.Solve(ctx, inv, stdout, stderr)
	if err != nil {
		return nil, &InvocationError{Err: err, Diagnostics: diag.String()}
	}

	if opts.Outpath != "" {
		err = os.WriteFile(opts.Outpath, []byte(raw), 0644)
		if err != nil {
			return nil, fmt.Errorf("WriteFile: %w", err)
		}
		log.Debug("Result written", zap.String("path", opts.Outpath))
	}

	res := &Result{Raw: raw, Structure: structure, Diagnostics: diag.String()}
	if opts.OutputType == List {
		res.Charges, err = Decode(raw)
		if err != nil {
			return nil, err
		}
	}

	return res, nil
}

// prepare returns the path handed to the engine. The structure is nil when
// the source is not standardized.
func prepare(src Source, dir string, opts Options, log *zap.Logger) (string, *cif.Structure, error) {
	if opts.NoStandardize {
		if src.Path != "" {
			return src.Path, nil, nil
		}

		path := filepath.Join(dir, "input.cif")
		err := os.WriteFile(path, []byte(src.Content), 0644)
		if err != nil {
			return "", nil, err
		}
		return path, nil, nil
	}

	if opts.Verbose {
		log.Info("Standardizing CIF file")
	} else {
		log.Debug("Standardizing CIF file")
	}

	path := filepath.Join(dir, standardizedName)

	var (
		s   *cif.Structure
		err error
	)
	if src.Path != "" {
		s, err = cif.Standardize(src.Path, path)
	} else {
		s, err = cif.StandardizeReader(strings.NewReader(src.Content), path)
	}
	if err != nil {
		return "", nil, fmt.Errorf("Standardize: %w", err)
	}

	log.Debug("Standardized", zap.Int("atoms", len(s.Sites)))
	return path, s, nil
}

// Decode reads the JSON array of charges returned by the engine.
func Decode(raw string) ([]float64, error) {
	var charges []float64
	err := json.Unmarshal([]byte(raw), &charges)
	if err != nil {
		return nil, &DecodeError{Err: err, Raw: raw}
	}
	if charges == nil {
		return nil, &DecodeError{Err: errors.New("result is not an array"), Raw: raw}
	}
	return charges, nil
}
