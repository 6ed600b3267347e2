// Package charges computes the partial charges of a crystal structure with the
// EQeq engine and writes them to disk.
package charges

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/kpotier/goeqeq/pkg/cif"
	"github.com/kpotier/goeqeq/pkg/eqeq"
	"github.com/kpotier/goeqeq/pkg/util"

	"github.com/pelletier/go-toml"
	"go.uber.org/zap"
)

// Type is name of the calculation.
var Type = "charges"

// Charges is a structure containing the parameters that can be parsed from a
// TOML configuration file. This structure can be instanced through the New
// method. Parameters missing from the file take the engine defaults.
// FileReport requires the list output type.
type Charges struct {
	FileIn     string `toml:"charges.file_in"`
	FileOut    string `toml:"charges.file_out"`
	FileReport string `toml:"charges.file_report"`
	OutputType string `toml:"charges.output_type"`

	DielectricScreening float64 `toml:"charges.dielectric_screening"`
	HElectronAffinity   float64 `toml:"charges.h_electron_affinity"`
	ChargePrecision     int     `toml:"charges.charge_precision"`
	Method              string  `toml:"charges.method"`
	NumCellsReal        int     `toml:"charges.num_cells_real"`
	NumCellsFreq        int     `toml:"charges.num_cells_freq"`
	EwaldSplitting      float64 `toml:"charges.ewald_splitting"`
	IonizationDataPath  string  `toml:"charges.ionization_data_path"`
	ChargeDataPath      string  `toml:"charges.charge_data_path"`

	Engine        string   `toml:"charges.engine"`
	EngineArgs    []string `toml:"charges.engine_args"`
	Verbose       bool     `toml:"charges.verbose"`
	NoStandardize bool     `toml:"charges.no_standardize"`

	solver eqeq.Solver
}

// New returns an instance of the Charges structure. It reads and parses the
// configuration file given in argument. The file must be a TOML file.
func New(path string) (*Charges, error) {
	tree, err := toml.LoadFile(path)
	if err != nil {
		return nil, err
	}

	var c Charges
	err = tree.Unmarshal(&c)
	if err != nil {
		return nil, err
	}
	c.defaults(tree)

	if c.FileIn == "" {
		return nil, errors.New("file_in is missing")
	}

	if c.FileReport != "" && c.OutputType != eqeq.List {
		return nil, fmt.Errorf("file_report needs the output type `%s`, not `%s`",
			eqeq.List, c.OutputType)
	}

	return &c, nil
}

// defaults fills the keys absent from the file. A key present with a zero
// value is kept.
func (c *Charges) defaults(tree *toml.Tree) {
	d := eqeq.DefaultParams()
	has := func(key string) bool { return tree.Has(Type + "." + key) }

	if !has("output_type") {
		c.OutputType = eqeq.List
	}
	c.OutputType = strings.ToLower(c.OutputType)

	if !has("dielectric_screening") {
		c.DielectricScreening = d.DielectricScreening
	}
	if !has("h_electron_affinity") {
		c.HElectronAffinity = d.HElectronAffinity
	}
	if !has("charge_precision") {
		c.ChargePrecision = d.ChargePrecision
	}
	if !has("method") {
		c.Method = d.Method
	}
	if !has("num_cells_real") {
		c.NumCellsReal = d.NumCellsReal
	}
	if !has("num_cells_freq") {
		c.NumCellsFreq = d.NumCellsFreq
	}
	if !has("ewald_splitting") {
		c.EwaldSplitting = d.EwaldSplitting
	}
}

// Params returns the parameters read from the file.
func (c *Charges) Params() eqeq.Params {
	return eqeq.Params{
		DielectricScreening: c.DielectricScreening,
		HElectronAffinity:   c.HElectronAffinity,
		ChargePrecision:     c.ChargePrecision,
		Method:              c.Method,
		NumCellsReal:        c.NumCellsReal,
		NumCellsFreq:        c.NumCellsFreq,
		EwaldSplitting:      c.EwaldSplitting,
		IonizationDataPath:  c.IonizationDataPath,
		ChargeDataPath:      c.ChargeDataPath,
	}
}

// Options returns the options of eqeq.Run. Empty data paths take the
// defaults of the settings package.
func (c *Charges) Options(log *zap.Logger) eqeq.Options {
	opts := eqeq.DefaultOptions()
	params := c.Params()
	if params.IonizationDataPath == "" {
		params.IonizationDataPath = opts.IonizationDataPath
	}
	if params.ChargeDataPath == "" {
		params.ChargeDataPath = opts.ChargeDataPath
	}
	opts.Params = params
	opts.OutputType = c.OutputType
	opts.Outpath = c.FileOut
	opts.Verbose = c.Verbose
	opts.NoStandardize = c.NoStandardize
	opts.Logger = log

	switch {
	case c.solver != nil:
		opts.Solver = c.solver
	case c.Engine != "":
		opts.Solver = eqeq.ExecSolver{Path: c.Engine, Prefix: c.EngineArgs}
	}

	return opts
}

// header is written at the top of the report.
type header struct {
	FileIn       string      `toml:"file_in"`
	Standardized bool        `toml:"standardized"`
	Atoms        int         `toml:"atoms"`
	TotalCharge  float64     `toml:"total_charge"`
	Params       eqeq.Params `toml:"params"`
}

// Start performs the calculation. It is a thread blocking method. This
// calculation only use one thread.
func (c *Charges) Start(ctx context.Context, log *zap.Logger) error {
	if log == nil {
		log = zap.NewNop()
	}
	log = log.With(zap.String("file_in", c.FileIn))

	opts := c.Options(log)
	res, err := eqeq.Run(ctx, eqeq.FromPath(c.FileIn), opts)
	if err != nil {
		return fmt.Errorf("Run: %w", err)
	}

	if c.FileReport != "" {
		err = c.report(res, opts.Params)
		if err != nil {
			return fmt.Errorf("report: %w", err)
		}
	}

	if c.OutputType == eqeq.List {
		log.Info("Charges computed",
			zap.Int("atoms", len(res.Charges)),
			zap.Float64("total_charge", res.Sum()))
	} else {
		log.Info("Charges computed", zap.String("output_type", c.OutputType))
	}

	return nil
}

func (c *Charges) report(res *eqeq.Result, params eqeq.Params) error {
	out, err := util.Write(c.FileReport, header{
		FileIn:       c.FileIn,
		Standardized: res.Structure != nil,
		Atoms:        len(res.Charges),
		TotalCharge:  res.Sum(),
		Params:       params,
	})
	if err != nil {
		return fmt.Errorf("Write: %w", err)
	}
	defer out.Close()

	err = util.WriteCharges(out, labels(res.Structure), res.Charges)
	if err != nil {
		return fmt.Errorf("WriteCharges: %w", err)
	}

	return out.Close()
}

func labels(s *cif.Structure) []string {
	if s == nil {
		return nil
	}

	labels := make([]string, len(s.Sites))
	for k, v := range s.Sites {
		labels[k] = v.Label
	}
	return labels
}
