// Package standardize rewrites a CIF file into the P1 form read by the EQeq
// engine without computing charges.
package standardize

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/kpotier/goeqeq/pkg/cif"

	"github.com/pelletier/go-toml"
	"go.uber.org/zap"
)

// Type is name of the calculation.
var Type = "standardize"

// Standardize is a structure containing the parameters that can be parsed
// from a TOML configuration file. This structure can be instanced through the
// New method. Tolerance is the distance in angstrom under which two symmetry
// images are merged; cif.DefaultTolerance when not positive.
type Standardize struct {
	FileIn    string  `toml:"standardize.file_in"`
	FileOut   string  `toml:"standardize.file_out"`
	Tolerance float64 `toml:"standardize.tolerance"`
}

// New returns an instance of the Standardize structure. It reads and parses
// the configuration file given in argument. The file must be a TOML file.
func New(path string) (*Standardize, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var s Standardize
	dec := toml.NewDecoder(f)
	err = dec.Decode(&s)
	if err != nil {
		return nil, err
	}

	if s.FileIn == "" || s.FileOut == "" {
		return nil, errors.New("file_in and file_out are required")
	}

	if s.FileIn == s.FileOut {
		return nil, errors.New("file_in and file_out are the same file")
	}

	if s.Tolerance <= 0 {
		s.Tolerance = cif.DefaultTolerance
	}

	return &s, nil
}

// Start performs the calculation. It is a thread blocking method. The context
// is not used: the calculation is fast.
func (s *Standardize) Start(_ context.Context, log *zap.Logger) error {
	structure, err := cif.ParseFile(s.FileIn)
	if err != nil {
		return fmt.Errorf("ParseFile: %w", err)
	}

	before := len(structure.Sites)
	structure.Expand(s.Tolerance)

	out, err := os.Create(s.FileOut)
	if err != nil {
		return err
	}
	defer out.Close()

	err = structure.Write(out)
	if err != nil {
		return fmt.Errorf("Write: %w", err)
	}

	if log != nil {
		log.Info("Structure standardized",
			zap.String("file_in", s.FileIn),
			zap.Int("sites", before),
			zap.Int("atoms", len(structure.Sites)))
	}

	return out.Close()
}
