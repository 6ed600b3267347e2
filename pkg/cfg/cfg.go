// Package cfg dispatches several calculations. It avoids to start the program
// once per structure.
package cfg

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/pelletier/go-toml"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"
)

// Cfg is a structure where the types of calculations are stored. It can be
// instanced through the New method. The length of the Files slice must be equal
// to the length of the Types slice. Each calculation requires a configuration
// file where the parameters required to run the calculation are stored.
// Threads bounds the calculations of a step running at the same time; it
// defaults to the number of CPUs.
type Cfg struct {
	Types   [][]string `toml:"types" yaml:"types"`
	Files   [][]string `toml:"files" yaml:"files"`
	Threads int        `toml:"threads" yaml:"threads"`
}

// New returns an instance of the Cfg structure. It opens and reads the
// configuration file where Types and Files are stored. The configuration file
// uses the TOML format, or YAML when its extension is .yaml or .yml.
func New(path string) (Cfg, error) {
	f, err := os.Open(path)
	if err != nil {
		return Cfg{}, err
	}
	defer f.Close()

	var cfg Cfg
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.NewDecoder(f).Decode(&cfg)
	default:
		err = toml.NewDecoder(f).Decode(&cfg)
	}
	if err != nil {
		return Cfg{}, err
	}

	if len(cfg.Types) == 0 {
		return Cfg{}, errors.New("no calculation: types is empty or missing")
	}

	if len(cfg.Files) != len(cfg.Types) {
		return Cfg{}, fmt.Errorf("length of Files isn't equal to Types (%d vs %d)",
			len(cfg.Files), len(cfg.Types))
	}

	for k, v := range cfg.Files {
		if len(v) != len(cfg.Types[k]) {
			return Cfg{}, fmt.Errorf("length of Files isn't equal to Types (%d vs %d, step %d)",
				len(v), len(cfg.Types[k]), k)
		}
	}

	if cfg.Threads <= 0 {
		cfg.Threads = runtime.NumCPU()
	}

	return cfg, nil
}

// Start dispatches and performs the calculations. The calculations of a step
// (e.g Types: ["x", "y", "z"]) are performed in parallel, at most Threads at
// a time, and the next step starts once they are all done.
//
// It is a thread blocking method. If an error occurs for a specific
// calculation, the calculation will stop and log the error but the method won't
// stop. Once ctx is canceled no further step is started. It returns the
// number of failed calculations.
func (c Cfg) Start(ctx context.Context, log *zap.Logger) (failed int) {
	if log == nil {
		log = zap.NewNop()
	}

	limit := c.Threads
	if limit <= 0 {
		limit = runtime.NumCPU()
	}

	for step, types := range c.Types {
		if len(types) == 0 {
			continue
		}

		// Steps not started are counted as failed.
		if err := ctx.Err(); err != nil {
			for _, v := range c.Types[step:] {
				failed += len(v)
			}
			log.Error("Batch canceled", zap.Int("step", step), zap.Error(err))
			return failed
		}

		var g errgroup.Group
		g.SetLimit(limit)

		errs := make([]error, len(types))
		for rtn, name := range types {
			rtn, name := rtn, name
			g.Go(func() error {
				errs[rtn] = Launch(ctx, name, c.Files[step][rtn], log)
				return nil
			})
		}
		g.Wait()

		for rtn, err := range errs {
			if err != nil {
				failed++
				log.Error("Calculation failed",
					zap.Int("step", step), zap.Int("routine", rtn), zap.Error(err))
			}
		}
	}

	return failed
}
