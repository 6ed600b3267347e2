package cfg

import (
	"context"
	"fmt"

	"github.com/kpotier/goeqeq/pkg/charges"
	"github.com/kpotier/goeqeq/pkg/standardize"

	"go.uber.org/zap"
)

// Calculation is an interface that only contains one method: Start. Every
// calculation must have a Start method that will launch the calculation. It
// must be a thread blocking method.
type Calculation interface {
	Start(ctx context.Context, log *zap.Logger) error
}

// Launch launchs a specific calculation. It is a thread blocking method. The
// parameters required to launch the calculation must be in a file.
func Launch(ctx context.Context, name string, path string, log *zap.Logger) error {
	if log == nil {
		log = zap.NewNop()
	}

	var (
		err error
		cal Calculation
	)

	switch name {
	case charges.Type:
		cal, err = charges.New(path)
	case standardize.Type:
		cal, err = standardize.New(path)
	default:
		return fmt.Errorf("calculation `%s` doesn't exist", name)
	}

	if err != nil {
		return fmt.Errorf("%s: New: %w", name, err)
	}

	err = cal.Start(ctx, log.With(zap.String("calculation", name), zap.String("file", path)))
	if err != nil {
		return fmt.Errorf("%s: Start: %w", name, err)
	}

	return nil
}
