package cmd

import (
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/macicco/PythonPhot/cmd/catalog"
	"github.com/macicco/PythonPhot/logging"
	"github.com/macicco/PythonPhot/parse"
	"github.com/macicco/PythonPhot/psf"
	"github.com/macicco/PythonPhot/psfio"
)

// EvalConfig contains the configuration fields for the 'eval' mode of the
// daoeval tool.
type EvalConfig struct {
	xs, ys      []float64
	derivatives bool
}

var _ Mode = &EvalConfig{}

// ExampleConfig creates an example eval.config file.
func (config *EvalConfig) ExampleConfig() string {
	return `[eval.config]
#####################
## Optional Fields ##
#####################

# X and Y are the detector coordinates to evaluate the PSF at, relative to
# the star's centroid. Both must be given together and must have the same
# length. If neither is set, coordinate pairs are read from stdin as two
# columns of text.
#
# X = 0.0, 0.5, 1.0
# Y = 0.0, 0.0, 0.5

# Derivatives adds the two spatial derivative columns to the output.
#
# Derivatives defaults to false if not set.
#
# Derivatives = false`
}

// ReadConfig reads in an eval.config file into config.
func (config *EvalConfig) ReadConfig(fname string, flags []string) error {
	vars := parse.NewConfigVars("eval.config")
	vars.Floats(&config.xs, "X", []float64{})
	vars.Floats(&config.ys, "Y", []float64{})
	vars.Bool(&config.derivatives, "Derivatives", false)

	if fname == "" {
		if len(flags) == 0 {
			return nil
		}
		if err := parse.ReadFlags(flags, vars); err != nil {
			return err
		}
		return config.validate()
	}
	if err := parse.ReadConfig(fname, vars); err != nil {
		return err
	}
	if err := parse.ReadFlags(flags, vars); err != nil {
		return err
	}

	return config.validate()
}

// validate checks whether all the fields of config are valid.
func (config *EvalConfig) validate() error {
	if len(config.xs) != len(config.ys) {
		return fmt.Errorf("The 'X' variable has %d values, but the 'Y' "+
			"variable has %d.", len(config.xs), len(config.ys))
	}
	return nil
}

// Run executes the eval mode on the model named by gConfig.PsfFile.
func (config *EvalConfig) Run(
	gConfig *GlobalConfig, log *zap.Logger, stdin []string,
) ([]string, error) {
	t0 := time.Now()

	xs, ys := config.xs, config.ys
	if len(xs) == 0 {
		var err error
		xs, ys, err = stdinCoords(stdin)
		if err != nil {
			return nil, err
		}
	}

	model, err := psfio.Load(gConfig.PsfFile)
	if err != nil {
		return nil, err
	}
	ev, err := model.Evaluator()
	if err != nil {
		return nil, err
	}

	b, err := psf.Vector(xs, ys)
	if err != nil {
		return nil, err
	}

	res, err := ev.Eval(b, config.derivatives)
	if err != nil {
		return nil, err
	}
	if res.OffEdge {
		log.Warn("batch clipped the residual table edge, results zeroed",
			zap.String("psf_file", gConfig.PsfFile),
			zap.Int("samples", b.Len()),
		)
	}

	log.Info("eval finished",
		append([]zap.Field{
			zap.Int("samples", b.Len()),
			zap.Duration("elapsed", time.Since(t0)),
		}, logging.MemFields()...)...,
	)

	return formatResult(xs, ys, res, config.derivatives), nil
}

// stdinCoords parses stdin lines as two columns of coordinates.
func stdinCoords(stdin []string) (xs, ys []float64, err error) {
	data := []byte(strings.Join(stdin, "\n"))
	_, fcols, err := catalog.Parse(data, nil, []int{0, 1})
	if err != nil {
		return nil, nil, err
	}
	return fcols[0], fcols[1], nil
}

func formatResult(
	xs, ys []float64, res psf.Result, derivatives bool,
) []string {
	idxs := make([]int, len(xs))
	for i := range idxs {
		idxs[i] = i
	}

	intNames := []string{"idx"}
	floatNames := []string{"x", "y", "value"}
	floatCols := [][]float64{xs, ys, res.Values}
	if derivatives {
		floatNames = append(floatNames, "dvdx", "dvdy")
		floatCols = append(floatCols, res.DvDx, res.DvDy)
	}

	order := make([]int, 1+len(floatCols))
	sizes := make([]int, 1+len(floatCols))
	for i := range order {
		order[i], sizes[i] = i, 1
	}

	lines := []string{catalog.CommentString(intNames, floatNames, order, sizes)}
	return append(lines, catalog.FormatCols([][]int{idxs}, floatCols, order)...)
}
