/*package psf evaluates DAOPHOT-style hybrid point-spread functions: the
integral of a bivariate Gaussian over each detector pixel plus a residual
correction interpolated from a lookup table sampled at twice the pixel
resolution.

The analytic core is supplied through the GaussianModel interface; the
residual table is interpolated with the cubic-convolution engine in
math/interpolate. Everything here is a pure function over immutable
inputs, so one Evaluator can serve any number of goroutines.
*/
package psf

import (
	"fmt"

	"github.com/macicco/PythonPhot/math/interpolate"
)

// ResidualForm selects how a residual lookup table is stored.
type ResidualForm int

const (
	// Full2D is an N x N grid of residual samples.
	Full2D ResidualForm = iota
	// Radial1D is the same square sample grid stored as a single flat
	// slice, the layout DAOPHOT uses for radially averaged profiles.
	Radial1D
)

func (f ResidualForm) String() string {
	switch f {
	case Full2D:
		return "full2d"
	case Radial1D:
		return "radial1d"
	}
	return fmt.Sprintf("ResidualForm(%d)", int(f))
}

// MarshalText implements encoding.TextMarshaler.
func (f ResidualForm) MarshalText() ([]byte, error) {
	switch f {
	case Full2D, Radial1D:
		return []byte(f.String()), nil
	}
	return nil, fmt.Errorf("unknown residual form %d", int(f))
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (f *ResidualForm) UnmarshalText(text []byte) error {
	switch string(text) {
	case "full2d":
		*f = Full2D
	case "radial1d":
		*f = Radial1D
	default:
		return fmt.Errorf("unknown residual form %q", text)
	}
	return nil
}

// Residual is a lookup table of PSF corrections in either storage form,
// adapted onto the common interpolation contract. The optional coefficient
// cache is built once and read-only afterwards.
type Residual struct {
	form   ResidualForm
	cubic  *interpolate.Cubic
	coeffs *interpolate.Coeffs
}

// NewFull2DResidual adapts an N x N residual grid.
func NewFull2DResidual(rows [][]float64) (*Residual, error) {
	c, err := interpolate.NewCubic(rows)
	if err != nil {
		return nil, err
	}
	return &Residual{form: Full2D, cubic: c}, nil
}

// NewRadial1DResidual adapts a flattened square residual profile.
func NewRadial1DResidual(profile []float64) (*Residual, error) {
	c, err := interpolate.NewCubicFlat(profile)
	if err != nil {
		return nil, err
	}
	return &Residual{form: Radial1D, cubic: c}, nil
}

// Form returns the storage form the table was supplied in.
func (r *Residual) Form() ResidualForm { return r.form }

// Side returns the side of the lookup table.
func (r *Residual) Side() int { return r.cubic.N() }

// Precompute derives and retains the interpolation coefficient cache for
// the whole table. Worth calling when the same PSF will be evaluated for
// many stars; must happen before the Residual is shared across goroutines.
func (r *Residual) Precompute() {
	r.coeffs = r.cubic.Precompute()
}

// Evaluator computes composite PSF values at coordinates relative to the
// PSF centroid, which coincides with the center of the central cell of
// the lookup table.
type Evaluator struct {
	model  GaussianModel
	params GaussianParams
	res    *Residual
}

// NewEvaluator composes an analytic Gaussian model with a residual table.
func NewEvaluator(model GaussianModel, params GaussianParams, res *Residual) *Evaluator {
	return &Evaluator{model: model, params: params, res: res}
}

// Params returns the Gaussian parameters of the composed model.
func (ev *Evaluator) Params() GaussianParams { return ev.params }

// Residual returns the residual table of the composed model.
func (ev *Evaluator) Residual() *Residual { return ev.res }

// Eval evaluates the PSF at every sample of a batch, optionally with the
// composite derivatives with respect to x and y.
//
// The lookup table has half-pixel spacing, so coordinates are first
// rescaled onto the table grid. If any rescaled sample lands within one
// cell of the table border the whole batch is uninterpolable: Eval then
// returns a zero-filled Result with OffEdge set rather than an error,
// since stars near frame edges are routine. Errors are reserved for
// contract violations.
func (ev *Evaluator) Eval(b Batch, wantDeriv bool) (Result, error) {
	n := ev.res.cubic.N()
	half := float64(n-1) / 2
	lo, hi := 1.0, float64(n)-2

	gx := make([]float64, b.Len())
	gy := make([]float64, b.Len())
	offEdge := false
	for k := range gx {
		gx[k] = 2*b.xs[k] + half
		gy[k] = 2*b.ys[k] + half
		if gx[k] < lo || gx[k] > hi || gy[k] < lo || gy[k] > hi {
			offEdge = true
		}
	}

	res := Result{
		Values: make([]float64, b.Len()),
		rows:   b.rows, cols: b.cols,
		scalar: b.scalar,
	}
	if wantDeriv {
		res.DvDx = make([]float64, b.Len())
		res.DvDy = make([]float64, b.Len())
	}
	if offEdge {
		res.OffEdge = true
		return res, nil
	}

	e, pder := ev.model.Evaluate(b.xs, b.ys, ev.params)

	if !wantDeriv {
		interp, err := ev.res.cubic.EvalAll(ev.res.coeffs, gx, gy)
		if err != nil {
			return Result{}, err
		}
		for k := range res.Values {
			res.Values[k] = e[k] + interp[k]
		}
		return res, nil
	}

	interp, dfdx, dfdy, err := ev.res.cubic.EvalAllDeriv(ev.res.coeffs, gx, gy)
	if err != nil {
		return Result{}, err
	}
	// The table grid is at twice the image resolution, so raw table
	// derivatives are doubled to get back to per-pixel units. The analytic
	// partials are with respect to the centroid offsets, hence the minus.
	for k := range res.Values {
		res.Values[k] = e[k] + interp[k]
		res.DvDx[k] = 2*dfdx[k] - pder.DX[k]
		res.DvDy[k] = 2*dfdy[k] - pder.DY[k]
	}
	return res, nil
}
