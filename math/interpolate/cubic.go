/*package interpolate implements separable cubic-convolution interpolation
of square grids at arbitrary sub-pixel coordinates, with optional analytic
first derivatives.

The kernel is the Catmull-Rom cubic (the a = -0.5 member of the
cubic-convolution family), applied separably along each axis. Unlike a
generic resampler, the package is built around the access pattern of
iterative PSF photometry: the same small table is interpolated at many
coordinate batches, so the per-cell kernel coefficients can be derived once
with Precompute and reused read-only across calls.
*/
package interpolate

import (
	"errors"
	"fmt"
	"math"
)

var (
	// ErrMalformedTable is returned when a lookup table is not a square
	// grid with enough samples for a four-tap kernel.
	ErrMalformedTable = errors.New("lookup table is not a square grid")
	// ErrShapeMismatch is returned when the x and y coordinate slices of a
	// batch have different lengths.
	ErrShapeMismatch = errors.New("coordinate slices have different lengths")
)

// minSide is four kernel taps plus a one-sample border margin.
const minSide = 5

// Cubic interpolates a square table sampled on the integer grid
// (0, 0) .. (n-1, n-1). The table is stored row-major and is read-only to
// the interpolator: the caller owns it and must not mutate it while calls
// are in flight.
//
// Interpolation is only meaningful at coordinates in [1, n-2] on both
// axes. Samples closer to the border reference neighbors outside the
// table; those lookups are clamped rather than rejected, so the call
// succeeds but the result carries no information. Callers that care must
// guard the range themselves.
type Cubic struct {
	vals []float64 // vals[n*row + col]
	n    int
}

// NewCubic creates an interpolator over a two-dimensional table. The table
// must be square with side at least 5.
func NewCubic(table [][]float64) (*Cubic, error) {
	n := len(table)
	if n < minSide {
		return nil, fmt.Errorf("%w: side %d is smaller than %d",
			ErrMalformedTable, n, minSide)
	}
	vals := make([]float64, 0, n*n)
	for i, row := range table {
		if len(row) != n {
			return nil, fmt.Errorf("%w: row %d has %d columns, want %d",
				ErrMalformedTable, i, len(row), n)
		}
		vals = append(vals, row...)
	}
	return &Cubic{vals: vals, n: n}, nil
}

// NewCubicFlat creates an interpolator over a square table that has
// already been flattened row-major into a single slice. The side is
// inferred as the square root of the length.
func NewCubicFlat(vals []float64) (*Cubic, error) {
	n := int(math.Round(math.Sqrt(float64(len(vals)))))
	if n*n != len(vals) {
		return nil, fmt.Errorf("%w: length %d is not a perfect square",
			ErrMalformedTable, len(vals))
	}
	if n < minSide {
		return nil, fmt.Errorf("%w: side %d is smaller than %d",
			ErrMalformedTable, n, minSide)
	}
	return &Cubic{vals: vals, n: n}, nil
}

// N returns the side of the table.
func (c *Cubic) N() int { return c.n }

// Coeffs caches the x-direction kernel coefficients of every table cell,
// plus two padding cells past the end of the flattened table so that taps
// running over the last row resolve without bounds checks. A Coeffs is
// immutable once built and may be shared by concurrent readers.
type Coeffs struct {
	p, c1, c2, c3 []float64
}

// Precompute derives the x-direction kernel coefficients for the whole
// table. Passing the returned cache to EvalAll and EvalAllDeriv skips the
// per-batch coefficient derivation, which pays off when the same table is
// evaluated against many batches.
func (c *Cubic) Precompute() *Coeffs {
	nn := len(c.vals)
	co := newCoeffs(nn)
	for idx := 0; idx < nn+2; idx++ {
		co.fill(idx, c.vals)
	}
	return co
}

func newCoeffs(nn int) *Coeffs {
	return &Coeffs{
		p:  make([]float64, nn+2),
		c1: make([]float64, nn+2),
		c2: make([]float64, nn+2),
		c3: make([]float64, nn+2),
	}
}

func (co *Coeffs) fill(idx int, vals []float64) {
	co.p[idx] = gather(vals, idx)
	co.c1[idx], co.c2[idx], co.c3[idx] = kernelCoeffs(vals, idx)
}

// Eval interpolates the table at (x, y).
func (c *Cubic) Eval(x, y float64) float64 {
	z, _, _ := c.evalAt(nil, x, y, false)
	return z
}

// EvalDeriv interpolates the table at (x, y) and also returns the exact
// first derivatives of the piecewise-cubic surface there.
func (c *Cubic) EvalDeriv(x, y float64) (z, dzdx, dzdy float64) {
	return c.evalAt(nil, x, y, true)
}

// EvalAll interpolates the table at each (xs[i], ys[i]) pair. co may be
// nil, in which case kernel coefficients are derived for the distinct
// cells the batch touches; pass the result of Precompute to reuse a full
// cache instead. An optional output slice can be supplied to avoid an
// allocation.
func (c *Cubic) EvalAll(
	co *Coeffs, xs, ys []float64, out ...[]float64,
) ([]float64, error) {
	if len(xs) != len(ys) {
		return nil, fmt.Errorf("%w: len(xs) = %d, len(ys) = %d",
			ErrShapeMismatch, len(xs), len(ys))
	}
	if co == nil {
		co = c.batchCoeffs(xs, ys)
	}

	var zs []float64
	if len(out) > 0 {
		zs = out[0]
	} else {
		zs = make([]float64, len(xs))
	}
	for i := range xs {
		zs[i], _, _ = c.evalAt(co, xs[i], ys[i], false)
	}
	return zs, nil
}

// EvalAllDeriv is EvalAll with the x and y derivatives of the interpolated
// surface returned alongside the values.
func (c *Cubic) EvalAllDeriv(
	co *Coeffs, xs, ys []float64,
) (zs, dzdxs, dzdys []float64, err error) {
	if len(xs) != len(ys) {
		return nil, nil, nil, fmt.Errorf("%w: len(xs) = %d, len(ys) = %d",
			ErrShapeMismatch, len(xs), len(ys))
	}
	if co == nil {
		co = c.batchCoeffs(xs, ys)
	}

	zs = make([]float64, len(xs))
	dzdxs = make([]float64, len(xs))
	dzdys = make([]float64, len(xs))
	for i := range xs {
		zs[i], dzdxs[i], dzdys[i] = c.evalAt(co, xs[i], ys[i], true)
	}
	return zs, dzdxs, dzdys, nil
}

// batchCoeffs derives kernel coefficients for the distinct cells touched
// by a batch. Many samples share rows, so cells are deduplicated before
// any coefficients are computed.
func (c *Cubic) batchCoeffs(xs, ys []float64) *Coeffs {
	nn := len(c.vals)
	needed := make([]bool, nn+2)

	for k := range xs {
		base := c.tapBase(xs[k], ys[k])
		for r := 0; r < 4; r++ {
			needed[clampIndex(base+r*c.n, nn+2)] = true
		}
	}

	co := newCoeffs(nn)
	for idx, want := range needed {
		if want {
			co.fill(idx, c.vals)
		}
	}
	return co
}

// tapBase returns the flattened index of the first of the four row taps
// for a sample: the cell at (floor(y)-1, floor(x)).
func (c *Cubic) tapBase(x, y float64) int {
	i := int(math.Floor(x))
	j := int(math.Floor(y))
	return c.n*(j-1) + i
}

// evalAt runs the separable kernel at a single coordinate. With co == nil
// the coefficients of the four taps are derived in place; results are
// identical either way because both paths share kernelCoeffs.
func (c *Cubic) evalAt(
	co *Coeffs, x, y float64, deriv bool,
) (z, dzdx, dzdy float64) {
	xd := x - math.Floor(x)
	yd := y - math.Floor(y)
	base := c.tapBase(x, y)

	// Interpolate along x within each of the four neighboring rows.
	var rowVals, rowDerivs [4]float64
	for r := 0; r < 4; r++ {
		idx := base + r*c.n
		var p0, c1, c2, c3 float64
		if co != nil {
			idx = clampIndex(idx, len(co.p))
			p0, c1, c2, c3 = co.p[idx], co.c1[idx], co.c2[idx], co.c3[idx]
		} else {
			p0 = gather(c.vals, idx)
			c1, c2, c3 = kernelCoeffs(c.vals, idx)
		}
		rowVals[r] = xd*(xd*(xd*c3+c2)+c1) + p0
		if deriv {
			rowDerivs[r] = xd*(xd*3*c3+2*c2) + c1
		}
	}

	// Interpolate the four row values along y.
	d1, d2, d3 := tapCoeffs(rowVals)
	z = yd*(yd*(yd*d3+d2)+d1) + rowVals[1]
	if deriv {
		dzdy = yd*(yd*3*d3+2*d2) + d1
		e1, e2, e3 := tapCoeffs(rowDerivs)
		dzdx = yd*(yd*(yd*e3+e2)+e1) + rowDerivs[1]
	}
	return z, dzdx, dzdy
}

// kernelCoeffs returns the Catmull-Rom (a = -0.5) coefficients of the cell
// at flattened index idx, gathering the column neighbors idx-1 .. idx+2
// with edge clamping.
func kernelCoeffs(vals []float64, idx int) (c1, c2, c3 float64) {
	pm1 := gather(vals, idx-1)
	p0 := gather(vals, idx)
	p1 := gather(vals, idx+1)
	p2 := gather(vals, idx+2)
	return tapCoeffs([4]float64{pm1, p0, p1, p2})
}

// tapCoeffs derives the kernel coefficients from four consecutive taps.
// The interpolated value at fractional offset d from tap p[1] is
// d*(d*(d*c3 + c2) + c1) + p[1].
func tapCoeffs(p [4]float64) (c1, c2, c3 float64) {
	c1 = 0.5 * (p[2] - p[0])
	c2 = 2*p[2] + p[0] - 0.5*(5*p[1]+p[3])
	c3 = 0.5 * (3*(p[1]-p[2]) + p[3] - p[0])
	return c1, c2, c3
}

// gather reads vals[idx], clamping idx into the valid range so that taps
// past the border repeat the nearest sample.
func gather(vals []float64, idx int) float64 {
	return vals[clampIndex(idx, len(vals))]
}

func clampIndex(idx, n int) int {
	if idx < 0 {
		return 0
	}
	if idx >= n {
		return n - 1
	}
	return idx
}
