package psf_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/macicco/PythonPhot/gauss"
	"github.com/macicco/PythonPhot/math/interpolate"
	"github.com/macicco/PythonPhot/psf"
)

func constTable(n int, v float64) [][]float64 {
	rows := make([][]float64, n)
	for j := range rows {
		rows[j] = make([]float64, n)
		for i := range rows[j] {
			rows[j][i] = v
		}
	}
	return rows
}

func rippleTable(n int) [][]float64 {
	rows := make([][]float64, n)
	for j := range rows {
		rows[j] = make([]float64, n)
		for i := range rows[j] {
			rows[j][i] = 0.01 * math.Sin(float64(i*j))
		}
	}
	return rows
}

// degenerate is a Gaussian that contributes nothing, so the composite PSF
// is the interpolated residual alone.
var degenerate = psf.GaussianParams{Height: 0, SigmaX: 1, SigmaY: 1}

func TestConstantResidualWithDegenerateGaussian(t *testing.T) {
	res, err := psf.NewFull2DResidual(constTable(7, 1.0))
	require.NoError(t, err)
	ev := psf.NewEvaluator(gauss.Model{}, degenerate, res)

	b, err := psf.Vector([]float64{0.0}, []float64{0.0})
	require.NoError(t, err)
	out, err := ev.Eval(b, false)
	require.NoError(t, err)

	require.False(t, out.OffEdge)
	require.Equal(t, []float64{1.0}, out.Values)
}

func TestOffEdgeBatchIsZeroFilled(t *testing.T) {
	res, err := psf.NewFull2DResidual(constTable(7, 1.0))
	require.NoError(t, err)
	ev := psf.NewEvaluator(gauss.Model{}, degenerate, res)

	// x = -1.25 rescales to table coordinate 0.5, outside [1, 5]. One bad
	// sample poisons the whole batch.
	b, err := psf.Vector([]float64{0.0, -1.25}, []float64{0.0, 0.0})
	require.NoError(t, err)

	out, err := ev.Eval(b, true)
	require.NoError(t, err)
	require.True(t, out.OffEdge)
	require.Equal(t, []float64{0, 0}, out.Values)
	require.Equal(t, []float64{0, 0}, out.DvDx)
	require.Equal(t, []float64{0, 0}, out.DvDy)

	out, err = ev.Eval(b, false)
	require.NoError(t, err)
	require.True(t, out.OffEdge)
	require.Nil(t, out.DvDx)
}

func TestZeroResidualReducesToGaussian(t *testing.T) {
	res, err := psf.NewFull2DResidual(constTable(9, 0.0))
	require.NoError(t, err)
	params := psf.GaussianParams{Height: 5, X0: 0.1, Y0: -0.1, SigmaX: 1.3, SigmaY: 1.1}
	ev := psf.NewEvaluator(gauss.Model{}, params, res)

	xs := []float64{0.0, 0.4, -0.8, 1.2}
	ys := []float64{0.0, -0.6, 0.9, 1.2}
	want, pder := gauss.Model{}.Evaluate(xs, ys, params)

	b, err := psf.Vector(xs, ys)
	require.NoError(t, err)
	out, err := ev.Eval(b, true)
	require.NoError(t, err)
	require.False(t, out.OffEdge)

	for k := range xs {
		require.Equal(t, want[k], out.Values[k], "value %d", k)
		// The residual and its derivatives are identically zero, so the
		// composite derivatives are exactly the negated Gaussian partials.
		require.Equal(t, -pder.DX[k], out.DvDx[k], "dvdx %d", k)
		require.Equal(t, -pder.DY[k], out.DvDy[k], "dvdy %d", k)
	}
}

func TestScalarVectorAndGridShapes(t *testing.T) {
	res, err := psf.NewFull2DResidual(rippleTable(9))
	require.NoError(t, err)
	params := psf.GaussianParams{Height: 2, SigmaX: 1, SigmaY: 1}
	ev := psf.NewEvaluator(gauss.Model{}, params, res)

	scalar, err := ev.Eval(psf.Scalar(0.3, -0.4), true)
	require.NoError(t, err)
	require.Len(t, scalar.Values, 1)

	vb, err := psf.Vector([]float64{0.3}, []float64{-0.4})
	require.NoError(t, err)
	vector, err := ev.Eval(vb, true)
	require.NoError(t, err)
	require.Equal(t, scalar.Value(), vector.Values[0])
	require.Equal(t, scalar.DvDx[0], vector.DvDx[0])
	require.Equal(t, scalar.DvDy[0], vector.DvDy[0])

	gxs := [][]float64{{-0.5, 0.0, 0.5}, {-0.5, 0.0, 0.5}}
	gys := [][]float64{{-0.5, -0.5, -0.5}, {0.5, 0.5, 0.5}}
	gb, err := psf.Grid(gxs, gys)
	require.NoError(t, err)
	require.Equal(t, 6, gb.Len())

	grid, err := ev.Eval(gb, true)
	require.NoError(t, err)
	g := grid.Grid()
	require.Len(t, g, 2)
	require.Len(t, g[0], 3)
	require.Len(t, grid.DvDxGrid(), 2)
	require.Len(t, grid.DvDyGrid(), 2)

	// Each grid cell must match the same coordinate evaluated alone.
	for r := 0; r < 2; r++ {
		for c := 0; c < 3; c++ {
			one, err := ev.Eval(psf.Scalar(gxs[r][c], gys[r][c]), false)
			require.NoError(t, err)
			require.Equal(t, one.Value(), g[r][c], "cell (%d, %d)", r, c)
		}
	}

	require.Nil(t, vector.Grid())
}

func TestResidualFormsAgree(t *testing.T) {
	rows := rippleTable(7)
	flat := []float64{}
	for _, row := range rows {
		flat = append(flat, row...)
	}

	full, err := psf.NewFull2DResidual(rows)
	require.NoError(t, err)
	radial, err := psf.NewRadial1DResidual(flat)
	require.NoError(t, err)
	require.Equal(t, psf.Full2D, full.Form())
	require.Equal(t, psf.Radial1D, radial.Form())
	require.Equal(t, full.Side(), radial.Side())

	params := psf.GaussianParams{Height: 1, SigmaX: 1.5, SigmaY: 1.5}
	evFull := psf.NewEvaluator(gauss.Model{}, params, full)
	evRadial := psf.NewEvaluator(gauss.Model{}, params, radial)

	// Precompute one side to also cover the cached path.
	radial.Precompute()

	b, err := psf.Vector([]float64{0.0, 0.3, -0.7}, []float64{0.0, -0.2, 0.6})
	require.NoError(t, err)
	a, err := evFull.Eval(b, true)
	require.NoError(t, err)
	c, err := evRadial.Eval(b, true)
	require.NoError(t, err)

	require.Equal(t, a.Values, c.Values)
	require.Equal(t, a.DvDx, c.DvDx)
	require.Equal(t, a.DvDy, c.DvDy)
}

func TestBatchContractViolations(t *testing.T) {
	_, err := psf.Vector([]float64{1, 2}, []float64{1})
	require.ErrorIs(t, err, interpolate.ErrShapeMismatch)

	_, err = psf.Grid(
		[][]float64{{1, 2}, {3}},
		[][]float64{{1, 2}, {3, 4}},
	)
	require.ErrorIs(t, err, interpolate.ErrShapeMismatch)

	_, err = psf.NewFull2DResidual(constTable(3, 0))
	require.ErrorIs(t, err, interpolate.ErrMalformedTable)

	_, err = psf.NewRadial1DResidual(make([]float64, 10))
	require.ErrorIs(t, err, interpolate.ErrMalformedTable)
}

func TestResidualFormTextRoundTrip(t *testing.T) {
	for _, f := range []psf.ResidualForm{psf.Full2D, psf.Radial1D} {
		text, err := f.MarshalText()
		require.NoError(t, err)
		var back psf.ResidualForm
		require.NoError(t, back.UnmarshalText(text))
		require.Equal(t, f, back)
	}

	var f psf.ResidualForm
	require.Error(t, f.UnmarshalText([]byte("pineapple")))
}
