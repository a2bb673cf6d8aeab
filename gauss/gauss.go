/*package gauss implements the analytic core of the DAOPHOT PSF model: the
integral of a bivariate Gaussian over unit detector pixels, evaluated with
the error function.

The pixel integral factors into one error-function difference per axis,
so both the value and the centroid partials come out in closed form.
*/
package gauss

import (
	"math"

	"github.com/macicco/PythonPhot/psf"
)

// Model evaluates pixel-integrated bivariate Gaussians. The zero value is
// ready to use; it implements psf.GaussianModel.
type Model struct{}

var _ psf.GaussianModel = Model{}

// Evaluate returns the Gaussian integrated over the unit pixel centered on
// each (xs[i], ys[i]), along with its partial derivatives with respect to
// the peak height and the centroid offsets. The offset partials keep the
// centroid sign convention psf.Partials documents.
func (Model) Evaluate(
	xs, ys []float64, p psf.GaussianParams,
) ([]float64, psf.Partials) {
	vals := make([]float64, len(xs))
	pder := psf.Partials{
		DHeight: make([]float64, len(xs)),
		DX:      make([]float64, len(xs)),
		DY:      make([]float64, len(xs)),
	}

	for k := range xs {
		u1 := (xs[k] - p.X0 - 0.5) / p.SigmaX
		u2 := (xs[k] - p.X0 + 0.5) / p.SigmaX
		v1 := (ys[k] - p.Y0 - 0.5) / p.SigmaY
		v2 := (ys[k] - p.Y0 + 0.5) / p.SigmaY

		fx := cdf(u2) - cdf(u1)
		fy := cdf(v2) - cdf(v1)

		vals[k] = p.Height * fx * fy
		pder.DHeight[k] = fx * fy
		pder.DX[k] = p.Height * fy * (pdf(u1) - pdf(u2)) / p.SigmaX
		pder.DY[k] = p.Height * fx * (pdf(v1) - pdf(v2)) / p.SigmaY
	}
	return vals, pder
}

// cdf is the standard normal cumulative distribution function.
func cdf(z float64) float64 {
	return 0.5 * (1 + math.Erf(z/math.Sqrt2))
}

// pdf is the standard normal probability density function.
func pdf(z float64) float64 {
	return math.Exp(-0.5*z*z) / math.Sqrt(2*math.Pi)
}
