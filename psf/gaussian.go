package psf

// GaussianParams describes the bivariate Gaussian core of a PSF model.
// The offsets are measured from the PSF centroid to the center of the
// best-fitting Gaussian.
type GaussianParams struct {
	// Height is the peak height of the Gaussian profile.
	Height float64
	// X0 and Y0 are the centroid offsets, in pixels.
	X0, Y0 float64
	// SigmaX and SigmaY are the Gaussian widths along each axis.
	SigmaX, SigmaY float64
}

// Partials holds per-sample partial derivatives of the analytic Gaussian.
// DX and DY are derivatives with respect to the centroid offsets X0 and
// Y0, which carry the opposite sign of the spatial derivatives. Evaluator
// relies on that convention when it assembles composite derivatives, so
// implementations must not flip it.
type Partials struct {
	DHeight, DX, DY []float64
}

// GaussianModel evaluates the analytic core of the PSF and its partial
// derivatives at a batch of coordinates relative to the PSF centroid. The
// returned value slice and each Partials row match the length of xs.
//
// Implementations must be pure: no retained state, safe for concurrent
// calls.
type GaussianModel interface {
	Evaluate(xs, ys []float64, p GaussianParams) ([]float64, Partials)
}
