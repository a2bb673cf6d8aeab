package psf

import (
	"fmt"

	"github.com/macicco/PythonPhot/math/interpolate"
)

// Batch is a set of sample coordinates relative to the PSF centroid,
// together with the logical shape results should come back in: a single
// point, a flat vector, or a 2-D grid. Internally every shape is a flat
// slice; the shape only controls how a Result reads back out.
type Batch struct {
	xs, ys     []float64
	rows, cols int
	scalar     bool
}

// Scalar wraps a single coordinate pair as a batch.
func Scalar(x, y float64) Batch {
	return Batch{xs: []float64{x}, ys: []float64{y}, scalar: true}
}

// Vector wraps parallel coordinate slices as a batch. The slices are
// referenced, not copied.
func Vector(xs, ys []float64) (Batch, error) {
	if len(xs) != len(ys) {
		return Batch{}, fmt.Errorf("%w: len(xs) = %d, len(ys) = %d",
			interpolate.ErrShapeMismatch, len(xs), len(ys))
	}
	return Batch{xs: xs, ys: ys}, nil
}

// Grid flattens a pair of 2-D coordinate grids into a batch, remembering
// the shape so results can be read back as grids.
func Grid(xs, ys [][]float64) (Batch, error) {
	if len(xs) != len(ys) {
		return Batch{}, fmt.Errorf("%w: %d x rows, %d y rows",
			interpolate.ErrShapeMismatch, len(xs), len(ys))
	}
	b := Batch{rows: len(xs)}
	if b.rows > 0 {
		b.cols = len(xs[0])
	}
	for r := range xs {
		if len(xs[r]) != b.cols || len(ys[r]) != b.cols {
			return Batch{}, fmt.Errorf(
				"%w: row %d has %d x and %d y columns, want %d",
				interpolate.ErrShapeMismatch, r, len(xs[r]), len(ys[r]), b.cols)
		}
		b.xs = append(b.xs, xs[r]...)
		b.ys = append(b.ys, ys[r]...)
	}
	return b, nil
}

// Len returns the number of samples in the batch.
func (b Batch) Len() int { return len(b.xs) }

// Result holds composite PSF values, and derivatives when they were
// requested, in the shape of the batch that produced them.
type Result struct {
	// Values is the flattened composite PSF at each sample.
	Values []float64
	// DvDx and DvDy are the composite derivatives in image-pixel units.
	// They are nil unless derivatives were requested.
	DvDx, DvDy []float64
	// OffEdge reports that some sample fell too close to the lookup-table
	// border and the whole batch was zero filled. This is a normal
	// condition near frame edges, not an error.
	OffEdge bool

	rows, cols int
	scalar     bool
}

// Value returns the single value of a scalar batch's result.
func (r Result) Value() float64 { return r.Values[0] }

// Grid reads Values back in the 2-D shape of the originating batch. It
// returns nil for scalar and vector batches.
func (r Result) Grid() [][]float64 { return r.reshape(r.Values) }

// DvDxGrid reads DvDx back in the 2-D shape of the originating batch.
func (r Result) DvDxGrid() [][]float64 { return r.reshape(r.DvDx) }

// DvDyGrid reads DvDy back in the 2-D shape of the originating batch.
func (r Result) DvDyGrid() [][]float64 { return r.reshape(r.DvDy) }

func (r Result) reshape(flat []float64) [][]float64 {
	if r.rows == 0 || flat == nil {
		return nil
	}
	out := make([][]float64, r.rows)
	for i := range out {
		out[i] = flat[i*r.cols : (i+1)*r.cols]
	}
	return out
}
