/*package psfio reads and writes PSF model files.

A model file is a JSON document carrying the Gaussian parameters, the
residual table in its storage form, and an XXH64 checksum of the table
samples so silent corruption is caught on load.
*/
package psfio

import (
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"

	"github.com/cespare/xxhash/v2"
	"go.uber.org/multierr"

	"github.com/macicco/PythonPhot/gauss"
	"github.com/macicco/PythonPhot/psf"
)

// ErrChecksum is returned by Load when the stored table checksum does not
// match the table contents.
var ErrChecksum = errors.New("psf table checksum mismatch")

// Model is the on-disk representation of a fitted PSF.
type Model struct {
	// Height, X0, Y0, SigmaX and SigmaY mirror psf.GaussianParams.
	Height float64 `json:"height"`
	X0     float64 `json:"x0"`
	Y0     float64 `json:"y0"`
	SigmaX float64 `json:"sigma_x"`
	SigmaY float64 `json:"sigma_y"`

	// Form and Side describe the residual table layout; Table holds its
	// samples flattened row-major.
	Form  psf.ResidualForm `json:"residual_form"`
	Side  int              `json:"side"`
	Table []float64        `json:"table"`

	// Checksum is the XXH64 digest of Table, as a hex string.
	Checksum string `json:"table_checksum,omitempty"`
}

// New builds a Model from evaluator inputs.
func New(params psf.GaussianParams, form psf.ResidualForm, side int, table []float64) *Model {
	return &Model{
		Height: params.Height,
		X0:     params.X0, Y0: params.Y0,
		SigmaX: params.SigmaX, SigmaY: params.SigmaY,
		Form: form, Side: side, Table: table,
	}
}

// Params returns the Gaussian parameters of the model.
func (m *Model) Params() psf.GaussianParams {
	return psf.GaussianParams{
		Height: m.Height,
		X0:     m.X0, Y0: m.Y0,
		SigmaX: m.SigmaX, SigmaY: m.SigmaY,
	}
}

// Evaluator wires the model into a ready-to-use PSF evaluator, with the
// interpolation coefficients precomputed.
func (m *Model) Evaluator() (*psf.Evaluator, error) {
	var res *psf.Residual
	var err error
	switch m.Form {
	case psf.Full2D:
		rows := make([][]float64, m.Side)
		for j := range rows {
			rows[j] = m.Table[j*m.Side : (j+1)*m.Side]
		}
		res, err = psf.NewFull2DResidual(rows)
	case psf.Radial1D:
		res, err = psf.NewRadial1DResidual(m.Table)
	default:
		err = fmt.Errorf("unknown residual form %q", m.Form)
	}
	if err != nil {
		return nil, err
	}
	res.Precompute()
	return psf.NewEvaluator(gauss.Model{}, m.Params(), res), nil
}

func (m *Model) validate() error {
	var err error
	if m.Side < 5 {
		err = multierr.Append(err,
			fmt.Errorf("side %d is too small for cubic interpolation", m.Side))
	}
	if len(m.Table) != m.Side*m.Side {
		err = multierr.Append(err,
			fmt.Errorf("table has %d samples, want %d", len(m.Table), m.Side*m.Side))
	}
	if m.SigmaX <= 0 || m.SigmaY <= 0 {
		err = multierr.Append(err,
			fmt.Errorf("gaussian sigmas (%g, %g) must be positive", m.SigmaX, m.SigmaY))
	}
	if math.IsNaN(m.Height) || math.IsInf(m.Height, 0) {
		err = multierr.Append(err, fmt.Errorf("height %g is not finite", m.Height))
	}
	return err
}

// Save validates the model, fills in the table checksum, and writes it to
// path.
func Save(path string, m *Model) error {
	if err := m.validate(); err != nil {
		return fmt.Errorf("invalid psf model: %w", err)
	}
	m.Checksum = checksum(m.Table)

	bs, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, append(bs, '\n'), 0644)
}

// Load reads and validates a model file. A missing checksum is accepted
// for hand-written files; a present one must match.
func Load(path string) (*Model, error) {
	bs, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	m := &Model{}
	if err := json.Unmarshal(bs, m); err != nil {
		return nil, fmt.Errorf("psf model %s: %w", path, err)
	}
	if err := m.validate(); err != nil {
		return nil, fmt.Errorf("psf model %s: %w", path, err)
	}
	if m.Checksum != "" && m.Checksum != checksum(m.Table) {
		return nil, fmt.Errorf("psf model %s: %w", path, ErrChecksum)
	}
	return m, nil
}

// checksum digests the table samples as little-endian IEEE 754 bits.
func checksum(table []float64) string {
	d := xxhash.New()
	var buf [8]byte
	for _, v := range table {
		binary.LittleEndian.PutUint64(buf[:], math.Float64bits(v))
		d.Write(buf[:])
	}
	return fmt.Sprintf("%016x", d.Sum64())
}
