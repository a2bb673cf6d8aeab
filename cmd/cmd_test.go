package cmd

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/macicco/PythonPhot/psf"
	"github.com/macicco/PythonPhot/psfio"
	"github.com/macicco/PythonPhot/version"
)

func writeTestModel(t *testing.T) string {
	t.Helper()

	side := 7
	table := make([]float64, side*side)
	for i := range table {
		table[i] = 0.001
	}
	m := psfio.New(
		psf.GaussianParams{Height: 1, X0: 0, Y0: 0, SigmaX: 1.5, SigmaY: 1.5},
		psf.Full2D, side, table,
	)

	fname := filepath.Join(t.TempDir(), "psf.json")
	require.NoError(t, psfio.Save(fname, m))
	return fname
}

func writeGlobalConfig(t *testing.T, psfFile string) string {
	t.Helper()
	fname := filepath.Join(t.TempDir(), "global.config")
	text := "[config]\nVersion = " + version.SourceVersion +
		"\nPsfFile = " + psfFile + "\n"
	require.NoError(t, os.WriteFile(fname, []byte(text), 0644))
	return fname
}

func TestGlobalConfigReadConfig(t *testing.T) {
	psfFile := writeTestModel(t)

	gConfig := &GlobalConfig{}
	require.NoError(t, gConfig.ReadConfig(writeGlobalConfig(t, psfFile)))
	require.Equal(t, psfFile, gConfig.PsfFile)
	require.Equal(t, version.SourceVersion, gConfig.Version)
}

func TestGlobalConfigValidate(t *testing.T) {
	psfFile := writeTestModel(t)
	dir := t.TempDir()

	badConfigs := []string{
		"[config]\n", // PsfFile unset
		"[config]\nPsfFile = no/such/file.json\n",
		"[config]\nPsfFile = " + psfFile + "\nVersion = 99.0.0\n",
		"[config]\nPsfFile = " + psfFile + "\nVersion = blah\n",
	}
	for _, text := range badConfigs {
		fname := filepath.Join(dir, "bad.config")
		require.NoError(t, os.WriteFile(fname, []byte(text), 0644))
		require.Error(t, (&GlobalConfig{}).ReadConfig(fname), "config %q", text)
	}
}

func TestEvalConfigReadConfig(t *testing.T) {
	config := &EvalConfig{}
	fname := filepath.Join(t.TempDir(), "test.eval.config")
	text := "[eval.config]\nX = 0, 0.5\nY = 0, 0.25\nDerivatives = true\n"
	require.NoError(t, os.WriteFile(fname, []byte(text), 0644))

	require.NoError(t, config.ReadConfig(fname, nil))
	require.Equal(t, []float64{0, 0.5}, config.xs)
	require.Equal(t, []float64{0, 0.25}, config.ys)
	require.True(t, config.derivatives)

	// Flags override the config file.
	require.NoError(t, config.ReadConfig(fname, []string{"--Y", "1, 2"}))
	require.Equal(t, []float64{1, 2}, config.ys)

	require.Error(t, config.ReadConfig(fname, []string{"--Y", "1, 2, 3"}))
}

func TestEvalRun(t *testing.T) {
	psfFile := writeTestModel(t)

	gConfig := &GlobalConfig{}
	require.NoError(t, gConfig.ReadConfig(writeGlobalConfig(t, psfFile)))

	config := &EvalConfig{}
	require.NoError(t, config.ReadConfig("", []string{
		"--X", "0, 0.5", "--Y", "0, 0.25", "--Derivatives", "true",
	}))

	out, err := config.Run(gConfig, zap.NewNop(), nil)
	require.NoError(t, err)
	require.Len(t, out, 3)
	require.True(t, strings.HasPrefix(out[0], "# Column contents:"))
	require.Len(t, strings.Fields(out[1]), 6)
}

func TestEvalRunStdin(t *testing.T) {
	psfFile := writeTestModel(t)

	gConfig := &GlobalConfig{}
	require.NoError(t, gConfig.ReadConfig(writeGlobalConfig(t, psfFile)))

	config := &EvalConfig{}
	require.NoError(t, config.ReadConfig("", nil))

	out, err := config.Run(gConfig, zap.NewNop(), []string{
		"# x y",
		"0 0",
		"0.5 0.25",
	})
	require.NoError(t, err)
	require.Len(t, out, 3)
	require.Len(t, strings.Fields(out[1]), 4)
}

func TestEvalConfigExampleConfigParses(t *testing.T) {
	config := &EvalConfig{}
	fname := filepath.Join(t.TempDir(), "example.eval.config")
	require.NoError(t,
		os.WriteFile(fname, []byte(config.ExampleConfig()), 0644))
	require.NoError(t, config.ReadConfig(fname, nil))
}
