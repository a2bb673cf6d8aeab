/*package cmd contains code for running daoeval in its various command
line modes */
package cmd

import (
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/macicco/PythonPhot/parse"
	"github.com/macicco/PythonPhot/version"
)

var ModeNames map[string]Mode = map[string]Mode{
	"eval": &EvalConfig{},
}

// Mode represents the interface used by the main binary when interacting with
// a given command line mode.
type Mode interface {
	// ReadConfig reads a mode-specific config file and any trailing command
	// line flags and stores their contents within the Mode. An empty fname
	// means no config file was given and only flags and defaults apply.
	ReadConfig(fname string, flags []string) error
	// ExampleConfig returns the text of an example config file of this mode.
	ExampleConfig() string
	// Run executes the mode. It takes an initialized GlobalConfig struct, a
	// logger, and a slice of lines representing the contents of stdin. It
	// returns a slice of lines that should be written to stdout along with
	// an error if one occurs.
	Run(gConfig *GlobalConfig, log *zap.Logger, stdin []string) (
		[]string, error)
}

// GlobalConfig is a config file used by every mode. It names the PSF model
// file that the modes operate on.
type GlobalConfig struct {
	Version string
	PsfFile string
	Debug   bool
}

// ReadConfig reads a global config file and returns an error, if applicable.
func (config *GlobalConfig) ReadConfig(fname string) error {
	vars := parse.NewConfigVars("config")
	vars.String(&config.Version, "Version", version.SourceVersion)
	vars.String(&config.PsfFile, "PsfFile", "")
	vars.Bool(&config.Debug, "Debug", false)

	if err := parse.ReadConfig(fname, vars); err != nil {
		return err
	}

	return config.validate()
}

// validate checks that all the user-set fields of GlobalConfig are
// properly set.
func (config *GlobalConfig) validate() error {
	major, minor, patch, err := version.Parse(config.Version)
	if err != nil {
		return fmt.Errorf("I couldn't parse the 'Version' variable: %s",
			err.Error())
	}
	smajor, sminor, spatch, _ := version.Parse(version.SourceVersion)
	if major != smajor || minor != sminor || patch != spatch {
		return fmt.Errorf("The 'Version' variable is set to %s, but the "+
			"version of the source is %s",
			config.Version, version.SourceVersion)
	}

	if config.PsfFile == "" {
		return fmt.Errorf("The 'PsfFile' variable isn't set.")
	} else if err = validateFile(config.PsfFile); err != nil {
		return fmt.Errorf("The 'PsfFile' variable is set to '%s', but %s",
			config.PsfFile, err.Error())
	}

	return nil
}

// validateFile returns an error if there are any problems with the given
// file.
func validateFile(name string) error {
	if info, err := os.Stat(name); err != nil {
		return fmt.Errorf("%s does not exist.", name)
	} else if info.IsDir() {
		return fmt.Errorf("%s is a directory, not a file.", name)
	}

	return nil
}

// ExampleConfig returns an example configuration file.
func (config *GlobalConfig) ExampleConfig() string {
	return fmt.Sprintf(`[config]
# Target version of daoeval. This option merely allows daoeval to notice
# when its source and configuration files are not from the same version.
#
# This variable defaults to the source version if not included.
Version = %s

# The PSF model file that the modes operate on, as written by psfio.
PsfFile = path/to/psf.json

# Debug enables verbose logging.
Debug = false`, version.SourceVersion)
}
