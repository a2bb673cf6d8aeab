/*package daoeval contains code for evaluating DAOPHOT-style point spread
function models at detector coordinates.*/
package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"go.uber.org/zap"

	"github.com/macicco/PythonPhot/cmd"
	"github.com/macicco/PythonPhot/logging"
	"github.com/macicco/PythonPhot/version"
)

var helpStrings = map[string]string{
	"eval": `The eval mode evaluates the PSF model named by the global config
file at a list of centroid-relative coordinates. Coordinates come from the
X and Y config variables, or from stdin as two columns of text when those
are not set. The output is one column-formatted row per sample. Samples
that fall off the residual lookup table are reported as zeros and logged
as a warning rather than failing the run.`,

	"config":      new(cmd.GlobalConfig).ExampleConfig(),
	"eval.config": cmd.ModeNames["eval"].ExampleConfig(),
}

var modeDescriptions = `My help modes are:
daoeval help
daoeval help [ eval ]
daoeval help [ config | eval.config ]

My analysis modes are:
daoeval eval [flags] ____.config [____.eval.config]`

func main() {
	args := os.Args
	if len(args) <= 1 {
		fmt.Fprintf(
			os.Stderr, "I was not supplied with a mode.\nFor help, type "+
				"'./daoeval help'.\n",
		)
		os.Exit(1)
	}

	switch args[1] {
	case "help":
		switch len(args) - 2 {
		case 0:
			fmt.Println(modeDescriptions)
		case 1:
			text, ok := helpStrings[args[2]]
			if !ok {
				fmt.Printf("I don't recognize the help target '%s'\n", args[2])
			} else {
				fmt.Println(text)
			}
		default:
			fmt.Println("The help mode can only take a single argument.")
		}
		os.Exit(0)
	case "version":
		fmt.Printf("daoeval version %s\n", version.SourceVersion)
		os.Exit(0)
	}

	mode, ok := cmd.ModeNames[args[1]]
	if !ok {
		fmt.Fprintf(
			os.Stderr, "You passed me the mode '%s', which I don't "+
				"recognize.\nFor help, type './daoeval help'\n", args[1],
		)
		os.Exit(1)
	}

	flags := getFlags(args)
	gConfigName, gConfig, err := getGlobalConfig(args)
	if err != nil {
		fatal(args[1], err)
	}

	log, err := logging.New(gConfig.Debug)
	if err != nil {
		fatal(args[1], err)
	}
	defer log.Sync()

	config, hasConfig := getConfig(args)
	if hasConfig {
		err = mode.ReadConfig(config, flags)
	} else {
		err = mode.ReadConfig("", flags)
	}
	if err != nil {
		fatal(args[1], err)
	}

	lines, err := stdinLines()
	if err != nil {
		fatal(args[1], err)
	}

	log.Debug("mode starting",
		zap.String("mode", args[1]),
		zap.String("config", gConfigName),
	)

	out, err := mode.Run(gConfig, log, lines)
	if err != nil {
		fatal(args[1], err)
	}

	for i := range out {
		fmt.Println(out[i])
	}
}

func fatal(mode string, err error) {
	fmt.Fprintf(os.Stderr, "Error running mode %s:\n%s\n", mode, err.Error())
	os.Exit(1)
}

// stdinLines reads stdin and splits it into lines. A terminal stdin is
// treated as empty so that modes with explicit coordinates don't block.
func stdinLines() ([]string, error) {
	if info, err := os.Stdin.Stat(); err != nil {
		return nil, err
	} else if info.Mode()&os.ModeCharDevice != 0 {
		return nil, nil
	}

	bs, err := io.ReadAll(os.Stdin)
	if err != nil {
		return nil, fmt.Errorf("Error reading stdin: %s.", err.Error())
	}
	lines := strings.Split(string(bs), "\n")
	if len(lines) > 0 && lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return lines, nil
}

// getFlags returns the flag tokens from the command line arguments.
func getFlags(args []string) []string {
	return args[2 : len(args)-configNum(args)]
}

// getGlobalConfig returns the name of the global config file from the
// command line arguments and reads it.
func getGlobalConfig(args []string) (string, *cmd.GlobalConfig, error) {
	var name string
	switch configNum(args) {
	case 0:
		return "", nil, fmt.Errorf("No config files provided in command " +
			"line arguments.")
	case 1:
		name = args[len(args)-1]
	case 2:
		name = args[len(args)-2]
	default:
		return "", nil, fmt.Errorf("Passed too many config files as arguments.")
	}

	config := &cmd.GlobalConfig{}
	if err := config.ReadConfig(name); err != nil {
		return "", nil, err
	}
	return name, config, nil
}

// getConfig returns the name of the mode-specific config file from the
// command line arguments.
func getConfig(args []string) (string, bool) {
	if configNum(args) == 2 {
		return args[len(args)-1], true
	}
	return "", false
}

// configNum returns the number of configuration files at the end of the
// argument list (up to 2).
func configNum(args []string) int {
	num := 0
	for i := len(args) - 1; i >= 2; i-- {
		if isConfig(args[i]) {
			num++
		} else {
			break
		}
	}
	return num
}

// isConfig returns true if the given string is a config file name.
func isConfig(s string) bool {
	return strings.HasSuffix(s, ".config")
}
