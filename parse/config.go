/*package parse reads the config files and command line flags which control
the psf tool. Config files take the form

    [name]
    Var1 = value
    Var2 = v1, v2, v3 # comment

Variable names are case-insensitive, and '#' starts a comment.*/
package parse

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

type varType int

const (
	intVar varType = iota
	floatVar
	floatsVar
	stringVar
	stringsVar
	boolVar
)

func (v varType) String() string {
	switch v {
	case intVar:
		return "int"
	case floatVar:
		return "float"
	case floatsVar:
		return "float list"
	case stringVar:
		return "string"
	case stringsVar:
		return "string list"
	case boolVar:
		return "bool"
	}
	panic("Impossible")
}

// configVar associates a lowercased variable name with the function that
// converts its text into the registered pointer.
type configVar struct {
	name string
	typ  varType
	conv func(string) bool
}

// ConfigVars is a registry of the variables a config file of a given type
// may set. Register variables with the typed methods, then call ReadConfig
// or ReadFlags.
type ConfigVars struct {
	name string
	vars []configVar
}

func NewConfigVars(name string) *ConfigVars {
	return &ConfigVars{name: name}
}

func (vars *ConfigVars) add(name string, typ varType, conv func(string) bool) {
	vars.vars = append(vars.vars, configVar{
		name: strings.ToLower(name), typ: typ, conv: conv,
	})
}

func (vars *ConfigVars) Int(ptr *int64, name string, value int64) {
	*ptr = value
	vars.add(name, intVar, func(s string) bool {
		i, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return false
		}
		*ptr = i
		return true
	})
}

func (vars *ConfigVars) Float(ptr *float64, name string, value float64) {
	*ptr = value
	vars.add(name, floatVar, func(s string) bool {
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return false
		}
		*ptr = f
		return true
	})
}

func (vars *ConfigVars) Floats(ptr *[]float64, name string, value []float64) {
	*ptr = value
	vars.add(name, floatsVar, func(s string) bool {
		out := []float64{}
		for _, tok := range listToks(s) {
			f, err := strconv.ParseFloat(tok, 64)
			if err != nil {
				return false
			}
			out = append(out, f)
		}
		*ptr = out
		return true
	})
}

func (vars *ConfigVars) String(ptr *string, name string, value string) {
	*ptr = value
	vars.add(name, stringVar, func(s string) bool {
		*ptr = strings.Trim(s, " ")
		return true
	})
}

func (vars *ConfigVars) Strings(ptr *[]string, name string, value []string) {
	*ptr = value
	vars.add(name, stringsVar, func(s string) bool {
		*ptr = listToks(s)
		return true
	})
}

func (vars *ConfigVars) Bool(ptr *bool, name string, value bool) {
	*ptr = value
	vars.add(name, boolVar, func(s string) bool {
		b, err := strconv.ParseBool(s)
		if err != nil {
			return false
		}
		*ptr = b
		return true
	})
}

func listToks(s string) []string {
	toks := strings.Split(s, ",")
	for i := range toks {
		toks[i] = strings.Trim(toks[i], " ")
	}
	return toks
}

func (vars *ConfigVars) lookup(name string) (configVar, bool) {
	for i := range vars.vars {
		if vars.vars[i].name == name {
			return vars.vars[i], true
		}
	}
	return configVar{}, false
}

// ReadConfig reads the config file fname and sets every registered variable
// it assigns. Variables that the file does not mention keep their defaults.
func ReadConfig(fname string, vars *ConfigVars) error {
	bs, err := os.ReadFile(fname)
	if err != nil {
		return err
	}

	lines, lineNums := removeComments(strings.Split(string(bs), "\n"))

	if len(lines) == 0 || lines[0] != fmt.Sprintf("[%s]", vars.name) {
		return fmt.Errorf(
			"I expected the config file %s to have the header "+
				"[%s] at the top, but didn't find it.", fname, vars.name,
		)
	}
	lines, lineNums = lines[1:], lineNums[1:]

	names, vals, errLine := associationList(lines)
	if errLine != -1 {
		return fmt.Errorf(
			"I could not parse line %d of the config file %s because it "+
				"did not take the form of a variable assignment.",
			lineNums[errLine], fname,
		)
	}

	for i := range names {
		if _, ok := vars.lookup(names[i]); !ok {
			return fmt.Errorf(
				"Line %d of the config file %s assigns a value to the "+
					"variable '%s', but config files of type %s don't have "+
					"that variable.", lineNums[i], fname, names[i], vars.name,
			)
		}
	}

	if i, j := duplicateNames(names); i != -1 {
		return fmt.Errorf(
			"Lines %d and %d of the config file %s both assign a value to "+
				"the variable '%s'.", lineNums[i], lineNums[j],
			fname, names[i],
		)
	}

	for i := range names {
		v, _ := vars.lookup(names[i])
		if !v.conv(vals[i]) {
			return fmt.Errorf(
				"I could not parse line %d of the config file %s because "+
					"'%s' expects values of type %s and '%s' cannot be "+
					"converted.", lineNums[i], fname, v.name, v.typ, vals[i],
			)
		}
	}

	return nil
}

// ReadFlags sets registered variables from command line arguments of the
// form "--Name value" or "--Name v1, v2 v3". Every token up to the next
// flag belongs to the preceding flag's value list.
func ReadFlags(flags []string, vars *ConfigVars) error {
	for i := 0; i < len(flags); {
		if !strings.HasPrefix(flags[i], "-") {
			return fmt.Errorf(
				"The argument '%s' does not follow a flag.", flags[i],
			)
		}

		name := strings.ToLower(strings.TrimLeft(flags[i], "-"))
		v, ok := vars.lookup(name)
		if !ok {
			return fmt.Errorf(
				"The flag '%s' is not a variable of config files of type %s.",
				flags[i], vars.name,
			)
		}

		j := i + 1
		for j < len(flags) && !strings.HasPrefix(flags[j], "-") {
			j++
		}
		if j == i+1 {
			return fmt.Errorf("The flag '%s' was not given a value.", flags[i])
		}

		val := strings.Join(flags[i+1:j], ", ")
		if !v.conv(val) {
			return fmt.Errorf(
				"The flag '%s' expects values of type %s and '%s' cannot "+
					"be converted.", flags[i], v.typ, val,
			)
		}
		i = j
	}
	return nil
}

// removeComments strips '#' comments and blank lines, returning the
// surviving lines along with their 1-indexed line numbers.
func removeComments(lines []string) ([]string, []int) {
	out, lineNums := []string{}, []int{}
	for i := range lines {
		line := lines[i]
		if comment := strings.Index(line, "#"); comment != -1 {
			line = line[:comment]
		}
		line = strings.Trim(line, " \t")
		if len(line) == 0 {
			continue
		}
		out = append(out, line)
		lineNums = append(lineNums, i+1)
	}
	return out, lineNums
}

func associationList(lines []string) (names, vals []string, errLine int) {
	for i := range lines {
		eq := strings.Index(lines[i], "=")
		if eq == -1 {
			return nil, nil, i
		}
		name := strings.ToLower(strings.Trim(lines[i][:eq], " \t"))
		if len(name) == 0 {
			return nil, nil, i
		}
		names = append(names, name)
		vals = append(vals, strings.Trim(lines[i][eq+1:], " \t"))
	}
	return names, vals, -1
}

func duplicateNames(names []string) (int, int) {
	for i := range names {
		for j := i + 1; j < len(names); j++ {
			if names[i] == names[j] {
				return i, j
			}
		}
	}
	return -1, -1
}
