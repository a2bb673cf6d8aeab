/*package catalog reads and writes the whitespace-separated column text that
the psf tool passes through its pipes. Lines starting with '#' are comments.*/
package catalog

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// CommentString returns a "# Column contents:" header describing the named
// columns. order gives the output order of the columns, with int columns
// indexed before float columns, and sizes gives the number of values each
// column contributes per line.
func CommentString(
	intNames, floatNames []string, order, sizes []int,
) string {
	names := append([]string{}, intNames...)
	names = append(names, floatNames...)

	tokens := []string{"# Column contents:"}
	n := 0
	for _, idx := range order {
		if idx >= len(names) {
			panic("Column ordering out of range.")
		}

		if sizes[idx] == 1 {
			tokens = append(tokens, fmt.Sprintf("%s(%d)", names[idx], n))
		} else {
			tokens = append(tokens, fmt.Sprintf("%s(%d-%d)", names[idx],
				n, n+sizes[idx]-1))
		}
		n += sizes[idx]
	}

	return strings.Join(tokens, " ")
}

// FormatCols formats the given columns as lines of width-aligned text.
// order indexes columns with int columns before float columns. All columns
// must have the same height.
func FormatCols(intCols [][]int, floatCols [][]float64, order []int) []string {
	height := -1
	cols := make([][]string, 0, len(intCols)+len(floatCols))
	for i := range intCols {
		cols = append(cols, formatIntCol(intCols[i]))
		height = checkHeight(height, len(intCols[i]))
	}
	for i := range floatCols {
		cols = append(cols, formatFloatCol(floatCols[i]))
		height = checkHeight(height, len(floatCols[i]))
	}

	if height <= 0 {
		return []string{}
	}

	ordered := make([][]string, 0, len(order))
	for _, idx := range order {
		if idx >= len(cols) {
			panic("Column ordering out of range.")
		}
		ordered = append(ordered, cols[idx])
	}

	lines := make([]string, height)
	tokens := make([]string, len(ordered))
	for i := 0; i < height; i++ {
		for j := range ordered {
			tokens[j] = ordered[j][i]
		}
		lines[i] = strings.Join(tokens, " ")
	}

	return lines
}

func checkHeight(height, n int) int {
	if height != -1 && height != n {
		panic("Columns of unequal height.")
	}
	return n
}

func formatIntCol(col []int) []string {
	width := 0
	for i := range col {
		if n := len(strconv.Itoa(col[i])); n > width {
			width = n
		}
	}

	out := make([]string, len(col))
	for i := range col {
		out[i] = fmt.Sprintf("%*d", width, col[i])
	}
	return out
}

func formatFloatCol(col []float64) []string {
	width := 0
	for i := range col {
		if n := len(fmt.Sprintf("%.6g", col[i])); n > width {
			width = n
		}
	}

	out := make([]string, len(col))
	for i := range col {
		out[i] = fmt.Sprintf("%*.6g", width, col[i])
	}
	return out
}

// Parse parses the specified int and float columns out of a block of column
// text. Comments and blank lines are skipped, and every data line must have
// the same number of fields as the first.
func Parse(data []byte, icolIdxs, fcolIdxs []int) (
	[][]int, [][]float64, error,
) {
	icols := make([][]int, len(icolIdxs))
	fcols := make([][]float64, len(fcolIdxs))
	for i := range icols {
		icols[i] = []int{}
	}
	for i := range fcols {
		fcols[i] = []float64{}
	}

	nFields := -1
	for i, line := range bytes.Split(data, []byte{'\n'}) {
		if comment := bytes.IndexByte(line, '#'); comment != -1 {
			line = line[:comment]
		}
		words := bytes.Fields(line)
		if len(words) == 0 {
			continue
		}

		if nFields == -1 {
			nFields = len(words)
		} else if len(words) != nFields {
			return nil, nil, fmt.Errorf(
				"Line %d has %d columns, not %d.", i+1, len(words), nFields,
			)
		}

		for j, idx := range icolIdxs {
			if idx >= nFields {
				return nil, nil, fmt.Errorf(
					"Column %d requested, but lines only have %d columns.",
					idx, nFields,
				)
			}
			n, err := strconv.Atoi(string(words[idx]))
			if err != nil {
				return nil, nil, err
			}
			icols[j] = append(icols[j], n)
		}
		for j, idx := range fcolIdxs {
			if idx >= nFields {
				return nil, nil, fmt.Errorf(
					"Column %d requested, but lines only have %d columns.",
					idx, nFields,
				)
			}
			f, err := strconv.ParseFloat(string(words[idx]), 64)
			if err != nil {
				return nil, nil, err
			}
			fcols[j] = append(fcols[j], f)
		}
	}

	return icols, fcols, nil
}

// ReadFile parses columns out of the named file.
func ReadFile(fname string, icolIdxs, fcolIdxs []int) (
	[][]int, [][]float64, error,
) {
	data, err := os.ReadFile(fname)
	if err != nil {
		return nil, nil, err
	}
	return Parse(data, icolIdxs, fcolIdxs)
}

// ReadStdin parses columns out of stdin.
func ReadStdin(icolIdxs, fcolIdxs []int) ([][]int, [][]float64, error) {
	data, err := io.ReadAll(os.Stdin)
	if err != nil {
		return nil, nil, err
	}
	return Parse(data, icolIdxs, fcolIdxs)
}
