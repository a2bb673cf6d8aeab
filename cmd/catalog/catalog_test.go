package catalog

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCommentString(t *testing.T) {
	s := CommentString(
		[]string{"idx"},
		[]string{"x", "y", "value"},
		[]int{0, 1, 2, 3},
		[]int{1, 1, 1, 2},
	)
	require.Equal(t, "# Column contents: idx(0) x(1) y(2) value(3-4)", s)
}

func TestFormatCols(t *testing.T) {
	lines := FormatCols(
		[][]int{{1, 2, 100}},
		[][]float64{{0.5, 1.25, -3}},
		[]int{0, 1},
	)

	require.Len(t, lines, 3)
	for _, line := range lines {
		require.Len(t, strings.Fields(line), 2)
	}
	require.Equal(t, "1", strings.Fields(lines[0])[0])
	require.Equal(t, "100", strings.Fields(lines[2])[0])
	require.Equal(t, "-3", strings.Fields(lines[2])[1])

	require.Empty(t, FormatCols(nil, [][]float64{{}}, []int{0}))
}

func TestParse(t *testing.T) {
	text := `# x y
1.5 2.5 # first point
2.5 3.5

3.5 4.5
`
	icols, fcols, err := Parse([]byte(text), nil, []int{0, 1})
	require.NoError(t, err)
	require.Empty(t, icols)
	require.Equal(t, []float64{1.5, 2.5, 3.5}, fcols[0])
	require.Equal(t, []float64{2.5, 3.5, 4.5}, fcols[1])
}

func TestParseErrors(t *testing.T) {
	_, _, err := Parse([]byte("1 2\n1 2 3\n"), nil, []int{0})
	require.Error(t, err)

	_, _, err = Parse([]byte("1 2\n"), nil, []int{5})
	require.Error(t, err)

	_, _, err = Parse([]byte("1 blah\n"), nil, []int{0, 1})
	require.Error(t, err)

	_, _, err = Parse([]byte("1.5 2\n"), []int{0}, nil)
	require.Error(t, err)
}
