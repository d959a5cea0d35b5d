package subcrack

import (
	"bytes"
	"encoding/binary"
	"errors"
	"io"
	"math"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func repeatLines(line string, n int) []string {
	lines := make([]string, n)
	for i := range lines {
		lines[i] = line
	}
	return lines
}

func requireStochastic(t *testing.T, m *Model) {
	t.Helper()
	mat := m.Matrix()
	for i := range mat {
		var s float64
		for j := range mat[i] {
			require.Greater(t, mat[i][j], 0.0, "cell %q -> %q", SymbolOf(i), SymbolOf(j))
			s += mat[i][j]
		}
		require.InDelta(t, 1.0, s, 1e-9, "row %q", SymbolOf(i))
	}
}

func TestModelCatSatOnTheMat(t *testing.T) {
	m, err := TrainLines(repeatLines("the cat sat on the mat", 100))
	require.NoError(t, err)
	requireStochastic(t, m)

	floor := 1.0 / float64(AlphabetSize)
	assert.Greater(t, m.Prob('t', 'h'), m.Prob('q', 'z'))
	assert.InDelta(t, floor, m.Prob('q', 'z'), 1e-12)
	assert.Greater(t, m.Prob('t', 'h'), floor)
}

func TestModelEmptyCorpusIsUniform(t *testing.T) {
	for _, lines := range [][]string{nil, {""}, {"x"}, {"!!! 123"}} {
		m, err := TrainLines(lines)
		require.NoError(t, err)
		requireStochastic(t, m)
		mat := m.Matrix()
		for i := range mat {
			for j := range mat[i] {
				require.InDelta(t, 1.0/float64(AlphabetSize), mat[i][j], 1e-12)
			}
		}
	}
}

func TestModelOverwriteSmoothing(t *testing.T) {
	m, err := TrainLines([]string{"ab"})
	require.NoError(t, err)

	// Row 'a' holds 26 pseudocounts of 2 and the observed count 1.
	assert.InDelta(t, 1.0/53, m.Prob('a', 'b'), 1e-12)
	assert.InDelta(t, 2.0/53, m.Prob('a', 'c'), 1e-12)
	assert.Less(t, m.Prob('a', 'b'), m.Prob('a', 'c'))

	m, err = TrainLines(repeatLines("ab", 5))
	require.NoError(t, err)
	assert.InDelta(t, 5.0/57, m.Prob('a', 'b'), 1e-12)
}

func TestModelAdditiveSmoothing(t *testing.T) {
	m, err := TrainLines([]string{"ab"}, TrainerSmoothing(SmoothingAdditive))
	require.NoError(t, err)
	requireStochastic(t, m)
	assert.InDelta(t, 3.0/55, m.Prob('a', 'b'), 1e-12)
	assert.InDelta(t, 2.0/55, m.Prob('a', 'c'), 1e-12)
}

func TestModelPseudocount(t *testing.T) {
	m, err := TrainLines([]string{"ab"}, TrainerPseudocount(0.5), TrainerSmoothing(SmoothingAdditive))
	require.NoError(t, err)
	assert.InDelta(t, 1.5/14.5, m.Prob('a', 'b'), 1e-12)

	for _, w := range []float64{0, -1, math.NaN(), math.Inf(1)} {
		_, err := TrainLines(nil, TrainerPseudocount(w))
		assert.Error(t, err, "pseudocount %v", w)
	}
}

func TestModelPairsDoNotCrossLines(t *testing.T) {
	tr := NewTrainer()
	require.NoError(t, tr.Add(strings.NewReader("ab\ncd\n")))
	assert.Equal(t, 2, tr.Lines())
	assert.Equal(t, 2, tr.Pairs())

	m, err := tr.Compile()
	require.NoError(t, err)
	assert.InDelta(t, 1.0/float64(AlphabetSize), m.Prob('b', 'c'), 1e-12)
	assert.NotEqual(t, m.Prob('a', 'b'), m.Prob('a', 'c'))
}

func TestTrainerCarriageReturns(t *testing.T) {
	for _, tc := range []struct {
		in           string
		lines, pairs int
	}{
		{"ab\rcd", 2, 2},
		{"ab\r\ncd\r\n", 2, 2},
		{"ab\r\rcd\r", 3, 2},
		{"ab\ncd\ref\r\ngh", 4, 4},
		{"abc\r", 1, 2},
	} {
		t.Run(tc.in, func(t *testing.T) {
			tr := NewTrainer()
			require.NoError(t, tr.Add(strings.NewReader(tc.in)))
			assert.Equal(t, tc.lines, tr.Lines())
			assert.Equal(t, tc.pairs, tr.Pairs())
		})
	}

	tr := NewTrainer()
	require.NoError(t, tr.Add(strings.NewReader("ab\rcd")))
	m, err := tr.Compile()
	require.NoError(t, err)
	assert.InDelta(t, 1.0/float64(AlphabetSize), m.Prob('b', 'c'), 1e-12)
}

func TestModelReaderMatchesLines(t *testing.T) {
	text := "The Cat sat.\nOn the MAT!\r\n\nno trailing newline"
	fromReader, err := Train([]io.Reader{strings.NewReader(text)})
	require.NoError(t, err)
	fromLines, err := TrainLines(strings.Split(text, "\n"))
	require.NoError(t, err)

	if diff := cmp.Diff(fromLines.Matrix(), fromReader.Matrix()); diff != "" {
		t.Fatalf("matrix mismatch (-lines +reader):\n%s", diff)
	}
}

func TestModelLongLine(t *testing.T) {
	line := strings.Repeat("ab", 10000)
	tr := NewTrainer()
	require.NoError(t, tr.Add(strings.NewReader(line)))
	assert.Equal(t, len(line)-1, tr.Pairs())
}

func TestTrainRequiresReader(t *testing.T) {
	_, err := Train(nil)
	require.Error(t, err)
}

func TestModelLogLikelihood(t *testing.T) {
	m, err := TrainLines(repeatLines("the cat sat on the mat", 50))
	require.NoError(t, err)

	assert.Equal(t, 0.0, m.LogLikelihood(""))
	assert.Equal(t, 0.0, m.LogLikelihood("t"))
	assert.InDelta(t, math.Log(m.Prob('t', 'h'))+math.Log(m.Prob('h', 'e')), m.LogLikelihood("THE"), 1e-12)
	assert.Greater(t, m.LogLikelihood("the cat"), m.LogLikelihood("qzx jvk"))
}

func TestModelMarshalRoundTrip(t *testing.T) {
	m, err := TrainLines(repeatLines("the cat sat on the mat", 10))
	require.NoError(t, err)

	bts, err := m.MarshalBinary()
	require.NoError(t, err)

	var load Model
	require.NoError(t, load.UnmarshalBinary(bts))
	if diff := cmp.Diff(m.Matrix(), load.Matrix()); diff != "" {
		t.Fatalf("matrix mismatch:\n%s", diff)
	}
	assert.Equal(t, m.LogLikelihood("the mat"), load.LogLikelihood("the mat"))

	again, err := load.MarshalBinary()
	require.NoError(t, err)
	assert.True(t, bytes.Equal(bts, again), "re-marshalled model differs")
}

func TestModelUnmarshalErrors(t *testing.T) {
	m, err := TrainLines(nil)
	require.NoError(t, err)
	good, err := m.MarshalBinary()
	require.NoError(t, err)

	wrongAlpha := append([]byte(nil), good...)
	wrongAlpha[len(modelMagic)+8] = 'A'

	// Halving the first cell leaves row ' ' summing to 1-1/54.
	unnormalised := append([]byte(nil), good...)
	first := len(good) - AlphabetSize*AlphabetSize*8
	binary.LittleEndian.PutUint64(unnormalised[first:], math.Float64bits(0.5/float64(AlphabetSize)))

	zeroCell := append([]byte(nil), good...)
	for i := len(good) - 8; i < len(good); i++ {
		zeroCell[i] = 0
	}

	for name, data := range map[string][]byte{
		"empty":       nil,
		"magic":       []byte("gibbermodel!...................."),
		"truncated":   good[:len(good)-8],
		"extra":       append(append([]byte(nil), good...), 0),
		"alphabet":    wrongAlpha,
		"zero cell":   zeroCell,
		"row sum":     unnormalised,
		"header only": []byte(modelMagic),
	} {
		t.Run(name, func(t *testing.T) {
			var load Model
			assert.Error(t, load.UnmarshalBinary(data))
		})
	}
}

func TestZeroModelIsUntrained(t *testing.T) {
	var m Model
	_, err := m.MarshalBinary()
	assert.True(t, errors.Is(err, ErrUntrained))
}
