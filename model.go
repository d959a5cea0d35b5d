package subcrack

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"math"
)

var ErrUntrained = errors.New("subcrack: model has not been trained")

// Model is a trained bigram transition matrix over the alphabet. prob[i][j]
// is the probability that symbol j follows symbol i. Every row sums to 1 and
// every cell is strictly positive. A Model is immutable once built and safe
// to share between goroutines.
//
// Models only come out of Trainer.Compile or UnmarshalBinary; a zero Model
// is rejected by NewScorer and NewBreaker with ErrUntrained.
type Model struct {
	prob    [AlphabetSize][AlphabetSize]float64
	logProb [AlphabetSize][AlphabetSize]float64
}

// newModel normalises the rows of cells and precomputes their logs.
func newModel(cells *[AlphabetSize][AlphabetSize]float64) (*Model, error) {
	var prob [AlphabetSize][AlphabetSize]float64
	for i := range cells {
		var s float64
		for j := range cells[i] {
			s += cells[i][j]
		}
		for j := range cells[i] {
			prob[i][j] = cells[i][j] / s
		}
	}
	return modelFromProb(&prob)
}

// modelFromProb takes prob as is. Every cell must be strictly positive and
// finite.
func modelFromProb(prob *[AlphabetSize][AlphabetSize]float64) (*Model, error) {
	m := &Model{prob: *prob}
	for i := range prob {
		for j, p := range prob[i] {
			if math.IsNaN(p) || math.IsInf(p, 0) || !(p > 0) {
				return nil, fmt.Errorf("subcrack: invalid probability %v for %q, %q", p, SymbolOf(i), SymbolOf(j))
			}
			m.logProb[i][j] = math.Log(p)
		}
	}
	return m, nil
}

// Loaded rows may drift from 1 by float rounding but no further.
const rowSumTolerance = 1e-9

// trained holds for every Model built by newModel, since every cell is
// strictly positive, and fails for the zero value.
func (m *Model) trained() bool {
	return m != nil && m.prob[0][0] > 0
}

// Prob returns the probability of b following a. Both must be alphabet
// symbols.
func (m *Model) Prob(a, b byte) float64 {
	return m.prob[mustIndex(a)][mustIndex(b)]
}

// LogProb returns the natural log of Prob(a, b).
func (m *Model) LogProb(a, b byte) float64 {
	return m.logProb[mustIndex(a)][mustIndex(b)]
}

// Matrix returns a copy of the transition matrix.
func (m *Model) Matrix() [AlphabetSize][AlphabetSize]float64 {
	return m.prob
}

// LogLikelihood canonicalizes text and returns the sum of the log
// probabilities of its adjacent pairs.
func (m *Model) LogLikelihood(text string) float64 {
	idx := indices(Canonicalize(text), nil)
	var score float64
	for i := 1; i < len(idx); i++ {
		score += m.logProb[idx[i-1]][idx[i]]
	}
	return score
}

func mustIndex(sym byte) int {
	idx := IndexOf(sym)
	if idx < 0 {
		panic(alphabetViolation(sym))
	}
	return idx
}

const modelMagic = "subcrackmodel!"

func (m *Model) MarshalBinary() (data []byte, err error) {
	if !m.trained() {
		return nil, ErrUntrained
	}

	var enc = make([]byte, 8)
	var buf bytes.Buffer

	binary.LittleEndian.PutUint32(enc, uint32(len(Symbols)))
	buf.Write(enc[:4])
	buf.WriteString(Symbols)

	binary.LittleEndian.PutUint32(enc, uint32(AlphabetSize*AlphabetSize))
	buf.Write(enc[:4])

	for i := range m.prob {
		for _, f := range m.prob[i] {
			binary.LittleEndian.PutUint64(enc, math.Float64bits(f))
			buf.Write(enc)
		}
	}

	var outer bytes.Buffer
	outer.WriteString(modelMagic)
	binary.LittleEndian.PutUint32(enc, uint32(buf.Len()))
	outer.Write(enc[:4])
	outer.Write(buf.Bytes())

	return outer.Bytes(), nil
}

func (m *Model) UnmarshalBinary(data []byte) (err error) {
	if !bytes.HasPrefix(data, []byte(modelMagic)) {
		return fmt.Errorf("subcrack: model does not start with %q", modelMagic)
	}

	pos := len(modelMagic)
	if len(data) < pos+8 {
		return fmt.Errorf("subcrack: model truncated")
	}
	sz := int(binary.LittleEndian.Uint32(data[pos:]))
	pos += 4
	if len(data)-pos != sz {
		return fmt.Errorf("subcrack: model size mismatch")
	}

	alphaSz := int(binary.LittleEndian.Uint32(data[pos:]))
	pos += 4
	if len(data)-pos < alphaSz+4 {
		return fmt.Errorf("subcrack: model truncated")
	}
	if alpha := string(data[pos : pos+alphaSz]); alpha != Symbols {
		return fmt.Errorf("subcrack: model alphabet %q does not match %q", alpha, Symbols)
	}
	pos += alphaSz

	gramSz := int(binary.LittleEndian.Uint32(data[pos:]))
	pos += 4
	if gramSz != AlphabetSize*AlphabetSize || pos+(gramSz*8) != len(data) {
		return fmt.Errorf("subcrack: gram data size mismatch")
	}

	var cells [AlphabetSize][AlphabetSize]float64
	for i := range cells {
		for j := range cells[i] {
			cells[i][j] = math.Float64frombits(binary.LittleEndian.Uint64(data[pos:]))
			pos += 8
		}
	}

	for i := range cells {
		var s float64
		for _, p := range cells[i] {
			s += p
		}
		if math.Abs(s-1) > rowSumTolerance {
			return fmt.Errorf("subcrack: model row %q sums to %v, not 1", SymbolOf(i), s)
		}
	}

	loaded, err := modelFromProb(&cells)
	if err != nil {
		return err
	}
	*m = *loaded
	return nil
}
