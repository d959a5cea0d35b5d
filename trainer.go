package subcrack

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"math"
	"strings"
)

// Every pair starts with this count before training. This acts as a floor so
// that a transition never seen in the corpus still has a non-zero
// probability and the log of every cell is defined.
const DefaultPseudocount float64 = 2

// Smoothing selects how observed pair counts combine with the pseudocount.
type Smoothing int

const (
	// SmoothingOverwrite replaces the pseudocount of every observed pair with
	// its raw count. A pair seen once therefore scores lower than an unseen
	// pair when the pseudocount is 2. This is the default.
	SmoothingOverwrite Smoothing = iota

	// SmoothingAdditive adds the raw count to the pseudocount (Laplace).
	SmoothingAdditive
)

func (s Smoothing) String() string {
	switch s {
	case SmoothingOverwrite:
		return "overwrite"
	case SmoothingAdditive:
		return "additive"
	default:
		return fmt.Sprintf("Smoothing(%d)", int(s))
	}
}

// ParseSmoothing accepts the names returned by Smoothing.String.
func ParseSmoothing(s string) (Smoothing, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "overwrite":
		return SmoothingOverwrite, nil
	case "additive":
		return SmoothingAdditive, nil
	}
	return 0, fmt.Errorf("subcrack: unknown smoothing %q", s)
}

type Trainer struct {
	counts      [AlphabetSize][AlphabetSize]uint64
	pseudocount float64
	smoothing   Smoothing
	lines       int
	pairs       int
	scratch     []uint8
}

type TrainerOption func(t *Trainer)

func TrainerPseudocount(w float64) TrainerOption {
	return func(t *Trainer) {
		t.pseudocount = w
	}
}

func TrainerSmoothing(s Smoothing) TrainerOption {
	return func(t *Trainer) {
		t.smoothing = s
	}
}

func NewTrainer(opts ...TrainerOption) *Trainer {
	t := &Trainer{
		pseudocount: DefaultPseudocount,
		smoothing:   SmoothingOverwrite,
		scratch:     make([]uint8, 0, 256),
	}
	for _, o := range opts {
		o(t)
	}
	return t
}

// AddLine counts every consecutive symbol pair of the canonicalized line.
// Pairs never span two lines.
func (t *Trainer) AddLine(line string) {
	t.scratch = indices(Canonicalize(line), t.scratch)
	t.lines++
	for i := 1; i < len(t.scratch); i++ {
		t.counts[t.scratch[i-1]][t.scratch[i]]++
		t.pairs++
	}
}

// Add reads rdr to EOF and feeds it to AddLine one line at a time. Lines
// end at "\n", "\r\n" or a lone "\r".
func (t *Trainer) Add(rdr io.Reader) error {
	scn := bufio.NewScanner(rdr)
	scn.Buffer(make([]byte, 0, 8192), math.MaxInt)
	scn.Split(scanLines)
	for scn.Scan() {
		t.AddLine(scn.Text())
	}
	return scn.Err()
}

// scanLines is bufio.ScanLines with a lone '\r' also ending a line.
func scanLines(data []byte, atEOF bool) (advance int, token []byte, err error) {
	if atEOF && len(data) == 0 {
		return 0, nil, nil
	}
	if i := bytes.IndexAny(data, "\r\n"); i >= 0 {
		if data[i] == '\n' {
			return i + 1, data[:i], nil
		}
		if i+1 < len(data) {
			if data[i+1] == '\n' {
				return i + 2, data[:i], nil
			}
			return i + 1, data[:i], nil
		}
		if atEOF {
			return i + 1, data[:i], nil
		}
		// Need the next byte to tell "\r" from "\r\n".
		return 0, nil, nil
	}
	if atEOF {
		return len(data), data, nil
	}
	return 0, nil, nil
}

// Lines returns the number of lines added so far.
func (t *Trainer) Lines() int { return t.lines }

// Pairs returns the number of symbol pairs counted so far.
func (t *Trainer) Pairs() int { return t.pairs }

// Compile builds the row-normalised transition matrix from the counts seen so
// far. The trainer can keep accepting input afterwards; the returned Model
// does not change.
func (t *Trainer) Compile() (*Model, error) {
	if !(t.pseudocount > 0) || math.IsInf(t.pseudocount, 0) {
		return nil, fmt.Errorf("subcrack: pseudocount must be a positive finite number, found %v", t.pseudocount)
	}

	var cells [AlphabetSize][AlphabetSize]float64
	for i := range cells {
		for j := range cells[i] {
			cells[i][j] = t.pseudocount
			n := t.counts[i][j]
			if n == 0 {
				continue
			}
			switch t.smoothing {
			case SmoothingOverwrite:
				cells[i][j] = float64(n)
			case SmoothingAdditive:
				cells[i][j] += float64(n)
			default:
				return nil, fmt.Errorf("subcrack: unknown smoothing %v", t.smoothing)
			}
		}
	}

	return newModel(&cells)
}
