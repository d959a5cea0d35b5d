package subcrack

import (
	"fmt"
	"io"
)

func Train(rdr []io.Reader, opts ...TrainerOption) (*Model, error) {
	if len(rdr) < 1 {
		return nil, fmt.Errorf("subcrack: requires at least one reader")
	}
	tr := NewTrainer(opts...)
	for _, r := range rdr {
		if err := tr.Add(r); err != nil {
			return nil, err
		}
	}
	return tr.Compile()
}

// TrainLines trains a model from lines that were already split by the
// caller. An empty slice yields the uniform pseudocount model.
func TrainLines(lines []string, opts ...TrainerOption) (*Model, error) {
	tr := NewTrainer(opts...)
	for _, l := range lines {
		tr.AddLine(l)
	}
	return tr.Compile()
}
