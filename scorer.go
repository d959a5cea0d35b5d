package subcrack

// Scorer ranks candidate keys by the log-likelihood of the text they decrypt
// to. Higher (closer to zero) is more plausible.
type Scorer struct {
	model *Model
}

func NewScorer(m *Model) (*Scorer, error) {
	if !m.trained() {
		return nil, ErrUntrained
	}
	return &Scorer{model: m}, nil
}

// Score decrypts ciphertext with the inverse of c and sums the log
// probability of every adjacent pair. ciphertext must be canonical.
func (s *Scorer) Score(c Cipher, ciphertext string) float64 {
	return s.score(&c, indices(ciphertext, nil))
}

// score is the search hot path. ct holds ciphertext indices; decryption goes
// through c.inv directly without building the plaintext.
func (s *Scorer) score(c *Cipher, ct []uint8) float64 {
	if len(ct) < 2 {
		return 0
	}
	var total float64
	prev := c.inv[ct[0]]
	for _, v := range ct[1:] {
		cur := c.inv[v]
		total += s.model.logProb[prev][cur]
		prev = cur
	}
	return total
}

func decode(c *Cipher, ct []uint8, limit int) string {
	if limit < 0 || limit > len(ct) {
		limit = len(ct)
	}
	out := make([]byte, limit)
	for i := 0; i < limit; i++ {
		out[i] = Symbols[c.inv[ct[i]]]
	}
	return string(out)
}
