package subcrack

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewScorerUntrained(t *testing.T) {
	_, err := NewScorer(nil)
	assert.True(t, errors.Is(err, ErrUntrained))

	_, err = NewScorer(&Model{})
	assert.True(t, errors.Is(err, ErrUntrained))
}

func TestScoreIsLikelihoodOfDecryption(t *testing.T) {
	m, err := TrainLines(repeatLines("the cat sat on the mat", 50))
	require.NoError(t, err)
	s, err := NewScorer(m)
	require.NoError(t, err)

	rng := NewRand(10)
	plain := "the cat sat on the mat"
	for i := 0; i < 20; i++ {
		key := RandomCipher(rng)
		ct := key.Apply(plain)
		assert.InDelta(t, m.LogLikelihood(plain), s.Score(key, ct), 1e-9)

		other := RandomCipher(rng)
		assert.InDelta(t, m.LogLikelihood(other.Invert().Apply(ct)), s.Score(other, ct), 1e-9)
	}
}

func TestScoreShortText(t *testing.T) {
	m, err := TrainLines(nil)
	require.NoError(t, err)
	s, err := NewScorer(m)
	require.NoError(t, err)

	c := RandomCipher(NewRand(11))
	assert.Equal(t, 0.0, s.Score(c, ""))
	assert.Equal(t, 0.0, s.Score(c, "q"))
	assert.Less(t, s.Score(c, "qq"), 0.0)
}

func TestScoreTrueKeyBeatsWrongKeys(t *testing.T) {
	m := trainCorpus(t)
	s, err := NewScorer(m)
	require.NoError(t, err)

	plain := Canonicalize(aliceOpening)
	rng := NewRand(12)
	key := RandomCipher(rng)
	ct := key.Apply(plain)
	truth := s.Score(key, ct)
	for i := 0; i < 100; i++ {
		assert.Greater(t, truth, s.Score(RandomCipher(rng), ct))
	}
}

func TestDecodeLimit(t *testing.T) {
	c := IdentityCipher()
	ct := indices("hello world", nil)
	assert.Equal(t, "hello world", decode(&c, ct, -1))
	assert.Equal(t, "hello", decode(&c, ct, 5))
	assert.Equal(t, "hello world", decode(&c, ct, 500))
	assert.Equal(t, "", decode(&c, ct, 0))
}

func BenchmarkScore(b *testing.B) {
	m, err := TrainLines(repeatLines("the cat sat on the mat", 50))
	if err != nil {
		b.Fatal(err)
	}
	s, _ := NewScorer(m)
	c := RandomCipher(NewRand(1))
	ct := indices(Canonicalize(aliceOpening), nil)
	b.ResetTimer()
	var total float64
	for i := 0; i < b.N; i++ {
		total += s.score(&c, ct)
	}
	_ = total
}
