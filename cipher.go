package subcrack

import (
	"fmt"
	"math/rand/v2"
	"strings"
)

// Cipher is a substitution key: a permutation of the alphabet mapping each
// plaintext symbol to its ciphertext symbol. It is a value type; copies
// never share state, so mutating one cannot affect another.
//
// fwd[p] is the ciphertext index for plaintext index p and inv is kept as
// its exact inverse after every operation.
type Cipher struct {
	fwd [AlphabetSize]uint8
	inv [AlphabetSize]uint8
}

// IdentityCipher maps every symbol to itself.
func IdentityCipher() Cipher {
	var c Cipher
	for i := range c.fwd {
		c.fwd[i] = uint8(i)
		c.inv[i] = uint8(i)
	}
	return c
}

// RandomCipher returns a uniformly random permutation drawn from rng.
func RandomCipher(rng *rand.Rand) Cipher {
	c := IdentityCipher()
	rng.Shuffle(AlphabetSize, func(i, j int) {
		c.fwd[i], c.fwd[j] = c.fwd[j], c.fwd[i]
	})
	for p, ct := range c.fwd {
		c.inv[ct] = uint8(p)
	}
	return c
}

// ParseCipher reads a key in the format produced by String: the ciphertext
// symbol for each plaintext symbol, in alphabet order.
func ParseCipher(key string) (Cipher, error) {
	var c Cipher
	if len(key) != AlphabetSize {
		return c, fmt.Errorf("subcrack: key must have %d symbols, found %d", AlphabetSize, len(key))
	}
	var seen [AlphabetSize]bool
	for p := 0; p < AlphabetSize; p++ {
		ct := IndexOf(key[p])
		if ct < 0 {
			return c, fmt.Errorf("subcrack: key symbol %q is outside the alphabet", key[p])
		}
		if seen[ct] {
			return c, fmt.Errorf("subcrack: key symbol %q appears more than once", key[p])
		}
		seen[ct] = true
		c.fwd[p] = uint8(ct)
		c.inv[ct] = uint8(p)
	}
	return c, nil
}

// String returns the ciphertext image of every alphabet symbol in order.
func (c Cipher) String() string {
	var sb strings.Builder
	sb.Grow(AlphabetSize)
	for _, ct := range c.fwd {
		sb.WriteByte(Symbols[ct])
	}
	return sb.String()
}

// Image returns the ciphertext symbol for plaintext symbol p.
func (c Cipher) Image(p byte) byte {
	return Symbols[c.fwd[mustIndex(p)]]
}

// Preimage returns the plaintext symbol that encrypts to ct.
func (c Cipher) Preimage(ct byte) byte {
	return Symbols[c.inv[mustIndex(ct)]]
}

// Apply substitutes every symbol of text with its image. text must be
// canonical; any other byte is an invariant failure and panics.
func (c Cipher) Apply(text string) string {
	out := make([]byte, len(text))
	for i := 0; i < len(text); i++ {
		out[i] = Symbols[c.fwd[mustIndex(text[i])]]
	}
	return string(out)
}

// Invert returns the inverse permutation, which maps ciphertext back to
// plaintext.
func (c Cipher) Invert() Cipher {
	return Cipher{fwd: c.inv, inv: c.fwd}
}

// Swap returns a copy of c with the images of plaintext symbols a and b
// exchanged. Swap(a, a) returns c unchanged.
func (c Cipher) Swap(a, b byte) Cipher {
	c.swap(mustIndex(a), mustIndex(b))
	return c
}

// swap exchanges the images of plaintext indices i and j in place and
// repairs the inverse.
func (c *Cipher) swap(i, j int) {
	c.fwd[i], c.fwd[j] = c.fwd[j], c.fwd[i]
	c.inv[c.fwd[i]] = uint8(i)
	c.inv[c.fwd[j]] = uint8(j)
}

// Encrypt canonicalizes plaintext and encrypts it with a fresh cipher drawn
// from rng. The key is not returned.
func Encrypt(rng *rand.Rand, plaintext string) string {
	c := RandomCipher(rng)
	return c.Apply(Canonicalize(plaintext))
}

// NewRand returns the generator used for a given seed throughout the
// package. Two generators with the same seed produce the same stream.
func NewRand(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}
