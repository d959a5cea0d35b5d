package subcrack

import (
	"fmt"
	"strings"
)

// Symbols is the fixed alphabet in index order. A symbol's position in this
// string is its index for the lifetime of the process.
const Symbols = " abcdefghijklmnopqrstuvwxyz"

// AlphabetSize is the number of symbols in the alphabet.
const AlphabetSize = len(Symbols)

// symbolIndex maps a byte to its alphabet index plus one; zero means the
// byte is not in the alphabet.
var symbolIndex [256]uint8

func init() {
	for i := 0; i < AlphabetSize; i++ {
		symbolIndex[Symbols[i]] = uint8(i + 1)
	}
}

// IndexOf returns the index of sym in the alphabet, or -1 if sym is not a
// member.
func IndexOf(sym byte) int {
	return int(symbolIndex[sym]) - 1
}

// SymbolOf returns the symbol at idx. It panics if idx is out of range.
func SymbolOf(idx int) byte {
	return Symbols[idx]
}

// IsCanonical reports whether every byte of s is an alphabet symbol.
func IsCanonical(s string) bool {
	for i := 0; i < len(s); i++ {
		if symbolIndex[s[i]] == 0 {
			return false
		}
	}
	return true
}

// Canonicalize lowercases text and drops everything that is not an alphabet
// symbol. The result always satisfies IsCanonical.
func Canonicalize(text string) string {
	lower := strings.ToLower(text)
	if IsCanonical(lower) {
		return lower
	}

	var sb strings.Builder
	sb.Grow(len(lower))
	for i := 0; i < len(lower); i++ {
		c := lower[i]
		if symbolIndex[c] != 0 {
			sb.WriteByte(c)
		}
	}
	return sb.String()
}

// indices converts canonical text into alphabet indices. A byte outside the
// alphabet means a caller skipped canonicalization, which is a bug.
func indices(text string, into []uint8) []uint8 {
	into = into[:0]
	for i := 0; i < len(text); i++ {
		v := symbolIndex[text[i]]
		if v == 0 {
			panic(alphabetViolation(text[i]))
		}
		into = append(into, v-1)
	}
	return into
}

type alphabetViolation byte

func (a alphabetViolation) Error() string {
	return fmt.Sprintf("subcrack: symbol %q is outside the alphabet; text was not canonicalized", byte(a))
}
