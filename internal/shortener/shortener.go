package shortener

import (
	"crypto/rand"
	"errors"
	"math"
	"math/big"
)

// DefaultAlphabet is a-z, A-Z, 0-9
const DefaultAlphabet = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// CodeGenerator draws random identifiers of a fixed length from an
// alphabet. Duplicated runes in the alphabet are kept, which biases the
// distribution towards them. Safe for concurrent use.
type CodeGenerator struct {
	length   int
	alphabet []rune
	max      *big.Int
}

// NewCodeGenerator creates a generator for ids of the given length
func NewCodeGenerator(length int, alphabet []rune) (*CodeGenerator, error) {
	if length < 1 {
		return nil, errors.New("id length must be positive")
	}
	if len(alphabet) == 0 {
		return nil, errors.New("id alphabet must not be empty")
	}

	return &CodeGenerator{
		length:   length,
		alphabet: append([]rune(nil), alphabet...),
		max:      big.NewInt(int64(len(alphabet))),
	}, nil
}

// Length returns the length of generated ids
func (g *CodeGenerator) Length() int {
	return g.length
}

// Generate creates a random id using crypto/rand
func (g *CodeGenerator) Generate() string {
	result := make([]rune, g.length)

	for i := range result {
		num, err := rand.Int(rand.Reader, g.max)
		if err != nil {
			// Fallback to a deterministic index if crypto/rand fails
			num = big.NewInt(int64(i % len(g.alphabet)))
		}

		result[i] = g.alphabet[num.Int64()]
	}

	return string(result)
}

// IsValid checks if id has the configured length and only alphabet runes
func (g *CodeGenerator) IsValid(id string) bool {
	runes := []rune(id)
	if len(runes) != g.length {
		return false
	}

	for _, r := range runes {
		if !g.contains(r) {
			return false
		}
	}

	return true
}

func (g *CodeGenerator) contains(r rune) bool {
	for _, a := range g.alphabet {
		if a == r {
			return true
		}
	}
	return false
}

// CollisionProbability approximates the chance that numIDs random ids
// contain at least one collision: k^2 / (2*N), capped at 1
func (g *CodeGenerator) CollisionProbability(numIDs int) float64 {
	if numIDs <= 0 {
		return 0.0
	}

	total := math.Pow(float64(g.distinct()), float64(g.length))

	probability := float64(numIDs) * float64(numIDs) / (2.0 * total)
	if probability > 1.0 {
		probability = 1.0
	}

	return probability
}

func (g *CodeGenerator) distinct() int {
	seen := make(map[rune]struct{}, len(g.alphabet))
	for _, r := range g.alphabet {
		seen[r] = struct{}{}
	}
	return len(seen)
}
