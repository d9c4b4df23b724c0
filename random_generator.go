package lottery

import (
	"crypto/rand"
	"math/big"
	mrand "math/rand"
	"sync"
)

// RandomGenerator is the source of ticket and ball numbers.
// GenerateInRange returns a uniformly distributed number in [min, max] (inclusive).
type RandomGenerator interface {
	GenerateInRange(min, max int) (int, error)
}

// SecureRandomGenerator implements secure random number generation using crypto/rand
type SecureRandomGenerator struct{}

// NewSecureRandomGenerator creates a new secure random generator
func NewSecureRandomGenerator() *SecureRandomGenerator {
	return &SecureRandomGenerator{}
}

// GenerateInRange generates a secure random number within the specified range [min, max] (inclusive)
func (g *SecureRandomGenerator) GenerateInRange(min, max int) (int, error) {
	if err := ValidateRange(min, max); err != nil {
		return 0, err
	}

	// Handle edge case where min == max
	if min == max {
		return min, nil
	}

	rangeSize := max - min + 1

	// Generate a random number in the range [0, rangeSize)
	randomBig, err := rand.Int(rand.Reader, big.NewInt(int64(rangeSize)))
	if err != nil {
		return 0, ErrRandomSource.WithCause(err)
	}

	return int(randomBig.Int64()) + min, nil
}

// MathRandGenerator is a seedable pseudo random generator.
// It never fails, which makes draws reproducible for a given seed.
type MathRandGenerator struct {
	mu  sync.Mutex
	rnd *mrand.Rand
}

// NewMathRandGenerator creates a generator seeded with seed
func NewMathRandGenerator(seed int64) *MathRandGenerator {
	return &MathRandGenerator{rnd: mrand.New(mrand.NewSource(seed))}
}

// GenerateInRange generates a pseudo random number within [min, max] (inclusive)
func (g *MathRandGenerator) GenerateInRange(min, max int) (int, error) {
	if err := ValidateRange(min, max); err != nil {
		return 0, err
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	return g.rnd.Intn(max-min+1) + min, nil
}
