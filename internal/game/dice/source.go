// Package dice provides the randomness abstraction for attack resolution.
//
// The engine never reaches for an ambient generator: every die rolled in
// combat comes from an injected Source, so a battle can be replayed exactly
// by substituting a seeded implementation.
package dice

import (
	"crypto/rand"
	"math/big"
)

// Source is the randomness provider for dice rolls.
//
// Implementations MUST be safe for concurrent use.
type Source interface {
	// Intn returns a non-negative random int in [0, n).
	//
	// Precondition: n > 0.
	Intn(n int) int
}

// Die rolls one die with the given number of sides using src.
//
// Precondition: sides >= 2; src must be non-nil.
// Postcondition: result is in [1, sides].
func Die(src Source, sides int) int {
	if sides < 2 {
		panic("dice: Die called with sides < 2")
	}
	return src.Intn(sides) + 1
}

// cryptoSource implements Source using crypto/rand.
type cryptoSource struct{}

// NewCryptoSource returns a Source backed by crypto/rand.
//
// Postcondition: every value returned by Intn is uniform in [0, n).
func NewCryptoSource() Source {
	return &cryptoSource{}
}

// Intn returns a cryptographically secure random int in [0, n).
//
// Precondition: n > 0. Panics with "dice: Intn called with n <= 0" if n <= 0.
func (c *cryptoSource) Intn(n int) int {
	if n <= 0 {
		panic("dice: Intn called with n <= 0")
	}
	val, err := rand.Int(rand.Reader, big.NewInt(int64(n)))
	if err != nil {
		panic("dice: crypto/rand failure: " + err.Error())
	}
	return int(val.Int64())
}
