// Package securerandom provides cryptographically secure randomness
// helpers and the Source interface that lets security-sensitive
// components take injected, test-deterministic randomness.
package securerandom

import (
	"crypto/rand"
	"encoding/binary"
	"fmt"
	"math/big"
	"time"
)

// Source abstracts the random values consumed by this module. Production
// code uses NewCryptoSource; tests inject a fixed-sequence source.
type Source interface {
	// Float64 returns a value in [0.0, 1.0).
	Float64() (float64, error)
	// Bytes fills b with random bytes.
	Bytes(b []byte) error
	// IntN returns a value in [0, n).
	IntN(n int) (int, error)
}

type cryptoSource struct{}

// NewCryptoSource returns a Source backed by crypto/rand.
func NewCryptoSource() Source {
	return cryptoSource{}
}

func (cryptoSource) Float64() (float64, error) { return Float64() }
func (cryptoSource) Bytes(b []byte) error      { return Bytes(b) }
func (cryptoSource) IntN(n int) (int, error) {
	if n <= 0 {
		return 0, fmt.Errorf("IntN requires n > 0 (got %d)", n)
	}
	return Int(0, n-1)
}

// Int returns a cryptographically secure random integer in [min, max].
func Int(min, max int) (int, error) {
	if max < min {
		return 0, fmt.Errorf("max must not be less than min (got min=%d, max=%d)", min, max)
	}
	if min == max {
		return min, nil
	}

	rangeSize := big.NewInt(int64(max-min) + 1)
	nBig, err := rand.Int(rand.Reader, rangeSize)
	if err != nil {
		return 0, err
	}
	return int(nBig.Int64()) + min, nil
}

// MustInt is like Int but panics on error. Use only where a CSPRNG
// failure is fatal to the program.
func MustInt(min, max int) int {
	result, err := Int(min, max)
	if err != nil {
		panic(fmt.Sprintf("securerandom.MustInt: %v", err))
	}
	return result
}

// Bytes fills b with random bytes from a cryptographically secure source.
// There is no fallback to an insecure source on failure.
func Bytes(b []byte) error {
	if _, err := rand.Read(b); err != nil {
		return fmt.Errorf("failed to generate secure random bytes: %w", err)
	}
	return nil
}

// Float64 returns a random float64 in [0.0, 1.0).
func Float64() (float64, error) {
	var b [8]byte
	if _, err := rand.Read(b[:]); err != nil {
		return 0, err
	}
	return float64(binary.BigEndian.Uint64(b[:])) / (1 << 64), nil
}

// MustFloat64 is like Float64 but panics on error.
func MustFloat64() float64 {
	result, err := Float64()
	if err != nil {
		panic(fmt.Sprintf("securerandom.MustFloat64: %v", err))
	}
	return result
}

// Duration returns a random duration in [min, max].
func Duration(min, max time.Duration) (time.Duration, error) {
	if min > max {
		return 0, fmt.Errorf("min duration cannot be greater than max")
	}
	if min == max {
		return min, nil
	}

	valNs, err := Int(int(min.Nanoseconds()), int(max.Nanoseconds()))
	if err != nil {
		return 0, err
	}
	return time.Duration(valNs), nil
}
