// Package testutils provides shared helpers for tests: a silent logger
// and deterministic random sources for components that normally draw
// from crypto/rand.
package testutils

import "fmt"

// FixedSource is a securerandom.Source whose outputs follow fixed
// sequences, so timing and encoding tests are reproducible. Sequences
// wrap around when exhausted; an empty sequence yields zeros.
type FixedSource struct {
	Floats []float64
	Ints   []int
	Byte   byte // fill value for Bytes

	floatIdx int
	intIdx   int
}

// Float64 returns the next value from Floats.
func (s *FixedSource) Float64() (float64, error) {
	if len(s.Floats) == 0 {
		return 0, nil
	}
	v := s.Floats[s.floatIdx%len(s.Floats)]
	s.floatIdx++
	if v < 0 || v >= 1 {
		return 0, fmt.Errorf("fixed float %v outside [0,1)", v)
	}
	return v, nil
}

// Bytes fills b with the configured fill byte.
func (s *FixedSource) Bytes(b []byte) error {
	for i := range b {
		b[i] = s.Byte
	}
	return nil
}

// IntN returns the next value from Ints, reduced modulo n.
func (s *FixedSource) IntN(n int) (int, error) {
	if n <= 0 {
		return 0, fmt.Errorf("IntN requires n > 0 (got %d)", n)
	}
	if len(s.Ints) == 0 {
		return 0, nil
	}
	v := s.Ints[s.intIdx%len(s.Ints)]
	s.intIdx++
	return v % n, nil
}

// FailingSource is a securerandom.Source whose every call fails. It
// exercises CSPRNG-failure paths.
type FailingSource struct{}

func (FailingSource) Float64() (float64, error) { return 0, fmt.Errorf("entropy source failed") }
func (FailingSource) Bytes([]byte) error        { return fmt.Errorf("entropy source failed") }
func (FailingSource) IntN(int) (int, error)     { return 0, fmt.Errorf("entropy source failed") }
