package timing

import (
	"fmt"

	"github.com/gocircum/mimictls/pkg/securerandom"
)

// PacketSizer splits an outgoing payload into randomized chunk sizes so
// the first flight (the ClientHello) does not always cross the wire as
// one recognizable write. The sizer only computes sizes; the connection
// layer performs the actual writes.
type PacketSizer struct {
	rand securerandom.Source
}

// NewPacketSizer returns a sizer drawing from crypto/rand.
func NewPacketSizer() *PacketSizer {
	return NewPacketSizerWithSource(securerandom.NewCryptoSource())
}

// NewPacketSizerWithSource returns a sizer drawing from src.
func NewPacketSizerWithSource(src securerandom.Source) *PacketSizer {
	return &PacketSizer{rand: src}
}

// ChunkSizes returns chunk sizes summing to total. Each chunk is the
// template's record size hint perturbed by up to ±variation bytes; a
// non-positive variation disables splitting and the payload goes out
// whole. Every chunk is at least one byte so progress is guaranteed.
func (s *PacketSizer) ChunkSizes(total, baseSize, variation int) ([]int, error) {
	if total <= 0 {
		return nil, fmt.Errorf("payload size must be positive (got %d)", total)
	}
	if variation <= 0 || baseSize <= 0 || total <= baseSize {
		return []int{total}, nil
	}

	var sizes []int
	remaining := total
	for remaining > 0 {
		delta, err := s.rand.IntN(2*variation + 1)
		if err != nil {
			return nil, fmt.Errorf("failed to draw chunk size: %w", err)
		}
		chunk := baseSize + delta - variation
		if chunk < 1 {
			chunk = 1
		}
		if chunk > remaining {
			chunk = remaining
		}
		sizes = append(sizes, chunk)
		remaining -= chunk
	}
	return sizes, nil
}
