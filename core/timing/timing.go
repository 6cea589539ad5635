// Package timing computes per-send delays that stagger handshake and
// payload writes so their timing does not expose the proxy. Randomness
// is injected through securerandom.Source; production callers use the
// CSPRNG-backed source, never a value derived from addresses or clocks.
package timing

import (
	"fmt"

	"github.com/gocircum/mimictls/pkg/securerandom"
)

// Config is one timing profile. BaseDelayMs and JitterPct shape the
// per-send delay; PacketSizeVariation and ConnectionFingerprint are
// consumed by the connection layer when it sizes writes.
type Config struct {
	BaseDelayMs           float64 `yaml:"base_delay_ms"`
	JitterPct             float64 `yaml:"jitter_pct"`
	EnableRandomPadding   bool    `yaml:"enable_random_padding"`
	PacketSizeVariation   int     `yaml:"packet_size_variation"`
	ConnectionFingerprint int     `yaml:"connection_fingerprint"`
}

// DefaultConfig returns a browser-plausible timing profile.
func DefaultConfig() Config {
	return Config{
		BaseDelayMs:         15,
		JitterPct:           40,
		EnableRandomPadding: true,
		PacketSizeVariation: 256,
	}
}

// paddingProbability is the chance an extra padding delay is added when
// random padding is enabled.
const paddingProbability = 0.05

// maxPaddingDelayMs bounds the extra padding delay.
const maxPaddingDelayMs = 50.0

// Obfuscator computes delays from a timing profile.
type Obfuscator struct {
	rand securerandom.Source
}

// NewObfuscator returns an Obfuscator drawing from crypto/rand.
func NewObfuscator() *Obfuscator {
	return NewObfuscatorWithSource(securerandom.NewCryptoSource())
}

// NewObfuscatorWithSource returns an Obfuscator drawing from src.
func NewObfuscatorWithSource(src securerandom.Source) *Obfuscator {
	return &Obfuscator{rand: src}
}

// NextDelay returns the delay in milliseconds to apply before the next
// send. The delay is the base plus jitter uniform in ±(base×pct/100);
// with random padding enabled there is a 5% chance of up to 50ms extra.
// The result is never negative.
func (o *Obfuscator) NextDelay(cfg *Config) (float64, error) {
	jitter := cfg.BaseDelayMs * cfg.JitterPct / 100

	u, err := o.rand.Float64()
	if err != nil {
		return 0, fmt.Errorf("failed to draw jitter: %w", err)
	}
	delay := cfg.BaseDelayMs + jitter*(2*u-1)

	if cfg.EnableRandomPadding {
		p, err := o.rand.Float64()
		if err != nil {
			return 0, fmt.Errorf("failed to draw padding gate: %w", err)
		}
		if p < paddingProbability {
			extra, err := o.rand.Float64()
			if err != nil {
				return 0, fmt.Errorf("failed to draw padding delay: %w", err)
			}
			delay += extra * maxPaddingDelayMs
		}
	}

	if delay < 0 {
		delay = 0
	}
	return delay, nil
}
