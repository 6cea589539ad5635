// Package emulator tracks the fake TLS negotiation for one proxied
// connection: which version was offered, whether the handshake-shaped
// exchange completed, and the statistics the obfuscation policy feeds
// on. A Context belongs to exactly one connection handler; concurrent
// connections each own their own Context and never share one.
package emulator

import (
	"errors"
	"fmt"

	"github.com/gocircum/mimictls/core/clienthello"
	"github.com/gocircum/mimictls/core/constants"
	"github.com/gocircum/mimictls/core/fingerprint"
	"github.com/gocircum/mimictls/pkg/logging"
	"github.com/gocircum/mimictls/pkg/securerandom"
)

var (
	// ErrVersionOutOfRange reports a version outside the configured
	// [MinVersion, MaxVersion] window.
	ErrVersionOutOfRange = errors.New("emulator: version out of configured range")

	// ErrNoVersionOverlap reports that none of the offered versions fall
	// inside the configured window.
	ErrNoVersionOverlap = errors.New("emulator: no overlap with offered versions")

	// ErrProtocolViolation reports a server hello carrying a version the
	// context never offered.
	ErrProtocolViolation = errors.New("emulator: protocol violation")
)

// State is the position of a Context in its negotiation lifecycle.
type State int

const (
	StateInitialized State = iota
	StateVersionSelected
	StateHandshakeSent
	StateCompleted
)

// String returns the lifecycle name of the state.
func (s State) String() string {
	switch s {
	case StateInitialized:
		return "initialized"
	case StateVersionSelected:
		return "version_selected"
	case StateHandshakeSent:
		return "handshake_sent"
	case StateCompleted:
		return "completed"
	default:
		return "unknown"
	}
}

// Config bounds and tunes the emulated negotiation.
type Config struct {
	PreferredVersion           uint16 `yaml:"-"`
	MinVersion                 uint16 `yaml:"-"`
	MaxVersion                 uint16 `yaml:"-"`
	EnableVersionRandomization bool   `yaml:"enable_version_randomization"`
	EnableSessionResumption    bool   `yaml:"enable_session_resumption"`
	MimicBrowserBehavior       bool   `yaml:"mimic_browser_behavior"`
	MaxHandshakeDelayMs        uint32 `yaml:"max_handshake_delay_ms"`
}

// DefaultConfig returns the negotiation bounds used when a caller does
// not configure its own.
func DefaultConfig() Config {
	return Config{
		PreferredVersion:        constants.VersionTLS13,
		MinVersion:              constants.VersionTLS12,
		MaxVersion:              constants.VersionTLS13,
		EnableSessionResumption: true,
		MimicBrowserBehavior:    true,
		MaxHandshakeDelayMs:     1000,
	}
}

// Validate checks that the version window is coherent.
func (c *Config) Validate() error {
	if c.MinVersion > c.MaxVersion {
		return fmt.Errorf("min version %#04x above max version %#04x", c.MinVersion, c.MaxVersion)
	}
	if c.PreferredVersion != 0 && (c.PreferredVersion < c.MinVersion || c.PreferredVersion > c.MaxVersion) {
		return fmt.Errorf("preferred version %#04x outside [%#04x, %#04x]",
			c.PreferredVersion, c.MinVersion, c.MaxVersion)
	}
	return nil
}

// Stats counts negotiation outcomes for one Context. The policy layer
// reads these to decide when to escalate obfuscation.
type Stats struct {
	TotalConnections     uint64
	SuccessfulEmulations uint64
	FailedEmulations     uint64
	VersionMismatches    uint64
	ProtocolViolations   uint64
	AdaptiveChanges      uint64
	SuccessRate          float64
}

// Context is the per-connection negotiation state machine. It is not
// safe for concurrent use; each connection handler owns one.
type Context struct {
	cfg    Config
	state  State
	stats  Stats
	logger logging.Logger

	encoder *clienthello.Encoder
	rand    securerandom.Source

	CurrentVersion     uint16
	HandshakeCompleted bool
	SessionResumed     bool
	HandshakeDelayMs   uint32

	seenDomains map[string]struct{}
}

// NewContext creates a Context with CSPRNG-backed randomness and the
// global logger.
func NewContext(cfg Config) *Context {
	return NewContextWithSource(cfg, securerandom.NewCryptoSource(), logging.GetLogger())
}

// NewContextWithSource creates a Context with an injected random source,
// used by tests to pin version randomization and hello randoms.
func NewContextWithSource(cfg Config, src securerandom.Source, logger logging.Logger) *Context {
	if cfg == (Config{}) {
		cfg = DefaultConfig()
	}
	return &Context{
		cfg:         cfg,
		state:       StateInitialized,
		logger:      logger,
		encoder:     clienthello.NewWithSource(src),
		rand:        src,
		seenDomains: make(map[string]struct{}),
	}
}

// Config returns the negotiation bounds of this context.
func (c *Context) Config() Config { return c.cfg }

// State returns the current lifecycle state.
func (c *Context) State() State { return c.state }

// Stats returns a copy of the accumulated statistics.
func (c *Context) Stats() Stats { return c.stats }

// SetVersion selects the version offered in the next handshake. A
// version outside the configured window fails with ErrVersionOutOfRange
// and is counted as a version mismatch.
func (c *Context) SetVersion(v uint16) error {
	if v < c.cfg.MinVersion || v > c.cfg.MaxVersion {
		c.stats.VersionMismatches++
		return fmt.Errorf("%w: %#04x not in [%#04x, %#04x]",
			ErrVersionOutOfRange, v, c.cfg.MinVersion, c.cfg.MaxVersion)
	}
	c.CurrentVersion = v
	c.state = StateVersionSelected
	return nil
}

// SelectOptimalVersion picks the highest offered version inside the
// configured window and selects it.
func (c *Context) SelectOptimalVersion(offered []uint16) (uint16, error) {
	var best uint16
	for _, v := range offered {
		if v >= c.cfg.MinVersion && v <= c.cfg.MaxVersion && v > best {
			best = v
		}
	}
	if best == 0 {
		return 0, fmt.Errorf("%w: offered %v against [%#04x, %#04x]",
			ErrNoVersionOverlap, offered, c.cfg.MinVersion, c.cfg.MaxVersion)
	}
	if err := c.SetVersion(best); err != nil {
		return 0, err
	}
	return best, nil
}

// supportedVersions lists the wire versions inside the configured
// window, used by version randomization.
func (c *Context) supportedVersions() []uint16 {
	all := []uint16{
		constants.VersionSSL30,
		constants.VersionTLS10,
		constants.VersionTLS11,
		constants.VersionTLS12,
		constants.VersionTLS13,
	}
	var in []uint16
	for _, v := range all {
		if v >= c.cfg.MinVersion && v <= c.cfg.MaxVersion {
			in = append(in, v)
		}
	}
	return in
}

// GenerateClientHello emits the handshake bytes for domain using the
// given template. When version randomization is enabled the offered
// version is re-picked uniformly from the supported versions inside the
// configured window before encoding.
func (c *Context) GenerateClientHello(domain string, tpl *fingerprint.Template) ([]byte, error) {
	c.stats.TotalConnections++

	if c.cfg.EnableVersionRandomization {
		versions := c.supportedVersions()
		if len(versions) > 0 {
			idx, err := c.rand.IntN(len(versions))
			if err != nil {
				c.stats.FailedEmulations++
				return nil, fmt.Errorf("failed to randomize version: %w", err)
			}
			c.CurrentVersion = versions[idx]
		}
	}
	if c.CurrentVersion == 0 {
		c.CurrentVersion = c.clampedPreferred()
	}

	// The record claims the selected version, not the template's.
	wire := *tpl
	wire.TLSVersion = c.CurrentVersion

	out, err := c.encoder.Encode(&wire, domain)
	if err != nil {
		c.stats.FailedEmulations++
		return nil, err
	}

	c.HandshakeDelayMs = tpl.HandshakeTimingMs
	if c.cfg.MaxHandshakeDelayMs > 0 && c.HandshakeDelayMs > c.cfg.MaxHandshakeDelayMs {
		c.HandshakeDelayMs = c.cfg.MaxHandshakeDelayMs
	}

	if c.cfg.EnableSessionResumption {
		if _, seen := c.seenDomains[domain]; seen {
			c.SessionResumed = true
		}
		c.seenDomains[domain] = struct{}{}
	}

	c.state = StateHandshakeSent
	c.logger.Debug("generated client hello",
		"domain", domain, "template", tpl.Name,
		"version", constants.VersionName(c.CurrentVersion), "bytes", len(out))
	return out, nil
}

// ProcessServerHello validates the version the peer claims. A version
// outside the configured window is a protocol violation: it is counted,
// CurrentVersion is left untouched and the caller decides whether to
// drop the connection.
func (c *Context) ProcessServerHello(serverVersion uint16) error {
	if serverVersion < c.cfg.MinVersion || serverVersion > c.cfg.MaxVersion {
		c.stats.ProtocolViolations++
		c.logger.Warn("server hello version outside window",
			"version", fmt.Sprintf("%#04x", serverVersion))
		return fmt.Errorf("%w: server version %#04x not in [%#04x, %#04x]",
			ErrProtocolViolation, serverVersion, c.cfg.MinVersion, c.cfg.MaxVersion)
	}
	c.CurrentVersion = serverVersion
	return nil
}

// CompleteHandshake marks the emulated exchange as finished and updates
// the success statistics.
func (c *Context) CompleteHandshake() {
	if c.CurrentVersion == 0 {
		c.CurrentVersion = c.clampedPreferred()
	}
	c.HandshakeCompleted = true
	c.state = StateCompleted
	c.stats.SuccessfulEmulations++
	c.recomputeSuccessRate()
}

// FailHandshake records an emulation that never completed.
func (c *Context) FailHandshake() {
	c.stats.FailedEmulations++
	c.recomputeSuccessRate()
}

// RecordAdaptiveChange notes that the policy layer switched template or
// obfuscation level for this context.
func (c *Context) RecordAdaptiveChange() {
	c.stats.AdaptiveChanges++
}

// ResetHandshake returns the context to its initial state for the next
// attempt. Statistics are preserved.
func (c *Context) ResetHandshake() {
	c.HandshakeCompleted = false
	c.SessionResumed = false
	c.HandshakeDelayMs = 0
	c.state = StateInitialized
}

func (c *Context) clampedPreferred() uint16 {
	v := c.cfg.PreferredVersion
	if v == 0 {
		v = c.cfg.MaxVersion
	}
	if v < c.cfg.MinVersion {
		v = c.cfg.MinVersion
	}
	if v > c.cfg.MaxVersion {
		v = c.cfg.MaxVersion
	}
	return v
}

func (c *Context) recomputeSuccessRate() {
	if c.stats.TotalConnections == 0 {
		c.stats.SuccessRate = 0
		return
	}
	c.stats.SuccessRate = float64(c.stats.SuccessfulEmulations) /
		float64(c.stats.TotalConnections) * 100
}
