// Package mimictls makes MTProto proxy traffic look like ordinary
// browser HTTPS. It emits byte-exact browser-shaped TLS ClientHellos,
// tracks a fake handshake per connection, staggers writes with timing
// jitter and escalates obfuscation when the far end starts probing.
//
// The connection layer owns the sockets; this package only produces the
// bytes to write, the delays to wait, and the decisions to act on.
package mimictls

import (
	"fmt"
	"time"

	"github.com/gocircum/mimictls/core/config"
	"github.com/gocircum/mimictls/core/domain"
	"github.com/gocircum/mimictls/core/emulator"
	"github.com/gocircum/mimictls/core/fingerprint"
	"github.com/gocircum/mimictls/core/policy"
	"github.com/gocircum/mimictls/core/timing"
	"github.com/gocircum/mimictls/pkg/logging"
)

// Engine bundles the domain registry, the timing obfuscator and the
// negotiation configuration shared by every connection. Per-connection
// state lives in the Context returned by NewConnection; the Engine
// itself is safe for concurrent use.
type Engine struct {
	registry    *domain.Registry
	obfuscator  *timing.Obfuscator
	emulatorCfg emulator.Config
	logger      logging.Logger
}

// New creates an Engine with default negotiation bounds.
func New() *Engine {
	return &Engine{
		registry:    domain.NewRegistry(),
		obfuscator:  timing.NewObfuscator(),
		emulatorCfg: emulator.DefaultConfig(),
		logger:      logging.GetLogger(),
	}
}

// NewFromConfig creates an Engine from a loaded configuration file and
// registers its domains.
func NewFromConfig(cfg *config.FileConfig) (*Engine, error) {
	emulatorCfg, err := cfg.Emulator.ToEmulatorConfig()
	if err != nil {
		return nil, fmt.Errorf("invalid emulator configuration: %w", err)
	}

	e := New()
	e.emulatorCfg = emulatorCfg
	for _, d := range cfg.Domains {
		mode := fingerprint.ModeFromString(d.Mode)
		if d.Timing != nil {
			e.registry.RegisterWithTiming(d.Domain, mode, *d.Timing)
		} else {
			e.registry.Register(d.Domain, mode)
		}
	}
	return e, nil
}

// RegisterDomain binds a target hostname to a mimic mode.
func (e *Engine) RegisterDomain(hostname string, mode fingerprint.MimicMode) domain.Info {
	return e.registry.Register(hostname, mode)
}

// UpdateDomain rewrites an existing domain binding.
func (e *Engine) UpdateDomain(info domain.Info) error {
	return e.registry.Update(info)
}

// Cleanup clears every domain binding.
func (e *Engine) Cleanup() {
	e.registry.Cleanup()
}

// NewConnection creates the per-connection negotiation context. The
// caller owns it exclusively and must not share it across connections.
func (e *Engine) NewConnection() *emulator.Context {
	return emulator.NewContext(e.emulatorCfg)
}

// ClientHello produces the handshake bytes for a registered hostname.
// Unregistered hostnames use the generic template. The returned bytes
// are written verbatim to the socket by the connection layer.
func (e *Engine) ClientHello(ctx *emulator.Context, hostname string) ([]byte, error) {
	tpl := fingerprint.TemplateFor(fingerprint.ModeGenericTLS)
	if info, ok := e.registry.Lookup(hostname); ok {
		tpl = info.Template
	}
	if !e.registry.AllowHandshake(hostname) {
		return nil, fmt.Errorf("handshake rate limit exceeded for %s", hostname)
	}
	return ctx.GenerateClientHello(hostname, tpl)
}

// NextDelay returns how long to wait before the next send to hostname.
func (e *Engine) NextDelay(hostname string) (time.Duration, error) {
	tc := timing.DefaultConfig()
	if info, ok := e.registry.Lookup(hostname); ok {
		tc = info.Timing
	}
	ms, err := e.obfuscator.NextDelay(&tc)
	if err != nil {
		return 0, err
	}
	return time.Duration(ms * float64(time.Millisecond)), nil
}

// Decide returns the obfuscation decision for a connection: which
// template to impersonate next and which techniques to enable, given
// the context's history and the externally scored threat level.
func (e *Engine) Decide(hostname string, ctx *emulator.Context, threatLevel int) policy.Decision {
	mode := fingerprint.ModeGenericTLS
	if info, ok := e.registry.Lookup(hostname); ok {
		mode = info.Mode
	}
	return policy.Decide(mode, ctx.Stats(), threatLevel)
}
