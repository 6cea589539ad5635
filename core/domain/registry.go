// Package domain keeps the registry that binds target hostnames to the
// fingerprint template, timing profile and mimic mode used when
// connecting to them. The registry is shared by every connection
// handler and is internally synchronized; the Info values it hands out
// are copies.
package domain

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/gocircum/mimictls/core/fingerprint"
	"github.com/gocircum/mimictls/core/timing"
	"github.com/gocircum/mimictls/pkg/logging"
)

// ErrNotRegistered reports a lookup or update for an unknown domain.
var ErrNotRegistered = errors.New("domain: not registered")

// Default per-domain handshake rate limit.
const (
	DefaultHandshakesPerSec = 4.0
	DefaultHandshakeBurst   = 8
)

// Info binds one registered domain to its obfuscation parameters.
type Info struct {
	Domain       string
	Mode         fingerprint.MimicMode
	Template     *fingerprint.Template
	Timing       timing.Config
	RegisteredAt time.Time
	UpdatedAt    time.Time
}

// Registry holds the registered domains. Safe for concurrent use.
type Registry struct {
	mu      sync.RWMutex
	domains map[string]*entry
	logger  logging.Logger

	handshakesPerSec float64
	handshakeBurst   int
}

type entry struct {
	info    Info
	limiter *timing.Limiter
}

// Option configures a Registry.
type Option func(*Registry)

// WithLogger sets the registry logger.
func WithLogger(logger logging.Logger) Option {
	return func(r *Registry) { r.logger = logger }
}

// WithHandshakeRate overrides the per-domain handshake rate limit.
func WithHandshakeRate(perSec float64, burst int) Option {
	return func(r *Registry) {
		r.handshakesPerSec = perSec
		r.handshakeBurst = burst
	}
}

// NewRegistry creates an empty registry.
func NewRegistry(opts ...Option) *Registry {
	r := &Registry{
		domains:          make(map[string]*entry),
		logger:           logging.GetLogger(),
		handshakesPerSec: DefaultHandshakesPerSec,
		handshakeBurst:   DefaultHandshakeBurst,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Register binds a domain to a mimic mode with the default timing
// profile. Registering an already-known domain replaces its binding.
func (r *Registry) Register(domain string, mode fingerprint.MimicMode) Info {
	return r.RegisterWithTiming(domain, mode, timing.DefaultConfig())
}

// RegisterWithTiming binds a domain to a mimic mode and timing profile.
func (r *Registry) RegisterWithTiming(domain string, mode fingerprint.MimicMode, tc timing.Config) Info {
	now := time.Now()
	info := Info{
		Domain:       domain,
		Mode:         mode,
		Template:     fingerprint.TemplateFor(mode),
		Timing:       tc,
		RegisteredAt: now,
		UpdatedAt:    now,
	}

	r.mu.Lock()
	r.domains[domain] = &entry{
		info:    info,
		limiter: timing.NewLimiter(r.handshakesPerSec, r.handshakeBurst),
	}
	r.mu.Unlock()

	r.logger.Debug("registered enhanced domain", "domain", domain, "mode", mode.String())
	return info
}

// Update rewrites the binding of an already-registered domain. The
// template is re-derived from the mode; registration time is preserved.
func (r *Registry) Update(info Info) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.domains[info.Domain]
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotRegistered, info.Domain)
	}

	info.Template = fingerprint.TemplateFor(info.Mode)
	info.RegisteredAt = existing.info.RegisteredAt
	info.UpdatedAt = time.Now()
	existing.info = info
	return nil
}

// Lookup returns a copy of the binding for domain.
func (r *Registry) Lookup(domain string) (Info, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	e, ok := r.domains[domain]
	if !ok {
		return Info{}, false
	}
	return e.info, true
}

// AllowHandshake consults the domain's rate limiter. Unknown domains
// are always allowed; they simply carry no obfuscation binding yet.
func (r *Registry) AllowHandshake(domain string) bool {
	r.mu.RLock()
	e, ok := r.domains[domain]
	r.mu.RUnlock()

	if !ok {
		return true
	}
	return e.limiter.Allow()
}

// Len returns the number of registered domains.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.domains)
}

// Cleanup clears the whole registry. Bindings are never removed
// implicitly; this is the only way entries go away.
func (r *Registry) Cleanup() {
	r.mu.Lock()
	n := len(r.domains)
	r.domains = make(map[string]*entry)
	r.mu.Unlock()

	r.logger.Debug("cleared enhanced domain registry", "domains", n)
}
