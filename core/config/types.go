// Package config loads and validates the YAML configuration for the
// mimicry subsystem: negotiation bounds, timing profiles and the list
// of domains to register.
package config

import (
	"fmt"

	"github.com/gocircum/mimictls/core/constants"
	"github.com/gocircum/mimictls/core/emulator"
	"github.com/gocircum/mimictls/core/timing"
)

// FileConfig is the root of the YAML configuration file.
type FileConfig struct {
	Emulator EmulatorConfig `yaml:"emulator"`
	Domains  []DomainConfig `yaml:"domains"`
}

// EmulatorConfig configures the negotiation state machine. Versions are
// the human-readable names ("1.2", "1.3"); empty fields keep defaults.
type EmulatorConfig struct {
	PreferredVersion           string `yaml:"preferred_version"`
	MinVersion                 string `yaml:"min_version"`
	MaxVersion                 string `yaml:"max_version"`
	EnableVersionRandomization bool   `yaml:"enable_version_randomization"`
	EnableSessionResumption    bool   `yaml:"enable_session_resumption"`
	MimicBrowserBehavior       bool   `yaml:"mimic_browser_behavior"`
	MaxHandshakeDelayMs        uint32 `yaml:"max_handshake_delay_ms"`
}

// DomainConfig is one domain registration.
type DomainConfig struct {
	Domain string         `yaml:"domain"`
	Mode   string         `yaml:"mode"`
	Timing *timing.Config `yaml:"timing,omitempty"`
}

// ToEmulatorConfig resolves version names into wire values, filling
// defaults for empty fields.
func (ec *EmulatorConfig) ToEmulatorConfig() (emulator.Config, error) {
	cfg := emulator.DefaultConfig()
	cfg.EnableVersionRandomization = ec.EnableVersionRandomization
	cfg.EnableSessionResumption = ec.EnableSessionResumption
	cfg.MimicBrowserBehavior = ec.MimicBrowserBehavior
	if ec.MaxHandshakeDelayMs > 0 {
		cfg.MaxHandshakeDelayMs = ec.MaxHandshakeDelayMs
	}

	resolve := func(name string, dst *uint16) error {
		if name == "" {
			return nil
		}
		v, ok := constants.TLSVersionMap[name]
		if !ok {
			return fmt.Errorf("unknown TLS version '%s'. Supported versions are: %s",
				name, supportedTLSVersions())
		}
		*dst = v
		return nil
	}
	if err := resolve(ec.PreferredVersion, &cfg.PreferredVersion); err != nil {
		return emulator.Config{}, err
	}
	if err := resolve(ec.MinVersion, &cfg.MinVersion); err != nil {
		return emulator.Config{}, err
	}
	if err := resolve(ec.MaxVersion, &cfg.MaxVersion); err != nil {
		return emulator.Config{}, err
	}

	if err := cfg.Validate(); err != nil {
		return emulator.Config{}, err
	}
	return cfg, nil
}
