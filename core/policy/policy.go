// Package policy maps externally reported signals — protocol
// violations, version mismatches and the threat scorer's 0-10 level —
// to obfuscation decisions the connection layer acts on.
package policy

import (
	"strings"

	"github.com/gocircum/mimictls/core/emulator"
	"github.com/gocircum/mimictls/core/fingerprint"
)

// ObfuscationLevel is the escalation ladder for handshake mimicry.
type ObfuscationLevel int

const (
	LevelNone ObfuscationLevel = iota
	LevelBasic
	LevelExtended
	LevelFull
)

// String returns the configuration name of the level.
func (l ObfuscationLevel) String() string {
	switch l {
	case LevelNone:
		return "none"
	case LevelBasic:
		return "basic"
	case LevelExtended:
		return "extended"
	case LevelFull:
		return "full"
	default:
		return "unknown"
	}
}

// Escalation thresholds over a context's accumulated statistics.
const (
	fullThreshold     = 10 // protocol violations
	extendedThreshold = 5  // version mismatches
)

// AdaptiveLevel decides how hard to obfuscate based on what a context
// has seen so far. More protocol violations mean the far end is probing,
// so the level only ever escalates with the counters.
func AdaptiveLevel(stats emulator.Stats) ObfuscationLevel {
	switch {
	case stats.ProtocolViolations > fullThreshold:
		return LevelFull
	case stats.VersionMismatches > extendedThreshold:
		return LevelExtended
	default:
		return LevelBasic
	}
}

// StrategyFlags is the bitset of obfuscation techniques the connection
// layer should enable.
type StrategyFlags uint8

const (
	FlagTLSEmulation StrategyFlags = 1 << iota
	FlagPacketSizeVariation
	FlagTimingVariation
	FlagMaxObfuscation
)

// Has reports whether all bits in f are set.
func (s StrategyFlags) Has(f StrategyFlags) bool { return s&f == f }

// String lists the set flags for logs.
func (s StrategyFlags) String() string {
	var names []string
	if s.Has(FlagTLSEmulation) {
		names = append(names, "tls_emulation")
	}
	if s.Has(FlagPacketSizeVariation) {
		names = append(names, "packet_size_variation")
	}
	if s.Has(FlagTimingVariation) {
		names = append(names, "timing_variation")
	}
	if s.Has(FlagMaxObfuscation) {
		names = append(names, "max_obfuscation")
	}
	if len(names) == 0 {
		return "none"
	}
	return strings.Join(names, "|")
}

// Threat level bands. The scorer reports 0-10; anything outside is
// clamped.
const (
	threatHigh     = 7
	threatElevated = 4
	threatMax      = 10
)

// RecommendStrategy maps a threat level to the techniques to enable.
// Baseline TLS emulation is always on; elevated threat adds packet size
// variation; high threat enables everything.
func RecommendStrategy(threatLevel int) StrategyFlags {
	if threatLevel < 0 {
		threatLevel = 0
	}
	if threatLevel > threatMax {
		threatLevel = threatMax
	}

	switch {
	case threatLevel >= threatHigh:
		return FlagTLSEmulation | FlagPacketSizeVariation | FlagTimingVariation | FlagMaxObfuscation
	case threatLevel >= threatElevated:
		return FlagTLSEmulation | FlagPacketSizeVariation
	default:
		return FlagTLSEmulation
	}
}

// Decision is the combined answer the connection layer asks for: which
// template to impersonate and how aggressively to obfuscate.
type Decision struct {
	Template *fingerprint.Template
	Level    ObfuscationLevel
	Flags    StrategyFlags
}

// Decide combines the catalog lookup, the adaptive level and the threat
// strategy into one decision.
func Decide(mode fingerprint.MimicMode, stats emulator.Stats, threatLevel int) Decision {
	return Decision{
		Template: fingerprint.TemplateFor(mode),
		Level:    AdaptiveLevel(stats),
		Flags:    RecommendStrategy(threatLevel),
	}
}
