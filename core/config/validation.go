package config

import (
	"fmt"
	"sort"
	"strings"

	"github.com/gocircum/mimictls/core/constants"
)

// Validate checks that the configuration is internally coherent. It is
// called by LoadFileConfig and exported so embedded callers can validate
// configuration assembled in code.
func (fc *FileConfig) Validate() error {
	if _, err := fc.Emulator.ToEmulatorConfig(); err != nil {
		return fmt.Errorf("emulator: %w", err)
	}

	seen := make(map[string]struct{}, len(fc.Domains))
	for i, d := range fc.Domains {
		if d.Domain == "" {
			return fmt.Errorf("domain %d is missing a name", i)
		}
		if _, dup := seen[d.Domain]; dup {
			return fmt.Errorf("domain '%s' is configured twice", d.Domain)
		}
		seen[d.Domain] = struct{}{}

		if d.Timing != nil {
			if d.Timing.BaseDelayMs < 0 {
				return fmt.Errorf("domain '%s' has a negative base delay", d.Domain)
			}
			if d.Timing.JitterPct < 0 {
				return fmt.Errorf("domain '%s' has a negative jitter percentage", d.Domain)
			}
		}
	}
	return nil
}

func supportedTLSVersions() string {
	versions := make([]string, 0, len(constants.TLSVersionMap))
	for v := range constants.TLSVersionMap {
		versions = append(versions, v)
	}
	sort.Strings(versions)
	return strings.Join(versions, ", ")
}
