package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gocircum/mimictls/core/constants"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "mimictls.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadFileConfig(t *testing.T) {
	path := writeConfig(t, `
emulator:
  preferred_version: "1.3"
  min_version: "1.2"
  max_version: "1.3"
  enable_session_resumption: true
  max_handshake_delay_ms: 500
domains:
  - domain: example.com
    mode: browser_https
    timing:
      base_delay_ms: 20
      jitter_pct: 30
      enable_random_padding: true
  - domain: media.example.com
    mode: streaming
`)

	cfg, err := LoadFileConfig(path)
	require.NoError(t, err)
	require.Len(t, cfg.Domains, 2)
	assert.Equal(t, "example.com", cfg.Domains[0].Domain)
	assert.Equal(t, 20.0, cfg.Domains[0].Timing.BaseDelayMs)
	assert.Nil(t, cfg.Domains[1].Timing)

	ec, err := cfg.Emulator.ToEmulatorConfig()
	require.NoError(t, err)
	assert.Equal(t, constants.VersionTLS13, ec.PreferredVersion)
	assert.Equal(t, constants.VersionTLS12, ec.MinVersion)
	assert.Equal(t, uint32(500), ec.MaxHandshakeDelayMs)
	assert.True(t, ec.EnableSessionResumption)
}

func TestLoadFileConfigMissingFile(t *testing.T) {
	_, err := LoadFileConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestLoadFileConfigBadYAML(t *testing.T) {
	path := writeConfig(t, "emulator: [not a map")
	_, err := LoadFileConfig(path)
	assert.Error(t, err)
}

func TestValidateRejectsUnknownVersion(t *testing.T) {
	path := writeConfig(t, `
emulator:
  min_version: "0.9"
`)
	_, err := LoadFileConfig(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown TLS version")
}

func TestValidateRejectsInvertedWindow(t *testing.T) {
	path := writeConfig(t, `
emulator:
  min_version: "1.3"
  max_version: "1.0"
`)
	_, err := LoadFileConfig(path)
	assert.Error(t, err)
}

func TestValidateRejectsNamelessDomain(t *testing.T) {
	path := writeConfig(t, `
domains:
  - mode: browser_https
`)
	_, err := LoadFileConfig(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing a name")
}

func TestValidateRejectsDuplicateDomain(t *testing.T) {
	path := writeConfig(t, `
domains:
  - domain: example.com
  - domain: example.com
`)
	_, err := LoadFileConfig(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "configured twice")
}

func TestValidateRejectsNegativeTiming(t *testing.T) {
	path := writeConfig(t, `
domains:
  - domain: example.com
    timing:
      base_delay_ms: -5
`)
	_, err := LoadFileConfig(path)
	assert.Error(t, err)
}

func TestDefaultsWhenEmpty(t *testing.T) {
	path := writeConfig(t, "{}\n")
	cfg, err := LoadFileConfig(path)
	require.NoError(t, err)

	ec, err := cfg.Emulator.ToEmulatorConfig()
	require.NoError(t, err)
	assert.Equal(t, constants.VersionTLS12, ec.MinVersion)
	assert.Equal(t, constants.VersionTLS13, ec.MaxVersion)
}
