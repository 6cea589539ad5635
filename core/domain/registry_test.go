package domain

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/gocircum/mimictls/core/fingerprint"
	"github.com/gocircum/mimictls/core/timing"
	"github.com/gocircum/mimictls/mocks"
	"github.com/gocircum/mimictls/testutils"
)

func newTestRegistry() *Registry {
	return NewRegistry(WithLogger(testutils.NewTestLogger()))
}

func TestRegisterAndLookup(t *testing.T) {
	r := newTestRegistry()

	info := r.Register("example.com", fingerprint.ModeBrowserHTTPS)
	assert.Equal(t, "chrome", info.Template.Name)

	got, ok := r.Lookup("example.com")
	require.True(t, ok)
	assert.Equal(t, fingerprint.ModeBrowserHTTPS, got.Mode)
	assert.Equal(t, "chrome", got.Template.Name)
	assert.False(t, got.RegisteredAt.IsZero())

	_, ok = r.Lookup("unknown.example")
	assert.False(t, ok)
}

func TestRegisterReplaces(t *testing.T) {
	r := newTestRegistry()
	r.Register("example.com", fingerprint.ModeBrowserHTTPS)
	r.Register("example.com", fingerprint.ModeStreaming)

	got, ok := r.Lookup("example.com")
	require.True(t, ok)
	assert.Equal(t, fingerprint.ModeStreaming, got.Mode)
	assert.Equal(t, "safari", got.Template.Name)
	assert.Equal(t, 1, r.Len())
}

func TestUpdate(t *testing.T) {
	r := newTestRegistry()
	info := r.Register("example.com", fingerprint.ModeBrowserHTTPS)

	info.Mode = fingerprint.ModeMobileApp
	info.Timing.BaseDelayMs = 99
	require.NoError(t, r.Update(info))

	got, ok := r.Lookup("example.com")
	require.True(t, ok)
	assert.Equal(t, fingerprint.ModeMobileApp, got.Mode)
	assert.Equal(t, "mobile_chrome", got.Template.Name, "template follows the mode")
	assert.Equal(t, 99.0, got.Timing.BaseDelayMs)
	assert.Equal(t, info.RegisteredAt, got.RegisteredAt, "registration time preserved")
}

func TestUpdateUnknownDomain(t *testing.T) {
	r := newTestRegistry()
	err := r.Update(Info{Domain: "nobody.example"})
	assert.ErrorIs(t, err, ErrNotRegistered)
}

func TestRegisterWithTiming(t *testing.T) {
	r := newTestRegistry()
	tc := timing.Config{BaseDelayMs: 42, JitterPct: 10}
	r.RegisterWithTiming("example.com", fingerprint.ModeGenericTLS, tc)

	got, ok := r.Lookup("example.com")
	require.True(t, ok)
	assert.Equal(t, 42.0, got.Timing.BaseDelayMs)
	assert.Equal(t, "edge", got.Template.Name)
}

func TestAllowHandshake(t *testing.T) {
	r := NewRegistry(
		WithLogger(testutils.NewTestLogger()),
		WithHandshakeRate(1, 2),
	)
	r.Register("example.com", fingerprint.ModeBrowserHTTPS)

	assert.True(t, r.AllowHandshake("example.com"))
	assert.True(t, r.AllowHandshake("example.com"))
	assert.False(t, r.AllowHandshake("example.com"), "burst exhausted")

	assert.True(t, r.AllowHandshake("unregistered.example"))
}

func TestCleanup(t *testing.T) {
	r := newTestRegistry()
	r.Register("a.example", fingerprint.ModeBrowserHTTPS)
	r.Register("b.example", fingerprint.ModeStreaming)
	require.Equal(t, 2, r.Len())

	r.Cleanup()
	assert.Zero(t, r.Len())
	_, ok := r.Lookup("a.example")
	assert.False(t, ok)
}

func TestRegistryLogsLifecycle(t *testing.T) {
	ctrl := gomock.NewController(t)
	mockLog := mocks.NewMockLogger(ctrl)
	mockLog.EXPECT().Debug("registered enhanced domain", gomock.Any()).Times(1)
	mockLog.EXPECT().Debug("cleared enhanced domain registry", gomock.Any()).Times(1)

	r := NewRegistry(WithLogger(mockLog))
	r.Register("example.com", fingerprint.ModeBrowserHTTPS)
	r.Cleanup()
}

func TestConcurrentAccess(t *testing.T) {
	r := newTestRegistry()

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			domain := fmt.Sprintf("host%d.example", i%4)
			r.Register(domain, fingerprint.ModeBrowserHTTPS)
			r.Lookup(domain)
			r.AllowHandshake(domain)
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 4, r.Len())
}
