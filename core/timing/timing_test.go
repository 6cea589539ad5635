package timing

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gocircum/mimictls/testutils"
)

func TestNextDelayBounds(t *testing.T) {
	o := NewObfuscator()
	cfg := Config{BaseDelayMs: 20, JitterPct: 50}

	for i := 0; i < 500; i++ {
		delay, err := o.NextDelay(&cfg)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, delay, 10.0)
		assert.LessOrEqual(t, delay, 30.0)
	}
}

func TestNextDelayDeterministic(t *testing.T) {
	// uniform(-1,1) is 2u-1: u=0.75 gives +0.5 of the jitter range.
	src := &testutils.FixedSource{Floats: []float64{0.75}}
	o := NewObfuscatorWithSource(src)
	cfg := Config{BaseDelayMs: 100, JitterPct: 10}

	delay, err := o.NextDelay(&cfg)
	require.NoError(t, err)
	assert.InDelta(t, 105.0, delay, 1e-9)
}

func TestNextDelayPadding(t *testing.T) {
	// Jitter draw 0.5 (no jitter), gate 0.01 (< 5%, padding fires),
	// padding draw 0.5 (+25ms).
	src := &testutils.FixedSource{Floats: []float64{0.5, 0.01, 0.5}}
	o := NewObfuscatorWithSource(src)
	cfg := Config{BaseDelayMs: 10, JitterPct: 0, EnableRandomPadding: true}

	delay, err := o.NextDelay(&cfg)
	require.NoError(t, err)
	assert.InDelta(t, 35.0, delay, 1e-9)
}

func TestNextDelayPaddingGateClosed(t *testing.T) {
	src := &testutils.FixedSource{Floats: []float64{0.5, 0.9}}
	o := NewObfuscatorWithSource(src)
	cfg := Config{BaseDelayMs: 10, JitterPct: 0, EnableRandomPadding: true}

	delay, err := o.NextDelay(&cfg)
	require.NoError(t, err)
	assert.InDelta(t, 10.0, delay, 1e-9)
}

func TestNextDelayNeverNegative(t *testing.T) {
	src := &testutils.FixedSource{Floats: []float64{0.0}} // full negative jitter
	o := NewObfuscatorWithSource(src)
	cfg := Config{BaseDelayMs: 5, JitterPct: 300}

	delay, err := o.NextDelay(&cfg)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, delay, 0.0)
}

func TestNextDelayEntropyFailure(t *testing.T) {
	o := NewObfuscatorWithSource(testutils.FailingSource{})
	cfg := DefaultConfig()

	_, err := o.NextDelay(&cfg)
	assert.Error(t, err)
}

func TestLimiterAllow(t *testing.T) {
	l := NewLimiter(1, 2)

	assert.True(t, l.Allow())
	assert.True(t, l.Allow())
	assert.False(t, l.Allow(), "burst exhausted")
}

func TestLimiterDisabled(t *testing.T) {
	l := NewLimiter(0, 0)
	for i := 0; i < 100; i++ {
		require.True(t, l.Allow())
	}
}

func TestLimiterWaitHonorsContext(t *testing.T) {
	l := NewLimiter(0.001, 1)
	require.True(t, l.Allow())

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	err := l.Wait(ctx)
	assert.Error(t, err, "wait must give up when the context expires")
}
