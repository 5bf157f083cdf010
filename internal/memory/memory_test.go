package memory

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func env(values map[string]string) func(string) string {
	return func(key string) string { return values[key] }
}

func TestFromEnv(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		env  map[string]string
		want Limit
	}{
		{name: "nothing set", env: nil, want: Limit{Source: SourceNone}},
		{name: "GOMEMLIMIT wins", env: map[string]string{"GOMEMLIMIT": "1GiB", "MEMORY_LIMIT": "1000"}, want: Limit{Source: SourceGOMEMLIMIT}},
		{
			name: "default ratio",
			env:  map[string]string{"MEMORY_LIMIT": "1000000"},
			want: Limit{Source: SourceMemoryLimit, Container: 1000000, Heap: 850000, Ratio: DefaultMemoryRatio},
		},
		{
			name: "custom ratio",
			env:  map[string]string{"MEMORY_LIMIT": "1000000", "MEMORY_RATIO": "0.5"},
			want: Limit{Source: SourceMemoryLimit, Container: 1000000, Heap: 500000, Ratio: 0.5},
		},
		{
			name: "ratio out of range",
			env:  map[string]string{"MEMORY_LIMIT": "1000000", "MEMORY_RATIO": "1.5"},
			want: Limit{Source: SourceMemoryLimit, Container: 1000000, Heap: 850000, Ratio: DefaultMemoryRatio},
		},
		{
			name: "ratio unparsable",
			env:  map[string]string{"MEMORY_LIMIT": "1000000", "MEMORY_RATIO": "most"},
			want: Limit{Source: SourceMemoryLimit, Container: 1000000, Heap: 850000, Ratio: DefaultMemoryRatio},
		},
		{name: "invalid limit", env: map[string]string{"MEMORY_LIMIT": "512Mi"}, want: Limit{Source: SourceNone}},
		{name: "negative limit", env: map[string]string{"MEMORY_LIMIT": "-1"}, want: Limit{Source: SourceNone}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, FromEnv(env(tt.env)))
		})
	}
}

func TestFormatBytes(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "512 B", formatBytes(512))
	assert.Equal(t, "1.0 KiB", formatBytes(1024))
	assert.Equal(t, "1.5 MiB", formatBytes(1536*1024))
	assert.Equal(t, "2.0 GiB", formatBytes(2<<30))
}

func newTestMonitor(alloc *atomic.Uint64) *Monitor {
	m := NewMonitor(Config{LimitBytes: 1000, HighWaterMark: 0.7, CriticalWaterMark: 0.85, CheckInterval: time.Millisecond})
	m.sample = alloc.Load
	return m
}

func TestMonitorPausesAndResumes(t *testing.T) {
	var alloc atomic.Uint64
	m := newTestMonitor(&alloc)
	require.True(t, m.Enabled())

	alloc.Store(500)
	m.check()
	assert.False(t, m.Paused())
	assert.InDelta(t, 0.5, m.Usage(), 0.001)
	require.NoError(t, m.Wait(context.Background()))

	alloc.Store(900)
	m.check()
	require.True(t, m.Paused())

	done := make(chan error, 1)
	go func() { done <- m.Wait(context.Background()) }()

	select {
	case <-done:
		t.Fatal("Wait returned while paused")
	case <-time.After(20 * time.Millisecond):
	}

	// Between the marks: stay paused.
	alloc.Store(800)
	m.check()
	assert.True(t, m.Paused())

	alloc.Store(600)
	m.check()
	assert.False(t, m.Paused())

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("Wait did not return after recovery")
	}
}

func TestMonitorWaitHonorsContext(t *testing.T) {
	var alloc atomic.Uint64
	m := newTestMonitor(&alloc)
	alloc.Store(999)
	m.check()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	require.ErrorIs(t, m.Wait(ctx), context.DeadlineExceeded)
}

func TestMonitorRunReleasesOnStop(t *testing.T) {
	var alloc atomic.Uint64
	alloc.Store(999)
	m := newTestMonitor(&alloc)

	ctx, cancel := context.WithCancel(context.Background())
	stopped := make(chan struct{})
	go func() {
		m.Run(ctx)
		close(stopped)
	}()

	require.Eventually(t, m.Paused, time.Second, time.Millisecond)
	cancel()
	<-stopped
	assert.False(t, m.Paused())
}

func TestDisabledMonitor(t *testing.T) {
	t.Parallel()
	m := &Monitor{config: DefaultConfig(), resume: make(chan struct{})}

	assert.False(t, m.Enabled())
	assert.Zero(t, m.Usage())
	m.Run(context.Background()) // returns immediately
	require.NoError(t, m.Wait(context.Background()))

	var nilMonitor *Monitor
	require.NoError(t, nilMonitor.Wait(context.Background()))
}
