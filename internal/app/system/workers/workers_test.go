package workers_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/dalemusser/deskhub/internal/app/system/workers"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

type fakePruner struct {
	mu      sync.Mutex
	cutoffs []time.Time
	n       int64
	err     error
}

func (f *fakePruner) DeleteBefore(_ context.Context, cutoff time.Time) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.cutoffs = append(f.cutoffs, cutoff)
	return f.n, f.err
}

func (f *fakePruner) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.cutoffs)
}

func TestAuditRetention_PruneUsesRetentionWindow(t *testing.T) {
	p := &fakePruner{n: 3}
	core, logs := observer.New(zapcore.InfoLevel)
	w := workers.NewAuditRetention(p, zap.New(core), time.Hour, 24*time.Hour)

	before := time.Now()
	w.Prune()

	require.Equal(t, 1, p.calls())
	assert.WithinDuration(t, before.Add(-24*time.Hour), p.cutoffs[0], time.Second)
	assert.Equal(t, 1, logs.FilterMessage("pruned audit events").Len())
}

func TestAuditRetention_ErrorIsLogged(t *testing.T) {
	p := &fakePruner{err: errors.New("boom")}
	core, logs := observer.New(zapcore.InfoLevel)
	w := workers.NewAuditRetention(p, zap.New(core), time.Hour, time.Hour)

	w.Prune()
	assert.Equal(t, 1, logs.FilterMessage("failed to prune audit events").Len())
}

func TestAuditRetention_StartStop(t *testing.T) {
	p := &fakePruner{}
	w := workers.NewAuditRetention(p, zap.NewNop(), 5*time.Millisecond, time.Hour)
	w.Start()
	require.Eventually(t, func() bool { return p.calls() >= 2 }, time.Second, 5*time.Millisecond)
	w.Stop()

	n := p.calls()
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, n, p.calls(), "no prune after Stop")
}

type fakePinger struct {
	mu  sync.Mutex
	err error
}

func (f *fakePinger) Ping(context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.err
}

func (f *fakePinger) set(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.err = err
}

func TestUpstreamProbe_TracksTransitions(t *testing.T) {
	pg := &fakePinger{}
	core, logs := observer.New(zapcore.InfoLevel)
	w := workers.NewUpstreamProbe(pg, zap.New(core), time.Hour, time.Second)

	assert.True(t, w.Status().CheckedAt.IsZero())

	st := w.Check()
	assert.True(t, st.Up)
	assert.Equal(t, 0, logs.FilterMessage("ticketing backend unreachable").Len())

	pg.set(errors.New("connection refused"))
	st = w.Check()
	assert.False(t, st.Up)
	assert.Equal(t, "connection refused", w.Status().Err)
	w.Check()
	assert.Equal(t, 1, logs.FilterMessage("ticketing backend unreachable").Len(), "logged once per outage")

	pg.set(nil)
	w.Check()
	assert.True(t, w.Status().Up)
	assert.Equal(t, 1, logs.FilterMessage("ticketing backend reachable again").Len())
}

func TestUpstreamProbe_NilStatus(t *testing.T) {
	var w *workers.UpstreamProbe
	assert.Equal(t, workers.ProbeStatus{}, w.Status())
}
