// internal/app/system/workers/upstreamprobe.go
package workers

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Pinger checks that a dependency answers. *apiclient.Client satisfies it.
type Pinger interface {
	Ping(ctx context.Context) error
}

// ProbeStatus is the last observed state of the backend.
type ProbeStatus struct {
	Up        bool
	CheckedAt time.Time
	Latency   time.Duration
	Err       string
}

// UpstreamProbe periodically pings the ticketing backend and keeps the last
// result for the health endpoint and the dashboard banner.
type UpstreamProbe struct {
	target   Pinger
	log      *zap.Logger
	interval time.Duration
	timeout  time.Duration

	mu   sync.RWMutex
	last ProbeStatus

	stopCh chan struct{}
	wg     sync.WaitGroup
}

// NewUpstreamProbe creates a new probe worker.
func NewUpstreamProbe(target Pinger, logger *zap.Logger, interval, timeout time.Duration) *UpstreamProbe {
	return &UpstreamProbe{
		target:   target,
		log:      logger,
		interval: interval,
		timeout:  timeout,
		stopCh:   make(chan struct{}),
	}
}

// Start runs one probe immediately, then begins the background loop.
func (w *UpstreamProbe) Start() {
	w.Check()
	w.wg.Add(1)
	go w.run()
	w.log.Info("upstream probe started", zap.Duration("interval", w.interval))
}

// Stop signals the worker to stop and waits for it to finish.
func (w *UpstreamProbe) Stop() {
	close(w.stopCh)
	w.wg.Wait()
	w.log.Info("upstream probe stopped")
}

// Status returns the most recent probe result. The zero value means no
// probe has completed yet.
func (w *UpstreamProbe) Status() ProbeStatus {
	if w == nil {
		return ProbeStatus{}
	}
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.last
}

func (w *UpstreamProbe) run() {
	defer w.wg.Done()

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-w.stopCh:
			return
		case <-ticker.C:
			w.Check()
		}
	}
}

// Check runs one probe and records the result. Transitions are logged.
func (w *UpstreamProbe) Check() ProbeStatus {
	ctx, cancel := context.WithTimeout(context.Background(), w.timeout)
	defer cancel()

	start := time.Now()
	err := w.target.Ping(ctx)
	st := ProbeStatus{Up: err == nil, CheckedAt: start, Latency: time.Since(start)}
	if err != nil {
		st.Err = err.Error()
	}

	w.mu.Lock()
	prev := w.last
	w.last = st
	w.mu.Unlock()

	switch {
	case !st.Up && (prev.Up || prev.CheckedAt.IsZero()):
		w.log.Warn("ticketing backend unreachable", zap.String("error", st.Err))
	case st.Up && !prev.Up && !prev.CheckedAt.IsZero():
		w.log.Info("ticketing backend reachable again", zap.Duration("latency", st.Latency))
	}
	return st
}
