// Package directory holds the per-request snapshot of backend collections
// a screen renders from.
//
// A Directory is created for one request, told which collections to fetch,
// and loaded once. Every fetch runs concurrently; the snapshot is committed
// only when all of them succeed, so a screen never renders a mix of old and
// new data. After a mutation, Reload refreshes the invalidated collections
// wholesale and leaves the others untouched.
//
// A Directory is never shared across requests.
package directory

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Common collection names.
const (
	Users   = "users"
	Tickets = "tickets"
	Teams   = "teams"
	Modules = "modules"
	Postes  = "postes"
	Clients = "clients"
)

// ErrAbandoned is returned when the request ended before results arrived.
var ErrAbandoned = errors.New("directory: request ended before load completed")

// FetchFunc loads one whole collection.
type FetchFunc func(ctx context.Context) (any, error)

// Directory is a named set of collections loaded together.
type Directory struct {
	log *zap.Logger

	mu      sync.RWMutex
	fetch   map[string]FetchFunc
	data    map[string]any
	loaded  bool
	lastErr error
}

// New returns an empty Directory.
func New(logger *zap.Logger) *Directory {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Directory{
		log:   logger,
		fetch: map[string]FetchFunc{},
		data:  map[string]any{},
	}
}

// Register declares how to fetch the named collection. Registering a name
// twice replaces the fetch.
func (d *Directory) Register(name string, fn FetchFunc) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.fetch[name] = fn
}

// Add registers a typed fetch for name.
func Add[T any](d *Directory, name string, fn func(ctx context.Context) ([]T, error)) {
	d.Register(name, func(ctx context.Context) (any, error) {
		items, err := fn(ctx)
		if err != nil {
			return nil, err
		}
		return items, nil
	})
}

// Get returns the named collection, or nil when it is unknown, has the
// wrong type, or has not been loaded.
func Get[T any](d *Directory, name string) []T {
	d.mu.RLock()
	defer d.mu.RUnlock()
	items, _ := d.data[name].([]T)
	return items
}

// Names returns the registered collection names, sorted.
func (d *Directory) Names() []string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	names := make([]string, 0, len(d.fetch))
	for n := range d.fetch {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Load fetches every registered collection. On success all of them are
// replaced at once. On any failure nothing is committed: a first load leaves
// every collection unset, a repeated load keeps the previous snapshot. The
// error is recorded and returned.
func (d *Directory) Load(ctx context.Context) error {
	names := d.Names()
	results, err := d.run(ctx, names)
	if errors.Is(err, ErrAbandoned) {
		return err
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	if err != nil {
		d.lastErr = err
		return err
	}
	d.data = results
	d.loaded = true
	d.lastErr = nil
	return nil
}

// Reload re-fetches only the named collections. On success each is replaced
// wholesale. On failure the previous collections stay in place and the
// error is recorded and returned.
func (d *Directory) Reload(ctx context.Context, names ...string) error {
	if len(names) == 0 {
		return nil
	}
	d.mu.RLock()
	for _, n := range names {
		if _, ok := d.fetch[n]; !ok {
			d.mu.RUnlock()
			return fmt.Errorf("directory: unknown collection %q", n)
		}
	}
	d.mu.RUnlock()

	results, err := d.run(ctx, dedupe(names))
	if errors.Is(err, ErrAbandoned) {
		return err
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	if err != nil {
		d.lastErr = err
		return err
	}
	for n, v := range results {
		d.data[n] = v
	}
	d.lastErr = nil
	return nil
}

// Loaded reports whether a full Load has succeeded.
func (d *Directory) Loaded() bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.loaded
}

// Err returns the error of the most recent Load or Reload, if it failed.
func (d *Directory) Err() error {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.lastErr
}

// ClearErr forgets the recorded error.
func (d *Directory) ClearErr() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.lastErr = nil
}

// run fetches names concurrently. Results are returned only if every fetch
// succeeded and ctx is still live. A canceled ctx yields ErrAbandoned and
// the caller leaves the snapshot exactly as it was.
func (d *Directory) run(ctx context.Context, names []string) (map[string]any, error) {
	d.mu.RLock()
	fns := make(map[string]FetchFunc, len(names))
	for _, n := range names {
		fns[n] = d.fetch[n]
	}
	d.mu.RUnlock()

	var (
		resMu   sync.Mutex
		results = make(map[string]any, len(names))
	)
	g, gctx := errgroup.WithContext(ctx)
	for _, n := range names {
		name, fn := n, fns[n]
		g.Go(func() error {
			v, err := fn(gctx)
			if err != nil {
				return fmt.Errorf("load %s: %w", name, err)
			}
			resMu.Lock()
			results[name] = v
			resMu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		if abandoned(ctx) {
			return nil, fmt.Errorf("%w: %v", ErrAbandoned, ctx.Err())
		}
		d.log.Warn("directory load failed", zap.Strings("collections", names), zap.Error(err))
		return nil, err
	}
	if abandoned(ctx) {
		return nil, fmt.Errorf("%w: %v", ErrAbandoned, ctx.Err())
	}
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("load %v: %w", names, err)
	}
	return results, nil
}

// abandoned reports whether the caller went away. A deadline is a failure
// to report, not an abandonment.
func abandoned(ctx context.Context) bool {
	return errors.Is(ctx.Err(), context.Canceled)
}

func dedupe(names []string) []string {
	seen := make(map[string]struct{}, len(names))
	out := names[:0:0]
	for _, n := range names {
		if _, ok := seen[n]; ok {
			continue
		}
		seen[n] = struct{}{}
		out = append(out, n)
	}
	return out
}
