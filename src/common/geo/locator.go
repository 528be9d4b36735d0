package geo

import (
	"context"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/traintrack/engine/src/common/events"
	"github.com/traintrack/engine/src/common/types"
	"github.com/traintrack/engine/src/common/utils"
	"golang.org/x/sync/singleflight"
)

// Provider answers a single "where are we now" query. Implementations wrap
// the device or host location source.
type Provider interface {
	Current(ctx context.Context) (types.Coordinates, error)
}

// ProviderFunc adapts a plain function to a Provider.
type ProviderFunc func(ctx context.Context) (types.Coordinates, error)

func (f ProviderFunc) Current(ctx context.Context) (types.Coordinates, error) {
	return f(ctx)
}

const (
	// DefaultDebounce is the window within which a cached result, including a
	// cached failure, is served without a new device query.
	DefaultDebounce = 10 * time.Second
	// DefaultQueryTimeout bounds a single device query.
	DefaultQueryTimeout = 1 * time.Second
	// DefaultAttempts is how many queries are made before a cycle gives up.
	DefaultAttempts = 3
)

// Locator caches device positions behind a debounce window with single-flight
// fetch discipline. It is the sole source of location availability signals.
// All state is owned by the instance; two locators never share a cache.
type Locator struct {
	provider Provider
	bus      *events.Bus

	Debounce     time.Duration
	QueryTimeout time.Duration
	Attempts     int

	mu        sync.Mutex
	cached    *types.Location
	fetchedAt time.Time
	available bool
	group     singleflight.Group
	now       func() time.Time
}

func NewLocator(provider Provider, bus *events.Bus) *Locator {
	return &Locator{
		provider:     provider,
		bus:          bus,
		Debounce:     DefaultDebounce,
		QueryTimeout: DefaultQueryTimeout,
		Attempts:     DefaultAttempts,
		now:          time.Now,
	}
}

// Current returns the device position, or nil when it cannot be determined.
// Results, including failures, are cached for the debounce window, and
// concurrent callers share one in-flight query.
func (l *Locator) Current(ctx context.Context) *types.Location {
	l.mu.Lock()
	if !l.fetchedAt.IsZero() && l.now().Sub(l.fetchedAt) < l.Debounce {
		cached := l.cached
		l.mu.Unlock()
		return cached
	}
	l.mu.Unlock()

	result, _, _ := l.group.Do("location", func() (any, error) {
		return l.query(ctx), nil
	})

	location, _ := result.(*types.Location)
	return location
}

// Available reports the last observed availability state.
func (l *Locator) Available() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.available
}

func (l *Locator) query(ctx context.Context) *types.Location {
	var coords types.Coordinates

	attempt := func() error {
		queryCtx, cancel := context.WithTimeout(ctx, l.QueryTimeout)
		defer cancel()

		found, err := l.provider.Current(queryCtx)
		if err != nil {
			return err
		}
		coords = found
		return nil
	}

	policy := backoff.WithMaxRetries(backoff.NewConstantBackOff(0), uint64(l.Attempts-1))
	if err := backoff.Retry(attempt, backoff.WithContext(policy, ctx)); err != nil {
		utils.GetLogger().Warnw("location unavailable", "error", err)
		l.store(nil, false)
		l.bus.Publish(events.LocationAvailability{Available: false})
		return nil
	}

	location := &types.Location{Coordinates: coords, Timestamp: l.now()}
	l.store(location, true)
	l.bus.Publish(events.LocationAvailability{Available: true})
	return location
}

func (l *Locator) store(location *types.Location, available bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.cached = location
	l.fetchedAt = l.now()
	l.available = available
}
