package geo

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/traintrack/engine/src/common/events"
	"github.com/traintrack/engine/src/common/types"
)

func TestCurrentCachesWithinDebounce(t *testing.T) {
	var calls int32
	provider := ProviderFunc(func(ctx context.Context) (types.Coordinates, error) {
		atomic.AddInt32(&calls, 1)
		return types.Coordinates{Latitude: 51.5, Longitude: -0.1}, nil
	})

	locator := NewLocator(provider, events.NewBus())

	first := locator.Current(context.Background())
	require.NotNil(t, first)
	second := locator.Current(context.Background())
	require.NotNil(t, second)

	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
	assert.Equal(t, first.Coordinates, second.Coordinates)
}

func TestCurrentRefreshesAfterDebounce(t *testing.T) {
	var calls int32
	provider := ProviderFunc(func(ctx context.Context) (types.Coordinates, error) {
		atomic.AddInt32(&calls, 1)
		return types.Coordinates{Latitude: 51.5, Longitude: -0.1}, nil
	})

	locator := NewLocator(provider, events.NewBus())

	clock := time.Now()
	locator.now = func() time.Time { return clock }

	require.NotNil(t, locator.Current(context.Background()))
	clock = clock.Add(locator.Debounce + time.Second)
	require.NotNil(t, locator.Current(context.Background()))

	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestCurrentRetriesThenGivesUp(t *testing.T) {
	var calls int32
	provider := ProviderFunc(func(ctx context.Context) (types.Coordinates, error) {
		atomic.AddInt32(&calls, 1)
		return types.Coordinates{}, errors.New("no fix")
	})

	bus := events.NewBus()
	var signals []bool
	bus.Subscribe(func(e events.Event) {
		if availability, ok := e.(events.LocationAvailability); ok {
			signals = append(signals, availability.Available)
		}
	})

	locator := NewLocator(provider, bus)

	assert.Nil(t, locator.Current(context.Background()))
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
	assert.Equal(t, []bool{false}, signals)
	assert.False(t, locator.Available())

	// The failure is cached too: no new queries inside the debounce window.
	assert.Nil(t, locator.Current(context.Background()))
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
}

func TestCurrentRecoversAndSignalsAvailable(t *testing.T) {
	var fail atomic.Bool
	fail.Store(true)
	provider := ProviderFunc(func(ctx context.Context) (types.Coordinates, error) {
		if fail.Load() {
			return types.Coordinates{}, errors.New("no fix")
		}
		return types.Coordinates{Latitude: 53.8, Longitude: -1.5}, nil
	})

	bus := events.NewBus()
	var signals []bool
	bus.Subscribe(func(e events.Event) {
		if availability, ok := e.(events.LocationAvailability); ok {
			signals = append(signals, availability.Available)
		}
	})

	locator := NewLocator(provider, bus)

	clock := time.Now()
	locator.now = func() time.Time { return clock }

	assert.Nil(t, locator.Current(context.Background()))

	fail.Store(false)
	clock = clock.Add(locator.Debounce + time.Second)

	located := locator.Current(context.Background())
	require.NotNil(t, located)
	assert.Equal(t, 53.8, located.Latitude)
	assert.Equal(t, []bool{false, true}, signals)
	assert.True(t, locator.Available())
}

func TestConcurrentCallersShareOneQuery(t *testing.T) {
	var calls int32
	release := make(chan struct{})
	provider := ProviderFunc(func(ctx context.Context) (types.Coordinates, error) {
		atomic.AddInt32(&calls, 1)
		<-release
		return types.Coordinates{Latitude: 51.5, Longitude: -0.1}, nil
	})

	locator := NewLocator(provider, events.NewBus())
	locator.QueryTimeout = time.Second

	var wg sync.WaitGroup
	results := make([]*types.Location, 4)
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func(slot int) {
			defer wg.Done()
			results[slot] = locator.Current(context.Background())
		}(i)
	}

	// Let every goroutine reach the locator before the query resolves.
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
	for _, result := range results {
		require.NotNil(t, result)
		assert.Equal(t, 51.5, result.Latitude)
	}
}

func TestQueryTimeoutBoundsOneAttempt(t *testing.T) {
	provider := ProviderFunc(func(ctx context.Context) (types.Coordinates, error) {
		<-ctx.Done()
		return types.Coordinates{}, ctx.Err()
	})

	locator := NewLocator(provider, events.NewBus())
	locator.QueryTimeout = 10 * time.Millisecond

	start := time.Now()
	assert.Nil(t, locator.Current(context.Background()))
	assert.Less(t, time.Since(start), time.Second)
}
