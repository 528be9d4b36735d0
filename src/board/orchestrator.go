package board

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/traintrack/engine/src/common/events"
	"github.com/traintrack/engine/src/common/geo"
	"github.com/traintrack/engine/src/common/prefs"
	"github.com/traintrack/engine/src/common/stations"
	"github.com/traintrack/engine/src/common/types"
	"github.com/traintrack/engine/src/common/utils"
	"github.com/traintrack/engine/src/journeys"
)

// DefaultRefreshInterval is the cadence of the whole pipeline rerun.
const DefaultRefreshInterval = 15 * time.Second

// FetcherFactory builds the polling unit for one journey. Indirected so
// tests can substitute a canned fetcher.
type FetcherFactory func(from, to string) Fetcher

// Fetcher is the per-journey polling unit the session reconciles.
type Fetcher interface {
	Run(ctx context.Context)
	Stop()
	Board() types.DepartureBoard
}

// Snapshot is the orchestrated view handed to the API layer.
type Snapshot struct {
	Journeys     []JourneyBoard `json:"journeys"`
	NonFavorites int            `json:"nonFavorites"`
	FilteredOut  int            `json:"filteredOut"`
	LocationUsed bool           `json:"locationUsed"`
	UpdatedAt    time.Time      `json:"updatedAt"`
}

// JourneyBoard pairs a journey with its latest departure board.
type JourneyBoard struct {
	Journey  types.Journey        `json:"journey"`
	FromName string               `json:"fromName,omitempty"`
	ToName   string               `json:"toName,omitempty"`
	Board    types.DepartureBoard `json:"board"`
}

// Session owns one display session's journey list pipeline: load, filter by
// distance, order, and keep a fetcher running per visible journey. All timer
// and listener state is owned by the instance and torn down by Close.
type Session struct {
	repo      *journeys.Repository
	locator   *geo.Locator
	directory *stations.Directory
	prefs     *prefs.Adapter
	bus       *events.Bus
	factory   FetcherFactory

	RefreshInterval time.Duration

	mu           sync.Mutex
	visible      []types.Journey
	fetchers     map[string]Fetcher
	nonFavorites int
	filteredOut  int
	locationUsed bool
	updatedAt    time.Time

	kick        chan struct{}
	unsubscribe []func()
	cancel      context.CancelFunc
	done        chan struct{}
	closeOnce   sync.Once

	locAvailable bool
}

func NewSession(repo *journeys.Repository, locator *geo.Locator, directory *stations.Directory,
	adapter *prefs.Adapter, bus *events.Bus, factory FetcherFactory) *Session {

	s := &Session{
		repo:            repo,
		locator:         locator,
		directory:       directory,
		prefs:           adapter,
		bus:             bus,
		factory:         factory,
		RefreshInterval: DefaultRefreshInterval,
		fetchers:        make(map[string]Fetcher),
		kick:            make(chan struct{}, 1),
		done:            make(chan struct{}),
	}

	s.unsubscribe = append(s.unsubscribe, bus.Subscribe(s.onEvent))
	return s
}

// onEvent schedules a pipeline rerun for journey, preference, and
// location-became-available changes. Delivery is synchronous on the
// publisher's goroutine, so the handler only signals.
func (s *Session) onEvent(e events.Event) {
	switch event := e.(type) {
	case events.JourneysChanged:
		s.requestRefresh()
	case events.PreferencesChanged:
		s.requestRefresh()
	case events.LocationAvailability:
		s.mu.Lock()
		was := s.locAvailable
		s.locAvailable = event.Available
		s.mu.Unlock()
		if event.Available && !was {
			s.requestRefresh()
		}
	}
}

func (s *Session) requestRefresh() {
	select {
	case s.kick <- struct{}{}:
	default:
	}
}

// Run drives the pipeline until the context ends or Close is called. Each
// rerun replaces the pending scheduled one, so refreshes never pile up.
func (s *Session) Run(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	s.mu.Lock()
	s.cancel = cancel
	s.mu.Unlock()

	defer close(s.done)

	for {
		s.Refresh(ctx)

		timer := time.NewTimer(s.RefreshInterval)
		select {
		case <-timer.C:
		case <-s.kick:
			timer.Stop()
		case <-ctx.Done():
			timer.Stop()
			return
		}
	}
}

// Refresh runs one pass of the pipeline: load, filter, order, reconcile.
func (s *Session) Refresh(ctx context.Context) {
	list, err := s.repo.Favorites(ctx)
	if err != nil {
		utils.GetLogger().Warnw("failed to load journeys", "error", err)
		return
	}

	nonFavorites, err := s.repo.NonFavorites(ctx)
	if err != nil {
		utils.GetLogger().Warnw("failed to load journeys", "error", err)
		return
	}

	location := s.locator.Current(ctx)

	filtered := s.filterByDistance(ctx, list, location)
	s.order(filtered, location)
	s.reconcile(ctx, filtered)

	s.mu.Lock()
	s.visible = filtered
	s.nonFavorites = len(nonFavorites)
	s.filteredOut = len(list) - len(filtered)
	s.locationUsed = location != nil
	s.updatedAt = time.Now()
	if location != nil {
		s.locAvailable = true
	}
	s.mu.Unlock()
}

// filterByDistance keeps journeys whose origin lies within the configured
// range of the current location. Without a location, or with filtering
// disabled, the list passes through untouched.
func (s *Session) filterByDistance(ctx context.Context, list []types.Journey, location *types.Location) []types.Journey {
	if location == nil {
		return list
	}

	enabled := s.prefs.GetBoolean(ctx, prefs.KeyStationFilteringEnabled, true)
	maxMiles := s.prefs.GetNumber(ctx, prefs.KeyMaxStationDistanceMiles, prefs.DefaultMaxStationDistanceMiles)
	if !enabled || maxMiles <= 0 {
		return list
	}

	out := make([]types.Journey, 0, len(list))
	for _, j := range list {
		coords, ok := s.directory.CoordinatesForCRS(j.From)
		if !ok {
			continue
		}
		dist := stations.DistanceMiles(coords.Latitude, coords.Longitude,
			location.Latitude, location.Longitude)
		if dist <= float64(maxMiles) {
			out = append(out, j)
		}
	}
	return out
}

// order sorts by a cheap proximity proxy (sum of absolute coordinate deltas
// from the current location) when located, which is all the ordering needs;
// exact distance only matters for the filter threshold. Without a location
// the order is alphabetic by origin then destination name.
func (s *Session) order(list []types.Journey, location *types.Location) {
	if location != nil {
		sort.SliceStable(list, func(i, j int) bool {
			return s.proximity(list[i], location) < s.proximity(list[j], location)
		})
		return
	}

	sort.SliceStable(list, func(i, j int) bool {
		iFrom, _ := s.directory.NameForCRS(list[i].From)
		jFrom, _ := s.directory.NameForCRS(list[j].From)
		if iFrom != jFrom {
			return iFrom < jFrom
		}
		iTo, _ := s.directory.NameForCRS(list[i].To)
		jTo, _ := s.directory.NameForCRS(list[j].To)
		return iTo < jTo
	})
}

func (s *Session) proximity(j types.Journey, location *types.Location) float64 {
	coords, ok := s.directory.CoordinatesForCRS(j.From)
	if !ok {
		// Journeys without origin coordinates sort last.
		return 1e9
	}
	return abs(coords.Latitude-location.Latitude) + abs(coords.Longitude-location.Longitude)
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}

// reconcile starts fetchers for newly visible journeys and stops the ones
// whose journey left the list.
func (s *Session) reconcile(ctx context.Context, visible []types.Journey) {
	s.mu.Lock()
	defer s.mu.Unlock()

	wanted := make(map[string]types.Journey, len(visible))
	for _, j := range visible {
		wanted[journeyKey(j)] = j
	}

	for key, fetcher := range s.fetchers {
		if _, ok := wanted[key]; !ok {
			fetcher.Stop()
			delete(s.fetchers, key)
		}
	}

	for key, j := range wanted {
		if _, ok := s.fetchers[key]; ok {
			continue
		}
		fetcher := s.factory(j.From, j.To)
		s.fetchers[key] = fetcher
		go fetcher.Run(ctx)
	}
}

// Snapshot returns the current ordered view with the latest boards.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot := Snapshot{
		NonFavorites: s.nonFavorites,
		FilteredOut:  s.filteredOut,
		LocationUsed: s.locationUsed,
		UpdatedAt:    s.updatedAt,
	}

	for _, j := range s.visible {
		entry := JourneyBoard{Journey: j}
		entry.FromName, _ = s.directory.NameForCRS(j.From)
		entry.ToName, _ = s.directory.NameForCRS(j.To)
		if fetcher, ok := s.fetchers[journeyKey(j)]; ok {
			entry.Board = fetcher.Board()
		}
		snapshot.Journeys = append(snapshot.Journeys, entry)
	}

	return snapshot
}

// Close cancels timers, unsubscribes listeners, and stops every fetcher.
// In-flight requests are allowed to finish and be discarded.
func (s *Session) Close() {
	s.closeOnce.Do(func() {
		for _, cancel := range s.unsubscribe {
			cancel()
		}

		s.mu.Lock()
		cancelRun := s.cancel
		for key, fetcher := range s.fetchers {
			fetcher.Stop()
			delete(s.fetchers, key)
		}
		s.mu.Unlock()

		if cancelRun != nil {
			cancelRun()
			<-s.done
		}
	})
}

func journeyKey(j types.Journey) string {
	return j.From + ":" + j.To
}
