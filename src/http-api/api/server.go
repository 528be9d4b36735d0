package api

import (
	"context"
	"sync"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"github.com/traintrack/engine/src/board"
	"github.com/traintrack/engine/src/common/events"
	"github.com/traintrack/engine/src/common/geo"
	"github.com/traintrack/engine/src/common/prefs"
	"github.com/traintrack/engine/src/common/stations"
	"github.com/traintrack/engine/src/common/utils"
	"github.com/traintrack/engine/src/departures"
	"github.com/traintrack/engine/src/journeys"
	"go.uber.org/zap"
)

type APIServer struct {
	Redis    *redis.Client
	Logger   *zap.SugaredLogger
	Bus      *events.Bus
	Prefs    *prefs.Adapter
	Journeys *journeys.Repository
	Stations *stations.Directory
	Locator  *geo.Locator
	Client   *departures.Client
	Session  *board.Session

	mu           sync.Mutex
	lastAPIError string
	locAvailable bool
}

// NewServer wires the engine together: redis-backed preferences, the journey
// repository, the station directory, the geo locator, and one orchestrator
// session whose boards the API serves.
func NewServer(provider geo.Provider) (*APIServer, error) {
	logger := utils.GetLogger()

	rdb := utils.NewRedisClient()
	bus := events.NewBus()

	adapter := prefs.NewAdapter(prefs.NewRedisStore(rdb), bus)
	repo := journeys.NewRepository(adapter, bus)
	directory := stations.Default()
	locator := geo.NewLocator(provider, bus)
	client := departures.NewClient(bus)

	factory := func(from, to string) board.Fetcher {
		return departures.NewFetcher(client, adapter, from, to)
	}
	session := board.NewSession(repo, locator, directory, adapter, bus, factory)

	s := &APIServer{
		Redis:    rdb,
		Logger:   logger,
		Bus:      bus,
		Prefs:    adapter,
		Journeys: repo,
		Stations: directory,
		Locator:  locator,
		Client:   client,
		Session:  session,
	}

	// Banner state: last API error wins, success clears it.
	bus.Subscribe(func(e events.Event) {
		switch event := e.(type) {
		case events.APIError:
			s.mu.Lock()
			s.lastAPIError = event.Message
			s.mu.Unlock()
		case events.LocationAvailability:
			s.mu.Lock()
			s.locAvailable = event.Available
			s.mu.Unlock()
		}
	})

	return s, nil
}

// Start runs the orchestrator session in the background.
func (s *APIServer) Start(ctx context.Context) {
	go s.Session.Run(ctx)
}

// Close tears the session down and releases connections.
func (s *APIServer) Close() {
	s.Session.Close()
	_ = s.Redis.Close()
}

// RegisterHandlers mounts every route on the app.
func RegisterHandlers(app *fiber.App, s *APIServer) {
	app.Get("/health", s.GetHealth)

	v1 := app.Group("/api/v1")
	v1.Get("/board", s.GetBoard)
	v1.Get("/status", s.GetStatus)

	v1.Get("/journeys", s.GetJourneys)
	v1.Post("/journeys", s.PostJourney)
	v1.Delete("/journeys", s.DeleteJourney)
	v1.Delete("/journeys/favorites", s.DeleteAllFavorites)
	v1.Post("/journeys/favorite", s.PostToggleFavorite)

	v1.Get("/departures/from/:crs", s.GetDepartures)
	v1.Get("/departures/from/:crs/to/:dest", s.GetDepartures)

	v1.Get("/stations", s.GetStations)
	v1.Get("/stations/platform-color/:platform", s.GetPlatformColor)

	v1.Get("/preferences", s.GetPreferences)
	v1.Put("/preferences", s.PutPreferences)
}
