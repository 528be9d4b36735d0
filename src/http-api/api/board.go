package api

import (
	"net/http"

	"github.com/gofiber/fiber/v2"
	"github.com/traintrack/engine/src/departures"
)

// GetBoard serves the orchestrated snapshot: the filtered, ordered favorite
// journeys with their latest departure boards.
func (s *APIServer) GetBoard(c *fiber.Ctx) error {
	return c.JSON(s.Session.Snapshot())
}

// GetDepartures serves a one-shot departure board for an origin, optionally
// narrowed to a destination. It bypasses the orchestrator and its throttles.
func (s *APIServer) GetDepartures(c *fiber.Ctx) error {
	from := c.Params("crs")
	to := c.Params("dest")

	if _, ok := s.Stations.NameForCRS(from); !ok {
		return c.Status(http.StatusNotFound).JSON(ErrorResponse{
			Error: "Not Found", Message: "unknown origin station",
		})
	}

	fetcher := departures.NewFetcher(s.Client, s.Prefs, from, to)
	boardData := fetcher.Refresh(c.Context())

	return c.JSON(boardData)
}
