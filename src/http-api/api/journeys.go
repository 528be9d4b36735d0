package api

import (
	"net/http"

	"github.com/gofiber/fiber/v2"
)

func (s *APIServer) GetJourneys(c *fiber.Ctx) error {
	ctx := c.Context()

	list, err := s.Journeys.List(ctx)
	if err != nil {
		s.Logger.Errorw("failed to load journeys", "error", err)
		return c.Status(http.StatusInternalServerError).JSON(ErrorResponse{
			Error: "Storage error",
		})
	}

	response := JourneysResponse{Journeys: make([]JourneyEntry, 0, len(list))}
	for _, j := range list {
		entry := JourneyEntry{Journey: j}
		entry.FromName, _ = s.Stations.NameForCRS(j.From)
		entry.ToName, _ = s.Stations.NameForCRS(j.To)
		entry.HasReturnLeg, _ = s.Journeys.HasReturnLeg(ctx, j.From, j.To)
		response.Journeys = append(response.Journeys, entry)
	}

	return c.JSON(response)
}

func (s *APIServer) PostJourney(c *fiber.Ctx) error {
	var req JourneyRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(http.StatusBadRequest).JSON(ErrorResponse{
			Error: "Bad Request", Message: "invalid journey payload",
		})
	}
	if req.From == "" || req.To == "" || req.From == req.To {
		return c.Status(http.StatusBadRequest).JSON(ErrorResponse{
			Error: "Bad Request", Message: "from and to must be distinct station codes",
		})
	}
	if _, ok := s.Stations.NameForCRS(req.From); !ok {
		return c.Status(http.StatusBadRequest).JSON(ErrorResponse{
			Error: "Bad Request", Message: "unknown origin station",
		})
	}
	if _, ok := s.Stations.NameForCRS(req.To); !ok {
		return c.Status(http.StatusBadRequest).JSON(ErrorResponse{
			Error: "Bad Request", Message: "unknown destination station",
		})
	}

	ctx := c.Context()

	// Existence is checked here, not in the repository.
	exists, err := s.Journeys.Exists(ctx, req.From, req.To)
	if err != nil {
		s.Logger.Errorw("failed to check journey existence", "error", err)
		return c.Status(http.StatusInternalServerError).JSON(ErrorResponse{
			Error: "Storage error",
		})
	}
	if exists {
		return c.Status(http.StatusConflict).JSON(ErrorResponse{
			Error: "Conflict", Message: "journey already saved",
		})
	}

	if err := s.Journeys.Add(ctx, req.From, req.To, req.Favorite, req.WithReturn); err != nil {
		s.Logger.Errorw("failed to add journey", "error", err)
		return c.Status(http.StatusInternalServerError).JSON(ErrorResponse{
			Error: "Storage error",
		})
	}

	return c.SendStatus(http.StatusCreated)
}

func (s *APIServer) DeleteJourney(c *fiber.Ctx) error {
	var req DeleteJourneyRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(http.StatusBadRequest).JSON(ErrorResponse{
			Error: "Bad Request", Message: "invalid delete payload",
		})
	}

	if err := s.Journeys.Delete(c.Context(), req.From, req.To, req.AlsoReturnLeg); err != nil {
		s.Logger.Errorw("failed to delete journey", "error", err)
		return c.Status(http.StatusInternalServerError).JSON(ErrorResponse{
			Error: "Storage error",
		})
	}

	return c.SendStatus(http.StatusNoContent)
}

func (s *APIServer) DeleteAllFavorites(c *fiber.Ctx) error {
	if err := s.Journeys.DeleteAllFavorites(c.Context()); err != nil {
		s.Logger.Errorw("failed to delete favorites", "error", err)
		return c.Status(http.StatusInternalServerError).JSON(ErrorResponse{
			Error: "Storage error",
		})
	}
	return c.SendStatus(http.StatusNoContent)
}

func (s *APIServer) PostToggleFavorite(c *fiber.Ctx) error {
	var req ToggleFavoriteRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(http.StatusBadRequest).JSON(ErrorResponse{
			Error: "Bad Request", Message: "invalid toggle payload",
		})
	}

	list, err := s.Journeys.ToggleFavorite(c.Context(), req.From, req.To, req.BothLegs)
	if err != nil {
		s.Logger.Errorw("failed to toggle favorite", "error", err)
		return c.Status(http.StatusInternalServerError).JSON(ErrorResponse{
			Error: "Storage error",
		})
	}

	return c.JSON(list)
}
