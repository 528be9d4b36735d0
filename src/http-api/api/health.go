package api

import (
	"github.com/gofiber/fiber/v2"
)

// GetHealth implements the health check endpoint
func (s *APIServer) GetHealth(c *fiber.Ctx) error {
	response := HealthResponse{
		Status:  "healthy",
		Version: "1.0.0",
	}
	return c.JSON(response)
}

// GetStatus reports the banner state: the last upstream API error (empty once
// cleared by a success) and whether a device location is available.
func (s *APIServer) GetStatus(c *fiber.Ctx) error {
	s.mu.Lock()
	response := StatusResponse{
		APIError:          s.lastAPIError,
		LocationAvailable: s.locAvailable,
	}
	s.mu.Unlock()
	return c.JSON(response)
}
