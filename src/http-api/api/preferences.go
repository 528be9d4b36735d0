package api

import (
	"net/http"

	"github.com/gofiber/fiber/v2"
	"github.com/traintrack/engine/src/common/prefs"
)

func (s *APIServer) GetPreferences(c *fiber.Ctx) error {
	ctx := c.Context()
	return c.JSON(PreferencesResponse{
		MaxDepartures:               s.Prefs.GetNumber(ctx, prefs.KeyMaxDepartures, prefs.DefaultMaxDepartures),
		PlatformColourEnabled:       s.Prefs.GetBoolean(ctx, prefs.KeyPlatformColourEnabled, true),
		HighlightShortTrainLength:   s.Prefs.GetNumber(ctx, prefs.KeyHighlightShortLength, prefs.DefaultHighlightShortLength),
		HighlightShortTrainsEnabled: s.Prefs.GetBoolean(ctx, prefs.KeyHighlightShortEnabled, false),
		MaxStationDistanceMiles:     s.Prefs.GetNumber(ctx, prefs.KeyMaxStationDistanceMiles, prefs.DefaultMaxStationDistanceMiles),
		StationFilteringEnabled:     s.Prefs.GetBoolean(ctx, prefs.KeyStationFilteringEnabled, true),
	})
}

// PutPreferences applies the provided fields. Writes can be coalesced by the
// adapter's throttle, so a caller that needs confirmation re-reads.
func (s *APIServer) PutPreferences(c *fiber.Ctx) error {
	var req PreferencesRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(http.StatusBadRequest).JSON(ErrorResponse{
			Error: "Bad Request", Message: "invalid preferences payload",
		})
	}

	ctx := c.Context()

	if req.MaxDepartures != nil {
		if err := s.Prefs.SetNumber(ctx, prefs.KeyMaxDepartures, *req.MaxDepartures); err != nil {
			return s.storageError(c, err)
		}
	}
	if req.PlatformColourEnabled != nil {
		if err := s.Prefs.SetBoolean(ctx, prefs.KeyPlatformColourEnabled, *req.PlatformColourEnabled); err != nil {
			return s.storageError(c, err)
		}
	}
	if req.HighlightShortTrainLength != nil {
		if err := s.Prefs.SetNumber(ctx, prefs.KeyHighlightShortLength, *req.HighlightShortTrainLength); err != nil {
			return s.storageError(c, err)
		}
	}
	if req.HighlightShortTrainsEnabled != nil {
		if err := s.Prefs.SetBoolean(ctx, prefs.KeyHighlightShortEnabled, *req.HighlightShortTrainsEnabled); err != nil {
			return s.storageError(c, err)
		}
	}
	if req.MaxStationDistanceMiles != nil {
		if err := s.Prefs.SetNumber(ctx, prefs.KeyMaxStationDistanceMiles, *req.MaxStationDistanceMiles); err != nil {
			return s.storageError(c, err)
		}
	}
	if req.StationFilteringEnabled != nil {
		if err := s.Prefs.SetBoolean(ctx, prefs.KeyStationFilteringEnabled, *req.StationFilteringEnabled); err != nil {
			return s.storageError(c, err)
		}
	}

	return s.GetPreferences(c)
}

func (s *APIServer) storageError(c *fiber.Ctx, err error) error {
	s.Logger.Errorw("failed to write preference", "error", err)
	return c.Status(http.StatusInternalServerError).JSON(ErrorResponse{
		Error: "Storage error",
	})
}
