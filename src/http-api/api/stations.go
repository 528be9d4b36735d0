package api

import (
	"net/http"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/traintrack/engine/src/common/stations"
	"github.com/traintrack/engine/src/common/types"
)

// GetStations lists the station directory. With lat/lon/maxMiles it narrows
// to stations within range; with q it narrows by name.
func (s *APIServer) GetStations(c *fiber.Ctx) error {
	query := c.Query("q")
	latRaw := c.Query("lat")
	lonRaw := c.Query("lon")
	maxMilesRaw := c.Query("maxMiles")

	var list []types.Station
	var position *types.Coordinates
	if latRaw != "" && lonRaw != "" {
		lat, latErr := strconv.ParseFloat(latRaw, 64)
		lon, lonErr := strconv.ParseFloat(lonRaw, 64)
		if latErr != nil || lonErr != nil {
			return c.Status(http.StatusBadRequest).JSON(ErrorResponse{
				Error: "Bad Request", Message: "lat and lon must be decimal degrees",
			})
		}
		maxMiles := float64(0)
		if maxMilesRaw != "" {
			parsed, err := strconv.ParseFloat(maxMilesRaw, 64)
			if err != nil {
				return c.Status(http.StatusBadRequest).JSON(ErrorResponse{
					Error: "Bad Request", Message: "maxMiles must be a number",
				})
			}
			maxMiles = parsed
		}
		position = &types.Coordinates{Latitude: lat, Longitude: lon}
		list = s.Stations.Within(*position, maxMiles)
	} else if query != "" {
		list = s.Stations.Search(query)
	} else {
		list = s.Stations.All()
	}

	out := make([]StationEntry, 0, len(list))
	for _, station := range list {
		entry := StationEntry{Station: station}
		if position != nil {
			if coords, ok := s.Stations.CoordinatesForCRS(station.CRS); ok {
				dist := stations.DistanceMiles(coords.Latitude, coords.Longitude,
					position.Latitude, position.Longitude)
				entry.DistanceMiles = &dist
			}
		}
		out = append(out, entry)
	}
	return c.JSON(out)
}

// GetPlatformColor returns the stable display colour for a platform label.
func (s *APIServer) GetPlatformColor(c *fiber.Ctx) error {
	platform := c.Params("platform")
	return c.JSON(PlatformColorResponse{
		Platform: platform,
		Color:    stations.PlatformColor(platform),
	})
}
