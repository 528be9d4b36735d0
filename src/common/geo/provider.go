package geo

import (
	"context"
	"errors"
	"os"
	"strconv"

	"github.com/traintrack/engine/src/common/types"
)

// ErrNoPosition means the host has no position configured.
var ErrNoPosition = errors.New("geo: no device position available")

// EnvProvider reads the device position from DEVICE_LAT/DEVICE_LON. Hosts
// without a position configured take the location-unavailable path, the same
// degradation a device with no GPS fix gets.
type EnvProvider struct{}

func (EnvProvider) Current(_ context.Context) (types.Coordinates, error) {
	latRaw := os.Getenv("DEVICE_LAT")
	lonRaw := os.Getenv("DEVICE_LON")
	if latRaw == "" || lonRaw == "" {
		return types.Coordinates{}, ErrNoPosition
	}

	lat, err := strconv.ParseFloat(latRaw, 64)
	if err != nil {
		return types.Coordinates{}, ErrNoPosition
	}
	lon, err := strconv.ParseFloat(lonRaw, 64)
	if err != nil {
		return types.Coordinates{}, ErrNoPosition
	}

	return types.Coordinates{Latitude: lat, Longitude: lon}, nil
}
