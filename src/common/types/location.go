package types

import "time"

// Location is a device position with the time it was observed. It is
// ephemeral state owned by the geo locator and only valid for a short
// debounce window.
type Location struct {
	Coordinates
	Timestamp time.Time `json:"timestamp"`
}
