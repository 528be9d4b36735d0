package types

// Station is immutable reference data loaded once from the embedded dataset.
// Coordinates are kept as strings because the upstream dataset leaves them
// blank for stations without a known position.
type Station struct {
	CRS       string `csv:"crs" json:"crs"`
	Name      string `csv:"name" json:"name"`
	Latitude  string `csv:"latitude" json:"latitude,omitempty"`
	Longitude string `csv:"longitude" json:"longitude,omitempty"`
}

// Coordinates is a decimal latitude/longitude pair.
type Coordinates struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}
