package api

import "github.com/traintrack/engine/src/common/types"

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
}

type StatusResponse struct {
	APIError          string `json:"apiError,omitempty"`
	LocationAvailable bool   `json:"locationAvailable"`
}

type JourneyRequest struct {
	From       string `json:"from"`
	To         string `json:"to"`
	Favorite   bool   `json:"favorite"`
	WithReturn bool   `json:"withReturn"`
}

type DeleteJourneyRequest struct {
	From          string `json:"from"`
	To            string `json:"to"`
	AlsoReturnLeg bool   `json:"alsoReturnLeg"`
}

type ToggleFavoriteRequest struct {
	From     string `json:"from"`
	To       string `json:"to"`
	BothLegs bool   `json:"bothLegs"`
}

type JourneysResponse struct {
	Journeys []JourneyEntry `json:"journeys"`
}

type JourneyEntry struct {
	types.Journey
	FromName     string `json:"fromName,omitempty"`
	ToName       string `json:"toName,omitempty"`
	HasReturnLeg bool   `json:"hasReturnLeg"`
}

type StationEntry struct {
	types.Station
	DistanceMiles *float64 `json:"distanceMiles,omitempty"`
}

type PlatformColorResponse struct {
	Platform string `json:"platform"`
	Color    string `json:"color"`
}

type PreferencesResponse struct {
	MaxDepartures               int  `json:"maxDepartures"`
	PlatformColourEnabled       bool `json:"platformColourEnabled"`
	HighlightShortTrainLength   int  `json:"highlightShortTrainLength"`
	HighlightShortTrainsEnabled bool `json:"highlightShortTrainsEnabled"`
	MaxStationDistanceMiles     int  `json:"maxStationDistanceMiles"`
	StationFilteringEnabled     bool `json:"stationFilteringEnabled"`
}

type PreferencesRequest struct {
	MaxDepartures               *int  `json:"maxDepartures"`
	PlatformColourEnabled       *bool `json:"platformColourEnabled"`
	HighlightShortTrainLength   *int  `json:"highlightShortTrainLength"`
	HighlightShortTrainsEnabled *bool `json:"highlightShortTrainsEnabled"`
	MaxStationDistanceMiles     *int  `json:"maxStationDistanceMiles"`
	StationFilteringEnabled     *bool `json:"stationFilteringEnabled"`
}
