package types

import "time"

// DelayClass buckets a departure delay for presentation.
type DelayClass string

const (
	DelayNone DelayClass = "none"
	DelayMild DelayClass = "mild"
	DelayBig  DelayClass = "big"
)

// Departure is one row of a departure board. It lives for a single refresh
// cycle and is fully replaced on the next, never merged with prior state.
type Departure struct {
	ServiceUID  string `json:"serviceUid"`
	RunDate     string `json:"runDate,omitempty"`
	Destination string `json:"destination"`
	Platform    string `json:"platform"`
	ServiceType string `json:"serviceType,omitempty"`

	// Times are four digit HHMM strings as published by the upstream feed.
	Scheduled        string `json:"scheduled"`
	Estimated        string `json:"estimated,omitempty"`
	ArrivalScheduled string `json:"arrivalScheduled,omitempty"`
	ArrivalEstimated string `json:"arrivalEstimated,omitempty"`

	Cancelled    bool   `json:"cancelled"`
	CancelReason string `json:"cancelReason,omitempty"`

	TrainLength int  `json:"trainLength,omitempty"`
	ShortTrain  bool `json:"shortTrain,omitempty"`
}

// DepartureBoard is the live list of upcoming services for one journey.
type DepartureBoard struct {
	From       string      `json:"from"`
	To         string      `json:"to"`
	Departures []Departure `json:"departures"`
	UpdatedAt  time.Time   `json:"updatedAt"`
}
