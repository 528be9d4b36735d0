package departures

import (
	"encoding/json"
	"fmt"

	"github.com/traintrack/engine/src/common/types"
)

// The upstream feed has published two payload layouts over its lifetime. Both
// are decoded explicitly and normalised into types.Departure; a payload
// matching neither is ErrNoDepartures rather than a silent empty board.

// modernBoard is the current layout: departures[] with a nested
// locationDetail block per service.
type modernBoard struct {
	Departures []modernDeparture `json:"departures"`
}

type modernDeparture struct {
	ServiceUID     string               `json:"serviceUid"`
	RunDate        string               `json:"runDate"`
	ServiceType    string               `json:"serviceType"`
	TrainLength    int                  `json:"trainLength"`
	LocationDetail modernLocationDetail `json:"locationDetail"`
}

type modernLocationDetail struct {
	CRS                  string              `json:"crs"`
	GBTTBookedDeparture  string              `json:"gbttBookedDeparture"`
	RealtimeDeparture    string              `json:"realtimeDeparture"`
	Platform             string              `json:"platform"`
	CancelReasonCode     string              `json:"cancelReasonCode"`
	CancelReasonLongText string              `json:"cancelReasonLongText"`
	Destination          []modernDestination `json:"destination"`
}

type modernDestination struct {
	Description string `json:"description"`
	PublicTime  string `json:"publicTime"`
}

// legacyBoard is the older layout: trainServices[] with flat std/etd fields.
type legacyBoard struct {
	TrainServices []legacyService `json:"trainServices"`
}

type legacyService struct {
	ServiceID    string `json:"serviceID"`
	STD          string `json:"std"`
	ETD          string `json:"etd"`
	Platform     string `json:"platform"`
	Destination  string `json:"destination"`
	IsCancelled  bool   `json:"isCancelled"`
	CancelReason string `json:"cancelReason"`
	Length       int    `json:"length"`
	ServiceType  string `json:"serviceType"`
}

// ServiceDetail is the calling-point list for one service run.
type ServiceDetail struct {
	ServiceUID string         `json:"serviceUid"`
	RunDate    string         `json:"runDate"`
	Locations  []CallingPoint `json:"locations"`
}

type CallingPoint struct {
	CRS               string `json:"crs"`
	Description       string `json:"description"`
	GBTTBookedArrival string `json:"gbttBookedArrival"`
	RealtimeArrival   string `json:"realtimeArrival"`
}

// decodeBoard tries each known layout in turn and normalises the first match.
func decodeBoard(body []byte) ([]types.Departure, error) {
	var modern modernBoard
	if err := json.Unmarshal(body, &modern); err == nil && modern.Departures != nil {
		out := make([]types.Departure, 0, len(modern.Departures))
		for _, d := range modern.Departures {
			out = append(out, d.normalize())
		}
		return out, nil
	}

	var legacy legacyBoard
	if err := json.Unmarshal(body, &legacy); err == nil && legacy.TrainServices != nil {
		out := make([]types.Departure, 0, len(legacy.TrainServices))
		for _, s := range legacy.TrainServices {
			out = append(out, s.normalize())
		}
		return out, nil
	}

	if !json.Valid(body) {
		return nil, fmt.Errorf("departures: response is not JSON")
	}
	return nil, ErrNoDepartures
}

func (d modernDeparture) normalize() types.Departure {
	destination := ""
	arrival := ""
	if len(d.LocationDetail.Destination) > 0 {
		destination = d.LocationDetail.Destination[0].Description
		arrival = d.LocationDetail.Destination[0].PublicTime
	}

	platform := d.LocationDetail.Platform
	if platform == "" {
		platform = "TBC"
	}

	return types.Departure{
		ServiceUID:       d.ServiceUID,
		RunDate:          d.RunDate,
		ServiceType:      d.ServiceType,
		Destination:      destination,
		Platform:         platform,
		Scheduled:        d.LocationDetail.GBTTBookedDeparture,
		Estimated:        d.LocationDetail.RealtimeDeparture,
		ArrivalScheduled: arrival,
		Cancelled:        d.LocationDetail.CancelReasonCode != "",
		CancelReason:     d.LocationDetail.CancelReasonLongText,
		TrainLength:      d.TrainLength,
	}
}

func (s legacyService) normalize() types.Departure {
	platform := s.Platform
	if platform == "" {
		platform = "TBC"
	}

	return types.Departure{
		ServiceUID:   s.ServiceID,
		ServiceType:  s.ServiceType,
		Destination:  s.Destination,
		Platform:     platform,
		Scheduled:    s.STD,
		Estimated:    s.ETD,
		Cancelled:    s.IsCancelled,
		CancelReason: s.CancelReason,
		TrainLength:  s.Length,
	}
}
