package departures

import (
	"sort"
	"time"

	"github.com/traintrack/engine/src/common/types"
	"github.com/traintrack/engine/src/common/utils"
)

// rolloverWindow is how far in the past a departure time may appear before it
// is treated as belonging to the next calendar day. Services crossing
// midnight would otherwise sort before everything else.
const rolloverWindow = 6 * time.Hour

// SortBoard orders departures for display: by estimated time when one is
// present and not a sentinel, otherwise by scheduled time. Fetch order is
// left alone until display time.
func SortBoard(list []types.Departure, now time.Time) {
	sort.SliceStable(list, func(i, j int) bool {
		return effectiveTime(list[i], now).Before(effectiveTime(list[j], now))
	})
}

func effectiveTime(d types.Departure, now time.Time) time.Time {
	value := d.Scheduled
	if d.Estimated != "" && !utils.IsTimeSentinel(d.Estimated) {
		value = d.Estimated
	}

	parsed, err := utils.ParseBoardTime(value, now)
	if err != nil {
		// Unparseable rows sink to the end of the board.
		return now.Add(48 * time.Hour)
	}

	if now.Sub(parsed) > rolloverWindow {
		parsed = parsed.AddDate(0, 0, 1)
	}
	return parsed
}

// ClassifyDelay buckets a delay in minutes for presentation.
func ClassifyDelay(minutes int) types.DelayClass {
	switch {
	case minutes >= 5:
		return types.DelayBig
	case minutes > 0:
		return types.DelayMild
	default:
		return types.DelayNone
	}
}

// Delay computes the departure's delay in minutes from its booked and
// real-time departure. "On time" and a missing estimate both mean zero.
func Delay(d types.Departure) int {
	return utils.DelayMinutes(d.Scheduled, d.Estimated)
}
