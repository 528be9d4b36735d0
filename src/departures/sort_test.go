package departures

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/traintrack/engine/src/common/types"
	"github.com/traintrack/engine/src/common/utils"
)

func destinations(list []types.Departure) []string {
	out := make([]string, len(list))
	for i, d := range list {
		out[i] = d.Destination
	}
	return out
}

func TestSortBoardByScheduledTime(t *testing.T) {
	now := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	list := []types.Departure{
		{Destination: "late", Scheduled: "1230"},
		{Destination: "early", Scheduled: "1015"},
		{Destination: "middle", Scheduled: "1100"},
	}

	SortBoard(list, now)
	assert.Equal(t, []string{"early", "middle", "late"}, destinations(list))
}

func TestSortBoardPrefersEstimatedTime(t *testing.T) {
	now := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	list := []types.Departure{
		// Booked first but running late past the other service.
		{Destination: "slipped", Scheduled: "1010", Estimated: "1045"},
		{Destination: "steady", Scheduled: "1020", Estimated: "1020"},
	}

	SortBoard(list, now)
	assert.Equal(t, []string{"steady", "slipped"}, destinations(list))
}

func TestSortBoardIgnoresSentinelEstimates(t *testing.T) {
	now := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	list := []types.Departure{
		{Destination: "second", Scheduled: "1030", Estimated: utils.TimeOnTime},
		{Destination: "first", Scheduled: "1015", Estimated: utils.TimeCancelled},
	}

	SortBoard(list, now)
	assert.Equal(t, []string{"first", "second"}, destinations(list))
}

func TestSortBoardRollsOverPastMidnight(t *testing.T) {
	// At 23:50 the 00:10 service is tomorrow, not first thing this morning.
	now := time.Date(2024, 3, 1, 23, 50, 0, 0, time.UTC)
	list := []types.Departure{
		{Destination: "after midnight", Scheduled: "0010"},
		{Destination: "before midnight", Scheduled: "2355"},
	}

	SortBoard(list, now)
	assert.Equal(t, []string{"before midnight", "after midnight"}, destinations(list))
}

func TestSortBoardRecentPastStaysPut(t *testing.T) {
	// A service a few minutes behind schedule is still today's service.
	now := time.Date(2024, 3, 1, 10, 5, 0, 0, time.UTC)
	list := []types.Departure{
		{Destination: "upcoming", Scheduled: "1015"},
		{Destination: "just gone", Scheduled: "1000"},
	}

	SortBoard(list, now)
	assert.Equal(t, []string{"just gone", "upcoming"}, destinations(list))
}

func TestSortBoardUnparseableSinksToEnd(t *testing.T) {
	now := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	list := []types.Departure{
		{Destination: "broken", Scheduled: "soon"},
		{Destination: "fine", Scheduled: "1030"},
	}

	SortBoard(list, now)
	assert.Equal(t, []string{"fine", "broken"}, destinations(list))
}

func TestClassifyDelay(t *testing.T) {
	assert.Equal(t, types.DelayNone, ClassifyDelay(-3))
	assert.Equal(t, types.DelayNone, ClassifyDelay(0))
	assert.Equal(t, types.DelayMild, ClassifyDelay(1))
	assert.Equal(t, types.DelayMild, ClassifyDelay(4))
	assert.Equal(t, types.DelayBig, ClassifyDelay(5))
	assert.Equal(t, types.DelayBig, ClassifyDelay(40))
}

func TestDelay(t *testing.T) {
	assert.Equal(t, 7, Delay(types.Departure{Scheduled: "1000", Estimated: "1007"}))
	assert.Equal(t, 0, Delay(types.Departure{Scheduled: "1000", Estimated: utils.TimeOnTime}))
	assert.Equal(t, 0, Delay(types.Departure{Scheduled: "1000"}))
}
