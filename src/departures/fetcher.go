package departures

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/traintrack/engine/src/common/prefs"
	"github.com/traintrack/engine/src/common/types"
	"github.com/traintrack/engine/src/common/utils"
)

const (
	// DefaultPollInterval is the cadence of the per-journey refresh loop.
	DefaultPollInterval = 10 * time.Second
	// DefaultRefreshThrottle suppresses a refresh when the last successful
	// update is younger than this, so out-of-band triggers stay cheap.
	DefaultRefreshThrottle = 10 * time.Second
	// DefaultBoardRetries is how many extra times a fetch is repeated when
	// the response carries no departure list (4 attempts in total).
	DefaultBoardRetries = 3
)

// Fetcher polls live departures for one (from, to) pair. Each pair gets its
// own instance with its own throttle state; nothing is shared process-wide.
type Fetcher struct {
	From string
	To   string

	PollInterval    time.Duration
	RefreshThrottle time.Duration
	BoardRetries    int

	client *Client
	prefs  *prefs.Adapter

	mu        sync.Mutex
	board     types.DepartureBoard
	updatedAt time.Time
	now       func() time.Time

	stop     chan struct{}
	stopOnce sync.Once
	done     chan struct{}
}

func NewFetcher(client *Client, adapter *prefs.Adapter, from, to string) *Fetcher {
	return &Fetcher{
		From:            from,
		To:              to,
		PollInterval:    DefaultPollInterval,
		RefreshThrottle: DefaultRefreshThrottle,
		BoardRetries:    DefaultBoardRetries,
		client:          client,
		prefs:           adapter,
		now:             time.Now,
		stop:            make(chan struct{}),
		done:            make(chan struct{}),
	}
}

// Board returns the last published board.
func (f *Fetcher) Board() types.DepartureBoard {
	f.mu.Lock()
	defer f.mu.Unlock()

	board := f.board
	board.Departures = make([]types.Departure, len(f.board.Departures))
	copy(board.Departures, f.board.Departures)
	return board
}

// Refresh fetches and publishes a new board. A successful update younger
// than the throttle window short-circuits to the cached board. A cycle whose
// every attempt comes back without a departure list publishes an empty board
// rather than failing.
func (f *Fetcher) Refresh(ctx context.Context) types.DepartureBoard {
	f.mu.Lock()
	if !f.updatedAt.IsZero() && f.now().Sub(f.updatedAt) < f.RefreshThrottle {
		defer f.mu.Unlock()
		utils.GetLogger().Debugw("skipping departures update", "from", f.From, "to", f.To)

		board := f.board
		board.Departures = make([]types.Departure, len(f.board.Departures))
		copy(board.Departures, f.board.Departures)
		return board
	}
	f.mu.Unlock()

	var list []types.Departure
	var err error
	for attempt := 0; attempt <= f.BoardRetries; attempt++ {
		list, err = f.client.Board(ctx, f.From, f.To)
		if err == nil {
			break
		}
		if !errors.Is(err, ErrNoDepartures) {
			// Transport failures already exhausted their own retries; this
			// cycle degrades to whatever we had before.
			utils.GetLogger().Warnw("departure refresh failed", "from", f.From, "to", f.To, "error", err)
			return f.Board()
		}
		utils.GetLogger().Warnw("no departures found", "from", f.From, "to", f.To, "attempt", attempt)
	}
	if errors.Is(err, ErrNoDepartures) {
		list = nil
	}

	maxDepartures := f.prefs.GetNumber(ctx, prefs.KeyMaxDepartures, prefs.DefaultMaxDepartures)
	if maxDepartures > 0 && len(list) > maxDepartures {
		list = list[:maxDepartures]
	}

	f.enrich(ctx, list)
	SortBoard(list, f.now())

	board := types.DepartureBoard{
		From:       f.From,
		To:         f.To,
		Departures: list,
		UpdatedAt:  f.now(),
	}

	f.mu.Lock()
	f.board = board
	f.updatedAt = board.UpdatedAt
	f.mu.Unlock()

	return board
}

// enrich fills in arrival times at the destination via the per-service
// calling point lookup and flags short trains. Both are best effort.
func (f *Fetcher) enrich(ctx context.Context, list []types.Departure) {
	highlightShort := f.prefs.GetBoolean(ctx, prefs.KeyHighlightShortEnabled, false)
	shortLength := f.prefs.GetNumber(ctx, prefs.KeyHighlightShortLength, prefs.DefaultHighlightShortLength)

	for i := range list {
		if highlightShort && list[i].TrainLength > 0 && list[i].TrainLength <= shortLength {
			list[i].ShortTrain = true
		}

		if f.To == "" || list[i].ServiceUID == "" || list[i].Cancelled {
			continue
		}

		runDate := list[i].RunDate
		if runDate == "" {
			runDate = utils.FormatRunDate(f.now())
		}

		detail, err := f.client.ServiceInfo(ctx, list[i].ServiceUID, runDate)
		if err != nil {
			continue
		}
		for _, point := range detail.Locations {
			if point.CRS == f.To {
				list[i].ArrivalScheduled = point.GBTTBookedArrival
				list[i].ArrivalEstimated = point.RealtimeArrival
				break
			}
		}
	}
}

// Run polls until Stop is called or the context ends. The next poll is
// scheduled only after the current cycle settles, so a slow upstream never
// stacks cycles.
func (f *Fetcher) Run(ctx context.Context) {
	defer close(f.done)

	for {
		f.Refresh(ctx)

		timer := time.NewTimer(f.PollInterval)
		select {
		case <-timer.C:
		case <-f.stop:
			timer.Stop()
			return
		case <-ctx.Done():
			timer.Stop()
			return
		}
	}
}

// Stop cancels the poll loop. In-flight requests are not aborted; their
// results are simply discarded.
func (f *Fetcher) Stop() {
	f.stopOnce.Do(func() { close(f.stop) })
}

// Done is closed when the poll loop has exited.
func (f *Fetcher) Done() <-chan struct{} {
	return f.done
}
