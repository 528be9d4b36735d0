package departures

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/traintrack/engine/src/common/events"
	"github.com/traintrack/engine/src/common/types"
	"github.com/traintrack/engine/src/common/utils"
)

// ErrNoDepartures means the upstream response decoded but carried no usable
// departure list in either known shape.
var ErrNoDepartures = errors.New("departures: no departure list in response")

const (
	// DefaultRequestTimeout bounds one HTTP round trip.
	DefaultRequestTimeout = 5 * time.Second
	// DefaultTransportAttempts is how many times a request is tried on
	// network failure or a 5xx before the error surfaces.
	DefaultTransportAttempts = 3
)

// Client talks to the departures API. All failures raise the process-wide
// API error signal; any success clears it. Last write wins.
type Client struct {
	BaseURL    string
	httpClient *http.Client
	bus        *events.Bus
	Attempts   int
}

func NewClient(bus *events.Bus) *Client {
	baseURL := os.Getenv("DEPARTURES_API")
	if baseURL == "" {
		baseURL = "https://train-track-api.fly.dev/api/v1"
	}

	return &Client{
		BaseURL:    baseURL,
		httpClient: &http.Client{Timeout: DefaultRequestTimeout},
		bus:        bus,
		Attempts:   DefaultTransportAttempts,
	}
}

// Board fetches live departures from a station, optionally narrowed to those
// calling at a destination. An empty to requests all departures at the origin.
func (c *Client) Board(ctx context.Context, from, to string) ([]types.Departure, error) {
	endpoint := fmt.Sprintf("%s/departures/from/%s", c.BaseURL, from)
	if to != "" {
		endpoint = fmt.Sprintf("%s/departures/from/%s/to/%s", c.BaseURL, from, to)
	}

	body, err := c.get(ctx, endpoint)
	if err != nil {
		return nil, err
	}

	departures, err := decodeBoard(body)
	if err != nil {
		// ErrNoDepartures is an application-level condition the fetcher
		// retries; only a body that failed to decode raises the signal.
		if !errors.Is(err, ErrNoDepartures) {
			utils.GetLogger().Warnw("departures API response did not decode", "endpoint", endpoint, "error", err)
			c.bus.Publish(events.APIError{Message: fmt.Sprintf("API error: %v", err)})
		}
		return nil, err
	}

	c.bus.Publish(events.APIError{})
	return departures, nil
}

// ServiceInfo fetches the calling points for a service on a given run date.
// This is the legacy data path used to derive arrival times at a destination.
func (c *Client) ServiceInfo(ctx context.Context, serviceUID, runDate string) (*ServiceDetail, error) {
	endpoint := fmt.Sprintf("%s/service/%s/runDate/%s", c.BaseURL, serviceUID, runDate)

	body, err := c.get(ctx, endpoint)
	if err != nil {
		return nil, err
	}

	var detail ServiceDetail
	if err := json.Unmarshal(body, &detail); err != nil {
		err = fmt.Errorf("failed to decode service info: %w", err)
		utils.GetLogger().Warnw("departures API response did not decode", "endpoint", endpoint, "error", err)
		c.bus.Publish(events.APIError{Message: fmt.Sprintf("API error: %v", err)})
		return nil, err
	}

	c.bus.Publish(events.APIError{})
	return &detail, nil
}

// get performs a GET with bounded transport retries. Network errors and 5xx
// responses are retried; anything else surfaces immediately.
func (c *Client) get(ctx context.Context, endpoint string) ([]byte, error) {
	var body []byte

	attempt := func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
		if err != nil {
			return backoff.Permanent(err)
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()

		if resp.StatusCode >= 500 {
			return fmt.Errorf("transient status code: %d", resp.StatusCode)
		}
		if resp.StatusCode != http.StatusOK {
			return backoff.Permanent(fmt.Errorf("unexpected status code: %d", resp.StatusCode))
		}

		body, err = io.ReadAll(resp.Body)
		if err != nil {
			return err
		}
		return nil
	}

	policy := backoff.WithMaxRetries(backoff.NewConstantBackOff(0), uint64(c.Attempts-1))
	if err := backoff.Retry(attempt, backoff.WithContext(policy, ctx)); err != nil {
		utils.GetLogger().Warnw("departures API request failed", "endpoint", endpoint, "error", err)
		c.bus.Publish(events.APIError{Message: apiErrorMessage(err)})
		return nil, err
	}

	return body, nil
}

func apiErrorMessage(err error) string {
	var permanent *backoff.PermanentError
	if errors.As(err, &permanent) {
		return fmt.Sprintf("API error: %v", permanent.Err)
	}
	return "Network error: unable to reach the departures API"
}
