package departures

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/traintrack/engine/src/common/events"
)

func newTestClient(bus *events.Bus, baseURL string) *Client {
	client := NewClient(bus)
	client.BaseURL = baseURL
	return client
}

func TestBoardRequestsCorrectEndpoints(t *testing.T) {
	var paths []string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		paths = append(paths, r.URL.Path)
		w.Write([]byte(modernPayload))
	}))
	defer server.Close()

	client := newTestClient(events.NewBus(), server.URL)

	_, err := client.Board(context.Background(), "KGX", "YRK")
	require.NoError(t, err)
	_, err = client.Board(context.Background(), "KGX", "")
	require.NoError(t, err)

	assert.Equal(t, []string{"/departures/from/KGX/to/YRK", "/departures/from/KGX"}, paths)
}

func TestBoardRetriesTransientFailures(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte(modernPayload))
	}))
	defer server.Close()

	client := newTestClient(events.NewBus(), server.URL)

	list, err := client.Board(context.Background(), "KGX", "YRK")
	require.NoError(t, err)
	assert.Len(t, list, 2)
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
}

func TestBoardGivesUpAfterTransportAttempts(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	client := newTestClient(events.NewBus(), server.URL)

	_, err := client.Board(context.Background(), "KGX", "YRK")
	assert.Error(t, err)
	assert.Equal(t, int32(DefaultTransportAttempts), atomic.LoadInt32(&calls))
}

func TestBoardDoesNotRetryClientErrors(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	client := newTestClient(events.NewBus(), server.URL)

	_, err := client.Board(context.Background(), "KGX", "YRK")
	assert.Error(t, err)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestAPIErrorSignalLastWriteWins(t *testing.T) {
	failing := atomic.Bool{}
	failing.Store(true)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if failing.Load() {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.Write([]byte(modernPayload))
	}))
	defer server.Close()

	bus := events.NewBus()
	var messages []string
	bus.Subscribe(func(e events.Event) {
		if apiErr, ok := e.(events.APIError); ok {
			messages = append(messages, apiErr.Message)
		}
	})

	client := newTestClient(bus, server.URL)

	_, err := client.Board(context.Background(), "KGX", "YRK")
	require.Error(t, err)
	require.NotEmpty(t, messages)
	assert.NotEmpty(t, messages[len(messages)-1])

	// A success clears the signal.
	failing.Store(false)
	_, err = client.Board(context.Background(), "KGX", "YRK")
	require.NoError(t, err)
	assert.Empty(t, messages[len(messages)-1])
}

func TestBoardSignalsOnUndecodableResponse(t *testing.T) {
	// An outage can serve a 200 splash page; the banner must still raise.
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html>gateway maintenance</html>`))
	}))
	defer server.Close()

	bus := events.NewBus()
	var messages []string
	bus.Subscribe(func(e events.Event) {
		if apiErr, ok := e.(events.APIError); ok {
			messages = append(messages, apiErr.Message)
		}
	})

	client := newTestClient(bus, server.URL)

	_, err := client.Board(context.Background(), "KGX", "YRK")
	require.Error(t, err)
	require.NotEmpty(t, messages)
	assert.NotEmpty(t, messages[len(messages)-1])
}

func TestServiceInfoSignalsOnUndecodableResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"locations": "not a list"}`))
	}))
	defer server.Close()

	bus := events.NewBus()
	var messages []string
	bus.Subscribe(func(e events.Event) {
		if apiErr, ok := e.(events.APIError); ok {
			messages = append(messages, apiErr.Message)
		}
	})

	client := newTestClient(bus, server.URL)

	_, err := client.ServiceInfo(context.Background(), "W12345", "2024-03-01")
	require.Error(t, err)
	require.NotEmpty(t, messages)
	assert.NotEmpty(t, messages[len(messages)-1])
}

func TestBoardNoDeparturesDoesNotSignal(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"error": "nothing here"}`))
	}))
	defer server.Close()

	bus := events.NewBus()
	var signals int
	bus.Subscribe(func(e events.Event) {
		if _, ok := e.(events.APIError); ok {
			signals++
		}
	})

	client := newTestClient(bus, server.URL)

	_, err := client.Board(context.Background(), "KGX", "YRK")
	require.ErrorIs(t, err, ErrNoDepartures)
	assert.Zero(t, signals)
}

func TestServiceInfo(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/service/W12345/runDate/2024-03-01", r.URL.Path)
		w.Write([]byte(`{
			"serviceUid": "W12345",
			"runDate": "2024-03-01",
			"locations": [
				{"crs": "PBO", "gbttBookedArrival": "1030", "realtimeArrival": "1032"},
				{"crs": "YRK", "gbttBookedArrival": "1145", "realtimeArrival": "1148"}
			]
		}`))
	}))
	defer server.Close()

	client := newTestClient(events.NewBus(), server.URL)

	detail, err := client.ServiceInfo(context.Background(), "W12345", "2024-03-01")
	require.NoError(t, err)
	require.Len(t, detail.Locations, 2)
	assert.Equal(t, "YRK", detail.Locations[1].CRS)
	assert.Equal(t, "1148", detail.Locations[1].RealtimeArrival)
}
