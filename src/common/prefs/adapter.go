package prefs

import (
	"context"
	"encoding/json"
	"strconv"
	"sync"
	"time"

	"github.com/traintrack/engine/src/common/events"
	"github.com/traintrack/engine/src/common/utils"
)

// Preference keys used by the engine.
const (
	KeyJourneys                = "journeys"
	KeyMaxDepartures           = "maxDepartures"
	KeyPlatformColourEnabled   = "platformColourEnabled"
	KeyHighlightShortLength    = "highlightShortTrainLength"
	KeyHighlightShortEnabled   = "highlightShortTrainsEnabled"
	KeyMaxStationDistanceMiles = "maxStationDistanceMiles"
	KeyStationFilteringEnabled = "stationFilteringEnabled"
)

// Defaults applied when a preference is unset or unreadable.
const (
	DefaultMaxDepartures           = 3
	DefaultMaxStationDistanceMiles = 3
	DefaultHighlightShortLength    = 4
)

// DefaultWriteThrottle is the window within which repeated writes to the same
// number or boolean key are coalesced by dropping all but the first. Callers
// must re-read if they need to confirm a write landed.
const DefaultWriteThrottle = 2 * time.Second

// Adapter is a typed wrapper over a Store. Reads substitute the caller's
// default on a missing or malformed value instead of failing. Throttle state
// is owned by the adapter instance, never shared process-wide.
type Adapter struct {
	store Store
	bus   *events.Bus

	WriteThrottle time.Duration

	mu         sync.Mutex
	lastWrites map[string]time.Time
	now        func() time.Time
}

func NewAdapter(store Store, bus *events.Bus) *Adapter {
	return &Adapter{
		store:         store,
		bus:           bus,
		WriteThrottle: DefaultWriteThrottle,
		lastWrites:    make(map[string]time.Time),
		now:           time.Now,
	}
}

// throttled records a write attempt for the key and reports whether it should
// be dropped because an earlier write is still within the throttle window.
func (a *Adapter) throttled(key string) bool {
	a.mu.Lock()
	defer a.mu.Unlock()

	now := a.now()
	if last, ok := a.lastWrites[key]; ok && now.Sub(last) < a.WriteThrottle {
		return true
	}
	a.lastWrites[key] = now
	return false
}

func (a *Adapter) GetNumber(ctx context.Context, key string, def int) int {
	value, ok, err := a.store.Get(ctx, key)
	if err != nil || !ok {
		if err != nil {
			utils.GetLogger().Warnw("preference read failed", "key", key, "error", err)
		}
		return def
	}

	parsed, err := strconv.Atoi(value)
	if err != nil {
		utils.GetLogger().Warnw("preference value is not a valid number", "key", key, "value", value)
		return def
	}
	return parsed
}

func (a *Adapter) SetNumber(ctx context.Context, key string, value int) error {
	if a.throttled(key) {
		utils.GetLogger().Debugw("throttled preference write", "key", key)
		return nil
	}
	if err := a.store.Set(ctx, key, strconv.Itoa(value)); err != nil {
		return err
	}
	a.bus.Publish(events.PreferencesChanged{Key: key})
	return nil
}

func (a *Adapter) GetBoolean(ctx context.Context, key string, def bool) bool {
	value, ok, err := a.store.Get(ctx, key)
	if err != nil || !ok {
		if err != nil {
			utils.GetLogger().Warnw("preference read failed", "key", key, "error", err)
		}
		return def
	}

	switch value {
	case "true":
		return true
	case "false":
		return false
	}
	utils.GetLogger().Warnw("preference value is not a valid boolean", "key", key, "value", value)
	return def
}

func (a *Adapter) SetBoolean(ctx context.Context, key string, value bool) error {
	if a.throttled(key) {
		utils.GetLogger().Debugw("throttled preference write", "key", key)
		return nil
	}
	if err := a.store.Set(ctx, key, strconv.FormatBool(value)); err != nil {
		return err
	}
	a.bus.Publish(events.PreferencesChanged{Key: key})
	return nil
}

// GetJSON decodes the stored value into dest. It returns false when the key
// is unset, and false with a logged warning when the stored blob is corrupt.
func (a *Adapter) GetJSON(ctx context.Context, key string, dest any) (bool, error) {
	value, ok, err := a.store.Get(ctx, key)
	if err != nil {
		return false, err
	}
	if !ok {
		return false, nil
	}

	if err := json.Unmarshal([]byte(value), dest); err != nil {
		utils.GetLogger().Warnw("preference value is not valid JSON", "key", key, "error", err)
		return false, nil
	}
	return true, nil
}

// SetJSON is never throttled: JSON blobs hold canonical state such as the
// journey list and every write must land. It does not raise
// PreferencesChanged; owners of JSON state emit their own change signals.
func (a *Adapter) SetJSON(ctx context.Context, key string, value any) error {
	encoded, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return a.store.Set(ctx, key, string(encoded))
}
