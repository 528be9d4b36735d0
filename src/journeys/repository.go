package journeys

import (
	"context"
	"sync"

	"github.com/traintrack/engine/src/common/events"
	"github.com/traintrack/engine/src/common/prefs"
	"github.com/traintrack/engine/src/common/types"
	"github.com/traintrack/engine/src/common/utils"
)

// storedJourney mirrors types.Journey but keeps the favorite flag as a
// pointer so records written before the flag existed can be told apart from
// records where it is explicitly false.
type storedJourney struct {
	From     string `json:"from"`
	To       string `json:"to"`
	Favorite *bool  `json:"favorite,omitempty"`
}

// Repository owns the canonical saved journey list, persisted as JSON under
// the journeys preference. Writes are serialised by an in-process mutex; the
// storage layer itself stays last-write-wins.
type Repository struct {
	prefs *prefs.Adapter
	bus   *events.Bus
	mu    sync.Mutex
}

func NewRepository(adapter *prefs.Adapter, bus *events.Bus) *Repository {
	return &Repository{prefs: adapter, bus: bus}
}

// List returns every saved journey, migrating legacy records that lack the
// favorite flag. If any record needed migration the corrected list is
// persisted once and a change signal is raised; a second run writes nothing.
func (r *Repository) List(ctx context.Context) ([]types.Journey, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.load(ctx)
}

// load reads and migrates under the caller's lock.
func (r *Repository) load(ctx context.Context) ([]types.Journey, error) {
	var stored []storedJourney
	if _, err := r.prefs.GetJSON(ctx, prefs.KeyJourneys, &stored); err != nil {
		return nil, err
	}

	migrated := false
	list := make([]types.Journey, 0, len(stored))
	for _, s := range stored {
		journey := types.Journey{From: s.From, To: s.To}
		if s.Favorite == nil {
			migrated = true
		} else {
			journey.Favorite = *s.Favorite
		}
		list = append(list, journey)
	}

	if migrated {
		utils.GetLogger().Infow("migrated journeys missing favorite flag", "count", len(list))
		if err := r.persist(ctx, list); err != nil {
			return nil, err
		}
		r.bus.Publish(events.JourneysChanged{})
	}

	return list, nil
}

func (r *Repository) persist(ctx context.Context, list []types.Journey) error {
	// Marshal through types.Journey so every persisted record carries the
	// favorite field explicitly from now on.
	if list == nil {
		list = []types.Journey{}
	}
	return r.prefs.SetJSON(ctx, prefs.KeyJourneys, list)
}

// Favorites returns the journeys marked as favorite.
func (r *Repository) Favorites(ctx context.Context) ([]types.Journey, error) {
	return r.filtered(ctx, true)
}

// NonFavorites returns the journeys not marked as favorite.
func (r *Repository) NonFavorites(ctx context.Context) ([]types.Journey, error) {
	return r.filtered(ctx, false)
}

func (r *Repository) filtered(ctx context.Context, favorite bool) ([]types.Journey, error) {
	list, err := r.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]types.Journey, 0, len(list))
	for _, j := range list {
		if j.Favorite == favorite {
			out = append(out, j)
		}
	}
	return out, nil
}

// Exists reports whether the exact ordered pair is already saved.
func (r *Repository) Exists(ctx context.Context, from, to string) (bool, error) {
	list, err := r.List(ctx)
	if err != nil {
		return false, err
	}
	for _, j := range list {
		if j.Same(from, to) {
			return true, nil
		}
	}
	return false, nil
}

// HasReturnLeg reports whether the reverse pair (to, from) is saved. The
// relationship is derived on demand, never stored as a link.
func (r *Repository) HasReturnLeg(ctx context.Context, from, to string) (bool, error) {
	return r.Exists(ctx, to, from)
}

// Add appends a journey, and its return leg when withReturn is set. Duplicate
// suppression of the primary pair is the caller's job via Exists; an already
// saved return leg is skipped rather than doubled.
func (r *Repository) Add(ctx context.Context, from, to string, favorite, withReturn bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	list, err := r.load(ctx)
	if err != nil {
		return err
	}

	list = append(list, types.Journey{From: from, To: to, Favorite: favorite})
	if withReturn && !contains(list, to, from) {
		list = append(list, types.Journey{From: to, To: from, Favorite: favorite})
	}

	if err := r.persist(ctx, list); err != nil {
		return err
	}
	r.bus.Publish(events.JourneysChanged{})
	return nil
}

// Delete removes the exact pair, and the reverse pair too when asked.
func (r *Repository) Delete(ctx context.Context, from, to string, alsoReturnLeg bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	list, err := r.load(ctx)
	if err != nil {
		return err
	}

	kept := list[:0]
	for _, j := range list {
		if j.Same(from, to) {
			continue
		}
		if alsoReturnLeg && j.Same(to, from) {
			continue
		}
		kept = append(kept, j)
	}

	if err := r.persist(ctx, kept); err != nil {
		return err
	}
	r.bus.Publish(events.JourneysChanged{})
	return nil
}

// DeleteAllFavorites removes every favorite journey, leaving the rest alone.
func (r *Repository) DeleteAllFavorites(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	list, err := r.load(ctx)
	if err != nil {
		return err
	}

	kept := list[:0]
	for _, j := range list {
		if !j.Favorite {
			kept = append(kept, j)
		}
	}

	if err := r.persist(ctx, kept); err != nil {
		return err
	}
	r.bus.Publish(events.JourneysChanged{})
	return nil
}

// ToggleFavorite flips the favorite flag on the exact pair, and on the
// reverse pair when bothLegs is set. It returns the updated full list.
func (r *Repository) ToggleFavorite(ctx context.Context, from, to string, bothLegs bool) ([]types.Journey, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	list, err := r.load(ctx)
	if err != nil {
		return nil, err
	}

	for i := range list {
		if list[i].Same(from, to) || (bothLegs && list[i].Same(to, from)) {
			list[i].Favorite = !list[i].Favorite
		}
	}

	if err := r.persist(ctx, list); err != nil {
		return nil, err
	}
	r.bus.Publish(events.JourneysChanged{})
	return list, nil
}

func contains(list []types.Journey, from, to string) bool {
	for _, j := range list {
		if j.Same(from, to) {
			return true
		}
	}
	return false
}
