package types

// Journey is a saved directed origin->destination station pair tracked for
// live departures. Records written by old app versions lack the favorite
// field; the repository migrates them on first read.
type Journey struct {
	From     string `json:"from"`
	To       string `json:"to"`
	Favorite bool   `json:"favorite"`
}

// Same reports whether the journey is the exact ordered pair (from, to).
func (j Journey) Same(from, to string) bool {
	return j.From == from && j.To == to
}

// Reverse returns the return-leg pair for this journey.
func (j Journey) Reverse() Journey {
	return Journey{From: j.To, To: j.From, Favorite: j.Favorite}
}
