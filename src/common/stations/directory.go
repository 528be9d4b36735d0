package stations

import (
	"bytes"
	_ "embed"
	"math"
	"strconv"
	"strings"
	"sync"

	"github.com/gocarina/gocsv"
	"github.com/traintrack/engine/src/common/types"
)

//go:embed stations.csv
var stationsCSV []byte

// EarthRadiusMiles is the radius used for great-circle distances.
const EarthRadiusMiles = 3958.8

// Directory is the immutable station lookup table. It is loaded once from the
// embedded dataset and never mutated at runtime.
type Directory struct {
	stations []types.Station
	byCRS    map[string]types.Station
	byName   map[string]types.Station
}

var (
	defaultDirectory *Directory
	defaultOnce      sync.Once
)

// Default returns the directory backed by the embedded dataset.
func Default() *Directory {
	defaultOnce.Do(func() {
		var parsed []*types.Station
		if err := gocsv.Unmarshal(bytes.NewReader(stationsCSV), &parsed); err != nil {
			// The dataset is compiled in; a parse failure is a build defect.
			panic("stations: bad embedded dataset: " + err.Error())
		}

		list := make([]types.Station, 0, len(parsed))
		for _, s := range parsed {
			list = append(list, *s)
		}
		defaultDirectory = NewDirectory(list)
	})
	return defaultDirectory
}

// NewDirectory builds a directory over an explicit station table.
func NewDirectory(list []types.Station) *Directory {
	d := &Directory{
		stations: list,
		byCRS:    make(map[string]types.Station, len(list)),
		byName:   make(map[string]types.Station, len(list)),
	}
	for _, s := range list {
		d.byCRS[s.CRS] = s
		d.byName[s.Name] = s
	}
	return d
}

// All returns the full station table.
func (d *Directory) All() []types.Station {
	out := make([]types.Station, len(d.stations))
	copy(out, d.stations)
	return out
}

// NameForCRS looks up a station display name; false on miss.
func (d *Directory) NameForCRS(crs string) (string, bool) {
	s, ok := d.byCRS[crs]
	if !ok {
		return "", false
	}
	return s.Name, true
}

// CRSForName looks up a station code by exact display name; false on miss.
func (d *Directory) CRSForName(name string) (string, bool) {
	s, ok := d.byName[name]
	if !ok {
		return "", false
	}
	return s.CRS, true
}

// CoordinatesForCRS returns the station position; false when the station is
// unknown or has no recorded coordinates.
func (d *Directory) CoordinatesForCRS(crs string) (types.Coordinates, bool) {
	s, ok := d.byCRS[crs]
	if !ok {
		return types.Coordinates{}, false
	}
	return stationCoordinates(s)
}

// Search returns stations whose name contains the query, case-insensitively.
func (d *Directory) Search(query string) []types.Station {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return d.All()
	}
	var out []types.Station
	for _, s := range d.stations {
		if strings.Contains(strings.ToLower(s.Name), query) {
			out = append(out, s)
		}
	}
	return out
}

// Within filters the table to stations whose coordinates lie within maxMiles
// of the given position. Stations without coordinates are excluded. A
// non-positive maxMiles or zero-value position returns the full table.
func (d *Directory) Within(position types.Coordinates, maxMiles float64) []types.Station {
	if maxMiles <= 0 || (position.Latitude == 0 && position.Longitude == 0) {
		return d.All()
	}

	var out []types.Station
	for _, s := range d.stations {
		coords, ok := stationCoordinates(s)
		if !ok {
			continue
		}
		dist := DistanceMiles(coords.Latitude, coords.Longitude, position.Latitude, position.Longitude)
		if dist <= maxMiles {
			out = append(out, s)
		}
	}
	return out
}

func stationCoordinates(s types.Station) (types.Coordinates, bool) {
	if s.Latitude == "" || s.Longitude == "" {
		return types.Coordinates{}, false
	}
	lat, err := strconv.ParseFloat(s.Latitude, 64)
	if err != nil {
		return types.Coordinates{}, false
	}
	lon, err := strconv.ParseFloat(s.Longitude, 64)
	if err != nil {
		return types.Coordinates{}, false
	}
	return types.Coordinates{Latitude: lat, Longitude: lon}, true
}

// DistanceMiles is the great-circle distance between two points via the
// Haversine formula.
func DistanceMiles(lat1, lon1, lat2, lon2 float64) float64 {
	toRad := func(deg float64) float64 { return deg * math.Pi / 180 }

	dLat := toRad(lat2 - lat1)
	dLon := toRad(lon2 - lon1)

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRad(lat1))*math.Cos(toRad(lat2))*
			math.Sin(dLon/2)*math.Sin(dLon/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return EarthRadiusMiles * c
}
