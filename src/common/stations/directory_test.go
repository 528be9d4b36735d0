package stations

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/traintrack/engine/src/common/types"
)

func TestDistanceMilesZeroAndSymmetric(t *testing.T) {
	assert.Zero(t, DistanceMiles(51.5308, -0.1238, 51.5308, -0.1238))

	ab := DistanceMiles(51.5308, -0.1238, 53.9580, -1.0934)
	ba := DistanceMiles(53.9580, -1.0934, 51.5308, -0.1238)
	assert.Equal(t, ab, ba)
}

func TestDistanceMilesKnownValues(t *testing.T) {
	// One degree of latitude is 2*pi*R/360 miles on a 3958.8 mile sphere.
	assert.InDelta(t, 69.09, DistanceMiles(0, 0, 1, 0), 0.05)
	assert.InDelta(t, 69.09, DistanceMiles(0, 0, 0, 1), 0.05)

	// Kings Cross to St Pancras are neighbouring stations.
	d := DistanceMiles(51.5308, -0.1238, 51.5305, -0.1260)
	assert.Less(t, d, 0.5)
}

func TestDefaultDirectoryLoads(t *testing.T) {
	d := Default()
	require.NotEmpty(t, d.All())

	name, ok := d.NameForCRS("KGX")
	require.True(t, ok)
	assert.Equal(t, "London Kings Cross", name)

	crs, ok := d.CRSForName("York")
	require.True(t, ok)
	assert.Equal(t, "YRK", crs)

	coords, ok := d.CoordinatesForCRS("MAN")
	require.True(t, ok)
	assert.InDelta(t, 53.4773, coords.Latitude, 0.001)

	_, ok = d.NameForCRS("ZZZ")
	assert.False(t, ok)
	_, ok = d.CoordinatesForCRS("ZZZ")
	assert.False(t, ok)
	_, ok = d.CRSForName("Nowhere Parkway")
	assert.False(t, ok)
}

func testDirectory() *Directory {
	return NewDirectory([]types.Station{
		{CRS: "AAA", Name: "Alpha Central", Latitude: "51.0000", Longitude: "-1.0000"},
		{CRS: "BBB", Name: "Beta Town", Latitude: "51.1738", Longitude: "-1.0000"},
		{CRS: "CCC", Name: "Gamma Halt"},
	})
}

func TestWithinFiltersByDistance(t *testing.T) {
	d := testDirectory()
	here := types.Coordinates{Latitude: 51.0, Longitude: -1.0}

	// BBB is one tenth of a degree of latitude away, roughly 12 miles.
	near := d.Within(here, 3)
	require.Len(t, near, 1)
	assert.Equal(t, "AAA", near[0].CRS)

	wide := d.Within(here, 15)
	require.Len(t, wide, 2)
}

func TestWithinExcludesStationsWithoutCoordinates(t *testing.T) {
	d := testDirectory()
	list := d.Within(types.Coordinates{Latitude: 51.0, Longitude: -1.0}, 1000)
	for _, s := range list {
		assert.NotEqual(t, "CCC", s.CRS)
	}
}

func TestWithinUnboundedReturnsFullTable(t *testing.T) {
	d := testDirectory()

	assert.Len(t, d.Within(types.Coordinates{Latitude: 51.0, Longitude: -1.0}, 0), 3)
	assert.Len(t, d.Within(types.Coordinates{}, 5), 3)
}

func TestSearch(t *testing.T) {
	d := testDirectory()

	hits := d.Search("beta")
	require.Len(t, hits, 1)
	assert.Equal(t, "BBB", hits[0].CRS)

	assert.Len(t, d.Search(""), 3)
	assert.Empty(t, d.Search("delta"))
}

func TestPlatformColorDeterministic(t *testing.T) {
	// Same numeric part means same colour, on every call.
	first := PlatformColor("12B")
	assert.Equal(t, first, PlatformColor("12A"))
	assert.Equal(t, first, PlatformColor("12B"))
	assert.Equal(t, first, PlatformColor("12"))
}

func TestPlatformColorPlaceholders(t *testing.T) {
	assert.Equal(t, DefaultPlatformColor, PlatformColor(""))
	assert.Equal(t, DefaultPlatformColor, PlatformColor("TBC"))
	assert.Equal(t, DefaultPlatformColor, PlatformColor("BUS"))
	assert.Equal(t, DefaultPlatformColor, PlatformColor("A"))
}

func TestPlatformColorCyclesPalette(t *testing.T) {
	// Platform numbers 20 apart share a palette slot.
	assert.Equal(t, PlatformColor("1"), PlatformColor("21"))
	assert.NotEqual(t, PlatformColor("1"), PlatformColor("2"))
}
