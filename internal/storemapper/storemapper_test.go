package storemapper

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/adeco-retail/vtexwatch/internal/domain"
	"github.com/adeco-retail/vtexwatch/internal/platform"
)

func TestHaversineKm_SamePointIsZero(t *testing.T) {
	assert.InDelta(t, 0, haversineKm(-34.6, -58.4, -34.6, -58.4), 0.0001)
}

func TestHaversineKm_KnownDistance(t *testing.T) {
	// Buenos Aires to Cordoba, roughly 650km apart.
	d := haversineKm(-34.6037, -58.3816, -31.4201, -64.1888)
	assert.InDelta(t, 650, d, 60)
}

func TestCoordLonLat_ReadsOrderCorrectly(t *testing.T) {
	p := platform.PickupPointNode{GeoCoordinates: []float64{-58.38, -34.60}}
	assert.Equal(t, -58.38, coordLon(p))
	assert.Equal(t, -34.60, coordLat(p))
}

func TestCoordLonLat_MalformedCoordinatesDefaultToZero(t *testing.T) {
	p := platform.PickupPointNode{GeoCoordinates: []float64{-58.38}}
	assert.Equal(t, 0.0, coordLon(p))
	assert.Equal(t, 0.0, coordLat(p))
}

func TestNearest_PicksClosestCandidate(t *testing.T) {
	store := domain.Store{Lat: -34.6037, Lon: -58.3816}
	candidates := []platform.PickupPointNode{
		{ID: "far", GeoCoordinates: []float64{-64.1888, -31.4201}},
		{ID: "near", GeoCoordinates: []float64{-58.3820, -34.6040}},
	}

	best, dist, found := nearest(store, candidates)

	assert.True(t, found)
	assert.Equal(t, "near", best.ID)
	assert.Less(t, dist, 1.0)
}

func TestNearest_SkipsMalformedCandidates(t *testing.T) {
	store := domain.Store{Lat: -34.6037, Lon: -58.3816}
	candidates := []platform.PickupPointNode{
		{ID: "malformed", GeoCoordinates: []float64{-58.38}},
	}

	_, _, found := nearest(store, candidates)
	assert.False(t, found)
}

func TestNearest_NoCandidates(t *testing.T) {
	_, _, found := nearest(domain.Store{}, nil)
	assert.False(t, found)
}
