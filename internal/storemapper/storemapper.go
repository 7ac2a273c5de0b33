// Package storemapper joins the operator's physical store directory with
// the platform's pickup points, recording the resulting pickup-point id
// per store.
package storemapper

import (
	"context"

	"github.com/adeco-retail/vtexwatch/internal/domain"
	"github.com/adeco-retail/vtexwatch/internal/platform"
	"github.com/adeco-retail/vtexwatch/pkg/logging"
)

// SoftRadiusKm is the maximum distance between a store and a candidate
// pickup point for the mapping to be accepted, per spec.md §4.5.
const SoftRadiusKm = 15.0

// Mapper runs Store Mapper for a single retailer host.
type Mapper struct {
	client      *platform.Client
	retailers   domain.RetailerRepository
	stores      domain.StoreRepository
	pickupPoint domain.PickupPointRepository
	log         logging.Logger
}

// New wires a Store Mapper instance.
func New(client *platform.Client, retailers domain.RetailerRepository, stores domain.StoreRepository, pickupPoints domain.PickupPointRepository, log logging.Logger) *Mapper {
	return &Mapper{client: client, retailers: retailers, stores: stores, pickupPoint: pickupPoints, log: log}
}

// MapAll maps every active store of the given retailer to its nearest
// pickup point. Returns the count of stores successfully mapped.
func (m *Mapper) MapAll(ctx context.Context, host string) (int, error) {
	retailers, err := m.retailers.ListEnabled(ctx, host)
	if err != nil {
		return 0, err
	}
	if len(retailers) == 0 {
		return 0, nil
	}
	retailer := retailers[0]

	stores, err := m.stores.ListByRetailer(ctx, host)
	if err != nil {
		return 0, err
	}

	mapped := 0
	for _, store := range stores {
		if !store.Active {
			continue
		}
		ok, err := m.mapStore(ctx, store, retailer.SalesChannels)
		if err != nil {
			m.log.Error("failed to map store", logging.Int64("store_id", store.ID), logging.Error(err))
			continue
		}
		if ok {
			mapped++
		}
	}
	return mapped, nil
}

// mapStore reports whether the store was mapped to a pickup point.
func (m *Mapper) mapStore(ctx context.Context, store domain.Store, salesChannels []int) (bool, error) {
	candidates := m.fetchCandidates(ctx, store, salesChannels)

	best, bestDist, found := nearest(store, candidates)
	if !found || bestDist > SoftRadiusKm {
		// Leaves the pickup id null: no candidate within the soft radius.
		return false, nil
	}

	if err := m.stores.UpdatePickupMapping(ctx, store.ID, best.ID); err != nil {
		return false, err
	}

	err := m.pickupPoint.Upsert(ctx, domain.PickupPoint{
		Host:     store.RetailerHost,
		ID:       best.ID,
		Name:     best.Name,
		Lon:      coordLon(best),
		Lat:      coordLat(best),
		Bandera:  store.Bandera,
		Comercio: store.Comercio,
		Sucursal: store.Sucursal,
	})
	return err == nil, err
}

func (m *Mapper) fetchCandidates(ctx context.Context, store domain.Store, salesChannels []int) []platform.PickupPointNode {
	var candidates []platform.PickupPointNode

	channels := salesChannels
	if len(channels) == 0 {
		channels = []int{0}
	}

	for _, sc := range channels {
		points, err := m.client.PickupPointsByGeo(ctx, store.Lon, store.Lat, sc)
		if err != nil {
			m.log.Warn("geo pickup lookup failed", logging.Int64("store_id", store.ID), logging.Error(err))
			continue
		}
		candidates = append(candidates, points...)
	}

	if len(candidates) > 0 {
		return candidates
	}

	for _, sc := range channels {
		points, err := m.client.PickupPointsByPostal(ctx, store.PostalCode, "AR", sc)
		if err != nil {
			m.log.Warn("postal pickup lookup failed", logging.Int64("store_id", store.ID), logging.Error(err))
			continue
		}
		candidates = append(candidates, points...)
	}

	return candidates
}

// nearest returns the candidate whose geo coordinates minimize great-circle
// distance to the store.
func nearest(store domain.Store, candidates []platform.PickupPointNode) (platform.PickupPointNode, float64, bool) {
	var best platform.PickupPointNode
	bestDist := -1.0
	found := false

	for _, c := range candidates {
		if len(c.GeoCoordinates) != 2 {
			continue
		}
		d := haversineKm(store.Lat, store.Lon, coordLat(c), coordLon(c))
		if !found || d < bestDist {
			best = c
			bestDist = d
			found = true
		}
	}
	return best, bestDist, found
}

// coordLon/coordLat read the platform's [lon, lat] ordering.
func coordLon(p platform.PickupPointNode) float64 {
	if len(p.GeoCoordinates) != 2 {
		return 0
	}
	return p.GeoCoordinates[0]
}

func coordLat(p platform.PickupPointNode) float64 {
	if len(p.GeoCoordinates) != 2 {
		return 0
	}
	return p.GeoCoordinates[1]
}
