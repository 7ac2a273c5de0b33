package platform

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/adeco-retail/vtexwatch/pkg/cache"
	"github.com/adeco-retail/vtexwatch/pkg/tracing"
)

// PageStep is the paging window size spec.md §4.2 fixes for search calls.
const PageStep = 50

// Client is the thin typed wrapper over the platform's public JSON
// endpoints, one instance per (host, worker) session.
type Client struct {
	session *Session
	cache   cache.Cache
}

// NewClient wraps a warm Session as a Platform Client. cache may be nil,
// in which case pickup-point lookups are never cached.
func NewClient(session *Session, c cache.Cache) *Client {
	return &Client{session: session, cache: c}
}

func (c *Client) get(ctx context.Context, path string) (int, []byte, error) {
	resp, body, err := c.session.Do(ctx, "GET", path, nil)
	if err != nil {
		return 0, nil, err
	}
	return resp.StatusCode, body, nil
}

func (c *Client) post(ctx context.Context, path string, payload interface{}) (int, []byte, error) {
	reqBody, err := json.Marshal(payload)
	if err != nil {
		return 0, nil, fmt.Errorf("failed to marshal request body: %w", err)
	}
	resp, body, err := c.session.Do(ctx, "POST", path, reqBody)
	if err != nil {
		return 0, nil, err
	}
	return resp.StatusCode, body, nil
}

// CategoryTree fetches the platform's category tree to the given depth
// (default 50 is the caller's responsibility via config).
func (c *Client) CategoryTree(ctx context.Context, depth int) ([]CategoryNode, error) {
	ctx, span := tracing.StartSpan(ctx, "platform.CategoryTree")
	defer span.End()

	path := fmt.Sprintf("/api/catalog_system/pub/category/tree/%d", depth)
	status, body, err := c.get(ctx, path)
	if err != nil {
		return nil, err
	}
	if status != 200 {
		return nil, &Error{Status: status, RawBody: string(body)}
	}

	var tree []CategoryNode
	if err := json.Unmarshal(body, &tree); err != nil {
		return nil, fmt.Errorf("failed to parse category tree: %w", err)
	}
	return tree, nil
}

// SearchByCategory pages through a category's product feed. from/to are
// inclusive 0-based indices; accepts 200 and 206 (partial content).
func (c *Client) SearchByCategory(ctx context.Context, categoryID int64, from, to int, sc int) ([]ProductNode, int, error) {
	ctx, span := tracing.StartSpan(ctx, "platform.SearchByCategory")
	defer span.End()

	q := url.Values{}
	q.Set("fq", fmt.Sprintf("C:/%d/", categoryID))
	q.Set("_from", strconv.Itoa(from))
	q.Set("_to", strconv.Itoa(to))
	if sc > 0 {
		q.Set("sc", strconv.Itoa(sc))
	}

	return c.search(ctx, q)
}

// SearchByFulltext is the same feed, scoped by a free-text query instead of
// a category, used for EAN and brand-prefix Targeted Discovery.
func (c *Client) SearchByFulltext(ctx context.Context, query string, from, to int) ([]ProductNode, int, error) {
	ctx, span := tracing.StartSpan(ctx, "platform.SearchByFulltext")
	defer span.End()

	q := url.Values{}
	q.Set("ft", query)
	q.Set("_from", strconv.Itoa(from))
	q.Set("_to", strconv.Itoa(to))

	return c.search(ctx, q)
}

func (c *Client) search(ctx context.Context, q url.Values) ([]ProductNode, int, error) {
	if q.Get("_from") != "" && q.Get("_to") != "" {
		from, _ := strconv.Atoi(q.Get("_from"))
		to, _ := strconv.Atoi(q.Get("_to"))
		if from > to {
			return nil, 0, nil
		}
	}

	path := "/api/catalog_system/pub/products/search?" + q.Encode()
	status, body, err := c.get(ctx, path)
	if err != nil {
		return nil, 0, err
	}
	if status != 200 && status != 206 {
		return nil, status, &Error{Status: status, RawBody: string(body)}
	}

	var products []ProductNode
	if err := json.Unmarshal(body, &products); err != nil {
		return nil, status, fmt.Errorf("failed to parse product search response: %w", err)
	}
	return products, status, nil
}

// PickupPointsByGeo resolves pickup points near a WGS84 coordinate.
func (c *Client) PickupPointsByGeo(ctx context.Context, lon, lat float64, sc int) ([]PickupPointNode, error) {
	ctx, span := tracing.StartSpan(ctx, "platform.PickupPointsByGeo")
	defer span.End()

	cacheKey := fmt.Sprintf("pickup:geo:%s:%.5f:%.5f:%d", c.session.host, lon, lat, sc)
	if points, ok := c.fromCache(ctx, cacheKey); ok {
		return points, nil
	}

	q := url.Values{}
	q.Set("geoCoordinates", fmt.Sprintf("%g;%g", lon, lat))
	if sc > 0 {
		q.Set("sc", strconv.Itoa(sc))
	}

	points, err := c.pickupPoints(ctx, q)
	if err != nil {
		return nil, err
	}
	c.toCache(ctx, cacheKey, points)
	return points, nil
}

// PickupPointsByPostal is the Store Mapper's fallback when no geo results
// are returned.
func (c *Client) PickupPointsByPostal(ctx context.Context, postal, country string, sc int) ([]PickupPointNode, error) {
	ctx, span := tracing.StartSpan(ctx, "platform.PickupPointsByPostal")
	defer span.End()

	if country == "" {
		country = "AR"
	}
	cacheKey := fmt.Sprintf("pickup:postal:%s:%s:%s:%d", c.session.host, postal, country, sc)
	if points, ok := c.fromCache(ctx, cacheKey); ok {
		return points, nil
	}

	q := url.Values{}
	q.Set("postalCode", postal)
	q.Set("countryCode", country)
	if sc > 0 {
		q.Set("sc", strconv.Itoa(sc))
	}

	points, err := c.pickupPoints(ctx, q)
	if err != nil {
		return nil, err
	}
	c.toCache(ctx, cacheKey, points)
	return points, nil
}

func (c *Client) pickupPoints(ctx context.Context, q url.Values) ([]PickupPointNode, error) {
	path := "/api/checkout/pub/pickup-points?" + q.Encode()
	status, body, err := c.get(ctx, path)
	if err != nil {
		return nil, err
	}
	if status != 200 {
		return nil, &Error{Status: status, RawBody: string(body)}
	}

	var points []PickupPointNode
	if err := json.Unmarshal(body, &points); err != nil {
		return nil, fmt.Errorf("failed to parse pickup points response: %w", err)
	}
	return points, nil
}

func (c *Client) fromCache(ctx context.Context, key string) ([]PickupPointNode, bool) {
	if c.cache == nil {
		return nil, false
	}
	raw, err := c.cache.Get(ctx, key)
	if err != nil {
		return nil, false
	}
	var points []PickupPointNode
	if err := json.Unmarshal(raw, &points); err != nil {
		return nil, false
	}
	return points, true
}

func (c *Client) toCache(ctx context.Context, key string, points []PickupPointNode) {
	if c.cache == nil {
		return
	}
	raw, err := json.Marshal(points)
	if err != nil {
		return
	}
	_ = c.cache.Set(ctx, key, raw, 5*time.Minute)
}

// RegionSellers looks up the sellers serving a postal code's region, for
// delivery. No pipeline component in this module calls it.
func (c *Client) RegionSellers(ctx context.Context, postal, country string, sc int) ([]RegionSellerNode, error) {
	ctx, span := tracing.StartSpan(ctx, "platform.RegionSellers")
	defer span.End()

	if country == "" {
		country = "AR"
	}
	q := url.Values{}
	q.Set("country", country)
	q.Set("postalCode", postal)
	if sc > 0 {
		q.Set("sc", strconv.Itoa(sc))
	}

	path := "/api/checkout/pub/regions?" + q.Encode()
	status, body, err := c.get(ctx, path)
	if err != nil {
		return nil, err
	}
	if status != 200 {
		return nil, &Error{Status: status, RawBody: string(body)}
	}

	var sellers []RegionSellerNode
	if err := json.Unmarshal(body, &sellers); err != nil {
		return nil, fmt.Errorf("failed to parse region sellers response: %w", err)
	}
	return sellers, nil
}

// SimulatePickup shapes a cart simulation as a pickup-in-point reservation
// and returns the parsed response, or a *Error on failure. 400 with a
// recognizable operationNotAuthorized body is returned as a *Error too —
// the caller (the Prober) is responsible for classifying it as semantic
// unavailability rather than a true failure.
func (c *Client) SimulatePickup(ctx context.Context, sku, seller string, sc int, country, postal, pickupID string) (*SimulationResponse, error) {
	ctx, span := tracing.StartSpan(ctx, "platform.SimulatePickup")
	defer span.End()

	if country == "" {
		country = "AR"
	}
	body := SimulationRequest{
		Items:      []SimulationItem{{ID: sku, Quantity: 1, Seller: seller}},
		Country:    country,
		PostalCode: postal,
		LogisticsInfo: []SimulationLogistics{{
			ItemIndex:               0,
			SelectedSLA:             "pickup-in-point",
			SelectedDeliveryChannel: "pickup-in-point",
			AddressID:               pickupID,
		}},
	}

	return c.simulate(ctx, sc, body)
}

// SimulateDelivery is the home-delivery counterpart of SimulatePickup. No
// pipeline component in this module calls it: stores without a mapped
// pickup point are left out of the probe work set.
func (c *Client) SimulateDelivery(ctx context.Context, sku, seller string, sc int, country, postal string, qty int) (*SimulationResponse, error) {
	ctx, span := tracing.StartSpan(ctx, "platform.SimulateDelivery")
	defer span.End()

	if country == "" {
		country = "AR"
	}
	if qty <= 0 {
		qty = 1
	}
	body := SimulationRequest{
		Items:      []SimulationItem{{ID: sku, Quantity: qty, Seller: seller}},
		Country:    country,
		PostalCode: postal,
		LogisticsInfo: []SimulationLogistics{{
			ItemIndex:               0,
			SelectedSLA:             "Normal",
			SelectedDeliveryChannel: "delivery",
		}},
	}

	return c.simulate(ctx, sc, body)
}

func (c *Client) simulate(ctx context.Context, sc int, body SimulationRequest) (*SimulationResponse, error) {
	path := "/api/checkout/pub/orderForms/simulation"
	if sc > 0 {
		path += fmt.Sprintf("?sc=%d", sc)
	}

	status, respBody, err := c.post(ctx, path, body)
	if err != nil {
		return nil, err
	}

	if status != 200 && status != 206 {
		return nil, &Error{Status: status, RawBody: string(respBody)}
	}

	var sim SimulationResponse
	if err := json.Unmarshal(respBody, &sim); err != nil {
		return nil, fmt.Errorf("failed to parse simulation response: %w", err)
	}
	return &sim, nil
}
