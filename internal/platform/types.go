package platform

// CategoryNode is one node of the platform's category tree response.
type CategoryNode struct {
	ID       int64          `json:"id"`
	Name     string         `json:"name"`
	Children []CategoryNode `json:"children"`
}

// ProductNode is one element of a product search response. Fields beyond
// what Catalog Sync needs are intentionally omitted; RawJSON (captured by
// the caller from the raw response body) carries the rest for forensic
// replay.
type ProductNode struct {
	ProductID     string     `json:"productId"`
	ProductName   string     `json:"productName"`
	Brand         string     `json:"brand"`
	BrandID       string     `json:"brandId"`
	LinkText      string     `json:"linkText"`
	Link          string     `json:"link"`
	CacheID       string     `json:"cacheId"`
	ReleaseDate   string     `json:"releaseDate"`
	CategoriesIds []string   `json:"categoriesIds"`
	Items         []SkuNode  `json:"items"`
}

// SkuNode is one SKU (platform "item") within a ProductNode.
type SkuNode struct {
	ItemID          string       `json:"itemId"`
	EAN             string       `json:"ean"`
	NameComplete    string       `json:"nameComplete"`
	MeasurementUnit string       `json:"measurementUnit"`
	UnitMultiplier  interface{}  `json:"unitMultiplier"`
	Sellers         []SellerNode `json:"sellers"`
}

// SellerNode carries a seller's current commercial offer, if any.
type SellerNode struct {
	SellerID         string           `json:"sellerId"`
	SellerName       string           `json:"sellerName"`
	SellerDefault    bool             `json:"sellerDefault"`
	CommercialOffer  *CommercialOffer `json:"commertialOffer"`
}

// CommercialOffer mirrors the platform's offer block (note the upstream's
// own misspelling in the JSON key "commertialOffer", which we do not carry
// into our own field names).
type CommercialOffer struct {
	Price                float64 `json:"Price"`
	ListPrice            float64 `json:"ListPrice"`
	SpotPrice            float64 `json:"SpotPrice"`
	PriceWithoutDiscount float64 `json:"PriceWithoutDiscount"`
	AvailableQuantity    int     `json:"AvailableQuantity"`
}

// PickupPointNode is one result of a pickup-point discovery call.
type PickupPointNode struct {
	ID              string    `json:"id"`
	Name            string    `json:"name"`
	GeoCoordinates  []float64 `json:"geoCoordinates"`
}

// RegionSellerNode is one result of the region-sellers fallback lookup.
type RegionSellerNode struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// SimulationRequest is the cart-simulation body §4.6 shapes for a
// pickup-in-point reservation.
type SimulationRequest struct {
	Items          []SimulationItem     `json:"items"`
	Country        string               `json:"country"`
	PostalCode     string               `json:"postalCode"`
	LogisticsInfo  []SimulationLogistics `json:"logisticsInfo"`
}

type SimulationItem struct {
	ID       string `json:"id"`
	Quantity int    `json:"quantity"`
	Seller   string `json:"seller"`
}

type SimulationLogistics struct {
	ItemIndex               int    `json:"itemIndex"`
	SelectedSLA             string `json:"selectedSla"`
	SelectedDeliveryChannel string `json:"selectedDeliveryChannel"`
	AddressID               string `json:"addressId,omitempty"`
}

// SimulationResponse is the subset of the platform's simulation response
// the Prober reads.
type SimulationResponse struct {
	Items                []SimulationResponseItem `json:"items"`
	LogisticsInfo        []SimulationResponseSLA  `json:"logisticsInfo"`
	StorePreferencesData *StorePreferencesData    `json:"storePreferencesData"`
}

type SimulationResponseItem struct {
	ID            string  `json:"id"`
	Quantity      int     `json:"quantity"`
	SellingPrice  float64 `json:"sellingPrice"`
	ListPrice     float64 `json:"listPrice"`
	Availability  string  `json:"availability"`
}

type SimulationResponseSLA struct {
	ItemIndex int   `json:"itemIndex"`
	Slas      []SLA `json:"slas"`
}

type SLA struct {
	ID                         string `json:"id"`
	AvailableDeliveryWindows   []interface{} `json:"availableDeliveryWindows"`
}

type StorePreferencesData struct {
	CurrencyCode string `json:"currencyCode"`
}
