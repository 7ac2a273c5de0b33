// Package catalogsync walks a retailer's category tree and product search
// feed, upserting categories, products, SKUs, sellers, and category links
// keyed by (retailer host, external id).
package catalogsync

import (
	"context"
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/adeco-retail/vtexwatch/internal/domain"
	"github.com/adeco-retail/vtexwatch/internal/platform"
	"github.com/adeco-retail/vtexwatch/pkg/audit"
	"github.com/adeco-retail/vtexwatch/pkg/logging"
)

// Syncer runs Catalog Sync for a single retailer host.
type Syncer struct {
	client      *platform.Client
	categories  domain.CategoryRepository
	products    domain.ProductRepository
	skus        domain.SkuRepository
	sellers     domain.SellerRepository
	offers      domain.OfferRepository
	audit       *audit.AuditService
	log         logging.Logger
}

// NewSyncer wires one Catalog Sync instance over the given repositories and
// platform client. auditSvc may be nil to skip audit logging; otherwise a
// create entry is logged on every product upsert, new row or not.
func NewSyncer(
	client *platform.Client,
	categories domain.CategoryRepository,
	products domain.ProductRepository,
	skus domain.SkuRepository,
	sellers domain.SellerRepository,
	offers domain.OfferRepository,
	auditSvc *audit.AuditService,
	log logging.Logger,
) *Syncer {
	return &Syncer{
		client:     client,
		categories: categories,
		products:   products,
		skus:       skus,
		sellers:    sellers,
		offers:     offers,
		audit:      auditSvc,
		log:        log,
	}
}

// SyncCategories fetches the tree, flattens it via DFS preserving parent
// external ids, upserts each node, then resolves parentDbId in a second
// pass once every node has a db id. Returns the count of nodes seen.
func (s *Syncer) SyncCategories(ctx context.Context, host string, depth int) (int, error) {
	if depth <= 0 {
		depth = 50
	}

	tree, err := s.client.CategoryTree(ctx, depth)
	if err != nil {
		return 0, err
	}

	flat := flattenCategories(tree, 0)

	dbIDByExternal := make(map[int64]int64, len(flat))
	for _, node := range flat {
		dbID, err := s.categories.Upsert(ctx, domain.Category{
			Host:             host,
			ExternalID:       node.id,
			Name:             node.name,
			ParentExternalID: node.parentID,
		})
		if err != nil {
			s.log.Error("failed to upsert category", logging.String("host", host), logging.Int64("external_id", node.id), logging.Error(err))
			continue
		}
		dbIDByExternal[node.id] = dbID
	}

	for _, node := range flat {
		if node.parentID == 0 {
			continue
		}
		dbID, ok := dbIDByExternal[node.id]
		if !ok {
			continue
		}
		parentDbID, ok := dbIDByExternal[node.parentID]
		if !ok {
			continue
		}
		if err := s.categories.UpdateParentDbID(ctx, dbID, parentDbID); err != nil {
			s.log.Error("failed to resolve category parent", logging.Int64("db_id", dbID), logging.Error(err))
		}
	}

	return len(flat), nil
}

type flatCategory struct {
	id       int64
	name     string
	parentID int64
}

func flattenCategories(nodes []platform.CategoryNode, parentID int64) []flatCategory {
	var out []flatCategory
	for _, n := range nodes {
		out = append(out, flatCategory{id: n.ID, name: n.Name, parentID: parentID})
		out = append(out, flattenCategories(n.Children, n.ID)...)
	}
	return out
}

// SyncProducts pages through Platform Client's SearchByCategory for every
// category known for host (or just categoryID, if given), upserting each
// product node it sees. Returns the count of product nodes processed.
func (s *Syncer) SyncProducts(ctx context.Context, host string, categoryID *int64, pageSize int, maxPages *int) (int, error) {
	if pageSize <= 0 {
		pageSize = platform.PageStep
	}

	var categoryIDs []int64
	if categoryID != nil {
		categoryIDs = []int64{*categoryID}
	} else {
		cats, err := s.categories.ListByHost(ctx, host)
		if err != nil {
			return 0, err
		}
		for _, c := range cats {
			categoryIDs = append(categoryIDs, c.ExternalID)
		}
	}

	seen := 0
	for _, catID := range categoryIDs {
		n, err := s.syncCategoryProducts(ctx, host, catID, pageSize, maxPages)
		if err != nil {
			s.log.Error("failed to sync category products", logging.String("host", host), logging.Int64("category_id", catID), logging.Error(err))
			continue
		}
		seen += n
	}
	return seen, nil
}

func (s *Syncer) syncCategoryProducts(ctx context.Context, host string, categoryID int64, pageSize int, maxPages *int) (int, error) {
	seen := 0
	from := 0
	page := 0
	for {
		if maxPages != nil && page >= *maxPages {
			break
		}
		to := from + pageSize - 1

		products, _, err := s.client.SearchByCategory(ctx, categoryID, from, to, 0)
		if err != nil {
			return seen, err
		}

		for _, p := range products {
			if err := s.UpsertProductNode(ctx, host, p); err != nil {
				s.log.Error("failed to upsert product", logging.String("host", host), logging.String("product_id", p.ProductID), logging.Error(err))
			}
			seen++
		}

		if len(products) < pageSize {
			break
		}
		from += pageSize
		page++
	}
	return seen, nil
}

// UpsertProductNode is the shared upsert path used by Catalog Sync and
// Targeted Discovery: upsert Product by (host, productId), replace its
// category links, upsert each SKU and its sellers, and append an offer
// snapshot when a commercial offer block is present.
func (s *Syncer) UpsertProductNode(ctx context.Context, host string, p platform.ProductNode) error {
	externalID, err := strconv.ParseInt(p.ProductID, 10, 64)
	if err != nil || externalID <= 0 {
		return nil
	}

	var brandID int64
	if p.BrandID != "" {
		brandID, _ = strconv.ParseInt(p.BrandID, 10, 64)
	}

	// Re-marshals the fields this package parses out of the product node
	// rather than the literal upstream bytes, since Platform Client already
	// decodes the search response before this method sees it.
	rawBytes, err := json.Marshal(p)
	raw := ""
	if err == nil {
		raw = string(rawBytes)
	}

	productDbID, err := s.products.Upsert(ctx, domain.Product{
		Host:        host,
		ExternalID:  externalID,
		Name:        p.ProductName,
		Brand:       p.Brand,
		BrandID:     brandID,
		LinkText:    p.LinkText,
		Link:        p.Link,
		CacheID:     p.CacheID,
		ReleaseDate: parseReleaseDate(p.ReleaseDate),
		RawJSON:     raw,
	})
	if err != nil {
		return err
	}

	if s.audit != nil {
		_ = s.audit.LogCreate(ctx, "Product", p.ProductID, nil, map[string]interface{}{"host": host})
	}

	categoryExternalIDs := make([]int64, 0, len(p.CategoriesIds))
	for _, raw := range p.CategoriesIds {
		trimmed := strings.Trim(raw, "/")
		if trimmed == "" {
			continue
		}
		// categoriesIds can carry a full "/1/2/3/" ancestor path; only the
		// leaf segment is this product's direct category.
		segments := strings.Split(trimmed, "/")
		leaf := segments[len(segments)-1]
		id, err := strconv.ParseInt(leaf, 10, 64)
		if err != nil {
			continue
		}
		categoryExternalIDs = append(categoryExternalIDs, id)
	}
	if err := s.products.ReplaceCategoryLinks(ctx, productDbID, categoryExternalIDs); err != nil {
		s.log.Error("failed to replace category links", logging.Int64("product_db_id", productDbID), logging.Error(err))
	}

	for _, item := range p.Items {
		if item.ItemID == "" {
			continue
		}
		if err := s.upsertSku(ctx, host, productDbID, item); err != nil {
			s.log.Error("failed to upsert sku", logging.String("item_id", item.ItemID), logging.Error(err))
		}
	}

	return nil
}

func (s *Syncer) upsertSku(ctx context.Context, host string, productDbID int64, item platform.SkuNode) error {
	skuDbID, err := s.skus.Upsert(ctx, domain.Sku{
		Host:            host,
		ItemID:          item.ItemID,
		ProductDbID:     productDbID,
		EAN:             item.EAN,
		DisplayName:     item.NameComplete,
		MeasurementUnit: item.MeasurementUnit,
		UnitMultiplier:  parseUnitMultiplier(item.UnitMultiplier),
	})
	if err != nil {
		return err
	}

	for _, seller := range item.Sellers {
		if seller.SellerID == "" {
			continue
		}
		if err := s.sellers.Upsert(ctx, domain.Seller{
			SkuDbID:       skuDbID,
			SellerID:      seller.SellerID,
			DisplayName:   seller.SellerName,
			SellerDefault: seller.SellerDefault,
		}); err != nil {
			s.log.Error("failed to upsert seller", logging.String("seller_id", seller.SellerID), logging.Error(err))
			continue
		}

		if seller.CommercialOffer == nil {
			continue
		}
		offer := seller.CommercialOffer
		if err := s.offers.Append(ctx, domain.CommercialOffer{
			SkuDbID:              skuDbID,
			SellerID:             seller.SellerID,
			Price:                decimal.NewFromFloat(offer.Price),
			ListPrice:            decimal.NewFromFloat(offer.ListPrice),
			SpotPrice:            decimal.NewFromFloat(offer.SpotPrice),
			PriceWithoutDiscount: decimal.NewFromFloat(offer.PriceWithoutDiscount),
			AvailableQuantity:    offer.AvailableQuantity,
			CapturedAt:           time.Now().UTC(),
		}); err != nil {
			s.log.Error("failed to append offer", logging.String("seller_id", seller.SellerID), logging.Error(err))
		}
	}

	return nil
}

// parseReleaseDate accepts ISO-8601 or Unix millis, per spec.md §4.3.
func parseReleaseDate(raw string) time.Time {
	if raw == "" {
		return time.Time{}
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t.UTC()
	}
	if ms, err := strconv.ParseInt(raw, 10, 64); err == nil {
		return time.UnixMilli(ms).UTC()
	}
	return time.Time{}
}

// parseUnitMultiplier defaults to 1 when absent or unparseable.
func parseUnitMultiplier(raw interface{}) decimal.Decimal {
	switch v := raw.(type) {
	case float64:
		return decimal.NewFromFloat(v)
	case string:
		d, err := decimal.NewFromString(v)
		if err != nil {
			return decimal.NewFromInt(1)
		}
		return d
	default:
		return decimal.NewFromInt(1)
	}
}
