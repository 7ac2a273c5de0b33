// Package discovery implements Targeted Discovery: narrower variants of
// Catalog Sync driven by a tracked-product list, scoped to products of
// interest rather than walking the whole category tree.
package discovery

import (
	"context"
	"fmt"
	"strings"

	"github.com/adeco-retail/vtexwatch/internal/catalogsync"
	"github.com/adeco-retail/vtexwatch/internal/domain"
	"github.com/adeco-retail/vtexwatch/internal/platform"
	"github.com/adeco-retail/vtexwatch/pkg/logging"
)

// BrandPrefixLength is the number of leading EAN digits Discovery groups
// tracked products by for the brand-prefix variant.
const BrandPrefixLength = 7

// Discovery runs the two Targeted Discovery variants for a single host.
type Discovery struct {
	client  *platform.Client
	syncer  *catalogsync.Syncer
	tracked domain.TrackedProductRepository
	sweeps  domain.SweepLogRepository
	log     logging.Logger
}

// New wires a Discovery instance.
func New(client *platform.Client, syncer *catalogsync.Syncer, tracked domain.TrackedProductRepository, sweeps domain.SweepLogRepository, log logging.Logger) *Discovery {
	return &Discovery{client: client, syncer: syncer, tracked: tracked, sweeps: sweeps, log: log}
}

// ByEAN queries Platform Client's fulltext search once per tracked EAN and
// passes through any matching product node to the shared upsert path. Runs
// in the background; it does not block the caller, per spec.md §4.4.
func (d *Discovery) ByEAN(ctx context.Context, host string) {
	go d.runByEAN(ctx, host)
}

// RunByEAN is the synchronous counterpart ByEAN backs onto, used by the
// Master Orchestrator where discovery must complete before the next phase
// starts.
func (d *Discovery) RunByEAN(ctx context.Context, host string) {
	d.runByEAN(ctx, host)
}

func (d *Discovery) runByEAN(ctx context.Context, host string) {
	log, err := d.openSweep(ctx, host, domain.SweepTypeDiscovery)
	if err != nil {
		return
	}

	tracked, err := d.tracked.ListTracked(ctx)
	if err != nil {
		d.closeSweep(ctx, log.ID, domain.SweepStatusFailed, fmt.Sprintf("failed to list tracked products: %v", err))
		return
	}

	matched := 0
	for _, tp := range tracked {
		if !tp.Track || tp.EAN == "" {
			continue
		}
		products, _, err := d.client.SearchByFulltext(ctx, tp.EAN, 0, platform.PageStep-1)
		if err != nil {
			d.log.Warn("ean search failed", logging.String("host", host), logging.String("ean", tp.EAN), logging.Error(err))
			continue
		}

		for _, p := range products {
			if !hasEAN(p, tp.EAN) {
				continue
			}
			if err := d.syncer.UpsertProductNode(ctx, host, p); err != nil {
				d.log.Error("failed to upsert discovered product", logging.String("ean", tp.EAN), logging.Error(err))
				continue
			}
			matched++
		}
	}

	d.closeSweep(ctx, log.ID, domain.SweepStatusSuccess, fmt.Sprintf("matched %d products across %d tracked eans", matched, len(tracked)))
}

// ByBrandPrefix groups tracked EANs by their leading BrandPrefixLength
// digits and issues one fulltext query per prefix, filtering results whose
// SKU EAN starts with that prefix. Runs in the background.
func (d *Discovery) ByBrandPrefix(ctx context.Context, host string) {
	go d.runByBrandPrefix(ctx, host)
}

// RunByBrandPrefix is the synchronous counterpart of ByBrandPrefix.
func (d *Discovery) RunByBrandPrefix(ctx context.Context, host string) {
	d.runByBrandPrefix(ctx, host)
}

func (d *Discovery) runByBrandPrefix(ctx context.Context, host string) {
	log, err := d.openSweep(ctx, host, domain.SweepTypeDiscovery)
	if err != nil {
		return
	}

	tracked, err := d.tracked.ListTracked(ctx)
	if err != nil {
		d.closeSweep(ctx, log.ID, domain.SweepStatusFailed, fmt.Sprintf("failed to list tracked products: %v", err))
		return
	}

	prefixes := make(map[string]struct{})
	for _, tp := range tracked {
		if !tp.Track || len(tp.EAN) < BrandPrefixLength {
			continue
		}
		prefixes[tp.EAN[:BrandPrefixLength]] = struct{}{}
	}

	matched := 0
	for prefix := range prefixes {
		products, _, err := d.client.SearchByFulltext(ctx, prefix, 0, platform.PageStep-1)
		if err != nil {
			d.log.Warn("brand prefix search failed", logging.String("host", host), logging.String("prefix", prefix), logging.Error(err))
			continue
		}

		for _, p := range products {
			if !hasEANPrefix(p, prefix) {
				continue
			}
			if err := d.syncer.UpsertProductNode(ctx, host, p); err != nil {
				d.log.Error("failed to upsert discovered product", logging.String("prefix", prefix), logging.Error(err))
				continue
			}
			matched++
		}
	}

	d.closeSweep(ctx, log.ID, domain.SweepStatusSuccess, fmt.Sprintf("matched %d products across %d brand prefixes", matched, len(prefixes)))
}

func hasEAN(p platform.ProductNode, ean string) bool {
	for _, sku := range p.Items {
		if sku.EAN == ean {
			return true
		}
	}
	return false
}

func hasEANPrefix(p platform.ProductNode, prefix string) bool {
	for _, sku := range p.Items {
		if strings.HasPrefix(sku.EAN, prefix) {
			return true
		}
	}
	return false
}

func (d *Discovery) openSweep(ctx context.Context, host string, kind domain.SweepType) (*domain.SweepLog, error) {
	log, err := d.sweeps.Open(ctx, host, kind)
	if err != nil {
		d.log.Error("failed to open sweep log", logging.String("host", host), logging.Error(err))
		return nil, err
	}
	return log, nil
}

func (d *Discovery) closeSweep(ctx context.Context, id string, status domain.SweepStatus, notes string) {
	if err := d.sweeps.Close(ctx, id, status, notes); err != nil {
		d.log.Error("failed to close sweep log", logging.String("sweep_id", id), logging.Error(err))
	}
}
