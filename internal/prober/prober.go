// Package prober issues the per-(SKU, store) cart simulation that is the
// observatory's core read: the Availability Prober.
package prober

import (
	"context"

	"github.com/adeco-retail/vtexwatch/internal/domain"
	"github.com/adeco-retail/vtexwatch/internal/platform"
	"github.com/adeco-retail/vtexwatch/pkg/rules"
)

const availableStatus = "available"

// Prober issues a single cart-simulation probe and classifies the result
// into a domain.ProbeOutcome.
type Prober struct {
	client *platform.Client
	extra  *rules.RuleSet
}

// New wires a Prober. extra may be nil; when set, it runs supplementary
// semantic-unavailability classification on top of the hardcoded
// operationNotAuthorized check, which always runs first and cannot be
// disabled by a rule.
func New(client *platform.Client, extra *rules.RuleSet) *Prober {
	return &Prober{client: client, extra: extra}
}

// ProbePickup is the single-probe contract spec.md §4.6 defines.
func (p *Prober) ProbePickup(ctx context.Context, host string, sc int, sku, seller, pickupID, country, postal string) domain.ProbeOutcome {
	resp, err := p.client.SimulatePickup(ctx, sku, seller, sc, country, postal, pickupID)
	if err != nil {
		return p.classifyError(err)
	}
	return extractOutcome(resp)
}

func (p *Prober) classifyError(err error) domain.ProbeOutcome {
	perr, ok := err.(*platform.Error)
	if !ok {
		return domain.Err(domain.KindTransientNetwork, err.Error())
	}

	if perr.IsOperationNotAuthorized() || perr.IsEmptyItemsSimulation() {
		return domain.Unavailable()
	}

	if p.extra != nil {
		env := rules.BuildProbeEnv(perr.Status, nil, perr.Context)
		if matched, evalErr := p.extra.Evaluate(env); evalErr == nil && matched {
			return domain.Unavailable()
		}
	}

	return domain.Err(domain.KindParseSchema, perr.StatusBodyMessage())
}

// extractOutcome reads availability/price/list-price/stock/currency from a
// successful simulation response per spec.md §4.6's extraction rules.
func extractOutcome(resp *platform.SimulationResponse) domain.ProbeOutcome {
	if len(resp.Items) == 0 {
		return domain.Unavailable()
	}

	item := resp.Items[0]
	available := item.Availability == availableStatus
	if !available {
		return domain.Unavailable()
	}

	price := item.SellingPrice / 100
	listPrice := item.ListPrice / 100

	quantity := 0
	if len(resp.LogisticsInfo) > 0 && len(resp.LogisticsInfo[0].Slas) > 0 {
		quantity = len(resp.LogisticsInfo[0].Slas[0].AvailableDeliveryWindows)
	}

	currency := "ARS"
	if resp.StorePreferencesData != nil && resp.StorePreferencesData.CurrencyCode != "" {
		currency = resp.StorePreferencesData.CurrencyCode
	}

	return domain.Ok(true, &price, &listPrice, quantity, currency)
}
