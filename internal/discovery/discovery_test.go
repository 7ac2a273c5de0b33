package discovery

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/adeco-retail/vtexwatch/internal/platform"
)

func productWithEANs(eans ...string) platform.ProductNode {
	items := make([]platform.SkuNode, len(eans))
	for i, ean := range eans {
		items[i] = platform.SkuNode{EAN: ean}
	}
	return platform.ProductNode{Items: items}
}

func TestHasEAN_Match(t *testing.T) {
	p := productWithEANs("7790001", "7790002")
	assert.True(t, hasEAN(p, "7790002"))
}

func TestHasEAN_NoMatch(t *testing.T) {
	p := productWithEANs("7790001")
	assert.False(t, hasEAN(p, "7790099"))
}

func TestHasEANPrefix_Match(t *testing.T) {
	p := productWithEANs("7790001234")
	assert.True(t, hasEANPrefix(p, "7790001"))
}

func TestHasEANPrefix_NoMatch(t *testing.T) {
	p := productWithEANs("7780001234")
	assert.False(t, hasEANPrefix(p, "7790001"))
}

func TestHasEANPrefix_EmptyItems(t *testing.T) {
	p := platform.ProductNode{}
	assert.False(t, hasEANPrefix(p, "779"))
	assert.False(t, hasEAN(p, "779"))
}
