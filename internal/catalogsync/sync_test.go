package catalogsync

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/adeco-retail/vtexwatch/internal/platform"
)

func TestFlattenCategories_PreservesParentChildLinks(t *testing.T) {
	tree := []platform.CategoryNode{
		{ID: 1, Name: "root", Children: []platform.CategoryNode{
			{ID: 2, Name: "child-a"},
			{ID: 3, Name: "child-b", Children: []platform.CategoryNode{
				{ID: 4, Name: "grandchild"},
			}},
		}},
	}

	flat := flattenCategories(tree, 0)

	byID := make(map[int64]flatCategory)
	for _, f := range flat {
		byID[f.id] = f
	}

	assert.Len(t, flat, 4)
	assert.Equal(t, int64(0), byID[1].parentID)
	assert.Equal(t, int64(1), byID[2].parentID)
	assert.Equal(t, int64(1), byID[3].parentID)
	assert.Equal(t, int64(3), byID[4].parentID)
}

func TestFlattenCategories_Empty(t *testing.T) {
	assert.Empty(t, flattenCategories(nil, 0))
}

func TestParseReleaseDate_RFC3339(t *testing.T) {
	d := parseReleaseDate("2024-03-15T10:00:00Z")
	assert.Equal(t, 2024, d.Year())
	assert.Equal(t, time.Month(3), d.Month())
}

func TestParseReleaseDate_UnixMillis(t *testing.T) {
	d := parseReleaseDate("1700000000000")
	assert.False(t, d.IsZero())
}

func TestParseReleaseDate_Empty(t *testing.T) {
	assert.True(t, parseReleaseDate("").IsZero())
}

func TestParseReleaseDate_Unparseable(t *testing.T) {
	assert.True(t, parseReleaseDate("not-a-date").IsZero())
}

func TestParseUnitMultiplier_Float(t *testing.T) {
	assert.True(t, parseUnitMultiplier(2.5).Equal(decimal.NewFromFloat(2.5)))
}

func TestParseUnitMultiplier_String(t *testing.T) {
	assert.True(t, parseUnitMultiplier("3").Equal(decimal.NewFromInt(3)))
}

func TestParseUnitMultiplier_UnparseableStringDefaultsToOne(t *testing.T) {
	assert.True(t, parseUnitMultiplier("not-a-number").Equal(decimal.NewFromInt(1)))
}

func TestParseUnitMultiplier_NilDefaultsToOne(t *testing.T) {
	assert.True(t, parseUnitMultiplier(nil).Equal(decimal.NewFromInt(1)))
}
