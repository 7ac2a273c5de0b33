package orchestrator

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/adeco-retail/vtexwatch/internal/domain"
)

func workItems(storeID int64, n int) []domain.WorkItem {
	items := make([]domain.WorkItem, n)
	for i := range items {
		items[i] = domain.WorkItem{StoreID: storeID, SkuItemID: "sku"}
	}
	return items
}

func TestPartition_GroupsByStoreAndChunks(t *testing.T) {
	work := append(append([]domain.WorkItem{}, workItems(1, 120)...), workItems(2, 30)...)

	batches := partition(work, 20, 50)

	var store1, store2 int
	for _, b := range batches {
		switch b.StoreID {
		case 1:
			store1 += len(b.Items)
			assert.LessOrEqual(t, len(b.Items), 50)
		case 2:
			store2 += len(b.Items)
		}
	}
	assert.Equal(t, 120, store1)
	assert.Equal(t, 30, store2)
}

func TestPartition_TailChunkMayFallBelowMinSize(t *testing.T) {
	work := workItems(1, 55)

	batches := partition(work, 20, 50)

	assert.Len(t, batches, 2)
	assert.Equal(t, 50, len(batches[0].Items))
	assert.Equal(t, 5, len(batches[1].Items))
}

func TestPartition_DefaultsMaxSizeWhenNonPositive(t *testing.T) {
	work := workItems(1, 3)

	batches := partition(work, 0, 0)

	assert.Len(t, batches, 1)
	assert.Equal(t, 3, len(batches[0].Items))
}

func TestPartition_PreservesFirstSeenStoreOrder(t *testing.T) {
	work := []domain.WorkItem{
		{StoreID: 9}, {StoreID: 3}, {StoreID: 9}, {StoreID: 1},
	}

	batches := partition(work, 1, 50)

	var order []int64
	seen := make(map[int64]bool)
	for _, b := range batches {
		if !seen[b.StoreID] {
			order = append(order, b.StoreID)
			seen[b.StoreID] = true
		}
	}
	assert.Equal(t, []int64{9, 3, 1}, order)
}

func TestPartition_Empty(t *testing.T) {
	assert.Empty(t, partition(nil, 10, 50))
}
