package orchestrator

import "github.com/adeco-retail/vtexwatch/internal/domain"

// Batch is one worker's unit of dispatch: a store-homogeneous slice of work
// items, sized so one worker can reuse a single HTTP session (§4.1, §4.7
// step 2) across every probe in the batch.
type Batch struct {
	StoreID int64
	Items   []domain.WorkItem
}

// partition groups work by store, then chunks each store's items into
// batches no larger than maxSize. The last chunk of a store may fall below
// minSize; splitting further would break the per-store grouping the batch
// exists to preserve, so the tail is dispatched as-is.
func partition(work []domain.WorkItem, minSize, maxSize int) []Batch {
	if maxSize <= 0 {
		maxSize = 50
	}
	if minSize <= 0 || minSize > maxSize {
		minSize = maxSize
	}

	byStore := make(map[int64][]domain.WorkItem)
	order := make([]int64, 0)
	for _, w := range work {
		if _, ok := byStore[w.StoreID]; !ok {
			order = append(order, w.StoreID)
		}
		byStore[w.StoreID] = append(byStore[w.StoreID], w)
	}

	var batches []Batch
	for _, storeID := range order {
		items := byStore[storeID]
		for len(items) > 0 {
			size := maxSize
			if size > len(items) {
				size = len(items)
			}
			batches = append(batches, Batch{StoreID: storeID, Items: items[:size]})
			items = items[size:]
		}
	}
	return batches
}
