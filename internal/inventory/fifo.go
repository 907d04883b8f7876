// Package inventory implements the batch ledger behind every stock
// item. Each purchase opens a batch at its own unit cost; consumption
// drains batches oldest first so realized cost follows FIFO. The
// item's flat Cost and Stock fields are always recomputed from the
// batch list after a mutation.
package inventory

import (
	"sort"
	"time"

	"jardinerp/backend/internal/accounting"
	"jardinerp/backend/internal/domain"
	"jardinerp/backend/internal/xid"
)

// Normalize guarantees the item carries a batch ledger. Items that
// predate batch tracking get a single synthetic batch at the epoch
// holding their current stock at their current average cost, so FIFO
// consumption drains legacy stock before anything purchased later.
func Normalize(item *domain.InventoryItem) {
	if len(item.Batches) == 0 && item.Stock > 0 {
		item.Batches = []domain.Batch{{
			ID:    xid.New("batch-legacy"),
			Date:  time.Unix(0, 0).UTC(),
			Cost:  item.Cost,
			Stock: item.Stock,
		}}
	}
	sortBatches(item)
}

func sortBatches(item *domain.InventoryItem) {
	sort.SliceStable(item.Batches, func(i, j int) bool {
		return item.Batches[i].Date.Before(item.Batches[j].Date)
	})
}

// Recompute refreshes the item's derived Stock and weighted-average
// Cost from its batches. Callers run Normalize first, so an empty
// batch list means the stock really is gone; the last average cost is
// kept for display.
func Recompute(item *domain.InventoryItem) {
	if len(item.Batches) == 0 {
		item.Stock = 0
		return
	}
	var stock, value float64
	for _, b := range item.Batches {
		stock += b.Stock
		value += b.Stock * b.Cost
	}
	item.Stock = stock
	if stock > 0 {
		item.Cost = accounting.Round2(value / stock)
	}
}

// AddBatch records a purchase: a new batch at the given unit cost.
func AddBatch(item *domain.InventoryItem, qty, unitCost float64, date time.Time) {
	if qty <= 0 {
		return
	}
	Normalize(item)
	item.Batches = append(item.Batches, domain.Batch{
		ID:    xid.New("batch"),
		Date:  date,
		Cost:  unitCost,
		Stock: qty,
	})
	sortBatches(item)
	Recompute(item)
}

// Consume drains qty units oldest batch first and returns the realized
// cost. If the batches cannot cover the quantity, the shortfall is
// priced at the item's weighted-average cost and stock bottoms out at
// zero; it never goes negative.
func Consume(item *domain.InventoryItem, qty float64) float64 {
	if qty <= 0 {
		return 0
	}
	Normalize(item)
	avg := item.Cost
	remaining := qty
	var cost float64
	for i := range item.Batches {
		if remaining <= 0 {
			break
		}
		b := &item.Batches[i]
		if b.Stock <= 0 {
			continue
		}
		take := b.Stock
		if take > remaining {
			take = remaining
		}
		cost += take * b.Cost
		b.Stock -= take
		remaining -= take
	}
	if remaining > 0 {
		cost += remaining * avg
	}
	compact(item)
	Recompute(item)
	return accounting.Round2(cost)
}

// Simulate prices a consumption without mutating the item.
func Simulate(item *domain.InventoryItem, qty float64) float64 {
	copied := *item
	copied.Batches = append([]domain.Batch(nil), item.Batches...)
	return Consume(&copied, qty)
}

// Refund reinstates qty units at unitCost, dated asOf, so a reversed
// consumption puts the stock back where FIFO would have drawn it from.
func Refund(item *domain.InventoryItem, qty, unitCost float64, asOf time.Time) {
	if qty <= 0 {
		return
	}
	Normalize(item)
	item.Batches = append(item.Batches, domain.Batch{
		ID:    xid.New("batch-refund"),
		Date:  asOf,
		Cost:  unitCost,
		Stock: qty,
	})
	sortBatches(item)
	Recompute(item)
}

// RemoveNewest trims qty units starting from the newest batch. Used
// when a purchase is reversed: the goods that arrived last leave first.
func RemoveNewest(item *domain.InventoryItem, qty float64) {
	if qty <= 0 {
		return
	}
	Normalize(item)
	remaining := qty
	for i := len(item.Batches) - 1; i >= 0 && remaining > 0; i-- {
		b := &item.Batches[i]
		if b.Stock <= 0 {
			continue
		}
		take := b.Stock
		if take > remaining {
			take = remaining
		}
		b.Stock -= take
		remaining -= take
	}
	compact(item)
	Recompute(item)
}

// compact drops exhausted batches.
func compact(item *domain.InventoryItem) {
	kept := item.Batches[:0]
	for _, b := range item.Batches {
		if b.Stock > 0 {
			kept = append(kept, b)
		}
	}
	item.Batches = kept
}
