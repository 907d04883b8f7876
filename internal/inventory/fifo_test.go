package inventory

import (
	"math"
	"testing"
	"time"

	"jardinerp/backend/internal/domain"
)

func day(n int) time.Time {
	return time.Date(2026, 1, n, 0, 0, 0, 0, time.UTC)
}

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 0.01
}

func TestConsumeDrainsOldestFirst(t *testing.T) {
	item := &domain.InventoryItem{ID: "inv-1", Name: "Harina"}
	AddBatch(item, 10, 2.00, day(1))
	AddBatch(item, 10, 3.00, day(2))

	cost := Consume(item, 12)
	if !almostEqual(cost, 26.00) { // 10*2.00 + 2*3.00
		t.Fatalf("expected cost 26.00, got %.2f", cost)
	}
	if !almostEqual(item.Stock, 8) {
		t.Fatalf("expected stock 8, got %.2f", item.Stock)
	}
	if len(item.Batches) != 1 || !almostEqual(item.Batches[0].Cost, 3.00) {
		t.Fatalf("expected a single 3.00 batch left, got %+v", item.Batches)
	}
}

func TestConsumeExactBatchBoundary(t *testing.T) {
	item := &domain.InventoryItem{ID: "inv-1", Name: "Harina"}
	AddBatch(item, 5, 1.50, day(1))
	AddBatch(item, 5, 2.50, day(2))

	cost := Consume(item, 5)
	if !almostEqual(cost, 7.50) {
		t.Fatalf("expected cost 7.50, got %.2f", cost)
	}
	if len(item.Batches) != 1 {
		t.Fatalf("exhausted batch should be dropped, got %d batches", len(item.Batches))
	}
}

func TestConsumeShortfallUsesAverageCost(t *testing.T) {
	item := &domain.InventoryItem{ID: "inv-1", Name: "Harina"}
	AddBatch(item, 4, 2.00, day(1))
	AddBatch(item, 4, 4.00, day(2))
	// avg cost is 3.00

	cost := Consume(item, 10)
	if !almostEqual(cost, 30.00) { // 4*2 + 4*4 + 2*3
		t.Fatalf("expected cost 30.00, got %.2f", cost)
	}
	if !almostEqual(item.Stock, 0) {
		t.Fatalf("stock must bottom out at zero, got %.2f", item.Stock)
	}
	if len(item.Batches) != 0 {
		t.Fatalf("no batches may survive a full drain, got %+v", item.Batches)
	}
}

func TestNormalizeSynthesizesLegacyBatch(t *testing.T) {
	item := &domain.InventoryItem{ID: "inv-1", Name: "Azucar", Cost: 1.20, Stock: 15}
	Normalize(item)
	if len(item.Batches) != 1 {
		t.Fatalf("expected one legacy batch, got %d", len(item.Batches))
	}
	b := item.Batches[0]
	if !b.Date.Equal(time.Unix(0, 0).UTC()) {
		t.Fatalf("legacy batch must sit at the epoch, got %v", b.Date)
	}
	if !almostEqual(b.Cost, 1.20) || !almostEqual(b.Stock, 15) {
		t.Fatalf("legacy batch must carry current cost and stock, got %+v", b)
	}

	// Legacy stock drains before anything purchased afterwards.
	AddBatch(item, 10, 2.00, day(5))
	cost := Consume(item, 15)
	if !almostEqual(cost, 18.00) {
		t.Fatalf("expected cost 18.00, got %.2f", cost)
	}
	if !almostEqual(item.Batches[0].Cost, 2.00) {
		t.Fatalf("expected only the 2.00 batch left, got %+v", item.Batches)
	}
}

func TestRecomputeWeightedAverage(t *testing.T) {
	item := &domain.InventoryItem{ID: "inv-1", Name: "Cafe"}
	AddBatch(item, 10, 1.00, day(1))
	AddBatch(item, 30, 2.00, day(2))
	if !almostEqual(item.Cost, 1.75) { // (10*1 + 30*2) / 40
		t.Fatalf("expected avg cost 1.75, got %.2f", item.Cost)
	}
	if !almostEqual(item.Stock, 40) {
		t.Fatalf("expected stock 40, got %.2f", item.Stock)
	}
}

func TestSimulateDoesNotMutate(t *testing.T) {
	item := &domain.InventoryItem{ID: "inv-1", Name: "Cafe"}
	AddBatch(item, 10, 1.00, day(1))
	AddBatch(item, 10, 2.00, day(2))

	cost := Simulate(item, 15)
	if !almostEqual(cost, 20.00) {
		t.Fatalf("expected simulated cost 20.00, got %.2f", cost)
	}
	if !almostEqual(item.Stock, 20) || len(item.Batches) != 2 {
		t.Fatalf("simulate mutated the item: stock %.2f batches %d", item.Stock, len(item.Batches))
	}
}

func TestRefundRestoresFIFOPosition(t *testing.T) {
	item := &domain.InventoryItem{ID: "inv-1", Name: "Cafe"}
	AddBatch(item, 10, 2.00, day(1))
	AddBatch(item, 10, 3.00, day(5))
	Consume(item, 10) // drains the 2.00 batch

	Refund(item, 10, 2.00, day(1))
	cost := Consume(item, 10)
	if !almostEqual(cost, 20.00) {
		t.Fatalf("refunded stock should drain first at 2.00, got cost %.2f", cost)
	}
}

func TestRemoveNewestTrimsFromTheBack(t *testing.T) {
	item := &domain.InventoryItem{ID: "inv-1", Name: "Cafe"}
	AddBatch(item, 10, 2.00, day(1))
	AddBatch(item, 10, 3.00, day(2))

	RemoveNewest(item, 12)
	if !almostEqual(item.Stock, 8) {
		t.Fatalf("expected stock 8, got %.2f", item.Stock)
	}
	if len(item.Batches) != 1 || !almostEqual(item.Batches[0].Cost, 2.00) {
		t.Fatalf("expected the oldest batch to survive, got %+v", item.Batches)
	}
}

func TestConsumeZeroIsNoop(t *testing.T) {
	item := &domain.InventoryItem{ID: "inv-1", Name: "Cafe"}
	AddBatch(item, 10, 2.00, day(1))
	if cost := Consume(item, 0); cost != 0 {
		t.Fatalf("expected zero cost, got %.2f", cost)
	}
	if !almostEqual(item.Stock, 10) {
		t.Fatalf("zero consume must not move stock, got %.2f", item.Stock)
	}
}
