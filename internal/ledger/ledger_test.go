package ledger

import (
	"math"
	"testing"
	"time"

	"jardinerp/backend/internal/domain"
)

func day(n int) time.Time {
	return time.Date(2026, 3, n, 12, 0, 0, 0, time.UTC)
}

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 0.01
}

func sale(id string, ts time.Time, amount, cogs float64) domain.Transaction {
	return domain.Transaction{
		ID: id, Date: ts, Type: domain.TxSale,
		Amount: amount, COGS: cogs, Status: domain.TxStatusActive,
	}
}

func expense(id string, ts time.Time, amount float64) domain.Transaction {
	return domain.Transaction{
		ID: id, Date: ts, Type: domain.TxExpense,
		Amount: amount, Status: domain.TxStatusActive,
	}
}

func adjustment(id string, ts time.Time, kind domain.AdjustmentKind, dir domain.AdjustmentDirection, amount, cogs float64) domain.Transaction {
	return domain.Transaction{
		ID: id, Date: ts, Type: domain.TxAdjustment,
		Amount: amount, COGS: cogs, Status: domain.TxStatusActive,
		Details: &domain.TxDetails{Adjustment: &domain.AdjustmentDetails{Kind: kind, Direction: dir}},
	}
}

func TestSummarizeBasics(t *testing.T) {
	txs := []domain.Transaction{
		sale("tx-1", day(1), 100, 40),
		sale("tx-2", day(2), 50, 20),
		expense("tx-3", day(3), 30),
	}
	s := Summarize(txs, time.Time{}, time.Time{})
	if !almostEqual(s.Revenue, 150) || !almostEqual(s.CostOfGoods, 60) || !almostEqual(s.Expenses, 30) {
		t.Fatalf("unexpected summary: %+v", s)
	}
	if !almostEqual(s.GrossProfit, 90) || !almostEqual(s.NetIncome, 60) {
		t.Fatalf("unexpected derived figures: %+v", s)
	}
}

func TestSummarizeWindowIsInclusive(t *testing.T) {
	txs := []domain.Transaction{
		sale("tx-1", day(1), 10, 0),
		sale("tx-2", day(5), 20, 0),
		sale("tx-3", day(9), 40, 0),
	}
	s := Summarize(txs, day(1), day(5))
	if !almostEqual(s.Revenue, 30) {
		t.Fatalf("expected revenue 30 inside window, got %.2f", s.Revenue)
	}
}

func TestSummarizeSkipsVoidedAndContra(t *testing.T) {
	voided := sale("tx-1", day(1), 100, 40)
	voided.Status = domain.TxStatusVoided
	voided.VoidingTxID = "tx-2"
	contra := adjustment("tx-2", day(2), domain.AdjustmentCash, domain.DirectionLoss, 100, 0)
	contra.VoidingTxID = "tx-1"

	s := Summarize([]domain.Transaction{voided, contra, sale("tx-3", day(3), 25, 10)}, time.Time{}, time.Time{})
	if !almostEqual(s.Revenue, 25) || !almostEqual(s.CostOfGoods, 10) || !almostEqual(s.Expenses, 0) {
		t.Fatalf("voided pair must not count: %+v", s)
	}
}

func TestSummarizeCashAudits(t *testing.T) {
	txs := []domain.Transaction{
		adjustment("tx-1", day(1), domain.AdjustmentCash, domain.DirectionLoss, 15, 0),
		adjustment("tx-2", day(2), domain.AdjustmentCash, domain.DirectionGain, 5, 0),
	}
	s := Summarize(txs, time.Time{}, time.Time{})
	if !almostEqual(s.Expenses, 15) || !almostEqual(s.Revenue, 5) {
		t.Fatalf("unexpected cash audit split: %+v", s)
	}
}

func TestSummarizeInventoryCountsHitCOGS(t *testing.T) {
	txs := []domain.Transaction{
		adjustment("tx-1", day(1), domain.AdjustmentInventory, domain.DirectionLoss, 12, 12),
		adjustment("tx-2", day(2), domain.AdjustmentInventory, domain.DirectionGain, 4, -4),
	}
	s := Summarize(txs, time.Time{}, time.Time{})
	if !almostEqual(s.CostOfGoods, 8) {
		t.Fatalf("expected cogs 8, got %.2f", s.CostOfGoods)
	}
	if !almostEqual(s.Revenue, 0) || !almostEqual(s.Expenses, 0) {
		t.Fatalf("inventory counts must not touch revenue or expenses: %+v", s)
	}
}

func TestSummarizeAssetCountsHitExpenses(t *testing.T) {
	txs := []domain.Transaction{
		adjustment("tx-1", day(1), domain.AdjustmentAsset, domain.DirectionLoss, 7, 7),
		adjustment("tx-2", day(2), domain.AdjustmentAsset, domain.DirectionGain, 2, -2),
	}
	s := Summarize(txs, time.Time{}, time.Time{})
	if !almostEqual(s.Expenses, 5) {
		t.Fatalf("expected expenses 5, got %.2f", s.Expenses)
	}
	if !almostEqual(s.CostOfGoods, 0) || !almostEqual(s.Revenue, 0) {
		t.Fatalf("asset counts must not touch cogs or revenue: %+v", s)
	}
}

func TestSummarizeCountAdjustmentWithoutCOGSFallsBackToAmount(t *testing.T) {
	// Entries imported from older exports carry only the amount.
	txs := []domain.Transaction{
		adjustment("tx-1", day(1), domain.AdjustmentInventory, domain.DirectionLoss, 9, 0),
		adjustment("tx-2", day(2), domain.AdjustmentInventory, domain.DirectionGain, 3, 0),
		adjustment("tx-3", day(3), domain.AdjustmentAsset, domain.DirectionLoss, 6, 0),
	}
	s := Summarize(txs, time.Time{}, time.Time{})
	if !almostEqual(s.CostOfGoods, 6) {
		t.Fatalf("expected cogs 6 from signed amounts, got %.2f", s.CostOfGoods)
	}
	if !almostEqual(s.Expenses, 6) {
		t.Fatalf("expected expenses 6 from signed amounts, got %.2f", s.Expenses)
	}
}
