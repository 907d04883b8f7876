// Package ledger derives period summaries from the transaction log.
// Cumulative account balances answer "where are we now"; this package
// answers "what happened between two dates" by re-reading the log.
package ledger

import (
	"time"

	"jardinerp/backend/internal/accounting"
	"jardinerp/backend/internal/domain"
)

// ParseWindow turns inclusive YYYY-MM-DD bounds into a time window.
// Empty strings leave that side open; the upper bound covers the whole
// closing day.
func ParseWindow(from, to string) (time.Time, time.Time, error) {
	var lo, hi time.Time
	var err error
	if from != "" {
		lo, err = time.ParseInLocation("2006-01-02", from, time.UTC)
		if err != nil {
			return lo, hi, err
		}
	}
	if to != "" {
		hi, err = time.ParseInLocation("2006-01-02", to, time.UTC)
		if err != nil {
			return lo, hi, err
		}
		hi = hi.Add(24*time.Hour - time.Nanosecond)
	}
	return lo, hi, nil
}

// InWindow reports whether ts falls inside [from, to]. A zero bound is
// open on that side.
func InWindow(ts, from, to time.Time) bool {
	if !from.IsZero() && ts.Before(from) {
		return false
	}
	if !to.IsZero() && ts.After(to) {
		return false
	}
	return true
}

// Summarize aggregates the result accounts over [from, to]. Voided
// transactions and the contra entries that voided them are both
// skipped: a reverted operation must leave no trace in any period.
func Summarize(txs []domain.Transaction, from, to time.Time) domain.Summary {
	var s domain.Summary
	for _, tx := range txs {
		if tx.Voided() || tx.VoidingTxID != "" {
			continue
		}
		if !InWindow(tx.Date, from, to) {
			continue
		}
		switch tx.Type {
		case domain.TxSale:
			s.Revenue += tx.Amount
			s.CostOfGoods += tx.COGS
		case domain.TxExpense:
			s.Expenses += tx.Amount
		case domain.TxAdjustment:
			if tx.Details == nil || tx.Details.Adjustment == nil {
				continue
			}
			d := tx.Details.Adjustment
			switch d.Kind {
			case domain.AdjustmentCash:
				if d.Direction == domain.DirectionGain {
					s.Revenue += tx.Amount
				} else {
					s.Expenses += tx.Amount
				}
			case domain.AdjustmentInventory:
				s.CostOfGoods += countDiff(tx)
			case domain.AdjustmentAsset:
				s.Expenses += countDiff(tx)
			}
		}
	}
	s.Revenue = accounting.Round2(s.Revenue)
	s.CostOfGoods = accounting.Round2(s.CostOfGoods)
	s.Expenses = accounting.Round2(s.Expenses)
	s.GrossProfit = accounting.Round2(s.Revenue - s.CostOfGoods)
	s.NetIncome = accounting.Round2(s.GrossProfit - s.Expenses)
	return s
}

// countDiff is the signed value of a count adjustment: positive for
// shrinkage, negative for surplus. Entries imported from older exports
// carry no cogs, so the difference is reconstructed from the amount and
// the direction.
func countDiff(tx domain.Transaction) float64 {
	if tx.COGS != 0 {
		return tx.COGS
	}
	diff := tx.Amount
	if tx.Details.Adjustment != nil && tx.Details.Adjustment.Direction == domain.DirectionGain {
		diff = -diff
	}
	return diff
}
