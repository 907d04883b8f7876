// Package accounting holds the pure balance arithmetic of the ledger.
// Every function takes the current account balances and returns an
// updated copy; nothing here touches storage, inventory or the
// transaction log.
package accounting

import (
	"math"

	"jardinerp/backend/internal/domain"
)

// BalanceEpsilon is the tolerance used when checking the accounting
// identity. Balances are stored as float64 and rounded to cents, so
// exact equality is not meaningful.
const BalanceEpsilon = 0.01

// Round2 rounds a monetary value to two decimal places.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// Identity returns assets - (equity + result) for the given balances.
// A healthy ledger keeps the absolute value below BalanceEpsilon.
func Identity(a domain.Accounts) float64 {
	assets := a.Cash + a.Bank + a.Inventory + a.FixedAssets
	claims := a.Equity + a.Revenue - a.CostOfGoods - a.Expenses
	return assets - claims
}

// Balanced reports whether the accounting identity holds within tolerance.
func Balanced(a domain.Accounts) bool {
	return math.Abs(Identity(a)) < BalanceEpsilon
}

func target(a *domain.Accounts, method domain.PaymentMethod) *float64 {
	if method == domain.MethodBank {
		return &a.Bank
	}
	return &a.Cash
}

// InitializeWithEquity opens the books. Equity is derived from the
// contributed assets so the identity holds from the first entry.
func InitializeWithEquity(cash, bank, inventoryValue, assetValue float64) domain.Accounts {
	a := domain.Accounts{
		Cash:        Round2(cash),
		Bank:        Round2(bank),
		Inventory:   Round2(inventoryValue),
		FixedAssets: Round2(assetValue),
	}
	a.Equity = Round2(a.Cash + a.Bank + a.Inventory + a.FixedAssets)
	return a
}

// PurchaseInventory moves money into inventory at cost.
func PurchaseInventory(a domain.Accounts, amount float64, method domain.PaymentMethod) domain.Accounts {
	amount = Round2(amount)
	*target(&a, method) -= amount
	a.Inventory = Round2(a.Inventory + amount)
	return a
}

// PurchaseAsset moves money into fixed assets.
func PurchaseAsset(a domain.Accounts, amount float64, method domain.PaymentMethod) domain.Accounts {
	amount = Round2(amount)
	*target(&a, method) -= amount
	a.FixedAssets = Round2(a.FixedAssets + amount)
	return a
}

// PayExpense records an operating expense paid from the given account.
func PayExpense(a domain.Accounts, amount float64, method domain.PaymentMethod) domain.Accounts {
	amount = Round2(amount)
	*target(&a, method) -= amount
	a.Expenses = Round2(a.Expenses + amount)
	return a
}

// RegisterSale books revenue for a sale. Stock and cost of goods are
// not touched here: the periodic model realizes COGS at count time.
func RegisterSale(a domain.Accounts, price float64, method domain.PaymentMethod) domain.Accounts {
	price = Round2(price)
	*target(&a, method) += price
	a.Revenue = Round2(a.Revenue + price)
	return a
}

// RegisterInventoriableSale books a sale that realizes cost of goods
// immediately: revenue comes in and the sold value leaves inventory.
// The engine runs the periodic model and never takes this path; it is
// kept for ledgers configured for perpetual costing.
func RegisterInventoriableSale(a domain.Accounts, price, cogs float64, method domain.PaymentMethod) domain.Accounts {
	a = RegisterSale(a, price, method)
	cogs = Round2(cogs)
	a.Inventory = Round2(a.Inventory - cogs)
	a.CostOfGoods = Round2(a.CostOfGoods + cogs)
	return a
}

// Production transforms inventory into inventory; balances do not move.
func Production(a domain.Accounts) domain.Accounts {
	return a
}

// AdjustInventory books the result of a physical inventory count.
// diff is system value minus counted value: positive means shrinkage
// (value leaves inventory into cost of goods), negative means surplus.
func AdjustInventory(a domain.Accounts, diff float64) domain.Accounts {
	diff = Round2(diff)
	a.Inventory = Round2(a.Inventory - diff)
	a.CostOfGoods = Round2(a.CostOfGoods + diff)
	return a
}

// AdjustAssets books the result of a fixed asset count. Same sign
// convention as AdjustInventory, but asset losses are an operating
// expense, not cost of goods.
func AdjustAssets(a domain.Accounts, diff float64) domain.Accounts {
	diff = Round2(diff)
	a.FixedAssets = Round2(a.FixedAssets - diff)
	a.Expenses = Round2(a.Expenses + diff)
	return a
}

// AuditCash reconciles a money account against a physical count.
// diff is system balance minus counted balance: a shortage becomes an
// expense, a surplus becomes revenue.
func AuditCash(a domain.Accounts, method domain.PaymentMethod, diff float64) domain.Accounts {
	diff = Round2(diff)
	*target(&a, method) -= diff
	if diff > 0 {
		a.Expenses = Round2(a.Expenses + diff)
	} else if diff < 0 {
		a.Revenue = Round2(a.Revenue - diff)
	}
	return a
}
