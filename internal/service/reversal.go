package service

import (
	"context"
	"fmt"

	"jardinerp/backend/internal/accounting"
	"jardinerp/backend/internal/domain"
	"jardinerp/backend/internal/inventory"
	"jardinerp/backend/internal/store"
)

// RevertTransaction voids a transaction: its balance and inventory
// effects are undone, the original is flagged VOIDED and a contra
// entry documenting the reversal is appended. Everything commits as a
// single state update.
//
// Not revertible: INITIALIZATION entries, already voided entries,
// contra entries themselves, and inventory/asset count adjustments
// (the count overwrote physical truth; re-counting is the only undo).
func (s *Service) RevertTransaction(ctx context.Context, txID string) (*domain.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.requireInitialized(); err != nil {
		return nil, err
	}

	next := s.state.Clone()

	var original *domain.Transaction
	for i := range next.Transactions {
		if next.Transactions[i].ID == txID {
			original = &next.Transactions[i]
			break
		}
	}
	if original == nil {
		return nil, fmt.Errorf("%w: transaction %s", store.ErrNotFound, txID)
	}
	if original.Voided() {
		return nil, fmt.Errorf("%w: already voided", store.ErrNotRevertible)
	}
	if original.IsContraEntry() {
		return nil, fmt.Errorf("%w: contra entries document a reversal", store.ErrNotRevertible)
	}

	switch original.Type {
	case domain.TxInitialization:
		return nil, fmt.Errorf("%w: initialization", store.ErrNotRevertible)
	case domain.TxPurchase:
		if err := revertPurchase(next, original); err != nil {
			return nil, err
		}
	case domain.TxSale:
		revertSale(next, original)
	case domain.TxExpense:
		revertExpense(next, original)
	case domain.TxProduction:
		revertProduction(next, original)
	case domain.TxAdjustment:
		if err := revertAdjustment(next, original); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("%w: unknown type %q", store.ErrNotRevertible, original.Type)
	}

	contra := s.newTx(domain.TxAdjustment, original.Amount,
		fmt.Sprintf("Anulación: %s", original.Description),
		&domain.TxDetails{Adjustment: &domain.AdjustmentDetails{}})
	contra.VoidingTxID = original.ID

	original.Status = domain.TxStatusVoided
	original.VoidingTxID = contra.ID

	appendTx(next, contra)

	if err := s.commit(ctx, next); err != nil {
		return nil, err
	}
	return &contra, nil
}

func creditBack(a *domain.Accounts, method domain.PaymentMethod, amount float64) {
	if method == domain.MethodBank {
		a.Bank = accounting.Round2(a.Bank + amount)
	} else {
		a.Cash = accounting.Round2(a.Cash + amount)
	}
}

func revertPurchase(state *domain.AppState, tx *domain.Transaction) error {
	d := txPurchaseDetails(tx)
	if d == nil {
		return fmt.Errorf("%w: purchase without details", store.ErrNotRevertible)
	}
	creditBack(&state.Accounts, d.Method, tx.Amount)

	switch d.Kind {
	case domain.PurchaseInventory:
		state.Accounts.Inventory = accounting.Round2(state.Accounts.Inventory - tx.Amount)
		// A missing item is a referential gap: the balances still
		// reverse, the stock walk-back is skipped.
		if item := findItem(state, d.ItemID); item != nil {
			inventory.RemoveNewest(item, d.Quantity)
		}
	case domain.PurchaseAsset:
		state.Accounts.FixedAssets = accounting.Round2(state.Accounts.FixedAssets - tx.Amount)
		if asset := findAsset(state, d.ItemID); asset != nil {
			asset.Value = accounting.Round2(asset.Value - tx.Amount)
			asset.Quantity -= d.Quantity
			if asset.Value < 0 {
				asset.Value = 0
			}
			if asset.Quantity < 0 {
				asset.Quantity = 0
			}
		}
	}
	return nil
}

func revertSale(state *domain.AppState, tx *domain.Transaction) {
	method := domain.MethodCash
	var cart []domain.CartLine
	if tx.Details != nil && tx.Details.Sale != nil {
		method = tx.Details.Sale.Method
		cart = tx.Details.Sale.Cart
	}
	if method == domain.MethodBank {
		state.Accounts.Bank = accounting.Round2(state.Accounts.Bank - tx.Amount)
	} else {
		state.Accounts.Cash = accounting.Round2(state.Accounts.Cash - tx.Amount)
	}
	state.Accounts.Revenue = accounting.Round2(state.Accounts.Revenue - tx.Amount)

	// Legacy snapshots may carry sale-time COGS. Redistribute it over
	// the cart by quantity share and refund dated at the original
	// sale, keeping FIFO chronology intact.
	if tx.COGS <= 0 || len(cart) == 0 {
		return
	}
	var totalQty float64
	for _, line := range cart {
		totalQty += line.Qty
	}
	if totalQty <= 0 {
		return
	}
	var refunded float64
	for _, line := range cart {
		item := resolveCartItem(state, line)
		if item == nil {
			continue
		}
		share := tx.COGS * line.Qty / totalQty
		inventory.Refund(item, line.Qty, share/line.Qty, tx.Date)
		refunded += share
	}
	state.Accounts.Inventory = accounting.Round2(state.Accounts.Inventory + refunded)
	state.Accounts.CostOfGoods = accounting.Round2(state.Accounts.CostOfGoods - refunded)
}

// resolveCartItem maps a cart line back to stock: directly by item id,
// or through the product catalog.
func resolveCartItem(state *domain.AppState, line domain.CartLine) *domain.InventoryItem {
	if line.ItemID == "" {
		return findItemByName(state, line.Name)
	}
	if item := findItem(state, line.ItemID); item != nil {
		return item
	}
	for i := range state.Products {
		if state.Products[i].ID == line.ItemID && state.Products[i].InventoryItemID != "" {
			return findItem(state, state.Products[i].InventoryItemID)
		}
	}
	return nil
}

func revertExpense(state *domain.AppState, tx *domain.Transaction) {
	method := domain.MethodCash
	if tx.Details != nil && tx.Details.Expense != nil {
		method = tx.Details.Expense.Method
	}
	creditBack(&state.Accounts, method, tx.Amount)
	state.Accounts.Expenses = accounting.Round2(state.Accounts.Expenses - tx.Amount)
}

func revertProduction(state *domain.AppState, tx *domain.Transaction) {
	if tx.Details == nil || tx.Details.Production == nil {
		return
	}
	d := tx.Details.Production
	if output := findItem(state, d.OutputID); output != nil {
		inventory.RemoveNewest(output, d.OutputQty)
	}
	for _, ing := range d.Ingredients {
		if item := findItem(state, ing.ItemID); item != nil {
			inventory.Refund(item, ing.Qty, ing.UnitCost, tx.Date)
		}
	}
	// Value moved back where it came from; balances never changed.
}

func revertAdjustment(state *domain.AppState, tx *domain.Transaction) error {
	if tx.Details == nil || tx.Details.Adjustment == nil {
		return fmt.Errorf("%w: adjustment without details", store.ErrNotRevertible)
	}
	d := tx.Details.Adjustment
	if d.Kind != domain.AdjustmentCash {
		return fmt.Errorf("%w: count adjustments record physical truth", store.ErrNotRevertible)
	}

	diff := tx.Amount
	if d.Direction == domain.DirectionGain {
		diff = -diff
	}
	// Inverse of the audit: put the delta back on the account and
	// remove the booked result.
	if d.Account == domain.MethodBank {
		state.Accounts.Bank = accounting.Round2(state.Accounts.Bank + diff)
	} else {
		state.Accounts.Cash = accounting.Round2(state.Accounts.Cash + diff)
	}
	if d.Direction == domain.DirectionGain {
		state.Accounts.Revenue = accounting.Round2(state.Accounts.Revenue - tx.Amount)
	} else {
		state.Accounts.Expenses = accounting.Round2(state.Accounts.Expenses - tx.Amount)
	}
	return nil
}

func txPurchaseDetails(tx *domain.Transaction) *domain.PurchaseDetails {
	if tx.Details == nil {
		return nil
	}
	return tx.Details.Purchase
}
