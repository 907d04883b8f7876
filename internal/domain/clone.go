package domain

// Clone returns a deep copy of the state. Commits work on a copy so a
// failed operation never leaves a half-applied state behind.
func (s *AppState) Clone() *AppState {
	if s == nil {
		return nil
	}
	out := *s
	out.Inventory = make([]InventoryItem, len(s.Inventory))
	for i, item := range s.Inventory {
		out.Inventory[i] = item
		out.Inventory[i].Batches = append([]Batch(nil), item.Batches...)
	}
	out.Products = append([]Product(nil), s.Products...)
	out.Providers = append([]Provider(nil), s.Providers...)
	out.ExpenseTypes = append([]ExpenseType(nil), s.ExpenseTypes...)
	out.Assets = append([]AssetItem(nil), s.Assets...)
	out.Transactions = make([]Transaction, len(s.Transactions))
	for i, tx := range s.Transactions {
		out.Transactions[i] = tx.clone()
	}
	return &out
}

func (t Transaction) clone() Transaction {
	out := t
	if t.Details == nil {
		return out
	}
	details := TxDetails{}
	if d := t.Details.Purchase; d != nil {
		c := *d
		details.Purchase = &c
	}
	if d := t.Details.Sale; d != nil {
		c := *d
		c.Cart = append([]CartLine(nil), d.Cart...)
		details.Sale = &c
	}
	if d := t.Details.Expense; d != nil {
		c := *d
		details.Expense = &c
	}
	if d := t.Details.Production; d != nil {
		c := *d
		c.Ingredients = append([]IngredientLine(nil), d.Ingredients...)
		details.Production = &c
	}
	if d := t.Details.Adjustment; d != nil {
		c := *d
		c.Lines = append([]CountLine(nil), d.Lines...)
		details.Adjustment = &c
	}
	out.Details = &details
	return out
}
