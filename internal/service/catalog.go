package service

import (
	"context"
	"fmt"
	"strings"

	"jardinerp/backend/internal/accounting"
	"jardinerp/backend/internal/domain"
	"jardinerp/backend/internal/store"
	"jardinerp/backend/internal/xid"
)

// Catalog entries (products, providers, expense types, inventory
// items) are hard-deleted only while no transaction references them;
// afterwards they are hidden so history keeps resolving.

func (s *Service) CreateProduct(ctx context.Context, name string, price float64, inventoryItemID string) (*domain.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	name = strings.TrimSpace(name)
	if name == "" || price < 0 {
		return nil, fmt.Errorf("%w: product needs a name and a non-negative price", store.ErrInvalidOperation)
	}

	next := s.state.Clone()
	for i := range next.Products {
		if strings.EqualFold(next.Products[i].Name, name) {
			return nil, fmt.Errorf("%w: product %q already exists", store.ErrInvalidOperation, name)
		}
	}
	if inventoryItemID != "" && findItem(next, inventoryItemID) == nil {
		return nil, fmt.Errorf("%w: inventory item %s", store.ErrNotFound, inventoryItemID)
	}

	product := domain.Product{
		ID:              xid.New("prod"),
		Name:            name,
		Price:           accounting.Round2(price),
		InventoryItemID: inventoryItemID,
	}
	next.Products = append(next.Products, product)

	if err := s.commit(ctx, next); err != nil {
		return nil, err
	}
	return &product, nil
}

func (s *Service) UpdateProduct(ctx context.Context, id string, name string, price float64) (*domain.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	name = strings.TrimSpace(name)
	if name == "" || price < 0 {
		return nil, fmt.Errorf("%w: product needs a name and a non-negative price", store.ErrInvalidOperation)
	}

	next := s.state.Clone()
	var product *domain.Product
	for i := range next.Products {
		if next.Products[i].ID == id {
			product = &next.Products[i]
			break
		}
	}
	if product == nil {
		return nil, fmt.Errorf("%w: product %s", store.ErrNotFound, id)
	}
	product.Name = name
	product.Price = accounting.Round2(price)

	if err := s.commit(ctx, next); err != nil {
		return nil, err
	}
	out := *product
	return &out, nil
}

func (s *Service) DeleteProduct(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.state.Clone()
	idx := -1
	for i := range next.Products {
		if next.Products[i].ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return fmt.Errorf("%w: product %s", store.ErrNotFound, id)
	}

	if productReferenced(next, id) {
		next.Products[idx].Hidden = true
	} else {
		next.Products = append(next.Products[:idx], next.Products[idx+1:]...)
	}
	return s.commit(ctx, next)
}

func productReferenced(state *domain.AppState, id string) bool {
	for _, tx := range state.Transactions {
		if tx.Details == nil || tx.Details.Sale == nil {
			continue
		}
		for _, line := range tx.Details.Sale.Cart {
			if line.ItemID == id {
				return true
			}
		}
	}
	return false
}

func (s *Service) CreateProvider(ctx context.Context, name string) (*domain.Provider, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: provider name required", store.ErrInvalidOperation)
	}

	next := s.state.Clone()
	provider := *ensureProvider(next, name)
	if err := s.commit(ctx, next); err != nil {
		return nil, err
	}
	return &provider, nil
}

func (s *Service) DeleteProvider(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.state.Clone()
	idx := -1
	for i := range next.Providers {
		if next.Providers[i].ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return fmt.Errorf("%w: provider %s", store.ErrNotFound, id)
	}

	if providerReferenced(next, next.Providers[idx].Name) {
		next.Providers[idx].Hidden = true
	} else {
		next.Providers = append(next.Providers[:idx], next.Providers[idx+1:]...)
	}
	return s.commit(ctx, next)
}

func providerReferenced(state *domain.AppState, name string) bool {
	for _, tx := range state.Transactions {
		if tx.Details == nil {
			continue
		}
		if d := tx.Details.Purchase; d != nil && strings.EqualFold(d.ProviderName, name) {
			return true
		}
		if d := tx.Details.Expense; d != nil && strings.EqualFold(d.ProviderName, name) {
			return true
		}
	}
	return false
}

func (s *Service) CreateExpenseType(ctx context.Context, name string) (*domain.ExpenseType, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: expense type name required", store.ErrInvalidOperation)
	}

	next := s.state.Clone()
	expenseType := *ensureExpenseType(next, name)
	if err := s.commit(ctx, next); err != nil {
		return nil, err
	}
	return &expenseType, nil
}

func (s *Service) DeleteExpenseType(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.state.Clone()
	idx := -1
	for i := range next.ExpenseTypes {
		if next.ExpenseTypes[i].ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return fmt.Errorf("%w: expense type %s", store.ErrNotFound, id)
	}

	if expenseTypeReferenced(next, next.ExpenseTypes[idx].Name) {
		next.ExpenseTypes[idx].Hidden = true
	} else {
		next.ExpenseTypes = append(next.ExpenseTypes[:idx], next.ExpenseTypes[idx+1:]...)
	}
	return s.commit(ctx, next)
}

func expenseTypeReferenced(state *domain.AppState, name string) bool {
	for _, tx := range state.Transactions {
		if tx.Details == nil || tx.Details.Expense == nil {
			continue
		}
		if strings.EqualFold(tx.Details.Expense.TypeName, name) {
			return true
		}
	}
	return false
}

// DeleteInventoryItem removes an item from the pickers. Items that
// appear in history, carry stock, or back a product are hidden instead.
func (s *Service) DeleteInventoryItem(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.state.Clone()
	idx := -1
	for i := range next.Inventory {
		if next.Inventory[i].ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return fmt.Errorf("%w: inventory item %s", store.ErrNotFound, id)
	}

	if itemReferenced(next, id) || next.Inventory[idx].Stock != 0 {
		next.Inventory[idx].Hidden = true
	} else {
		next.Inventory = append(next.Inventory[:idx], next.Inventory[idx+1:]...)
	}
	return s.commit(ctx, next)
}

func itemReferenced(state *domain.AppState, id string) bool {
	for i := range state.Products {
		if state.Products[i].InventoryItemID == id {
			return true
		}
	}
	for _, tx := range state.Transactions {
		if tx.Details == nil {
			continue
		}
		if d := tx.Details.Purchase; d != nil && d.ItemID == id {
			return true
		}
		if d := tx.Details.Production; d != nil {
			if d.OutputID == id {
				return true
			}
			for _, ing := range d.Ingredients {
				if ing.ItemID == id {
					return true
				}
			}
		}
		if d := tx.Details.Adjustment; d != nil {
			for _, line := range d.Lines {
				if line.ItemID == id {
					return true
				}
			}
		}
	}
	return false
}
