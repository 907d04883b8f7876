// Package service is the state container of the bookkeeping engine.
// All mutations flow through here: an operation clones the current
// state, applies balance deltas and inventory mutations, appends the
// transaction and commits the clone as one unit. The repository only
// ever sees fully consistent snapshots.
package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"sync"
	"time"

	"jardinerp/backend/internal/accounting"
	"jardinerp/backend/internal/domain"
	"jardinerp/backend/internal/inventory"
	"jardinerp/backend/internal/ledger"
	"jardinerp/backend/internal/store"
	"jardinerp/backend/internal/xid"
)

type Service struct {
	mu    sync.Mutex
	repo  store.Repository
	state *domain.AppState
	now   func() time.Time
}

// New loads the last committed snapshot, starting fresh when the
// repository holds none.
func New(ctx context.Context, repo store.Repository) (*Service, error) {
	state, err := repo.LoadState(ctx)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			return nil, err
		}
		fresh := domain.NewAppState()
		state = &fresh
	}
	return &Service{
		repo:  repo,
		state: state,
		now:   func() time.Time { return time.Now().UTC() },
	}, nil
}

// commit persists next and swaps it in. The identity guard runs on
// every commit: a broken clone must never become the visible state.
func (s *Service) commit(ctx context.Context, next *domain.AppState) error {
	if next.Initialized && !accounting.Balanced(next.Accounts) {
		return fmt.Errorf("%w: accounting identity off by %.4f", store.ErrInvalidOperation, accounting.Identity(next.Accounts))
	}
	if err := s.repo.SaveState(ctx, next); err != nil {
		return err
	}
	s.state = next
	return nil
}

func (s *Service) newTx(txType domain.TxType, amount float64, description string, details *domain.TxDetails) domain.Transaction {
	return domain.Transaction{
		ID:          xid.New("tx"),
		Date:        s.now(),
		Type:        txType,
		Amount:      accounting.Round2(amount),
		Description: description,
		Status:      domain.TxStatusActive,
		Details:     details,
	}
}

// appendTx keeps the log newest-first.
func appendTx(state *domain.AppState, tx domain.Transaction) {
	state.Transactions = append([]domain.Transaction{tx}, state.Transactions...)
}

func findItem(state *domain.AppState, id string) *domain.InventoryItem {
	for i := range state.Inventory {
		if state.Inventory[i].ID == id {
			return &state.Inventory[i]
		}
	}
	return nil
}

func findItemByName(state *domain.AppState, name string) *domain.InventoryItem {
	for i := range state.Inventory {
		if strings.EqualFold(state.Inventory[i].Name, name) {
			return &state.Inventory[i]
		}
	}
	return nil
}

func ensureItem(state *domain.AppState, name string) *domain.InventoryItem {
	if item := findItemByName(state, name); item != nil {
		item.Hidden = false
		return item
	}
	state.Inventory = append(state.Inventory, domain.InventoryItem{
		ID:   xid.New("inv"),
		Name: name,
	})
	return &state.Inventory[len(state.Inventory)-1]
}

func findAsset(state *domain.AppState, id string) *domain.AssetItem {
	for i := range state.Assets {
		if state.Assets[i].ID == id {
			return &state.Assets[i]
		}
	}
	return nil
}

func ensureAsset(state *domain.AppState, name string) *domain.AssetItem {
	for i := range state.Assets {
		if strings.EqualFold(state.Assets[i].Name, name) {
			state.Assets[i].Hidden = false
			return &state.Assets[i]
		}
	}
	state.Assets = append(state.Assets, domain.AssetItem{
		ID:   xid.New("asset"),
		Name: name,
	})
	return &state.Assets[len(state.Assets)-1]
}

func ensureProvider(state *domain.AppState, name string) *domain.Provider {
	for i := range state.Providers {
		if strings.EqualFold(state.Providers[i].Name, name) {
			state.Providers[i].Hidden = false
			return &state.Providers[i]
		}
	}
	state.Providers = append(state.Providers, domain.Provider{
		ID:   xid.New("prov"),
		Name: name,
	})
	return &state.Providers[len(state.Providers)-1]
}

func ensureProduct(state *domain.AppState, name string, price float64) *domain.Product {
	for i := range state.Products {
		if strings.EqualFold(state.Products[i].Name, name) {
			state.Products[i].Hidden = false
			return &state.Products[i]
		}
	}
	state.Products = append(state.Products, domain.Product{
		ID:    xid.New("prod"),
		Name:  name,
		Price: price,
	})
	return &state.Products[len(state.Products)-1]
}

func ensureExpenseType(state *domain.AppState, name string) *domain.ExpenseType {
	for i := range state.ExpenseTypes {
		if strings.EqualFold(state.ExpenseTypes[i].Name, name) {
			state.ExpenseTypes[i].Hidden = false
			return &state.ExpenseTypes[i]
		}
	}
	state.ExpenseTypes = append(state.ExpenseTypes, domain.ExpenseType{
		ID:   xid.New("exp"),
		Name: name,
	})
	return &state.ExpenseTypes[len(state.ExpenseTypes)-1]
}

func (s *Service) requireInitialized() error {
	if !s.state.Initialized {
		return store.ErrNotInitialized
	}
	return nil
}

// Initialize opens the books with the contributed capital and the
// opening inventory and asset positions. One-shot: a second call fails.
func (s *Service) Initialize(ctx context.Context, req domain.InitializeRequest) (*domain.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state.Initialized {
		return nil, fmt.Errorf("%w: already initialized", store.ErrInvalidOperation)
	}
	if req.Cash < 0 || req.Bank < 0 {
		return nil, fmt.Errorf("%w: opening balances must not be negative", store.ErrInvalidOperation)
	}

	next := domain.NewAppState()
	now := s.now()

	var inventoryValue float64
	for _, line := range req.Inventory {
		name := strings.TrimSpace(line.Name)
		if name == "" || line.Quantity <= 0 || line.UnitCost < 0 {
			return nil, fmt.Errorf("%w: invalid opening inventory line %q", store.ErrInvalidOperation, line.Name)
		}
		item := ensureItem(&next, name)
		inventory.AddBatch(item, line.Quantity, line.UnitCost, now)
		inventoryValue += line.Quantity * line.UnitCost
	}

	var assetValue float64
	for _, line := range req.Assets {
		name := strings.TrimSpace(line.Name)
		if name == "" || line.Quantity <= 0 || line.Value < 0 {
			return nil, fmt.Errorf("%w: invalid opening asset line %q", store.ErrInvalidOperation, line.Name)
		}
		asset := ensureAsset(&next, name)
		asset.Value = accounting.Round2(asset.Value + line.Value)
		asset.Quantity += line.Quantity
		assetValue += line.Value
	}

	next.Accounts = accounting.InitializeWithEquity(req.Cash, req.Bank, inventoryValue, assetValue)
	next.Initialized = true

	tx := s.newTx(domain.TxInitialization, next.Accounts.Equity, "Aporte de capital inicial", nil)
	appendTx(&next, tx)

	if err := s.commit(ctx, &next); err != nil {
		return nil, err
	}
	return &tx, nil
}

// RegisterPurchase books an inventory or fixed-asset acquisition.
func (s *Service) RegisterPurchase(ctx context.Context, req domain.PurchaseRequest) (*domain.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.requireInitialized(); err != nil {
		return nil, err
	}
	if req.Amount <= 0 {
		return nil, fmt.Errorf("%w: amount must be positive", store.ErrInvalidOperation)
	}
	if !req.Method.Valid() {
		return nil, fmt.Errorf("%w: unknown payment method %q", store.ErrInvalidOperation, req.Method)
	}
	if req.Quantity <= 0 {
		return nil, fmt.Errorf("%w: quantity must be positive", store.ErrInvalidOperation)
	}

	next := s.state.Clone()
	now := s.now()

	providerName := strings.TrimSpace(req.ProviderName)
	if req.ProviderID != "" {
		for i := range next.Providers {
			if next.Providers[i].ID == req.ProviderID {
				providerName = next.Providers[i].Name
			}
		}
	}
	if providerName != "" {
		ensureProvider(next, providerName)
	}

	var description string
	details := domain.PurchaseDetails{
		Kind:         req.Kind,
		ProviderName: providerName,
		Quantity:     req.Quantity,
		Method:       req.Method,
	}

	switch req.Kind {
	case domain.PurchaseInventory:
		var item *domain.InventoryItem
		if req.ItemID != "" {
			if item = findItem(next, req.ItemID); item == nil {
				return nil, fmt.Errorf("%w: inventory item %s", store.ErrNotFound, req.ItemID)
			}
		} else {
			name := strings.TrimSpace(req.ItemName)
			if name == "" {
				return nil, fmt.Errorf("%w: item name required", store.ErrInvalidOperation)
			}
			item = ensureItem(next, name)
		}
		inventory.AddBatch(item, req.Quantity, req.Amount/req.Quantity, now)
		next.Accounts = accounting.PurchaseInventory(next.Accounts, req.Amount, req.Method)
		details.ItemID = item.ID
		details.ItemName = item.Name
		description = fmt.Sprintf("Compra inventario: %s (x%g)", item.Name, req.Quantity)

	case domain.PurchaseAsset:
		var asset *domain.AssetItem
		if req.ItemID != "" {
			if asset = findAsset(next, req.ItemID); asset == nil {
				return nil, fmt.Errorf("%w: asset %s", store.ErrNotFound, req.ItemID)
			}
		} else {
			name := strings.TrimSpace(req.ItemName)
			if name == "" {
				return nil, fmt.Errorf("%w: asset name required", store.ErrInvalidOperation)
			}
			asset = ensureAsset(next, name)
		}
		asset.Value = accounting.Round2(asset.Value + req.Amount)
		asset.Quantity += req.Quantity
		next.Accounts = accounting.PurchaseAsset(next.Accounts, req.Amount, req.Method)
		details.ItemID = asset.ID
		details.ItemName = asset.Name
		description = fmt.Sprintf("Compra activo: %s (x%g)", asset.Name, req.Quantity)

	default:
		return nil, fmt.Errorf("%w: unknown purchase kind %q", store.ErrInvalidOperation, req.Kind)
	}

	tx := s.newTx(domain.TxPurchase, req.Amount, description, &domain.TxDetails{Purchase: &details})
	appendTx(next, tx)

	if err := s.commit(ctx, next); err != nil {
		return nil, err
	}
	return &tx, nil
}

// RegisterSale books revenue for a cart of products or free-form
// lines. Under the periodic model no stock moves at sale time.
func (s *Service) RegisterSale(ctx context.Context, req domain.SaleRequest) (*domain.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.requireInitialized(); err != nil {
		return nil, err
	}
	if len(req.Cart) == 0 {
		return nil, fmt.Errorf("%w: empty cart", store.ErrInvalidOperation)
	}
	if !req.Method.Valid() {
		return nil, fmt.Errorf("%w: unknown payment method %q", store.ErrInvalidOperation, req.Method)
	}

	next := s.state.Clone()

	var total float64
	lines := make([]domain.CartLine, 0, len(req.Cart))
	for _, line := range req.Cart {
		if line.Qty <= 0 {
			return nil, fmt.Errorf("%w: line quantity must be positive", store.ErrInvalidOperation)
		}
		name := strings.TrimSpace(line.Name)
		price := line.Price
		itemID := ""
		if line.ProductID != "" {
			var product *domain.Product
			for i := range next.Products {
				if next.Products[i].ID == line.ProductID {
					product = &next.Products[i]
				}
			}
			if product == nil {
				return nil, fmt.Errorf("%w: product %s", store.ErrNotFound, line.ProductID)
			}
			name = product.Name
			itemID = product.ID
			if price <= 0 {
				price = product.Price
			}
		}
		if name == "" {
			return nil, fmt.Errorf("%w: line name required", store.ErrInvalidOperation)
		}
		if price < 0 {
			return nil, fmt.Errorf("%w: negative price", store.ErrInvalidOperation)
		}
		if itemID == "" {
			// Free-form lines land in the catalog so the next sale can
			// pick the product instead of retyping it.
			product := ensureProduct(next, name, price)
			itemID = product.ID
		}
		total += line.Qty * price
		lines = append(lines, domain.CartLine{ItemID: itemID, Name: name, Qty: line.Qty, Price: price})
	}
	if total <= 0 {
		return nil, fmt.Errorf("%w: sale total must be positive", store.ErrInvalidOperation)
	}

	next.Accounts = accounting.RegisterSale(next.Accounts, total, req.Method)

	tx := s.newTx(domain.TxSale, total, fmt.Sprintf("Venta (%d líneas)", len(lines)), &domain.TxDetails{
		Sale: &domain.SaleDetails{Method: req.Method, Cart: lines},
	})
	appendTx(next, tx)

	if err := s.commit(ctx, next); err != nil {
		return nil, err
	}
	return &tx, nil
}

// PayExpense books an operating expense.
func (s *Service) PayExpense(ctx context.Context, req domain.ExpenseRequest) (*domain.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.requireInitialized(); err != nil {
		return nil, err
	}
	if req.Amount <= 0 {
		return nil, fmt.Errorf("%w: amount must be positive", store.ErrInvalidOperation)
	}
	if !req.Method.Valid() {
		return nil, fmt.Errorf("%w: unknown payment method %q", store.ErrInvalidOperation, req.Method)
	}

	next := s.state.Clone()

	typeName := strings.TrimSpace(req.TypeName)
	if req.TypeID != "" {
		for i := range next.ExpenseTypes {
			if next.ExpenseTypes[i].ID == req.TypeID {
				typeName = next.ExpenseTypes[i].Name
			}
		}
	}
	if typeName == "" {
		return nil, fmt.Errorf("%w: expense type required", store.ErrInvalidOperation)
	}
	ensureExpenseType(next, typeName)

	providerName := strings.TrimSpace(req.ProviderName)
	if req.ProviderID != "" {
		for i := range next.Providers {
			if next.Providers[i].ID == req.ProviderID {
				providerName = next.Providers[i].Name
			}
		}
	}
	if providerName != "" {
		ensureProvider(next, providerName)
	}

	next.Accounts = accounting.PayExpense(next.Accounts, req.Amount, req.Method)

	tx := s.newTx(domain.TxExpense, req.Amount, fmt.Sprintf("Gasto: %s", typeName), &domain.TxDetails{
		Expense: &domain.ExpenseDetails{TypeName: typeName, ProviderName: providerName, Method: req.Method},
	})
	appendTx(next, tx)

	if err := s.commit(ctx, next); err != nil {
		return nil, err
	}
	return &tx, nil
}

// PreviewProductionCost prices the ingredient consumption of a recipe
// without committing anything.
func (s *Service) PreviewProductionCost(req domain.ProductionRequest) (float64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.requireInitialized(); err != nil {
		return 0, err
	}
	var total float64
	for _, ing := range req.Ingredients {
		if ing.Qty <= 0 {
			continue
		}
		item := findItem(s.state, ing.ItemID)
		if item == nil {
			return 0, fmt.Errorf("%w: inventory item %s", store.ErrNotFound, ing.ItemID)
		}
		total += inventory.Simulate(item, ing.Qty)
	}
	return accounting.Round2(total), nil
}

// RegisterProduction consumes ingredients at FIFO cost and books the
// whole realized cost into the output item's new batch. Inventory value
// is conserved; balances do not move.
func (s *Service) RegisterProduction(ctx context.Context, req domain.ProductionRequest) (*domain.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.requireInitialized(); err != nil {
		return nil, err
	}
	outputName := strings.TrimSpace(req.OutputName)
	if outputName == "" || req.OutputQty <= 0 {
		return nil, fmt.Errorf("%w: output name and quantity required", store.ErrInvalidOperation)
	}
	if len(req.Ingredients) == 0 {
		return nil, fmt.Errorf("%w: no ingredients", store.ErrInvalidOperation)
	}

	next := s.state.Clone()
	now := s.now()

	var totalCost float64
	lines := make([]domain.IngredientLine, 0, len(req.Ingredients))
	for _, ing := range req.Ingredients {
		if ing.Qty <= 0 {
			return nil, fmt.Errorf("%w: ingredient quantity must be positive", store.ErrInvalidOperation)
		}
		item := findItem(next, ing.ItemID)
		if item == nil {
			return nil, fmt.Errorf("%w: inventory item %s", store.ErrNotFound, ing.ItemID)
		}
		if item.Stock < ing.Qty {
			return nil, fmt.Errorf("%w: insufficient stock of %s", store.ErrInvalidOperation, item.Name)
		}
		cost := inventory.Consume(item, ing.Qty)
		totalCost += cost
		lines = append(lines, domain.IngredientLine{
			ItemID:   item.ID,
			Name:     item.Name,
			Qty:      ing.Qty,
			UnitCost: cost / ing.Qty,
		})
	}

	output := ensureItem(next, outputName)
	inventory.AddBatch(output, req.OutputQty, totalCost/req.OutputQty, now)

	tx := s.newTx(domain.TxProduction, totalCost,
		fmt.Sprintf("Producción: %s (x%g)", output.Name, req.OutputQty),
		&domain.TxDetails{Production: &domain.ProductionDetails{
			OutputID:    output.ID,
			OutputName:  output.Name,
			OutputQty:   req.OutputQty,
			Ingredients: lines,
		}})
	appendTx(next, tx)

	if err := s.commit(ctx, next); err != nil {
		return nil, err
	}
	return &tx, nil
}

// AdjustInventoryCount reconciles counted stock against system stock.
// Shrinkage is consumed through the FIFO ledger so the realized cost is
// exact; surplus enters as a new batch at the current average cost.
// This is where cost of goods is recognized under the periodic model.
func (s *Service) AdjustInventoryCount(ctx context.Context, req domain.InventoryCountRequest) (*domain.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.requireInitialized(); err != nil {
		return nil, err
	}
	if len(req.Counts) == 0 {
		return nil, fmt.Errorf("%w: no counts", store.ErrInvalidOperation)
	}

	next := s.state.Clone()
	now := s.now()

	var totalDiff float64
	var lines []domain.CountLine
	for _, count := range req.Counts {
		if count.CountedQty < 0 {
			return nil, fmt.Errorf("%w: counted quantity must not be negative", store.ErrInvalidOperation)
		}
		item := findItem(next, count.ItemID)
		if item == nil {
			return nil, fmt.Errorf("%w: inventory item %s", store.ErrNotFound, count.ItemID)
		}
		systemQty := item.Stock
		diffQty := systemQty - count.CountedQty
		if diffQty == 0 {
			continue
		}
		var diffValue float64
		if diffQty > 0 {
			diffValue = inventory.Consume(item, diffQty)
		} else {
			found := -diffQty
			diffValue = -accounting.Round2(found * item.Cost)
			inventory.AddBatch(item, found, item.Cost, now)
		}
		totalDiff += diffValue
		lines = append(lines, domain.CountLine{
			ItemID:     item.ID,
			Name:       item.Name,
			SystemQty:  systemQty,
			CountedQty: count.CountedQty,
			DiffValue:  diffValue,
		})
	}
	if len(lines) == 0 {
		return nil, nil
	}

	totalDiff = accounting.Round2(totalDiff)
	next.Accounts = accounting.AdjustInventory(next.Accounts, totalDiff)

	direction := domain.DirectionLoss
	description := "Ajuste por conteo físico de inventario (faltante)"
	if totalDiff < 0 {
		direction = domain.DirectionGain
		description = "Ajuste por conteo físico de inventario (sobrante)"
	}

	tx := s.newTx(domain.TxAdjustment, math.Abs(totalDiff), description, &domain.TxDetails{
		Adjustment: &domain.AdjustmentDetails{
			Kind:      domain.AdjustmentInventory,
			Direction: direction,
			Lines:     lines,
		}})
	tx.COGS = totalDiff
	appendTx(next, tx)

	if err := s.commit(ctx, next); err != nil {
		return nil, err
	}
	return &tx, nil
}

// AdjustAssetCount reconciles counted fixed assets. No lot tracking:
// the asset's value and quantity are overwritten proportionally.
func (s *Service) AdjustAssetCount(ctx context.Context, req domain.AssetCountRequest) (*domain.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.requireInitialized(); err != nil {
		return nil, err
	}
	if len(req.Counts) == 0 {
		return nil, fmt.Errorf("%w: no counts", store.ErrInvalidOperation)
	}

	next := s.state.Clone()

	var totalDiff float64
	var lines []domain.CountLine
	for _, count := range req.Counts {
		if count.CountedQty < 0 {
			return nil, fmt.Errorf("%w: counted quantity must not be negative", store.ErrInvalidOperation)
		}
		asset := findAsset(next, count.AssetID)
		if asset == nil {
			return nil, fmt.Errorf("%w: asset %s", store.ErrNotFound, count.AssetID)
		}
		if asset.Quantity == count.CountedQty {
			continue
		}
		var unitValue float64
		if asset.Quantity > 0 {
			unitValue = asset.Value / asset.Quantity
		}
		countedValue := accounting.Round2(unitValue * count.CountedQty)
		diffValue := accounting.Round2(asset.Value - countedValue)
		lines = append(lines, domain.CountLine{
			ItemID:     asset.ID,
			Name:       asset.Name,
			SystemQty:  asset.Quantity,
			CountedQty: count.CountedQty,
			DiffValue:  diffValue,
		})
		asset.Quantity = count.CountedQty
		asset.Value = countedValue
		totalDiff += diffValue
	}
	if len(lines) == 0 {
		return nil, nil
	}

	totalDiff = accounting.Round2(totalDiff)
	next.Accounts = accounting.AdjustAssets(next.Accounts, totalDiff)

	direction := domain.DirectionLoss
	description := "Ajuste por conteo de activos fijos (faltante)"
	if totalDiff < 0 {
		direction = domain.DirectionGain
		description = "Ajuste por conteo de activos fijos (sobrante)"
	}

	tx := s.newTx(domain.TxAdjustment, math.Abs(totalDiff), description, &domain.TxDetails{
		Adjustment: &domain.AdjustmentDetails{
			Kind:      domain.AdjustmentAsset,
			Direction: direction,
			Lines:     lines,
		}})
	tx.COGS = totalDiff
	appendTx(next, tx)

	if err := s.commit(ctx, next); err != nil {
		return nil, err
	}
	return &tx, nil
}

// AuditCash reconciles a money account against its physical count. A
// shortage books an expense, a surplus books revenue. A matching count
// records nothing.
func (s *Service) AuditCash(ctx context.Context, req domain.CashAuditRequest) (*domain.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.requireInitialized(); err != nil {
		return nil, err
	}
	if !req.Account.Valid() {
		return nil, fmt.Errorf("%w: unknown account %q", store.ErrInvalidOperation, req.Account)
	}
	if req.CountedValue < 0 {
		return nil, fmt.Errorf("%w: counted value must not be negative", store.ErrInvalidOperation)
	}

	next := s.state.Clone()

	system := next.Accounts.Cash
	label := "caja chica"
	if req.Account == domain.MethodBank {
		system = next.Accounts.Bank
		label = "banco"
	}
	diff := accounting.Round2(system - req.CountedValue)
	if diff == 0 {
		return nil, nil
	}

	next.Accounts = accounting.AuditCash(next.Accounts, req.Account, diff)

	direction := domain.DirectionLoss
	description := fmt.Sprintf("Arqueo de %s: faltante", label)
	if diff < 0 {
		direction = domain.DirectionGain
		description = fmt.Sprintf("Arqueo de %s: sobrante", label)
	}

	tx := s.newTx(domain.TxAdjustment, math.Abs(diff), description, &domain.TxDetails{
		Adjustment: &domain.AdjustmentDetails{
			Kind:      domain.AdjustmentCash,
			Direction: direction,
			Account:   req.Account,
		}})
	appendTx(next, tx)

	if err := s.commit(ctx, next); err != nil {
		return nil, err
	}
	return &tx, nil
}

// Summary derives income-statement figures for an inclusive date
// window from the transaction log.
func (s *Service) Summary(from, to string) (domain.Summary, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	lo, hi, err := ledger.ParseWindow(from, to)
	if err != nil {
		return domain.Summary{}, fmt.Errorf("%w: bad date window: %v", store.ErrInvalidOperation, err)
	}
	return ledger.Summarize(s.state.Transactions, lo, hi), nil
}

// Transactions lists log entries newest-first with optional filters.
func (s *Service) Transactions(filter domain.TransactionFilter) ([]domain.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	lo, hi, err := ledger.ParseWindow(filter.From, filter.To)
	if err != nil {
		return nil, fmt.Errorf("%w: bad date window: %v", store.ErrInvalidOperation, err)
	}

	out := make([]domain.Transaction, 0, len(s.state.Transactions))
	for _, tx := range s.state.Transactions {
		if tx.Voided() && !filter.ShowVoided {
			continue
		}
		if filter.Type != "" && tx.Type != filter.Type {
			continue
		}
		if !ledger.InWindow(tx.Date, lo, hi) {
			continue
		}
		out = append(out, tx)
		if filter.Limit > 0 && len(out) >= filter.Limit {
			break
		}
	}
	return out, nil
}

// Snapshot returns a deep copy of the whole state.
func (s *Service) Snapshot() *domain.AppState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Clone()
}

// ImportState replaces the whole state wholesale. All-or-nothing: a
// snapshot that breaks the identity is rejected and the live state is
// left untouched.
func (s *Service) ImportState(ctx context.Context, state *domain.AppState) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if state == nil {
		return fmt.Errorf("%w: empty snapshot", store.ErrInvalidOperation)
	}
	if state.Initialized && !accounting.Balanced(state.Accounts) {
		return fmt.Errorf("%w: snapshot breaks the accounting identity", store.ErrInvalidOperation)
	}
	return s.commit(ctx, state.Clone())
}

// Reset wipes everything back to factory state.
func (s *Service) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	fresh := domain.NewAppState()
	return s.commit(ctx, &fresh)
}
