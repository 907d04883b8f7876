package service

import (
	"context"
	"fmt"
	"math"
	"time"

	"jardinerp/backend/internal/accounting"
	"jardinerp/backend/internal/domain"
	"jardinerp/backend/internal/ledger"
	"jardinerp/backend/internal/store/memory"
)

// SelfCheck replays a scripted bookkeeping scenario on a scratch copy
// of the engine and asserts the accounting identity at the end, plus
// once more after reverting a sale. It is the system's audit oracle
// and never touches the live state.
func (s *Service) SelfCheck(ctx context.Context) domain.SelfCheckResult {
	fresh := domain.NewAppState()
	scratch := &Service{repo: memory.New(), state: &fresh, now: s.now}

	result := domain.SelfCheckResult{Passed: true}
	logf := func(format string, args ...any) {
		result.Logs = append(result.Logs, fmt.Sprintf(format, args...))
	}
	fail := func(format string, args ...any) {
		result.Passed = false
		logf("FALLO: "+format, args...)
	}
	step := func(what string, err error) bool {
		if err != nil {
			fail("%s: %v", what, err)
			return false
		}
		logf("%s", what)
		return true
	}

	if _, err := scratch.Initialize(ctx, domain.InitializeRequest{Cash: 50000, Bank: 100000}); !step("Aporte de capital 150,000 (50,000 caja, 100,000 banco)", err) {
		return result
	}

	if _, err := scratch.RegisterPurchase(ctx, domain.PurchaseRequest{
		Kind: domain.PurchaseInventory, ItemName: "Harina", Quantity: 10, Amount: 10000,
		Method: domain.MethodBank, ProviderName: "Proveedor Harina S.A.",
	}); !step("Compra inventario: Harina x10 por 10,000 (banco)", err) {
		return result
	}

	if _, err := scratch.RegisterPurchase(ctx, domain.PurchaseRequest{
		Kind: domain.PurchaseAsset, ItemName: "Batidora", Quantity: 1, Amount: 20000,
		Method: domain.MethodCash,
	}); !step("Compra activo: Batidora por 20,000 (caja)", err) {
		return result
	}

	firstSale, err := scratch.RegisterSale(ctx, domain.SaleRequest{
		Cart:   []domain.SaleLine{{Name: "Servicio", Qty: 1, Price: 3000}},
		Method: domain.MethodCash,
	})
	if !step("Venta de servicio por 3,000 (caja)", err) {
		return result
	}

	harina := findItemByName(scratch.state, "Harina")
	if harina == nil {
		fail("Harina no existe tras la compra")
		return result
	}
	if _, err := scratch.RegisterProduction(ctx, domain.ProductionRequest{
		Ingredients: []domain.ProductionInput{{ItemID: harina.ID, Qty: 2}},
		OutputName:  "Pan", OutputQty: 10,
	}); !step("Producción: 10 Pan consumiendo 2 Harina (costo 2,000)", err) {
		return result
	}

	if _, err := scratch.RegisterSale(ctx, domain.SaleRequest{
		Cart:   []domain.SaleLine{{Name: "Pan", Qty: 5, Price: 500}},
		Method: domain.MethodBank,
	}); !step("Venta: 5 Pan por 2,500 (banco)", err) {
		return result
	}

	if _, err := scratch.PayExpense(ctx, domain.ExpenseRequest{
		TypeName: "Servicios Públicos", Amount: 5000, Method: domain.MethodBank,
	}); !step("Gasto por 5,000 (banco)", err) {
		return result
	}

	if _, err := scratch.RegisterPurchase(ctx, domain.PurchaseRequest{
		Kind: domain.PurchaseAsset, ItemName: "Sillas Extras", Quantity: 4, Amount: 5000,
		Method: domain.MethodCash,
	}); !step("Compra activo: Sillas Extras x4 por 5,000 (caja)", err) {
		return result
	}

	if _, err := scratch.RegisterPurchase(ctx, domain.PurchaseRequest{
		Kind: domain.PurchaseInventory, ItemName: "Huevos", Quantity: 30, Amount: 3000,
		Method: domain.MethodBank, ProviderName: "Granja Avícola",
	}); !step("Compra inventario: Huevos x30 por 3,000 (banco)", err) {
		return result
	}

	if _, err := scratch.RegisterSale(ctx, domain.SaleRequest{
		Cart:   []domain.SaleLine{{Name: "Pan", Qty: 1, Price: 400}},
		Method: domain.MethodCash,
	}); !step("Venta: 1 Pan por 400 (caja)", err) {
		return result
	}

	// Re-resolve against the current state: commits swap the snapshot,
	// so earlier pointers carry stale stock figures.
	harina = findItemByName(scratch.state, "Harina")
	pan := findItemByName(scratch.state, "Pan")
	huevos := findItemByName(scratch.state, "Huevos")
	if harina == nil || pan == nil || huevos == nil {
		fail("faltan artículos para el conteo físico")
		return result
	}
	if _, err := scratch.AdjustInventoryCount(ctx, domain.InventoryCountRequest{
		Counts: []domain.InventoryCount{
			{ItemID: harina.ID, CountedQty: harina.Stock - 1},
			{ItemID: pan.ID, CountedQty: pan.Stock - 6},
			{ItemID: huevos.ID, CountedQty: huevos.Stock - 2},
		},
	}); !step("Conteo físico: faltan 1 Harina, 6 Pan, 2 Huevos", err) {
		return result
	}

	if diff := identityViaLedger(scratch.state); math.Abs(diff) >= accounting.BalanceEpsilon {
		fail("descuadre tras el escenario: %.4f", diff)
	} else {
		logf("Identidad contable verificada tras el escenario (desvío %.4f)", diff)
	}

	if firstSale != nil {
		if _, err := scratch.RevertTransaction(ctx, firstSale.ID); !step("Anulación de la primera venta", err) {
			return result
		}
		if diff := identityViaLedger(scratch.state); math.Abs(diff) >= accounting.BalanceEpsilon {
			fail("descuadre tras la anulación: %.4f", diff)
		} else {
			logf("Identidad contable verificada tras la anulación (desvío %.4f)", diff)
		}
	}

	if result.Passed {
		logf("Auditoría del sistema superada")
	}
	return result
}

// identityViaLedger checks assets against equity plus the net income
// derived from the transaction log, not the cumulative balances.
func identityViaLedger(state *domain.AppState) float64 {
	summary := ledger.Summarize(state.Transactions, time.Time{}, time.Time{})
	assets := state.Accounts.Cash + state.Accounts.Bank + state.Accounts.Inventory + state.Accounts.FixedAssets
	return assets - (state.Accounts.Equity + summary.NetIncome)
}
