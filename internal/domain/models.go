package domain

import "time"

// PaymentMethod identifies the liquid account an operation moves money
// through. The values match the snapshot vocabulary ("caja chica" =
// petty cash drawer).
type PaymentMethod string

const (
	MethodCash PaymentMethod = "caja_chica"
	MethodBank PaymentMethod = "banco"
)

func (m PaymentMethod) Valid() bool {
	return m == MethodCash || m == MethodBank
}

type TxType string

const (
	TxPurchase       TxType = "PURCHASE"
	TxSale           TxType = "SALE"
	TxExpense        TxType = "EXPENSE"
	TxProduction     TxType = "PRODUCTION"
	TxAdjustment     TxType = "ADJUSTMENT"
	TxInitialization TxType = "INITIALIZATION"
)

type TxStatus string

const (
	TxStatusActive TxStatus = "ACTIVE"
	TxStatusVoided TxStatus = "VOIDED"
)

type PurchaseKind string

const (
	PurchaseInventory PurchaseKind = "inventory"
	PurchaseAsset     PurchaseKind = "asset"
)

// AdjustmentKind classifies ADJUSTMENT transactions explicitly so that
// reports never have to parse the human description.
type AdjustmentKind string

const (
	AdjustmentCash      AdjustmentKind = "cash"
	AdjustmentInventory AdjustmentKind = "inventory"
	AdjustmentAsset     AdjustmentKind = "asset"
)

type AdjustmentDirection string

const (
	DirectionLoss AdjustmentDirection = "loss"
	DirectionGain AdjustmentDirection = "gain"
)

// Accounts holds the live balance sheet position. Cash, Bank, Inventory,
// FixedAssets and Equity are the authoritative stored balances; Revenue,
// CostOfGoods and Expenses are kept cumulatively for the legacy display
// path, but financial statements derive them from the transaction log
// (see internal/ledger).
type Accounts struct {
	Cash        float64 `json:"caja_chica"`
	Bank        float64 `json:"banco"`
	Inventory   float64 `json:"inventario"`
	FixedAssets float64 `json:"activo_fijo"`
	Equity      float64 `json:"patrimonio"`
	Revenue     float64 `json:"ventas"`
	CostOfGoods float64 `json:"costos"`
	Expenses    float64 `json:"gastos"`
}

// Batch is one acquisition lot of an inventory item. Batches are consumed
// oldest-first; Date drives the ordering.
type Batch struct {
	ID    string    `json:"id"`
	Date  time.Time `json:"date"`
	Cost  float64   `json:"cost"`
	Stock float64   `json:"stock"`
}

// InventoryItem tracks one stockable good. Cost is the weighted-average
// unit cost and Stock the total remaining quantity; both are derived from
// Batches and recomputed by internal/inventory on every mutation.
type InventoryItem struct {
	ID      string  `json:"id"`
	Name    string  `json:"name"`
	Cost    float64 `json:"cost"`
	Stock   float64 `json:"stock"`
	Batches []Batch `json:"batches,omitempty"`
	Hidden  bool    `json:"hidden,omitempty"`
}

// AssetItem is a fixed asset record. No lot tracking: physical counts
// overwrite Value and Quantity directly.
type AssetItem struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Value    float64 `json:"value"`
	Quantity float64 `json:"quantity"`
	Hidden   bool    `json:"hidden,omitempty"`
}

type Product struct {
	ID              string  `json:"id"`
	Name            string  `json:"name"`
	Price           float64 `json:"price"`
	InventoryItemID string  `json:"inventoryItemId,omitempty"`
	Hidden          bool    `json:"hidden,omitempty"`
}

type Provider struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Hidden bool   `json:"hidden,omitempty"`
}

type ExpenseType struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Hidden bool   `json:"hidden,omitempty"`
}

type CartLine struct {
	ItemID string  `json:"id,omitempty"`
	Name   string  `json:"name"`
	Qty    float64 `json:"qty"`
	Price  float64 `json:"price"`
}

type IngredientLine struct {
	ItemID   string  `json:"itemId"`
	Name     string  `json:"name"`
	Qty      float64 `json:"qty"`
	UnitCost float64 `json:"unitCost"`
}

type CountLine struct {
	ItemID     string  `json:"itemId"`
	Name       string  `json:"name"`
	SystemQty  float64 `json:"systemQty"`
	CountedQty float64 `json:"countedQty"`
	DiffValue  float64 `json:"diffValue"`
}

type PurchaseDetails struct {
	Kind         PurchaseKind  `json:"kind"`
	ItemID       string        `json:"itemId,omitempty"`
	ItemName     string        `json:"itemName"`
	ProviderName string        `json:"providerName,omitempty"`
	Quantity     float64       `json:"quantity"`
	Method       PaymentMethod `json:"method"`
}

type SaleDetails struct {
	Method PaymentMethod `json:"method"`
	Cart   []CartLine    `json:"cart,omitempty"`
}

type ExpenseDetails struct {
	TypeName     string        `json:"typeName"`
	ProviderName string        `json:"providerName,omitempty"`
	Method       PaymentMethod `json:"method"`
}

type ProductionDetails struct {
	OutputID    string           `json:"outputId"`
	OutputName  string           `json:"outputName"`
	OutputQty   float64          `json:"outputQty"`
	Ingredients []IngredientLine `json:"ingredients"`
}

type AdjustmentDetails struct {
	Kind      AdjustmentKind      `json:"kind,omitempty"`
	Direction AdjustmentDirection `json:"direction,omitempty"`
	Account   PaymentMethod       `json:"account,omitempty"`
	Lines     []CountLine         `json:"lines,omitempty"`
}

// TxDetails is a tagged union: exactly the variant matching the
// transaction type is set. Contra-entries produced by reversals carry an
// Adjustment marker with no kind.
type TxDetails struct {
	Purchase   *PurchaseDetails   `json:"purchase,omitempty"`
	Sale       *SaleDetails       `json:"sale,omitempty"`
	Expense    *ExpenseDetails    `json:"expense,omitempty"`
	Production *ProductionDetails `json:"production,omitempty"`
	Adjustment *AdjustmentDetails `json:"adjustment,omitempty"`
}

// Transaction is one entry of the append-only business event log.
// Immutable once created, except Status and VoidingTxID which the
// reversal engine writes exactly once. Entries are never deleted.
type Transaction struct {
	ID          string     `json:"id"`
	Date        time.Time  `json:"date"`
	Type        TxType     `json:"type"`
	Amount      float64    `json:"amount"`
	Description string     `json:"description"`
	COGS        float64    `json:"cogs,omitempty"`
	Status      TxStatus   `json:"status,omitempty"`
	VoidingTxID string     `json:"voidingTxId,omitempty"`
	Details     *TxDetails `json:"details,omitempty"`
}

// Voided reports whether the transaction has been annulled.
func (t Transaction) Voided() bool {
	return t.Status == TxStatusVoided
}

// IsContraEntry reports whether this transaction exists only to document
// the reversal of another one. A contra-entry is kept active (its cash
// effect is real) but never contributes to derived income-statement
// figures: excluding its voided counterpart already realizes the
// reversal.
func (t Transaction) IsContraEntry() bool {
	return t.Type == TxAdjustment && t.VoidingTxID != "" && t.Status != TxStatusVoided
}

// AppState is the whole persistable application state. Transactions
// are kept newest-first so listings need no sort.
type AppState struct {
	Initialized  bool            `json:"initialized"`
	Accounts     Accounts        `json:"accounts"`
	Inventory    []InventoryItem `json:"inventory"`
	Products     []Product       `json:"products"`
	Providers    []Provider      `json:"providers"`
	ExpenseTypes []ExpenseType   `json:"expenseTypes"`
	Transactions []Transaction   `json:"transactions"`
	Assets       []AssetItem     `json:"assets"`
}

// NewAppState returns the factory-fresh empty state.
func NewAppState() AppState {
	return AppState{
		Inventory:    []InventoryItem{},
		Products:     []Product{},
		Providers:    []Provider{},
		ExpenseTypes: []ExpenseType{},
		Transactions: []Transaction{},
		Assets:       []AssetItem{},
	}
}

// Summary holds derived income-statement figures for a period.
type Summary struct {
	Revenue     float64 `json:"revenue"`
	CostOfGoods float64 `json:"costOfGoods"`
	Expenses    float64 `json:"expenses"`
	GrossProfit float64 `json:"grossProfit"`
	NetIncome   float64 `json:"netIncome"`
}
