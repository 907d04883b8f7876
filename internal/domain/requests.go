package domain

// Operation request payloads consumed by the service layer. The HTTP
// boundary validates amounts and required fields before the core is
// invoked; the core treats degenerate input permissively: a zero
// quantity is a no-op and unknown ids short-circuit.

type InitialInventoryLine struct {
	Name     string  `json:"name"`
	Quantity float64 `json:"quantity"`
	UnitCost float64 `json:"unitCost"`
}

type InitialAssetLine struct {
	Name     string  `json:"name"`
	Quantity float64 `json:"quantity"`
	Value    float64 `json:"value"`
}

type InitializeRequest struct {
	Cash      float64                `json:"cash"`
	Bank      float64                `json:"bank"`
	Inventory []InitialInventoryLine `json:"inventory,omitempty"`
	Assets    []InitialAssetLine     `json:"assets,omitempty"`
}

type PurchaseRequest struct {
	Kind         PurchaseKind  `json:"kind"`
	ItemID       string        `json:"itemId,omitempty"`
	ItemName     string        `json:"itemName,omitempty"`
	ProviderID   string        `json:"providerId,omitempty"`
	ProviderName string        `json:"providerName,omitempty"`
	Quantity     float64       `json:"quantity"`
	Amount       float64       `json:"amount"`
	Method       PaymentMethod `json:"method"`
}

type SaleLine struct {
	ProductID string  `json:"productId,omitempty"`
	Name      string  `json:"name,omitempty"`
	Qty       float64 `json:"qty"`
	Price     float64 `json:"price"`
}

type SaleRequest struct {
	Cart   []SaleLine    `json:"cart"`
	Method PaymentMethod `json:"method"`
}

type ExpenseRequest struct {
	TypeID       string        `json:"typeId,omitempty"`
	TypeName     string        `json:"typeName,omitempty"`
	ProviderID   string        `json:"providerId,omitempty"`
	ProviderName string        `json:"providerName,omitempty"`
	Amount       float64       `json:"amount"`
	Method       PaymentMethod `json:"method"`
}

type ProductionInput struct {
	ItemID string  `json:"itemId"`
	Qty    float64 `json:"qty"`
}

type ProductionRequest struct {
	Ingredients []ProductionInput `json:"ingredients"`
	OutputName  string            `json:"outputName"`
	OutputQty   float64           `json:"outputQty"`
}

type InventoryCount struct {
	ItemID     string  `json:"itemId"`
	CountedQty float64 `json:"countedQty"`
}

type InventoryCountRequest struct {
	Counts []InventoryCount `json:"counts"`
}

type AssetCount struct {
	AssetID    string  `json:"assetId"`
	CountedQty float64 `json:"countedQty"`
}

type AssetCountRequest struct {
	Counts []AssetCount `json:"counts"`
}

type CashAuditRequest struct {
	Account      PaymentMethod `json:"account"`
	CountedValue float64       `json:"countedValue"`
}

// TransactionFilter narrows log listings; zero values mean "no filter".
type TransactionFilter struct {
	Type       TxType `json:"type,omitempty"`
	From       string `json:"from,omitempty"` // YYYY-MM-DD inclusive
	To         string `json:"to,omitempty"`   // YYYY-MM-DD inclusive
	ShowVoided bool   `json:"showVoided,omitempty"`
	Limit      int    `json:"limit,omitempty"`
}

// SelfCheckResult reports the outcome of the scripted audit scenario.
type SelfCheckResult struct {
	Passed bool     `json:"passed"`
	Logs   []string `json:"logs"`
}
