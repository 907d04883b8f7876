// Package httpapi exposes the bookkeeping engine over JSON HTTP. The
// UI is a separate desktop shell; this layer only validates shapes,
// maps sentinel errors to status codes and forwards to the service.
package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"jardinerp/backend/internal/backup"
	"jardinerp/backend/internal/cache"
	"jardinerp/backend/internal/domain"
	"jardinerp/backend/internal/service"
	"jardinerp/backend/internal/store"
)

type API struct {
	service       *service.Service
	summaries     cache.SummaryCache
	summaryTTL    time.Duration
	backups       *backup.Manager
	allowedOrigin string
}

func New(svc *service.Service, summaries cache.SummaryCache, summaryTTL time.Duration, backups *backup.Manager, allowedOrigin string) *API {
	if summaries == nil {
		summaries = cache.NoopSummaryCache{}
	}
	if summaryTTL <= 0 {
		summaryTTL = 30 * time.Second
	}
	return &API{
		service:       svc,
		summaries:     summaries,
		summaryTTL:    summaryTTL,
		backups:       backups,
		allowedOrigin: allowedOrigin,
	}
}

func (a *API) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/healthz", a.handleHealth)

	mux.HandleFunc("/api/v1/initialize", a.handleInitialize)
	mux.HandleFunc("/api/v1/purchases", a.handlePurchases)
	mux.HandleFunc("/api/v1/sales", a.handleSales)
	mux.HandleFunc("/api/v1/expenses", a.handleExpenses)
	mux.HandleFunc("/api/v1/production", a.handleProduction)
	mux.HandleFunc("/api/v1/production/preview", a.handleProductionPreview)
	mux.HandleFunc("/api/v1/adjustments/inventory", a.handleInventoryCount)
	mux.HandleFunc("/api/v1/adjustments/assets", a.handleAssetCount)
	mux.HandleFunc("/api/v1/adjustments/cash", a.handleCashAudit)

	mux.HandleFunc("/api/v1/transactions", a.handleTransactions)
	mux.HandleFunc("/api/v1/transactions/export.csv", a.handleTransactionsCSV)
	mux.HandleFunc("/api/v1/transactions/", a.handleTransactionActions)
	mux.HandleFunc("/api/v1/summary", a.handleSummary)

	mux.HandleFunc("/api/v1/products", a.handleProducts)
	mux.HandleFunc("/api/v1/products/", a.handleProductActions)
	mux.HandleFunc("/api/v1/providers", a.handleProviders)
	mux.HandleFunc("/api/v1/providers/", a.handleProviderActions)
	mux.HandleFunc("/api/v1/expense-types", a.handleExpenseTypes)
	mux.HandleFunc("/api/v1/expense-types/", a.handleExpenseTypeActions)
	mux.HandleFunc("/api/v1/inventory/", a.handleInventoryActions)

	mux.HandleFunc("/api/v1/state", a.handleState)
	mux.HandleFunc("/api/v1/selfcheck", a.handleSelfCheck)
	mux.HandleFunc("/api/v1/reset", a.handleReset)
	mux.HandleFunc("/api/v1/backups", a.handleBackups)
	mux.HandleFunc("/api/v1/backups/", a.handleBackupActions)

	return a.withMiddleware(mux)
}

func (a *API) withMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")
		w.Header().Set("Access-Control-Allow-Origin", a.allowedOrigin)
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		w.Header().Set("Access-Control-Allow-Methods", "GET,POST,PATCH,DELETE,OPTIONS")
		w.Header().Set("Vary", "Origin")

		if r.Method == http.MethodPost || r.Method == http.MethodPatch {
			r.Body = http.MaxBytesReader(w, r.Body, 4<<20)
		}

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		startedAt := time.Now()
		next.ServeHTTP(w, r)
		log.Printf("%s %s %s", r.Method, r.URL.Path, time.Since(startedAt))
	})
}

// invalidateSummaries drops memoized period figures after a commit.
func (a *API) invalidateSummaries(r *http.Request) {
	if err := a.summaries.Invalidate(r.Context()); err != nil {
		log.Printf("[httpapi] summary cache invalidation failed: %v", err)
	}
}

func (a *API) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeMethodNotAllowed(w)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"status": "ok"})
}

func (a *API) handleInitialize(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeMethodNotAllowed(w)
		return
	}
	var req domain.InitializeRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	tx, err := a.service.Initialize(r.Context(), req)
	if err != nil {
		writeError(w, statusForError(err), err)
		return
	}
	a.invalidateSummaries(r)
	writeJSON(w, http.StatusCreated, map[string]any{"transaction": tx})
}

func (a *API) handlePurchases(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeMethodNotAllowed(w)
		return
	}
	var req domain.PurchaseRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	tx, err := a.service.RegisterPurchase(r.Context(), req)
	if err != nil {
		writeError(w, statusForError(err), err)
		return
	}
	a.invalidateSummaries(r)
	writeJSON(w, http.StatusCreated, map[string]any{"transaction": tx})
}

func (a *API) handleSales(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeMethodNotAllowed(w)
		return
	}
	var req domain.SaleRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	tx, err := a.service.RegisterSale(r.Context(), req)
	if err != nil {
		writeError(w, statusForError(err), err)
		return
	}
	a.invalidateSummaries(r)
	writeJSON(w, http.StatusCreated, map[string]any{"transaction": tx})
}

func (a *API) handleExpenses(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeMethodNotAllowed(w)
		return
	}
	var req domain.ExpenseRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	tx, err := a.service.PayExpense(r.Context(), req)
	if err != nil {
		writeError(w, statusForError(err), err)
		return
	}
	a.invalidateSummaries(r)
	writeJSON(w, http.StatusCreated, map[string]any{"transaction": tx})
}

func (a *API) handleProduction(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeMethodNotAllowed(w)
		return
	}
	var req domain.ProductionRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	tx, err := a.service.RegisterProduction(r.Context(), req)
	if err != nil {
		writeError(w, statusForError(err), err)
		return
	}
	a.invalidateSummaries(r)
	writeJSON(w, http.StatusCreated, map[string]any{"transaction": tx})
}

func (a *API) handleProductionPreview(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeMethodNotAllowed(w)
		return
	}
	var req domain.ProductionRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	cost, err := a.service.PreviewProductionCost(req)
	if err != nil {
		writeError(w, statusForError(err), err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"estimatedCost": cost})
}

func (a *API) handleInventoryCount(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeMethodNotAllowed(w)
		return
	}
	var req domain.InventoryCountRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	tx, err := a.service.AdjustInventoryCount(r.Context(), req)
	if err != nil {
		writeError(w, statusForError(err), err)
		return
	}
	a.invalidateSummaries(r)
	writeJSON(w, http.StatusOK, map[string]any{"transaction": tx})
}

func (a *API) handleAssetCount(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeMethodNotAllowed(w)
		return
	}
	var req domain.AssetCountRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	tx, err := a.service.AdjustAssetCount(r.Context(), req)
	if err != nil {
		writeError(w, statusForError(err), err)
		return
	}
	a.invalidateSummaries(r)
	writeJSON(w, http.StatusOK, map[string]any{"transaction": tx})
}

func (a *API) handleCashAudit(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeMethodNotAllowed(w)
		return
	}
	var req domain.CashAuditRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	tx, err := a.service.AuditCash(r.Context(), req)
	if err != nil {
		writeError(w, statusForError(err), err)
		return
	}
	a.invalidateSummaries(r)
	writeJSON(w, http.StatusOK, map[string]any{"transaction": tx})
}

func filterFromQuery(r *http.Request) domain.TransactionFilter {
	q := r.URL.Query()
	return domain.TransactionFilter{
		Type:       domain.TxType(strings.ToUpper(strings.TrimSpace(q.Get("type")))),
		From:       strings.TrimSpace(q.Get("from")),
		To:         strings.TrimSpace(q.Get("to")),
		ShowVoided: q.Get("showVoided") == "true",
		Limit:      parsePositiveLimit(q.Get("limit"), 0, 1000),
	}
}

func (a *API) handleTransactions(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeMethodNotAllowed(w)
		return
	}
	txs, err := a.service.Transactions(filterFromQuery(r))
	if err != nil {
		writeError(w, statusForError(err), err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"transactions": txs})
}

func (a *API) handleTransactionsCSV(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeMethodNotAllowed(w)
		return
	}
	txs, err := a.service.Transactions(filterFromQuery(r))
	if err != nil {
		writeError(w, statusForError(err), err)
		return
	}
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="transacciones.csv"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(transactionsToCSV(txs)))
}

func transactionsToCSV(txs []domain.Transaction) string {
	lines := []string{"id,date,type,status,amount,cogs,description"}
	for _, tx := range txs {
		lines = append(lines, fmt.Sprintf("%s,%s,%s,%s,%.2f,%.2f,%s",
			tx.ID,
			tx.Date.Format(time.RFC3339),
			tx.Type,
			tx.Status,
			tx.Amount,
			tx.COGS,
			csvEscape(tx.Description),
		))
	}
	return strings.Join(lines, "\n") + "\n"
}

func csvEscape(s string) string {
	if strings.ContainsAny(s, ",\"\n") {
		return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
	}
	return s
}

func (a *API) handleTransactionActions(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeMethodNotAllowed(w)
		return
	}

	prefix := "/api/v1/transactions/"
	if !strings.HasPrefix(r.URL.Path, prefix) || !strings.HasSuffix(r.URL.Path, "/void") {
		writeError(w, http.StatusBadRequest, errors.New("invalid transaction action path"))
		return
	}
	txID := strings.TrimSuffix(strings.TrimPrefix(r.URL.Path, prefix), "/void")
	txID = strings.TrimSpace(strings.Trim(txID, "/"))
	if txID == "" {
		writeError(w, http.StatusBadRequest, errors.New("transaction id required"))
		return
	}

	contra, err := a.service.RevertTransaction(r.Context(), txID)
	if err != nil {
		writeError(w, statusForError(err), err)
		return
	}
	a.invalidateSummaries(r)
	writeJSON(w, http.StatusOK, map[string]any{"contra": contra})
}

func (a *API) handleSummary(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeMethodNotAllowed(w)
		return
	}
	q := r.URL.Query()
	from := strings.TrimSpace(q.Get("from"))
	to := strings.TrimSpace(q.Get("to"))
	key := from + "|" + to

	if cached, ok, err := a.summaries.Get(r.Context(), key); err == nil && ok {
		writeJSON(w, http.StatusOK, cached)
		return
	} else if err != nil {
		log.Printf("[httpapi] summary cache read failed: %v", err)
	}

	summary, err := a.service.Summary(from, to)
	if err != nil {
		writeError(w, statusForError(err), err)
		return
	}
	if err := a.summaries.Set(r.Context(), key, &summary, a.summaryTTL); err != nil {
		log.Printf("[httpapi] summary cache write failed: %v", err)
	}
	writeJSON(w, http.StatusOK, summary)
}

func (a *API) handleProducts(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		writeJSON(w, http.StatusOK, map[string]any{"products": a.service.Snapshot().Products})
	case http.MethodPost:
		var req struct {
			Name            string  `json:"name"`
			Price           float64 `json:"price"`
			InventoryItemID string  `json:"inventoryItemId"`
		}
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		product, err := a.service.CreateProduct(r.Context(), req.Name, req.Price, req.InventoryItemID)
		if err != nil {
			writeError(w, statusForError(err), err)
			return
		}
		writeJSON(w, http.StatusCreated, map[string]any{"product": product})
	default:
		writeMethodNotAllowed(w)
	}
}

func (a *API) handleProductActions(w http.ResponseWriter, r *http.Request) {
	id := pathID(r.URL.Path, "/api/v1/products/")
	if id == "" {
		writeError(w, http.StatusBadRequest, errors.New("product id required"))
		return
	}
	switch r.Method {
	case http.MethodPatch:
		var req struct {
			Name  string  `json:"name"`
			Price float64 `json:"price"`
		}
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		product, err := a.service.UpdateProduct(r.Context(), id, req.Name, req.Price)
		if err != nil {
			writeError(w, statusForError(err), err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"product": product})
	case http.MethodDelete:
		if err := a.service.DeleteProduct(r.Context(), id); err != nil {
			writeError(w, statusForError(err), err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"deleted": id})
	default:
		writeMethodNotAllowed(w)
	}
}

func (a *API) handleProviders(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		writeJSON(w, http.StatusOK, map[string]any{"providers": a.service.Snapshot().Providers})
	case http.MethodPost:
		var req struct {
			Name string `json:"name"`
		}
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		provider, err := a.service.CreateProvider(r.Context(), req.Name)
		if err != nil {
			writeError(w, statusForError(err), err)
			return
		}
		writeJSON(w, http.StatusCreated, map[string]any{"provider": provider})
	default:
		writeMethodNotAllowed(w)
	}
}

func (a *API) handleProviderActions(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodDelete {
		writeMethodNotAllowed(w)
		return
	}
	id := pathID(r.URL.Path, "/api/v1/providers/")
	if id == "" {
		writeError(w, http.StatusBadRequest, errors.New("provider id required"))
		return
	}
	if err := a.service.DeleteProvider(r.Context(), id); err != nil {
		writeError(w, statusForError(err), err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"deleted": id})
}

func (a *API) handleExpenseTypes(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		writeJSON(w, http.StatusOK, map[string]any{"expenseTypes": a.service.Snapshot().ExpenseTypes})
	case http.MethodPost:
		var req struct {
			Name string `json:"name"`
		}
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		expenseType, err := a.service.CreateExpenseType(r.Context(), req.Name)
		if err != nil {
			writeError(w, statusForError(err), err)
			return
		}
		writeJSON(w, http.StatusCreated, map[string]any{"expenseType": expenseType})
	default:
		writeMethodNotAllowed(w)
	}
}

func (a *API) handleExpenseTypeActions(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodDelete {
		writeMethodNotAllowed(w)
		return
	}
	id := pathID(r.URL.Path, "/api/v1/expense-types/")
	if id == "" {
		writeError(w, http.StatusBadRequest, errors.New("expense type id required"))
		return
	}
	if err := a.service.DeleteExpenseType(r.Context(), id); err != nil {
		writeError(w, statusForError(err), err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"deleted": id})
}

func (a *API) handleInventoryActions(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodDelete {
		writeMethodNotAllowed(w)
		return
	}
	id := pathID(r.URL.Path, "/api/v1/inventory/")
	if id == "" {
		writeError(w, http.StatusBadRequest, errors.New("inventory item id required"))
		return
	}
	if err := a.service.DeleteInventoryItem(r.Context(), id); err != nil {
		writeError(w, statusForError(err), err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"deleted": id})
}

func (a *API) handleState(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		writeJSON(w, http.StatusOK, a.service.Snapshot())
	case http.MethodPost:
		var state domain.AppState
		if err := decodeJSON(r, &state); err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		if err := a.service.ImportState(r.Context(), &state); err != nil {
			writeError(w, statusForError(err), err)
			return
		}
		a.invalidateSummaries(r)
		writeJSON(w, http.StatusOK, map[string]any{"imported": true})
	default:
		writeMethodNotAllowed(w)
	}
}

func (a *API) handleSelfCheck(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeMethodNotAllowed(w)
		return
	}
	writeJSON(w, http.StatusOK, a.service.SelfCheck(r.Context()))
}

func (a *API) handleReset(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeMethodNotAllowed(w)
		return
	}
	if err := a.service.Reset(r.Context()); err != nil {
		writeError(w, statusForError(err), err)
		return
	}
	a.invalidateSummaries(r)
	writeJSON(w, http.StatusOK, map[string]any{"reset": true})
}

func (a *API) handleBackups(w http.ResponseWriter, r *http.Request) {
	if a.backups == nil {
		writeError(w, http.StatusServiceUnavailable, errors.New("backups not configured"))
		return
	}
	switch r.Method {
	case http.MethodGet:
		infos, err := a.backups.List()
		if err != nil {
			writeError(w, http.StatusInternalServerError, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"backups": infos})
	case http.MethodPost:
		name, written, err := a.backups.WriteDaily(a.service.Snapshot())
		if err != nil {
			writeError(w, http.StatusInternalServerError, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"name": name, "written": written})
	default:
		writeMethodNotAllowed(w)
	}
}

func (a *API) handleBackupActions(w http.ResponseWriter, r *http.Request) {
	if a.backups == nil {
		writeError(w, http.StatusServiceUnavailable, errors.New("backups not configured"))
		return
	}
	if r.Method != http.MethodPost {
		writeMethodNotAllowed(w)
		return
	}
	prefix := "/api/v1/backups/"
	if !strings.HasSuffix(r.URL.Path, "/restore") {
		writeError(w, http.StatusBadRequest, errors.New("invalid backup action path"))
		return
	}
	name := strings.TrimSuffix(strings.TrimPrefix(r.URL.Path, prefix), "/restore")
	name = strings.Trim(name, "/")

	raw, err := a.backups.Restore(name)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	var state domain.AppState
	if err := json.Unmarshal(raw, &state); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("corrupt backup state: %w", err))
		return
	}
	if err := a.service.ImportState(r.Context(), &state); err != nil {
		writeError(w, statusForError(err), err)
		return
	}
	a.invalidateSummaries(r)
	writeJSON(w, http.StatusOK, map[string]any{"restored": name})
}

func pathID(path, prefix string) string {
	return strings.TrimSpace(strings.Trim(strings.TrimPrefix(path, prefix), "/"))
}

func statusForError(err error) int {
	switch {
	case errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, store.ErrNotRevertible):
		return http.StatusConflict
	case errors.Is(err, store.ErrNotInitialized):
		return http.StatusConflict
	case errors.Is(err, store.ErrInvalidOperation):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func parsePositiveLimit(raw string, fallback, ceiling int) int {
	limit := fallback
	if parsed, err := strconv.Atoi(strings.TrimSpace(raw)); err == nil && parsed > 0 {
		limit = parsed
	}
	if ceiling > 0 && limit > ceiling {
		return ceiling
	}
	return limit
}

func decodeJSON(r *http.Request, dest any) error {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	return decoder.Decode(dest)
}

func writeMethodNotAllowed(w http.ResponseWriter) {
	writeError(w, http.StatusMethodNotAllowed, errors.New("method not allowed"))
}

func writeError(w http.ResponseWriter, status int, err error) {
	// 5xx details stay in the log; clients get a generic message.
	msg := err.Error()
	if status >= 500 {
		log.Printf("internal error (status %d): %v", status, err)
		msg = "internal server error"
	}
	writeJSON(w, status, map[string]any{
		"error": msg,
	})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
