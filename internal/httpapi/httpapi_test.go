package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"jardinerp/backend/internal/backup"
	"jardinerp/backend/internal/cache"
	"jardinerp/backend/internal/domain"
	"jardinerp/backend/internal/service"
	"jardinerp/backend/internal/store/memory"
)

func newTestAPI(t *testing.T) (*API, http.Handler) {
	t.Helper()
	svc, err := service.New(context.Background(), memory.New())
	if err != nil {
		t.Fatalf("service.New: %v", err)
	}
	backups, err := backup.NewManager(t.TempDir(), 5)
	if err != nil {
		t.Fatalf("backup.NewManager: %v", err)
	}
	api := New(svc, cache.NoopSummaryCache{}, time.Second, backups, "http://127.0.0.1:3000")
	return api, api.Handler()
}

func doJSON(t *testing.T, h http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func initBooks(t *testing.T, h http.Handler) {
	t.Helper()
	rec := doJSON(t, h, http.MethodPost, "/api/v1/initialize", domain.InitializeRequest{
		Cash: 50000,
		Bank: 100000,
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("initialize status = %d, body %s", rec.Code, rec.Body.String())
	}
}

func TestHealthz(t *testing.T) {
	_, h := newTestAPI(t)
	rec := doJSON(t, h, http.MethodGet, "/healthz", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if got := rec.Header().Get("X-Content-Type-Options"); got != "nosniff" {
		t.Fatalf("X-Content-Type-Options = %q", got)
	}
}

func TestCORSPreflight(t *testing.T) {
	_, h := newTestAPI(t)
	req := httptest.NewRequest(http.MethodOptions, "/api/v1/sales", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("preflight status = %d", rec.Code)
	}
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "http://127.0.0.1:3000" {
		t.Fatalf("allow-origin = %q", got)
	}
}

func TestOperationsBeforeInitializeConflict(t *testing.T) {
	_, h := newTestAPI(t)
	rec := doJSON(t, h, http.MethodPost, "/api/v1/sales", domain.SaleRequest{
		Cart:   []domain.SaleLine{{Name: "Servicio", Qty: 1, Price: 100}},
		Method: domain.MethodCash,
	})
	if rec.Code != http.StatusConflict {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
}

func TestInitializeThenDoubleInitialize(t *testing.T) {
	_, h := newTestAPI(t)
	initBooks(t, h)
	rec := doJSON(t, h, http.MethodPost, "/api/v1/initialize", domain.InitializeRequest{Cash: 1})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("second initialize status = %d", rec.Code)
	}
}

func TestPurchaseSaleSummaryFlow(t *testing.T) {
	_, h := newTestAPI(t)
	initBooks(t, h)

	rec := doJSON(t, h, http.MethodPost, "/api/v1/purchases", domain.PurchaseRequest{
		Kind:     domain.PurchaseInventory,
		ItemName: "Harina",
		Quantity: 10,
		Amount:   10000,
		Method:   domain.MethodBank,
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("purchase status = %d, body %s", rec.Code, rec.Body.String())
	}

	rec = doJSON(t, h, http.MethodPost, "/api/v1/sales", domain.SaleRequest{
		Cart:   []domain.SaleLine{{Name: "Servicio de jardinería", Qty: 1, Price: 3000}},
		Method: domain.MethodCash,
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("sale status = %d, body %s", rec.Code, rec.Body.String())
	}

	rec = doJSON(t, h, http.MethodGet, "/api/v1/summary", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("summary status = %d", rec.Code)
	}
	var summary domain.Summary
	if err := json.Unmarshal(rec.Body.Bytes(), &summary); err != nil {
		t.Fatalf("decode summary: %v", err)
	}
	if summary.Revenue != 3000 {
		t.Fatalf("revenue = %v, want 3000", summary.Revenue)
	}
}

func TestVoidTransaction(t *testing.T) {
	api, h := newTestAPI(t)
	initBooks(t, h)

	rec := doJSON(t, h, http.MethodPost, "/api/v1/sales", domain.SaleRequest{
		Cart:   []domain.SaleLine{{Name: "Servicio", Qty: 1, Price: 500}},
		Method: domain.MethodCash,
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("sale status = %d", rec.Code)
	}
	var created struct {
		Transaction domain.Transaction `json:"transaction"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &created); err != nil {
		t.Fatalf("decode sale: %v", err)
	}

	rec = doJSON(t, h, http.MethodPost, "/api/v1/transactions/"+created.Transaction.ID+"/void", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("void status = %d, body %s", rec.Code, rec.Body.String())
	}

	// Double void is a conflict.
	rec = doJSON(t, h, http.MethodPost, "/api/v1/transactions/"+created.Transaction.ID+"/void", nil)
	if rec.Code != http.StatusConflict {
		t.Fatalf("double void status = %d", rec.Code)
	}

	if got := api.service.Snapshot().Accounts.Cash; got != 50000 {
		t.Fatalf("cash after void = %v, want 50000", got)
	}
}

func TestVoidMissingTransaction(t *testing.T) {
	_, h := newTestAPI(t)
	initBooks(t, h)
	rec := doJSON(t, h, http.MethodPost, "/api/v1/transactions/tx-nope/void", nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d", rec.Code)
	}
}

func TestUnknownFieldRejected(t *testing.T) {
	_, h := newTestAPI(t)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/initialize",
		strings.NewReader(`{"cash": 10, "surprise": true}`))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", rec.Code)
	}
}

func TestMethodNotAllowed(t *testing.T) {
	_, h := newTestAPI(t)
	rec := doJSON(t, h, http.MethodDelete, "/api/v1/sales", nil)
	if rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("status = %d", rec.Code)
	}
}

func TestTransactionsCSV(t *testing.T) {
	_, h := newTestAPI(t)
	initBooks(t, h)

	rec := doJSON(t, h, http.MethodGet, "/api/v1/transactions/export.csv", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/csv") {
		t.Fatalf("content-type = %q", ct)
	}
	body := rec.Body.String()
	if !strings.HasPrefix(body, "id,date,type,status,amount,cogs,description") {
		t.Fatalf("missing CSV header: %q", body)
	}
	if !strings.Contains(body, string(domain.TxInitialization)) {
		t.Fatalf("missing initialization row: %q", body)
	}
}

func TestCatalogEndpoints(t *testing.T) {
	_, h := newTestAPI(t)
	initBooks(t, h)

	rec := doJSON(t, h, http.MethodPost, "/api/v1/products", map[string]any{
		"name":  "Pan",
		"price": 500.0,
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create product status = %d, body %s", rec.Code, rec.Body.String())
	}
	var created struct {
		Product domain.Product `json:"product"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &created); err != nil {
		t.Fatalf("decode product: %v", err)
	}

	rec = doJSON(t, h, http.MethodPatch, "/api/v1/products/"+created.Product.ID, map[string]any{
		"name":  "Pan integral",
		"price": 600.0,
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("update product status = %d, body %s", rec.Code, rec.Body.String())
	}

	rec = doJSON(t, h, http.MethodDelete, "/api/v1/products/"+created.Product.ID, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("delete product status = %d", rec.Code)
	}

	rec = doJSON(t, h, http.MethodGet, "/api/v1/products", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("list products status = %d", rec.Code)
	}
}

func TestSelfCheckEndpoint(t *testing.T) {
	_, h := newTestAPI(t)
	rec := doJSON(t, h, http.MethodPost, "/api/v1/selfcheck", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var result domain.SelfCheckResult
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("decode result: %v", err)
	}
	if !result.Passed {
		t.Fatalf("self check failed:\n%s", strings.Join(result.Logs, "\n"))
	}
}

func TestBackupWriteListRestore(t *testing.T) {
	_, h := newTestAPI(t)
	initBooks(t, h)

	rec := doJSON(t, h, http.MethodPost, "/api/v1/backups", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("backup write status = %d, body %s", rec.Code, rec.Body.String())
	}
	var written struct {
		Name    string `json:"name"`
		Written bool   `json:"written"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &written); err != nil {
		t.Fatalf("decode backup: %v", err)
	}
	if !written.Written || written.Name == "" {
		t.Fatalf("backup not written: %+v", written)
	}

	rec = doJSON(t, h, http.MethodGet, "/api/v1/backups", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("backup list status = %d", rec.Code)
	}

	rec = doJSON(t, h, http.MethodPost, "/api/v1/backups/"+written.Name+"/restore", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("restore status = %d, body %s", rec.Code, rec.Body.String())
	}

	rec = doJSON(t, h, http.MethodPost, "/api/v1/backups/no-such-backup/restore", nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("bad restore status = %d", rec.Code)
	}
}

func TestStateExportImport(t *testing.T) {
	_, h := newTestAPI(t)
	initBooks(t, h)

	rec := doJSON(t, h, http.MethodGet, "/api/v1/state", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("export status = %d", rec.Code)
	}
	var state domain.AppState
	if err := json.Unmarshal(rec.Body.Bytes(), &state); err != nil {
		t.Fatalf("decode state: %v", err)
	}

	rec = doJSON(t, h, http.MethodPost, "/api/v1/state", state)
	if rec.Code != http.StatusOK {
		t.Fatalf("import status = %d, body %s", rec.Code, rec.Body.String())
	}
}
