package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/almacen-api/internal/application/dto"
	"github.com/jhoicas/almacen-api/internal/application/inventory"
	"github.com/jhoicas/almacen-api/internal/application/usecase"
	"github.com/jhoicas/almacen-api/internal/domain"
	"github.com/jhoicas/almacen-api/internal/domain/entity"
	"github.com/jhoicas/almacen-api/internal/domain/repository"
	"github.com/jhoicas/almacen-api/internal/infrastructure/memory"
	apphttp "github.com/jhoicas/almacen-api/internal/interfaces/http"
)

const (
	whMain   = "11111111-1111-1111-1111-111111111111"
	matCem   = "22222222-2222-2222-2222-222222222222"
	unknown  = "99999999-9999-9999-9999-999999999999"
	jsonType = "application/json"
)

type apiFixture struct {
	app   *fiber.App
	store *memory.Store
}

func newAPI(t *testing.T, runner inventory.TxRunner) *apiFixture {
	t.Helper()
	ctx := context.Background()
	store := memory.NewStore(memory.WithLockTimeout(time.Second))
	require.NoError(t, store.Warehouses().Create(ctx, &entity.Warehouse{ID: whMain, Name: "Central"}))
	require.NoError(t, store.Materials().Create(ctx, &entity.Material{
		ID: matCem, Code: "CEM", Name: "Cemento", MinStock: decimal.NewFromInt(5), IsActive: true,
	}))
	if runner == nil {
		runner = store
	}

	movements := inventory.NewMovementUseCase(runner, store.Materials(), store.Warehouses(),
		inventory.WithRetryPolicy(inventory.RetryPolicy{MaxRetries: 0}))
	app := fiber.New()
	apphttp.Router(app, apphttp.RouterDeps{
		Movements:   movements,
		Queries:     inventory.NewStockQueryUseCase(store.Balances(), store.Ledger(), store.Documents()),
		WarehouseUC: usecase.NewWarehouseUseCase(store.Warehouses()),
		MaterialUC:  usecase.NewMaterialUseCase(store.Materials()),
		JWTSecret:   testJWTSecret,
	})
	return &apiFixture{app: app, store: store}
}

func (f *apiFixture) do(t *testing.T, method, path, role string, body any) (*http.Response, []byte) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", jsonType)
	req.Header.Set("Authorization", tokenForRole(t, role))
	resp, err := f.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	out, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, out
}

func movementBody(number, qty, price string) map[string]any {
	return map[string]any{
		"document_number": number,
		"items": []map[string]any{
			{"material_id": matCem, "warehouse_id": whMain, "qty": qty, "unit_price": price},
		},
	}
}

func decodeError(t *testing.T, raw []byte) dto.ErrorResponse {
	t.Helper()
	var e dto.ErrorResponse
	require.NoError(t, json.Unmarshal(raw, &e))
	return e
}

func TestReceipts_CreateRedondeaTotales(t *testing.T) {
	api := newAPI(t, nil)

	resp, raw := api.do(t, http.MethodPost, "/api/receipts", apphttp.RoleStorekeeper, movementBody("R-1", "3.3333", "2.50"))
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(raw))

	var doc dto.MovementResponse
	require.NoError(t, json.Unmarshal(raw, &doc))
	assert.Equal(t, "receipt", doc.Type)
	assert.Equal(t, "8.33", doc.TotalAmount)
	require.Len(t, doc.Items, 1)
	assert.Equal(t, "3.3333", doc.Items[0].Qty)
	assert.Equal(t, testUserID, doc.CreatedBy)

	resp, raw = api.do(t, http.MethodGet, "/api/stock/current?warehouse_id="+whMain, apphttp.RoleViewer, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var balances dto.BalanceListResponse
	require.NoError(t, json.Unmarshal(raw, &balances))
	require.Len(t, balances.Items, 1)
	assert.Equal(t, "3.3333", balances.Items[0].Quantity)
	assert.Equal(t, "3.3333", balances.Items[0].AvailableQuantity)
}

func TestIssues_StockInsuficienteDevuelve409ConDetalle(t *testing.T) {
	api := newAPI(t, nil)
	resp, _ := api.do(t, http.MethodPost, "/api/receipts", apphttp.RoleStorekeeper, movementBody("R-1", "10", "1"))
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp, raw := api.do(t, http.MethodPost, "/api/issues", apphttp.RoleStorekeeper, movementBody("I-1", "12.5", "1"))
	require.Equal(t, http.StatusConflict, resp.StatusCode)

	var body struct {
		Code    string              `json:"code"`
		Details dto.ShortfallDetail `json:"details"`
	}
	require.NoError(t, json.Unmarshal(raw, &body))
	assert.Equal(t, "INSUFFICIENT_STOCK", body.Code)
	assert.Equal(t, "12.5000", body.Details.Requested)
	assert.Equal(t, "10.0000", body.Details.Available)
	assert.Equal(t, "2.5000", body.Details.Shortfall)

	assert.Equal(t, 1, api.store.LedgerLen(), "la salida rechazada no deja rastro en el kardex")
}

func TestMovements_Roles(t *testing.T) {
	api := newAPI(t, nil)

	resp, _ := api.do(t, http.MethodPost, "/api/receipts", apphttp.RoleViewer, movementBody("R-1", "1", "1"))
	assert.Equal(t, http.StatusForbidden, resp.StatusCode, "viewer no postea")

	resp, raw := api.do(t, http.MethodPost, "/api/receipts", apphttp.RoleStorekeeper, movementBody("R-1", "1", "1"))
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var doc dto.MovementResponse
	require.NoError(t, json.Unmarshal(raw, &doc))

	resp, _ = api.do(t, http.MethodPut, "/api/receipts/"+doc.ID, apphttp.RoleStorekeeper, movementBody("R-1", "2", "1"))
	assert.Equal(t, http.StatusForbidden, resp.StatusCode, "editar requiere admin")

	resp, _ = api.do(t, http.MethodDelete, "/api/receipts/"+doc.ID, apphttp.RoleStorekeeper, nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode, "eliminar requiere admin")

	resp, _ = api.do(t, http.MethodGet, "/api/receipts/"+doc.ID, apphttp.RoleViewer, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestReceipts_EditarYEliminarConservanHistorial(t *testing.T) {
	api := newAPI(t, nil)
	resp, raw := api.do(t, http.MethodPost, "/api/receipts", apphttp.RoleStorekeeper, movementBody("R-1", "10", "2"))
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var doc dto.MovementResponse
	require.NoError(t, json.Unmarshal(raw, &doc))

	resp, raw = api.do(t, http.MethodPut, "/api/receipts/"+doc.ID, apphttp.RoleAdmin, movementBody("R-1b", "4", "2"))
	require.Equal(t, http.StatusOK, resp.StatusCode, string(raw))
	var edited dto.MovementResponse
	require.NoError(t, json.Unmarshal(raw, &edited))
	assert.Equal(t, "R-1b", edited.DocumentNumber)
	assert.Equal(t, "8.00", edited.TotalAmount)

	resp, _ = api.do(t, http.MethodDelete, "/api/receipts/"+doc.ID, apphttp.RoleAdmin, nil)
	require.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp, _ = api.do(t, http.MethodGet, "/api/receipts/"+doc.ID, apphttp.RoleViewer, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, raw = api.do(t, http.MethodGet, "/api/receipts/"+doc.ID+"/history", apphttp.RoleViewer, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var history []dto.LedgerEntryResponse
	require.NoError(t, json.Unmarshal(raw, &history))
	require.Len(t, history, 4)
	kinds := make([]string, len(history))
	for i, e := range history {
		kinds[i] = e.Kind
	}
	assert.Equal(t, []string{"receipt", "reversal", "edit", "reversal"}, kinds)

	bal, err := api.store.Balances().Get(context.Background(), whMain, matCem)
	require.NoError(t, err)
	assert.True(t, bal.Quantity.IsZero())
}

func TestIssues_RutaDeOtroTipoDevuelve404(t *testing.T) {
	api := newAPI(t, nil)
	resp, raw := api.do(t, http.MethodPost, "/api/receipts", apphttp.RoleStorekeeper, movementBody("R-1", "1", "1"))
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var doc dto.MovementResponse
	require.NoError(t, json.Unmarshal(raw, &doc))

	resp, _ = api.do(t, http.MethodGet, "/api/issues/"+doc.ID, apphttp.RoleViewer, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, _ = api.do(t, http.MethodDelete, "/api/issues/"+doc.ID, apphttp.RoleAdmin, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, 1, api.store.LedgerLen())
}

func TestMovements_ErroresDeEntrada(t *testing.T) {
	api := newAPI(t, nil)

	cases := []struct {
		name  string
		body  any
		field string
	}{
		{"sin líneas", map[string]any{"document_number": "R-1", "items": []any{}}, "items"},
		{"sin número", movementBody("", "1", "1"), "document_number"},
		{"material no uuid", map[string]any{
			"document_number": "R-1",
			"items":           []map[string]any{{"material_id": "cemento", "warehouse_id": whMain, "qty": "1", "unit_price": "1"}},
		}, "items[0].material_id"},
		{"cantidad cero", movementBody("R-1", "0", "1"), "items[0].qty"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			resp, raw := api.do(t, http.MethodPost, "/api/receipts", apphttp.RoleStorekeeper, tc.body)
			require.Equal(t, http.StatusBadRequest, resp.StatusCode, string(raw))
			var body struct {
				Code    string               `json:"code"`
				Details dto.FieldErrorDetail `json:"details"`
			}
			require.NoError(t, json.Unmarshal(raw, &body))
			assert.Equal(t, "VALIDATION", body.Code)
			assert.Equal(t, tc.field, body.Details.Field)
		})
	}

	resp, _ := api.do(t, http.MethodGet, "/api/receipts/no-es-uuid", apphttp.RoleViewer, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, _ = api.do(t, http.MethodPost, "/api/receipts", apphttp.RoleStorekeeper, map[string]any{
		"document_number": "R-1",
		"items":           []map[string]any{{"material_id": unknown, "warehouse_id": whMain, "qty": "1", "unit_price": "1"}},
	})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestReceipts_NumeroDuplicadoDevuelve409(t *testing.T) {
	api := newAPI(t, nil)
	resp, _ := api.do(t, http.MethodPost, "/api/receipts", apphttp.RoleStorekeeper, movementBody("R-1", "1", "1"))
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp, raw := api.do(t, http.MethodPost, "/api/receipts", apphttp.RoleStorekeeper, movementBody("R-1", "2", "1"))
	require.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, "DUPLICATE", decodeError(t, raw).Code)

	resp, _ = api.do(t, http.MethodPost, "/api/issues", apphttp.RoleStorekeeper, movementBody("R-1", "1", "1"))
	assert.Equal(t, http.StatusCreated, resp.StatusCode, "el número es único por tipo")
}

func TestStock_AjusteYKardex(t *testing.T) {
	api := newAPI(t, nil)

	resp, raw := api.do(t, http.MethodPost, "/api/stock/adjustments", apphttp.RoleStorekeeper, map[string]any{
		"warehouse_id": whMain,
		"material_id":  matCem,
		"delta":        "-2.5",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(raw))
	var entry dto.LedgerEntryResponse
	require.NoError(t, json.Unmarshal(raw, &entry))
	assert.Equal(t, "adjustment", entry.Kind)
	assert.Equal(t, "-2.5000", entry.QtyChange)
	assert.Nil(t, entry.TotalPrice)

	resp, _ = api.do(t, http.MethodPost, "/api/receipts", apphttp.RoleStorekeeper, movementBody("R-1", "4", "1"))
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp, raw = api.do(t, http.MethodGet, "/api/stock-ledger?material_id="+matCem, apphttp.RoleViewer, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var ledger dto.LedgerListResponse
	require.NoError(t, json.Unmarshal(raw, &ledger))
	require.Len(t, ledger.Items, 2)
	assert.Equal(t, "receipt", ledger.Items[0].Kind, "más reciente primero")
	assert.Equal(t, "adjustment", ledger.Items[1].Kind)

	resp, raw = api.do(t, http.MethodGet, "/api/stock/low", apphttp.RoleViewer, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var low []dto.LowStockResponse
	require.NoError(t, json.Unmarshal(raw, &low))
	require.Len(t, low, 1)
	assert.Equal(t, "1.5000", low[0].Available)

	resp, _ = api.do(t, http.MethodGet, "/api/stock-ledger?kind=robo", apphttp.RoleViewer, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, _ = api.do(t, http.MethodGet, "/api/stock-ledger?from=ayer", apphttp.RoleViewer, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestStock_FiltrosDeParDebenSerUUID(t *testing.T) {
	api := newAPI(t, nil)

	tests := []struct {
		path, field string
	}{
		{"/api/stock/current?warehouse_id=abc", "warehouse_id"},
		{"/api/stock/current?material_id=M-CEM", "material_id"},
		{"/api/stock-ledger?warehouse_id=abc", "warehouse_id"},
		{"/api/stock-ledger?warehouse_id=" + whMain + "&material_id=xyz", "material_id"},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			resp, raw := api.do(t, http.MethodGet, tt.path, apphttp.RoleViewer, nil)
			require.Equal(t, http.StatusBadRequest, resp.StatusCode, string(raw))
			e := decodeError(t, raw)
			assert.Equal(t, "VALIDATION", e.Code)
			details, ok := e.Details.(map[string]any)
			require.True(t, ok)
			assert.Equal(t, tt.field, details["field"])
		})
	}

	resp, _ := api.do(t, http.MethodGet, "/api/stock/current?warehouse_id="+whMain, apphttp.RoleViewer, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestReceipts_CantidadFueraDeRangoDevuelve400(t *testing.T) {
	api := newAPI(t, nil)

	resp, raw := api.do(t, http.MethodPost, "/api/receipts", apphttp.RoleStorekeeper, movementBody("R-1", "123456789012345678.5", "1"))
	require.Equal(t, http.StatusBadRequest, resp.StatusCode, string(raw))
	assert.Equal(t, "VALIDATION", decodeError(t, raw).Code)
	assert.Empty(t, resp.Header.Get("Retry-After"))

	resp, raw = api.do(t, http.MethodGet, "/api/stock-ledger", apphttp.RoleViewer, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var ledger dto.LedgerListResponse
	require.NoError(t, json.Unmarshal(raw, &ledger))
	assert.Empty(t, ledger.Items)
}

// conflictRunner simula un motor que siempre pierde la carrera por el bloqueo.
type conflictRunner struct{}

func (conflictRunner) Run(_ context.Context, _ func(
	repository.LedgerRepository,
	repository.BalanceRepository,
	repository.DocumentRepository,
) error) error {
	return &domain.ConcurrencyError{Op: "tx", Err: context.DeadlineExceeded}
}

func TestMovements_ConflictoDevuelve503ConRetryAfter(t *testing.T) {
	api := newAPI(t, conflictRunner{})

	resp, raw := api.do(t, http.MethodPost, "/api/receipts", apphttp.RoleStorekeeper, movementBody("R-1", "1", "1"))
	require.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
	assert.Equal(t, "1", resp.Header.Get("Retry-After"))
	assert.Equal(t, "CONCURRENCY_CONFLICT", decodeError(t, raw).Code)
}

func TestReferenceData_CRUD(t *testing.T) {
	api := newAPI(t, nil)

	resp, _ := api.do(t, http.MethodPost, "/api/materials", apphttp.RoleStorekeeper, map[string]any{"code": "ARE", "name": "Arena"})
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp, raw := api.do(t, http.MethodPost, "/api/materials", apphttp.RoleAdmin, map[string]any{"code": "ARE", "name": "Arena", "min_stock": "3"})
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(raw))
	var m dto.MaterialResponse
	require.NoError(t, json.Unmarshal(raw, &m))
	assert.Equal(t, "3.0000", m.MinStock)

	resp, _ = api.do(t, http.MethodPost, "/api/materials", apphttp.RoleAdmin, map[string]any{"code": "CEM", "name": "Otro"})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	resp, raw = api.do(t, http.MethodPatch, "/api/materials/"+m.ID, apphttp.RoleAdmin, map[string]any{"is_active": false})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.NoError(t, json.Unmarshal(raw, &m))
	assert.False(t, m.IsActive)

	resp, raw = api.do(t, http.MethodPatch, "/api/warehouses/"+whMain, apphttp.RoleAdmin, map[string]any{"manager_name": "Ana"})
	require.Equal(t, http.StatusOK, resp.StatusCode, string(raw))
	var w dto.WarehouseResponse
	require.NoError(t, json.Unmarshal(raw, &w))
	assert.Equal(t, "Ana", w.ManagerName)
	assert.Equal(t, "Central", w.Name)

	resp, _ = api.do(t, http.MethodGet, "/api/warehouses/"+unknown, apphttp.RoleViewer, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, raw = api.do(t, http.MethodGet, "/api/materials", apphttp.RoleViewer, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var list dto.MaterialListResponse
	require.NoError(t, json.Unmarshal(raw, &list))
	assert.Len(t, list.Items, 2)
	assert.Equal(t, 100, list.Page.Limit)
}
