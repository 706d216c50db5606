package http

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/almacen-api/internal/application/dto"
	"github.com/jhoicas/almacen-api/internal/application/inventory"
	"github.com/jhoicas/almacen-api/internal/domain"
	"github.com/jhoicas/almacen-api/internal/domain/repository"
)

// StockHandler ajustes manuales y consultas de saldo/kardex.
type StockHandler struct {
	movements *inventory.MovementUseCase
	queries   *inventory.StockQueryUseCase
}

// NewStockHandler construye el handler.
func NewStockHandler(movements *inventory.MovementUseCase, queries *inventory.StockQueryUseCase) *StockHandler {
	return &StockHandler{movements: movements, queries: queries}
}

// Adjust godoc
// @Summary      Ajuste manual de saldo (delta con signo, sin validar disponibilidad)
// @Tags         stock
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.AdjustmentRequest  true  "Par, delta y precio opcional"
// @Success      201   {object}  dto.LedgerEntryResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      503   {object}  dto.ErrorResponse
// @Router       /api/stock/adjustments [post]
func (h *StockHandler) Adjust(c *fiber.Ctx) error {
	var in dto.AdjustmentRequest
	if err := bindJSON(c, &in); err != nil {
		return writeError(c, err)
	}
	entry, err := h.movements.AdjustBalance(c.Context(), in.ToInput(GetUserID(c)))
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.NewLedgerEntryResponse(entry))
}

// Current godoc
// @Summary      Saldos actuales
// @Tags         stock
// @Security     Bearer
// @Produce      json
// @Param        warehouse_id  query  string  false  "Filtrar por bodega"
// @Param        material_id   query  string  false  "Filtrar por material"
// @Param        limit         query  int     false  "Límite"  default(100)
// @Param        offset        query  int     false  "Offset"  default(0)
// @Success      200  {object}  dto.BalanceListResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/stock/current [get]
func (h *StockHandler) Current(c *fiber.Ctx) error {
	warehouseID, materialID, err := pairFilter(c)
	if err != nil {
		return writeError(c, err)
	}
	limit, offset := page(c)
	balances, err := h.queries.QueryBalance(c.Context(), repository.BalanceFilter{
		WarehouseID: warehouseID,
		MaterialID:  materialID,
		Limit:       limit,
		Offset:      offset,
	})
	if err != nil {
		return writeError(c, err)
	}
	items := make([]dto.BalanceResponse, 0, len(balances))
	for _, b := range balances {
		items = append(items, dto.NewBalanceResponse(b))
	}
	return c.JSON(dto.BalanceListResponse{Items: items, Page: dto.PageResponse{Limit: limit, Offset: offset}})
}

// LowStock godoc
// @Summary      Materiales por debajo de su stock mínimo
// @Tags         stock
// @Security     Bearer
// @Produce      json
// @Success      200  {array}  dto.LowStockResponse
// @Router       /api/stock/low [get]
func (h *StockHandler) LowStock(c *fiber.Ctx) error {
	list, err := h.queries.LowStock(c.Context())
	if err != nil {
		return writeError(c, err)
	}
	out := make([]dto.LowStockResponse, 0, len(list))
	for _, it := range list {
		out = append(out, dto.NewLowStockResponse(it))
	}
	return c.JSON(out)
}

// Ledger godoc
// @Summary      Kardex, del registro más reciente al más antiguo
// @Tags         stock
// @Security     Bearer
// @Produce      json
// @Param        warehouse_id  query  string  false  "Filtrar por bodega"
// @Param        material_id   query  string  false  "Filtrar por material"
// @Param        kind          query  string  false  "receipt | issue | adjustment | reversal | edit"
// @Param        from          query  string  false  "RFC3339 inclusive"
// @Param        to            query  string  false  "RFC3339 inclusive"
// @Param        limit         query  int     false  "Límite"  default(100)
// @Param        offset        query  int     false  "Offset"  default(0)
// @Success      200  {object}  dto.LedgerListResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/stock-ledger [get]
func (h *StockHandler) Ledger(c *fiber.Ctx) error {
	warehouseID, materialID, err := pairFilter(c)
	if err != nil {
		return writeError(c, err)
	}
	from, err := queryTime(c, "from")
	if err != nil {
		return writeError(c, err)
	}
	to, err := queryTime(c, "to")
	if err != nil {
		return writeError(c, err)
	}
	limit, offset := page(c)
	entries, err := h.queries.QueryLedger(c.Context(), repository.LedgerFilter{
		WarehouseID: warehouseID,
		MaterialID:  materialID,
		Kind:        c.Query("kind"),
		From:        from,
		To:          to,
		Limit:       limit,
		Offset:      offset,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.LedgerListResponse{
		Items: dto.NewLedgerEntryResponses(entries),
		Page:  dto.PageResponse{Limit: limit, Offset: offset},
	})
}

func pairFilter(c *fiber.Ctx) (string, string, error) {
	warehouseID, err := queryID(c, "warehouse_id")
	if err != nil {
		return "", "", err
	}
	materialID, err := queryID(c, "material_id")
	if err != nil {
		return "", "", err
	}
	return warehouseID, materialID, nil
}

func queryTime(c *fiber.Ctx, key string) (*time.Time, error) {
	raw := c.Query(key)
	if raw == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return nil, domain.NewValidationError(key, "debe ser RFC3339")
	}
	return &t, nil
}
